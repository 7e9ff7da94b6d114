package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/common"
)

// ErrorCollector counts error responses by code. Wired to the metrics
// collector at startup.
type ErrorCollector interface {
	ObserveError(code string)
}

var collector ErrorCollector

func SetErrorCollector(c ErrorCollector) {
	collector = c
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

type errorBody struct {
	Error      string                  `json:"error"`
	Code       string                  `json:"code"`
	Violations []common.FieldViolation `json:"violations,omitempty"`
	Redirect   string                  `json:"redirect,omitempty"`
	Pending    bool                    `json:"pending_approval,omitempty"`
}

// Error maps a service error to its HTTP shape. Unknown errors collapse to
// an opaque 500 so internals never leak to clients.
func Error(w http.ResponseWriter, err error) {
	var appErr *common.Error
	status := http.StatusInternalServerError
	body := errorBody{Error: "internal server error", Code: string(common.CodeInternal)}
	if errors.As(err, &appErr) {
		status = statusFor(appErr.Code)
		body = errorBody{Error: appErr.Message, Code: string(appErr.Code), Violations: appErr.Violations}
	}
	if collector != nil {
		collector.ObserveError(body.Code)
	}
	JSON(w, status, body)
}

// ErrorWithRedirect is Error plus the landing path the client should go to.
// The authorization guard uses it so unauthorized-but-authenticated users
// land on their role's own page instead of the sign-in screen.
func ErrorWithRedirect(w http.ResponseWriter, err error, redirect string) {
	var appErr *common.Error
	status := http.StatusInternalServerError
	body := errorBody{Error: "internal server error", Code: string(common.CodeInternal), Redirect: redirect}
	if errors.As(err, &appErr) {
		status = statusFor(appErr.Code)
		body = errorBody{Error: appErr.Message, Code: string(appErr.Code), Violations: appErr.Violations, Redirect: redirect}
	}
	if collector != nil {
		collector.ObserveError(body.Code)
	}
	JSON(w, status, body)
}

// PendingApproval is the 403 an unapproved company receives past the role
// guard but before the approval gate.
func PendingApproval(w http.ResponseWriter) {
	if collector != nil {
		collector.ObserveError(string(common.CodeForbidden))
	}
	JSON(w, http.StatusForbidden, errorBody{
		Error:   "company account awaiting approval",
		Code:    string(common.CodeForbidden),
		Pending: true,
	})
}

func statusFor(code common.Code) int {
	switch code {
	case common.CodeValidation, common.CodeWeakCredential, common.CodeUploadRejected:
		return http.StatusBadRequest
	case common.CodeUnauthorized:
		return http.StatusUnauthorized
	case common.CodeForbidden:
		return http.StatusForbidden
	case common.CodeNotFound:
		return http.StatusNotFound
	case common.CodeConflict, common.CodeNotAssigned:
		return http.StatusConflict
	case common.CodeRecipientNotRegistered:
		return http.StatusNotFound
	case common.CodeRateLimited:
		return http.StatusTooManyRequests
	case common.CodeDeliveryFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
