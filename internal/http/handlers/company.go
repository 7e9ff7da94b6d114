package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/app"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/common"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/domain/application"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/http/middleware"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/http/response"
)

type CompanyHandler struct {
	applications *app.ApplicationService
}

func NewCompanyHandler(applications *app.ApplicationService) *CompanyHandler {
	return &CompanyHandler{applications: applications}
}

// ListAssigned returns the queue assigned to the calling company.
func (h *CompanyHandler) ListAssigned(w http.ResponseWriter, r *http.Request) {
	profile, ok := middleware.ProfileFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	listed, err := h.applications.ListAssigned(r.Context(), profile.DisplayCompanyName())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, listed)
}

type decisionRequest struct {
	Decision string `json:"decision"`
	Feedback string `json:"feedback,omitempty"`
}

func (h *CompanyHandler) RecordDecision(w http.ResponseWriter, r *http.Request) {
	profile, ok := middleware.ProfileFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	id, err := common.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, common.NewError(common.CodeValidation, "invalid application id", err))
		return
	}
	var req decisionRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	decision := application.Decision(strings.ToLower(strings.TrimSpace(req.Decision)))
	updated, err := h.applications.RecordCompanyDecision(r.Context(), id, profile.DisplayCompanyName(), decision, req.Feedback)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}
