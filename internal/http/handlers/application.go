package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/app"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/catalog"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/common"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/domain/user"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/http/middleware"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/http/response"
)

type ApplicationHandler struct {
	applications *app.ApplicationService
}

func NewApplicationHandler(applications *app.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{applications: applications}
}

type submitApplicationRequest struct {
	FullName     string `json:"full_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Category     string `json:"category"`
	Subcategory  string `json:"subcategory,omitempty"`
	Institution  string `json:"institution"`
	Course       string `json:"course"`
	YearOfStudy  string `json:"year_of_study"`
	Availability string `json:"availability"`
	Duration     string `json:"duration"`
	Weeks        string `json:"weeks,omitempty"`
	CoverLetter  string `json:"cover_letter"`
	Consent      bool   `json:"consent"`

	CVURL          string `json:"cv_url,omitempty"`
	CoverLetterURL string `json:"cover_letter_url,omitempty"`
}

func (r submitApplicationRequest) toInput() app.SubmitInput {
	return app.SubmitInput{
		FullName:       r.FullName,
		Email:          r.Email,
		Phone:          r.Phone,
		Category:       r.Category,
		Subcategory:    r.Subcategory,
		Institution:    r.Institution,
		Course:         r.Course,
		YearOfStudy:    r.YearOfStudy,
		Availability:   r.Availability,
		Duration:       r.Duration,
		Weeks:          r.Weeks,
		CoverLetter:    r.CoverLetter,
		Consent:        r.Consent,
		CVURL:          r.CVURL,
		CoverLetterURL: r.CoverLetterURL,
	}
}

func (h *ApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitApplicationRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	created, err := h.applications.Submit(r.Context(), req.toInput())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

// ListMine returns the caller's own applications, matched by profile email.
func (h *ApplicationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	profile, ok := middleware.ProfileFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	listed, err := h.applications.ListMine(r.Context(), profile.Email)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, listed)
}

func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := common.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, common.NewError(common.CodeValidation, "invalid application id", err))
		return
	}
	found, err := h.applications.Get(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	profile, ok := middleware.ProfileFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	// Students see their own records; companies their queue; admins all.
	switch profile.Role {
	case user.RoleAdmin:
	case user.RoleCompany:
		if found.AssignedCompany != profile.DisplayCompanyName() {
			response.Error(w, common.NewError(common.CodeForbidden, "application is assigned to another company", nil))
			return
		}
	default:
		if found.Email != profile.Email {
			response.Error(w, common.NewError(common.CodeForbidden, "application belongs to another user", nil))
			return
		}
	}
	response.JSON(w, http.StatusOK, found)
}

// Categories serves the placement areas the intake form is built from.
func (h *ApplicationHandler) Categories(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, catalog.All())
}
