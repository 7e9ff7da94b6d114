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

type AdminHandler struct {
	applications *app.ApplicationService
	companies    *app.CompanyService
	messages     *app.MessageService
}

func NewAdminHandler(applications *app.ApplicationService, companies *app.CompanyService, messages *app.MessageService) *AdminHandler {
	return &AdminHandler{applications: applications, companies: companies, messages: messages}
}

func (h *AdminHandler) ListApplications(w http.ResponseWriter, r *http.Request) {
	listed, err := h.applications.List(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, listed)
}

type setStatusRequest struct {
	Status string `json:"status"`
}

func (h *AdminHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := common.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, common.NewError(common.CodeValidation, "invalid application id", err))
		return
	}
	var req setStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	updated, err := h.applications.SetStatus(r.Context(), id, application.Status(strings.ToLower(strings.TrimSpace(req.Status))))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

type assignCompanyRequest struct {
	CompanyUID string `json:"company_uid"`
}

func (h *AdminHandler) AssignCompany(w http.ResponseWriter, r *http.Request) {
	id, err := common.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		response.Error(w, common.NewError(common.CodeValidation, "invalid application id", err))
		return
	}
	var req assignCompanyRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	companyUID, err := common.ParseUUID(req.CompanyUID)
	if err != nil {
		response.Error(w, common.NewError(common.CodeValidation, "invalid company uid", err))
		return
	}
	company, err := h.companies.GetCompany(r.Context(), companyUID)
	if err != nil {
		response.Error(w, err)
		return
	}
	updated, err := h.applications.AssignCompany(r.Context(), id, company.DisplayCompanyName())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

func (h *AdminHandler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	filter := app.CompanyFilter(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("filter"))))
	listed, err := h.companies.ListCompanies(r.Context(), filter)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, listed)
}

type setApprovalRequest struct {
	Approved bool `json:"approved"`
}

func (h *AdminHandler) SetCompanyApproval(w http.ResponseWriter, r *http.Request) {
	uid, err := common.ParseUUID(chi.URLParam(r, "uid"))
	if err != nil {
		response.Error(w, common.NewError(common.CodeValidation, "invalid company id", err))
		return
	}
	var req setApprovalRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	updated, err := h.companies.SetApproval(r.Context(), uid, req.Approved)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

type sendMessageRequest struct {
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// SendMessage delivers a message to the student registered under the given
// email. An unregistered email is reported back, nothing is stored.
func (h *AdminHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, errUnauthorized())
		return
	}
	var req sendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	sent, err := h.messages.Send(r.Context(), actor, req.Email, req.Subject, req.Message)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, sent)
}
