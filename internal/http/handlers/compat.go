package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/http/response"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/integration/mailer"
)

// CompatHandler keeps the legacy notification API routes alive with their
// original camelCase payloads and response shapes, so older clients keep
// working against the new backend. These routes only send mail; the record
// itself is persisted through POST /applications.
type CompatHandler struct {
	mail       mailer.Client
	adminInbox string
}

func NewCompatHandler(mail mailer.Client, adminInbox string) *CompatHandler {
	return &CompatHandler{mail: mail, adminInbox: adminInbox}
}

type compatSubmitRequest struct {
	FullName      string `json:"fullName"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Category      string `json:"category"`
	Subcategory   string `json:"subcategory,omitempty"`
	Institution   string `json:"institution"`
	Course        string `json:"course"`
	YearOfStudy   string `json:"yearOfStudy"`
	Availability  string `json:"availability"`
	Duration      string `json:"duration"`
	CoverLetter   string `json:"coverLetter"`
	ApplicationID string `json:"applicationId"`
}

func (r compatSubmitRequest) missingFields() []string {
	var missing []string
	check := func(field, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}
	check("fullName", r.FullName)
	check("email", r.Email)
	check("phone", r.Phone)
	check("category", r.Category)
	check("institution", r.Institution)
	check("course", r.Course)
	check("yearOfStudy", r.YearOfStudy)
	check("availability", r.Availability)
	check("duration", r.Duration)
	check("coverLetter", r.CoverLetter)
	check("applicationId", r.ApplicationID)
	return missing
}

func (h *CompatHandler) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	var req compatSubmitRequest
	if err := decodeJSON(r, &req); err != nil {
		response.JSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid request body"})
		return
	}
	if missing := req.missingFields(); len(missing) > 0 {
		response.JSON(w, http.StatusBadRequest, map[string]any{
			"error": "Missing required fields: " + strings.Join(missing, ", "),
		})
		return
	}
	if h.mail == nil {
		response.JSON(w, http.StatusInternalServerError, map[string]any{"error": "Failed to submit application. Please try again."})
		return
	}
	body := mailer.NewApplicationHTML(mailer.ApplicationEmail{
		ApplicationID: req.ApplicationID,
		FullName:      req.FullName,
		Email:         req.Email,
		Phone:         req.Phone,
		Category:      req.Category,
		Subcategory:   req.Subcategory,
		Institution:   req.Institution,
		Course:        req.Course,
		YearOfStudy:   req.YearOfStudy,
		Availability:  req.Availability,
		Duration:      req.Duration,
		CoverLetter:   req.CoverLetter,
	}, time.Now().UTC())
	subject := "New Attachment Application - " + req.FullName
	if err := h.mail.Send(r.Context(), h.adminInbox, subject, body); err != nil {
		response.JSON(w, http.StatusInternalServerError, map[string]any{"error": "Failed to submit application. Please try again."})
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"message":       "Application submitted successfully",
		"applicationId": req.ApplicationID,
	})
}

type compatSendEmailRequest struct {
	RecipientEmail string `json:"recipientEmail"`
	RecipientName  string `json:"recipientName"`
	Subject        string `json:"subject"`
	Message        string `json:"message"`
}

func (h *CompatHandler) SendStudentEmail(w http.ResponseWriter, r *http.Request) {
	var req compatSendEmailRequest
	if err := decodeJSON(r, &req); err != nil {
		response.JSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid request body"})
		return
	}
	if req.RecipientEmail == "" || req.Subject == "" || req.Message == "" {
		response.JSON(w, http.StatusBadRequest, map[string]any{
			"error": "Missing required fields: recipientEmail, subject, or message",
		})
		return
	}
	if h.mail == nil {
		response.JSON(w, http.StatusInternalServerError, map[string]any{"error": "Failed to send email. Please try again."})
		return
	}
	if err := h.mail.Send(r.Context(), req.RecipientEmail, req.Subject, mailer.StudentMessageHTML(req.Subject, req.Message)); err != nil {
		response.JSON(w, http.StatusInternalServerError, map[string]any{"error": "Failed to send email. Please try again."})
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Email sent successfully to " + req.RecipientEmail,
	})
}
