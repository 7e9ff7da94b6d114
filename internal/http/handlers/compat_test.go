package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

type stubMailer struct {
	mu   sync.Mutex
	sent []struct{ to, subject, body string }
	err  error
}

func (m *stubMailer) Send(_ context.Context, to, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, struct{ to, subject, body string }{to, subject, htmlBody})
	return nil
}

func validCompatSubmitBody() map[string]any {
	return map[string]any{
		"fullName":      "Jane Doe",
		"email":         "jane@example.com",
		"phone":         "0712345678",
		"category":      "media",
		"institution":   "Nairobi University",
		"course":        "Journalism",
		"yearOfStudy":   "3",
		"availability":  "2026-09-01",
		"duration":      "3 months",
		"coverLetter":   "I would like to intern with you.",
		"applicationId": "app-123",
	}
}

func TestCompatSubmitApplication(t *testing.T) {
	mail := &stubMailer{}
	h := NewCompatHandler(mail, "admin@portal.test")

	body, _ := json.Marshal(validCompatSubmitBody())
	req := httptest.NewRequest("POST", "/api/submit-application", strings.NewReader(string(body)))
	rec := httptest.NewRecorder()
	h.SubmitApplication(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got["success"] != true || got["applicationId"] != "app-123" {
		t.Fatalf("unexpected response %v", got)
	}
	if len(mail.sent) != 1 || mail.sent[0].to != "admin@portal.test" {
		t.Fatalf("expected one admin notification, got %+v", mail.sent)
	}
	if mail.sent[0].subject != "New Attachment Application - Jane Doe" {
		t.Fatalf("unexpected subject %q", mail.sent[0].subject)
	}
}

func TestCompatSubmitApplication_MissingFields(t *testing.T) {
	h := NewCompatHandler(&stubMailer{}, "admin@portal.test")

	payload := validCompatSubmitBody()
	delete(payload, "phone")
	delete(payload, "applicationId")
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", "/api/submit-application", strings.NewReader(string(body)))
	rec := httptest.NewRecorder()
	h.SubmitApplication(rec, req)

	if rec.Code != 400 {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var got map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got["error"] != "Missing required fields: phone, applicationId" {
		t.Fatalf("unexpected error %q", got["error"])
	}
}

func TestCompatSubmitApplication_SendFailure(t *testing.T) {
	mail := &stubMailer{err: errors.New("relay down")}
	h := NewCompatHandler(mail, "admin@portal.test")

	body, _ := json.Marshal(validCompatSubmitBody())
	req := httptest.NewRequest("POST", "/api/submit-application", strings.NewReader(string(body)))
	rec := httptest.NewRecorder()
	h.SubmitApplication(rec, req)

	if rec.Code != 500 {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestCompatSendStudentEmail(t *testing.T) {
	mail := &stubMailer{}
	h := NewCompatHandler(mail, "admin@portal.test")

	body := `{"recipientEmail":"jane@example.com","recipientName":"Jane","subject":"Hi","message":"Body"}`
	req := httptest.NewRequest("POST", "/api/send-student-email", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.SendStudentEmail(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got["message"] != "Email sent successfully to jane@example.com" {
		t.Fatalf("unexpected message %v", got["message"])
	}
	if len(mail.sent) != 1 || mail.sent[0].to != "jane@example.com" {
		t.Fatalf("expected one student email, got %+v", mail.sent)
	}
}

func TestCompatSendStudentEmail_MissingFields(t *testing.T) {
	h := NewCompatHandler(&stubMailer{}, "admin@portal.test")

	body := `{"recipientEmail":"jane@example.com"}`
	req := httptest.NewRequest("POST", "/api/send-student-email", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.SendStudentEmail(rec, req)

	if rec.Code != 400 {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var got map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got["error"] != "Missing required fields: recipientEmail, subject, or message" {
		t.Fatalf("unexpected error %q", got["error"])
	}
}
