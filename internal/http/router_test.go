package http

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/common"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/domain/user"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/http/handlers"
	httpmw "github.com/newslinemedia001-bot/newslinetrainingagency/internal/http/middleware"
)

type stubResolver struct {
	profile *user.Profile
}

func (s *stubResolver) Resolve(_ context.Context, accessToken string) (*user.Profile, error) {
	if accessToken == "" || s.profile == nil {
		return nil, common.NewError(common.CodeUnauthorized, "invalid token", nil)
	}
	return s.profile, nil
}

type stubBlobClient struct {
	mu      sync.Mutex
	uploads []string
}

func (s *stubBlobClient) Upload(_ context.Context, filename string, _ []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads = append(s.uploads, filename)
	return "https://cdn.test/" + filename, nil
}

func newTestRouter(blobs *stubBlobClient) http.Handler {
	resolver := &stubResolver{profile: &user.Profile{
		UID:   common.NewUUID(),
		Email: "jane@example.com",
		Name:  "Jane Doe",
		Role:  user.RoleStudent,
	}}
	return NewRouter(RouterDependencies{
		AuthHandler:        handlers.NewAuthHandler(nil, nil),
		ApplicationHandler: handlers.NewApplicationHandler(nil),
		AdminHandler:       handlers.NewAdminHandler(nil, nil, nil),
		CompanyHandler:     handlers.NewCompanyHandler(nil),
		MessageHandler:     handlers.NewMessageHandler(nil),
		UploadHandler:      handlers.NewUploadHandler(blobs),
		CompatHandler:      handlers.NewCompatHandler(nil, ""),
		AuthMiddleware:     httpmw.NewAuthMiddleware(resolver),
		RequestTimeout:     5 * time.Second,
		CORSOrigins:        []string{"*"},
	})
}

func TestRouterAcceptsLargeUpload(t *testing.T) {
	blobs := &stubBlobClient{}
	router := newTestRouter(blobs)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", "cv.pdf")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(bytes.Repeat([]byte("a"), 2<<20)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := form.Close(); err != nil {
		t.Fatalf("close form: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/uploads", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 for a 2MB document, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(blobs.uploads) != 1 || blobs.uploads[0] != "cv.pdf" {
		t.Fatalf("expected cv.pdf uploaded, got %v", blobs.uploads)
	}
}

func TestRouterCapsJSONBodies(t *testing.T) {
	router := newTestRouter(&stubBlobClient{})

	// Valid JSON past the cap: the body limit must cut it off before the
	// handler reads it.
	payload := append([]byte(`{"email":"jane@example.com","password":"`), bytes.Repeat([]byte("a"), 2<<20)...)
	payload = append(payload, []byte(`"}`)...)
	req := httptest.NewRequest(http.MethodPost, "/auth/signin", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for oversized body, got %d: %s", rec.Code, rec.Body.String())
	}
}
