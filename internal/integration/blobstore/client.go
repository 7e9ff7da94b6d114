package blobstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/common"
)

// Client uploads an attachment document and returns its public URL.
type Client interface {
	Upload(ctx context.Context, filename string, content []byte) (string, error)
}

const MaxUploadBytes = 5 << 20

var allowedExtensions = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// Validate applies the local type/size gate before any network call.
func Validate(filename string, size int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return common.NewError(common.CodeUploadRejected, "only PDF, DOC and DOCX files are accepted", nil)
	}
	if size > MaxUploadBytes {
		return common.NewError(common.CodeUploadRejected, "file exceeds the 5 MB limit", nil)
	}
	return nil
}

type HTTPClient struct {
	baseURL    string
	preset     string
	httpClient *http.Client
}

func NewClient(baseURL, preset string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		preset:     strings.TrimSpace(preset),
		httpClient: httpClient,
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
}

func (c *HTTPClient) Upload(ctx context.Context, filename string, content []byte) (string, error) {
	if err := Validate(filename, int64(len(content))); err != nil {
		return "", err
	}
	var body strings.Builder
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return "", fmt.Errorf("create upload form: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return "", fmt.Errorf("write upload form: %w", err)
	}
	if err := writer.WriteField("upload_preset", c.preset); err != nil {
		return "", fmt.Errorf("write upload form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close upload form: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", strings.NewReader(body.String()))
	if err != nil {
		return "", fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", common.NewError(common.CodeDeliveryFailed, "upload failed", err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", common.NewError(common.CodeDeliveryFailed, "upload failed", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", common.NewError(common.CodeDeliveryFailed, fmt.Sprintf("upload failed with status %d", resp.StatusCode), nil)
	}
	var parsed uploadResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", common.NewError(common.CodeDeliveryFailed, "upload response malformed", err)
	}
	if parsed.SecureURL == "" {
		return "", common.NewError(common.CodeDeliveryFailed, "upload response missing url", nil)
	}
	return parsed.SecureURL, nil
}
