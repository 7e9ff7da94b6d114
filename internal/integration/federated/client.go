package federated

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Identity is what a verified federated ID token resolves to.
type Identity struct {
	Subject string
	Email   string
	Name    string
}

// Verifier checks a federated ID token and returns the identity behind it.
type Verifier interface {
	Verify(ctx context.Context, idToken string) (*Identity, error)
}

var ErrInvalidToken = errors.New("federated token rejected")

type HTTPVerifier struct {
	tokenInfoURL string
	clientID     string
	httpClient   *http.Client
}

func NewVerifier(tokenInfoURL, clientID string, httpClient *http.Client) *HTTPVerifier {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPVerifier{
		tokenInfoURL: strings.TrimSpace(tokenInfoURL),
		clientID:     strings.TrimSpace(clientID),
		httpClient:   httpClient,
	}
}

type tokenInfo struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
	Audience      string `json:"aud"`
}

func (v *HTTPVerifier) Verify(ctx context.Context, idToken string) (*Identity, error) {
	if strings.TrimSpace(idToken) == "" {
		return nil, ErrInvalidToken
	}
	endpoint := v.tokenInfoURL + "?id_token=" + url.QueryEscape(idToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create tokeninfo request: %w", err)
	}
	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send tokeninfo request: %w", err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read tokeninfo response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, ErrInvalidToken
	}
	var info tokenInfo
	if err := json.Unmarshal(payload, &info); err != nil {
		return nil, fmt.Errorf("decode tokeninfo response: %w", err)
	}
	if info.Subject == "" || info.Email == "" {
		return nil, ErrInvalidToken
	}
	if v.clientID != "" && info.Audience != v.clientID {
		return nil, ErrInvalidToken
	}
	if info.EmailVerified != "" && info.EmailVerified != "true" {
		return nil, ErrInvalidToken
	}
	return &Identity{Subject: info.Subject, Email: info.Email, Name: info.Name}, nil
}
