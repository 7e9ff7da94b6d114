package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/app"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/common"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/domain/user"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/http/middleware"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/http/response"
)

type AuthHandler struct {
	sessions *app.SessionService
	limiter  middleware.Limiter
}

func NewAuthHandler(sessions *app.SessionService, limiter middleware.Limiter) *AuthHandler {
	return &AuthHandler{sessions: sessions, limiter: limiter}
}

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`

	CompanyName string `json:"company_name,omitempty"`
	Industry    string `json:"industry,omitempty"`
	Location    string `json:"location,omitempty"`
	Website     string `json:"website,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type federatedSignInRequest struct {
	IDToken string `json:"id_token"`
	Role    string `json:"role,omitempty"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type resetRequest struct {
	Email string `json:"email"`
}

type completeResetRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Profile      *user.Profile `json:"profile"`
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	ExpiresAt    string        `json:"expires_at"`
	Home         string        `json:"home"`
}

func sessionPayload(s *app.Session) sessionResponse {
	return sessionResponse{
		Profile:      s.Profile,
		AccessToken:  s.Tokens.AccessToken,
		RefreshToken: s.Tokens.RefreshToken,
		ExpiresAt:    s.Tokens.ExpiresAt.Format(time.RFC3339),
		Home:         s.Profile.Role.Home(),
	}
}

func (h *AuthHandler) allowSignIn(w http.ResponseWriter, r *http.Request) bool {
	if h.limiter == nil {
		return true
	}
	key := "auth:ip:" + middleware.ClientIP(r)
	if !h.limiter.Allow(key, 10, time.Minute) {
		response.Error(w, common.NewError(common.CodeRateLimited, "too many sign-in attempts", nil))
		return false
	}
	return true
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	role, ok := user.ParseRole(strings.ToLower(strings.TrimSpace(req.Role)))
	if !ok {
		response.Error(w, common.NewError(common.CodeValidation, "role must be student or company", nil))
		return
	}
	var companyData *user.CompanyData
	if role == user.RoleCompany {
		companyData = &user.CompanyData{
			CompanyName: req.CompanyName,
			Industry:    req.Industry,
			Location:    req.Location,
			Website:     req.Website,
			Phone:       req.Phone,
		}
	}
	session, err := h.sessions.SignUp(r.Context(), req.Email, req.Password, req.Name, role, companyData)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, sessionPayload(session))
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	if !h.allowSignIn(w, r) {
		return
	}
	var req signInRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	session, err := h.sessions.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, sessionPayload(session))
}

// AdminSignIn is the dedicated admin entry. Valid non-admin credentials are
// rejected and their sessions revoked.
func (h *AuthHandler) AdminSignIn(w http.ResponseWriter, r *http.Request) {
	if !h.allowSignIn(w, r) {
		return
	}
	var req signInRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	session, err := h.sessions.AdminSignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		if common.Is(err, common.CodeForbidden) {
			response.ErrorWithRedirect(w, err, "/auth/signin")
			return
		}
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, sessionPayload(session))
}

func (h *AuthHandler) SignInFederated(w http.ResponseWriter, r *http.Request) {
	if !h.allowSignIn(w, r) {
		return
	}
	var req federatedSignInRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	role := user.RoleStudent
	if req.Role != "" {
		parsed, ok := user.ParseRole(strings.ToLower(strings.TrimSpace(req.Role)))
		if !ok {
			response.Error(w, common.NewError(common.CodeValidation, "role must be student or company", nil))
			return
		}
		role = parsed
	}
	session, err := h.sessions.SignInFederated(r.Context(), req.IDToken, role)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, sessionPayload(session))
}

func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	if err := h.sessions.SignOut(r.Context(), req.RefreshToken); err != nil && !common.Is(err, common.CodeNotFound) {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	session, err := h.sessions.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, sessionPayload(session))
}

// Session resolves the caller's token to their profile, the server-side
// answer to "who am I and where is my home page".
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		response.ErrorWithRedirect(w, errUnauthorized(), "/auth/signin")
		return
	}
	profile, err := h.sessions.Resolve(r.Context(), token)
	if err != nil {
		response.ErrorWithRedirect(w, err, "/auth/signin")
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{
		"profile": profile,
		"home":    profile.Role.Home(),
	})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	if err := h.sessions.ResetPassword(r.Context(), req.Email); err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *AuthHandler) CompleteReset(w http.ResponseWriter, r *http.Request) {
	var req completeResetRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	if err := h.sessions.CompleteReset(r.Context(), req.Token, req.Password); err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]bool{"ok": true})
}
