package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/common"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/domain/user"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/http/response"
)

type contextKey string

const (
	ContextUserIDKey  contextKey = "user_id"
	ContextRoleKey    contextKey = "role"
	ContextProfileKey contextKey = "profile"
)

// SessionResolver turns a bearer token into the profile behind it.
type SessionResolver interface {
	Resolve(ctx context.Context, accessToken string) (*user.Profile, error)
}

type AuthMiddleware struct {
	sessions SessionResolver
}

func NewAuthMiddleware(sessions SessionResolver) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// Authenticate resolves the bearer token to a profile. Missing or invalid
// credentials get a 401 pointing at the sign-in page.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.ErrorWithRedirect(w, common.NewError(common.CodeUnauthorized, "missing authorization header", nil), "/auth/signin")
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			response.ErrorWithRedirect(w, common.NewError(common.CodeUnauthorized, "invalid authorization header", nil), "/auth/signin")
			return
		}
		profile, err := m.sessions.Resolve(r.Context(), parts[1])
		if err != nil {
			response.ErrorWithRedirect(w, common.NewError(common.CodeUnauthorized, "invalid token", err), "/auth/signin")
			return
		}
		ctx := context.WithValue(r.Context(), ContextUserIDKey, profile.UID)
		ctx = context.WithValue(ctx, ContextRoleKey, profile.Role)
		ctx = context.WithValue(ctx, ContextProfileKey, profile)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole admits only the listed roles. An authenticated user with the
// wrong role is redirected to their own landing page, never to sign-in.
func RequireRole(roles ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			profile, ok := ProfileFromContext(r.Context())
			if !ok {
				response.ErrorWithRedirect(w, common.NewError(common.CodeUnauthorized, "not authenticated", nil), "/auth/signin")
				return
			}
			for _, role := range roles {
				if profile.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			response.ErrorWithRedirect(w, common.NewError(common.CodeForbidden, "insufficient role", nil), profile.Role.Home())
		})
	}
}

// RequireApprovedCompany holds unapproved companies at the approval gate.
// It assumes RequireRole(user.RoleCompany) already ran.
func RequireApprovedCompany(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		profile, ok := ProfileFromContext(r.Context())
		if !ok {
			response.ErrorWithRedirect(w, common.NewError(common.CodeUnauthorized, "not authenticated", nil), "/auth/signin")
			return
		}
		if profile.Role == user.RoleCompany && !profile.Approved {
			response.PendingApproval(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func UserIDFromContext(ctx context.Context) (common.UUID, bool) {
	id, ok := ctx.Value(ContextUserIDKey).(common.UUID)
	return id, ok
}

func RoleFromContext(ctx context.Context) (user.Role, bool) {
	role, ok := ctx.Value(ContextRoleKey).(user.Role)
	return role, ok
}

func ProfileFromContext(ctx context.Context) (*user.Profile, bool) {
	profile, ok := ctx.Value(ContextProfileKey).(*user.Profile)
	return profile, ok
}
