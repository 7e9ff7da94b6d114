package app

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/common"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/domain/auth"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/domain/user"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/integration/federated"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/integration/mailer"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/security"
)

// SessionService владеет отображением identity → профиль с ролью и выдачей
// токенов; все защищённые обработчики опираются на него.
type SessionService struct {
	users      user.Repository
	creds      auth.CredentialRepository
	refresh    auth.RefreshTokenRepository
	resets     auth.PasswordResetRepository
	jwt        *security.JWTProvider
	verifier   federated.Verifier
	mail       mailer.Client
	logger     Logger
	baseURL    string
	accessTTL  time.Duration
	refreshTTL time.Duration
	resetTTL   time.Duration
}

const minPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func NewSessionService(users user.Repository, creds auth.CredentialRepository, refresh auth.RefreshTokenRepository, resets auth.PasswordResetRepository, jwt *security.JWTProvider, verifier federated.Verifier, mail mailer.Client, logger Logger, baseURL string, accessTTL, refreshTTL, resetTTL time.Duration) *SessionService {
	return &SessionService{
		users:      users,
		creds:      creds,
		refresh:    refresh,
		resets:     resets,
		jwt:        jwt,
		verifier:   verifier,
		mail:       mail,
		logger:     logger,
		baseURL:    strings.TrimRight(baseURL, "/"),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		resetTTL:   resetTTL,
	}
}

// Session is the resolved state behind a bearer token: the stable identity
// plus the role-tagged profile the guards dispatch on.
type Session struct {
	Profile *user.Profile
	Tokens  *auth.TokenPair
}

func (s *SessionService) SignUp(ctx context.Context, email, password, name string, role user.Role, companyData *user.CompanyData) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) {
		return nil, common.NewError(common.CodeValidation, "invalid email address", nil)
	}
	if len(password) < minPasswordLength {
		return nil, common.NewError(common.CodeWeakCredential, "password must be at least 6 characters", nil)
	}
	if strings.TrimSpace(name) == "" {
		return nil, common.NewError(common.CodeValidation, "name is required", nil)
	}
	if role != user.RoleStudent && role != user.RoleCompany {
		return nil, common.NewError(common.CodeValidation, "role must be student or company", nil)
	}
	if role == user.RoleCompany {
		if companyData == nil || strings.TrimSpace(companyData.CompanyName) == "" || strings.TrimSpace(companyData.Industry) == "" || strings.TrimSpace(companyData.Location) == "" || strings.TrimSpace(companyData.Phone) == "" {
			return nil, common.NewError(common.CodeValidation, "company name, industry, location and phone are required", nil)
		}
	}
	if _, err := s.creds.GetByEmail(ctx, email); err == nil {
		return nil, common.NewError(common.CodeConflict, "email already registered", nil)
	} else if !common.Is(err, common.CodeNotFound) {
		return nil, err
	}

	profile := user.Profile{
		UID:       common.NewUUID(),
		Email:     email,
		Name:      strings.TrimSpace(name),
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if role == user.RoleCompany {
		profile.CompanyName = strings.TrimSpace(companyData.CompanyName)
		profile.Industry = strings.TrimSpace(companyData.Industry)
		profile.Location = strings.TrimSpace(companyData.Location)
		profile.Website = strings.TrimSpace(companyData.Website)
		profile.Phone = strings.TrimSpace(companyData.Phone)
		profile.Approved = false
	}
	created, err := s.users.Create(ctx, profile)
	if err != nil {
		return nil, err
	}
	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to hash password", err)
	}
	now := time.Now().UTC()
	if err := s.creds.Create(ctx, auth.Credential{UserID: created.UID, Email: email, PasswordHash: hash, CreatedAt: now, UpdatedAt: now}); err != nil {
		return nil, err
	}
	pair, err := s.issueTokens(ctx, created)
	if err != nil {
		return nil, err
	}
	s.logInfo(fmt.Sprintf("user signed up uid=%s role=%s", created.UID, created.Role))
	return &Session{Profile: created, Tokens: pair}, nil
}

func (s *SessionService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) {
		return nil, common.NewError(common.CodeValidation, "invalid email address", nil)
	}
	cred, err := s.creds.GetByEmail(ctx, email)
	if err != nil {
		if common.Is(err, common.CodeNotFound) {
			// Same message as a wrong password: missing accounts must not
			// be distinguishable.
			return nil, common.NewError(common.CodeUnauthorized, "invalid email or password", nil)
		}
		return nil, err
	}
	ok, err := security.VerifyPassword(password, cred.PasswordHash)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to verify password", err)
	}
	if !ok {
		s.logInfo(fmt.Sprintf("sign-in rejected uid=%s", cred.UserID))
		return nil, common.NewError(common.CodeUnauthorized, "invalid email or password", nil)
	}
	profile, err := s.users.GetByUID(ctx, cred.UserID)
	if err != nil {
		return nil, err
	}
	pair, err := s.issueTokens(ctx, profile)
	if err != nil {
		return nil, err
	}
	s.logInfo(fmt.Sprintf("user signed in uid=%s", profile.UID))
	return &Session{Profile: profile, Tokens: pair}, nil
}

// AdminSignIn is the admin entry boundary. A valid sign-in that resolves to
// a non-admin profile is force-signed-out: every refresh token the user
// holds is revoked before the error is returned.
func (s *SessionService) AdminSignIn(ctx context.Context, email, password string) (*Session, error) {
	session, err := s.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if session.Profile.Role != user.RoleAdmin {
		_ = s.refresh.RevokeAll(ctx, session.Profile.UID, time.Now().UTC().Unix())
		s.logInfo(fmt.Sprintf("admin boundary refused uid=%s role=%s", session.Profile.UID, session.Profile.Role))
		return nil, common.NewError(common.CodeForbidden, "admin privileges required", nil)
	}
	return session, nil
}

// SignInFederated resolves a federated ID token. First sign-in creates a
// minimal profile with the supplied role; on every later sign-in the stored
// profile wins and the role argument is ignored.
func (s *SessionService) SignInFederated(ctx context.Context, idToken string, role user.Role) (*Session, error) {
	if s.verifier == nil {
		return nil, common.NewError(common.CodeInternal, "federated verifier not configured", nil)
	}
	identity, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, common.NewError(common.CodeUnauthorized, "federated sign-in failed", err)
	}
	email := strings.ToLower(strings.TrimSpace(identity.Email))
	profile, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !common.Is(err, common.CodeNotFound) {
			return nil, err
		}
		if role != user.RoleStudent && role != user.RoleCompany {
			return nil, common.NewError(common.CodeValidation, "role must be student or company", nil)
		}
		name := strings.TrimSpace(identity.Name)
		if name == "" {
			name = "User"
		}
		profile, err = s.users.Create(ctx, user.Profile{
			UID:       common.NewUUID(),
			Email:     email,
			Name:      name,
			Role:      role,
			CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			return nil, err
		}
		s.logInfo(fmt.Sprintf("federated profile created uid=%s role=%s", profile.UID, profile.Role))
	}
	pair, err := s.issueTokens(ctx, profile)
	if err != nil {
		return nil, err
	}
	return &Session{Profile: profile, Tokens: pair}, nil
}

func (s *SessionService) SignOut(ctx context.Context, refreshToken string) error {
	err := s.refresh.Revoke(ctx, refreshToken, time.Now().UTC().Unix())
	if err == nil {
		s.logInfo("user signed out")
	}
	return err
}

func (s *SessionService) Refresh(ctx context.Context, token string) (*Session, error) {
	stored, err := s.refresh.GetByToken(ctx, token)
	if err != nil {
		if common.Is(err, common.CodeNotFound) {
			return nil, common.NewError(common.CodeUnauthorized, "refresh token not found", nil)
		}
		return nil, err
	}
	if stored.RevokedAt != nil {
		return nil, common.NewError(common.CodeUnauthorized, "refresh token revoked", nil)
	}
	if stored.ExpiresAt.Before(time.Now().UTC()) {
		return nil, common.NewError(common.CodeUnauthorized, "refresh token expired", nil)
	}
	profile, err := s.users.GetByUID(ctx, stored.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.refresh.Revoke(ctx, token, time.Now().UTC().Unix()); err != nil {
		return nil, err
	}
	pair, err := s.issueTokens(ctx, profile)
	if err != nil {
		return nil, err
	}
	return &Session{Profile: profile, Tokens: pair}, nil
}

// Resolve is the per-request analogue of the client auth-state observer:
// bearer token in, identity plus profile out.
func (s *SessionService) Resolve(ctx context.Context, accessToken string) (*user.Profile, error) {
	claims, err := s.jwt.Parse(accessToken)
	if err != nil {
		return nil, common.NewError(common.CodeUnauthorized, "invalid token", err)
	}
	uid, err := common.ParseUUID(claims.UserID)
	if err != nil {
		return nil, common.NewError(common.CodeUnauthorized, "invalid user id", err)
	}
	return s.users.GetByUID(ctx, uid)
}

func (s *SessionService) ResetPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) {
		return common.NewError(common.CodeValidation, "invalid email address", nil)
	}
	cred, err := s.creds.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return common.NewError(common.CodeInternal, "failed to generate reset token", err)
	}
	token := base64.RawURLEncoding.EncodeToString(raw)
	now := time.Now().UTC()
	reset := auth.PasswordReset{
		UserID:    cred.UserID,
		TokenHash: hashToken(token),
		ExpiresAt: now.Add(s.resetTTL),
		CreatedAt: now,
	}
	if err := s.resets.Upsert(ctx, reset); err != nil {
		return err
	}
	resetURL := s.baseURL + "/auth/reset?token=" + url.QueryEscape(token)
	if s.mail == nil {
		return common.NewError(common.CodeDeliveryFailed, "mail relay not configured", nil)
	}
	if err := s.mail.Send(ctx, email, "Reset your password", mailer.PasswordResetHTML(resetURL)); err != nil {
		s.logError(fmt.Sprintf("reset email failed uid=%s: %v", cred.UserID, err))
		return common.NewError(common.CodeDeliveryFailed, "failed to send reset email", err)
	}
	s.logInfo(fmt.Sprintf("reset email sent uid=%s", cred.UserID))
	return nil
}

func (s *SessionService) CompleteReset(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return common.NewError(common.CodeWeakCredential, "password must be at least 6 characters", nil)
	}
	reset, err := s.resets.GetByTokenHash(ctx, hashToken(token))
	if err != nil {
		if common.Is(err, common.CodeNotFound) {
			return common.NewError(common.CodeUnauthorized, "invalid reset token", nil)
		}
		return err
	}
	if reset.ExpiresAt.Before(time.Now().UTC()) {
		_ = s.resets.Delete(ctx, reset.UserID)
		return common.NewError(common.CodeUnauthorized, "reset token expired", nil)
	}
	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to hash password", err)
	}
	if err := s.creds.UpdateHash(ctx, reset.UserID, hash); err != nil {
		return err
	}
	_ = s.resets.Delete(ctx, reset.UserID)
	// Old sessions die with the old password.
	_ = s.refresh.RevokeAll(ctx, reset.UserID, time.Now().UTC().Unix())
	s.logInfo(fmt.Sprintf("password reset completed uid=%s", reset.UserID))
	return nil
}

func (s *SessionService) issueTokens(ctx context.Context, profile *user.Profile) (*auth.TokenPair, error) {
	accessToken, expiresAt, err := s.jwt.Generate(profile.UID, string(profile.Role), s.accessTTL)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to generate access token", err)
	}
	refreshValue, err := generateRefreshToken()
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to generate refresh token", err)
	}
	refresh := auth.RefreshToken{
		ID:        common.NewUUID(),
		UserID:    profile.UID,
		Token:     refreshValue,
		ExpiresAt: time.Now().UTC().Add(s.refreshTTL),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.refresh.Store(ctx, refresh); err != nil {
		return nil, err
	}
	return &auth.TokenPair{AccessToken: accessToken, RefreshToken: refreshValue, ExpiresAt: expiresAt}, nil
}

func generateRefreshToken() (string, error) {
	b := make([]byte, 32)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", b), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *SessionService) logInfo(msg string) {
	if s.logger == nil {
		return
	}
	s.logger.Info(msg)
}

func (s *SessionService) logError(msg string) {
	if s.logger == nil {
		return
	}
	s.logger.Error(msg)
}
