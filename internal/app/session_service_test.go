package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/common"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/domain/user"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/integration/federated"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/security"
)

type sessionFixture struct {
	service *SessionService
	users   *fakeUserRepo
	creds   *fakeCredentialRepo
	refresh *fakeRefreshRepo
	resets  *fakeResetRepo
	mailer  *fakeMailer
}

func newSessionFixture(t *testing.T, verifier federated.Verifier) *sessionFixture {
	t.Helper()
	users := newFakeUserRepo()
	creds := newFakeCredentialRepo()
	refresh := newFakeRefreshRepo()
	resets := newFakeResetRepo()
	mail := &fakeMailer{}
	jwt := security.NewJWTProvider("test-secret")
	service := NewSessionService(users, creds, refresh, resets, jwt, verifier, mail, nil,
		"https://portal.test", 15*time.Minute, 24*time.Hour, time.Hour)
	return &sessionFixture{service: service, users: users, creds: creds, refresh: refresh, resets: resets, mailer: mail}
}

func TestSessionServiceSignUp_Student(t *testing.T) {
	f := newSessionFixture(t, nil)
	session, err := f.service.SignUp(context.Background(), "jane@example.com", "secret1", "Jane", user.RoleStudent, nil)
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if session.Profile.Role != user.RoleStudent {
		t.Fatalf("expected student role, got %s", session.Profile.Role)
	}
	if session.Tokens.AccessToken == "" || session.Tokens.RefreshToken == "" {
		t.Fatal("expected issued tokens")
	}
	if session.Profile.Role.Home() != "/dashboard" {
		t.Fatalf("unexpected home %s", session.Profile.Role.Home())
	}
}

func TestSessionServiceSignUp_CompanyStartsUnapproved(t *testing.T) {
	f := newSessionFixture(t, nil)
	session, err := f.service.SignUp(context.Background(), "hr@acme.com", "secret1", "ACME HR", user.RoleCompany, &user.CompanyData{
		CompanyName: "ACME Ltd",
		Industry:    "Media",
		Location:    "Nairobi",
		Phone:       "+254700000000",
	})
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if session.Profile.Approved {
		t.Fatal("company must start unapproved")
	}
	if session.Profile.DisplayCompanyName() != "ACME Ltd" {
		t.Fatalf("unexpected display name %s", session.Profile.DisplayCompanyName())
	}
}

func TestSessionServiceSignUp_CompanyRequiresCompanyData(t *testing.T) {
	f := newSessionFixture(t, nil)
	_, err := f.service.SignUp(context.Background(), "hr@acme.com", "secret1", "ACME HR", user.RoleCompany, nil)
	if !common.Is(err, common.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSessionServiceSignUp_WeakPassword(t *testing.T) {
	f := newSessionFixture(t, nil)
	_, err := f.service.SignUp(context.Background(), "jane@example.com", "12345", "Jane", user.RoleStudent, nil)
	if !common.Is(err, common.CodeWeakCredential) {
		t.Fatalf("expected weak credential error, got %v", err)
	}
}

func TestSessionServiceSignUp_AdminRoleRejected(t *testing.T) {
	f := newSessionFixture(t, nil)
	_, err := f.service.SignUp(context.Background(), "boss@example.com", "secret1", "Boss", user.RoleAdmin, nil)
	if !common.Is(err, common.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSessionServiceSignUp_DuplicateEmail(t *testing.T) {
	f := newSessionFixture(t, nil)
	ctx := context.Background()
	if _, err := f.service.SignUp(ctx, "jane@example.com", "secret1", "Jane", user.RoleStudent, nil); err != nil {
		t.Fatalf("first sign up: %v", err)
	}
	_, err := f.service.SignUp(ctx, "jane@example.com", "secret2", "Jane Again", user.RoleStudent, nil)
	if !common.Is(err, common.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestSessionServiceSignIn_WrongPasswordAndUnknownAccountLookAlike(t *testing.T) {
	f := newSessionFixture(t, nil)
	ctx := context.Background()
	if _, err := f.service.SignUp(ctx, "jane@example.com", "secret1", "Jane", user.RoleStudent, nil); err != nil {
		t.Fatalf("sign up: %v", err)
	}
	_, errWrong := f.service.SignIn(ctx, "jane@example.com", "not-it")
	_, errMissing := f.service.SignIn(ctx, "nobody@example.com", "secret1")
	if !common.Is(errWrong, common.CodeUnauthorized) || !common.Is(errMissing, common.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for both, got %v and %v", errWrong, errMissing)
	}
	if errWrong.Error() != errMissing.Error() {
		t.Fatalf("messages must match: %q vs %q", errWrong.Error(), errMissing.Error())
	}
}

func TestSessionServiceAdminSignIn_NonAdminForceSignedOut(t *testing.T) {
	f := newSessionFixture(t, nil)
	ctx := context.Background()
	session, err := f.service.SignUp(ctx, "jane@example.com", "secret1", "Jane", user.RoleStudent, nil)
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if f.refresh.activeCount(session.Profile.UID) != 1 {
		t.Fatal("expected one active refresh token after sign up")
	}
	_, err = f.service.AdminSignIn(ctx, "jane@example.com", "secret1")
	if !common.Is(err, common.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if f.refresh.activeCount(session.Profile.UID) != 0 {
		t.Fatal("expected all refresh tokens revoked for non-admin at the admin boundary")
	}
}

func TestSessionServiceSignInFederated_RepeatKeepsRole(t *testing.T) {
	verifier := &fakeVerifier{identity: &federated.Identity{Subject: "sub-1", Email: "jane@example.com", Name: "Jane"}}
	f := newSessionFixture(t, verifier)
	ctx := context.Background()

	first, err := f.service.SignInFederated(ctx, "token", user.RoleCompany)
	if err != nil {
		t.Fatalf("first federated sign in: %v", err)
	}
	if first.Profile.Role != user.RoleCompany {
		t.Fatalf("expected company role, got %s", first.Profile.Role)
	}

	second, err := f.service.SignInFederated(ctx, "token", user.RoleStudent)
	if err != nil {
		t.Fatalf("second federated sign in: %v", err)
	}
	if second.Profile.UID != first.Profile.UID {
		t.Fatal("repeat sign in must resolve the same profile")
	}
	if second.Profile.Role != user.RoleCompany {
		t.Fatalf("role must never change on repeat sign in, got %s", second.Profile.Role)
	}
}

func TestSessionServiceSignInFederated_MissingNameDefaults(t *testing.T) {
	verifier := &fakeVerifier{identity: &federated.Identity{Subject: "sub-2", Email: "anon@example.com"}}
	f := newSessionFixture(t, verifier)
	session, err := f.service.SignInFederated(context.Background(), "token", user.RoleStudent)
	if err != nil {
		t.Fatalf("federated sign in: %v", err)
	}
	if session.Profile.Name != "User" {
		t.Fatalf("expected fallback name, got %q", session.Profile.Name)
	}
}

func TestSessionServiceRefresh_RotatesToken(t *testing.T) {
	f := newSessionFixture(t, nil)
	ctx := context.Background()
	session, err := f.service.SignUp(ctx, "jane@example.com", "secret1", "Jane", user.RoleStudent, nil)
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	old := session.Tokens.RefreshToken
	renewed, err := f.service.Refresh(ctx, old)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if renewed.Tokens.RefreshToken == old {
		t.Fatal("refresh must rotate the token")
	}
	if _, err := f.service.Refresh(ctx, old); !common.Is(err, common.CodeUnauthorized) {
		t.Fatalf("expected unauthorized reuse of rotated token, got %v", err)
	}
}

func TestSessionServiceResolve(t *testing.T) {
	f := newSessionFixture(t, nil)
	ctx := context.Background()
	session, err := f.service.SignUp(ctx, "jane@example.com", "secret1", "Jane", user.RoleStudent, nil)
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	profile, err := f.service.Resolve(ctx, session.Tokens.AccessToken)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if profile.UID != session.Profile.UID {
		t.Fatal("resolved profile mismatch")
	}
	if _, err := f.service.Resolve(ctx, "garbage"); !common.Is(err, common.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for garbage token, got %v", err)
	}
}

func TestSessionServiceResetPassword_Flow(t *testing.T) {
	f := newSessionFixture(t, nil)
	ctx := context.Background()
	session, err := f.service.SignUp(ctx, "jane@example.com", "secret1", "Jane", user.RoleStudent, nil)
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if err := f.service.ResetPassword(ctx, "jane@example.com"); err != nil {
		t.Fatalf("reset password: %v", err)
	}
	mail, ok := f.mailer.lastSent()
	if !ok {
		t.Fatal("expected reset email")
	}
	marker := "token="
	idx := strings.Index(mail.body, marker)
	if idx < 0 {
		t.Fatalf("reset email carries no token link: %s", mail.body)
	}
	token := mail.body[idx+len(marker):]
	if cut := strings.IndexAny(token, `"&`); cut >= 0 {
		token = token[:cut]
	}
	if err := f.service.CompleteReset(ctx, token, "newsecret"); err != nil {
		t.Fatalf("complete reset: %v", err)
	}
	if _, err := f.service.SignIn(ctx, "jane@example.com", "secret1"); !common.Is(err, common.CodeUnauthorized) {
		t.Fatalf("old password must stop working, got %v", err)
	}
	if _, err := f.service.SignIn(ctx, "jane@example.com", "newsecret"); err != nil {
		t.Fatalf("new password sign in: %v", err)
	}
	if f.refresh.activeCount(session.Profile.UID) != 1 {
		t.Fatal("reset must revoke pre-reset sessions")
	}
	if err := f.service.CompleteReset(ctx, token, "another1"); !common.Is(err, common.CodeUnauthorized) {
		t.Fatalf("reset token must be single use, got %v", err)
	}
}

func TestSessionServiceResetPassword_DeliveryFailure(t *testing.T) {
	f := newSessionFixture(t, nil)
	ctx := context.Background()
	if _, err := f.service.SignUp(ctx, "jane@example.com", "secret1", "Jane", user.RoleStudent, nil); err != nil {
		t.Fatalf("sign up: %v", err)
	}
	f.mailer.err = context.DeadlineExceeded
	err := f.service.ResetPassword(ctx, "jane@example.com")
	if !common.Is(err, common.CodeDeliveryFailed) {
		t.Fatalf("expected delivery failure, got %v", err)
	}
}

func TestSessionServiceResetPassword_UnknownEmail(t *testing.T) {
	f := newSessionFixture(t, nil)
	err := f.service.ResetPassword(context.Background(), "nobody@example.com")
	if !common.Is(err, common.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSessionServiceSignOut_RevokesToken(t *testing.T) {
	f := newSessionFixture(t, nil)
	ctx := context.Background()
	session, err := f.service.SignUp(ctx, "jane@example.com", "secret1", "Jane", user.RoleStudent, nil)
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if err := f.service.SignOut(ctx, session.Tokens.RefreshToken); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if _, err := f.service.Refresh(ctx, session.Tokens.RefreshToken); !common.Is(err, common.CodeUnauthorized) {
		t.Fatalf("expected unauthorized after sign out, got %v", err)
	}
}
