package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/common"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/domain/application"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/domain/auth"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/domain/message"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/domain/user"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/integration/federated"
)

type fakeUserRepo struct {
	mu       sync.Mutex
	profiles map[common.UUID]*user.Profile
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{profiles: make(map[common.UUID]*user.Profile)}
}

func (r *fakeUserRepo) Create(ctx context.Context, profile user.Profile) (*user.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := profile
	r.profiles[profile.UID] = &copied
	out := copied
	return &out, nil
}

func (r *fakeUserRepo) GetByUID(ctx context.Context, uid common.UUID) (*user.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[uid]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "user not found", nil)
	}
	out := *p
	return &out, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*user.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.profiles {
		if p.Email == email {
			out := *p
			return &out, nil
		}
	}
	return nil, common.NewError(common.CodeNotFound, "user not found", nil)
}

func (r *fakeUserRepo) ListByRole(ctx context.Context, role user.Role) ([]user.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []user.Profile
	for _, p := range r.profiles {
		if p.Role == role {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (r *fakeUserRepo) SetApproved(ctx context.Context, uid common.UUID, approved bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[uid]
	if !ok {
		return common.NewError(common.CodeNotFound, "user not found", nil)
	}
	p.Approved = approved
	return nil
}

type fakeCredentialRepo struct {
	mu    sync.Mutex
	creds map[string]*auth.Credential
}

func newFakeCredentialRepo() *fakeCredentialRepo {
	return &fakeCredentialRepo{creds: make(map[string]*auth.Credential)}
}

func (r *fakeCredentialRepo) Create(ctx context.Context, cred auth.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.creds[cred.Email]; ok {
		return common.NewError(common.CodeConflict, "email already registered", nil)
	}
	copied := cred
	r.creds[cred.Email] = &copied
	return nil
}

func (r *fakeCredentialRepo) GetByEmail(ctx context.Context, email string) (*auth.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.creds[email]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "credential not found", nil)
	}
	out := *c
	return &out, nil
}

func (r *fakeCredentialRepo) UpdateHash(ctx context.Context, userID common.UUID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.creds {
		if c.UserID == userID {
			c.PasswordHash = passwordHash
			return nil
		}
	}
	return common.NewError(common.CodeNotFound, "credential not found", nil)
}

type fakeRefreshRepo struct {
	mu     sync.Mutex
	tokens map[string]*auth.RefreshToken
}

func newFakeRefreshRepo() *fakeRefreshRepo {
	return &fakeRefreshRepo{tokens: make(map[string]*auth.RefreshToken)}
}

func (r *fakeRefreshRepo) Store(ctx context.Context, token auth.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := token
	r.tokens[token.Token] = &copied
	return nil
}

func (r *fakeRefreshRepo) GetByToken(ctx context.Context, token string) (*auth.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "refresh token not found", nil)
	}
	out := *t
	return &out, nil
}

func (r *fakeRefreshRepo) Revoke(ctx context.Context, token string, revokedAtUnix int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	if !ok {
		return common.NewError(common.CodeNotFound, "refresh token not found", nil)
	}
	at := unixTime(revokedAtUnix)
	t.RevokedAt = &at
	return nil
}

func (r *fakeRefreshRepo) RevokeAll(ctx context.Context, userID common.UUID, revokedAtUnix int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	at := unixTime(revokedAtUnix)
	for _, t := range r.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			revoked := at
			t.RevokedAt = &revoked
		}
	}
	return nil
}

func (r *fakeRefreshRepo) DeleteExpired(ctx context.Context, beforeUnix int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, t := range r.tokens {
		if t.ExpiresAt.Unix() < beforeUnix {
			delete(r.tokens, key)
		}
	}
	return nil
}

func (r *fakeRefreshRepo) activeCount(userID common.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			n++
		}
	}
	return n
}

type fakeResetRepo struct {
	mu     sync.Mutex
	resets map[common.UUID]*auth.PasswordReset
}

func newFakeResetRepo() *fakeResetRepo {
	return &fakeResetRepo{resets: make(map[common.UUID]*auth.PasswordReset)}
}

func (r *fakeResetRepo) Upsert(ctx context.Context, reset auth.PasswordReset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := reset
	r.resets[reset.UserID] = &copied
	return nil
}

func (r *fakeResetRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*auth.PasswordReset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, reset := range r.resets {
		if reset.TokenHash == tokenHash {
			out := *reset
			return &out, nil
		}
	}
	return nil, common.NewError(common.CodeNotFound, "reset not found", nil)
}

func (r *fakeResetRepo) Delete(ctx context.Context, userID common.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.resets, userID)
	return nil
}

func (r *fakeResetRepo) DeleteExpired(ctx context.Context, beforeUnix int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, reset := range r.resets {
		if reset.ExpiresAt.Unix() < beforeUnix {
			delete(r.resets, key)
		}
	}
	return nil
}

type fakeApplicationRepo struct {
	mu   sync.Mutex
	apps map[common.UUID]*application.Application
}

func newFakeApplicationRepo() *fakeApplicationRepo {
	return &fakeApplicationRepo{apps: make(map[common.UUID]*application.Application)}
}

func (r *fakeApplicationRepo) Create(ctx context.Context, app application.Application) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := app
	r.apps[app.ID] = &copied
	out := copied
	return &out, nil
}

func (r *fakeApplicationRepo) GetByID(ctx context.Context, id common.UUID) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "application not found", nil)
	}
	out := *a
	return &out, nil
}

func (r *fakeApplicationRepo) List(ctx context.Context) ([]application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []application.Application
	for _, a := range r.apps {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out, nil
}

func (r *fakeApplicationRepo) ListByEmail(ctx context.Context, email string) ([]application.Application, error) {
	all, _ := r.List(ctx)
	var out []application.Application
	for _, a := range all {
		if a.Email == email {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeApplicationRepo) ListByAssignedCompany(ctx context.Context, companyName string) ([]application.Application, error) {
	all, _ := r.List(ctx)
	var out []application.Application
	for _, a := range all {
		if a.AssignedCompany == companyName {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeApplicationRepo) UpdateStatus(ctx context.Context, id common.UUID, status application.Status) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "application not found", nil)
	}
	a.Status = status
	out := *a
	return &out, nil
}

func (r *fakeApplicationRepo) AssignCompany(ctx context.Context, id common.UUID, companyName string, status application.Status) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "application not found", nil)
	}
	a.AssignedCompany = companyName
	a.Status = status
	out := *a
	return &out, nil
}

func (r *fakeApplicationRepo) SetCompanyDecision(ctx context.Context, id common.UUID, decision application.Decision, feedback string) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "application not found", nil)
	}
	a.CompanyDecision = decision
	a.CompanyFeedback = feedback
	out := *a
	return &out, nil
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages map[common.UUID]*message.Message
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{messages: make(map[common.UUID]*message.Message)}
}

func (r *fakeMessageRepo) Create(ctx context.Context, msg message.Message) (*message.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := msg
	r.messages[msg.ID] = &copied
	out := copied
	return &out, nil
}

func (r *fakeMessageRepo) GetByID(ctx context.Context, id common.UUID) (*message.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "message not found", nil)
	}
	out := *m
	return &out, nil
}

func (r *fakeMessageRepo) ListByRecipient(ctx context.Context, to common.UUID) ([]message.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []message.Message
	for _, m := range r.messages {
		if m.To == to {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeMessageRepo) MarkRead(ctx context.Context, id common.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[id]
	if !ok {
		return common.NewError(common.CodeNotFound, "message not found", nil)
	}
	m.Read = true
	return nil
}

func (r *fakeMessageRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}

type sentMail struct {
	to      string
	subject string
	body    string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: htmlBody})
	return nil
}

func (m *fakeMailer) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *fakeMailer) lastSent() (sentMail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentMail{}, false
	}
	return m.sent[len(m.sent)-1], true
}

type fakeVerifier struct {
	identity *federated.Identity
	err      error
}

func (v *fakeVerifier) Verify(ctx context.Context, idToken string) (*federated.Identity, error) {
	if v.err != nil {
		return nil, v.err
	}
	return v.identity, nil
}

// syncDispatcher runs tasks inline so tests observe side effects without
// sleeping.
type syncDispatcher struct{}

func (syncDispatcher) Dispatch(task func()) { task() }

type fakeFeed struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeFeed) Publish(ctx context.Context, event string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func unixTime(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}
