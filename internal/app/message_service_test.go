package app

import (
	"context"
	"testing"
	"time"

	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/common"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/domain/user"
)

func newMessageFixture() (*MessageService, *fakeUserRepo, *fakeMessageRepo, *fakeMailer) {
	users := newFakeUserRepo()
	messages := newFakeMessageRepo()
	mail := &fakeMailer{}
	service := NewMessageService(messages, users, mail, syncDispatcher{}, nil)
	return service, users, messages, mail
}

func seedUser(t *testing.T, users *fakeUserRepo, email string, role user.Role) *user.Profile {
	t.Helper()
	profile, err := users.Create(context.Background(), user.Profile{
		UID:       common.NewUUID(),
		Email:     email,
		Name:      "Test User",
		Role:      role,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return profile
}

func TestMessageServiceSend(t *testing.T) {
	service, users, _, mail := newMessageFixture()
	admin := seedUser(t, users, "admin@portal.test", user.RoleAdmin)
	student := seedUser(t, users, "jane@example.com", user.RoleStudent)

	msg, err := service.Send(context.Background(), admin.UID, "jane@example.com", "Placement update", "You have been shortlisted.")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg.To != student.UID || msg.From != admin.UID {
		t.Fatalf("unexpected addressing %+v", msg)
	}
	if msg.Read {
		t.Fatal("new message must be unread")
	}
	sent, ok := mail.lastSent()
	if !ok || sent.to != "jane@example.com" {
		t.Fatalf("expected mirror email to recipient, got %+v", sent)
	}
}

func TestMessageServiceSend_UnregisteredRecipientCreatesNothing(t *testing.T) {
	service, users, messages, mail := newMessageFixture()
	admin := seedUser(t, users, "admin@portal.test", user.RoleAdmin)

	_, err := service.Send(context.Background(), admin.UID, "ghost@example.com", "Hello", "Anyone there?")
	if !common.Is(err, common.CodeRecipientNotRegistered) {
		t.Fatalf("expected recipient-not-registered, got %v", err)
	}
	if messages.count() != 0 {
		t.Fatal("no message record may be created for an unregistered recipient")
	}
	if mail.sentCount() != 0 {
		t.Fatal("no email may be sent for an unregistered recipient")
	}
}

func TestMessageServiceSend_MailFailureDoesNotFailSend(t *testing.T) {
	service, users, messages, mail := newMessageFixture()
	admin := seedUser(t, users, "admin@portal.test", user.RoleAdmin)
	seedUser(t, users, "jane@example.com", user.RoleStudent)
	mail.err = context.DeadlineExceeded

	msg, err := service.Send(context.Background(), admin.UID, "jane@example.com", "Hello", "Body")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := messages.GetByID(context.Background(), msg.ID); err != nil {
		t.Fatalf("message must be stored despite mail failure: %v", err)
	}
}

func TestMessageServiceInboxAndMarkRead(t *testing.T) {
	service, users, _, _ := newMessageFixture()
	admin := seedUser(t, users, "admin@portal.test", user.RoleAdmin)
	student := seedUser(t, users, "jane@example.com", user.RoleStudent)
	other := seedUser(t, users, "someone@example.com", user.RoleStudent)
	ctx := context.Background()

	msg, err := service.Send(ctx, admin.UID, "jane@example.com", "Hello", "Body")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	inbox, err := service.Inbox(ctx, student.UID)
	if err != nil {
		t.Fatalf("inbox: %v", err)
	}
	if len(inbox) != 1 {
		t.Fatalf("expected one message, got %d", len(inbox))
	}

	if err := service.MarkRead(ctx, msg.ID, other.UID); !common.Is(err, common.CodeForbidden) {
		t.Fatalf("expected forbidden for non-recipient, got %v", err)
	}
	if err := service.MarkRead(ctx, msg.ID, student.UID); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	inbox, _ = service.Inbox(ctx, student.UID)
	if !inbox[0].Read {
		t.Fatal("message must be marked read")
	}
}
