package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/common"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/domain/message"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/domain/user"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/integration/mailer"
)

type MessageService struct {
	messages   message.Repository
	users      user.Repository
	mail       mailer.Client
	dispatcher Dispatcher
	logger     Logger
}

func NewMessageService(messages message.Repository, users user.Repository, mail mailer.Client, dispatcher Dispatcher, logger Logger) *MessageService {
	return &MessageService{
		messages:   messages,
		users:      users,
		mail:       mail,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Send delivers a message to the user registered under recipientEmail. The
// recipient lookup is a precondition: no message record is created when the
// email belongs to nobody.
func (s *MessageService) Send(ctx context.Context, from common.UUID, recipientEmail, subject, body string) (*message.Message, error) {
	recipientEmail = strings.ToLower(strings.TrimSpace(recipientEmail))
	if recipientEmail == "" {
		return nil, common.NewError(common.CodeValidation, "recipient email is required", nil)
	}
	if strings.TrimSpace(subject) == "" || strings.TrimSpace(body) == "" {
		return nil, common.NewError(common.CodeValidation, "subject and message are required", nil)
	}
	recipient, err := s.users.GetByEmail(ctx, recipientEmail)
	if err != nil {
		if common.Is(err, common.CodeNotFound) {
			return nil, common.NewError(common.CodeRecipientNotRegistered, "no account registered under this email", nil)
		}
		return nil, err
	}
	msg := message.Message{
		ID:        common.NewUUID(),
		From:      from,
		To:        recipient.UID,
		Subject:   strings.TrimSpace(subject),
		Body:      strings.TrimSpace(body),
		CreatedAt: time.Now().UTC(),
	}
	created, err := s.messages.Create(ctx, msg)
	if err != nil {
		return nil, err
	}
	s.logInfo(fmt.Sprintf("message sent id=%s to=%s", created.ID, recipient.UID))
	s.notifyRecipient(recipientEmail, created.Subject, created.Body)
	return created, nil
}

func (s *MessageService) Inbox(ctx context.Context, to common.UUID) ([]message.Message, error) {
	return s.messages.ListByRecipient(ctx, to)
}

// MarkRead flips the read flag. Only the recipient may do it.
func (s *MessageService) MarkRead(ctx context.Context, id, actor common.UUID) error {
	msg, err := s.messages.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if msg.To != actor {
		return common.NewError(common.CodeForbidden, "message belongs to another user", nil)
	}
	return s.messages.MarkRead(ctx, id)
}

// notifyRecipient mirrors the in-app message to email in the background.
func (s *MessageService) notifyRecipient(email, subject, body string) {
	if s.mail == nil || s.dispatcher == nil {
		return
	}
	s.dispatcher.Dispatch(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.mail.Send(ctx, email, subject, mailer.StudentMessageHTML(subject, body)); err != nil {
			s.logError(fmt.Sprintf("message email failed to=%s: %v", email, err))
		}
	})
}

func (s *MessageService) logInfo(msg string) {
	if s.logger == nil {
		return
	}
	s.logger.Info(msg)
}

func (s *MessageService) logError(msg string) {
	if s.logger == nil {
		return
	}
	s.logger.Error(msg)
}
