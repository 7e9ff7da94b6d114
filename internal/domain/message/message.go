package message

import (
	"context"
	"time"

	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/common"
)

// Message is immutable once created except for the recipient's read flag.
type Message struct {
	ID        common.UUID `json:"id"`
	From      common.UUID `json:"from"`
	To        common.UUID `json:"to"`
	Subject   string      `json:"subject"`
	Body      string      `json:"body"`
	Read      bool        `json:"read"`
	CreatedAt time.Time   `json:"created_at"`
}

type Repository interface {
	Create(ctx context.Context, msg Message) (*Message, error)
	GetByID(ctx context.Context, id common.UUID) (*Message, error)
	ListByRecipient(ctx context.Context, to common.UUID) ([]Message, error)
	MarkRead(ctx context.Context, id common.UUID) error
}
