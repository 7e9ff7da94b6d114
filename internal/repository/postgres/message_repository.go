package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/common"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/domain/message"
)

type MessageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, msg message.Message) (*message.Message, error) {
	if msg.ID == "" {
		msg.ID = common.NewUUID()
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO messages (id, from_uid, to_uid, subject, body, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		msg.ID, msg.From, msg.To, msg.Subject, msg.Body, msg.Read, msg.CreatedAt)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to create message", err)
	}
	return &msg, nil
}

func (r *MessageRepository) GetByID(ctx context.Context, id common.UUID) (*message.Message, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, from_uid, to_uid, subject, body, read, created_at FROM messages WHERE id = $1`, id)
	var msg message.Message
	if err := row.Scan(&msg.ID, &msg.From, &msg.To, &msg.Subject, &msg.Body, &msg.Read, &msg.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "message not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load message", err)
	}
	return &msg, nil
}

func (r *MessageRepository) ListByRecipient(ctx context.Context, to common.UUID) ([]message.Message, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, from_uid, to_uid, subject, body, read, created_at FROM messages WHERE to_uid = $1 ORDER BY created_at DESC`, to)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list messages", err)
	}
	defer rows.Close()
	var items []message.Message
	for rows.Next() {
		var msg message.Message
		if err := rows.Scan(&msg.ID, &msg.From, &msg.To, &msg.Subject, &msg.Body, &msg.Read, &msg.CreatedAt); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan message", err)
		}
		items = append(items, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to read messages", err)
	}
	return items, nil
}

func (r *MessageRepository) MarkRead(ctx context.Context, id common.UUID) error {
	result, err := r.db.ExecContext(ctx, `UPDATE messages SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to mark message read", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return common.NewError(common.CodeNotFound, "message not found", nil)
	}
	return nil
}
