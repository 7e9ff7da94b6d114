package auth

import (
	"time"

	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/common"
)

type Credential struct {
	UserID       common.UUID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type RefreshToken struct {
	ID        common.UUID
	UserID    common.UUID
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// PasswordReset stores only the sha256 of the emailed token.
type PasswordReset struct {
	UserID    common.UUID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}
