package auth

import (
	"context"

	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/common"
)

type CredentialRepository interface {
	Create(ctx context.Context, cred Credential) error
	GetByEmail(ctx context.Context, email string) (*Credential, error)
	UpdateHash(ctx context.Context, userID common.UUID, passwordHash string) error
}

type RefreshTokenRepository interface {
	Store(ctx context.Context, token RefreshToken) error
	GetByToken(ctx context.Context, token string) (*RefreshToken, error)
	Revoke(ctx context.Context, token string, revokedAtUnix int64) error
	RevokeAll(ctx context.Context, userID common.UUID, revokedAtUnix int64) error
	DeleteExpired(ctx context.Context, beforeUnix int64) error
}

type PasswordResetRepository interface {
	Upsert(ctx context.Context, reset PasswordReset) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*PasswordReset, error)
	Delete(ctx context.Context, userID common.UUID) error
	DeleteExpired(ctx context.Context, beforeUnix int64) error
}
