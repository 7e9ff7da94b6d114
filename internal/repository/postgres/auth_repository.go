package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/common"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/domain/auth"
)

type CredentialRepository struct {
	db *sql.DB
}

func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

func (r *CredentialRepository) Create(ctx context.Context, cred auth.Credential) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO credentials (user_id, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		cred.UserID, cred.Email, cred.PasswordHash, cred.CreatedAt, cred.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return common.NewError(common.CodeConflict, "email already registered", err)
		}
		return common.NewError(common.CodeInternal, "failed to create credential", err)
	}
	return nil
}

func (r *CredentialRepository) GetByEmail(ctx context.Context, email string) (*auth.Credential, error) {
	row := r.db.QueryRowContext(ctx, `SELECT user_id, email, password_hash, created_at, updated_at FROM credentials WHERE email = $1`, email)
	var cred auth.Credential
	if err := row.Scan(&cred.UserID, &cred.Email, &cred.PasswordHash, &cred.CreatedAt, &cred.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "credential not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load credential", err)
	}
	return &cred, nil
}

func (r *CredentialRepository) UpdateHash(ctx context.Context, userID common.UUID, passwordHash string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE credentials SET password_hash = $2, updated_at = $3 WHERE user_id = $1`,
		userID, passwordHash, time.Now().UTC())
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to update credential", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return common.NewError(common.CodeNotFound, "credential not found", nil)
	}
	return nil
}

type RefreshTokenRepository struct {
	db *sql.DB
}

func NewRefreshTokenRepository(db *sql.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

func (r *RefreshTokenRepository) Store(ctx context.Context, token auth.RefreshToken) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO refresh_tokens (id, user_id, token, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		token.ID, token.UserID, token.Token, token.ExpiresAt, token.CreatedAt)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to store refresh token", err)
	}
	return nil
}

func (r *RefreshTokenRepository) GetByToken(ctx context.Context, token string) (*auth.RefreshToken, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, user_id, token, expires_at, created_at, revoked_at FROM refresh_tokens WHERE token = $1`, token)
	var stored auth.RefreshToken
	var revokedAt sql.NullTime
	if err := row.Scan(&stored.ID, &stored.UserID, &stored.Token, &stored.ExpiresAt, &stored.CreatedAt, &revokedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "refresh token not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load refresh token", err)
	}
	if revokedAt.Valid {
		at := revokedAt.Time
		stored.RevokedAt = &at
	}
	return &stored, nil
}

func (r *RefreshTokenRepository) Revoke(ctx context.Context, token string, revokedAtUnix int64) error {
	result, err := r.db.ExecContext(ctx, `UPDATE refresh_tokens SET revoked_at = $2 WHERE token = $1 AND revoked_at IS NULL`,
		token, time.Unix(revokedAtUnix, 0).UTC())
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to revoke refresh token", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return common.NewError(common.CodeNotFound, "refresh token not found", nil)
	}
	return nil
}

func (r *RefreshTokenRepository) RevokeAll(ctx context.Context, userID common.UUID, revokedAtUnix int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE refresh_tokens SET revoked_at = $2 WHERE user_id = $1 AND revoked_at IS NULL`,
		userID, time.Unix(revokedAtUnix, 0).UTC())
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to revoke refresh tokens", err)
	}
	return nil
}

func (r *RefreshTokenRepository) DeleteExpired(ctx context.Context, beforeUnix int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE expires_at < $1`, time.Unix(beforeUnix, 0).UTC())
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to delete expired refresh tokens", err)
	}
	return nil
}

type PasswordResetRepository struct {
	db *sql.DB
}

func NewPasswordResetRepository(db *sql.DB) *PasswordResetRepository {
	return &PasswordResetRepository{db: db}
}

func (r *PasswordResetRepository) Upsert(ctx context.Context, reset auth.PasswordReset) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO password_resets (user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET token_hash = EXCLUDED.token_hash, expires_at = EXCLUDED.expires_at, created_at = EXCLUDED.created_at`,
		reset.UserID, reset.TokenHash, reset.ExpiresAt, reset.CreatedAt)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to store password reset", err)
	}
	return nil
}

func (r *PasswordResetRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*auth.PasswordReset, error) {
	row := r.db.QueryRowContext(ctx, `SELECT user_id, token_hash, expires_at, created_at FROM password_resets WHERE token_hash = $1`, tokenHash)
	var reset auth.PasswordReset
	if err := row.Scan(&reset.UserID, &reset.TokenHash, &reset.ExpiresAt, &reset.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "password reset not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load password reset", err)
	}
	return &reset, nil
}

func (r *PasswordResetRepository) Delete(ctx context.Context, userID common.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM password_resets WHERE user_id = $1`, userID)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to delete password reset", err)
	}
	return nil
}

func (r *PasswordResetRepository) DeleteExpired(ctx context.Context, beforeUnix int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM password_resets WHERE expires_at < $1`, time.Unix(beforeUnix, 0).UTC())
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to delete expired password resets", err)
	}
	return nil
}
