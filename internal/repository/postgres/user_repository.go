package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/common"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/domain/user"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `uid, email, name, role, created_at, company_name, industry, location, website, phone, approved`

func (r *UserRepository) Create(ctx context.Context, profile user.Profile) (*user.Profile, error) {
	if profile.UID == "" {
		profile.UID = common.NewUUID()
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		profile.UID, profile.Email, profile.Name, profile.Role, profile.CreatedAt,
		profile.CompanyName, profile.Industry, profile.Location, profile.Website, profile.Phone, profile.Approved)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.NewError(common.CodeConflict, "email already registered", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to create user", err)
	}
	return &profile, nil
}

func scanProfile(scanner interface{ Scan(...any) error }) (*user.Profile, error) {
	var profile user.Profile
	var companyName, industry, location, website, phone sql.NullString
	err := scanner.Scan(&profile.UID, &profile.Email, &profile.Name, &profile.Role, &profile.CreatedAt,
		&companyName, &industry, &location, &website, &phone, &profile.Approved)
	if err != nil {
		return nil, err
	}
	profile.CompanyName = companyName.String
	profile.Industry = industry.String
	profile.Location = location.String
	profile.Website = website.String
	profile.Phone = phone.String
	return &profile, nil
}

func (r *UserRepository) GetByUID(ctx context.Context, uid common.UUID) (*user.Profile, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE uid = $1`, uid)
	profile, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "user not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load user", err)
	}
	return profile, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.Profile, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	profile, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "user not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load user", err)
	}
	return profile, nil
}

func (r *UserRepository) ListByRole(ctx context.Context, role user.Role) ([]user.Profile, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users WHERE role = $1 ORDER BY created_at DESC`, role)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list users", err)
	}
	defer rows.Close()
	var items []user.Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan user", err)
		}
		items = append(items, *profile)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to read users", err)
	}
	return items, nil
}

func (r *UserRepository) SetApproved(ctx context.Context, uid common.UUID, approved bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET approved = $2 WHERE uid = $1`, uid, approved)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to update approval", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return common.NewError(common.CodeNotFound, "user not found", nil)
	}
	return nil
}
