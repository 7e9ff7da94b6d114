package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/common"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/domain/application"
)

type ApplicationRepository struct {
	db *sql.DB
}

func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

const applicationColumns = `id, full_name, email, phone, category, subcategory, institution, course, year_of_study,
	availability, duration, cover_letter, cv_url, cover_letter_url, status, assigned_company, company_decision, company_feedback, submitted_at`

func (r *ApplicationRepository) Create(ctx context.Context, app application.Application) (*application.Application, error) {
	if app.ID == "" {
		app.ID = common.NewUUID()
	}
	if app.SubmittedAt.IsZero() {
		app.SubmittedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO applications (`+applicationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		app.ID, app.FullName, app.Email, app.Phone, app.Category, app.Subcategory, app.Institution, app.Course, app.YearOfStudy,
		app.Availability, app.Duration, app.CoverLetter, app.CVURL, app.CoverLetterURL, app.Status, app.AssignedCompany, app.CompanyDecision, app.CompanyFeedback, app.SubmittedAt)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to create application", err)
	}
	return &app, nil
}

func scanApplication(scanner interface{ Scan(...any) error }) (*application.Application, error) {
	var app application.Application
	var subcategory, cvURL, coverLetterURL, assignedCompany, companyDecision, companyFeedback sql.NullString
	err := scanner.Scan(&app.ID, &app.FullName, &app.Email, &app.Phone, &app.Category, &subcategory, &app.Institution, &app.Course, &app.YearOfStudy,
		&app.Availability, &app.Duration, &app.CoverLetter, &cvURL, &coverLetterURL, &app.Status, &assignedCompany, &companyDecision, &companyFeedback, &app.SubmittedAt)
	if err != nil {
		return nil, err
	}
	app.Subcategory = subcategory.String
	app.CVURL = cvURL.String
	app.CoverLetterURL = coverLetterURL.String
	app.AssignedCompany = assignedCompany.String
	app.CompanyDecision = application.Decision(companyDecision.String)
	app.CompanyFeedback = companyFeedback.String
	app.Status = normalizeStatus(app.Status)
	return &app, nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id common.UUID) (*application.Application, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
	app, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "application not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load application", err)
	}
	return app, nil
}

func (r *ApplicationRepository) List(ctx context.Context) ([]application.Application, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+applicationColumns+` FROM applications ORDER BY submitted_at DESC`)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list applications", err)
	}
	return collectApplications(rows)
}

func (r *ApplicationRepository) ListByEmail(ctx context.Context, email string) ([]application.Application, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE email = $1 ORDER BY submitted_at DESC`, email)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list applications by email", err)
	}
	return collectApplications(rows)
}

func (r *ApplicationRepository) ListByAssignedCompany(ctx context.Context, companyName string) ([]application.Application, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE assigned_company = $1 ORDER BY submitted_at DESC`, companyName)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list assigned applications", err)
	}
	return collectApplications(rows)
}

func collectApplications(rows *sql.Rows) ([]application.Application, error) {
	defer rows.Close()
	var items []application.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan application", err)
		}
		items = append(items, *app)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to read applications", err)
	}
	return items, nil
}

func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id common.UUID, status application.Status) (*application.Application, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE applications SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to update application status", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return nil, common.NewError(common.CodeNotFound, "application not found", nil)
	}
	return r.GetByID(ctx, id)
}

func (r *ApplicationRepository) AssignCompany(ctx context.Context, id common.UUID, companyName string, status application.Status) (*application.Application, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE applications SET assigned_company = $2, status = $3 WHERE id = $1`, id, companyName, status)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to assign application", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return nil, common.NewError(common.CodeNotFound, "application not found", nil)
	}
	return r.GetByID(ctx, id)
}

func (r *ApplicationRepository) SetCompanyDecision(ctx context.Context, id common.UUID, decision application.Decision, feedback string) (*application.Application, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE applications SET company_decision = $2, company_feedback = $3 WHERE id = $1`, id, decision, feedback)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to record company decision", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return nil, common.NewError(common.CodeNotFound, "application not found", nil)
	}
	return r.GetByID(ctx, id)
}

// normalizeStatus folds legacy spellings left by earlier imports into the
// current enum.
func normalizeStatus(status application.Status) application.Status {
	normalized := application.Status(strings.ToLower(strings.TrimSpace(string(status))))
	switch normalized {
	case "pending", "new":
		return application.StatusApplied
	case "reviewed", "in_review", "under_review":
		return application.StatusReview
	default:
		return normalized
	}
}
