package application

import (
	"context"
	"time"

	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/common"
)

// Status is the admin workflow axis: a flat reassignable enum, not a
// forward-only machine. Any admin selection is valid from any state.
type Status string

const (
	StatusApplied  Status = "applied"
	StatusReview   Status = "review"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func KnownStatus(s Status) bool {
	switch s {
	case StatusApplied, StatusReview, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

// Decision is the company workflow axis, independent of Status and terminal
// once set. The two axes are never reconciled: a record can be admin-rejected
// and company-approved at the same time, and no resolution rule exists.
type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

type Application struct {
	ID common.UUID `json:"id"`

	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`

	Category    string `json:"category"`
	Subcategory string `json:"subcategory,omitempty"`

	Institution string `json:"institution"`
	Course      string `json:"course"`
	YearOfStudy string `json:"year_of_study"`

	Availability string `json:"availability"`
	Duration     string `json:"duration"`
	CoverLetter  string `json:"cover_letter"`

	CVURL          string `json:"cv_url,omitempty"`
	CoverLetterURL string `json:"cover_letter_url,omitempty"`

	Status          Status   `json:"status"`
	AssignedCompany string   `json:"assigned_company,omitempty"`
	CompanyDecision Decision `json:"company_decision,omitempty"`
	CompanyFeedback string   `json:"company_feedback,omitempty"`

	SubmittedAt time.Time `json:"submitted_at"`
}

type Repository interface {
	Create(ctx context.Context, app Application) (*Application, error)
	GetByID(ctx context.Context, id common.UUID) (*Application, error)
	List(ctx context.Context) ([]Application, error)
	ListByEmail(ctx context.Context, email string) ([]Application, error)
	ListByAssignedCompany(ctx context.Context, companyName string) ([]Application, error)
	UpdateStatus(ctx context.Context, id common.UUID, status Status) (*Application, error)
	AssignCompany(ctx context.Context, id common.UUID, companyName string, status Status) (*Application, error)
	SetCompanyDecision(ctx context.Context, id common.UUID, decision Decision, feedback string) (*Application, error)
}
