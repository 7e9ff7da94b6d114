package user

import (
	"context"
	"time"

	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/common"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleCompany Role = "company"
	RoleAdmin   Role = "admin"
)

func ParseRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleStudent, RoleCompany, RoleAdmin:
		return Role(value), true
	default:
		return "", false
	}
}

// Home is the role's own landing path; the authorization guard redirects
// unauthorized-but-authenticated users here, never back to sign-in.
func (r Role) Home() string {
	switch r {
	case RoleAdmin:
		return "/admin"
	case RoleCompany:
		return "/company"
	default:
		return "/dashboard"
	}
}

// Profile is the application-owned record behind an identity. Role is fixed
// at creation. The company fields and Approved are meaningful only when
// Role is RoleCompany; an unapproved company passes the role guard but is
// held at the pending-approval gate.
type Profile struct {
	UID       common.UUID `json:"uid"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	Role      Role        `json:"role"`
	CreatedAt time.Time   `json:"created_at"`

	CompanyName string `json:"company_name,omitempty"`
	Industry    string `json:"industry,omitempty"`
	Location    string `json:"location,omitempty"`
	Website     string `json:"website,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Approved    bool   `json:"approved,omitempty"`
}

// DisplayCompanyName is what assignment writes into an application:
// CompanyName when present, the contact name otherwise.
func (p Profile) DisplayCompanyName() string {
	if p.CompanyName != "" {
		return p.CompanyName
	}
	return p.Name
}

type CompanyData struct {
	CompanyName string
	Industry    string
	Location    string
	Website     string
	Phone       string
}

type Repository interface {
	Create(ctx context.Context, profile Profile) (*Profile, error)
	GetByUID(ctx context.Context, uid common.UUID) (*Profile, error)
	GetByEmail(ctx context.Context, email string) (*Profile, error)
	ListByRole(ctx context.Context, role Role) ([]Profile, error)
	SetApproved(ctx context.Context, uid common.UUID, approved bool) error
}
