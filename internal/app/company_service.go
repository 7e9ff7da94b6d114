package app

import (
	"context"
	"fmt"

	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/common"
	"github.com/newslinemedia001-bot/newslinetrainingagency/internal/domain/user"
)

// CompanyFilter narrows the admin companies view.
type CompanyFilter string

const (
	CompanyFilterAll      CompanyFilter = "all"
	CompanyFilterPending  CompanyFilter = "pending"
	CompanyFilterApproved CompanyFilter = "approved"
)

type CompanyService struct {
	users  user.Repository
	logger Logger
}

func NewCompanyService(users user.Repository, logger Logger) *CompanyService {
	return &CompanyService{users: users, logger: logger}
}

func (s *CompanyService) ListCompanies(ctx context.Context, filter CompanyFilter) ([]user.Profile, error) {
	companies, err := s.users.ListByRole(ctx, user.RoleCompany)
	if err != nil {
		return nil, err
	}
	switch filter {
	case CompanyFilterAll, "":
		return companies, nil
	case CompanyFilterPending, CompanyFilterApproved:
		want := filter == CompanyFilterApproved
		filtered := make([]user.Profile, 0, len(companies))
		for _, c := range companies {
			if c.Approved == want {
				filtered = append(filtered, c)
			}
		}
		return filtered, nil
	default:
		return nil, common.NewError(common.CodeValidation, fmt.Sprintf("unknown filter %q", filter), nil)
	}
}

// GetCompany resolves a company profile by uid for assignment flows.
func (s *CompanyService) GetCompany(ctx context.Context, uid common.UUID) (*user.Profile, error) {
	profile, err := s.users.GetByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if profile.Role != user.RoleCompany {
		return nil, common.NewError(common.CodeValidation, "profile is not a company", nil)
	}
	return profile, nil
}

// SetApproval flips the company approval gate. Only profiles with the
// company role carry the flag.
func (s *CompanyService) SetApproval(ctx context.Context, uid common.UUID, approved bool) (*user.Profile, error) {
	profile, err := s.users.GetByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if profile.Role != user.RoleCompany {
		return nil, common.NewError(common.CodeValidation, "profile is not a company", nil)
	}
	if err := s.users.SetApproved(ctx, uid, approved); err != nil {
		return nil, err
	}
	if s.logger != nil {
		s.logger.Info(fmt.Sprintf("company approval set uid=%s approved=%t", uid, approved))
	}
	profile.Approved = approved
	return profile, nil
}
