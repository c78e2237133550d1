package app

import (
	"context"

	"github.com/neomorfeo/onboardiq/internal/domain"
)

// StaffSeeder creates the owner staff record of a new tenant.
type StaffSeeder struct {
	repo domain.StaffRepository
}

func NewStaffSeeder(repo domain.StaffRepository) *StaffSeeder {
	return &StaffSeeder{repo: repo}
}

// SeedOwner stores the owner. Explicit first and last names win over a
// split of the full name.
func (s *StaffSeeder) SeedOwner(ctx context.Context, tenantID string, owner domain.OwnerContact) (domain.StaffMember, error) {
	first, last := owner.FirstName, owner.LastName
	if first == "" && last == "" {
		first, last = domain.SplitName(owner.FullName)
	}

	member := domain.StaffMember{
		TenantID:  tenantID,
		FirstName: first,
		LastName:  last,
		Email:     owner.Email,
		Phone:     owner.Phone,
		Role:      domain.RoleOwner,
		Active:    true,
	}

	if err := s.repo.CreateOwner(ctx, member); err != nil {
		return domain.StaffMember{}, err
	}
	return member, nil
}
