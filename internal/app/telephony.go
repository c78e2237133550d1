package app

import (
	"context"
	"errors"

	"github.com/neomorfeo/onboardiq/internal/domain"
)

// TelephonyProvisioner gives a tenant its one phone assignment. A stored
// assignment is returned as-is, so replays never buy a second number.
type TelephonyProvisioner struct {
	platform domain.VoicePlatform
	repo     domain.PhoneAssignmentRepository
}

func NewTelephonyProvisioner(platform domain.VoicePlatform, repo domain.PhoneAssignmentRepository) *TelephonyProvisioner {
	return &TelephonyProvisioner{platform: platform, repo: repo}
}

// ProvisionNew buys a number on the voice platform. Every failure is a
// *domain.TelephonyError. When the number was leased but could not be
// recorded, the leased assignment is returned with the error.
func (p *TelephonyProvisioner) ProvisionNew(ctx context.Context, tenantID, displayName string) (domain.PhoneNumberAssignment, error) {
	if a, ok, err := p.existing(ctx, tenantID); err != nil || ok {
		return a, err
	}

	num, err := p.platform.BuyPhoneNumber(ctx, domain.PhoneNumberSpec{TenantID: tenantID, Name: displayName})
	if err != nil {
		return domain.PhoneNumberAssignment{}, telephonyError(tenantID, err)
	}

	a := domain.PhoneNumberAssignment{
		TenantID:      tenantID,
		Strategy:      domain.StrategyNewNumber,
		PhoneNumberID: num.ID,
		Number:        num.Number,
	}
	if err := p.repo.SavePhoneAssignment(ctx, a); err != nil {
		tErr := telephonyError(tenantID, err)
		tErr.PhoneNumberID = num.ID
		return a, tErr
	}
	return a, nil
}

// AttachExisting records the tenant's own number and forwarding rules. The
// number is not checked for reachability.
func (p *TelephonyProvisioner) AttachExisting(ctx context.Context, tenantID, number string, rules domain.ForwardingRules) (domain.PhoneNumberAssignment, error) {
	if a, ok, err := p.existing(ctx, tenantID); err != nil || ok {
		return a, err
	}

	a := domain.PhoneNumberAssignment{
		TenantID:       tenantID,
		Strategy:       domain.StrategyUseExisting,
		ExistingNumber: number,
		Forwarding:     rules,
	}
	if err := p.repo.SavePhoneAssignment(ctx, a); err != nil {
		return domain.PhoneNumberAssignment{}, telephonyError(tenantID, err)
	}
	return a, nil
}

func (p *TelephonyProvisioner) existing(ctx context.Context, tenantID string) (domain.PhoneNumberAssignment, bool, error) {
	a, ok, err := p.repo.GetPhoneAssignment(ctx, tenantID)
	if err != nil {
		return domain.PhoneNumberAssignment{}, false, telephonyError(tenantID, err)
	}
	return a, ok, nil
}

func telephonyError(tenantID string, err error) *domain.TelephonyError {
	tErr := &domain.TelephonyError{TenantID: tenantID, Err: err}
	var platErr *domain.PlatformError
	if errors.As(err, &platErr) {
		tErr.StatusCode = platErr.StatusCode
		tErr.Body = platErr.Body
	}
	return tErr
}
