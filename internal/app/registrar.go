package app

import (
	"context"
	"fmt"
	"time"

	"github.com/neomorfeo/onboardiq/internal/domain"
)

// RegisterAttrs is the business data needed to create a tenant row.
type RegisterAttrs struct {
	Name        string
	Email       string
	Phone       string
	Category    string
	Tier        domain.Tier
	Flow        domain.Flow
	CustomerRef string
}

// FinalizeUpdates carries the resources resolved by the saga.
type FinalizeUpdates struct {
	PhoneNumber   string
	PhoneNumberID string
	ExistingPhone string
	AssistantID   string
	AssistantKind domain.AssistantKind
	CustomerRef   string
}

// TenantRegistrar creates tenant rows and moves them through the
// provisioning lifecycle.
type TenantRegistrar struct {
	repo      domain.TenantRepository
	validator domain.TransitionValidator
	slugs     *domain.SlugGenerator
	now       func() time.Time
}

// NewTenantRegistrar creates a registrar with the given adapters.
func NewTenantRegistrar(repo domain.TenantRepository, validator domain.TransitionValidator, now func() time.Time) *TenantRegistrar {
	if now == nil {
		now = time.Now
	}
	return &TenantRegistrar{
		repo:      repo,
		validator: validator,
		slugs:     domain.NewSlugGenerator(now),
		now:       now,
	}
}

// Register inserts a pending tenant. Unique violations surface as
// *domain.DuplicateEmailError or *domain.DuplicateSlugError.
func (r *TenantRegistrar) Register(ctx context.Context, attrs RegisterAttrs) (domain.Tenant, error) {
	now := r.now()

	id, err := newTenantID(now)
	if err != nil {
		return domain.Tenant{}, fmt.Errorf("generating tenant id: %w", err)
	}
	cancelToken, err := generateToken(32)
	if err != nil {
		return domain.Tenant{}, fmt.Errorf("generating cancellation token: %w", err)
	}
	routingSecret, err := generateToken(16)
	if err != nil {
		return domain.Tenant{}, fmt.Errorf("generating routing secret: %w", err)
	}

	tenant := domain.NewTenant(domain.TenantAttrs{
		ID:            id,
		Name:          attrs.Name,
		Slug:          r.slugs.Next(attrs.Name),
		Email:         attrs.Email,
		Phone:         attrs.Phone,
		Category:      attrs.Category,
		Tier:          attrs.Tier,
		Flow:          attrs.Flow,
		CancelToken:   cancelToken,
		RoutingSecret: routingSecret,
		CustomerRef:   attrs.CustomerRef,
	}, now)

	if err := r.repo.Create(ctx, tenant); err != nil {
		return domain.Tenant{}, err
	}
	return tenant, nil
}

// Finalize stores the resolved resources and moves the tenant to trialing.
func (r *TenantRegistrar) Finalize(ctx context.Context, tenantID string, updates FinalizeUpdates) (domain.Tenant, error) {
	tenant, err := r.repo.GetByID(ctx, tenantID)
	if err != nil {
		return domain.Tenant{}, err
	}

	status, err := r.validator.Apply(ctx, tenant.Status, domain.EventProvisionComplete)
	if err != nil {
		return domain.Tenant{}, err
	}

	tenant.Status = status
	tenant.PhoneNumber = updates.PhoneNumber
	tenant.PhoneNumberID = updates.PhoneNumberID
	tenant.ExistingPhone = updates.ExistingPhone
	tenant.AssistantID = updates.AssistantID
	tenant.AssistantKind = updates.AssistantKind
	if updates.CustomerRef != "" {
		tenant.CustomerRef = updates.CustomerRef
	}
	tenant.UpdatedAt = r.now().UTC()

	if err := r.repo.Update(ctx, tenant); err != nil {
		return domain.Tenant{}, err
	}
	return tenant, nil
}

// MarkFailed moves a pending tenant to failed. The row is kept for
// manual remediation.
func (r *TenantRegistrar) MarkFailed(ctx context.Context, tenantID string) error {
	tenant, err := r.repo.GetByID(ctx, tenantID)
	if err != nil {
		return err
	}

	status, err := r.validator.Apply(ctx, tenant.Status, domain.EventProvisionFailed)
	if err != nil {
		return err
	}

	tenant.Status = status
	tenant.UpdatedAt = r.now().UTC()
	return r.repo.Update(ctx, tenant)
}
