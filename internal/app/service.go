package app

import (
	"context"

	"github.com/neomorfeo/onboardiq/internal/domain"
)

// TenantService answers read-only queries about tenants and their
// provisioning outcome.
type TenantService struct {
	store domain.Store
}

// NewTenantService creates a service over the given store.
func NewTenantService(store domain.Store) *TenantService {
	return &TenantService{store: store}
}

// GetByID returns a tenant by its unique identifier.
func (s *TenantService) GetByID(ctx context.Context, id string) (domain.Tenant, error) {
	return s.store.GetByID(ctx, id)
}

// GetBySlug returns the tenant owning slug.
func (s *TenantService) GetBySlug(ctx context.Context, slug string) (domain.Tenant, error) {
	return s.store.GetBySlug(ctx, slug)
}

// List returns tenants matching the given filter.
func (s *TenantService) List(ctx context.Context, filter domain.ListFilter) ([]domain.Tenant, error) {
	return s.store.List(ctx, filter)
}

// Provisioning returns the stored result of the tenant's last saga run.
func (s *TenantService) Provisioning(ctx context.Context, tenantID string) (domain.ProvisioningRecord, error) {
	return s.store.GetProvisioning(ctx, tenantID)
}

// Services returns the tenant's service catalog. Unknown tenants yield
// domain.ErrTenantNotFound rather than an empty catalog.
func (s *TenantService) Services(ctx context.Context, tenantID string) ([]domain.ServiceCatalogEntry, error) {
	if _, err := s.store.GetByID(ctx, tenantID); err != nil {
		return nil, err
	}
	return s.store.ListServices(ctx, tenantID)
}
