package app

import (
	"context"

	"github.com/neomorfeo/onboardiq/internal/domain"
)

// CatalogSeeder persists a tenant's default service catalog.
type CatalogSeeder struct {
	repo domain.CatalogRepository
}

func NewCatalogSeeder(repo domain.CatalogRepository) *CatalogSeeder {
	return &CatalogSeeder{repo: repo}
}

// SeedDefaultCatalog stores the catalog for category and returns it. When a
// catalog already exists it is returned unchanged. The derived catalog is
// returned alongside any persistence error so callers can still use it.
func (s *CatalogSeeder) SeedDefaultCatalog(ctx context.Context, tenantID, category string) ([]domain.ServiceCatalogEntry, error) {
	entries := domain.DefaultCatalog(category)
	for i := range entries {
		entries[i].TenantID = tenantID
	}

	if err := s.repo.CreateServices(ctx, tenantID, entries); err != nil {
		return entries, err
	}

	stored, err := s.repo.ListServices(ctx, tenantID)
	if err != nil || len(stored) == 0 {
		return entries, err
	}
	return stored, nil
}
