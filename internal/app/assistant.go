package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/neomorfeo/onboardiq/internal/domain"
)

// TenantContext is the tenant identity a dedicated assistant is built for.
type TenantContext struct {
	TenantID      string
	BusinessName  string
	Category      string
	RoutingSecret string
}

// AssistantProvisioner resolves the voice assistant for a tenant's tier.
type AssistantProvisioner struct {
	platform domain.VoicePlatform
	sharedID string

	mu       sync.Mutex
	verified bool
}

// NewAssistantProvisioner creates a provisioner. sharedID is the
// platform-wide assistant used by every non-top tier.
func NewAssistantProvisioner(platform domain.VoicePlatform, sharedID string) *AssistantProvisioner {
	return &AssistantProvisioner{platform: platform, sharedID: sharedID}
}

// ResolveForTier returns the shared assistant for starter and professional
// tenants and creates a dedicated one for business tenants.
func (p *AssistantProvisioner) ResolveForTier(ctx context.Context, tier domain.Tier, tc TenantContext, catalog []domain.ServiceCatalogEntry) (domain.AssistantAssignment, error) {
	if !domain.TierUsesDedicatedAssistant(tier) {
		if err := p.verifyShared(ctx); err != nil {
			return domain.AssistantAssignment{}, assistantError(tc.TenantID, err)
		}
		return domain.AssistantAssignment{Kind: domain.AssistantShared, AssistantID: p.sharedID}, nil
	}

	prompt := domain.BuildSystemPrompt(domain.PromptContext{
		BusinessName:  tc.BusinessName,
		Category:      tc.Category,
		RoutingSecret: tc.RoutingSecret,
		Catalog:       catalog,
	})

	id, err := p.platform.CreateAssistant(ctx, domain.AssistantSpec{
		TenantID:     tc.TenantID,
		Name:         tc.BusinessName + " Receptionist",
		SystemPrompt: prompt,
		FirstMessage: fmt.Sprintf("Thanks for calling %s! How can I help you today?", tc.BusinessName),
	})
	if err != nil {
		return domain.AssistantAssignment{}, assistantError(tc.TenantID, err)
	}
	return domain.AssistantAssignment{Kind: domain.AssistantDedicated, AssistantID: id, SystemPrompt: prompt}, nil
}

// verifyShared confirms the shared assistant exists once per process.
// Only success is cached.
func (p *AssistantProvisioner) verifyShared(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.verified {
		return nil
	}
	if p.sharedID == "" {
		return errors.New("shared assistant id is not configured")
	}
	if err := p.platform.GetAssistant(ctx, p.sharedID); err != nil {
		return fmt.Errorf("verifying shared assistant %s: %w", p.sharedID, err)
	}
	p.verified = true
	return nil
}

func assistantError(tenantID string, err error) error {
	aErr := &domain.AssistantError{TenantID: tenantID, Err: err}
	var platErr *domain.PlatformError
	if errors.As(err, &platErr) {
		aErr.StatusCode = platErr.StatusCode
		aErr.Body = platErr.Body
	}
	return aErr
}
