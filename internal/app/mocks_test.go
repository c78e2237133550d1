package app_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/neomorfeo/onboardiq/internal/domain"
)

// --- Mocks ---

// mockStore is an in-memory domain.Store with the same uniqueness and
// idempotency rules as the SQLite adapter.
type mockStore struct {
	mu          sync.Mutex
	tenants     map[string]domain.Tenant
	services    map[string][]domain.ServiceCatalogEntry
	owners      map[string]domain.StaffMember
	phones      map[string]domain.PhoneNumberAssignment
	records     map[string]domain.ProvisioningRecord
	servicesErr error
	ownerErr    error
	updateErr   error
	phoneErr    error
	phoneGetErr error
}

func newMockStore() *mockStore {
	return &mockStore{
		tenants:  make(map[string]domain.Tenant),
		services: make(map[string][]domain.ServiceCatalogEntry),
		owners:   make(map[string]domain.StaffMember),
		phones:   make(map[string]domain.PhoneNumberAssignment),
		records:  make(map[string]domain.ProvisioningRecord),
	}
}

func (m *mockStore) Create(_ context.Context, t domain.Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.tenants {
		if existing.Email == t.Email {
			return &domain.DuplicateEmailError{Email: t.Email}
		}
		if existing.Slug == t.Slug {
			return &domain.DuplicateSlugError{Slug: t.Slug}
		}
	}
	m.tenants[t.ID] = t
	return nil
}

func (m *mockStore) GetByID(_ context.Context, id string) (domain.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tenants[id]
	if !ok {
		return domain.Tenant{}, domain.ErrTenantNotFound
	}
	return t, nil
}

func (m *mockStore) GetBySlug(_ context.Context, slug string) (domain.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tenants {
		if t.Slug == slug {
			return t, nil
		}
	}
	return domain.Tenant{}, domain.ErrTenantNotFound
}

func (m *mockStore) GetByEmail(_ context.Context, email string) (domain.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tenants {
		if t.Email == strings.ToLower(email) {
			return t, nil
		}
	}
	return domain.Tenant{}, domain.ErrTenantNotFound
}

func (m *mockStore) List(_ context.Context, _ domain.ListFilter) ([]domain.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Tenant, 0, len(m.tenants))
	for _, t := range m.tenants {
		out = append(out, t)
	}
	return out, nil
}

func (m *mockStore) Update(_ context.Context, t domain.Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.tenants[t.ID]; !ok {
		return domain.ErrTenantNotFound
	}
	m.tenants[t.ID] = t
	return nil
}

func (m *mockStore) CreateServices(_ context.Context, tenantID string, entries []domain.ServiceCatalogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.servicesErr != nil {
		return m.servicesErr
	}
	if m.tenants[tenantID].Status != domain.StatusPending {
		return domain.ErrTenantNotPending
	}
	if len(m.services[tenantID]) > 0 {
		return nil
	}
	for i, e := range entries {
		e.ID = fmt.Sprintf("svc-%d", i)
		m.services[tenantID] = append(m.services[tenantID], e)
	}
	return nil
}

func (m *mockStore) ListServices(_ context.Context, tenantID string) ([]domain.ServiceCatalogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.services[tenantID], nil
}

func (m *mockStore) CreateOwner(_ context.Context, member domain.StaffMember) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ownerErr != nil {
		return m.ownerErr
	}
	if _, ok := m.owners[member.TenantID]; !ok {
		m.owners[member.TenantID] = member
	}
	return nil
}

func (m *mockStore) SavePhoneAssignment(_ context.Context, a domain.PhoneNumberAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phoneErr != nil {
		return m.phoneErr
	}
	m.phones[a.TenantID] = a
	return nil
}

func (m *mockStore) GetPhoneAssignment(_ context.Context, tenantID string) (domain.PhoneNumberAssignment, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phoneGetErr != nil {
		return domain.PhoneNumberAssignment{}, false, m.phoneGetErr
	}
	a, ok := m.phones[tenantID]
	return a, ok, nil
}

func (m *mockStore) SaveProvisioning(_ context.Context, rec domain.ProvisioningRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.TenantID] = rec
	return nil
}

func (m *mockStore) GetProvisioning(_ context.Context, tenantID string) (domain.ProvisioningRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[tenantID]
	if !ok {
		return domain.ProvisioningRecord{}, domain.ErrTenantNotFound
	}
	return rec, nil
}

func (m *mockStore) onlyTenant() domain.Tenant {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tenants {
		return t
	}
	return domain.Tenant{}
}

type mockGateway struct {
	customers  int
	setups     []string
	declineMsg string
}

func (m *mockGateway) CreateCustomer(_ context.Context, who domain.CustomerIdentity) (string, error) {
	m.customers++
	return fmt.Sprintf("cus_%d", m.customers), nil
}

func (m *mockGateway) ConfirmSetup(_ context.Context, customerRef, paymentMethodRef string) error {
	if m.declineMsg != "" {
		return &domain.PaymentError{Message: m.declineMsg}
	}
	m.setups = append(m.setups, customerRef+":"+paymentMethodRef)
	return nil
}

type mockPlatform struct {
	mu         sync.Mutex
	numbers    int
	assistants []domain.AssistantSpec
	gets       int
	links      map[string]string
	buyErr     error
	createErr  error
	getErr     error
	linkErr    error
	blockOnBuy bool
}

func newMockPlatform() *mockPlatform {
	return &mockPlatform{links: make(map[string]string)}
}

func (m *mockPlatform) BuyPhoneNumber(ctx context.Context, spec domain.PhoneNumberSpec) (domain.PlatformNumber, error) {
	if m.blockOnBuy {
		<-ctx.Done()
		return domain.PlatformNumber{}, ctx.Err()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.buyErr != nil {
		return domain.PlatformNumber{}, m.buyErr
	}
	m.numbers++
	return domain.PlatformNumber{
		ID:     fmt.Sprintf("pn-%d", m.numbers),
		Number: fmt.Sprintf("+1555555%04d", m.numbers),
	}, nil
}

func (m *mockPlatform) CreateAssistant(_ context.Context, spec domain.AssistantSpec) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return "", m.createErr
	}
	m.assistants = append(m.assistants, spec)
	return fmt.Sprintf("asst-%d", len(m.assistants)), nil
}

func (m *mockPlatform) GetAssistant(_ context.Context, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	return m.getErr
}

func (m *mockPlatform) LinkAssistant(_ context.Context, phoneNumberID, assistantID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.linkErr != nil {
		return m.linkErr
	}
	m.links[phoneNumberID] = assistantID
	return nil
}

type mockNotifier struct {
	mu   sync.Mutex
	sent []domain.WelcomeMessage
	err  error
}

func (m *mockNotifier) SendWelcome(_ context.Context, msg domain.WelcomeMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

var errBoom = errors.New("boom")
