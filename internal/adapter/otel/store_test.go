package otel_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	adapter "github.com/neomorfeo/onboardiq/internal/adapter/otel"
	"github.com/neomorfeo/onboardiq/internal/domain"
)

// --- Test tracer setup ---

func setupTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return exporter
}

// --- Mock store ---

// mockStore implements the methods exercised below; the embedded
// interface panics on anything else.
type mockStore struct {
	domain.Store
	tenants map[string]domain.Tenant
	phones  map[string]domain.PhoneNumberAssignment
}

func newMockStore() *mockStore {
	return &mockStore{
		tenants: make(map[string]domain.Tenant),
		phones:  make(map[string]domain.PhoneNumberAssignment),
	}
}

func (m *mockStore) Create(_ context.Context, t domain.Tenant) error {
	m.tenants[t.ID] = t
	return nil
}

func (m *mockStore) GetByID(_ context.Context, id string) (domain.Tenant, error) {
	t, ok := m.tenants[id]
	if !ok {
		return domain.Tenant{}, domain.ErrTenantNotFound
	}
	return t, nil
}

func (m *mockStore) GetByEmail(_ context.Context, email string) (domain.Tenant, error) {
	for _, t := range m.tenants {
		if t.Email == email {
			return t, nil
		}
	}
	return domain.Tenant{}, domain.ErrTenantNotFound
}

func (m *mockStore) List(_ context.Context, _ domain.ListFilter) ([]domain.Tenant, error) {
	out := make([]domain.Tenant, 0, len(m.tenants))
	for _, t := range m.tenants {
		out = append(out, t)
	}
	return out, nil
}

func (m *mockStore) CreateServices(_ context.Context, tenantID string, _ []domain.ServiceCatalogEntry) error {
	if _, ok := m.tenants[tenantID]; !ok {
		return domain.ErrTenantNotFound
	}
	return nil
}

func (m *mockStore) GetPhoneAssignment(_ context.Context, tenantID string) (domain.PhoneNumberAssignment, bool, error) {
	a, ok := m.phones[tenantID]
	return a, ok, nil
}

func newTenant(id string) domain.Tenant {
	return domain.NewTenant(domain.TenantAttrs{
		ID:    id,
		Name:  "Glow Nails",
		Slug:  "glow-nails",
		Email: "maya@glow.example",
		Tier:  domain.TierStarter,
		Flow:  domain.FlowRapidSetup,
	}, time.Now())
}

// --- Tests ---

func TestTracingStore_Create_RecordsSpan(t *testing.T) {
	exporter := setupTestTracer(t)
	store := adapter.NewTracingStore(newMockStore())

	if err := store.Create(context.Background(), newTenant("t-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Name != "TenantRepository.Create" {
		t.Errorf("span name = %q, want %q", spans[0].Name, "TenantRepository.Create")
	}

	assertAttribute(t, spans[0], "tenant.id", "t-1")
	assertAttribute(t, spans[0], "tenant.slug", "glow-nails")
	assertAttribute(t, spans[0], "tenant.tier", "starter")
}

func TestTracingStore_GetByID_RecordsError(t *testing.T) {
	exporter := setupTestTracer(t)
	store := adapter.NewTracingStore(newMockStore())

	_, err := store.GetByID(context.Background(), "nonexistent")
	if !errors.Is(err, domain.ErrTenantNotFound) {
		t.Fatalf("expected ErrTenantNotFound, got %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("span status = %v, want %v", spans[0].Status.Code, codes.Error)
	}
	if len(spans[0].Events) == 0 {
		t.Error("expected error event on span")
	}
}

func TestTracingStore_GetByEmail_OmitsAddress(t *testing.T) {
	exporter := setupTestTracer(t)
	inner := newMockStore()
	inner.tenants["t-1"] = newTenant("t-1")
	store := adapter.NewTracingStore(inner)

	if _, err := store.GetByEmail(context.Background(), "maya@glow.example"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	for _, attr := range spans[0].Attributes {
		if attr.Value.Emit() == "maya@glow.example" {
			t.Errorf("attribute %q carries the email address", attr.Key)
		}
	}
}

func TestTracingStore_List_RecordsResultCount(t *testing.T) {
	exporter := setupTestTracer(t)
	inner := newMockStore()
	inner.tenants["t-1"] = newTenant("t-1")
	inner.tenants["t-2"] = newTenant("t-2")
	store := adapter.NewTracingStore(inner)

	status := domain.StatusTrialing
	tenants, err := store.List(context.Background(), domain.ListFilter{Status: &status, Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tenants) != 2 {
		t.Errorf("got %d tenants, want 2", len(tenants))
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	assertAttribute(t, spans[0], "result.count", "2")
	assertAttribute(t, spans[0], "filter.status", "trialing")
	assertAttribute(t, spans[0], "filter.limit", "10")
}

func TestTracingStore_CreateServices_RecordsCount(t *testing.T) {
	exporter := setupTestTracer(t)
	inner := newMockStore()
	inner.tenants["t-1"] = newTenant("t-1")
	store := adapter.NewTracingStore(inner)

	entries := domain.DefaultCatalog("nail salon")
	if err := store.CreateServices(context.Background(), "t-1", entries); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Name != "CatalogRepository.CreateServices" {
		t.Errorf("span name = %q, want %q", spans[0].Name, "CatalogRepository.CreateServices")
	}
	assertAttribute(t, spans[0], "tenant.id", "t-1")
}

func TestTracingStore_GetPhoneAssignment_RecordsFound(t *testing.T) {
	exporter := setupTestTracer(t)
	inner := newMockStore()
	inner.phones["t-1"] = domain.PhoneNumberAssignment{TenantID: "t-1", Strategy: domain.StrategyNewNumber}
	store := adapter.NewTracingStore(inner)

	_, ok, err := store.GetPhoneAssignment(context.Background(), "t-1")
	if err != nil || !ok {
		t.Fatalf("GetPhoneAssignment = (%v, %v), want found", ok, err)
	}
	_, ok, err = store.GetPhoneAssignment(context.Background(), "t-2")
	if err != nil || ok {
		t.Fatalf("GetPhoneAssignment = (%v, %v), want not found", ok, err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}
	assertAttribute(t, spans[0], "result.found", "true")
	assertAttribute(t, spans[1], "result.found", "false")
}

// assertAttribute checks that a span has an attribute with the given key and string value.
func assertAttribute(t *testing.T, span tracetest.SpanStub, key, want string) {
	t.Helper()
	for _, attr := range span.Attributes {
		if string(attr.Key) == key {
			got := attr.Value.Emit()
			if got != want {
				t.Errorf("attribute %q = %q, want %q", key, got, want)
			}
			return
		}
	}
	t.Errorf("attribute %q not found on span %q", key, span.Name)
}
