package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/onboardiq/internal/domain"
)

// TracingStore wraps a domain.Store with OpenTelemetry tracing.
// Each method creates a span with semantic attributes and records errors.
type TracingStore struct {
	next   domain.Store
	tracer trace.Tracer
}

// Compile-time check: TracingStore implements domain.Store.
var _ domain.Store = (*TracingStore)(nil)

// NewTracingStore creates a tracing decorator around the given store.
func NewTracingStore(next domain.Store) *TracingStore {
	return &TracingStore{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (s *TracingStore) Create(ctx context.Context, tenant domain.Tenant) error {
	return tracedErr(ctx, s.tracer, "TenantRepository.Create", []attribute.KeyValue{
		attribute.String("tenant.id", tenant.ID),
		attribute.String("tenant.slug", tenant.Slug),
		attribute.String("tenant.tier", string(tenant.Tier)),
	}, func(ctx context.Context) error {
		return s.next.Create(ctx, tenant)
	})
}

func (s *TracingStore) GetByID(ctx context.Context, id string) (domain.Tenant, error) {
	return traced(ctx, s.tracer, "TenantRepository.GetByID", tenantAttr(id), func(ctx context.Context) (domain.Tenant, error) {
		return s.next.GetByID(ctx, id)
	})
}

func (s *TracingStore) GetBySlug(ctx context.Context, slug string) (domain.Tenant, error) {
	attrs := []attribute.KeyValue{attribute.String("tenant.slug", slug)}
	return traced(ctx, s.tracer, "TenantRepository.GetBySlug", attrs, func(ctx context.Context) (domain.Tenant, error) {
		return s.next.GetBySlug(ctx, slug)
	})
}

// GetByEmail leaves the address out of the span.
func (s *TracingStore) GetByEmail(ctx context.Context, email string) (domain.Tenant, error) {
	return traced(ctx, s.tracer, "TenantRepository.GetByEmail", nil, func(ctx context.Context) (domain.Tenant, error) {
		return s.next.GetByEmail(ctx, email)
	})
}

func (s *TracingStore) List(ctx context.Context, filter domain.ListFilter) ([]domain.Tenant, error) {
	attrs := []attribute.KeyValue{
		attribute.Int("filter.limit", filter.Limit),
		attribute.Int("filter.offset", filter.Offset),
	}
	if filter.Status != nil {
		attrs = append(attrs, attribute.String("filter.status", string(*filter.Status)))
	}
	if filter.Tier != nil {
		attrs = append(attrs, attribute.String("filter.tier", string(*filter.Tier)))
	}

	return traced(ctx, s.tracer, "TenantRepository.List", attrs, func(ctx context.Context) ([]domain.Tenant, error) {
		tenants, err := s.next.List(ctx, filter)
		if err == nil {
			trace.SpanFromContext(ctx).SetAttributes(attribute.Int("result.count", len(tenants)))
		}
		return tenants, err
	})
}

func (s *TracingStore) Update(ctx context.Context, tenant domain.Tenant) error {
	return tracedErr(ctx, s.tracer, "TenantRepository.Update", []attribute.KeyValue{
		attribute.String("tenant.id", tenant.ID),
		attribute.String("tenant.status", string(tenant.Status)),
	}, func(ctx context.Context) error {
		return s.next.Update(ctx, tenant)
	})
}

func (s *TracingStore) CreateServices(ctx context.Context, tenantID string, entries []domain.ServiceCatalogEntry) error {
	attrs := append(tenantAttr(tenantID), attribute.Int("services.count", len(entries)))
	return tracedErr(ctx, s.tracer, "CatalogRepository.CreateServices", attrs, func(ctx context.Context) error {
		return s.next.CreateServices(ctx, tenantID, entries)
	})
}

func (s *TracingStore) ListServices(ctx context.Context, tenantID string) ([]domain.ServiceCatalogEntry, error) {
	return traced(ctx, s.tracer, "CatalogRepository.ListServices", tenantAttr(tenantID), func(ctx context.Context) ([]domain.ServiceCatalogEntry, error) {
		return s.next.ListServices(ctx, tenantID)
	})
}

func (s *TracingStore) CreateOwner(ctx context.Context, member domain.StaffMember) error {
	return tracedErr(ctx, s.tracer, "StaffRepository.CreateOwner", tenantAttr(member.TenantID), func(ctx context.Context) error {
		return s.next.CreateOwner(ctx, member)
	})
}

func (s *TracingStore) SavePhoneAssignment(ctx context.Context, a domain.PhoneNumberAssignment) error {
	attrs := append(tenantAttr(a.TenantID), attribute.String("phone.strategy", string(a.Strategy)))
	return tracedErr(ctx, s.tracer, "PhoneAssignmentRepository.Save", attrs, func(ctx context.Context) error {
		return s.next.SavePhoneAssignment(ctx, a)
	})
}

type phoneLookup struct {
	a  domain.PhoneNumberAssignment
	ok bool
}

func (s *TracingStore) GetPhoneAssignment(ctx context.Context, tenantID string) (domain.PhoneNumberAssignment, bool, error) {
	res, err := traced(ctx, s.tracer, "PhoneAssignmentRepository.Get", tenantAttr(tenantID), func(ctx context.Context) (phoneLookup, error) {
		a, ok, err := s.next.GetPhoneAssignment(ctx, tenantID)
		trace.SpanFromContext(ctx).SetAttributes(attribute.Bool("result.found", ok))
		return phoneLookup{a: a, ok: ok}, err
	})
	return res.a, res.ok, err
}

func (s *TracingStore) SaveProvisioning(ctx context.Context, rec domain.ProvisioningRecord) error {
	attrs := append(tenantAttr(rec.TenantID), attribute.String("provisioning.status", string(rec.Status)))
	return tracedErr(ctx, s.tracer, "ProvisioningRepository.Save", attrs, func(ctx context.Context) error {
		return s.next.SaveProvisioning(ctx, rec)
	})
}

func (s *TracingStore) GetProvisioning(ctx context.Context, tenantID string) (domain.ProvisioningRecord, error) {
	return traced(ctx, s.tracer, "ProvisioningRepository.Get", tenantAttr(tenantID), func(ctx context.Context) (domain.ProvisioningRecord, error) {
		return s.next.GetProvisioning(ctx, tenantID)
	})
}
