package otel_test

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	adapter "github.com/neomorfeo/onboardiq/internal/adapter/otel"
	"github.com/neomorfeo/onboardiq/internal/domain"
)

type stubProvisioner struct {
	out domain.Outcome
	err error
}

func (p *stubProvisioner) ProvisionTenant(_ context.Context, _ domain.ProvisionRequest) (domain.Outcome, error) {
	return p.out, p.err
}

func setupTestMeter(t *testing.T) *sdkmetric.ManualReader {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(mp)
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return reader
}

// outcomePoints returns the data points of the outcomes counter.
func outcomePoints(t *testing.T, reader *sdkmetric.ManualReader) []metricdata.DataPoint[int64] {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collecting metrics: %v", err)
	}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == "onboardiq.provisioning.outcomes" {
				return m.Data.(metricdata.Sum[int64]).DataPoints
			}
		}
	}
	t.Fatal("outcomes counter not recorded")
	return nil
}

func attrValue(set attribute.Set, key string) string {
	v, ok := set.Value(attribute.Key(key))
	if !ok {
		return ""
	}
	return v.Emit()
}

func TestTracingProvisioner_CountsSuccess(t *testing.T) {
	exporter := setupTestTracer(t)
	reader := setupTestMeter(t)

	p, err := adapter.NewTracingProvisioner(&stubProvisioner{out: domain.Outcome{TenantID: "t-1"}})
	if err != nil {
		t.Fatalf("NewTracingProvisioner: %v", err)
	}

	req := domain.ProvisionRequest{Tier: domain.TierStarter}
	if _, err := p.ProvisionTenant(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	points := outcomePoints(t, reader)
	if len(points) != 1 || points[0].Value != 1 {
		t.Fatalf("points = %+v, want a single count of 1", points)
	}
	if got := attrValue(points[0].Attributes, "outcome"); got != "succeeded" {
		t.Errorf("outcome = %q, want %q", got, "succeeded")
	}
	if got := attrValue(points[0].Attributes, "provisioning.flow"); got != "rapid_setup" {
		t.Errorf("flow = %q, want %q", got, "rapid_setup")
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	assertAttribute(t, spans[0], "tenant.id", "t-1")
}

func TestTracingProvisioner_LabelsWarnings(t *testing.T) {
	setupTestTracer(t)
	reader := setupTestMeter(t)

	out := domain.Outcome{TenantID: "t-1", Warnings: []domain.Warning{{Code: domain.WarningNotification}}}
	p, err := adapter.NewTracingProvisioner(&stubProvisioner{out: out})
	if err != nil {
		t.Fatalf("NewTracingProvisioner: %v", err)
	}

	if _, err := p.ProvisionTenant(context.Background(), domain.ProvisionRequest{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	points := outcomePoints(t, reader)
	if got := attrValue(points[0].Attributes, "outcome"); got != "succeeded_with_warnings" {
		t.Errorf("outcome = %q, want %q", got, "succeeded_with_warnings")
	}
}

func TestTracingProvisioner_LabelsErrorType(t *testing.T) {
	setupTestTracer(t)
	reader := setupTestMeter(t)

	p, err := adapter.NewTracingProvisioner(&stubProvisioner{err: &domain.TelephonyError{TenantID: "t-1", StatusCode: 500}})
	if err != nil {
		t.Fatalf("NewTracingProvisioner: %v", err)
	}

	req := domain.ProvisionRequest{Flow: domain.FlowGuided, Tier: domain.TierBusiness}
	if _, err := p.ProvisionTenant(context.Background(), req); err == nil {
		t.Fatal("expected error")
	}

	points := outcomePoints(t, reader)
	attrs := points[0].Attributes
	if got := attrValue(attrs, "outcome"); got != "failed" {
		t.Errorf("outcome = %q, want %q", got, "failed")
	}
	if got := attrValue(attrs, "error_type"); got != domain.ErrorTypeTelephony {
		t.Errorf("error_type = %q, want %q", got, domain.ErrorTypeTelephony)
	}
	if got := attrValue(attrs, "tenant.tier"); got != "business" {
		t.Errorf("tier = %q, want %q", got, "business")
	}
}
