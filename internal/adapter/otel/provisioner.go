package otel

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/onboardiq/internal/domain"
)

// Provisioner runs a provisioning saga.
type Provisioner interface {
	ProvisionTenant(ctx context.Context, req domain.ProvisionRequest) (domain.Outcome, error)
}

// TracingProvisioner wraps a Provisioner with a root saga span and
// outcome metrics.
type TracingProvisioner struct {
	next     Provisioner
	tracer   trace.Tracer
	outcomes metric.Int64Counter
	duration metric.Float64Histogram
}

// NewTracingProvisioner creates the decorator and registers its instruments
// on the global MeterProvider.
func NewTracingProvisioner(next Provisioner) (*TracingProvisioner, error) {
	meter := otel.Meter(tracerName)

	outcomes, err := meter.Int64Counter("onboardiq.provisioning.outcomes",
		metric.WithDescription("Provisioning saga runs by outcome"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram("onboardiq.provisioning.duration",
		metric.WithDescription("Provisioning saga wall time"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &TracingProvisioner{
		next:     next,
		tracer:   otel.Tracer(tracerName),
		outcomes: outcomes,
		duration: duration,
	}, nil
}

func (p *TracingProvisioner) ProvisionTenant(ctx context.Context, req domain.ProvisionRequest) (domain.Outcome, error) {
	flow := req.Flow
	if flow == "" {
		flow = domain.FlowRapidSetup
	}
	base := []attribute.KeyValue{
		attribute.String("provisioning.flow", string(flow)),
		attribute.String("tenant.tier", string(req.Tier)),
	}

	start := time.Now()
	out, err := traced(ctx, p.tracer, "Provisioning.ProvisionTenant", base, func(ctx context.Context) (domain.Outcome, error) {
		out, err := p.next.ProvisionTenant(ctx, req)
		span := trace.SpanFromContext(ctx)
		if err == nil {
			span.SetAttributes(
				attribute.String("tenant.id", out.TenantID),
				attribute.Int("provisioning.warnings", len(out.Warnings)),
			)
		}
		return out, err
	})

	attrs := append(base, attribute.String("outcome", outcomeLabel(out, err)))
	if err != nil {
		attrs = append(attrs, attribute.String("error_type", errorType(err)))
	}
	set := metric.WithAttributes(attrs...)
	p.outcomes.Add(ctx, 1, set)
	p.duration.Record(ctx, time.Since(start).Seconds(), set)

	return out, err
}

func outcomeLabel(out domain.Outcome, err error) string {
	switch {
	case err != nil:
		return "failed"
	case len(out.Warnings) > 0:
		return "succeeded_with_warnings"
	default:
		return "succeeded"
	}
}

func errorType(err error) string {
	var ce domain.ClassifiedError
	if errors.As(err, &ce) {
		return ce.ErrorType()
	}
	return "internal"
}
