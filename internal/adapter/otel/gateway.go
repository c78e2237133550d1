package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/onboardiq/internal/domain"
)

// TracingGateway wraps a domain.PaymentGateway with OpenTelemetry tracing.
// Payment method references and payer details never reach span attributes.
type TracingGateway struct {
	next   domain.PaymentGateway
	tracer trace.Tracer
}

var _ domain.PaymentGateway = (*TracingGateway)(nil)

// NewTracingGateway creates a tracing decorator around the payment gateway.
func NewTracingGateway(next domain.PaymentGateway) *TracingGateway {
	return &TracingGateway{next: next, tracer: otel.Tracer(tracerName)}
}

func (g *TracingGateway) CreateCustomer(ctx context.Context, who domain.CustomerIdentity) (string, error) {
	return traced(ctx, g.tracer, "PaymentGateway.CreateCustomer", nil, func(ctx context.Context) (string, error) {
		id, err := g.next.CreateCustomer(ctx, who)
		if err == nil {
			trace.SpanFromContext(ctx).SetAttributes(attribute.String("customer.id", id))
		}
		return id, err
	})
}

func (g *TracingGateway) ConfirmSetup(ctx context.Context, customerRef, paymentMethodRef string) error {
	attrs := []attribute.KeyValue{attribute.String("customer.id", customerRef)}
	return tracedErr(ctx, g.tracer, "PaymentGateway.ConfirmSetup", attrs, func(ctx context.Context) error {
		return g.next.ConfirmSetup(ctx, customerRef, paymentMethodRef)
	})
}
