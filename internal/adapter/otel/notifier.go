package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/onboardiq/internal/domain"
)

// TracingNotifier wraps a domain.Notifier with OpenTelemetry tracing.
type TracingNotifier struct {
	next   domain.Notifier
	tracer trace.Tracer
}

var _ domain.Notifier = (*TracingNotifier)(nil)

// NewTracingNotifier creates a tracing decorator around the given notifier.
func NewTracingNotifier(next domain.Notifier) *TracingNotifier {
	return &TracingNotifier{next: next, tracer: otel.Tracer(tracerName)}
}

func (n *TracingNotifier) SendWelcome(ctx context.Context, msg domain.WelcomeMessage) error {
	attrs := []attribute.KeyValue{
		attribute.String("tenant.id", msg.TenantID),
		attribute.String("tenant.tier", string(msg.Tier)),
		attribute.String("assistant.kind", string(msg.AssistantKind)),
	}
	return tracedErr(ctx, n.tracer, "Notifier.SendWelcome", attrs, func(ctx context.Context) error {
		return n.next.SendWelcome(ctx, msg)
	})
}
