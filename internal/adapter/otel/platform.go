package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/onboardiq/internal/domain"
)

// TracingPlatform wraps a domain.VoicePlatform with OpenTelemetry tracing.
type TracingPlatform struct {
	next   domain.VoicePlatform
	tracer trace.Tracer
}

var _ domain.VoicePlatform = (*TracingPlatform)(nil)

// NewTracingPlatform creates a tracing decorator around the voice platform.
func NewTracingPlatform(next domain.VoicePlatform) *TracingPlatform {
	return &TracingPlatform{next: next, tracer: otel.Tracer(tracerName)}
}

func (p *TracingPlatform) BuyPhoneNumber(ctx context.Context, spec domain.PhoneNumberSpec) (domain.PlatformNumber, error) {
	return traced(ctx, p.tracer, "VoicePlatform.BuyPhoneNumber", tenantAttr(spec.TenantID), func(ctx context.Context) (domain.PlatformNumber, error) {
		num, err := p.next.BuyPhoneNumber(ctx, spec)
		if err == nil {
			trace.SpanFromContext(ctx).SetAttributes(attribute.String("phone.id", num.ID))
		}
		return num, err
	})
}

func (p *TracingPlatform) CreateAssistant(ctx context.Context, spec domain.AssistantSpec) (string, error) {
	return traced(ctx, p.tracer, "VoicePlatform.CreateAssistant", tenantAttr(spec.TenantID), func(ctx context.Context) (string, error) {
		id, err := p.next.CreateAssistant(ctx, spec)
		if err == nil {
			trace.SpanFromContext(ctx).SetAttributes(attribute.String("assistant.id", id))
		}
		return id, err
	})
}

func (p *TracingPlatform) GetAssistant(ctx context.Context, assistantID string) error {
	attrs := []attribute.KeyValue{attribute.String("assistant.id", assistantID)}
	return tracedErr(ctx, p.tracer, "VoicePlatform.GetAssistant", attrs, func(ctx context.Context) error {
		return p.next.GetAssistant(ctx, assistantID)
	})
}

func (p *TracingPlatform) LinkAssistant(ctx context.Context, phoneNumberID, assistantID string) error {
	attrs := []attribute.KeyValue{
		attribute.String("phone.id", phoneNumberID),
		attribute.String("assistant.id", assistantID),
	}
	return tracedErr(ctx, p.tracer, "VoicePlatform.LinkAssistant", attrs, func(ctx context.Context) error {
		return p.next.LinkAssistant(ctx, phoneNumberID, assistantID)
	})
}
