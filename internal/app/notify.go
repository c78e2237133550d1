package app

import (
	"context"

	"github.com/neomorfeo/onboardiq/internal/domain"
)

// NotificationDispatcher hands the welcome message to the notifier.
type NotificationDispatcher struct {
	notifier domain.Notifier
}

func NewNotificationDispatcher(notifier domain.Notifier) *NotificationDispatcher {
	return &NotificationDispatcher{notifier: notifier}
}

// SendWelcome summarizes the outcome for the owner.
func (d *NotificationDispatcher) SendWelcome(ctx context.Context, tenant domain.Tenant, out domain.Outcome) error {
	return d.notifier.SendWelcome(ctx, domain.WelcomeMessage{
		TenantID:           tenant.ID,
		Email:              tenant.Email,
		BusinessName:       tenant.Name,
		Slug:               tenant.Slug,
		Tier:               tenant.Tier,
		PhoneNumber:        out.PhoneNumber,
		ExistingOwnerPhone: out.ExistingOwnerPhone,
		AssistantKind:      out.AssistantKind,
		TrialEndsAt:        out.TrialEndsAt,
	})
}
