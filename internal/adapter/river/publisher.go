package river

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/riverqueue/river"

	"github.com/neomorfeo/onboardiq/internal/domain"
)

// Compile-time check: Notifier implements domain.Notifier.
var _ domain.Notifier = (*Notifier)(nil)

// WelcomeMaxAttempts bounds delivery retries of one welcome email.
const WelcomeMaxAttempts = 5

// WelcomeJobArgs is a snapshot of the outcome taken when the saga finished,
// so the worker never needs to query the database.
type WelcomeJobArgs struct {
	TenantID           string    `json:"tenant_id"`
	Email              string    `json:"email"`
	BusinessName       string    `json:"business_name"`
	Slug               string    `json:"slug"`
	Tier               string    `json:"tier"`
	PhoneNumber        string    `json:"phone_number,omitempty"`
	ExistingOwnerPhone string    `json:"existing_owner_phone,omitempty"`
	AssistantKind      string    `json:"assistant_kind"`
	TrialEndsAt        time.Time `json:"trial_ends_at"`
}

// Kind returns the unique job type identifier used by River's job routing.
func (WelcomeJobArgs) Kind() string { return "notification.welcome" }

// InsertOpts routes welcome jobs to the notifications queue with their
// retry budget.
func (WelcomeJobArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{Queue: QueueNotifications, MaxAttempts: WelcomeMaxAttempts}
}

// Client is the River client type parameterized for SQLite (*sql.Tx).
type Client = river.Client[*sql.Tx]

// Notifier implements domain.Notifier by enqueuing River jobs.
type Notifier struct {
	client *Client
}

// NewNotifier creates a notifier backed by the given River client.
func NewNotifier(client *Client) *Notifier {
	return &Notifier{client: client}
}

// SendWelcome enqueues the welcome email. Delivery happens in the worker.
func (n *Notifier) SendWelcome(ctx context.Context, msg domain.WelcomeMessage) error {
	_, err := n.client.Insert(ctx, WelcomeJobArgs{
		TenantID:           msg.TenantID,
		Email:              msg.Email,
		BusinessName:       msg.BusinessName,
		Slug:               msg.Slug,
		Tier:               string(msg.Tier),
		PhoneNumber:        msg.PhoneNumber,
		ExistingOwnerPhone: msg.ExistingOwnerPhone,
		AssistantKind:      string(msg.AssistantKind),
		TrialEndsAt:        msg.TrialEndsAt,
	}, nil)
	if err != nil {
		return fmt.Errorf("enqueuing welcome job: %w", err)
	}
	return nil
}
