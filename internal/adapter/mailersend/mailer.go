package mailersend

import (
	"context"
	"fmt"
	"net/http"

	mailersendgo "github.com/mailersend/mailersend-go"

	"github.com/neomorfeo/onboardiq/internal/domain"
)

// Compile-time check: Mailer implements domain.Mailer.
var _ domain.Mailer = (*Mailer)(nil)

// Config holds the MailerSend sender settings.
type Config struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// Mailer sends plain-text email through MailerSend. Retries are left to
// the job queue.
type Mailer struct {
	client    *mailersendgo.Mailersend
	fromEmail string
	fromName  string
}

// New creates a mailer. httpClient may be nil.
func New(cfg Config, httpClient *http.Client) *Mailer {
	client := mailersendgo.NewMailersend(cfg.APIKey)
	if httpClient != nil {
		client.SetClient(httpClient)
	}
	return &Mailer{client: client, fromEmail: cfg.FromEmail, fromName: cfg.FromName}
}

// Send delivers one message.
func (m *Mailer) Send(ctx context.Context, email domain.Email) error {
	message := m.client.Email.NewMessage()
	message.SetFrom(mailersendgo.From{Email: m.fromEmail, Name: m.fromName})
	message.SetRecipients([]mailersendgo.Recipient{{Email: email.To, Name: email.ToName}})
	message.SetSubject(email.Subject)
	message.SetText(email.Text)

	if _, err := m.client.Email.Send(ctx, message); err != nil {
		return fmt.Errorf("sending email to %s: %w", email.To, err)
	}
	return nil
}
