package river

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/riverqueue/river"

	"github.com/neomorfeo/onboardiq/internal/domain"
)

// WelcomeWorker renders the owner's welcome email and sends it. A failed
// send returns the error so River retries the job.
type WelcomeWorker struct {
	river.WorkerDefaults[WelcomeJobArgs]
	mailer domain.Mailer
}

// NewWelcomeWorker creates a worker that delivers through mailer.
func NewWelcomeWorker(mailer domain.Mailer) *WelcomeWorker {
	return &WelcomeWorker{mailer: mailer}
}

// Work sends a single welcome email.
func (w *WelcomeWorker) Work(ctx context.Context, job *river.Job[WelcomeJobArgs]) error {
	slog.InfoContext(ctx, "sending welcome email",
		"tenant_id", job.Args.TenantID,
		"tenant_slug", job.Args.Slug,
		"job_id", job.ID,
		"attempt", job.Attempt,
	)

	if err := w.mailer.Send(ctx, RenderWelcome(job.Args)); err != nil {
		slog.WarnContext(ctx, "welcome email failed",
			"tenant_id", job.Args.TenantID,
			"attempt", job.Attempt,
			"error", err,
		)
		return err
	}
	return nil
}

// RenderWelcome builds the plain-text welcome email.
func RenderWelcome(args WelcomeJobArgs) domain.Email {
	var b strings.Builder
	fmt.Fprintf(&b, "Welcome to onboardiq, %s!\n\n", args.BusinessName)
	fmt.Fprintf(&b, "Your %s plan is active. Your free trial runs until %s.\n\n",
		args.Tier, args.TrialEndsAt.UTC().Format("January 2, 2006"))

	switch {
	case args.PhoneNumber != "":
		fmt.Fprintf(&b, "Your AI receptionist answers at %s.\n", args.PhoneNumber)
	case args.ExistingOwnerPhone != "":
		fmt.Fprintf(&b, "Forward calls from %s to start using your AI receptionist. ", args.ExistingOwnerPhone)
		b.WriteString("Our team will confirm once routing is in place.\n")
	}

	if args.AssistantKind == string(domain.AssistantDedicated) {
		b.WriteString("Your dedicated assistant already knows your service menu.\n")
	}
	fmt.Fprintf(&b, "\nYour booking page: /book/%s\n", args.Slug)

	return domain.Email{
		To:      args.Email,
		ToName:  args.BusinessName,
		Subject: "Welcome to onboardiq, " + args.BusinessName,
		Text:    b.String(),
	}
}
