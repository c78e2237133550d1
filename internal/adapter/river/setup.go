package river

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riversqlite"
	"github.com/riverqueue/river/rivermigrate"

	"github.com/neomorfeo/onboardiq/internal/domain"
)

// QueueNotifications carries owner notifications, apart from River's
// default queue.
const QueueNotifications = "notifications"

// Options tunes the River client. Zero values select defaults.
type Options struct {
	Logger     *slog.Logger
	MaxWorkers int
}

// Migrate brings River's own tables up to date. They live beside the
// goose-managed ones in the same database.
func Migrate(ctx context.Context, db *sql.DB) error {
	migrator, err := rivermigrate.New(riversqlite.New(db), nil)
	if err != nil {
		return fmt.Errorf("creating river migrator: %w", err)
	}
	res, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil)
	if err != nil {
		return fmt.Errorf("running river migrations: %w", err)
	}
	for _, v := range res.Versions {
		slog.DebugContext(ctx, "river migration applied", "version", v.Version)
	}
	return nil
}

// Setup migrates River and creates a client with the welcome worker
// registered on the notifications queue. The caller must call Start to
// begin processing jobs and Stop for graceful shutdown.
func Setup(ctx context.Context, db *sql.DB, mailer domain.Mailer, opts Options) (*Client, error) {
	if err := Migrate(ctx, db); err != nil {
		return nil, err
	}
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = 2
	}

	workers := river.NewWorkers()
	if err := river.AddWorkerSafely(workers, NewWelcomeWorker(mailer)); err != nil {
		return nil, fmt.Errorf("registering welcome worker: %w", err)
	}

	client, err := river.NewClient(riversqlite.New(db), &river.Config{
		Logger: opts.Logger,
		Queues: map[string]river.QueueConfig{
			QueueNotifications: {MaxWorkers: opts.MaxWorkers},
		},
		Workers: workers,
	})
	if err != nil {
		return nil, fmt.Errorf("creating river client: %w", err)
	}

	return client, nil
}
