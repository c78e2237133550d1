package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"

	"github.com/neomorfeo/onboardiq/internal/adapter/fsm"
	"github.com/neomorfeo/onboardiq/internal/adapter/mailersend"
	otelAdapter "github.com/neomorfeo/onboardiq/internal/adapter/otel"
	riverAdapter "github.com/neomorfeo/onboardiq/internal/adapter/river"
	"github.com/neomorfeo/onboardiq/internal/adapter/sqlite"
	"github.com/neomorfeo/onboardiq/internal/adapter/stripe"
	"github.com/neomorfeo/onboardiq/internal/adapter/vapi"
	"github.com/neomorfeo/onboardiq/internal/app"
	"github.com/neomorfeo/onboardiq/internal/config"
	"github.com/neomorfeo/onboardiq/internal/domain"

	handler "github.com/neomorfeo/onboardiq/internal/adapter/http"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("onboardiq exited", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	if cfg.Production() {
		return slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func run(args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx := context.Background()

	// --- Observability ---
	providers, err := otelAdapter.Setup(ctx, otelAdapter.Config{
		ServiceName:    handler.ServiceName,
		ServiceVersion: cfg.Version,
		Environment:    cfg.Environment,
		Exporter:       cfg.OTelExporter,
		Endpoint:       cfg.OTelEndpoint,
		Insecure:       cfg.OTelInsecure,
		SampleRatio:    cfg.OTelSampleRatio,
	})
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Error("otel shutdown", "error", err)
		}
	}()

	// --- Adapters (out) ---
	db, err := otelAdapter.OpenDB(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	store, err := sqlite.NewFromDB(db)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}

	mailer := newMailer(cfg, logger)
	riverClient, err := riverAdapter.Setup(ctx, db, mailer, riverAdapter.Options{Logger: logger})
	if err != nil {
		return fmt.Errorf("river: %w", err)
	}
	if err := riverClient.Start(ctx); err != nil {
		return fmt.Errorf("starting river: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := riverClient.Stop(stopCtx); err != nil {
			logger.Error("river stop", "error", err)
		}
	}()

	platform := otelAdapter.NewTracingPlatform(vapi.New(vapi.Config{
		BaseURL:           cfg.Vapi.BaseURL,
		APIKey:            cfg.Vapi.APIKey,
		Timeout:           cfg.Vapi.Timeout,
		RequestsPerSecond: cfg.Vapi.RequestsPerSecond,
		Model:             cfg.Vapi.Model,
		Voice:             cfg.Vapi.Voice,
	}))

	var gateway domain.PaymentGateway
	if cfg.StripeSecretKey != "" {
		gateway = otelAdapter.NewTracingGateway(stripe.New(cfg.StripeSecretKey))
	}
	payment, err := app.NewPaymentAuthorizer(gateway, cfg.PaymentBypass, cfg.Environment)
	if err != nil {
		return fmt.Errorf("payment: %w", err)
	}
	if payment.Bypassed() {
		logger.Warn("payment authorization is bypassed", "environment", cfg.Environment)
	}

	tracedStore := otelAdapter.NewTracingStore(store)

	// --- Application ---
	coordinator := app.NewCoordinator(
		tracedStore,
		payment,
		platform,
		otelAdapter.NewTracingNotifier(riverAdapter.NewNotifier(riverClient)),
		fsm.New(domain.Transitions...),
		app.Options{
			SharedAssistantID: cfg.SharedAssistantID,
			StepTimeout:       cfg.StepTimeout,
			Logger:            logger,
		},
	)
	provisioner, err := otelAdapter.NewTracingProvisioner(coordinator)
	if err != nil {
		return fmt.Errorf("provisioning metrics: %w", err)
	}

	// --- Adapters (in) ---
	router := chi.NewMux()
	router.Use(otelchi.Middleware(handler.ServiceName, otelchi.WithChiRoutes(router)))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	api := handler.NewAPI(router, cfg.Version)
	handler.Register(api, provisioner, app.NewTenantService(tracedStore))

	// --- Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(done)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("onboardiq listening", "port", cfg.Port, "docs", "http://localhost:"+cfg.Port+"/docs")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-done:
	case err := <-serveErr:
		return fmt.Errorf("server: %w", err)
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("stopped")
	return nil
}

// newMailer returns the MailerSend mailer, or a mailer that only logs
// when no API key is configured.
func newMailer(cfg config.Config, logger *slog.Logger) domain.Mailer {
	if cfg.MailerSend.APIKey == "" {
		logger.Warn("mailersend api key not set, welcome emails are logged only")
		return logMailer{logger: logger}
	}
	return mailersend.New(mailersend.Config{
		APIKey:    cfg.MailerSend.APIKey,
		FromEmail: cfg.MailerSend.FromEmail,
		FromName:  cfg.MailerSend.FromName,
	}, nil)
}

type logMailer struct {
	logger *slog.Logger
}

func (m logMailer) Send(ctx context.Context, email domain.Email) error {
	m.logger.InfoContext(ctx, "email not sent",
		"to", email.To,
		"subject", email.Subject,
	)
	return nil
}
