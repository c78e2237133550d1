package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/neomorfeo/onboardiq/internal/domain"
)

// Step names recorded as FailedStep in provisioning records.
const (
	StepPayment      = "payment"
	StepRegister     = "register"
	StepSeed         = "seed"
	StepSeedCatalog  = "seed_catalog"
	StepSeedStaff    = "seed_staff"
	StepTelephony    = "telephony"
	StepAssistant    = "assistant"
	StepLink         = "link"
	StepFinalize     = "finalize"
	StepNotification = "notify"
)

const defaultStepTimeout = 20 * time.Second

type failurePolicy int

const (
	// abort stops the saga; after registration the tenant is marked failed.
	abort failurePolicy = iota
	// warnAndContinue records a warning and moves on.
	warnAndContinue
)

// step is one declared unit of the saga. A step with a group runs its
// members concurrently and finishes when all of them have.
type step struct {
	name      string
	onFailure failurePolicy
	warning   domain.WarningCode
	run       func(ctx context.Context, st *sagaState) error
	group     []step
}

// sagaState is the data threaded through one saga run.
type sagaState struct {
	req         domain.ProvisionRequest
	customerRef string
	tenant      domain.Tenant
	registered  bool
	catalog     []domain.ServiceCatalogEntry
	phone       domain.PhoneNumberAssignment
	assistant   domain.AssistantAssignment
	outcome     domain.Outcome

	mu       sync.Mutex
	warnings []domain.Warning
}

func (st *sagaState) warn(code domain.WarningCode, err error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.warnings = append(st.warnings, domain.Warning{Code: code, Detail: err.Error()})
}

// Options tunes a Coordinator. Zero values select defaults.
type Options struct {
	SharedAssistantID string
	StepTimeout       time.Duration
	Logger            *slog.Logger
	Now               func() time.Time
}

// Coordinator runs the tenant provisioning saga.
type Coordinator struct {
	tenants   domain.TenantRepository
	records   domain.ProvisioningRepository
	payment   *PaymentAuthorizer
	registrar *TenantRegistrar
	catalog   *CatalogSeeder
	staff     *StaffSeeder
	telephony *TelephonyProvisioner
	assistant *AssistantProvisioner
	linker    *AssistantLinker
	notify    *NotificationDispatcher

	stepTimeout time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

// NewCoordinator wires the saga components onto the given adapters.
func NewCoordinator(
	store domain.Store,
	payment *PaymentAuthorizer,
	platform domain.VoicePlatform,
	notifier domain.Notifier,
	validator domain.TransitionValidator,
	opts Options,
) *Coordinator {
	if opts.StepTimeout <= 0 {
		opts.StepTimeout = defaultStepTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Coordinator{
		tenants:     store,
		records:     store,
		payment:     payment,
		registrar:   NewTenantRegistrar(store, validator, opts.Now),
		catalog:     NewCatalogSeeder(store),
		staff:       NewStaffSeeder(store),
		telephony:   NewTelephonyProvisioner(platform, store),
		assistant:   NewAssistantProvisioner(platform, opts.SharedAssistantID),
		linker:      NewAssistantLinker(platform),
		notify:      NewNotificationDispatcher(notifier),
		stepTimeout: opts.StepTimeout,
		logger:      opts.Logger,
		now:         opts.Now,
	}
}

// PaymentRequired reports whether requests must carry a payment method.
func (c *Coordinator) PaymentRequired() bool {
	return !c.payment.Bypassed()
}

// ProvisionTenant validates req and runs its flow. Errors before
// registration leave nothing behind. An aborting step after registration
// marks the tenant failed and returns that step's typed error.
func (c *Coordinator) ProvisionTenant(ctx context.Context, req domain.ProvisionRequest) (domain.Outcome, error) {
	req = req.Normalize()
	if err := req.Validate(c.PaymentRequired()); err != nil {
		return domain.Outcome{}, err
	}

	// Callers cannot abort a saga once side effects may start.
	ctx = context.WithoutCancel(ctx)

	if err := c.checkEmailAvailable(ctx, req.OwnerEmail); err != nil {
		return domain.Outcome{}, err
	}

	st := &sagaState{req: req}
	for _, s := range c.plan(req.Flow) {
		if err := c.runStep(ctx, st, s); err != nil {
			if st.registered {
				c.recordFailure(ctx, st, s.name, err)
			}
			return domain.Outcome{}, err
		}
	}

	st.outcome.Warnings = st.warnings
	c.recordSuccess(ctx, st)

	c.logger.InfoContext(ctx, "tenant provisioned",
		"tenant_id", st.tenant.ID,
		"flow", string(req.Flow),
		"tier", string(req.Tier),
		"assistant_kind", string(st.assistant.Kind),
		"warnings", len(st.warnings),
	)
	return st.outcome, nil
}

// plan returns the ordered steps of a flow. The rapid setup path validates
// the card before any row exists; the guided path registers first.
func (c *Coordinator) plan(flow domain.Flow) []step {
	payment := step{name: StepPayment, onFailure: abort, run: c.authorize}
	register := step{name: StepRegister, onFailure: abort, run: c.register}
	seed := step{name: StepSeed, group: []step{
		{name: StepSeedCatalog, onFailure: warnAndContinue, warning: domain.WarningCatalogSeed, run: c.seedCatalog},
		{name: StepSeedStaff, onFailure: warnAndContinue, warning: domain.WarningStaffSeed, run: c.seedStaff},
	}}
	rest := []step{
		{name: StepTelephony, onFailure: abort, run: c.provisionTelephony},
		{name: StepAssistant, onFailure: abort, run: c.resolveAssistant},
		{name: StepLink, onFailure: warnAndContinue, warning: domain.WarningAssistantLink, run: c.link},
		{name: StepFinalize, onFailure: abort, run: c.finalize},
		{name: StepNotification, onFailure: warnAndContinue, warning: domain.WarningNotification, run: c.sendWelcome},
	}

	if flow == domain.FlowGuided {
		return append([]step{register, seed, payment}, rest...)
	}
	return append([]step{payment, register, seed}, rest...)
}

// runStep executes s under its own timeout and applies its failure policy.
// It returns an error only when the saga must abort.
func (c *Coordinator) runStep(ctx context.Context, st *sagaState, s step) error {
	if len(s.group) > 0 {
		g, gctx := errgroup.WithContext(ctx)
		for _, member := range s.group {
			g.Go(func() error { return c.runStep(gctx, st, member) })
		}
		return g.Wait()
	}

	sctx, cancel := context.WithTimeout(ctx, c.stepTimeout)
	defer cancel()

	err := s.run(sctx, st)
	if err == nil {
		return nil
	}

	if s.onFailure == warnAndContinue {
		c.logger.WarnContext(ctx, "provisioning step failed, continuing",
			"tenant_id", st.tenant.ID,
			"step", s.name,
			"error", err,
		)
		st.warn(s.warning, err)
		return nil
	}

	c.logger.ErrorContext(ctx, "provisioning step failed",
		"tenant_id", st.tenant.ID,
		"step", s.name,
		"error", err,
	)
	return err
}

func (c *Coordinator) checkEmailAvailable(ctx context.Context, email string) error {
	ctx, cancel := context.WithTimeout(ctx, c.stepTimeout)
	defer cancel()

	_, err := c.tenants.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return &domain.DuplicateEmailError{Email: email}
	case errors.Is(err, domain.ErrTenantNotFound):
		return nil
	default:
		return err
	}
}

// ---- steps ----

func (c *Coordinator) authorize(ctx context.Context, st *sagaState) error {
	owner := st.req.Owner()
	ref, err := c.payment.Authorize(ctx, st.req.PaymentMethodRef, domain.CustomerIdentity{
		Email:        owner.Email,
		Name:         owner.FullName,
		Phone:        owner.Phone,
		BusinessName: st.req.BusinessName,
	})
	if err != nil {
		return err
	}
	st.customerRef = ref
	return nil
}

func (c *Coordinator) register(ctx context.Context, st *sagaState) error {
	tenant, err := c.registrar.Register(ctx, RegisterAttrs{
		Name:        st.req.BusinessName,
		Email:       st.req.OwnerEmail,
		Phone:       st.req.OwnerPhone,
		Category:    st.req.BusinessCategory,
		Tier:        st.req.Tier,
		Flow:        st.req.Flow,
		CustomerRef: st.customerRef,
	})
	if err != nil {
		return err
	}
	st.tenant = tenant
	st.registered = true
	return nil
}

func (c *Coordinator) seedCatalog(ctx context.Context, st *sagaState) error {
	entries, err := c.catalog.SeedDefaultCatalog(ctx, st.tenant.ID, st.req.BusinessCategory)
	st.mu.Lock()
	st.catalog = entries
	st.mu.Unlock()
	return err
}

func (c *Coordinator) seedStaff(ctx context.Context, st *sagaState) error {
	_, err := c.staff.SeedOwner(ctx, st.tenant.ID, st.req.Owner())
	return err
}

func (c *Coordinator) provisionTelephony(ctx context.Context, st *sagaState) error {
	var (
		a   domain.PhoneNumberAssignment
		err error
	)
	if st.req.TelephonyStrategy == domain.StrategyUseExisting {
		a, err = c.telephony.AttachExisting(ctx, st.tenant.ID, st.req.ExistingNumber, st.req.Forwarding)
	} else {
		a, err = c.telephony.ProvisionNew(ctx, st.tenant.ID, st.tenant.Name)
	}
	// A leased but unrecorded number stays in st.phone for the failure record.
	st.phone = a
	return err
}

func (c *Coordinator) resolveAssistant(ctx context.Context, st *sagaState) error {
	catalog := st.catalog
	if len(catalog) == 0 {
		catalog = domain.DefaultCatalog(st.req.BusinessCategory)
	}

	a, err := c.assistant.ResolveForTier(ctx, st.tenant.Tier, TenantContext{
		TenantID:      st.tenant.ID,
		BusinessName:  st.tenant.Name,
		Category:      st.tenant.Category,
		RoutingSecret: st.tenant.RoutingSecret,
	}, catalog)
	if err != nil {
		return err
	}
	st.assistant = a
	return nil
}

func (c *Coordinator) link(ctx context.Context, st *sagaState) error {
	return c.linker.Link(ctx, st.phone, st.assistant)
}

func (c *Coordinator) finalize(ctx context.Context, st *sagaState) error {
	tenant, err := c.registrar.Finalize(ctx, st.tenant.ID, FinalizeUpdates{
		PhoneNumber:   st.phone.Number,
		PhoneNumberID: st.phone.PhoneNumberID,
		ExistingPhone: st.phone.ExistingNumber,
		AssistantID:   st.assistant.AssistantID,
		AssistantKind: st.assistant.Kind,
		CustomerRef:   st.customerRef,
	})
	if err != nil {
		return err
	}
	st.tenant = tenant
	st.outcome = domain.Outcome{
		TenantID:           tenant.ID,
		Slug:               tenant.Slug,
		BusinessName:       tenant.Name,
		PhoneNumber:        tenant.PhoneNumber,
		ExistingOwnerPhone: tenant.ExistingPhone,
		AssistantID:        tenant.AssistantID,
		AssistantKind:      tenant.AssistantKind,
		Tier:               tenant.Tier,
		TrialEndsAt:        tenant.TrialEndsAt,
		ProvisionedAt:      c.now().UTC(),
	}
	return nil
}

func (c *Coordinator) sendWelcome(ctx context.Context, st *sagaState) error {
	return c.notify.SendWelcome(ctx, st.tenant, st.outcome)
}

// ---- provisioning records ----

func (c *Coordinator) recordFailure(ctx context.Context, st *sagaState, stepName string, cause error) {
	ctx, cancel := context.WithTimeout(ctx, c.stepTimeout)
	defer cancel()

	if err := c.registrar.MarkFailed(ctx, st.tenant.ID); err != nil {
		c.logger.ErrorContext(ctx, "marking tenant failed",
			"tenant_id", st.tenant.ID,
			"error", err,
		)
	}

	rec := domain.ProvisioningRecord{
		TenantID:      st.tenant.ID,
		Status:        domain.StatusFailed,
		FailedStep:    stepName,
		ErrorDetail:   cause.Error(),
		PhoneNumber:   st.phone.Number,
		AssistantID:   st.assistant.AssistantID,
		AssistantKind: st.assistant.Kind,
		Warnings:      st.warnings,
		UpdatedAt:     c.now(),
	}
	var classified domain.ClassifiedError
	if errors.As(cause, &classified) {
		rec.ErrorType = classified.ErrorType()
	}
	c.saveRecord(ctx, rec)
}

func (c *Coordinator) recordSuccess(ctx context.Context, st *sagaState) {
	ctx, cancel := context.WithTimeout(ctx, c.stepTimeout)
	defer cancel()

	c.saveRecord(ctx, domain.ProvisioningRecord{
		TenantID:      st.tenant.ID,
		Status:        st.tenant.Status,
		PhoneNumber:   st.outcome.PhoneNumber,
		AssistantID:   st.outcome.AssistantID,
		AssistantKind: st.outcome.AssistantKind,
		Warnings:      st.warnings,
		UpdatedAt:     st.outcome.ProvisionedAt,
	})
}

func (c *Coordinator) saveRecord(ctx context.Context, rec domain.ProvisioningRecord) {
	if err := c.records.SaveProvisioning(ctx, rec); err != nil {
		c.logger.ErrorContext(ctx, "saving provisioning record",
			"tenant_id", rec.TenantID,
			"error", err,
		)
	}
}
