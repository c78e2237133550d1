package domain

import (
	"context"
	"time"
)

// TenantRepository defines the persistence contract for tenants.
// Create returns *DuplicateEmailError or *DuplicateSlugError on a unique
// violation and *StoreError on any other failure.
type TenantRepository interface {
	Create(ctx context.Context, tenant Tenant) error
	GetByID(ctx context.Context, id string) (Tenant, error)
	GetBySlug(ctx context.Context, slug string) (Tenant, error)
	GetByEmail(ctx context.Context, email string) (Tenant, error)
	List(ctx context.Context, filter ListFilter) ([]Tenant, error)
	Update(ctx context.Context, tenant Tenant) error
}

// ListFilter holds optional criteria for listing tenants.
type ListFilter struct {
	Status *Status
	Tier   *Tier
	Limit  int
	Offset int
}

// CatalogRepository stores a tenant's service catalog.
// CreateServices inserts nothing when the tenant already has services and
// returns ErrTenantNotPending when the tenant has left the pending state.
type CatalogRepository interface {
	CreateServices(ctx context.Context, tenantID string, entries []ServiceCatalogEntry) error
	ListServices(ctx context.Context, tenantID string) ([]ServiceCatalogEntry, error)
}

// StaffRepository stores staff members. CreateOwner is a no-op when the
// tenant already has an owner.
type StaffRepository interface {
	CreateOwner(ctx context.Context, member StaffMember) error
}

// PhoneAssignmentRepository stores the one phone assignment of each tenant.
type PhoneAssignmentRepository interface {
	SavePhoneAssignment(ctx context.Context, a PhoneNumberAssignment) error
	GetPhoneAssignment(ctx context.Context, tenantID string) (PhoneNumberAssignment, bool, error)
}

// ProvisioningRepository stores the outcome of the latest saga run per tenant.
type ProvisioningRepository interface {
	SaveProvisioning(ctx context.Context, rec ProvisioningRecord) error
	GetProvisioning(ctx context.Context, tenantID string) (ProvisioningRecord, error)
}

// Store is the full datastore capability used by the provisioning saga.
type Store interface {
	TenantRepository
	CatalogRepository
	StaffRepository
	PhoneAssignmentRepository
	ProvisioningRepository
}

// CustomerIdentity identifies the payer to the payment processor.
type CustomerIdentity struct {
	Email        string
	Name         string
	Phone        string
	BusinessName string
}

// PaymentGateway validates payment methods without charging them.
type PaymentGateway interface {
	CreateCustomer(ctx context.Context, who CustomerIdentity) (string, error)
	// ConfirmSetup runs a zero-amount authorization of paymentMethodRef and
	// makes it the customer's default method for future invoices.
	ConfirmSetup(ctx context.Context, customerRef, paymentMethodRef string) error
}

// PhoneNumberSpec describes a number to buy on the voice platform.
type PhoneNumberSpec struct {
	TenantID string
	Name     string
}

// PlatformNumber is a phone number leased from the voice platform.
type PlatformNumber struct {
	ID     string
	Number string
}

// AssistantSpec describes a dedicated assistant to register.
type AssistantSpec struct {
	TenantID     string
	Name         string
	SystemPrompt string
	FirstMessage string
}

// VoicePlatform is the telephony and voice-AI platform. Non-2xx responses
// are reported as *PlatformError.
type VoicePlatform interface {
	BuyPhoneNumber(ctx context.Context, spec PhoneNumberSpec) (PlatformNumber, error)
	CreateAssistant(ctx context.Context, spec AssistantSpec) (string, error)
	GetAssistant(ctx context.Context, assistantID string) error
	LinkAssistant(ctx context.Context, phoneNumberID, assistantID string) error
}

// WelcomeMessage is the data behind the owner's welcome notification.
type WelcomeMessage struct {
	TenantID           string
	Email              string
	BusinessName       string
	Slug               string
	Tier               Tier
	PhoneNumber        string
	ExistingOwnerPhone string
	AssistantKind      AssistantKind
	TrialEndsAt        time.Time
}

// Notifier delivers owner notifications.
type Notifier interface {
	SendWelcome(ctx context.Context, msg WelcomeMessage) error
}

// Email is a plain-text message.
type Email struct {
	To      string
	ToName  string
	Subject string
	Text    string
}

// Mailer sends email.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// TransitionValidator checks and applies lifecycle transitions.
type TransitionValidator interface {
	Apply(ctx context.Context, current Status, event Event) (Status, error)
}
