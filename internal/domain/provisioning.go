package domain

import (
	"net/mail"
	"strings"
	"time"
)

// ProvisionRequest is the input of a provisioning saga. Flow selects the
// onboarding path explicitly; an empty Flow means FlowRapidSetup.
type ProvisionRequest struct {
	Flow              Flow
	BusinessName      string
	OwnerName         string
	OwnerFirstName    string
	OwnerLastName     string
	OwnerEmail        string
	OwnerPhone        string
	BusinessCategory  string
	Tier              Tier
	PaymentMethodRef  string
	TelephonyStrategy TelephonyStrategy
	ExistingNumber    string
	Forwarding        ForwardingRules
}

// Normalize trims whitespace and applies defaults.
func (r ProvisionRequest) Normalize() ProvisionRequest {
	r.BusinessName = strings.TrimSpace(r.BusinessName)
	r.OwnerName = strings.TrimSpace(r.OwnerName)
	r.OwnerFirstName = strings.TrimSpace(r.OwnerFirstName)
	r.OwnerLastName = strings.TrimSpace(r.OwnerLastName)
	r.OwnerEmail = strings.ToLower(strings.TrimSpace(r.OwnerEmail))
	r.OwnerPhone = strings.TrimSpace(r.OwnerPhone)
	r.BusinessCategory = strings.TrimSpace(r.BusinessCategory)
	r.PaymentMethodRef = strings.TrimSpace(r.PaymentMethodRef)
	r.ExistingNumber = strings.TrimSpace(r.ExistingNumber)
	if r.Flow == "" {
		r.Flow = FlowRapidSetup
	}
	if r.TelephonyStrategy == "" {
		r.TelephonyStrategy = StrategyNewNumber
	}
	return r
}

// Validate checks the request shape. paymentRequired is false only when the
// payment bypass is active. It returns nil or a *ValidationError.
func (r ProvisionRequest) Validate(paymentRequired bool) error {
	var fields []FieldError
	add := func(field, msg string) {
		fields = append(fields, FieldError{Field: field, Message: msg})
	}

	if !r.Flow.Valid() {
		add("flow", "must be rapid_setup or guided")
	}
	if r.BusinessName == "" {
		add("businessName", "is required")
	}
	if r.OwnerEmail == "" {
		add("ownerEmail", "is required")
	} else if !validEmail(r.OwnerEmail) {
		add("ownerEmail", "must be a valid email address")
	}
	if r.OwnerPhone == "" {
		add("ownerPhone", "is required")
	}
	if r.Tier == "" {
		add("tier", "is required")
	} else if !r.Tier.Valid() {
		add("tier", "must be starter, professional or business")
	}
	if paymentRequired && r.PaymentMethodRef == "" {
		add("paymentMethodRef", "is required")
	}
	if !r.TelephonyStrategy.Valid() {
		add("telephonyStrategy", "must be new_number or use_existing")
	}
	if r.TelephonyStrategy == StrategyUseExisting && r.ExistingNumber == "" {
		add("existingNumber", "is required when telephonyStrategy is use_existing")
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Owner returns the owner contact carried by the request.
func (r ProvisionRequest) Owner() OwnerContact {
	full := r.OwnerName
	if full == "" {
		full = r.BusinessName
	}
	return OwnerContact{
		FullName:  full,
		FirstName: r.OwnerFirstName,
		LastName:  r.OwnerLastName,
		Email:     r.OwnerEmail,
		Phone:     r.OwnerPhone,
	}
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	// ParseAddress accepts display names; require a bare address with a dotted domain.
	if addr.Address != s {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	return at > 0 && strings.Contains(s[at+1:], ".")
}

// WarningCode identifies a best-effort step that did not complete.
type WarningCode string

const (
	WarningCatalogSeed   WarningCode = "catalog_seed_failed"
	WarningStaffSeed     WarningCode = "staff_seed_failed"
	WarningAssistantLink WarningCode = "assistant_link_failed"
	WarningNotification  WarningCode = "notification_failed"
)

// Warning is a non-fatal problem reported alongside a successful outcome.
type Warning struct {
	Code   WarningCode
	Detail string
}

// Outcome is the result of a successful provisioning saga.
type Outcome struct {
	TenantID           string
	Slug               string
	BusinessName       string
	PhoneNumber        string
	ExistingOwnerPhone string
	AssistantID        string
	AssistantKind      AssistantKind
	Tier               Tier
	TrialEndsAt        time.Time
	ProvisionedAt      time.Time
	Warnings           []Warning
}

// ProvisioningRecord is the stored result of the last saga run for a tenant.
// ErrorType and ErrorDetail are set only when Status is StatusFailed.
type ProvisioningRecord struct {
	TenantID      string
	Status        Status
	FailedStep    string
	ErrorType     string
	ErrorDetail   string
	PhoneNumber   string
	AssistantID   string
	AssistantKind AssistantKind
	Warnings      []Warning
	UpdatedAt     time.Time
}
