package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for simple conditions without extra context.
var (
	ErrTenantNotFound   = errors.New("tenant not found")
	ErrTenantNotPending = errors.New("tenant is no longer pending")
)

// Machine-readable error types reported to API callers.
const (
	ErrorTypeValidation     = "validation_error"
	ErrorTypeDuplicateEmail = "duplicate_email"
	ErrorTypeDuplicateSlug  = "duplicate_slug"
	ErrorTypePayment        = "payment_error"
	ErrorTypeTelephony      = "telephony_error"
	ErrorTypeAssistant      = "assistant_error"
	ErrorTypeStore          = "store_error"
)

// FieldError describes one malformed request field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError is returned when a provisioning request is malformed.
// It is always returned before any side effect.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

func (e *ValidationError) ErrorType() string { return ErrorTypeValidation }

func (e *ValidationError) Details() string {
	if len(e.Fields) == 1 {
		return fmt.Sprintf("Please check the %s field: %s.", e.Fields[0].Field, e.Fields[0].Message)
	}
	return "Please correct the highlighted fields and try again: " + e.Error()
}

// DuplicateEmailError is returned when the owner email already belongs to a tenant.
type DuplicateEmailError struct {
	Email string
}

func (e *DuplicateEmailError) Error() string {
	return fmt.Sprintf("email %q is already registered", e.Email)
}

func (e *DuplicateEmailError) ErrorType() string { return ErrorTypeDuplicateEmail }

func (e *DuplicateEmailError) Details() string {
	return "An account with this email already exists. Sign in instead, or use a different email address."
}

// DuplicateSlugError is returned when the derived slug is already in use.
type DuplicateSlugError struct {
	Slug string
}

func (e *DuplicateSlugError) Error() string {
	return fmt.Sprintf("slug %q is already in use", e.Slug)
}

func (e *DuplicateSlugError) ErrorType() string { return ErrorTypeDuplicateSlug }

func (e *DuplicateSlugError) Details() string {
	return "A business with this name was just registered. Please try again or use a different business name."
}

// PaymentError is returned when the payment method cannot be validated.
// Message is the processor's message, passed through unchanged.
type PaymentError struct {
	Message string
	Err     error
}

func (e *PaymentError) Error() string {
	return "payment authorization failed: " + e.Message
}

func (e *PaymentError) Unwrap() error { return e.Err }

func (e *PaymentError) ErrorType() string { return ErrorTypePayment }

func (e *PaymentError) Details() string {
	return "We could not verify your card: " + e.Message + ". Please check the details or use another card."
}

// TelephonyError is returned when a phone number cannot be provisioned.
// Body holds the raw platform response for support follow-up.
// PhoneNumberID is set when a number was leased but never recorded.
type TelephonyError struct {
	TenantID      string
	StatusCode    int
	Body          string
	PhoneNumberID string
	Err           error
}

func (e *TelephonyError) Error() string {
	if e.PhoneNumberID != "" {
		return fmt.Sprintf("telephony provisioning failed for tenant %s: number %s leased but not recorded: %v", e.TenantID, e.PhoneNumberID, e.Err)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("telephony provisioning failed for tenant %s: status %d: %s", e.TenantID, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("telephony provisioning failed for tenant %s: %v", e.TenantID, e.Err)
}

func (e *TelephonyError) Unwrap() error { return e.Err }

func (e *TelephonyError) ErrorType() string { return ErrorTypeTelephony }

func (e *TelephonyError) Details() string {
	return "Your account was created but we could not set up your phone number. Our team has been notified and will finish the setup."
}

// AssistantError is returned when the voice assistant cannot be resolved or created.
type AssistantError struct {
	TenantID   string
	StatusCode int
	Body       string
	Err        error
}

func (e *AssistantError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("assistant provisioning failed for tenant %s: status %d: %s", e.TenantID, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("assistant provisioning failed for tenant %s: %v", e.TenantID, e.Err)
}

func (e *AssistantError) Unwrap() error { return e.Err }

func (e *AssistantError) ErrorType() string { return ErrorTypeAssistant }

func (e *AssistantError) Details() string {
	return "Your account was created but we could not set up your AI assistant. Our team has been notified and will finish the setup."
}

// StoreError wraps any datastore failure that is not a uniqueness conflict.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) ErrorType() string { return ErrorTypeStore }

func (e *StoreError) Details() string {
	return "Something went wrong while saving your account. Please try again in a few minutes."
}

// TransitionError is returned when a state transition is not allowed.
type TransitionError struct {
	Event   Event
	Current Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("event %q is not valid from state %q", e.Event, e.Current)
}

// ClassifiedError is implemented by every error surfaced to API callers.
type ClassifiedError interface {
	error
	ErrorType() string
	Details() string
}

// PlatformError is returned by the voice platform adapter for any non-2xx response.
type PlatformError struct {
	StatusCode int
	Body       string
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("platform returned status %d: %s", e.StatusCode, e.Body)
}
