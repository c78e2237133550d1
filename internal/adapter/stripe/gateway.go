package stripe

import (
	"context"
	"errors"
	"fmt"

	stripego "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"github.com/neomorfeo/onboardiq/internal/domain"
)

// Compile-time check: Gateway implements domain.PaymentGateway.
var _ domain.PaymentGateway = (*Gateway)(nil)

// Gateway validates cards with zero-amount SetupIntents.
type Gateway struct {
	api *client.API
}

// New creates a gateway for the live Stripe API.
func New(secretKey string) *Gateway {
	return NewWithBackends(secretKey, nil)
}

// NewWithBackends creates a gateway on explicit backends. Tests point them
// at an httptest server.
func NewWithBackends(secretKey string, backends *stripego.Backends) *Gateway {
	api := &client.API{}
	api.Init(secretKey, backends)
	return &Gateway{api: api}
}

// CreateCustomer registers the payer and returns the customer id.
func (g *Gateway) CreateCustomer(ctx context.Context, who domain.CustomerIdentity) (string, error) {
	params := &stripego.CustomerParams{
		Email: stripego.String(who.Email),
		Name:  stripego.String(who.Name),
		Phone: stripego.String(who.Phone),
		Metadata: map[string]string{
			"business_name": who.BusinessName,
		},
	}
	params.Context = ctx

	c, err := g.api.Customers.New(params)
	if err != nil {
		return "", paymentError("creating customer", err)
	}
	return c.ID, nil
}

// ConfirmSetup confirms an off-session SetupIntent for paymentMethodRef and
// makes the method the default for the customer's invoices.
func (g *Gateway) ConfirmSetup(ctx context.Context, customerRef, paymentMethodRef string) error {
	params := &stripego.SetupIntentParams{
		Customer:           stripego.String(customerRef),
		PaymentMethod:      stripego.String(paymentMethodRef),
		PaymentMethodTypes: stripego.StringSlice([]string{"card"}),
		Usage:              stripego.String(string(stripego.SetupIntentUsageOffSession)),
		Confirm:            stripego.Bool(true),
	}
	params.Context = ctx

	si, err := g.api.SetupIntents.New(params)
	if err != nil {
		return paymentError("confirming setup intent", err)
	}
	if si.Status != stripego.SetupIntentStatusSucceeded {
		msg := fmt.Sprintf("card setup ended in status %s", si.Status)
		if si.LastSetupError != nil && si.LastSetupError.Msg != "" {
			msg = si.LastSetupError.Msg
		}
		return &domain.PaymentError{Message: msg}
	}

	update := &stripego.CustomerParams{
		InvoiceSettings: &stripego.CustomerInvoiceSettingsParams{
			DefaultPaymentMethod: stripego.String(paymentMethodRef),
		},
	}
	update.Context = ctx

	if _, err := g.api.Customers.Update(customerRef, update); err != nil {
		return paymentError("setting default payment method", err)
	}
	return nil
}

// paymentError keeps Stripe's own message so it can be shown to the owner.
func paymentError(op string, err error) error {
	var sErr *stripego.Error
	if errors.As(err, &sErr) && sErr.Msg != "" {
		return &domain.PaymentError{Message: sErr.Msg, Err: err}
	}
	return &domain.PaymentError{Message: op + ": " + err.Error(), Err: err}
}
