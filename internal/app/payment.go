package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/neomorfeo/onboardiq/internal/domain"
)

// ErrBypassInProduction is returned when the payment bypass is requested
// for a production deployment.
var ErrBypassInProduction = errors.New("payment bypass is not allowed in production")

// PaymentAuthorizer validates payment methods with a zero-amount
// authorization before any tenant exists.
type PaymentAuthorizer struct {
	gateway domain.PaymentGateway
	bypass  bool
}

// NewPaymentAuthorizer creates an authorizer. With bypass set, Authorize
// never contacts the gateway; bypass is refused in production.
func NewPaymentAuthorizer(gateway domain.PaymentGateway, bypass bool, environment string) (*PaymentAuthorizer, error) {
	if bypass && environment == "production" {
		return nil, ErrBypassInProduction
	}
	if !bypass && gateway == nil {
		return nil, errors.New("payment gateway is required unless bypass is enabled")
	}
	return &PaymentAuthorizer{gateway: gateway, bypass: bypass}, nil
}

// Bypassed reports whether payment checks are skipped.
func (a *PaymentAuthorizer) Bypassed() bool { return a.bypass }

// Authorize creates a customer, authorizes paymentMethodRef without
// charging it and stores it as the default for future invoices. Every
// failure is a *domain.PaymentError carrying the gateway's message.
func (a *PaymentAuthorizer) Authorize(ctx context.Context, paymentMethodRef string, who domain.CustomerIdentity) (string, error) {
	if a.bypass {
		id, err := generateToken(8)
		if err != nil {
			return "", &domain.PaymentError{Message: "generating test customer reference", Err: err}
		}
		return "test_" + id, nil
	}

	customerRef, err := a.gateway.CreateCustomer(ctx, who)
	if err != nil {
		return "", asPaymentError(err)
	}

	if err := a.gateway.ConfirmSetup(ctx, customerRef, paymentMethodRef); err != nil {
		return "", asPaymentError(err)
	}
	return customerRef, nil
}

func asPaymentError(err error) error {
	var payErr *domain.PaymentError
	if errors.As(err, &payErr) {
		return payErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &domain.PaymentError{Message: "payment processor timed out", Err: err}
	}
	return &domain.PaymentError{Message: fmt.Sprint(err), Err: err}
}
