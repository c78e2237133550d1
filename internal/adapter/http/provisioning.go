package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/onboardiq/internal/domain"
)

// Request fields are optional at the schema level so that every shape
// problem is reported by domain validation as a 400.

type ForwardingRulesBody struct {
	AfterHours   bool `json:"afterHours,omitempty" required:"false" doc:"Forward calls outside business hours"`
	ComplexCalls bool `json:"complexCalls,omitempty" required:"false" doc:"Forward calls the assistant cannot handle"`
}

type ProvisionInput struct {
	Body struct {
		Flow              string              `json:"flow,omitempty" required:"false" doc:"rapid_setup (default) or guided"`
		BusinessName      string              `json:"businessName,omitempty" required:"false" doc:"Business display name"`
		OwnerName         string              `json:"ownerName,omitempty" required:"false" doc:"Owner full name"`
		OwnerFirstName    string              `json:"ownerFirstName,omitempty" required:"false"`
		OwnerLastName     string              `json:"ownerLastName,omitempty" required:"false"`
		OwnerEmail        string              `json:"ownerEmail,omitempty" required:"false" doc:"Owner email, unique across tenants"`
		OwnerPhone        string              `json:"ownerPhone,omitempty" required:"false" doc:"Owner contact phone"`
		BusinessCategory  string              `json:"businessCategory,omitempty" required:"false" doc:"Selects the starter service catalog"`
		Tier              string              `json:"tier,omitempty" required:"false" doc:"starter, professional or business"`
		PaymentMethodRef  string              `json:"paymentMethodRef,omitempty" required:"false" doc:"Tokenized payment method"`
		TelephonyStrategy string              `json:"telephonyStrategy,omitempty" required:"false" doc:"new_number (default) or use_existing"`
		ExistingNumber    string              `json:"existingNumber,omitempty" required:"false" doc:"Required with use_existing"`
		ForwardingRules   ForwardingRulesBody `json:"forwardingRules,omitempty" required:"false"`
	}
}

func (in *ProvisionInput) toRequest() domain.ProvisionRequest {
	b := in.Body
	return domain.ProvisionRequest{
		Flow:              domain.Flow(b.Flow),
		BusinessName:      b.BusinessName,
		OwnerName:         b.OwnerName,
		OwnerFirstName:    b.OwnerFirstName,
		OwnerLastName:     b.OwnerLastName,
		OwnerEmail:        b.OwnerEmail,
		OwnerPhone:        b.OwnerPhone,
		BusinessCategory:  b.BusinessCategory,
		Tier:              domain.Tier(b.Tier),
		PaymentMethodRef:  b.PaymentMethodRef,
		TelephonyStrategy: domain.TelephonyStrategy(b.TelephonyStrategy),
		ExistingNumber:    b.ExistingNumber,
		Forwarding: domain.ForwardingRules{
			AfterHours:   b.ForwardingRules.AfterHours,
			ComplexCalls: b.ForwardingRules.ComplexCalls,
		},
	}
}

// OutcomeResponse is the success body of a provisioning request.
type OutcomeResponse struct {
	TenantID           string            `json:"tenantId"`
	Slug               string            `json:"slug"`
	BusinessName       string            `json:"businessName"`
	PhoneNumber        string            `json:"phoneNumber"`
	ExistingOwnerPhone string            `json:"existingOwnerPhone"`
	AssistantID        string            `json:"assistantId"`
	AssistantKind      string            `json:"assistantKind" enum:"shared,dedicated"`
	Tier               string            `json:"tier"`
	TrialEndsAt        string            `json:"trialEndsAt"`
	ProvisionedAt      string            `json:"provisionedAt"`
	Warnings           []WarningResponse `json:"warnings" doc:"Best-effort steps that did not complete"`
}

type ProvisionOutput struct {
	Body OutcomeResponse
}

func registerProvisioning(api huma.API, provisioner Provisioner) {
	huma.Register(api, huma.Operation{
		OperationID:   "provision-tenant",
		Method:        http.MethodPost,
		Path:          "/api/v1/provisioning",
		Summary:       "Provision a new business end to end",
		Tags:          []string{"Provisioning"},
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusConflict, http.StatusInternalServerError},
	}, func(ctx context.Context, input *ProvisionInput) (*ProvisionOutput, error) {
		out, err := provisioner.ProvisionTenant(ctx, input.toRequest())
		if err != nil {
			return nil, toAPIError(err)
		}
		return &ProvisionOutput{Body: OutcomeResponse{
			TenantID:           out.TenantID,
			Slug:               out.Slug,
			BusinessName:       out.BusinessName,
			PhoneNumber:        out.PhoneNumber,
			ExistingOwnerPhone: out.ExistingOwnerPhone,
			AssistantID:        out.AssistantID,
			AssistantKind:      string(out.AssistantKind),
			Tier:               string(out.Tier),
			TrialEndsAt:        formatTime(out.TrialEndsAt),
			ProvisionedAt:      formatTime(out.ProvisionedAt),
			Warnings:           toWarnings(out.Warnings),
		}}, nil
	})
}
