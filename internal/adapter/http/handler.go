package http

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/onboardiq/internal/app"
	"github.com/neomorfeo/onboardiq/internal/domain"
)

// Provisioner runs the provisioning saga for one request.
type Provisioner interface {
	ProvisionTenant(ctx context.Context, req domain.ProvisionRequest) (domain.Outcome, error)
}

// ServiceName is reported by the health endpoint.
const ServiceName = "onboardiq"

var features = []string{
	"rapid_setup",
	"guided_setup",
	"new_number",
	"use_existing_number",
	"shared_assistant",
	"dedicated_assistant",
	"welcome_email",
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// TenantResponse is the API representation of a tenant.
type TenantResponse struct {
	ID            string `json:"id" doc:"Unique identifier"`
	Name          string `json:"name" doc:"Business name"`
	Slug          string `json:"slug" doc:"URL-friendly identifier"`
	Email         string `json:"email" doc:"Owner email"`
	Category      string `json:"category" doc:"Business category"`
	Tier          string `json:"tier" doc:"Subscription tier"`
	Flow          string `json:"flow" doc:"Onboarding flow used"`
	Status        string `json:"status" doc:"Lifecycle state"`
	PhoneNumber   string `json:"phoneNumber,omitempty" doc:"Platform phone number"`
	ExistingPhone string `json:"existingOwnerPhone,omitempty" doc:"Owner's own number when forwarding"`
	AssistantID   string `json:"assistantId,omitempty" doc:"Voice assistant"`
	AssistantKind string `json:"assistantKind,omitempty" doc:"shared or dedicated"`
	TrialEndsAt   string `json:"trialEndsAt" doc:"Trial end (ISO 8601)"`
	CreatedAt     string `json:"createdAt" doc:"Creation timestamp (ISO 8601)"`
	UpdatedAt     string `json:"updatedAt" doc:"Last update timestamp (ISO 8601)"`
}

func toTenantResponse(t domain.Tenant) TenantResponse {
	return TenantResponse{
		ID:            t.ID,
		Name:          t.Name,
		Slug:          t.Slug,
		Email:         t.Email,
		Category:      t.Category,
		Tier:          string(t.Tier),
		Flow:          string(t.Flow),
		Status:        string(t.Status),
		PhoneNumber:   t.PhoneNumber,
		ExistingPhone: t.ExistingPhone,
		AssistantID:   t.AssistantID,
		AssistantKind: string(t.AssistantKind),
		TrialEndsAt:   formatTime(t.TrialEndsAt),
		CreatedAt:     formatTime(t.CreatedAt),
		UpdatedAt:     formatTime(t.UpdatedAt),
	}
}

// --- Get Tenant ---

type GetTenantInput struct {
	ID string `path:"id" doc:"Tenant ID"`
}

type GetTenantOutput struct {
	Body TenantResponse
}

type GetTenantBySlugInput struct {
	Slug string `path:"slug" doc:"Tenant slug"`
}

// --- List Tenants ---

type ListTenantsInput struct {
	Status string `query:"status" required:"false" doc:"Filter by status"`
	Tier   string `query:"tier" required:"false" doc:"Filter by tier"`
	Limit  int    `query:"limit" required:"false" default:"50" minimum:"0" maximum:"500" doc:"Max results"`
	Offset int    `query:"offset" required:"false" default:"0" minimum:"0" doc:"Pagination offset"`
}

type ListTenantsOutput struct {
	Body []TenantResponse
}

// --- Provisioning record ---

type WarningResponse struct {
	Code   string `json:"code" doc:"Warning code"`
	Detail string `json:"detail" doc:"What did not complete"`
}

func toWarnings(ws []domain.Warning) []WarningResponse {
	out := make([]WarningResponse, len(ws))
	for i, w := range ws {
		out[i] = WarningResponse{Code: string(w.Code), Detail: w.Detail}
	}
	return out
}

type ProvisioningRecordResponse struct {
	TenantID      string            `json:"tenantId"`
	Status        string            `json:"status" doc:"trialing or failed"`
	FailedStep    string            `json:"failedStep,omitempty" doc:"Step that aborted the run"`
	ErrorType     string            `json:"errorType,omitempty"`
	ErrorDetail   string            `json:"errorDetail,omitempty" doc:"Raw failure detail for support"`
	PhoneNumber   string            `json:"phoneNumber,omitempty"`
	AssistantID   string            `json:"assistantId,omitempty"`
	AssistantKind string            `json:"assistantKind,omitempty"`
	Warnings      []WarningResponse `json:"warnings"`
	UpdatedAt     string            `json:"updatedAt"`
}

type GetProvisioningOutput struct {
	Body ProvisioningRecordResponse
}

// --- Services ---

type ServiceResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	DurationMinutes int    `json:"durationMinutes"`
	PriceCents      int64  `json:"priceCents"`
	Active          bool   `json:"active"`
}

type ListServicesOutput struct {
	Body []ServiceResponse
}

// --- Health ---

type HealthOutput struct {
	Body struct {
		Service  string   `json:"service"`
		Status   string   `json:"status"`
		Features []string `json:"features"`
	}
}

// Register adds all API routes to the Huma API.
func Register(api huma.API, provisioner Provisioner, svc *app.TenantService) {
	registerProvisioning(api, provisioner)

	huma.Register(api, huma.Operation{
		OperationID: "get-tenant",
		Method:      http.MethodGet,
		Path:        "/api/v1/tenants/{id}",
		Summary:     "Get a tenant by ID",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *GetTenantInput) (*GetTenantOutput, error) {
		tenant, err := svc.GetByID(ctx, input.ID)
		if err != nil {
			return nil, toAPIError(err)
		}
		return &GetTenantOutput{Body: toTenantResponse(tenant)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-tenant-by-slug",
		Method:      http.MethodGet,
		Path:        "/api/v1/tenants/by-slug/{slug}",
		Summary:     "Get a tenant by slug",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *GetTenantBySlugInput) (*GetTenantOutput, error) {
		tenant, err := svc.GetBySlug(ctx, input.Slug)
		if err != nil {
			return nil, toAPIError(err)
		}
		return &GetTenantOutput{Body: toTenantResponse(tenant)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-tenants",
		Method:      http.MethodGet,
		Path:        "/api/v1/tenants",
		Summary:     "List tenants",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *ListTenantsInput) (*ListTenantsOutput, error) {
		filter := domain.ListFilter{
			Limit:  input.Limit,
			Offset: input.Offset,
		}
		if input.Status != "" {
			s := domain.Status(input.Status)
			filter.Status = &s
		}
		if input.Tier != "" {
			tier := domain.Tier(input.Tier)
			filter.Tier = &tier
		}

		tenants, err := svc.List(ctx, filter)
		if err != nil {
			return nil, toAPIError(err)
		}

		resp := make([]TenantResponse, len(tenants))
		for i, t := range tenants {
			resp[i] = toTenantResponse(t)
		}
		return &ListTenantsOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-provisioning",
		Method:      http.MethodGet,
		Path:        "/api/v1/tenants/{id}/provisioning",
		Summary:     "Get the outcome of the tenant's last provisioning run",
		Tags:        []string{"Provisioning"},
	}, func(ctx context.Context, input *GetTenantInput) (*GetProvisioningOutput, error) {
		rec, err := svc.Provisioning(ctx, input.ID)
		if err != nil {
			return nil, toAPIError(err)
		}
		return &GetProvisioningOutput{Body: ProvisioningRecordResponse{
			TenantID:      rec.TenantID,
			Status:        string(rec.Status),
			FailedStep:    rec.FailedStep,
			ErrorType:     rec.ErrorType,
			ErrorDetail:   rec.ErrorDetail,
			PhoneNumber:   rec.PhoneNumber,
			AssistantID:   rec.AssistantID,
			AssistantKind: string(rec.AssistantKind),
			Warnings:      toWarnings(rec.Warnings),
			UpdatedAt:     formatTime(rec.UpdatedAt),
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-services",
		Method:      http.MethodGet,
		Path:        "/api/v1/tenants/{id}/services",
		Summary:     "List the tenant's service catalog",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *GetTenantInput) (*ListServicesOutput, error) {
		entries, err := svc.Services(ctx, input.ID)
		if err != nil {
			return nil, toAPIError(err)
		}
		resp := make([]ServiceResponse, len(entries))
		for i, e := range entries {
			resp[i] = ServiceResponse{
				ID:              e.ID,
				Name:            e.Name,
				DurationMinutes: e.DurationMinutes,
				PriceCents:      e.PriceCents,
				Active:          e.Active,
			}
		}
		return &ListServicesOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/api/v1/health",
		Summary:     "Service status and capabilities",
		Tags:        []string{"Health"},
	}, func(_ context.Context, _ *struct{}) (*HealthOutput, error) {
		out := &HealthOutput{}
		out.Body.Service = ServiceName
		out.Body.Status = "ok"
		out.Body.Features = features
		return out, nil
	})
}
