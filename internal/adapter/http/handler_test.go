package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/neomorfeo/onboardiq/internal/adapter/fsm"
	adapter "github.com/neomorfeo/onboardiq/internal/adapter/http"
	"github.com/neomorfeo/onboardiq/internal/adapter/sqlite"
	"github.com/neomorfeo/onboardiq/internal/app"
	"github.com/neomorfeo/onboardiq/internal/domain"
)

// fakePlatform is an in-process voice platform.
type fakePlatform struct {
	mu      sync.Mutex
	buyFail bool
	bought  int
}

func (p *fakePlatform) BuyPhoneNumber(_ context.Context, _ domain.PhoneNumberSpec) (domain.PlatformNumber, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.buyFail {
		return domain.PlatformNumber{}, &domain.PlatformError{StatusCode: 503, Body: `{"message":"no numbers left"}`}
	}
	p.bought++
	return domain.PlatformNumber{ID: "pn-1", Number: "+15555550001"}, nil
}

func (p *fakePlatform) CreateAssistant(_ context.Context, _ domain.AssistantSpec) (string, error) {
	return "asst-dedicated", nil
}

func (p *fakePlatform) GetAssistant(_ context.Context, _ string) error { return nil }

func (p *fakePlatform) LinkAssistant(_ context.Context, _, _ string) error { return nil }

type noopNotifier struct{}

func (noopNotifier) SendWelcome(_ context.Context, _ domain.WelcomeMessage) error { return nil }

// newTestServer creates a full-stack httptest.Server with SQLite in-memory
// and payment bypass.
func newTestServer(t *testing.T, platform *fakePlatform) *httptest.Server {
	t.Helper()

	store, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	payment, err := app.NewPaymentAuthorizer(nil, true, "test")
	if err != nil {
		t.Fatalf("payment authorizer: %v", err)
	}
	coordinator := app.NewCoordinator(store, payment, platform, noopNotifier{}, fsm.New(domain.Transitions...), app.Options{
		SharedAssistantID: "asst-shared",
	})

	router := chi.NewMux()
	api := adapter.NewAPI(router, "0.1.0")
	adapter.Register(api, coordinator, app.NewTenantService(store))

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return srv
}

// doRequest performs an HTTP request with context (avoids noctx linter).
func doRequest(t *testing.T, method, url, body string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, reader)
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}

	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

const glowNails = `{
	"businessName": "Glow Nails",
	"ownerName": "Maya Lopez",
	"ownerEmail": "maya@glow.example",
	"ownerPhone": "+15551234567",
	"businessCategory": "nail salon",
	"tier": "starter"
}`

// mustProvision provisions a tenant via the API and returns its response.
func mustProvision(t *testing.T, srv *httptest.Server, body string) adapter.OutcomeResponse {
	t.Helper()

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/v1/provisioning", body)
	if resp.StatusCode != http.StatusCreated {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("provision: status = %d, want %d: %s", resp.StatusCode, http.StatusCreated, raw)
	}
	return decode[adapter.OutcomeResponse](t, resp)
}

// --- Provisioning ---

func TestProvision(t *testing.T) {
	srv := newTestServer(t, &fakePlatform{})
	out := mustProvision(t, srv, glowNails)

	if out.TenantID == "" {
		t.Error("TenantID should not be empty")
	}
	if !strings.HasPrefix(out.Slug, "glow-nails-") {
		t.Errorf("Slug = %q, want glow-nails- prefix", out.Slug)
	}
	if out.PhoneNumber != "+15555550001" {
		t.Errorf("PhoneNumber = %q, want %q", out.PhoneNumber, "+15555550001")
	}
	if out.AssistantID != "asst-shared" || out.AssistantKind != "shared" {
		t.Errorf("assistant = (%q, %q), want shared asst-shared", out.AssistantID, out.AssistantKind)
	}
	if out.TrialEndsAt == "" || out.ProvisionedAt == "" {
		t.Error("timestamps should be set")
	}
	if len(out.Warnings) != 0 {
		t.Errorf("Warnings = %+v, want none", out.Warnings)
	}
}

func TestProvision_ValidationError(t *testing.T) {
	srv := newTestServer(t, &fakePlatform{})

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/v1/provisioning", `{"businessName":"Glow Nails","tier":"gold"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}

	body := decode[adapter.APIError](t, resp)
	if body.ErrorType != domain.ErrorTypeValidation {
		t.Errorf("errorType = %q, want %q", body.ErrorType, domain.ErrorTypeValidation)
	}
	if body.Details == "" {
		t.Error("details should not be empty")
	}
}

func TestProvision_MalformedBody(t *testing.T) {
	srv := newTestServer(t, &fakePlatform{})

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/v1/provisioning", `{"businessName":`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestProvision_DuplicateEmail(t *testing.T) {
	srv := newTestServer(t, &fakePlatform{})
	mustProvision(t, srv, glowNails)

	again := strings.Replace(glowNails, "Glow Nails", "Glow Nails Two", 1)
	resp := doRequest(t, http.MethodPost, srv.URL+"/api/v1/provisioning", again)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusConflict)
	}

	body := decode[adapter.APIError](t, resp)
	if body.ErrorType != domain.ErrorTypeDuplicateEmail {
		t.Errorf("errorType = %q, want %q", body.ErrorType, domain.ErrorTypeDuplicateEmail)
	}
}

func TestProvision_TelephonyFailureMarksTenantFailed(t *testing.T) {
	srv := newTestServer(t, &fakePlatform{buyFail: true})

	resp := doRequest(t, http.MethodPost, srv.URL+"/api/v1/provisioning", glowNails)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusInternalServerError)
	}
	body := decode[adapter.APIError](t, resp)
	if body.ErrorType != domain.ErrorTypeTelephony {
		t.Errorf("errorType = %q, want %q", body.ErrorType, domain.ErrorTypeTelephony)
	}

	list := decode[[]adapter.TenantResponse](t, doRequest(t, http.MethodGet, srv.URL+"/api/v1/tenants?status=failed", ""))
	if len(list) != 1 {
		t.Fatalf("got %d failed tenants, want 1", len(list))
	}

	rec := decode[adapter.ProvisioningRecordResponse](t,
		doRequest(t, http.MethodGet, srv.URL+"/api/v1/tenants/"+list[0].ID+"/provisioning", ""))
	if rec.Status != "failed" || rec.FailedStep != app.StepTelephony {
		t.Errorf("record = (%q, %q), want failed at %q", rec.Status, rec.FailedStep, app.StepTelephony)
	}
	if !strings.Contains(rec.ErrorDetail, "no numbers left") {
		t.Errorf("ErrorDetail = %q, want platform body", rec.ErrorDetail)
	}
}

// --- Reads ---

func TestGetTenant(t *testing.T) {
	srv := newTestServer(t, &fakePlatform{})
	out := mustProvision(t, srv, glowNails)

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/tenants/"+out.TenantID, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	tenant := decode[adapter.TenantResponse](t, resp)
	if tenant.Status != "trialing" {
		t.Errorf("Status = %q, want %q", tenant.Status, "trialing")
	}
	if tenant.Email != "maya@glow.example" {
		t.Errorf("Email = %q, want %q", tenant.Email, "maya@glow.example")
	}
}

func TestGetTenant_NotFound(t *testing.T) {
	srv := newTestServer(t, &fakePlatform{})

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/tenants/nonexistent", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}

	body := decode[adapter.APIError](t, resp)
	if body.Message != "tenant not found" {
		t.Errorf("error = %q, want %q", body.Message, "tenant not found")
	}
}

func TestGetTenantBySlug(t *testing.T) {
	srv := newTestServer(t, &fakePlatform{})
	out := mustProvision(t, srv, glowNails)

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/tenants/by-slug/"+out.Slug, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	tenant := decode[adapter.TenantResponse](t, resp)
	if tenant.ID != out.TenantID {
		t.Errorf("ID = %q, want %q", tenant.ID, out.TenantID)
	}

	missing := doRequest(t, http.MethodGet, srv.URL+"/api/v1/tenants/by-slug/no-such-salon", "")
	defer missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Errorf("unknown slug status = %d, want %d", missing.StatusCode, http.StatusNotFound)
	}
}

func TestListTenants_FilterByTier(t *testing.T) {
	srv := newTestServer(t, &fakePlatform{})
	mustProvision(t, srv, glowNails)
	mustProvision(t, srv, `{
		"businessName": "Iron Gym",
		"ownerEmail": "sam@iron.example",
		"ownerPhone": "+15557654321",
		"businessCategory": "gym",
		"tier": "business"
	}`)

	all := decode[[]adapter.TenantResponse](t, doRequest(t, http.MethodGet, srv.URL+"/api/v1/tenants", ""))
	if len(all) != 2 {
		t.Errorf("got %d tenants, want 2", len(all))
	}

	business := decode[[]adapter.TenantResponse](t, doRequest(t, http.MethodGet, srv.URL+"/api/v1/tenants?tier=business", ""))
	if len(business) != 1 || business[0].AssistantKind != "dedicated" {
		t.Errorf("business tenants = %+v, want one with a dedicated assistant", business)
	}
}

func TestListServices(t *testing.T) {
	srv := newTestServer(t, &fakePlatform{})
	out := mustProvision(t, srv, glowNails)

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/tenants/"+out.TenantID+"/services", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	services := decode[[]adapter.ServiceResponse](t, resp)
	if len(services) != len(domain.DefaultCatalog("nail salon")) {
		t.Errorf("got %d services, want the nail salon catalog", len(services))
	}
}

func TestListServices_UnknownTenant(t *testing.T) {
	srv := newTestServer(t, &fakePlatform{})

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/tenants/nonexistent/services", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &fakePlatform{})

	resp := doRequest(t, http.MethodGet, srv.URL+"/api/v1/health", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body := decode[struct {
		Service  string   `json:"service"`
		Status   string   `json:"status"`
		Features []string `json:"features"`
	}](t, resp)
	if body.Service != "onboardiq" || body.Status != "ok" {
		t.Errorf("health = (%q, %q), want onboardiq ok", body.Service, body.Status)
	}
	if len(body.Features) == 0 {
		t.Error("features should not be empty")
	}
}

func TestHumaErrorsUseAPIErrorShape(t *testing.T) {
	err := huma.NewError(http.StatusUnprocessableEntity, "validation failed", errors.New("ownerEmail is required"))

	var apiErr *adapter.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.GetStatus() != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", apiErr.GetStatus(), http.StatusBadRequest)
	}
	if apiErr.ErrorType != domain.ErrorTypeValidation {
		t.Errorf("errorType = %q, want %q", apiErr.ErrorType, domain.ErrorTypeValidation)
	}
	if !strings.Contains(apiErr.Details, "ownerEmail is required") {
		t.Errorf("details = %q, want field error", apiErr.Details)
	}
}
