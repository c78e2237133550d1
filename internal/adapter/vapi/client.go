package vapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/neomorfeo/onboardiq/internal/domain"
)

// Compile-time check: Client implements domain.VoicePlatform.
var _ domain.VoicePlatform = (*Client)(nil)

// Config holds the voice platform connection settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// RequestsPerSecond caps outgoing calls; zero disables the limit.
	RequestsPerSecond float64
	Model             string
	Voice             string
}

// Client talks to the voice platform's REST API.
type Client struct {
	http  *resty.Client
	model string
	voice string
}

// New creates a client. Requests are never retried: buying a number twice
// costs money.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}
	if cfg.Voice == "" {
		cfg.Voice = "jennifer"
	}

	rc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	if cfg.RequestsPerSecond > 0 {
		limiter := rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
		rc.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
			return limiter.Wait(r.Context())
		})
	}

	return &Client{http: rc, model: cfg.Model, voice: cfg.Voice}
}

type phoneNumberRequest struct {
	Provider string            `json:"provider"`
	Name     string            `json:"name"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type phoneNumberResponse struct {
	ID     string `json:"id"`
	Number string `json:"number"`
}

// BuyPhoneNumber leases a new platform number.
func (c *Client) BuyPhoneNumber(ctx context.Context, spec domain.PhoneNumberSpec) (domain.PlatformNumber, error) {
	var out phoneNumberResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(phoneNumberRequest{
			Provider: "vapi",
			Name:     spec.Name,
			Metadata: map[string]string{"tenant_id": spec.TenantID},
		}).
		SetResult(&out).
		Post("/phone-number")
	if err := check(resp, err); err != nil {
		return domain.PlatformNumber{}, err
	}
	return domain.PlatformNumber{ID: out.ID, Number: out.Number}, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type model struct {
	Provider string    `json:"provider"`
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
}

type voice struct {
	Provider string `json:"provider"`
	VoiceID  string `json:"voiceId"`
}

type assistantRequest struct {
	Name         string            `json:"name"`
	FirstMessage string            `json:"firstMessage"`
	Model        model             `json:"model"`
	Voice        voice             `json:"voice"`
	Metadata     map[string]string `json:"metadata"`
}

type assistantResponse struct {
	ID string `json:"id"`
}

// CreateAssistant registers a dedicated assistant and returns its id.
func (c *Client) CreateAssistant(ctx context.Context, spec domain.AssistantSpec) (string, error) {
	var out assistantResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(assistantRequest{
			Name:         spec.Name,
			FirstMessage: spec.FirstMessage,
			Model: model{
				Provider: "openai",
				Model:    c.model,
				Messages: []message{{Role: "system", Content: spec.SystemPrompt}},
			},
			Voice:    voice{Provider: "playht", VoiceID: c.voice},
			Metadata: map[string]string{"tenant_id": spec.TenantID},
		}).
		SetResult(&out).
		Post("/assistant")
	if err := check(resp, err); err != nil {
		return "", err
	}
	return out.ID, nil
}

// GetAssistant confirms that assistantID exists.
func (c *Client) GetAssistant(ctx context.Context, assistantID string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", assistantID).
		Get("/assistant/{id}")
	return check(resp, err)
}

type linkRequest struct {
	AssistantID string `json:"assistantId"`
}

// LinkAssistant points the number at assistantID, replacing any previous binding.
func (c *Client) LinkAssistant(ctx context.Context, phoneNumberID, assistantID string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", phoneNumberID).
		SetBody(linkRequest{AssistantID: assistantID}).
		Patch("/phone-number/{id}")
	return check(resp, err)
}

// check turns transport errors and non-2xx responses into errors. The raw
// body is kept for support follow-up.
func check(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if resp.IsError() || resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return &domain.PlatformError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	return nil
}
