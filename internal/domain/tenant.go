package domain

import "time"

// Status represents the lifecycle state of a tenant.
type Status string

const (
	StatusPending  Status = "pending"
	StatusTrialing Status = "trialing"
	StatusFailed   Status = "failed"
)

// Event represents an action that triggers a state transition.
type Event string

const (
	EventProvisionComplete Event = "provision_complete"
	EventProvisionFailed   Event = "provision_failed"
)

// Transition defines a valid state change: an event moves a tenant from Src to Dst.
type Transition struct {
	Event Event
	Src   Status
	Dst   Status
}

// Transitions defines all valid state changes during provisioning.
// This is domain knowledge consumed by the FSM adapter.
var Transitions = []Transition{
	{Event: EventProvisionComplete, Src: StatusPending, Dst: StatusTrialing},
	{Event: EventProvisionFailed, Src: StatusPending, Dst: StatusFailed},
}

// Tier is the subscription tier selected at signup.
type Tier string

const (
	TierStarter      Tier = "starter"
	TierProfessional Tier = "professional"
	TierBusiness     Tier = "business"
)

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	switch t {
	case TierStarter, TierProfessional, TierBusiness:
		return true
	}
	return false
}

// Flow selects which onboarding path created the tenant.
type Flow string

const (
	// FlowRapidSetup is the single-request signup: card first, 7-day trial.
	FlowRapidSetup Flow = "rapid_setup"
	// FlowGuided is the multi-step wizard: account first, card later, 14-day trial.
	FlowGuided Flow = "guided"
)

// Valid reports whether f is a known flow.
func (f Flow) Valid() bool {
	return f == FlowRapidSetup || f == FlowGuided
}

// TrialLength returns the trial window granted by the flow.
func (f Flow) TrialLength() time.Duration {
	if f == FlowGuided {
		return 14 * 24 * time.Hour
	}
	return 7 * 24 * time.Hour
}

// Tenant is the business being onboarded onto the booking platform.
type Tenant struct {
	ID            string
	Name          string
	Slug          string
	Email         string
	Phone         string
	Category      string
	Tier          Tier
	Flow          Flow
	Status        Status
	TrialEndsAt   time.Time
	CancelToken   string
	RoutingSecret string
	CustomerRef   string
	PhoneNumber   string
	PhoneNumberID string
	ExistingPhone string
	AssistantID   string
	AssistantKind AssistantKind
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TenantAttrs holds the business-supplied fields of a new tenant.
type TenantAttrs struct {
	ID            string
	Name          string
	Slug          string
	Email         string
	Phone         string
	Category      string
	Tier          Tier
	Flow          Flow
	CancelToken   string
	RoutingSecret string
	CustomerRef   string
}

// NewTenant creates a tenant in the initial "pending" state.
func NewTenant(attrs TenantAttrs, now time.Time) Tenant {
	now = now.UTC()
	return Tenant{
		ID:            attrs.ID,
		Name:          attrs.Name,
		Slug:          attrs.Slug,
		Email:         attrs.Email,
		Phone:         attrs.Phone,
		Category:      attrs.Category,
		Tier:          attrs.Tier,
		Flow:          attrs.Flow,
		Status:        StatusPending,
		TrialEndsAt:   now.Add(attrs.Flow.TrialLength()),
		CancelToken:   attrs.CancelToken,
		RoutingSecret: attrs.RoutingSecret,
		CustomerRef:   attrs.CustomerRef,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
