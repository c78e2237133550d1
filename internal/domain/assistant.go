package domain

import (
	"fmt"
	"strings"
)

// AssistantKind distinguishes a shared platform assistant from a tenant-owned one.
type AssistantKind string

const (
	AssistantShared    AssistantKind = "shared"
	AssistantDedicated AssistantKind = "dedicated"
)

// AssistantAssignment is the voice assistant answering a tenant's calls.
// SystemPrompt is set only for dedicated assistants.
type AssistantAssignment struct {
	Kind         AssistantKind
	AssistantID  string
	SystemPrompt string
}

// TierUsesDedicatedAssistant reports whether the tier gets its own assistant.
func TierUsesDedicatedAssistant(t Tier) bool {
	return t == TierBusiness
}

// PromptContext is everything a dedicated assistant's system prompt is built from.
type PromptContext struct {
	BusinessName  string
	Category      string
	RoutingSecret string
	Catalog       []ServiceCatalogEntry
}

// BuildSystemPrompt renders the dedicated assistant prompt. The output is a
// pure function of ctx; every catalog entry appears with its name, duration
// and price.
func BuildSystemPrompt(ctx PromptContext) string {
	category := ctx.Category
	if strings.TrimSpace(category) == "" {
		category = OtherCategory
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are the AI receptionist for %s, a %s business.\n", ctx.BusinessName, category)
	b.WriteString("Answer calls warmly, help callers book, reschedule or cancel appointments, ")
	b.WriteString("and only offer the services listed below.\n\n")
	b.WriteString("Services:\n")
	for _, e := range ctx.Catalog {
		if !e.Active {
			continue
		}
		fmt.Fprintf(&b, "- %s: %s, %s\n", e.Name, e.DurationLabel(), e.PriceLabel())
	}
	b.WriteString("\nIf a caller asks for something not listed, offer to take a message for the owner.\n")
	fmt.Fprintf(&b, "Routing key: %s\n", ctx.RoutingSecret)
	return b.String()
}
