package domain_test

import (
	"strings"
	"testing"

	"github.com/neomorfeo/onboardiq/internal/domain"
)

func TestDefaultCatalog_NailSalon(t *testing.T) {
	entries := domain.DefaultCatalog("Nail Salon")

	var found bool
	for _, e := range entries {
		if e.Name == "Classic Manicure" {
			found = true
			if e.PriceCents != 3500 {
				t.Errorf("Classic Manicure price = %d cents, want 3500", e.PriceCents)
			}
			if e.DurationMinutes != 30 {
				t.Errorf("Classic Manicure duration = %d, want 30", e.DurationMinutes)
			}
		}
		if !e.Active {
			t.Errorf("entry %q should be active", e.Name)
		}
	}
	if !found {
		t.Fatal("Nail Salon catalog should contain Classic Manicure")
	}
}

func TestDefaultCatalog_CaseInsensitive(t *testing.T) {
	a := domain.DefaultCatalog("nail salon")
	b := domain.DefaultCatalog("  NAIL SALON ")
	if len(a) != len(b) || a[0].Name != b[0].Name {
		t.Errorf("lookup should ignore case and surrounding spaces")
	}
}

func TestDefaultCatalog_FallsBackToGeneric(t *testing.T) {
	for _, category := range []string{"Underwater Basket Weaving", "Other", "", "other"} {
		entries := domain.DefaultCatalog(category)
		if len(entries) != 6 {
			t.Errorf("DefaultCatalog(%q) returned %d entries, want 6", category, len(entries))
			continue
		}
		if entries[0].Name != "Consultation" {
			t.Errorf("DefaultCatalog(%q)[0] = %q, want generic catalog", category, entries[0].Name)
		}
	}
}

func TestDefaultCatalog_ReturnsFreshSlice(t *testing.T) {
	first := domain.DefaultCatalog("Spa")
	first[0].Name = "mutated"

	second := domain.DefaultCatalog("Spa")
	if second[0].Name == "mutated" {
		t.Error("DefaultCatalog must not share its backing array")
	}
}

func TestServiceCatalogEntry_PriceLabel(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{3500, "$35"},
		{3550, "$35.50"},
		{5, "$0.05"},
	}
	for _, tc := range cases {
		e := domain.ServiceCatalogEntry{PriceCents: tc.cents}
		if got := e.PriceLabel(); got != tc.want {
			t.Errorf("PriceLabel(%d) = %q, want %q", tc.cents, got, tc.want)
		}
	}
}

func TestBuildSystemPrompt_ContainsEveryEntry(t *testing.T) {
	catalog := domain.DefaultCatalog("Nail Salon")
	prompt := domain.BuildSystemPrompt(domain.PromptContext{
		BusinessName:  "Glow Nails",
		Category:      "Nail Salon",
		RoutingSecret: "secret-123",
		Catalog:       catalog,
	})

	for _, want := range []string{"Glow Nails", "Nail Salon", "secret-123"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	for _, e := range catalog {
		if !strings.Contains(prompt, e.Name) {
			t.Errorf("prompt missing service name %q", e.Name)
		}
		line := "- " + e.Name + ": " + e.DurationLabel() + ", " + e.PriceLabel()
		if !strings.Contains(prompt, line) {
			t.Errorf("prompt missing line %q", line)
		}
	}
	if !strings.Contains(prompt, "- Classic Manicure: 30 minutes, $35") {
		t.Error("prompt should list Classic Manicure at 30 minutes, $35")
	}
}

func TestBuildSystemPrompt_Deterministic(t *testing.T) {
	ctx := domain.PromptContext{
		BusinessName:  "Glow Nails",
		Category:      "Nail Salon",
		RoutingSecret: "s",
		Catalog:       domain.DefaultCatalog("Nail Salon"),
	}
	if domain.BuildSystemPrompt(ctx) != domain.BuildSystemPrompt(ctx) {
		t.Error("BuildSystemPrompt should be deterministic")
	}
}

func TestTierUsesDedicatedAssistant(t *testing.T) {
	if !domain.TierUsesDedicatedAssistant(domain.TierBusiness) {
		t.Error("business tier should use a dedicated assistant")
	}
	for _, tier := range []domain.Tier{domain.TierStarter, domain.TierProfessional} {
		if domain.TierUsesDedicatedAssistant(tier) {
			t.Errorf("%q should use the shared assistant", tier)
		}
	}
}
