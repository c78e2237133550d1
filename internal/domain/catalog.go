package domain

import (
	"fmt"
	"strings"
)

// OtherCategory is the sentinel category that always selects the generic catalog.
const OtherCategory = "Other"

// ServiceCatalogEntry is one bookable service offered by a tenant.
type ServiceCatalogEntry struct {
	ID              string
	TenantID        string
	Name            string
	DurationMinutes int
	PriceCents      int64
	Active          bool
}

// PriceLabel renders the price in dollars, omitting cents when whole.
func (e ServiceCatalogEntry) PriceLabel() string {
	if e.PriceCents%100 == 0 {
		return fmt.Sprintf("$%d", e.PriceCents/100)
	}
	return fmt.Sprintf("$%d.%02d", e.PriceCents/100, e.PriceCents%100)
}

// DurationLabel renders the duration in minutes.
func (e ServiceCatalogEntry) DurationLabel() string {
	return fmt.Sprintf("%d minutes", e.DurationMinutes)
}

type catalogItem struct {
	name    string
	minutes int
	dollars int64
}

var genericCatalog = []catalogItem{
	{"Consultation", 30, 50},
	{"Standard Appointment", 60, 75},
	{"Extended Appointment", 90, 110},
	{"Quick Service", 15, 25},
	{"Follow-up Visit", 30, 40},
	{"Premium Session", 120, 150},
}

// categoryCatalogs is keyed by lower-cased category.
var categoryCatalogs = map[string][]catalogItem{
	"nail salon": {
		{"Classic Manicure", 30, 35},
		{"Gel Manicure", 45, 50},
		{"Classic Pedicure", 45, 45},
		{"Gel Pedicure", 60, 60},
		{"Acrylic Full Set", 75, 65},
		{"Nail Art (per set)", 20, 15},
	},
	"hair salon": {
		{"Women's Haircut", 45, 55},
		{"Men's Haircut", 30, 35},
		{"Blowout", 45, 45},
		{"Single Process Color", 90, 95},
		{"Highlights", 120, 150},
		{"Deep Conditioning Treatment", 30, 30},
	},
	"barbershop": {
		{"Classic Cut", 30, 30},
		{"Skin Fade", 45, 40},
		{"Beard Trim", 15, 15},
		{"Hot Towel Shave", 30, 35},
		{"Cut and Beard", 45, 45},
		{"Kids Cut", 20, 20},
	},
	"spa": {
		{"Signature Facial", 60, 95},
		{"Swedish Massage", 60, 90},
		{"Deep Tissue Massage", 60, 110},
		{"Body Scrub", 45, 75},
		{"Hot Stone Massage", 90, 140},
	},
	"massage therapy": {
		{"Swedish Massage (60 min)", 60, 85},
		{"Swedish Massage (90 min)", 90, 120},
		{"Deep Tissue Massage", 60, 100},
		{"Sports Massage", 60, 100},
		{"Prenatal Massage", 60, 95},
	},
	"lash & brow": {
		{"Classic Lash Extensions", 120, 150},
		{"Lash Fill", 60, 65},
		{"Lash Lift", 60, 75},
		{"Brow Shaping", 20, 25},
		{"Brow Tint", 15, 20},
	},
	"pet grooming": {
		{"Bath and Brush", 60, 45},
		{"Full Groom (small dog)", 90, 65},
		{"Full Groom (large dog)", 120, 95},
		{"Nail Trim", 15, 15},
		{"Teeth Brushing", 15, 12},
	},
	"personal training": {
		{"Intro Session", 30, 40},
		{"1:1 Training Session", 60, 80},
		{"Partner Training Session", 60, 110},
		{"Fitness Assessment", 45, 60},
	},
}

// DefaultCatalog returns the default services for a business category.
// Unknown categories and OtherCategory yield the generic catalog, so the
// result is never empty. Entries are active and carry no IDs.
func DefaultCatalog(category string) []ServiceCatalogEntry {
	items := genericCatalog
	key := strings.ToLower(strings.TrimSpace(category))
	if key != strings.ToLower(OtherCategory) {
		if found, ok := categoryCatalogs[key]; ok {
			items = found
		}
	}

	out := make([]ServiceCatalogEntry, len(items))
	for i, it := range items {
		out[i] = ServiceCatalogEntry{
			Name:            it.name,
			DurationMinutes: it.minutes,
			PriceCents:      it.dollars * 100,
			Active:          true,
		}
	}
	return out
}
