package domain

import "strings"

// RoleOwner is the only role created during provisioning.
const RoleOwner = "owner"

// StaffMember is a person who takes bookings for a tenant.
type StaffMember struct {
	ID        string
	TenantID  string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Role      string
	Active    bool
}

// OwnerContact is the contact information submitted for the business owner.
type OwnerContact struct {
	FullName  string
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// SplitName splits a full name on its first whitespace boundary.
// A name without whitespace yields an empty last name.
func SplitName(full string) (first, last string) {
	full = strings.TrimSpace(full)
	idx := strings.IndexFunc(full, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n'
	})
	if idx < 0 {
		return full, ""
	}
	return full[:idx], strings.TrimSpace(full[idx+1:])
}
