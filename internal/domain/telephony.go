package domain

// TelephonyStrategy is the tenant's choice of phone line.
type TelephonyStrategy string

const (
	StrategyNewNumber   TelephonyStrategy = "new_number"
	StrategyUseExisting TelephonyStrategy = "use_existing"
)

// Valid reports whether s is a known strategy.
func (s TelephonyStrategy) Valid() bool {
	return s == StrategyNewNumber || s == StrategyUseExisting
}

// ForwardingRules describe which calls an existing number forwards to the assistant.
type ForwardingRules struct {
	AfterHours   bool
	ComplexCalls bool
}

// PhoneNumberAssignment is the single telephony resource of a tenant.
// For StrategyNewNumber, PhoneNumberID and Number come from the platform.
// For StrategyUseExisting, only ExistingNumber and Forwarding are set.
type PhoneNumberAssignment struct {
	TenantID       string
	Strategy       TelephonyStrategy
	PhoneNumberID  string
	Number         string
	ExistingNumber string
	Forwarding     ForwardingRules
}

// Linkable reports whether the assignment has a platform number an assistant can bind to.
func (a PhoneNumberAssignment) Linkable() bool {
	return a.Strategy == StrategyNewNumber && a.PhoneNumberID != ""
}
