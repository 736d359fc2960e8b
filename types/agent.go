package types

// AgentKind identifies which specialized conversational agent owns a contact.
// New kinds are added as enum values with matching weight-table entries, not
// as new implementations.
type AgentKind string

const (
	AgentNone   AgentKind = "none"
	AgentLead   AgentKind = "lead"
	AgentBuyer  AgentKind = "buyer"
	AgentSeller AgentKind = "seller"
)

// Valid reports whether k is a known agent kind.
func (k AgentKind) Valid() bool {
	switch k {
	case AgentNone, AgentLead, AgentBuyer, AgentSeller:
		return true
	}
	return false
}

// Absorbing reports whether the kind has no automatic outbound transition.
// Buyer and seller are terminal in the funnel; only an operator moves a
// contact back to lead.
func (k AgentKind) Absorbing() bool {
	return k == AgentBuyer || k == AgentSeller
}

// Temperature is the coarse classification of a contact's qualification score.
type Temperature string

const (
	TemperatureHot     Temperature = "hot"
	TemperatureWarm    Temperature = "warm"
	TemperatureCold    Temperature = "cold"
	TemperatureUnknown Temperature = "unknown"
)
