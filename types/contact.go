package types

import "time"

// Direction marks whether a conversation turn came from the contact or was
// sent to them.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// ConversationTurn is a single message in a contact's conversation. Turns are
// immutable once created; the extractor reads a bounded window of them.
type ConversationTurn struct {
	ID        string     `json:"id"`
	ContactID string     `json:"contact_id"`
	Direction Direction  `json:"direction"`
	Text      string     `json:"text"`
	Timestamp time.Time  `json:"timestamp"`
	Signals   *SignalSet `json:"signals,omitempty"`
}

// Contact is the per-contact state record owned by the orchestrator. All
// mutation happens inside the orchestrator's per-contact exclusive section.
type Contact struct {
	ID              string              `json:"id"`
	OwningAgent     AgentKind           `json:"owning_agent"`
	Temperature     Temperature         `json:"temperature"`
	Score           *QualificationScore `json:"score,omitempty"`
	LastInteraction time.Time           `json:"last_interaction"`
	Turns           []ConversationTurn  `json:"turns,omitempty"`
	HandoffHistory  []HandoffEvent      `json:"handoff_history,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// NewContact creates a contact in its initial state. First inbound contact
// starts owned by the lead agent.
func NewContact(id string, now time.Time) *Contact {
	return &Contact{
		ID:          id,
		OwningAgent: AgentLead,
		Temperature: TemperatureUnknown,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// RecentTurns returns the most recent n turns, newest last.
func (c *Contact) RecentTurns(n int) []ConversationTurn {
	if n <= 0 || len(c.Turns) == 0 {
		return nil
	}
	if len(c.Turns) <= n {
		return c.Turns
	}
	return c.Turns[len(c.Turns)-n:]
}

// RecentHandoffs returns the most recent k handoff events, newest last.
func (c *Contact) RecentHandoffs(k int) []HandoffEvent {
	if k <= 0 || len(c.HandoffHistory) == 0 {
		return nil
	}
	if len(c.HandoffHistory) <= k {
		return c.HandoffHistory
	}
	return c.HandoffHistory[len(c.HandoffHistory)-k:]
}
