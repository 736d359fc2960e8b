package types

import "time"

// HandoffEvent records one committed ownership transfer. Events are
// append-only; the decision engine inspects the last K events per contact for
// loop detection and auditors read the full list.
type HandoffEvent struct {
	ID             string    `json:"id"`
	ContactID      string    `json:"contact_id"`
	FromAgent      AgentKind `json:"from_agent"`
	ToAgent        AgentKind `json:"to_agent"`
	Confidence     float64   `json:"confidence"`
	TriggerSummary string    `json:"trigger_summary"`
	Timestamp      time.Time `json:"timestamp"`
}
