package types

// ComplianceStatus is the terminal state of a compliance check.
type ComplianceStatus string

const (
	// CompliancePass means the text may be sent as-is.
	CompliancePass ComplianceStatus = "pass"
	// ComplianceFlagged means the text is sent but the event is logged for
	// review. Tier-2 audit failures also resolve here (fail-open).
	ComplianceFlagged ComplianceStatus = "flagged"
	// ComplianceBlocked means the text must be replaced with the fallback
	// reply and a compliance alert emitted.
	ComplianceBlocked ComplianceStatus = "blocked"
)

// ComplianceVerdict is the outcome of running outbound text through the
// guard. Verdicts are ephemeral; they are logged but not persisted.
type ComplianceVerdict struct {
	Status ComplianceStatus `json:"status"`
	// Tier that produced the verdict: 0 length, 1 pattern, 2 semantic.
	Tier int `json:"tier"`
	// RuleID identifies the matched rule when a pattern or audit fired.
	RuleID string `json:"rule_id,omitempty"`
	Reason string `json:"reason,omitempty"`
}
