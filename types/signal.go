package types

// SignalSet holds the typed signals extracted from one inbound message plus
// its recent history. All strengths are in [0,1]. A SignalSet is immutable
// once attached to a turn.
type SignalSet struct {
	// Intent match strengths per target agent.
	BuyerIntent  float64 `json:"buyer_intent"`
	SellerIntent float64 `json:"seller_intent"`

	// Urgency cues ("asap", "this week", short timelines).
	Urgency float64 `json:"urgency"`

	// Financial readiness markers.
	BudgetMentioned bool    `json:"budget_mentioned"`
	BudgetAmount    float64 `json:"budget_amount,omitempty"`
	PreApproved     bool    `json:"pre_approved"`

	// Seller motivation markers (price expectations, reasons to sell).
	Motivation       float64 `json:"motivation"`
	PriceExpectation bool    `json:"price_expectation"`

	// Commitment cues independent of direction (questions asked, engagement).
	Engagement float64 `json:"engagement"`

	// TimelineDays is the shortest explicit timeline mentioned, 0 when none.
	TimelineDays int `json:"timeline_days,omitempty"`

	// MatchedKeywords records which patterns fired, for audit logging.
	MatchedKeywords []string `json:"matched_keywords,omitempty"`
}

// IsZero reports whether no signal fired at all.
func (s *SignalSet) IsZero() bool {
	return s.BuyerIntent == 0 && s.SellerIntent == 0 && s.Urgency == 0 &&
		!s.BudgetMentioned && !s.PreApproved && s.Motivation == 0 &&
		!s.PriceExpectation && s.Engagement == 0 && s.TimelineDays == 0 &&
		len(s.MatchedKeywords) == 0
}

// Summary returns a short description of the dominant signals, used on
// handoff events for auditing.
func (s *SignalSet) Summary() string {
	switch {
	case s == nil:
		return "no signals"
	case s.BuyerIntent >= s.SellerIntent && s.BuyerIntent > 0:
		return "buyer intent"
	case s.SellerIntent > 0:
		return "seller intent"
	case s.Urgency > 0:
		return "urgency"
	default:
		return "no dominant signal"
	}
}
