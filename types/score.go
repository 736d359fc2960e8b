package types

import "time"

// QualificationScore is the result of one scoring pass. Each new inbound turn
// supersedes the previous score; scores are never merged.
type QualificationScore struct {
	// Readiness measures financial readiness (budget clarity, pre-approval),
	// in [0,100].
	Readiness float64 `json:"readiness"`

	// Commitment measures psychological commitment (engagement, urgency,
	// motivation), in [0,100].
	Commitment float64 `json:"commitment"`

	Temperature Temperature `json:"temperature"`

	// Confidence in [0,1] reflects how much signal backed the computation.
	Confidence float64 `json:"confidence"`

	// WeightsVersion records which weight table produced the score.
	WeightsVersion string `json:"weights_version"`

	ComputedAt time.Time `json:"computed_at"`
}

// Total is the blended score used for temperature classification, in [0,100].
func (q *QualificationScore) Total() float64 {
	return (q.Readiness + q.Commitment) / 2
}
