package scoring

import (
	"math"
	"time"

	"github.com/jorgeai/leadflow/types"
)

// Thresholds are the temperature classification boundaries. Boundary values
// resolve to the higher bucket: exactly Hot is hot, exactly Warm is warm.
type Thresholds struct {
	Hot  float64 `yaml:"hot" json:"hot"`
	Warm float64 `yaml:"warm" json:"warm"`
}

// DefaultThresholds returns the standard 80/40 split.
func DefaultThresholds() Thresholds {
	return Thresholds{Hot: 80, Warm: 40}
}

// Scorer turns a SignalSet into a QualificationScore. Scoring is pure and
// O(1): the history window is already folded into the SignalSet by the
// extractor. Callers persist the result; each computation supersedes the
// contact's previous score.
type Scorer struct {
	thresholds Thresholds
	now        func() time.Time
}

// NewScorer creates a scorer with the given thresholds.
func NewScorer(thresholds Thresholds) *Scorer {
	return &Scorer{thresholds: thresholds, now: time.Now}
}

// Score computes the qualification score for a contact given fresh signals.
// The weight table is selected by the contact's current owning agent.
func (s *Scorer) Score(contact *types.Contact, signals types.SignalSet) types.QualificationScore {
	kind := types.AgentNone
	if contact != nil {
		kind = contact.OwningAgent
	}
	w := WeightsFor(kind)

	readiness := 100 * clamp01(
		w.Budget*budgetClarity(signals)+
			w.PreApproval*boolSignal(signals.PreApproved)+
			w.Timeline*timelineScore(signals.TimelineDays)+
			w.Intent*math.Max(signals.BuyerIntent, signals.SellerIntent))

	commitment := 100 * clamp01(
		w.Engagement*signals.Engagement+
			w.Urgency*signals.Urgency+
			w.Motivation*signals.Motivation+
			w.PriceExpectation*boolSignal(signals.PriceExpectation))

	score := types.QualificationScore{
		Readiness:      round1(readiness),
		Commitment:     round1(commitment),
		Confidence:     confidence(signals),
		WeightsVersion: WeightsVersion,
		ComputedAt:     s.now(),
	}
	score.Temperature = s.Classify(score.Total())
	return score
}

// Classify maps a blended score in [0,100] to a temperature. Boundaries
// resolve upward: Classify(80) is hot, Classify(40) is warm.
func (s *Scorer) Classify(total float64) types.Temperature {
	switch {
	case total >= s.thresholds.Hot:
		return types.TemperatureHot
	case total >= s.thresholds.Warm:
		return types.TemperatureWarm
	default:
		return types.TemperatureCold
	}
}

// confidence reflects how many independent signal groups contributed. One
// group is weak evidence; four or more is full confidence.
func confidence(signals types.SignalSet) float64 {
	groups := 0
	if signals.BuyerIntent > 0 || signals.SellerIntent > 0 {
		groups++
	}
	if signals.BudgetMentioned || signals.PreApproved {
		groups++
	}
	if signals.Urgency > 0 || signals.TimelineDays > 0 {
		groups++
	}
	if signals.Motivation > 0 || signals.PriceExpectation {
		groups++
	}
	if signals.Engagement > 0 {
		groups++
	}
	return clamp01(float64(groups) / 4)
}

// budgetClarity scores the financial picture: a stated budget is the
// strongest marker, a pre-approval without a figure still counts.
func budgetClarity(signals types.SignalSet) float64 {
	switch {
	case signals.BudgetMentioned:
		return 1
	case signals.PreApproved:
		return 0.6
	default:
		return 0
	}
}

// timelineScore rewards short horizons: 1.0 at a week or less, fading to 0
// at 180 days and beyond. No stated timeline scores zero.
func timelineScore(days int) float64 {
	if days <= 0 {
		return 0
	}
	if days <= 7 {
		return 1
	}
	if days >= 180 {
		return 0
	}
	return 1 - float64(days-7)/173
}

func boolSignal(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
