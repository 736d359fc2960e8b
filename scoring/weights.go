package scoring

import "github.com/jorgeai/leadflow/types"

// WeightsVersion identifies the active weight table. Bump on any tuning
// change so persisted scores can be told apart from recomputed ones.
const WeightsVersion = "2025-06.v3"

// Weights maps signal components to score contributions. Readiness weights
// and commitment weights are normalized independently: each group should sum
// to 1 so the raw score lands in [0,100].
type Weights struct {
	// Readiness contributions.
	Budget      float64
	PreApproval float64
	Timeline    float64
	Intent      float64

	// Commitment contributions.
	Engagement       float64
	Urgency          float64
	Motivation       float64
	PriceExpectation float64
}

// weightTable holds the per-agent weighting. Seller-owned contacts weight
// motivation and price expectation; buyer-owned contacts weight budget and
// pre-approval; lead (and none) sit between, tilted toward intent discovery.
var weightTable = map[types.AgentKind]Weights{
	types.AgentLead: {
		Budget: 0.25, PreApproval: 0.20, Timeline: 0.15, Intent: 0.40,
		Engagement: 0.35, Urgency: 0.30, Motivation: 0.25, PriceExpectation: 0.10,
	},
	types.AgentBuyer: {
		Budget: 0.40, PreApproval: 0.35, Timeline: 0.15, Intent: 0.10,
		Engagement: 0.35, Urgency: 0.40, Motivation: 0.15, PriceExpectation: 0.10,
	},
	types.AgentSeller: {
		Budget: 0.10, PreApproval: 0.05, Timeline: 0.35, Intent: 0.50,
		Engagement: 0.20, Urgency: 0.25, Motivation: 0.35, PriceExpectation: 0.20,
	},
}

// WeightsFor returns the weight entry for an agent kind. Unowned contacts
// score with the lead table.
func WeightsFor(kind types.AgentKind) Weights {
	if w, ok := weightTable[kind]; ok {
		return w
	}
	return weightTable[types.AgentLead]
}
