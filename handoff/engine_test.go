package handoff

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jorgeai/leadflow/types"
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testEngine() *Engine {
	e := NewEngine(DefaultConfig(), nil)
	e.now = func() time.Time { return baseTime }
	n := 0
	e.newID = func() string { n++; return "evt-" + string(rune('0'+n)) }
	return e
}

func leadContact(id string) *types.Contact {
	return types.NewContact(id, baseTime.Add(-time.Hour))
}

func TestDecide_BelowThresholdStays(t *testing.T) {
	e := testEngine()
	c := leadContact("c-1")

	d, err := e.Decide(c, types.SignalSet{BuyerIntent: 0.69, SellerIntent: 0.69})
	require.NoError(t, err)
	assert.Equal(t, OutcomeStay, d.Outcome)
	assert.Equal(t, types.AgentLead, c.OwningAgent, "state unchanged")
}

func TestDecide_BuyerIntentTransitions(t *testing.T) {
	e := testEngine()
	c := leadContact("c-1")

	d, err := e.Decide(c, types.SignalSet{BuyerIntent: 0.85})
	require.NoError(t, err)
	require.Equal(t, OutcomeTransition, d.Outcome)
	assert.Equal(t, types.AgentLead, d.From)
	assert.Equal(t, types.AgentBuyer, d.To)
	assert.Equal(t, 0.85, d.Confidence)

	require.NoError(t, e.Apply(c, d))
	assert.Equal(t, types.AgentBuyer, c.OwningAgent)
	require.Len(t, c.HandoffHistory, 1)
	assert.Equal(t, types.AgentBuyer, c.HandoffHistory[0].ToAgent)
}

func TestDecide_TransitionActions(t *testing.T) {
	e := testEngine()
	c := leadContact("c-1")

	d, err := e.Decide(c, types.SignalSet{BuyerIntent: 0.9})
	require.NoError(t, err)

	require.Len(t, d.Actions, 3)
	assert.Equal(t, types.RemoveTag("c-1", "Lead-Bot"), d.Actions[0])
	assert.Equal(t, types.AddTag("c-1", "Buyer-Bot"), d.Actions[1])
	assert.Equal(t, types.AddTag("c-1", "Handoff-Lead-to-Buyer"), d.Actions[2])
}

func TestDecide_WorkflowTrigger(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tags.Workflows = map[types.AgentKind]string{types.AgentSeller: "wf-seller-intro"}
	e := NewEngine(cfg, nil)
	e.now = func() time.Time { return baseTime }

	d, err := e.Decide(leadContact("c-1"), types.SignalSet{SellerIntent: 0.8})
	require.NoError(t, err)
	require.Equal(t, OutcomeTransition, d.Outcome)
	last := d.Actions[len(d.Actions)-1]
	assert.Equal(t, types.ActionTriggerWorkflow, last.Type)
	assert.Equal(t, "wf-seller-intro", last.WorkflowID)
}

func TestDecide_HigherStrengthWins(t *testing.T) {
	e := testEngine()

	d, err := e.Decide(leadContact("c-1"), types.SignalSet{BuyerIntent: 0.9, SellerIntent: 0.8})
	require.NoError(t, err)
	assert.Equal(t, types.AgentBuyer, d.To)

	d, err = e.Decide(leadContact("c-2"), types.SignalSet{BuyerIntent: 0.75, SellerIntent: 0.95})
	require.NoError(t, err)
	assert.Equal(t, types.AgentSeller, d.To)
}

func TestDecide_ExactTieGoesToSeller(t *testing.T) {
	e := testEngine()

	d, err := e.Decide(leadContact("c-1"), types.SignalSet{BuyerIntent: 0.8, SellerIntent: 0.8})
	require.NoError(t, err)
	require.Equal(t, OutcomeTransition, d.Outcome)
	assert.Equal(t, types.AgentSeller, d.To)
}

func TestDecide_AbsorbingStatesNeverTransition(t *testing.T) {
	e := testEngine()

	for _, kind := range []types.AgentKind{types.AgentBuyer, types.AgentSeller} {
		c := leadContact("c-1")
		c.OwningAgent = kind

		d, err := e.Decide(c, types.SignalSet{BuyerIntent: 1, SellerIntent: 1})
		require.NoError(t, err)
		assert.Equal(t, OutcomeStay, d.Outcome, "kind=%s", kind)
		assert.Equal(t, kind, c.OwningAgent)
	}
}

func TestDecide_NoneTransitionsLikeLead(t *testing.T) {
	e := testEngine()
	c := leadContact("c-1")
	c.OwningAgent = types.AgentNone

	d, err := e.Decide(c, types.SignalSet{BuyerIntent: 0.75})
	require.NoError(t, err)
	assert.Equal(t, OutcomeTransition, d.Outcome)
	assert.Equal(t, types.AgentBuyer, d.To)
}

func TestDecide_LoopPrevention(t *testing.T) {
	e := testEngine()
	c := leadContact("c-1")
	c.HandoffHistory = []types.HandoffEvent{
		{FromAgent: types.AgentLead, ToAgent: types.AgentBuyer, Timestamp: baseTime.Add(-5 * time.Minute)},
		{FromAgent: types.AgentBuyer, ToAgent: types.AgentLead, Timestamp: baseTime.Add(-2 * time.Minute)},
	}

	d, err := e.Decide(c, types.SignalSet{BuyerIntent: 0.95})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuppressedLoop, d.Outcome)
	assert.Equal(t, types.AgentLead, c.OwningAgent, "suppression keeps current state")
	assert.Nil(t, d.Event)
}

func TestDecide_LoopWindowExpires(t *testing.T) {
	e := testEngine()
	c := leadContact("c-1")
	// Same oscillation, but outside the 10-minute window.
	c.HandoffHistory = []types.HandoffEvent{
		{FromAgent: types.AgentLead, ToAgent: types.AgentBuyer, Timestamp: baseTime.Add(-30 * time.Minute)},
		{FromAgent: types.AgentBuyer, ToAgent: types.AgentLead, Timestamp: baseTime.Add(-20 * time.Minute)},
	}

	d, err := e.Decide(c, types.SignalSet{BuyerIntent: 0.95})
	require.NoError(t, err)
	assert.Equal(t, OutcomeTransition, d.Outcome)
}

func TestDecide_LoopDepthBounds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LoopDepth = 2
	e := NewEngine(cfg, nil)
	e.now = func() time.Time { return baseTime }

	c := leadContact("c-1")
	// The oscillating edge is older than the last LoopDepth events.
	c.HandoffHistory = []types.HandoffEvent{
		{FromAgent: types.AgentBuyer, ToAgent: types.AgentLead, Timestamp: baseTime.Add(-3 * time.Minute)},
		{FromAgent: types.AgentLead, ToAgent: types.AgentSeller, Timestamp: baseTime.Add(-2 * time.Minute)},
		{FromAgent: types.AgentSeller, ToAgent: types.AgentLead, Timestamp: baseTime.Add(-time.Minute)},
	}

	d, err := e.Decide(c, types.SignalSet{BuyerIntent: 0.9})
	require.NoError(t, err)
	assert.Equal(t, OutcomeTransition, d.Outcome, "event outside depth window must not suppress")
}

func TestDecide_UnknownAgentIsFatalForMessage(t *testing.T) {
	e := testEngine()
	c := leadContact("c-1")
	c.OwningAgent = types.AgentKind("concierge")

	_, err := e.Decide(c, types.SignalSet{BuyerIntent: 0.9})
	require.Error(t, err)
	assert.Equal(t, types.ErrUnknownAgent, types.GetErrorCode(err))
	assert.Equal(t, types.AgentKind("concierge"), c.OwningAgent, "no partial commit")
}

func TestApply_RejectsNonTransition(t *testing.T) {
	e := testEngine()
	c := leadContact("c-1")

	err := e.Apply(c, Decision{Outcome: OutcomeStay})
	require.Error(t, err)
	assert.Equal(t, types.ErrInvalidTransition, types.GetErrorCode(err))
}

func TestTrackingTag(t *testing.T) {
	assert.Equal(t, "Handoff-Lead-to-Buyer", TrackingTag(types.AgentLead, types.AgentBuyer))
	assert.Equal(t, "Handoff-Lead-to-Seller", TrackingTag(types.AgentLead, types.AgentSeller))
}
