package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testTime() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func TestAgentKind(t *testing.T) {
	assert.True(t, AgentLead.Valid())
	assert.True(t, AgentNone.Valid())
	assert.False(t, AgentKind("concierge").Valid())

	assert.True(t, AgentBuyer.Absorbing())
	assert.True(t, AgentSeller.Absorbing())
	assert.False(t, AgentLead.Absorbing())
	assert.False(t, AgentNone.Absorbing())
}

func TestNewContact(t *testing.T) {
	c := NewContact("c-1", testTime())
	assert.Equal(t, AgentLead, c.OwningAgent)
	assert.Equal(t, TemperatureUnknown, c.Temperature)
	assert.Nil(t, c.Score)
}

func TestSignalSet_IsZero(t *testing.T) {
	var s SignalSet
	assert.True(t, s.IsZero())

	s.BuyerIntent = 0.3
	assert.False(t, s.IsZero())
}

func TestSignalSet_Summary(t *testing.T) {
	assert.Equal(t, "buyer intent", (&SignalSet{BuyerIntent: 0.8, SellerIntent: 0.2}).Summary())
	assert.Equal(t, "seller intent", (&SignalSet{SellerIntent: 0.9}).Summary())
	assert.Equal(t, "urgency", (&SignalSet{Urgency: 0.5}).Summary())
	assert.Equal(t, "no dominant signal", (&SignalSet{}).Summary())
}

func TestQualificationScore_Total(t *testing.T) {
	q := QualificationScore{Readiness: 90, Commitment: 70}
	assert.InDelta(t, 80.0, q.Total(), 1e-9)
}

func TestActionBuilders(t *testing.T) {
	a := AddTag("c-1", "Hot-Lead")
	assert.Equal(t, ActionAddTag, a.Type)
	assert.Equal(t, "Hot-Lead", a.Tag)

	r := RemoveTag("c-1", "Lead-Bot")
	assert.Equal(t, ActionRemoveTag, r.Type)

	f := UpdateCustomField("c-1", "score", "85")
	assert.Equal(t, "85", f.FieldValue)

	w := TriggerWorkflow("c-1", "wf-hot")
	assert.Equal(t, "wf-hot", w.WorkflowID)
}
