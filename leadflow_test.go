package leadflow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jorgeai/leadflow/handoff"
	"github.com/jorgeai/leadflow/ratelimit"
	"github.com/jorgeai/leadflow/types"
)

func TestNew_Defaults(t *testing.T) {
	orch := New()
	require.NotNil(t, orch)

	res, err := orch.HandleMessage(context.Background(), types.InboundMessage{
		ContactID: "contact-1",
		Text:      "just browsing for now",
		Timestamp: time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, types.AgentLead, res.OwnedBy)
	assert.Equal(t, handoff.OutcomeStay, res.Outcome)
	assert.NotEmpty(t, res.Reply)
}

func TestNew_OptionsApplied(t *testing.T) {
	var got []types.Action
	emitter := emitterFunc(func(actions ...types.Action) error {
		got = append(got, actions...)
		return nil
	})

	orch := New(
		WithEmitter(emitter),
		WithRateLimits(ratelimit.Config{Window: time.Hour, MaxOutbound: 5, MaxHandoffs: 2}),
	)
	require.NotNil(t, orch)

	_, err := orch.HandleMessage(context.Background(), types.InboundMessage{
		ContactID: "contact-2",
		Text:      "I want to buy a house, I am pre-approved with a $600k budget",
		Timestamp: time.Now(),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, got)
}

type emitterFunc func(...types.Action) error

func (f emitterFunc) Enqueue(actions ...types.Action) error { return f(actions...) }
