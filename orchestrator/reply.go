package orchestrator

import (
	"context"
	"fmt"

	"github.com/jorgeai/leadflow/types"
)

// ReplyGenerator produces the outbound reply for one inbound turn. The
// orchestrator runs every generated reply through the compliance guard
// before it leaves the system.
type ReplyGenerator interface {
	Generate(ctx context.Context, contact *types.Contact, signals types.SignalSet, score types.QualificationScore) (string, error)
}

// ReplyGeneratorFunc adapts a function to ReplyGenerator.
type ReplyGeneratorFunc func(ctx context.Context, contact *types.Contact, signals types.SignalSet, score types.QualificationScore) (string, error)

func (f ReplyGeneratorFunc) Generate(ctx context.Context, contact *types.Contact, signals types.SignalSet, score types.QualificationScore) (string, error) {
	return f(ctx, contact, signals, score)
}

// TemplateReplies is the built-in generator: a short acknowledgement keyed by
// the owning agent and temperature. Deployments that plug in an LLM replace
// this through the Orchestrator option.
type TemplateReplies struct{}

func (TemplateReplies) Generate(_ context.Context, contact *types.Contact, signals types.SignalSet, score types.QualificationScore) (string, error) {
	name := "there"
	switch contact.OwningAgent {
	case types.AgentBuyer:
		if score.Temperature == types.TemperatureHot {
			return "Great news! You look ready to move forward. I can line up showings this week. What neighborhoods are you focused on?", nil
		}
		return fmt.Sprintf("Hi %s, happy to help with your home search. What's your ideal timeline and area?", name), nil
	case types.AgentSeller:
		if signals.PriceExpectation {
			return "I can pull a market analysis for your property today. What's the best time for a quick call?", nil
		}
		return "Thinking about selling? I can put together a free valuation of your home. What's the property address?", nil
	default:
		if score.Temperature == types.TemperatureHot {
			return "Thanks for reaching out! Sounds like you're ready to make a move. Are you looking to buy or sell?", nil
		}
		return "Thanks for reaching out! Are you currently looking to buy, sell, or just exploring the market?", nil
	}
}
