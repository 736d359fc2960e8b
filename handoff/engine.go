package handoff

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jorgeai/leadflow/types"
)

// Outcome classifies what the engine decided for one inbound message.
type Outcome string

const (
	// OutcomeStay means no transition was warranted.
	OutcomeStay Outcome = "stay"
	// OutcomeTransition means a handoff should be committed.
	OutcomeTransition Outcome = "transition"
	// OutcomeSuppressedLoop means a warranted transition was suppressed by
	// loop prevention.
	OutcomeSuppressedLoop Outcome = "suppressed_loop"
)

// Decision is the engine's verdict for one message. When Outcome is
// OutcomeTransition, Event and Actions describe the commit; the caller
// applies them inside the contact's exclusive section.
type Decision struct {
	Outcome    Outcome
	From       types.AgentKind
	To         types.AgentKind
	Confidence float64
	Reason     string
	Event      *types.HandoffEvent
	Actions    []types.Action
}

// TagConfig names the CRM tags the engine maintains.
type TagConfig struct {
	// Ownership holds the routing tag per agent kind.
	Ownership map[types.AgentKind]string `yaml:"ownership" json:"ownership"`
	// Workflows optionally maps a target agent to a workflow triggered on
	// handoff; empty means no trigger.
	Workflows map[types.AgentKind]string `yaml:"workflows" json:"workflows"`
}

// DefaultTagConfig returns the standard routing tag vocabulary.
func DefaultTagConfig() TagConfig {
	return TagConfig{
		Ownership: map[types.AgentKind]string{
			types.AgentLead:   "Lead-Bot",
			types.AgentBuyer:  "Buyer-Bot",
			types.AgentSeller: "Seller-Bot",
		},
		Workflows: map[types.AgentKind]string{},
	}
}

// Config configures the engine.
type Config struct {
	// Threshold is the minimum aggregated intent strength for a handoff.
	Threshold float64 `yaml:"threshold" json:"threshold"`
	// LoopWindow is how far back loop prevention looks.
	LoopWindow time.Duration `yaml:"loop_window" json:"loop_window"`
	// LoopDepth is how many recent handoff events are inspected.
	LoopDepth int `yaml:"loop_depth" json:"loop_depth"`
	// Tags is the CRM tag vocabulary.
	Tags TagConfig `yaml:"tags" json:"tags"`
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		Threshold:  0.7,
		LoopWindow: 10 * time.Minute,
		LoopDepth:  3,
		Tags:       DefaultTagConfig(),
	}
}

// Engine decides handoffs. It holds no per-contact state itself; all state
// lives on the Contact, so the engine is safe for concurrent use as long as
// callers serialize per contact.
type Engine struct {
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// NewEngine creates an engine.
func NewEngine(cfg Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultConfig().Threshold
	}
	if cfg.LoopWindow <= 0 {
		cfg.LoopWindow = DefaultConfig().LoopWindow
	}
	if cfg.LoopDepth <= 0 {
		cfg.LoopDepth = DefaultConfig().LoopDepth
	}
	if cfg.Tags.Ownership == nil {
		cfg.Tags = DefaultTagConfig()
	}
	return &Engine{
		cfg:    cfg,
		logger: logger.With(zap.String("component", "handoff_engine")),
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
}

// Decide evaluates the state machine for one inbound message. It does not
// mutate the contact; call Apply with a transition decision inside the
// contact's exclusive section.
func (e *Engine) Decide(contact *types.Contact, signals types.SignalSet) (Decision, error) {
	if contact == nil {
		return Decision{}, types.NewError(types.ErrInvalidRequest, "nil contact")
	}
	from := contact.OwningAgent
	if !from.Valid() {
		// Invariant violation: unknown owning state. Fatal for this message
		// only; the caller leaves state untouched.
		return Decision{}, types.NewError(types.ErrUnknownAgent,
			fmt.Sprintf("contact %s owned by unknown agent %q", contact.ID, from)).
			WithContact(contact.ID)
	}

	// Absorbing states never transition automatically.
	if from.Absorbing() {
		return Decision{Outcome: OutcomeStay, From: from, Reason: "owning agent is terminal"}, nil
	}

	to, strength := e.target(signals)
	if to == types.AgentNone {
		return Decision{Outcome: OutcomeStay, From: from, Reason: "intent below threshold"}, nil
	}

	if e.wouldLoop(contact, from, to) {
		e.logger.Warn("handoff suppressed by loop prevention",
			zap.String("contact_id", contact.ID),
			zap.String("from", string(from)),
			zap.String("to", string(to)))
		return Decision{
			Outcome: OutcomeSuppressedLoop,
			From:    from,
			To:      to,
			Reason:  "transition would recreate a recent oscillation",
		}, nil
	}

	now := e.now()
	event := &types.HandoffEvent{
		ID:             e.newID(),
		ContactID:      contact.ID,
		FromAgent:      from,
		ToAgent:        to,
		Confidence:     strength,
		TriggerSummary: signals.Summary(),
		Timestamp:      now,
	}

	return Decision{
		Outcome:    OutcomeTransition,
		From:       from,
		To:         to,
		Confidence: strength,
		Event:      event,
		Actions:    e.transitionActions(contact.ID, from, to),
	}, nil
}

// Apply commits a transition decision onto the contact: ownership changes
// and the event is appended. Call only with OutcomeTransition decisions and
// only while holding the contact's exclusive section.
func (e *Engine) Apply(contact *types.Contact, d Decision) error {
	if d.Outcome != OutcomeTransition || d.Event == nil {
		return types.NewError(types.ErrInvalidTransition, "decision is not a committed transition")
	}
	if !d.To.Valid() || d.To == types.AgentNone {
		return types.NewError(types.ErrInvalidTransition,
			fmt.Sprintf("cannot transition to %q", d.To)).WithContact(contact.ID)
	}
	contact.OwningAgent = d.To
	contact.HandoffHistory = append(contact.HandoffHistory, *d.Event)
	contact.UpdatedAt = d.Event.Timestamp

	e.logger.Info("handoff committed",
		zap.String("contact_id", contact.ID),
		zap.String("from", string(d.From)),
		zap.String("to", string(d.To)),
		zap.Float64("confidence", d.Confidence))
	return nil
}

// target resolves which agent the signals point at. Both intents at or above
// threshold resolve to the stronger; an exact tie goes to seller. The
// tie-break is a business rule, not an accident of evaluation order.
func (e *Engine) target(signals types.SignalSet) (types.AgentKind, float64) {
	buyer := signals.BuyerIntent >= e.cfg.Threshold
	seller := signals.SellerIntent >= e.cfg.Threshold

	switch {
	case buyer && seller:
		if signals.BuyerIntent > signals.SellerIntent {
			return types.AgentBuyer, signals.BuyerIntent
		}
		return types.AgentSeller, signals.SellerIntent
	case buyer:
		return types.AgentBuyer, signals.BuyerIntent
	case seller:
		return types.AgentSeller, signals.SellerIntent
	default:
		return types.AgentNone, 0
	}
}

// wouldLoop reports whether committing from→to would recreate an edge seen
// (in either direction) in the last LoopDepth events inside LoopWindow.
// History [lead→buyer, buyer→lead] plus a new lead→buyer is the canonical
// oscillation this suppresses.
func (e *Engine) wouldLoop(contact *types.Contact, from, to types.AgentKind) bool {
	cutoff := e.now().Add(-e.cfg.LoopWindow)
	for _, ev := range contact.RecentHandoffs(e.cfg.LoopDepth) {
		if ev.Timestamp.Before(cutoff) {
			continue
		}
		sameEdge := ev.FromAgent == from && ev.ToAgent == to
		reverseEdge := ev.FromAgent == to && ev.ToAgent == from
		if sameEdge || reverseEdge {
			return true
		}
	}
	return false
}

// transitionActions builds the CRM side effects for a committed handoff:
// swap ownership tags, add the tracking tag, optionally trigger the target
// agent's workflow.
func (e *Engine) transitionActions(contactID string, from, to types.AgentKind) []types.Action {
	actions := make([]types.Action, 0, 4)
	if tag, ok := e.cfg.Tags.Ownership[from]; ok && tag != "" {
		actions = append(actions, types.RemoveTag(contactID, tag))
	}
	if tag, ok := e.cfg.Tags.Ownership[to]; ok && tag != "" {
		actions = append(actions, types.AddTag(contactID, tag))
	}
	actions = append(actions, types.AddTag(contactID, TrackingTag(from, to)))
	if wf, ok := e.cfg.Tags.Workflows[to]; ok && wf != "" {
		actions = append(actions, types.TriggerWorkflow(contactID, wf))
	}
	return actions
}

// TrackingTag renders the per-transition audit tag, e.g.
// "Handoff-Lead-to-Buyer".
func TrackingTag(from, to types.AgentKind) string {
	return fmt.Sprintf("Handoff-%s-to-%s", titleKind(from), titleKind(to))
}

func titleKind(k types.AgentKind) string {
	s := string(k)
	if s == "" {
		return "None"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
