package orchestrator

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/jorgeai/leadflow/compliance"
	"github.com/jorgeai/leadflow/handoff"
	"github.com/jorgeai/leadflow/internal/cache"
	"github.com/jorgeai/leadflow/internal/metrics"
	"github.com/jorgeai/leadflow/persistence"
	"github.com/jorgeai/leadflow/ratelimit"
	"github.com/jorgeai/leadflow/scoring"
	"github.com/jorgeai/leadflow/signal"
	"github.com/jorgeai/leadflow/types"
)

const lockShards = 256

// Config tunes the pipeline around the component configs.
type Config struct {
	// HistoryWindow is how many recent turns feed signal extraction.
	HistoryWindow int `yaml:"history_window" json:"history_window"`
	// DedupeWindow is how long a webhook redelivery is recognized.
	DedupeWindow time.Duration `yaml:"dedupe_window" json:"dedupe_window"`
	// FallbackReply replaces a reply the compliance guard blocked.
	FallbackReply string `yaml:"fallback_reply" json:"fallback_reply"`
	// ComplianceAlertTag marks contacts whose reply was blocked or flagged.
	ComplianceAlertTag string `yaml:"compliance_alert_tag" json:"compliance_alert_tag"`
	// TemperatureTags maps each temperature to its CRM tag.
	TemperatureTags map[types.Temperature]string `yaml:"temperature_tags" json:"temperature_tags"`
	// ScoreFieldID and TemperatureFieldID name CRM custom fields that mirror
	// the qualification score and temperature. Empty disables the update.
	ScoreFieldID       string `yaml:"score_field_id" json:"score_field_id"`
	TemperatureFieldID string `yaml:"temperature_field_id" json:"temperature_field_id"`
}

// DefaultConfig returns the standard pipeline settings.
func DefaultConfig() Config {
	return Config{
		HistoryWindow:      10,
		DedupeWindow:       5 * time.Minute,
		FallbackReply:      "Thanks for your message! A member of our team will follow up with you shortly.",
		ComplianceAlertTag: "Compliance-Alert",
		TemperatureTags: map[types.Temperature]string{
			types.TemperatureHot:  "Hot-Lead",
			types.TemperatureWarm: "Warm-Lead",
			types.TemperatureCold: "Cold-Lead",
		},
	}
}

// Emitter is the outbound side-effect sink, satisfied by crm.Emitter.
type Emitter interface {
	Enqueue(actions ...types.Action) error
}

// Result reports what one inbound message produced.
type Result struct {
	ContactID string
	// Reply is the outbound text, empty when suppressed.
	Reply string
	// ReplySuppressed is set when the outbound rate ceiling held the reply.
	ReplySuppressed bool
	// Deduped is set when the message was a webhook redelivery; nothing ran.
	Deduped bool

	Outcome handoff.Outcome
	// HandoffRateLimited is set when a warranted transition was held back by
	// the per-contact handoff ceiling.
	HandoffRateLimited bool

	OwnedBy    types.AgentKind
	Score      types.QualificationScore
	Signals    types.SignalSet
	Compliance types.ComplianceVerdict
}

// Orchestrator wires the pipeline components together.
type Orchestrator struct {
	cfg       Config
	extractor *signal.Extractor
	scorer    *scoring.Scorer
	guard     *compliance.Guard
	engine    *handoff.Engine
	limiter   *ratelimit.Limiter
	store     persistence.ContactStore
	cache     *cache.TieredCache
	emitter   Emitter
	replies   ReplyGenerator

	logger  *zap.Logger
	metrics *metrics.Collector
	tracer  oteltrace.Tracer

	locks  [lockShards]sync.Mutex
	dedupe *dedupe
	now    func() time.Time
	newID  func() string
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithReplyGenerator replaces the built-in template replies.
func WithReplyGenerator(g ReplyGenerator) Option {
	return func(o *Orchestrator) { o.replies = g }
}

// WithCache enables read-through caching of signal extraction.
func WithCache(c *cache.TieredCache) Option {
	return func(o *Orchestrator) { o.cache = c }
}

// New wires an orchestrator. Store, engine, scorer, guard, limiter, and
// emitter are required; nil logger and collector degrade to no-ops.
func New(
	cfg Config,
	store persistence.ContactStore,
	extractor *signal.Extractor,
	scorer *scoring.Scorer,
	guard *compliance.Guard,
	engine *handoff.Engine,
	limiter *ratelimit.Limiter,
	emitter Emitter,
	logger *zap.Logger,
	collector *metrics.Collector,
	opts ...Option,
) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	def := DefaultConfig()
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = def.HistoryWindow
	}
	if cfg.DedupeWindow <= 0 {
		cfg.DedupeWindow = def.DedupeWindow
	}
	if cfg.FallbackReply == "" {
		cfg.FallbackReply = def.FallbackReply
	}
	if cfg.ComplianceAlertTag == "" {
		cfg.ComplianceAlertTag = def.ComplianceAlertTag
	}
	if cfg.TemperatureTags == nil {
		cfg.TemperatureTags = def.TemperatureTags
	}

	o := &Orchestrator{
		cfg:       cfg,
		extractor: extractor,
		scorer:    scorer,
		guard:     guard,
		engine:    engine,
		limiter:   limiter,
		store:     store,
		emitter:   emitter,
		replies:   TemplateReplies{},
		logger:    logger.With(zap.String("component", "orchestrator")),
		metrics:   collector,
		tracer:    otel.Tracer("leadflow/orchestrator"),
		dedupe:    newDedupe(cfg.DedupeWindow),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// HandleMessage runs the full pipeline for one inbound message. Messages for
// the same contact are serialized; different contacts proceed in parallel.
//
// A returned error means nothing was committed for this message. Once the
// store write succeeds, CRM delivery problems no longer surface here.
func (o *Orchestrator) HandleMessage(ctx context.Context, msg types.InboundMessage) (*Result, error) {
	start := o.now()
	if msg.ContactID == "" || msg.Text == "" {
		return nil, types.NewError(types.ErrInvalidRequest, "contact_id and text are required")
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = start
	}

	ctx, span := o.tracer.Start(ctx, "orchestrator.handle_message",
		oteltrace.WithAttributes(attribute.String("contact.id", msg.ContactID)))
	defer span.End()

	// Recorded before processing so a concurrent redelivery dedupes, and
	// dropped on failure so the provider's retry is processed fresh.
	fp := messageFingerprint(msg)
	if o.dedupe.Seen(fp, start) {
		o.logger.Info("duplicate delivery ignored", zap.String("contact_id", msg.ContactID))
		span.SetAttributes(attribute.Bool("deduped", true))
		return &Result{ContactID: msg.ContactID, Deduped: true}, nil
	}

	mu := &o.locks[shardFor(msg.ContactID)]
	mu.Lock()
	defer mu.Unlock()

	contact, err := o.loadContact(ctx, msg.ContactID)
	if err != nil {
		o.dedupe.Forget(fp)
		return nil, err
	}

	res, err := o.process(ctx, contact, msg)
	if err != nil {
		o.dedupe.Forget(fp)
	}

	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
	case res.ReplySuppressed:
		outcome = "suppressed"
	}
	o.metrics.RecordMessage(string(contact.OwningAgent), outcome, o.now().Sub(start))
	if err == nil {
		span.SetAttributes(
			attribute.String("handoff.outcome", string(res.Outcome)),
			attribute.String("contact.owner", string(res.OwnedBy)),
			attribute.String("compliance.status", string(res.Compliance.Status)),
		)
	}
	return res, err
}

// process runs inside the contact's exclusive section.
func (o *Orchestrator) process(ctx context.Context, contact *types.Contact, msg types.InboundMessage) (*Result, error) {
	history := contact.RecentTurns(o.cfg.HistoryWindow)
	signals := o.extractSignals(ctx, contact, msg, history)

	// The turn keeps its own single-message extraction; the aggregated set
	// drives this message's scoring but would double-count older turns if
	// it were folded back into history.
	turnSignals := o.extractor.ExtractTurn(msg.Text)
	contact.Turns = append(contact.Turns, types.ConversationTurn{
		ID:        o.newID(),
		ContactID: contact.ID,
		Direction: types.DirectionInbound,
		Text:      msg.Text,
		Timestamp: msg.Timestamp,
		Signals:   &turnSignals,
	})
	contact.LastInteraction = msg.Timestamp

	score := o.scorer.Score(contact, signals)
	var actions []types.Action
	actions = append(actions, o.temperatureActions(contact, score.Temperature)...)
	actions = append(actions, o.fieldActions(contact, score)...)
	contact.Score = &score
	contact.Temperature = score.Temperature

	// Decide before any commit: an invariant violation aborts the whole
	// message with contact state in the store untouched.
	decision, err := o.engine.Decide(contact, signals)
	if err != nil {
		o.logger.Error("handoff decision failed",
			zap.String("contact_id", contact.ID), zap.Error(err))
		return nil, err
	}

	handoffRateLimited := false
	if decision.Outcome == handoff.OutcomeTransition {
		if !o.limiter.AllowHandoff(contact.ID) {
			o.metrics.RecordRateLimitSuppression("handoff")
			o.metrics.RecordHandoff(string(decision.From), string(decision.To), "rate_limited")
			o.logger.Warn("handoff held by rate ceiling",
				zap.String("contact_id", contact.ID),
				zap.String("to", string(decision.To)))
			handoffRateLimited = true
			decision = handoff.Decision{Outcome: handoff.OutcomeStay, From: decision.From}
		} else {
			if err := o.engine.Apply(contact, decision); err != nil {
				return nil, err
			}
			actions = append(actions, decision.Actions...)
			o.metrics.RecordHandoff(string(decision.From), string(decision.To), "committed")
		}
	} else if decision.Outcome == handoff.OutcomeSuppressedLoop {
		o.metrics.RecordHandoff(string(decision.From), string(decision.To), "suppressed")
	}

	res := &Result{
		ContactID:          contact.ID,
		Outcome:            decision.Outcome,
		HandoffRateLimited: handoffRateLimited,
		OwnedBy:            contact.OwningAgent,
		Score:              score,
		Signals:            signals,
	}

	reply := o.generateReply(ctx, contact, signals, score)
	verdict := o.guard.Check(ctx, reply)
	res.Compliance = verdict
	o.metrics.RecordComplianceVerdict(string(verdict.Status), tierLabel(verdict.Tier))
	switch verdict.Status {
	case types.ComplianceBlocked:
		o.logger.Warn("reply blocked, sending fallback",
			zap.String("contact_id", contact.ID),
			zap.String("rule_id", verdict.RuleID))
		reply = o.cfg.FallbackReply
		actions = append(actions, types.AddTag(contact.ID, o.cfg.ComplianceAlertTag))
	case types.ComplianceFlagged:
		actions = append(actions, types.AddTag(contact.ID, o.cfg.ComplianceAlertTag))
	}

	if o.limiter.AllowOutbound(contact.ID) {
		res.Reply = reply
		contact.Turns = append(contact.Turns, types.ConversationTurn{
			ID:        o.newID(),
			ContactID: contact.ID,
			Direction: types.DirectionOutbound,
			Text:      reply,
			Timestamp: o.now(),
		})
	} else {
		o.metrics.RecordRateLimitSuppression("outbound")
		res.ReplySuppressed = true
	}

	contact.UpdatedAt = o.now()
	if err := o.store.Put(ctx, contact); err != nil {
		return nil, types.NewError(types.ErrStoreUnavailable, "contact commit failed").
			WithContact(contact.ID).WithCause(err).WithRetryable(true)
	}

	// Local commit is authoritative; delivery failures are logged by the
	// emitter and never unwind contact state.
	if len(actions) > 0 {
		if err := o.emitter.Enqueue(actions...); err != nil {
			o.logger.Error("crm enqueue failed after commit",
				zap.String("contact_id", contact.ID), zap.Error(err))
		}
	}
	return res, nil
}

func (o *Orchestrator) loadContact(ctx context.Context, contactID string) (*types.Contact, error) {
	contact, err := o.store.Get(ctx, contactID)
	if errors.Is(err, persistence.ErrNotFound) {
		return types.NewContact(contactID, o.now()), nil
	}
	if err != nil {
		return nil, types.NewError(types.ErrStoreUnavailable, "contact load failed").
			WithContact(contactID).WithCause(err).WithRetryable(true)
	}
	return contact, nil
}

// extractSignals runs the extractor, through the read-through cache when one
// is configured. A cache failure falls back to direct extraction; extraction
// is deterministic, so a cached value and a fresh one are interchangeable.
func (o *Orchestrator) extractSignals(ctx context.Context, contact *types.Contact, msg types.InboundMessage, history []types.ConversationTurn) types.SignalSet {
	if o.cache == nil {
		return o.extractor.Extract(msg.Text, history)
	}
	key := cache.Key("signals", struct {
		Contact string `json:"contact"`
		Text    string `json:"text"`
		Turns   int    `json:"turns"`
	}{contact.ID, msg.Text, len(contact.Turns)})

	var signals types.SignalSet
	err := o.cache.GetOrComputeJSON(ctx, key, &signals, func(context.Context) (any, error) {
		return o.extractor.Extract(msg.Text, history), nil
	})
	if err != nil {
		o.logger.Warn("signal cache unavailable, extracting directly",
			zap.String("contact_id", contact.ID), zap.Error(err))
		return o.extractor.Extract(msg.Text, history)
	}
	return signals
}

func (o *Orchestrator) generateReply(ctx context.Context, contact *types.Contact, signals types.SignalSet, score types.QualificationScore) string {
	reply, err := o.replies.Generate(ctx, contact, signals, score)
	if err != nil || reply == "" {
		o.logger.Warn("reply generation failed, using fallback",
			zap.String("contact_id", contact.ID), zap.Error(err))
		return o.cfg.FallbackReply
	}
	return reply
}

// temperatureActions keeps exactly one temperature tag on the contact,
// swapped only when the classification changes.
func (o *Orchestrator) temperatureActions(contact *types.Contact, next types.Temperature) []types.Action {
	prev := contact.Temperature
	if prev == next {
		return nil
	}
	var actions []types.Action
	if tag, ok := o.cfg.TemperatureTags[prev]; ok && tag != "" {
		actions = append(actions, types.RemoveTag(contact.ID, tag))
	}
	if tag, ok := o.cfg.TemperatureTags[next]; ok && tag != "" {
		actions = append(actions, types.AddTag(contact.ID, tag))
	}
	return actions
}

// fieldActions mirrors the qualification score and temperature into CRM
// custom fields, emitted only when the displayed value changes. Called
// before the new score is assigned to the contact.
func (o *Orchestrator) fieldActions(contact *types.Contact, score types.QualificationScore) []types.Action {
	var actions []types.Action
	if o.cfg.ScoreFieldID != "" {
		next := strconv.FormatFloat(score.Total(), 'f', 1, 64)
		prev := ""
		if contact.Score != nil {
			prev = strconv.FormatFloat(contact.Score.Total(), 'f', 1, 64)
		}
		if next != prev {
			actions = append(actions, types.UpdateCustomField(contact.ID, o.cfg.ScoreFieldID, next))
		}
	}
	if o.cfg.TemperatureFieldID != "" && contact.Temperature != score.Temperature {
		actions = append(actions, types.UpdateCustomField(contact.ID, o.cfg.TemperatureFieldID, string(score.Temperature)))
	}
	return actions
}

func shardFor(contactID string) int {
	h := fnv.New32a()
	h.Write([]byte(contactID))
	return int(h.Sum32() % lockShards)
}

func tierLabel(tier int) string {
	switch tier {
	case 0:
		return "length"
	case 1:
		return "pattern"
	default:
		return "audit"
	}
}
