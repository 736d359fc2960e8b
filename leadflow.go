// Package leadflow provides a top-level convenience entry point for building
// the qualification pipeline with minimal boilerplate.
//
// Usage:
//
//	import "github.com/jorgeai/leadflow"
//
//	orch := leadflow.New()
//	orch := leadflow.New(leadflow.WithStore(store), leadflow.WithEmitter(em))
//
// Every component defaults to its in-process form: an in-memory contact
// store, template replies, no CRM emission, and no tier-2 audit. Production
// deployments should wire real backends through the options or use the
// server in cmd/leadflow, which assembles the same pipeline from config.
package leadflow

import (
	"go.uber.org/zap"

	"github.com/jorgeai/leadflow/compliance"
	"github.com/jorgeai/leadflow/handoff"
	"github.com/jorgeai/leadflow/internal/metrics"
	"github.com/jorgeai/leadflow/orchestrator"
	"github.com/jorgeai/leadflow/persistence"
	"github.com/jorgeai/leadflow/ratelimit"
	"github.com/jorgeai/leadflow/scoring"
	"github.com/jorgeai/leadflow/signal"
	"github.com/jorgeai/leadflow/types"
)

type settings struct {
	store     persistence.ContactStore
	emitter   orchestrator.Emitter
	auditor   compliance.Auditor
	replies   orchestrator.ReplyGenerator
	logger    *zap.Logger
	collector *metrics.Collector

	thresholds scoring.Thresholds
	handoffCfg handoff.Config
	limitCfg   ratelimit.Config
	guardCfg   compliance.Config
	orchCfg    orchestrator.Config
}

// Option configures the pipeline created by [New].
type Option func(*settings)

// WithStore sets the contact store. Defaults to an in-memory store.
func WithStore(s persistence.ContactStore) Option {
	return func(cfg *settings) { cfg.store = s }
}

// WithEmitter sets the CRM action sink. Defaults to discarding actions.
func WithEmitter(e orchestrator.Emitter) Option {
	return func(cfg *settings) { cfg.emitter = e }
}

// WithAuditor enables the tier-2 compliance audit.
func WithAuditor(a compliance.Auditor) Option {
	return func(cfg *settings) { cfg.auditor = a }
}

// WithReplyGenerator replaces the built-in template replies.
func WithReplyGenerator(g orchestrator.ReplyGenerator) Option {
	return func(cfg *settings) { cfg.replies = g }
}

// WithLogger sets a custom zap logger.
func WithLogger(l *zap.Logger) Option {
	return func(cfg *settings) { cfg.logger = l }
}

// WithMetrics sets the Prometheus collector.
func WithMetrics(c *metrics.Collector) Option {
	return func(cfg *settings) { cfg.collector = c }
}

// WithThresholds overrides the hot and warm temperature boundaries.
func WithThresholds(t scoring.Thresholds) Option {
	return func(cfg *settings) { cfg.thresholds = t }
}

// WithHandoffConfig overrides the handoff decision settings.
func WithHandoffConfig(c handoff.Config) Option {
	return func(cfg *settings) { cfg.handoffCfg = c }
}

// WithRateLimits overrides the per-contact outbound and handoff ceilings.
func WithRateLimits(c ratelimit.Config) Option {
	return func(cfg *settings) { cfg.limitCfg = c }
}

// WithGuardConfig overrides the compliance guard settings.
func WithGuardConfig(c compliance.Config) Option {
	return func(cfg *settings) { cfg.guardCfg = c }
}

// WithPipelineConfig overrides the orchestrator settings (dedupe window,
// fallback reply, temperature tags).
func WithPipelineConfig(c orchestrator.Config) Option {
	return func(cfg *settings) { cfg.orchCfg = c }
}

type nopEmitter struct{}

func (nopEmitter) Enqueue(...types.Action) error { return nil }

// New assembles a ready-to-use orchestrator from the options. With no
// options it is fully in-process and safe for tests and experiments.
func New(opts ...Option) *orchestrator.Orchestrator {
	cfg := &settings{
		thresholds: scoring.DefaultThresholds(),
		handoffCfg: handoff.DefaultConfig(),
		limitCfg:   ratelimit.DefaultConfig(),
		guardCfg:   compliance.DefaultConfig(),
		orchCfg:    orchestrator.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.store == nil {
		cfg.store = persistence.NewMemoryStore()
	}
	if cfg.emitter == nil {
		cfg.emitter = nopEmitter{}
	}

	var orchOpts []orchestrator.Option
	if cfg.replies != nil {
		orchOpts = append(orchOpts, orchestrator.WithReplyGenerator(cfg.replies))
	}

	return orchestrator.New(
		cfg.orchCfg,
		cfg.store,
		signal.NewExtractor(),
		scoring.NewScorer(cfg.thresholds),
		compliance.NewGuard(cfg.guardCfg, cfg.auditor, cfg.logger),
		handoff.NewEngine(cfg.handoffCfg, cfg.logger),
		ratelimit.NewLimiter(cfg.limitCfg, cfg.logger),
		cfg.emitter,
		cfg.logger,
		cfg.collector,
		orchOpts...,
	)
}
