package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Collector holds all pipeline metrics. Create one per process: metrics are
// registered on the default registry via promauto and duplicate registration
// panics.
type Collector struct {
	// HTTP ingress
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Pipeline
	messagesProcessed *prometheus.CounterVec
	pipelineDuration  *prometheus.HistogramVec

	// Handoff
	handoffsTotal *prometheus.CounterVec

	// Compliance
	complianceVerdicts *prometheus.CounterVec

	// Cache
	cacheHits   *prometheus.CounterVec
	cacheMisses prometheus.Counter

	// Rate limiting
	rateLimitSuppressions *prometheus.CounterVec

	// CRM emitter
	crmActionsTotal  *prometheus.CounterVec
	crmActionRetries prometheus.Counter

	logger *zap.Logger
}

// NewCollector creates and registers all metric vectors under namespace on
// the default registry.
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	return NewCollectorWith(prometheus.DefaultRegisterer, namespace, logger)
}

// NewCollectorWith registers on a specific registerer. Tests use a fresh
// registry to avoid duplicate-registration panics.
func NewCollectorWith(reg prometheus.Registerer, namespace string, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	factory := promauto.With(reg)
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.httpRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	c.httpRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	c.messagesProcessed = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_processed_total",
			Help:      "Inbound messages processed, by owning agent and outcome",
		},
		[]string{"agent", "outcome"},
	)

	c.pipelineDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_seconds",
			Help:      "End-to-end processing duration per inbound message",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"agent"},
	)

	c.handoffsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handoffs_total",
			Help:      "Handoff decisions, by source, target and outcome",
		},
		[]string{"from", "to", "outcome"},
	)

	c.complianceVerdicts = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compliance_verdicts_total",
			Help:      "Compliance guard verdicts by status and tier",
		},
		[]string{"status", "tier"},
	)

	c.cacheHits = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Cache hits by tier",
		},
		[]string{"tier"},
	)

	c.cacheMisses = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Cache misses across all tiers (compute fallback)",
		},
	)

	c.rateLimitSuppressions = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_suppressions_total",
			Help:      "Actions suppressed by the per-contact rate limiter",
		},
		[]string{"kind"},
	)

	c.crmActionsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "crm_actions_total",
			Help:      "CRM side-effect emissions by action type and result",
		},
		[]string{"type", "result"},
	)

	c.crmActionRetries = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "crm_action_retries_total",
			Help:      "Retries of failed CRM side-effect emissions",
		},
	)

	return c
}

// RecordHTTPRequest records one served HTTP request.
func (c *Collector) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if c == nil {
		return
	}
	c.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordMessage records one processed inbound message.
func (c *Collector) RecordMessage(agent, outcome string, duration time.Duration) {
	if c == nil {
		return
	}
	c.messagesProcessed.WithLabelValues(agent, outcome).Inc()
	c.pipelineDuration.WithLabelValues(agent).Observe(duration.Seconds())
}

// RecordHandoff records a handoff decision outcome: committed, suppressed_loop,
// suppressed_rate or below_threshold.
func (c *Collector) RecordHandoff(from, to, outcome string) {
	if c == nil {
		return
	}
	c.handoffsTotal.WithLabelValues(from, to, outcome).Inc()
}

// RecordComplianceVerdict records a guard verdict.
func (c *Collector) RecordComplianceVerdict(status, tier string) {
	if c == nil {
		return
	}
	c.complianceVerdicts.WithLabelValues(status, tier).Inc()
}

// RecordCacheHit records a hit at the named tier.
func (c *Collector) RecordCacheHit(tier string) {
	if c == nil {
		return
	}
	c.cacheHits.WithLabelValues(tier).Inc()
}

// RecordCacheMiss records a full miss (compute fallback).
func (c *Collector) RecordCacheMiss() {
	if c == nil {
		return
	}
	c.cacheMisses.Inc()
}

// RecordRateLimitSuppression records a suppressed action: handoff or outbound.
func (c *Collector) RecordRateLimitSuppression(kind string) {
	if c == nil {
		return
	}
	c.rateLimitSuppressions.WithLabelValues(kind).Inc()
}

// RecordCRMAction records one emission attempt result.
func (c *Collector) RecordCRMAction(actionType, result string) {
	if c == nil {
		return
	}
	c.crmActionsTotal.WithLabelValues(actionType, result).Inc()
}

// RecordCRMRetry records one retry of a failed emission.
func (c *Collector) RecordCRMRetry() {
	if c == nil {
		return
	}
	c.crmActionRetries.Inc()
}
