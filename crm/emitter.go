package crm

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jorgeai/leadflow/internal/metrics"
	"github.com/jorgeai/leadflow/types"
)

// RetryConfig defines delivery retry behavior.
type RetryConfig struct {
	// MaxRetries is the number of re-attempts after the first failure.
	MaxRetries int `yaml:"max_retries" json:"max_retries"`
	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration `yaml:"initial_backoff" json:"initial_backoff"`
	// MaxBackoff caps the exponential backoff.
	MaxBackoff time.Duration `yaml:"max_backoff" json:"max_backoff"`
	// BackoffMultiplier grows the delay between attempts.
	BackoffMultiplier float64 `yaml:"backoff_multiplier" json:"backoff_multiplier"`
}

// DefaultRetryConfig returns the conservative default: three retries with
// exponential backoff 1s/2s/4s.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:        3,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// CalculateBackoff returns the delay before the given retry attempt,
// starting at zero.
func (c RetryConfig) CalculateBackoff(attempt int) time.Duration {
	backoff := c.InitialBackoff
	for i := 0; i < attempt; i++ {
		backoff = time.Duration(float64(backoff) * c.BackoffMultiplier)
		if backoff > c.MaxBackoff {
			return c.MaxBackoff
		}
	}
	return backoff
}

// EmitterConfig sizes the delivery pipeline.
type EmitterConfig struct {
	// Workers is the number of delivery goroutines. Actions for one contact
	// always hash to the same worker, which preserves per-contact order.
	Workers int `yaml:"workers" json:"workers"`
	// QueueSize is the per-worker buffer. Enqueue fails once a worker's
	// buffer is full rather than blocking the pipeline.
	QueueSize int `yaml:"queue_size" json:"queue_size"`
	// Retry defines per-action retry behavior.
	Retry RetryConfig `yaml:"retry" json:"retry"`
}

// DefaultEmitterConfig returns the standard pipeline sizing.
func DefaultEmitterConfig() EmitterConfig {
	return EmitterConfig{
		Workers:   4,
		QueueSize: 256,
		Retry:     DefaultRetryConfig(),
	}
}

// Emitter delivers actions to the CRM asynchronously. Local state is already
// committed when an action reaches the emitter, so a delivery that exhausts
// its retries is logged and dropped.
type Emitter struct {
	cfg     EmitterConfig
	client  Client
	logger  *zap.Logger
	metrics *metrics.Collector

	queues []chan types.Action
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool

	sleep func(context.Context, time.Duration) error
}

// NewEmitter creates and starts the delivery workers.
func NewEmitter(cfg EmitterConfig, client Client, logger *zap.Logger, collector *metrics.Collector) *Emitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultEmitterConfig().Workers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultEmitterConfig().QueueSize
	}
	if cfg.Retry.InitialBackoff <= 0 {
		cfg.Retry = DefaultRetryConfig()
	}

	e := &Emitter{
		cfg:     cfg,
		client:  client,
		logger:  logger.With(zap.String("component", "crm_emitter")),
		metrics: collector,
		queues:  make([]chan types.Action, cfg.Workers),
		sleep:   sleepCtx,
	}
	for i := range e.queues {
		e.queues[i] = make(chan types.Action, cfg.QueueSize)
		e.wg.Add(1)
		go e.worker(e.queues[i])
	}
	return e
}

// Enqueue hands actions to the delivery pipeline in order. It returns an
// error when the pipeline is closed or a worker's buffer is full; the caller
// treats either as a delivery failure, not a commit failure.
func (e *Emitter) Enqueue(actions ...types.Action) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return types.NewError(types.ErrEmitFailed, "emitter is closed")
	}
	for _, a := range actions {
		q := e.queues[shard(a.ContactID, len(e.queues))]
		select {
		case q <- a:
		default:
			e.logger.Error("crm delivery queue full, dropping action",
				zap.String("contact_id", a.ContactID),
				zap.String("type", string(a.Type)))
			e.metrics.RecordCRMAction(string(a.Type), "dropped")
			return types.NewError(types.ErrEmitFailed, "delivery queue full").
				WithContact(a.ContactID).WithRetryable(true)
		}
	}
	return nil
}

// Close stops accepting actions, drains the queues, and waits for in-flight
// deliveries.
func (e *Emitter) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	for _, q := range e.queues {
		close(q)
	}
	e.mu.Unlock()
	e.wg.Wait()
}

func (e *Emitter) worker(q <-chan types.Action) {
	defer e.wg.Done()
	for a := range q {
		e.deliver(a)
	}
}

func (e *Emitter) deliver(a types.Action) {
	ctx := context.Background()
	var err error
	for attempt := 0; ; attempt++ {
		err = Execute(ctx, e.client, a)
		if err == nil {
			e.metrics.RecordCRMAction(string(a.Type), "ok")
			return
		}
		if !retryableDelivery(err) || attempt >= e.cfg.Retry.MaxRetries {
			break
		}
		e.metrics.RecordCRMRetry()
		e.logger.Warn("crm delivery failed, retrying",
			zap.String("contact_id", a.ContactID),
			zap.String("type", string(a.Type)),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
		if e.sleep(ctx, e.cfg.Retry.CalculateBackoff(attempt)) != nil {
			break
		}
	}
	e.metrics.RecordCRMAction(string(a.Type), "failed")
	e.logger.Error("crm delivery abandoned",
		zap.String("contact_id", a.ContactID),
		zap.String("type", string(a.Type)),
		zap.Error(err))
}

// retryableDelivery treats structured non-retryable errors as permanent and
// everything else (network failures, unknown errors) as transient.
func retryableDelivery(err error) bool {
	var te *types.Error
	if errors.As(err, &te) {
		return te.Retryable
	}
	return true
}

func shard(contactID string, n int) int {
	h := fnv.New32a()
	h.Write([]byte(contactID))
	return int(h.Sum32() % uint32(n))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
