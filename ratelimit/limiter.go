package ratelimit

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Config sets the per-contact ceilings.
type Config struct {
	// Window is the rolling window both ceilings are evaluated over.
	Window time.Duration `yaml:"window" json:"window"`
	// MaxOutbound is the outbound message ceiling per contact per window.
	MaxOutbound int `yaml:"max_outbound" json:"max_outbound"`
	// MaxHandoffs is the hard handoff ceiling per contact per window,
	// independent of the decision engine's loop check.
	MaxHandoffs int `yaml:"max_handoffs" json:"max_handoffs"`
}

// DefaultConfig returns the standard ceilings.
func DefaultConfig() Config {
	return Config{
		Window:      time.Hour,
		MaxOutbound: 20,
		MaxHandoffs: 3,
	}
}

// ring is a bounded buffer of event timestamps sized to its ceiling. A slot
// may be reused once its timestamp falls out of the window, which makes
// "at most N events per rolling window" exact without pruning passes.
type ring struct {
	buf []time.Time
	idx int
}

func newRing(n int) *ring {
	return &ring{buf: make([]time.Time, n)}
}

// tryAdd records now if the window has room and reports whether it did.
func (r *ring) tryAdd(now time.Time, window time.Duration) bool {
	if len(r.buf) == 0 {
		return false
	}
	oldest := r.buf[r.idx]
	if !oldest.IsZero() && now.Sub(oldest) < window {
		return false
	}
	r.buf[r.idx] = now
	r.idx = (r.idx + 1) % len(r.buf)
	return true
}

// newest returns the most recent recorded event, zero when nothing was
// recorded yet.
func (r *ring) newest() time.Time {
	if len(r.buf) == 0 {
		return time.Time{}
	}
	i := r.idx - 1
	if i < 0 {
		i = len(r.buf) - 1
	}
	return r.buf[i]
}

type contactRings struct {
	outbound *ring
	handoffs *ring
}

// Limiter tracks per-contact windows. Safe for concurrent use across
// contacts; callers already serialize per contact, but the limiter does not
// rely on that.
type Limiter struct {
	cfg       Config
	mu        sync.Mutex
	rings     map[string]*contactRings
	lastSweep time.Time
	logger    *zap.Logger
	now       func() time.Time
}

// NewLimiter creates a limiter.
func NewLimiter(cfg Config, logger *zap.Logger) *Limiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultConfig().Window
	}
	if cfg.MaxOutbound <= 0 {
		cfg.MaxOutbound = DefaultConfig().MaxOutbound
	}
	if cfg.MaxHandoffs <= 0 {
		cfg.MaxHandoffs = DefaultConfig().MaxHandoffs
	}
	return &Limiter{
		cfg:    cfg,
		rings:  make(map[string]*contactRings),
		logger: logger.With(zap.String("component", "rate_limiter")),
		now:    time.Now,
	}
}

// AllowOutbound records and permits one outbound message, or reports that
// the contact's outbound budget is exhausted for this window.
func (l *Limiter) AllowOutbound(contactID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)
	ok := l.forContact(contactID).outbound.tryAdd(now, l.cfg.Window)
	if !ok {
		l.logger.Warn("outbound message suppressed by rate limit",
			zap.String("contact_id", contactID),
			zap.Int("ceiling", l.cfg.MaxOutbound))
	}
	return ok
}

// AllowHandoff records and permits one handoff, or reports that the
// contact's handoff ceiling is reached for this window.
func (l *Limiter) AllowHandoff(contactID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)
	ok := l.forContact(contactID).handoffs.tryAdd(now, l.cfg.Window)
	if !ok {
		l.logger.Warn("handoff suppressed by rate ceiling",
			zap.String("contact_id", contactID),
			zap.Int("ceiling", l.cfg.MaxHandoffs))
	}
	return ok
}

// sweep evicts contacts whose last event in both rings has aged out of the
// window, so the map tracks the active population rather than every contact
// ever seen. Runs at most once per window, under the caller's lock.
func (l *Limiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.cfg.Window {
		return
	}
	l.lastSweep = now
	for id, cr := range l.rings {
		if now.Sub(cr.outbound.newest()) >= l.cfg.Window &&
			now.Sub(cr.handoffs.newest()) >= l.cfg.Window {
			delete(l.rings, id)
		}
	}
}

func (l *Limiter) forContact(contactID string) *contactRings {
	cr, ok := l.rings[contactID]
	if !ok {
		cr = &contactRings{
			outbound: newRing(l.cfg.MaxOutbound),
			handoffs: newRing(l.cfg.MaxHandoffs),
		}
		l.rings[contactID] = cr
	}
	return cr
}
