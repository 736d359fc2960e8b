package orchestrator

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/jorgeai/leadflow/types"
)

// messageFingerprint identifies one delivery attempt. Webhook providers
// redeliver on ambiguous failures; the same contact, text, and timestamp is
// the same message, while a genuinely repeated text at a new timestamp is
// new input.
func messageFingerprint(msg types.InboundMessage) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d", msg.ContactID, msg.Text, msg.Timestamp.UnixNano())))
	return hex.EncodeToString(h[:16])
}

// dedupe remembers recent fingerprints for the redelivery window.
type dedupe struct {
	mu      sync.Mutex
	seen    map[string]time.Time
	ttl     time.Duration
	maxSize int
}

func newDedupe(ttl time.Duration) *dedupe {
	return &dedupe{
		seen:    make(map[string]time.Time),
		ttl:     ttl,
		maxSize: 65536,
	}
}

// Seen records the fingerprint and reports whether it was already present
// inside the window.
func (d *dedupe) Seen(fp string, now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if at, ok := d.seen[fp]; ok && now.Sub(at) < d.ttl {
		return true
	}
	if len(d.seen) >= d.maxSize {
		d.prune(now)
	}
	d.seen[fp] = now
	return false
}

// Forget drops a fingerprint recorded by Seen. Called when processing fails
// without a commit, so the provider's redelivery of the same message is
// treated as a fresh attempt instead of a duplicate.
func (d *dedupe) Forget(fp string) {
	d.mu.Lock()
	delete(d.seen, fp)
	d.mu.Unlock()
}

func (d *dedupe) prune(now time.Time) {
	for fp, at := range d.seen {
		if now.Sub(at) >= d.ttl {
			delete(d.seen, fp)
		}
	}
}
