package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCollector(t *testing.T) *Collector {
	t.Helper()
	return NewCollectorWith(prometheus.NewRegistry(), "leadflow_test", nil)
}

func TestCollector_RecordMessage(t *testing.T) {
	c := newTestCollector(t)

	c.RecordMessage("lead", "processed", 25*time.Millisecond)
	c.RecordMessage("lead", "processed", 30*time.Millisecond)
	c.RecordMessage("buyer", "fatal", time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(c.messagesProcessed.WithLabelValues("lead", "processed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.messagesProcessed.WithLabelValues("buyer", "fatal")))
}

func TestCollector_RecordHandoff(t *testing.T) {
	c := newTestCollector(t)

	c.RecordHandoff("lead", "buyer", "committed")
	c.RecordHandoff("lead", "buyer", "suppressed_loop")

	assert.Equal(t, float64(1), testutil.ToFloat64(c.handoffsTotal.WithLabelValues("lead", "buyer", "committed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.handoffsTotal.WithLabelValues("lead", "buyer", "suppressed_loop")))
}

func TestCollector_CacheCounters(t *testing.T) {
	c := newTestCollector(t)

	c.RecordCacheHit("local")
	c.RecordCacheHit("local")
	c.RecordCacheHit("redis")
	c.RecordCacheMiss()

	assert.Equal(t, float64(2), testutil.ToFloat64(c.cacheHits.WithLabelValues("local")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.cacheHits.WithLabelValues("redis")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.cacheMisses))
}

func TestCollector_NilSafe(t *testing.T) {
	var c *Collector
	require.NotPanics(t, func() {
		c.RecordMessage("lead", "processed", time.Millisecond)
		c.RecordHandoff("lead", "buyer", "committed")
		c.RecordCacheHit("local")
		c.RecordCacheMiss()
		c.RecordComplianceVerdict("pass", "2")
		c.RecordRateLimitSuppression("handoff")
		c.RecordCRMAction("add_tag", "ok")
		c.RecordCRMRetry()
		c.RecordHTTPRequest("POST", "/webhook", "200", time.Millisecond)
	})
}
