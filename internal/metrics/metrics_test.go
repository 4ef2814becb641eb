package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordOperation(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.RecordOperation("pack", "chacha", "stm", "sha", "ok", 0.01, 1024)

	got := testutil.ToFloat64(m.OperationsTotal.WithLabelValues("pack", "chacha", "stm", "sha", "ok"))
	assert.Equal(t, float64(1), got)

	bytes := testutil.ToFloat64(m.BytesProcessed.WithLabelValues("pack"))
	assert.Equal(t, float64(1024), bytes)
}

func TestRecordAuthFailure(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.RecordAuthFailure("unpack")

	got := testutil.ToFloat64(m.AuthFailuresTotal.WithLabelValues("unpack"))
	assert.Equal(t, float64(1), got)
}

func TestRecordCacheAccess(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.RecordCacheAccess("header", true)
	m.RecordCacheAccess("header", false)

	hits := testutil.ToFloat64(m.CacheHitsTotal.WithLabelValues("header"))
	misses := testutil.ToFloat64(m.CacheMissesTotal.WithLabelValues("header"))
	assert.Equal(t, float64(1), hits)
	assert.Equal(t, float64(1), misses)
}
