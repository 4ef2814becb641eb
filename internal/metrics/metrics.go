// Package metrics provides Prometheus metrics for the nescient command-line
// tool and library.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics contains all Prometheus metrics exposed by nescient.
type Metrics struct {
	// Pack/Unpack Metrics
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	BytesProcessed    *prometheus.CounterVec

	// Authentication Metrics
	AuthFailuresTotal *prometheus.CounterVec

	// Random-Access Reader Metrics
	ReaderOpensTotal   prometheus.Counter
	ReaderSeeksTotal   prometheus.Counter
	ReaderBytesRead    prometheus.Counter
	ArchiveFallbacksTotal *prometheus.CounterVec

	// Cache Metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Lock Metrics
	LockWaitDuration *prometheus.HistogramVec
}

// namespace for all nescient metrics.
const namespace = "nescient"

// New creates and registers all Prometheus metrics against reg. Passing nil
// registers against the default global registry, which is what the CLI
// does in production; tests pass a fresh prometheus.NewRegistry() so
// repeated calls don't collide.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	m := &Metrics{
		OperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pack",
				Name:      "operations_total",
				Help:      "Total number of pack/unpack operations.",
			},
			[]string{"operation", "alg", "mode", "auth", "status"},
		),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "pack",
				Name:      "operation_duration_seconds",
				Help:      "Pack/unpack operation duration in seconds.",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"operation"},
		),
		BytesProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pack",
				Name:      "bytes_processed_total",
				Help:      "Total plaintext bytes processed by pack/unpack operations.",
			},
			[]string{"operation"},
		),

		AuthFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "auth",
				Name:      "failures_total",
				Help:      "Total number of authentication tag verification failures.",
			},
			[]string{"stage"},
		),

		ReaderOpensTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "reader",
				Name:      "opens_total",
				Help:      "Total number of random-access readers opened.",
			},
		),
		ReaderSeeksTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "reader",
				Name:      "seeks_total",
				Help:      "Total number of seek calls on random-access readers.",
			},
		),
		ReaderBytesRead: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "reader",
				Name:      "bytes_read_total",
				Help:      "Total plaintext bytes read through random-access readers.",
			},
		),
		ArchiveFallbacksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "archive",
				Name:      "fallbacks_total",
				Help:      "Total number of times archive opening fell back to single-file mode.",
			},
			[]string{"reason"},
		),

		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "hits_total",
				Help:      "Total number of header metadata cache hits.",
			},
			[]string{"cache"},
		),
		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "misses_total",
				Help:      "Total number of header metadata cache misses.",
			},
			[]string{"cache"},
		),

		LockWaitDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "lock",
				Name:      "wait_duration_seconds",
				Help:      "Time spent waiting to acquire an output-path lock.",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"result"},
		),
	}

	return m
}

// Handler returns the Prometheus metrics HTTP handler, served by the CLI
// when a metrics listen address is configured.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordOperation records a completed pack or unpack operation.
func (m *Metrics) RecordOperation(operation, alg, mode, auth, status string, duration float64, bytes int64) {
	m.OperationsTotal.WithLabelValues(operation, alg, mode, auth, status).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(duration)
	if bytes > 0 {
		m.BytesProcessed.WithLabelValues(operation).Add(float64(bytes))
	}
}

// RecordAuthFailure records an authentication tag verification failure at
// the given stage ("unpack" or "reader_open").
func (m *Metrics) RecordAuthFailure(stage string) {
	m.AuthFailuresTotal.WithLabelValues(stage).Inc()
}

// RecordReaderOpen records a random-access reader being opened.
func (m *Metrics) RecordReaderOpen() {
	m.ReaderOpensTotal.Inc()
}

// RecordReaderSeek records a seek call on a random-access reader.
func (m *Metrics) RecordReaderSeek() {
	m.ReaderSeeksTotal.Inc()
}

// RecordReaderRead records bytes read through a random-access reader.
func (m *Metrics) RecordReaderRead(n int) {
	m.ReaderBytesRead.Add(float64(n))
}

// RecordArchiveFallback records an archive falling back to single-file mode.
func (m *Metrics) RecordArchiveFallback(reason string) {
	m.ArchiveFallbacksTotal.WithLabelValues(reason).Inc()
}

// RecordCacheAccess records a header metadata cache access.
func (m *Metrics) RecordCacheAccess(cache string, hit bool) {
	if hit {
		m.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		m.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

// RecordLockWait records time spent waiting on an output-path lock.
func (m *Metrics) RecordLockWait(result string, duration float64) {
	m.LockWaitDuration.WithLabelValues(result).Observe(duration)
}
