package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/aarant/nescient/internal/metrics"
)

// globalMetrics is populated once PersistentPreRunE resolves the config;
// it is non-nil for the lifetime of every subcommand's RunE.
var globalMetrics *metrics.Metrics

// initMetrics registers the Prometheus collectors against the default
// registry and, if addr is non-empty, starts a background HTTP server
// exposing them at /metrics.
func initMetrics(addr string) *metrics.Metrics {
	m := metrics.New(prometheus.DefaultRegisterer)
	if addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		go func() {
			if err := http.ListenAndServe(addr, mux); err != nil {
				log.Error().Err(err).Str("addr", addr).Msg("metrics server stopped")
			}
		}()
		log.Info().Str("addr", addr).Msg("serving metrics")
	}
	return m
}
