// Package metrics defines the Prometheus metrics exported by
// sievecheck. All metrics are registered with the default registry via
// promauto, so the HTTP API only needs to mount promhttp.Handler().
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Analyzer metrics
var (
	ScriptsAnalyzed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sievecheck_scripts_analyzed_total",
			Help: "Total number of scripts run through the semantic analyzer",
		},
		[]string{"result"}, // "clean" or "bad"
	)

	Diagnostics = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sievecheck_diagnostics_total",
			Help: "Total number of diagnostics recorded on analyzed scripts",
		},
	)

	ScriptBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sievecheck_script_bytes",
			Help:    "Size distribution of analyzed scripts in bytes",
			Buckets: prometheus.ExponentialBuckets(64, 4, 8),
		},
	)
)

// HTTP API metrics
var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sievecheck_http_requests_total",
			Help: "Total number of HTTP API requests",
		},
		[]string{"endpoint", "status"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sievecheck_cache_lookups_total",
			Help: "Analysis result cache lookups",
		},
		[]string{"outcome"}, // "hit" or "miss"
	)
)
