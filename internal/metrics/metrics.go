package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	NASAAPICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherwindow_nasa_api_calls_total",
			Help: "Total NASA POWER API calls",
		},
		[]string{"status"},
	)

	NASAAPILatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "weatherwindow_nasa_api_latency_seconds",
			Help:    "NASA POWER API call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherwindow_analyses_total",
			Help: "Total analysis runs by activity",
		},
		[]string{"activity"},
	)

	SyntheticFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "weatherwindow_synthetic_fallbacks_total",
			Help: "Analyses served from the synthetic source after an upstream failure",
		},
	)

	ScanBatches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "weatherwindow_scan_batches_total",
			Help: "Alternative-date scanner batches processed",
		},
	)

	ScansAborted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "weatherwindow_scans_aborted_total",
			Help: "Alternative-date scans aborted by cancellation or timeout",
		},
	)

	ObservationCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "weatherwindow_observation_cache_hits_total",
			Help: "Observation sets served from the local cache",
		},
	)
)
