package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dashctl"

// API client metrics
var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Total number of backend API requests",
		},
		[]string{"endpoint", "method", "outcome"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "Backend API request latency distribution",
			Buckets:   []float64{.025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"endpoint"},
	)
)

// Dashboard orchestration metrics
var (
	SectionRefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "section_refreshes_total",
			Help:      "Total number of dashboard section fetches",
		},
		[]string{"section", "trigger", "status"},
	)

	StaleCompletionsDiscarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_completions_discarded_total",
			Help:      "Responses dropped because the job selection changed while in flight",
		},
	)

	CacheFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_fallbacks_total",
			Help:      "Sections rendered from the local snapshot cache after a fetch failure",
		},
	)
)

// Business metrics
var (
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Total number of report uploads",
		},
		[]string{"kind", "status"},
	)

	AlertsResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_resolved_total",
			Help:      "Total number of alert resolutions attempted",
		},
		[]string{"status"},
	)

	SessionExpiries = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_expiries_total",
			Help:      "Authenticated calls rejected with 401, forcing a fresh login",
		},
	)
)
