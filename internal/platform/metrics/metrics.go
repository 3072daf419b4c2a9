// Package metrics registra los contadores Prometheus del servicio en el registry por defecto.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safedose_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "safedose_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)

	AnalysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safedose_analyses_total",
			Help: "Completed interaction analyses by mode and resulting risk level",
		},
		[]string{"mode", "risk_level"},
	)

	ClassifierAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safedose_classifier_attempts_total",
			Help: "Classifier strategy attempts by outcome (ok, error, skipped)",
		},
		[]string{"strategy", "outcome"},
	)

	ClassifierCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safedose_classifier_cache_total",
			Help: "Classifier result cache lookups (hit, miss)",
		},
		[]string{"result"},
	)

	ChatReplies = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safedose_chat_replies_total",
			Help: "Chat replies by source (primary, legacy, canned)",
		},
		[]string{"source"},
	)

	DiagnosesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safedose_diagnoses_total",
			Help: "Multimodal diagnosis requests by outcome (ok, upstream_error)",
		},
		[]string{"outcome"},
	)

	RetentionDeleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safedose_retention_deleted_total",
			Help: "Rows removed by the retention job",
		},
		[]string{"kind"},
	)

	RateLimiterBuckets = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "safedose_rate_limiter_buckets",
			Help: "Client buckets currently tracked by the rate limiter",
		},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		AnalysesTotal,
		ClassifierAttempts,
		ClassifierCache,
		ChatReplies,
		DiagnosesTotal,
		RetentionDeleted,
		RateLimiterBuckets,
	)
}
