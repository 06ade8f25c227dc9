// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_evaluations_total",
			Help: "Total number of candidate evaluations by result",
		},
		[]string{"result"}, // "scored" or "degraded"
	)

	EvaluationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "pipeline_evaluation_duration_seconds",
			Help: "Duration of the full score-classify-persist path in seconds",
		},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_notifications_total",
			Help: "Total number of outbound notifications by channel and status",
		},
		[]string{"channel", "status"},
	)

	StatusTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_status_transitions_total",
			Help: "Total number of candidate status changes by destination",
		},
		[]string{"to"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"method", "route", "status"},
	)
)
