// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ResponseSaves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessment_response_saves_total",
			Help: "Total number of response save operations by outcome",
		},
		[]string{"outcome"},
	)

	SaveRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessment_save_retries_total",
			Help: "Total number of save retry attempts per assessment",
		},
		[]string{"assessment_id"},
	)

	SaveDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "assessment_save_duration_seconds",
			Help: "Duration of response save operations in seconds",
		},
		[]string{"outcome"},
	)

	AutosavePending = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "assessment_autosave_pending",
			Help: "Whether an assessment has a pending debounced save",
		},
		[]string{"assessment_id"},
	)

	AssessmentsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assessments_completed_total",
			Help: "Total number of assessments completed",
		},
	)

	MirrorErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessment_mirror_errors_total",
			Help: "Total number of backup mirror read/write failures",
		},
		[]string{"operation"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assessment_http_requests_total",
			Help: "Total HTTP requests by route and status code",
		},
		[]string{"route", "status"},
	)
)
