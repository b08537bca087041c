package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eiv_predictions_total",
			Help: "Total number of EIV prediction requests by outcome",
		},
		[]string{"source", "status"},
	)

	PredictionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eiv_prediction_failures_total",
			Help: "Failed EIV predictions by error code",
		},
		[]string{"error_code"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eiv_stage_duration_seconds",
			Help:    "Duration of each pipeline stage in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	ClientTypes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eiv_client_type_total",
			Help: "Predicted client classes per scenario",
		},
		[]string{"scenario", "client_type"},
	)

	ReferenceRows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "eiv_reference_rows",
			Help: "Rows in the last loaded reference snapshot after deduplication",
		},
	)

	ReferenceCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eiv_reference_cache_total",
			Help: "Reference snapshot cache lookups by result",
		},
		[]string{"result"},
	)
)
