package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	PipelineAcquisition = "acquisition"
	PipelineConversion  = "conversion"

	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	PipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "musicbot_pipeline_runs_total",
			Help: "Completed media pipeline runs by pipeline and outcome.",
		},
		[]string{"pipeline", "outcome"},
	)

	PipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "musicbot_pipeline_duration_seconds",
			Help:    "Wall clock duration of media pipeline runs.",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"pipeline"},
	)

	PipelinesInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "musicbot_pipelines_in_flight",
			Help: "Media pipeline runs currently executing.",
		},
		[]string{"pipeline"},
	)

	CatalogRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "musicbot_catalog_requests_total",
			Help: "Remote catalog calls by provider and result.",
		},
		[]string{"provider", "result"},
	)

	ChatUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "musicbot_chat_updates_total",
			Help: "Chat updates handled by kind.",
		},
		[]string{"kind"},
	)
)

// ObservePipeline records the outcome of one pipeline run.
func ObservePipeline(pipeline string, started time.Time, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	PipelineRuns.WithLabelValues(pipeline, outcome).Inc()
	PipelineDuration.WithLabelValues(pipeline).Observe(time.Since(started).Seconds())
}

func ObserveCatalog(provider string, err error) {
	result := OutcomeSuccess
	if err != nil {
		result = OutcomeFailure
	}
	CatalogRequests.WithLabelValues(provider, result).Inc()
}
