package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	InsightGenerations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insight_generations_total",
			Help: "Total number of insight generations by outcome",
		},
		[]string{"status"},
	)

	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "insight_llm_request_duration_seconds",
			Help:    "Duration of language model calls in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60, 120},
		},
		[]string{"provider"},
	)

	SectionsParsed = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "insight_sections_parsed",
			Help:    "Number of sections recognized per parsed response",
			Buckets: prometheus.LinearBuckets(0, 1, 12),
		},
	)

	ScoreAdjustments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insight_score_adjustments_total",
			Help: "Total number of score adjustments extracted by kind",
		},
		[]string{"kind"},
	)

	ScoreAdjustmentDelta = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "insight_score_adjustment_delta",
			Help:    "Suggested score adjustment values by kind",
			Buckets: prometheus.LinearBuckets(-10, 1, 21),
		},
		[]string{"kind"},
	)

	NewsCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insight_news_cache_total",
			Help: "News cache lookups by result",
		},
		[]string{"result"},
	)

	NewsRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insight_news_requests_total",
			Help: "Outbound news requests by kind and status",
		},
		[]string{"kind", "status"},
	)
)

// Handler exposes the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
