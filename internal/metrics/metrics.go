// Package metrics holds the Prometheus collectors for the prescription service.
// Pipeline, Gemini and HTTP collectors are registered with the default
// registry during package initialization.
package metrics

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	PipelineRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prescription_pipeline_runs_total",
			Help: "Prescription pipeline runs by outcome",
		},
		[]string{"outcome"},
	)

	PipelineDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "prescription_pipeline_duration_seconds",
			Help:    "End-to-end prescription pipeline latency",
			Buckets: []float64{.5, 1, 2.5, 5, 10, 20, 30, 45, 60, 90},
		},
	)

	GeminiCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gemini_calls_total",
			Help: "Gemini API calls by pipeline stage and outcome",
		},
		[]string{"stage", "outcome"},
	)

	GeminiTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gemini_tokens_total",
			Help: "Gemini tokens consumed",
		},
		[]string{"direction"},
	)

	MedicationsCorrectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "medications_corrected_total",
			Help: "Medication names rewritten by reconciliation",
		},
	)

	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	FDALookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fda_lookups_total",
			Help: "openFDA drug label lookups by outcome",
		},
		[]string{"outcome"},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Number of per-client rate limiter buckets",
		},
	)
)

func init() {
	prometheus.MustRegister(PipelineRunsTotal)
	prometheus.MustRegister(PipelineDuration)
	prometheus.MustRegister(GeminiCallsTotal)
	prometheus.MustRegister(GeminiTokensTotal)
	prometheus.MustRegister(MedicationsCorrectedTotal)
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(FDALookupsTotal)
}

// ObserveGeminiCall records one model call and its token usage
func ObserveGeminiCall(stage, outcome string, promptTokens, outputTokens int) {
	if stage == "" {
		stage = "unlabeled"
	}
	GeminiCallsTotal.WithLabelValues(stage, outcome).Inc()
	if promptTokens > 0 {
		GeminiTokensTotal.WithLabelValues("input").Add(float64(promptTokens))
	}
	if outputTokens > 0 {
		GeminiTokensTotal.WithLabelValues("output").Add(float64(outputTokens))
	}
}

// ObservePipelineRun records one pipeline invocation
func ObservePipelineRun(outcome string, elapsed time.Duration) {
	PipelineRunsTotal.WithLabelValues(outcome).Inc()
	PipelineDuration.Observe(elapsed.Seconds())
}

// Middleware records request totals, latency and in-flight count per route
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		HTTPRequestInFlight.Inc()
		defer HTTPRequestInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		HTTPRequestTotals.WithLabelValues(
			c.Request.Method,
			path,
			fmt.Sprintf("%d", c.Writer.Status()),
		).Inc()

		HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			path,
		).Observe(time.Since(start).Seconds())
	}
}
