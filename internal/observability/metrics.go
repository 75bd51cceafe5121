package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	apiRequestsTotal      *prometheus.CounterVec
	apiLatencySeconds     *prometheus.HistogramVec
	apiErrorsTotal        *prometheus.CounterVec
	gradingOutcomesTotal  *prometheus.CounterVec
	gradingLatencySeconds *prometheus.HistogramVec
	policyFallbacksTotal  prometheus.Counter
	extractionRejected    *prometheus.CounterVec
	extractionLatency     prometheus.Histogram
)

// RegisterMetrics initialises the Prometheus collectors used by the HTTP layer and the grading pipeline.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests served, by scope (admin or student).",
		}, []string{"scope", "method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15},
		}, []string{"scope", "method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"scope", "method", "route", "status"})

		gradingOutcomesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grading_outcomes_total",
			Help: "Answers stored by the submission pipeline, by outcome and model.",
		}, []string{"outcome", "model"})

		gradingLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "grading_latency_seconds",
			Help:    "End-to-end latency of answer submissions including the model call.",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30, 60},
		}, []string{"outcome"})

		policyFallbacksTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "grading_policy_fallbacks_total",
			Help: "Submissions graded with the built-in policy because the referenced one could not be loaded.",
		})

		extractionRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reference_extraction_rejected_total",
			Help: "Reference document uploads rejected before extraction.",
		}, []string{"reason"})

		extractionLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "reference_extraction_seconds",
			Help:    "Latency of reference document extraction.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
		})

		prometheus.MustRegister(
			apiRequestsTotal, apiLatencySeconds, apiErrorsTotal,
			gradingOutcomesTotal, gradingLatencySeconds, policyFallbacksTotal,
			extractionRejected, extractionLatency,
		)
	})
}

// APIRequests exposes the request counter.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the request latency histogram.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// GradingOutcomes counts stored answers labelled graded or degraded.
func GradingOutcomes() *prometheus.CounterVec {
	RegisterMetrics()
	return gradingOutcomesTotal
}

// GradingLatency exposes the submission latency histogram.
func GradingLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return gradingLatencySeconds
}

// PolicyFallbacks counts silent fallbacks to the built-in policy.
func PolicyFallbacks() prometheus.Counter {
	RegisterMetrics()
	return policyFallbacksTotal
}

// ExtractionRejected counts uploads refused by reason (size, type, empty).
func ExtractionRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return extractionRejected
}

// ExtractionLatency exposes the extraction latency histogram.
func ExtractionLatency() prometheus.Histogram {
	RegisterMetrics()
	return extractionLatency
}
