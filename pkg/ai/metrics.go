package ai

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "correcteur",
		Subsystem: "ai",
		Name:      "invocation_duration_seconds",
		Help:      "Duration of model invocations",
	}, []string{"provider", "model"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "correcteur",
		Subsystem: "ai",
		Name:      "invocation_failures_total",
		Help:      "Number of failed model invocations",
	}, []string{"provider", "model"})
)
