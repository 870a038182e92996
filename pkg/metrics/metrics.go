// Package metrics holds the Prometheus collectors of the churn service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "churn"

var (
	predictionsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Total predictions served, by label.",
		},
		[]string{"label"}, // "Churn" or "Not Churn"
	)

	predictionErrorsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prediction_errors_total",
			Help:      "Total failed predictions, by error kind.",
		},
		[]string{"kind"},
	)

	predictionDurationHist = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prediction_duration_seconds",
			Help:      "Duration of reconstruct, transform and score for one record.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14),
		},
		[]string{"outcome"}, // "success" or "error"
	)

	reloadsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifact_reloads_total",
			Help:      "Total artifact reload attempts, by outcome.",
		},
		[]string{"outcome"},
	)
)

// ObservePrediction records a successful prediction.
func ObservePrediction(label string, d time.Duration) {
	predictionsCounter.WithLabelValues(label).Inc()
	predictionDurationHist.WithLabelValues("success").Observe(d.Seconds())
}

// ObservePredictionError records a failed prediction.
func ObservePredictionError(kind string, d time.Duration) {
	predictionErrorsCounter.WithLabelValues(kind).Inc()
	predictionDurationHist.WithLabelValues("error").Observe(d.Seconds())
}

// ObserveReload records an artifact reload attempt.
func ObserveReload(ok bool) {
	outcome := "success"
	if !ok {
		outcome = "error"
	}
	reloadsCounter.WithLabelValues(outcome).Inc()
}
