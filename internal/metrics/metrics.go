// Package metrics provides Prometheus metrics for the inference server:
// prediction throughput, failures, latency, and the age of each loaded
// model artifact, exposed on the /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the serving path.
type Metrics struct {
	PredictionsTotal  *prometheus.CounterVec // predictions served, by task
	PredictionErrors  *prometheus.CounterVec // failed prediction requests, by task
	PredictionLatency prometheus.Histogram   // request handling latency in seconds
	ModelAge          *prometheus.GaugeVec   // age of each loaded artifact in seconds
	ModelsLoaded      prometheus.Gauge       // number of artifacts currently loaded
}

// New creates and registers all metrics with the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics against a custom registry, which keeps
// tests isolated from the global state.
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		PredictionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "predictions_total",
			Help: "Total number of predictions served",
		}, []string{"task"}),
		PredictionErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "prediction_errors_total",
			Help: "Total number of failed prediction requests",
		}, []string{"task"}),
		PredictionLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "prediction_latency_seconds",
			Help:    "Prediction request handling latency in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		ModelAge: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "model_age_seconds",
			Help: "Age of each loaded model artifact in seconds",
		}, []string{"task"}),
		ModelsLoaded: factory.NewGauge(prometheus.GaugeOpts{
			Name: "models_loaded",
			Help: "Number of model artifacts currently loaded",
		}),
	}
}
