// Package monitoring exposes Prometheus metrics for codec operations.
// The codec itself stays purely computational; instrumentation lives in
// the callers (the CLI, or an embedding service).
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the codec operation metrics.
type Metrics struct {
	ParseTotal    *prometheus.CounterVec
	ParseErrors   *prometheus.CounterVec
	ParseDuration *prometheus.HistogramVec

	BuildTotal    *prometheus.CounterVec
	BuildErrors   prometheus.Counter
	BuildDuration *prometheus.HistogramVec

	ValidateTotal  prometheus.Counter
	DiagnosticsSum prometheus.Counter

	MessageSize *prometheus.HistogramVec
}

// NewMetrics creates and registers the metric set with reg. Pass
// prometheus.DefaultRegisterer outside of tests.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ParseTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "parse_total",
				Help:      "Messages parsed, by detected network",
			},
			[]string{"network"},
		),
		ParseErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "parse_errors_total",
				Help:      "Parse failures, by error kind",
			},
			[]string{"kind"},
		),
		ParseDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "parse_duration_seconds",
				Help:      "Parse latency",
				Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
			},
			[]string{"network"},
		),
		BuildTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "build_total",
				Help:      "Messages built, by network",
			},
			[]string{"network"},
		),
		BuildErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "build_errors_total",
				Help:      "Builds refused by validation",
			},
		),
		BuildDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "build_duration_seconds",
				Help:      "Build latency",
				Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
			},
			[]string{"network"},
		),
		ValidateTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validate_total",
				Help:      "Validation runs",
			},
		),
		DiagnosticsSum: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validate_diagnostics_total",
				Help:      "Diagnostics reported across all validation runs",
			},
		),
		MessageSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "message_size_bytes",
				Help:      "Wire message size",
				Buckets:   prometheus.ExponentialBuckets(32, 2, 8),
			},
			[]string{"direction"},
		),
	}
}
