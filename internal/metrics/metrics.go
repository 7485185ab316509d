// Package metrics exposes Prometheus collectors for the score service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "boxscore"

// Metrics holds the service collectors on a dedicated registry, so tests and
// multiple servers in one process never collide on the global one.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
	predictions  *prometheus.CounterVec
	llmCalls     *prometheus.CounterVec
	llmLatency   prometheus.Histogram
}

// New creates and registers all collectors, plus the Go runtime and process
// collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests handled, by method, route and status.",
			},
			[]string{"method", "path", "status"},
		),
		httpLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		predictions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "predictions_total",
				Help:      "Box score predictions, by strategy and outcome.",
			},
			[]string{"strategy", "outcome"},
		),
		llmCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "llm_calls_total",
				Help:      "Calls to the text-generation API, by outcome.",
			},
			[]string{"outcome"},
		),
		llmLatency: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "llm_call_duration_seconds",
				Help:      "Latency of calls to the text-generation API.",
				Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
			},
		),
	}
}

// RecordRequest counts one HTTP request and its latency.
func (m *Metrics) RecordRequest(method, path string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpLatency.WithLabelValues(method, path).Observe(d.Seconds())
}

// ObservePrediction records the outcome of one prediction.
func (m *Metrics) ObservePrediction(strategy string, err error) {
	m.predictions.WithLabelValues(strategy, outcome(err)).Inc()
}

// ObserveLLMCall records one call to the text-generation API.
func (m *Metrics) ObserveLLMCall(d time.Duration, err error) {
	m.llmCalls.WithLabelValues(outcome(err)).Inc()
	m.llmLatency.Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
