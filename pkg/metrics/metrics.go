// Package metrics exposes relay counters and latencies in the Prometheus
// format.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/germanamz/taskify/pkg/fallback"
)

// Metrics holds the relay collectors registered on one registry.
type Metrics struct {
	registry *prometheus.Registry

	RequestCount     *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	AttemptCount     *prometheus.CounterVec
	AttemptDuration  *prometheus.HistogramVec
	RelayResultCount *prometheus.CounterVec
}

// New registers the relay collectors, plus the Go and process collectors, on
// a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestCount: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskify_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "taskify_request_duration_seconds",
				Help: "HTTP request duration in seconds",
			},
			[]string{"method", "route"},
		),
		AttemptCount: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskify_attempts_total",
				Help: "Candidate attempts by outcome",
			},
			[]string{"candidate", "outcome"},
		),
		AttemptDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "taskify_attempt_duration_seconds",
				Help:    "Candidate attempt latency in seconds",
				Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 45, 60},
			},
			[]string{"candidate"},
		),
		RelayResultCount: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskify_relay_results_total",
				Help: "Relay runs by result and answering candidate",
			},
			[]string{"result", "candidate"},
		),
	}
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(method, route, status string, d time.Duration) {
	m.RequestCount.WithLabelValues(method, route, status).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Observer returns a fallback observer that records attempts and results.
func (m *Metrics) Observer() fallback.Observer {
	return observer{m: m}
}

type observer struct {
	m *Metrics
}

func (o observer) Attempt(_ context.Context, out fallback.Outcome) {
	kind := "ok"
	if !out.Succeeded {
		kind = string(out.Kind)
	}
	o.m.AttemptCount.WithLabelValues(out.Candidate.ID, kind).Inc()
	o.m.AttemptDuration.WithLabelValues(out.Candidate.ID).Observe(out.Duration.Seconds())
}

func (o observer) Finished(_ context.Context, resp fallback.Response, err error) {
	if err != nil {
		o.m.RelayResultCount.WithLabelValues("exhausted", "").Inc()
		return
	}
	o.m.RelayResultCount.WithLabelValues("succeeded", resp.ModelID).Inc()
}
