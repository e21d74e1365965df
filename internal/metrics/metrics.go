// Package metrics holds the Prometheus collectors the server updates.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns the request and workout-event collectors and the gatherer
// that /metrics exposes.
type Manager struct {
	CounterRequests         *prometheus.CounterVec
	CounterSessionsStarted  prometheus.Counter
	CounterSessionsFinished prometheus.Counter
	CounterSaves            *prometheus.CounterVec
	HistRequestDuration     *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New registers the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New(namespace string) *Manager {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return NewManager(namespace, reg, reg)
}

// NewManager registers the collectors on reg under namespace and serves
// them from gatherer.
func NewManager(namespace string, reg prometheus.Registerer, gatherer prometheus.Gatherer) *Manager {
	factory := promauto.With(reg)

	return &Manager{
		CounterRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "The total number of HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		CounterSessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Workout sessions started",
		}),
		CounterSessionsFinished: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_finished_total",
			Help:      "Workout sessions finished",
		}),
		CounterSaves: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "autosaves_total",
			Help:      "Autosave calls by outcome",
		}, []string{"outcome"}),
		HistRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		gatherer: gatherer,
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// SessionStarted records a started session. A nil Manager ignores the call.
func (m *Manager) SessionStarted() {
	if m == nil {
		return
	}
	m.CounterSessionsStarted.Inc()
}

// SessionFinished records a finished session.
func (m *Manager) SessionFinished() {
	if m == nil {
		return
	}
	m.CounterSessionsFinished.Inc()
}

// Saved records an autosave outcome ("ok", "invalid", "not_found", "error").
func (m *Manager) Saved(outcome string) {
	if m == nil {
		return
	}
	m.CounterSaves.WithLabelValues(outcome).Inc()
}
