// Package monitoring holds the prometheus collectors for the API.
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vedran77/linkup/internal/domain"
)

const namespace = "linkup"

type Metrics struct {
	registry *prometheus.Registry

	// Labels: method, route (mux pattern), status
	httpRequests *prometheus.CounterVec
	// Labels: method, route
	httpDuration *prometheus.HistogramVec
	// Labels: from, to
	connectionTransitions *prometheus.CounterVec
	wsClients             prometheus.Gauge
	wsEvents              *prometheus.CounterVec
}

// New registers all collectors on a fresh registry, so several instances can
// coexist in tests.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "route"}),
		connectionTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "connections",
			Name:      "transitions_total",
			Help:      "Committed connection status changes",
		}, []string{"from", "to"}),
		wsClients: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ws",
			Name:      "clients",
			Help:      "Open websocket clients",
		}),
		wsEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ws",
			Name:      "events_sent_total",
			Help:      "Events delivered to websocket clients by type",
		}, []string{"type"}),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) ConnectionTransition(from, to domain.ConnectionStatus) {
	f := string(from)
	if f == "" {
		f = "none"
	}
	m.connectionTransitions.WithLabelValues(f, string(to)).Inc()
}

func (m *Metrics) ClientConnected()    { m.wsClients.Inc() }
func (m *Metrics) ClientDisconnected() { m.wsClients.Dec() }

func (m *Metrics) EventSent(eventType string) {
	m.wsEvents.WithLabelValues(eventType).Inc()
}
