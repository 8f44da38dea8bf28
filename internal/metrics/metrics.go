package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	Transitions *prometheus.CounterVec
	APILatency  *prometheus.HistogramVec
	Requests    *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registers the collectors on reg. Pass prometheus.NewRegistry() in tests.
func New(reg *prometheus.Registry) *Metrics {
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "floreria",
		Subsystem: "lifecycle",
		Name:      "transitions_total",
		Help:      "Status change attempts by role, target status and outcome.",
	}, []string{"role", "target", "outcome"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "floreria",
		Subsystem: "api",
		Name:      "request_duration_ms",
		Help:      "Shop API call latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	}, []string{"operation"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "floreria",
		Subsystem: "desk",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "status"})

	reg.MustRegister(transitions, latency, requests)
	return &Metrics{
		Transitions: transitions,
		APILatency:  latency,
		Requests:    requests,
		gatherer:    reg,
	}
}

// ObserveTransition counts one attempt. outcome is applied, declined or a refusal reason.
func (m *Metrics) ObserveTransition(role, target, outcome string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(role, target, outcome).Inc()
}

func (m *Metrics) ObserveAPICall(operation string, ms float64) {
	if m == nil {
		return
	}
	m.APILatency.WithLabelValues(operation).Observe(ms)
}

func (m *Metrics) ObserveRequest(method string, status int) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
