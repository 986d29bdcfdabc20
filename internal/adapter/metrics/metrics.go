package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/niksmo/ecom-admin/internal/core/domain"
	"github.com/niksmo/ecom-admin/internal/core/port"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ port.ListMetrics = (*ListMetrics)(nil)

const namespace = "ecom_admin"

// ListMetrics counts list fetches per resource kind on its own registry.
type ListMetrics struct {
	registry *prometheus.Registry

	issued    *prometheus.CounterVec
	completed *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	stale     *prometheus.CounterVec
}

func NewListMetrics() *ListMetrics {
	reg := prometheus.NewRegistry()

	m := &ListMetrics{
		registry: reg,
		issued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "list",
			Name:      "fetches_issued_total",
			Help:      "List fetches sent to the API",
		}, []string{"kind"}),
		completed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "list",
			Name:      "fetches_completed_total",
			Help:      "List fetches that returned, by outcome",
		}, []string{"kind", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "list",
			Name:      "fetch_duration_seconds",
			Help:      "Latency of list fetches",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		stale: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "list",
			Name:      "stale_discarded_total",
			Help:      "Responses dropped because a newer fetch was issued",
		}, []string{"kind"}),
	}

	reg.MustRegister(
		m.issued, m.completed, m.duration, m.stale,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *ListMetrics) FetchIssued(kind domain.ResourceKind) {
	m.issued.WithLabelValues(string(kind)).Inc()
}

func (m *ListMetrics) FetchCompleted(kind domain.ResourceKind, d time.Duration, err error) {
	m.completed.WithLabelValues(string(kind), outcome(err)).Inc()
	m.duration.WithLabelValues(string(kind)).Observe(d.Seconds())
}

func (m *ListMetrics) StaleDiscarded(kind domain.ResourceKind) {
	m.stale.WithLabelValues(string(kind)).Inc()
}

func (m *ListMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *ListMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func outcome(err error) string {
	var (
		se *domain.ServerError
		re *domain.RequestError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	case errors.As(err, &se):
		return "server_error"
	case errors.As(err, &re):
		return "request_error"
	default:
		return "error"
	}
}
