package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "property_registry"

// Metrics holds the gateway's collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	shimFallbacks      *prometheus.CounterVec
	shimFailures       *prometheus.CounterVec
	enumerationOmitted prometheus.Counter
	enumeratedRecords  prometheus.Counter
	txOutcomes         *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		shimFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shim_fallbacks_total",
			Help:      "Operations that fell through a schema surface to the next one.",
		}, []string{"operation", "surface"}),
		shimFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shim_failures_total",
			Help:      "Operations that failed on every schema surface.",
		}, []string{"operation", "kind"}),
		enumerationOmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enumeration_omitted_total",
			Help:      "Records skipped during enumeration because they could not be decoded.",
		}),
		enumeratedRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enumerated_records_total",
			Help:      "Records successfully materialized during enumeration.",
		}),
		txOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_total",
			Help:      "Registry transactions by action and final state.",
		}, []string{"action", "state"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.shimFallbacks,
		m.shimFailures,
		m.enumerationOmitted,
		m.enumeratedRecords,
		m.txOutcomes,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for gathering in tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ShimFallback(operation, surface string) {
	if m == nil {
		return
	}
	m.shimFallbacks.WithLabelValues(operation, surface).Inc()
}

func (m *Metrics) ShimFailure(operation, kind string) {
	if m == nil {
		return
	}
	m.shimFailures.WithLabelValues(operation, kind).Inc()
}

func (m *Metrics) Enumerated(found, omitted int) {
	if m == nil {
		return
	}
	m.enumeratedRecords.Add(float64(found))
	m.enumerationOmitted.Add(float64(omitted))
}

func (m *Metrics) TxOutcome(action, state string) {
	if m == nil {
		return
	}
	m.txOutcomes.WithLabelValues(action, state).Inc()
}
