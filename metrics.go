package signon

import (
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metric names emitted by this module.
const (
	MetricVerifications       = "signon_verifications_total"
	MetricVerificationSeconds = "signon_verification_seconds"
	MetricAssertions          = "signon_assertions_total"
)

// Metrics is a generic metrics interface for the validator and the
// assertion builder.
type Metrics interface {
	IncCounter(name string, tags map[string]string)
	ObserveHistogram(name string, value float64, tags map[string]string)
}

// NoopMetrics is a default metrics implementation that does nothing.
type NoopMetrics struct{}

func (m *NoopMetrics) IncCounter(name string, tags map[string]string)                      {}
func (m *NoopMetrics) ObserveHistogram(name string, value float64, tags map[string]string) {}

// PrometheusMetrics implements the Metrics interface using Prometheus.
// Vectors are created lazily on first use; the label set of a given metric
// name is fixed by that first call.
type PrometheusMetrics struct {
	registerer prometheus.Registerer

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
}

// NewPrometheusMetrics returns a Metrics implementation backed by Prometheus.
// A nil registerer means prometheus.DefaultRegisterer.
func NewPrometheusMetrics(registerer prometheus.Registerer) *PrometheusMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	return &PrometheusMetrics{
		registerer: registerer,
		counters:   make(map[string]*prometheus.CounterVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}
}

func (m *PrometheusMetrics) IncCounter(name string, tags map[string]string) {
	m.mu.Lock()
	vec, ok := m.counters[name]
	if !ok {
		vec = prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: name + " counter"}, keys(tags))
		m.registerer.MustRegister(vec)
		m.counters[name] = vec
	}
	m.mu.Unlock()
	vec.With(tags).Inc()
}

func (m *PrometheusMetrics) ObserveHistogram(name string, value float64, tags map[string]string) {
	m.mu.Lock()
	vec, ok := m.histograms[name]
	if !ok {
		vec = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    name,
			Help:    name + " histogram",
			Buckets: []float64{.0001, .0005, .001, .0025, .005, .01, .05},
		}, keys(tags))
		m.registerer.MustRegister(vec)
		m.histograms[name] = vec
	}
	m.mu.Unlock()
	vec.With(tags).Observe(value)
}

func keys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
