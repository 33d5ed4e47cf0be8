package toolserver

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const subsystem = "toolserver"

// Metrics collects per-function invocation counters and latencies.
type Metrics struct {
	reg *prometheus.Registry

	InvocationsTotal  *prometheus.CounterVec
	InvocationErrors  *prometheus.CounterVec
	DurationHistogram *prometheus.HistogramVec
}

// NewMetrics builds a registry with the function host collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		InvocationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      "function_invocations_total",
			Help:      "Total function invocations by function name",
		}, []string{"function"}),
		InvocationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      "function_errors_total",
			Help:      "Failed function invocations by function name",
		}, []string{"function"}),
		DurationHistogram: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Subsystem: subsystem,
			Name:      "function_duration_seconds",
			Help:      "Function invocation duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.3, 0.5, 1.0},
		}, []string{"function"}),
	}
	m.reg.MustRegister(m.InvocationsTotal, m.InvocationErrors, m.DurationHistogram)
	return m
}

// Handler exposes the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
