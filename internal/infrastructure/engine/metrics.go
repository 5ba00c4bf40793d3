package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "datax_configgen"

// Metrics collects pipeline metrics in a private registry. The CLI exports
// the registry to a node-exporter textfile after a run.
// A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	stepDuration *prometheus.HistogramVec
	stepFailures *prometheus.CounterVec
	sessions     *prometheus.CounterVec
}

// NewMetrics creates and registers the pipeline metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "step_duration_seconds",
			Help:      "Time spent in each pipeline step, including vault calls",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"step"}),
		stepFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "step_failures_total",
			Help:      "Count of pipeline step failures by step",
		}, []string{"step"}),
		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "sessions_total",
			Help:      "Count of deployment sessions by result",
		}, []string{"result"}),
	}

	m.registry.MustRegister(m.stepDuration, m.stepFailures, m.sessions)
	return m
}

// Registry returns the registry holding the pipeline metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the metrics in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func (m *Metrics) observeStep(step string, d time.Duration, failed bool) {
	if m == nil {
		return
	}
	m.stepDuration.WithLabelValues(step).Observe(d.Seconds())
	if failed {
		m.stepFailures.WithLabelValues(step).Inc()
	}
}

func (m *Metrics) observeSession(result string) {
	if m == nil {
		return
	}
	m.sessions.WithLabelValues(result).Inc()
}
