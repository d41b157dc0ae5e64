package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bnema/sshgw/internal/ports"
)

var _ ports.Metrics = (*Metrics)(nil)

// Metrics records gateway activity on its own registry so tests and multiple
// gateways in one process never collide on the default one.
type Metrics struct {
	registry *prometheus.Registry

	executions        *prometheus.CounterVec
	executionDuration *prometheus.HistogramVec
	connects          *prometheus.CounterVec
	evictions         *prometheus.CounterVec
	sessions          prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		executions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sshgw",
				Name:      "executions_total",
				Help:      "Command executions by connection and outcome.",
			},
			[]string{"connection", "outcome"},
		),
		executionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "sshgw",
				Name:      "execution_duration_seconds",
				Help:      "Command execution duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"connection", "outcome"},
		),
		connects: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sshgw",
				Subsystem: "pool",
				Name:      "connects_total",
				Help:      "Session connect attempts by connection and result.",
			},
			[]string{"connection", "result"},
		),
		evictions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sshgw",
				Subsystem: "pool",
				Name:      "evictions_total",
				Help:      "Pooled sessions closed by reason.",
			},
			[]string{"reason"},
		),
		sessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "sshgw",
				Subsystem: "pool",
				Name:      "sessions",
				Help:      "Live pooled sessions.",
			},
		),
	}

	m.registry.MustRegister(m.executions, m.executionDuration, m.connects, m.evictions, m.sessions)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveExecution(connection, outcome string, duration time.Duration) {
	m.executions.WithLabelValues(connection, outcome).Inc()
	m.executionDuration.WithLabelValues(connection, outcome).Observe(duration.Seconds())
}

func (m *Metrics) ObserveConnect(connection, result string) {
	m.connects.WithLabelValues(connection, result).Inc()
}

func (m *Metrics) ObserveEviction(reason string) {
	m.evictions.WithLabelValues(reason).Inc()
}

func (m *Metrics) SetPooledSessions(n int) {
	m.sessions.Set(float64(n))
}
