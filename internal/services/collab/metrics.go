package collab

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the collaboration collectors. A nil *Metrics is a no-op.
type Metrics struct {
	connections prometheus.Gauge
	events      *prometheus.CounterVec
	dropped     prometheus.Counter
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "collab_connections",
			Help: "Live collaboration WebSocket connections",
		}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "collab_events_total",
			Help: "Client events received, by event name",
		}, []string{"event"}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "collab_events_dropped_total",
			Help: "Outbound events dropped because a connection outbox was full",
		}),
	}
	reg.MustRegister(m.connections, m.events, m.dropped)
	return m
}

func (m *Metrics) connOpened() {
	if m != nil {
		m.connections.Inc()
	}
}

func (m *Metrics) connClosed() {
	if m != nil {
		m.connections.Dec()
	}
}

func (m *Metrics) eventReceived(name string) {
	if m != nil {
		m.events.WithLabelValues(name).Inc()
	}
}

func (m *Metrics) eventDropped() {
	if m != nil {
		m.dropped.Inc()
	}
}
