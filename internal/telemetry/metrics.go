// Package telemetry wires structured logging conventions and Prometheus
// metrics for the matchmaker. Counters follow the pattern used for the
// examples pack's cache/storage metrics: a dedicated registry, promauto
// constructors, and label dimensions kept small and fixed.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every counter/gauge the matchmaker exports.
type Metrics struct {
	reg *prometheus.Registry

	connectionsAccepted prometheus.Counter
	connectionsRejected *prometheus.CounterVec
	handlerInvocations  *prometheus.CounterVec
	roomsCreated        *prometheus.CounterVec
	roomsRemoved        *prometheus.CounterVec
	roomsPerGroup       *prometheus.GaugeVec
}

// NewMetrics creates a fresh registry and registers every matchmaker metric
// against it.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	return &Metrics{
		reg: reg,
		connectionsAccepted: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "matchmaker_connections_accepted_total",
			Help: "Total TCP connections accepted by the server.",
		}),
		connectionsRejected: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "matchmaker_connections_rejected_total",
			Help: "Total TCP connections rejected before session creation, by reason.",
		}, []string{"reason"}),
		handlerInvocations: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "matchmaker_handler_invocations_total",
			Help: "Total request handler invocations, by message kind and result.",
		}, []string{"kind", "result"}),
		roomsCreated: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "matchmaker_rooms_created_total",
			Help: "Total rooms created, by group.",
		}, []string{"group"}),
		roomsRemoved: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "matchmaker_rooms_removed_total",
			Help: "Total rooms removed (including owner disconnect cleanup), by group.",
		}, []string{"group"}),
		roomsPerGroup: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "matchmaker_rooms_current",
			Help: "Current number of rooms hosted, by group.",
		}, []string{"group"}),
	}
}

// Registry exposes the underlying Prometheus registry for HTTP exposition.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

func (m *Metrics) ConnectionAccepted() {
	m.connectionsAccepted.Inc()
}

func (m *Metrics) ConnectionRejected(reason string) {
	m.connectionsRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) HandlerInvoked(kind, result string) {
	m.handlerInvocations.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) RoomCreated(group string) {
	m.roomsCreated.WithLabelValues(group).Inc()
}

func (m *Metrics) RoomRemoved(group string) {
	m.roomsRemoved.WithLabelValues(group).Inc()
}

func (m *Metrics) SetRoomsCurrent(group string, n int) {
	m.roomsPerGroup.WithLabelValues(group).Set(float64(n))
}
