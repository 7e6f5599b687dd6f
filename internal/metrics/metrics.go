// Package metrics holds the process-wide prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "meet",
		Name:      "active_sessions",
		Help:      "Live websocket sessions.",
	})
	ActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "meet",
		Name:      "active_rooms",
		Help:      "Rooms with at least one member.",
	})
	EnvelopesIn = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "meet",
		Name:      "envelopes_in_total",
		Help:      "Inbound envelopes by type.",
	}, []string{"type"})
	DroppedDeliveries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "meet",
		Name:      "dropped_deliveries_total",
		Help:      "Outbound frames dropped on closed or slow connections.",
	})
	RecorderDrops = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "meet",
		Name:      "recorder_drops_total",
		Help:      "Participation records dropped because the queue was full.",
	})
)
