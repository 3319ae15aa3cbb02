// Package metrics registers the service counters exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "room_messages_ingested_total",
		Help: "Messages accepted and stored.",
	})

	MessagesPurged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "room_messages_purged_total",
		Help: "Expired rows removed from the store.",
	})

	EventsBroadcast = promauto.NewCounter(prometheus.CounterOpts{
		Name: "room_events_broadcast_total",
		Help: "Room events fanned out to websocket subscribers.",
	})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "room_ws_connections",
		Help: "Currently connected websocket subscribers.",
	})
)
