// Package metrics defines the Prometheus collectors shared across the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsPublished counts events pushed into the publisher, per entity kind.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tabshare_events_published_total",
		Help: "Events published to group/member streams.",
	}, []string{"kind"})

	// EventsDropped counts events discarded because a subscriber's buffer was
	// full (drop-oldest policy).
	EventsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tabshare_events_dropped_total",
		Help: "Events dropped for slow subscribers.",
	}, []string{"kind"})

	// OpenStreams tracks currently attached subscriptions per entity kind.
	OpenStreams = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tabshare_open_streams",
		Help: "Currently open event stream subscriptions.",
	}, []string{"kind"})

	// GroupOperations counts coordinator operations by name and result.
	GroupOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tabshare_group_operations_total",
		Help: "Coordinator operations by result.",
	}, []string{"op", "result"})
)
