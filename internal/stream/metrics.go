package stream

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveSubscribers tracks the number of open review stream subscriptions.
	ActiveSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "stream_active_subscribers",
			Help: "Current number of active review stream subscribers",
		},
	)

	// EventsDelivered counts events successfully handed to subscriber channels.
	EventsDelivered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stream_events_delivered_total",
			Help: "Total number of review events delivered to subscribers",
		},
	)

	// EventsDropped counts events lost because a subscriber was too slow.
	EventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stream_events_dropped_total",
			Help: "Total number of review events dropped due to slow subscribers",
		},
	)

	// NotifierRestarts counts notifier reconnection attempts.
	NotifierRestarts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stream_notifier_restarts_total",
			Help: "Total number of change notifier restarts",
		},
	)
)
