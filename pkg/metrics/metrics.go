package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PollTicks counts poll scheduler ticks by domain and outcome
	// (detected|empty|skipped|error).
	PollTicks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cajadesk_poll_ticks_total",
			Help: "Total number of poll scheduler ticks",
		},
		[]string{"domain", "outcome"},
	)

	// EventsPublished counts realtime events delivered through the bus.
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cajadesk_events_published_total",
			Help: "Total number of realtime events published",
		},
		[]string{"domain", "action"},
	)

	// EventsDropped counts publishes rejected by domain filtering.
	EventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cajadesk_events_dropped_total",
			Help: "Total number of realtime events dropped by domain filter",
		},
		[]string{"domain"},
	)

	// NotificationsCreated counts ledger appends by category.
	NotificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cajadesk_notifications_created_total",
			Help: "Total number of notifications appended to the ledger",
		},
		[]string{"category"},
	)

	// NotificationsSwept counts notifications removed by the expiry sweep.
	NotificationsSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cajadesk_notifications_swept_total",
			Help: "Total number of expired notifications removed",
		},
	)

	// ToastsEmitted counts toasts delivered to channel subscribers.
	ToastsEmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cajadesk_toasts_emitted_total",
			Help: "Total number of toast alerts emitted",
		},
	)

	// SchedulerLive reports whether the poll scheduler currently considers
	// the hosting surface live (1) or backgrounded (0).
	SchedulerLive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cajadesk_scheduler_live",
			Help: "Whether poll ticks are currently doing work",
		},
	)
)
