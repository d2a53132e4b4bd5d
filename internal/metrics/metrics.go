package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ViewsCounted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eventum_views_counted_total",
		Help: "Event view registrations that incremented the counter.",
	})

	ViewsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eventum_views_rejected_total",
		Help: "Event view registrations rejected before writing.",
	}, []string{"reason"})

	VotesCast = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eventum_votes_cast_total",
		Help: "Committed post vote transitions.",
	})

	NotificationsFanned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eventum_notifications_fanout_total",
		Help: "Durable notifications written by event fan-out.",
	})

	RealtimeConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "eventum_realtime_connections",
		Help: "Currently connected realtime clients.",
	})
)
