package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventgate_cache_lookups_total",
			Help: "Cache-aside lookups by outcome",
		},
		[]string{"outcome"}, // hit|miss|error
	)

	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventgate_events_published_total",
			Help: "Events accepted by the publisher, by event type",
		},
		[]string{"event_type"},
	)

	Deliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventgate_webhook_deliveries_total",
			Help: "Terminal webhook delivery outcomes",
		},
		[]string{"result"}, // delivered|rejected|exhausted
	)

	QueueRejected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "eventgate_dispatch_queue_rejected_total",
			Help: "Delivery jobs rejected because the dispatch queue was full",
		},
	)

	QueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "eventgate_dispatch_queue_depth",
			Help: "Jobs currently buffered in the in-process dispatch queue",
		},
	)

	BroadcastErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "eventgate_realtime_broadcast_errors_total",
			Help: "Failed best-effort realtime broadcasts",
		},
	)
)

func MustRegister(r prometheus.Registerer) {
	r.MustRegister(
		CacheLookups,
		EventsPublished,
		Deliveries,
		QueueRejected,
		QueueDepth,
		BroadcastErrors,
	)
}
