package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifier_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notifier_http_request_duration_seconds",
			Help:    "Histogram of response durations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	// DeliveryAttempts counts send attempts by outcome (sent, retry, failed)
	DeliveryAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifier_delivery_attempts_total",
			Help: "Number of delivery attempts by outcome",
		},
		[]string{"channel", "outcome"},
	)

	// DeliverySkipped counts processing calls that ended as a no-op
	DeliverySkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifier_delivery_skipped_total",
			Help: "Processing calls that did not attempt a send",
		},
		[]string{"reason"},
	)

	SendDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notifier_send_duration_seconds",
			Help:    "Duration of transport send calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"channel"},
	)

	ConsumedEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifier_consumed_events_total",
			Help: "Events consumed from the request topic by result",
		},
		[]string{"result"},
	)

	SweepDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "notifier_retry_sweep_duration_seconds",
			Help:    "Duration of one retry sweep",
			Buckets: prometheus.DefBuckets,
		},
	)

	SweepBatchSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "notifier_retry_sweep_batch_size",
			Help: "Number of eligible notifications found by the last sweep",
		},
	)
)

func Init() {
	prometheus.MustRegister(
		HTTPRequests,
		RequestDuration,
		DeliveryAttempts,
		DeliverySkipped,
		SendDuration,
		ConsumedEvents,
		SweepDuration,
		SweepBatchSize,
	)
}
