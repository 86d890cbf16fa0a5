package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EmailsScheduledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hireflow_emails_scheduled_total",
			Help: "Total number of delayed emails scheduled",
		},
	)

	EmailsSentTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hireflow_emails_sent_total",
			Help: "Total number of delayed emails dispatched successfully",
		},
	)

	EmailsFailedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hireflow_emails_failed_total",
			Help: "Total number of delayed emails that failed to dispatch",
		},
	)

	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hireflow_mail_queue_depth",
			Help: "Number of due emails found at the last drain tick",
		},
	)

	DrainDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hireflow_drain_duration_seconds",
			Help:    "Duration of a drain tick in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)

	StatusChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hireflow_status_changes_total",
			Help: "Total number of application status changes by new status",
		},
		[]string{"status"},
	)
)
