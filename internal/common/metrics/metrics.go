// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PushesDelivered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notify_pushes_delivered_total",
			Help: "Total number of live pushes handed to a bound connection",
		},
	)

	PushSendFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notify_push_send_failures_total",
			Help: "Total number of websocket sends that failed",
		},
	)

	RecipientsUnreachable = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notify_recipients_unreachable_total",
			Help: "Total number of delivery calls for recipients with no live session",
		},
	)

	ConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "notify_connections_active",
			Help: "Number of open websocket connections",
		},
	)

	Registrations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notify_registrations_total",
			Help: "Total number of identity announcements accepted",
		},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "Duration of HTTP request handling in seconds",
		},
		[]string{"service", "route", "status"},
	)

	NotificationsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notifications_created_total",
			Help: "Total number of notification records persisted",
		},
	)
)
