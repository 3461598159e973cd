package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the API
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPInFlight        prometheus.Gauge

	// Rate limiting
	RateLimitExceededTotal *prometheus.CounterVec

	// Realtime chat
	WSConnections     prometheus.Gauge
	WSEventsRelayed   *prometheus.CounterVec
	WSEventsDropped   *prometheus.CounterVec
	ChatMessagesTotal prometheus.Counter

	// Domain events
	NotificationsCreated *prometheus.CounterVec
	ModerationRejections prometheus.Counter
	SearchQueriesTotal   *prometheus.CounterVec

	// Error metrics
	ErrorsTotal *prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Get returns the process-wide metrics, registering them on first use
func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "path", "status"},
			),
			HTTPInFlight: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "http_requests_in_flight",
					Help: "Number of HTTP requests currently being served",
				},
			),
			RateLimitExceededTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "rate_limit_exceeded_total",
					Help: "Requests rejected by the rate limiter",
				},
				[]string{"limiter"},
			),
			WSConnections: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "ws_connections_active",
					Help: "Number of registered websocket sessions",
				},
			),
			WSEventsRelayed: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "ws_events_relayed_total",
					Help: "Events delivered to a live websocket session",
				},
				[]string{"type"},
			),
			WSEventsDropped: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "ws_events_dropped_total",
					Help: "Events dropped because the recipient was offline or slow",
				},
				[]string{"type", "reason"},
			),
			ChatMessagesTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "chat_messages_total",
					Help: "Direct messages persisted",
				},
			),
			NotificationsCreated: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "notifications_created_total",
					Help: "Notifications written, by type",
				},
				[]string{"type"},
			),
			ModerationRejections: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "moderation_rejections_total",
					Help: "User content rejected by the moderation check",
				},
			),
			SearchQueriesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "search_queries_total",
					Help: "Search queries served, by backend",
				},
				[]string{"backend"},
			),
			ErrorsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "errors_total",
					Help: "Errors returned to clients, by error code",
				},
				[]string{"code"},
			),
		}
	})
	return instance
}
