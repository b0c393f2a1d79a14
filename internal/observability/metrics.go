// Package observability provides structured logging and prometheus metrics.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveWebSockets tracks the number of open websocket connections.
	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "devlink_websocket_connections",
		Help: "Number of active websocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped because a client's
	// send buffer was full or its channel closed.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devlink_websocket_backpressure_drops_total",
		Help: "Messages dropped due to websocket backpressure",
	}, []string{"reason"})

	// MessagesDelivered counts direct messages pushed over live connections.
	MessagesDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devlink_messages_delivered_total",
		Help: "Direct messages delivered to live connections",
	}, []string{"outcome"})

	// NotificationsCreated counts stored notifications by type.
	NotificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devlink_notifications_created_total",
		Help: "Notifications persisted, labeled by type",
	}, []string{"type"})

	// NotificationsSuppressed counts notifications suppressed by the dedup
	// window or the self-notification rule.
	NotificationsSuppressed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devlink_notifications_suppressed_total",
		Help: "Notifications suppressed before persistence",
	}, []string{"reason"})

	// RedisErrors counts failed redis commands.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devlink_redis_errors_total",
		Help: "Redis command failures",
	}, []string{"command"})
)
