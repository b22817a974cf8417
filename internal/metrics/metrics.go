package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Hub metrics
var (
	// HubConnectedClients tracks the number of live viewer connections
	HubConnectedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hub_connected_clients",
			Help: "Current number of connected viewer connections",
		},
	)

	// HubBroadcastsTotal tracks fan-outs by message type
	HubBroadcastsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_broadcasts_total",
			Help: "Total broadcast messages fanned out, by message type",
		},
		[]string{"type"},
	)

	// HubBroadcastsDropped counts broadcasts dropped because the hub
	// command channel was full
	HubBroadcastsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_broadcasts_dropped_total",
			Help: "Broadcasts dropped because the hub command channel was full",
		},
	)

	// HubSlowClientsEvicted counts clients disconnected for not draining
	// their send buffer
	HubSlowClientsEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_slow_clients_evicted_total",
			Help: "Viewer connections evicted because their send buffer was full",
		},
	)

	// HubSnapshotFailures counts registrations aborted because the initial
	// snapshot could not be fetched
	HubSnapshotFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_snapshot_failures_total",
			Help: "Registrations aborted because the initial snapshot fetch failed",
		},
	)

	// WebSocketPingFailures counts failed keepalive pings
	WebSocketPingFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_ping_failures_total",
			Help: "Total failed WebSocket keepalive pings",
		},
	)
)

// Feed metrics
var (
	// FeedTicksTotal tracks mutator runs by mutator name
	FeedTicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_ticks_total",
			Help: "Total mutator ticks, by mutator",
		},
		[]string{"mutator"},
	)
)

// Bridge metrics
var (
	// BridgeMessagesReceived tracks inbound broker messages by topic
	BridgeMessagesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_messages_received_total",
			Help: "Broker messages received by the bridge, by topic",
		},
		[]string{"topic"},
	)

	// BridgeParseFailures counts inbound broker messages dropped as malformed
	BridgeParseFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bridge_parse_failures_total",
			Help: "Broker messages dropped because their payload did not parse",
		},
	)

	// SimulatorEventsPublished tracks synthetic events published outward by topic
	SimulatorEventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simulator_events_published_total",
			Help: "Synthetic events published to the broker, by topic",
		},
		[]string{"topic"},
	)

	// SimulatorPublishFailures counts failed outward publishes
	SimulatorPublishFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "simulator_publish_failures_total",
			Help: "Synthetic event publishes that failed",
		},
	)
)

// Redis metrics
var (
	// RedisOpsTotal tracks total Redis operations by operation type and status
	RedisOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_operations_total",
			Help: "Total Redis operations by operation and status",
		},
		[]string{"operation", "status"},
	)

	// RedisOpDuration tracks Redis operation latency in seconds
	RedisOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_operation_duration_seconds",
			Help:    "Redis operation duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	// RedisConnectionErrors tracks Redis connection errors
	RedisConnectionErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "redis_connection_errors_total",
			Help: "Total Redis connection errors",
		},
	)

	// CircuitBreakerStateChanges tracks circuit breaker state transitions
	CircuitBreakerStateChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_changes_total",
			Help: "Circuit breaker state transitions by component and new state",
		},
		[]string{"component", "state"},
	)

	// CircuitBreakerState tracks current circuit breaker state (0=closed, 1=half-open, 2=open)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"component"},
	)
)
