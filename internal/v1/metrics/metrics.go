// Package metrics declares every Prometheus metric exported by the
// service. Kept as a single package (the teacher split an identical set
// of declarations between a top-level metrics package and a
// session-local metrics.go; that duplication bought nothing here and is
// consolidated).
//
// Naming convention: namespace_subsystem_name
//   - namespace: shed_game (application-level grouping)
//   - subsystem: websocket, room, circuit_breaker, rate_limit, redis
//   - name: specific metric (connections_active, events_total, etc.)
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveWebSocketConnections tracks the current number of connected clients.
	ActiveWebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "shed_game",
		Subsystem: "websocket",
		Name:      "connections_active",
		Help:      "Current number of active WebSocket connections",
	})

	// ActiveRooms tracks the current number of rooms in the lobby.
	ActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "shed_game",
		Subsystem: "room",
		Name:      "rooms_active",
		Help:      "Current number of active rooms",
	})

	// RoomParticipants tracks the current seated participant count per room.
	RoomParticipants = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "shed_game",
		Subsystem: "room",
		Name:      "participants_count",
		Help:      "Number of participants in each room",
	}, []string{"room_id"})

	// WebsocketEvents tracks total inbound actions processed, by action and outcome.
	WebsocketEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shed_game",
		Subsystem: "websocket",
		Name:      "events_total",
		Help:      "Total inbound actions processed",
	}, []string{"action", "status"})

	// MessageProcessingDuration tracks the time spent dispatching an inbound action.
	MessageProcessingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "shed_game",
		Subsystem: "websocket",
		Name:      "message_processing_seconds",
		Help:      "Time spent processing an inbound action",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"action"})

	// CardsPlayedTotal tracks total cards played, by card kind.
	CardsPlayedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shed_game",
		Subsystem: "room",
		Name:      "cards_played_total",
		Help:      "Total cards played across all rooms",
	}, []string{"kind"})

	// RoundsCompletedTotal tracks total rounds that reached a winner.
	RoundsCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "shed_game",
		Subsystem: "room",
		Name:      "rounds_completed_total",
		Help:      "Total rounds that reached a winner",
	})

	// CircuitBreakerState tracks the bus circuit breaker's state.
	// 0: Closed (Healthy), 1: Open (Failure), 2: Half-Open (Recovering)
	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "shed_game",
		Subsystem: "circuit_breaker",
		Name:      "state",
		Help:      "Current state of the circuit breaker (0: Closed, 1: Open, 2: Half-Open)",
	}, []string{"service"})

	// CircuitBreakerFailures tracks requests rejected by the circuit breaker.
	CircuitBreakerFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shed_game",
		Subsystem: "circuit_breaker",
		Name:      "failures_total",
		Help:      "Total requests rejected by the circuit breaker",
	}, []string{"service"})

	// RateLimitExceeded tracks requests that exceeded the rate limit.
	RateLimitExceeded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shed_game",
		Subsystem: "rate_limit",
		Name:      "exceeded_total",
		Help:      "Total number of requests that exceeded the rate limit",
	}, []string{"endpoint", "reason"})

	// RateLimitRequests tracks requests checked against the rate limiter.
	RateLimitRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shed_game",
		Subsystem: "rate_limit",
		Name:      "requests_total",
		Help:      "Total number of requests checked against the rate limiter",
	}, []string{"endpoint"})

	// RedisOperationsTotal tracks total bus operations, by operation and outcome.
	RedisOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shed_game",
		Subsystem: "redis",
		Name:      "operations_total",
		Help:      "Total number of Redis operations",
	}, []string{"operation", "status"})

	// RedisOperationDuration tracks the duration of bus operations.
	RedisOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "shed_game",
		Subsystem: "redis",
		Name:      "operation_duration_seconds",
		Help:      "Duration of Redis operations",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
)

func IncConnection() {
	ActiveWebSocketConnections.Inc()
}

func DecConnection() {
	ActiveWebSocketConnections.Dec()
}
