// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// TurnsTotal tracks conversational turns by final outcome.
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "turns_total",
			Help: "Total conversational turns processed",
		},
		[]string{"outcome"},
	)

	// TurnDuration tracks end-to-end turn duration.
	TurnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "turn_duration_seconds",
			Help:    "End-to-end turn pipeline duration",
			Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 120, 300},
		},
		[]string{"outcome"},
	)

	// GenerationCalls tracks generation gateway calls by capability.
	GenerationCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_calls_total",
			Help: "Generation gateway calls by capability and status",
		},
		[]string{"capability", "status"},
	)

	// GenerationFallbacks tracks safe-default substitutions.
	GenerationFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_fallbacks_total",
			Help: "Generation failures recovered with a safe default",
		},
		[]string{"capability"},
	)

	// GenerationDuration tracks generation call latency.
	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "generation_duration_seconds",
			Help:    "Generation gateway call duration",
			Buckets: []float64{.5, 1, 2, 5, 10, 20, 30, 60, 120, 300},
		},
		[]string{"capability"},
	)

	// AssetsPersisted tracks assets written to the store.
	AssetsPersisted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assets_persisted_total",
			Help: "Design assets persisted by media type",
		},
		[]string{"type"},
	)

	// StaleTurnsAbandoned tracks turns superseded mid-flight.
	StaleTurnsAbandoned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stale_turns_abandoned_total",
			Help: "Turns abandoned after being superseded by a newer turn",
		},
	)

	// StoreErrors tracks record store failures.
	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_errors_total",
			Help: "Record store operation failures",
		},
		[]string{"entity", "op"},
	)

	// SSEConnectionsActive tracks active SSE connections.
	SSEConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sse_connections_active",
			Help: "Number of active SSE connections",
		},
	)

	// BrandsTotal tracks brands created.
	BrandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "brands_total",
			Help: "Total brands created",
		},
		[]string{"source"},
	)

	// MessagesTotal tracks messages appended to brand histories.
	MessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_total",
			Help: "Total messages appended",
		},
		[]string{"role"},
	)
)

// RecordRequest records one HTTP request.
func RecordRequest(method, path, status string, seconds float64) {
	RequestsTotal.WithLabelValues(method, path, status).Inc()
	RequestDuration.WithLabelValues(method, path, status).Observe(seconds)
}

// IncrementSSEConnections increments the active SSE connection gauge.
func IncrementSSEConnections() {
	SSEConnectionsActive.Inc()
}

// DecrementSSEConnections decrements the active SSE connection gauge.
func DecrementSSEConnections() {
	SSEConnectionsActive.Dec()
}

// RecordGeneration records one gateway call.
func RecordGeneration(capability, status string, seconds float64) {
	GenerationCalls.WithLabelValues(capability, status).Inc()
	GenerationDuration.WithLabelValues(capability).Observe(seconds)
}
