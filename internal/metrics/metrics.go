// AINav - AI Tools Directory with Live Message Wall
// Copyright 2026 AINav contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ainav/ainav

// Package metrics declares the Prometheus collectors for the message wall
// service: message store queries, HTTP requests, live SSE connections and
// presence.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// CircuitBreakerState is 0 closed, 1 half-open, 2 open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	MessagesInserted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "messages_inserted_total",
			Help: "Total number of messages accepted by the store",
		},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of requests currently being processed",
		},
	)

	// Live stream metrics
	SSEConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sse_connections",
			Help: "Current number of open event-stream connections",
		},
	)

	SSEEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sse_events_total",
			Help: "Total number of events written to event-stream connections",
		},
		[]string{"event"},
	)

	// SSEPollErrors counts degraded events; source is "presence" or "messages".
	SSEPollErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sse_poll_errors_total",
			Help: "Total number of failed reads that produced a degraded event",
		},
		[]string{"source"},
	)

	NotifyPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_published_total",
			Help: "Insert notifications published, by result",
		},
		[]string{"result"},
	)

	// Presence
	PresenceActiveOrigins = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "presence_active_origins",
			Help: "Number of distinct origins currently marked present",
		},
	)

	PresenceExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "presence_expired_total",
			Help: "Origins removed by the presence TTL sweeper",
		},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordSSEEvent counts one event written to a live connection.
func RecordSSEEvent(event string) {
	SSEEventsTotal.WithLabelValues(event).Inc()
}

// RecordSSEPollError counts one degraded event.
func RecordSSEPollError(source string) {
	SSEPollErrors.WithLabelValues(source).Inc()
}

// RecordNotify counts a notifier publish attempt.
func RecordNotify(err error) {
	if err != nil {
		NotifyPublished.WithLabelValues("error").Inc()
		return
	}
	NotifyPublished.WithLabelValues("ok").Inc()
}

// SetCircuitBreakerState publishes a breaker state (0 closed, 1 half-open, 2 open).
func SetCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}
