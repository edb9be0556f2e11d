/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package telemetry collects Prometheus metrics and OpenTelemetry traces.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// APIRequestsTotal counts HTTP requests by method, endpoint, and status.
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "huginn_api_requests_total",
			Help: "Total number of API requests.",
		},
		[]string{"method", "endpoint", "status"},
	)

	// APIRequestDuration tracks request latency by method, endpoint, and status.
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "huginn_api_request_duration_seconds",
			Help:    "API request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	// APIActiveConnections gauges in-flight HTTP requests.
	APIActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "huginn_api_active_connections",
			Help: "Number of in-flight API requests.",
		},
	)

	// EvaluationsTotal counts smart playlist evaluations.
	EvaluationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "huginn_smart_playlist_evaluations_total",
			Help: "Total number of smart playlist evaluations.",
		},
	)

	// EvaluationDuration tracks how long a single evaluation takes.
	EvaluationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "huginn_smart_playlist_evaluation_duration_seconds",
			Help:    "Smart playlist evaluation duration in seconds.",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		},
	)

	// EvaluationMatches tracks how many episodes evaluations resolve to.
	EvaluationMatches = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "huginn_smart_playlist_evaluation_matches",
			Help:    "Episode count per smart playlist evaluation.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	// PlaylistsTotal gauges the number of playlists by kind.
	PlaylistsTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "huginn_playlists_total",
			Help: "Number of playlists by kind.",
		},
		[]string{"kind"},
	)

	// DatabaseQueryDuration tracks database query latency by operation and table.
	DatabaseQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "huginn_database_query_duration_seconds",
			Help:    "Database query duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	// DatabaseErrorsTotal counts database errors by operation and kind.
	DatabaseErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "huginn_database_errors_total",
			Help: "Total number of database errors.",
		},
		[]string{"operation", "type"},
	)

	// DatabaseConnectionsActive gauges open database connections.
	DatabaseConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "huginn_database_connections_active",
			Help: "Number of open database connections.",
		},
	)
)

// ObserveEvaluation records one smart playlist evaluation.
func ObserveEvaluation(matches int, elapsed time.Duration) {
	EvaluationsTotal.Inc()
	EvaluationDuration.Observe(elapsed.Seconds())
	EvaluationMatches.Observe(float64(matches))
}

// Handler exposes the Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
