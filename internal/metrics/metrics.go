// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

// Package metrics holds the Prometheus instrumentation shared by the ETL job
// and the serving process. Vars are registered on the default registry via
// promauto; callers use the Record* helpers rather than the vars directly.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ETL loaders
	LoaderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mlboard_loader_duration_seconds",
			Help:    "Wall-clock duration of one loader run",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		},
		[]string{"loader"},
	)

	LoaderRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlboard_loader_runs_total",
			Help: "Loader runs by outcome",
		},
		[]string{"loader", "outcome"}, // outcome: "success", "failure"
	)

	ArtifactBytesUploaded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlboard_artifact_bytes_uploaded_total",
			Help: "Serialized artifact bytes written to the blob store",
		},
		[]string{"key"},
	)

	// Blob store
	StorageOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlboard_storage_operations_total",
			Help: "Blob store operations by result",
		},
		[]string{"operation", "result"}, // result: "success", "failure", "rejected"
	)

	StorageRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlboard_storage_retries_total",
			Help: "Retried blob store operations",
		},
		[]string{"operation"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Artifact cache
	ArtifactFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mlboard_artifact_fetch_duration_seconds",
			Help:    "Download plus decode time of one artifact",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"artifact"},
	)

	ArtifactFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlboard_artifact_fetches_total",
			Help: "Artifact fetches by outcome",
		},
		[]string{"artifact", "outcome"},
	)

	ArtifactCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlboard_artifact_cache_hits_total",
			Help: "Artifact lookups served from memory",
		},
		[]string{"artifact"},
	)

	ArtifactCacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlboard_artifact_cache_misses_total",
			Help: "Artifact lookups that joined or started a fetch",
		},
		[]string{"artifact"},
	)

	ArtifactFetchShared = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlboard_artifact_fetch_shared_total",
			Help: "Callers that received the result of another caller's fetch",
		},
		[]string{"artifact"},
	)

	// Services
	Predictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlboard_predictions_total",
			Help: "Service calls by service and outcome",
		},
		[]string{"service", "outcome"},
	)

	EnrichmentLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlboard_enrichment_lookups_total",
			Help: "Company profile lookups by status",
		},
		[]string{"status"}, // "available", "unavailable"
	)

	// HTTP API
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
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// RecordLoaderRun records a finished loader run.
func RecordLoaderRun(loader string, duration time.Duration, err error) {
	LoaderDuration.WithLabelValues(loader).Observe(duration.Seconds())
	LoaderRuns.WithLabelValues(loader, outcome(err)).Inc()
}

// RecordUpload records a successful artifact upload.
func RecordUpload(key string, size int) {
	ArtifactBytesUploaded.WithLabelValues(key).Add(float64(size))
}

// RecordStorageOperation records the final result of a blob store call.
func RecordStorageOperation(operation, result string) {
	StorageOperations.WithLabelValues(operation, result).Inc()
}

// RecordStorageRetry records one retry of a blob store call.
func RecordStorageRetry(operation string) {
	StorageRetries.WithLabelValues(operation).Inc()
}

// RecordArtifactFetch records a completed artifact download and decode.
func RecordArtifactFetch(artifact string, duration time.Duration, err error) {
	ArtifactFetchDuration.WithLabelValues(artifact).Observe(duration.Seconds())
	ArtifactFetches.WithLabelValues(artifact, outcome(err)).Inc()
}

// RecordCacheLookup records whether an artifact was already in memory.
func RecordCacheLookup(artifact string, hit bool) {
	if hit {
		ArtifactCacheHits.WithLabelValues(artifact).Inc()
		return
	}
	ArtifactCacheMisses.WithLabelValues(artifact).Inc()
}

// RecordSharedFetch records a caller that piggybacked on an in-flight fetch.
func RecordSharedFetch(artifact string) {
	ArtifactFetchShared.WithLabelValues(artifact).Inc()
}

// RecordPrediction records one service call.
func RecordPrediction(service string, err error) {
	Predictions.WithLabelValues(service, outcome(err)).Inc()
}

// RecordEnrichment records a company profile lookup.
func RecordEnrichment(status string) {
	EnrichmentLookups.WithLabelValues(status).Inc()
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
