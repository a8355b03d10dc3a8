// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

package blobstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/mlboard/internal/config"
	"github.com/tomtom215/mlboard/internal/logging"
	"github.com/tomtom215/mlboard/internal/metrics"
	"github.com/tomtom215/mlboard/internal/models"
)

// Resilient wraps a Store with retries and a circuit breaker. Every attempt
// passes through the breaker; once it opens, calls fail fast without
// touching the backend until the breaker's timeout elapses.
type Resilient struct {
	next   Store
	cb     *gobreaker.CircuitBreaker[struct{}]
	policy RetryPolicy
	name   string
}

// NewResilient wraps next. name labels the breaker in logs and metrics.
func NewResilient(next Store, name string, policy RetryPolicy, bc config.BreakerConfig) *Resilient {
	cbName := "blobstore-" + name
	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0)

	threshold := bc.ConsecutiveFailures
	if threshold == 0 {
		threshold = 5
	}
	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: bc.MaxRequests,
		Interval:    bc.Interval,
		Timeout:     bc.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			trip := counts.ConsecutiveFailures >= threshold
			if trip {
				logging.Warn().
					Str("breaker", cbName).
					Uint32("consecutive_failures", counts.ConsecutiveFailures).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return trip
		},
		// A missing key says nothing about backend health.
		IsSuccessful: func(err error) bool {
			var perm *permanentError
			return err == nil || errors.As(err, &perm)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &Resilient{next: next, cb: cb, policy: policy, name: cbName}
}

func (r *Resilient) attempt(ctx context.Context, fn func(context.Context) error) error {
	_, err := r.cb.Execute(func() (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return permanent(err)
	}
	return err
}

// Put writes data under key. Failures are reported as models.ErrStorageUpload.
func (r *Resilient) Put(ctx context.Context, key string, data []byte) error {
	err := r.policy.Do(ctx, "put", func(ctx context.Context) error {
		return r.attempt(ctx, func(ctx context.Context) error {
			return r.next.Put(ctx, key, data)
		})
	})
	if err != nil {
		metrics.RecordStorageOperation("put", "error")
		return &models.ArtifactError{Key: key, Op: "put", Err: fmt.Errorf("%w: %w", models.ErrStorageUpload, err)}
	}
	metrics.RecordStorageOperation("put", "success")
	return nil
}

// PresignRead returns a read URL for key.
func (r *Resilient) PresignRead(ctx context.Context, key string, ttl time.Duration) (string, error) {
	var url string
	err := r.policy.Do(ctx, "presign", func(ctx context.Context) error {
		return r.attempt(ctx, func(ctx context.Context) error {
			var err error
			url, err = r.next.PresignRead(ctx, key, ttl)
			return err
		})
	})
	if err != nil {
		metrics.RecordStorageOperation("presign", "error")
		return "", &models.ArtifactError{Key: key, Op: "presign", Err: err}
	}
	metrics.RecordStorageOperation("presign", "success")
	return url, nil
}

// State reports the breaker state for health checks.
func (r *Resilient) State() string {
	return stateToString(r.cb.State())
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
