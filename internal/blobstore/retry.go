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

	"github.com/tomtom215/mlboard/internal/config"
	"github.com/tomtom215/mlboard/internal/logging"
	"github.com/tomtom215/mlboard/internal/metrics"
)

// RetryPolicy is bounded exponential backoff: the delay starts at
// InitialDelay, doubles after every failed attempt and never exceeds
// MaxDelay.
type RetryPolicy struct {
	Attempts     int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// PolicyFromConfig converts the retry section of the configuration.
func PolicyFromConfig(c config.RetryConfig) RetryPolicy {
	return RetryPolicy{Attempts: c.Attempts, InitialDelay: c.InitialDelay, MaxDelay: c.MaxDelay}
}

// Do runs fn until it succeeds, returns a permanent error, ctx ends or the
// attempts are used up. The last error is returned unwrapped from the
// retry bookkeeping so callers can match it with errors.Is.
func (p RetryPolicy) Do(ctx context.Context, op string, fn func(context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	delay := p.InitialDelay
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			metrics.RecordStorageRetry(op)
			logging.Ctx(ctx).Debug().
				Str("component", "blobstore").
				Str("operation", op).
				Int("attempt", attempt+1).
				Dur("delay", delay).
				Msg("Retrying storage operation")
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("%s: %w (last error: %v)", op, ctx.Err(), lastErr)
			case <-timer.C:
			}
			delay *= 2
			if p.MaxDelay > 0 && delay > p.MaxDelay {
				delay = p.MaxDelay
			}
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		if ctx.Err() != nil {
			return fmt.Errorf("%s: %w (last error: %v)", op, ctx.Err(), err)
		}
		lastErr = err
		logging.Ctx(ctx).Warn().
			Str("component", "blobstore").
			Str("operation", op).
			Err(err).
			Int("attempt", attempt+1).
			Msg("Storage attempt failed")
	}
	return fmt.Errorf("%s: all %d attempts failed: %w", op, attempts, lastErr)
}
