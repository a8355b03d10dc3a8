// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

package etl

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/mlboard/internal/logging"
	"github.com/tomtom215/mlboard/internal/metrics"
)

// RunStats summarizes one pipeline run.
type RunStats struct {
	RunID     string
	StartTime time.Time
	EndTime   time.Time

	// Completed lists loaders that finished, in run order.
	Completed []string

	// Failed is the loader that stopped the run, or "".
	Failed string
}

// Duration returns the wall-clock time of the run so far.
func (s *RunStats) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// Runner executes loaders sequentially.
type Runner struct {
	loaders []Loader
}

// NewRunner runs loaders in the given order.
func NewRunner(loaders ...Loader) *Runner {
	return &Runner{loaders: loaders}
}

// Run executes every loader under a fresh run id and returns the first
// loader error, wrapped with the loader name. Later loaders do not run.
func (r *Runner) Run(ctx context.Context) (*RunStats, error) {
	stats := &RunStats{RunID: logging.GenerateRunID(), StartTime: time.Now()}
	ctx = logging.ContextWithRunID(ctx, stats.RunID)
	defer func() { stats.EndTime = time.Now() }()

	for _, l := range r.loaders {
		logger := logging.Ctx(ctx).With().Str("loader", l.Name()).Logger()
		logger.Info().Msg("Loader started")

		start := time.Now()
		err := l.Load(ctx)
		elapsed := time.Since(start)
		metrics.RecordLoaderRun(l.Name(), elapsed, err)

		if err != nil {
			stats.Failed = l.Name()
			logger.Error().Err(err).Dur("elapsed", elapsed).Msg("Loader failed")
			return stats, fmt.Errorf("%s loader: %w", l.Name(), err)
		}
		stats.Completed = append(stats.Completed, l.Name())
		logger.Info().Dur("elapsed", elapsed).Msg("Loader finished")
	}
	return stats, nil
}
