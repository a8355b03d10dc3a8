// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

package services

import (
	"context"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/mlboard/internal/artifact"
	"github.com/tomtom215/mlboard/internal/logging"
)

// Warmer preloads artifacts. Satisfied by *artifact.Cache.
type Warmer interface {
	Warm(ctx context.Context, names ...artifact.Name) error
	Loaded() []string
}

// CacheWarmService fetches every artifact once at startup.
//
// Failed artifacts are retried every interval until all of them are cached,
// after which the service removes itself from the tree. Requests arriving in
// the meantime load artifacts on demand through the same cache.
type CacheWarmService struct {
	cache    Warmer
	interval time.Duration
}

// NewCacheWarmService creates the warm-up service. A non-positive interval
// means 30s.
func NewCacheWarmService(cache Warmer, interval time.Duration) *CacheWarmService {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &CacheWarmService{cache: cache, interval: interval}
}

// Serve implements suture.Service.
func (s *CacheWarmService) Serve(ctx context.Context) error {
	logger := logging.WithComponent("cache-warm")
	start := time.Now()

	for attempt := 1; ; attempt++ {
		err := s.cache.Warm(ctx)
		if err == nil {
			logger.Info().
				Strs("artifacts", s.cache.Loaded()).
				Int("attempts", attempt).
				Dur("elapsed", time.Since(start)).
				Msg("Artifact cache warm")
			return suture.ErrDoNotRestart
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Warn().Err(err).
			Int("attempt", attempt).
			Strs("loaded", s.cache.Loaded()).
			Dur("retry_in", s.interval).
			Msg("Artifact warm-up incomplete")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.interval):
		}
	}
}

// String names the service in supervisor events.
func (s *CacheWarmService) String() string {
	return "cache-warm"
}
