// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks every section and returns the first problem found.
func (c *Config) Validate() error {
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateRetry(); err != nil {
		return err
	}
	if err := c.validateETL(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateEnrich(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateStorage() error {
	s := c.Storage
	switch s.Backend {
	case "s3":
		if s.Bucket == "" {
			return fmt.Errorf("storage.bucket is required for the s3 backend")
		}
		if s.Region == "" {
			return fmt.Errorf("storage.region is required for the s3 backend")
		}
		// Both or neither: with neither the default AWS credential chain applies.
		if (s.AccessKeyID == "") != (s.SecretAccessKey == "") {
			return fmt.Errorf("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set together")
		}
	case "local":
		if s.LocalPath == "" {
			return fmt.Errorf("storage.local_path is required for the local backend")
		}
		if !strings.HasPrefix(s.LocalBaseURL, "http://") && !strings.HasPrefix(s.LocalBaseURL, "https://") {
			return fmt.Errorf("storage.local_base_url must be an http(s) URL, got %q", s.LocalBaseURL)
		}
	default:
		return fmt.Errorf("storage.backend must be 's3' or 'local', got %q", s.Backend)
	}
	if s.PresignTTL < time.Second || s.PresignTTL > 7*24*time.Hour {
		return fmt.Errorf("storage.presign_ttl must be between 1s and 7d, got %s", s.PresignTTL)
	}
	return nil
}

func (c *Config) validateRetry() error {
	r := c.Retry
	if r.Attempts < 1 {
		return fmt.Errorf("retry.attempts must be at least 1, got %d", r.Attempts)
	}
	if r.InitialDelay <= 0 || r.MaxDelay < r.InitialDelay {
		return fmt.Errorf("retry delays must satisfy 0 < initial_delay <= max_delay")
	}
	if c.Breaker.ConsecutiveFailures == 0 {
		return fmt.Errorf("breaker.consecutive_failures must be positive")
	}
	return nil
}

func (c *Config) validateETL() error {
	e := c.ETL
	if e.RawDir == "" || e.StagingDir == "" {
		return fmt.Errorf("etl.raw_dir and etl.staging_dir are required")
	}
	if e.Movies.CastLimit < 1 {
		return fmt.Errorf("etl.movies.cast_limit must be positive")
	}
	if e.Movies.MaxFeatures < 1 {
		return fmt.Errorf("etl.movies.max_features must be positive")
	}
	if _, err := time.Parse(time.DateOnly, e.Forecast.SplitDate); err != nil {
		return fmt.Errorf("etl.forecast.split_date: %w", err)
	}
	f := e.Forecast
	if f.Rounds < 1 || f.MaxDepth < 1 || f.EarlyStopping < 1 {
		return fmt.Errorf("etl.forecast rounds, max_depth and early_stopping must be positive")
	}
	if f.LearningRate <= 0 || f.LearningRate > 1 {
		return fmt.Errorf("etl.forecast.learning_rate must be in (0, 1]")
	}
	if f.Subsample <= 0 || f.Subsample > 1 {
		return fmt.Errorf("etl.forecast.subsample must be in (0, 1]")
	}
	if f.MaxBins < 2 || f.MaxBins > 65535 {
		return fmt.Errorf("etl.forecast.max_bins must be in [2, 65535]")
	}
	d := e.Divorce
	if d.TopFeatures < 2 {
		return fmt.Errorf("etl.divorce.top_features must be at least 2")
	}
	if d.TestFraction <= 0 || d.TestFraction >= 1 {
		return fmt.Errorf("etl.divorce.test_fraction must be in (0, 1)")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.Server.RateLimitReqs < 0 {
		return fmt.Errorf("server.rate_limit_requests must not be negative")
	}
	return nil
}

func (c *Config) validateEnrich() error {
	if !c.Enrich.Enabled {
		return nil
	}
	if c.Enrich.BaseURL == "" {
		return fmt.Errorf("enrich.base_url is required when enrichment is enabled")
	}
	if c.Enrich.RequestsPerSecond <= 0 {
		return fmt.Errorf("enrich.requests_per_second must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("invalid log level %q", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("log format must be 'json' or 'console', got %q", c.Logging.Format)
	}
	return nil
}
