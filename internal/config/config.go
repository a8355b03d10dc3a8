// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

// Package config loads mlboard configuration with Koanf v2.
//
// Sources are layered, highest priority last:
//
//  1. Built-in defaults (defaultConfig)
//  2. Optional YAML file (CONFIG_PATH, then config.yaml in the working directory)
//  3. Environment variables mapped explicitly in envTransformFunc
//
// Both binaries share the same Config; the ETL job reads Storage, Retry,
// Breaker and ETL, the server additionally reads Server, Cache and Enrich.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config is the root configuration.
type Config struct {
	Storage StorageConfig `koanf:"storage"`
	Retry   RetryConfig   `koanf:"retry"`
	Breaker BreakerConfig `koanf:"breaker"`
	ETL     ETLConfig     `koanf:"etl"`
	Server  ServerConfig  `koanf:"server"`
	Cache   CacheConfig   `koanf:"cache"`
	Enrich  EnrichConfig  `koanf:"enrich"`
	Logging LoggingConfig `koanf:"logging"`
}

// StorageConfig selects and configures the blob store backend.
type StorageConfig struct {
	// Backend is "s3" for AWS S3 (or an S3-compatible endpoint) or "local"
	// for the embedded BadgerDB store used in development.
	Backend string `koanf:"backend"`

	Bucket string `koanf:"bucket"`

	// Prefix is prepended to every artifact key ("worked").
	Prefix string `koanf:"prefix"`

	Region          string `koanf:"region"`
	AccessKeyID     string `koanf:"access_key_id"`
	SecretAccessKey string `koanf:"secret_access_key"`

	// Endpoint overrides the S3 endpoint (MinIO, LocalStack). Empty uses AWS.
	Endpoint     string `koanf:"endpoint"`
	UsePathStyle bool   `koanf:"use_path_style"`

	// PresignTTL is the lifetime of presigned read URLs.
	PresignTTL time.Duration `koanf:"presign_ttl"`

	// LocalPath is the BadgerDB directory for the local backend.
	LocalPath string `koanf:"local_path"`

	// LocalBaseURL is the externally reachable base of the /blobs handler.
	LocalBaseURL string `koanf:"local_base_url"`

	// SigningSecret signs local presigned URLs.
	SigningSecret string `koanf:"signing_secret"`
}

// RetryConfig is the bounded exponential backoff applied to storage I/O.
type RetryConfig struct {
	Attempts     int           `koanf:"attempts"`
	InitialDelay time.Duration `koanf:"initial_delay"`
	MaxDelay     time.Duration `koanf:"max_delay"`
}

// BreakerConfig configures the circuit breaker in front of the blob store.
type BreakerConfig struct {
	// MaxRequests allowed through while half-open.
	MaxRequests uint32 `koanf:"max_requests"`

	// Interval clears the closed-state counts; 0 never clears.
	Interval time.Duration `koanf:"interval"`

	// Timeout is how long the breaker stays open.
	Timeout time.Duration `koanf:"timeout"`

	// ConsecutiveFailures trips the breaker.
	ConsecutiveFailures uint32 `koanf:"consecutive_failures"`
}

// ETLConfig drives the offline artifact pipeline.
type ETLConfig struct {
	// RawDir holds credits.csv, movies_db.csv, PJME_hourly.csv and divorce_data.csv.
	RawDir string `koanf:"raw_dir"`

	// StagingDir receives serialized artifacts before upload.
	StagingDir string `koanf:"staging_dir"`

	Movies   MoviesETLConfig   `koanf:"movies"`
	Forecast ForecastETLConfig `koanf:"forecast"`
	Divorce  DivorceETLConfig  `koanf:"divorce"`
}

// MoviesETLConfig configures cleaning, tagging and vectorization.
type MoviesETLConfig struct {
	// MinVoteCount keeps movies with strictly more votes. Negative disables the filter.
	MinVoteCount int `koanf:"min_vote_count"`
	CastLimit    int `koanf:"cast_limit"`
	MaxFeatures  int `koanf:"max_features"`
}

// ForecastETLConfig configures the gradient-boosted regression model.
type ForecastETLConfig struct {
	// SplitDate is the first timestamp (YYYY-MM-DD, UTC) of the test split.
	SplitDate     string  `koanf:"split_date"`
	Rounds        int     `koanf:"rounds"`
	LearningRate  float64 `koanf:"learning_rate"`
	EarlyStopping int     `koanf:"early_stopping"`
	MaxDepth      int     `koanf:"max_depth"`
	MaxBins       int     `koanf:"max_bins"`
	Subsample     float64 `koanf:"subsample"`
	Seed          int64   `koanf:"seed"`
}

// DivorceETLConfig configures the questionnaire classifier.
type DivorceETLConfig struct {
	TopFeatures  int     `koanf:"top_features"`
	DropFeature  string  `koanf:"drop_feature"`
	TestFraction float64 `koanf:"test_fraction"`
	Seed         int64   `koanf:"seed"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_requests"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// CacheConfig configures the serving-side artifact cache.
type CacheConfig struct {
	// WarmOnStartup fetches every artifact when the server starts.
	WarmOnStartup bool `koanf:"warm_on_startup"`

	// FetchTimeout bounds one artifact download.
	FetchTimeout time.Duration `koanf:"fetch_timeout"`
}

// EnrichConfig configures the best-effort company profile lookup.
type EnrichConfig struct {
	Enabled bool   `koanf:"enabled"`
	BaseURL string `koanf:"base_url"`

	// RequestsPerSecond throttles outbound scrapes.
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	Timeout           time.Duration `koanf:"timeout"`

	// CacheTTL is how long a fetched description is reused. 0 keeps it
	// for the life of the process.
	CacheTTL time.Duration `koanf:"cache_ttl"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
