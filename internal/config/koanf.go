// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists config file locations, first match wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/mlboard/config.yaml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend:      "s3",
			Bucket:       "ml-ds-app",
			Prefix:       "worked",
			Region:       "us-east-1",
			PresignTTL:   600 * time.Second,
			LocalPath:    "data/blobs",
			LocalBaseURL: "http://localhost:8501",
		},
		Retry: RetryConfig{
			Attempts:     4,
			InitialDelay: 500 * time.Millisecond,
			MaxDelay:     8 * time.Second,
		},
		Breaker: BreakerConfig{
			MaxRequests:         1,
			Interval:            time.Minute,
			Timeout:             30 * time.Second,
			ConsecutiveFailures: 5,
		},
		ETL: ETLConfig{
			RawDir:     "data/raw",
			StagingDir: "data/worked",
			Movies: MoviesETLConfig{
				MinVoteCount: 400,
				CastLimit:    5,
				MaxFeatures:  10000,
			},
			Forecast: ForecastETLConfig{
				SplitDate:     "2015-01-01",
				Rounds:        10000,
				LearningRate:  0.01,
				EarlyStopping: 50,
				MaxDepth:      6,
				MaxBins:       256,
				Subsample:     1.0,
				Seed:          42,
			},
			Divorce: DivorceETLConfig{
				TopFeatures:  11,
				TestFraction: 0.2,
				Seed:         42,
			},
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8501,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   120,
			RateLimitWindow: time.Minute,
		},
		Cache: CacheConfig{
			WarmOnStartup: true,
			FetchTimeout:  2 * time.Minute,
		},
		Enrich: EnrichConfig{
			Enabled:           false,
			BaseURL:           "https://finance.yahoo.com/quote",
			RequestsPerSecond: 1,
			Timeout:           10 * time.Second,
			CacheTTL:          24 * time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration from defaults, the optional YAML file and the
// environment, in that order, then validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields splits comma-separated env values for slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok || s == "" {
			continue
		}
		var parts []string
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
// The AWS_* names match what the deployment secret store already exports.
var envMappings = map[string]string{
	"storage_backend":       "storage.backend",
	"aws_bucket":            "storage.bucket",
	"aws_bucket_prefix":     "storage.prefix",
	"aws_region":            "storage.region",
	"aws_access_key_id":     "storage.access_key_id",
	"aws_secret_access_key": "storage.secret_access_key",
	"s3_endpoint":           "storage.endpoint",
	"s3_use_path_style":     "storage.use_path_style",
	"presign_ttl":           "storage.presign_ttl",
	"blob_local_path":       "storage.local_path",
	"blob_base_url":         "storage.local_base_url",
	"blob_signing_secret":   "storage.signing_secret",

	"storage_retry_attempts":      "retry.attempts",
	"storage_retry_initial_delay": "retry.initial_delay",
	"storage_retry_max_delay":     "retry.max_delay",

	"breaker_max_requests":         "breaker.max_requests",
	"breaker_interval":             "breaker.interval",
	"breaker_timeout":              "breaker.timeout",
	"breaker_consecutive_failures": "breaker.consecutive_failures",

	"etl_raw_dir":              "etl.raw_dir",
	"etl_staging_dir":          "etl.staging_dir",
	"movies_min_vote_count":    "etl.movies.min_vote_count",
	"movies_cast_limit":        "etl.movies.cast_limit",
	"movies_max_features":      "etl.movies.max_features",
	"forecast_split_date":      "etl.forecast.split_date",
	"forecast_rounds":          "etl.forecast.rounds",
	"forecast_learning_rate":   "etl.forecast.learning_rate",
	"forecast_early_stopping":  "etl.forecast.early_stopping",
	"forecast_max_depth":       "etl.forecast.max_depth",
	"forecast_max_bins":        "etl.forecast.max_bins",
	"forecast_subsample":       "etl.forecast.subsample",
	"forecast_seed":            "etl.forecast.seed",
	"divorce_top_features":     "etl.divorce.top_features",
	"divorce_drop_feature":     "etl.divorce.drop_feature",
	"divorce_test_fraction":    "etl.divorce.test_fraction",
	"divorce_seed":             "etl.divorce.seed",

	"http_host":           "server.host",
	"http_port":           "server.port",
	"http_read_timeout":   "server.read_timeout",
	"http_write_timeout":  "server.write_timeout",
	"shutdown_timeout":    "server.shutdown_timeout",
	"cors_origins":        "server.cors_origins",
	"rate_limit_requests": "server.rate_limit_requests",
	"rate_limit_window":   "server.rate_limit_window",

	"cache_warm_on_startup": "cache.warm_on_startup",
	"cache_fetch_timeout":   "cache.fetch_timeout",

	"enrich_enabled":             "enrich.enabled",
	"enrich_base_url":            "enrich.base_url",
	"enrich_requests_per_second": "enrich.requests_per_second",
	"enrich_timeout":             "enrich.timeout",
	"enrich_cache_ttl":           "enrich.cache_ttl",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps env names to config paths. Unmapped names return ""
// and are skipped so unrelated environment variables never leak into config.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
