// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Storage.Bucket != "ml-ds-app" {
		t.Errorf("Storage.Bucket = %q, want ml-ds-app", cfg.Storage.Bucket)
	}
	if cfg.Storage.Prefix != "worked" {
		t.Errorf("Storage.Prefix = %q, want worked", cfg.Storage.Prefix)
	}
	if cfg.Storage.Region != "us-east-1" {
		t.Errorf("Storage.Region = %q, want us-east-1", cfg.Storage.Region)
	}
	if cfg.Storage.PresignTTL != 10*time.Minute {
		t.Errorf("Storage.PresignTTL = %v, want 10m", cfg.Storage.PresignTTL)
	}
	if cfg.ETL.Movies.MinVoteCount != 400 {
		t.Errorf("ETL.Movies.MinVoteCount = %d, want 400", cfg.ETL.Movies.MinVoteCount)
	}
	if cfg.ETL.Movies.MaxFeatures != 10000 {
		t.Errorf("ETL.Movies.MaxFeatures = %d, want 10000", cfg.ETL.Movies.MaxFeatures)
	}
	if cfg.ETL.Forecast.Rounds != 10000 || cfg.ETL.Forecast.EarlyStopping != 50 {
		t.Errorf("forecast rounds/early stopping = %d/%d, want 10000/50",
			cfg.ETL.Forecast.Rounds, cfg.ETL.Forecast.EarlyStopping)
	}
	if cfg.ETL.Divorce.TopFeatures != 11 {
		t.Errorf("ETL.Divorce.TopFeatures = %d, want 11", cfg.ETL.Divorce.TopFeatures)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"AWS_ACCESS_KEY_ID", "storage.access_key_id"},
		{"AWS_SECRET_ACCESS_KEY", "storage.secret_access_key"},
		{"aws_region", "storage.region"},
		{"STORAGE_RETRY_ATTEMPTS", "retry.attempts"},
		{"MOVIES_MIN_VOTE_COUNT", "etl.movies.min_vote_count"},
		{"FORECAST_SEED", "etl.forecast.seed"},
		{"HTTP_PORT", "server.port"},
		{"LOG_LEVEL", "logging.level"},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := envTransformFunc(tt.input); got != tt.expected {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLoadLayering(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlContent := `
storage:
  backend: local
  local_path: /tmp/blobs
  local_base_url: http://127.0.0.1:9000
etl:
  movies:
    min_vote_count: 100
server:
  port: 9000
`
	if err := os.WriteFile(path, []byte(yamlContent), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("HTTP_PORT", "9100")
	t.Setenv("CORS_ORIGINS", "http://a.example, http://b.example")
	t.Setenv("PRESIGN_TTL", "5m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Storage.Backend != "local" {
		t.Errorf("file layer not applied: backend = %q", cfg.Storage.Backend)
	}
	if cfg.ETL.Movies.MinVoteCount != 100 {
		t.Errorf("file layer not applied: min_vote_count = %d", cfg.ETL.Movies.MinVoteCount)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("env should override file: port = %d, want 9100", cfg.Server.Port)
	}
	if cfg.Storage.PresignTTL != 5*time.Minute {
		t.Errorf("PresignTTL = %v, want 5m", cfg.Storage.PresignTTL)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "http://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
	if cfg.ETL.Movies.CastLimit != 5 {
		t.Errorf("defaults should survive: cast_limit = %d", cfg.ETL.Movies.CastLimit)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"unknown backend", func(c *Config) { c.Storage.Backend = "gcs" }, "storage.backend"},
		{"half credentials", func(c *Config) { c.Storage.AccessKeyID = "AKIA" }, "must be set together"},
		{"zero retry attempts", func(c *Config) { c.Retry.Attempts = 0 }, "retry.attempts"},
		{"bad split date", func(c *Config) { c.ETL.Forecast.SplitDate = "2015/01/01" }, "split_date"},
		{"subsample out of range", func(c *Config) { c.ETL.Forecast.Subsample = 1.5 }, "subsample"},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"enrich without url", func(c *Config) { c.Enrich.Enabled = true; c.Enrich.BaseURL = "" }, "enrich.base_url"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "log format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestServerAddr(t *testing.T) {
	s := ServerConfig{Host: "0.0.0.0", Port: 8501}
	if got := s.Addr(); got != "0.0.0.0:8501" {
		t.Errorf("Addr() = %q", got)
	}
}
