// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

// Package main is the offline artifact pipeline.
//
// It reads credits.csv, movies_db.csv, PJME_hourly.csv and divorce_data.csv
// from ETL_RAW_DIR, trains the forecast and questionnaire models, and
// uploads the five dashboard artifacts under AWS_BUCKET_PREFIX. Loaders run
// movies, forecast, divorce in that order; the process exits 1 on the first
// failure.
//
//	STORAGE_BACKEND=local ETL_RAW_DIR=data/raw ./etl
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/mlboard/internal/blobstore"
	"github.com/tomtom215/mlboard/internal/config"
	"github.com/tomtom215/mlboard/internal/dataset"
	"github.com/tomtom215/mlboard/internal/etl"
	"github.com/tomtom215/mlboard/internal/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		logging.Error().Err(err).Msg("Failed to load configuration")
		return 1
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	logging.Info().
		Str("raw_dir", cfg.ETL.RawDir).
		Str("staging_dir", cfg.ETL.StagingDir).
		Str("storage_backend", cfg.Storage.Backend).
		Str("prefix", cfg.Storage.Prefix).
		Msg("========== ETL started ==========")

	blobs, err := blobstore.Open(ctx, cfg)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to open blob store")
		return 1
	}
	defer func() {
		if err := blobs.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing blob store")
		}
	}()

	extractor, err := dataset.NewExtractor(cfg.ETL.RawDir)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to open raw data")
		return 1
	}
	defer func() {
		if err := extractor.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing extractor")
		}
	}()

	loaders, err := etl.NewLoaders(cfg, extractor, etl.NewPublisher(blobs.Store, cfg.Storage.Prefix, cfg.ETL.StagingDir))
	if err != nil {
		logging.Error().Err(err).Msg("Invalid ETL configuration")
		return 1
	}

	stats, err := etl.NewRunner(loaders...).Run(ctx)
	if err != nil {
		logging.Error().Err(err).
			Str("run_id", stats.RunID).
			Str("failed_loader", stats.Failed).
			Dur("elapsed", time.Since(start)).
			Msg("========== ETL failed ==========")
		return 1
	}

	logging.Info().
		Str("run_id", stats.RunID).
		Strs("loaders", stats.Completed).
		Dur("elapsed", time.Since(start)).
		Msg("========== ETL finished ==========")
	return 0
}
