// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/mlboard/internal/api"
	"github.com/tomtom215/mlboard/internal/artifact"
	"github.com/tomtom215/mlboard/internal/blobstore"
	"github.com/tomtom215/mlboard/internal/config"
	"github.com/tomtom215/mlboard/internal/divorce"
	"github.com/tomtom215/mlboard/internal/enrich"
	"github.com/tomtom215/mlboard/internal/forecast"
	"github.com/tomtom215/mlboard/internal/logging"
	"github.com/tomtom215/mlboard/internal/recommend"
	"github.com/tomtom215/mlboard/internal/supervisor"
	"github.com/tomtom215/mlboard/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Str("storage_backend", cfg.Storage.Backend).
		Str("prefix", cfg.Storage.Prefix).
		Msg("Starting mlboard server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	blobs, err := blobstore.Open(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open blob store")
	}
	defer func() {
		if err := blobs.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing blob store")
		}
	}()

	fetcher := blobstore.NewFetcher(blobstore.PolicyFromConfig(cfg.Retry), cfg.Cache.FetchTimeout)
	cache := artifact.NewCache(
		artifact.NewStoreSource(blobs.Store, fetcher, cfg.Storage.Prefix, cfg.Storage.PresignTTL),
		cfg.Cache.FetchTimeout,
	)

	handler := api.NewHandler(api.Services{
		Movies:    recommend.NewService(cache),
		Forecast:  forecast.NewService(cache),
		Divorce:   divorce.NewService(cache),
		Profiles:  enrich.NewClient(cfg.Enrich),
		Artifacts: cache,
		Expected:  len(artifact.All),
	}, version)

	// Local presigned URLs point back at this process.
	var blobHandler http.Handler
	if blobs.Local != nil {
		blobHandler = blobs.Local.Handler()
	}
	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFromServer(cfg.Server)), blobHandler)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout + time.Second,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	if cfg.Cache.WarmOnStartup {
		tree.AddDataService(services.NewCacheWarmService(cache, 30*time.Second))
		logging.Info().Int("artifacts", len(artifact.All)).Msg("Cache warm-up added to supervisor tree")
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	if err := <-tree.ServeBackground(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("mlboard server stopped")
}
