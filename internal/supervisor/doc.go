// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

/*
Package supervisor runs the long-lived parts of the serving process under a
suture v4 supervisor tree.

The tree has two layers:

	RootSupervisor ("mlboard")
	├── DataSupervisor ("data-layer")
	│   └── CacheWarmService (if CACHE_WARM_ON_STARTUP)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A failing warm-up never takes the HTTP server down with it; handlers fall
back to fetching artifacts on first use.

Supervisor events (start, failure, backoff, restart) are logged through
sutureslog into the shared zerolog logger:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
	    ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddAPIService(services.NewHTTPServerService(srv, cfg.Server.ShutdownTimeout))
	errCh := tree.ServeBackground(ctx)

The service implementations live in the services subpackage.
*/
package supervisor
