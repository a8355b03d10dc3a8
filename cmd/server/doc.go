// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

/*
Package main is the mlboard serving process.

It serves the movie recommender, the hourly energy forecast, the divorce
questionnaire and the optional company profile lookup over a JSON API. All
model artifacts come from the blob store written by cmd/etl; the server
never trains.

# Process Tree

	RootSupervisor ("mlboard")
	├── DataSupervisor ("data-layer")
	│   └── CacheWarmService (CACHE_WARM_ON_STARTUP, default true)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Startup order:

 1. Configuration: Koanf v2 (defaults, config.yaml, environment)
 2. Logging: zerolog, JSON or console
 3. Blob store: S3 or local BadgerDB, behind retry and circuit breaker
 4. Artifact cache: presigned fetch, decoded once per process
 5. Services and Chi router
 6. Supervisor tree

# Configuration

	STORAGE_BACKEND=s3          # s3 or local
	AWS_BUCKET=ml-ds-app
	AWS_BUCKET_PREFIX=worked
	AWS_REGION=us-east-1
	S3_ENDPOINT=                # MinIO / LocalStack
	BLOB_LOCAL_PATH=data/blobs  # local backend
	BLOB_SIGNING_SECRET=<secret>

	HTTP_PORT=8501
	CORS_ORIGINS=*
	RATE_LIMIT_REQUESTS=120
	CACHE_WARM_ON_STARTUP=true
	ENRICH_ENABLED=false

	LOG_LEVEL=info
	LOG_FORMAT=json

# Signals

SIGINT and SIGTERM cancel the tree. The HTTP server stops accepting
connections and waits up to SHUTDOWN_TIMEOUT for in-flight requests.
*/
package main
