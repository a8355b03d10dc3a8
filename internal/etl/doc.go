// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

// Package etl builds the dashboard artifacts from the raw CSV inputs and
// publishes them to the blob store.
//
// # Pipeline
//
//	raw CSV (etl.raw_dir)
//	       ↓
//	dataset.Extractor (DuckDB read_csv)
//	       ↓
//	transform + ml (clean, tag, vectorize, train)
//	       ↓
//	artifact codec (CSV / versioned gob)
//	       ↓
//	staging dir (etl.staging_dir, temp file + rename)
//	       ↓
//	blobstore.Store (S3 or local Badger)
//
// # Loaders
//
// Three independent loaders produce the five published keys:
//
//   - movies: movieDb.csv, movieDbAnalytics.csv, similarityVectors.pkl
//   - forecast: xbgPJMEObj.pkl
//   - divorce: divorceMlObj.pkl
//
// A loader serializes and stages everything it produces before its first
// upload, so a failed transform never leaves a partial set in the bucket.
// Each key is written whole; readers see either the previous object or the
// new one.
//
// # Runs
//
// Runner executes loaders one after another under a shared run id and stops
// at the first error. Each loader's outcome and duration is recorded in the
// mlboard_loader_* metrics.
package etl
