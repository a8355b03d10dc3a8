// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

/*
Package models defines the data structures shared by the ETL job and the
serving process.

Tables:

  - RawTable: schema-less rows read by an extractor, every cell a string
  - CleanedMovieTable: filtered join of movies and credits, raw JSON cells kept
  - TaggedMovieTable: normalized token lists plus the stemmed tags string
  - SimilarityMatrix: N x N cosine similarities with the movie id of each index

Bundles:

  - RegressionBundle: calendar features, split, fitted GBRegressor, importance
  - ClassificationBundle: fitted scaler and logistic regression on 10 features

All tables and bundles are write-once: produced by a loader, read-only once
they reach the artifact cache. The error taxonomy used across packages lives
in errors.go, the HTTP envelope in api_responses.go.
*/
package models
