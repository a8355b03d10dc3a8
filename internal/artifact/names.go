// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

// Package artifact names, encodes and caches the artifacts that the ETL job
// publishes and the serving process consumes.
package artifact

import "path"

// Name is an artifact file name below the storage prefix.
type Name string

// Published artifacts. The .pkl suffix is kept so existing bucket layouts
// stay valid; the content is a versioned gob stream.
const (
	MovieTable           Name = "movieDb.csv"
	TaggedTable          Name = "movieDbAnalytics.csv"
	SimilarityMatrix     Name = "similarityVectors.pkl"
	RegressionBundle     Name = "xbgPJMEObj.pkl"
	ClassificationBundle Name = "divorceMlObj.pkl"
)

// All lists every artifact in upload order.
var All = []Name{MovieTable, TaggedTable, SimilarityMatrix, RegressionBundle, ClassificationBundle}

// Key returns the storage key of n under prefix.
func Key(prefix string, n Name) string {
	return path.Join(prefix, string(n))
}
