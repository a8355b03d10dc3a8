// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

package models

import (
	"time"

	"github.com/tomtom215/mlboard/internal/ml"
)

// Observation is one hourly load reading.
type Observation struct {
	Time time.Time
	MW   float64
}

// FeatureImportance pairs a feature name with a score.
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// RegressionBundle is the energy forecast artifact.
type RegressionBundle struct {
	Raw          []Observation
	FeatureNames []string
	SplitDate    time.Time

	TrainTimes []time.Time
	XTrain     [][]float64
	YTrain     []float64

	TestTimes []time.Time
	XTest     [][]float64
	YTest     []float64

	Model *ml.GBRegressor

	// FeatureImportance is sorted by feature name ascending.
	FeatureImportance []FeatureImportance
}

// ClassificationBundle is the divorce questionnaire artifact. Model and
// Scaler operate on exactly len(Features) columns, in Features order.
type ClassificationBundle struct {
	Model  *ml.LogisticRegression
	Scaler *ml.StandardScaler

	Features []string

	// InvertedPositions are response positions scored as 4 - r.
	InvertedPositions []int

	// Ranking is every predictor by |coefficient| of the full-feature model, descending.
	Ranking []FeatureImportance

	// HoldoutAccuracy of the full-feature model on the seeded test split.
	HoldoutAccuracy float64
}
