// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

// Package ml contains the small set of models the pipeline trains: a
// histogram gradient-boosted regression tree ensemble, an L2-regularized
// logistic regression and a standard scaler.
//
// Models are plain structs with exported fields so that artifact bundles can
// be gob-encoded without custom marshalling. Callers depend on the capability
// interfaces below rather than on concrete types.
package ml

import (
	"errors"
	"fmt"
)

// ErrShapeMismatch is returned when a feature matrix does not have the
// width the model was fitted on, or rows and targets disagree in length.
var ErrShapeMismatch = errors.New("feature matrix shape mismatch")

// ErrNotFitted is returned when a model is used before Fit.
var ErrNotFitted = errors.New("model is not fitted")

// Trainable fits a model on a feature matrix and targets.
type Trainable interface {
	Fit(X [][]float64, y []float64) error
}

// Predictor produces one value per feature row.
type Predictor interface {
	Predict(X [][]float64) ([]float64, error)
}

// ProbabilisticPredictor produces one probability row per feature row.
// Column i holds the probability of class i.
type ProbabilisticPredictor interface {
	PredictProba(X [][]float64) ([][]float64, error)
}

// Scaler learns a per-column transformation and applies it.
type Scaler interface {
	Fit(X [][]float64) error
	Transform(X [][]float64) ([][]float64, error)
}

// checkMatrix verifies X is non-empty and rectangular with width cols.
// cols < 0 accepts any width and returns the observed one.
func checkMatrix(X [][]float64, cols int) (int, error) {
	if len(X) == 0 {
		return 0, fmt.Errorf("%w: empty matrix", ErrShapeMismatch)
	}
	if cols < 0 {
		cols = len(X[0])
	}
	for i, row := range X {
		if len(row) != cols {
			return 0, fmt.Errorf("%w: row %d has %d columns, want %d", ErrShapeMismatch, i, len(row), cols)
		}
	}
	return cols, nil
}

// Column returns column j of X as a new slice.
func Column(X [][]float64, j int) []float64 {
	out := make([]float64, len(X))
	for i, row := range X {
		out[i] = row[j]
	}
	return out
}
