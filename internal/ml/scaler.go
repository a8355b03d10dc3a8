// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

package ml

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// StandardScaler centers each column to zero mean and unit variance using
// the population variance. Columns with zero variance get Scale 1 so that
// Transform never divides by zero.
type StandardScaler struct {
	Mean  []float64
	Scale []float64
}

// Fit learns per-column mean and scale.
func (s *StandardScaler) Fit(X [][]float64) error {
	cols, err := checkMatrix(X, -1)
	if err != nil {
		return err
	}
	s.Mean = make([]float64, cols)
	s.Scale = make([]float64, cols)
	for j := 0; j < cols; j++ {
		mean, variance := stat.PopMeanVariance(Column(X, j), nil)
		s.Mean[j] = mean
		sd := math.Sqrt(variance)
		if sd == 0 || math.IsNaN(sd) {
			sd = 1
		}
		s.Scale[j] = sd
	}
	return nil
}

// Transform returns a scaled copy of X.
func (s *StandardScaler) Transform(X [][]float64) ([][]float64, error) {
	if s.Mean == nil {
		return nil, ErrNotFitted
	}
	if _, err := checkMatrix(X, len(s.Mean)); err != nil {
		return nil, err
	}
	out := make([][]float64, len(X))
	for i, row := range X {
		scaled := make([]float64, len(row))
		for j, v := range row {
			scaled[j] = (v - s.Mean[j]) / s.Scale[j]
		}
		out[i] = scaled
	}
	return out, nil
}

// FitTransform is Fit followed by Transform on the same matrix.
func (s *StandardScaler) FitTransform(X [][]float64) ([][]float64, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}
