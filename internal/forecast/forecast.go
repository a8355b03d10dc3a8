// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

// Package forecast serves the hourly power consumption forecast held in the
// regression bundle.
package forecast

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"

	"github.com/tomtom215/mlboard/internal/logging"
	"github.com/tomtom215/mlboard/internal/metrics"
	"github.com/tomtom215/mlboard/internal/ml"
	"github.com/tomtom215/mlboard/internal/models"
)

// DefaultWindow is the one-week slice shown next to the full series.
var DefaultWindow = Window{
	From: time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC),
	To:   time.Date(2018, 1, 7, 0, 0, 0, 0, time.UTC),
}

// Window is an inclusive time range.
type Window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Contains reports whether t lies in the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && !t.After(w.To)
}

// Point is one hour of the series. Predicted is nil for training rows.
type Point struct {
	Time      time.Time `json:"time"`
	Actual    float64   `json:"actual"`
	Predicted *float64  `json:"predicted,omitempty"`
}

// Options controls Summary.
type Options struct {
	Window Window

	// Step keeps every Step-th point of the train and test series; values
	// below 2 keep all of them. The window slice is never thinned.
	Step int
}

// Summary is everything the forecast page plots.
type Summary struct {
	SplitDate         time.Time                  `json:"split_date"`
	TrainSize         int                        `json:"train_size"`
	TestSize          int                        `json:"test_size"`
	RMSE              float64                    `json:"rmse"`
	BestIteration     int                        `json:"best_iteration"`
	Window            Window                     `json:"window"`
	WindowPoints      []Point                    `json:"window_points"`
	Train             []Point                    `json:"train"`
	Test              []Point                    `json:"test"`
	FeatureImportance []models.FeatureImportance `json:"feature_importance"`
}

// Predict runs the model over X. A row whose width differs from the
// model's feature count is rejected as malformed input.
func Predict(model ml.Predictor, X [][]float64) ([]float64, error) {
	out, err := model.Predict(X)
	if errors.Is(err, ml.ErrShapeMismatch) {
		return nil, fmt.Errorf("%w: %w", models.ErrMalformedModelInput, err)
	}
	return out, err
}

// RMSE returns the root mean squared error between actual and predicted.
func RMSE(actual, predicted []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	return floats.Distance(actual, predicted, 2) / math.Sqrt(float64(len(actual)))
}

// Summarize builds the page summary from a bundle and its test predictions.
func Summarize(b *models.RegressionBundle, predictions []float64, opts Options) (*Summary, error) {
	if len(predictions) != len(b.YTest) || len(b.TestTimes) != len(b.YTest) || len(b.TrainTimes) != len(b.YTrain) {
		return nil, fmt.Errorf("%w: %d predictions for %d test rows", models.ErrMalformedModelInput, len(predictions), len(b.YTest))
	}
	if opts.Window.From.IsZero() && opts.Window.To.IsZero() {
		opts.Window = DefaultWindow
	}
	if opts.Window.To.Before(opts.Window.From) {
		return nil, fmt.Errorf("%w: window ends before it starts", models.ErrMalformedModelInput)
	}

	s := &Summary{
		SplitDate:         b.SplitDate,
		TrainSize:         len(b.YTrain),
		TestSize:          len(b.YTest),
		RMSE:              RMSE(b.YTest, predictions),
		Window:            opts.Window,
		WindowPoints:      []Point{},
		FeatureImportance: sortedImportance(b.FeatureImportance),
	}
	if b.Model != nil {
		s.BestIteration = b.Model.BestIteration
	}

	step := opts.Step
	if step < 2 {
		step = 1
	}
	s.Train = make([]Point, 0, len(b.YTrain)/step+1)
	for i := 0; i < len(b.YTrain); i += step {
		s.Train = append(s.Train, Point{Time: b.TrainTimes[i], Actual: b.YTrain[i]})
	}
	s.Test = make([]Point, 0, len(b.YTest)/step+1)
	for i := range b.YTest {
		p := Point{Time: b.TestTimes[i], Actual: b.YTest[i], Predicted: &predictions[i]}
		if opts.Window.Contains(p.Time) {
			s.WindowPoints = append(s.WindowPoints, p)
		}
		if i%step == 0 {
			s.Test = append(s.Test, p)
		}
	}
	return s, nil
}

func sortedImportance(in []models.FeatureImportance) []models.FeatureImportance {
	out := append([]models.FeatureImportance(nil), in...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Feature < out[j].Feature })
	return out
}

// Artifacts is the part of the artifact cache the service reads.
type Artifacts interface {
	RegressionBundle(ctx context.Context) (*models.RegressionBundle, error)
}

// Service computes forecast summaries. Test-set predictions are computed
// once per bundle and reused.
type Service struct {
	artifacts Artifacts
	logger    zerolog.Logger

	mu     sync.Mutex
	bundle *models.RegressionBundle
	preds  []float64
}

// NewService returns a Service reading from artifacts.
func NewService(artifacts Artifacts) *Service {
	return &Service{artifacts: artifacts, logger: logging.WithComponent("forecast")}
}

// Summary returns the forecast summary for opts.
func (s *Service) Summary(ctx context.Context, opts Options) (*Summary, error) {
	b, err := s.artifacts.RegressionBundle(ctx)
	if err != nil {
		return nil, err
	}
	preds, err := s.predictions(b)
	metrics.RecordPrediction("forecast", err)
	if err != nil {
		return nil, err
	}
	return Summarize(b, preds, opts)
}

func (s *Service) predictions(b *models.RegressionBundle) ([]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bundle == b {
		return s.preds, nil
	}
	if b.Model == nil {
		return nil, fmt.Errorf("%w: regression bundle has no model", models.ErrMalformedModelInput)
	}
	start := time.Now()
	preds, err := Predict(b.Model, b.XTest)
	if err != nil {
		return nil, err
	}
	s.bundle, s.preds = b, preds
	s.logger.Info().Int("rows", len(preds)).Dur("elapsed", time.Since(start)).Msg("Test-set predictions computed")
	return preds, nil
}
