// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

package etl

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/mlboard/internal/artifact"
	"github.com/tomtom215/mlboard/internal/config"
	"github.com/tomtom215/mlboard/internal/logging"
	"github.com/tomtom215/mlboard/internal/ml"
	"github.com/tomtom215/mlboard/internal/models"
	"github.com/tomtom215/mlboard/internal/transform"
)

// RawSource reads the raw input tables. Satisfied by *dataset.Extractor.
type RawSource interface {
	Credits(ctx context.Context) (*models.RawTable, error)
	Movies(ctx context.Context) (*models.RawTable, error)
	PJMEHourly(ctx context.Context) (*models.RawTable, error)
	DivorceData(ctx context.Context) (*models.RawTable, error)
}

// Loader builds and publishes one group of artifacts.
type Loader interface {
	Name() string
	Load(ctx context.Context) error
}

// MoviesOptions controls MoviesLoader.
type MoviesOptions struct {
	Clean       transform.CleanOptions
	Tag         transform.TagOptions
	MaxFeatures int
}

// MoviesLoader publishes the cleaned table, the tag table and the
// similarity matrix.
type MoviesLoader struct {
	src  RawSource
	pub  *Publisher
	opts MoviesOptions
}

// NewMoviesLoader creates the movies loader.
func NewMoviesLoader(src RawSource, pub *Publisher, opts MoviesOptions) *MoviesLoader {
	return &MoviesLoader{src: src, pub: pub, opts: opts}
}

// Name implements Loader.
func (l *MoviesLoader) Name() string { return "movies" }

// Load implements Loader.
func (l *MoviesLoader) Load(ctx context.Context) error {
	movies, err := l.src.Movies(ctx)
	if err != nil {
		return err
	}
	credits, err := l.src.Credits(ctx)
	if err != nil {
		return err
	}

	cleaned, err := transform.CleanMovies(movies, credits, l.opts.Clean)
	if err != nil {
		return fmt.Errorf("clean movies: %w", err)
	}
	tagged := transform.TagMovies(cleaned, l.opts.Tag)
	matrix, err := transform.BuildSimilarityMatrix(tagged, l.opts.MaxFeatures)
	if err != nil {
		return err
	}
	logging.Ctx(ctx).Info().
		Int("raw_movies", movies.Len()).
		Int("kept", len(cleaned.Rows)).
		Int("matrix_n", matrix.N).
		Msg("Movie tables built")

	tableCSV, err := artifact.EncodeMovieTable(cleaned)
	if err != nil {
		return err
	}
	taggedCSV, err := artifact.EncodeTaggedTable(tagged)
	if err != nil {
		return err
	}
	matrixBin, err := artifact.EncodeSimilarityMatrix(matrix)
	if err != nil {
		return err
	}
	return l.pub.Publish(ctx,
		Output{Name: artifact.MovieTable, Data: tableCSV},
		Output{Name: artifact.TaggedTable, Data: taggedCSV},
		Output{Name: artifact.SimilarityMatrix, Data: matrixBin},
	)
}

// ForecastLoader trains and publishes the hourly load regression bundle.
type ForecastLoader struct {
	src  RawSource
	pub  *Publisher
	opts transform.ForecastOptions
}

// NewForecastLoader creates the forecast loader.
func NewForecastLoader(src RawSource, pub *Publisher, opts transform.ForecastOptions) *ForecastLoader {
	return &ForecastLoader{src: src, pub: pub, opts: opts}
}

// Name implements Loader.
func (l *ForecastLoader) Name() string { return "forecast" }

// Load implements Loader.
func (l *ForecastLoader) Load(ctx context.Context) error {
	raw, err := l.src.PJMEHourly(ctx)
	if err != nil {
		return err
	}
	b, err := transform.BuildRegressionBundle(raw, l.opts)
	if err != nil {
		return err
	}
	logging.Ctx(ctx).Info().
		Int("train_rows", len(b.XTrain)).
		Int("test_rows", len(b.XTest)).
		Int("best_iteration", b.Model.BestIteration).
		Msg("Forecast model trained")

	data, err := artifact.EncodeBinary(artifact.RegressionBundle, b)
	if err != nil {
		return err
	}
	return l.pub.Publish(ctx, Output{Name: artifact.RegressionBundle, Data: data})
}

// DivorceLoader trains and publishes the questionnaire classification bundle.
type DivorceLoader struct {
	src  RawSource
	pub  *Publisher
	opts transform.ClassificationOptions
}

// NewDivorceLoader creates the divorce loader.
func NewDivorceLoader(src RawSource, pub *Publisher, opts transform.ClassificationOptions) *DivorceLoader {
	return &DivorceLoader{src: src, pub: pub, opts: opts}
}

// Name implements Loader.
func (l *DivorceLoader) Name() string { return "divorce" }

// Load implements Loader.
func (l *DivorceLoader) Load(ctx context.Context) error {
	raw, err := l.src.DivorceData(ctx)
	if err != nil {
		return err
	}
	b, err := transform.BuildClassificationBundle(raw, l.opts)
	if err != nil {
		return err
	}
	logging.Ctx(ctx).Info().
		Strs("features", b.Features).
		Float64("holdout_accuracy", b.HoldoutAccuracy).
		Msg("Divorce model trained")

	data, err := artifact.EncodeBinary(artifact.ClassificationBundle, b)
	if err != nil {
		return err
	}
	return l.pub.Publish(ctx, Output{Name: artifact.ClassificationBundle, Data: data})
}

// NewLoaders builds the movies, forecast and divorce loaders from cfg, in
// run order.
func NewLoaders(cfg *config.Config, src RawSource, pub *Publisher) ([]Loader, error) {
	e := cfg.ETL

	split, err := time.Parse(time.DateOnly, e.Forecast.SplitDate)
	if err != nil {
		return nil, fmt.Errorf("etl.forecast.split_date: %w", err)
	}
	params := ml.DefaultGBParams()
	params.Rounds = e.Forecast.Rounds
	params.LearningRate = e.Forecast.LearningRate
	params.EarlyStopping = e.Forecast.EarlyStopping
	params.MaxDepth = e.Forecast.MaxDepth
	params.MaxBins = e.Forecast.MaxBins
	params.Subsample = e.Forecast.Subsample
	params.Seed = e.Forecast.Seed

	tags := transform.DefaultTagOptions()
	tags.CastLimit = e.Movies.CastLimit

	return []Loader{
		NewMoviesLoader(src, pub, MoviesOptions{
			Clean:       transform.CleanOptions{MinVoteCount: e.Movies.MinVoteCount},
			Tag:         tags,
			MaxFeatures: e.Movies.MaxFeatures,
		}),
		NewForecastLoader(src, pub, transform.ForecastOptions{SplitDate: split, Params: params}),
		NewDivorceLoader(src, pub, transform.ClassificationOptions{
			TopFeatures:  e.Divorce.TopFeatures,
			DropFeature:  e.Divorce.DropFeature,
			TestFraction: e.Divorce.TestFraction,
			Seed:         e.Divorce.Seed,
		}),
	}, nil
}
