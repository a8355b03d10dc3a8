// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

// Package divorce estimates the probability of divorce from answers to the
// ten-item relationship questionnaire.
//
// Answers are integers from 0 (never) to 4 (always). Items at the bundle's
// inverted positions are phrased positively and are scored as 4 - r before
// scaling, so that a high adjusted value always points the same way.
package divorce

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/mlboard/internal/logging"
	"github.com/tomtom215/mlboard/internal/metrics"
	"github.com/tomtom215/mlboard/internal/models"
	"github.com/tomtom215/mlboard/internal/validation"
)

// MaxResponse is the highest answer on the scale.
const MaxResponse = 4

// QuestionCount is the number of items the dashboard asks.
const QuestionCount = 10

// QuestionTexts are the prompts shown for each response position.
var QuestionTexts = [QuestionCount]string{
	"When we need it, we can take our discussions with my spouse from the beginning and correct it",
	"We're just starting a discussion before I know what's going on",
	"Our discussions often occur suddenly",
	"I think that one day in the future, when I look back, I see that my spouse and I have been in harmony with each other",
	"Sometimes I think it's good for me to leave home for a while",
	"When I discuss, I remind my spouse of her/his inadequacy",
	"Most of our goals for people (children, friends, etc.) are the same",
	"I have nothing to do with what I've been accused of",
	"When I talk to my spouse about something, my calm suddenly breaks",
	"I know we can ignore our differences, even if things get hard sometimes",
}

// Band is the gauge colour bucket of a probability.
type Band string

const (
	BandLow       Band = "low"
	BandUncertain Band = "uncertain"
	BandHigh      Band = "high"
)

// BandOf buckets p: at most 30% is low, 50% or more is high.
func BandOf(p float64) Band {
	pct := p * 100
	switch {
	case pct <= 30:
		return BandLow
	case pct < 50:
		return BandUncertain
	default:
		return BandHigh
	}
}

// Questionnaire is a set of raw answers in question order.
type Questionnaire struct {
	Responses []int `json:"responses" validate:"required,len=10,dive,min=0,max=4"`
}

// Question describes one response position.
type Question struct {
	Position int    `json:"position"`
	Feature  string `json:"feature"`
	Text     string `json:"text"`
	Inverted bool   `json:"inverted"`
}

// Questions lists the response positions of a bundle in the order
// PredictProbability expects them.
func Questions(b *models.ClassificationBundle) []Question {
	inverted := make(map[int]bool, len(b.InvertedPositions))
	for _, p := range b.InvertedPositions {
		inverted[p] = true
	}
	out := make([]Question, len(b.Features))
	for i, f := range b.Features {
		out[i] = Question{Position: i, Feature: f, Inverted: inverted[i]}
		if i < QuestionCount {
			out[i].Text = QuestionTexts[i]
		}
	}
	return out
}

// Invert returns the adjusted value of an answer at an inverted position.
func Invert(r int) int {
	return MaxResponse - r
}

// Adjust validates responses and returns them as model features with the
// inverted positions flipped. responses is not modified.
func Adjust(b *models.ClassificationBundle, responses []int) ([]float64, error) {
	if verr := validation.ValidateStruct(&Questionnaire{Responses: responses}); verr != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrMalformedModelInput, verr)
	}
	if len(responses) != len(b.Features) {
		return nil, fmt.Errorf("%w: %d responses for a model with %d features", models.ErrMalformedModelInput, len(responses), len(b.Features))
	}
	row := make([]float64, len(responses))
	for i, r := range responses {
		row[i] = float64(r)
	}
	for _, p := range b.InvertedPositions {
		if p < 0 || p >= len(row) {
			return nil, fmt.Errorf("%w: inverted position %d out of range", models.ErrMalformedModelInput, p)
		}
		row[p] = float64(Invert(responses[p]))
	}
	return row, nil
}

// PredictProbability returns the positive-class probability for responses.
func PredictProbability(b *models.ClassificationBundle, responses []int) (float64, error) {
	if b.Model == nil || b.Scaler == nil {
		return 0, fmt.Errorf("%w: classification bundle is incomplete", models.ErrMalformedModelInput)
	}
	row, err := Adjust(b, responses)
	if err != nil {
		return 0, err
	}
	scaled, err := b.Scaler.Transform([][]float64{row})
	if err != nil {
		return 0, fmt.Errorf("%w: %w", models.ErrMalformedModelInput, err)
	}
	proba, err := b.Model.PredictProba(scaled)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", models.ErrMalformedModelInput, err)
	}
	return proba[0][1], nil
}

// Estimate is a probability with its gauge band.
type Estimate struct {
	Probability float64 `json:"probability"`
	Band        Band    `json:"band"`
}

// Artifacts is the part of the artifact cache the service reads.
type Artifacts interface {
	ClassificationBundle(ctx context.Context) (*models.ClassificationBundle, error)
}

// Service answers questionnaire requests from the cached bundle.
type Service struct {
	artifacts Artifacts
	logger    zerolog.Logger
}

// NewService returns a Service reading from artifacts.
func NewService(artifacts Artifacts) *Service {
	return &Service{artifacts: artifacts, logger: logging.WithComponent("divorce")}
}

// Questions returns the questionnaire items.
func (s *Service) Questions(ctx context.Context) ([]Question, error) {
	b, err := s.artifacts.ClassificationBundle(ctx)
	if err != nil {
		return nil, err
	}
	return Questions(b), nil
}

// Estimate scores responses.
func (s *Service) Estimate(ctx context.Context, responses []int) (*Estimate, error) {
	b, err := s.artifacts.ClassificationBundle(ctx)
	if err != nil {
		return nil, err
	}
	p, err := PredictProbability(b, responses)
	metrics.RecordPrediction("divorce", err)
	if err != nil {
		return nil, err
	}
	e := &Estimate{Probability: p, Band: BandOf(p)}
	s.logger.Debug().Float64("probability", p).Str("band", string(e.Band)).Msg("Questionnaire scored")
	return e, nil
}
