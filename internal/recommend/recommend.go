// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

// Package recommend answers "movies similar to this one" from the
// precomputed similarity matrix and the cleaned movie table.
package recommend

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/tomtom215/mlboard/internal/logging"
	"github.com/tomtom215/mlboard/internal/metrics"
	"github.com/tomtom215/mlboard/internal/models"
	"github.com/tomtom215/mlboard/internal/transform"
)

// DefaultK is the neighbourhood size including the selected movie itself.
const DefaultK = 10

// MaxCardCast is how many cast names a detail card shows.
const MaxCardCast = 6

// Recommendation is one similar movie.
type Recommendation struct {
	Index   int     `json:"index"`
	MovieID int64   `json:"movie_id"`
	Title   string  `json:"title"`
	Score   float64 `json:"score"`
}

// Card is the detail view of a movie.
type Card struct {
	Title       string   `json:"title"`
	Director    string   `json:"director,omitempty"`
	Cast        []string `json:"cast"`
	Genres      []string `json:"genres"`
	ReleaseDate string   `json:"release_date"`
	Overview    string   `json:"overview"`
}

// Result pairs a recommendation with its card.
type Result struct {
	Recommendation
	Card Card `json:"card"`
}

// Recommend returns the k-1 movies most similar to the first row titled
// title, highest score first. The selected row never appears in the output;
// equal scores keep table order. The matrix must be keyed by the same movie
// ids, in the same order, as the table.
func Recommend(title string, m *models.SimilarityMatrix, t *models.CleanedMovieTable, k int) ([]Recommendation, error) {
	if !m.Matches(t.IDs()) {
		return nil, fmt.Errorf("%w: matrix has %d movies, table has %d", models.ErrIndexMismatch, m.N, len(t.Rows))
	}
	idx, ok := t.IndexOfTitle(title)
	if !ok {
		return nil, fmt.Errorf("%w: no movie titled %q", models.ErrLookupMiss, title)
	}
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", models.ErrMalformedModelInput, k)
	}

	row := m.Row(idx)
	order := make([]int, 0, len(row)-1)
	for j := range row {
		if j != idx {
			order = append(order, j)
		}
	}
	sort.SliceStable(order, func(a, b int) bool { return row[order[a]] > row[order[b]] })

	n := k - 1
	if n > len(order) {
		n = len(order)
	}
	out := make([]Recommendation, n)
	for i, j := range order[:n] {
		out[i] = Recommendation{Index: j, MovieID: m.MovieIDs[j], Title: t.Rows[j].Title, Score: row[j]}
	}
	return out, nil
}

// Titles returns the distinct titles in ascending order.
func Titles(t *models.CleanedMovieTable) []string {
	return t.Titles()
}

// Details builds the card of a movie from its raw JSON list cells.
func Details(row models.CleanedMovie) Card {
	c := Card{
		Title:       row.Title,
		ReleaseDate: row.ReleaseDate,
		Overview:    row.Overview,
		Cast:        []string{},
		Genres:      []string{},
	}
	for _, item := range transform.ObjectList(row.Crew) {
		if job, _ := item["job"].(string); job == "Director" {
			if name, ok := item["name"].(string); ok {
				c.Director = name
				break
			}
		}
	}
	for _, item := range transform.ObjectList(row.Cast) {
		if len(c.Cast) == MaxCardCast {
			break
		}
		if name, ok := item["name"].(string); ok {
			c.Cast = append(c.Cast, name)
		}
	}
	for _, item := range transform.ObjectList(row.Genres) {
		if name, ok := item["name"].(string); ok {
			c.Genres = append(c.Genres, name)
		}
	}
	return c
}

// Artifacts is the part of the artifact cache the service reads.
type Artifacts interface {
	MovieTable(ctx context.Context) (*models.CleanedMovieTable, error)
	SimilarityMatrix(ctx context.Context) (*models.SimilarityMatrix, error)
}

// Service serves recommendations from cached artifacts. It holds no state
// of its own and is safe for concurrent use.
type Service struct {
	artifacts Artifacts
	logger    zerolog.Logger
}

// NewService returns a Service reading from artifacts.
func NewService(artifacts Artifacts) *Service {
	return &Service{artifacts: artifacts, logger: logging.WithComponent("recommend")}
}

// Titles returns the selectable titles.
func (s *Service) Titles(ctx context.Context) ([]string, error) {
	t, err := s.artifacts.MovieTable(ctx)
	if err != nil {
		return nil, err
	}
	return Titles(t), nil
}

// Recommend returns up to k-1 similar movies with their cards.
func (s *Service) Recommend(ctx context.Context, title string, k int) ([]Result, error) {
	t, err := s.artifacts.MovieTable(ctx)
	if err != nil {
		return nil, err
	}
	m, err := s.artifacts.SimilarityMatrix(ctx)
	if err != nil {
		return nil, err
	}
	recs, err := Recommend(title, m, t, k)
	metrics.RecordPrediction("recommend", err)
	if err != nil {
		return nil, err
	}

	out := make([]Result, len(recs))
	for i, r := range recs {
		out[i] = Result{Recommendation: r, Card: Details(t.Rows[r.Index])}
	}
	s.logger.Debug().Str("title", title).Int("k", k).Int("results", len(out)).Msg("Recommendations served")
	return out, nil
}
