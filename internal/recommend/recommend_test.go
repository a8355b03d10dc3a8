// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

package recommend

import (
	"context"
	"errors"
	"reflect"
	"strconv"
	"testing"

	"github.com/tomtom215/mlboard/internal/models"
)

// fixture builds n movies whose similarity decreases with the distance
// between their rows, so neighbours at equal distance on both sides tie.
func fixture(n int) (*models.SimilarityMatrix, *models.CleanedMovieTable) {
	t := &models.CleanedMovieTable{}
	m := &models.SimilarityMatrix{N: n, Values: make([]float64, n*n)}
	for i := 0; i < n; i++ {
		id := int64(100 + i)
		t.Rows = append(t.Rows, models.CleanedMovie{ID: id, Title: "Movie " + strconv.Itoa(i)})
		m.MovieIDs = append(m.MovieIDs, id)
		for j := 0; j < n; j++ {
			d := i - j
			if d < 0 {
				d = -d
			}
			m.Values[i*n+j] = 1 / float64(1+d)
		}
	}
	return m, t
}

func TestRecommendProperties(t *testing.T) {
	m, tbl := fixture(20)
	recs, err := Recommend("Movie 5", m, tbl, DefaultK)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(recs) != DefaultK-1 {
		t.Fatalf("got %d recommendations, want %d", len(recs), DefaultK-1)
	}
	for i, r := range recs {
		if r.Title == "Movie 5" {
			t.Error("selected movie included in its own recommendations")
		}
		if i > 0 && r.Score > recs[i-1].Score {
			t.Errorf("scores increase at %d: %v > %v", i, r.Score, recs[i-1].Score)
		}
		if r.MovieID != tbl.Rows[r.Index].ID {
			t.Errorf("movie id %d does not match row %d", r.MovieID, r.Index)
		}
	}
	// Ties keep table order: distance 1 gives rows 4 then 6.
	if recs[0].Index != 4 || recs[1].Index != 6 {
		t.Errorf("first two = %d, %d, want 4, 6", recs[0].Index, recs[1].Index)
	}
}

func TestRecommendSmallTable(t *testing.T) {
	m, tbl := fixture(3)
	recs, err := Recommend("Movie 0", m, tbl, DefaultK)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Errorf("got %d, want every other movie (2)", len(recs))
	}
}

func TestRecommendDuplicateTitleUsesFirstRow(t *testing.T) {
	m, tbl := fixture(4)
	tbl.Rows[3].Title = "Movie 1"
	recs, err := Recommend("Movie 1", m, tbl, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].Index != 0 {
		t.Errorf("recs = %+v, want row 0 as nearest neighbour of row 1", recs)
	}
}

func TestRecommendErrors(t *testing.T) {
	m, tbl := fixture(5)
	if _, err := Recommend("Unknown", m, tbl, 10); !errors.Is(err, models.ErrLookupMiss) {
		t.Errorf("unknown title: err = %v, want ErrLookupMiss", err)
	}

	reordered := &models.CleanedMovieTable{Rows: append([]models.CleanedMovie(nil), tbl.Rows...)}
	reordered.Rows[0], reordered.Rows[1] = reordered.Rows[1], reordered.Rows[0]
	if _, err := Recommend("Movie 0", m, reordered, 10); !errors.Is(err, models.ErrIndexMismatch) {
		t.Errorf("reordered table: err = %v, want ErrIndexMismatch", err)
	}

	if _, err := Recommend("Movie 0", m, tbl, 0); !errors.Is(err, models.ErrMalformedModelInput) {
		t.Errorf("k=0: err = %v, want ErrMalformedModelInput", err)
	}
}

func TestDetails(t *testing.T) {
	row := models.CleanedMovie{
		Title:  "Avatar",
		Genres: `[{"id": 28, "name": "Action"}, {"id": 878, "name": "Science Fiction"}]`,
		Cast:   `[{"name": "A"}, {"name": "B"}, {"name": "C"}, {"name": "D"}, {"name": "E"}, {"name": "F"}, {"name": "G"}]`,
		Crew:   `[{"job": "Producer", "name": "Jon Landau"}, {"job": "Director", "name": "James Cameron"}]`,
	}
	c := Details(row)
	if c.Director != "James Cameron" {
		t.Errorf("Director = %q", c.Director)
	}
	if !reflect.DeepEqual(c.Cast, []string{"A", "B", "C", "D", "E", "F"}) {
		t.Errorf("Cast = %v", c.Cast)
	}
	if !reflect.DeepEqual(c.Genres, []string{"Action", "Science Fiction"}) {
		t.Errorf("Genres = %v", c.Genres)
	}

	empty := Details(models.CleanedMovie{Title: "X", Cast: "nan"})
	if empty.Cast == nil || len(empty.Cast) != 0 || empty.Director != "" {
		t.Errorf("empty card = %+v", empty)
	}
}

type fakeArtifacts struct {
	m   *models.SimilarityMatrix
	t   *models.CleanedMovieTable
	err error
}

func (f *fakeArtifacts) MovieTable(context.Context) (*models.CleanedMovieTable, error) {
	return f.t, f.err
}

func (f *fakeArtifacts) SimilarityMatrix(context.Context) (*models.SimilarityMatrix, error) {
	return f.m, f.err
}

func TestServiceRecommend(t *testing.T) {
	m, tbl := fixture(12)
	svc := NewService(&fakeArtifacts{m: m, t: tbl})

	res, err := svc.Recommend(context.Background(), "Movie 0", 4)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 3 || res[0].Card.Title != "Movie 1" {
		t.Errorf("results = %+v", res)
	}

	titles, err := svc.Titles(context.Background())
	if err != nil || len(titles) != 12 || titles[0] != "Movie 0" {
		t.Errorf("titles = %v, %v", titles, err)
	}

	failing := NewService(&fakeArtifacts{err: models.ErrArtifactNotFound})
	if _, err := failing.Recommend(context.Background(), "Movie 0", 4); !errors.Is(err, models.ErrArtifactNotFound) {
		t.Errorf("err = %v, want ErrArtifactNotFound", err)
	}
}
