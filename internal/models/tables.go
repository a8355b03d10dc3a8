// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

package models

import (
	"fmt"
	"sort"
)

// RawTable is an untyped table as read from a source file.
type RawTable struct {
	Source  string
	Columns []string
	Rows    [][]string
}

// Len returns the number of data rows.
func (t *RawTable) Len() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of the named column.
func (t *RawTable) ColumnIndex(name string) (int, error) {
	for i, c := range t.Columns {
		if c == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s has no column %q", ErrMissingRawData, t.Source, name)
}

// ColumnIndexes resolves several columns at once.
func (t *RawTable) ColumnIndexes(names ...string) (map[string]int, error) {
	out := make(map[string]int, len(names))
	for _, n := range names {
		i, err := t.ColumnIndex(n)
		if err != nil {
			return nil, err
		}
		out[n] = i
	}
	return out, nil
}

// CleanedMovie is one row of CleanedMovieTable. Genres, Keywords, Cast and
// Crew hold the raw JSON list text from the source files.
type CleanedMovie struct {
	ID          int64
	Title       string
	Genres      string
	Keywords    string
	Cast        string
	Crew        string
	ReleaseDate string
	Overview    string
	VoteCount   int
}

// CleanedMovieTable is the filtered movies/credits join.
type CleanedMovieTable struct {
	Rows []CleanedMovie
}

// IndexOfTitle returns the first row whose title equals title exactly.
func (t *CleanedMovieTable) IndexOfTitle(title string) (int, bool) {
	for i := range t.Rows {
		if t.Rows[i].Title == title {
			return i, true
		}
	}
	return -1, false
}

// Titles returns the distinct titles in ascending order.
func (t *CleanedMovieTable) Titles() []string {
	seen := make(map[string]struct{}, len(t.Rows))
	out := make([]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		if _, ok := seen[r.Title]; ok {
			continue
		}
		seen[r.Title] = struct{}{}
		out = append(out, r.Title)
	}
	sort.Strings(out)
	return out
}

// IDs returns the movie id of each row in order.
func (t *CleanedMovieTable) IDs() []int64 {
	ids := make([]int64, len(t.Rows))
	for i, r := range t.Rows {
		ids[i] = r.ID
	}
	return ids
}

// TaggedMovie is one row of TaggedMovieTable.
type TaggedMovie struct {
	ID       int64
	Title    string
	Genres   []string
	Keywords []string
	Cast     []string
	Crew     []string
	Tags     string
}

// TaggedMovieTable has the same row order and count as the CleanedMovieTable
// it was derived from.
type TaggedMovieTable struct {
	Rows []TaggedMovie
}

// IDs returns the movie id of each row in order.
func (t *TaggedMovieTable) IDs() []int64 {
	ids := make([]int64, len(t.Rows))
	for i, r := range t.Rows {
		ids[i] = r.ID
	}
	return ids
}

// SimilarityMatrix is a dense row-major N x N matrix. MovieIDs[i] is the
// movie at row and column i, so the matrix can be checked against any table
// instead of trusting row order.
type SimilarityMatrix struct {
	N        int
	MovieIDs []int64
	Values   []float64
}

// At returns M[i][j].
func (m *SimilarityMatrix) At(i, j int) float64 {
	return m.Values[i*m.N+j]
}

// Row returns row i without copying.
func (m *SimilarityMatrix) Row(i int) []float64 {
	return m.Values[i*m.N : (i+1)*m.N]
}

// Validate checks the matrix dimensions.
func (m *SimilarityMatrix) Validate() error {
	if m.N < 0 || len(m.Values) != m.N*m.N || len(m.MovieIDs) != m.N {
		return fmt.Errorf("similarity matrix: N=%d with %d values and %d ids", m.N, len(m.Values), len(m.MovieIDs))
	}
	return nil
}

// Matches reports whether ids equal MovieIDs element by element.
func (m *SimilarityMatrix) Matches(ids []int64) bool {
	if len(ids) != len(m.MovieIDs) {
		return false
	}
	for i, id := range ids {
		if m.MovieIDs[i] != id {
			return false
		}
	}
	return true
}
