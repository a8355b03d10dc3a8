// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

// Package transform turns raw tables into the derived tables and trained
// bundles published by the ETL job. Every function here is pure: the same
// input and seed always produce the same output.
package transform

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/tomtom215/mlboard/internal/models"
)

// titlePattern admits titles that start with an ASCII letter or digit.
var titlePattern = regexp.MustCompile(`^[a-zA-Z0-9]`)

// CleanOptions controls CleanMovies.
type CleanOptions struct {
	// MinVoteCount keeps movies with vote_count strictly greater than this
	// value. A negative value disables the vote filter.
	MinVoteCount int
}

// CleanMovies filters the movies table to alphanumeric-led titles (and
// vote_count > MinVoteCount) and inner-joins it with credits on title.
// Output rows follow movies order; a title present several times in
// credits yields one row per credits match, in credits order.
func CleanMovies(movies, credits *models.RawTable, opts CleanOptions) (*models.CleanedMovieTable, error) {
	mc, err := movies.ColumnIndexes("id", "title", "genres", "keywords", "release_date", "overview", "vote_count")
	if err != nil {
		return nil, err
	}
	cc, err := credits.ColumnIndexes("title", "cast", "crew")
	if err != nil {
		return nil, err
	}

	byTitle := make(map[string][]int, credits.Len())
	for i, row := range credits.Rows {
		t := row[cc["title"]]
		byTitle[t] = append(byTitle[t], i)
	}

	out := &models.CleanedMovieTable{Rows: make([]models.CleanedMovie, 0, movies.Len())}
	for i, row := range movies.Rows {
		title := row[mc["title"]]
		if !titlePattern.MatchString(title) {
			continue
		}
		votes := parseCount(row[mc["vote_count"]])
		if opts.MinVoteCount >= 0 && votes <= opts.MinVoteCount {
			continue
		}
		matches := byTitle[title]
		if len(matches) == 0 {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSpace(row[mc["id"]]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s row %d has id %q", models.ErrMissingRawData, movies.Source, i, row[mc["id"]])
		}
		for _, ci := range matches {
			crow := credits.Rows[ci]
			out.Rows = append(out.Rows, models.CleanedMovie{
				ID:          id,
				Title:       title,
				Genres:      row[mc["genres"]],
				Keywords:    row[mc["keywords"]],
				Cast:        crow[cc["cast"]],
				Crew:        crow[cc["crew"]],
				ReleaseDate: row[mc["release_date"]],
				Overview:    row[mc["overview"]],
				VoteCount:   votes,
			})
		}
	}
	return out, nil
}

// parseCount reads integer or float text; anything else counts as zero.
func parseCount(s string) int {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}
