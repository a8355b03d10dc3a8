// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

package transform

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	porterstemmer "github.com/reiver/go-porterstemmer"

	"github.com/tomtom215/mlboard/internal/models"
)

// DefaultCrewJobs are the crew roles kept in a movie's tags.
var DefaultCrewJobs = []string{"Writer", "Director"}

// TagOptions controls TagMovies.
type TagOptions struct {
	CastLimit int
	CrewJobs  []string
}

// DefaultTagOptions keeps the first five cast members plus writer and director.
func DefaultTagOptions() TagOptions {
	return TagOptions{CastLimit: 5, CrewJobs: DefaultCrewJobs}
}

// ObjectList decodes a JSON list of objects. Anything that is not a
// list yields nil; list items that are not objects are dropped.
func ObjectList(cell string) []map[string]interface{} {
	cell = strings.TrimSpace(cell)
	if cell == "" || cell[0] != '[' {
		return nil
	}
	var raw []interface{}
	dec := json.NewDecoder(bytes.NewReader([]byte(cell)))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil
	}
	out := make([]map[string]interface{}, 0, len(raw))
	for _, item := range raw {
		if obj, ok := item.(map[string]interface{}); ok {
			out = append(out, obj)
		}
	}
	return out
}

// token removes every space from v and lower-cases it, so multi-word names
// become single tokens.
func token(v interface{}) string {
	return strings.ToLower(strings.ReplaceAll(fmt.Sprint(v), " ", ""))
}

// ExtractAttribute returns attr of each object in the JSON list cell as a
// token. Objects without attr are skipped. With limit > 0, extraction stops
// at the first object carrying attr whose position in the list is >= limit.
// A cell that is not a JSON list yields an empty slice.
func ExtractAttribute(cell, attr string, limit int) []string {
	items := ObjectList(cell)
	out := make([]string, 0, len(items))
	for idx, item := range items {
		v, ok := item[attr]
		if !ok {
			continue
		}
		if limit > 0 && idx >= limit {
			break
		}
		out = append(out, token(v))
	}
	return out
}

// MainCrewMembers returns the names of crew members whose job is in jobs,
// in list order, stopping once len(jobs) names were collected.
func MainCrewMembers(cell string, jobs []string) []string {
	items := ObjectList(cell)
	out := make([]string, 0, len(jobs))
	for _, item := range items {
		if len(out) == len(jobs) {
			break
		}
		job, ok := item["job"].(string)
		if !ok || !contains(jobs, job) {
			continue
		}
		name, ok := item["name"]
		if !ok {
			continue
		}
		out = append(out, token(name))
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// StemTags applies the Porter stemmer to each whitespace-separated word.
func StemTags(text string) string {
	words := strings.Fields(text)
	for i, w := range words {
		words[i] = stemWord(w)
	}
	return strings.Join(words, " ")
}

// stemWord returns w unchanged when it is short or the stemmer panics on it
// (porterstemmer indexes past the start on tokens such as "eed").
func stemWord(w string) (stem string) {
	if len([]rune(w)) <= 2 {
		return w
	}
	defer func() {
		if recover() != nil {
			stem = w
		}
	}()
	return porterstemmer.StemString(w)
}

// TagMovies derives the tag table from a cleaned table. Row order and count
// are preserved.
func TagMovies(cleaned *models.CleanedMovieTable, opts TagOptions) *models.TaggedMovieTable {
	if opts.CrewJobs == nil {
		opts.CrewJobs = DefaultCrewJobs
	}
	out := &models.TaggedMovieTable{Rows: make([]models.TaggedMovie, len(cleaned.Rows))}
	for i, m := range cleaned.Rows {
		t := models.TaggedMovie{
			ID:       m.ID,
			Title:    m.Title,
			Genres:   ExtractAttribute(m.Genres, "name", 0),
			Keywords: ExtractAttribute(m.Keywords, "name", 0),
			Cast:     ExtractAttribute(m.Cast, "name", opts.CastLimit),
			Crew:     MainCrewMembers(m.Crew, opts.CrewJobs),
		}
		all := make([]string, 0, len(t.Genres)+len(t.Keywords)+len(t.Cast)+len(t.Crew))
		all = append(all, t.Genres...)
		all = append(all, t.Keywords...)
		all = append(all, t.Cast...)
		all = append(all, t.Crew...)
		t.Tags = StemTags(strings.Join(all, " "))
		out.Rows[i] = t
	}
	return out
}
