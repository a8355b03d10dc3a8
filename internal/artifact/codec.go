// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

package artifact

import (
	"bytes"
	"encoding/csv"
	"encoding/gob"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tomtom215/mlboard/internal/models"
)

// ErrBadArtifact reports bytes that do not decode as the expected artifact.
var ErrBadArtifact = errors.New("malformed artifact")

// binaryMagic prefixes every binary artifact; the byte after it is the
// format version.
var binaryMagic = []byte("MLBOARD")

const binaryVersion byte = 1

var (
	movieHeader  = []string{"id", "title", "genres", "keywords", "cast", "crew", "release_date", "overview", "vote_count"}
	taggedHeader = []string{"id", "title", "genres", "keywords", "cast", "crew", "tags"}
)

// EncodeMovieTable writes the cleaned table as CSV.
func EncodeMovieTable(t *models.CleanedMovieTable) ([]byte, error) {
	rows := make([][]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10), r.Title, r.Genres, r.Keywords, r.Cast, r.Crew,
			r.ReleaseDate, r.Overview, strconv.Itoa(r.VoteCount),
		})
	}
	return writeCSV(movieHeader, rows)
}

// DecodeMovieTable parses EncodeMovieTable output.
func DecodeMovieTable(data []byte) (*models.CleanedMovieTable, error) {
	rows, err := readCSV(data, movieHeader)
	if err != nil {
		return nil, err
	}
	t := &models.CleanedMovieTable{Rows: make([]models.CleanedMovie, len(rows))}
	for i, r := range rows {
		id, err := strconv.ParseInt(r[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d id %q", ErrBadArtifact, i, r[0])
		}
		votes, err := strconv.Atoi(r[8])
		if err != nil {
			return nil, fmt.Errorf("%w: row %d vote_count %q", ErrBadArtifact, i, r[8])
		}
		t.Rows[i] = models.CleanedMovie{
			ID: id, Title: r[1], Genres: r[2], Keywords: r[3], Cast: r[4], Crew: r[5],
			ReleaseDate: r[6], Overview: r[7], VoteCount: votes,
		}
	}
	return t, nil
}

// EncodeTaggedTable writes the tag table as CSV; list columns hold
// space-separated tokens.
func EncodeTaggedTable(t *models.TaggedMovieTable) ([]byte, error) {
	rows := make([][]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10), r.Title,
			strings.Join(r.Genres, " "), strings.Join(r.Keywords, " "),
			strings.Join(r.Cast, " "), strings.Join(r.Crew, " "), r.Tags,
		})
	}
	return writeCSV(taggedHeader, rows)
}

// DecodeTaggedTable parses EncodeTaggedTable output.
func DecodeTaggedTable(data []byte) (*models.TaggedMovieTable, error) {
	rows, err := readCSV(data, taggedHeader)
	if err != nil {
		return nil, err
	}
	t := &models.TaggedMovieTable{Rows: make([]models.TaggedMovie, len(rows))}
	for i, r := range rows {
		id, err := strconv.ParseInt(r[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d id %q", ErrBadArtifact, i, r[0])
		}
		t.Rows[i] = models.TaggedMovie{
			ID: id, Title: r[1],
			Genres: strings.Fields(r[2]), Keywords: strings.Fields(r[3]),
			Cast: strings.Fields(r[4]), Crew: strings.Fields(r[5]),
			Tags: r[6],
		}
	}
	return t, nil
}

func writeCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

func readCSV(data []byte, header []string) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = len(header)
	got, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrBadArtifact, err)
	}
	for i, h := range header {
		if got[i] != h {
			return nil, fmt.Errorf("%w: column %d is %q, want %q", ErrBadArtifact, i, got[i], h)
		}
	}
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArtifact, err)
	}
	return rows, nil
}

// EncodeBinary writes magic, version, the kind string and v as a gob stream.
func EncodeBinary(kind Name, v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(binaryMagic)
	buf.WriteByte(binaryVersion)
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(string(kind)); err != nil {
		return nil, fmt.Errorf("encode %s: %w", kind, err)
	}
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode %s: %w", kind, err)
	}
	return buf.Bytes(), nil
}

// DecodeBinary reads EncodeBinary output into v, checking the header and kind.
func DecodeBinary(kind Name, data []byte, v interface{}) error {
	if !bytes.HasPrefix(data, binaryMagic) || len(data) <= len(binaryMagic) {
		return fmt.Errorf("%w: %s has no artifact header", ErrBadArtifact, kind)
	}
	if ver := data[len(binaryMagic)]; ver != binaryVersion {
		return fmt.Errorf("%w: %s has format version %d, want %d", ErrBadArtifact, kind, ver, binaryVersion)
	}
	dec := gob.NewDecoder(bytes.NewReader(data[len(binaryMagic)+1:]))
	var got string
	if err := dec.Decode(&got); err != nil {
		return fmt.Errorf("%w: %s kind: %v", ErrBadArtifact, kind, err)
	}
	if got != string(kind) {
		return fmt.Errorf("%w: holds %s, want %s", ErrBadArtifact, got, kind)
	}
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrBadArtifact, kind, err)
	}
	return nil
}

// EncodeSimilarityMatrix encodes m after validating its shape.
func EncodeSimilarityMatrix(m *models.SimilarityMatrix) ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return EncodeBinary(SimilarityMatrix, m)
}

// DecodeSimilarityMatrix decodes and validates a matrix.
func DecodeSimilarityMatrix(data []byte) (*models.SimilarityMatrix, error) {
	var m models.SimilarityMatrix
	if err := DecodeBinary(SimilarityMatrix, data, &m); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArtifact, err)
	}
	return &m, nil
}

// DecodeRegressionBundle decodes the forecast bundle.
func DecodeRegressionBundle(data []byte) (*models.RegressionBundle, error) {
	var b models.RegressionBundle
	if err := DecodeBinary(RegressionBundle, data, &b); err != nil {
		return nil, err
	}
	if b.Model == nil {
		return nil, fmt.Errorf("%w: regression bundle has no model", ErrBadArtifact)
	}
	return &b, nil
}

// DecodeClassificationBundle decodes the questionnaire bundle.
func DecodeClassificationBundle(data []byte) (*models.ClassificationBundle, error) {
	var b models.ClassificationBundle
	if err := DecodeBinary(ClassificationBundle, data, &b); err != nil {
		return nil, err
	}
	if b.Model == nil || b.Scaler == nil || len(b.Model.Coef) != len(b.Features) || len(b.Scaler.Mean) != len(b.Features) {
		return nil, fmt.Errorf("%w: classification bundle model, scaler and features disagree", ErrBadArtifact)
	}
	return &b, nil
}
