// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

// Package dataset reads the raw CSV inputs of the ETL job into RawTables.
//
// Files are parsed by an in-memory DuckDB instance through read_csv with
// all_varchar, so quoting, embedded newlines in the JSON list columns and
// the semicolon-separated questionnaire file are handled by one parser, and
// typing is left to the transformers.
package dataset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	// DuckDB driver registered as "duckdb"
	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/mlboard/internal/logging"
	"github.com/tomtom215/mlboard/internal/models"
)

// Raw input file names.
const (
	CreditsFile = "credits.csv"
	MoviesFile  = "movies_db.csv"
	PJMEFile    = "PJME_hourly.csv"
	DivorceFile = "divorce_data.csv"
)

// Extractor reads raw tables from a directory.
type Extractor struct {
	dir string
	db  *sql.DB
}

// NewExtractor opens an in-memory DuckDB instance for reading files in dir.
func NewExtractor(dir string) (*Extractor, error) {
	db, err := sql.Open("duckdb", ":memory:?autoinstall_known_extensions=false&autoload_known_extensions=false")
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}
	// One connection keeps read_csv settings and memory use predictable.
	db.SetMaxOpenConns(1)
	return &Extractor{dir: dir, db: db}, nil
}

// Close releases the DuckDB instance.
func (e *Extractor) Close() error {
	return e.db.Close()
}

// Read loads dir/name using delim as the field separator.
func (e *Extractor) Read(ctx context.Context, name string, delim rune) (*models.RawTable, error) {
	path := filepath.Join(e.dir, name)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s does not exist", models.ErrMissingRawData, path)
		}
		return nil, fmt.Errorf("%w: %s: %v", models.ErrMissingRawData, path, err)
	}

	query := fmt.Sprintf(
		"SELECT * FROM read_csv(%s, delim = %s, header = true, quote = '\"', escape = '\"', all_varchar = true)",
		quoteLiteral(path), quoteLiteral(string(delim)),
	)
	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", models.ErrMissingRawData, path, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: columns of %s: %v", models.ErrMissingRawData, path, err)
	}

	table := &models.RawTable{Source: name, Columns: cols}
	scan := make([]sql.NullString, len(cols))
	dest := make([]interface{}, len(cols))
	for i := range scan {
		dest[i] = &scan[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("%w: scan %s row %d: %v", models.ErrMissingRawData, path, len(table.Rows), err)
		}
		row := make([]string, len(cols))
		for i, v := range scan {
			row[i] = v.String
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate %s: %v", models.ErrMissingRawData, path, err)
	}

	logging.Ctx(ctx).Debug().
		Str("component", "extractor").
		Str("file", name).
		Int("rows", len(table.Rows)).
		Int("columns", len(cols)).
		Msg("Raw table loaded")
	return table, nil
}

// Credits reads credits.csv.
func (e *Extractor) Credits(ctx context.Context) (*models.RawTable, error) {
	return e.Read(ctx, CreditsFile, ',')
}

// Movies reads movies_db.csv.
func (e *Extractor) Movies(ctx context.Context) (*models.RawTable, error) {
	return e.Read(ctx, MoviesFile, ',')
}

// PJMEHourly reads PJME_hourly.csv.
func (e *Extractor) PJMEHourly(ctx context.Context) (*models.RawTable, error) {
	return e.Read(ctx, PJMEFile, ',')
}

// DivorceData reads the semicolon-separated divorce_data.csv.
func (e *Extractor) DivorceData(ctx context.Context) (*models.RawTable, error) {
	return e.Read(ctx, DivorceFile, ';')
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
