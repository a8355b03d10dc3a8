// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

package models

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingRawData: a required local input is absent, unreadable or lacks a required column.
	ErrMissingRawData = errors.New("missing raw data")

	// ErrStorageUpload: the blob store rejected a write.
	ErrStorageUpload = errors.New("storage upload failed")

	// ErrArtifactNotFound: the requested artifact key does not exist in storage.
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrLookupMiss: a selection is not among the entities the service knows.
	ErrLookupMiss = errors.New("lookup miss")

	// ErrMalformedModelInput: shape or range mismatch fed to a trained model.
	ErrMalformedModelInput = errors.New("malformed model input")

	// ErrIndexMismatch: a similarity matrix and a movie table disagree on
	// which movie sits at which index.
	ErrIndexMismatch = errors.New("similarity matrix does not match movie table")
)

// ArtifactError attaches the artifact key to a storage or cache failure.
type ArtifactError struct {
	Key string
	Op  string
	Err error
}

func (e *ArtifactError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Key, e.Err)
}

func (e *ArtifactError) Unwrap() error {
	return e.Err
}
