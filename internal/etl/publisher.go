// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

package etl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tomtom215/mlboard/internal/artifact"
	"github.com/tomtom215/mlboard/internal/blobstore"
	"github.com/tomtom215/mlboard/internal/logging"
	"github.com/tomtom215/mlboard/internal/metrics"
	"github.com/tomtom215/mlboard/internal/models"
)

// Output is one serialized artifact ready for publishing.
type Output struct {
	Name artifact.Name
	Data []byte
}

// Publisher stages outputs on local disk and uploads them.
type Publisher struct {
	store      blobstore.Store
	prefix     string
	stagingDir string
}

// NewPublisher writes staged copies to stagingDir and uploads under prefix.
func NewPublisher(store blobstore.Store, prefix, stagingDir string) *Publisher {
	return &Publisher{store: store, prefix: prefix, stagingDir: stagingDir}
}

// Publish stages every output, then uploads them in order. Staging errors
// abort before anything is uploaded; the first upload error stops the rest.
func (p *Publisher) Publish(ctx context.Context, outputs ...Output) error {
	if err := os.MkdirAll(p.stagingDir, 0o750); err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	for _, o := range outputs {
		if err := p.stage(o); err != nil {
			return err
		}
	}

	for _, o := range outputs {
		if err := ctx.Err(); err != nil {
			return err
		}
		key := artifact.Key(p.prefix, o.Name)
		start := time.Now()
		if err := p.store.Put(ctx, key, o.Data); err != nil {
			return &models.ArtifactError{Key: key, Op: "upload", Err: err}
		}
		metrics.RecordUpload(key, len(o.Data))
		logging.Ctx(ctx).Info().
			Str("key", key).
			Int("bytes", len(o.Data)).
			Dur("elapsed", time.Since(start)).
			Msg("Artifact uploaded")
	}
	return nil
}

// stage writes o to a temp file in the staging dir and renames it into
// place, so the staged copy is never half written.
func (p *Publisher) stage(o Output) error {
	final := filepath.Join(p.stagingDir, string(o.Name))
	tmp, err := os.CreateTemp(p.stagingDir, "."+string(o.Name)+".*.tmp")
	if err != nil {
		return fmt.Errorf("stage %s: %w", o.Name, err)
	}
	tmpName := tmp.Name()
	cleanup := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("stage %s: %w", o.Name, err)
	}

	if _, err := tmp.Write(o.Data); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("stage %s: %w", o.Name, err)
	}
	if err := os.Rename(tmpName, final); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("stage %s: %w", o.Name, err)
	}
	return nil
}
