// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

package artifact

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/mlboard/internal/blobstore"
	"github.com/tomtom215/mlboard/internal/logging"
	"github.com/tomtom215/mlboard/internal/metrics"
	"github.com/tomtom215/mlboard/internal/models"
)

// Source returns the raw bytes of an artifact.
type Source interface {
	Fetch(ctx context.Context, name Name) ([]byte, error)
}

// StoreSource fetches artifacts through presigned URLs of a blob store.
type StoreSource struct {
	store   blobstore.Store
	fetcher *blobstore.Fetcher
	prefix  string
	ttl     time.Duration
}

// NewStoreSource reads artifacts stored under prefix.
func NewStoreSource(store blobstore.Store, fetcher *blobstore.Fetcher, prefix string, ttl time.Duration) *StoreSource {
	return &StoreSource{store: store, fetcher: fetcher, prefix: prefix, ttl: ttl}
}

// Fetch presigns the artifact key and downloads it.
func (s *StoreSource) Fetch(ctx context.Context, name Name) ([]byte, error) {
	key := Key(s.prefix, name)
	url, err := s.store.PresignRead(ctx, key, s.ttl)
	if err != nil {
		return nil, err
	}
	data, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, &models.ArtifactError{Key: key, Op: "fetch", Err: err}
	}
	return data, nil
}

type decodeFunc func([]byte) (interface{}, error)

var decoders = map[Name]decodeFunc{
	MovieTable:           func(b []byte) (interface{}, error) { return DecodeMovieTable(b) },
	TaggedTable:          func(b []byte) (interface{}, error) { return DecodeTaggedTable(b) },
	SimilarityMatrix:     func(b []byte) (interface{}, error) { return DecodeSimilarityMatrix(b) },
	RegressionBundle:     func(b []byte) (interface{}, error) { return DecodeRegressionBundle(b) },
	ClassificationBundle: func(b []byte) (interface{}, error) { return DecodeClassificationBundle(b) },
}

// Cache memoizes decoded artifacts for the life of the process.
//
// Entries are populated on first use and never evicted or refreshed.
// Concurrent first requests for the same name share one fetch. The shared
// fetch is detached from the caller that started it, so one caller giving
// up does not fail the others; every caller still returns as soon as its
// own context ends. Failed fetches are not remembered and the next request
// tries again. Cached values are read-only.
type Cache struct {
	source       Source
	fetchTimeout time.Duration

	mu     sync.RWMutex
	values map[Name]interface{}
	group  singleflight.Group
}

// NewCache returns an empty cache. fetchTimeout bounds a single shared
// fetch; zero means no bound beyond the source's own timeouts.
func NewCache(source Source, fetchTimeout time.Duration) *Cache {
	return &Cache{source: source, fetchTimeout: fetchTimeout, values: make(map[Name]interface{})}
}

// Get returns the decoded artifact, fetching it on first use.
func (c *Cache) Get(ctx context.Context, name Name) (interface{}, error) {
	decode, ok := decoders[name]
	if !ok {
		return nil, fmt.Errorf("unknown artifact %q", name)
	}

	c.mu.RLock()
	v, ok := c.values[name]
	c.mu.RUnlock()
	if ok {
		metrics.RecordCacheLookup(string(name), true)
		return v, nil
	}
	metrics.RecordCacheLookup(string(name), false)

	ch := c.group.DoChan(string(name), func() (interface{}, error) {
		return c.load(context.WithoutCancel(ctx), name, decode)
	})
	select {
	case res := <-ch:
		if res.Shared {
			metrics.RecordSharedFetch(string(name))
		}
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Cache) load(ctx context.Context, name Name, decode decodeFunc) (interface{}, error) {
	c.mu.RLock()
	v, ok := c.values[name]
	c.mu.RUnlock()
	if ok {
		return v, nil
	}

	if c.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.fetchTimeout)
		defer cancel()
	}
	logger := logging.Ctx(ctx).With().Str("component", "artifact-cache").Str("artifact", string(name)).Logger()

	start := time.Now()
	data, err := c.source.Fetch(ctx, name)
	if err == nil {
		v, err = decode(data)
	}
	metrics.RecordArtifactFetch(string(name), time.Since(start), err)
	if err != nil {
		logger.Warn().Err(err).Dur("elapsed", time.Since(start)).Msg("Artifact fetch failed")
		return nil, err
	}

	c.mu.Lock()
	c.values[name] = v
	c.mu.Unlock()
	logger.Info().Int("bytes", len(data)).Dur("elapsed", time.Since(start)).Msg("Artifact cached")
	return v, nil
}

// Warm fetches names (all artifacts when empty) and returns every failure.
func (c *Cache) Warm(ctx context.Context, names ...Name) error {
	if len(names) == 0 {
		names = All
	}
	var errs []error
	for _, n := range names {
		if _, err := c.Get(ctx, n); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", n, err))
		}
	}
	return errors.Join(errs...)
}

// Loaded returns the cached artifact names, sorted.
func (c *Cache) Loaded() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.values))
	for n := range c.values {
		out = append(out, string(n))
	}
	sort.Strings(out)
	return out
}

// MovieTable returns the cleaned movie table.
func (c *Cache) MovieTable(ctx context.Context) (*models.CleanedMovieTable, error) {
	return typed[*models.CleanedMovieTable](c.Get(ctx, MovieTable))
}

// TaggedTable returns the tag table.
func (c *Cache) TaggedTable(ctx context.Context) (*models.TaggedMovieTable, error) {
	return typed[*models.TaggedMovieTable](c.Get(ctx, TaggedTable))
}

// SimilarityMatrix returns the movie similarity matrix.
func (c *Cache) SimilarityMatrix(ctx context.Context) (*models.SimilarityMatrix, error) {
	return typed[*models.SimilarityMatrix](c.Get(ctx, SimilarityMatrix))
}

// RegressionBundle returns the forecast bundle.
func (c *Cache) RegressionBundle(ctx context.Context) (*models.RegressionBundle, error) {
	return typed[*models.RegressionBundle](c.Get(ctx, RegressionBundle))
}

// ClassificationBundle returns the questionnaire bundle.
func (c *Cache) ClassificationBundle(ctx context.Context) (*models.ClassificationBundle, error) {
	return typed[*models.ClassificationBundle](c.Get(ctx, ClassificationBundle))
}

func typed[T any](v interface{}, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("artifact cache: unexpected value type %T", v)
	}
	return t, nil
}
