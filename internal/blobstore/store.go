// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

// Package blobstore is the object storage client shared by the ETL job and
// the serving process.
//
// The ETL job only writes (Put); the serving process only asks for
// time-limited read URLs (PresignRead) and downloads them through a Fetcher.
// Two backends exist: S3 for deployments and a badger-backed local store
// that serves its own HMAC-signed URLs for development. Both are wrapped in
// Resilient, which adds bounded exponential backoff and a circuit breaker.
package blobstore

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/mlboard/internal/config"
)

// Store is a key/value object store.
type Store interface {
	// Put writes data under key. A reader never sees a partial object.
	Put(ctx context.Context, key string, data []byte) error

	// PresignRead returns a URL that allows an anonymous GET of key for ttl.
	// It does not check that key exists.
	PresignRead(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Client is an opened backend plus its resilient wrapper.
type Client struct {
	// Store is the backend wrapped in Resilient.
	Store Store

	// Local is set for the local backend; its Handler must be mounted
	// under /blobs for presigned URLs to resolve.
	Local *LocalStore
}

// Open builds the backend selected by cfg.Storage.Backend.
func Open(ctx context.Context, cfg *config.Config) (*Client, error) {
	var backend Store
	c := &Client{}
	switch cfg.Storage.Backend {
	case "s3":
		s3s, err := NewS3Store(ctx, cfg.Storage)
		if err != nil {
			return nil, err
		}
		backend = s3s
	case "local":
		local, err := NewLocalStore(cfg.Storage)
		if err != nil {
			return nil, err
		}
		c.Local = local
		backend = local
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
	c.Store = NewResilient(backend, cfg.Storage.Backend, PolicyFromConfig(cfg.Retry), cfg.Breaker)
	return c, nil
}

// Close releases backend resources.
func (c *Client) Close() error {
	if c.Local != nil {
		return c.Local.Close()
	}
	return nil
}

// permanentError marks failures that retrying cannot fix.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }

func (e *permanentError) Unwrap() error { return e.err }

func permanent(err error) error {
	return &permanentError{err: err}
}
