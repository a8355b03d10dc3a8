// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tomtom215/mlboard/internal/models"
)

// MaxObjectSize bounds a single download.
const MaxObjectSize = 2 << 30

// Fetcher downloads presigned URLs.
type Fetcher struct {
	client *http.Client
	policy RetryPolicy
}

// NewFetcher returns a Fetcher whose requests time out after timeout.
func NewFetcher(policy RetryPolicy, timeout time.Duration) *Fetcher {
	return &Fetcher{client: &http.Client{Timeout: timeout}, policy: policy}
}

// Fetch downloads url. A missing object is reported as
// models.ErrArtifactNotFound and is not retried; other failures are
// retried with the Fetcher's policy.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var data []byte
	err := f.policy.Do(ctx, "fetch", func(ctx context.Context) error {
		var err error
		data, err = f.fetch(ctx, url)
		return err
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (f *Fetcher) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, permanent(fmt.Errorf("failed to create request: %w", err))
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound || isNoSuchKey(resp):
		return nil, permanent(models.ErrArtifactNotFound)
	case resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests:
		return nil, permanent(fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	default:
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxObjectSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(data) > MaxObjectSize {
		return nil, permanent(fmt.Errorf("object exceeds %d bytes", MaxObjectSize))
	}
	return data, nil
}

// isNoSuchKey recognizes the S3 error body returned for a missing key when
// the signer lacks ListBucket and S3 answers 403 instead of 404.
func isNoSuchKey(resp *http.Response) bool {
	if resp.StatusCode != http.StatusForbidden {
		return false
	}
	head, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return bytes.Contains(head, []byte("<Code>NoSuchKey</Code>"))
}
