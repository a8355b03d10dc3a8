// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

//go:build integration

package blobstore

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/tomtom215/mlboard/internal/config"
	"github.com/tomtom215/mlboard/internal/models"
	"github.com/tomtom215/mlboard/internal/testinfra"
)

func TestS3StoreAgainstMinIO(t *testing.T) {
	testinfra.SkipIfNoDocker(t)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	minio, err := testinfra.NewMinIOContainer(ctx)
	if err != nil {
		t.Fatalf("start minio: %v", err)
	}
	defer testinfra.CleanupContainer(t, ctx, minio)

	cfg := config.StorageConfig{
		Backend:         "s3",
		Bucket:          "ml-ds-app",
		Region:          "us-east-1",
		Endpoint:        minio.URL,
		UsePathStyle:    true,
		AccessKeyID:     minio.AccessKey,
		SecretAccessKey: minio.SecretKey,
	}
	store, err := NewS3Store(ctx, cfg)
	if err != nil {
		t.Fatalf("NewS3Store: %v", err)
	}
	if _, err := store.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(cfg.Bucket)}); err != nil {
		t.Fatalf("create bucket: %v", err)
	}

	r := NewResilient(store, "minio", fastPolicy, testBreaker())
	payload := []byte("gob payload")
	if err := r.Put(ctx, "worked/divorceMlObj.pkl", payload); err != nil {
		t.Fatalf("Put: %v", err)
	}

	url, err := r.PresignRead(ctx, "worked/divorceMlObj.pkl", 10*time.Minute)
	if err != nil {
		t.Fatalf("PresignRead: %v", err)
	}
	f := NewFetcher(fastPolicy, 30*time.Second)
	got, err := f.Fetch(ctx, url)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("fetched %q", got)
	}

	missing, err := r.PresignRead(ctx, "worked/nothing.pkl", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Fetch(ctx, missing); !errors.Is(err, models.ErrArtifactNotFound) {
		t.Errorf("missing key: err = %v, want ErrArtifactNotFound", err)
	}
}
