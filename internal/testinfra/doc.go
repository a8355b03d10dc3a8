// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

// Package testinfra provides containers for integration tests.
//
// Everything here is behind the integration build tag:
//
//	go test -tags integration ./internal/blobstore/...
//
// # MinIO Container
//
// MinIOContainer runs an S3-compatible server so the S3 blob store can be
// exercised end to end, presigned URLs included:
//
//	minio, err := testinfra.NewMinIOContainer(ctx)
//	if err != nil {
//	    t.Fatal(err)
//	}
//	defer testinfra.CleanupContainer(t, ctx, minio)
//
//	cfg := config.StorageConfig{
//	    Backend:         "s3",
//	    Bucket:          "ml-ds-app",
//	    Region:          "us-east-1",
//	    Endpoint:        minio.URL,
//	    UsePathStyle:    true,
//	    AccessKeyID:     minio.AccessKey,
//	    SecretAccessKey: minio.SecretKey,
//	}
//
// Tests call SkipIfNoDocker first so they skip cleanly on machines without
// a Docker daemon.
package testinfra
