// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

package blobstore

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/mlboard/internal/config"
	"github.com/tomtom215/mlboard/internal/logging"
	"github.com/tomtom215/mlboard/internal/models"
)

// InMemoryPath opens the local store without touching disk.
const InMemoryPath = ":memory:"

// LocalStore keeps objects in a badger database and hands out URLs signed
// with HMAC-SHA256 that its Handler verifies.
//
// Badger holds an exclusive directory lock, so the ETL job and the server
// cannot open the same LocalPath at the same time.
type LocalStore struct {
	db      *badger.DB
	baseURL string
	secret  []byte
	now     func() time.Time
}

// NewLocalStore opens the badger database at cfg.LocalPath. Without a
// signing secret a random one is generated, which is enough because URLs
// are only verified by the process that signed them.
func NewLocalStore(cfg config.StorageConfig) (*LocalStore, error) {
	opts := badger.DefaultOptions(cfg.LocalPath).WithLogger(nil)
	if cfg.LocalPath == InMemoryPath {
		opts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open local blob store %s: %w", cfg.LocalPath, err)
	}

	secret := []byte(cfg.SigningSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to generate signing secret: %w", err)
		}
	}

	logging.Info().
		Str("component", "blobstore").
		Str("path", cfg.LocalPath).
		Str("base_url", cfg.LocalBaseURL).
		Msg("Local blob store opened")

	return &LocalStore{
		db:      db,
		baseURL: strings.TrimRight(cfg.LocalBaseURL, "/"),
		secret:  secret,
		now:     time.Now,
	}, nil
}

// Close closes the database.
func (s *LocalStore) Close() error {
	return s.db.Close()
}

// Put writes data under key in a single transaction.
func (s *LocalStore) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// Get returns the object stored under key.
func (s *LocalStore) Get(key string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, &models.ArtifactError{Key: key, Op: "get", Err: models.ErrArtifactNotFound}
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return data, nil
}

// PresignRead returns base/blobs/<key>?expires=<unix>&sig=<hex>.
func (s *LocalStore) PresignRead(_ context.Context, key string, ttl time.Duration) (string, error) {
	expires := strconv.FormatInt(s.now().Add(ttl).Unix(), 10)
	q := url.Values{}
	q.Set("expires", expires)
	q.Set("sig", s.sign(key, expires))
	return s.baseURL + "/blobs/" + escapeKey(key) + "?" + q.Encode(), nil
}

func (s *LocalStore) sign(key, expires string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(key))
	mac.Write([]byte{'\n'})
	mac.Write([]byte(expires))
	return hex.EncodeToString(mac.Sum(nil))
}

// verify checks the signature and expiry of a presigned request.
func (s *LocalStore) verify(key, expires, sig string) error {
	want := s.sign(key, expires)
	if !hmac.Equal([]byte(want), []byte(sig)) {
		return errors.New("invalid signature")
	}
	exp, err := strconv.ParseInt(expires, 10, 64)
	if err != nil {
		return errors.New("invalid expiry")
	}
	if s.now().Unix() > exp {
		return errors.New("url expired")
	}
	return nil
}

// Handler serves GET /blobs/* for URLs produced by PresignRead.
func (s *LocalStore) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/blobs/*", func(w http.ResponseWriter, req *http.Request) {
		key, err := url.PathUnescape(chi.URLParam(req, "*"))
		if err != nil || key == "" {
			http.Error(w, "invalid key", http.StatusBadRequest)
			return
		}
		q := req.URL.Query()
		if err := s.verify(key, q.Get("expires"), q.Get("sig")); err != nil {
			http.Error(w, err.Error(), http.StatusForbidden)
			return
		}
		data, err := s.Get(key)
		if errors.Is(err, models.ErrArtifactNotFound) {
			http.Error(w, "NoSuchKey", http.StatusNotFound)
			return
		}
		if err != nil {
			logging.Ctx(req.Context()).Error().Err(err).Str("key", key).Msg("Local blob read failed")
			http.Error(w, "read failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		_, _ = w.Write(data)
	})
	return r
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
