// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

package blobstore

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrInjected is returned by MemoryStore when a failure was scheduled.
var ErrInjected = errors.New("injected storage failure")

// MemoryStore is an in-process Store for tests. It records the order of
// successful writes and can fail the next N calls to Put.
type MemoryStore struct {
	mu       sync.Mutex
	objects  map[string][]byte
	order    []string
	failPuts int
	puts     int
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

// FailNextPuts makes the next n Put calls fail with ErrInjected.
func (m *MemoryStore) FailNextPuts(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failPuts = n
}

// Put stores a copy of data.
func (m *MemoryStore) Put(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	if m.failPuts > 0 {
		m.failPuts--
		return ErrInjected
	}
	m.objects[key] = append([]byte(nil), data...)
	m.order = append(m.order, key)
	return nil
}

// PresignRead returns a mem:// URL; it is only meaningful to tests.
func (m *MemoryStore) PresignRead(_ context.Context, key string, _ time.Duration) (string, error) {
	return "mem://" + key, nil
}

// Object returns the stored bytes for key.
func (m *MemoryStore) Object(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[key]
	return b, ok
}

// Order returns the keys in the order they were successfully written.
func (m *MemoryStore) Order() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.order...)
}

// PutCalls returns the number of Put calls, failed ones included.
func (m *MemoryStore) PutCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts
}
