// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

package services

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/mlboard/internal/artifact"
)

var (
	_ suture.Service = (*HTTPServerService)(nil)
	_ suture.Service = (*CacheWarmService)(nil)
	_ Warmer         = (*artifact.Cache)(nil)
)

// fakeServer blocks in ListenAndServe until Shutdown unless listenErr is set.
type fakeServer struct {
	listenErr   error
	shutdownErr error
	started     chan struct{}
	stop        chan struct{}
	stopOnce    sync.Once
	listens     atomic.Int32
	shutdowns   atomic.Int32
}

func newFakeServer() *fakeServer {
	return &fakeServer{started: make(chan struct{}, 1), stop: make(chan struct{})}
}

func (f *fakeServer) ListenAndServe() error {
	f.listens.Add(1)
	select {
	case f.started <- struct{}{}:
	default:
	}
	if f.listenErr != nil {
		return f.listenErr
	}
	<-f.stop
	return http.ErrServerClosed
}

func (f *fakeServer) Shutdown(context.Context) error {
	f.shutdowns.Add(1)
	f.stopOnce.Do(func() { close(f.stop) })
	return f.shutdownErr
}

func serveAsync(svc suture.Service, ctx context.Context) <-chan error {
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()
	return errCh
}

func TestNewHTTPServerService(t *testing.T) {
	for _, timeout := range []time.Duration{0, -time.Second} {
		svc := NewHTTPServerService(newFakeServer(), timeout)
		if svc.shutdownTimeout != 10*time.Second {
			t.Errorf("timeout %v: got %v, want 10s default", timeout, svc.shutdownTimeout)
		}
	}

	srv := &http.Server{Addr: "127.0.0.1:8050"}
	if svc := NewHTTPServerService(srv, time.Second); svc.addr != "127.0.0.1:8050" {
		t.Errorf("addr = %q", svc.addr)
	}
	if got := NewHTTPServerService(srv, time.Second).String(); got != "http-server" {
		t.Errorf("String() = %q", got)
	}
}

func TestHTTPServerService_Serve(t *testing.T) {
	t.Run("graceful shutdown on cancel", func(t *testing.T) {
		srv := newFakeServer()
		ctx, cancel := context.WithCancel(context.Background())
		errCh := serveAsync(NewHTTPServerService(srv, time.Second), ctx)

		<-srv.started
		cancel()

		select {
		case err := <-errCh:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("got %v, want context.Canceled", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Serve did not return")
		}
		if srv.shutdowns.Load() != 1 {
			t.Errorf("Shutdown called %d times", srv.shutdowns.Load())
		}
	})

	t.Run("listen failure", func(t *testing.T) {
		bindErr := errors.New("bind: address already in use")
		srv := newFakeServer()
		srv.listenErr = bindErr

		err := NewHTTPServerService(srv, time.Second).Serve(context.Background())
		if !errors.Is(err, bindErr) {
			t.Errorf("got %v, want wrapped bind error", err)
		}
	})

	t.Run("shutdown failure", func(t *testing.T) {
		shutdownErr := errors.New("deadline exceeded")
		srv := newFakeServer()
		srv.shutdownErr = shutdownErr
		ctx, cancel := context.WithCancel(context.Background())
		errCh := serveAsync(NewHTTPServerService(srv, time.Second), ctx)

		<-srv.started
		cancel()

		if err := <-errCh; !errors.Is(err, shutdownErr) {
			t.Errorf("got %v, want shutdown error", err)
		}
	})
}

func TestHTTPServerService_UnderSupervisor(t *testing.T) {
	srv := newFakeServer()
	sup := suture.New("test", suture.Spec{FailureBackoff: 10 * time.Millisecond, Timeout: 2 * time.Second})
	sup.Add(NewHTTPServerService(srv, time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := sup.ServeBackground(ctx)

	select {
	case <-srv.started:
	case <-time.After(time.Second):
		t.Fatal("server did not start")
	}
	cancel()
	<-errCh

	if srv.shutdowns.Load() < 1 {
		t.Error("Shutdown was not called")
	}
}

// fakeWarmer fails the first failures calls.
type fakeWarmer struct {
	mu       sync.Mutex
	failures int
	calls    int
}

func (f *fakeWarmer) Warm(context.Context, ...artifact.Name) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failures {
		return errors.New("xbgPJMEObj.pkl: artifact not found")
	}
	return nil
}

func (f *fakeWarmer) Loaded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls > f.failures {
		return []string{"movieDb.csv"}
	}
	return nil
}

func (f *fakeWarmer) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestCacheWarmService(t *testing.T) {
	t.Run("retries until warm then stops", func(t *testing.T) {
		w := &fakeWarmer{failures: 2}
		err := NewCacheWarmService(w, time.Millisecond).Serve(context.Background())
		if !errors.Is(err, suture.ErrDoNotRestart) {
			t.Fatalf("got %v, want ErrDoNotRestart", err)
		}
		if w.Calls() != 3 {
			t.Errorf("Warm called %d times, want 3", w.Calls())
		}
	})

	t.Run("cancel while waiting", func(t *testing.T) {
		w := &fakeWarmer{failures: 1 << 30}
		ctx, cancel := context.WithCancel(context.Background())
		errCh := serveAsync(NewCacheWarmService(w, time.Hour), ctx)

		deadline := time.Now().Add(time.Second)
		for w.Calls() == 0 && time.Now().Before(deadline) {
			time.Sleep(time.Millisecond)
		}
		cancel()

		select {
		case err := <-errCh:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("got %v, want context.Canceled", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Serve did not return")
		}
	})

	t.Run("default interval", func(t *testing.T) {
		if svc := NewCacheWarmService(&fakeWarmer{}, 0); svc.interval != 30*time.Second {
			t.Errorf("interval = %v", svc.interval)
		}
	})
}
