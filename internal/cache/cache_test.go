// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

package cache

import (
	"strconv"
	"sync"
	"testing"
	"time"
)

// clock is a manually advanced time source.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestCache[V any](ttl time.Duration) (*Cache[V], *clock) {
	clk := &clock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := New[V](ttl)
	c.now = clk.now
	return c, clk
}

func TestCacheBasicOperations(t *testing.T) {
	c, _ := newTestCache[string](time.Minute)

	c.Set("AAPL", "Apple Inc. designs smartphones")
	if v, ok := c.Get("AAPL"); !ok || v != "Apple Inc. designs smartphones" {
		t.Errorf("Get(AAPL) = %q, %v", v, ok)
	}
	if v, ok := c.Get("MSFT"); ok || v != "" {
		t.Errorf("Get(MSFT) = %q, %v, want zero miss", v, ok)
	}

	c.Delete("AAPL")
	if _, ok := c.Get("AAPL"); ok {
		t.Error("deleted key still present")
	}
}

func TestCacheExpiration(t *testing.T) {
	c, clk := newTestCache[int](time.Minute)

	c.Set("a", 1)
	c.SetWithTTL("b", 2, time.Hour)

	clk.advance(59 * time.Second)
	if _, ok := c.Get("a"); !ok {
		t.Error("a expired early")
	}

	clk.advance(2 * time.Second)
	if _, ok := c.Get("a"); ok {
		t.Error("a should have expired")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("b uses its own ttl")
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1 after lazy eviction", c.Len())
	}
}

func TestCacheNoTTL(t *testing.T) {
	c, clk := newTestCache[int](0)
	c.Set("a", 1)
	clk.advance(10 * 365 * 24 * time.Hour)
	if _, ok := c.Get("a"); !ok {
		t.Error("entry without ttl expired")
	}
}

func TestCacheSweepOnSet(t *testing.T) {
	c, clk := newTestCache[int](time.Minute)
	for i := 0; i < sweepThreshold; i++ {
		c.Set(strconv.Itoa(i), i)
	}
	clk.advance(2 * time.Minute)

	c.Set("fresh", 1)
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1 after sweep", c.Len())
	}
	if s := c.GetStats(); s.Evictions != sweepThreshold {
		t.Errorf("evictions = %d, want %d", s.Evictions, sweepThreshold)
	}
}

func TestCacheStats(t *testing.T) {
	c, _ := newTestCache[int](time.Minute)
	if c.HitRate() != 0 {
		t.Error("hit rate before lookups should be 0")
	}

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Get("a")
	c.Get("a")
	c.Get("missing")

	s := c.GetStats()
	if s.Hits != 3 || s.Misses != 1 || s.TotalKeys != 2 {
		t.Errorf("stats = %+v", s)
	}
	if c.HitRate() != 75 {
		t.Errorf("hit rate = %v, want 75", c.HitRate())
	}

	c.Clear()
	if s := c.GetStats(); s.Evictions != 2 || s.TotalKeys != 0 {
		t.Errorf("after Clear stats = %+v", s)
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := New[int](time.Minute)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := strconv.Itoa(i % 32)
				c.Set(key, g)
				c.Get(key)
			}
		}(g)
	}
	wg.Wait()
	if c.Len() != 32 {
		t.Errorf("Len = %d, want 32", c.Len())
	}
}
