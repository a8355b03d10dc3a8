// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

/*
Package cache provides a thread-safe in-memory cache with TTL expiry.

It backs best-effort lookups whose answers change rarely, such as company
profile descriptions. Model artifacts are not cached here; they live in
artifact.Cache for the life of the process.

Expiry is lazy: an expired entry is dropped when Get finds it, and Set
sweeps expired entries once the cache has grown past its sweep threshold.
No background goroutine is started.

# Usage Example

	profiles := cache.New[enrich.Profile](24 * time.Hour)
	profiles.Set("AAPL", p)
	if p, ok := profiles.Get("AAPL"); ok {
	    return p, nil
	}

# Statistics

GetStats reports hits, misses, evictions and the current key count;
HitRate derives the hit percentage.
*/
package cache
