// Package cache provides a TTL result cache with in-flight request
// coalescing and a cap on concurrent fetches. Every read path that hits the
// authoritative backend goes through it.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"
)

// Options control a single GetOrFetch call.
type Options struct {
	// BypassCache forces a fresh fetch for this key and repopulates the
	// cache on success. Other keys are unaffected.
	BypassCache bool
	// TTL overrides the cache default for the fetched entry. Zero uses the
	// default.
	TTL time.Duration
}

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// ResultCache is an explicit, constructed, injectable cache: tests can
// instantiate isolated instances with a controlled clock. Values are
// immutable once cached, so a single mutex around admission and removal is
// sufficient.
type ResultCache struct {
	mu          sync.Mutex
	entries     map[string]entry
	epochs      map[string]uint64 // bumped by Clear so an in-flight fetch cannot repopulate a cleared key
	inflight    map[string]int    // fetches underway per key; drained entries drop their epoch bookkeeping
	globalEpoch uint64

	group      singleflight.Group
	sem        *semaphore.Weighted
	now        func() time.Time
	defaultTTL time.Duration
}

// New creates a ResultCache. maxConcurrent caps the number of distinct
// outstanding fetches; requests beyond the cap wait rather than fail.
func New(maxConcurrent int64, defaultTTL time.Duration) *ResultCache {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &ResultCache{
		entries:    make(map[string]entry),
		epochs:     make(map[string]uint64),
		inflight:   make(map[string]int),
		sem:        semaphore.NewWeighted(maxConcurrent),
		now:        time.Now,
		defaultTTL: defaultTTL,
	}
}

// WithClock replaces the cache's clock. Used by tests to control TTL expiry.
func (c *ResultCache) WithClock(now func() time.Time) *ResultCache {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
	return c
}

// GetOrFetch returns the cached value for key, or runs fetch to produce it.
// Concurrent callers for the same key share one underlying fetch. A failed
// fetch is not cached and clears the in-flight marker so the next call
// retries; all coalesced callers receive the underlying error.
func (c *ResultCache) GetOrFetch(ctx context.Context, key string, fetch func(ctx context.Context) (interface{}, error), opts Options) (interface{}, error) {
	if !opts.BypassCache {
		if v, ok := c.lookup(key); ok {
			return v, nil
		}
	}

	globalEpoch, keyEpoch := c.register(key)
	defer c.release(key)

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// A coalesced caller may arrive after the previous fetch stored the
		// value; re-check before fetching again.
		if !opts.BypassCache {
			if v, ok := c.lookup(key); ok {
				return v, nil
			}
		}

		if err := c.sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer c.sem.Release(1)

		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		c.store(key, v, opts.TTL, globalEpoch, keyEpoch)
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Clear removes one entry and forgets any in-flight bookkeeping for the key.
// It does not abort network I/O already underway; a completed fetch for a
// cleared key is simply discarded instead of cached.
func (c *ResultCache) Clear(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	if _, ok := c.inflight[key]; ok {
		c.epochs[key]++
	}
	c.mu.Unlock()
	c.group.Forget(key)
}

// ClearAll empties the cache and invalidates every in-flight fetch: its
// result is discarded instead of cached, and new callers start fresh
// fetches rather than coalescing onto pre-clear ones.
func (c *ResultCache) ClearAll() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.globalEpoch++
	inflight := make([]string, 0, len(c.inflight))
	for key := range c.inflight {
		inflight = append(inflight, key)
	}
	c.mu.Unlock()
	for _, key := range inflight {
		c.group.Forget(key)
	}
}

// ClearMatching removes every entry whose key satisfies the predicate.
// In-flight fetches for matching keys are invalidated the same way Clear
// invalidates them, cached entry or not.
func (c *ResultCache) ClearMatching(match func(key string) bool) {
	c.mu.Lock()
	forget := make(map[string]struct{})
	for key := range c.entries {
		if match(key) {
			delete(c.entries, key)
			forget[key] = struct{}{}
		}
	}
	for key := range c.inflight {
		if match(key) {
			c.epochs[key]++
			forget[key] = struct{}{}
		}
	}
	c.mu.Unlock()
	for key := range forget {
		c.group.Forget(key)
	}
}

// Len returns the number of live (unexpired) entries.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	now := c.now()
	for _, e := range c.entries {
		if now.Before(e.expiresAt) {
			n++
		}
	}
	return n
}

func (c *ResultCache) lookup(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// register marks a fetch for key as underway and snapshots the epochs the
// eventual store must still match.
func (c *ResultCache) register(key string) (uint64, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight[key]++
	return c.globalEpoch, c.epochs[key]
}

// release drops the in-flight marker. The last caller out also drops the
// key's epoch entry, so the bookkeeping maps stay bounded by concurrent
// fetches rather than growing with cleared-key cardinality.
func (c *ResultCache) release(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight[key]--
	if c.inflight[key] <= 0 {
		delete(c.inflight, key)
		delete(c.epochs, key)
	}
}

func (c *ResultCache) store(key string, v interface{}, ttl time.Duration, globalEpoch, keyEpoch uint64) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.globalEpoch != globalEpoch || c.epochs[key] != keyEpoch {
		// Key was cleared while the fetch was in flight.
		return
	}
	c.entries[key] = entry{value: v, expiresAt: c.now().Add(ttl)}
}
