package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/cache"
)

// WHY: concurrent requests for the same key must collapse into a single
// backend fetch; the backend would otherwise be hit once per dashboard
// client on every refresh.
func TestGetOrFetchCoalescesConcurrentCallers(t *testing.T) {
	c := cache.New(4, time.Minute)

	var fetches int64
	gate := make(chan struct{})
	fetch := func(_ context.Context) (interface{}, error) {
		atomic.AddInt64(&fetches, 1)
		<-gate
		return "result", nil
	}

	const callers = 5
	var ready, done sync.WaitGroup
	ready.Add(callers)
	done.Add(callers)

	for i := 0; i < callers; i++ {
		go func() {
			defer done.Done()
			ready.Done()
			v, err := c.GetOrFetch(context.Background(), "summary", fetch, cache.Options{})
			if err != nil {
				t.Errorf("GetOrFetch failed: %v", err)
				return
			}
			if v != "result" {
				t.Errorf("Expected 'result', got %v", v)
			}
		}()
	}

	// All callers are in flight before the fetch is allowed to finish.
	ready.Wait()
	time.Sleep(50 * time.Millisecond)
	close(gate)
	done.Wait()

	if n := atomic.LoadInt64(&fetches); n != 1 {
		t.Errorf("Expected 1 fetch for %d concurrent callers, got %d", callers, n)
	}
}

func TestGetOrFetchCachesWithinTTL(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	advance := func(d time.Duration) {
		mu.Lock()
		now = now.Add(d)
		mu.Unlock()
	}

	c := cache.New(1, time.Minute).WithClock(clock)

	fetches := 0
	fetch := func(_ context.Context) (interface{}, error) {
		fetches++
		return fetches, nil
	}

	t.Run("second call within TTL hits the cache", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			v, err := c.GetOrFetch(context.Background(), "key", fetch, cache.Options{})
			if err != nil {
				t.Fatalf("GetOrFetch failed: %v", err)
			}
			if v != 1 {
				t.Errorf("Expected cached value 1, got %v", v)
			}
		}
		if fetches != 1 {
			t.Errorf("Expected 1 fetch, got %d", fetches)
		}
	})

	t.Run("expired entry is fetched again", func(t *testing.T) {
		advance(2 * time.Minute)

		v, err := c.GetOrFetch(context.Background(), "key", fetch, cache.Options{})
		if err != nil {
			t.Fatalf("GetOrFetch failed: %v", err)
		}
		if v != 2 {
			t.Errorf("Expected fresh value 2, got %v", v)
		}
	})

	t.Run("per-call TTL overrides the default", func(t *testing.T) {
		_, err := c.GetOrFetch(context.Background(), "short", fetch, cache.Options{TTL: time.Second})
		if err != nil {
			t.Fatalf("GetOrFetch failed: %v", err)
		}

		advance(2 * time.Second)

		before := fetches
		_, err = c.GetOrFetch(context.Background(), "short", fetch, cache.Options{})
		if err != nil {
			t.Fatalf("GetOrFetch failed: %v", err)
		}
		if fetches != before+1 {
			t.Errorf("Expected expired short-TTL entry to refetch")
		}
	})
}

// WHY: refresh=true on the dashboard must reach the backend even when a
// cached value is still valid, and the fresh result must replace it.
func TestGetOrFetchBypassCache(t *testing.T) {
	c := cache.New(1, time.Minute)

	fetches := 0
	fetch := func(_ context.Context) (interface{}, error) {
		fetches++
		return fetches, nil
	}

	if _, err := c.GetOrFetch(context.Background(), "key", fetch, cache.Options{}); err != nil {
		t.Fatalf("GetOrFetch failed: %v", err)
	}

	v, err := c.GetOrFetch(context.Background(), "key", fetch, cache.Options{BypassCache: true})
	if err != nil {
		t.Fatalf("GetOrFetch failed: %v", err)
	}
	if v != 2 {
		t.Errorf("Expected bypass to force a fresh fetch, got %v", v)
	}

	// The bypassed result repopulated the cache.
	v, err = c.GetOrFetch(context.Background(), "key", fetch, cache.Options{})
	if err != nil {
		t.Fatalf("GetOrFetch failed: %v", err)
	}
	if v != 2 {
		t.Errorf("Expected repopulated value 2, got %v", v)
	}
}

// WHY: a failed backend call must not be served to later callers; the next
// request retries instead of reading a cached error.
func TestGetOrFetchDoesNotCacheFailures(t *testing.T) {
	c := cache.New(1, time.Minute)

	calls := 0
	fetch := func(_ context.Context) (interface{}, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("backend down")
		}
		return "recovered", nil
	}

	if _, err := c.GetOrFetch(context.Background(), "key", fetch, cache.Options{}); err == nil {
		t.Fatal("Expected first fetch to fail")
	}

	v, err := c.GetOrFetch(context.Background(), "key", fetch, cache.Options{})
	if err != nil {
		t.Fatalf("Expected retry to succeed, got %v", err)
	}
	if v != "recovered" {
		t.Errorf("Expected 'recovered', got %v", v)
	}
}

// WHY: a rate override clears cached summaries; a fetch already in flight
// for the cleared key must not sneak its stale result back into the cache.
func TestClearDuringInFlightFetchDiscardsResult(t *testing.T) {
	c := cache.New(2, time.Minute)

	started := make(chan struct{})
	gate := make(chan struct{})
	fetch := func(_ context.Context) (interface{}, error) {
		close(started)
		<-gate
		return "stale", nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		//nolint:errcheck // Only the cache state afterwards matters here
		c.GetOrFetch(context.Background(), "key", fetch, cache.Options{})
	}()

	<-started
	c.Clear("key")
	close(gate)
	<-done

	if c.Len() != 0 {
		t.Errorf("Expected cleared key to stay out of the cache, got %d entries", c.Len())
	}
}

// WHY: after a full invalidation no caller may see pre-clear data, not even
// one arriving while a pre-clear fetch is still running. Coalescing onto
// that fetch would hand out exactly the value the clear revoked.
func TestClearAllDuringInFlightFetch(t *testing.T) {
	c := cache.New(2, time.Minute)

	var fetches int64
	started := make(chan struct{})
	gate := make(chan struct{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		//nolint:errcheck // The pre-clear caller keeps its own result; only later state matters
		c.GetOrFetch(context.Background(), "summary", func(_ context.Context) (interface{}, error) {
			atomic.AddInt64(&fetches, 1)
			close(started)
			<-gate
			return "stale", nil
		}, cache.Options{})
	}()

	<-started
	c.ClearAll()

	// A caller arriving after the clear starts its own fetch instead of
	// coalescing onto the pre-clear one.
	v, err := c.GetOrFetch(context.Background(), "summary", func(_ context.Context) (interface{}, error) {
		atomic.AddInt64(&fetches, 1)
		return "fresh", nil
	}, cache.Options{})
	if err != nil {
		t.Fatalf("GetOrFetch failed: %v", err)
	}
	if v != "fresh" {
		t.Fatalf("Expected post-clear caller to fetch fresh, got %v", v)
	}

	close(gate)
	<-done

	if n := atomic.LoadInt64(&fetches); n != 2 {
		t.Errorf("Expected 2 fetches, got %d", n)
	}

	// The stale fetch completing afterwards must not displace the fresh
	// value either.
	v, err = c.GetOrFetch(context.Background(), "summary", func(_ context.Context) (interface{}, error) {
		t.Error("Expected a cache hit, fetch ran")
		return nil, nil
	}, cache.Options{})
	if err != nil {
		t.Fatalf("GetOrFetch failed: %v", err)
	}
	if v != "fresh" {
		t.Errorf("Expected cached fresh value, got %v", v)
	}
}

func TestClearMatching(t *testing.T) {
	c := cache.New(1, time.Minute)

	fetch := func(v string) func(context.Context) (interface{}, error) {
		return func(_ context.Context) (interface{}, error) { return v, nil }
	}

	keys := []string{"daily-summary:2024-06-01", "daily-summary:2024-06-02", "rates:2024-06-01"}
	for _, key := range keys {
		if _, err := c.GetOrFetch(context.Background(), key, fetch(key), cache.Options{}); err != nil {
			t.Fatalf("GetOrFetch failed: %v", err)
		}
	}

	c.ClearMatching(func(key string) bool {
		return key == "daily-summary:2024-06-01" || key == "rates:2024-06-01"
	})

	if c.Len() != 1 {
		t.Errorf("Expected 1 surviving entry, got %d", c.Len())
	}
}
