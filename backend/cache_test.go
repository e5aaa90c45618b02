package backend

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestCacheDeduplicatesConcurrentFetches(t *testing.T) {
	c := NewCache(time.Minute)
	var calls atomic.Int32
	release := make(chan struct{})

	const waiters = 8
	var wg sync.WaitGroup
	results := make([]any, waiters)
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.Get(context.Background(), "national", func(context.Context) (any, error) {
				calls.Add(1)
				<-release
				return "payload", nil
			})
			if err != nil {
				t.Errorf("waiter %d failed: %v", i, err)
			}
			results[i] = v
		}(i)
	}
	// Give every waiter a chance to join the in-flight fetch.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("expected exactly one fetch, got %d", got)
	}
	for i, v := range results {
		if v != "payload" {
			t.Errorf("waiter %d got %v, want shared payload", i, v)
		}
	}
}

func TestCacheTTL(t *testing.T) {
	c := NewCache(time.Minute)
	now := time.Unix(0, 0)
	c.now = func() time.Time { return now }

	var calls int
	fetch := func(context.Context) (any, error) {
		calls++
		return calls, nil
	}

	v, err := c.Get(context.Background(), "summary", fetch)
	if err != nil || v != 1 {
		t.Fatalf("first get = %v, %v", v, err)
	}
	// Within the TTL the cached value is served.
	now = now.Add(30 * time.Second)
	if v, _ := c.Get(context.Background(), "summary", fetch); v != 1 {
		t.Errorf("expected cached value inside TTL, got %v", v)
	}
	// Past the TTL a lookup refetches.
	now = now.Add(2 * time.Minute)
	if v, _ := c.Get(context.Background(), "summary", fetch); v != 2 {
		t.Errorf("expected refetch after expiry, got %v", v)
	}
	if calls != 2 {
		t.Errorf("expected 2 fetches, got %d", calls)
	}
}

func TestCacheDoesNotCacheErrors(t *testing.T) {
	c := NewCache(time.Minute)
	boom := errors.New("upstream unavailable")
	calls := 0
	fetch := func(context.Context) (any, error) {
		calls++
		if calls == 1 {
			return nil, boom
		}
		return "ok", nil
	}
	if _, err := c.Get(context.Background(), "channels", fetch); !errors.Is(err, boom) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	v, err := c.Get(context.Background(), "channels", fetch)
	if err != nil || v != "ok" {
		t.Errorf("expected retry after error, got %v, %v", v, err)
	}
}

func TestCacheInvalidate(t *testing.T) {
	c := NewCache(time.Minute)
	calls := 0
	fetch := func(context.Context) (any, error) {
		calls++
		return calls, nil
	}
	c.Get(context.Background(), "curves", fetch)
	c.Invalidate("curves")
	if v, _ := c.Get(context.Background(), "curves", fetch); v != 2 {
		t.Errorf("expected refetch after invalidation, got %v", v)
	}
}

func TestCachedTyped(t *testing.T) {
	c := NewCache(time.Minute)
	v, err := cached(context.Background(), c, "typed", func(context.Context) (int, error) {
		return 42, nil
	})
	if err != nil || v != 42 {
		t.Errorf("cached returned %d, %v", v, err)
	}
}
