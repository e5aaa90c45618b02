package backend

import (
	"context"
	"sync"
	"time"
)

// Cache memoizes fetch results by key. Each entry carries an expiry;
// lookups past the expiry refetch. Concurrent lookups for the same key
// share one in-flight fetch, so identical requests are deduplicated
// instead of racing. The cache is owned by the datasource; nothing here
// is package-global.
type Cache struct {
	ttl     time.Duration
	now     func() time.Time
	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	ready  chan struct{}
	value  any
	err    error
	expiry time.Time
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]*cacheEntry),
	}
}

// Get returns the cached value for key, or runs fetch to populate it.
// Callers arriving while a fetch is in flight wait on the same handle;
// the entry's TTL starts when the fetch completes. Failed fetches are
// not cached.
func (c *Cache) Get(ctx context.Context, key string, fetch func(context.Context) (any, error)) (any, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		select {
		case <-e.ready:
			if e.err == nil && c.now().Before(e.expiry) {
				c.mu.Unlock()
				return e.value, nil
			}
			// Expired; fall through and refetch.
		default:
			// In flight; share the handle.
			c.mu.Unlock()
			select {
			case <-e.ready:
				return e.value, e.err
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	e := &cacheEntry{ready: make(chan struct{})}
	c.entries[key] = e
	c.mu.Unlock()

	e.value, e.err = fetch(ctx)
	e.expiry = c.now().Add(c.ttl)
	close(e.ready)
	if e.err != nil {
		c.mu.Lock()
		// Only evict if a newer fetch hasn't replaced the entry.
		if c.entries[key] == e {
			delete(c.entries, key)
		}
		c.mu.Unlock()
	}
	return e.value, e.err
}

// Invalidate drops the entry for key, forcing the next Get to refetch.
// An in-flight fetch is left to finish; its waiters still receive it.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		select {
		case <-e.ready:
			delete(c.entries, key)
		default:
		}
	}
}

// cached adapts Get to a concrete payload type.
func cached[T any](ctx context.Context, c *Cache, key string, fetch func(context.Context) (T, error)) (T, error) {
	v, err := c.Get(ctx, key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
