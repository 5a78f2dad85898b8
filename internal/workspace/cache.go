package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// FetchFunc retrieves the upstream collection for a cache key.
type FetchFunc[T any] func(ctx context.Context, key string) ([]T, error)

// Snapshot is the last known value of a cache plus its metadata. Err holds
// the most recent load failure; Items keeps serving the last good data even
// while Err is set.
type Snapshot[T any] struct {
	Key      string
	Items    []T
	Err      error
	Loading  bool
	Stale    bool
	LoadedAt time.Time
}

// Cache holds the latest fetched snapshot for one resource kind, keyed by
// its dependency (the channel id for threads, the thread id for messages).
// A key change replaces the snapshot; within a key, loads are deduplicated
// and a superseded fetch never overwrites a newer one.
type Cache[T any] struct {
	mu    sync.Mutex
	name  string
	fetch FetchFunc[T]
	log   *slog.Logger

	key      string
	items    []T
	hasItems bool
	err      error
	stale    bool
	loading  bool
	inflight chan struct{}
	version  uint64
	loadedAt time.Time
}

// NewCache builds a cache around a fetch function.
func NewCache[T any](name string, fetch FetchFunc[T], log *slog.Logger) *Cache[T] {
	if log == nil {
		log = slog.Default()
	}
	return &Cache[T]{name: name, fetch: fetch, log: log}
}

// Get returns a copy of the current snapshot.
func (c *Cache[T]) Get() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]T, len(c.items))
	copy(items, c.items)
	return Snapshot[T]{
		Key:      c.key,
		Items:    items,
		Err:      c.err,
		Loading:  c.loading,
		Stale:    c.stale,
		LoadedAt: c.loadedAt,
	}
}

// Load fetches the collection for key and commits it as the new snapshot.
//
// If a load for the same key is already in flight, the caller waits for that
// result instead of issuing a second request. A fresh, non-stale snapshot
// for the same key is served as-is. When the fetch fails, the previous items
// are preserved and the error is recorded alongside them. A result whose
// fetch was superseded by a later Load is discarded at commit time.
func (c *Cache[T]) Load(ctx context.Context, key string) error {
	c.mu.Lock()
	if c.loading && c.key == key {
		ch := c.inflight
		c.mu.Unlock()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ch:
		}
		return c.currentErr(key)
	}
	if !c.loading && c.key == key && c.hasItems && !c.stale && c.err == nil {
		c.mu.Unlock()
		return nil
	}
	if c.key != key {
		// A new dependency key invalidates the old collection outright;
		// threads of another channel are not stale data, they are the
		// wrong data.
		c.items = nil
		c.hasItems = false
		c.err = nil
		c.key = key
	}
	c.version++
	version := c.version
	ch := make(chan struct{})
	c.inflight = ch
	c.loading = true
	c.mu.Unlock()

	items, err := c.fetch(ctx, key)

	c.mu.Lock()
	if c.version == version {
		if err != nil {
			c.err = fmt.Errorf("%w: %s: %w", ErrLoad, c.name, err)
			c.log.Debug("cache load failed", "cache", c.name, "key", key, "err", err)
		} else {
			c.items = items
			c.hasItems = true
			c.err = nil
			c.stale = false
			c.loadedAt = time.Now()
		}
		c.loading = false
	}
	if c.inflight == ch {
		c.inflight = nil
	}
	loadErr := c.currentErrLocked(key)
	c.mu.Unlock()
	close(ch)
	return loadErr
}

// Invalidate marks the snapshot for key as needing refresh without clearing
// it, so the current items keep rendering until fresh ones arrive.
func (c *Cache[T]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.key == key {
		c.stale = true
	}
}

// Clear drops the snapshot entirely. Used when the dependency selection is
// cleared rather than switched.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version++
	c.key = ""
	c.items = nil
	c.hasItems = false
	c.err = nil
	c.stale = false
	c.loading = false
	c.inflight = nil
}

func (c *Cache[T]) currentErr(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentErrLocked(key)
}

func (c *Cache[T]) currentErrLocked(key string) error {
	if c.key != key {
		return nil
	}
	return c.err
}
