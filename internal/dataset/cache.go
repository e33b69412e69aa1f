package dataset

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// Observer receives cache and load events, e.g. for metrics
type Observer interface {
	CacheLookup(ctx context.Context, kind string, hit bool)
	DatasetLoaded(ctx context.Context, kind string, duration time.Duration, err error)
}

type cacheEntry struct {
	modTime time.Time
	value   any
}

// CacheStats reports cache effectiveness
type CacheStats struct {
	Entries  int     `json:"entries"`
	Hits     int64   `json:"hits"`
	Misses   int64   `json:"misses"`
	HitRatio float64 `json:"hit_ratio"`
}

// Cache memoizes parsed files keyed by (path, modification time).
// Each lookup stats the file; a changed mtime is a miss. A load that was
// in flight when its path was invalidated returns its value but does not
// populate the cache.
type Cache struct {
	mu       sync.RWMutex
	entries  map[string]cacheEntry
	gen      uint64            // bumped by InvalidateAll
	pathGen  map[string]uint64 // bumped by Invalidate
	group    singleflight.Group
	hits     atomic.Int64
	misses   atomic.Int64
	observer Observer
}

// NewCache creates an empty cache. observer may be nil.
func NewCache(observer Observer) *Cache {
	return &Cache{
		entries:  make(map[string]cacheEntry),
		pathGen:  make(map[string]uint64),
		observer: observer,
	}
}

// Fetch returns the cached value for path, calling load on a miss.
// Concurrent misses for the same path share one load.
func Fetch[T any](ctx context.Context, c *Cache, kind, path string, load func(path string) (T, error)) (T, error) {
	var zero T

	info, err := os.Stat(path)
	if err != nil {
		return zero, err
	}
	modTime := info.ModTime()

	c.mu.RLock()
	entry, ok := c.entries[path]
	gen, pathGen := c.gen, c.pathGen[path]
	c.mu.RUnlock()

	if ok && entry.modTime.Equal(modTime) {
		if v, typed := entry.value.(T); typed {
			c.hits.Add(1)
			c.notifyLookup(ctx, kind, true)
			return v, nil
		}
	}

	c.misses.Add(1)
	c.notifyLookup(ctx, kind, false)

	key := fmt.Sprintf("%s@%s#%d.%d", path, modTime, gen, pathGen)
	v, err, _ := c.group.Do(key, func() (any, error) {
		start := time.Now()
		value, loadErr := load(path)
		c.notifyLoaded(ctx, kind, time.Since(start), loadErr)
		if loadErr != nil {
			return nil, loadErr
		}

		c.mu.Lock()
		if c.gen == gen && c.pathGen[path] == pathGen {
			c.entries[path] = cacheEntry{modTime: modTime, value: value}
		}
		c.mu.Unlock()
		return value, nil
	})
	if err != nil {
		return zero, err
	}

	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("cache entry for %s has type %T", path, v)
	}
	return typed, nil
}

// Invalidate drops the entry for path and reports whether one existed
func (c *Cache) Invalidate(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.entries[path]
	delete(c.entries, path)
	c.pathGen[path]++
	return ok
}

// InvalidateAll drops every entry and returns how many were removed
func (c *Cache) InvalidateAll() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.entries)
	c.entries = make(map[string]cacheEntry)
	c.gen++
	return n
}

// Stats returns hit, miss and entry counts
func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	entries := len(c.entries)
	c.mu.RUnlock()

	hits, misses := c.hits.Load(), c.misses.Load()
	ratio := float64(0)
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}

	return CacheStats{Entries: entries, Hits: hits, Misses: misses, HitRatio: ratio}
}

func (c *Cache) notifyLookup(ctx context.Context, kind string, hit bool) {
	if c.observer != nil {
		c.observer.CacheLookup(ctx, kind, hit)
	}
}

func (c *Cache) notifyLoaded(ctx context.Context, kind string, d time.Duration, err error) {
	if c.observer != nil {
		c.observer.DatasetLoaded(ctx, kind, d, err)
	}
}
