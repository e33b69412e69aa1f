package dataset

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	mu      sync.Mutex
	lookups map[bool]int
	loads   int
}

func (o *recordingObserver) CacheLookup(_ context.Context, _ string, hit bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.lookups == nil {
		o.lookups = make(map[bool]int)
	}
	o.lookups[hit]++
}

func (o *recordingObserver) DatasetLoaded(_ context.Context, _ string, _ time.Duration, _ error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.loads++
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func countingLoader(calls *atomic.Int32) func(string) (*RawTable, error) {
	return func(path string) (*RawTable, error) {
		calls.Add(1)
		return ReadCSV("sales", path)
	}
}

func TestCache_HitOnUnchangedMtime(t *testing.T) {
	ctx := context.Background()
	path := writeTemp(t, "a\n1\n")
	observer := &recordingObserver{}
	cache := NewCache(observer)
	var calls atomic.Int32

	first, err := Fetch(ctx, cache, "sales", path, countingLoader(&calls))
	require.NoError(t, err)
	second, err := Fetch(ctx, cache, "sales", path, countingLoader(&calls))
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), calls.Load())

	stats := cache.Stats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRatio, 1e-9)

	assert.Equal(t, 1, observer.lookups[true])
	assert.Equal(t, 1, observer.lookups[false])
	assert.Equal(t, 1, observer.loads)
}

func TestCache_ReloadsAfterMtimeChange(t *testing.T) {
	ctx := context.Background()
	path := writeTemp(t, "a\n1\n")
	cache := NewCache(nil)
	var calls atomic.Int32

	first, err := Fetch(ctx, cache, "sales", path, countingLoader(&calls))
	require.NoError(t, err)
	assert.Equal(t, 1, first.Len())

	require.NoError(t, os.WriteFile(path, []byte("a\n1\n2\n"), 0644))
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, future, future))

	second, err := Fetch(ctx, cache, "sales", path, countingLoader(&calls))
	require.NoError(t, err)

	assert.Equal(t, 2, second.Len())
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 1, cache.Stats().Entries)
}

func TestCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	path := writeTemp(t, "a\n1\n")
	cache := NewCache(nil)
	var calls atomic.Int32

	_, err := Fetch(ctx, cache, "sales", path, countingLoader(&calls))
	require.NoError(t, err)

	assert.True(t, cache.Invalidate(path))
	assert.False(t, cache.Invalidate(path), "already removed")

	_, err = Fetch(ctx, cache, "sales", path, countingLoader(&calls))
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())

	assert.Equal(t, 1, cache.InvalidateAll())
	assert.Equal(t, 0, cache.Stats().Entries)

	_, err = Fetch(ctx, cache, "sales", path, countingLoader(&calls))
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestCache_InvalidateDuringLoad(t *testing.T) {
	tests := []struct {
		name       string
		invalidate func(c *Cache, path string)
	}{
		{"single path", func(c *Cache, path string) { c.Invalidate(path) }},
		{"everything", func(c *Cache, _ string) { c.InvalidateAll() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			path := writeTemp(t, "a\n1\n")
			cache := NewCache(nil)
			var calls atomic.Int32

			started := make(chan struct{})
			release := make(chan struct{})
			blocking := func(p string) (*RawTable, error) {
				if calls.Add(1) == 1 {
					close(started)
					<-release
				}
				return ReadCSV("sales", p)
			}

			done := make(chan error, 1)
			go func() {
				_, err := Fetch(ctx, cache, "sales", path, blocking)
				done <- err
			}()

			<-started
			tt.invalidate(cache, path)
			close(release)
			require.NoError(t, <-done)

			assert.Equal(t, 0, cache.Stats().Entries, "stale load must not repopulate")

			_, err := Fetch(ctx, cache, "sales", path, blocking)
			require.NoError(t, err)
			assert.Equal(t, int32(2), calls.Load())
			assert.Equal(t, 1, cache.Stats().Entries)
		})
	}
}

func TestCache_MissingFile(t *testing.T) {
	cache := NewCache(nil)
	var calls atomic.Int32

	_, err := Fetch(context.Background(), cache, "sales", filepath.Join(t.TempDir(), "nope.csv"), countingLoader(&calls))

	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Equal(t, int32(0), calls.Load())
}

func TestCache_LoadErrorIsNotCached(t *testing.T) {
	ctx := context.Background()
	path := writeTemp(t, "")
	cache := NewCache(nil)
	var calls atomic.Int32

	_, err := Fetch(ctx, cache, "sales", path, countingLoader(&calls))
	require.Error(t, err)
	_, err = Fetch(ctx, cache, "sales", path, countingLoader(&calls))
	require.Error(t, err)

	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 0, cache.Stats().Entries)
}

func TestCache_ConcurrentFetch(t *testing.T) {
	ctx := context.Background()
	path := writeTemp(t, "a\n1\n")
	cache := NewCache(nil)
	var calls atomic.Int32

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			table, err := Fetch(ctx, cache, "sales", path, countingLoader(&calls))
			assert.NoError(t, err)
			assert.Equal(t, 1, table.Len())
		}()
	}
	wg.Wait()

	stats := cache.Stats()
	assert.Equal(t, int64(16), stats.Hits+stats.Misses)
	assert.Equal(t, 1, stats.Entries)
}
