package source

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/propdash/internal/document"
)

type countingSource struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
	err     error
}

func (s *countingSource) Fetch(ctx context.Context, q Query) (document.Value, error) {
	n := s.calls.Add(1)
	if s.started != nil && n == 1 {
		close(s.started)
	}
	if s.release != nil {
		<-s.release
	}
	if s.err != nil {
		return document.Value{}, s.err
	}
	return document.NewObject(document.M("query", document.StringValue(q.Text))), nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestCacheHit(t *testing.T) {
	src := &countingSource{}
	cache := NewCache(src)

	first, err := cache.Fetch(context.Background(), Query{Text: "1 George St"})
	require.NoError(t, err)
	second, err := cache.Fetch(context.Background(), Query{Text: " 1 george st"})
	require.NoError(t, err)

	assert.Equal(t, int32(1), src.calls.Load())
	assert.True(t, first.Equal(second))
	assert.Equal(t, 1, cache.Len())
}

func TestCacheDeduplicatesInFlight(t *testing.T) {
	src := &countingSource{started: make(chan struct{}), release: make(chan struct{})}
	cache := NewCache(src)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.Fetch(context.Background(), Query{Text: "x"})
			errs <- err
		}()
	}
	<-src.started
	close(src.release)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestCacheDoesNotStoreErrors(t *testing.T) {
	boom := errors.New("boom")
	src := &countingSource{err: boom}
	cache := NewCache(src)

	_, err := cache.Fetch(context.Background(), Query{Text: "x"})
	assert.ErrorIs(t, err, boom)
	_, err = cache.Fetch(context.Background(), Query{Text: "x"})
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, int32(2), src.calls.Load())
	assert.Zero(t, cache.Len())
}

func TestCacheExpires(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	src := &countingSource{}
	cache := NewCache(src, WithTTL(time.Minute), WithClock(clock.Now))

	_, err := cache.Fetch(context.Background(), Query{Text: "x"})
	require.NoError(t, err)
	clock.Advance(59 * time.Second)
	_, err = cache.Fetch(context.Background(), Query{Text: "x"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), src.calls.Load())

	clock.Advance(time.Second)
	_, err = cache.Fetch(context.Background(), Query{Text: "x"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	src := &countingSource{}
	cache := NewCache(src, WithCapacity(2))
	ctx := context.Background()

	for _, text := range []string{"a", "b", "a", "c"} {
		_, err := cache.Fetch(ctx, Query{Text: text})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, cache.Len())
	assert.Equal(t, int32(3), src.calls.Load())

	// "b" was least recently used when "c" arrived
	_, err := cache.Fetch(ctx, Query{Text: "a"})
	require.NoError(t, err)
	assert.Equal(t, int32(3), src.calls.Load())
	_, err = cache.Fetch(ctx, Query{Text: "b"})
	require.NoError(t, err)
	assert.Equal(t, int32(4), src.calls.Load())
}

func TestCacheCallerCancel(t *testing.T) {
	src := &countingSource{started: make(chan struct{}), release: make(chan struct{})}
	cache := NewCache(src)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := cache.Fetch(ctx, Query{Text: "x"})
		done <- err
	}()
	<-src.started
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	close(src.release)
	doc, err := cache.Fetch(context.Background(), Query{Text: "x"})
	require.NoError(t, err)
	assert.True(t, doc.IsObject())
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestCacheValidatesQuery(t *testing.T) {
	src := &countingSource{}
	_, err := NewCache(src).Fetch(context.Background(), Query{})
	assert.ErrorIs(t, err, ErrEmptyQuery)
	assert.Zero(t, src.calls.Load())
}

func TestCachePurge(t *testing.T) {
	src := &countingSource{}
	cache := NewCache(src)
	_, err := cache.Fetch(context.Background(), Query{Text: "x"})
	require.NoError(t, err)
	cache.Purge()
	assert.Zero(t, cache.Len())
}
