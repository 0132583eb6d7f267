package source

import (
	"container/list"
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/oakwood-commons/propdash/internal/document"
)

const (
	DefaultCacheCapacity = 128
	DefaultCacheTTL      = 10 * time.Minute
)

// Cache wraps a Source with an LRU of completed results. Concurrent fetches
// for the same key share one upstream call. Failed fetches are not stored.
//
// Cached documents are shared between callers and must not be mutated.
type Cache struct {
	next     Source
	capacity int
	ttl      time.Duration
	now      func() time.Time

	group singleflight.Group

	mu    sync.Mutex
	items map[string]*list.Element
	lru   *list.List
}

type cacheEntry struct {
	key     string
	doc     document.Value
	expires time.Time
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithCapacity sets the maximum number of stored documents.
func WithCapacity(n int) CacheOption {
	return func(c *Cache) { c.capacity = n }
}

// WithTTL sets how long a document stays fresh. Zero disables expiry.
func WithTTL(d time.Duration) CacheOption {
	return func(c *Cache) { c.ttl = d }
}

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) { c.now = now }
}

// NewCache wraps next.
func NewCache(next Source, opts ...CacheOption) *Cache {
	c := &Cache{
		next:     next,
		capacity: DefaultCacheCapacity,
		ttl:      DefaultCacheTTL,
		now:      time.Now,
		items:    make(map[string]*list.Element),
		lru:      list.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.capacity <= 0 {
		c.capacity = DefaultCacheCapacity
	}
	return c
}

// Fetch returns a fresh cached document or fetches it. A caller whose
// context ends stops waiting; the shared upstream call carries on for the
// others.
func (c *Cache) Fetch(ctx context.Context, q Query) (document.Value, error) {
	if err := q.Validate(); err != nil {
		return document.Value{}, err
	}
	key := q.Key()
	if doc, ok := c.get(key); ok {
		return doc, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		if doc, ok := c.get(key); ok {
			return doc, nil
		}
		doc, err := c.next.Fetch(context.WithoutCancel(ctx), q)
		if err != nil {
			return nil, err
		}
		c.set(key, doc)
		return doc, nil
	})

	select {
	case <-ctx.Done():
		return document.Value{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return document.Value{}, res.Err
		}
		return res.Val.(document.Value), nil
	}
}

// Len reports how many documents are stored, expired ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Purge drops every stored document.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element)
	c.lru.Init()
}

func (c *Cache) get(key string) (document.Value, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return document.Value{}, false
	}
	entry := elem.Value.(*cacheEntry)
	if c.ttl > 0 && !c.now().Before(entry.expires) {
		c.lru.Remove(elem)
		delete(c.items, key)
		return document.Value{}, false
	}
	c.lru.MoveToFront(elem)
	return entry.doc, true
}

func (c *Cache) set(key string, doc document.Value) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expires := c.now().Add(c.ttl)
	if elem, ok := c.items[key]; ok {
		entry := elem.Value.(*cacheEntry)
		entry.doc = doc
		entry.expires = expires
		c.lru.MoveToFront(elem)
		return
	}

	c.items[key] = c.lru.PushFront(&cacheEntry{key: key, doc: doc, expires: expires})
	if c.lru.Len() > c.capacity {
		if oldest := c.lru.Back(); oldest != nil {
			c.lru.Remove(oldest)
			delete(c.items, oldest.Value.(*cacheEntry).key)
		}
	}
}
