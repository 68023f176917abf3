package openmeteo

import (
	"context"
	"sync"

	"github.com/couchcryptid/mine-ops-etl/internal/domain"
	"github.com/couchcryptid/mine-ops-etl/internal/observability"
)

// CachedSource wraps a ClimateSource with an in-memory LRU cache keyed by
// date range. Scheduled runs over the same staging window reuse the archive
// response instead of refetching it.
type CachedSource struct {
	inner   domain.ClimateSource
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedSource creates a cache decorator around a climate source.
func NewCachedSource(inner domain.ClimateSource, maxEntries int, metrics *observability.Metrics) *CachedSource {
	return &CachedSource{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedSource) FetchDaily(ctx context.Context, r domain.DateRange) (domain.ClimateSeries, error) {
	key := r.Start.Format(domain.DateLayout) + "|" + r.End.Format(domain.DateLayout)
	if series, ok := c.cache.get(key); ok {
		c.metrics.ClimateCache.WithLabelValues("hit").Inc()
		return series, nil
	}
	c.metrics.ClimateCache.WithLabelValues("miss").Inc()

	series, err := c.inner.FetchDaily(ctx, r)
	if err != nil {
		return series, err
	}
	// Only cache non-empty series so a range the archive has not published yet can be retried.
	if !series.Empty() {
		c.cache.put(key, series)
	}
	return series, nil
}

// lruCache is a simple thread-safe LRU cache of climate series.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value domain.ClimateSeries
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (domain.ClimateSeries, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.ClimateSeries{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value domain.ClimateSeries) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
