// Package rescache memoizes successful GET responses for a fixed TTL.
package rescache

import (
	"net/http"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/xzzpig/content-rest/internal/core/errs"
	"github.com/xzzpig/content-rest/internal/core/logger"
	"github.com/xzzpig/content-rest/internal/core/metrics"
	"github.com/xzzpig/content-rest/internal/core/ports"
)

// DefaultTTL is how long a stored response is served.
const DefaultTTL = 120 * time.Second

// ErrNotCacheable is returned by Store for responses that must not be kept.
const ErrNotCacheable errs.ConstError = "response not cacheable"

// Entry is one stored response.
type Entry struct {
	Status     int
	Body       []byte
	Header     http.Header
	CapturedAt time.Time
}

// Cache maps (method, url) to a stored response. Entries are never mutated
// after Store; a newer Store for the same key replaces the pointer.
type Cache struct {
	ttl     time.Duration
	now     func() time.Time
	metrics *metrics.CacheMetrics

	mu      sync.RWMutex
	entries map[string]*Entry
}

var _ ports.ResponseStore = (*Cache)(nil)

// Option configures a Cache.
type Option func(*Cache)

// WithClock sets the time source used for ages.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithMetrics records hits, misses, stores and evictions.
func WithMetrics(m *metrics.CacheMetrics) Option {
	return func(c *Cache) { c.metrics = m }
}

// New creates an empty cache. A non-positive ttl means DefaultTTL.
func New(ttl time.Duration, opts ...Option) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]*Entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func cacheLog() *zap.Logger {
	return logger.Named("core.rescache")
}

// Key is the literal method and URL. Parameter order and case are significant.
func Key(method, url string) string {
	return method + ":" + url
}

// TTL returns the configured time to live.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Lookup returns the entry stored for (method, url) and its age. An entry
// whose age reached the TTL is evicted and reported as a miss.
func (c *Cache) Lookup(method, url string) (*Entry, time.Duration, bool) {
	key := Key(method, url)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		c.metrics.Miss()
		return nil, 0, false
	}

	age := c.now().Sub(entry.CapturedAt)
	if age >= c.ttl {
		c.mu.Lock()
		// a concurrent Store may have replaced the stale entry
		if c.entries[key] == entry {
			delete(c.entries, key)
		}
		size := len(c.entries)
		c.mu.Unlock()
		c.metrics.Evict(1, size)
		c.metrics.Miss()
		return nil, 0, false
	}

	c.metrics.Hit()
	return entry, age, true
}

// Store keeps a response to a GET request with a 2xx status whose body is
// valid JSON. Anything else is rejected with ErrNotCacheable.
func (c *Cache) Store(method, url string, status int, body []byte, header http.Header) error {
	if method != http.MethodGet || status < 200 || status >= 300 {
		return ErrNotCacheable
	}
	if !gjson.ValidBytes(body) {
		c.metrics.Failure()
		return ErrNotCacheable
	}

	entry := &Entry{
		Status:     status,
		Body:       append([]byte(nil), body...),
		Header:     header.Clone(),
		CapturedAt: c.now(),
	}

	c.mu.Lock()
	c.entries[Key(method, url)] = entry
	size := len(c.entries)
	c.mu.Unlock()
	c.metrics.Set(size)
	return nil
}

// Sweep evicts every expired entry and returns how many were removed.
func (c *Cache) Sweep() int {
	now := c.now()

	c.mu.Lock()
	removed := 0
	for key, entry := range c.entries {
		if now.Sub(entry.CapturedAt) >= c.ttl {
			delete(c.entries, key)
			removed++
		}
	}
	size := len(c.entries)
	c.mu.Unlock()

	if removed > 0 {
		c.metrics.Evict(removed, size)
		cacheLog().Debug("Swept expired responses", zap.Int("removed", removed), zap.Int("remaining", size))
	}
	return removed
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]*Entry)
	c.mu.Unlock()
	c.metrics.Resize(0)
	cacheLog().Info("Response cache cleared")
}

// Len returns the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
