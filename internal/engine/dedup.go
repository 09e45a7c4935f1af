package engine

import (
	"sync"
	"time"
)

// DefaultDebounce is the window within which a repeated reference is treated
// as the same utterance. Speech-to-text systems routinely emit the same
// fragment twice as partial transcripts firm up.
const DefaultDebounce = 5 * time.Second

// RecentCache remembers which references were emitted recently so that
// repeats inside the debounce window are swallowed. Safe for concurrent use.
type RecentCache struct {
	mu     sync.Mutex
	window time.Duration
	seen   map[string]time.Time
	now    func() time.Time
}

// CacheOption configures a [RecentCache].
type CacheOption func(*RecentCache)

// WithClock overrides the cache's time source. Tests use this to step
// through the debounce window without sleeping.
func WithClock(now func() time.Time) CacheOption {
	return func(c *RecentCache) {
		c.now = now
	}
}

// NewRecentCache creates a cache with the given debounce window. A zero or
// negative window falls back to [DefaultDebounce].
func NewRecentCache(window time.Duration, opts ...CacheOption) *RecentCache {
	if window <= 0 {
		window = DefaultDebounce
	}
	c := &RecentCache{
		window: window,
		seen:   make(map[string]time.Time),
		now:    time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Observe records key and reports whether it is new. A key seen within the
// debounce window returns false and does not refresh the window, so a
// reference repeated every few seconds resurfaces once per window rather
// than never.
func (c *RecentCache) Observe(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if last, ok := c.seen[key]; ok && now.Sub(last) < c.window {
		return false
	}
	c.seen[key] = now
	c.prune(now)
	return true
}

// Clear drops all remembered references.
func (c *RecentCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.seen)
}

// prune drops entries older than the window. Called with the lock held.
func (c *RecentCache) prune(now time.Time) {
	for key, last := range c.seen {
		if now.Sub(last) >= c.window {
			delete(c.seen, key)
		}
	}
}
