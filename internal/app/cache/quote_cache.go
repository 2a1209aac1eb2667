// Package cache provides the in-memory, time-bounded quote memoization
// used by the quote service. Single-process, cleared on restart, no
// eviction beyond lazy time expiry — unbounded growth is an accepted
// limitation at this scale.
package cache

import (
	"strings"
	"sync"
	"time"

	"cross_swap/internal/domain/entity"
)

// DefaultDuration is the quote memoization window when none is configured.
const DefaultDuration = 30 * time.Second

type cacheEntry struct {
	quote     entity.Quote
	fetchedAt time.Time
}

// QuoteCache implements port.QuoteCache over a plain map. Entries expire
// lazily: Get treats an entry as absent once now - fetchedAt >= duration.
type QuoteCache struct {
	mu       sync.RWMutex
	entries  map[string]cacheEntry
	duration time.Duration
	now      func() time.Time
}

// New creates a QuoteCache with the given memoization window. A
// non-positive duration falls back to DefaultDuration.
func New(duration time.Duration) *QuoteCache {
	return NewWithClock(duration, time.Now)
}

// NewWithClock creates a QuoteCache with an explicit clock. Tests use it
// to exercise expiry boundaries deterministically.
func NewWithClock(duration time.Duration, now func() time.Time) *QuoteCache {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &QuoteCache{
		entries:  make(map[string]cacheEntry),
		duration: duration,
		now:      now,
	}
}

// Get returns the cached quote for key if one exists and is still fresh.
func (c *QuoteCache) Get(key string) (entity.Quote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok {
		return entity.Quote{}, false
	}
	if c.now().Sub(entry.fetchedAt) >= c.duration {
		return entity.Quote{}, false
	}
	return entry.quote, true
}

// Put stores quote under key, overwriting any previous entry
// (last-writer-wins).
func (c *QuoteCache) Put(key string, quote entity.Quote) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{quote: quote, fetchedAt: c.now()}
}

// Key builds the composite cache key. Amounts are matched verbatim: "1"
// and "1.0" are distinct keys. Documented limitation, not normalized away.
func Key(fromSymbol, toSymbol, amount string, sourceChain, targetChain entity.ChainType) string {
	return strings.Join([]string{fromSymbol, toSymbol, amount, sourceChain.String(), targetChain.String()}, ":")
}
