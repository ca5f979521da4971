package history

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"DrawdownMonitor/internal/model"
	"DrawdownMonitor/internal/source"
)

// DefaultTTL is how long a cached daily history stays usable.
const DefaultTTL = 300 * time.Second

// ErrHistoryUnavailable means the source returned no usable daily history.
var ErrHistoryUnavailable = errors.New("history: no daily data available")

type key struct {
	Ticker   string
	Adjusted bool
}

type entry struct {
	bars      []model.OHLCV
	fetchedAt time.Time
}

// Cache is a TTL-bounded, thread-safe cache of full daily price histories,
// keyed by (ticker, adjusted). Histories are treated as immutable once
// stored; expired entries are overwritten, never appended to. Two callers
// racing past an expired entry may both fetch — the second write simply wins.
type Cache struct {
	mu      sync.Mutex
	entries map[key]entry

	src source.Source
	ttl time.Duration
	now func() time.Time
}

// New creates a Cache over src. A non-positive ttl falls back to DefaultTTL.
func New(src source.Source, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		entries: make(map[key]entry),
		src:     src,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the full available daily history for the ticker, serving a live
// cached copy when one exists and fetching otherwise. An empty fetch result
// returns ErrHistoryUnavailable and nothing is cached.
func (c *Cache) Get(ticker string, adjusted bool) ([]model.OHLCV, error) {
	k := key{Ticker: ticker, Adjusted: adjusted}

	c.mu.Lock()
	if e, ok := c.entries[k]; ok && c.now().Sub(e.fetchedAt) < c.ttl {
		c.mu.Unlock()
		return e.bars, nil
	}
	c.mu.Unlock()

	bars, err := c.src.Bars(ticker, source.RangeMax, source.Interval1Day, adjusted)
	if err != nil {
		return nil, fmt.Errorf("fetch history for %s: %w", ticker, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrHistoryUnavailable, ticker)
	}

	c.mu.Lock()
	c.entries[k] = entry{bars: bars, fetchedAt: c.now()}
	c.mu.Unlock()
	return bars, nil
}

// SetClock replaces the cache's clock. Tests use this to expire entries
// deterministically.
func (c *Cache) SetClock(now func() time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}
