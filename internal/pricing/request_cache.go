package pricing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/wonny/folio/internal/contracts"
)

// RequestCache memoizes lookups for the lifetime of one computation.
// Errors are memoized too, so a failing symbol is asked for once.
// ⭐ SSOT: 요청 단위 가격 캐시
type RequestCache struct {
	source contracts.PriceSource

	mu      sync.RWMutex
	entries map[string]cacheEntry
	group   singleflight.Group
}

type cacheEntry struct {
	quote  contracts.PriceQuote
	quotes []contracts.PriceQuote
	err    error
}

// NewRequestCache wraps source with a per-request memo
func NewRequestCache(source contracts.PriceSource) *RequestCache {
	return &RequestCache{
		source:  source,
		entries: make(map[string]cacheEntry),
	}
}

func (c *RequestCache) load(key string, fn func() cacheEntry) cacheEntry {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return entry
	}

	v, _, _ := c.group.Do(key, func() (interface{}, error) {
		// a flight that finished between RUnlock and Do already stored it
		c.mu.RLock()
		done, ok := c.entries[key]
		c.mu.RUnlock()
		if ok {
			return done, nil
		}

		e := fn()
		c.mu.Lock()
		c.entries[key] = e
		c.mu.Unlock()
		return e, nil
	})
	return v.(cacheEntry)
}

// Len returns the number of memoized lookups
func (c *RequestCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// GetPrice implements contracts.PriceSource
func (c *RequestCache) GetPrice(ctx context.Context, symbol string, date time.Time) (contracts.PriceQuote, error) {
	key := fmt.Sprintf("p|%s|%s", symbol, contracts.FormatDate(date))
	e := c.load(key, func() cacheEntry {
		q, err := c.source.GetPrice(ctx, symbol, date)
		return cacheEntry{quote: q, err: err}
	})
	return e.quote, e.err
}

// GetPriceRange implements contracts.PriceSource
func (c *RequestCache) GetPriceRange(ctx context.Context, symbol string, from, to time.Time) ([]contracts.PriceQuote, error) {
	key := fmt.Sprintf("r|%s|%s|%s", symbol, contracts.FormatDate(from), contracts.FormatDate(to))
	e := c.load(key, func() cacheEntry {
		qs, err := c.source.GetPriceRange(ctx, symbol, from, to)
		return cacheEntry{quotes: qs, err: err}
	})
	return e.quotes, e.err
}

// GetBenchmarkSeries implements contracts.PriceSource
func (c *RequestCache) GetBenchmarkSeries(ctx context.Context, from, to time.Time) ([]contracts.PriceQuote, error) {
	key := fmt.Sprintf("b|%s|%s", contracts.FormatDate(from), contracts.FormatDate(to))
	e := c.load(key, func() cacheEntry {
		qs, err := c.source.GetBenchmarkSeries(ctx, from, to)
		return cacheEntry{quotes: qs, err: err}
	})
	return e.quotes, e.err
}
