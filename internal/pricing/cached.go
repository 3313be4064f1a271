package pricing

import (
	"context"
	"time"

	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/pkg/logger"
	"github.com/wonny/folio/pkg/redis"
)

// CachedSource puts a redis cache in front of another source.
// Cache failures fall through to the inner source.
type CachedSource struct {
	inner     contracts.PriceSource
	cache     *redis.Cache
	ttl       time.Duration
	benchmark string
	logger    *logger.Logger
	now       func() time.Time
}

// NewCachedSource wraps inner with cross-request caching
func NewCachedSource(inner contracts.PriceSource, cache *redis.Cache, ttl time.Duration, benchmarkSymbol string, log *logger.Logger) *CachedSource {
	return &CachedSource{
		inner:     inner,
		cache:     cache,
		ttl:       ttl,
		benchmark: benchmarkSymbol,
		logger:    log.Component("price_cache"),
		now:       time.Now,
	}
}

// ttlFor shortens the TTL for ranges that reach today, whose last close may still move
func (s *CachedSource) ttlFor(to time.Time) time.Duration {
	if !contracts.Day(to).Before(contracts.Day(s.now())) {
		return redis.TTLShort
	}
	return s.ttl
}

func (s *CachedSource) get(ctx context.Context, key string, dest interface{}) bool {
	found, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Price cache read failed")
		return false
	}
	return found
}

func (s *CachedSource) set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if err := s.cache.Set(ctx, key, value, ttl); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Price cache write failed")
	}
}

// GetPrice implements contracts.PriceSource
func (s *CachedSource) GetPrice(ctx context.Context, symbol string, date time.Time) (contracts.PriceQuote, error) {
	key := redis.PriceKey(symbol, contracts.FormatDate(date))

	var q contracts.PriceQuote
	if s.get(ctx, key, &q) {
		return q, nil
	}

	q, err := s.inner.GetPrice(ctx, symbol, date)
	if err != nil {
		return q, err
	}
	s.set(ctx, key, q, s.ttlFor(date))
	return q, nil
}

// GetPriceRange implements contracts.PriceSource
func (s *CachedSource) GetPriceRange(ctx context.Context, symbol string, from, to time.Time) ([]contracts.PriceQuote, error) {
	key := redis.PriceRangeKey(symbol, contracts.FormatDate(from), contracts.FormatDate(to))

	var quotes []contracts.PriceQuote
	if s.get(ctx, key, &quotes) {
		return quotes, nil
	}

	quotes, err := s.inner.GetPriceRange(ctx, symbol, from, to)
	if err != nil {
		return nil, err
	}
	s.set(ctx, key, quotes, s.ttlFor(to))
	return quotes, nil
}

// GetBenchmarkSeries implements contracts.PriceSource
func (s *CachedSource) GetBenchmarkSeries(ctx context.Context, from, to time.Time) ([]contracts.PriceQuote, error) {
	if s.benchmark == "" {
		return s.inner.GetBenchmarkSeries(ctx, from, to)
	}
	key := redis.PriceRangeKey(s.benchmark, contracts.FormatDate(from), contracts.FormatDate(to))

	var quotes []contracts.PriceQuote
	if s.get(ctx, key, &quotes) {
		return quotes, nil
	}

	quotes, err := s.inner.GetBenchmarkSeries(ctx, from, to)
	if err != nil {
		return nil, err
	}
	s.set(ctx, key, quotes, s.ttlFor(to))
	return quotes, nil
}
