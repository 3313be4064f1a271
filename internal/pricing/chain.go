package pricing

import (
	"context"
	"errors"
	"time"

	"github.com/wonny/folio/internal/contracts"
)

// maxQuoteGapDays is the longest run of calendar days without a close that still
// counts as full coverage (long weekend + holiday)
const maxQuoteGapDays = 5

// ChainSource asks each source in order and returns the first usable answer.
// A range answer must cover [from, to] without holes; a partial answer is merged
// with the next source's, earlier sources winning per date.
type ChainSource struct {
	sources []contracts.PriceSource
}

// NewChainSource creates a fallback chain
func NewChainSource(sources ...contracts.PriceSource) *ChainSource {
	return &ChainSource{sources: sources}
}

// GetPrice implements contracts.PriceSource
func (c *ChainSource) GetPrice(ctx context.Context, symbol string, date time.Time) (contracts.PriceQuote, error) {
	var errs []error
	for _, src := range c.sources {
		q, err := src.GetPrice(ctx, symbol, date)
		if err == nil {
			return q, nil
		}
		if ctx.Err() != nil {
			return contracts.PriceQuote{}, ctx.Err()
		}
		errs = append(errs, err)
	}
	return contracts.PriceQuote{}, chainError(errs, contracts.ErrPriceNotFound)
}

// GetPriceRange implements contracts.PriceSource
func (c *ChainSource) GetPriceRange(ctx context.Context, symbol string, from, to time.Time) ([]contracts.PriceQuote, error) {
	return c.mergeRange(ctx, from, to, contracts.ErrDataUnavailable, func(src contracts.PriceSource) ([]contracts.PriceQuote, error) {
		return src.GetPriceRange(ctx, symbol, from, to)
	})
}

// GetBenchmarkSeries implements contracts.PriceSource
func (c *ChainSource) GetBenchmarkSeries(ctx context.Context, from, to time.Time) ([]contracts.PriceQuote, error) {
	quotes, err := c.mergeRange(ctx, from, to, contracts.ErrBenchmarkUnavailable, func(src contracts.PriceSource) ([]contracts.PriceQuote, error) {
		return src.GetBenchmarkSeries(ctx, from, to)
	})
	if err == nil && len(quotes) == 0 {
		return nil, contracts.ErrBenchmarkUnavailable
	}
	return quotes, err
}

// mergeRange walks the chain until the merged quotes cover [from, to].
// Returns an error only when every source failed.
func (c *ChainSource) mergeRange(ctx context.Context, from, to time.Time, fallback error, fetch func(contracts.PriceSource) ([]contracts.PriceQuote, error)) ([]contracts.PriceQuote, error) {
	var errs []error
	answered := false
	byDate := make(map[time.Time]contracts.PriceQuote)

	for _, src := range c.sources {
		quotes, err := fetch(src)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			errs = append(errs, err)
			continue
		}

		answered = true
		for _, q := range quotes {
			q.Date = contracts.Day(q.Date)
			if _, taken := byDate[q.Date]; !taken {
				byDate[q.Date] = q
			}
		}
		if covers(byDate, from, to) {
			break
		}
	}

	if !answered {
		return nil, chainError(errs, fallback)
	}

	merged := make([]contracts.PriceQuote, 0, len(byDate))
	for _, q := range byDate {
		merged = append(merged, q)
	}
	return sortQuotes(merged), nil
}

// covers reports whether no stretch of more than maxQuoteGapDays in [from, to]
// lacks a close, counting the edges of the range
func covers(byDate map[time.Time]contracts.PriceQuote, from, to time.Time) bool {
	if len(byDate) == 0 {
		return false
	}
	gap := 0
	for day := contracts.Day(from); !day.After(to); day = day.AddDate(0, 0, 1) {
		if _, ok := byDate[day]; ok {
			gap = 0
			continue
		}
		gap++
		if gap > maxQuoteGapDays {
			return false
		}
	}
	return true
}

func chainError(errs []error, fallback error) error {
	if len(errs) == 0 {
		return fallback
	}
	return errors.Join(errs...)
}
