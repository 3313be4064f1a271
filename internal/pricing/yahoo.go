package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/internal/external/yahoo"
)

// yahooLookbackDays bounds the on-or-before search for GetPrice
const yahooLookbackDays = 10

// DailyCloseFetcher is the subset of yahoo.Client used by YahooSource
type DailyCloseFetcher interface {
	FetchDailyCloses(ctx context.Context, symbol string, from, to time.Time) ([]yahoo.DailyClose, error)
}

// YahooSource serves closes straight from Yahoo Finance
type YahooSource struct {
	client    DailyCloseFetcher
	benchmark string
}

// NewYahooSource creates a Yahoo-backed price source
func NewYahooSource(client DailyCloseFetcher, benchmarkSymbol string) *YahooSource {
	return &YahooSource{client: client, benchmark: benchmarkSymbol}
}

func (s *YahooSource) fetch(ctx context.Context, symbol string, from, to time.Time) ([]contracts.PriceQuote, error) {
	closes, err := s.client.FetchDailyCloses(ctx, symbol, from, to)
	if err != nil {
		if errors.Is(err, yahoo.ErrNoData) {
			return nil, fmt.Errorf("%w: %v", contracts.ErrDataUnavailable, err)
		}
		return nil, err
	}

	quotes := make([]contracts.PriceQuote, len(closes))
	for i, dc := range closes {
		quotes[i] = contracts.PriceQuote{Symbol: symbol, Date: dc.Date, Close: dc.Close}
	}
	return sortQuotes(quotes), nil
}

// GetPrice looks back up to yahooLookbackDays for the latest close
func (s *YahooSource) GetPrice(ctx context.Context, symbol string, date time.Time) (contracts.PriceQuote, error) {
	day := contracts.Day(date)
	quotes, err := s.fetch(ctx, symbol, day.AddDate(0, 0, -yahooLookbackDays), day)
	if err != nil {
		return contracts.PriceQuote{}, err
	}
	idx := onOrBefore(quotes, day)
	if idx < 0 {
		return contracts.PriceQuote{}, fmt.Errorf("%w: %s on or before %s", contracts.ErrPriceNotFound, symbol, contracts.FormatDate(day))
	}
	return quotes[idx], nil
}

// GetPriceRange implements contracts.PriceSource
func (s *YahooSource) GetPriceRange(ctx context.Context, symbol string, from, to time.Time) ([]contracts.PriceQuote, error) {
	return s.fetch(ctx, symbol, contracts.Day(from), contracts.Day(to))
}

// GetBenchmarkSeries implements contracts.PriceSource
func (s *YahooSource) GetBenchmarkSeries(ctx context.Context, from, to time.Time) ([]contracts.PriceQuote, error) {
	if s.benchmark == "" {
		return nil, contracts.ErrBenchmarkUnavailable
	}
	quotes, err := s.GetPriceRange(ctx, s.benchmark, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrBenchmarkUnavailable, err)
	}
	return quotes, nil
}
