package contracts

import (
	"context"
	"time"
)

// PriceQuote is a daily closing price
type PriceQuote struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`
	Close  float64   `json:"close"`
}

// PriceSource provides daily closing prices
// ⭐ SSOT: 가격 조회는 이 인터페이스를 통해서만
type PriceSource interface {
	// GetPrice returns the close on date, or the most recent close before it.
	// Returns ErrPriceNotFound when no such close exists.
	GetPrice(ctx context.Context, symbol string, date time.Time) (PriceQuote, error)

	// GetPriceRange returns closes with from <= date <= to, ascending by date.
	GetPriceRange(ctx context.Context, symbol string, from, to time.Time) ([]PriceQuote, error)

	// GetBenchmarkSeries returns the configured benchmark closes for the range.
	GetBenchmarkSeries(ctx context.Context, from, to time.Time) ([]PriceQuote, error)
}
