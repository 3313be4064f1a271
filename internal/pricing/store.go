package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/folio/internal/contracts"
)

// StoreSource serves closes from data.daily_prices
// ⭐ SSOT: 가격 저장소 SQL은 여기서만
type StoreSource struct {
	pool      *pgxpool.Pool
	benchmark string
}

// NewStoreSource creates a PostgreSQL-backed price source
func NewStoreSource(pool *pgxpool.Pool, benchmarkSymbol string) *StoreSource {
	return &StoreSource{pool: pool, benchmark: benchmarkSymbol}
}

// GetPrice returns the latest close on or before date
func (s *StoreSource) GetPrice(ctx context.Context, symbol string, date time.Time) (contracts.PriceQuote, error) {
	query := `
		SELECT symbol, trade_date, close_price::float8
		FROM data.daily_prices
		WHERE symbol = $1 AND trade_date <= $2
		ORDER BY trade_date DESC
		LIMIT 1
	`

	var q contracts.PriceQuote
	err := s.pool.QueryRow(ctx, query, symbol, contracts.Day(date)).Scan(&q.Symbol, &q.Date, &q.Close)
	if errors.Is(err, pgx.ErrNoRows) {
		return contracts.PriceQuote{}, fmt.Errorf("%w: %s on or before %s", contracts.ErrPriceNotFound, symbol, contracts.FormatDate(date))
	}
	if err != nil {
		return contracts.PriceQuote{}, fmt.Errorf("query price %s: %w", symbol, err)
	}
	q.Date = contracts.Day(q.Date)
	return q, nil
}

// GetPriceRange returns closes with from <= trade_date <= to
func (s *StoreSource) GetPriceRange(ctx context.Context, symbol string, from, to time.Time) ([]contracts.PriceQuote, error) {
	query := `
		SELECT symbol, trade_date, close_price::float8
		FROM data.daily_prices
		WHERE symbol = $1 AND trade_date BETWEEN $2 AND $3
		ORDER BY trade_date ASC
	`

	rows, err := s.pool.Query(ctx, query, symbol, contracts.Day(from), contracts.Day(to))
	if err != nil {
		return nil, fmt.Errorf("query price range %s: %w", symbol, err)
	}
	defer rows.Close()

	quotes := []contracts.PriceQuote{}
	for rows.Next() {
		var q contracts.PriceQuote
		if err := rows.Scan(&q.Symbol, &q.Date, &q.Close); err != nil {
			return nil, fmt.Errorf("scan price %s: %w", symbol, err)
		}
		q.Date = contracts.Day(q.Date)
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}

// GetBenchmarkSeries implements contracts.PriceSource
func (s *StoreSource) GetBenchmarkSeries(ctx context.Context, from, to time.Time) ([]contracts.PriceQuote, error) {
	if s.benchmark == "" {
		return nil, contracts.ErrBenchmarkUnavailable
	}
	quotes, err := s.GetPriceRange(ctx, s.benchmark, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrBenchmarkUnavailable, err)
	}
	return quotes, nil
}

// SaveQuotes upserts closes in a single batch
func (s *StoreSource) SaveQuotes(ctx context.Context, source string, quotes []contracts.PriceQuote) (int, error) {
	if len(quotes) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO data.daily_prices (symbol, trade_date, close_price, source, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (symbol, trade_date) DO UPDATE SET
			close_price = EXCLUDED.close_price,
			source = EXCLUDED.source,
			updated_at = NOW()
	`

	batch := &pgx.Batch{}
	for _, q := range quotes {
		batch.Queue(query, q.Symbol, contracts.Day(q.Date), q.Close, source)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	saved := 0
	for range quotes {
		if _, err := results.Exec(); err != nil {
			return saved, fmt.Errorf("upsert price: %w", err)
		}
		saved++
	}
	return saved, nil
}
