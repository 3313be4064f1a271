package pricing

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/wonny/folio/internal/contracts"
)

// MemorySource serves closes held in memory (CSV files, tests, offline runs)
type MemorySource struct {
	mu        sync.RWMutex
	quotes    map[string][]contracts.PriceQuote
	failures  map[string]error
	benchmark string
}

// NewMemorySource creates an empty in-memory source
func NewMemorySource(benchmarkSymbol string) *MemorySource {
	return &MemorySource{
		quotes:    make(map[string][]contracts.PriceQuote),
		failures:  make(map[string]error),
		benchmark: benchmarkSymbol,
	}
}

// Add inserts closes, replacing any existing close on the same date
func (m *MemorySource) Add(quotes ...contracts.PriceQuote) {
	m.mu.Lock()
	defer m.mu.Unlock()

	touched := make(map[string]struct{})
	for _, q := range quotes {
		q.Date = contracts.Day(q.Date)
		m.quotes[q.Symbol] = append(m.quotes[q.Symbol], q)
		touched[q.Symbol] = struct{}{}
	}
	for sym := range touched {
		m.quotes[sym] = sortQuotes(m.quotes[sym])
	}
}

// AddSeries adds consecutive closes for symbol starting at start, one per calendar day
func (m *MemorySource) AddSeries(symbol string, start time.Time, closes ...float64) {
	quotes := make([]contracts.PriceQuote, len(closes))
	for i, c := range closes {
		quotes[i] = contracts.PriceQuote{Symbol: symbol, Date: start.AddDate(0, 0, i), Close: c}
	}
	m.Add(quotes...)
}

// Fail makes every lookup for symbol return err
func (m *MemorySource) Fail(symbol string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[symbol] = err
}

// Symbols returns the number of symbols held
func (m *MemorySource) Symbols() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.quotes)
}

func (m *MemorySource) lookup(symbol string) ([]contracts.PriceQuote, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err, ok := m.failures[symbol]; ok {
		return nil, err
	}
	quotes, ok := m.quotes[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", contracts.ErrDataUnavailable, symbol)
	}
	return quotes, nil
}

// GetPrice returns the close on date or the most recent one before it
func (m *MemorySource) GetPrice(ctx context.Context, symbol string, date time.Time) (contracts.PriceQuote, error) {
	quotes, err := m.lookup(symbol)
	if err != nil {
		return contracts.PriceQuote{}, err
	}
	idx := onOrBefore(quotes, contracts.Day(date))
	if idx < 0 {
		return contracts.PriceQuote{}, fmt.Errorf("%w: %s on or before %s", contracts.ErrPriceNotFound, symbol, contracts.FormatDate(date))
	}
	return quotes[idx], nil
}

// GetPriceRange returns closes with from <= date <= to
func (m *MemorySource) GetPriceRange(ctx context.Context, symbol string, from, to time.Time) ([]contracts.PriceQuote, error) {
	quotes, err := m.lookup(symbol)
	if err != nil {
		return nil, err
	}
	return between(quotes, contracts.Day(from), contracts.Day(to)), nil
}

// GetBenchmarkSeries returns the benchmark closes for the range
func (m *MemorySource) GetBenchmarkSeries(ctx context.Context, from, to time.Time) ([]contracts.PriceQuote, error) {
	if m.benchmark == "" {
		return nil, contracts.ErrBenchmarkUnavailable
	}
	quotes, err := m.GetPriceRange(ctx, m.benchmark, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrBenchmarkUnavailable, err)
	}
	return quotes, nil
}

// LoadCSV reads "symbol,date,close" rows into a MemorySource.
// A header row is skipped when its close column is not numeric.
func LoadCSV(r io.Reader, benchmarkSymbol string) (*MemorySource, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 3
	reader.TrimLeadingSpace = true

	src := NewMemorySource(benchmarkSymbol)
	var quotes []contracts.PriceQuote

	for line := 1; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		closePrice, err := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		if err != nil {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("line %d: bad close %q", line, rec[2])
		}
		date, err := contracts.ParseDate(strings.TrimSpace(rec[1]))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		quotes = append(quotes, contracts.PriceQuote{
			Symbol: strings.TrimSpace(rec[0]),
			Date:   date,
			Close:  closePrice,
		})
	}

	src.Add(quotes...)
	return src, nil
}
