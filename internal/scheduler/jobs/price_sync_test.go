package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/pkg/config"
	"github.com/wonny/folio/pkg/logger"
)

type fakeFetcher struct {
	fail map[string]error
}

func (f *fakeFetcher) GetPriceRange(ctx context.Context, symbol string, from, to time.Time) ([]contracts.PriceQuote, error) {
	if err, ok := f.fail[symbol]; ok {
		return nil, err
	}
	return []contracts.PriceQuote{
		{Symbol: symbol, Date: from, Close: 10},
		{Symbol: symbol, Date: to, Close: 11},
	}, nil
}

type fakeStore struct {
	mu     sync.Mutex
	saved  map[string]int
	source string
}

func (s *fakeStore) SaveQuotes(ctx context.Context, source string, quotes []contracts.PriceQuote) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved == nil {
		s.saved = make(map[string]int)
	}
	s.source = source
	for _, q := range quotes {
		s.saved[q.Symbol]++
	}
	return len(quotes), nil
}

func testConfig() *config.Config {
	return &config.Config{
		Pricing: config.PricingConfig{BenchmarkSymbol: "^GSPC", Source: config.SourceChain},
		Sync: config.SyncConfig{
			Schedule:     "0 30 17 * * MON-FRI",
			Symbols:      []string{"MSFT", "AAPL", "MSFT"},
			LookbackDays: 5,
		},
	}
}

func TestNewPriceSyncJob(t *testing.T) {
	job := NewPriceSyncJob(&fakeFetcher{}, &fakeStore{}, testConfig(), logger.Nop())

	assert.Equal(t, "price_sync", job.Name())
	assert.Equal(t, "0 30 17 * * MON-FRI", job.Schedule())
	assert.Equal(t, []string{"AAPL", "MSFT", "^GSPC"}, job.Symbols())
}

func TestPriceSyncJob_Sync(t *testing.T) {
	store := &fakeStore{}
	fetcher := &fakeFetcher{fail: map[string]error{"MSFT": errors.New("429")}}
	job := NewPriceSyncJob(fetcher, store, testConfig(), logger.Nop())
	job.now = func() time.Time { return time.Date(2024, 1, 10, 18, 0, 0, 0, time.UTC) }

	res, err := job.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Symbols)
	assert.Equal(t, 4, res.Saved)
	require.Contains(t, res.Failed, "MSFT")

	assert.Equal(t, map[string]int{"AAPL": 2, "^GSPC": 2}, store.saved)
	assert.Equal(t, upstreamSource, store.source)

	// partial failure is not a job failure
	assert.NoError(t, job.Run(context.Background()))
}

func TestPriceSyncJob_RunFailsWhenAllFail(t *testing.T) {
	boom := errors.New("down")
	fetcher := &fakeFetcher{fail: map[string]error{"AAPL": boom, "MSFT": boom, "^GSPC": boom}}
	job := NewPriceSyncJob(fetcher, &fakeStore{}, testConfig(), logger.Nop())

	err := job.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
}
