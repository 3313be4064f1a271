package jobs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/pkg/config"
	"github.com/wonny/folio/pkg/logger"
)

// upstreamSource tags rows written by this job
const upstreamSource = "yahoo"

// QuoteSaver persists closes (pricing.StoreSource)
type QuoteSaver interface {
	SaveQuotes(ctx context.Context, source string, quotes []contracts.PriceQuote) (int, error)
}

// RangeFetcher loads closes for a date range (pricing.YahooSource)
type RangeFetcher interface {
	GetPriceRange(ctx context.Context, symbol string, from, to time.Time) ([]contracts.PriceQuote, error)
}

// SyncResult summarizes one sync run
type SyncResult struct {
	Symbols int
	Saved   int
	Failed  map[string]error
}

// PriceSyncJob copies recent closes from the upstream source into the price store
// ⭐ SSOT: 가격 동기화 스케줄은 이 Job에서만
type PriceSyncJob struct {
	fetcher  RangeFetcher
	store    QuoteSaver
	symbols  []string
	lookback int
	schedule string
	workers  int
	logger   *logger.Logger
	now      func() time.Time
}

// NewPriceSyncJob creates a sync job for cfg.Sync.Symbols plus the benchmark
func NewPriceSyncJob(fetcher RangeFetcher, store QuoteSaver, cfg *config.Config, log *logger.Logger) *PriceSyncJob {
	seen := make(map[string]bool)
	var symbols []string
	for _, sym := range append(append([]string{}, cfg.Sync.Symbols...), cfg.Pricing.BenchmarkSymbol) {
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	lookback := cfg.Sync.LookbackDays
	if lookback <= 0 {
		lookback = 10
	}

	return &PriceSyncJob{
		fetcher:  fetcher,
		store:    store,
		symbols:  symbols,
		lookback: lookback,
		schedule: cfg.Sync.Schedule,
		workers:  4,
		logger:   log.Component("price_sync"),
		now:      time.Now,
	}
}

// Name returns the job name
func (j *PriceSyncJob) Name() string {
	return "price_sync"
}

// Schedule returns the cron schedule (with seconds)
func (j *PriceSyncJob) Schedule() string {
	return j.schedule
}

// Symbols returns the synced symbols
func (j *PriceSyncJob) Symbols() []string {
	return j.symbols
}

// Run executes one sync. It fails only when every symbol failed.
func (j *PriceSyncJob) Run(ctx context.Context) error {
	res, err := j.Sync(ctx)
	if err != nil {
		return err
	}
	if res.Symbols > 0 && len(res.Failed) == res.Symbols {
		errs := make([]error, 0, len(res.Failed))
		for sym, e := range res.Failed {
			errs = append(errs, fmt.Errorf("%s: %w", sym, e))
		}
		return fmt.Errorf("price sync failed for all %d symbols: %w", res.Symbols, errors.Join(errs...))
	}
	return nil
}

// Sync fetches the lookback window for each symbol and upserts it
func (j *PriceSyncJob) Sync(ctx context.Context) (SyncResult, error) {
	to := contracts.Day(j.now())
	from := to.AddDate(0, 0, -j.lookback)

	j.logger.WithFields(map[string]interface{}{
		"symbols": len(j.symbols),
		"from":    contracts.FormatDate(from),
		"to":      contracts.FormatDate(to),
	}).Info("Starting price sync")

	var mu sync.Mutex
	res := SyncResult{Symbols: len(j.symbols), Failed: make(map[string]error)}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(j.workers)
	for _, sym := range j.symbols {
		g.Go(func() error {
			n, err := j.syncSymbol(gctx, sym, from, to)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Failed[sym] = err
				j.logger.WithError(err).WithField("symbol", sym).Warn("Price sync failed")
				return nil
			}
			res.Saved += n
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return res, err
	}

	j.logger.WithFields(map[string]interface{}{
		"saved":  res.Saved,
		"failed": len(res.Failed),
	}).Info("Price sync completed")

	return res, nil
}

func (j *PriceSyncJob) syncSymbol(ctx context.Context, symbol string, from, to time.Time) (int, error) {
	quotes, err := j.fetcher.GetPriceRange(ctx, symbol, from, to)
	if err != nil {
		return 0, fmt.Errorf("fetch: %w", err)
	}
	if len(quotes) == 0 {
		return 0, nil
	}
	n, err := j.store.SaveQuotes(ctx, upstreamSource, quotes)
	if err != nil {
		return 0, fmt.Errorf("save: %w", err)
	}
	return n, nil
}
