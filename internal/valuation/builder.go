package valuation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/pkg/logger"
)

// Status classifies how well a symbol's prices were resolved
type Status string

const (
	StatusResolved   Status = "resolved"   // 보유 기간 전체 가격 확보
	StatusPartial    Status = "partial"    // 일부 보유일 가격 없음 (0 처리)
	StatusUnresolved Status = "unresolved" // 가격 없음, 합계에서 제외
)

// SymbolStatus reports price resolution for one symbol
type SymbolStatus struct {
	Symbol      string `json:"symbol"`
	Status      Status `json:"status"`
	MissingDays int    `json:"missing_days,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// Result is a built valuation series plus what was needed to build it
type Result struct {
	Series   contracts.ValuationSeries
	Start    time.Time
	End      time.Time
	Statuses []SymbolStatus
	Flows    []contracts.CashFlow // buys after Start, in date order
	Holdings *Holdings
}

// Unresolved returns symbols that contribute nothing to the series
func (r *Result) Unresolved() []SymbolStatus {
	var out []SymbolStatus
	for _, st := range r.Statuses {
		if st.Status == StatusUnresolved {
			out = append(out, st)
		}
	}
	return out
}

// Flagged returns every symbol short of full pricing: unresolved (excluded)
// and partial (zero on held days without a quote yet)
func (r *Result) Flagged() []SymbolStatus {
	var out []SymbolStatus
	for _, st := range r.Statuses {
		if st.Status != StatusResolved {
			out = append(out, st)
		}
	}
	return out
}

// Excluded reports whether symbol was left out of totals entirely
func (r *Result) Excluded(symbol string) bool {
	for _, st := range r.Statuses {
		if st.Symbol == symbol {
			return st.Status == StatusUnresolved
		}
	}
	return false
}

// Builder turns transactions into a daily valuation series
// ⭐ SSOT: 평가 시계열 생성은 여기서만
type Builder struct {
	source  contracts.PriceSource
	logger  *logger.Logger
	workers int
	now     func() time.Time
}

// NewBuilder creates a builder. workers bounds concurrent symbol fetches.
func NewBuilder(source contracts.PriceSource, log *logger.Logger, workers int, now func() time.Time) *Builder {
	if workers <= 0 {
		workers = 1
	}
	if now == nil {
		now = time.Now
	}
	return &Builder{
		source:  source,
		logger:  log.Component("valuation"),
		workers: workers,
		now:     now,
	}
}

// EffectiveRange resolves [max(start, earliest buy), min(end, today)]
func EffectiveRange(txs []contracts.Transaction, start, end *time.Time, now time.Time) (time.Time, time.Time, error) {
	from := contracts.EarliestBuyDate(txs)
	if start != nil && contracts.Day(*start).After(from) {
		from = contracts.Day(*start)
	}

	to := contracts.Day(now)
	if end != nil && contracts.Day(*end).Before(to) {
		to = contracts.Day(*end)
	}

	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end %s is before start %s",
			contracts.ErrNoDateRange, contracts.FormatDate(to), contracts.FormatDate(from))
	}
	return from, to, nil
}

type history struct {
	quotes []contracts.PriceQuote
	err    error
}

// Build validates transactions, fetches prices and values the portfolio daily
func (b *Builder) Build(ctx context.Context, txs []contracts.Transaction, start, end *time.Time) (*Result, error) {
	if err := contracts.ValidateTransactions(txs); err != nil {
		return nil, err
	}

	from, to, err := EffectiveRange(txs, start, end, b.now())
	if err != nil {
		return nil, err
	}

	symbols := contracts.Symbols(txs)
	histories, err := b.fetchAll(ctx, symbols, from, to)
	if err != nil {
		return nil, err
	}

	dates := Calendar(from, to)
	holdings := NewHoldings(txs)

	statuses := make([]SymbolStatus, len(symbols))
	filled := make(map[string][]float64, len(symbols))
	for i, sym := range symbols {
		statuses[i] = SymbolStatus{Symbol: sym, Status: StatusResolved}
		h := histories[i]
		switch {
		case h.err != nil:
			statuses[i].Status = StatusUnresolved
			statuses[i].Reason = h.err.Error()
		case len(h.quotes) == 0:
			statuses[i].Status = StatusUnresolved
			statuses[i].Reason = "no price data in range"
		default:
			filled[sym] = ForwardFill(dates, h.quotes)
		}
	}

	points := make([]contracts.ValuationPoint, len(dates))
	for di, day := range dates {
		values := make(map[string]float64, len(symbols))
		total := 0.0
		for si, sym := range symbols {
			v := 0.0
			qty := holdings.QuantityHeld(sym, day)
			if prices, ok := filled[sym]; ok && qty > 0 {
				if math.IsNaN(prices[di]) {
					statuses[si].MissingDays++
				} else {
					v = qty * prices[di]
				}
			}
			values[sym] = v
			total += v
		}
		points[di] = contracts.ValuationPoint{Date: day, Values: values, Total: total}
	}

	for i := range statuses {
		if statuses[i].Status == StatusResolved && statuses[i].MissingDays > 0 {
			statuses[i].Status = StatusPartial
			statuses[i].Reason = fmt.Sprintf("no price for %d held day(s)", statuses[i].MissingDays)
		}
	}

	result := &Result{
		Series:   contracts.ValuationSeries{Points: points, Symbols: symbols},
		Start:    from,
		End:      to,
		Statuses: statuses,
		Flows:    cashFlows(txs, from, to, dates, filled),
		Holdings: holdings,
	}

	b.logger.WithFields(map[string]interface{}{
		"symbols":    len(symbols),
		"unresolved": len(result.Unresolved()),
		"points":     len(points),
		"start":      contracts.FormatDate(from),
		"end":        contracts.FormatDate(to),
	}).Info("Valuation series built")

	return result, nil
}

// fetchAll loads every symbol's history concurrently.
// Per-symbol failures are recorded, only cancellation aborts.
func (b *Builder) fetchAll(ctx context.Context, symbols []string, from, to time.Time) ([]history, error) {
	histories := make([]history, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i, sym := range symbols {
		g.Go(func() error {
			histories[i] = b.fetchHistory(gctx, sym, from, to)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return histories, nil
}

func (b *Builder) fetchHistory(ctx context.Context, symbol string, from, to time.Time) history {
	quotes, err := b.source.GetPriceRange(ctx, symbol, from, to)
	if err != nil {
		b.logger.WithError(err).WithField("symbol", symbol).Warn("Price range unavailable")
		return history{err: err}
	}

	// 범위 밖/중복 행 방어
	kept := make([]contracts.PriceQuote, 0, len(quotes))
	for _, q := range quotes {
		q.Date = contracts.Day(q.Date)
		if q.Date.After(to) || q.Close <= 0 || math.IsNaN(q.Close) {
			continue
		}
		kept = append(kept, q)
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Date.Before(kept[j].Date) })

	// 시작일이 휴장일이면 직전 종가로 시드
	if len(kept) == 0 || kept[0].Date.After(from) {
		seed, err := b.source.GetPrice(ctx, symbol, from)
		switch {
		case err == nil && seed.Close > 0:
			seed.Date = contracts.Day(seed.Date)
			kept = append([]contracts.PriceQuote{seed}, kept...)
		case err != nil && !errors.Is(err, contracts.ErrPriceNotFound):
			b.logger.WithError(err).WithField("symbol", symbol).Debug("Seed price lookup failed")
		}
	}

	return history{quotes: kept}
}

// cashFlows lists buys strictly after from, valued at that day's close
func cashFlows(txs []contracts.Transaction, from, to time.Time, dates []time.Time, filled map[string][]float64) []contracts.CashFlow {
	var flows []contracts.CashFlow
	for _, tx := range txs {
		day := contracts.Day(tx.BuyDate)
		if !day.After(from) || day.After(to) {
			continue
		}

		idx := contracts.DaysBetween(from, day)
		qty := tx.Quantity.InexactFloat64()
		mv := 0.0
		if prices, ok := filled[tx.Symbol]; ok && idx < len(dates) && !math.IsNaN(prices[idx]) {
			mv = qty * prices[idx]
		}

		flows = append(flows, contracts.CashFlow{
			Date:        day,
			Symbol:      tx.Symbol,
			Cost:        tx.Cost().InexactFloat64(),
			MarketValue: mv,
		})
	}

	sort.SliceStable(flows, func(i, j int) bool { return flows[i].Date.Before(flows[j].Date) })
	return flows
}
