package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/internal/indicators"
	"github.com/wonny/folio/internal/pricing"
	"github.com/wonny/folio/internal/valuation"
	"github.com/wonny/folio/pkg/config"
	"github.com/wonny/folio/pkg/logger"
)

func d(s string) time.Time {
	t, err := contracts.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func tx(symbol string, qty, price float64, buy string) contracts.Transaction {
	return contracts.Transaction{
		Symbol:   symbol,
		Quantity: decimal.NewFromFloat(qty),
		BuyPrice: decimal.NewFromFloat(price),
		BuyDate:  d(buy),
	}
}

func newEngine(src contracts.PriceSource, now string) *Engine {
	opts := DefaultOptions()
	opts.Now = func() time.Time { return d(now) }
	return New(src, logger.Nop(), opts)
}

func metric(t *testing.T, res *Result, kind indicators.MetricKind) indicators.Metric {
	t.Helper()
	m, found := res.Indicators.Lookup(kind)
	require.True(t, found, "metric %s missing", kind)
	return m
}

func TestCompute_ScenarioA_FlatPrice(t *testing.T) {
	src := pricing.NewMemorySource("")
	src.AddSeries("AAPL", d("2023-01-03"), 130, 130, 130, 130, 130, 130, 130, 130)

	res, err := newEngine(src, "2023-01-10").Compute(context.Background(), Request{
		Transactions: []contracts.Transaction{tx("AAPL", 10, 130, "2023-01-03")},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, res.RequestID)
	assert.Equal(t, d("2023-01-03"), res.StartDate)
	assert.Equal(t, d("2023-01-10"), res.EndDate)
	assert.Equal(t, 8, res.Valuation.Len())
	for _, p := range res.Valuation.Points {
		assert.InDelta(t, 1300.0, p.Total, 1e-9)
	}

	assert.InDelta(t, 0, metric(t, res, indicators.MetricTotalReturn).Value, 1e-12)
	assert.InDelta(t, 0, metric(t, res, indicators.MetricAnnualizedVolatility).Value, 1e-12)
	assert.InDelta(t, 0, metric(t, res, indicators.MetricMaxDrawdown).Value, 1e-12)
	assert.InDelta(t, 1, metric(t, res, indicators.MetricHHI).Value, 1e-12)

	sharpe := metric(t, res, indicators.MetricSharpe)
	assert.Equal(t, indicators.StatusUndefined, sharpe.Status)
	assert.Equal(t, "N/A (无波动性)", sharpe.Display())

	// no benchmark configured
	require.NotEmpty(t, res.Warnings.OmittedGroups)
	assert.Equal(t, indicators.GroupAlphaBeta, res.Warnings.OmittedGroups[0].Group)
	assert.Empty(t, res.Warnings.UnresolvedSymbols)
}

func TestCompute_ScenarioB_EqualWeights(t *testing.T) {
	src := pricing.NewMemorySource("")
	src.AddSeries("AAPL", d("2024-01-01"), 50, 51, 52, 53)
	src.AddSeries("MSFT", d("2024-01-01"), 50, 49, 51, 53)

	res, err := newEngine(src, "2024-01-04").Compute(context.Background(), Request{
		Transactions: []contracts.Transaction{
			tx("AAPL", 1, 50, "2024-01-01"),
			tx("MSFT", 1, 50, "2024-01-01"),
		},
	})
	require.NoError(t, err)

	assert.InDelta(t, 0.5, metric(t, res, indicators.MetricHHI).Value, 1e-12)

	div, found := res.Indicators.Group(indicators.GroupDiversification)
	require.True(t, found)
	var sum float64
	for _, m := range div.Children[0].Metrics {
		sum += m.Value
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
}

func TestCompute_ScenarioC_UnresolvedSymbol(t *testing.T) {
	src := pricing.NewMemorySource("")
	src.AddSeries("AAPL", d("2024-01-01"), 100, 102, 101, 104, 103)
	src.Fail("DEAD", errors.New("upstream 404"))

	res, err := newEngine(src, "2024-01-05").Compute(context.Background(), Request{
		Transactions: []contracts.Transaction{
			tx("AAPL", 1, 100, "2024-01-01"),
			tx("DEAD", 10, 5, "2024-01-01"),
		},
	})
	require.NoError(t, err)

	require.Len(t, res.Warnings.UnresolvedSymbols, 1)
	assert.Equal(t, "DEAD", res.Warnings.UnresolvedSymbols[0].Symbol)
	for _, p := range res.Valuation.Points {
		assert.Equal(t, 0.0, p.Values["DEAD"])
	}

	assert.True(t, metric(t, res, indicators.MetricTotalReturn).OK())
	assert.True(t, metric(t, res, indicators.MetricAnnualizedVolatility).OK())
	// unresolved symbol is left out of the weights
	assert.InDelta(t, 1, metric(t, res, indicators.MetricHHI).Value, 1e-12)
}

func TestCompute_ChainWithPartialStore(t *testing.T) {
	store := pricing.NewMemorySource("")
	store.AddSeries("AAPL", d("2023-01-08"), 107, 108, 109)
	upstream := pricing.NewMemorySource("")
	upstream.AddSeries("AAPL", d("2023-01-01"), 100, 101, 102, 103, 104, 105, 106, 107, 108, 109)

	res, err := newEngine(pricing.NewChainSource(store, upstream), "2023-01-10").Compute(context.Background(), Request{
		Transactions: []contracts.Transaction{tx("AAPL", 1, 100, "2023-01-01")},
	})
	require.NoError(t, err)

	totals := res.Valuation.Totals()
	require.Len(t, totals, 10)
	for i, v := range totals {
		assert.InDelta(t, 100+float64(i), v, 1e-9, "day %d", i)
	}
	assert.Empty(t, res.Warnings.UnresolvedSymbols)
}

func TestCompute_PartialSymbolIsFlagged(t *testing.T) {
	src := pricing.NewMemorySource("")
	src.AddSeries("AAPL", d("2023-01-05"), 100, 101, 102)

	res, err := newEngine(src, "2023-01-07").Compute(context.Background(), Request{
		Transactions: []contracts.Transaction{tx("AAPL", 1, 100, "2023-01-03")},
	})
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 0, 100, 101, 102}, res.Valuation.Totals())
	require.Len(t, res.Warnings.UnresolvedSymbols, 1)
	st := res.Warnings.UnresolvedSymbols[0]
	assert.Equal(t, "AAPL", st.Symbol)
	assert.Equal(t, valuation.StatusPartial, st.Status)
	assert.Equal(t, 2, st.MissingDays)
}

func TestCompute_ScenarioD_TwoPoints(t *testing.T) {
	src := pricing.NewMemorySource("")
	src.AddSeries("AAPL", d("2024-01-01"), 100, 110)

	res, err := newEngine(src, "2024-01-02").Compute(context.Background(), Request{
		Transactions: []contracts.Transaction{tx("AAPL", 1, 100, "2024-01-01")},
	})
	require.NoError(t, err)
	require.Empty(t, res.Indicators.Error)

	assert.InDelta(t, 0.1, metric(t, res, indicators.MetricTotalReturn).Value, 1e-12)
	assert.Equal(t, indicators.StatusOmitted, metric(t, res, indicators.MetricAnnualizedReturn).Status)
	assert.Equal(t, indicators.StatusOmitted, metric(t, res, indicators.MetricAnnualizedVolatility).Status)

	var windows []int
	for _, w := range res.Warnings.OmittedGroups {
		if w.Group == indicators.GroupRollingWindow {
			windows = append(windows, w.Window)
		}
	}
	assert.Equal(t, []int{20, 60}, windows)
}

func TestCompute_SinglePointReportsError(t *testing.T) {
	src := pricing.NewMemorySource("")
	src.AddSeries("AAPL", d("2024-01-01"), 100)

	res, err := newEngine(src, "2024-01-01").Compute(context.Background(), Request{
		Transactions: []contracts.Transaction{tx("AAPL", 1, 100, "2024-01-01")},
	})
	require.NoError(t, err)
	assert.Equal(t, ErrorInsufficientPoints, res.Indicators.Error)
	assert.Empty(t, res.Indicators.Groups)
	assert.Equal(t, map[string]interface{}{"错误": ErrorInsufficientPoints}, res.Indicators.Labeled())
}

func TestCompute_Benchmark(t *testing.T) {
	src := pricing.NewMemorySource("^GSPC")
	src.AddSeries("AAPL", d("2024-01-01"), 100, 102, 99, 103, 104)
	src.AddSeries("^GSPC", d("2024-01-01"), 4000, 4040, 3960, 4080, 4100)

	res, err := newEngine(src, "2024-01-05").Compute(context.Background(), Request{
		Transactions: []contracts.Transaction{tx("AAPL", 1, 100, "2024-01-01")},
	})
	require.NoError(t, err)

	ab, found := res.Indicators.Group(indicators.GroupAlphaBeta)
	require.True(t, found)
	assert.Equal(t, indicators.StatusOK, ab.Status)
	assert.True(t, metric(t, res, indicators.MetricBeta).OK())
	assert.InDelta(t, 4100.0/4000-1, metric(t, res, indicators.MetricBenchmarkReturn).Value, 1e-12)
	assert.True(t, metric(t, res, indicators.MetricTreynor).OK())
}

func TestCompute_InputErrors(t *testing.T) {
	e := newEngine(pricing.NewMemorySource(""), "2024-01-05")

	_, err := e.Compute(context.Background(), Request{})
	assert.True(t, errors.Is(err, contracts.ErrInvalidInput))

	_, err = e.Compute(context.Background(), Request{
		Transactions: []contracts.Transaction{tx("AAPL", -1, 100, "2024-01-01")},
	})
	assert.True(t, errors.Is(err, contracts.ErrInvalidInput))

	end := d("2023-12-01")
	_, err = e.Compute(context.Background(), Request{
		Transactions: []contracts.Transaction{tx("AAPL", 1, 100, "2024-01-01")},
		EndDate:      &end,
	})
	assert.True(t, errors.Is(err, contracts.ErrNoDateRange))
}

func TestComputeWithProgress(t *testing.T) {
	src := pricing.NewMemorySource("")
	src.AddSeries("AAPL", d("2024-01-01"), 100, 101, 102)

	var mu sync.Mutex
	var stages []Stage
	groups := map[indicators.GroupKind]bool{}

	_, err := newEngine(src, "2024-01-03").ComputeWithProgress(context.Background(), Request{
		Transactions: []contracts.Transaction{tx("AAPL", 1, 100, "2024-01-01")},
	}, func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		stages = append(stages, ev.Stage)
		if ev.Stage == StageGroupDone {
			groups[ev.Group] = true
		}
	})
	require.NoError(t, err)

	require.NotEmpty(t, stages)
	assert.Equal(t, StageValuationBuilt, stages[0])
	assert.Equal(t, StageCompleted, stages[len(stages)-1])
	assert.Len(t, groups, len(indicators.Calculators()))
}

func TestCompute_Cancelled(t *testing.T) {
	src := pricing.NewMemorySource("")
	src.AddSeries("AAPL", d("2024-01-01"), 100, 101, 102)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newEngine(src, "2024-01-03").Compute(ctx, Request{
		Transactions: []contracts.Transaction{tx("AAPL", 1, 100, "2024-01-01")},
	})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := &config.Config{Engine: config.EngineConfig{
		RiskFreeRate:      0.02,
		DrawdownThreshold: 0.1,
		RollingWindows:    []int{5},
		FetchWorkers:      3,
	}}

	opts := OptionsFromConfig(cfg)
	assert.Equal(t, 0.02, opts.RiskFreeRate)
	assert.Equal(t, 0.1, opts.DrawdownThreshold)
	assert.Equal(t, []int{5}, opts.RollingWindows)
	assert.Equal(t, 3, opts.FetchWorkers)
	assert.Equal(t, contracts.ReturnSimple, opts.ReturnType)
}
