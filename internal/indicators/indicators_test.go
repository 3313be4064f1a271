package indicators

import (
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/internal/returns"
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

// series builds a daily valuation series from per-symbol values
func series(start string, cols map[string][]float64) contracts.ValuationSeries {
	var symbols []string
	n := 0
	for sym, vs := range cols {
		symbols = append(symbols, sym)
		n = len(vs)
	}
	sort.Strings(symbols)

	s := contracts.ValuationSeries{Symbols: symbols}
	day := d(start)
	for i := 0; i < n; i++ {
		p := contracts.ValuationPoint{Date: day.AddDate(0, 0, i), Values: map[string]float64{}}
		for _, sym := range symbols {
			p.Values[sym] = cols[sym][i]
			p.Total += cols[sym][i]
		}
		s.Points = append(s.Points, p)
	}
	return s
}

func input(s contracts.ValuationSeries, txs ...contracts.Transaction) Input {
	return Input{
		Valuation:    s,
		Returns:      returns.FromValues(s.Dates(), s.Totals(), contracts.ReturnSimple),
		Transactions: txs,
		Excluded:     map[string]bool{},
		Params:       DefaultParams(),
	}
}

func computeAll(in Input) *Indicators {
	ind := &Indicators{}
	for _, c := range Calculators() {
		ind.Groups = append(ind.Groups, c.Compute(in))
	}
	return ind
}

func requireMetric(t *testing.T, ind *Indicators, kind MetricKind) Metric {
	t.Helper()
	m, found := ind.Lookup(kind)
	require.True(t, found, "metric %s missing", kind)
	return m
}

func TestCalculators_Order(t *testing.T) {
	var kinds []GroupKind
	for _, c := range Calculators() {
		kinds = append(kinds, c.Kind)
	}
	assert.Equal(t, []GroupKind{
		GroupReturn, GroupRisk, GroupAlphaBeta, GroupWinLoss,
		GroupRolling, GroupDiversification, GroupDrawdown,
	}, kinds)
}

func TestScenarioA_FlatSingleHolding(t *testing.T) {
	s := series("2024-01-01", map[string][]float64{"AAPL": {100, 100, 100, 100, 100}})
	ind := computeAll(input(s, tx("AAPL", 1, 100, "2024-01-01")))

	tests := []struct {
		kind MetricKind
		want float64
	}{
		{MetricAbsoluteReturn, 0},
		{MetricTotalReturn, 0},
		{MetricAnnualizedReturn, 0},
		{MetricCAGR, 0},
		{MetricROI, 0},
		{MetricTWR, 0},
		{MetricAnnualizedVolatility, 0},
		{MetricMaxDrawdown, 0},
		{MetricVaR95, 0},
		{MetricHHI, 1},
		{MetricEffectiveHoldings, 1},
		{MetricWinRate, 0},
		{MetricMaterialDrawdowns, 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			m := requireMetric(t, ind, tt.kind)
			require.True(t, m.OK(), "status %s reason %s", m.Status, m.Reason)
			assert.InDelta(t, tt.want, m.Value, 1e-9)
		})
	}

	mwr := requireMetric(t, ind, MetricMWR)
	require.True(t, mwr.OK())
	assert.InDelta(t, 0, mwr.Value, 1e-6)

	undefinedKinds := map[MetricKind]string{
		MetricSharpe:            reasonNoVolatility,
		MetricSortino:           reasonNoDownside,
		MetricCalmar:            reasonNoDrawdown,
		MetricReturnRiskRatio:   reasonNoDrawdown,
		MetricNormalizedEntropy: reasonSingleHolding,
		MetricMeanDrawdown:      reasonNoDrawdown,
		MetricGainLossRatio:     reasonNoLoss,
	}
	for kind, reason := range undefinedKinds {
		m := requireMetric(t, ind, kind)
		assert.Equal(t, StatusUndefined, m.Status, kind)
		assert.Equal(t, reason, m.Reason, kind)
	}

	ab, found := ind.Group(GroupAlphaBeta)
	require.True(t, found)
	assert.Equal(t, StatusOmitted, ab.Status)
	assert.Equal(t, ReasonBenchmark, ab.Reason)

	treynor := requireMetric(t, ind, MetricTreynor)
	assert.Equal(t, StatusOmitted, treynor.Status)
}

func TestScenarioB_EqualWeights(t *testing.T) {
	s := series("2024-01-01", map[string][]float64{
		"AAPL": {50, 55, 60},
		"MSFT": {50, 45, 60},
	})
	ind := computeAll(input(s, tx("AAPL", 1, 50, "2024-01-01"), tx("MSFT", 1, 50, "2024-01-01")))

	assert.InDelta(t, 0.5, requireMetric(t, ind, MetricHHI).Value, 1e-12)
	assert.InDelta(t, 0.0, requireMetric(t, ind, MetricGini).Value, 1e-12)
	assert.InDelta(t, 1.0, requireMetric(t, ind, MetricNormalizedEntropy).Value, 1e-12)
	assert.InDelta(t, 2.0, requireMetric(t, ind, MetricEffectiveHoldings).Value, 1e-12)

	div, _ := ind.Group(GroupDiversification)
	require.Len(t, div.Children, 1)
	weights := div.Children[0]
	assert.Equal(t, GroupWeights, weights.Kind)

	var sum float64
	for _, m := range weights.Metrics {
		sum += m.Value
	}
	assert.InDelta(t, 1.0, sum, 1e-12)

	// ties resolve to the first symbol alphabetically
	top := requireMetric(t, ind, MetricMaxContribution)
	assert.Equal(t, "AAPL", top.Symbol)
	assert.Equal(t, "AAPL (50.00%)", top.Display())
}

func TestScenarioD_SingleReturn(t *testing.T) {
	s := series("2024-01-01", map[string][]float64{"AAPL": {100, 110}})
	ind := computeAll(input(s, tx("AAPL", 1, 100, "2024-01-01")))

	assert.InDelta(t, 0.1, requireMetric(t, ind, MetricTotalReturn).Value, 1e-12)

	for _, kind := range []MetricKind{MetricAnnualizedReturn, MetricAnnualizedVolatility, MetricSharpe, MetricVaR95} {
		m := requireMetric(t, ind, kind)
		assert.Equal(t, StatusOmitted, m.Status, kind)
		assert.Equal(t, ReasonInsufficient, m.Reason, kind)
	}

	rolling, _ := ind.Group(GroupRolling)
	require.Len(t, rolling.Children, 2)
	for _, child := range rolling.Children {
		assert.Equal(t, StatusOmitted, child.Status)
	}

	winRate := requireMetric(t, ind, MetricWinRate)
	assert.Equal(t, 1.0, winRate.Value)

	labeled := ind.Labeled()
	assert.NotContains(t, labeled, "年化收益率")
	assert.Equal(t, "10.00%", labeled["总收益率"])
	assert.Equal(t, ReasonInsufficient, labeled["20日滚动分析"])
}

func TestReturnGroup_TWRWithContribution(t *testing.T) {
	// 100 → 110, buy worth 100 on day 2, then +5%
	s := series("2024-01-01", map[string][]float64{"A": {100, 110, 220, 231}})
	in := input(s)
	in.Flows = []contracts.CashFlow{{Date: d("2024-01-03"), Symbol: "A", Cost: 100, MarketValue: 100}}

	g := ReturnGroup(in)
	twr, found := g.Metric(MetricTWR)
	require.True(t, found)
	assert.InDelta(t, 1.2*1.05-1, twr.Value, 1e-12)
}

func TestReturnGroup_ROIIgnoresLaterBuys(t *testing.T) {
	s := series("2024-01-01", map[string][]float64{"A": {100, 105, 120}})
	g := ReturnGroup(input(s, tx("A", 1, 100, "2024-01-01"), tx("B", 5, 50, "2024-02-01")))

	roi := mustMetric(t, g, MetricROI)
	require.True(t, roi.OK())
	assert.InDelta(t, 0.20, roi.Value, 1e-12)
}

func TestMoneyWeightedReturn(t *testing.T) {
	txs := []contracts.Transaction{tx("A", 1, 100, "2023-01-01")}
	irr, defined := moneyWeightedReturn(txs, d("2024-01-01"), 110)
	require.True(t, defined)
	assert.InDelta(t, 0.10, irr, 1e-6)

	// buy after end is ignored
	_, defined = moneyWeightedReturn([]contracts.Transaction{tx("A", 1, 100, "2024-02-01")}, d("2024-01-01"), 110)
	assert.False(t, defined)

	// zero horizon has no solution
	_, defined = moneyWeightedReturn(txs, d("2023-01-01"), 100)
	assert.False(t, defined)
}

func TestRollingWindow(t *testing.T) {
	r := []float64{0.01, -0.01, 0.02, 0.0, 0.01}

	short := rollingWindow(r, 20, 0)
	assert.Equal(t, StatusOmitted, short.Status)
	assert.Equal(t, 20, short.Window)

	g := rollingWindow(r, 3, 0)
	require.Equal(t, StatusOK, g.Status)

	count, _ := g.Metric(MetricRollingWindowCount)
	assert.Equal(t, 3.0, count.Value)

	latest, _ := g.Metric(MetricRollingLatestReturn)
	assert.InDelta(t, Mean([]float64{0.02, 0.0, 0.01})*TradingDays, latest.Value, 1e-12)

	maxRet, _ := g.Metric(MetricRollingMaxReturn)
	minRet, _ := g.Metric(MetricRollingMinReturn)
	assert.GreaterOrEqual(t, maxRet.Value, minRet.Value)

	assert.Equal(t, "3日滚动胜率", mustMetric(t, g, MetricRollingWinRate).Label(g))
}

func mustMetric(t *testing.T, g Group, kind MetricKind) Metric {
	t.Helper()
	m, found := g.Metric(kind)
	require.True(t, found)
	return m
}

func TestWinLossGroup(t *testing.T) {
	in := Input{Returns: returns.FromValues(
		[]time.Time{d("2024-01-01"), d("2024-01-02"), d("2024-01-03"), d("2024-01-04"), d("2024-01-05"), d("2024-01-06"), d("2024-01-07")},
		[]float64{100, 101, 103, 102, 105, 103, 102},
		contracts.ReturnSimple,
	)}

	g := WinLossGroup(in)
	assert.InDelta(t, 0.5, mustMetric(t, g, MetricWinRate).Value, 1e-12)
	assert.InDelta(t, 0.5, mustMetric(t, g, MetricLossRate).Value, 1e-12)
	assert.Equal(t, 2.0, mustMetric(t, g, MetricMaxWinStreak).Value)
	assert.Equal(t, 2.0, mustMetric(t, g, MetricMaxLossStreak).Value)
	assert.InDelta(t, 1.5, mustMetric(t, g, MetricAvgWinStreak).Value, 1e-12)
	assert.Equal(t, StatusOmitted, mustMetric(t, g, MetricReturnZScore).Status)

	assert.Equal(t, StatusOmitted, WinLossGroup(Input{}).Status)
}

func TestAlphaBetaGroup(t *testing.T) {
	dates := []time.Time{d("2024-01-02"), d("2024-01-03"), d("2024-01-04"), d("2024-01-05")}
	bench := []float64{0.01, -0.02, 0.03, 0.01}

	in := Input{}
	for i, day := range dates {
		in.Benchmark = append(in.Benchmark, contracts.ReturnPoint{Date: day, Value: bench[i]})
		in.Returns = append(in.Returns, contracts.ReturnPoint{Date: day, Value: 2 * bench[i]})
	}

	g := AlphaBetaGroup(in)
	require.Equal(t, StatusOK, g.Status)
	assert.InDelta(t, 2.0, mustMetric(t, g, MetricBeta).Value, 1e-9)
	assert.InDelta(t, 0.0, mustMetric(t, g, MetricAlpha).Value, 1e-9)
	assert.InDelta(t, StdDev(bench)*sqrtTradingDays, mustMetric(t, g, MetricTrackingError).Value, 1e-9)
	assert.InDelta(t, 1.01*0.98*1.03*1.01-1, mustMetric(t, g, MetricBenchmarkReturn).Value, 1e-12)

	in.Benchmark, in.BenchmarkErr = nil, "timeout"
	omittedGroup := AlphaBetaGroup(in)
	assert.Equal(t, StatusOmitted, omittedGroup.Status)
	assert.Equal(t, ReasonBenchmark+": timeout", omittedGroup.Reason)
}

func TestDrawdownGroup_Episodes(t *testing.T) {
	s := series("2024-01-01", map[string][]float64{"A": {100, 120, 90, 130, 100, 110}})
	g := DrawdownGroup(input(s))

	assert.Equal(t, 0.05, g.Threshold)
	assert.Equal(t, 2.0, mustMetric(t, g, MetricMaterialDrawdowns).Value)
	assert.InDelta(t, (-0.25+(100.0/130-1))/2, mustMetric(t, g, MetricMeanDrawdown).Value, 1e-12)

	assert.Equal(t, "2024-01-02", mustMetric(t, g, MetricMaxDrawdownStart).Date)
	assert.Equal(t, "2024-01-03", mustMetric(t, g, MetricMaxDrawdownTrough).Date)
	assert.Equal(t, "2024-01-04", mustMetric(t, g, MetricMaxDrawdownRecovery).Date)
	assert.Equal(t, 1.0, mustMetric(t, g, MetricMaxDrawdownRecoveryDays).Value)

	require.Len(t, g.Children, 2)
	assert.Equal(t, 1, g.Children[0].Ordinal)
	ongoing := g.Children[1]
	assert.Equal(t, 2, ongoing.Ordinal)
	recovery, _ := ongoing.Metric(MetricEpisodeRecovery)
	assert.Equal(t, StatusUndefined, recovery.Status)
	assert.Equal(t, reasonNoRecovery, recovery.Reason)

	labeled := (&Indicators{Groups: []Group{g}}).Labeled()
	detail, isMap := labeled["回撤详细分析"].(map[string]interface{})
	require.True(t, isMap)
	assert.Equal(t, "2", detail["显著回撤次数(>5%)"])
	assert.Contains(t, detail, "回撤区间 1")
	assert.Contains(t, detail, "回撤区间 2")
}

func TestDrawdownGroup_BelowThreshold(t *testing.T) {
	s := series("2024-01-01", map[string][]float64{"A": {100, 98, 101}})
	g := DrawdownGroup(input(s))

	assert.Equal(t, 0.0, mustMetric(t, g, MetricMaterialDrawdowns).Value)
	assert.InDelta(t, -0.02, mustMetric(t, g, MetricMeanDrawdown).Value, 1e-12)
	assert.Equal(t, StatusUndefined, mustMetric(t, g, MetricLongestDrawdownDuration).Status)
	assert.Empty(t, g.Children)
}

func TestDiversification_ZeroValueAndExcluded(t *testing.T) {
	s := series("2024-01-01", map[string][]float64{"A": {0, 0}, "B": {0, 0}})
	g := DiversificationGroup(input(s))
	assert.Equal(t, StatusUndefined, mustMetric(t, g, MetricHHI).Status)
	assert.Equal(t, reasonZeroValue, mustMetric(t, g, MetricHHI).Reason)

	s = series("2024-01-01", map[string][]float64{"A": {100, 100}, "GONE": {0, 0}})
	in := input(s)
	in.Excluded["GONE"] = true
	g = DiversificationGroup(in)
	assert.InDelta(t, 1.0, mustMetric(t, g, MetricHHI).Value, 1e-12)
	require.Len(t, g.Children[0].Metrics, 1)
	assert.Equal(t, "A", g.Children[0].Metrics[0].Symbol)
}

func TestLabeled(t *testing.T) {
	s := series("2024-01-01", map[string][]float64{"AAPL": {100, 100, 100}})
	ind := computeAll(input(s, tx("AAPL", 1, 100, "2024-01-01")))
	labeled := ind.Labeled()

	assert.Equal(t, "0.00%", labeled["总收益率"])
	assert.Equal(t, "N/A (无波动性)", labeled["夏普比率"])
	assert.NotContains(t, labeled, "贝塔")
	assert.NotContains(t, labeled, "特雷诺比率")

	weights, isMap := labeled["股票权重"].(map[string]interface{})
	require.True(t, isMap)
	assert.Equal(t, "100.00%", weights["AAPL"])

	_, isMap = labeled["胜负详细分析"].(map[string]interface{})
	assert.True(t, isMap)

	failed := (&Indicators{Error: ReasonInsufficient}).Labeled()
	assert.Equal(t, map[string]interface{}{"错误": ReasonInsufficient}, failed)
}

func TestGroupAdd_NonFiniteBecomesUndefined(t *testing.T) {
	// one calendar day with a huge jump overflows the CAGR exponent
	s := series("2024-01-01", map[string][]float64{"A": {1, 1e300}})
	g := ReturnGroup(input(s, tx("A", 1, 1, "2024-01-01")))

	cagr := mustMetric(t, g, MetricCAGR)
	assert.Equal(t, StatusUndefined, cagr.Status)
	assert.Equal(t, reasonOverflow, cagr.Reason)
}
