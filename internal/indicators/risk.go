package indicators

import (
	"math"

	"github.com/wonny/folio/internal/returns"
)

// riskMetricsNeedingSeries are omitted when fewer than two returns exist
var riskMetricsNeedingSeries = []MetricKind{
	MetricDailyVolatility,
	MetricAnnualizedVolatility,
	MetricSharpe,
	MetricSortino,
	MetricCalmar,
	MetricVaR95,
	MetricCVaR95,
	MetricDownsideRisk,
	MetricDownsideDeviation,
}

// RiskGroup computes volatility, drawdown and risk-adjusted ratios
func RiskGroup(in Input) Group {
	g := newGroup(GroupRisk)

	totals := in.Valuation.Totals()
	first, last := totals[0], totals[len(totals)-1]
	r := in.values()
	rf := in.Params.RiskFreeRate

	mdd := MaxDrawdown(totals)
	g.add(ok(MetricMaxDrawdown, mdd))

	if tr, defined := totalReturn(first, last); !defined {
		g.add(undefined(MetricReturnRiskRatio, reasonZeroInitial))
	} else if isZero(mdd) {
		g.add(undefined(MetricReturnRiskRatio, reasonNoDrawdown))
	} else {
		g.add(ok(MetricReturnRiskRatio, tr/math.Abs(mdd)))
	}

	if len(r) < 2 {
		for _, kind := range riskMetricsNeedingSeries {
			g.add(omitted(kind, ReasonInsufficient))
		}
		g.add(treynor(in, r))
		return g
	}

	sigma := StdDev(r)
	annMean := Mean(r) * TradingDays
	annVol := sigma * sqrtTradingDays

	g.add(ok(MetricDailyVolatility, sigma))
	g.add(ok(MetricAnnualizedVolatility, annVol))

	if isZero(annVol) {
		g.add(undefined(MetricSharpe, reasonNoVolatility))
	} else {
		g.add(ok(MetricSharpe, (annMean-rf)/annVol))
	}

	negatives := filter(r, func(v float64) bool { return v < 0 })
	downside := StdDev(negatives) * sqrtTradingDays
	g.add(ok(MetricDownsideRisk, downside))
	if len(negatives) == 0 || isZero(downside) {
		g.add(undefined(MetricSortino, reasonNoDownside))
	} else {
		g.add(ok(MetricSortino, (annMean-rf)/downside))
	}

	// target-0 semideviation over all observations
	var semi float64
	for _, v := range r {
		if v < 0 {
			semi += v * v
		}
	}
	g.add(ok(MetricDownsideDeviation, math.Sqrt(semi/float64(len(r)))*sqrtTradingDays))

	annRet, annMetric := annualizedReturn(first, last, len(r))
	switch {
	case !annMetric.OK():
		g.add(Metric{Kind: MetricCalmar, Status: annMetric.Status, Reason: annMetric.Reason})
	case isZero(mdd):
		g.add(undefined(MetricCalmar, reasonNoDrawdown))
	default:
		g.add(ok(MetricCalmar, annRet/math.Abs(mdd)))
	}

	var95 := Percentile(r, 5)
	tail := filter(r, func(v float64) bool { return v <= var95 })
	g.add(ok(MetricVaR95, var95))
	g.add(ok(MetricCVaR95, Mean(tail)))

	g.add(treynor(in, r))
	return g
}

func treynor(in Input, r []float64) Metric {
	if in.Benchmark == nil {
		return omitted(MetricTreynor, in.benchmarkReason())
	}
	ra, rb, _ := returns.Align(in.Returns, in.Benchmark)
	if len(ra) < 2 {
		return omitted(MetricTreynor, ReasonInsufficient)
	}
	beta, defined := Beta(ra, rb)
	if !defined {
		return undefined(MetricTreynor, reasonFlatBenchmark)
	}
	if isZero(beta) {
		return undefined(MetricTreynor, reasonZeroBeta)
	}
	return ok(MetricTreynor, (Mean(r)*TradingDays-in.Params.RiskFreeRate)/beta)
}
