package indicators

import (
	"math"
	"sort"
	"time"

	"github.com/wonny/folio/internal/contracts"
)

// ReturnGroup computes the return indicators
func ReturnGroup(in Input) Group {
	g := newGroup(GroupReturn)

	totals := in.Valuation.Totals()
	dates := in.Valuation.Dates()
	first, last := totals[0], totals[len(totals)-1]
	r := in.values()

	g.add(ok(MetricAbsoluteReturn, last-first))

	if tr, defined := totalReturn(first, last); defined {
		g.add(ok(MetricTotalReturn, tr))
	} else {
		g.add(undefined(MetricTotalReturn, reasonZeroInitial))
	}

	g.add(annualizedReturnMetric(first, last, len(r)))

	days := contracts.DaysBetween(dates[0], dates[len(dates)-1])
	switch {
	case days <= 0:
		g.add(undefined(MetricCAGR, reasonShortPeriod))
	case !(first > 0):
		g.add(undefined(MetricCAGR, reasonZeroInitial))
	default:
		g.add(ok(MetricCAGR, math.Pow(last/first, 365/float64(days))-1))
	}

	invested := investedBy(in.Transactions, dates[len(dates)-1])
	if invested > 0 {
		g.add(ok(MetricROI, (last-invested)/invested))
	} else {
		g.add(undefined(MetricROI, reasonZeroInitial))
	}

	if twr, defined := timeWeightedReturn(dates, totals, in.Flows); defined {
		g.add(ok(MetricTWR, twr))
	} else {
		g.add(undefined(MetricTWR, reasonZeroInitial))
	}

	if mwr, defined := moneyWeightedReturn(in.Transactions, dates[len(dates)-1], last); defined {
		g.add(ok(MetricMWR, mwr))
	} else {
		g.add(undefined(MetricMWR, reasonNoSignChange))
	}

	if len(r) > 0 {
		g.add(ok(MetricMeanDailyReturn, Mean(r)))
	} else {
		g.add(omitted(MetricMeanDailyReturn, ReasonInsufficient))
	}

	return g
}

// investedBy is the cost basis of lots bought on or before end
func investedBy(txs []contracts.Transaction, end time.Time) float64 {
	held := make([]contracts.Transaction, 0, len(txs))
	for _, tx := range txs {
		if !contracts.Day(tx.BuyDate).After(end) {
			held = append(held, tx)
		}
	}
	return contracts.TotalInvested(held).InexactFloat64()
}

func totalReturn(first, last float64) (float64, bool) {
	if !(first > 0) {
		return 0, false
	}
	return last/first - 1, true
}

// annualizedReturn compounds the total return over n return observations
func annualizedReturn(first, last float64, n int) (float64, Metric) {
	if n < 2 {
		return 0, omitted(MetricAnnualizedReturn, ReasonInsufficient)
	}
	tr, defined := totalReturn(first, last)
	if !defined {
		return 0, undefined(MetricAnnualizedReturn, reasonZeroInitial)
	}
	v := math.Pow(1+tr, TradingDays/float64(n)) - 1
	return v, ok(MetricAnnualizedReturn, v)
}

func annualizedReturnMetric(first, last float64, n int) Metric {
	_, m := annualizedReturn(first, last, n)
	return m
}

// timeWeightedReturn chain-links sub-period returns split at each buy date.
// The value just before a buy is the day's value minus the bought shares' value.
func timeWeightedReturn(dates []time.Time, totals []float64, flows []contracts.CashFlow) (float64, bool) {
	if len(totals) < 2 {
		return 0, false
	}

	inflow := make(map[int]float64)
	for _, f := range flows {
		idx := contracts.DaysBetween(dates[0], f.Date)
		if idx <= 0 || idx >= len(totals) {
			continue
		}
		inflow[idx] += f.MarketValue
	}

	bounds := make([]int, 0, len(inflow)+1)
	for idx := range inflow {
		bounds = append(bounds, idx)
	}
	if _, isFlow := inflow[len(totals)-1]; !isFlow {
		bounds = append(bounds, len(totals)-1)
	}
	sort.Ints(bounds)

	growth := 1.0
	periods := 0
	start := 0
	for _, b := range bounds {
		startValue := totals[start]
		endValue := totals[b] - inflow[b]
		if startValue > 0 {
			growth *= endValue / startValue
			periods++
		}
		start = b
	}

	if periods == 0 {
		return 0, false
	}
	return growth - 1, true
}

// IRR search bracket
const (
	irrLow      = -0.99
	irrHigh     = 10.0
	irrTol      = 1e-10
	irrMaxIters = 200
)

type datedFlow struct {
	years  float64
	amount float64
}

// moneyWeightedReturn solves NPV(r) = 0 over buy outflows and the terminal value
// by bisection on [irrLow, irrHigh]. No sign change means no solution.
func moneyWeightedReturn(txs []contracts.Transaction, end time.Time, terminal float64) (float64, bool) {
	var t0 time.Time
	var raw []contracts.Transaction
	for _, tx := range txs {
		day := contracts.Day(tx.BuyDate)
		if day.After(end) {
			continue
		}
		if len(raw) == 0 || day.Before(t0) {
			t0 = day
		}
		raw = append(raw, tx)
	}
	if len(raw) == 0 {
		return 0, false
	}

	flows := make([]datedFlow, 0, len(raw)+1)
	for _, tx := range raw {
		flows = append(flows, datedFlow{
			years:  float64(contracts.DaysBetween(t0, tx.BuyDate)) / 365,
			amount: -tx.Cost().InexactFloat64(),
		})
	}
	horizon := float64(contracts.DaysBetween(t0, end)) / 365
	if horizon <= 0 {
		return 0, false
	}
	flows = append(flows, datedFlow{years: horizon, amount: terminal})

	npv := func(rate float64) float64 {
		var sum float64
		for _, f := range flows {
			sum += f.amount / math.Pow(1+rate, f.years)
		}
		return sum
	}

	lo, hi := irrLow, irrHigh
	fLo, fHi := npv(lo), npv(hi)
	if math.IsNaN(fLo) || math.IsNaN(fHi) || fLo*fHi > 0 {
		return 0, false
	}
	if fLo == 0 {
		return lo, true
	}
	if fHi == 0 {
		return hi, true
	}

	for i := 0; i < irrMaxIters && hi-lo > irrTol; i++ {
		mid := (lo + hi) / 2
		fMid := npv(mid)
		if fMid == 0 {
			return mid, true
		}
		if fLo*fMid < 0 {
			hi = mid
		} else {
			lo, fLo = mid, fMid
		}
	}
	return (lo + hi) / 2, true
}
