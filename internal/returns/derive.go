package returns

import (
	"math"
	"time"

	"github.com/wonny/folio/internal/contracts"
)

// Derive computes total and per-symbol daily returns from a valuation series
// ⭐ SSOT: 일별 수익률 계산은 여기서만
func Derive(series contracts.ValuationSeries, kind contracts.ReturnType) contracts.ReturnSeries {
	dates := series.Dates()

	out := contracts.ReturnSeries{
		Type:      kind,
		Total:     FromValues(dates, series.Totals(), kind),
		PerSymbol: make(map[string][]contracts.ReturnPoint, len(series.Symbols)),
	}
	for _, sym := range series.Symbols {
		out.PerSymbol[sym] = FromValues(dates, series.SymbolValues(sym), kind)
	}
	return out
}

// FromValues turns a value sequence into returns. The first date has no
// return, and a zero, negative or missing previous value leaves a gap.
func FromValues(dates []time.Time, values []float64, kind contracts.ReturnType) []contracts.ReturnPoint {
	if len(values) < 2 {
		return []contracts.ReturnPoint{}
	}

	out := make([]contracts.ReturnPoint, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		prev, cur := values[i-1], values[i]
		if !(prev > 0) || math.IsNaN(cur) || math.IsInf(prev, 0) || math.IsInf(cur, 0) {
			continue
		}

		var r float64
		switch kind {
		case contracts.ReturnLog:
			if cur <= 0 {
				continue
			}
			r = math.Log(cur / prev)
		default:
			r = cur/prev - 1
		}
		out = append(out, contracts.ReturnPoint{Date: dates[i], Value: r})
	}
	return out
}

// Align pairs two return sequences by date, dropping dates present in only one
func Align(a, b []contracts.ReturnPoint) (ra, rb []float64, dates []time.Time) {
	byDate := make(map[time.Time]float64, len(b))
	for _, p := range b {
		byDate[p.Date] = p.Value
	}

	for _, p := range a {
		v, ok := byDate[p.Date]
		if !ok {
			continue
		}
		ra = append(ra, p.Value)
		rb = append(rb, v)
		dates = append(dates, p.Date)
	}
	return ra, rb, dates
}
