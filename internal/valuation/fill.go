package valuation

import (
	"math"
	"time"

	"github.com/wonny/folio/internal/contracts"
)

// Calendar returns every calendar date from..to inclusive
func Calendar(from, to time.Time) []time.Time {
	from, to = contracts.Day(from), contracts.Day(to)
	if to.Before(from) {
		return nil
	}
	dates := make([]time.Time, 0, contracts.DaysBetween(from, to)+1)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

// ForwardFill maps ascending quotes onto dates, carrying the last close
// forward across non-trading days. Dates before the first quote are NaN.
func ForwardFill(dates []time.Time, quotes []contracts.PriceQuote) []float64 {
	out := make([]float64, len(dates))
	j := -1
	for i, d := range dates {
		for j+1 < len(quotes) && !quotes[j+1].Date.After(d) {
			j++
		}
		if j < 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = quotes[j].Close
	}
	return out
}
