package pricing

import (
	"sort"
	"time"

	"github.com/wonny/folio/internal/contracts"
)

// sortQuotes orders quotes by date and drops duplicate dates (last wins)
func sortQuotes(quotes []contracts.PriceQuote) []contracts.PriceQuote {
	sort.SliceStable(quotes, func(i, j int) bool {
		return quotes[i].Date.Before(quotes[j].Date)
	})

	out := quotes[:0]
	for _, q := range quotes {
		if n := len(out); n > 0 && out[n-1].Date.Equal(q.Date) {
			out[n-1] = q
			continue
		}
		out = append(out, q)
	}
	return out
}

// onOrBefore returns the index of the last quote dated <= date, or -1
func onOrBefore(quotes []contracts.PriceQuote, date time.Time) int {
	i := sort.Search(len(quotes), func(i int) bool {
		return quotes[i].Date.After(date)
	})
	return i - 1
}

// between returns quotes with from <= date <= to
func between(quotes []contracts.PriceQuote, from, to time.Time) []contracts.PriceQuote {
	start := sort.Search(len(quotes), func(i int) bool {
		return !quotes[i].Date.Before(from)
	})
	end := onOrBefore(quotes, to) + 1
	if start >= end {
		return []contracts.PriceQuote{}
	}
	out := make([]contracts.PriceQuote, end-start)
	copy(out, quotes[start:end])
	return out
}
