package valuation

import (
	"sort"
	"time"

	"github.com/wonny/folio/internal/contracts"
)

// lot is a cumulative position after the buys on Date
type lot struct {
	date  time.Time
	added float64
	held  float64
}

// Holdings answers quantity-held queries. Only buys are modeled, so the
// held quantity is non-decreasing in date for every symbol.
type Holdings struct {
	lots map[string][]lot
}

// NewHoldings indexes transactions by symbol and buy date
func NewHoldings(txs []contracts.Transaction) *Holdings {
	bySymbol := make(map[string]map[time.Time]float64)
	for _, tx := range txs {
		if bySymbol[tx.Symbol] == nil {
			bySymbol[tx.Symbol] = make(map[time.Time]float64)
		}
		bySymbol[tx.Symbol][contracts.Day(tx.BuyDate)] += tx.Quantity.InexactFloat64()
	}

	h := &Holdings{lots: make(map[string][]lot, len(bySymbol))}
	for sym, byDate := range bySymbol {
		lots := make([]lot, 0, len(byDate))
		for d, q := range byDate {
			lots = append(lots, lot{date: d, added: q})
		}
		sort.Slice(lots, func(i, j int) bool { return lots[i].date.Before(lots[j].date) })

		held := 0.0
		for i := range lots {
			held += lots[i].added
			lots[i].held = held
		}
		h.lots[sym] = lots
	}
	return h
}

// QuantityHeld is the sum of quantities bought on or before date
func (h *Holdings) QuantityHeld(symbol string, date time.Time) float64 {
	lots := h.lots[symbol]
	day := contracts.Day(date)
	i := sort.Search(len(lots), func(i int) bool { return lots[i].date.After(day) })
	if i == 0 {
		return 0
	}
	return lots[i-1].held
}
