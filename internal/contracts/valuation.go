package contracts

import (
	"encoding/json"
	"fmt"
	"time"
)

// Flat record keys; a holding may not use them as its symbol
const (
	KeyDate       = "Date"
	KeyTotalValue = "TotalValue"
)

// ValuationPoint is the portfolio value on one calendar date
type ValuationPoint struct {
	Date   time.Time
	Values map[string]float64 // 종목별 평가액 (미보유 = 0)
	Total  float64
}

// MarshalJSON renders a flat record: {"Date": ..., "TotalValue": ..., "<symbol>": value}
func (p ValuationPoint) MarshalJSON() ([]byte, error) {
	rec := make(map[string]interface{}, len(p.Values)+2)
	for sym, v := range p.Values {
		rec[sym] = v
	}
	rec[KeyDate] = FormatDate(p.Date)
	rec[KeyTotalValue] = p.Total
	return json.Marshal(rec)
}

// UnmarshalJSON reads the flat record written by MarshalJSON
func (p *ValuationPoint) UnmarshalJSON(data []byte) error {
	var rec map[string]json.RawMessage
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}

	*p = ValuationPoint{Values: make(map[string]float64, len(rec))}
	for key, raw := range rec {
		switch key {
		case KeyDate:
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return fmt.Errorf("valuation point date: %w", err)
			}
			day, err := ParseDate(s)
			if err != nil {
				return err
			}
			p.Date = day
		case KeyTotalValue:
			if err := json.Unmarshal(raw, &p.Total); err != nil {
				return fmt.Errorf("valuation point total: %w", err)
			}
		default:
			var v float64
			if err := json.Unmarshal(raw, &v); err != nil {
				return fmt.Errorf("valuation point %s: %w", key, err)
			}
			p.Values[key] = v
		}
	}
	return nil
}

// ValuationSeries is the ordered daily valuation of a portfolio
type ValuationSeries struct {
	Points  []ValuationPoint `json:"points"`
	Symbols []string         `json:"symbols"`
}

// Len returns the number of points
func (s ValuationSeries) Len() int {
	return len(s.Points)
}

// Dates returns the point dates in order
func (s ValuationSeries) Dates() []time.Time {
	out := make([]time.Time, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Date
	}
	return out
}

// Totals returns the total value sequence
func (s ValuationSeries) Totals() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Total
	}
	return out
}

// SymbolValues returns one symbol's value sequence
func (s ValuationSeries) SymbolValues(symbol string) []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Values[symbol]
	}
	return out
}

// Last returns the final point. The series must not be empty.
func (s ValuationSeries) Last() ValuationPoint {
	return s.Points[len(s.Points)-1]
}

// CashFlow is an external contribution during the valuation window
type CashFlow struct {
	Date        time.Time `json:"date"`
	Symbol      string    `json:"symbol"`
	Cost        float64   `json:"cost"`         // quantity × buy price
	MarketValue float64   `json:"market_value"` // quantity × close on Date
}
