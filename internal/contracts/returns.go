package contracts

import "time"

// ReturnType selects how consecutive values are turned into returns
type ReturnType string

const (
	ReturnSimple ReturnType = "simple" // v[i]/v[i-1] - 1
	ReturnLog    ReturnType = "log"    // ln(v[i]/v[i-1])
)

// ReturnPoint is the return earned ending on Date
type ReturnPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// ReturnSeries holds total and per-symbol daily returns
type ReturnSeries struct {
	Type      ReturnType               `json:"type"`
	Total     []ReturnPoint            `json:"total"`
	PerSymbol map[string][]ReturnPoint `json:"per_symbol"`
}

// Values extracts the return values in order
func Values(points []ReturnPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Value
	}
	return out
}
