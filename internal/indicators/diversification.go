package indicators

import (
	"math"
	"sort"
)

// DiversificationGroup measures concentration at the latest valuation point.
// Fully unresolved symbols are left out of the weights.
func DiversificationGroup(in Input) Group {
	g := newGroup(GroupDiversification)
	if in.Valuation.Len() == 0 {
		return OmittedGroup(GroupDiversification, ReasonInsufficient)
	}
	latest := in.Valuation.Last()

	var symbols []string
	for _, sym := range in.Valuation.Symbols {
		if !in.Excluded[sym] {
			symbols = append(symbols, sym)
		}
	}
	sort.Strings(symbols)

	weights := newGroup(GroupWeights)
	if !(latest.Total > 0) || len(symbols) == 0 {
		weights.Status = StatusUndefined
		weights.Reason = reasonZeroValue
		for _, sym := range symbols {
			weights.add(Metric{Kind: MetricWeight, Status: StatusUndefined, Symbol: sym, Reason: reasonZeroValue})
		}
		g.Children = append(g.Children, weights)
		for _, kind := range []MetricKind{MetricHHI, MetricGini, MetricEntropy, MetricNormalizedEntropy, MetricEffectiveHoldings, MetricMaxContribution} {
			g.add(undefined(kind, reasonZeroValue))
		}
		return g
	}

	w := make([]float64, len(symbols))
	best := 0
	for i, sym := range symbols {
		w[i] = latest.Values[sym] / latest.Total
		weights.add(okSymbol(MetricWeight, sym, w[i]))
		if w[i] > w[best] {
			best = i
		}
	}
	g.Children = append(g.Children, weights)

	hhi := HHI(w)
	g.add(ok(MetricHHI, hhi))
	g.add(ok(MetricGini, Gini(w)))

	entropy := Entropy(w)
	g.add(ok(MetricEntropy, entropy))
	if len(w) > 1 {
		g.add(ok(MetricNormalizedEntropy, entropy/math.Log(float64(len(w)))))
	} else {
		g.add(undefined(MetricNormalizedEntropy, reasonSingleHolding))
	}

	if hhi > 0 {
		g.add(ok(MetricEffectiveHoldings, 1/hhi))
	} else {
		g.add(undefined(MetricEffectiveHoldings, reasonZeroValue))
	}

	g.add(okSymbol(MetricMaxContribution, symbols[best], w[best]))
	return g
}

// HHI sum of squared weights
func HHI(w []float64) float64 {
	var sum float64
	for _, v := range w {
		sum += v * v
	}
	return sum
}

// Gini 2·Σ(i·w_i)/(N·Σw) − (N+1)/N over ascending weights, i = 1..N
func Gini(w []float64) float64 {
	n := len(w)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, w)
	sort.Float64s(sorted)

	var weighted, total float64
	for i, v := range sorted {
		weighted += float64(i+1) * v
		total += v
	}
	if total <= 0 {
		return 0
	}
	return 2*weighted/(float64(n)*total) - float64(n+1)/float64(n)
}

// Entropy Shannon entropy over positive weights
func Entropy(w []float64) float64 {
	var h float64
	for _, v := range w {
		if v > 0 {
			h -= v * math.Log(v)
		}
	}
	return h
}
