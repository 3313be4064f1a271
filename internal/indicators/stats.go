package indicators

import (
	"math"
	"sort"
)

// TradingDays is the annualization convention
const TradingDays = 252

var sqrtTradingDays = math.Sqrt(TradingDays)

// eps treats tiny floating noise as zero in denominators
const eps = 1e-12

func isZero(x float64) bool {
	return math.Abs(x) < eps
}

// Mean 산술 평균
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	var sum float64
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

// Variance 모분산 (ddof=0)
func Variance(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	mean := Mean(data)
	var sumSq float64
	for _, v := range data {
		diff := v - mean
		sumSq += diff * diff
	}
	return sumSq / float64(len(data))
}

// StdDev 모표준편차 (ddof=0)
func StdDev(data []float64) float64 {
	return math.Sqrt(Variance(data))
}

// Covariance 모공분산. 길이가 다르면 짧은 쪽 기준
func Covariance(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}
	ma, mb := Mean(a[:n]), Mean(b[:n])
	var sum float64
	for i := 0; i < n; i++ {
		sum += (a[i] - ma) * (b[i] - mb)
	}
	return sum / float64(n)
}

// Percentile 선형 보간 백분위수 (p: 0~100)
func Percentile(data []float64, p float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	frac := rank - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

// Median 중앙값
func Median(data []float64) float64 {
	return Percentile(data, 50)
}

// MinMax returns the smallest and largest values
func MinMax(data []float64) (float64, float64) {
	if len(data) == 0 {
		return 0, 0
	}
	lo, hi := data[0], data[0]
	for _, v := range data[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

func filter(data []float64, keep func(float64) bool) []float64 {
	var out []float64
	for _, v := range data {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// MaxDrawdown 최대 낙폭 (<= 0). 러닝 피크 대비 최저 비율
func MaxDrawdown(values []float64) float64 {
	peak := 0.0
	maxDD := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak <= 0 {
			continue
		}
		if dd := v/peak - 1; dd < maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// Beta OLS 기울기 cov(R,B)/var(B). var(B)=0이면 false
func Beta(r, b []float64) (float64, bool) {
	varB := Variance(b)
	if isZero(varB) {
		return 0, false
	}
	return Covariance(r, b) / varB, true
}

// streaks returns the length of each run where pred holds
func streaks(data []float64, pred func(float64) bool) []int {
	var runs []int
	cur := 0
	for _, v := range data {
		if pred(v) {
			cur++
			continue
		}
		if cur > 0 {
			runs = append(runs, cur)
			cur = 0
		}
	}
	if cur > 0 {
		runs = append(runs, cur)
	}
	return runs
}
