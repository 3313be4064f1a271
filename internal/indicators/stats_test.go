package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentile(t *testing.T) {
	data := []float64{5, 1, 4, 2, 3}

	tests := []struct {
		name string
		p    float64
		want float64
	}{
		{"p0", 0, 1},
		{"p5 interpolates", 5, 1.2},
		{"median", 50, 3},
		{"p90", 90, 4.6},
		{"p100", 100, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Percentile(data, tt.p), 1e-12)
		})
	}

	assert.Equal(t, 0.0, Percentile(nil, 5))
	assert.Equal(t, 7.0, Percentile([]float64{7}, 5))
	// input is not reordered
	assert.Equal(t, []float64{5, 1, 4, 2, 3}, data)
}

func TestPopulationMoments(t *testing.T) {
	data := []float64{1, 2, 3, 4}
	assert.InDelta(t, 2.5, Mean(data), 1e-12)
	assert.InDelta(t, 1.25, Variance(data), 1e-12)
	assert.InDelta(t, math.Sqrt(1.25), StdDev(data), 1e-12)
	assert.InDelta(t, 2.5, Covariance(data, []float64{2, 4, 6, 8}), 1e-12)
}

func TestMaxDrawdown(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"monotone non-decreasing", []float64{100, 100, 101, 105}, 0},
		{"deepest of two", []float64{100, 120, 90, 130, 117}, -0.25},
		{"leading zeros ignored", []float64{0, 0, 50, 25}, -0.5},
		{"empty", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaxDrawdown(tt.values)
			assert.InDelta(t, tt.want, got, 1e-12)
			assert.LessOrEqual(t, got, 0.0)
		})
	}
}

func TestBeta(t *testing.T) {
	b := []float64{0.01, -0.02, 0.03, 0.01}
	r := []float64{0.02, -0.04, 0.06, 0.02}

	beta, defined := Beta(r, b)
	assert.True(t, defined)
	assert.InDelta(t, 2.0, beta, 1e-9)

	_, defined = Beta(r, []float64{0.01, 0.01, 0.01, 0.01})
	assert.False(t, defined)
}

func TestStreaks(t *testing.T) {
	r := []float64{0.01, 0.02, -0.01, 0.03, 0, -0.02, -0.01}
	assert.Equal(t, []int{2, 1}, streaks(r, func(v float64) bool { return v > 0 }))
	assert.Equal(t, []int{1, 2}, streaks(r, func(v float64) bool { return v < 0 }))
	assert.Nil(t, streaks(nil, func(v float64) bool { return v > 0 }))
}

func TestConcentration(t *testing.T) {
	equal := []float64{0.25, 0.25, 0.25, 0.25}
	assert.InDelta(t, 0.25, HHI(equal), 1e-12)
	assert.InDelta(t, 0.0, Gini(equal), 1e-12)
	assert.InDelta(t, math.Log(4), Entropy(equal), 1e-12)

	assert.InDelta(t, 0.25, Gini([]float64{0.75, 0.25}), 1e-12)
	assert.InDelta(t, 0.625, HHI([]float64{0.75, 0.25}), 1e-12)
	assert.InDelta(t, 1.0, HHI([]float64{1}), 1e-12)
}
