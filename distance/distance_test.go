package distance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSquaredEuclidean(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float64
		expected float64
	}{
		{"Simple", []float64{1, 2, 3}, []float64{4, 5, 6}, 27},
		{"Zero", []float64{0, 0, 0}, []float64{0, 0, 0}, 0},
		{"Identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 0},
		{"Mixed", []float64{1, -1}, []float64{-1, 1}, 8},
		{"Empty", []float64{}, []float64{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SquaredEuclidean(tt.a, tt.b))
		})
	}
}

func TestEuclidean(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float64
		expected float64
	}{
		{"PythagoreanTriple", []float64{0, 0}, []float64{3, 4}, 5},
		{"OneDimension", []float64{0.4}, []float64{2}, 1.6},
		{"Symmetric", []float64{3, 4}, []float64{0, 0}, 5},
		{"Empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Euclidean(tt.a, tt.b), 1e-12)
		})
	}
}

func TestEuclidean_NonFinite(t *testing.T) {
	assert.True(t, math.IsNaN(Euclidean([]float64{math.NaN(), 0}, []float64{0, 0})))
	assert.True(t, math.IsInf(Euclidean([]float64{math.Inf(1)}, []float64{0}), 1))
	// Inf - Inf is NaN.
	assert.True(t, math.IsNaN(Euclidean([]float64{math.Inf(1)}, []float64{math.Inf(1)})))
}

func TestEuclidean_Deterministic(t *testing.T) {
	a := make([]float64, 257)
	b := make([]float64, 257)
	for i := range a {
		a[i] = float64(i) * 0.1
		b[i] = float64(len(b)-i) * 0.3
	}

	first := Euclidean(a, b)
	for range 10 {
		assert.Equal(t, math.Float64bits(first), math.Float64bits(Euclidean(a, b)))
	}
}
