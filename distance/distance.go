package distance

import "math"

// Func is a function type for distance calculation.
type Func func(a, b []float64) float64

// SquaredEuclidean calculates the sum of squared coordinate differences.
// Assumes vectors are the same length (caller's responsibility).
// Coordinates are visited in ascending index order.
func SquaredEuclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return sum
}

// Euclidean calculates the Euclidean (L2) distance between two vectors.
// NaN and Inf coordinates propagate per IEEE-754 arithmetic.
func Euclidean(a, b []float64) float64 {
	return math.Sqrt(SquaredEuclidean(a, b))
}

var _ Func = Euclidean
