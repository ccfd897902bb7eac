package testutil

import (
	"math/rand"
	"sync"

	"github.com/hupe1980/knn/dataset"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), //nolint:gosec // test data
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Perm returns a pseudo-random permutation of [0,n).
func (r *RNG) Perm(n int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Perm(n)
}

// FillUniform fills dst with random values in range [0, 1).
// Locks only once per call (preferred over calling Float64 in a loop).
func (r *RNG) FillUniform(dst []float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = r.rand.Float64()
	}
}

// UniformMatrix generates a rows×dim matrix with values in [0, 1).
func (r *RNG) UniformMatrix(rows, dim int) dataset.Matrix {
	m := dataset.NewMatrix(rows, dim)
	r.FillUniform(m.Data)
	return m
}

// IntegerMatrix generates a rows×dim matrix with integer coordinates in
// [0, maxVal). Small maxVal values produce many exactly equal distances.
func (r *RNG) IntegerMatrix(rows, dim, maxVal int) dataset.Matrix {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := dataset.NewMatrix(rows, dim)
	for i := range m.Data {
		m.Data[i] = float64(r.rand.Intn(maxVal))
	}
	return m
}

// Labels generates n labels uniformly distributed in [0, classes).
func (r *RNG) Labels(n, classes int) dataset.Labels {
	r.mu.Lock()
	defer r.mu.Unlock()

	labels := make(dataset.Labels, n)
	for i := range labels {
		labels[i] = r.rand.Intn(classes)
	}
	return labels
}

// ClusteredMatrix generates rows around one random centroid per class.
// Row i belongs to class i%classes and is its centroid plus Gaussian noise
// scaled by spread.
func (r *RNG) ClusteredMatrix(rows, dim, classes int, spread float64) (dataset.Matrix, dataset.Labels) {
	centroids := r.UniformMatrix(classes, dim)

	r.mu.Lock()
	defer r.mu.Unlock()

	m := dataset.NewMatrix(rows, dim)
	labels := make(dataset.Labels, rows)
	for i := range rows {
		c := i % classes
		labels[i] = c
		row := m.Row(i)
		for j, v := range centroids.Row(c) {
			row[j] = v + r.rand.NormFloat64()*spread
		}
	}
	return m, labels
}
