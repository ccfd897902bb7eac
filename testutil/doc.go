// Package testutil provides testing utilities for knn.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded, goroutine-safe RNG and generators for feature
// matrices and label vectors.
//
// # Random Data Generation
//
//	rng := testutil.NewRNG(seed)
//	train := rng.UniformMatrix(1000, 16)      // uniform [0, 1)
//	labels := rng.Labels(1000, 3)             // uniform in [0, 3)
//	grid := rng.IntegerMatrix(100, 2, 4)      // coordinates in {0..3}, many exact ties
//	x, y := rng.ClusteredMatrix(300, 8, 3, 0.05) // labels follow cluster membership
package testutil
