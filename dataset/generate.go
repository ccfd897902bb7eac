package dataset

import (
	"fmt"
	"math/rand"
)

// DefaultSeed is the seed used by the reference benchmark data generator.
const DefaultSeed = 777777

// Set is a complete labelled train/test split.
type Set struct {
	Train       Matrix
	TrainLabels Labels
	Test        Matrix
	TestLabels  Labels
	Classes     int
}

// GenerateConfig controls synthetic data generation.
type GenerateConfig struct {
	Train   int   // number of training rows
	Test    int   // number of test rows
	Dim     int   // features per row
	Classes int   // number of classes
	Seed    int64 // RNG seed
}

// DefaultGenerateConfig returns the benchmark defaults.
func DefaultGenerateConfig() GenerateConfig {
	return GenerateConfig{
		Train:   1024,
		Test:    256,
		Dim:     16,
		Classes: 3,
		Seed:    DefaultSeed,
	}
}

// Generate produces uniformly distributed features in [0, 1) and uniformly
// distributed labels in [0, Classes). The same config always yields the same set.
func Generate(cfg GenerateConfig) (*Set, error) {
	if cfg.Train < 0 || cfg.Test < 0 {
		return nil, fmt.Errorf("%w: negative row count", ErrShape)
	}
	if cfg.Dim < 1 {
		return nil, fmt.Errorf("%w: dimension must be >= 1, got %d", ErrShape, cfg.Dim)
	}
	if cfg.Classes < 1 {
		return nil, fmt.Errorf("dataset: classes must be >= 1, got %d", cfg.Classes)
	}

	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // reproducible benchmark data

	set := &Set{
		Train:       NewMatrix(cfg.Train, cfg.Dim),
		TrainLabels: make(Labels, cfg.Train),
		Test:        NewMatrix(cfg.Test, cfg.Dim),
		TestLabels:  make(Labels, cfg.Test),
		Classes:     cfg.Classes,
	}

	for i := range set.Train.Data {
		set.Train.Data[i] = rng.Float64()
	}
	for i := range set.TrainLabels {
		set.TrainLabels[i] = rng.Intn(cfg.Classes)
	}
	for i := range set.Test.Data {
		set.Test.Data[i] = rng.Float64()
	}
	for i := range set.TestLabels {
		set.TestLabels[i] = rng.Intn(cfg.Classes)
	}

	return set, nil
}
