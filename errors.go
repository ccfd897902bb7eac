package knn

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is the umbrella for every error reported before a
	// classification starts. All configuration errors match it via errors.Is.
	ErrInvalidConfig = errors.New("knn: invalid configuration")

	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = fmt.Errorf("%w: k must be positive", ErrInvalidConfig)

	// ErrInvalidClasses is returned when the class count is not positive.
	ErrInvalidClasses = fmt.Errorf("%w: classes must be positive", ErrInvalidConfig)

	// ErrInvalidDimension is returned when the configured dimension is negative.
	ErrInvalidDimension = fmt.Errorf("%w: dimension must not be negative", ErrInvalidConfig)
)

// ErrTooFewTrainingPoints indicates that k exceeds the number of training points.
type ErrTooFewTrainingPoints struct {
	K int
	N int
}

func (e *ErrTooFewTrainingPoints) Error() string {
	return fmt.Sprintf("knn: k=%d exceeds %d training points", e.K, e.N)
}

func (e *ErrTooFewTrainingPoints) Is(target error) bool { return target == ErrInvalidConfig }

// ErrDimensionMismatch indicates a feature vector dimensionality mismatch.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("knn: dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Is(target error) bool { return target == ErrInvalidConfig }

// ErrLabelCountMismatch indicates that the label vector does not cover the training rows.
type ErrLabelCountMismatch struct {
	Rows   int
	Labels int
}

func (e *ErrLabelCountMismatch) Error() string {
	return fmt.Sprintf("knn: %d labels for %d training rows", e.Labels, e.Rows)
}

func (e *ErrLabelCountMismatch) Is(target error) bool { return target == ErrInvalidConfig }

// ErrLabelOutOfRange indicates a training label outside [0, Classes).
//
// Labels are validated once when a model is fitted; the classification loop
// relies on that and never re-checks them.
type ErrLabelOutOfRange struct {
	Index   int
	Label   int
	Classes int
}

func (e *ErrLabelOutOfRange) Error() string {
	return fmt.Sprintf("knn: label %d at index %d is outside [0, %d)", e.Label, e.Index, e.Classes)
}
