package eval

import (
	"errors"
	"fmt"
	"slices"

	"github.com/hupe1980/knn/dataset"
	"github.com/hupe1980/knn/distance"
	"github.com/hupe1980/knn/queue"
)

// ErrInvalidInput is returned for inputs the reference classifier cannot process.
var ErrInvalidInput = errors.New("eval: invalid input")

// ReferenceNeighbors returns, for every test row, the first k entries of a
// stable ascending sort of the distances to all training rows. For finite
// distances this equals the neighbor queue kept by the incremental classifier.
func ReferenceNeighbors(train dataset.Matrix, labels dataset.Labels, test dataset.Matrix, k int) ([][]queue.Neighbor, error) {
	if err := checkInput(train, labels, test, k); err != nil {
		return nil, err
	}

	out := make([][]queue.Neighbor, test.Rows)
	all := make([]queue.Neighbor, train.Rows)
	for row := range test.Rows {
		x := test.Row(row)
		for i := range train.Rows {
			all[i] = queue.Neighbor{
				Distance: distance.Euclidean(x, train.Row(i)),
				Label:    labels[i],
			}
		}
		// NaN distances rank last.
		slices.SortStableFunc(all, compareDistance)
		out[row] = slices.Clone(all[:k])
	}
	return out, nil
}

// Reference classifies every test row by majority vote over ReferenceNeighbors.
// Vote ties go to the smallest label.
func Reference(train dataset.Matrix, labels dataset.Labels, test dataset.Matrix, k, classes int) ([]int, error) {
	if classes < 1 {
		return nil, fmt.Errorf("%w: classes must be positive", ErrInvalidInput)
	}
	if i := labels.Check(classes); i >= 0 {
		return nil, fmt.Errorf("%w: label %d at index %d outside [0, %d)", ErrInvalidInput, labels[i], i, classes)
	}

	neighbors, err := ReferenceNeighbors(train, labels, test, k)
	if err != nil {
		return nil, err
	}

	out := make([]int, len(neighbors))
	counts := make(map[int]int, classes)
	for row, ns := range neighbors {
		clear(counts)
		for _, n := range ns {
			counts[n.Label]++
		}
		best := 0
		for label := classes - 1; label >= 0; label-- {
			if counts[label] >= counts[best] {
				best = label
			}
		}
		out[row] = best
	}
	return out, nil
}

func compareDistance(a, b queue.Neighbor) int {
	aNaN, bNaN := a.Distance != a.Distance, b.Distance != b.Distance
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return 1
	case bNaN:
		return -1
	case a.Distance < b.Distance:
		return -1
	case a.Distance > b.Distance:
		return 1
	default:
		return 0
	}
}

func checkInput(train dataset.Matrix, labels dataset.Labels, test dataset.Matrix, k int) error {
	if err := train.Validate(); err != nil {
		return fmt.Errorf("%w: train: %w", ErrInvalidInput, err)
	}
	if err := test.Validate(); err != nil {
		return fmt.Errorf("%w: test: %w", ErrInvalidInput, err)
	}
	if len(labels) != train.Rows {
		return fmt.Errorf("%w: %d labels for %d training rows", ErrInvalidInput, len(labels), train.Rows)
	}
	if k < 1 || k > train.Rows {
		return fmt.Errorf("%w: k=%d with %d training rows", ErrInvalidInput, k, train.Rows)
	}
	if test.Rows > 0 && test.Dim != train.Dim {
		return fmt.Errorf("%w: test dimension %d, train dimension %d", ErrInvalidInput, test.Dim, train.Dim)
	}
	return nil
}
