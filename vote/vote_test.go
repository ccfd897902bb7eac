package vote

import (
	"math/rand"
	"testing"

	"github.com/hupe1980/knn/queue"
	"github.com/stretchr/testify/assert"
)

func neighbors(labels ...int) []queue.Neighbor {
	out := make([]queue.Neighbor, len(labels))
	for i, l := range labels {
		out[i] = queue.Neighbor{Distance: float64(i), Label: l}
	}
	return out
}

func TestMajority(t *testing.T) {
	tests := []struct {
		name     string
		labels   []int
		classes  int
		expected int
	}{
		{"Single", []int{2}, 3, 2},
		{"ClearMajority", []int{0, 0, 1}, 2, 0},
		{"MajorityLast", []int{1, 2, 2, 2, 0}, 3, 2},
		{"TieSmallestWins", []int{2, 1, 2, 1}, 3, 1},
		{"ThreeWayTie", []int{2, 1, 0}, 3, 0},
		{"UnusedClasses", []int{4, 4, 3}, 8, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Majority(neighbors(tt.labels...), tt.classes))
		})
	}
}

func TestTally(t *testing.T) {
	tally := NewTally(3)
	tally.Count(neighbors(0, 2, 2))
	assert.Equal(t, Tally{1, 0, 2}, tally)
	assert.Equal(t, 2, tally.Winner())

	tally.Reset()
	assert.Equal(t, Tally{0, 0, 0}, tally)

	tally.Count(neighbors(1))
	assert.Equal(t, 1, tally.Winner())
}

func TestMajority_PermutationInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for range 100 {
		k := 1 + rng.Intn(15)
		classes := 1 + rng.Intn(5)
		labels := make([]int, k)
		for i := range labels {
			labels[i] = rng.Intn(classes)
		}

		ns := neighbors(labels...)
		want := Majority(ns, classes)

		rng.Shuffle(len(ns), func(i, j int) { ns[i], ns[j] = ns[j], ns[i] })
		assert.Equal(t, want, Majority(ns, classes))
	}
}
