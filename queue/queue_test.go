package queue

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func distances(items []Neighbor) []float64 {
	out := make([]float64, len(items))
	for i, n := range items {
		out[i] = n.Distance
	}
	return out
}

func TestTopK_FillPhase(t *testing.T) {
	q := New(4)
	assert.Equal(t, 4, q.Cap())
	assert.Equal(t, 0, q.Len())
	assert.False(t, q.Full())

	_, ok := q.Worst()
	assert.False(t, ok)

	for _, d := range []float64{3, 1, 4, 2} {
		assert.True(t, q.Push(Neighbor{Distance: d}))
	}

	assert.True(t, q.Full())
	assert.Equal(t, []float64{1, 2, 3, 4}, distances(q.Items()))

	worst, ok := q.Worst()
	require.True(t, ok)
	assert.Equal(t, 4.0, worst.Distance)
}

func TestTopK_StreamPhase(t *testing.T) {
	q := New(3)
	for _, d := range []float64{5, 6, 7} {
		q.Push(Neighbor{Distance: d})
	}

	t.Run("Farther", func(t *testing.T) {
		assert.False(t, q.Push(Neighbor{Distance: 8}))
		assert.Equal(t, []float64{5, 6, 7}, distances(q.Items()))
	})

	t.Run("EqualToWorst", func(t *testing.T) {
		assert.False(t, q.Push(Neighbor{Distance: 7, Label: 9}))
		assert.Equal(t, []float64{5, 6, 7}, distances(q.Items()))
		assert.Equal(t, 0, q.Items()[2].Label)
	})

	t.Run("Closest", func(t *testing.T) {
		assert.True(t, q.Push(Neighbor{Distance: 1}))
		assert.Equal(t, []float64{1, 5, 6}, distances(q.Items()))
	})

	t.Run("Middle", func(t *testing.T) {
		assert.True(t, q.Push(Neighbor{Distance: 5.5}))
		assert.Equal(t, []float64{1, 5, 5.5}, distances(q.Items()))
		assert.Equal(t, 3, q.Len())
	})
}

func TestTopK_StableTies(t *testing.T) {
	q := New(3)
	q.Push(Neighbor{Distance: 2, Label: 0})
	q.Push(Neighbor{Distance: 1, Label: 1})
	q.Push(Neighbor{Distance: 2, Label: 2})

	assert.Equal(t, []Neighbor{{1, 1}, {2, 0}, {2, 2}}, q.Items())

	// A later equal-distance entry lands behind the existing ones and
	// evicts the most recently admitted of the tied worst entries.
	assert.True(t, q.Push(Neighbor{Distance: 1, Label: 3}))
	assert.Equal(t, []Neighbor{{1, 1}, {1, 3}, {2, 0}}, q.Items())
}

func TestTopK_NaN(t *testing.T) {
	q := New(2)
	q.Push(Neighbor{Distance: 1})
	q.Push(Neighbor{Distance: 2})

	assert.False(t, q.Push(Neighbor{Distance: math.NaN()}))
	assert.Equal(t, []float64{1, 2}, distances(q.Items()))

	// +Inf is a regular (largest) value.
	assert.False(t, q.Push(Neighbor{Distance: math.Inf(1)}))
}

func TestTopK_Reset(t *testing.T) {
	q := New(2)
	q.Push(Neighbor{Distance: 3})
	q.Push(Neighbor{Distance: 4})
	q.Reset()

	assert.Equal(t, 0, q.Len())
	assert.Equal(t, 2, q.Cap())

	q.Push(Neighbor{Distance: 9})
	assert.Equal(t, []float64{9}, distances(q.Items()))
}

func TestTopK_NewWithBuffer(t *testing.T) {
	slab := make([]Neighbor, 6)
	a := NewWithBuffer(slab[0:3])
	b := NewWithBuffer(slab[3:6])

	for i := range 5 {
		a.Push(Neighbor{Distance: float64(10 - i), Label: 1})
		b.Push(Neighbor{Distance: float64(i), Label: 2})
	}

	assert.Equal(t, []float64{6, 7, 8}, distances(a.Items()))
	assert.Equal(t, []float64{0, 1, 2}, distances(b.Items()))
	for _, n := range a.Items() {
		assert.Equal(t, 1, n.Label)
	}
	for _, n := range b.Items() {
		assert.Equal(t, 2, n.Label)
	}
}

func TestTopK_ZeroCapacity(t *testing.T) {
	q := New(0)
	assert.True(t, q.Full())
	assert.False(t, q.Push(Neighbor{Distance: 1}))
}

func TestTopK_MatchesStableSort(t *testing.T) {
	rng := rand.New(rand.NewSource(4711))

	for trial := range 50 {
		n := 1 + rng.Intn(200)
		k := 1 + rng.Intn(n)

		all := make([]Neighbor, n)
		for i := range all {
			// Coarse values force plenty of ties.
			all[i] = Neighbor{Distance: float64(rng.Intn(20)), Label: i}
		}

		q := New(k)
		for _, nb := range all {
			q.Push(nb)
		}

		want := append([]Neighbor(nil), all...)
		sort.SliceStable(want, func(i, j int) bool { return want[i].Distance < want[j].Distance })

		require.Equal(t, want[:k], q.Items(), "trial %d (n=%d, k=%d)", trial, n, k)
	}
}

func BenchmarkTopK_Push(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	values := make([]Neighbor, 4096)
	for i := range values {
		values[i] = Neighbor{Distance: rng.Float64(), Label: i % 3}
	}
	q := New(16)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q.Reset()
		for _, v := range values {
			q.Push(v)
		}
	}
}
