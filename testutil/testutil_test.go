package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniformMatrix(t *testing.T) {
	rng := NewRNG(4711)

	m := rng.UniformMatrix(8, 32)

	require.NoError(t, m.Validate())
	assert.Equal(t, 8, m.Rows)
	assert.Equal(t, 32, m.Dim)
	for _, v := range m.Data {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}

func TestIntegerMatrix(t *testing.T) {
	rng := NewRNG(4711)

	m := rng.IntegerMatrix(50, 3, 4)

	require.NoError(t, m.Validate())
	for _, v := range m.Data {
		assert.Contains(t, []float64{0, 1, 2, 3}, v)
	}
}

func TestLabels(t *testing.T) {
	rng := NewRNG(4711)

	labels := rng.Labels(100, 3)

	assert.Len(t, labels, 100)
	assert.Equal(t, -1, labels.Check(3))
}

func TestClusteredMatrix(t *testing.T) {
	rng := NewRNG(4711)

	m, labels := rng.ClusteredMatrix(30, 4, 3, 0.1)

	require.NoError(t, m.Validate())
	assert.Equal(t, 30, m.Rows)
	assert.Len(t, labels, 30)
	for i, l := range labels {
		assert.Equal(t, i%3, l)
	}
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	m1 := rng.UniformMatrix(1, 10)

	rng.Reset()
	m2 := rng.UniformMatrix(1, 10)

	assert.Equal(t, m1, m2)
	assert.Equal(t, int64(4711), rng.Seed())
}

func TestPerm(t *testing.T) {
	rng := NewRNG(1)

	p := rng.Perm(10)

	assert.ElementsMatch(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, p)
}
