package dataset

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	in := `# x, y, label
0, 0.5, 1
1.5, 2, 0
`
	m, labels, err := ReadCSV(strings.NewReader(in), true)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Rows)
	assert.Equal(t, 2, m.Dim)
	assert.Equal(t, []float64{0, 0.5, 1.5, 2}, m.Data)
	assert.Equal(t, Labels{1, 0}, labels)
}

func TestReadCSV_Unlabelled(t *testing.T) {
	m, labels, err := ReadCSV(strings.NewReader("1,2,3\n4,5,6\n"), false)
	require.NoError(t, err)
	assert.Equal(t, 3, m.Dim)
	assert.Nil(t, labels)
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		labelled bool
	}{
		{"ragged", "1,2\n3\n", false},
		{"not a number", "1,x\n", false},
		{"bad label", "1,2,a\n", true},
		{"label only", "1\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ReadCSV(strings.NewReader(tt.in), tt.labelled)
			assert.Error(t, err)
		})
	}
}

func TestWriteCSV(t *testing.T) {
	m, err := FromRows([][]float64{{0.1, 2}, {3, 1e-9}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, m, Labels{2, 0}))
	assert.Equal(t, "0.1,2,2\n3,1e-09,0\n", buf.String())

	got, labels, err := ReadCSV(&buf, true)
	require.NoError(t, err)
	assert.Equal(t, m, got)
	assert.Equal(t, Labels{2, 0}, labels)

	assert.ErrorIs(t, WriteCSV(&buf, m, Labels{1}), ErrShape)
}
