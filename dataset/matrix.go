package dataset

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrShape is returned when a matrix's dimensions disagree with its data.
	ErrShape = errors.New("dataset: invalid shape")

	// ErrCorrupt is returned when an encoded blob fails validation.
	ErrCorrupt = errors.New("dataset: corrupt data")
)

// Matrix is a dense row-major matrix of feature vectors.
type Matrix struct {
	Rows int
	Dim  int
	Data []float64
}

// NewMatrix allocates a zeroed rows×dim matrix.
func NewMatrix(rows, dim int) Matrix {
	return Matrix{
		Rows: rows,
		Dim:  dim,
		Data: make([]float64, rows*dim),
	}
}

// FromRows copies rows into a new matrix. All rows must have the same length.
func FromRows(rows [][]float64) (Matrix, error) {
	if len(rows) == 0 {
		return Matrix{}, nil
	}

	dim := len(rows[0])
	m := NewMatrix(len(rows), dim)
	for i, r := range rows {
		if len(r) != dim {
			return Matrix{}, fmt.Errorf("%w: row %d has %d columns, want %d", ErrShape, i, len(r), dim)
		}
		copy(m.Data[i*dim:], r)
	}
	return m, nil
}

// Row returns a view of row i. The returned slice aliases the matrix.
func (m Matrix) Row(i int) []float64 {
	off := i * m.Dim
	return m.Data[off : off+m.Dim : off+m.Dim]
}

// Validate checks that the matrix is well formed.
func (m Matrix) Validate() error {
	if m.Rows < 0 || m.Dim < 0 {
		return fmt.Errorf("%w: negative dimensions %dx%d", ErrShape, m.Rows, m.Dim)
	}
	if m.Rows > 0 && m.Dim == 0 {
		return fmt.Errorf("%w: %d rows of dimension 0", ErrShape, m.Rows)
	}
	if m.Dim > 0 && m.Rows > math.MaxInt/m.Dim {
		return fmt.Errorf("%w: %dx%d matrix is too large", ErrShape, m.Rows, m.Dim)
	}
	if len(m.Data) != m.Rows*m.Dim {
		return fmt.Errorf("%w: %dx%d matrix backed by %d values", ErrShape, m.Rows, m.Dim, len(m.Data))
	}
	return nil
}

// SizeBytes returns the in-memory size of the matrix data.
func (m Matrix) SizeBytes() int64 {
	return int64(len(m.Data)) * 8
}

// Labels is a vector of class labels, one per matrix row.
type Labels []int

// Check returns the index of the first label outside [0, classes), or -1.
func (l Labels) Check(classes int) int {
	for i, v := range l {
		if v < 0 || v >= classes {
			return i
		}
	}
	return -1
}
