package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadCSV parses one sample per record. If labelled is true the last column
// of every record is an integer class label.
func ReadCSV(r io.Reader, labelled bool) (Matrix, Labels, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	var (
		m      Matrix
		labels Labels
	)

	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Matrix{}, nil, fmt.Errorf("dataset: csv: %w", err)
		}

		features := rec
		if labelled {
			if len(rec) < 2 {
				return Matrix{}, nil, fmt.Errorf("%w: csv record %d has no feature columns", ErrShape, line)
			}
			features = rec[:len(rec)-1]
			label, err := strconv.Atoi(strings.TrimSpace(rec[len(rec)-1]))
			if err != nil {
				return Matrix{}, nil, fmt.Errorf("dataset: csv record %d: label: %w", line, err)
			}
			labels = append(labels, label)
		}

		if m.Rows == 0 {
			m.Dim = len(features)
		}
		for col, field := range features {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return Matrix{}, nil, fmt.Errorf("dataset: csv record %d column %d: %w", line, col, err)
			}
			m.Data = append(m.Data, v)
		}
		m.Rows++
	}

	return m, labels, nil
}

// WriteCSV writes m, with labels as the last column when labels is non-nil.
func WriteCSV(w io.Writer, m Matrix, labels Labels) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if labels != nil && len(labels) != m.Rows {
		return fmt.Errorf("%w: %d labels for %d rows", ErrShape, len(labels), m.Rows)
	}

	cw := csv.NewWriter(w)
	rec := make([]string, 0, m.Dim+1)
	for i := range m.Rows {
		rec = rec[:0]
		for _, v := range m.Row(i) {
			rec = append(rec, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if labels != nil {
			rec = append(rec, strconv.Itoa(labels[i]))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
