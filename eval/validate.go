package eval

import (
	"fmt"
)

// MismatchError reports predictions that differ from a reference.
type MismatchError struct {
	Rows  int // rows compared
	Count int // rows that differ
	First int // index of the first differing row
	Want  int // reference label at First
	Got   int // predicted label at First

	LenWant int
	LenGot  int
}

func (e *MismatchError) Error() string {
	if e.LenWant != e.LenGot {
		return fmt.Sprintf("eval: %d predictions, reference has %d", e.LenGot, e.LenWant)
	}
	return fmt.Sprintf("eval: %d of %d predictions differ from reference; first at row %d: want %d, got %d",
		e.Count, e.Rows, e.First, e.Want, e.Got)
}

// Validate compares predictions against reference output row by row.
// It returns nil if they are identical and a *MismatchError otherwise.
func Validate(want, got []int) error {
	if len(want) != len(got) {
		return &MismatchError{LenWant: len(want), LenGot: len(got), First: -1}
	}

	var e *MismatchError
	for i := range want {
		if want[i] == got[i] {
			continue
		}
		if e == nil {
			e = &MismatchError{
				Rows:    len(want),
				First:   i,
				Want:    want[i],
				Got:     got[i],
				LenWant: len(want),
				LenGot:  len(got),
			}
		}
		e.Count++
	}
	if e == nil {
		return nil
	}
	return e
}
