package eval

import (
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/knn/codec"
)

// maxFirstMismatches bounds the mismatch rows listed in a Summary.
const maxFirstMismatches = 32

// Report scores predictions against true labels.
type Report struct {
	Rows     int
	Correct  int
	Accuracy float64
	// Confusion[t][p] counts rows with true label t predicted as p.
	Confusion [][]int

	truth      []*roaring.Bitmap
	predicted  []*roaring.Bitmap
	mismatches *roaring.Bitmap
}

// Evaluate builds a Report. Both label vectors must have the same length and
// hold labels in [0, classes).
func Evaluate(truth, predicted []int, classes int) (*Report, error) {
	if classes < 1 {
		return nil, fmt.Errorf("%w: classes must be positive", ErrInvalidInput)
	}
	if len(truth) != len(predicted) {
		return nil, fmt.Errorf("%w: %d true labels for %d predictions", ErrInvalidInput, len(truth), len(predicted))
	}
	if uint64(len(truth)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d rows exceed the bitmap range", ErrInvalidInput, len(truth))
	}

	r := &Report{
		Rows:       len(truth),
		Confusion:  make([][]int, classes),
		truth:      make([]*roaring.Bitmap, classes),
		predicted:  make([]*roaring.Bitmap, classes),
		mismatches: roaring.New(),
	}
	for c := range classes {
		r.Confusion[c] = make([]int, classes)
		r.truth[c] = roaring.New()
		r.predicted[c] = roaring.New()
	}

	for i, t := range truth {
		p := predicted[i]
		if t < 0 || t >= classes {
			return nil, fmt.Errorf("%w: true label %d at row %d outside [0, %d)", ErrInvalidInput, t, i, classes)
		}
		if p < 0 || p >= classes {
			return nil, fmt.Errorf("%w: predicted label %d at row %d outside [0, %d)", ErrInvalidInput, p, i, classes)
		}

		row := uint32(i)
		r.truth[t].Add(row)
		r.predicted[p].Add(row)
		r.Confusion[t][p]++
		if t == p {
			r.Correct++
		} else {
			r.mismatches.Add(row)
		}
	}

	if r.Rows > 0 {
		r.Accuracy = float64(r.Correct) / float64(r.Rows)
	}
	for _, b := range r.truth {
		b.RunOptimize()
	}
	for _, b := range r.predicted {
		b.RunOptimize()
	}
	return r, nil
}

// Classes returns the number of classes the report covers.
func (r *Report) Classes() int {
	return len(r.Confusion)
}

// PredictedRows returns the rows predicted as class.
func (r *Report) PredictedRows(class int) *roaring.Bitmap {
	return r.predicted[class].Clone()
}

// TrueRows returns the rows whose true label is class.
func (r *Report) TrueRows(class int) *roaring.Bitmap {
	return r.truth[class].Clone()
}

// MismatchRows returns the rows whose prediction differs from the true label.
func (r *Report) MismatchRows() *roaring.Bitmap {
	return r.mismatches.Clone()
}

// ClassSummary holds per-class scores.
type ClassSummary struct {
	Class     int     `json:"class"`
	Support   int     `json:"support"`
	Predicted int     `json:"predicted"`
	Correct   int     `json:"correct"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
}

// Summary is the serializable form of a Report.
type Summary struct {
	Rows            int            `json:"rows"`
	Correct         int            `json:"correct"`
	Accuracy        float64        `json:"accuracy"`
	Confusion       [][]int        `json:"confusion"`
	Classes         []ClassSummary `json:"classes"`
	Mismatches      int            `json:"mismatches"`
	FirstMismatches []uint32       `json:"first_mismatches,omitempty"`
}

// Summary computes per-class precision and recall.
func (r *Report) Summary() Summary {
	s := Summary{
		Rows:       r.Rows,
		Correct:    r.Correct,
		Accuracy:   r.Accuracy,
		Confusion:  r.Confusion,
		Classes:    make([]ClassSummary, len(r.Confusion)),
		Mismatches: int(r.mismatches.GetCardinality()),
	}

	for c := range r.Confusion {
		cs := ClassSummary{
			Class:     c,
			Support:   int(r.truth[c].GetCardinality()),
			Predicted: int(r.predicted[c].GetCardinality()),
			Correct:   int(roaring.And(r.truth[c], r.predicted[c]).GetCardinality()),
		}
		if cs.Predicted > 0 {
			cs.Precision = float64(cs.Correct) / float64(cs.Predicted)
		}
		if cs.Support > 0 {
			cs.Recall = float64(cs.Correct) / float64(cs.Support)
		}
		s.Classes[c] = cs
	}

	it := r.mismatches.Iterator()
	for it.HasNext() && len(s.FirstMismatches) < maxFirstMismatches {
		s.FirstMismatches = append(s.FirstMismatches, it.Next())
	}
	return s
}

// MarshalJSON encodes the report's Summary.
func (r *Report) MarshalJSON() ([]byte, error) {
	return codec.Default.Marshal(r.Summary())
}
