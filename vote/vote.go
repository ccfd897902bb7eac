// Package vote implements the majority vote over a test point's K nearest neighbors.
package vote

import "github.com/hupe1980/knn/queue"

// Tally counts neighbor labels per class. Index i holds the votes for label i.
//
// A Tally is reused across test points by the goroutine that owns it; call
// Reset before counting the next point.
type Tally []int

// NewTally creates a zeroed tally for labels in [0, classes).
func NewTally(classes int) Tally {
	return make(Tally, classes)
}

// Reset zeroes all counts.
func (t Tally) Reset() {
	clear(t)
}

// Count adds one vote per neighbor. Labels must lie in [0, len(t)).
func (t Tally) Count(neighbors []queue.Neighbor) {
	for _, n := range neighbors {
		t[n.Label]++
	}
}

// Winner returns the label with the highest count. Labels are scanned in
// ascending order and only a strictly greater count replaces the current
// leader, so ties resolve to the smallest label.
func (t Tally) Winner() int {
	best, bestCount := 0, 0
	for label, c := range t {
		if c > bestCount {
			best, bestCount = label, c
		}
	}
	return best
}

// Majority counts neighbors into a fresh tally and returns the winning label.
func Majority(neighbors []queue.Neighbor, classes int) int {
	t := NewTally(classes)
	t.Count(neighbors)
	return t.Winner()
}
