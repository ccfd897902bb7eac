// Package queue implements the bounded, ascending top-K neighbor list kept
// for a single test point.
//
// The list is filled by insertion sort from the first K training points and
// then updated in a streaming fashion: a candidate is admitted only when it
// is strictly closer than the current worst entry. Both the admission test
// and the insertion shift use strict comparisons, which makes the structure
// a stable bounded min-list: among equal distances the entry encountered
// first wins and keeps its relative position.
package queue

// Neighbor is a candidate nearest neighbor.
type Neighbor struct {
	Distance float64 // Distance to the test point.
	Label    int     // Class label of the training point.
}

// TopK holds the K smallest neighbors seen so far in ascending distance order.
//
// A TopK is owned by exactly one goroutine at a time.
type TopK struct {
	items []Neighbor // len(items) grows to cap during the fill phase and stays there
}

// New creates an empty TopK with capacity k.
func New(k int) *TopK {
	return &TopK{items: make([]Neighbor, 0, k)}
}

// NewWithBuffer creates an empty TopK backed by buf. The capacity is len(buf).
// The caller must not share buf with another TopK.
func NewWithBuffer(buf []Neighbor) *TopK {
	return &TopK{items: buf[:0:len(buf)]}
}

// Len returns the number of neighbors currently held.
func (q *TopK) Len() int { return len(q.items) }

// Cap returns K.
func (q *TopK) Cap() int { return cap(q.items) }

// Full reports whether the fill phase is complete.
func (q *TopK) Full() bool { return len(q.items) == cap(q.items) }

// Worst returns the entry with the largest distance (the last slot).
func (q *TopK) Worst() (Neighbor, bool) {
	if len(q.items) == 0 {
		return Neighbor{}, false
	}
	return q.items[len(q.items)-1], true
}

// Items returns the neighbors in ascending distance order.
// The slice aliases internal storage and is valid until the next Push or Reset.
func (q *TopK) Items() []Neighbor { return q.items }

// Reset empties the list for reuse with the next test point.
func (q *TopK) Reset() {
	q.items = q.items[:0]
}

// Push offers a neighbor to the list and reports whether it was admitted.
//
// While the list is not full every neighbor is admitted (fill phase).
// Afterwards a neighbor is admitted only if its distance is strictly less
// than the current worst; it then replaces the worst entry. NaN distances
// never compare less, so they are never admitted once the list is full.
func (q *TopK) Push(n Neighbor) bool {
	if len(q.items) < cap(q.items) {
		q.items = append(q.items, n)
		q.shift(len(q.items) - 1)
		return true
	}
	last := len(q.items) - 1
	if last < 0 || !(n.Distance < q.items[last].Distance) {
		return false
	}
	q.items[last] = n
	q.shift(last)
	return true
}

// shift moves the entry at index i left while its predecessor is strictly farther.
func (q *TopK) shift(i int) {
	n := q.items[i]
	for i > 0 && n.Distance < q.items[i-1].Distance {
		q.items[i] = q.items[i-1]
		i--
	}
	q.items[i] = n
}
