// Package paging splits the camera roster into fixed-size pages.
package paging

import "math"

// Allocator tracks the page count and current page index for a roster of a
// given length. It holds no camera data itself; Page slices whatever roster
// snapshot the caller passes in.
//
// Allocator is not safe for concurrent use; the wall controller owns it.
type Allocator struct {
	capacity int
	length   int
	total    int
	current  int
}

// New creates an allocator with the given page capacity (minimum 1).
func New(capacity int) *Allocator {
	a := &Allocator{}
	a.SetCapacity(capacity)
	return a
}

// SetRoster records a new roster length and clamps the current page.
func (a *Allocator) SetRoster(length int) {
	if length < 0 {
		length = 0
	}
	a.length = length
	a.recount()
}

// SetCapacity changes the page size and clamps the current page.
func (a *Allocator) SetCapacity(capacity int) {
	if capacity < 1 {
		capacity = 1
	}
	a.capacity = capacity
	a.recount()
}

func (a *Allocator) recount() {
	a.total = (a.length + a.capacity - 1) / a.capacity
	a.current = a.clamp(a.current)
}

func (a *Allocator) clamp(i int) int {
	if a.total == 0 || i < 0 {
		return 0
	}
	if i > a.total-1 {
		return a.total - 1
	}
	return i
}

// Advance moves the current page by delta, clamped into [0, TotalPages-1].
// It reports whether the page changed; a move that is already at the
// boundary is a silent no-op.
func (a *Allocator) Advance(delta int) bool {
	switch {
	case delta > 0 && a.current > math.MaxInt-delta:
		return a.GoTo(a.total - 1)
	case delta < 0 && a.current < math.MinInt-delta:
		return a.GoTo(0)
	}
	return a.GoTo(a.current + delta)
}

// GoTo jumps to page i, clamped. It reports whether the page changed.
func (a *Allocator) GoTo(i int) bool {
	next := a.clamp(i)
	if next == a.current {
		return false
	}
	a.current = next
	return true
}

// Capacity returns the page size.
func (a *Allocator) Capacity() int { return a.capacity }

// Current returns the zero-based current page index.
func (a *Allocator) Current() int { return a.current }

// TotalPages returns ceil(length / capacity); 0 for an empty roster.
func (a *Allocator) TotalPages() int { return a.total }

// HasPrev reports whether Advance(-1) would move.
func (a *Allocator) HasPrev() bool { return a.current > 0 }

// HasNext reports whether Advance(+1) would move.
func (a *Allocator) HasNext() bool { return a.current < a.total-1 }

// Bounds returns the half-open roster range [start, end) of the current page.
func (a *Allocator) Bounds() (start, end int) {
	if a.total == 0 {
		return 0, 0
	}
	start = a.current * a.capacity
	end = start + a.capacity
	if end > a.length {
		end = a.length
	}
	return start, end
}

// Page returns the current page's cameras from roster. The roster length is
// re-synced first, so a stale SetRoster never slices out of range.
func Page[T any](a *Allocator, roster []T) []T {
	if len(roster) != a.length {
		a.SetRoster(len(roster))
	}
	start, end := a.Bounds()
	return roster[start:end]
}

// Sizes returns the length of every page, in order.
func (a *Allocator) Sizes() []int {
	sizes := make([]int, a.total)
	for i := range sizes {
		n := a.length - i*a.capacity
		if n > a.capacity {
			n = a.capacity
		}
		sizes[i] = n
	}
	return sizes
}
