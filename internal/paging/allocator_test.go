package paging

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotalPages(t *testing.T) {
	for _, n := range []int{0, 1, 19, 20, 21, 39, 40, 41, 45, 100, 101} {
		t.Run(fmt.Sprintf("roster=%d", n), func(t *testing.T) {
			a := New(20)
			a.SetRoster(n)

			want := (n + 19) / 20
			assert.Equal(t, want, a.TotalPages())
		})
	}
}

func TestEmptyRoster(t *testing.T) {
	a := New(20)
	a.SetRoster(0)

	assert.Equal(t, 0, a.TotalPages())
	assert.Equal(t, 0, a.Current())
	assert.Empty(t, Page(a, []string{}))
	assert.False(t, a.Advance(1))
	assert.False(t, a.Advance(-1))
}

func TestAdvanceStaysInRange(t *testing.T) {
	a := New(20)
	a.SetRoster(45)

	deltas := []int{1, 1, 1, 5, -1, -10, 3, -2, 100, -100, 0}
	for _, d := range deltas {
		a.Advance(d)
		require.GreaterOrEqual(t, a.Current(), 0)
		require.LessOrEqual(t, a.Current(), a.TotalPages()-1)
	}
}

func TestAdvanceAtBoundaryIsNoop(t *testing.T) {
	a := New(20)
	a.SetRoster(45)

	assert.False(t, a.Advance(-1))
	assert.Equal(t, 0, a.Current())

	assert.True(t, a.Advance(1))
	assert.True(t, a.Advance(1))
	assert.Equal(t, 2, a.Current())

	assert.False(t, a.Advance(1))
	assert.Equal(t, 2, a.Current())
}

func TestAdvanceClampsLargeDelta(t *testing.T) {
	a := New(20)
	a.SetRoster(45)

	assert.True(t, a.Advance(7))
	assert.Equal(t, 2, a.Current())
	assert.True(t, a.Advance(-7))
	assert.Equal(t, 0, a.Current())

	// Extreme deltas clamp in their own direction instead of overflowing.
	require.True(t, a.GoTo(1))
	assert.True(t, a.Advance(math.MaxInt))
	assert.Equal(t, 2, a.Current())
	assert.False(t, a.Advance(math.MaxInt))
	assert.Equal(t, 2, a.Current())

	require.True(t, a.GoTo(1))
	assert.True(t, a.Advance(math.MinInt))
	assert.Equal(t, 0, a.Current())
	assert.False(t, a.Advance(math.MinInt))
	assert.Equal(t, 0, a.Current())

	empty := New(20)
	assert.False(t, empty.Advance(math.MaxInt))
	assert.False(t, empty.Advance(math.MinInt))
	assert.Equal(t, 0, empty.Current())
}

func TestPageSizes45(t *testing.T) {
	roster := make([]int, 45)
	for i := range roster {
		roster[i] = i
	}

	a := New(20)
	a.SetRoster(len(roster))
	assert.Equal(t, []int{20, 20, 5}, a.Sizes())

	a.GoTo(2)
	page := Page(a, roster)
	require.Len(t, page, 5)
	assert.Equal(t, 40, page[0])
	assert.Equal(t, 44, page[4])
}

func TestRosterShrinkClampsCurrent(t *testing.T) {
	a := New(20)
	a.SetRoster(45)
	a.GoTo(2)

	a.SetRoster(21)
	assert.Equal(t, 2, a.TotalPages())
	assert.Equal(t, 1, a.Current())

	a.SetRoster(0)
	assert.Equal(t, 0, a.Current())
}

func TestCapacityChangeClampsCurrent(t *testing.T) {
	a := New(4)
	a.SetRoster(20)
	a.GoTo(4)
	require.Equal(t, 4, a.Current())

	a.SetCapacity(20)
	assert.Equal(t, 1, a.TotalPages())
	assert.Equal(t, 0, a.Current())
}

func TestPageResyncsLength(t *testing.T) {
	a := New(20)
	a.SetRoster(45)
	a.GoTo(2)

	page := Page(a, make([]int, 30))
	assert.Len(t, page, 10)
	assert.Equal(t, 1, a.Current())
}
