package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func TestComputeWithPagination(t *testing.T) {
	g, err := Compute(Input{
		ViewportWidth:        1200,
		ViewportHeight:       800,
		ChromeHeight:         56,
		TotalPages:           2,
		PaginationUnitHeight: 48,
		Columns:              4,
		Rows:                 5,
	})
	require.NoError(t, err)

	assert.InDelta(t, 48.0, g.PaginationHeight, eps)
	assert.InDelta(t, 696.0, g.AvailableHeight, eps)
	assert.InDelta(t, 139.2, g.CellHeight, eps)
	assert.InDelta(t, 300.0, g.CellWidth, eps)
	assert.InDelta(t, 300.0/139.2, g.AspectRatio, eps)
}

func TestPaginationIgnoredForSinglePage(t *testing.T) {
	for _, unit := range []float64{0, 48, 60, 500} {
		for _, pages := range []int{0, 1} {
			g, err := Compute(Input{
				ViewportWidth:        1200,
				ViewportHeight:       800,
				ChromeHeight:         56,
				TotalPages:           pages,
				PaginationUnitHeight: unit,
				Columns:              4,
				Rows:                 5,
			})
			require.NoError(t, err)
			assert.Zero(t, g.PaginationHeight)
			assert.InDelta(t, 744.0, g.AvailableHeight, eps)
		}
	}
}

func TestPaginationSubtractedOnce(t *testing.T) {
	in := Input{
		ViewportWidth:        1000,
		ViewportHeight:       1000,
		ChromeHeight:         100,
		TotalPages:           3,
		PaginationUnitHeight: 50,
		Columns:              4,
		Rows:                 5,
	}
	g, err := Compute(in)
	require.NoError(t, err)

	total := g.ChromeHeight + g.PaginationHeight + g.GridHeight()
	assert.InDelta(t, in.ViewportHeight, total, eps)
}

func TestCellsFitAvailableSpace(t *testing.T) {
	cases := []Input{
		{ViewportWidth: 1920, ViewportHeight: 1080, ChromeHeight: 56, TotalPages: 3, PaginationUnitHeight: 48, Columns: 4, Rows: 5},
		{ViewportWidth: 375, ViewportHeight: 667, ChromeHeight: 120, TotalPages: 1, PaginationUnitHeight: 48, Columns: 2, Rows: 5},
		{ViewportWidth: 333, ViewportHeight: 777, ChromeHeight: 11.5, TotalPages: 9, PaginationUnitHeight: 48, Columns: 3, Rows: 7},
	}
	for _, in := range cases {
		g, err := Compute(in)
		require.NoError(t, err)
		assert.LessOrEqual(t, g.GridHeight(), g.AvailableHeight+eps)
		assert.LessOrEqual(t, g.GridWidth(), in.ViewportWidth+eps)
	}
}

func TestViewportSmallerThanChrome(t *testing.T) {
	g, err := Compute(Input{
		ViewportWidth:        800,
		ViewportHeight:       40,
		ChromeHeight:         56,
		TotalPages:           2,
		PaginationUnitHeight: 48,
		Columns:              4,
		Rows:                 5,
	})
	require.NoError(t, err)

	assert.Zero(t, g.AvailableHeight)
	assert.Zero(t, g.CellHeight)
	assert.Equal(t, 1.0, g.AspectRatio)
	assert.True(t, g.Degenerate())
}

func TestZeroRowsOrColumns(t *testing.T) {
	for _, dims := range [][2]int{{0, 4}, {5, 0}, {0, 0}, {-1, 4}} {
		g, err := Compute(Input{
			ViewportWidth:  1200,
			ViewportHeight: 800,
			Rows:           dims[0],
			Columns:        dims[1],
		})
		require.ErrorIs(t, err, ErrInvalidGrid)
		assert.Equal(t, 1.0, g.AspectRatio)
		assert.Zero(t, g.CellHeight)
		assert.Zero(t, g.CellWidth)
	}
}

func TestCellOrigin(t *testing.T) {
	g, err := Compute(Input{ViewportWidth: 400, ViewportHeight: 500, Columns: 4, Rows: 5})
	require.NoError(t, err)

	x, y := g.CellOrigin(6)
	assert.InDelta(t, 200.0, x, eps)
	assert.InDelta(t, 100.0, y, eps)
	assert.True(t, g.Visible(19))
	assert.False(t, g.Visible(20))
}

func TestChromeHeight(t *testing.T) {
	c := Chrome{AppBarHeight: 56, BottomNavHeight: 0, SafeTop: 24, SafeBottom: 34}
	assert.InDelta(t, 114.0, c.Height(), eps)
}

func TestResponsiveColumns(t *testing.T) {
	assert.Equal(t, 2, ResponsiveColumns(375, 4))
	assert.Equal(t, 3, ResponsiveColumns(768, 4))
	assert.Equal(t, 4, ResponsiveColumns(1200, 4))
	assert.Equal(t, 1, ResponsiveColumns(375, 1))
	assert.Equal(t, 2, ResponsiveColumns(800, 2))
}
