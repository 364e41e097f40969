// Package geometry computes pixel-exact cell sizes for the wall grid.
//
// Compute is a pure function of its Input. The pagination allowance is
// subtracted exactly once, when AvailableHeight is derived; CellHeight and
// every container height downstream are taken from AvailableHeight and must
// not subtract it again.
package geometry

import (
	"errors"
	"fmt"
	"math"
)

// DefaultPaginationHeight is the height of the page controls bar.
const DefaultPaginationHeight = 48.0

// Input holds everything the grid size depends on.
type Input struct {
	ViewportWidth        float64
	ViewportHeight       float64
	ChromeHeight         float64
	TotalPages           int
	PaginationUnitHeight float64
	Columns              int
	Rows                 int
}

// Geometry is the computed sizing for one viewport/layout combination.
type Geometry struct {
	ViewportWidth    float64 `json:"viewportWidth"`
	ViewportHeight   float64 `json:"viewportHeight"`
	ChromeHeight     float64 `json:"chromeHeight"`
	PaginationHeight float64 `json:"paginationHeight"`
	AvailableHeight  float64 `json:"availableHeight"`
	Columns          int     `json:"columns"`
	Rows             int     `json:"rows"`
	CellWidth        float64 `json:"cellWidth"`
	CellHeight       float64 `json:"cellHeight"`
	AspectRatio      float64 `json:"aspectRatio"`
}

// Compute derives the grid geometry. A zero row or column count yields
// AspectRatio 1 together with ErrInvalidGrid instead of dividing by zero.
// A viewport smaller than the chrome yields CellHeight 0, never a negative
// value.
func Compute(in Input) (Geometry, error) {
	g := Geometry{
		ViewportWidth:  in.ViewportWidth,
		ViewportHeight: in.ViewportHeight,
		ChromeHeight:   in.ChromeHeight,
		Columns:        in.Columns,
		Rows:           in.Rows,
		AspectRatio:    1,
	}

	if in.TotalPages > 1 && in.PaginationUnitHeight > 0 {
		g.PaginationHeight = in.PaginationUnitHeight
	}
	g.AvailableHeight = math.Max(0, in.ViewportHeight-in.ChromeHeight-g.PaginationHeight)
	width := math.Max(0, in.ViewportWidth)

	if in.Rows <= 0 || in.Columns <= 0 {
		return g, fmt.Errorf("%w: %d rows x %d columns", ErrInvalidGrid, in.Rows, in.Columns)
	}

	g.CellWidth = width / float64(in.Columns)
	g.CellHeight = g.AvailableHeight / float64(in.Rows)
	if g.CellWidth > 0 && g.CellHeight > 0 {
		g.AspectRatio = g.CellWidth / g.CellHeight
	}
	return g, nil
}

// GridWidth is the total width occupied by the cells.
func (g Geometry) GridWidth() float64 {
	return g.CellWidth * float64(g.Columns)
}

// GridHeight is the total height occupied by the cells; it equals
// AvailableHeight up to rounding.
func (g Geometry) GridHeight() float64 {
	return g.CellHeight * float64(g.Rows)
}

// Degenerate reports a geometry with no drawable area.
func (g Geometry) Degenerate() bool {
	return g.CellWidth <= 0 || g.CellHeight <= 0
}

// CellOrigin returns the top-left corner of grid cell i relative to the grid
// container, in row-major order.
func (g Geometry) CellOrigin(i int) (x, y float64) {
	if g.Columns <= 0 {
		return 0, 0
	}
	row := i / g.Columns
	col := i % g.Columns
	return float64(col) * g.CellWidth, float64(row) * g.CellHeight
}

// Visible reports whether cell i lies inside the rows x columns grid.
func (g Geometry) Visible(i int) bool {
	return i >= 0 && i < g.Rows*g.Columns
}

// Errors
var (
	ErrInvalidGrid = errors.New("geometry: rows and columns must be positive")
)
