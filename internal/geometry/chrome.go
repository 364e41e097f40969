package geometry

// Chrome is the fixed screen furniture around the grid. Safe-area insets come
// from the host (notches, home indicators) and change with orientation.
type Chrome struct {
	AppBarHeight    float64
	BottomNavHeight float64
	SafeTop         float64
	SafeBottom      float64
}

// Height is the vertical space the chrome takes from the viewport. It never
// includes the pagination bar; Compute adds that exactly once.
func (c Chrome) Height() float64 {
	h := c.AppBarHeight + c.BottomNavHeight + c.SafeTop + c.SafeBottom
	if h < 0 {
		return 0
	}
	return h
}

// Breakpoints for ResponsiveColumns.
const (
	NarrowWidth = 600.0
	MediumWidth = 900.0
)

// ResponsiveColumns narrows the layout's column count on small viewports:
// under 600 wide shows 2 columns, under 900 shows 3, otherwise the layout's
// own count. It never widens a layout.
func ResponsiveColumns(viewportWidth float64, layoutColumns int) int {
	cols := layoutColumns
	switch {
	case viewportWidth < NarrowWidth:
		cols = minInt(layoutColumns, 2)
	case viewportWidth < MediumWidth:
		cols = minInt(layoutColumns, 3)
	}
	return cols
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
