package layout

// =============================================================================
// Smart Grid Layout
// =============================================================================
// Returns a sensible (rows, cols) for N cells. Used by the "auto" preset only;
// named layouts always keep their own rows.
// =============================================================================

// SmartGrid returns a compact (rows, cols) for n cells.
// Handles 1-9 cells with hardcoded layouts, and 10+ with a formula
// capping at 4 columns.
func SmartGrid(n int) (rows, cols int) {
	switch {
	case n <= 1:
		return 1, 1
	case n == 2:
		return 1, 2
	case n == 3:
		return 1, 3
	case n == 4:
		return 2, 2
	case n <= 6:
		return 2, 3
	case n <= 9:
		return 3, 3
	default:
		// 10+ cells: cols = min(4, floor(sqrt(n) * 1.5)), rows = ceil(n / cols)
		cols = int(float64(isqrt(n)) * 1.5)
		if cols > 4 {
			cols = 4
		}
		if cols < 1 {
			cols = 1
		}
		rows = (n + cols - 1) / cols
		return rows, cols
	}
}

// isqrt returns the integer square root of n.
func isqrt(n int) int {
	if n <= 0 {
		return 0
	}
	x := n
	y := (x + 1) / 2
	for y < x {
		x = y
		y = (x + n/x) / 2
	}
	return x
}
