package ui

import (
	"camera-wall-go/internal/wall"

	"fyne.io/fyne/v2"
)

// rect is a placement in window coordinates.
type rect struct {
	X, Y, W, H float32
	Hidden     bool
}

// placement is where every piece of the wall goes for one view-model.
type placement struct {
	AppBar     rect
	Pagination rect
	Cells      []rect
}

// place lays the wall out from the published geometry. The app bar sits on
// top, the grid directly under it, and the pagination bar under the grid.
// The grid gets exactly AvailableHeight; nothing here subtracts the
// pagination allowance a second time.
func place(vm wall.ViewModel, width, appBarHeight float32, cells int) placement {
	g := vm.Geometry
	top := appBarHeight
	p := placement{
		AppBar: rect{W: width, H: appBarHeight, Hidden: appBarHeight <= 0},
		Cells:  make([]rect, cells),
	}

	gridH := float32(g.CellHeight) * float32(g.Rows)
	p.Pagination = rect{
		Y:      top + gridH,
		W:      width,
		H:      float32(g.PaginationHeight),
		Hidden: !vm.ShowPagination || g.PaginationHeight <= 0,
	}

	for i := range p.Cells {
		visible := i < len(vm.Slots) && vm.Slots[i].Visible && !g.Degenerate()
		if !visible {
			p.Cells[i] = rect{Hidden: true}
			continue
		}
		x, y := g.CellOrigin(i)
		p.Cells[i] = rect{
			X: float32(x),
			Y: top + float32(y),
			W: float32(g.CellWidth),
			H: float32(g.CellHeight),
		}
	}
	return p
}

// wallLayout positions the app bar, pagination bar and cells. Objects are
// expected in that order. Every layout pass reports the size to the app so
// the controller can recompute geometry.
type wallLayout struct {
	app *App
}

func (l *wallLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	return fyne.NewSize(100, 100)
}

func (l *wallLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	if len(objects) < 2 {
		return
	}
	l.app.reportViewport(size)

	p := place(l.app.viewModel(), size.Width, float32(l.app.cfg.AppBarHeight), len(objects)-2)
	apply(objects[0], p.AppBar)
	apply(objects[1], p.Pagination)
	for i, obj := range objects[2:] {
		apply(obj, p.Cells[i])
	}
}

func apply(obj fyne.CanvasObject, r rect) {
	if r.Hidden {
		obj.Hide()
		return
	}
	obj.Move(fyne.NewPos(r.X, r.Y))
	obj.Resize(fyne.NewSize(r.W, r.H))
	obj.Show()
}
