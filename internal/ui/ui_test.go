package ui

import (
	"testing"

	"camera-wall-go/internal/camera"
	"camera-wall-go/internal/geometry"
	"camera-wall-go/internal/slots"
	"camera-wall-go/internal/wall"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testViewModel(t *testing.T, totalPages, pageSize int) wall.ViewModel {
	t.Helper()
	g, err := geometry.Compute(geometry.Input{
		ViewportWidth:        800,
		ViewportHeight:       600,
		ChromeHeight:         56,
		TotalPages:           totalPages,
		PaginationUnitHeight: 48,
		Columns:              4,
		Rows:                 5,
	})
	require.NoError(t, err)

	vm := wall.ViewModel{
		Geometry:       g,
		TotalPages:     totalPages,
		PageSize:       pageSize,
		ShowPagination: totalPages > 1,
		Slots:          make([]wall.SlotView, slots.Capacity),
	}
	for i := range vm.Slots {
		vm.Slots[i] = wall.SlotView{Index: i, Visible: i < pageSize}
	}
	return vm
}

func TestPlaceFillsAvailableHeight(t *testing.T) {
	vm := testViewModel(t, 3, 20)
	p := place(vm, 800, 56, slots.Capacity)

	assert.Equal(t, float32(56), p.AppBar.H)
	assert.False(t, p.Pagination.Hidden)
	assert.InDelta(t, 48, p.Pagination.H, 1e-3)

	// The grid takes exactly AvailableHeight and the pagination bar
	// starts where the last row ends.
	last := p.Cells[19]
	assert.InDelta(t, 56+496, last.Y+last.H, 1e-3)
	assert.InDelta(t, last.Y+last.H, p.Pagination.Y, 1e-3)
	assert.InDelta(t, 600, p.Pagination.Y+p.Pagination.H, 1e-3)

	first := p.Cells[0]
	assert.Equal(t, float32(0), first.X)
	assert.Equal(t, float32(56), first.Y)
	assert.InDelta(t, 200, first.W, 1e-3)
}

func TestPlaceSinglePageHidesPagination(t *testing.T) {
	vm := testViewModel(t, 1, 20)
	p := place(vm, 800, 56, slots.Capacity)

	assert.True(t, p.Pagination.Hidden)
	last := p.Cells[19]
	assert.InDelta(t, 600, last.Y+last.H, 1e-3)
}

func TestPlaceHidesCellsOutsidePage(t *testing.T) {
	vm := testViewModel(t, 1, 9)
	p := place(vm, 800, 56, slots.Capacity)

	for i, r := range p.Cells {
		assert.Equal(t, i >= 9, r.Hidden, "cell %d", i)
	}
}

func TestPlaceDegenerateGeometry(t *testing.T) {
	vm := testViewModel(t, 1, 20)
	vm.Geometry.CellHeight = 0
	p := place(vm, 800, 56, slots.Capacity)

	for _, r := range p.Cells {
		assert.True(t, r.Hidden)
	}
}

func TestCellLabels(t *testing.T) {
	cam := &camera.Camera{ID: "door", Name: "Front Door", Connected: true, Recording: true}

	name, badge, status, detail := cellLabels(wall.SlotView{
		Camera:      cam,
		Badge:       cam.Badge(),
		PlayerState: slots.StatePlaying,
	})
	assert.Equal(t, "Front Door", name)
	assert.Equal(t, "REC", badge)
	assert.Empty(t, status)
	assert.Empty(t, detail)

	_, _, status, detail = cellLabels(wall.SlotView{
		Camera:      cam,
		Status:      "Stream Error",
		Error:       "connection refused",
		PlayerState: slots.StateError,
	})
	assert.Equal(t, "Stream Error", status)
	assert.Equal(t, "connection refused", detail)

	name, badge, status, _ = cellLabels(wall.SlotView{Status: "No Camera", PlayerState: slots.StateIdle})
	assert.Empty(t, name)
	assert.Empty(t, badge)
	assert.Equal(t, "No Camera", status)
}

func TestCaptions(t *testing.T) {
	vm := wall.ViewModel{
		Page:       1,
		TotalPages: 3,
		RosterSize: 45,
		Slots: []wall.SlotView{
			{PlayerState: slots.StatePlaying},
			{PlayerState: slots.StatePlaying},
			{PlayerState: slots.StateError},
		},
	}
	assert.Equal(t, "Page 2 / 3", pageCaption(vm))
	assert.Equal(t, "45 cameras, 2 playing, 1 failed", rosterSummary(vm))
	assert.Equal(t, "", pageCaption(wall.ViewModel{}))
	assert.Equal(t, "0 cameras", rosterSummary(wall.ViewModel{}))
}
