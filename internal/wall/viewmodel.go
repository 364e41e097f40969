package wall

import (
	"fmt"

	"camera-wall-go/internal/camera"
	"camera-wall-go/internal/geometry"
	"camera-wall-go/internal/layout"
	"camera-wall-go/internal/slots"
)

// SlotView is the renderer contract for one cell.
type SlotView struct {
	Index      int            `json:"index"`
	Camera     *camera.Camera `json:"camera,omitempty"`
	State      string         `json:"state"`
	Status     string         `json:"status,omitempty"`
	Badge      string         `json:"badge,omitempty"`
	SurfaceID  string         `json:"surfaceId"`
	Error      string         `json:"error,omitempty"`
	Generation uint64         `json:"generation"`
	Visible    bool           `json:"visible"`

	PlayerState slots.PlayerState `json:"-"`
	Surface     slots.Surface     `json:"-"`
}

// ViewModel is one published snapshot of the whole wall.
type ViewModel struct {
	Version        uint64            `json:"version"`
	Layout         layout.Spec       `json:"layout"`
	Geometry       geometry.Geometry `json:"geometry"`
	GeometryError  string            `json:"geometryError,omitempty"`
	Page           int               `json:"page"`
	TotalPages     int               `json:"totalPages"`
	PageSize       int               `json:"pageSize"`
	RosterSize     int               `json:"rosterSize"`
	ShowPagination bool              `json:"showPagination"`
	HasPrev        bool              `json:"hasPrev"`
	HasNext        bool              `json:"hasNext"`
	Slots          []SlotView        `json:"slots"`
}

// StateCounts tallies slots per player state.
func (vm ViewModel) StateCounts() map[slots.PlayerState]int {
	counts := make(map[slots.PlayerState]int, len(slots.AllStates))
	for _, s := range slots.AllStates {
		counts[s] = 0
	}
	for _, sv := range vm.Slots {
		counts[sv.PlayerState]++
	}
	return counts
}

// PageLabel is the pagination caption, 1-based.
func (vm ViewModel) PageLabel() string {
	if vm.TotalPages == 0 {
		return ""
	}
	return fmt.Sprintf("%d / %d", vm.Page+1, vm.TotalPages)
}

func slotView(v slots.View, visible bool) SlotView {
	sv := SlotView{
		Index:       v.Index,
		Camera:      v.Camera,
		State:       v.State.String(),
		Status:      v.Status(),
		Generation:  v.Generation,
		Visible:     visible,
		PlayerState: v.State,
		Surface:     v.Surface,
	}
	if v.Surface != nil {
		sv.SurfaceID = v.Surface.ID()
	}
	if v.Camera != nil {
		sv.Badge = v.Camera.Badge()
	}
	if v.Err != nil {
		sv.Error = v.Err.Error()
	}
	return sv
}
