// Package layout describes how the wall arranges its cells.
//
// A Spec names a fixed rows x columns arrangement and how many cameras one
// page shows. Rows always come from the active Spec, never from how many
// cells happen to be occupied, so the grid fills the viewport even when a
// page is sparse and does not reflow as cameras connect or disconnect.
package layout

import (
	"errors"
	"fmt"
	"strings"
)

// Spec is a named grid arrangement.
type Spec struct {
	Name     string `json:"name" yaml:"name"`
	Capacity int    `json:"capacity" yaml:"capacity"`
	Rows     int    `json:"rows" yaml:"rows"`
	Columns  int    `json:"columns" yaml:"columns"`
}

// Default is the layout used when no preference is supplied or the supplied
// one is unusable.
var Default = Spec{Name: "Default", Capacity: 20, Rows: 5, Columns: 4}

// Preference supplies the user's chosen layout, if any.
type Preference interface {
	CurrentLayout() (Spec, bool)
}

// Validate reports a configuration error for non-positive dimensions.
func (s Spec) Validate() error {
	if s.Rows <= 0 || s.Columns <= 0 {
		return fmt.Errorf("%w: %q has %d rows x %d columns", ErrInvalidLayout, s.Name, s.Rows, s.Columns)
	}
	if s.Capacity <= 0 {
		return fmt.Errorf("%w: %q has capacity %d", ErrInvalidLayout, s.Name, s.Capacity)
	}
	return nil
}

// Cells is the number of visible grid cells.
func (s Spec) Cells() int {
	return s.Rows * s.Columns
}

func (s Spec) String() string {
	return fmt.Sprintf("%s(%dx%d/%d)", s.Name, s.Rows, s.Columns, s.Capacity)
}

// Resolve picks the layout to render with. A missing preference yields
// Default without error; an invalid one yields Default plus the
// configuration error so the caller can log it and keep rendering.
func Resolve(p Preference) (Spec, error) {
	if p == nil {
		return Default, nil
	}
	spec, ok := p.CurrentLayout()
	if !ok {
		return Default, nil
	}
	if err := spec.Validate(); err != nil {
		return Default, err
	}
	return spec, nil
}

// Fixed is a Preference that always returns the same Spec.
type Fixed Spec

// CurrentLayout implements Preference.
func (f Fixed) CurrentLayout() (Spec, bool) {
	return Spec(f), true
}

// None is a Preference with nothing selected.
type None struct{}

// CurrentLayout implements Preference.
func (None) CurrentLayout() (Spec, bool) {
	return Spec{}, false
}

// =============================================================================
// Presets
// =============================================================================

var presets = map[string]Spec{
	"1x1": {Name: "1x1", Capacity: 1, Rows: 1, Columns: 1},
	"2x2": {Name: "2x2", Capacity: 4, Rows: 2, Columns: 2},
	"3x3": {Name: "3x3", Capacity: 9, Rows: 3, Columns: 3},
	"4x4": {Name: "4x4", Capacity: 16, Rows: 4, Columns: 4},
	"5x4": Default,
}

// Preset looks up a named layout. "default" and "5x4" both name Default;
// "auto" builds a smart grid for capacity cameras.
func Preset(name string, capacity int) (Spec, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	switch key {
	case "", "default":
		return Default, nil
	case "auto":
		rows, cols := SmartGrid(capacity)
		return Spec{Name: "auto", Capacity: capacity, Rows: rows, Columns: cols}, nil
	}
	if spec, ok := presets[key]; ok {
		return spec, nil
	}
	return Default, fmt.Errorf("%w: unknown preset %q", ErrInvalidLayout, name)
}

// PresetNames lists the accepted preset names.
func PresetNames() []string {
	return []string{"default", "1x1", "2x2", "3x3", "4x4", "5x4", "auto"}
}

// Errors
var (
	ErrInvalidLayout = errors.New("layout: invalid layout")
)
