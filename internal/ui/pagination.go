package ui

import (
	"fmt"

	"camera-wall-go/internal/slots"
	"camera-wall-go/internal/wall"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// paginationBar shows "Page x / y" between previous and next buttons.
type paginationBar struct {
	prev  *widget.Button
	next  *widget.Button
	label *widget.Label
	root  *fyne.Container
}

func newPaginationBar(onPrev, onNext func()) *paginationBar {
	p := &paginationBar{
		prev:  widget.NewButtonWithIcon("", theme.NavigateBackIcon(), onPrev),
		next:  widget.NewButtonWithIcon("", theme.NavigateNextIcon(), onNext),
		label: widget.NewLabel(""),
	}
	p.label.Alignment = fyne.TextAlignCenter
	p.root = container.NewHBox(layout.NewSpacer(), p.prev, p.label, p.next, layout.NewSpacer())
	return p
}

func (p *paginationBar) Update(vm wall.ViewModel) {
	p.label.SetText(pageCaption(vm))
	setEnabled(p.prev, vm.HasPrev)
	setEnabled(p.next, vm.HasNext)
}

func pageCaption(vm wall.ViewModel) string {
	if vm.TotalPages == 0 {
		return ""
	}
	return fmt.Sprintf("Page %s", vm.PageLabel())
}

func setEnabled(b *widget.Button, on bool) {
	if on {
		b.Enable()
	} else {
		b.Disable()
	}
}

// appBar carries the title, a roster summary, the layout picker and refresh.
type appBar struct {
	title   *widget.Label
	summary *widget.Label
	layouts *widget.Select
	refresh *widget.Button
	root    *fyne.Container
}

func newAppBar(title string, presets []string, onLayout func(string), onRefresh func()) *appBar {
	b := &appBar{
		title:   widget.NewLabelWithStyle(title, fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		summary: widget.NewLabel(""),
		layouts: widget.NewSelect(presets, nil),
		refresh: widget.NewButtonWithIcon("", theme.ViewRefreshIcon(), onRefresh),
	}
	b.layouts.PlaceHolder = "Layout"
	b.layouts.OnChanged = onLayout
	b.root = container.NewHBox(b.title, b.summary, layout.NewSpacer(), b.layouts, b.refresh)
	return b
}

func (b *appBar) Update(vm wall.ViewModel) {
	b.summary.SetText(rosterSummary(vm))
}

// rosterSummary reads like "45 cameras, 18 playing, 2 failed".
func rosterSummary(vm wall.ViewModel) string {
	counts := vm.StateCounts()
	s := fmt.Sprintf("%d cameras", vm.RosterSize)
	if n := counts[slots.StatePlaying]; n > 0 {
		s += fmt.Sprintf(", %d playing", n)
	}
	if n := counts[slots.StateError]; n > 0 {
		s += fmt.Sprintf(", %d failed", n)
	}
	return s
}
