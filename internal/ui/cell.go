package ui

import (
	"image"
	"image/color"
	"sync"
	"time"

	"camera-wall-go/internal/slots"
	"camera-wall-go/internal/wall"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

var (
	cellBackground = color.RGBA{25, 25, 25, 255}
	textColor      = color.RGBA{230, 230, 230, 255}
	mutedColor     = color.RGBA{180, 180, 180, 255}
	liveColor      = color.RGBA{40, 160, 70, 255}
	recColor       = color.RGBA{200, 40, 40, 255}
	errorColor     = color.RGBA{255, 110, 90, 255}
	borderColor    = color.RGBA{255, 200, 0, 255}
)

const longPressDelay = 500 * time.Millisecond

// CellWidget renders one slot: the latest frame with the camera name, a
// LIVE/REC badge and a status line on top. Tap activates the cell; long press
// or right click asks for a retry.
type CellWidget struct {
	widget.BaseWidget

	bg     *canvas.Rectangle
	image  *canvas.Image
	name   *canvas.Text
	badge  *canvas.Text
	status *canvas.Text
	detail *canvas.Text
	border *canvas.Rectangle

	onTap     func()
	onLongTap func()

	mu             sync.Mutex
	view           wall.SlotView
	lastRead       uint64
	pressed        bool
	longPressTimer *time.Timer
	longPressFired bool
	tapHandled     bool
}

// NewCellWidget builds an empty cell.
func NewCellWidget(onTap, onLongTap func()) *CellWidget {
	c := &CellWidget{
		bg:        canvas.NewRectangle(cellBackground),
		image:     canvas.NewImageFromImage(placeholder()),
		name:      canvas.NewText("", textColor),
		badge:     canvas.NewText("", textColor),
		status:    canvas.NewText("", mutedColor),
		detail:    canvas.NewText("", errorColor),
		border:    canvas.NewRectangle(color.Transparent),
		onTap:     onTap,
		onLongTap: onLongTap,
	}
	c.image.FillMode = canvas.ImageFillStretch
	c.name.TextSize = 13
	c.name.TextStyle = fyne.TextStyle{Bold: true}
	c.badge.TextSize = 11
	c.badge.TextStyle = fyne.TextStyle{Bold: true}
	c.status.TextSize = 16
	c.status.Alignment = fyne.TextAlignCenter
	c.detail.TextSize = 11
	c.detail.Alignment = fyne.TextAlignCenter
	c.border.StrokeWidth = 3
	c.border.StrokeColor = color.Transparent
	c.ExtendBaseWidget(c)
	return c
}

func (c *CellWidget) CreateRenderer() fyne.WidgetRenderer {
	header := container.NewBorder(nil, nil, nil, c.badge, c.name)
	centre := container.NewCenter(container.NewVBox(c.status, c.detail))
	overlay := container.NewBorder(container.NewPadded(header), nil, nil, nil, centre)
	return widget.NewSimpleRenderer(container.NewStack(c.bg, c.image, overlay, c.border))
}

// Update applies a slot view. A new generation clears the picture so the
// previous camera never shows under the new name.
func (c *CellWidget) Update(sv wall.SlotView) {
	c.mu.Lock()
	newStream := sv.Generation != c.view.Generation || sv.SurfaceID != c.view.SurfaceID
	c.view = sv
	if newStream {
		c.lastRead = 0
	}
	c.mu.Unlock()

	if newStream {
		c.image.Image = placeholder()
		c.image.Refresh()
	}

	name, badge, status, detail := cellLabels(sv)
	c.name.Text = name
	c.badge.Text = badge
	c.badge.Color = badgeColor(badge)
	c.status.Text = status
	c.status.Color = mutedColor
	if sv.PlayerState == slots.StateError {
		c.status.Color = errorColor
	}
	c.detail.Text = detail
	c.image.Hidden = sv.PlayerState != slots.StatePlaying && sv.PlayerState != slots.StateBuffering

	c.name.Refresh()
	c.badge.Refresh()
	c.status.Refresh()
	c.detail.Refresh()
	c.image.Refresh()
}

// View returns the slot view last applied.
func (c *CellWidget) View() wall.SlotView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// PullFrame copies a newer frame from the slot's surface, if there is one.
// It reports whether the picture changed.
func (c *CellWidget) PullFrame() bool {
	c.mu.Lock()
	sv := c.view
	last := c.lastRead
	c.mu.Unlock()

	if sv.Surface == nil || !sv.Visible {
		return false
	}
	if sv.PlayerState != slots.StatePlaying && sv.PlayerState != slots.StateBuffering {
		return false
	}
	frame, n, ok := sv.Surface.ReadIfNew(last)
	if !ok || frame == nil {
		return false
	}

	c.mu.Lock()
	if c.view.Generation != sv.Generation {
		c.mu.Unlock()
		return false
	}
	c.lastRead = n
	c.mu.Unlock()

	c.image.Image = frame
	c.image.Refresh()
	return true
}

// SetHighlight outlines the cell, used while its detail view is open.
func (c *CellWidget) SetHighlight(on bool) {
	if on {
		c.border.StrokeColor = borderColor
	} else {
		c.border.StrokeColor = color.Transparent
	}
	c.border.Refresh()
}

// MouseDown starts the long-press timer.
func (c *CellWidget) MouseDown(*desktop.MouseEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pressed = true
	c.longPressFired = false
	c.tapHandled = false
	if c.longPressTimer != nil {
		c.longPressTimer.Stop()
	}
	c.longPressTimer = time.AfterFunc(longPressDelay, func() {
		c.mu.Lock()
		if !c.pressed {
			c.mu.Unlock()
			return
		}
		c.longPressFired = true
		c.tapHandled = true
		c.mu.Unlock()
		if c.onLongTap != nil {
			c.onLongTap()
		}
	})
}

// MouseUp cancels the long press and treats a short press as a tap.
func (c *CellWidget) MouseUp(*desktop.MouseEvent) {
	c.mu.Lock()
	c.pressed = false
	if c.longPressTimer != nil {
		c.longPressTimer.Stop()
		c.longPressTimer = nil
	}
	fire := !c.longPressFired && !c.tapHandled
	if fire {
		c.tapHandled = true
	}
	c.mu.Unlock()

	if fire && c.onTap != nil {
		c.onTap()
	}
}

// Tapped handles touch taps not already seen through MouseUp. It ends the
// gesture, so the next tap starts clean.
func (c *CellWidget) Tapped(*fyne.PointEvent) {
	c.mu.Lock()
	fire := !c.tapHandled && !c.longPressFired
	c.tapHandled = false
	c.longPressFired = false
	c.mu.Unlock()

	if fire && c.onTap != nil {
		c.onTap()
	}
}

func (c *CellWidget) TappedSecondary(*fyne.PointEvent) {
	if c.onLongTap != nil {
		c.onLongTap()
	}
}

// cellLabels derives the overlay text for a slot.
func cellLabels(sv wall.SlotView) (name, badge, status, detail string) {
	if sv.Camera != nil {
		name = sv.Camera.DisplayName()
		badge = sv.Badge
	}
	status = sv.Status
	if sv.PlayerState == slots.StateError {
		detail = sv.Error
	}
	return name, badge, status, detail
}

func badgeColor(badge string) color.Color {
	if badge == "REC" {
		return recColor
	}
	return liveColor
}

var (
	placeholderOnce sync.Once
	placeholderImg  image.Image
)

func placeholder() image.Image {
	placeholderOnce.Do(func() {
		placeholderImg = createColoredImage(160, 90, cellBackground)
	})
	return placeholderImg
}

func createColoredImage(width, height int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	r, g, b, a := c.RGBA()
	r8, g8, b8, a8 := uint8(r>>8), uint8(g>>8), uint8(b>>8), uint8(a>>8)

	stride := img.Stride
	for x := 0; x < width; x++ {
		off := x * 4
		img.Pix[off+0] = r8
		img.Pix[off+1] = g8
		img.Pix[off+2] = b8
		img.Pix[off+3] = a8
	}
	firstRow := img.Pix[:stride]
	for y := 1; y < height; y++ {
		copy(img.Pix[y*stride:(y+1)*stride], firstRow)
	}
	return img
}
