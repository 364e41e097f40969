// Package ui is the fyne front end of the wall: one window holding an app bar,
// the cell grid and the pagination bar, plus a detail overlay for a single
// camera.
//
// The UI never decides anything about slots or pages. It forwards input to
// the wall controller, renders whatever view-model was published last, and
// polls each visible cell's surface for new frames at the configured rate.
package ui

import (
	"context"
	"errors"
	"image/color"
	"sync"
	"time"

	"camera-wall-go/internal/camera"
	"camera-wall-go/internal/config"
	"camera-wall-go/internal/layout"
	"camera-wall-go/internal/slots"
	"camera-wall-go/internal/wall"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// App is the wall window.
type App struct {
	fyneApp fyne.App
	window  fyne.Window
	cfg     *config.Config
	ctrl    *wall.Controller
	log     zerolog.Logger

	cells       []*CellWidget
	appBar      *appBar
	pagination  *paginationBar
	grid        *fyne.Container
	gridContent *fyne.Container

	vmMu sync.RWMutex
	vm   wall.ViewModel

	viewportMu sync.Mutex
	viewport   wall.Viewport
	viewportCh chan wall.Viewport

	// Detail overlay
	detailMu       sync.Mutex
	detailSlot     int // -1 when closed
	detailCameraID string
	detailCell     *CellWidget
	detailContent  *fyne.Container

	stop     chan struct{}
	stopOnce sync.Once
}

// NewApp creates the window. Pass the App as the controller's Navigator so
// activations open the detail overlay.
func NewApp(cfg *config.Config) *App {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	fyneApp := app.New()
	window := fyneApp.NewWindow(cfg.WindowTitle)
	window.Resize(fyne.NewSize(float32(cfg.WindowWidth), float32(cfg.WindowHeight)))
	window.SetFullScreen(cfg.Fullscreen)

	return &App{
		fyneApp:    fyneApp,
		window:     window,
		cfg:        cfg,
		log:        log.With().Str("component", "ui").Logger(),
		detailSlot: -1,
		viewportCh: make(chan wall.Viewport, 1),
		stop:       make(chan struct{}),
	}
}

// Run shows the window and blocks until it is closed or ctx is done.
func (a *App) Run(ctx context.Context, ctrl *wall.Controller) error {
	if ctrl == nil {
		return errors.New("ui: nil controller")
	}
	a.ctrl = ctrl
	a.setViewModel(ctrl.Snapshot())
	a.setupUI()

	updates, cancel := ctrl.Subscribe()
	defer cancel()

	go a.watchViewModels(updates)
	go a.applyViewports()
	go a.refreshFrames()
	go func() {
		select {
		case <-ctx.Done():
			a.fyneApp.Quit()
		case <-a.stop:
		}
	}()

	a.window.SetCloseIntercept(func() {
		a.log.Info().Msg("window closed")
		a.window.Close()
		a.fyneApp.Quit()
	})
	a.window.ShowAndRun()
	a.stopOnce.Do(func() { close(a.stop) })
	return nil
}

// OpenDetail implements wall.Navigator.
func (a *App) OpenDetail(cam camera.Camera) {
	vm := a.viewModel()
	slot := -1
	for i, sv := range vm.Slots {
		if sv.Camera != nil && sv.Camera.ID == cam.ID {
			slot = i
			break
		}
	}
	if slot < 0 {
		a.log.Debug().Str("camera", cam.ID).Msg("detail requested for camera not on this page")
		return
	}
	a.showDetail(slot, vm.Slots[slot])
}

func (a *App) setupUI() {
	background := canvas.NewRectangle(color.RGBA{20, 20, 20, 255})

	a.appBar = newAppBar(a.cfg.WindowTitle, layout.PresetNames(), a.onLayoutSelected, func() { go a.refresh() })
	a.pagination = newPaginationBar(func() { go a.advance(-1) }, func() { go a.advance(1) })

	vm := a.viewModel()
	objects := []fyne.CanvasObject{a.appBar.root, a.pagination.root}
	a.cells = make([]*CellWidget, len(vm.Slots))
	for i := range a.cells {
		index := i
		a.cells[i] = NewCellWidget(
			func() { go a.activate(index) },
			func() { go a.retry(index) },
		)
		objects = append(objects, a.cells[i])
	}
	a.grid = container.New(&wallLayout{app: a}, objects...)
	a.render(vm)

	a.detailCell = NewCellWidget(a.hideDetail, nil)
	a.detailContent = container.NewStack(canvas.NewRectangle(color.Black), a.detailCell)
	a.detailContent.Hide()

	a.gridContent = container.NewStack(background, a.grid)
	a.window.SetContent(container.NewStack(a.gridContent, a.detailContent))
	a.window.Canvas().SetOnTypedKey(a.onKey)
}

func (a *App) onKey(ev *fyne.KeyEvent) {
	switch ev.Name {
	case fyne.KeyLeft, fyne.KeyPageUp:
		go a.advance(-1)
	case fyne.KeyRight, fyne.KeyPageDown:
		go a.advance(1)
	case fyne.KeyF5:
		go a.refresh()
	case fyne.KeyEscape:
		a.hideDetail()
	}
}

// =============================================================================
// Commands
// =============================================================================

func (a *App) advance(delta int) {
	if _, err := a.ctrl.Advance(delta); err != nil {
		a.log.Warn().Err(err).Int("delta", delta).Msg("page move failed")
	}
}

func (a *App) refresh() {
	n, err := a.ctrl.Refresh()
	if err != nil {
		a.log.Warn().Err(err).Msg("refresh failed")
		return
	}
	a.log.Debug().Int("retried", n).Msg("refresh requested from window")
}

func (a *App) activate(index int) {
	if _, err := a.ctrl.Activate(index); err != nil {
		a.log.Warn().Err(err).Int("slot", index).Msg("activate failed")
	}
}

func (a *App) retry(index int) {
	err := a.ctrl.Retry(index)
	switch {
	case err == nil:
		a.log.Info().Int("slot", index).Msg("retrying stream")
	case errors.Is(err, slots.ErrNotRetryable):
		a.log.Debug().Int("slot", index).Msg("slot is not failed, nothing to retry")
	default:
		a.log.Warn().Err(err).Int("slot", index).Msg("retry failed")
	}
}

func (a *App) onLayoutSelected(name string) {
	spec, err := layout.Preset(name, a.cfg.SlotCapacity)
	if err != nil {
		a.log.Warn().Err(err).Msg("layout preset rejected")
		return
	}
	go func() {
		if err := a.ctrl.SetLayout(spec); err != nil {
			a.log.Warn().Err(err).Str("layout", spec.String()).Msg("set layout failed")
		}
	}()
}

// =============================================================================
// View-model and viewport plumbing
// =============================================================================

func (a *App) viewModel() wall.ViewModel {
	a.vmMu.RLock()
	defer a.vmMu.RUnlock()
	return a.vm
}

func (a *App) setViewModel(vm wall.ViewModel) {
	a.vmMu.Lock()
	a.vm = vm
	a.vmMu.Unlock()
}

func (a *App) watchViewModels(updates <-chan wall.ViewModel) {
	for vm := range updates {
		a.setViewModel(vm)
		a.render(vm)
	}
}

func (a *App) render(vm wall.ViewModel) {
	for i, cell := range a.cells {
		if i < len(vm.Slots) {
			cell.Update(vm.Slots[i])
		}
	}
	a.appBar.Update(vm)
	a.pagination.Update(vm)
	a.syncDetail(vm)
	a.grid.Refresh()
}

// reportViewport queues the window size for the controller. Only the latest
// size is kept.
func (a *App) reportViewport(size fyne.Size) {
	v := wall.Viewport{Width: float64(size.Width), Height: float64(size.Height)}

	a.viewportMu.Lock()
	if v == a.viewport {
		a.viewportMu.Unlock()
		return
	}
	a.viewport = v
	a.viewportMu.Unlock()

	select {
	case <-a.viewportCh:
	default:
	}
	a.viewportCh <- v
}

func (a *App) applyViewports() {
	for {
		select {
		case <-a.stop:
			return
		case v := <-a.viewportCh:
			if err := a.ctrl.SetViewport(v); err != nil {
				a.log.Debug().Err(err).Msg("viewport not applied")
			}
		}
	}
}

// refreshFrames pulls new frames into the visible cells at the UI rate.
func (a *App) refreshFrames() {
	uiFPS := a.cfg.UIFPS
	if uiFPS <= 0 {
		uiFPS = 10
	}
	ticker := time.NewTicker(time.Second / time.Duration(uiFPS))
	defer ticker.Stop()

	var ticks uint64
	for {
		select {
		case <-a.stop:
			return
		case <-ticker.C:
		}

		updated := 0
		for _, cell := range a.cells {
			if cell.PullFrame() {
				updated++
			}
		}
		a.detailCell.PullFrame()

		ticks++
		if ticks%uint64(uiFPS*30) == 0 {
			a.log.Debug().Int("updated", updated).Msg("frame refresh")
		}
	}
}

// =============================================================================
// Detail overlay
// =============================================================================

func (a *App) showDetail(slot int, sv wall.SlotView) {
	a.detailMu.Lock()
	prev := a.detailSlot
	a.detailSlot = slot
	a.detailCameraID = sv.Camera.ID
	a.detailMu.Unlock()

	if prev >= 0 && prev < len(a.cells) {
		a.cells[prev].SetHighlight(false)
	}
	a.cells[slot].SetHighlight(true)
	a.detailCell.Update(sv)
	a.detailContent.Show()
	a.log.Info().Int("slot", slot).Str("camera", sv.Camera.ID).Msg("detail opened")
}

func (a *App) hideDetail() {
	a.detailMu.Lock()
	slot := a.detailSlot
	a.detailSlot = -1
	a.detailCameraID = ""
	a.detailMu.Unlock()

	if slot < 0 {
		return
	}
	if slot < len(a.cells) {
		a.cells[slot].SetHighlight(false)
	}
	a.detailContent.Hide()
	a.log.Info().Int("slot", slot).Msg("detail closed")
}

// syncDetail keeps the overlay on the camera it was opened for and closes it
// once that camera leaves its slot.
func (a *App) syncDetail(vm wall.ViewModel) {
	a.detailMu.Lock()
	slot, id := a.detailSlot, a.detailCameraID
	a.detailMu.Unlock()
	if slot < 0 || a.detailCell == nil {
		return
	}
	if slot >= len(vm.Slots) || vm.Slots[slot].Camera == nil || vm.Slots[slot].Camera.ID != id {
		a.hideDetail()
		return
	}
	a.detailCell.Update(vm.Slots[slot])
}
