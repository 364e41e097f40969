// Package wall ties paging, geometry and the slot manager together behind a
// single owner goroutine.
//
// Every mutation (roster, layout, viewport, page moves, retries) and every
// player event is applied by Run's goroutine, one at a time. Callers on other
// goroutines submit commands and wait for them to be applied; players post
// events into a mailbox that Run drains. After each change the controller
// publishes an immutable ViewModel to Snapshot and to subscribers.
package wall

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"camera-wall-go/internal/camera"
	"camera-wall-go/internal/geometry"
	"camera-wall-go/internal/layout"
	"camera-wall-go/internal/paging"
	"camera-wall-go/internal/slots"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Navigator receives activations of populated cells.
type Navigator interface {
	OpenDetail(cam camera.Camera)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(cam camera.Camera)

// OpenDetail implements Navigator.
func (f NavigatorFunc) OpenDetail(cam camera.Camera) { f(cam) }

// Viewport is the host-supplied drawing area and safe-area insets.
type Viewport struct {
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	SafeTop    float64 `json:"safeTop"`
	SafeBottom float64 `json:"safeBottom"`
}

// Options configures a Controller.
type Options struct {
	Capacity          int     // slot count, default slots.Capacity
	PaginationHeight  float64 // default geometry.DefaultPaginationHeight
	AppBarHeight      float64
	BottomNavHeight   float64
	ResponsiveColumns bool
	Layout            layout.Preference
	Navigator         Navigator
	Metrics           *slots.Metrics
	Logger            *zerolog.Logger
}

// Controller is the wall's owner.
type Controller struct {
	opts Options
	log  zerolog.Logger

	// Owned by the Run goroutine.
	slots    *slots.Manager
	pages    *paging.Allocator
	roster   []camera.Camera
	layout   layout.Spec
	viewport Viewport
	version  uint64

	cmds    chan func()
	mailbox *mailbox
	quit    chan struct{}
	done    chan struct{}
	started atomic.Bool
	once    sync.Once

	snapMu sync.RWMutex
	snap   ViewModel

	subMu  sync.Mutex
	subs   map[chan ViewModel]struct{}
	closed bool
}

// New builds a controller whose slots get players from factory. Call Run
// before issuing commands.
func New(factory slots.Factory, opts Options) *Controller {
	if opts.Capacity < 1 || opts.Capacity > slots.Capacity {
		opts.Capacity = slots.Capacity
	}
	if opts.PaginationHeight <= 0 {
		opts.PaginationHeight = geometry.DefaultPaginationHeight
	}
	lg := log.With().Str("component", "wall").Logger()
	if opts.Logger != nil {
		lg = opts.Logger.With().Str("component", "wall").Logger()
	}

	c := &Controller{
		opts:    opts,
		log:     lg,
		mailbox: newMailbox(),
		cmds:    make(chan func()),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
		subs:    make(map[chan ViewModel]struct{}),
	}
	c.slots = slots.New(opts.Capacity, factory, c.mailbox.post, slots.Options{
		Metrics: opts.Metrics,
		Logger:  opts.Logger,
	})

	spec, err := layout.Resolve(opts.Layout)
	if err != nil {
		c.log.Warn().Err(err).Str("layout", spec.String()).Msg("layout preference unusable, using default")
	}
	c.layout = spec
	c.pages = paging.New(c.pageSize())
	c.publish()
	return c
}

// Run applies commands and player events until ctx is done or Close is
// called. It disposes every player before returning.
func (c *Controller) Run(ctx context.Context) error {
	if c.started.Swap(true) {
		return errors.New("wall: already running")
	}
	defer close(c.done)
	defer c.shutdown()

	c.log.Info().Int("slots", c.slots.Capacity()).Str("layout", c.layout.String()).Msg("wall running")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.quit:
			return nil
		case fn := <-c.cmds:
			fn()
		case <-c.mailbox.notify:
			c.deliver()
		}
	}
}

func (c *Controller) deliver() {
	changed := false
	for _, ev := range c.mailbox.drain() {
		if c.slots.HandleEvent(ev) {
			changed = true
		}
	}
	if changed {
		c.publish()
	}
}

func (c *Controller) shutdown() {
	c.slots.Close()
	c.subMu.Lock()
	c.closed = true
	for ch := range c.subs {
		close(ch)
	}
	c.subs = nil
	c.subMu.Unlock()
	c.log.Info().Msg("wall stopped")
}

// Close stops Run and waits for the players to be disposed. Safe to call
// more than once.
func (c *Controller) Close() {
	c.once.Do(func() { close(c.quit) })
	if c.started.Load() {
		<-c.done
		return
	}
	// Never ran; nothing else can be touching the slots.
	c.slots.Close()
}

// do runs fn on the owner goroutine and waits for it.
func (c *Controller) do(fn func()) error {
	applied := make(chan struct{})
	select {
	case c.cmds <- func() { fn(); close(applied) }:
	case <-c.done:
		return ErrClosed
	case <-c.quit:
		return ErrClosed
	}
	<-applied
	return nil
}

// SetRoster replaces the camera roster snapshot.
func (c *Controller) SetRoster(cams []camera.Camera) error {
	snapshot := append([]camera.Camera(nil), cams...)
	return c.do(func() {
		c.roster = snapshot
		c.pages.SetRoster(len(snapshot))
		c.reassign()
		c.publish()
	})
}

// SetLayout switches the grid arrangement. An invalid spec falls back to
// layout.Default; the validation error is returned after the fallback is
// applied.
func (c *Controller) SetLayout(spec layout.Spec) error {
	var verr error
	if err := c.do(func() {
		if verr = spec.Validate(); verr != nil {
			c.log.Warn().Err(verr).Msg("invalid layout, using default")
			spec = layout.Default
		}
		c.layout = spec
		c.resize()
		c.publish()
	}); err != nil {
		return err
	}
	return verr
}

// SetViewport updates the drawing area. Streams are only touched when the
// width crosses a responsive breakpoint that changes the page size.
func (c *Controller) SetViewport(v Viewport) error {
	return c.do(func() {
		if v == c.viewport {
			return
		}
		c.viewport = v
		c.resize()
		c.publish()
	})
}

// Advance moves delta pages, clamped. It reports whether the page changed.
func (c *Controller) Advance(delta int) (bool, error) {
	var moved bool
	err := c.do(func() {
		if moved = c.pages.Advance(delta); moved {
			c.reassign()
			c.publish()
		}
	})
	return moved, err
}

// GoTo jumps to page index, clamped. It reports whether the page changed.
func (c *Controller) GoTo(index int) (bool, error) {
	var moved bool
	err := c.do(func() {
		if moved = c.pages.GoTo(index); moved {
			c.reassign()
			c.publish()
		}
	})
	return moved, err
}

// Refresh re-applies the current page and retries every failed slot.
// Healthy slots are left alone. It returns how many slots were retried.
func (c *Controller) Refresh() (int, error) {
	var retried int
	err := c.do(func() {
		c.reassign()
		retried = c.slots.RetryFailed()
		c.publish()
		c.log.Info().Int("retried", retried).Msg("wall refreshed")
	})
	return retried, err
}

// Retry re-opens one failed slot.
func (c *Controller) Retry(index int) error {
	var rerr error
	if err := c.do(func() {
		if rerr = c.slots.Retry(index); rerr == nil {
			c.publish()
		}
	}); err != nil {
		return err
	}
	return rerr
}

// Activate opens the detail view for the camera in slot index. Empty slots
// are ignored and report false.
func (c *Controller) Activate(index int) (bool, error) {
	var cam *camera.Camera
	var rerr error
	if err := c.do(func() {
		v, ok := c.slots.View(index)
		if !ok {
			rerr = slots.ErrSlotOutOfRange
			return
		}
		cam = v.Camera
	}); err != nil {
		return false, err
	}
	if rerr != nil || cam == nil {
		return false, rerr
	}
	if c.opts.Navigator != nil {
		c.opts.Navigator.OpenDetail(*cam)
	}
	c.log.Debug().Int("slot", index).Str("camera", cam.ID).Msg("cell activated")
	return true, nil
}

// Snapshot returns the latest published view-model.
func (c *Controller) Snapshot() ViewModel {
	c.snapMu.RLock()
	defer c.snapMu.RUnlock()
	return c.snap
}

// Subscribe returns a channel that always holds the most recent view-model;
// a slow reader skips intermediate versions. Call cancel to unsubscribe. The
// channel is closed when the controller stops.
func (c *Controller) Subscribe() (<-chan ViewModel, func()) {
	ch := make(chan ViewModel, 1)

	c.subMu.Lock()
	ch <- c.Snapshot()
	if c.closed {
		c.subMu.Unlock()
		close(ch)
		return ch, func() {}
	}
	c.subs[ch] = struct{}{}
	c.subMu.Unlock()

	cancel := func() {
		c.subMu.Lock()
		defer c.subMu.Unlock()
		if _, ok := c.subs[ch]; ok {
			delete(c.subs, ch)
			close(ch)
		}
	}
	return ch, cancel
}

// columns is the effective column count for the current viewport.
func (c *Controller) columns() int {
	cols := c.layout.Columns
	if c.opts.ResponsiveColumns && c.viewport.Width > 0 {
		cols = geometry.ResponsiveColumns(c.viewport.Width, cols)
	}
	return cols
}

// pageSize is how many cameras one page holds: the layout's capacity, capped
// by the visible cells and the slot count.
func (c *Controller) pageSize() int {
	n := c.layout.Capacity
	if cells := c.layout.Rows * c.columns(); cells < n {
		n = cells
	}
	if n > c.slots.Capacity() {
		n = c.slots.Capacity()
	}
	if n < 1 {
		n = 1
	}
	return n
}

// resize re-derives the page size; slots are reassigned only if it changed.
func (c *Controller) resize() {
	size := c.pageSize()
	if size == c.pages.Capacity() {
		return
	}
	c.log.Debug().Int("from", c.pages.Capacity()).Int("to", size).Msg("page size changed")
	c.pages.SetCapacity(size)
	c.reassign()
}

func (c *Controller) reassign() {
	c.slots.Assign(paging.Page(c.pages, c.roster))
}

func (c *Controller) geometry() (geometry.Geometry, error) {
	chrome := geometry.Chrome{
		AppBarHeight:    c.opts.AppBarHeight,
		BottomNavHeight: c.opts.BottomNavHeight,
		SafeTop:         c.viewport.SafeTop,
		SafeBottom:      c.viewport.SafeBottom,
	}
	return geometry.Compute(geometry.Input{
		ViewportWidth:        c.viewport.Width,
		ViewportHeight:       c.viewport.Height,
		ChromeHeight:         chrome.Height(),
		TotalPages:           c.pages.TotalPages(),
		PaginationUnitHeight: c.opts.PaginationHeight,
		Columns:              c.columns(),
		Rows:                 c.layout.Rows,
	})
}

func (c *Controller) publish() {
	c.version++
	geom, gerr := c.geometry()
	if gerr != nil {
		c.log.Warn().Err(gerr).Msg("grid geometry unavailable")
	}

	views := c.slots.Views()
	vm := ViewModel{
		Version:        c.version,
		Layout:         c.layout,
		Geometry:       geom,
		Page:           c.pages.Current(),
		TotalPages:     c.pages.TotalPages(),
		PageSize:       c.pages.Capacity(),
		RosterSize:     len(c.roster),
		ShowPagination: c.pages.TotalPages() > 1,
		HasPrev:        c.pages.HasPrev(),
		HasNext:        c.pages.HasNext(),
		Slots:          make([]SlotView, len(views)),
	}
	if gerr != nil {
		vm.GeometryError = gerr.Error()
	}
	for i, v := range views {
		vm.Slots[i] = slotView(v, i < vm.PageSize && geom.Visible(i))
	}

	c.snapMu.Lock()
	c.snap = vm
	c.snapMu.Unlock()

	c.subMu.Lock()
	for ch := range c.subs {
		select {
		case <-ch:
		default:
		}
		ch <- vm
	}
	c.subMu.Unlock()
}

// Errors
var (
	ErrClosed = errors.New("wall: controller closed")
)
