// Package slots owns the wall's fixed set of player slots.
//
// Each slot is permanently bound to one Player created at construction and
// disposed once at Close. Assign maps a page of cameras onto slots by index
// and only touches players whose content actually changed. Every
// reassignment bumps the slot's generation; HandleEvent drops any event whose
// generation no longer matches, which is also how a superseded open is
// cancelled.
//
// Manager is not safe for concurrent use. One owner goroutine calls every
// method; players deliver events through the post function given to New,
// which must hand them back to that owner.
package slots

import (
	"errors"
	"time"

	"camera-wall-go/internal/camera"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Capacity is the number of simultaneous decode/display slots.
const Capacity = 20

// Options configures a Manager.
type Options struct {
	Metrics *Metrics
	Logger  *zerolog.Logger
}

// slot is one fixed grid position.
type slot struct {
	index      int
	player     Player
	camera     *camera.Camera
	state      PlayerState
	generation uint64
	active     bool // an Open was issued and not yet stopped
	err        error
	changedAt  time.Time
}

// View is the renderer-facing snapshot of one slot.
type View struct {
	Index      int
	Camera     *camera.Camera
	State      PlayerState
	Surface    Surface
	Generation uint64
	Err        error
	Since      time.Time
}

// Status is the overlay text for the cell; empty while playing.
func (v View) Status() string {
	switch v.State {
	case StateIdle:
		if v.Camera == nil {
			return "No Camera"
		}
		return ""
	case StateLoading:
		return "Loading"
	case StateBuffering:
		return "Buffering"
	case StateError:
		return "Stream Error"
	default:
		return ""
	}
}

// Manager drives the per-slot state machines.
type Manager struct {
	slots   []*slot
	post    func(Event)
	metrics *Metrics
	log     zerolog.Logger
	closed  bool
}

// New creates capacity slots, each with a player from factory. post is
// handed to every Emitter; it must be non-blocking and must not call back
// into the Manager synchronously.
func New(capacity int, factory Factory, post func(Event), opts Options) *Manager {
	if capacity < 1 {
		capacity = Capacity
	}
	lg := log.With().Str("component", "slots").Logger()
	if opts.Logger != nil {
		lg = opts.Logger.With().Str("component", "slots").Logger()
	}

	m := &Manager{
		slots:   make([]*slot, capacity),
		post:    post,
		metrics: opts.Metrics,
		log:     lg,
	}
	now := time.Now()
	for i := range m.slots {
		m.slots[i] = &slot{index: i, player: factory(i), state: StateIdle, changedAt: now}
		m.metrics.setState(i, StateIdle)
	}
	m.log.Debug().Int("capacity", capacity).Msg("slot players created")
	return m
}

// Capacity returns the number of slots.
func (m *Manager) Capacity() int {
	return len(m.slots)
}

// Assign maps page onto slots 0..len(page)-1; remaining slots are cleared.
// Cameras beyond capacity are ignored. A camera id that repeats within the
// page is only assigned to its first slot. Slots whose camera keeps the same
// stream are left untouched.
func (m *Manager) Assign(page []camera.Camera) {
	if m.closed {
		return
	}
	seen := make(map[string]bool, len(page))
	for i, s := range m.slots {
		var target *camera.Camera
		if i < len(page) {
			cam := page[i]
			if seen[cam.ID] {
				m.log.Warn().Str("camera", cam.ID).Int("slot", i).Msg("duplicate camera on page, slot left empty")
			} else {
				seen[cam.ID] = true
				target = &cam
			}
		}
		m.assignSlot(s, target)
	}
}

func (m *Manager) assignSlot(s *slot, target *camera.Camera) {
	switch {
	case s.camera == nil && target == nil:
		return
	case s.camera != nil && target != nil && s.camera.SameStream(*target):
		// Same stream: refresh display fields only.
		s.camera = target
		return
	}

	s.generation++
	m.stop(s)
	s.camera = target
	s.err = nil

	if target == nil {
		m.setState(s, StateIdle)
		return
	}
	m.open(s)
}

// open requests the slot's current camera, or fails it immediately when the
// camera cannot be opened. The slot never passes through Loading on an
// immediate failure.
func (m *Manager) open(s *slot) {
	cam := s.camera
	switch {
	case !cam.Connected:
		m.fail(s, ErrCameraDisconnected, "disconnected")
		return
	case cam.StreamURI == "":
		m.fail(s, ErrNoStreamURI, "no_uri")
		return
	}

	emit := Emitter{slot: s.index, generation: s.generation, post: m.post}
	if err := s.player.Open(cam.StreamURI, emit); err != nil {
		m.fail(s, &PlaybackError{Slot: s.index, URI: cam.StreamURI, Err: err}, "open")
		return
	}
	s.active = true
	m.metrics.opened()
	m.setState(s, StateLoading)
	m.log.Debug().
		Int("slot", s.index).
		Str("camera", cam.ID).
		Uint64("generation", s.generation).
		Msg("stream requested")
}

func (m *Manager) stop(s *slot) {
	if !s.active {
		return
	}
	s.player.Stop()
	s.active = false
	m.metrics.stopped()
}

func (m *Manager) fail(s *slot, err error, cause string) {
	s.err = err
	m.metrics.failed(cause)
	m.setState(s, StateError)
	ev := m.log.Info().Int("slot", s.index).Err(err)
	if s.camera != nil {
		ev = ev.Str("camera", s.camera.ID)
	}
	ev.Msg("slot entered error")
}

func (m *Manager) setState(s *slot, st PlayerState) {
	if s.state == st {
		return
	}
	s.state = st
	s.changedAt = time.Now()
	m.metrics.setState(s.index, st)
}

// HandleEvent applies a player event to its slot. It reports whether the
// event changed anything; events for a superseded generation are discarded
// silently.
func (m *Manager) HandleEvent(ev Event) bool {
	if m.closed || ev.Slot < 0 || ev.Slot >= len(m.slots) {
		return false
	}
	s := m.slots[ev.Slot]
	if ev.Generation != s.generation {
		m.metrics.staleEvent()
		m.log.Debug().
			Int("slot", ev.Slot).
			Uint64("event_generation", ev.Generation).
			Uint64("slot_generation", s.generation).
			Stringer("kind", ev.Kind).
			Msg("stale player event discarded")
		return false
	}

	before := s.state
	switch ev.Kind {
	case EventReady:
		if s.state == StateLoading || s.state == StateBuffering {
			m.setState(s, StatePlaying)
		}
	case EventBuffering:
		switch {
		case ev.Buffering && s.state == StatePlaying:
			m.setState(s, StateBuffering)
		case !ev.Buffering && (s.state == StateLoading || s.state == StateBuffering):
			m.setState(s, StatePlaying)
		}
	case EventError:
		if s.state == StateLoading || s.state == StateBuffering || s.state == StatePlaying {
			cause := ev.Err
			if cause == nil {
				cause = ErrPlayerUnknownError
			}
			uri := ""
			if s.camera != nil {
				uri = s.camera.StreamURI
			}
			m.fail(s, &PlaybackError{Slot: s.index, URI: uri, Err: cause}, "playback")
		}
	}
	return s.state != before
}

// Retry re-opens a slot that is in Error. The slot gets a new generation so
// anything still in flight from the failed attempt is ignored.
func (m *Manager) Retry(index int) error {
	if index < 0 || index >= len(m.slots) {
		return ErrSlotOutOfRange
	}
	s := m.slots[index]
	if s.state != StateError || s.camera == nil {
		return ErrNotRetryable
	}

	s.generation++
	m.stop(s)
	s.err = nil
	m.open(s)
	return nil
}

// RetryFailed retries every slot in Error and returns how many were retried.
func (m *Manager) RetryFailed() int {
	n := 0
	for i := range m.slots {
		if err := m.Retry(i); err == nil {
			n++
		} else if !errors.Is(err, ErrNotRetryable) {
			m.log.Warn().Err(err).Int("slot", i).Msg("retry failed")
		}
	}
	return n
}

// View returns one slot's snapshot.
func (m *Manager) View(index int) (View, bool) {
	if index < 0 || index >= len(m.slots) {
		return View{}, false
	}
	return m.slots[index].view(), true
}

// Views returns a snapshot of every slot in index order.
func (m *Manager) Views() []View {
	views := make([]View, len(m.slots))
	for i, s := range m.slots {
		views[i] = s.view()
	}
	return views
}

func (s *slot) view() View {
	v := View{
		Index:      s.index,
		State:      s.state,
		Surface:    s.player.Surface(),
		Generation: s.generation,
		Err:        s.err,
		Since:      s.changedAt,
	}
	if s.camera != nil {
		cam := *s.camera
		v.Camera = &cam
	}
	return v
}

// Close stops and disposes every player exactly once. Later calls are no-ops.
func (m *Manager) Close() {
	if m.closed {
		return
	}
	m.closed = true
	for _, s := range m.slots {
		s.generation++
		m.stop(s)
		s.player.Dispose()
	}
	m.log.Debug().Int("players", len(m.slots)).Msg("slot players disposed")
}
