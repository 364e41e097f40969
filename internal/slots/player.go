package slots

import (
	"errors"
	"fmt"
	"image"
)

// PlayerState is the per-slot playback state.
type PlayerState int

const (
	StateIdle      PlayerState = iota // no camera, or camera cleared
	StateLoading                      // open requested, no frames yet
	StateBuffering                    // was producing frames, temporarily starved
	StatePlaying                      // frames flowing
	StateError                        // terminal until reassignment or retry
)

// String returns a lowercase name suitable for logs, JSON and metric labels.
func (s PlayerState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateBuffering:
		return "buffering"
	case StatePlaying:
		return "playing"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// AllStates lists every state in declaration order.
var AllStates = []PlayerState{StateIdle, StateLoading, StateBuffering, StatePlaying, StateError}

// Surface is the display target a player draws into. The renderer reads the
// latest frame; the ID doubles as the view-model's display surface handle.
type Surface interface {
	ID() string
	ReadIfNew(lastRead uint64) (image.Image, uint64, bool)
}

// Player is one long-lived stream player. Each slot owns exactly one for its
// whole lifetime; reassignment reuses it through Stop and Open.
//
// Open must not block waiting for the stream. It returns an error only when
// the request can be rejected immediately; everything later is reported
// through the Emitter, which is tagged with the assignment the open was made
// for. Stop ends the current stream, if any. Dispose releases the player and
// is called exactly once.
type Player interface {
	Open(uri string, emit Emitter) error
	Stop()
	Dispose()
	Surface() Surface
}

// Factory creates the player for slot index.
type Factory func(index int) Player

// EventKind identifies an asynchronous player notification.
type EventKind int

const (
	EventReady EventKind = iota
	EventBuffering
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventReady:
		return "ready"
	case EventBuffering:
		return "buffering"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is a player notification tagged with the slot and the assignment
// generation it pertains to.
type Event struct {
	Slot       int
	Generation uint64
	Kind       EventKind
	Buffering  bool
	Err        error
}

// Emitter is handed to Player.Open. Every event it produces carries the slot
// and generation of that open, so events from a superseded open are
// recognisably stale. Emitter is safe to call from any goroutine; post is
// expected to marshal the event onto the owner context.
type Emitter struct {
	slot       int
	generation uint64
	post       func(Event)
}

// NewEmitter builds an emitter by hand; players under test use it.
func NewEmitter(slot int, generation uint64, post func(Event)) Emitter {
	return Emitter{slot: slot, generation: generation, post: post}
}

// Ready reports that frames are flowing.
func (e Emitter) Ready() {
	e.send(Event{Kind: EventReady})
}

// Buffering reports a buffering flag change.
func (e Emitter) Buffering(on bool) {
	e.send(Event{Kind: EventBuffering, Buffering: on})
}

// Failed reports a decode or connection failure.
func (e Emitter) Failed(err error) {
	e.send(Event{Kind: EventError, Err: err})
}

func (e Emitter) send(ev Event) {
	if e.post == nil {
		return
	}
	ev.Slot = e.slot
	ev.Generation = e.generation
	e.post(ev)
}

// PlaybackError wraps a failure reported by an in-flight player.
type PlaybackError struct {
	Slot int
	URI  string
	Err  error
}

func (e *PlaybackError) Error() string {
	return fmt.Sprintf("slots: playback failed on slot %d (%s): %v", e.Slot, e.URI, e.Err)
}

func (e *PlaybackError) Unwrap() error { return e.Err }

// Errors
var (
	ErrNoStreamURI        = errors.New("slots: camera has no stream uri")
	ErrCameraDisconnected = errors.New("slots: camera is disconnected")
	ErrSlotOutOfRange     = errors.New("slots: slot index out of range")
	ErrNotRetryable       = errors.New("slots: slot is not in error")
	ErrPlayerUnknownError = errors.New("slots: player reported an unspecified error")
)
