// Package player provides the slot players: an ffmpeg-backed network stream
// player and a simulated player that paints test patterns. Both draw into a
// Surface that the renderer polls.
package player

import (
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Surface holds the latest decoded frame of one player.
// The decode goroutine writes at stream rate, the renderer reads when ready.
type Surface struct {
	id string

	mu         sync.RWMutex
	frame      image.Image
	frameCount uint64
	epoch      uint64
	startedAt  time.Time

	lastFrameAt  atomic.Int64 // Unix nano timestamp
	droppedCount atomic.Uint64
}

// NewSurface creates an empty surface with a fresh handle.
func NewSurface() *Surface {
	return &Surface{
		id:        uuid.NewString(),
		startedAt: time.Now(),
	}
}

// ID is the stable display handle of this surface.
func (s *Surface) ID() string {
	return s.id
}

// Write stores a new frame. It never waits on the decoder.
func (s *Surface) Write(frame image.Image) {
	s.mu.Lock()
	s.storeLocked(frame)
	s.mu.Unlock()
}

// Begin clears the surface for a new stream and returns the epoch that
// stream must pass to WriteFor.
func (s *Surface) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	return s.epoch
}

// Retire invalidates the current epoch without clearing the last frame.
func (s *Surface) Retire() {
	s.mu.Lock()
	s.epoch++
	s.mu.Unlock()
}

// WriteFor stores frame only while epoch is current. It reports whether the
// frame was kept.
func (s *Surface) WriteFor(epoch uint64, frame image.Image) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return false
	}
	s.storeLocked(frame)
	return true
}

func (s *Surface) storeLocked(frame image.Image) {
	s.frame = frame
	s.frameCount++
	s.lastFrameAt.Store(time.Now().UnixNano())
}

// Read returns the latest frame, or nil before the first one.
func (s *Surface) Read() image.Image {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frame
}

// ReadIfNew returns the frame only if it is newer than lastRead.
func (s *Surface) ReadIfNew(lastRead uint64) (image.Image, uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.frameCount <= lastRead {
		return nil, lastRead, false
	}
	return s.frame, s.frameCount, true
}

// FrameCount returns frames written since the last Reset.
func (s *Surface) FrameCount() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frameCount
}

// LastFrameTime returns when the last frame was written.
func (s *Surface) LastFrameTime() time.Time {
	nanos := s.lastFrameAt.Load()
	if nanos == 0 {
		return time.Time{}
	}
	return time.Unix(0, nanos)
}

// FPS returns the average write rate since the last Reset.
func (s *Surface) FPS() float64 {
	s.mu.RLock()
	started, n := s.startedAt, s.frameCount
	s.mu.RUnlock()

	elapsed := time.Since(started).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(n) / elapsed
}

// Reset clears the frame and counters. Called when a new stream starts so
// the previous camera's picture never shows under the new one.
func (s *Surface) Reset() {
	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()
}

func (s *Surface) resetLocked() {
	s.frame = nil
	s.frameCount = 0
	s.epoch++
	s.startedAt = time.Now()
	s.droppedCount.Store(0)
	s.lastFrameAt.Store(0)
}

// MarkDropped counts a frame that could not be decoded.
func (s *Surface) MarkDropped() {
	s.droppedCount.Add(1)
}

// DroppedCount returns frames dropped since the last Reset.
func (s *Surface) DroppedCount() uint64 {
	return s.droppedCount.Load()
}
