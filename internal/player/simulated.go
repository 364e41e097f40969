package player

import (
	"context"
	"hash/fnv"
	"image"
	"image/color"
	"strings"
	"sync"
	"time"

	"camera-wall-go/internal/slots"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SimulatedConfig controls the test-pattern player.
type SimulatedConfig struct {
	StartupDelay time.Duration
	FPS          int
	Width        int
	Height       int
}

// DefaultSimulatedConfig returns a light pattern suitable for 20 tiles.
func DefaultSimulatedConfig() SimulatedConfig {
	return SimulatedConfig{
		StartupDelay: 400 * time.Millisecond,
		FPS:          5,
		Width:        160,
		Height:       90,
	}
}

// SimulatedPlayer paints a moving pattern instead of decoding. The URI scheme
// drives its behaviour:
//
//	fail://...   reports an error after the startup delay
//	hang://...   never produces a frame
//	stall://...  plays, then alternates between buffering and playing
//	anything else plays
type SimulatedPlayer struct {
	cfg     SimulatedConfig
	surface *Surface
	log     zerolog.Logger

	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	disposed bool
}

// NewSimulatedPlayer creates the player for slot index.
func NewSimulatedPlayer(index int, cfg SimulatedConfig) *SimulatedPlayer {
	if cfg.FPS <= 0 {
		cfg.FPS = 5
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 160, 90
	}
	return &SimulatedPlayer{
		cfg:     cfg,
		surface: NewSurface(),
		log:     log.With().Str("component", "player").Int("slot", index).Logger(),
	}
}

// Surface implements slots.Player.
func (p *SimulatedPlayer) Surface() slots.Surface {
	return p.surface
}

// Open starts painting for uri.
func (p *SimulatedPlayer) Open(uri string, emit slots.Emitter) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.disposed {
		return ErrDisposed
	}
	p.stopLocked()

	epoch := p.surface.Begin()
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.run(ctx, uri, emit, epoch, p.done)
	return nil
}

func (p *SimulatedPlayer) run(ctx context.Context, uri string, emit slots.Emitter, epoch uint64, done chan struct{}) {
	defer close(done)

	select {
	case <-ctx.Done():
		return
	case <-time.After(p.cfg.StartupDelay):
	}

	switch {
	case strings.HasPrefix(uri, "fail://"):
		emit.Failed(ErrSimulatedFailure)
		return
	case strings.HasPrefix(uri, "hang://"):
		<-ctx.Done()
		return
	}
	stall := strings.HasPrefix(uri, "stall://")

	seed := uriSeed(uri)
	ticker := time.NewTicker(time.Second / time.Duration(p.cfg.FPS))
	defer ticker.Stop()

	frame := 0
	buffering := false
	for {
		if stall && frame > 0 && frame%(p.cfg.FPS*4) == 0 {
			buffering = !buffering
			emit.Buffering(buffering)
		}
		if !buffering {
			if !p.surface.WriteFor(epoch, testPattern(p.cfg.Width, p.cfg.Height, seed, frame)) {
				return
			}
			if frame == 0 {
				emit.Ready()
				p.log.Debug().Str("uri", uri).Msg("simulated stream playing")
			}
		}
		frame++

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Stop ends the current stream.
func (p *SimulatedPlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *SimulatedPlayer) stopLocked() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
	p.cancel = nil
	p.done = nil
}

// Dispose stops the stream and refuses later opens.
func (p *SimulatedPlayer) Dispose() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	p.disposed = true
}

func uriSeed(uri string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(uri))
	return h.Sum32()
}

// testPattern draws a gradient tinted per stream with a bar sweeping across
// so frozen tiles are obvious.
func testPattern(width, height int, seed uint32, frame int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	base := color.RGBA{R: uint8(seed), G: uint8(seed >> 8), B: uint8(seed >> 16), A: 255}
	bar := (frame * 4) % width

	for y := 0; y < height; y++ {
		shade := uint8(255 * y / height)
		for x := 0; x < width; x++ {
			c := color.RGBA{
				R: base.R/2 + shade/2,
				G: base.G/2 + uint8(x*255/width)/2,
				B: base.B/2 + shade/4,
				A: 255,
			}
			if x >= bar && x < bar+6 {
				c = color.RGBA{R: 255, G: 255, B: 255, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}
