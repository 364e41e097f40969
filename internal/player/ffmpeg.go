package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"camera-wall-go/internal/slots"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// FFmpegConfig controls how streams are pulled through ffmpeg.
type FFmpegConfig struct {
	Binary        string        // ffmpeg executable, looked up in PATH
	RTSPTransport string        // "tcp" or "udp"; only applied to rtsp:// URIs
	FPS           int           // output frame rate, 0 keeps the source rate
	Quality       int           // mjpeg -q:v, 2 (best) .. 31
	StallTimeout  time.Duration // no frames for this long reports buffering
}

// DefaultFFmpegConfig returns settings suited to a 20-tile wall.
func DefaultFFmpegConfig() FFmpegConfig {
	return FFmpegConfig{
		Binary:        "ffmpeg",
		RTSPTransport: "tcp",
		FPS:           10,
		Quality:       7,
		StallTimeout:  3 * time.Second,
	}
}

// FFmpegPlayer decodes a network stream by piping it through an ffmpeg child
// process as MJPEG. One player is reused across every stream its slot shows.
type FFmpegPlayer struct {
	cfg     FFmpegConfig
	surface *Surface
	log     zerolog.Logger

	mu       sync.Mutex
	cancel   context.CancelFunc
	streams  sync.WaitGroup
	disposed bool
}

// NewFFmpegPlayer creates the player for slot index.
func NewFFmpegPlayer(index int, cfg FFmpegConfig) *FFmpegPlayer {
	if cfg.Binary == "" {
		cfg.Binary = "ffmpeg"
	}
	if cfg.StallTimeout <= 0 {
		cfg.StallTimeout = 3 * time.Second
	}
	return &FFmpegPlayer{
		cfg:     cfg,
		surface: NewSurface(),
		log:     log.With().Str("component", "player").Int("slot", index).Logger(),
	}
}

// Surface implements slots.Player.
func (p *FFmpegPlayer) Surface() slots.Surface {
	return p.surface
}

// Args builds the ffmpeg command line for uri.
func (p *FFmpegPlayer) Args(uri string) []string {
	args := []string{"-hide_banner", "-loglevel", "error", "-probesize", "32768", "-analyzeduration", "0"}
	if strings.HasPrefix(uri, "rtsp://") && p.cfg.RTSPTransport != "" {
		args = append(args, "-rtsp_transport", p.cfg.RTSPTransport)
	}
	args = append(args, "-i", uri, "-an")
	if p.cfg.FPS > 0 {
		args = append(args, "-r", strconv.Itoa(p.cfg.FPS))
	}
	q := p.cfg.Quality
	if q < 2 || q > 31 {
		q = 7
	}
	return append(args, "-f", "image2pipe", "-vcodec", "mjpeg", "-q:v", strconv.Itoa(q), "-")
}

// Open starts ffmpeg for uri. It fails synchronously only when the process
// cannot be started; stream failures arrive through emit.
func (p *FFmpegPlayer) Open(uri string, emit slots.Emitter) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.disposed {
		return ErrDisposed
	}
	p.stopLocked()

	bin, err := exec.LookPath(p.cfg.Binary)
	if err != nil {
		return fmt.Errorf("player: %s not available: %w", p.cfg.Binary, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, bin, p.Args(uri)...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("player: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("player: start ffmpeg: %w", err)
	}

	epoch := p.surface.Begin()
	p.cancel = cancel
	p.log.Debug().Int("pid", cmd.Process.Pid).Str("uri", uri).Msg("ffmpeg started")

	p.streams.Add(1)
	go p.run(ctx, cmd, stdout, emit, epoch)
	return nil
}

func (p *FFmpegPlayer) run(ctx context.Context, cmd *exec.Cmd, stdout io.Reader, emit slots.Emitter, epoch uint64) {
	defer p.streams.Done()

	var lastFrame atomic.Int64
	watchDone := make(chan struct{})
	go p.watch(ctx, &lastFrame, emit, watchDone)

	readErr := p.decode(epoch, stdout, &lastFrame, emit)
	close(watchDone)

	// Always reap the process, including after Stop.
	waitErr := cmd.Wait()
	if ctx.Err() != nil {
		return
	}

	err := ErrStreamEnded
	switch {
	case waitErr != nil:
		err = fmt.Errorf("%w: %v", ErrStreamEnded, waitErr)
	case readErr != nil && !errors.Is(readErr, io.EOF):
		err = fmt.Errorf("%w: %v", ErrStreamEnded, readErr)
	}
	p.log.Warn().Err(err).Msg("stream stopped unexpectedly")
	emit.Failed(err)
}

// decode reads frames until the pipe closes or the surface moves on to
// another stream.
func (p *FFmpegPlayer) decode(epoch uint64, stdout io.Reader, lastFrame *atomic.Int64, emit slots.Emitter) error {
	fr := newFrameReader(stdout)
	first := true
	for {
		data, err := fr.Next()
		if errors.Is(err, errFrameTooLarge) {
			p.surface.MarkDropped()
			continue
		}
		if err != nil {
			return err
		}

		img, err := decodeJPEG(data)
		if err != nil {
			p.surface.MarkDropped()
			continue
		}
		if !p.surface.WriteFor(epoch, img) {
			return nil
		}
		lastFrame.Store(time.Now().UnixNano())

		if first {
			first = false
			emit.Ready()
		}
		if n := p.surface.FrameCount(); n%300 == 1 {
			b := img.Bounds()
			p.log.Debug().
				Uint64("frame", n).
				Int("width", b.Dx()).
				Int("height", b.Dy()).
				Uint64("dropped", p.surface.DroppedCount()).
				Msg("decoding")
		}
	}
}

// watch reports buffering when frames stop arriving after the first one.
func (p *FFmpegPlayer) watch(ctx context.Context, lastFrame *atomic.Int64, emit slots.Emitter, done <-chan struct{}) {
	ticker := time.NewTicker(p.cfg.StallTimeout / 4)
	defer ticker.Stop()

	buffering := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-ticker.C:
			last := lastFrame.Load()
			if last == 0 {
				continue
			}
			stalled := time.Since(time.Unix(0, last)) > p.cfg.StallTimeout
			if stalled != buffering {
				buffering = stalled
				emit.Buffering(stalled)
			}
		}
	}
}

// Stop ends the current stream without waiting for ffmpeg to exit. The
// process is killed and reaped in the background; frames it still emits
// are discarded.
func (p *FFmpegPlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *FFmpegPlayer) stopLocked() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	p.surface.Retire()
	p.cancel = nil
}

// Dispose stops the stream, refuses later opens and waits until every
// ffmpeg process this player started has been reaped.
func (p *FFmpegPlayer) Dispose() {
	p.mu.Lock()
	p.stopLocked()
	p.disposed = true
	p.mu.Unlock()

	p.streams.Wait()
}
