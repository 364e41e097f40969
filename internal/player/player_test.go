package player

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"camera-wall-go/internal/slots"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSurfaceReadIfNew(t *testing.T) {
	s := NewSurface()
	assert.NotEmpty(t, s.ID())
	assert.NotEqual(t, s.ID(), NewSurface().ID())

	_, last, ok := s.ReadIfNew(0)
	assert.False(t, ok)
	assert.Zero(t, last)

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	s.Write(img)
	got, last, ok := s.ReadIfNew(0)
	require.True(t, ok)
	assert.Equal(t, uint64(1), last)
	assert.Same(t, img, got)

	_, _, ok = s.ReadIfNew(last)
	assert.False(t, ok)

	s.Reset()
	assert.Nil(t, s.Read())
	assert.Zero(t, s.FrameCount())
	assert.True(t, s.LastFrameTime().IsZero())
}

func TestSurfaceConcurrentWriteRead(t *testing.T) {
	s := NewSurface()
	a := image.NewRGBA(image.Rect(0, 0, 2, 2))
	b := image.NewGray(image.Rect(0, 0, 2, 2))

	const writes = 20000
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < writes; i++ {
			if i%2 == 0 {
				s.Write(a)
			} else {
				s.Write(b)
			}
		}
	}()
	go func() {
		defer wg.Done()
		var last uint64
		for i := 0; i < writes; i++ {
			img, n, ok := s.ReadIfNew(last)
			if !ok {
				continue
			}
			// Odd counts were written with a, even counts with b.
			if n%2 == 1 {
				assert.Same(t, a, img)
			} else {
				assert.Same(t, b, img)
			}
			last = n
		}
	}()
	wg.Wait()

	assert.Equal(t, uint64(writes), s.FrameCount())
	assert.Same(t, b, s.Read())
}

func TestSurfaceWriteForDropsSupersededStream(t *testing.T) {
	s := NewSurface()
	old := s.Begin()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	require.True(t, s.WriteFor(old, img))

	s.Retire()
	assert.False(t, s.WriteFor(old, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	assert.Same(t, img, s.Read(), "retire keeps the last picture")

	current := s.Begin()
	assert.NotEqual(t, old, current)
	assert.Nil(t, s.Read())
	assert.False(t, s.WriteFor(old, img))
	assert.Zero(t, s.FrameCount())

	assert.True(t, s.WriteFor(current, img))
	assert.Equal(t, uint64(1), s.FrameCount())
}

func encodeFrame(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

// chunkReader returns at most n bytes per Read to split markers across reads.
type chunkReader struct {
	r io.Reader
	n int
}

func (c chunkReader) Read(p []byte) (int, error) {
	if len(p) > c.n {
		p = p[:c.n]
	}
	return c.r.Read(p)
}

func TestFrameReaderSplitsStream(t *testing.T) {
	a := encodeFrame(t, color.RGBA{R: 255, A: 255})
	b := encodeFrame(t, color.RGBA{B: 255, A: 255})

	var stream bytes.Buffer
	stream.WriteString("garbage before first frame")
	stream.Write(a)
	stream.Write(b)

	fr := newFrameReader(chunkReader{r: &stream, n: 7})

	got, err := fr.Next()
	require.NoError(t, err)
	assert.Equal(t, a, got)

	got, err = fr.Next()
	require.NoError(t, err)
	assert.Equal(t, b, got)

	img, err := decodeJPEG(got)
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())

	_, err = fr.Next()
	assert.ErrorIs(t, err, io.EOF)
}

// stutterReader returns (0, nil) a few times before every real read.
type stutterReader struct {
	r     io.Reader
	empty int
	left  int
}

func (s *stutterReader) Read(p []byte) (int, error) {
	if s.left > 0 {
		s.left--
		return 0, nil
	}
	s.left = s.empty
	return s.r.Read(p)
}

func TestFrameReaderToleratesEmptyReads(t *testing.T) {
	a := encodeFrame(t, color.RGBA{G: 255, A: 255})
	fr := newFrameReader(&stutterReader{r: bytes.NewReader(a), empty: 5, left: 5})

	got, err := fr.Next()
	require.NoError(t, err)
	assert.Equal(t, a, got)

	_, err = fr.Next()
	assert.ErrorIs(t, err, io.EOF)

	stuck := newFrameReader(&stutterReader{r: bytes.NewReader(a), left: maxEmptyReads + 1})
	_, err = stuck.Next()
	assert.ErrorIs(t, err, io.ErrNoProgress)
}

func TestFFmpegArgs(t *testing.T) {
	p := NewFFmpegPlayer(0, DefaultFFmpegConfig())

	args := p.Args("rtsp://cam/stream")
	assert.Contains(t, args, "-rtsp_transport")
	assert.Equal(t, "-", args[len(args)-1])
	assert.Contains(t, args, "image2pipe")

	args = p.Args("http://cam/mjpeg")
	assert.NotContains(t, args, "-rtsp_transport")
}

func TestFFmpegOpenWithoutBinary(t *testing.T) {
	cfg := DefaultFFmpegConfig()
	cfg.Binary = "definitely-not-an-ffmpeg-binary"
	p := NewFFmpegPlayer(0, cfg)

	err := p.Open("rtsp://cam", slots.NewEmitter(0, 1, func(slots.Event) {}))
	assert.Error(t, err)
	p.Stop()
	p.Dispose()
}

// A child that outlives the killed ffmpeg keeps the pipe open; Stop must not
// wait for it.
func TestFFmpegStopDoesNotWaitForExit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	bin := filepath.Join(t.TempDir(), "fake-ffmpeg")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\nsleep 1\nexit 0\n"), 0o755))

	cfg := DefaultFFmpegConfig()
	cfg.Binary = bin
	p := NewFFmpegPlayer(0, cfg)

	var log eventLog
	require.NoError(t, p.Open("rtsp://cam", slots.NewEmitter(0, 1, log.post)))

	start := time.Now()
	p.Stop()
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	p.Dispose()
	assert.Empty(t, log.kinds(), "a stopped stream reports nothing")
	assert.ErrorIs(t, p.Open("rtsp://cam", slots.NewEmitter(0, 2, log.post)), ErrDisposed)
}

type eventLog struct {
	mu     sync.Mutex
	events []slots.Event
}

func (l *eventLog) post(ev slots.Event) {
	l.mu.Lock()
	l.events = append(l.events, ev)
	l.mu.Unlock()
}

func (l *eventLog) kinds() []slots.EventKind {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]slots.EventKind, len(l.events))
	for i, ev := range l.events {
		out[i] = ev.Kind
	}
	return out
}

func fastSim() SimulatedConfig {
	return SimulatedConfig{StartupDelay: 5 * time.Millisecond, FPS: 50, Width: 16, Height: 9}
}

func TestSimulatedPlayerReady(t *testing.T) {
	p := NewSimulatedPlayer(3, fastSim())
	defer p.Dispose()

	var log eventLog
	require.NoError(t, p.Open("rtsp://cam/a", slots.NewEmitter(3, 7, log.post)))

	assert.Eventually(t, func() bool {
		return len(log.kinds()) > 0
	}, time.Second, 5*time.Millisecond)

	log.mu.Lock()
	first := log.events[0]
	log.mu.Unlock()
	assert.Equal(t, slots.EventReady, first.Kind)
	assert.Equal(t, 3, first.Slot)
	assert.Equal(t, uint64(7), first.Generation)
	assert.Eventually(t, func() bool { return p.surface.FrameCount() > 1 }, time.Second, 5*time.Millisecond)
}

func TestSimulatedPlayerFailure(t *testing.T) {
	p := NewSimulatedPlayer(0, fastSim())
	defer p.Dispose()

	var log eventLog
	require.NoError(t, p.Open("fail://cam", slots.NewEmitter(0, 1, log.post)))
	assert.Eventually(t, func() bool {
		k := log.kinds()
		return len(k) == 1 && k[0] == slots.EventError
	}, time.Second, 5*time.Millisecond)
}

func TestSimulatedPlayerStopSilences(t *testing.T) {
	cfg := fastSim()
	cfg.StartupDelay = 50 * time.Millisecond
	p := NewSimulatedPlayer(0, cfg)

	var log eventLog
	require.NoError(t, p.Open("rtsp://cam", slots.NewEmitter(0, 1, log.post)))
	p.Stop()
	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, log.kinds())

	p.Dispose()
	assert.ErrorIs(t, p.Open("rtsp://cam", slots.NewEmitter(0, 2, log.post)), ErrDisposed)
}

func TestNewFactory(t *testing.T) {
	f, err := NewFactory(Config{Kind: KindSimulated, Simulated: fastSim()})
	require.NoError(t, err)
	assert.IsType(t, &SimulatedPlayer{}, f(0))

	f, err = NewFactory(Config{Kind: KindFFmpeg, FFmpeg: DefaultFFmpegConfig()})
	require.NoError(t, err)
	assert.IsType(t, &FFmpegPlayer{}, f(0))

	_, err = NewFactory(Config{Kind: "vlc"})
	assert.ErrorIs(t, err, ErrUnknownKind)
}
