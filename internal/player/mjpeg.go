package player

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"io"
)

var (
	soiMarker = []byte{0xFF, 0xD8}
	eoiMarker = []byte{0xFF, 0xD9}
)

const (
	maxScanBytes  = 100000
	keepScanBytes = 10000
	maxFrameBytes = 4 << 20
)

var errFrameTooLarge = errors.New("player: mjpeg frame exceeds size limit")

// frameReader splits an image2pipe MJPEG byte stream into JPEG frames.
type frameReader struct {
	r       io.Reader
	buf     []byte
	pending []byte
}

func newFrameReader(r io.Reader) *frameReader {
	return &frameReader{
		r:       r,
		buf:     make([]byte, 8192),
		pending: make([]byte, 0, 65536),
	}
}

// Next returns the raw bytes of the next complete JPEG frame.
func (f *frameReader) Next() ([]byte, error) {
	// Find SOI
	for {
		if i := bytes.Index(f.pending, soiMarker); i >= 0 {
			f.pending = f.pending[i:]
			break
		}
		if len(f.pending) > maxScanBytes {
			f.pending = append(f.pending[:0], f.pending[len(f.pending)-keepScanBytes:]...)
		}
		if err := f.fill(); err != nil {
			return nil, err
		}
	}

	// Find EOI after the SOI
	searchFrom := len(soiMarker)
	for {
		if i := bytes.Index(f.pending[searchFrom:], eoiMarker); i >= 0 {
			end := searchFrom + i + len(eoiMarker)
			frame := make([]byte, end)
			copy(frame, f.pending[:end])
			f.pending = append(f.pending[:0], f.pending[end:]...)
			return frame, nil
		}
		if len(f.pending) > maxFrameBytes {
			f.pending = f.pending[:0]
			return nil, errFrameTooLarge
		}
		if len(f.pending) > searchFrom+1 {
			searchFrom = len(f.pending) - 1
		}
		if err := f.fill(); err != nil {
			return nil, err
		}
	}
}

// maxEmptyReads matches bufio's tolerance for readers returning (0, nil).
const maxEmptyReads = 100

func (f *frameReader) fill() error {
	for i := 0; i < maxEmptyReads; i++ {
		n, err := f.r.Read(f.buf)
		if n > 0 {
			f.pending = append(f.pending, f.buf[:n]...)
			return nil
		}
		if err != nil {
			return err
		}
	}
	return io.ErrNoProgress
}

func decodeJPEG(data []byte) (image.Image, error) {
	return jpeg.Decode(bytes.NewReader(data))
}
