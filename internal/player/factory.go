package player

import (
	"errors"
	"fmt"

	"camera-wall-go/internal/slots"
)

// Kinds of player a wall can be built with.
const (
	KindFFmpeg    = "ffmpeg"
	KindSimulated = "simulated"
)

// Config selects and tunes the slot players.
type Config struct {
	Kind      string
	FFmpeg    FFmpegConfig
	Simulated SimulatedConfig
}

// NewFactory returns a slots.Factory for cfg.Kind.
func NewFactory(cfg Config) (slots.Factory, error) {
	switch cfg.Kind {
	case KindFFmpeg:
		return func(index int) slots.Player {
			return NewFFmpegPlayer(index, cfg.FFmpeg)
		}, nil
	case KindSimulated, "":
		return func(index int) slots.Player {
			return NewSimulatedPlayer(index, cfg.Simulated)
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, cfg.Kind)
	}
}

// Errors
var (
	ErrDisposed         = errors.New("player: disposed")
	ErrStreamEnded      = errors.New("player: stream ended")
	ErrSimulatedFailure = errors.New("player: simulated stream failure")
	ErrUnknownKind      = errors.New("player: unknown player kind")
)
