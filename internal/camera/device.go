package camera

import (
	"errors"
	"fmt"
)

// Camera is an immutable snapshot of one roster entry.
type Camera struct {
	ID        string `yaml:"id" json:"id"`
	Name      string `yaml:"name" json:"name"`
	Connected bool   `yaml:"connected" json:"connected"`
	StreamURI string `yaml:"stream_uri" json:"streamUri"`
	Recording bool   `yaml:"recording" json:"recording"`
}

// Usable reports whether a player can be asked to open this camera.
func (c Camera) Usable() bool {
	return c.Connected && c.StreamURI != ""
}

// SameStream reports whether c and other would produce the same player content.
// Name and recording flag changes do not interrupt a running stream.
func (c Camera) SameStream(other Camera) bool {
	return c.ID == other.ID &&
		c.StreamURI == other.StreamURI &&
		c.Connected == other.Connected
}

// Badge returns the overlay badge shown on a populated cell.
func (c Camera) Badge() string {
	if c.Recording {
		return "REC"
	}
	return "LIVE"
}

// DisplayName falls back to the ID when no name was supplied.
func (c Camera) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}

// Validate checks the fields every roster source must provide.
func Validate(cams []Camera) error {
	seen := make(map[string]int, len(cams))
	for i, c := range cams {
		if c.ID == "" {
			return fmt.Errorf("%w: entry %d has no id", ErrRosterFormat, i)
		}
		if prev, ok := seen[c.ID]; ok {
			return fmt.Errorf("%w: duplicate id %q at entries %d and %d", ErrRosterFormat, c.ID, prev, i)
		}
		seen[c.ID] = i
	}
	return nil
}

// Errors
var (
	ErrRosterFormat = errors.New("camera: invalid roster")
)
