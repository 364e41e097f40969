package camera

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"gopkg.in/yaml.v3"
)

// Roster supplies the ordered camera sequence the wall pages through.
type Roster interface {
	Cameras() []Camera
}

// Source loads a fresh roster snapshot from somewhere outside the process.
type Source interface {
	Load(ctx context.Context) ([]Camera, error)
}

// =============================================================================
// Static roster
// =============================================================================

// StaticRoster is a fixed roster, safe for concurrent use.
type StaticRoster struct {
	mu      sync.RWMutex
	cameras []Camera
}

// NewStaticRoster copies cams into a new roster.
func NewStaticRoster(cams []Camera) *StaticRoster {
	r := &StaticRoster{}
	r.Replace(cams)
	return r
}

// Cameras returns a copy of the current roster.
func (r *StaticRoster) Cameras() []Camera {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cameras := make([]Camera, len(r.cameras))
	copy(cameras, r.cameras)
	return cameras
}

// Replace swaps in a new roster snapshot.
func (r *StaticRoster) Replace(cams []Camera) {
	cameras := make([]Camera, len(cams))
	copy(cameras, cams)

	r.mu.Lock()
	r.cameras = cameras
	r.mu.Unlock()
}

// Load implements Source so a StaticRoster can stand in for a remote one.
func (r *StaticRoster) Load(_ context.Context) ([]Camera, error) {
	return r.Cameras(), nil
}

// =============================================================================
// YAML file source
// =============================================================================

// rosterFile is the on-disk layout:
//
//	cameras:
//	  - id: lobby
//	    name: Lobby
//	    connected: true
//	    stream_uri: rtsp://10.0.0.5/stream1
type rosterFile struct {
	Cameras []Camera `yaml:"cameras"`
}

// FileSource reads a roster from a YAML file.
type FileSource struct {
	Path string
}

// Load reads and validates the roster file.
func (s FileSource) Load(_ context.Context) ([]Camera, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("camera: read roster %s: %w", s.Path, err)
	}
	return ParseYAML(data)
}

// ParseYAML decodes a roster document.
func ParseYAML(data []byte) ([]Camera, error) {
	var doc rosterFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRosterFormat, err)
	}
	if err := Validate(doc.Cameras); err != nil {
		return nil, err
	}
	return doc.Cameras, nil
}

// =============================================================================
// HTTP source
// =============================================================================

// rosterResponse mirrors the JSON body served by the camera inventory.
type rosterResponse struct {
	Cameras []Camera `json:"cameras"`
}

// HTTPSource fetches a roster snapshot from a JSON endpoint.
type HTTPSource struct {
	client *resty.Client
	url    string
}

// NewHTTPSource creates a source polling url with the given request timeout.
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	r := resty.New()
	r.SetHeader("Accept", "application/json")
	if timeout > 0 {
		r.SetTimeout(timeout)
	}
	return &HTTPSource{client: r, url: url}
}

// Load performs one GET and decodes the camera list.
func (s *HTTPSource) Load(ctx context.Context) ([]Camera, error) {
	var body rosterResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetResult(&body).
		Get(s.url)
	if err != nil {
		return nil, fmt.Errorf("camera: fetch roster: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("camera: fetch roster: unexpected status %d", resp.StatusCode())
	}
	if err := Validate(body.Cameras); err != nil {
		return nil, err
	}
	return body.Cameras, nil
}

// Poll loads from src every interval and hands each successful snapshot to
// onChange. It returns when ctx is done. Failed loads keep the last snapshot.
func Poll(ctx context.Context, src Source, interval time.Duration, onChange func([]Camera)) {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lg := logger()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cams, err := src.Load(ctx)
			if err != nil {
				lg.Warn().Err(err).Msg("roster poll failed, keeping last snapshot")
				continue
			}
			onChange(cams)
		}
	}
}
