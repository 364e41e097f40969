package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"camera-wall-go/internal/camera"
	"camera-wall-go/internal/config"
	"camera-wall-go/internal/layout"
	"camera-wall-go/internal/player"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseViewport(t *testing.T) {
	v, err := parseViewport("1920x1080")
	require.NoError(t, err)
	assert.Equal(t, 1920.0, v.Width)
	assert.Equal(t, 1080.0, v.Height)

	v, err = parseViewport(" 800X600 ")
	require.NoError(t, err)
	assert.Equal(t, 800.0, v.Width)

	for _, bad := range []string{"", "1920", "ax600", "800xb", "-1x600"} {
		_, err := parseViewport(bad)
		assert.Error(t, err, bad)
	}
}

func TestPlayerConfig(t *testing.T) {
	c := config.DefaultConfig()
	c.PlayerKind = player.KindFFmpeg
	c.StallTimeoutMS = 1500
	c.SimStartupDelayMS = 0

	pc := playerConfig(c)
	assert.Equal(t, player.KindFFmpeg, pc.Kind)
	assert.Equal(t, "ffmpeg", pc.FFmpeg.Binary)
	assert.Equal(t, 1500*time.Millisecond, pc.FFmpeg.StallTimeout)
	assert.Equal(t, time.Duration(0), pc.Simulated.StartupDelay)
}

func TestLayoutPreference(t *testing.T) {
	c := config.DefaultConfig()
	c.Layout = "3x3"
	spec, ok := layoutPreference(c).CurrentLayout()
	require.True(t, ok)
	assert.Equal(t, 9, spec.Capacity)

	c.Layout = "bogus"
	_, ok = layoutPreference(c).CurrentLayout()
	assert.False(t, ok)

	c.Layout = "default"
	spec, _ = layoutPreference(c).CurrentLayout()
	assert.Equal(t, layout.Default, spec)
}

func TestRosterSource(t *testing.T) {
	c := config.DefaultConfig()
	c.RosterURL = "http://inventory/cameras"
	assert.IsType(t, &camera.HTTPSource{}, rosterSource(c))

	c.RosterURL = ""
	c.RosterFile = "cameras.yaml"
	assert.Equal(t, camera.FileSource{Path: "cameras.yaml"}, rosterSource(c))

	c.RosterFile = ""
	assert.IsType(t, &camera.StaticRoster{}, rosterSource(c))
}

func TestWallFromConfig(t *testing.T) {
	dir := t.TempDir()
	roster := filepath.Join(dir, "cameras.yaml")
	require.NoError(t, os.WriteFile(roster, []byte(`cameras:
  - id: a
    connected: true
    stream_uri: sim://a
  - id: b
    connected: false
`), 0o644))

	c := config.DefaultConfig()
	c.RosterFile = roster
	c.RosterWatch = false
	c.SimStartupDelayMS = 0

	ctrl, err := newWall(c, prometheus.NewRegistry(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stop := runWall(ctx, ctrl)
	defer stop()

	startRoster(ctx, c, ctrl)
	vm := ctrl.Snapshot()
	assert.Equal(t, 2, vm.RosterSize)
	assert.Equal(t, "a", vm.Slots[0].Camera.ID)
	assert.Equal(t, "error", vm.Slots[1].State)
}

func TestNewWallUnknownPlayer(t *testing.T) {
	c := config.DefaultConfig()
	c.PlayerKind = "vlc"
	_, err := newWall(c, prometheus.NewRegistry(), nil)
	assert.ErrorIs(t, err, player.ErrUnknownKind)
}
