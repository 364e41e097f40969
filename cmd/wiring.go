package cmd

import (
	"context"
	"fmt"
	"time"

	"camera-wall-go/internal/camera"
	"camera-wall-go/internal/config"
	"camera-wall-go/internal/health"
	"camera-wall-go/internal/layout"
	"camera-wall-go/internal/player"
	"camera-wall-go/internal/slots"
	"camera-wall-go/internal/wall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
)

func playerConfig(c *config.Config) player.Config {
	ff := player.DefaultFFmpegConfig()
	ff.Binary = c.FFmpegPath
	ff.RTSPTransport = c.RTSPTransport
	ff.FPS = c.StreamFPS
	ff.Quality = c.StreamQuality
	ff.StallTimeout = time.Duration(c.StallTimeoutMS) * time.Millisecond

	sim := player.DefaultSimulatedConfig()
	sim.StartupDelay = time.Duration(c.SimStartupDelayMS) * time.Millisecond

	return player.Config{Kind: c.PlayerKind, FFmpeg: ff, Simulated: sim}
}

// layoutPreference turns the configured preset name into a Preference. An
// unknown name was already reported by Validate and falls back to Default.
func layoutPreference(c *config.Config) layout.Preference {
	spec, err := layout.Preset(c.Layout, c.SlotCapacity)
	if err != nil {
		return layout.None{}
	}
	return layout.Fixed(spec)
}

// newRegistry is the Prometheus registry shared by the wall and the API.
func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// newWall builds the controller from configuration. It is not running yet.
func newWall(c *config.Config, reg prometheus.Registerer, nav wall.Navigator) (*wall.Controller, error) {
	factory, err := player.NewFactory(playerConfig(c))
	if err != nil {
		return nil, err
	}
	return wall.New(factory, wall.Options{
		Capacity:          c.SlotCapacity,
		PaginationHeight:  c.PaginationHeight,
		AppBarHeight:      c.AppBarHeight,
		BottomNavHeight:   c.BottomNavHeight,
		ResponsiveColumns: c.ResponsiveColumns,
		Layout:            layoutPreference(c),
		Navigator:         nav,
		Metrics:           slots.NewMetrics(reg),
	}), nil
}

// rosterSource picks the HTTP inventory when a URL is configured, the YAML
// file otherwise.
func rosterSource(c *config.Config) camera.Source {
	if c.RosterURL != "" {
		return camera.NewHTTPSource(c.RosterURL, time.Duration(c.RosterTimeoutMS)*time.Millisecond)
	}
	if c.RosterFile != "" {
		return camera.FileSource{Path: c.RosterFile}
	}
	return camera.NewStaticRoster(nil)
}

// startRoster loads the first roster snapshot into ctrl and keeps it current
// until ctx is done: the URL is polled, the file is watched.
func startRoster(ctx context.Context, c *config.Config, ctrl *wall.Controller) {
	logger := log.With().Str("component", "main").Logger()
	src := rosterSource(c)

	apply := func(cams []camera.Camera) {
		if err := ctrl.SetRoster(cams); err != nil {
			logger.Warn().Err(err).Msg("roster update not applied")
		}
	}

	cams, err := src.Load(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("initial roster load failed, starting empty")
	} else {
		logger.Info().Int("cameras", len(cams)).Msg("roster loaded")
		apply(cams)
	}

	switch {
	case c.RosterURL != "":
		go camera.Poll(ctx, src, time.Duration(c.RosterPollIntervalMS)*time.Millisecond, apply)
	case c.RosterFile != "" && c.RosterWatch:
		w := camera.NewWatcher(c.RosterFile, apply)
		go func() {
			if err := w.Run(ctx); err != nil {
				logger.Warn().Err(err).Msg("roster watcher stopped")
			}
		}()
	}
}

// startHealth runs the periodic health summary against ctrl.
func startHealth(ctx context.Context, c *config.Config, ctrl *wall.Controller, reg prometheus.Registerer) *health.Reporter {
	monitor := health.NewMonitor(c.CPULoadThreshold, c.CPUTempThresholdC)
	interval := time.Duration(c.HealthLogIntervalSec * float64(time.Second))
	r := health.NewReporter(monitor, ctrl.Snapshot, interval, reg)
	go r.Run(ctx)
	return r
}

// runWall starts the controller's owner goroutine and returns a function
// that stops it and waits for the players to be released.
func runWall(ctx context.Context, ctrl *wall.Controller) func() {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := ctrl.Run(ctx); err != nil {
			log.Error().Str("component", "main").Err(err).Msg("wall stopped with error")
		}
	}()
	return func() {
		ctrl.Close()
		<-done
	}
}

func listenAddr(c *config.Config, override string) string {
	if override != "" {
		return override
	}
	return c.ServerAddr()
}

func banner(mode string) {
	log.Info().
		Str("component", "main").
		Str("version", Version).
		Str("mode", mode).
		Str("player", cfg.PlayerKind).
		Str("layout", cfg.Layout).
		Int("slots", cfg.SlotCapacity).
		Msg(fmt.Sprintf("camera-wall %s starting", Version))
}
