// Package config manages configuration for the camera wall.
//
// Settings come from an INI file read through viper, with WALL_-prefixed
// environment variables overriding individual keys (WALL_SERVER_PORT
// overrides [server] port). Missing files and keys fall back to defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"camera-wall-go/internal/layout"

	"github.com/spf13/viper"
)

// =============================================================================
// Configuration struct
// =============================================================================

// Config holds all runtime configuration values.
type Config struct {
	// Logging
	LogLevel       string
	LogFile        string
	LogMaxBytes    int
	LogBackupCount int
	LogToStdout    bool

	// Wall
	SlotCapacity      int
	Layout            string
	PaginationHeight  float64
	AppBarHeight      float64
	BottomNavHeight   float64
	ResponsiveColumns bool

	// Roster
	RosterFile           string
	RosterURL            string
	RosterWatch          bool
	RosterPollIntervalMS int
	RosterTimeoutMS      int

	// Player
	PlayerKind        string // "simulated" or "ffmpeg"
	FFmpegPath        string
	RTSPTransport     string
	StreamFPS         int
	StreamQuality     int
	StallTimeoutMS    int
	SimStartupDelayMS int
	UIFPS             int

	// Window
	WindowTitle  string
	WindowWidth  int
	WindowHeight int
	Fullscreen   bool

	// Server
	ServerHost string
	ServerPort int

	// Health
	HealthLogIntervalSec float64
	CPULoadThreshold     float64
	CPUTempThresholdC    float64
}

// =============================================================================
// Defaults
// =============================================================================

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		// Logging
		LogLevel:       "INFO",
		LogFile:        "./logs/camera_wall.log",
		LogMaxBytes:    5 * 1024 * 1024, // 5 MB
		LogBackupCount: 3,
		LogToStdout:    true,

		// Wall
		SlotCapacity:      20,
		Layout:            "default",
		PaginationHeight:  48,
		AppBarHeight:      56,
		BottomNavHeight:   0,
		ResponsiveColumns: true,

		// Roster
		RosterFile:           "./cameras.yaml",
		RosterURL:            "",
		RosterWatch:          true,
		RosterPollIntervalMS: 15000,
		RosterTimeoutMS:      5000,

		// Player
		PlayerKind:        "simulated",
		FFmpegPath:        "ffmpeg",
		RTSPTransport:     "tcp",
		StreamFPS:         10,
		StreamQuality:     7,
		StallTimeoutMS:    3000,
		SimStartupDelayMS: 400,
		UIFPS:             10,

		// Window
		WindowTitle:  "Camera Wall",
		WindowWidth:  1280,
		WindowHeight: 800,
		Fullscreen:   false,

		// Server
		ServerHost: "0.0.0.0",
		ServerPort: 8080,

		// Health
		HealthLogIntervalSec: 30.0,
		CPULoadThreshold:     3.0,
		CPUTempThresholdC:    75.0,
	}
}

// setDefaults registers every key with viper so env overrides apply even
// when the INI file lacks the key.
func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("logging.level", c.LogLevel)
	v.SetDefault("logging.file", c.LogFile)
	v.SetDefault("logging.max_bytes", c.LogMaxBytes)
	v.SetDefault("logging.backup_count", c.LogBackupCount)
	v.SetDefault("logging.stdout", c.LogToStdout)

	v.SetDefault("wall.capacity", c.SlotCapacity)
	v.SetDefault("wall.layout", c.Layout)
	v.SetDefault("wall.pagination_height", c.PaginationHeight)
	v.SetDefault("wall.app_bar_height", c.AppBarHeight)
	v.SetDefault("wall.bottom_nav_height", c.BottomNavHeight)
	v.SetDefault("wall.responsive_columns", c.ResponsiveColumns)

	v.SetDefault("roster.file", c.RosterFile)
	v.SetDefault("roster.url", c.RosterURL)
	v.SetDefault("roster.watch", c.RosterWatch)
	v.SetDefault("roster.poll_interval_ms", c.RosterPollIntervalMS)
	v.SetDefault("roster.timeout_ms", c.RosterTimeoutMS)

	v.SetDefault("player.kind", c.PlayerKind)
	v.SetDefault("player.ffmpeg_path", c.FFmpegPath)
	v.SetDefault("player.rtsp_transport", c.RTSPTransport)
	v.SetDefault("player.stream_fps", c.StreamFPS)
	v.SetDefault("player.stream_quality", c.StreamQuality)
	v.SetDefault("player.stall_timeout_ms", c.StallTimeoutMS)
	v.SetDefault("player.sim_startup_delay_ms", c.SimStartupDelayMS)
	v.SetDefault("player.ui_fps", c.UIFPS)

	v.SetDefault("window.title", c.WindowTitle)
	v.SetDefault("window.width", c.WindowWidth)
	v.SetDefault("window.height", c.WindowHeight)
	v.SetDefault("window.fullscreen", c.Fullscreen)

	v.SetDefault("server.host", c.ServerHost)
	v.SetDefault("server.port", c.ServerPort)

	v.SetDefault("health.log_interval_sec", c.HealthLogIntervalSec)
	v.SetDefault("health.cpu_load_threshold", c.CPULoadThreshold)
	v.SetDefault("health.cpu_temp_threshold_c", c.CPUTempThresholdC)
}

// =============================================================================
// Type parsing helpers
// =============================================================================

// asBool parses a string as boolean. Truthy: "1","true","yes","on".
// Falsy: "0","false","no","off". Returns fallback on empty/unrecognised.
func asBool(value string, fallback bool) bool {
	if value == "" {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

// clampInt bounds v. Pass nil for unbounded.
func clampInt(v int, minVal, maxVal *int) int {
	if minVal != nil && v < *minVal {
		v = *minVal
	}
	if maxVal != nil && v > *maxVal {
		v = *maxVal
	}
	return v
}

// clampFloat bounds v. Pass nil for unbounded.
func clampFloat(v float64, minVal, maxVal *float64) float64 {
	if minVal != nil && v < *minVal {
		v = *minVal
	}
	if maxVal != nil && v > *maxVal {
		v = *maxVal
	}
	return v
}

// Helper functions to create pointers for min/max bounds
func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

// =============================================================================
// Load + Apply
// =============================================================================

// ConfigPath returns the INI file path to use, respecting env vars.
func ConfigPath() string {
	if p := os.Getenv("CAMERA_WALL_CONFIG"); p != "" {
		return p
	}
	return "./config.ini"
}

// Load reads the INI file at path (or the default/env path) and returns a
// fully populated Config. A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()
	v := viper.New()
	v.SetConfigType("ini")
	v.SetEnvPrefix("WALL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, cfg)

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return cfg, fmt.Errorf("config: failed to parse %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("config: stat %s: %w", path, err)
	}

	apply(cfg, v)
	return cfg, nil
}

// apply maps viper keys onto cfg with the same bounds the INI documents.
func apply(cfg *Config, v *viper.Viper) {
	// [logging]
	cfg.LogLevel = strings.ToUpper(strings.TrimSpace(v.GetString("logging.level")))
	cfg.LogFile = v.GetString("logging.file")
	cfg.LogMaxBytes = clampInt(v.GetInt("logging.max_bytes"), intPtr(1024), nil)
	cfg.LogBackupCount = clampInt(v.GetInt("logging.backup_count"), intPtr(1), nil)
	cfg.LogToStdout = asBool(v.GetString("logging.stdout"), cfg.LogToStdout)

	// [wall]
	cfg.SlotCapacity = clampInt(v.GetInt("wall.capacity"), intPtr(1), intPtr(20))
	cfg.Layout = strings.ToLower(strings.TrimSpace(v.GetString("wall.layout")))
	cfg.PaginationHeight = clampFloat(v.GetFloat64("wall.pagination_height"), floatPtr(0), floatPtr(200))
	cfg.AppBarHeight = clampFloat(v.GetFloat64("wall.app_bar_height"), floatPtr(0), nil)
	cfg.BottomNavHeight = clampFloat(v.GetFloat64("wall.bottom_nav_height"), floatPtr(0), nil)
	cfg.ResponsiveColumns = asBool(v.GetString("wall.responsive_columns"), cfg.ResponsiveColumns)

	// [roster]
	cfg.RosterFile = v.GetString("roster.file")
	cfg.RosterURL = strings.TrimSpace(v.GetString("roster.url"))
	cfg.RosterWatch = asBool(v.GetString("roster.watch"), cfg.RosterWatch)
	cfg.RosterPollIntervalMS = clampInt(v.GetInt("roster.poll_interval_ms"), intPtr(1000), nil)
	cfg.RosterTimeoutMS = clampInt(v.GetInt("roster.timeout_ms"), intPtr(100), nil)

	// [player]
	kind := strings.ToLower(strings.TrimSpace(v.GetString("player.kind")))
	if kind == "simulated" || kind == "ffmpeg" {
		cfg.PlayerKind = kind
	}
	cfg.FFmpegPath = v.GetString("player.ffmpeg_path")
	transport := strings.ToLower(strings.TrimSpace(v.GetString("player.rtsp_transport")))
	if transport == "tcp" || transport == "udp" {
		cfg.RTSPTransport = transport
	}
	cfg.StreamFPS = clampInt(v.GetInt("player.stream_fps"), intPtr(0), intPtr(60))
	cfg.StreamQuality = clampInt(v.GetInt("player.stream_quality"), intPtr(2), intPtr(31))
	cfg.StallTimeoutMS = clampInt(v.GetInt("player.stall_timeout_ms"), intPtr(500), nil)
	cfg.SimStartupDelayMS = clampInt(v.GetInt("player.sim_startup_delay_ms"), intPtr(0), nil)
	cfg.UIFPS = clampInt(v.GetInt("player.ui_fps"), intPtr(1), intPtr(60))

	// [window]
	cfg.WindowTitle = v.GetString("window.title")
	cfg.WindowWidth = clampInt(v.GetInt("window.width"), intPtr(320), nil)
	cfg.WindowHeight = clampInt(v.GetInt("window.height"), intPtr(240), nil)
	cfg.Fullscreen = asBool(v.GetString("window.fullscreen"), cfg.Fullscreen)

	// [server]
	cfg.ServerHost = v.GetString("server.host")
	cfg.ServerPort = clampInt(v.GetInt("server.port"), intPtr(1), intPtr(65535))

	// [health]
	cfg.HealthLogIntervalSec = clampFloat(v.GetFloat64("health.log_interval_sec"), floatPtr(5.0), nil)
	cfg.CPULoadThreshold = clampFloat(v.GetFloat64("health.cpu_load_threshold"), floatPtr(0.1), floatPtr(20.0))
	cfg.CPUTempThresholdC = clampFloat(v.GetFloat64("health.cpu_temp_threshold_c"), floatPtr(30.0), floatPtr(100.0))
}

// ServerAddr is the listen address for the HTTP API.
func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// =============================================================================
// Validate
// =============================================================================

// Validate checks whether the Config values are reasonable and returns
// warnings. Returns ok=false if any setting is critically problematic.
func (c *Config) Validate() (ok bool, warnings []string) {
	ok = true

	if c.RosterFile == "" && c.RosterURL == "" {
		warnings = append(warnings, "No roster file or URL configured; the wall will stay empty")
	}
	if c.RosterFile != "" && c.RosterURL != "" {
		warnings = append(warnings, "Both roster file and URL configured; the URL is used")
	}

	if c.PlayerKind == "ffmpeg" {
		// Rough decode budget: every slot decodes at StreamFPS.
		if load := c.SlotCapacity * c.StreamFPS; load > 300 {
			warnings = append(warnings, fmt.Sprintf("%d slots at %d FPS may saturate the CPU", c.SlotCapacity, c.StreamFPS))
		}
		if c.FFmpegPath == "" {
			ok = false
			warnings = append(warnings, "player kind is ffmpeg but ffmpeg_path is empty")
		}
	}

	if _, err := layout.Preset(c.Layout, c.SlotCapacity); err != nil {
		warnings = append(warnings, fmt.Sprintf("Unknown layout %q; using the default 5x4 layout", c.Layout))
	}

	if c.PaginationHeight == 0 {
		warnings = append(warnings, "pagination_height is 0; the page bar will overlap the grid")
	}

	if c.UIFPS > c.StreamFPS && c.StreamFPS > 0 {
		warnings = append(warnings, fmt.Sprintf("UI FPS (%d) > stream FPS (%d) redraws unchanged frames", c.UIFPS, c.StreamFPS))
	}

	return ok, warnings
}
