package health

import (
	"context"
	"time"

	"camera-wall-go/internal/slots"
	"camera-wall-go/internal/wall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// Summary is the periodic health report.
type Summary struct {
	System     Stats          `json:"system"`
	States     map[string]int `json:"states"`
	Page       int            `json:"page"`
	TotalPages int            `json:"totalPages"`
	RosterSize int            `json:"rosterSize"`
}

// Summarize combines a system sample with a wall snapshot.
func Summarize(stats Stats, vm wall.ViewModel) Summary {
	counts := vm.StateCounts()
	states := make(map[string]int, len(counts))
	for st, n := range counts {
		states[st.String()] = n
	}
	return Summary{
		System:     stats,
		States:     states,
		Page:       vm.Page,
		TotalPages: vm.TotalPages,
		RosterSize: vm.RosterSize,
	}
}

// Reporter periodically samples the host and logs a summary of the wall.
type Reporter struct {
	monitor  *Monitor
	snapshot func() wall.ViewModel
	interval time.Duration

	load prometheus.Gauge
	temp prometheus.Gauge
	mem  prometheus.Gauge
}

// NewReporter builds a reporter. reg may be nil.
func NewReporter(m *Monitor, snapshot func() wall.ViewModel, interval time.Duration, reg prometheus.Registerer) *Reporter {
	r := &Reporter{
		monitor:  m,
		snapshot: snapshot,
		interval: interval,
		load: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "camera_wall", Subsystem: "host", Name: "load_average",
			Help: "One-minute load average.",
		}),
		temp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "camera_wall", Subsystem: "host", Name: "temperature_celsius",
			Help: "Mean host sensor temperature.",
		}),
		mem: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "camera_wall", Subsystem: "host", Name: "memory_used_percent",
			Help: "Memory in use.",
		}),
	}
	if reg != nil {
		reg.MustRegister(r.load, r.temp, r.mem)
	}
	return r
}

// Sample refreshes the host stats and returns the current summary.
func (r *Reporter) Sample(ctx context.Context) Summary {
	logger := log.With().Str("component", "health").Logger()
	if err := r.monitor.UpdateStats(ctx); err != nil {
		logger.Debug().Err(err).Msg("system stats unavailable")
	}
	stats := r.monitor.Stats()
	r.load.Set(stats.LoadAverage)
	r.temp.Set(stats.TemperatureC)
	r.mem.Set(stats.MemoryUsage)
	return Summarize(stats, r.snapshot())
}

// Run logs a summary every interval until ctx is done.
func (r *Reporter) Run(ctx context.Context) {
	logger := log.With().Str("component", "health").Logger()
	if r.interval <= 0 {
		return
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s := r.Sample(ctx)
			ev := logger.Info()
			if s.System.Stressed {
				ev = logger.Warn()
			}
			ev.
				Int("playing", s.States[slots.StatePlaying.String()]).
				Int("loading", s.States[slots.StateLoading.String()]).
				Int("buffering", s.States[slots.StateBuffering.String()]).
				Int("error", s.States[slots.StateError.String()]).
				Int("idle", s.States[slots.StateIdle.String()]).
				Int("page", s.Page+1).
				Int("pages", s.TotalPages).
				Float64("load", s.System.LoadAverage).
				Float64("temp_c", s.System.TemperatureC).
				Float64("mem_pct", s.System.MemoryUsage).
				Msg("health")
		}
	}
}
