// Package health samples host load and summarises the wall's slot states.
package health

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// Sampler reads one host metric.
type Sampler func(ctx context.Context) (float64, error)

// Monitor tracks host load, temperature and memory pressure.
type Monitor struct {
	load Sampler
	temp Sampler
	mem  Sampler

	mu          sync.RWMutex
	lastCheck   time.Time
	loadAvg     float64
	temperature float64
	memoryUsage float64 // percentage of memory used

	loadThreshold float64
	tempThreshold float64
}

// NewMonitor creates a monitor with the given stress thresholds.
func NewMonitor(loadThreshold, tempThresholdC float64) *Monitor {
	return &Monitor{
		load:          loadAverage,
		temp:          temperature,
		mem:           memoryUsage,
		loadThreshold: loadThreshold,
		tempThreshold: tempThresholdC,
	}
}

// Stats is one sample.
type Stats struct {
	LoadAverage  float64   `json:"loadAverage"`
	TemperatureC float64   `json:"temperatureC"`
	MemoryUsage  float64   `json:"memoryUsage"`
	Stressed     bool      `json:"stressed"`
	SampledAt    time.Time `json:"sampledAt"`
}

// UpdateStats refreshes all metrics. Load average is required; temperature
// and memory are best effort since many hosts lack thermal sensors.
func (m *Monitor) UpdateStats(ctx context.Context) error {
	load, err := m.load(ctx)
	if err != nil {
		return err
	}
	temp, terr := m.temp(ctx)
	mem, merr := m.mem(ctx)

	m.mu.Lock()
	m.loadAvg = load
	if terr == nil {
		m.temperature = temp
	}
	if merr == nil {
		m.memoryUsage = mem
	}
	m.lastCheck = time.Now()
	m.mu.Unlock()
	return nil
}

// Stats returns the latest sample.
func (m *Monitor) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Stats{
		LoadAverage:  m.loadAvg,
		TemperatureC: m.temperature,
		MemoryUsage:  m.memoryUsage,
		Stressed:     m.stressedLocked(),
		SampledAt:    m.lastCheck,
	}
}

// IsUnderStress reports whether load or temperature exceeds its threshold.
func (m *Monitor) IsUnderStress() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stressedLocked()
}

func (m *Monitor) stressedLocked() bool {
	return m.loadAvg > m.loadThreshold || m.temperature > m.tempThreshold
}

func loadAverage(ctx context.Context) (float64, error) {
	avg, err := load.AvgWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return avg.Load1, nil
}

// temperature averages the sensors that report a reading. gopsutil returns
// partial results alongside a warning error when some sensors fail.
func temperature(ctx context.Context) (float64, error) {
	sensors, err := host.SensorsTemperaturesWithContext(ctx)
	var total float64
	var count int
	for _, s := range sensors {
		if s.Temperature <= 0 {
			continue
		}
		total += s.Temperature
		count++
	}
	if count == 0 {
		if err != nil {
			return 0, errors.Join(ErrTemperatureNotFound, err)
		}
		return 0, ErrTemperatureNotFound
	}
	return total / float64(count), nil
}

func memoryUsage(ctx context.Context) (float64, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return vm.UsedPercent, nil
}

// Errors
var (
	ErrTemperatureNotFound = errors.New("health: temperature sensor not found")
)
