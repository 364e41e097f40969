package slots

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes slot activity to Prometheus. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	state   *prometheus.GaugeVec
	opens   prometheus.Counter
	stops   prometheus.Counter
	stale   prometheus.Counter
	failure *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		state: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "camera_wall",
			Name:      "slot_state",
			Help:      "1 when the slot is in the labelled state, 0 otherwise.",
		}, []string{"slot", "state"}),
		opens: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "camera_wall",
			Name:      "player_opens_total",
			Help:      "Stream open requests issued to slot players.",
		}),
		stops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "camera_wall",
			Name:      "player_stops_total",
			Help:      "Stream stop requests issued to slot players.",
		}),
		stale: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "camera_wall",
			Name:      "stale_events_total",
			Help:      "Player events discarded because their assignment was superseded.",
		}),
		failure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "camera_wall",
			Name:      "slot_errors_total",
			Help:      "Slots entering the error state, by cause.",
		}, []string{"cause"}),
	}
	if reg != nil {
		reg.MustRegister(m.state, m.opens, m.stops, m.stale, m.failure)
	}
	return m
}

func (m *Metrics) setState(slot int, s PlayerState) {
	if m == nil {
		return
	}
	label := strconv.Itoa(slot)
	for _, st := range AllStates {
		v := 0.0
		if st == s {
			v = 1
		}
		m.state.WithLabelValues(label, st.String()).Set(v)
	}
}

func (m *Metrics) opened() {
	if m != nil {
		m.opens.Inc()
	}
}

func (m *Metrics) stopped() {
	if m != nil {
		m.stops.Inc()
	}
}

func (m *Metrics) staleEvent() {
	if m != nil {
		m.stale.Inc()
	}
}

func (m *Metrics) failed(cause string) {
	if m != nil {
		m.failure.WithLabelValues(cause).Inc()
	}
}
