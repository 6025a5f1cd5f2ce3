package engine

import (
	"time"

	"github.com/UrUsualKal/ai-traffic-light-system/internal/domain/traffic"
	"github.com/UrUsualKal/ai-traffic-light-system/internal/timer"
)

// Default timing parameters of the state machine.
const (
	// DefaultYellowDuration is how long a clearance yellow is held.
	DefaultYellowDuration = 2 * time.Second
	// DefaultHighTrafficTimer is how long each direction keeps green while
	// congestion persists.
	DefaultHighTrafficTimer = 30 * time.Second
	// DefaultHighThreshold is the confirmed count that engages the
	// high-traffic regime.
	DefaultHighThreshold = 8
)

// Config holds the timing parameters of the state machine.
// Zero fields fall back to the package defaults.
type Config struct {
	// YellowDuration is the length of every yellow clearance interval.
	YellowDuration time.Duration
	// HighTrafficTimer is the alternation window of the high-traffic regime.
	HighTrafficTimer time.Duration
	// HighThreshold is the confirmed count that engages the regime.
	HighThreshold int
}

func (c Config) withDefaults() Config {
	if c.YellowDuration <= 0 {
		c.YellowDuration = DefaultYellowDuration
	}

	if c.HighTrafficTimer <= 0 {
		c.HighTrafficTimer = DefaultHighTrafficTimer
	}

	if c.HighThreshold <= 0 {
		c.HighThreshold = DefaultHighThreshold
	}

	return c
}

// Transition reports what a single tick did to the machine.
type Transition struct {
	// Changed is true when the light pair differs from before the tick.
	Changed bool
	// Alert is true when this tick crossed into the high-traffic regime.
	// It is raised exactly once per entry, never on alternations inside
	// the regime.
	Alert bool
}

// Machine turns confirmed vehicle counts into light pairs. It is a pure state
// machine: time only enters through the now argument of Tick, so a single
// caller can drive it deterministically. It is not safe for concurrent use.
type Machine struct {
	cfg    Config
	lights traffic.LightPair
	mode   traffic.Mode
}

// NewMachine returns a machine resting in the cross-traffic state.
func NewMachine(cfg Config) *Machine {
	return &Machine{
		cfg:    cfg.withDefaults(),
		lights: traffic.CrossTraffic(),
		mode:   traffic.Normal{},
	}
}

// Lights returns the current light pair.
func (m *Machine) Lights() traffic.LightPair {
	return m.lights
}

// Mode returns the current operating regime.
func (m *Machine) Mode() traffic.Mode {
	return m.mode
}

// Reset forces the machine back to the cross-traffic resting state,
// abandoning any clearance or congestion regime in progress.
func (m *Machine) Reset() {
	m.lights = traffic.CrossTraffic()
	m.mode = traffic.Normal{}
}

// Tick advances the machine one step with the latest confirmed count.
// A lamp showing Green never jumps to Red within a single tick: every such
// change is stretched over a yellow clearance interval.
func (m *Machine) Tick(confirmed int, now time.Time) Transition {
	before := m.lights

	var alert bool

	switch mode := m.mode.(type) {
	case traffic.Normal:
		alert = m.tickNormal(confirmed, now)
	case traffic.YellowClearance:
		alert = m.tickClearance(mode, now)
	case traffic.HighTraffic:
		alert = m.tickHighTraffic(mode, confirmed, now)
	}

	return Transition{
		Changed: m.lights != before,
		Alert:   alert,
	}
}

func (m *Machine) tickNormal(confirmed int, now time.Time) bool {
	switch {
	case confirmed >= m.cfg.HighThreshold:
		return m.settle(traffic.HighTrafficGreen{Active: traffic.DirectionB, Entering: true}, now)
	case confirmed == 0:
		return m.settle(traffic.CrossGreen{}, now)
	default:
		return m.settle(traffic.AiGreen{}, now)
	}
}

func (m *Machine) tickClearance(mode traffic.YellowClearance, now time.Time) bool {
	if timer.Elapsed(mode.StartedAt, now) < m.cfg.YellowDuration {
		return false
	}

	return m.commit(mode.Target, now)
}

func (m *Machine) tickHighTraffic(mode traffic.HighTraffic, confirmed int, now time.Time) bool {
	// Only a confirmed count of zero leaves the regime.
	if confirmed == 0 {
		return m.settle(traffic.CrossGreen{}, now)
	}

	if timer.Elapsed(mode.WindowStarted, now) >= m.cfg.HighTrafficTimer {
		return m.settle(traffic.HighTrafficGreen{Active: mode.Active.Opposite()}, now)
	}

	return false
}

// settle drives the lights toward the resting state of target. When a lamp
// currently shows green it starts a yellow clearance carrying target;
// otherwise it commits target immediately. Committing is idempotent, so
// repeated ticks in a steady state are no-ops.
func (m *Machine) settle(target traffic.PostYellow, now time.Time) bool {
	if m.lights == restingLights(target) {
		return m.commit(target, now)
	}

	green, ok := m.greenSide()
	if !ok {
		return m.commit(target, now)
	}

	m.beginClearance(green, target, now)

	return false
}

// beginClearance lights yellow on the side losing green and records the
// committed outcome. Counts observed during the interval cannot change it.
func (m *Machine) beginClearance(green traffic.Direction, target traffic.PostYellow, now time.Time) {
	if green == traffic.DirectionA {
		m.lights = traffic.LightPair{A: traffic.Yellow, B: traffic.Red}
	} else {
		m.lights = traffic.LightPair{A: traffic.Red, B: traffic.Yellow}
	}

	m.mode = traffic.YellowClearance{StartedAt: now, Target: target}
}

// commit applies the resting lights of target and enters the mode it names.
// The high-traffic alternation window is armed here, not when the clearance
// began, so a yellow in progress does not eat into the window.
func (m *Machine) commit(target traffic.PostYellow, now time.Time) bool {
	m.lights = restingLights(target)

	if high, ok := target.(traffic.HighTrafficGreen); ok {
		m.mode = traffic.HighTraffic{Active: high.Active, WindowStarted: now}

		return high.Entering
	}

	m.mode = traffic.Normal{}

	return false
}

func (m *Machine) greenSide() (traffic.Direction, bool) {
	switch {
	case m.lights.A == traffic.Green:
		return traffic.DirectionA, true
	case m.lights.B == traffic.Green:
		return traffic.DirectionB, true
	default:
		return traffic.DirectionA, false
	}
}

func restingLights(target traffic.PostYellow) traffic.LightPair {
	switch t := target.(type) {
	case traffic.AiGreen:
		return traffic.AiTraffic()
	case traffic.HighTrafficGreen:
		if t.Active == traffic.DirectionA {
			return traffic.AiTraffic()
		}

		return traffic.CrossTraffic()
	default:
		return traffic.CrossTraffic()
	}
}
