package timer

import (
	"time"
)

// Clock supplies the "now" values fed into the engine. Injecting it keeps
// every engine computation a pure function of its inputs.
type Clock interface {
	Now() time.Time
}

// systemClock reads the operating system clock.
type systemClock struct{}

// Now implements Clock.
func (systemClock) Now() time.Time { return time.Now() }

// System returns the live wall clock.
func System() Clock { return systemClock{} }

// Manual is a hand-advanced clock for deterministic tests and replays.
// It is not safe for concurrent use; the engine's single-loop discipline
// applies to its clock as well.
type Manual struct {
	now time.Time
}

// NewManual returns a manual clock starting at the given instant.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now implements Clock.
func (m *Manual) Now() time.Time { return m.now }

// Set moves the clock to the given instant, forwards or backwards.
func (m *Manual) Set(t time.Time) { m.now = t }

// Advance moves the clock forward by d and returns the new instant.
func (m *Manual) Advance(d time.Duration) time.Time {
	m.now = m.now.Add(d)

	return m.now
}
