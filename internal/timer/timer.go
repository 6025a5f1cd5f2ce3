package timer

import (
	"errors"
	"time"
)

// ErrClockRegression indicates that a supplied "now" precedes a previously
// stored timestamp. The engine tolerates this by treating the elapsed time
// as zero; hosts may use Check to log the jitter.
var ErrClockRegression = errors.New("clock regression")

// Elapsed returns now minus since, clamped at zero. A regression therefore
// pauses every interval instead of rewinding it.
func Elapsed(since, now time.Time) time.Duration {
	d := now.Sub(since)
	if d < 0 {
		return 0
	}

	return d
}

// Check reports ErrClockRegression when now precedes prev. It never affects
// engine behavior; it exists so the host loop can surface clock jitter.
func Check(prev, now time.Time) error {
	if now.Before(prev) {
		return ErrClockRegression
	}

	return nil
}
