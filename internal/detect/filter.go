package detect

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/samber/lo"

	"github.com/UrUsualKal/ai-traffic-light-system/internal/timer"
)

// ErrInvalidCount is returned when a raw sample is negative. The sample is
// rejected and the previously confirmed count is retained.
var ErrInvalidCount = errors.New("invalid vehicle count")

const (
	// DefaultHistorySize is the number of samples averaged for smoothing.
	DefaultHistorySize = 10

	// DefaultConfirmationDelay is how long a smoothed count must hold
	// steady before it is confirmed.
	DefaultConfirmationDelay = 3 * time.Second

	// DefaultHighConfirmationDelay replaces the standard delay for
	// congestion-level candidates, so queues are confirmed faster.
	DefaultHighConfirmationDelay = 1500 * time.Millisecond

	// DefaultHighThreshold is the confirmed count at which the controller
	// treats the approach as congested.
	DefaultHighThreshold = 8
)

// Config holds the stabilizer tunables. Zero values are filled from the
// defaults above.
type Config struct {
	// HistorySize bounds the smoothing window, in samples.
	HistorySize int
	// ConfirmationDelay is the standard hold time before a change commits.
	ConfirmationDelay time.Duration
	// HighConfirmationDelay is the hold time for candidates at or above
	// HighThreshold.
	HighConfirmationDelay time.Duration
	// HighThreshold is the congestion boundary, in vehicles.
	HighThreshold int
}

// withDefaults returns the config with zero fields replaced by defaults.
func (c Config) withDefaults() Config {
	if c.HistorySize <= 0 {
		c.HistorySize = DefaultHistorySize
	}

	if c.ConfirmationDelay <= 0 {
		c.ConfirmationDelay = DefaultConfirmationDelay
	}

	if c.HighConfirmationDelay <= 0 {
		c.HighConfirmationDelay = DefaultHighConfirmationDelay
	}

	if c.HighThreshold <= 0 {
		c.HighThreshold = DefaultHighThreshold
	}

	return c
}

// Filter debounces raw vehicle counts into a stable confirmed count.
type Filter struct {
	cfg Config

	// history holds the most recent raw samples, oldest first.
	history []int
	// confirmed is the debounced count the engine acts on.
	confirmed int
	// pending is the candidate count waiting out its confirmation delay.
	// It equals confirmed whenever no change is in flight.
	pending int
	// pendingSince is when the current candidate was first observed.
	pendingSince time.Time
}

// NewFilter creates a stabilizer with the given tunables.
func NewFilter(cfg Config) *Filter {
	cfg = cfg.withDefaults()

	return &Filter{
		cfg:     cfg,
		history: make([]int, 0, cfg.HistorySize),
	}
}

// Observe feeds one raw sample taken at now and returns the confirmed count.
// Negative samples are rejected with ErrInvalidCount; history and the
// confirmed count are left untouched in that case.
func (f *Filter) Observe(raw int, now time.Time) (int, error) {
	if raw < 0 {
		return f.confirmed, fmt.Errorf("%w: %d", ErrInvalidCount, raw)
	}

	f.push(raw)

	smoothed := f.Smoothed()

	candidate, changing := f.candidate(smoothed)
	if !changing {
		// The smoothed count stopped changing: cancel any in-flight candidate.
		f.pending = f.confirmed

		return f.confirmed, nil
	}

	if candidate != f.pending {
		// New candidate; the confirmation timer restarts.
		f.pending = candidate
		f.pendingSince = now

		return f.confirmed, nil
	}

	required := f.cfg.ConfirmationDelay
	if f.pending >= f.cfg.HighThreshold {
		required = f.cfg.HighConfirmationDelay
	}

	if timer.Elapsed(f.pendingSince, now) >= required {
		f.confirmed = f.pending
	}

	return f.confirmed, nil
}

// Confirmed returns the current debounced count.
func (f *Filter) Confirmed() int { return f.confirmed }

// Pending returns the candidate count in flight and when it was first seen.
// The candidate equals the confirmed count when nothing is in flight.
func (f *Filter) Pending() (int, time.Time) { return f.pending, f.pendingSince }

// Smoothed returns the rounded mean of the current history window.
func (f *Filter) Smoothed() int {
	if len(f.history) == 0 {
		return 0
	}

	return int(math.Round(float64(lo.Sum(f.history)) / float64(len(f.history))))
}

// push appends a sample, dropping the oldest beyond the window size.
func (f *Filter) push(raw int) {
	if len(f.history) == f.cfg.HistorySize {
		copy(f.history, f.history[1:])
		f.history[len(f.history)-1] = raw

		return
	}

	f.history = append(f.history, raw)
}

// candidate applies the hysteresis rules: a change is eligible immediately
// at congestion level, when crossing the zero boundary in either direction,
// or on any other numeric change from the confirmed count.
func (f *Filter) candidate(smoothed int) (int, bool) {
	switch {
	case smoothed >= f.cfg.HighThreshold:
		return smoothed, true
	case f.confirmed == 0 && smoothed >= 1:
		return smoothed, true
	case f.confirmed >= 1 && smoothed == 0:
		return 0, true
	case smoothed != f.confirmed:
		return smoothed, true
	default:
		return f.confirmed, false
	}
}
