package replay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/UrUsualKal/ai-traffic-light-system/internal/engine"
	"github.com/UrUsualKal/ai-traffic-light-system/internal/link"
	"github.com/UrUsualKal/ai-traffic-light-system/internal/logger"
	"github.com/UrUsualKal/ai-traffic-light-system/internal/source"
	"github.com/UrUsualKal/ai-traffic-light-system/internal/timer"
)

// ErrSequenceMismatch is returned when a replay produced different command
// tokens than its fixture expects.
var ErrSequenceMismatch = errors.New("replay deviated from expected command sequence")

// Options controls a single replay run.
type Options struct {
	// FixturePath is the YAML scenario to replay.
	FixturePath string
	// Pace slows the replay to real time instead of finishing instantly.
	Pace bool
}

// Run replays the fixture and returns ErrSequenceMismatch when the produced
// tokens differ from the expected sequence.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "traffic-replay")

	fix, err := loadFixture(opts.FixturePath)
	if err != nil {
		return err
	}

	if fix.Description != "" {
		logger.InfoKV(ctx, "Replaying scenario", "description", fix.Description)
	}

	interval := fix.tickInterval()
	sink := link.NewMemorySink()
	controller := engine.NewController(fix.detectConfig(), fix.machineConfig(), sink)
	script := source.NewScript(fix.sourceSteps(), interval)

	// The clock is manual: a minute of scenario replays in microseconds
	// unless pacing is requested.
	clock := timer.NewManual(time.Unix(0, 0).UTC())

	ticks, alerts := 0, 0

	for {
		raw, err := script.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return fmt.Errorf("scripted sample: %w", err)
		}

		result, err := controller.Tick(ctx, raw, clock.Now())
		if err != nil {
			return fmt.Errorf("tick %d: %w", ticks, err)
		}

		if result.Alert {
			alerts++
		}

		if result.Sent {
			logger.InfoKV(ctx, "Command",
				"token", result.Token,
				"at", clock.Now().Sub(time.Unix(0, 0).UTC()),
				"confirmed", result.Confirmed,
				"mode", result.Mode.String(),
			)
		}

		clock.Advance(interval)

		ticks++

		if opts.Pace {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(interval):
			}
		}
	}

	produced := sink.Records()

	logger.InfoKV(ctx, "Replay finished",
		"ticks", ticks, "tokens", len(produced), "alerts", alerts)

	if len(fix.Expect) == 0 {
		return nil
	}

	if !slices.Equal(produced, fix.Expect) {
		return fmt.Errorf("%w:\n     got %v\nexpected %v", ErrSequenceMismatch, produced, fix.Expect)
	}

	logger.Info(ctx, "Replay matched the expected sequence")

	return nil
}
