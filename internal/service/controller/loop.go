package controller

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UrUsualKal/ai-traffic-light-system/internal/config"
	"github.com/UrUsualKal/ai-traffic-light-system/internal/detect"
	"github.com/UrUsualKal/ai-traffic-light-system/internal/engine"
	"github.com/UrUsualKal/ai-traffic-light-system/internal/journal"
	"github.com/UrUsualKal/ai-traffic-light-system/internal/link"
	"github.com/UrUsualKal/ai-traffic-light-system/internal/logger"
	"github.com/UrUsualKal/ai-traffic-light-system/internal/source"
	"github.com/UrUsualKal/ai-traffic-light-system/internal/timer"
)

// loop owns the per-tick state of one controller run. Everything happens on
// the calling goroutine; the engine underneath carries no locking.
type loop struct {
	settings   *config.Config
	controller *engine.Controller
	source     source.Source
	clock      timer.Clock
	journal    *journal.Journal
	runID      string

	lastRaw  int
	lastNow  time.Time
	lastMode string
	drained  bool
}

// run drives ticks until the context is canceled. Samples pace the loop;
// when none arrives within the tick interval the last count is re-observed
// so clearances and alternation windows keep making progress.
func (l *loop) run(ctx context.Context) error {
	hangup := make(chan os.Signal, 1)
	signal.Notify(hangup, syscall.SIGHUP)

	defer signal.Stop(hangup)

	// The actuator state is unknown at startup: push the resting state
	// before the first sample arrives.
	l.resync(ctx, "startup")

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Traffic controller stopping")

			return nil
		case <-hangup:
			logger.Info(ctx, "Reset requested, returning to cross traffic")
			l.resync(ctx, "reset")

			continue
		default:
		}

		raw, err := l.nextSample(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				continue
			}

			return err
		}

		l.tick(ctx, raw)
	}
}

// nextSample returns the count for the next tick. It blocks for at most the
// tick interval: a quiet stream yields the previous count so the engine's
// timers still advance. After the stream ends the loop keeps running on the
// heartbeat alone.
func (l *loop) nextSample(ctx context.Context) (int, error) {
	if l.drained {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(l.settings.TickInterval):
			return l.lastRaw, nil
		}
	}

	sampleCtx, cancel := context.WithTimeout(ctx, l.settings.TickInterval)
	defer cancel()

	raw, err := l.source.Next(sampleCtx)

	switch {
	case err == nil:
		l.lastRaw = raw

		return raw, nil
	case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
		// Heartbeat: no fresh sample within the interval.
		return l.lastRaw, nil
	case errors.Is(err, source.ErrBadSample):
		logger.WarnKV(ctx, "Ignoring unreadable sample", "error", err)

		return l.lastRaw, nil
	case errors.Is(err, io.EOF):
		logger.Info(ctx, "Sample stream finished, continuing on heartbeat")

		l.drained = true

		return l.lastRaw, nil
	case errors.Is(err, context.Canceled):
		return 0, context.Canceled
	default:
		// A broken detector stream must not freeze the lights.
		logger.ErrorKV(ctx, "Sample stream failed, continuing on heartbeat", "error", err)

		l.drained = true

		return l.lastRaw, nil
	}
}

// tick runs one control cycle and reports what it did.
func (l *loop) tick(ctx context.Context, raw int) {
	now := l.clock.Now()

	// Regressions only pause the engine's intervals; still worth a line.
	if err := timer.Check(l.lastNow, now); err != nil {
		logger.WarnKV(ctx, "System clock moved backwards",
			"previous", l.lastNow, "now", now)
	}

	l.lastNow = now

	result, err := l.controller.Tick(ctx, raw, now)
	if err != nil {
		l.reportTickError(ctx, err)
	}

	l.observe(ctx, result, now)
}

// reportTickError logs degraded-but-running conditions at the right level.
func (l *loop) reportTickError(ctx context.Context, err error) {
	var sendErr *link.SendError

	if errors.As(err, &sendErr) {
		logger.ErrorKV(ctx, "Command delivery failed, next tick retries",
			"token", sendErr.Token, "error", sendErr.Err)
	}

	if errors.Is(err, detect.ErrInvalidCount) {
		logger.WarnKV(ctx, "Ignoring invalid vehicle count", "error", err)
	}
}

// observe logs the interesting parts of a tick and journals it.
func (l *loop) observe(ctx context.Context, result engine.Result, now time.Time) {
	if result.ConfirmedChanged {
		logger.InfoKV(ctx, "Confirmed vehicle count changed",
			"confirmed", result.Confirmed, "smoothed", result.Smoothed, "raw", result.Raw)
	}

	if mode := result.Mode.String(); mode != l.lastMode {
		logger.InfoKV(ctx, "Mode changed", "mode", mode)

		l.lastMode = mode
	}

	if result.Alert {
		logger.WarnKV(ctx, "High traffic regime engaged, alerting actuator",
			"confirmed", result.Confirmed)
	}

	if result.LightsChanged {
		logger.InfoKV(ctx, "Lights changed", "lights", result.Lights.String())
	}

	if result.Sent {
		logger.DebugKV(ctx, "Command delivered", "token", result.Token)
	}

	if !result.ConfirmedChanged && !result.LightsChanged && !result.Sent && !result.Alert {
		return
	}

	l.record(ctx, journal.Tick{
		At:        now,
		Raw:       result.Raw,
		Smoothed:  result.Smoothed,
		Confirmed: result.Confirmed,
		Lights:    result.Lights.String(),
		Mode:      result.Mode.String(),
		Alert:     result.Alert,
		Sent:      result.Sent,
		Token:     result.Token,
	})
}

// resync abandons whatever regime is in progress and pushes the resting
// state to the actuator regardless of what was last delivered.
func (l *loop) resync(ctx context.Context, reason string) {
	token, err := l.controller.Reset(ctx)
	if err != nil {
		logger.ErrorKV(ctx, "Actuator resynchronization failed, ticks will retry",
			"reason", reason, "error", err)
	} else {
		logger.InfoKV(ctx, "Actuator resynchronized", "reason", reason, "token", token)
	}

	l.record(ctx, journal.Tick{
		At:        l.clock.Now(),
		Raw:       l.lastRaw,
		Smoothed:  l.controller.Smoothed(),
		Confirmed: l.controller.Confirmed(),
		Lights:    l.controller.Lights().String(),
		Mode:      l.controller.Mode().String(),
		Sent:      err == nil,
		Token:     token,
	})
}

// record appends a tick to the journal when journaling is on. Journal
// trouble is reported but never stops the lights.
func (l *loop) record(ctx context.Context, tick journal.Tick) {
	if l.journal == nil {
		return
	}

	if err := l.journal.RecordTick(l.runID, tick); err != nil {
		logger.WarnKV(ctx, "Journal write failed", "error", err)
	}
}
