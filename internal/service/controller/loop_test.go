package controller

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/UrUsualKal/ai-traffic-light-system/internal/config"
	"github.com/UrUsualKal/ai-traffic-light-system/internal/engine"
	"github.com/UrUsualKal/ai-traffic-light-system/internal/link"
	"github.com/UrUsualKal/ai-traffic-light-system/internal/source"
	"github.com/UrUsualKal/ai-traffic-light-system/internal/timer"
)

func newTestLoop(settings *config.Config, input string, sink link.Sink) *loop {
	return &loop{
		settings:   settings,
		controller: engine.NewController(detectConfig(settings), machineConfig(settings), sink),
		source:     source.NewLines(strings.NewReader(input)),
		clock:      timer.System(),
	}
}

// TestLoopPushesRestingStateAndStops verifies that a run synchronizes the
// actuator at startup, survives the end of the sample stream on its
// heartbeat, and stops cleanly with the context.
func TestLoopPushesRestingStateAndStops(t *testing.T) {
	t.Parallel()

	sink := link.NewMemorySink()
	settings := config.Default()
	settings.TickInterval = 5 * time.Millisecond

	run := newTestLoop(settings, "0\n0\n0\n", sink)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	require.NoError(t, run.run(ctx))

	// Counts stayed at zero, so only the startup synchronization went out.
	require.Equal(t, []string{"ARBG"}, sink.Records())
}

// TestLoopSkipsUnreadableSamples verifies that garbage on the sample stream
// is logged away without stalling the ticks.
func TestLoopSkipsUnreadableSamples(t *testing.T) {
	t.Parallel()

	sink := link.NewMemorySink()
	settings := config.Default()
	settings.TickInterval = 5 * time.Millisecond

	run := newTestLoop(settings, "0\nnot-a-number\n0\n", sink)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	require.NoError(t, run.run(ctx))
	require.Equal(t, []string{"ARBG"}, sink.Records())
}

// TestNextSampleHeartbeat verifies that a quiet stream re-observes the last
// count once per tick interval.
func TestNextSampleHeartbeat(t *testing.T) {
	t.Parallel()

	settings := config.Default()
	settings.TickInterval = 10 * time.Millisecond

	run := &loop{
		settings: settings,
		source:   source.NewLines(strings.NewReader("4\n")),
		clock:    timer.System(),
	}

	ctx := context.Background()

	raw, err := run.nextSample(ctx)
	require.NoError(t, err)
	require.Equal(t, 4, raw)

	// The stream has ended; the heartbeat repeats the last count.
	raw, err = run.nextSample(ctx)
	require.NoError(t, err)
	require.Equal(t, 4, raw)
	require.True(t, run.drained)

	raw, err = run.nextSample(ctx)
	require.NoError(t, err)
	require.Equal(t, 4, raw)
}
