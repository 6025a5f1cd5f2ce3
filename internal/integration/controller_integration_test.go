package integration

import (
	"context"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/UrUsualKal/ai-traffic-light-system/internal/config"
	"github.com/UrUsualKal/ai-traffic-light-system/internal/journal"
	"github.com/UrUsualKal/ai-traffic-light-system/internal/service/controller"
)

// writeSettings saves a controller configuration to a temporary file and
// returns its path.
func writeSettings(t *testing.T, cfg *config.Config) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, config.Save(path, cfg))

	return path
}

// writeCounts writes a vehicle count stream to a temporary file. The
// controller drains it and then keeps re-observing the last count on its
// heartbeat, so a single line stands for a sustained reading.
func writeCounts(t *testing.T, lines string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "counts.txt")
	require.NoError(t, os.WriteFile(path, []byte(lines), 0o600))

	return path
}

// fastSettings returns a configuration with timings shrunk so a full signal
// cycle fits in a test run.
func fastSettings(linkTarget string) *config.Config {
	return &config.Config{
		Link:                  linkTarget,
		TickInterval:          5 * time.Millisecond,
		YellowDuration:        40 * time.Millisecond,
		ConfirmationDelay:     60 * time.Millisecond,
		HighConfirmationDelay: 30 * time.Millisecond,
		DetectionHistorySize:  1,
	}
}

// TestController_DrivesActuatorOverTCP runs the controller against a live TCP
// actuator: sustained traffic on the observed road must take over the
// crossing through a yellow clearance.
func TestController_DrivesActuatorOverTCP(t *testing.T) {
	t.Parallel()

	actuator := startActuator(t)
	cfgPath := writeSettings(t, fastSettings("tcp:"+actuator.addr()))
	input := writeCounts(t, "3\n")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- controller.Run(ctx, &controller.Options{ConfigPath: cfgPath, Input: input})
	}()

	got := actuator.awaitTokens(t, 3)
	require.Equal(t, []string{"ARBG", "ARBY", "AGBR"}, got[:3])

	cancel()
	require.NoError(t, <-done)
}

// TestController_JournalsRun checks a run with journaling on leaves a
// readable record of what the controller observed and sent.
func TestController_JournalsRun(t *testing.T) {
	t.Parallel()

	actuator := startActuator(t)

	settings := fastSettings("tcp:" + actuator.addr())
	settings.JournalFile = filepath.Join(t.TempDir(), "journal.db")
	cfgPath := writeSettings(t, settings)
	input := writeCounts(t, "2\n")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- controller.Run(ctx, &controller.Options{ConfigPath: cfgPath, Input: input})
	}()

	actuator.awaitTokens(t, 3)
	cancel()
	require.NoError(t, <-done)

	// The run is closed: read the journal back like the inspector would.
	records, err := journal.Open(settings.JournalFile)
	require.NoError(t, err)

	defer func() {
		require.NoError(t, records.Close())
	}()

	runs, err := records.Runs(0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, settings.Link, runs[0].LinkTarget)
	require.Positive(t, runs[0].Ticks)

	ticks, err := records.Ticks(runs[0].ID, 0)
	require.NoError(t, err)
	require.NotEmpty(t, ticks)
	require.Equal(t, "ARBG", ticks[0].Token)
	require.True(t, ticks[0].Sent)
	require.Equal(t, "A=red B=green", ticks[0].Lights)
}

// TestController_HangupResyncsActuator checks SIGHUP makes the controller
// re-push its resting state so a power-cycled actuator catches up.
//
// Not parallel: the hangup signal is delivered process-wide and would reach
// every controller loop running in this binary.
func TestController_HangupResyncsActuator(t *testing.T) {
	actuator := startActuator(t)
	cfgPath := writeSettings(t, fastSettings("tcp:"+actuator.addr()))
	input := writeCounts(t, "0\n")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- controller.Run(ctx, &controller.Options{ConfigPath: cfgPath, Input: input})
	}()

	// The loop subscribes to SIGHUP before it pushes the startup state, so
	// one received token means the handler is in place.
	first := actuator.awaitTokens(t, 1)
	require.Equal(t, []string{"ARBG"}, first[:1])

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGHUP))

	resent := actuator.awaitTokens(t, 2)
	require.Equal(t, []string{"ARBG", "ARBG"}, resent[:2])

	cancel()
	require.NoError(t, <-done)
}
