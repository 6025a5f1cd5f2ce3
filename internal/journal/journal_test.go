package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestJournalRoundTrip verifies that a run and its ticks come back the way
// they went in.
func TestJournalRoundTrip(t *testing.T) {
	t.Parallel()

	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, j.Close())
	})

	started := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	run, err := j.BeginRun(started, "console")
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)

	ticks := []Tick{
		{At: started, Raw: 0, Smoothed: 0, Confirmed: 0, Lights: "A=red B=green", Mode: "normal", Sent: true, Token: "ARBG"},
		{At: started.Add(4 * time.Second), Raw: 3, Smoothed: 3, Confirmed: 3, Lights: "A=red B=yellow", Mode: "yellow-clearance(ai-green)", Sent: true, Token: "ARBY"},
		{At: started.Add(6 * time.Second), Raw: 3, Smoothed: 3, Confirmed: 3, Lights: "A=green B=red", Mode: "normal", Sent: true, Token: "AGBR"},
	}

	for _, tick := range ticks {
		require.NoError(t, j.RecordTick(run.ID, tick))
	}

	runs, err := j.Runs(0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, run.ID, runs[0].ID)
	require.Equal(t, "console", runs[0].LinkTarget)
	require.Equal(t, 3, runs[0].Ticks)
	require.True(t, runs[0].StartedAt.Equal(started))

	stored, err := j.Ticks(run.ID, 0)
	require.NoError(t, err)
	require.Len(t, stored, 3)

	for i, tick := range stored {
		require.True(t, tick.At.Equal(ticks[i].At))
		require.Equal(t, ticks[i].Token, tick.Token)
		require.Equal(t, ticks[i].Lights, tick.Lights)
		require.Equal(t, ticks[i].Mode, tick.Mode)
		require.Equal(t, ticks[i].Sent, tick.Sent)
	}
}

// TestJournalUnknownRun verifies the error for a run id nobody registered.
func TestJournalUnknownRun(t *testing.T) {
	t.Parallel()

	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, j.Close())
	})

	_, err = j.Ticks("no-such-run", 0)
	require.ErrorIs(t, err, ErrRunNotFound)
}

// TestJournalRunsNewestFirst verifies the listing order and the limit.
func TestJournalRunsNewestFirst(t *testing.T) {
	t.Parallel()

	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, j.Close())
	})

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	first, err := j.BeginRun(base, "console")
	require.NoError(t, err)

	second, err := j.BeginRun(base.Add(time.Hour), "serial:/dev/ttyUSB0")
	require.NoError(t, err)

	runs, err := j.Runs(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, second.ID, runs[0].ID)

	runs, err = j.Runs(0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, second.ID, runs[0].ID)
	require.Equal(t, first.ID, runs[1].ID)
}
