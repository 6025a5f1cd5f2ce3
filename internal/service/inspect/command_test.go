package inspect_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/UrUsualKal/ai-traffic-light-system/internal/journal"
	"github.com/UrUsualKal/ai-traffic-light-system/internal/service/inspect"
)

func seedJournal(t *testing.T) (string, journal.Run) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "journal.db")

	records, err := journal.Open(path)
	require.NoError(t, err)

	defer func() {
		require.NoError(t, records.Close())
	}()

	run, err := records.BeginRun(time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC), "console")
	require.NoError(t, err)

	err = records.RecordTick(run.ID, journal.Tick{
		At:        run.StartedAt,
		Confirmed: 0,
		Lights:    "A=red B=green",
		Mode:      "normal",
		Sent:      true,
		Token:     "ARBG",
	})
	require.NoError(t, err)

	err = records.RecordTick(run.ID, journal.Tick{
		At:        run.StartedAt.Add(3 * time.Second),
		Raw:       9,
		Smoothed:  9,
		Confirmed: 9,
		Lights:    "A=red B=green",
		Mode:      "high-traffic(B)",
		Alert:     true,
		Sent:      true,
		Token:     "ARBGH",
	})
	require.NoError(t, err)

	return path, run
}

// TestRunsListsRecordedRuns renders the run table and checks the seeded run
// shows up with its tick count.
func TestRunsListsRecordedRuns(t *testing.T) {
	t.Parallel()

	path, run := seedJournal(t)

	var out bytes.Buffer

	err := inspect.Runs(context.Background(), &inspect.Options{
		JournalFile: path,
		Out:         &out,
	})
	require.NoError(t, err)

	rendered := out.String()
	require.Contains(t, rendered, "RUN ID")
	require.Contains(t, rendered, run.ID)
	require.Contains(t, rendered, "console")
	require.Contains(t, rendered, "2024-06-01T08:00:00Z")
}

// TestTicksListsRunHistory renders one run's ticks and checks both recorded
// tokens appear in order.
func TestTicksListsRunHistory(t *testing.T) {
	t.Parallel()

	path, run := seedJournal(t)

	var out bytes.Buffer

	err := inspect.Ticks(context.Background(), &inspect.Options{
		JournalFile: path,
		RunID:       run.ID,
		Out:         &out,
	})
	require.NoError(t, err)

	rendered := out.String()
	require.Contains(t, rendered, "TOKEN")
	require.Contains(t, rendered, "ARBG")
	require.Contains(t, rendered, "ARBGH")
	require.Contains(t, rendered, "high-traffic(B)")
	require.Less(t,
		bytes.Index(out.Bytes(), []byte("ARBG")),
		bytes.Index(out.Bytes(), []byte("ARBGH")))
}

// TestTicksRejectsUnknownRun checks an unknown run identifier surfaces the
// journal's not-found error.
func TestTicksRejectsUnknownRun(t *testing.T) {
	t.Parallel()

	path, _ := seedJournal(t)

	err := inspect.Ticks(context.Background(), &inspect.Options{
		JournalFile: path,
		RunID:       "no-such-run",
	})
	require.ErrorIs(t, err, journal.ErrRunNotFound)
}
