package replay

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestRunMatchesFixture replays the basic hand-over scenario and expects the
// produced tokens to match.
func TestRunMatchesFixture(t *testing.T) {
	t.Parallel()

	err := Run(context.Background(), &Options{FixturePath: filepath.Join("testdata", "basic.yaml")})
	require.NoError(t, err)
}

// TestRunFlagsMismatch verifies that a deviating token sequence surfaces as
// an error.
func TestRunFlagsMismatch(t *testing.T) {
	t.Parallel()

	err := Run(context.Background(), &Options{FixturePath: filepath.Join("testdata", "mismatch.yaml")})
	require.ErrorIs(t, err, ErrSequenceMismatch)
}

// TestLoadFixtureValidation covers the fixture loading failure modes.
func TestLoadFixtureValidation(t *testing.T) {
	t.Parallel()

	_, err := loadFixture(filepath.Join("testdata", "no-such-file.yaml"))
	require.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("description: no steps\n"), 0o600))

	_, err = loadFixture(empty)
	require.ErrorIs(t, err, errNoSteps)

	// Defaults fill in.
	withSteps := filepath.Join(t.TempDir(), "steps.yaml")
	require.NoError(t, os.WriteFile(withSteps, []byte("steps:\n  - { count: 1, for_ms: 100 }\n"), 0o600))

	fix, err := loadFixture(withSteps)
	require.NoError(t, err)
	require.Equal(t, defaultTickIntervalMS, fix.TickIntervalMS)
	require.Empty(t, fix.Expect)
}
