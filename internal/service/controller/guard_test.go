package controller

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestEnsureSingleInstance verifies the scan passes when no other process
// shares this executable's name.
func TestEnsureSingleInstance(t *testing.T) {
	t.Parallel()

	require.NoError(t, ensureSingleInstance())
}
