package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/UrUsualKal/ai-traffic-light-system/internal/detect"
	"github.com/UrUsualKal/ai-traffic-light-system/internal/domain/traffic"
	"github.com/UrUsualKal/ai-traffic-light-system/internal/link"
)

const tickInterval = 100 * time.Millisecond

var errWireDown = errors.New("wire down")

// TestControllerEmitsInitialState verifies that the first tick pushes the
// resting state to an actuator whose state is unknown, and that steady ticks
// after it stay silent.
func TestControllerEmitsInitialState(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sink := link.NewMemorySink()
	c := NewController(detect.Config{}, Config{}, sink)

	base := time.Unix(20000, 0)

	result, err := c.Tick(ctx, 0, base)
	require.NoError(t, err)
	require.True(t, result.Sent)
	require.Equal(t, "ARBG", result.Token)

	for i := 1; i <= 10; i++ {
		result, err = c.Tick(ctx, 0, base.Add(time.Duration(i)*tickInterval))
		require.NoError(t, err)
		require.False(t, result.Sent)
	}

	require.Equal(t, []string{"ARBG"}, sink.Records())
}

// TestControllerFullCycle drives raw counts through the whole pipeline: a
// sustained count of 3 must first survive the debounce, then clear the cross
// side through yellow, then hand green to the observed side. Exactly three
// tokens cross the wire.
func TestControllerFullCycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sink := link.NewMemorySink()
	c := NewController(detect.Config{}, Config{}, sink)

	base := time.Unix(21000, 0)

	_, err := c.Tick(ctx, 0, base)
	require.NoError(t, err)

	var sawClearance bool

	for i := 1; i <= 70; i++ {
		result, err := c.Tick(ctx, 3, base.Add(time.Duration(i)*tickInterval))
		require.NoError(t, err)
		require.False(t, result.Alert)

		if result.LightsChanged && result.Lights.B == traffic.Yellow {
			sawClearance = true
		}
	}

	require.True(t, sawClearance)
	require.Equal(t, traffic.AiTraffic(), c.Lights())
	require.Equal(t, 3, c.Confirmed())
	require.Equal(t, []string{"ARBG", "ARBY", "AGBR"}, sink.Records())
}

// TestControllerKeepsTickingOnInvalidSample verifies that a broken sample
// reports an error but neither stalls the machine nor corrupts the filter.
func TestControllerKeepsTickingOnInvalidSample(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sink := link.NewMemorySink()
	c := NewController(detect.Config{}, Config{}, sink)

	base := time.Unix(22000, 0)

	_, err := c.Tick(ctx, 0, base)
	require.NoError(t, err)

	result, err := c.Tick(ctx, -5, base.Add(tickInterval))
	require.ErrorIs(t, err, detect.ErrInvalidCount)
	require.Equal(t, 0, result.Confirmed)
	require.False(t, result.Sent)
	require.Equal(t, traffic.CrossTraffic(), result.Lights)

	result, err = c.Tick(ctx, 0, base.Add(2*tickInterval))
	require.NoError(t, err)
	require.Equal(t, 0, result.Confirmed)
}

// TestControllerRetriesFailedSend verifies at-least-once delivery: a send
// error surfaces on the tick that hit it and the next tick delivers the same
// token.
func TestControllerRetriesFailedSend(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sink := link.NewMemorySink()
	c := NewController(detect.Config{}, Config{}, sink)

	base := time.Unix(23000, 0)

	sink.FailNext(1, errWireDown)

	result, err := c.Tick(ctx, 0, base)
	require.Error(t, err)

	var sendErr *link.SendError

	require.ErrorAs(t, err, &sendErr)
	require.Equal(t, "ARBG", sendErr.Token)
	require.False(t, result.Sent)

	result, err = c.Tick(ctx, 0, base.Add(tickInterval))
	require.NoError(t, err)
	require.True(t, result.Sent)
	require.Equal(t, "ARBG", result.Token)

	require.Equal(t, []string{"ARBG"}, sink.Records())
}

// TestControllerCongestionAndReset drives a congestion-level count end to
// end: the alert token goes out once without any lamp change, an operator
// reset resynchronizes the actuator, and because the reset leaves the
// detection history alone the still-congested road re-raises the alert on
// the very next tick.
func TestControllerCongestionAndReset(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sink := link.NewMemorySink()
	c := NewController(detect.Config{}, Config{}, sink)

	base := time.Unix(24000, 0)

	var alerted bool

	for i := 0; i <= 20; i++ {
		result, err := c.Tick(ctx, 9, base.Add(time.Duration(i)*tickInterval))
		require.NoError(t, err)

		if result.Alert {
			require.Equal(t, "ARBGH", result.Token)
			require.False(t, result.LightsChanged)

			alerted = true
		}
	}

	require.True(t, alerted)
	require.Equal(t, 9, c.Confirmed())

	token, err := c.Reset(ctx)
	require.NoError(t, err)
	require.Equal(t, "ARBG", token)
	require.IsType(t, traffic.Normal{}, c.Mode())

	// The filter survived the reset, so congestion re-engages immediately.
	result, err := c.Tick(ctx, 9, base.Add(3*time.Second))
	require.NoError(t, err)
	require.True(t, result.Alert)
	require.Equal(t, "ARBGH", result.Token)

	require.Equal(t, []string{"ARBG", "ARBGH", "ARBG", "ARBGH"}, sink.Records())
}
