package engine

import (
	"context"
	"errors"
	"time"

	"github.com/UrUsualKal/ai-traffic-light-system/internal/detect"
	"github.com/UrUsualKal/ai-traffic-light-system/internal/domain/traffic"
	"github.com/UrUsualKal/ai-traffic-light-system/internal/link"
)

// Result describes everything one controller tick did, for logging and for
// the run journal.
type Result struct {
	// Raw is the vehicle count handed to the tick.
	Raw int
	// Smoothed is the windowed average after this sample.
	Smoothed int
	// Confirmed is the debounced count the machine acted on.
	Confirmed int
	// ConfirmedChanged is true when this tick committed a new confirmed
	// count.
	ConfirmedChanged bool
	// Lights is the pair after the tick.
	Lights traffic.LightPair
	// LightsChanged is true when the pair differs from before the tick.
	LightsChanged bool
	// Mode is the operating regime after the tick.
	Mode traffic.Mode
	// Alert is true when the tick crossed into the high-traffic regime.
	Alert bool
	// Sent is true when a command token was delivered to the actuator.
	Sent bool
	// Token is the command attempted this tick, empty when nothing was due.
	Token string
}

// Controller wires the detection filter, the state machine and the command
// emitter into one per-tick entry point. Like its parts it is driven by a
// single loop and carries no locking.
type Controller struct {
	filter  *detect.Filter
	machine *Machine
	emitter *link.Emitter
}

// NewController builds a controller resting in the cross-traffic state,
// delivering commands through sink.
func NewController(detectCfg detect.Config, machineCfg Config, sink link.Sink) *Controller {
	return &Controller{
		filter:  detect.NewFilter(detectCfg),
		machine: NewMachine(machineCfg),
		emitter: link.NewEmitter(sink),
	}
}

// Tick runs one control cycle: the raw count goes through the debounce
// filter, the machine advances on the confirmed count, and any resulting
// command goes to the actuator.
//
// Tick degrades instead of stopping. An invalid sample keeps the previous
// confirmed count, and a failed delivery is retried by the following ticks,
// so both come back as errors alongside a fully populated Result.
func (c *Controller) Tick(ctx context.Context, raw int, now time.Time) (Result, error) {
	previous := c.filter.Confirmed()

	confirmed, observeErr := c.filter.Observe(raw, now)
	transition := c.machine.Tick(confirmed, now)
	token, attempted, sendErr := c.emitter.Emit(ctx, c.machine.Lights(), transition.Alert)

	result := Result{
		Raw:              raw,
		Smoothed:         c.filter.Smoothed(),
		Confirmed:        confirmed,
		ConfirmedChanged: confirmed != previous,
		Lights:           c.machine.Lights(),
		LightsChanged:    transition.Changed,
		Mode:             c.machine.Mode(),
		Alert:            transition.Alert,
		Sent:             attempted && sendErr == nil,
		Token:            token,
	}

	return result, errors.Join(observeErr, sendErr)
}

// Reset abandons any clearance or congestion in progress, returns the lights
// to the cross-traffic resting state and pushes that state to the actuator
// even if it matches the last delivered one. The detection filter keeps its
// history: the road did not change because an operator pressed a button.
func (c *Controller) Reset(ctx context.Context) (string, error) {
	c.machine.Reset()

	token, _, err := c.emitter.ForceEmit(ctx, c.machine.Lights(), false)

	return token, err
}

// Lights returns the current light pair.
func (c *Controller) Lights() traffic.LightPair {
	return c.machine.Lights()
}

// Mode returns the current operating regime.
func (c *Controller) Mode() traffic.Mode {
	return c.machine.Mode()
}

// Confirmed returns the current debounced vehicle count.
func (c *Controller) Confirmed() int {
	return c.filter.Confirmed()
}

// Smoothed returns the current windowed average of detector samples.
func (c *Controller) Smoothed() int {
	return c.filter.Smoothed()
}
