package link

import (
	"context"
	"fmt"

	"github.com/UrUsualKal/ai-traffic-light-system/internal/domain/traffic"
)

// SendError reports a failed delivery of one command token. The token is
// kept so callers can log exactly what never reached the actuator.
type SendError struct {
	// Token is the command that failed to go out.
	Token string
	// Err is the underlying sink failure.
	Err error
}

// Error implements the error interface.
func (e *SendError) Error() string {
	return fmt.Sprintf("send command %q: %v", e.Token, e.Err)
}

// Unwrap returns the underlying sink failure.
func (e *SendError) Unwrap() error {
	return e.Err
}

// Emitter delivers command tokens with at-least-once semantics. It sends
// only when the lights differ from the last acknowledged state or an alert
// is pending, so callers can invoke it every tick: a failed send leaves the
// acknowledged state untouched and the very next tick retries the delivery.
//
// An alert that could not go out is latched and rides the next successful
// token, even if the lights have moved on in the meantime. While the lights
// show yellow the latch is held back, since alert tokens only exist for
// resting states.
type Emitter struct {
	sink         Sink
	lastSent     traffic.LightPair
	sentOnce     bool
	pendingAlert bool
}

// NewEmitter returns an emitter delivering through sink. Nothing counts as
// sent yet, so the first Emit always delivers.
func NewEmitter(sink Sink) *Emitter {
	return &Emitter{sink: sink}
}

// LastSent returns the last successfully delivered light pair. The second
// result is false until the first delivery succeeds.
func (e *Emitter) LastSent() (traffic.LightPair, bool) {
	return e.lastSent, e.sentOnce
}

// Emit delivers the current lights if they differ from the last delivered
// state or an alert is due. It returns the token and whether a delivery was
// attempted; an attempted delivery that failed returns a *SendError and
// leaves the emitter ready to retry.
func (e *Emitter) Emit(ctx context.Context, lights traffic.LightPair, alert bool) (string, bool, error) {
	if alert {
		e.pendingAlert = true
	}

	carryAlert := e.pendingAlert && lights.A != traffic.Yellow && lights.B != traffic.Yellow

	changed := !e.sentOnce || lights != e.lastSent
	if !changed && !carryAlert {
		return "", false, nil
	}

	token, err := EncodeCommand(lights, carryAlert)
	if err != nil {
		return "", false, err
	}

	if err := e.sink.Send(ctx, token); err != nil {
		return token, true, &SendError{Token: token, Err: err}
	}

	e.lastSent = lights
	e.sentOnce = true

	if carryAlert {
		e.pendingAlert = false
	}

	return token, true, nil
}

// ForceEmit delivers the current lights even when they match the last
// delivered state. Operator resets use it to resynchronize an actuator whose
// state is unknown. A latched alert is dropped: the regime it belonged to
// was abandoned, and a still-congested road raises a fresh one immediately.
func (e *Emitter) ForceEmit(ctx context.Context, lights traffic.LightPair, alert bool) (string, bool, error) {
	e.sentOnce = false
	e.pendingAlert = false

	return e.Emit(ctx, lights, alert)
}
