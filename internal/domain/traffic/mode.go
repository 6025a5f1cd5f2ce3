package traffic

import (
	"fmt"
	"time"
)

// Mode is the operating regime of the signal controller. Exactly one mode is
// active at a time; the set of implementations is sealed.
type Mode interface {
	fmt.Stringer

	// mode seals the interface to the variants declared in this package.
	mode()
}

// Normal is the default regime: the confirmed count alone decides which
// direction holds green.
type Normal struct{}

func (Normal) mode() {}

// String implements fmt.Stringer.
func (Normal) String() string { return "normal" }

// YellowClearance is the mandatory transitional regime between a Green and
// the Red that follows it. Counts are ignored until the interval elapses;
// the outcome was fixed when the clearance began.
type YellowClearance struct {
	// StartedAt is when the yellow lamp was lit.
	StartedAt time.Time
	// Target decides the lights committed once the interval elapses.
	Target PostYellow
}

func (YellowClearance) mode() {}

// String implements fmt.Stringer.
func (c YellowClearance) String() string {
	return fmt.Sprintf("yellow-clearance(%s)", c.Target)
}

// HighTraffic is the congestion regime: the two directions alternate
// right-of-way on a fixed window until the confirmed count returns to zero.
type HighTraffic struct {
	// Active is the direction currently holding green.
	Active Direction
	// WindowStarted is when the active direction's window began. It is
	// re-armed only when an alternation clearance commits, so the window
	// is effectively paused while a yellow is in progress.
	WindowStarted time.Time
}

func (HighTraffic) mode() {}

// String implements fmt.Stringer.
func (h HighTraffic) String() string {
	return fmt.Sprintf("high-traffic(%s)", h.Active)
}

// PostYellow is the outcome committed when a yellow clearance interval ends.
// The set of implementations is sealed.
type PostYellow interface {
	fmt.Stringer

	// postYellow seals the interface to the variants declared in this package.
	postYellow()
}

// CrossGreen commits {Red, Green} and returns to Normal.
type CrossGreen struct{}

func (CrossGreen) postYellow() {}

// String implements fmt.Stringer.
func (CrossGreen) String() string { return "cross-green" }

// AiGreen commits {Green, Red} and returns to Normal.
type AiGreen struct{}

func (AiGreen) postYellow() {}

// String implements fmt.Stringer.
func (AiGreen) String() string { return "ai-green" }

// HighTrafficGreen commits green for Active and enters (or continues) the
// high-traffic regime with a fresh alternation window.
type HighTrafficGreen struct {
	// Active is the direction that receives green when the clearance ends.
	Active Direction
	// Entering marks the Normal to HighTraffic edge. Only that edge raises
	// the one-shot actuator alert; alternations within the regime leave it
	// false.
	Entering bool
}

func (HighTrafficGreen) postYellow() {}

// String implements fmt.Stringer.
func (g HighTrafficGreen) String() string {
	if g.Entering {
		return fmt.Sprintf("enter-high-traffic(%s)", g.Active)
	}

	return fmt.Sprintf("high-traffic-switch(%s)", g.Active)
}
