// Package traffic contains the core domain types for the dual traffic light
// controller.
//
// It defines LightColor and LightPair (the lamp states of the two
// directions), Direction (the two approaches, A being the AI-observed one),
// and the tagged operating-mode variants (Normal, YellowClearance,
// HighTraffic) together with the clearance outcomes that decide which lights
// are committed when a yellow interval ends. Modes are sealed interfaces so
// that impossible combinations (two simultaneous regimes, a clearance
// without a target) cannot be constructed.
package traffic
