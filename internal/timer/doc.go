// Package timer provides the monotonic time arithmetic used by the signal
// engine and the clock abstraction used by its hosts.
//
// The engine never reads the wall clock itself: every operation receives an
// explicit "now" and measures intervals with Elapsed, which clamps negative
// spans to zero so clock jitter can never run an interval backwards. Hosts
// pick a Clock implementation: System for live operation, Manual for
// deterministic tests and replays.
package timer
