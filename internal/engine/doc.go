// Package engine decides the traffic light state from confirmed vehicle
// counts. Machine holds the mode transition rules; Controller composes the
// detection filter, the machine and the command emitter into the single
// per-tick entry point the services drive.
package engine
