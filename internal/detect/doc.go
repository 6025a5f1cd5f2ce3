// Package detect turns the noisy per-frame vehicle counts coming from the
// vision collaborator into a debounced "confirmed" count the signal engine
// can act on.
//
// A bounded history window is averaged to smooth single-frame noise, and a
// smoothed value only becomes the confirmed count after it has held steady
// for a confirmation delay. Congestion-level candidates use a shorter delay
// so the controller reacts to queues quickly. Timestamps are injected by the
// caller; the filter never reads the wall clock.
package detect
