// Package source supplies raw vehicle counts to the controller loop. Counts
// arrive either as integer lines on a stream (the detector process pipes
// them in) or from a scripted sequence used by replays and bench runs.
package source
