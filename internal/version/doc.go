// Package version exposes build metadata for the traffic light binaries.
//
// Version, Commit, and BuildTime are injected at build time via ldflags and
// default to sensible values for local builds. Short and Full render them
// for CLI output and the controller's startup log.
package version
