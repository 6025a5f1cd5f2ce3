// Package config defines the settings shared by the traffic light binaries
// and provides helpers to load, validate and save them in YAML format.
//
// The Config type holds the actuator link target, the control loop timings
// and the detection filter tunables. Validate fills defaults for anything
// left unset, so an empty file is a valid configuration.
package config
