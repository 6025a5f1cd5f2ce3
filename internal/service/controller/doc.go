// Package controller runs the signal control service. It reads detector
// samples from a stream, drives the control engine on a steady heartbeat,
// delivers command tokens over the configured actuator link, journals
// notable ticks and resynchronizes the actuator on operator reset (SIGHUP).
package controller
