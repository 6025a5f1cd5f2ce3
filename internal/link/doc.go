// Package link frames traffic light states as wire command tokens and
// delivers them to the actuator over a serial device, a TCP endpoint, the
// console, or an in-memory recorder. Emitter keeps the at-least-once
// delivery state: tokens go out only when the lights change or an alert is
// pending, and failed sends stay pending until a later send succeeds.
package link
