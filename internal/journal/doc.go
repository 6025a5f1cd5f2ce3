// Package journal persists controller runs and their notable ticks to a
// SQLite file, so an operator can audit after the fact what the lights did
// and why. The driver is pure Go; no C toolchain is needed on the box next
// to the crossing.
package journal
