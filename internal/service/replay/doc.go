// Package replay runs the control engine against a scripted detector
// feed on a manual clock and checks the command tokens it produces against
// an expected sequence. Fixtures are YAML files:
//
//	description: sustained traffic hands green to the observed side
//	tick_interval_ms: 100
//	steps:
//	  - { count: 0, for_ms: 500 }
//	  - { count: 3, for_ms: 6000 }
//	expect: [ARBG, ARBY, AGBR]
//
// Timing fields of the engine (yellow_ms, high_traffic_timer_ms, ...) may be
// overridden per fixture so long regimes replay in seconds. A fixture
// without an expect list just reports what the run produced.
package replay
