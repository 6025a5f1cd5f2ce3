// Package logger provides a small wrapper around zap for the traffic light
// binaries:
//   - a global sugared logger writing console lines to standard error,
//     leaving standard output to the console actuator link,
//   - context helpers (ToContext/FromContext/WithName/WithKV/WithFields),
//   - level parsing for the log_level settings field,
//   - leveled convenience functions (InfoKV, ErrorKV, etc.).
//
// The services accept a context and log through it, so a run identifier
// attached once in the controller rides every line of that run.
package logger
