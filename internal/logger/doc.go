// Package logger wraps zap for the compiler binaries:
//   - a global sugared logger writing console-encoded lines to stderr,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing for the --log-level flag,
//   - leveled convenience functions (Infof, WarnKV, etc.).
//
// Compilation stages receive a context and log through it, so every line
// carries the scope (stage, function, alarm) it was emitted for.
package logger
