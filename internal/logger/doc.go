// Package logger wraps zap with:
//   - a global sugared logger writing console lines to stderr,
//   - context helpers (ToContext/FromContext),
//   - level parsing and configuration,
//   - convenience functions (InfoKV, DebugKV, etc.).
//
// Long-running computations such as the L1 refinement take a logger from the
// context or accept one explicitly, so a command can raise verbosity for a
// single call without touching the global level.
package logger
