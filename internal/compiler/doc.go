// Package compiler drives one compilation of the alerts configuration.
//
// The Compiler reads functions through an injected Host and resolves the
// stack-level alarms first, then every function in enumeration order, then
// the composites over the alarms emitted for those functions. Resources are
// collected in a run-local map that is only returned when the whole run
// succeeds.
package compiler
