// Package definition builds the alarm definition registry.
//
// The registry merges built-in defaults with user overrides into one table
// keyed by logical alarm name. Each entry is tagged with a Kind when the
// table is built: static records are merged maps, generators are functions
// of a target function's attributes that yield one or several records.
// The registry is immutable once built.
package definition
