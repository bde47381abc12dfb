// Package compile implements the alarm-compiler entry point.
//
// Run loads the service manifest and the alerts configuration, compiles the
// alarm resources, merges them into the target template and writes the
// result. With Watch set it keeps recompiling whenever an input file changes.
package compile
