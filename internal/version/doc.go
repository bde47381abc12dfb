// Package version exposes build metadata of alarm-compiler.
//
// Version, Commit and BuildTime are injected with -ldflags at build time;
// local builds report development defaults.
package version
