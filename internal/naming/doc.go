// Package naming derives deterministic identifiers for compiled resources.
//
// Every function is pure: the same input always yields the same logical ID,
// metric name or display name, which keeps compiled templates byte-stable
// between runs.
package naming
