// Package config defines the alerts configuration tree and helpers to load,
// validate and watch it.
//
// The tree is read from YAML (.yaml, .yml) or TOML (.toml). TOML documents
// are normalized through the YAML decoder so both formats share one set of
// struct tags and custom unmarshalers.
package config
