// Package resolver expands alarm references into concrete alarm instances.
//
// A reference is a definition name, an inline object naming a definition
// plus overrides, or an anonymous inline definition. Generator definitions
// are expanded against the target function; the per-scope reference lists
// follow the inheritance rules of the configuration tree.
package resolver
