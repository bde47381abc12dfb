// Package alarm contains the core domain types of the alarm compiler.
//
// It defines Definition (a reusable monitoring rule), Ref (a reference to a
// definition from a configuration list), Instance (a resolved occurrence of a
// definition owned by a Scope) and FunctionDescriptor (the read-only view of
// a deployed function). Clone helpers keep resolved values from leaking
// shared references between scopes.
package alarm
