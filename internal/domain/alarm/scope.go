package alarm

import "github.com/oshokin/alarm-compiler/internal/naming"

// ScopeKind distinguishes the owners of alarm instances.
type ScopeKind int

// Scope kinds.
const (
	ScopeFunction ScopeKind = iota + 1
	ScopeGlobal
	ScopeComposite
)

// Scope owns alarm instances: one function or a pseudo-scope.
type Scope struct {
	// Kind is the scope kind.
	Kind ScopeKind
	// Function is the function name for function scopes.
	Function string
}

// FunctionScope returns the scope of one function.
func FunctionScope(name string) Scope {
	return Scope{Kind: ScopeFunction, Function: name}
}

// GlobalScope returns the global pseudo-scope.
func GlobalScope() Scope {
	return Scope{Kind: ScopeGlobal}
}

// CompositeScope returns the composite pseudo-scope.
func CompositeScope() Scope {
	return Scope{Kind: ScopeComposite}
}

// Prefix returns the resource key prefix of the scope.
func (s Scope) Prefix() string {
	switch s.Kind {
	case ScopeFunction:
		return naming.ScopePrefix(s.Function)
	case ScopeGlobal:
		return naming.GlobalPrefix
	case ScopeComposite:
		return naming.CompositePrefix
	default:
		return ""
	}
}

// String returns a readable scope identifier for logs and errors.
func (s Scope) String() string {
	switch s.Kind {
	case ScopeFunction:
		return "function:" + s.Function
	case ScopeGlobal:
		return "global"
	case ScopeComposite:
		return "composite"
	default:
		return "unknown"
	}
}
