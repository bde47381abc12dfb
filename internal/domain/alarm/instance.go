package alarm

// Instance is one resolved, override-merged occurrence of a definition.
// Instances are never mutated after resolution.
type Instance struct {
	// Name is the logical alarm name including any suffix.
	Name string
	// Base is the name of the definition the instance came from.
	Base string
	// Suffix disambiguates instances expanded from one generator.
	Suffix string
	// Scope owns the instance.
	Scope Scope
	// Definition is the merged rule.
	Definition Definition
}

// Clone returns a deep copy of the instance.
func (i *Instance) Clone() Instance {
	cloned := *i
	cloned.Definition = i.Definition.Clone()

	return cloned
}

// IsEnabled reports whether the instance produces resources.
func (i *Instance) IsEnabled() bool {
	return i.Definition.IsEnabled()
}
