package alarm

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

const (
	refNameKey      = "name"
	refOverridesKey = "overrides"
)

// Ref is one entry of an alarm reference list: either a bare definition name
// or an inline object. Inline objects with a name override that definition;
// inline objects without one are complete definitions of their own.
type Ref struct {
	// Name is the referenced definition, empty for anonymous inline objects.
	Name string
	// Inline holds the raw object form, nil for bare names.
	Inline map[string]any
}

// NamedRef returns a bare-name reference.
func NamedRef(name string) Ref {
	return Ref{Name: name}
}

// IsInline reports whether the reference was written as an object.
func (r Ref) IsInline() bool {
	return r.Inline != nil
}

// Overrides returns the fields an inline reference layers over its definition:
// every field except name, with a nested overrides mapping applied last.
func (r Ref) Overrides() map[string]any {
	if r.Inline == nil {
		return nil
	}

	out := make(map[string]any, len(r.Inline))
	for key, value := range r.Inline {
		if key == refNameKey || key == refOverridesKey {
			continue
		}

		out[key] = value
	}

	if nested, ok := r.Inline[refOverridesKey].(map[string]any); ok {
		for key, value := range nested {
			out[key] = value
		}
	}

	return out
}

// UnmarshalYAML accepts a scalar name or a mapping.
func (r *Ref) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Decode(&r.Name)
	case yaml.MappingNode:
		if err := node.Decode(&r.Inline); err != nil {
			return err
		}

		if r.Inline == nil {
			r.Inline = map[string]any{}
		}

		if name, ok := r.Inline[refNameKey]; ok {
			str, isString := name.(string)
			if !isString {
				return fmt.Errorf("alarm reference name must be a string, got %T", name)
			}

			r.Name = str
		}

		return nil
	default:
		return fmt.Errorf("alarm reference must be a name or an object, got node kind %d", node.Kind)
	}
}

// MarshalYAML writes the reference back in its original form.
func (r Ref) MarshalYAML() (any, error) {
	if r.Inline != nil {
		return r.Inline, nil
	}

	return r.Name, nil
}
