package resolver

import (
	"fmt"

	"github.com/oshokin/alarm-compiler/internal/definition"
	"github.com/oshokin/alarm-compiler/internal/domain/alarm"
	"github.com/oshokin/alarm-compiler/internal/merge"
)

const inlineNamePrefix = "inline"

// Resolve expands refs into instances owned by scope.
//
// Bare names must exist in the registry. Named inline objects layer their
// overrides over the matching definition, or stand alone when nothing
// matches. Anonymous inline objects are used verbatim and named inline<N>.
func Resolve(
	refs []alarm.Ref,
	registry *definition.Registry,
	scope alarm.Scope,
	ctx definition.Context,
) ([]alarm.Instance, error) {
	if registry == nil {
		return nil, fmt.Errorf("%w: missing definitions argument", ErrConfiguration)
	}

	var (
		instances = make([]alarm.Instance, 0, len(refs))
		anonymous int
	)

	for _, ref := range refs {
		if ref.IsInline() && ref.Name == "" {
			anonymous++

			name := fmt.Sprintf("%s%d", inlineNamePrefix, anonymous)

			def, err := definition.Decode(name, ref.Inline)
			if err != nil {
				return nil, err
			}

			instances = append(instances, alarm.Instance{Name: name, Base: name, Scope: scope, Definition: def})

			continue
		}

		entry, ok := registry.Lookup(ref.Name)
		if !ok {
			if !ref.IsInline() {
				return nil, &DefinitionNotFoundError{Alarm: ref.Name, Scope: scope}
			}

			def, err := definition.Decode(ref.Name, ref.Overrides())
			if err != nil {
				return nil, err
			}

			instances = append(instances, alarm.Instance{Name: ref.Name, Base: ref.Name, Scope: scope, Definition: def})

			continue
		}

		expanded, err := expand(ref, entry, scope, ctx)
		if err != nil {
			return nil, err
		}

		instances = append(instances, expanded...)
	}

	return instances, nil
}

// expand resolves one registered reference according to the entry kind.
func expand(ref alarm.Ref, entry definition.Entry, scope alarm.Scope, ctx definition.Context) ([]alarm.Instance, error) {
	overrides := ref.Overrides()
	ctx.Overrides = overrides

	switch entry.Kind {
	case definition.KindStatic:
		def := entry.Definition.Clone()
		if len(overrides) > 0 {
			var err error

			def, err = definition.Decode(ref.Name, merge.Deep(entry.Record, overrides))
			if err != nil {
				return nil, err
			}
		}

		return []alarm.Instance{{Name: ref.Name, Base: ref.Name, Scope: scope, Definition: def}}, nil

	case definition.KindGenerator:
		if scope.Kind != alarm.ScopeFunction {
			return nil, fmt.Errorf("%w: generator %s requires a function scope, used in %s", ErrConfiguration, ref.Name, scope)
		}

		record, err := entry.Single(scope.Function, ctx)
		if err != nil {
			return nil, err
		}

		def, err := definition.Decode(ref.Name, merge.Deep(record, overrides))
		if err != nil {
			return nil, err
		}

		return []alarm.Instance{{Name: ref.Name, Base: ref.Name, Scope: scope, Definition: def}}, nil

	case definition.KindMultiGenerator:
		if scope.Kind != alarm.ScopeFunction {
			return nil, fmt.Errorf("%w: generator %s requires a function scope, used in %s", ErrConfiguration, ref.Name, scope)
		}

		variants, err := entry.Multi(scope.Function, ctx)
		if err != nil {
			return nil, err
		}

		instances := make([]alarm.Instance, 0, len(variants))
		for _, variant := range variants {
			name := ref.Name + variant.Suffix

			def, err := definition.Decode(name, merge.Deep(variant.Record, overrides))
			if err != nil {
				return nil, err
			}

			instances = append(instances, alarm.Instance{
				Name:       name,
				Base:       ref.Name,
				Suffix:     variant.Suffix,
				Scope:      scope,
				Definition: def,
			})
		}

		return instances, nil

	default:
		return nil, fmt.Errorf("%w: definition %s has unknown kind %s", ErrConfiguration, ref.Name, entry.Kind)
	}
}
