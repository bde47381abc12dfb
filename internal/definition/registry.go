package definition

import (
	"fmt"
	"maps"
	"slices"

	"github.com/oshokin/alarm-compiler/internal/domain/alarm"
	"github.com/oshokin/alarm-compiler/internal/merge"
)

// Kind discriminates registry entries.
type Kind int

// Entry kinds.
const (
	// KindStatic entries hold a merged record.
	KindStatic Kind = iota + 1
	// KindGenerator entries yield exactly one record per function.
	KindGenerator
	// KindMultiGenerator entries yield one record per structural attribute
	// value, each with a name suffix.
	KindMultiGenerator
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindStatic:
		return "static"
	case KindGenerator:
		return "generator"
	case KindMultiGenerator:
		return "multi-generator"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Context carries the attributes a generator may read.
type Context struct {
	// Function is the target function.
	Function alarm.FunctionDescriptor
	// FunctionLogicalID is the logical ID of the function resource.
	FunctionLogicalID string
	// StackName is the deployment stack name.
	StackName string
	// Stage is the active deployment stage.
	Stage string
	// Overrides are the fields the referencing alarm layers over the
	// generated record.
	Overrides map[string]any
}

// Variant is one record produced by a multi-generator.
type Variant struct {
	// Suffix is appended to the definition name.
	Suffix string
	// Record is the raw definition.
	Record map[string]any
}

// SingleFunc yields one record for a function.
type SingleFunc func(functionID string, ctx Context) (map[string]any, error)

// MultiFunc yields several suffixed records for a function.
type MultiFunc func(functionID string, ctx Context) ([]Variant, error)

// Generator is a built-in definition computed from function attributes.
// The factories receive the user's partial override once, when the registry
// is built.
type Generator struct {
	// Kind is KindGenerator or KindMultiGenerator.
	Kind Kind
	// Single is set for KindGenerator.
	Single func(override map[string]any) SingleFunc
	// Multi is set for KindMultiGenerator.
	Multi func(override map[string]any) MultiFunc
}

// Entry is one resolved registry value.
type Entry struct {
	// Kind selects which of the remaining fields is set.
	Kind Kind
	// Record is the merged raw record of a static entry.
	Record map[string]any
	// Definition is the decoded static record.
	Definition alarm.Definition
	// Single expands a KindGenerator entry.
	Single SingleFunc
	// Multi expands a KindMultiGenerator entry.
	Multi MultiFunc
}

// Registry is the immutable lookup table of definitions.
type Registry struct {
	// entries maps logical alarm names to resolved entries.
	entries map[string]Entry
}

// Build merges the built-in defaults and generators with user overrides.
func Build(overrides map[string]map[string]any) (*Registry, error) {
	return BuildWith(Defaults(), Generators(), overrides)
}

// BuildWith merges the given defaults and generators with user overrides.
// Defaults are applied first; an override wins field by field over a static
// default and is handed to a generator as its partial override. Keys absent
// from both defaults and generators are taken as-is.
func BuildWith(
	defaults map[string]map[string]any,
	generators map[string]Generator,
	overrides map[string]map[string]any,
) (*Registry, error) {
	entries := make(map[string]Entry, len(defaults)+len(generators)+len(overrides))

	for name, record := range defaults {
		merged := merge.Deep(record, overrides[name])

		entry, err := staticEntry(name, merged)
		if err != nil {
			return nil, err
		}

		entries[name] = entry
	}

	for name, gen := range generators {
		override := merge.Clone(overrides[name])

		switch gen.Kind {
		case KindGenerator:
			entries[name] = Entry{Kind: KindGenerator, Single: gen.Single(override)}
		case KindMultiGenerator:
			entries[name] = Entry{Kind: KindMultiGenerator, Multi: gen.Multi(override)}
		case KindStatic:
			return nil, fmt.Errorf("%w %s: generator registered with kind %s", ErrInvalidDefinition, name, gen.Kind)
		default:
			return nil, fmt.Errorf("%w %s: unknown generator kind %s", ErrInvalidDefinition, name, gen.Kind)
		}
	}

	for name, record := range overrides {
		if _, ok := entries[name]; ok {
			continue
		}

		entry, err := staticEntry(name, merge.Clone(record))
		if err != nil {
			return nil, err
		}

		entries[name] = entry
	}

	return &Registry{entries: entries}, nil
}

// Lookup returns the entry registered under name.
func (r *Registry) Lookup(name string) (Entry, bool) {
	entry, ok := r.entries[name]

	return entry, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.entries))
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	return len(r.entries)
}

func staticEntry(name string, record map[string]any) (Entry, error) {
	def, err := Decode(name, record)
	if err != nil {
		return Entry{}, err
	}

	if def.Type == alarm.TypeGenerator {
		return Entry{}, fmt.Errorf("%w %s: type generator is reserved for built-in generators", ErrInvalidDefinition, name)
	}

	return Entry{Kind: KindStatic, Record: record, Definition: def}, nil
}
