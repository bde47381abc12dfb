package resolver

import (
	"fmt"

	"github.com/oshokin/alarm-compiler/internal/config"
	"github.com/oshokin/alarm-compiler/internal/definition"
	"github.com/oshokin/alarm-compiler/internal/domain/alarm"
)

// GlobalAlarms resolves the stack-level alarms owned by the global pseudo-scope.
func GlobalAlarms(cfg *config.Alerts, registry *definition.Registry, ctx definition.Context) ([]alarm.Instance, error) {
	if err := checkArguments(cfg, registry); err != nil {
		return nil, err
	}

	return Resolve(cfg.Stack, registry, alarm.GlobalScope(), ctx)
}

// FunctionAlarms resolves every alarm that applies to fn.
func FunctionAlarms(
	cfg *config.Alerts,
	fn *alarm.FunctionDescriptor,
	registry *definition.Registry,
	ctx definition.Context,
) ([]alarm.Instance, error) {
	if err := checkArguments(cfg, registry); err != nil {
		return nil, err
	}

	if fn == nil {
		return nil, fmt.Errorf("%w: missing function argument", ErrConfiguration)
	}

	ctx.Function = *fn

	return Resolve(FunctionRefs(cfg, fn), registry, alarm.FunctionScope(fn.Name), ctx)
}

// CompositeAlarms resolves the composite-scope references. Every resolved
// definition must be of type composite.
func CompositeAlarms(cfg *config.Alerts, registry *definition.Registry) ([]alarm.Instance, error) {
	if err := checkArguments(cfg, registry); err != nil {
		return nil, err
	}

	instances, err := Resolve(cfg.Composite, registry, alarm.CompositeScope(), definition.Context{})
	if err != nil {
		return nil, err
	}

	for _, instance := range instances {
		if instance.Definition.Type != alarm.TypeComposite {
			return nil, fmt.Errorf("%w: %s is listed as composite but has type %q",
				ErrConfiguration, instance.Name, instance.Definition.Type)
		}
	}

	return instances, nil
}

// FunctionRefs returns the reference list of a function: inherited global
// references (unless the function opts out), the config-wide function list,
// then the function's own list. A later named reference replaces an earlier
// one with the same name in place; anonymous inline references are kept.
func FunctionRefs(cfg *config.Alerts, fn *alarm.FunctionDescriptor) []alarm.Ref {
	lists := make([][]alarm.Ref, 0, 3)
	if fn.InheritsGlobal() {
		lists = append(lists, cfg.Global)
	}

	lists = append(lists, cfg.Function, fn.Alarms)

	var (
		refs     []alarm.Ref
		position = make(map[string]int)
	)

	for _, list := range lists {
		for _, ref := range list {
			if ref.Name == "" {
				refs = append(refs, ref)

				continue
			}

			if i, ok := position[ref.Name]; ok {
				refs[i] = ref

				continue
			}

			position[ref.Name] = len(refs)
			refs = append(refs, ref)
		}
	}

	return refs
}

// CheckReferences verifies that every bare name in the configuration exists,
// so a typo fails the run before any function is processed.
func CheckReferences(cfg *config.Alerts, registry *definition.Registry) error {
	if err := checkArguments(cfg, registry); err != nil {
		return err
	}

	lists := []struct {
		scope alarm.Scope
		refs  []alarm.Ref
	}{
		{alarm.GlobalScope(), cfg.Global},
		{alarm.GlobalScope(), cfg.Function},
		{alarm.GlobalScope(), cfg.Stack},
		{alarm.CompositeScope(), cfg.Composite},
	}

	for _, list := range lists {
		for _, ref := range list.refs {
			if ref.IsInline() {
				continue
			}

			if _, ok := registry.Lookup(ref.Name); !ok {
				return &DefinitionNotFoundError{Alarm: ref.Name, Scope: list.scope}
			}
		}
	}

	return nil
}

func checkArguments(cfg *config.Alerts, registry *definition.Registry) error {
	if cfg == nil {
		return fmt.Errorf("%w: missing config argument", ErrConfiguration)
	}

	if registry == nil {
		return fmt.Errorf("%w: missing definitions argument", ErrConfiguration)
	}

	return nil
}
