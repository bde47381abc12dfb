package compiler

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/alarm-compiler/internal/cfn"
	"github.com/oshokin/alarm-compiler/internal/config"
	"github.com/oshokin/alarm-compiler/internal/definition"
	"github.com/oshokin/alarm-compiler/internal/domain/alarm"
	"github.com/oshokin/alarm-compiler/internal/logger"
	"github.com/oshokin/alarm-compiler/internal/naming"
	"github.com/oshokin/alarm-compiler/internal/resolver"
	"github.com/oshokin/alarm-compiler/internal/synth"
	"github.com/oshokin/alarm-compiler/internal/topics"
)

// ErrReservedFunctionName is returned for functions whose key prefix is
// taken by the global or composite pseudo-scope.
var ErrReservedFunctionName = errors.New("function name is reserved")

// Compiler compiles one alerts configuration against one host.
type Compiler struct {
	// host enumerates functions and names resources.
	host Host
	// cfg is the alerts configuration, nil when none is configured.
	cfg *config.Alerts
}

// New returns a compiler for cfg. A nil cfg compiles to nothing.
func New(host Host, cfg *config.Alerts) *Compiler {
	return &Compiler{host: host, cfg: cfg}
}

// run holds the state of one Compile call.
type run struct {
	registry *definition.Registry
	actions  *topics.Actions
	index    *synth.AlarmIndex
	out      cfn.Resources
}

// Compile returns the resources of every configured alarm, topic and metric
// filter. Any error aborts the run and no resources are returned.
func (c *Compiler) Compile(ctx context.Context) (cfn.Resources, error) {
	ctx = logger.WithName(ctx, "compiler")

	if c.cfg == nil {
		logger.DebugKV(ctx, "No alerts configuration, nothing to compile")

		return cfn.Resources{}, nil
	}

	if c.host == nil {
		return nil, fmt.Errorf("%w: missing host argument", resolver.ErrConfiguration)
	}

	stage := c.host.CurrentStage()
	if !c.cfg.StageAllowed(stage) {
		logger.WarnKV(ctx, "Not deploying alerts on this stage", "stage", stage, "stages", c.cfg.Stages)

		return cfn.Resources{}, nil
	}

	registry, err := definition.Build(c.cfg.Definitions)
	if err != nil {
		return nil, fmt.Errorf("build definitions: %w", err)
	}

	if err = resolver.CheckReferences(c.cfg, registry); err != nil {
		return nil, err
	}

	actions, topicResources, err := topics.Compile(c.cfg.Topics)
	if err != nil {
		return nil, fmt.Errorf("compile topics: %w", err)
	}

	r := &run{
		registry: registry,
		actions:  actions,
		index:    synth.NewAlarmIndex(),
		out:      make(cfn.Resources),
	}

	if err = r.out.Merge(topicResources); err != nil {
		return nil, err
	}

	if err = c.compileGlobal(ctx, r); err != nil {
		return nil, err
	}

	for _, name := range c.host.ListFunctions() {
		if err = c.compileFunction(ctx, r, name); err != nil {
			return nil, fmt.Errorf("function %s: %w", name, err)
		}
	}

	if err = c.compileComposites(ctx, r); err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Compiled alerts", "resources", len(r.out))

	return r.out, nil
}

func (c *Compiler) baseContext() definition.Context {
	return definition.Context{
		StackName: c.host.StackName(),
		Stage:     c.host.CurrentStage(),
	}
}

func (c *Compiler) baseTarget(scope alarm.Scope) *synth.Target {
	return &synth.Target{
		Scope:          scope,
		StackName:      c.host.StackName(),
		NameTemplate:   c.cfg.NameTemplate,
		PrefixTemplate: c.cfg.PrefixTemplate,
	}
}

func (c *Compiler) compileGlobal(ctx context.Context, r *run) error {
	instances, err := resolver.GlobalAlarms(c.cfg, r.registry, c.baseContext())
	if err != nil {
		return err
	}

	target := c.baseTarget(alarm.GlobalScope())
	for i := range instances {
		if _, err = emit(ctx, r, &instances[i], target); err != nil {
			return err
		}
	}

	return nil
}

func (c *Compiler) compileFunction(ctx context.Context, r *run, name string) error {
	ctx = logger.WithKV(ctx, "function", name)

	if prefix := naming.ScopePrefix(name); naming.IsReservedScopePrefix(prefix) {
		return fmt.Errorf("%w: key prefix %s", ErrReservedFunctionName, prefix)
	}

	fn, err := c.host.DescribeFunction(name)
	if err != nil {
		return err
	}

	logicalID := c.host.LogicalIDFor(name)

	genCtx := c.baseContext()
	genCtx.FunctionLogicalID = logicalID

	instances, err := resolver.FunctionAlarms(c.cfg, fn, r.registry, genCtx)
	if err != nil {
		return err
	}

	target := c.baseTarget(alarm.FunctionScope(name))
	target.FunctionName = fn.DeployedName
	target.FunctionLogicalID = logicalID
	target.LogGroupName = c.host.LogStorageNameFor(name)
	target.LogGroupLogicalID = c.host.LogStorageLogicalIDFor(name)

	for i := range instances {
		instance := &instances[i]

		key, emitErr := emit(ctx, r, instance, target)
		if emitErr != nil {
			return emitErr
		}

		if key != "" {
			r.index.Record(instance.Name, instance.Base, key)
		}
	}

	logger.DebugKV(ctx, "Compiled function alarms", "alarms", len(instances))

	return nil
}

func (c *Compiler) compileComposites(ctx context.Context, r *run) error {
	instances, err := resolver.CompositeAlarms(c.cfg, r.registry)
	if err != nil {
		return err
	}

	target := c.baseTarget(alarm.CompositeScope())
	for i := range instances {
		instance := &instances[i]

		members := synth.CompositeMembers(ctx, instance, r.index)

		res := synth.CompositeResource(ctx, r.actions, instance, members, target)
		if res == nil {
			logger.DebugKV(ctx, "Composite alarm skipped", "composite", instance.Name)

			continue
		}

		if err = r.out.Add(synth.AlarmKey(instance), *res); err != nil {
			return err
		}
	}

	return nil
}

// emit adds the alarm and metric filter records of instance and returns the
// alarm key, or "" when nothing was emitted.
func emit(ctx context.Context, r *run, instance *alarm.Instance, target *synth.Target) (string, error) {
	res, err := synth.AlarmResource(ctx, r.actions, instance, target)
	if err != nil || res == nil {
		return "", err
	}

	key := synth.AlarmKey(instance)
	if err = r.out.Add(key, *res); err != nil {
		return "", err
	}

	filters, err := synth.LogMetricResources(instance, target)
	if err != nil {
		return "", err
	}

	if err = r.out.Merge(filters); err != nil {
		return "", err
	}

	return key, nil
}
