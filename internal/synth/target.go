package synth

import (
	"errors"

	"github.com/oshokin/alarm-compiler/internal/domain/alarm"
	"github.com/oshokin/alarm-compiler/internal/naming"
)

// ErrPatternScope is returned when a log-pattern alarm is synthesized
// outside a function scope.
var ErrPatternScope = errors.New("log pattern alarms require a function scope")

// Target is everything the synthesizers need to know about the owner of an
// instance.
type Target struct {
	// Scope owns the instances.
	Scope alarm.Scope
	// StackName is the deployment stack name.
	StackName string
	// FunctionName is the deployed function name.
	FunctionName string
	// FunctionLogicalID is the logical ID of the function resource. A
	// function target without one produces no resources.
	FunctionLogicalID string
	// LogGroupName is the physical log group of the function.
	LogGroupName string
	// LogGroupLogicalID is the logical ID of the function's log group.
	LogGroupLogicalID string
	// NameTemplate is used when an instance has no nameTemplate of its own.
	NameTemplate string
	// PrefixTemplate is used when an instance has no prefixTemplate of its own.
	PrefixTemplate string
}

// AlarmKey returns the resource key of an instance.
func AlarmKey(instance *alarm.Instance) string {
	return naming.AlarmKey(instance.Scope.Prefix(), instance.Name)
}

// skip reports whether target cannot carry resources.
func (t *Target) skip() bool {
	return t.Scope.Kind == alarm.ScopeFunction && t.FunctionLogicalID == ""
}

// alarmName renders the display name, or "" when no template applies.
func (t *Target) alarmName(instance *alarm.Instance, metric string) string {
	nameTemplate := instance.Definition.NameTemplate
	if nameTemplate == "" {
		nameTemplate = t.NameTemplate
	}

	if nameTemplate == "" {
		return ""
	}

	return naming.AlarmName(nameTemplate, t.prefixTemplate(instance), t.vars(instance, metric))
}

func (t *Target) prefixTemplate(instance *alarm.Instance) string {
	if instance.Definition.PrefixTemplate != "" {
		return instance.Definition.PrefixTemplate
	}

	return t.PrefixTemplate
}

func (t *Target) vars(instance *alarm.Instance, metric string) naming.TemplateVars {
	return naming.TemplateVars{
		StackName:    t.StackName,
		FunctionName: t.FunctionName,
		FunctionID:   t.FunctionLogicalID,
		MetricName:   metric,
		MetricID:     naming.Normalize(instance.Name),
	}
}
