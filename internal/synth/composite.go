package synth

import (
	"context"
	"strings"

	"github.com/oshokin/alarm-compiler/internal/cfn"
	"github.com/oshokin/alarm-compiler/internal/domain/alarm"
	"github.com/oshokin/alarm-compiler/internal/logger"
	"github.com/oshokin/alarm-compiler/internal/naming"
	"github.com/oshokin/alarm-compiler/internal/topics"
)

// CompositeMembers returns the alarm keys a composite instance combines: the
// explicit alarms list, filtered to keys that were emitted, or every key
// recorded under the referenced alarm name.
func CompositeMembers(ctx context.Context, instance *alarm.Instance, index *AlarmIndex) []string {
	def := &instance.Definition
	if len(def.Alarms) == 0 {
		return index.Keys(def.Alarm)
	}

	var (
		members = make([]string, 0, len(def.Alarms))
		seen    = make(map[string]struct{}, len(def.Alarms))
	)

	for _, key := range def.Alarms {
		if _, dup := seen[key]; dup {
			continue
		}

		seen[key] = struct{}{}

		if !index.Has(key) {
			logger.DebugKV(ctx, "Composite member was not emitted, leaving it out",
				"composite", instance.Name, "alarm", key)

			continue
		}

		members = append(members, key)
	}

	return members
}

// CompositeResource builds the AWS::CloudWatch::CompositeAlarm record of a
// composite instance over members. It returns nil when the composite is
// disabled or has no members.
func CompositeResource(
	ctx context.Context,
	actions *topics.Actions,
	instance *alarm.Instance,
	members []string,
	target *Target,
) *cfn.Resource {
	if !instance.IsEnabled() || len(members) == 0 {
		return nil
	}

	def := &instance.Definition

	operator := def.Operator
	if operator == "" {
		operator = alarm.OperatorOr
	}

	terms := make([]string, 0, len(members))
	for _, key := range members {
		terms = append(terms, "ALARM("+key+")")
	}

	nameTemplate := def.NameTemplate
	if nameTemplate == "" {
		nameTemplate = instance.Name
	}

	actionsEnabled := true
	if def.ActionsEnabled != nil {
		actionsEnabled = *def.ActionsEnabled
	}

	return &cfn.Resource{
		Type: cfn.TypeCompositeAlarm,
		Properties: &cfn.CompositeAlarmProperties{
			AlarmName: naming.AlarmName(nameTemplate, target.prefixTemplate(instance),
				target.vars(instance, def.Alarm)),
			AlarmDescription:        def.Description,
			AlarmRule:               strings.Join(terms, " "+operator+" "),
			ActionsEnabled:          &actionsEnabled,
			OKActions:               actions.For(ctx, def.Topics, alarm.SeverityOK),
			AlarmActions:            actions.For(ctx, def.Topics, alarm.SeverityAlarm),
			InsufficientDataActions: actions.For(ctx, def.Topics, alarm.SeverityInsufficientData),
		},
	}
}
