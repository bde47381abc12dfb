package synth

import (
	"fmt"

	"github.com/oshokin/alarm-compiler/internal/cfn"
	"github.com/oshokin/alarm-compiler/internal/domain/alarm"
	"github.com/oshokin/alarm-compiler/internal/naming"
)

// Metric filter key suffixes.
const (
	AlertFilterSuffix = "ALERT"
	OKFilterSuffix    = "OK"
)

// LogMetricResources builds the ALERT/OK metric filter pair of a log-pattern
// instance. The ALERT filter counts matching events as 1, the OK filter
// counts every event as 0, so the metric always has datapoints.
func LogMetricResources(instance *alarm.Instance, target *Target) (cfn.Resources, error) {
	def := &instance.Definition
	if def.Pattern == "" || !instance.IsEnabled() || target.skip() {
		return cfn.Resources{}, nil
	}

	if target.Scope.Kind != alarm.ScopeFunction {
		return nil, fmt.Errorf("%w: %s in %s", ErrPatternScope, instance.Name, target.Scope)
	}

	metricName := naming.PatternMetricName(def.Metric, target.FunctionLogicalID)
	key := naming.LogMetricKey(target.FunctionLogicalID, instance.Name)

	filter := func(pattern string, value int) cfn.Resource {
		return cfn.Resource{
			Type:      cfn.TypeMetricFilter,
			DependsOn: target.LogGroupLogicalID,
			Properties: &cfn.MetricFilterProperties{
				FilterPattern: pattern,
				LogGroupName:  target.LogGroupName,
				MetricTransformations: []cfn.MetricTransformation{{
					MetricValue:     value,
					MetricNamespace: target.StackName,
					MetricName:      metricName,
				}},
			},
		}
	}

	return cfn.Resources{
		key + AlertFilterSuffix: filter(def.Pattern, 1),
		key + OKFilterSuffix:    filter("", 0),
	}, nil
}
