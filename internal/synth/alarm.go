package synth

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/oshokin/alarm-compiler/internal/cfn"
	"github.com/oshokin/alarm-compiler/internal/domain/alarm"
	"github.com/oshokin/alarm-compiler/internal/merge"
	"github.com/oshokin/alarm-compiler/internal/naming"
	"github.com/oshokin/alarm-compiler/internal/topics"
)

const (
	anomalyMetricID      = "m1"
	anomalyBandID        = "ad1"
	defaultAnomalyWidth  = 2
	anomalyBandLabelTail = " (expected)"
)

// AlarmResource builds the AWS::CloudWatch::Alarm record of one instance.
// It returns nil for disabled instances and for function targets without a
// logical ID.
func AlarmResource(
	ctx context.Context,
	actions *topics.Actions,
	instance *alarm.Instance,
	target *Target,
) (*cfn.Resource, error) {
	if !instance.IsEnabled() || target.skip() {
		return nil, nil //nolint:nilnil // Nothing to emit is not an error.
	}

	def := &instance.Definition
	props := &cfn.AlarmProperties{
		AlarmDescription:        def.Description,
		ActionsEnabled:          def.ActionsEnabled,
		Threshold:               def.Threshold,
		EvaluationPeriods:       def.EvaluationPeriods,
		DatapointsToAlarm:       def.DatapointsToAlarm,
		ComparisonOperator:      def.ComparisonOperator,
		OKActions:               actions.For(ctx, def.Topics, alarm.SeverityOK),
		AlarmActions:            actions.For(ctx, def.Topics, alarm.SeverityAlarm),
		InsufficientDataActions: actions.For(ctx, def.Topics, alarm.SeverityInsufficientData),
		TreatMissingData:        def.MissingDataPolicy(),
	}

	metric := def.Metric

	switch {
	case len(def.Metrics) > 0:
		props.Metrics = merge.CloneList(def.Metrics)

	case def.Type == alarm.TypeAnomalyDetection:
		props.Metrics = anomalyMetrics(def, target.FunctionLogicalID)
		props.ThresholdMetricID = anomalyBandID
		props.Threshold = nil

	case def.Pattern != "":
		if target.Scope.Kind != alarm.ScopeFunction {
			return nil, fmt.Errorf("%w: %s in %s", ErrPatternScope, instance.Name, target.Scope)
		}

		metric = naming.PatternMetricName(def.Metric, target.FunctionLogicalID)
		props.Namespace = target.StackName
		props.MetricName = metric
		props.Period = def.Period
		props.Dimensions = []cfn.Dimension{}
		setStatistic(props, def.Statistic)

	default:
		props.Namespace = def.Namespace
		props.MetricName = metric
		props.Period = def.Period
		props.Dimensions = naming.Dimensions(def.Dimensions, target.FunctionLogicalID, def.OmitDefaultDimension)
		setStatistic(props, def.Statistic)
	}

	props.AlarmName = target.alarmName(instance, metric)

	return &cfn.Resource{Type: cfn.TypeAlarm, Properties: props}, nil
}

// setStatistic fills exactly one of Statistic and ExtendedStatistic.
func setStatistic(props *cfn.AlarmProperties, statistic string) {
	if statistic == "" {
		return
	}

	if isSimpleStatistic(statistic) {
		props.Statistic = statistic

		return
	}

	props.ExtendedStatistic = statistic
}

// isSimpleStatistic reports whether CloudWatch accepts statistic in
// Statistic; any other value goes to ExtendedStatistic.
func isSimpleStatistic(statistic string) bool {
	return slices.Contains(types.Statistic("").Values(), types.Statistic(statistic))
}

// anomalyMetrics wraps the base metric in an anomaly detection band whose
// width is the configured threshold.
func anomalyMetrics(def *alarm.Definition, functionRef string) []any {
	width := float64(defaultAnomalyWidth)
	if def.Threshold != nil {
		width = *def.Threshold
	}

	return []any{
		cfn.MetricDataQuery{
			ID: anomalyMetricID,
			MetricStat: &cfn.MetricStat{
				Metric: cfn.Metric{
					Namespace:  def.Namespace,
					MetricName: def.Metric,
					Dimensions: naming.Dimensions(def.Dimensions, functionRef, def.OmitDefaultDimension),
				},
				Period: def.Period,
				Stat:   def.Statistic,
			},
			ReturnData: true,
		},
		cfn.MetricDataQuery{
			ID: anomalyBandID,
			Expression: fmt.Sprintf("ANOMALY_DETECTION_BAND(%s, %s)",
				anomalyMetricID, strconv.FormatFloat(width, 'f', -1, 64)),
			Label:      def.Metric + anomalyBandLabelTail,
			ReturnData: true,
		},
	}
}
