package synth

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-compiler/internal/cfn"
	"github.com/oshokin/alarm-compiler/internal/definition"
	"github.com/oshokin/alarm-compiler/internal/domain/alarm"
	"github.com/oshokin/alarm-compiler/internal/topics"
)

const stackName = "svc-dev"

func fooTarget() *Target {
	return &Target{
		Scope:             alarm.FunctionScope("foo"),
		StackName:         stackName,
		FunctionName:      "svc-dev-foo",
		FunctionLogicalID: "FooLambdaFunction",
		LogGroupName:      "/aws/lambda/svc-dev-foo",
		LogGroupLogicalID: "FooLogGroup",
	}
}

func instance(t *testing.T, name string, record map[string]any) *alarm.Instance {
	t.Helper()

	def, err := definition.Decode(name, record)
	require.NoError(t, err)

	return &alarm.Instance{Name: name, Base: name, Scope: alarm.FunctionScope("foo"), Definition: def}
}

func registered(t *testing.T, name string) *alarm.Instance {
	t.Helper()

	return instance(t, name, definition.Defaults()[name])
}

func noActions(t *testing.T) *topics.Actions {
	t.Helper()

	actions, _, err := topics.Compile(nil)
	require.NoError(t, err)

	return actions
}

func alarmProps(t *testing.T, res *cfn.Resource) *cfn.AlarmProperties {
	t.Helper()

	require.NotNil(t, res)
	require.Equal(t, cfn.TypeAlarm, res.Type)

	props, ok := res.Properties.(*cfn.AlarmProperties)
	require.True(t, ok)

	return props
}

// TestAlarmResourceDefaultStrategy covers a plain function metric alarm.
func TestAlarmResourceDefaultStrategy(t *testing.T) {
	t.Parallel()

	inst := registered(t, "functionInvocations")
	require.Equal(t, "FooFunctionInvocationsAlarm", AlarmKey(inst))

	res, err := AlarmResource(context.Background(), noActions(t), inst, fooTarget())
	require.NoError(t, err)

	threshold := 100.0
	require.Equal(t, &cfn.AlarmProperties{
		Namespace:               "AWS/Lambda",
		MetricName:              "Invocations",
		Threshold:               &threshold,
		Statistic:               "Sum",
		Period:                  60,
		EvaluationPeriods:       1,
		ComparisonOperator:      "GreaterThanThreshold",
		OKActions:               []any{},
		AlarmActions:            []any{},
		InsufficientDataActions: []any{},
		Dimensions: []cfn.Dimension{
			{Name: "FunctionName", Value: map[string]any{"Ref": "FooLambdaFunction"}},
		},
		TreatMissingData: "missing",
	}, alarmProps(t, res))
}

// TestAlarmResourceJSONKeys verifies the emitted property names.
func TestAlarmResourceJSONKeys(t *testing.T) {
	t.Parallel()

	res, err := AlarmResource(context.Background(), noActions(t), registered(t, "functionErrors"), fooTarget())
	require.NoError(t, err)

	contents, err := json.Marshal(res)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"Type": "AWS::CloudWatch::Alarm",
		"Properties": {
			"Namespace": "AWS/Lambda",
			"MetricName": "Errors",
			"Threshold": 10,
			"Statistic": "Maximum",
			"Period": 60,
			"EvaluationPeriods": 1,
			"ComparisonOperator": "GreaterThanThreshold",
			"OKActions": [],
			"AlarmActions": [],
			"InsufficientDataActions": [],
			"Dimensions": [{"Name": "FunctionName", "Value": {"Ref": "FooLambdaFunction"}}],
			"TreatMissingData": "missing"
		}
	}`, string(contents))
}

// TestAlarmResourceDimensions verifies the computed FunctionName dimension
// replaces a user one and comes last.
func TestAlarmResourceDimensions(t *testing.T) {
	t.Parallel()

	record := definition.Defaults()["functionErrors"]
	record["dimensions"] = []any{
		map[string]any{"Name": "FunctionName", "Value": "ignored"},
		map[string]any{"Name": "Cow", "Value": "MOO"},
	}

	res, err := AlarmResource(context.Background(), noActions(t), instance(t, "functionErrors", record), fooTarget())
	require.NoError(t, err)
	require.Equal(t, []cfn.Dimension{
		{Name: "Cow", Value: "MOO"},
		{Name: "FunctionName", Value: map[string]any{"Ref": "FooLambdaFunction"}},
	}, alarmProps(t, res).Dimensions)

	record["omitDefaultDimension"] = true

	res, err = AlarmResource(context.Background(), noActions(t), instance(t, "functionErrors", record), fooTarget())
	require.NoError(t, err)
	require.Equal(t, []cfn.Dimension{
		{Name: "FunctionName", Value: "ignored"},
		{Name: "Cow", Value: "MOO"},
	}, alarmProps(t, res).Dimensions)
}

// TestAlarmResourceStatistic verifies exactly one statistic field is set.
func TestAlarmResourceStatistic(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		statistic string
		simple    bool
	}{
		{"SampleCount", true},
		{"Average", true},
		{"Sum", true},
		{"Minimum", true},
		{"Maximum", true},
		{"p99", false},
		{"tm90", false},
	} {
		record := definition.Defaults()["functionDuration"]
		record["statistic"] = tc.statistic

		res, err := AlarmResource(context.Background(), noActions(t), instance(t, "functionDuration", record), fooTarget())
		require.NoError(t, err)

		props := alarmProps(t, res)
		if tc.simple {
			require.Equal(t, tc.statistic, props.Statistic)
			require.Empty(t, props.ExtendedStatistic)
		} else {
			require.Empty(t, props.Statistic)
			require.Equal(t, tc.statistic, props.ExtendedStatistic)
		}
	}

	for _, statistic := range types.Statistic("").Values() {
		require.True(t, isSimpleStatistic(string(statistic)), statistic)
	}

	require.False(t, isSimpleStatistic("p99.9"))
}

// TestAlarmResourcePattern covers the log-pattern strategy.
func TestAlarmResourcePattern(t *testing.T) {
	t.Parallel()

	inst := instance(t, "bunyanErrors", map[string]any{
		"metric":             "BunyanErrors",
		"pattern":            "{$.level > 40}",
		"threshold":          0,
		"statistic":          "Sum",
		"period":             60,
		"evaluationPeriods":  1,
		"comparisonOperator": "GreaterThanThreshold",
	})

	res, err := AlarmResource(context.Background(), noActions(t), inst, fooTarget())
	require.NoError(t, err)

	props := alarmProps(t, res)
	require.Equal(t, stackName, props.Namespace)
	require.Equal(t, "BunyanErrorsFooLambdaFunction", props.MetricName)
	require.NotNil(t, props.Dimensions)
	require.Empty(t, props.Dimensions)

	contents, err := json.Marshal(props)
	require.NoError(t, err)
	require.Contains(t, string(contents), `"Dimensions":[]`)

	global := fooTarget()
	global.Scope = alarm.GlobalScope()

	_, err = AlarmResource(context.Background(), noActions(t), inst, global)
	require.ErrorIs(t, err, ErrPatternScope)
}

// TestLogMetricResources covers the ALERT/OK filter pair.
func TestLogMetricResources(t *testing.T) {
	t.Parallel()

	inst := instance(t, "bunyanErrors", map[string]any{
		"metric":  "BunyanErrors",
		"pattern": "{$.level > 40}",
	})

	resources, err := LogMetricResources(inst, fooTarget())
	require.NoError(t, err)
	require.Equal(t, []string{
		"FooLambdaFunctionBunyanErrorsLogMetricFilterALERT",
		"FooLambdaFunctionBunyanErrorsLogMetricFilterOK",
	}, resources.Keys())

	alert := resources["FooLambdaFunctionBunyanErrorsLogMetricFilterALERT"]
	require.Equal(t, cfn.TypeMetricFilter, alert.Type)
	require.Equal(t, "FooLogGroup", alert.DependsOn)
	require.Equal(t, &cfn.MetricFilterProperties{
		FilterPattern: "{$.level > 40}",
		LogGroupName:  "/aws/lambda/svc-dev-foo",
		MetricTransformations: []cfn.MetricTransformation{{
			MetricValue:     1,
			MetricNamespace: stackName,
			MetricName:      "BunyanErrorsFooLambdaFunction",
		}},
	}, alert.Properties)

	ok := resources["FooLambdaFunctionBunyanErrorsLogMetricFilterOK"]
	okProps := ok.Properties.(*cfn.MetricFilterProperties)
	require.Empty(t, okProps.FilterPattern)
	require.Equal(t, 0, okProps.MetricTransformations[0].MetricValue)
	require.Equal(t, "BunyanErrorsFooLambdaFunction", okProps.MetricTransformations[0].MetricName)

	resources, err = LogMetricResources(registered(t, "functionErrors"), fooTarget())
	require.NoError(t, err)
	require.Empty(t, resources)
}

// TestAlarmResourceMetricsExpression covers explicit metric expressions.
func TestAlarmResourceMetricsExpression(t *testing.T) {
	t.Parallel()

	metrics := []any{
		map[string]any{"Id": "e1", "Expression": "m1 / m2", "ReturnData": true},
	}

	inst := instance(t, "ratio", map[string]any{
		"namespace":          "AWS/Lambda",
		"metric":             "Errors",
		"statistic":          "Sum",
		"threshold":          1,
		"evaluationPeriods":  2,
		"comparisonOperator": "GreaterThanThreshold",
		"metrics":            metrics,
	})

	res, err := AlarmResource(context.Background(), noActions(t), inst, fooTarget())
	require.NoError(t, err)

	props := alarmProps(t, res)
	require.Equal(t, metrics, props.Metrics)
	require.Empty(t, props.Namespace)
	require.Empty(t, props.MetricName)
	require.Empty(t, props.Statistic)
	require.Nil(t, props.Dimensions)
	require.Equal(t, 2, props.EvaluationPeriods)
}

// TestAlarmResourceAnomaly covers the anomaly detection band.
func TestAlarmResourceAnomaly(t *testing.T) {
	t.Parallel()

	res, err := AlarmResource(context.Background(), noActions(t), registered(t, "functionDurationAnomaly"), fooTarget())
	require.NoError(t, err)

	props := alarmProps(t, res)
	require.Nil(t, props.Threshold)
	require.Equal(t, "ad1", props.ThresholdMetricID)
	require.Equal(t, "GreaterThanUpperThreshold", props.ComparisonOperator)
	require.Len(t, props.Metrics, 2)

	band, ok := props.Metrics[1].(cfn.MetricDataQuery)
	require.True(t, ok)
	require.Equal(t, "ANOMALY_DETECTION_BAND(m1, 2)", band.Expression)

	base, ok := props.Metrics[0].(cfn.MetricDataQuery)
	require.True(t, ok)
	require.Equal(t, "Duration", base.MetricStat.Metric.MetricName)
	require.Equal(t, "Average", base.MetricStat.Stat)
	require.Equal(t, 300, base.MetricStat.Period)
}

// TestAlarmResourceSkips covers disabled instances and missing scope refs.
func TestAlarmResourceSkips(t *testing.T) {
	t.Parallel()

	target := fooTarget()
	target.FunctionLogicalID = ""

	res, err := AlarmResource(context.Background(), noActions(t), registered(t, "functionErrors"), target)
	require.NoError(t, err)
	require.Nil(t, res)

	record := definition.Defaults()["functionErrors"]
	record["enabled"] = false

	res, err = AlarmResource(context.Background(), noActions(t), instance(t, "functionErrors", record), fooTarget())
	require.NoError(t, err)
	require.Nil(t, res)
}

// TestAlarmResourceNameAndActions covers AlarmName templates and topic wiring.
func TestAlarmResourceNameAndActions(t *testing.T) {
	t.Parallel()

	actions, _, err := topics.Compile(map[string]any{
		"alarm":    "arn:aws:sns:eu-west-1:123456789012:default",
		"critical": map[string]any{"alarm": "arn:aws:sns:eu-west-1:123456789012:critical"},
	})
	require.NoError(t, err)

	record := definition.Defaults()["functionErrors"]
	record["nameTemplate"] = "$[functionName]-$[metricName]"
	record["topics"] = []any{"critical"}

	target := fooTarget()

	res, err := AlarmResource(context.Background(), actions, instance(t, "functionErrors", record), target)
	require.NoError(t, err)

	props := alarmProps(t, res)
	require.Equal(t, "svc-dev-svc-dev-foo-Errors", props.AlarmName)
	require.Equal(t, []any{"arn:aws:sns:eu-west-1:123456789012:critical"}, props.AlarmActions)
	require.Empty(t, props.OKActions)

	target.NameTemplate = "$[metricId]"
	target.PrefixTemplate = "team"

	res, err = AlarmResource(context.Background(), actions, registered(t, "functionErrors"), target)
	require.NoError(t, err)

	props = alarmProps(t, res)
	require.Equal(t, "team-FunctionErrors", props.AlarmName)
	require.Equal(t, []any{"arn:aws:sns:eu-west-1:123456789012:default"}, props.AlarmActions)
}

// TestComposite covers member gathering, rule building and skipping.
func TestComposite(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	index := NewAlarmIndex()
	index.Record("successRateDrop", "successRateDrop", "FooSuccessRateDropAlarm")
	index.Record("successRateDrop", "successRateDrop", "Foo1SuccessRateDropAlarm")
	index.Record("apiGatewayErrorsGetUsers", "apiGatewayErrors", "FooApiGatewayErrorsGetUsersAlarm")

	composite := instance(t, "successRate", map[string]any{"type": "composite", "alarm": "successRateDrop"})
	composite.Scope = alarm.CompositeScope()

	members := CompositeMembers(ctx, composite, index)
	require.Equal(t, []string{"FooSuccessRateDropAlarm", "Foo1SuccessRateDropAlarm"}, members)

	target := &Target{Scope: alarm.CompositeScope(), StackName: stackName}

	res := CompositeResource(ctx, noActions(t), composite, members, target)
	require.NotNil(t, res)
	require.Equal(t, cfn.TypeCompositeAlarm, res.Type)

	props := res.Properties.(*cfn.CompositeAlarmProperties)
	require.Equal(t, "ALARM(FooSuccessRateDropAlarm) OR ALARM(Foo1SuccessRateDropAlarm)", props.AlarmRule)
	require.Equal(t, "svc-dev-successRate", props.AlarmName)
	require.True(t, *props.ActionsEnabled)

	explicit := instance(t, "pair", map[string]any{
		"type":     "composite",
		"operator": "AND",
		"alarms":   []any{"FooApiGatewayErrorsGetUsersAlarm", "MissingAlarm", "FooSuccessRateDropAlarm"},
	})

	members = CompositeMembers(ctx, explicit, index)
	require.Equal(t, []string{"FooApiGatewayErrorsGetUsersAlarm", "FooSuccessRateDropAlarm"}, members)

	res = CompositeResource(ctx, noActions(t), explicit, members, target)
	require.Equal(t,
		"ALARM(FooApiGatewayErrorsGetUsersAlarm) AND ALARM(FooSuccessRateDropAlarm)",
		res.Properties.(*cfn.CompositeAlarmProperties).AlarmRule)

	require.Equal(t, []string{"FooApiGatewayErrorsGetUsersAlarm"}, index.Keys("apiGatewayErrors"))
	require.Nil(t, CompositeResource(ctx, noActions(t), composite, nil, target))

	disabled := instance(t, "off", map[string]any{"type": "composite", "alarm": "successRateDrop", "enabled": false})
	require.Nil(t, CompositeResource(ctx, noActions(t), disabled, []string{"FooSuccessRateDropAlarm"}, target))
}
