package compiler

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-compiler/internal/cfn"
	"github.com/oshokin/alarm-compiler/internal/config"
	"github.com/oshokin/alarm-compiler/internal/definition"
	"github.com/oshokin/alarm-compiler/internal/domain/alarm"
	"github.com/oshokin/alarm-compiler/internal/naming"
	"github.com/oshokin/alarm-compiler/internal/resolver"
)

var errUnknownFunction = errors.New("unknown function")

// fakeHost is an in-memory Host.
type fakeHost struct {
	service   string
	stage     string
	functions []*alarm.FunctionDescriptor
}

func (h *fakeHost) ListFunctions() []string {
	names := make([]string, 0, len(h.functions))
	for _, fn := range h.functions {
		names = append(names, fn.Name)
	}

	return names
}

func (h *fakeHost) DescribeFunction(name string) (*alarm.FunctionDescriptor, error) {
	for _, fn := range h.functions {
		if fn.Name == name {
			return fn, nil
		}
	}

	return nil, errUnknownFunction
}

func (h *fakeHost) LogicalIDFor(name string) string {
	return naming.FunctionLogicalID(name)
}

func (h *fakeHost) LogStorageNameFor(name string) string {
	return naming.LogGroupName(h.StackName() + "-" + name)
}

func (h *fakeHost) LogStorageLogicalIDFor(name string) string {
	return naming.LogGroupLogicalID(name)
}

func (h *fakeHost) StackName() string {
	return h.service + "-" + h.stage
}

func (h *fakeHost) CurrentStage() string {
	return h.stage
}

func newHost(functions ...*alarm.FunctionDescriptor) *fakeHost {
	return &fakeHost{service: "svc", stage: "dev", functions: functions}
}

func function(name string, refs ...alarm.Ref) *alarm.FunctionDescriptor {
	return &alarm.FunctionDescriptor{Name: name, DeployedName: "svc-dev-" + name, Alarms: refs}
}

func parse(t *testing.T, document string) *config.Alerts {
	t.Helper()

	cfg, err := config.Parse([]byte(document), config.FormatYAML)
	require.NoError(t, err)

	return cfg
}

// TestCompileSingleAlarm compiles one default alarm for one function.
func TestCompileSingleAlarm(t *testing.T) {
	t.Parallel()

	cfg := parse(t, `
function:
  - functionInvocations
`)

	resources, err := New(newHost(function("foo")), cfg).Compile(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"FooFunctionInvocationsAlarm"}, resources.Keys())

	props := resources["FooFunctionInvocationsAlarm"].Properties.(*cfn.AlarmProperties)
	require.Equal(t, "AWS/Lambda", props.Namespace)
	require.Equal(t, "Invocations", props.MetricName)
	require.Equal(t, "Sum", props.Statistic)
	require.Equal(t, []cfn.Dimension{
		{Name: "FunctionName", Value: map[string]any{"Ref": "FooLambdaFunction"}},
	}, props.Dimensions)
}

// TestCompileBuiltInPatternAlarm compiles the shipped bunyanErrors definition
// from a bare reference.
func TestCompileBuiltInPatternAlarm(t *testing.T) {
	t.Parallel()

	cfg := parse(t, `
function:
  - bunyanErrors
`)

	resources, err := New(newHost(function("foo")), cfg).Compile(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{
		"FooBunyanErrorsAlarm",
		"FooLambdaFunctionBunyanErrorsLogMetricFilterALERT",
		"FooLambdaFunctionBunyanErrorsLogMetricFilterOK",
	}, resources.Keys())

	props := resources["FooBunyanErrorsAlarm"].Properties.(*cfn.AlarmProperties)
	require.Equal(t, "svc-dev", props.Namespace)
	require.Equal(t, "BunyanErrorsFooLambdaFunction", props.MetricName)
	require.Equal(t, "Sum", props.Statistic)

	alert := resources["FooLambdaFunctionBunyanErrorsLogMetricFilterALERT"].Properties.(*cfn.MetricFilterProperties)
	require.Equal(t, "{$.level > 40}", alert.FilterPattern)
	require.Equal(t, 1, alert.MetricTransformations[0].MetricValue)

	ok := resources["FooLambdaFunctionBunyanErrorsLogMetricFilterOK"].Properties.(*cfn.MetricFilterProperties)
	require.Empty(t, ok.FilterPattern)
	require.Equal(t, 0, ok.MetricTransformations[0].MetricValue)
}

// TestCompilePatternAlarm compiles a log-pattern alarm with its filters.
func TestCompilePatternAlarm(t *testing.T) {
	t.Parallel()

	cfg := parse(t, `
definitions:
  bunyanErrors:
    metric: BunyanErrors
    threshold: 0
    statistic: Sum
    period: 60
    evaluationPeriods: 1
    comparisonOperator: GreaterThanThreshold
    pattern: '{$.level > 40}'
`)

	host := newHost(function("foo", alarm.NamedRef("bunyanErrors")))

	resources, err := New(host, cfg).Compile(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{
		"FooBunyanErrorsAlarm",
		"FooLambdaFunctionBunyanErrorsLogMetricFilterALERT",
		"FooLambdaFunctionBunyanErrorsLogMetricFilterOK",
	}, resources.Keys())

	props := resources["FooBunyanErrorsAlarm"].Properties.(*cfn.AlarmProperties)
	require.Equal(t, "svc-dev", props.Namespace)
	require.Equal(t, "BunyanErrorsFooLambdaFunction", props.MetricName)
	require.Empty(t, props.Dimensions)

	counts := resources.CountByType()
	require.Equal(t, 1, counts[cfn.TypeAlarm])
	require.Equal(t, 2, counts[cfn.TypeMetricFilter])
}

// TestCompileTopics verifies topics are created or passed through.
func TestCompileTopics(t *testing.T) {
	t.Parallel()

	cfg := parse(t, `
topics:
  ok: ok-topic
  alarm: arn:aws:sns:eu-west-1:123456789012:alarm
function:
  - functionErrors
`)

	resources, err := New(newHost(function("foo")), cfg).Compile(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"AwsAlertsOk", "FooFunctionErrorsAlarm"}, resources.Keys())

	props := resources["FooFunctionErrorsAlarm"].Properties.(*cfn.AlarmProperties)
	require.Equal(t, []any{map[string]any{"Ref": "AwsAlertsOk"}}, props.OKActions)
	require.Equal(t, []any{"arn:aws:sns:eu-west-1:123456789012:alarm"}, props.AlarmActions)
	require.Empty(t, props.InsufficientDataActions)
}

// TestCompileCompositeOrder verifies composite members follow function order.
func TestCompileCompositeOrder(t *testing.T) {
	t.Parallel()

	cfg := parse(t, `
definitions:
  successRateDrop:
    namespace: Custom
    metric: SuccessRate
    threshold: 95
    statistic: Average
    period: 60
    evaluationPeriods: 1
    comparisonOperator: LessThanThreshold
  successRate:
    type: composite
    alarm: successRateDrop
composite:
  - successRate
`)

	host := newHost(
		function("foo", alarm.NamedRef("successRateDrop")),
		function("foo1", alarm.NamedRef("successRateDrop")),
	)

	resources, err := New(host, cfg).Compile(context.Background())
	require.NoError(t, err)

	composite, ok := resources["CompositeSuccessRateAlarm"]
	require.True(t, ok)
	require.Equal(t, cfn.TypeCompositeAlarm, composite.Type)
	require.Equal(t,
		"ALARM(FooSuccessRateDropAlarm) OR ALARM(Foo1SuccessRateDropAlarm)",
		composite.Properties.(*cfn.CompositeAlarmProperties).AlarmRule)

	host.functions[0], host.functions[1] = host.functions[1], host.functions[0]

	resources, err = New(host, cfg).Compile(context.Background())
	require.NoError(t, err)
	require.Equal(t,
		"ALARM(Foo1SuccessRateDropAlarm) OR ALARM(FooSuccessRateDropAlarm)",
		resources["CompositeSuccessRateAlarm"].Properties.(*cfn.CompositeAlarmProperties).AlarmRule)
}

// TestCompileDisabledAlarm verifies a disabled alarm yields no resource and
// is left out of composites.
func TestCompileDisabledAlarm(t *testing.T) {
	t.Parallel()

	cfg := parse(t, `
definitions:
  errorsAnywhere:
    type: composite
    alarm: functionErrors
global:
  - functionErrors
  - functionThrottles
function:
  - functionInvocations
composite:
  - errorsAnywhere
`)

	foo := function("foo", alarm.Ref{
		Name:   "functionErrors",
		Inline: map[string]any{"name": "functionErrors", "enabled": false},
	})
	bar := function("bar")

	resources, err := New(newHost(foo, bar), cfg).Compile(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{
		"BarFunctionErrorsAlarm",
		"BarFunctionInvocationsAlarm",
		"BarFunctionThrottlesAlarm",
		"CompositeErrorsAnywhereAlarm",
		"FooFunctionInvocationsAlarm",
		"FooFunctionThrottlesAlarm",
	}, resources.Keys())
	require.Equal(t,
		"ALARM(BarFunctionErrorsAlarm)",
		resources["CompositeErrorsAnywhereAlarm"].Properties.(*cfn.CompositeAlarmProperties).AlarmRule)
}

// TestCompileStackAlarms verifies stack alarms carry the Global prefix and no
// function dimension.
func TestCompileStackAlarms(t *testing.T) {
	t.Parallel()

	cfg := parse(t, `
stack:
  - name: queueDepth
    namespace: AWS/SQS
    metric: ApproximateNumberOfMessagesVisible
    threshold: 100
    statistic: Maximum
    period: 60
    evaluationPeriods: 1
    comparisonOperator: GreaterThanThreshold
    dimensions:
      - Name: QueueName
        Value: jobs
`)

	resources, err := New(newHost(), cfg).Compile(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"GlobalQueueDepthAlarm"}, resources.Keys())
	require.Equal(t,
		[]cfn.Dimension{{Name: "QueueName", Value: "jobs"}},
		resources["GlobalQueueDepthAlarm"].Properties.(*cfn.AlarmProperties).Dimensions)
}

// TestCompileGenerators expands per-route alarms for HTTP functions.
func TestCompileGenerators(t *testing.T) {
	t.Parallel()

	cfg := parse(t, `
definitions:
  apiGatewayLatency:
    threshold: 1000
`)

	api := function("api", alarm.NamedRef("apiGatewayLatency"))
	api.HTTPEvents = []alarm.HTTPEvent{{Method: "get", Path: "items"}, {Method: "delete", Path: "items/{id}"}}

	resources, err := New(newHost(api), cfg).Compile(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{
		"ApiApiGatewayLatencyDeleteItemsIdAlarm",
		"ApiApiGatewayLatencyGetItemsAlarm",
	}, resources.Keys())

	props := resources["ApiApiGatewayLatencyGetItemsAlarm"].Properties.(*cfn.AlarmProperties)
	require.Equal(t, "p99", props.ExtendedStatistic)
	require.Empty(t, props.Statistic)
	require.InDelta(t, 1000, *props.Threshold, 0)

	plain := function("worker", alarm.NamedRef("apiGatewayLatency"))

	_, err = New(newHost(plain), cfg).Compile(context.Background())
	require.ErrorIs(t, err, definition.ErrStructuralPrecondition)
}

// TestCompileSkips covers the no-config and stage allow-list no-ops.
func TestCompileSkips(t *testing.T) {
	t.Parallel()

	resources, err := New(newHost(function("foo")), nil).Compile(context.Background())
	require.NoError(t, err)
	require.Empty(t, resources)

	cfg := parse(t, `
stages: [prod]
function: [functionErrors]
`)

	resources, err = New(newHost(function("foo")), cfg).Compile(context.Background())
	require.NoError(t, err)
	require.Empty(t, resources)

	_, err = New(nil, cfg).Compile(context.Background())
	require.ErrorIs(t, err, resolver.ErrConfiguration)
}

// TestCompileAbortsOnError verifies a fatal error returns no partial output.
func TestCompileAbortsOnError(t *testing.T) {
	t.Parallel()

	cfg := parse(t, `
topics:
  ok: ok-topic
function: [functionErrors]
`)

	host := newHost(function("foo"), function("bar", alarm.NamedRef("doesNotExist")))

	resources, err := New(host, cfg).Compile(context.Background())
	require.ErrorIs(t, err, resolver.ErrDefinitionNotFound)
	require.Nil(t, resources)
}

// TestCompileCollision verifies colliding keys are reported instead of
// overwritten.
func TestCompileCollision(t *testing.T) {
	t.Parallel()

	cfg := parse(t, `
function:
  - name: custom_metric
    metric: A
  - name: custom-metric
    metric: B
`)

	resources, err := New(newHost(function("foo")), cfg).Compile(context.Background())
	require.NoError(t, err)
	require.Len(t, resources, 2)

	cfg = parse(t, `
function:
  - name: fooBar
    metric: A
`)

	// "foo-bar" and "fooDashbar" normalize to the same scope prefix.
	_, err = New(newHost(function("foo-bar"), function("fooDashbar")), cfg).Compile(context.Background())
	require.ErrorIs(t, err, cfn.ErrDuplicateResource)
}

// TestCompileReservedFunctionName rejects functions that would share the
// global pseudo-scope prefix with stack alarms.
func TestCompileReservedFunctionName(t *testing.T) {
	t.Parallel()

	cfg := parse(t, `
function:
  - functionInvocations
stack:
  - functionInvocations
`)

	for _, name := range []string{"global", "composite"} {
		resources, err := New(newHost(function(name)), cfg).Compile(context.Background())
		require.ErrorIs(t, err, ErrReservedFunctionName, name)
		require.Nil(t, resources)
	}

	resources, err := New(newHost(function("globalSearch")), cfg).Compile(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{
		"GlobalFunctionInvocationsAlarm",
		"GlobalSearchFunctionInvocationsAlarm",
	}, resources.Keys())
}

// TestCompileIdempotent verifies two runs produce byte-identical output.
func TestCompileIdempotent(t *testing.T) {
	t.Parallel()

	cfg := parse(t, `
topics:
  ok: ok-topic
  critical:
    alarm: critical-topic
global: [functionErrors, functionThrottles]
function:
  - functionInvocations
  - name: functionDuration
    threshold: 1000
    topics: [critical]
`)

	host := newHost(function("foo"), function("bar"), function("baz"))

	first, err := New(host, cfg).Compile(context.Background())
	require.NoError(t, err)

	second, err := New(host, cfg).Compile(context.Background())
	require.NoError(t, err)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)

	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	require.Equal(t, firstJSON, secondJSON)
}
