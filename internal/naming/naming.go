package naming

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/oshokin/alarm-compiler/internal/cfn"
)

const (
	// GlobalPrefix prefixes keys of alarms owned by the global pseudo-scope.
	GlobalPrefix = "Global"
	// CompositePrefix prefixes keys of composite alarms.
	CompositePrefix = "Composite"
	// FunctionDimension is the dimension name identifying a Lambda function.
	FunctionDimension = "FunctionName"

	topicPrefix      = "AwsAlerts"
	alarmSuffix      = "Alarm"
	logMetricSuffix  = "LogMetricFilter"
	lambdaSuffix     = "LambdaFunction"
	logGroupSuffix   = "LogGroup"
	logGroupBasePath = "/aws/lambda/"
)

// Normalize turns an arbitrary name into a capitalized, identifier-safe token.
// Dashes become "Dash" and underscores "Underscore", so "func-name" maps to
// "FuncDashname".
func Normalize(name string) string {
	replacer := strings.NewReplacer("-", "Dash", "_", "Underscore")

	return UpperFirst(replacer.Replace(name))
}

// UpperFirst upper-cases the first rune of s.
func UpperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}

	return string(unicode.ToUpper(r)) + s[size:]
}

// FunctionLogicalID returns the logical ID of a function resource.
func FunctionLogicalID(functionName string) string {
	return Normalize(functionName) + lambdaSuffix
}

// LogGroupLogicalID returns the logical ID of a function's log group.
func LogGroupLogicalID(functionName string) string {
	return Normalize(functionName) + logGroupSuffix
}

// LogGroupName returns the physical log group name of a deployed function.
func LogGroupName(deployedName string) string {
	return logGroupBasePath + deployedName
}

// ScopePrefix returns the key prefix for a function scope.
func ScopePrefix(functionName string) string {
	return Normalize(functionName)
}

// IsReservedScopePrefix reports whether prefix belongs to a pseudo-scope, so
// a function normalizing to it would share keys with global or composite
// alarms.
func IsReservedScopePrefix(prefix string) bool {
	return prefix == GlobalPrefix || prefix == CompositePrefix
}

// AlarmKey composes the resource key of an alarm from a scope prefix and the
// logical alarm name.
func AlarmKey(prefix, alarmName string) string {
	return prefix + Normalize(alarmName) + alarmSuffix
}

// LogMetricKey returns the base key of the metric filter pair of a log-pattern
// alarm; callers append "ALERT" or "OK".
func LogMetricKey(functionLogicalID, alarmName string) string {
	return functionLogicalID + Normalize(alarmName) + logMetricSuffix
}

// TopicKey returns the key of a created notification topic. Grouped topics
// embed the group so they never clash with top-level severities.
func TopicKey(group, severity string) string {
	return topicPrefix + UpperFirst(group) + UpperFirst(severity)
}

// PatternMetricName composes the synthetic metric name of a log-pattern alarm.
func PatternMetricName(metric, scopeToken string) string {
	return metric + scopeToken
}

// Dimensions returns the dimension list of a default-strategy alarm. User
// dimensions keep their order; any user entry named FunctionName is dropped and
// the computed one is appended last, unless omitDefault is set or there is no
// function to reference.
func Dimensions(user []cfn.Dimension, functionRef string, omitDefault bool) []cfn.Dimension {
	withDefault := !omitDefault && functionRef != ""

	dims := make([]cfn.Dimension, 0, len(user)+1)
	for _, dim := range user {
		if withDefault && dim.Name == FunctionDimension {
			continue
		}

		dims = append(dims, dim)
	}

	if withDefault {
		dims = append(dims, cfn.Dimension{
			Name:  FunctionDimension,
			Value: cfn.Ref(functionRef),
		})
	}

	return dims
}
