package naming

import "strings"

// DefaultPrefixTemplate is used when no prefix template is configured.
const DefaultPrefixTemplate = "$[stackName]"

// TemplateVars are the values available to name and prefix templates.
type TemplateVars struct {
	// StackName is the deployment stack name.
	StackName string
	// FunctionName is the deployed (physical) function name.
	FunctionName string
	// FunctionID is the logical ID of the function resource.
	FunctionID string
	// MetricName is the CloudWatch metric the alarm watches.
	MetricName string
	// MetricID is the logical alarm name.
	MetricID string
}

// Interpolate substitutes $[placeholder] tokens in tmpl.
func Interpolate(tmpl string, vars TemplateVars) string {
	return strings.NewReplacer(
		"$[stackName]", vars.StackName,
		"$[functionName]", vars.FunctionName,
		"$[functionId]", vars.FunctionID,
		"$[metricName]", vars.MetricName,
		"$[metricId]", vars.MetricID,
	).Replace(tmpl)
}

// AlarmName renders the human-readable alarm name "<prefix>-<name>".
// The prefix falls back to the stack name.
func AlarmName(nameTemplate, prefixTemplate string, vars TemplateVars) string {
	if prefixTemplate == "" {
		prefixTemplate = DefaultPrefixTemplate
	}

	prefix := Interpolate(prefixTemplate, vars)
	name := Interpolate(nameTemplate, vars)

	if prefix == "" {
		return name
	}

	return prefix + "-" + name
}
