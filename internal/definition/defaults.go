package definition

const (
	lambdaNamespace     = "AWS/Lambda"
	apiGatewayNamespace = "AWS/ApiGateway"

	greaterThanThreshold = "GreaterThanThreshold"
)

// Defaults returns the built-in static definitions. A fresh copy is returned
// on every call.
func Defaults() map[string]map[string]any {
	return map[string]map[string]any{
		"functionInvocations": {
			"namespace":          lambdaNamespace,
			"metric":             "Invocations",
			"threshold":          100,
			"statistic":          "Sum",
			"period":             60,
			"evaluationPeriods":  1,
			"comparisonOperator": greaterThanThreshold,
		},
		"functionErrors": {
			"namespace":          lambdaNamespace,
			"metric":             "Errors",
			"threshold":          10,
			"statistic":          "Maximum",
			"period":             60,
			"evaluationPeriods":  1,
			"comparisonOperator": greaterThanThreshold,
		},
		"functionDuration": {
			"namespace":          lambdaNamespace,
			"metric":             "Duration",
			"threshold":          500,
			"statistic":          "Maximum",
			"period":             60,
			"evaluationPeriods":  1,
			"comparisonOperator": greaterThanThreshold,
		},
		"functionThrottles": {
			"namespace":          lambdaNamespace,
			"metric":             "Throttles",
			"threshold":          50,
			"statistic":          "Sum",
			"period":             60,
			"evaluationPeriods":  1,
			"comparisonOperator": greaterThanThreshold,
		},
		"bunyanWarnings": {
			"namespace":          lambdaNamespace,
			"metric":             "BunyanWarnings",
			"threshold":          0,
			"statistic":          "Sum",
			"period":             60,
			"evaluationPeriods":  1,
			"comparisonOperator": greaterThanThreshold,
			"pattern":            "{$.level = 40}",
		},
		"bunyanErrors": {
			"namespace":          lambdaNamespace,
			"metric":             "BunyanErrors",
			"threshold":          0,
			"statistic":          "Sum",
			"period":             60,
			"evaluationPeriods":  1,
			"comparisonOperator": greaterThanThreshold,
			"pattern":            "{$.level > 40}",
		},
		"functionDurationAnomaly": {
			"type":               "anomalyDetection",
			"namespace":          lambdaNamespace,
			"metric":             "Duration",
			"threshold":          2,
			"statistic":          "Average",
			"period":             300,
			"evaluationPeriods":  2,
			"comparisonOperator": "GreaterThanUpperThreshold",
		},
	}
}
