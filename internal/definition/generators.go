package definition

import (
	"strings"
	"unicode"

	"github.com/oshokin/alarm-compiler/internal/cfn"
	"github.com/oshokin/alarm-compiler/internal/merge"
	"github.com/oshokin/alarm-compiler/internal/naming"
)

const (
	defaultErrorRatePeriod = 300
	attributeHTTPEvents    = "http events"
	attributeStreamEvents  = "stream events"
)

// Generators returns the built-in generator definitions.
func Generators() map[string]Generator {
	return map[string]Generator{
		"apiGatewayErrors": {
			Kind:  KindMultiGenerator,
			Multi: apiGatewayGenerator("apiGatewayErrors", apiGatewayErrorsRecord),
		},
		"apiGatewayLatency": {
			Kind:  KindMultiGenerator,
			Multi: apiGatewayGenerator("apiGatewayLatency", apiGatewayLatencyRecord),
		},
		"streamIteratorAge": {
			Kind:   KindGenerator,
			Single: streamIteratorAgeGenerator,
		},
		"functionErrorRate": {
			Kind:   KindGenerator,
			Single: functionErrorRateGenerator,
		},
	}
}

// apiGatewayGenerator expands one record per HTTP event of the function.
func apiGatewayGenerator(name string, base func() map[string]any) func(map[string]any) MultiFunc {
	return func(override map[string]any) MultiFunc {
		return func(functionID string, ctx Context) ([]Variant, error) {
			events := ctx.Function.HTTPEvents
			if len(events) == 0 {
				return nil, &StructuralPreconditionError{
					Alarm:     name,
					Function:  functionID,
					Attribute: attributeHTTPEvents,
				}
			}

			variants := make([]Variant, 0, len(events))
			for _, event := range events {
				method := strings.ToUpper(event.Method)
				path := "/" + strings.TrimPrefix(event.Path, "/")

				record := base()
				record["dimensions"] = []any{
					dimension("ApiName", ctx.StackName),
					dimension("Resource", path),
					dimension("Method", method),
					dimension("Stage", ctx.Stage),
				}

				variants = append(variants, Variant{
					Suffix: RouteSuffix(method, path),
					Record: merge.Deep(record, override),
				})
			}

			return variants, nil
		}
	}
}

func apiGatewayErrorsRecord() map[string]any {
	return map[string]any{
		"namespace":            apiGatewayNamespace,
		"metric":               "5XXError",
		"threshold":            0,
		"statistic":            "Sum",
		"period":               60,
		"evaluationPeriods":    1,
		"comparisonOperator":   greaterThanThreshold,
		"treatMissingData":     "notBreaching",
		"omitDefaultDimension": true,
	}
}

func apiGatewayLatencyRecord() map[string]any {
	return map[string]any{
		"namespace":            apiGatewayNamespace,
		"metric":               "Latency",
		"threshold":            3000,
		"statistic":            "p99",
		"period":               300,
		"evaluationPeriods":    1,
		"comparisonOperator":   greaterThanThreshold,
		"treatMissingData":     "notBreaching",
		"omitDefaultDimension": true,
	}
}

func streamIteratorAgeGenerator(override map[string]any) SingleFunc {
	return func(functionID string, ctx Context) (map[string]any, error) {
		if len(ctx.Function.StreamEvents) == 0 {
			return nil, &StructuralPreconditionError{
				Alarm:     "streamIteratorAge",
				Function:  functionID,
				Attribute: attributeStreamEvents,
			}
		}

		record := map[string]any{
			"namespace":          lambdaNamespace,
			"metric":             "IteratorAge",
			"threshold":          30000,
			"statistic":          "Maximum",
			"period":             60,
			"evaluationPeriods":  1,
			"comparisonOperator": greaterThanThreshold,
		}

		return merge.Deep(record, override), nil
	}
}

// functionErrorRateGenerator builds an errors / invocations expression alarm.
// The expression period follows the reference's period, then the registry
// override's.
func functionErrorRateGenerator(override map[string]any) SingleFunc {
	basePeriod := periodOf(override, defaultErrorRatePeriod)

	return func(_ string, ctx Context) (map[string]any, error) {
		period := periodOf(ctx.Overrides, basePeriod)

		stat := func(id, metric string) map[string]any {
			return map[string]any{
				"Id":         id,
				"ReturnData": false,
				"MetricStat": map[string]any{
					"Metric": map[string]any{
						"Namespace":  lambdaNamespace,
						"MetricName": metric,
						"Dimensions": []any{
							map[string]any{
								"Name":  naming.FunctionDimension,
								"Value": cfn.Ref(ctx.FunctionLogicalID),
							},
						},
					},
					"Period": period,
					"Stat":   "Sum",
				},
			}
		}

		record := map[string]any{
			"threshold":          5,
			"evaluationPeriods":  1,
			"comparisonOperator": greaterThanThreshold,
			"treatMissingData":   "notBreaching",
			"metrics": []any{
				stat("errors", "Errors"),
				stat("invocations", "Invocations"),
				map[string]any{
					"Id":         "errorRate",
					"Expression": "100 * errors / MAX([errors, invocations])",
					"Label":      "Error rate (%)",
					"ReturnData": true,
				},
			},
		}

		return merge.Deep(record, override), nil
	}
}

// periodOf returns the positive period set in values, or fallback.
func periodOf(values map[string]any, fallback int) int {
	switch p := values["period"].(type) {
	case int:
		if p > 0 {
			return p
		}
	case int64:
		if p > 0 {
			return int(p)
		}
	case float64:
		if p > 0 {
			return int(p)
		}
	}

	return fallback
}

func dimension(name string, value any) map[string]any {
	return map[string]any{"Name": name, "Value": value}
}

// RouteSuffix turns an HTTP method and path into a name suffix:
// GET /users/{id} becomes "GetUsersId".
func RouteSuffix(method, path string) string {
	var builder strings.Builder

	builder.WriteString(naming.UpperFirst(strings.ToLower(method)))

	words := strings.FieldsFunc(path, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, word := range words {
		builder.WriteString(naming.UpperFirst(word))
	}

	return builder.String()
}
