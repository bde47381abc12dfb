package alarm

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/alarm-compiler/internal/cfn"
)

// Type tags the shape of a definition.
type Type string

// Definition types.
const (
	TypeStatic           Type = "static"
	TypeAnomalyDetection Type = "anomalyDetection"
	TypeComposite        Type = "composite"
	TypeGenerator        Type = "generator"
)

// Composite rule operators.
const (
	OperatorOr  = "OR"
	OperatorAnd = "AND"
)

// DefaultTreatMissingData is applied when a definition sets no policy.
const DefaultTreatMissingData = "missing"

// Definition is a named, reusable monitoring rule after defaults and
// overrides have been merged.
type Definition struct {
	// Type selects static, anomaly detection or composite handling.
	Type Type `yaml:"type" validate:"omitempty,oneof=static anomalyDetection composite generator"`
	// Enabled is nil when unset; only an explicit false disables the alarm.
	Enabled *bool `yaml:"enabled"`
	// Description becomes AlarmDescription.
	Description string `yaml:"description"`
	// NameTemplate renders AlarmName; no display name is emitted without it.
	NameTemplate string `yaml:"nameTemplate"`
	// PrefixTemplate renders the AlarmName prefix, defaulting to the stack name.
	PrefixTemplate string `yaml:"prefixTemplate"`

	// Namespace is the CloudWatch namespace of the watched metric.
	Namespace string `yaml:"namespace"`
	// Metric is the watched metric name, or the base of the synthetic name for log patterns.
	Metric string `yaml:"metric"`
	// Threshold is the comparison value, or the band width for anomaly detection.
	Threshold *float64 `yaml:"threshold"`
	// Statistic is either a simple statistic or a percentile such as p99.
	Statistic string `yaml:"statistic"`
	// Period is the metric period in seconds.
	Period int `yaml:"period" validate:"gte=0"`
	// EvaluationPeriods is the number of periods compared with the threshold.
	EvaluationPeriods int `yaml:"evaluationPeriods" validate:"gte=0"`
	// DatapointsToAlarm is the number of breaching datapoints that trigger the alarm.
	DatapointsToAlarm int `yaml:"datapointsToAlarm" validate:"gte=0"`
	// ComparisonOperator is one of the CloudWatch comparison operators.
	ComparisonOperator string `yaml:"comparisonOperator" validate:"omitempty,comparisonOperator"`
	// TreatMissingData is the missing-data policy.
	TreatMissingData string `yaml:"treatMissingData" validate:"omitempty,oneof=breaching notBreaching ignore missing"`
	// Pattern is a log filter pattern; a non-empty value makes this a log-pattern alarm.
	Pattern string `yaml:"pattern"`
	// Metrics is an explicit metric-expression list emitted verbatim.
	Metrics []any `yaml:"metrics"`
	// Dimensions are extra metric dimensions.
	Dimensions []cfn.Dimension `yaml:"dimensions" validate:"dive"`
	// OmitDefaultDimension suppresses the computed FunctionName dimension.
	OmitDefaultDimension bool `yaml:"omitDefaultDimension"`
	// Topics routes severities to named topic groups.
	Topics Routing `yaml:"topics"`
	// ActionsEnabled sets ActionsEnabled when present.
	ActionsEnabled *bool `yaml:"actionsEnabled"`

	// Alarm is the logical alarm name a composite gathers across functions.
	Alarm string `yaml:"alarm"`
	// Alarms is an explicit list of alarm resource keys a composite combines.
	Alarms []string `yaml:"alarms"`
	// Operator joins composite members, OR by default.
	Operator string `yaml:"operator" validate:"omitempty,oneof=OR AND"`
}

// IsEnabled reports whether the definition produces resources.
func (d *Definition) IsEnabled() bool {
	return d.Enabled == nil || *d.Enabled
}

// MissingDataPolicy returns the configured policy or the default.
func (d *Definition) MissingDataPolicy() string {
	if d.TreatMissingData == "" {
		return DefaultTreatMissingData
	}

	return d.TreatMissingData
}

// Clone returns a deep copy of the definition.
func (d *Definition) Clone() Definition {
	cloned := *d

	if d.Enabled != nil {
		enabled := *d.Enabled
		cloned.Enabled = &enabled
	}

	if d.Threshold != nil {
		threshold := *d.Threshold
		cloned.Threshold = &threshold
	}

	if d.ActionsEnabled != nil {
		actionsEnabled := *d.ActionsEnabled
		cloned.ActionsEnabled = &actionsEnabled
	}

	cloned.Metrics = append([]any(nil), d.Metrics...)
	cloned.Dimensions = append([]cfn.Dimension(nil), d.Dimensions...)
	cloned.Alarms = append([]string(nil), d.Alarms...)
	cloned.Topics = d.Topics.Clone()

	return cloned
}

// Routing sends alarm actions to named topic groups. A mapping form
// ({alarm: critical}) routes single severities; a list form ([critical, pager])
// concatenates the same-severity action of every listed group.
type Routing struct {
	// BySeverity maps a severity to a topic group.
	BySeverity map[Severity]string
	// Groups lists topic groups whose actions are concatenated.
	Groups []string
}

// IsZero reports whether no routing is configured.
func (r Routing) IsZero() bool {
	return len(r.BySeverity) == 0 && len(r.Groups) == 0
}

// Clone returns a copy of the routing.
func (r Routing) Clone() Routing {
	cloned := Routing{Groups: append([]string(nil), r.Groups...)}
	if r.BySeverity != nil {
		cloned.BySeverity = make(map[Severity]string, len(r.BySeverity))
		for sev, group := range r.BySeverity {
			cloned.BySeverity[sev] = group
		}
	}

	return cloned
}

// UnmarshalYAML accepts either a list of groups or a severity mapping.
func (r *Routing) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		return node.Decode(&r.Groups)
	case yaml.MappingNode:
		var raw map[string]string
		if err := node.Decode(&raw); err != nil {
			return err
		}

		r.BySeverity = make(map[Severity]string, len(raw))
		for key, group := range raw {
			if !IsSeverity(key) {
				return fmt.Errorf("topics: unknown severity %q", key)
			}

			r.BySeverity[Severity(key)] = group
		}

		return nil
	case yaml.ScalarNode:
		var group string
		if err := node.Decode(&group); err != nil {
			return err
		}

		if group != "" {
			r.Groups = []string{group}
		}

		return nil
	default:
		return fmt.Errorf("topics: unsupported node kind %d", node.Kind)
	}
}
