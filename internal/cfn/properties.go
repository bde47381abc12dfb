package cfn

// Dimension is a CloudWatch metric dimension.
type Dimension struct {
	Name  string `json:"Name"  yaml:"Name"`
	Value any    `json:"Value" yaml:"Value"`
}

// AlarmProperties is the property bag of AWS::CloudWatch::Alarm.
type AlarmProperties struct {
	AlarmName               string      `json:"AlarmName,omitempty"`
	AlarmDescription        string      `json:"AlarmDescription,omitempty"`
	ActionsEnabled          *bool       `json:"ActionsEnabled,omitempty"`
	Namespace               string      `json:"Namespace,omitempty"`
	MetricName              string      `json:"MetricName,omitempty"`
	Threshold               *float64    `json:"Threshold,omitempty"`
	ThresholdMetricID       string      `json:"ThresholdMetricId,omitempty"`
	Statistic               string      `json:"Statistic,omitempty"`
	ExtendedStatistic       string      `json:"ExtendedStatistic,omitempty"`
	Period                  int         `json:"Period,omitempty"`
	EvaluationPeriods       int         `json:"EvaluationPeriods,omitempty"`
	DatapointsToAlarm       int         `json:"DatapointsToAlarm,omitempty"`
	ComparisonOperator      string      `json:"ComparisonOperator,omitempty"`
	OKActions               []any       `json:"OKActions"`
	AlarmActions            []any       `json:"AlarmActions"`
	InsufficientDataActions []any       `json:"InsufficientDataActions"`
	// Dimensions is nil for expression-based alarms and an empty list for
	// log-pattern alarms, which keeps "Dimensions": [] in the output.
	Dimensions       []Dimension `json:"Dimensions,omitzero"`
	Metrics          []any       `json:"Metrics,omitempty"`
	TreatMissingData string      `json:"TreatMissingData"`
}

// MetricDataQuery is one entry of an alarm's Metrics list.
type MetricDataQuery struct {
	ID         string      `json:"Id"`
	Expression string      `json:"Expression,omitempty"`
	Label      string      `json:"Label,omitempty"`
	MetricStat *MetricStat `json:"MetricStat,omitempty"`
	ReturnData bool        `json:"ReturnData"`
}

// MetricStat selects a metric and the statistic computed over it.
type MetricStat struct {
	Metric Metric `json:"Metric"`
	Period int    `json:"Period"`
	Stat   string `json:"Stat"`
}

// Metric identifies a CloudWatch metric.
type Metric struct {
	Namespace  string      `json:"Namespace"`
	MetricName string      `json:"MetricName"`
	Dimensions []Dimension `json:"Dimensions,omitempty"`
}

// CompositeAlarmProperties is the property bag of AWS::CloudWatch::CompositeAlarm.
type CompositeAlarmProperties struct {
	AlarmName               string `json:"AlarmName"`
	AlarmDescription        string `json:"AlarmDescription,omitempty"`
	AlarmRule               string `json:"AlarmRule"`
	ActionsEnabled          *bool  `json:"ActionsEnabled,omitempty"`
	OKActions               []any  `json:"OKActions"`
	AlarmActions            []any  `json:"AlarmActions"`
	InsufficientDataActions []any  `json:"InsufficientDataActions"`
}

// TopicProperties is the property bag of AWS::SNS::Topic.
type TopicProperties struct {
	TopicName    string         `json:"TopicName"`
	Subscription []Subscription `json:"Subscription"`
}

// Subscription is one SNS topic subscription.
type Subscription struct {
	Protocol string `json:"Protocol" yaml:"protocol"`
	Endpoint string `json:"Endpoint" yaml:"endpoint"`
}

// MetricFilterProperties is the property bag of AWS::Logs::MetricFilter.
type MetricFilterProperties struct {
	// FilterPattern is always emitted; the empty pattern matches every event.
	FilterPattern         string                 `json:"FilterPattern"`
	LogGroupName          string                 `json:"LogGroupName"`
	MetricTransformations []MetricTransformation `json:"MetricTransformations"`
}

// MetricTransformation maps matching log events to a metric value.
type MetricTransformation struct {
	MetricValue     int    `json:"MetricValue"`
	MetricNamespace string `json:"MetricNamespace"`
	MetricName      string `json:"MetricName"`
}
