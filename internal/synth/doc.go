// Package synth turns resolved alarm instances into CloudFormation records.
//
// AlarmResource picks one of four metric strategies: an explicit metrics
// expression list, an anomaly detection band, a log pattern or a plain
// metric with dimensions. Log-pattern alarms also need the metric filter
// pair from LogMetricResources. CompositeResource combines alarms already
// emitted for the functions of the stack.
package synth
