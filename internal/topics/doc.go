// Package topics compiles the notification topic configuration.
//
// Literal ARNs and intrinsic references pass through untouched; plain names
// become new AWS::SNS::Topic resources referenced by logical ID. Topic groups
// nest a severity map under a name, and their topics are keyed by group so
// they never clash with the top-level severities.
package topics
