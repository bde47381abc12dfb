// Package template reads and writes CloudFormation template documents.
//
// The FileRepository loads an existing template, if any, so compiled
// resources can be merged into it, and saves the result as JSON or YAML.
// Output is deterministic: mapping keys are always written sorted.
package template
