package alarm

// FunctionDescriptor is the read-only view of a deployed function.
type FunctionDescriptor struct {
	// Name is the logical function name used in the service manifest.
	Name string
	// DeployedName is the physical function name.
	DeployedName string
	// Alarms is the function's own alarm reference list.
	Alarms []Ref
	// InheritGlobal is nil when unset; only an explicit false opts out of global alarms.
	InheritGlobal *bool
	// HTTPEvents are the routed paths served by the function.
	HTTPEvents []HTTPEvent
	// StreamEvents are the stream sources feeding the function.
	StreamEvents []StreamEvent
}

// InheritsGlobal reports whether global alarms apply to the function.
func (f *FunctionDescriptor) InheritsGlobal() bool {
	return f.InheritGlobal == nil || *f.InheritGlobal
}

// HTTPEvent is one routed API path.
type HTTPEvent struct {
	// Method is the HTTP method, upper-cased.
	Method string `yaml:"method"`
	// Path is the resource path without a leading slash.
	Path string `yaml:"path"`
}

// StreamEvent is one stream event source.
type StreamEvent struct {
	// ARN is the stream ARN or an intrinsic reference.
	ARN any `yaml:"arn"`
	// Type is kinesis or dynamodb.
	Type string `yaml:"type"`
}
