package compiler

import "github.com/oshokin/alarm-compiler/internal/domain/alarm"

// Host is the deployment tool the compiler runs inside. It enumerates
// functions and maps their names to provisioned identifiers.
type Host interface {
	// ListFunctions returns function names in a stable order.
	ListFunctions() []string
	// DescribeFunction returns the descriptor of one function.
	DescribeFunction(name string) (*alarm.FunctionDescriptor, error)
	// LogicalIDFor returns the logical ID of the function resource.
	LogicalIDFor(name string) string
	// LogStorageNameFor returns the physical log group name of the function.
	LogStorageNameFor(name string) string
	// LogStorageLogicalIDFor returns the logical ID of the function's log group.
	LogStorageLogicalIDFor(name string) string
	// StackName returns the deployment stack name.
	StackName() string
	// CurrentStage returns the active deployment stage.
	CurrentStage() string
}
