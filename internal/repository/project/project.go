package project

import (
	"errors"
	"fmt"

	"github.com/oshokin/alarm-compiler/internal/config"
	"github.com/oshokin/alarm-compiler/internal/domain/alarm"
	"github.com/oshokin/alarm-compiler/internal/naming"
)

// DefaultStage is used when neither the manifest nor the caller sets one.
const DefaultStage = "dev"

// ErrFunctionNotFound is returned for names absent from the manifest.
var ErrFunctionNotFound = errors.New("function not found")

// Project is a loaded service manifest.
type Project struct {
	// service is the service name.
	service string
	// stage is the active deployment stage.
	stage string
	// order lists function names as they appear in the manifest.
	order []string
	// functions maps function names to descriptors.
	functions map[string]*alarm.FunctionDescriptor
	// alerts is the embedded alerts configuration, nil when absent.
	alerts *config.Alerts
}

// Service returns the service name.
func (p *Project) Service() string {
	return p.service
}

// Alerts returns the embedded alerts configuration, or nil.
func (p *Project) Alerts() *config.Alerts {
	return p.alerts
}

// ListFunctions returns function names in manifest order.
func (p *Project) ListFunctions() []string {
	return append([]string(nil), p.order...)
}

// DescribeFunction returns the descriptor of one function.
func (p *Project) DescribeFunction(name string) (*alarm.FunctionDescriptor, error) {
	fn, ok := p.functions[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFunctionNotFound, name)
	}

	return fn, nil
}

// LogicalIDFor returns the logical ID of the function resource.
func (p *Project) LogicalIDFor(name string) string {
	if _, ok := p.functions[name]; !ok {
		return ""
	}

	return naming.FunctionLogicalID(name)
}

// LogStorageNameFor returns the log group name of the deployed function.
func (p *Project) LogStorageNameFor(name string) string {
	fn, ok := p.functions[name]
	if !ok {
		return ""
	}

	return naming.LogGroupName(fn.DeployedName)
}

// LogStorageLogicalIDFor returns the logical ID of the function's log group.
func (p *Project) LogStorageLogicalIDFor(name string) string {
	return naming.LogGroupLogicalID(name)
}

// StackName returns "<service>-<stage>".
func (p *Project) StackName() string {
	return p.service + "-" + p.stage
}

// CurrentStage returns the active stage.
func (p *Project) CurrentStage() string {
	return p.stage
}
