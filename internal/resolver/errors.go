package resolver

import (
	"errors"
	"fmt"

	"github.com/oshokin/alarm-compiler/internal/domain/alarm"
)

var (
	// ErrConfiguration is returned when a required argument is missing or a
	// reference is used in a scope it cannot serve.
	ErrConfiguration = errors.New("configuration error")
	// ErrDefinitionNotFound is returned for references absent from the registry.
	ErrDefinitionNotFound = errors.New("alarm definition not found")
)

// DefinitionNotFoundError names the missing definition and the scope that referenced it.
type DefinitionNotFoundError struct {
	// Alarm is the missing definition name.
	Alarm string
	// Scope is the referencing scope.
	Scope alarm.Scope
}

// Error implements error.
func (e *DefinitionNotFoundError) Error() string {
	return fmt.Sprintf("alarm definition %s does not exist (referenced by %s)", e.Alarm, e.Scope)
}

// Unwrap lets errors.Is match ErrDefinitionNotFound.
func (e *DefinitionNotFoundError) Unwrap() error {
	return ErrDefinitionNotFound
}
