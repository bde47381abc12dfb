package definition

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDefinition is returned when a record fails to decode or validate.
	ErrInvalidDefinition = errors.New("invalid alarm definition")
	// ErrStructuralPrecondition is returned when a generator targets a function
	// lacking the attribute it expands over.
	ErrStructuralPrecondition = errors.New("structural precondition failed")
)

// StructuralPreconditionError names the generator, function and missing attribute.
type StructuralPreconditionError struct {
	// Alarm is the generator definition name.
	Alarm string
	// Function is the target function.
	Function string
	// Attribute is the missing structural attribute.
	Attribute string
}

// Error implements error.
func (e *StructuralPreconditionError) Error() string {
	return fmt.Sprintf("alarm %s requires function %s to have %s", e.Alarm, e.Function, e.Attribute)
}

// Unwrap lets errors.Is match ErrStructuralPrecondition.
func (e *StructuralPreconditionError) Unwrap() error {
	return ErrStructuralPrecondition
}
