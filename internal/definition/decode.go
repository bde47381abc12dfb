package definition

import (
	"fmt"
	"slices"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/alarm-compiler/internal/domain/alarm"
)

// validate is shared by every decode; validator caches struct metadata.
//
//nolint:gochecknoglobals // Validator instances are meant to be reused.
var validate = newValidator()

// comparisonOperatorTag validates CloudWatch comparison operators.
const comparisonOperatorTag = "comparisonOperator"

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	//nolint:errcheck // Registration fails only for an empty tag or nil func.
	_ = v.RegisterValidation(comparisonOperatorTag, validateComparisonOperator)

	return v
}

// validateComparisonOperator accepts the operators CloudWatch knows.
func validateComparisonOperator(fl validator.FieldLevel) bool {
	operator := types.ComparisonOperator(fl.Field().String())

	return slices.Contains(types.ComparisonOperator("").Values(), operator)
}

// Decode converts a merged raw record into a validated Definition.
func Decode(name string, record map[string]any) (alarm.Definition, error) {
	var def alarm.Definition

	contents, err := yaml.Marshal(record)
	if err != nil {
		return def, fmt.Errorf("%w %s: encode: %w", ErrInvalidDefinition, name, err)
	}

	if err = yaml.Unmarshal(contents, &def); err != nil {
		return def, fmt.Errorf("%w %s: decode: %w", ErrInvalidDefinition, name, err)
	}

	if err = validate.Struct(&def); err != nil {
		return def, fmt.Errorf("%w %s: %w", ErrInvalidDefinition, name, err)
	}

	return def, nil
}
