// Package validation wraps the go-playground/validator library with
// thread-safe initialization and standardized error formatting. Structs are
// validated through `validate` tags and failures are reported as a
// multi-error chain rooted at ErrValidation.
package validation

import (
	"errors"
	"fmt"
	"sync"

	gvalidator "github.com/go-playground/validator/v10"
)

var (
	// validator is the singleton go-playground validator instance.
	validator *gvalidator.Validate

	// initValidatorOnce guards the one-time setup performed by Init.
	initValidatorOnce sync.Once
)

// ErrValidation is the first error in the chain whenever validation fails.
var ErrValidation = errors.New("validation error")

// errStringFormat describes a single failed field.
const errStringFormat = "'%s': value '%v' does not meet the requirements for the '%s' validation"

// Init initializes the validator once, enabling required-field validation
// on structs. It is safe to call multiple times.
func Init() {
	initValidatorOnce.Do(func() {
		validator = gvalidator.New(gvalidator.WithRequiredStructEnabled())
	})
}

// formatError turns a raw validator error into a multi-error chain with one
// readable message per failed field, rooted at ErrValidation. Non-validation
// errors are returned unchanged.
func formatError(err error) error {
	var validationErrors gvalidator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	errs := []error{ErrValidation}
	for _, validationErr := range validationErrors {
		errs = append(errs, fmt.Errorf(errStringFormat,
			validationErr.Field(),
			validationErr.Value(),
			validationErr.Tag(),
		))
	}

	return errors.Join(errs...)
}

// Check validates the given struct against its `validate` tags. It returns
// nil when the struct is valid, or an ErrValidation chain describing every
// failed field.
func Check(s any) error {
	Init()

	if err := validator.Struct(s); err != nil {
		return formatError(err)
	}
	return nil
}
