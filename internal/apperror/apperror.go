// Package apperror defines the error kinds shared by services and handlers.
//
// Three kinds matter to callers:
//   - validation: bad user input, carries field-level detail, the caller re-prompts.
//   - external: a dependency (rate feed, registry) could not answer, the caller
//     falls back to manual entry.
//   - precondition: a programmer error, never shown to end users.
package apperror

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned by stores when a row does not exist for the user.
	ErrNotFound = errors.New("not found")

	// ErrPrecondition marks violations of a caller contract.
	ErrPrecondition = errors.New("precondition violated")
)

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when user input fails validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}

	return "validation failed: " + strings.Join(parts, "; ")
}

// Validation builds a ValidationError from the given field errors.
func Validation(fields ...FieldError) error {
	return &ValidationError{Fields: fields}
}

// Field is a shorthand for a single-field validation error.
func Field(field, format string, args ...any) error {
	return Validation(FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// ExternalError wraps a failure of an outbound integration.
type ExternalError struct {
	Service string
	Err     error
}

func (e *ExternalError) Error() string {
	return fmt.Sprintf("%s lookup failed: %v", e.Service, e.Err)
}

func (e *ExternalError) Unwrap() error {
	return e.Err
}

// External wraps err as a failure of the named external service.
func External(service string, err error) error {
	return &ExternalError{Service: service, Err: err}
}

// Preconditionf returns an error wrapping ErrPrecondition.
func Preconditionf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPrecondition, fmt.Sprintf(format, args...))
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsExternal reports whether err carries an ExternalError.
func IsExternal(err error) bool {
	var e *ExternalError
	return errors.As(err, &e)
}
