package apperror_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/billable/internal/apperror"
)

func TestKinds(t *testing.T) {
	validation := fmt.Errorf("create client: %w", apperror.Field("nip", "invalid checksum"))
	external := fmt.Errorf("resolve: %w", apperror.External("nbp", errors.New("timeout")))
	precondition := apperror.Preconditionf("unsupported currency %q", "GBP")

	assert.True(t, apperror.IsValidation(validation))
	assert.False(t, apperror.IsExternal(validation))

	assert.True(t, apperror.IsExternal(external))
	assert.False(t, apperror.IsValidation(external))

	assert.ErrorIs(t, precondition, apperror.ErrPrecondition)
	assert.False(t, apperror.IsValidation(precondition))
}

func TestValidationError_Message(t *testing.T) {
	err := apperror.Validation(
		apperror.FieldError{Field: "vat_rate", Message: "must be between 0 and 100"},
		apperror.FieldError{Field: "issue_date", Message: "required"},
	)

	assert.Equal(t, "validation failed: vat_rate: must be between 0 and 100; issue_date: required", err.Error())
}

func TestExternalError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := apperror.External("registry", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "registry lookup failed: connection refused", err.Error())
}
