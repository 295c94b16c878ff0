// Package validate checks request structs with go-playground/validator and
// reports failures as apperror.ValidationError keyed by json field names.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/biter777/countries"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/billable/internal/apperror"
	"github.com/MrJamesThe3rd/billable/internal/currency"
	"github.com/MrJamesThe3rd/billable/internal/nip"
	"github.com/MrJamesThe3rd/billable/internal/payterm"
)

var (
	once     sync.Once
	instance *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}

			return name
		})

		// Amounts are compared as floats so gt, gte and lte work on decimal fields.
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				f, _ := d.Float64()
				return f
			}

			return nil
		}, decimal.Decimal{})

		_ = v.RegisterValidation("notblank", validators.NotBlank)
		_ = v.RegisterValidation("nip", func(fl validator.FieldLevel) bool {
			return nip.Valid(nip.Normalize(fl.Field().String()))
		})
		_ = v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
			return currency.Code(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("payterm", func(fl validator.FieldLevel) bool {
			return payterm.Term(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("country", func(fl validator.FieldLevel) bool {
			return countries.ByName(fl.Field().String()) != countries.Unknown
		})

		instance = v
	})

	return instance
}

// Struct validates s and returns nil or an *apperror.ValidationError.
func Struct(s any) error {
	err := get().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("unknown validation error: %w", err)
	}

	fields := make([]apperror.FieldError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fields = append(fields, apperror.FieldError{
			Field:   fieldPath(fe),
			Message: message(fe),
		})
	}

	return apperror.Validation(fields...)
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}

	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if", "required_with", "notblank":
		return "required"
	case "nip":
		return "invalid NIP checksum"
	case "currency":
		return "unsupported currency"
	case "payterm":
		return "unknown payment term"
	case "country":
		return "unknown country code"
	case "datetime":
		return "must be a date in " + fe.Param() + " format"
	case "gt":
		return "must be greater than " + fe.Param()
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	case "email":
		return "invalid email address"
	}

	return "failed " + fe.Tag() + " check"
}
