// Package param reads path and query parameters, reporting bad values as
// validation errors on the parameter name.
package param

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/billable/internal/apperror"
)

// ID parses the UUID path parameter name.
func ID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, apperror.Field(name, "invalid id")
	}

	return id, nil
}

// OptionalID parses a UUID query parameter. A missing value yields nil.
func OptionalID(r *http.Request, name string) (*uuid.UUID, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}

	id, err := uuid.Parse(s)
	if err != nil {
		return nil, apperror.Field(name, "invalid id")
	}

	return &id, nil
}

// OptionalDate parses a YYYY-MM-DD query parameter. A missing value yields nil.
func OptionalDate(r *http.Request, name string) (*time.Time, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}

	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, apperror.Field(name, "must be a date in YYYY-MM-DD format")
	}

	return &t, nil
}

// OptionalBool parses a boolean query parameter. A missing value yields nil.
func OptionalBool(r *http.Request, name string) (*bool, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}

	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, apperror.Field(name, "must be true or false")
	}

	return &b, nil
}
