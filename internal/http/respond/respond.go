// Package respond writes JSON responses and maps application errors to HTTP statuses.
package respond

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/MrJamesThe3rd/billable/internal/apperror"
)

type ErrorBody struct {
	Error       string                `json:"error"`
	Fields      []apperror.FieldError `json:"fields,omitempty"`
	Service     string                `json:"service,omitempty"`
	ManualEntry bool                  `json:"manual_entry,omitempty"`
}

func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

func Message(w http.ResponseWriter, r *http.Request, status int, msg string) {
	JSON(w, r, status, ErrorBody{Error: msg})
}

// Error maps err to a status code. Unknown errors and precondition violations
// are logged and answered with a generic 500.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation *apperror.ValidationError
		external   *apperror.ExternalError
	)

	switch {
	case errors.As(err, &validation):
		JSON(w, r, http.StatusUnprocessableEntity, ErrorBody{
			Error:  "validation failed",
			Fields: validation.Fields,
		})
	case errors.As(err, &external):
		slog.Warn("external lookup failed",
			"service", external.Service,
			"error", external.Err,
			"request_id", middleware.GetReqID(r.Context()),
		)
		JSON(w, r, http.StatusBadGateway, ErrorBody{
			Error:       external.Service + " is unavailable, enter the value manually",
			Service:     external.Service,
			ManualEntry: true,
		})
	case errors.Is(err, apperror.ErrNotFound):
		Message(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, apperror.ErrPrecondition):
		slog.Error("precondition violated",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
		)
		Message(w, r, http.StatusInternalServerError, "internal error")
	default:
		slog.Error("request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
		)
		Message(w, r, http.StatusInternalServerError, "internal error")
	}
}

// Decode reads a JSON body into v. Malformed bodies become a validation error on "body".
func Decode(r *http.Request, v any) error {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		return apperror.Field("body", "invalid JSON: %v", err)
	}

	return nil
}
