package respond_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/billable/internal/apperror"
	"github.com/MrJamesThe3rd/billable/internal/http/respond"
)

func TestError(t *testing.T) {
	type testCase struct {
		name       string
		err        error
		wantStatus int
		wantBody   respond.ErrorBody
	}

	tests := []testCase{
		{
			name:       "validation",
			err:        apperror.Field("nip", "invalid checksum"),
			wantStatus: http.StatusUnprocessableEntity,
			wantBody: respond.ErrorBody{
				Error:  "validation failed",
				Fields: []apperror.FieldError{{Field: "nip", Message: "invalid checksum"}},
			},
		},
		{
			name:       "external",
			err:        fmt.Errorf("resolving rate: %w", apperror.External("nbp", errors.New("timeout"))),
			wantStatus: http.StatusBadGateway,
			wantBody: respond.ErrorBody{
				Error:       "nbp is unavailable, enter the value manually",
				Service:     "nbp",
				ManualEntry: true,
			},
		},
		{
			name:       "not found",
			err:        fmt.Errorf("getting client: %w", apperror.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantBody:   respond.ErrorBody{Error: "not found"},
		},
		{
			name:       "precondition is hidden",
			err:        apperror.Preconditionf("unsupported currency %q", "GBP"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   respond.ErrorBody{Error: "internal error"},
		},
		{
			name:       "unknown",
			err:        errors.New("connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   respond.ErrorBody{Error: "internal error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()

			respond.Error(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body respond.ErrorBody
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestDecode(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Acme"}`))
	require.NoError(t, respond.Decode(req, &v))
	assert.Equal(t, "Acme", v.Name)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	err := respond.Decode(req, &v)
	assert.True(t, apperror.IsValidation(err))
}
