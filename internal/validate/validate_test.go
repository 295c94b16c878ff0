package validate_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/billable/internal/apperror"
	"github.com/MrJamesThe3rd/billable/internal/validate"
)

type address struct {
	Country string `json:"country" validate:"omitempty,country"`
}

type request struct {
	Name     string           `json:"name" validate:"required"`
	Title    string           `json:"title" validate:"notblank"`
	NIP      string           `json:"nip" validate:"omitempty,nip"`
	Currency string           `json:"currency" validate:"required,currency"`
	Term     string           `json:"payment_term" validate:"omitempty,payterm"`
	Date     string           `json:"issue_date" validate:"required,datetime=2006-01-02"`
	VATRate  decimal.Decimal  `json:"vat_rate" validate:"gte=0,lte=100"`
	Hours    decimal.Decimal  `json:"hours" validate:"gt=0"`
	Rate     *decimal.Decimal `json:"rate" validate:"omitempty,gt=0"`
	Address  address          `json:"address"`
}

func TestStruct_Valid(t *testing.T) {
	err := validate.Struct(request{
		Name:     "ACME",
		Title:    "Consulting",
		NIP:      "PL 526-025-02-74",
		Currency: "EUR",
		Term:     "month",
		Date:     "2025-01-31",
		VATRate:  decimal.RequireFromString("23"),
		Hours:    decimal.RequireFromString("0.25"),
		Address:  address{Country: "PL"},
	})

	assert.NoError(t, err)
}

func TestStruct_FieldErrors(t *testing.T) {
	err := validate.Struct(request{
		Title:    "   ",
		NIP:      "1234567890",
		Currency: "GBP",
		Term:     "11",
		Date:     "31.01.2025",
		VATRate:  decimal.RequireFromString("100.5"),
		Rate:     new(decimal.Zero),
		Address:  address{Country: "Narnia"},
	})
	require.Error(t, err)

	var ve *apperror.ValidationError
	require.True(t, errors.As(err, &ve))

	got := map[string]string{}
	for _, f := range ve.Fields {
		got[f.Field] = f.Message
	}

	assert.Equal(t, "required", got["name"])
	assert.Equal(t, "invalid NIP checksum", got["nip"])
	assert.Equal(t, "unsupported currency", got["currency"])
	assert.Equal(t, "unknown payment term", got["payment_term"])
	assert.Equal(t, "must be a date in 2006-01-02 format", got["issue_date"])
	assert.Equal(t, "required", got["title"])
	assert.Equal(t, "must be at most 100", got["vat_rate"])
	assert.Equal(t, "must be greater than 0", got["hours"])
	assert.Equal(t, "must be greater than 0", got["rate"])
	assert.Equal(t, "unknown country code", got["address.country"])
}
