package timeentry

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/billable/internal/currency"
)

// Entry is a block of billable work logged against a client.
type Entry struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"-"`
	ClientID       uuid.UUID       `json:"client_id"`
	Date           time.Time       `json:"date"`
	Description    string          `json:"description"`
	RawDescription string          `json:"raw_description,omitempty"`
	Hours          decimal.Decimal `json:"hours"`
	Rate           decimal.Decimal `json:"rate"`
	Currency       currency.Code   `json:"currency"`
	Note           string          `json:"note"`
	InvoiceID      *uuid.UUID      `json:"invoice_id"`
	InvoiceItemID  *uuid.UUID      `json:"invoice_item_id"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Value is hours times rate, unrounded.
func (e *Entry) Value() decimal.Decimal {
	return e.Hours.Mul(e.Rate)
}

// Invoiced reports whether the entry is attached to an invoice.
func (e *Entry) Invoiced() bool {
	return e.InvoiceID != nil
}
