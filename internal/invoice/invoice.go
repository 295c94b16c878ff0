package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/billable/internal/currency"
	"github.com/MrJamesThe3rd/billable/internal/payterm"
)

// Status is the lifecycle state of an invoice.
type Status string

const (
	StatusDraft  Status = "draft"
	StatusIssued Status = "issued"
	StatusPaid   Status = "paid"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusIssued, StatusPaid:
		return true
	}

	return false
}

// Mode selects how line items are produced.
type Mode string

const (
	ModeTimeEntries Mode = "time_entries"
	ModeManual      Mode = "manual"
)

func (m Mode) Valid() bool {
	return m == ModeTimeEntries || m == ModeManual
}

// LineItem is one billable row on an invoice.
type LineItem struct {
	ID           uuid.UUID       `json:"id"`
	Position     int             `json:"position"`
	Description  string          `json:"description"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	TimeEntryIDs []uuid.UUID     `json:"time_entry_ids,omitempty"`
}

// NetAmount is always derived from quantity and unit price.
func (li LineItem) NetAmount() decimal.Decimal {
	return li.Quantity.Mul(li.UnitPrice)
}

// Settings is the financial and temporal configuration of an invoice.
type Settings struct {
	IssueDate            time.Time        `json:"issue_date"`
	SaleDate             time.Time        `json:"sale_date"`
	DueDate              time.Time        `json:"due_date"`
	PaymentTerm          payterm.Term     `json:"payment_term"`
	VATRate              decimal.Decimal  `json:"vat_rate"`
	Currency             currency.Code    `json:"currency"`
	ExchangeRate         *decimal.Decimal `json:"exchange_rate"`
	IsCustomExchangeRate bool             `json:"is_custom_exchange_rate"`
}

type Invoice struct {
	ID       uuid.UUID `json:"id"`
	UserID   uuid.UUID `json:"-"`
	ClientID uuid.UUID `json:"client_id"`
	Number   string    `json:"number"`
	Status   Status    `json:"status"`
	Mode     Mode      `json:"mode"`
	Settings
	Items     []LineItem `json:"items"`
	Notes     string     `json:"notes"`
	PDFKey    string     `json:"pdf_key,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Summary computes the invoice totals from its current items and settings.
func (inv *Invoice) Summary() Summary {
	return ComputeSummary(inv.Items, inv.VATRate, inv.Currency, inv.ExchangeRate)
}

// TimeEntryIDs returns the entries referenced by all items in item order.
func (inv *Invoice) TimeEntryIDs() []uuid.UUID {
	var ids []uuid.UUID
	for _, item := range inv.Items {
		ids = append(ids, item.TimeEntryIDs...)
	}

	return ids
}
