package client

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/billable/internal/currency"
)

type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	// Country is an ISO 3166-1 alpha-2 code.
	Country string `json:"country"`
}

type Client struct {
	ID          uuid.UUID        `json:"id"`
	UserID      uuid.UUID        `json:"-"`
	Name        string           `json:"name"`
	NIP         string           `json:"nip"`
	Address     Address          `json:"address"`
	Email       string           `json:"email"`
	DefaultRate *decimal.Decimal `json:"default_rate"`
	Currency    currency.Code    `json:"currency"`
	Notes       string           `json:"notes"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// Prefill is what a registry lookup can tell about a company.
type Prefill struct {
	Name      string  `json:"name"`
	NIP       string  `json:"nip"`
	Address   Address `json:"address"`
	StatusVAT string  `json:"status_vat"`
}
