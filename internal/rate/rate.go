// Package rate resolves exchange rates to the base currency, preferring
// previously stored rates over live lookups.
package rate

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/billable/internal/currency"
)

// Source tells the caller where a resolved rate came from.
type Source string

const (
	SourceCache Source = "cache"
	SourceAPI   Source = "api"
)

// Resolution is a resolved exchange rate for a currency on a date.
type Resolution struct {
	Currency currency.Code   `json:"currency"`
	Date     time.Time       `json:"date"`
	Rate     decimal.Decimal `json:"rate"`
	Source   Source          `json:"source"`
}

// Quote is a rate returned by the feed together with the table date it was published for.
type Quote struct {
	Rate          decimal.Decimal
	EffectiveDate time.Time
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
