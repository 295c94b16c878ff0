package invoice

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/billable/internal/currency"
)

// CurrencyTotals sums invoices billed in one currency.
type CurrencyTotals struct {
	Currency currency.Code   `json:"currency"`
	Count    int             `json:"count"`
	Net      decimal.Decimal `json:"net_amount"`
	VAT      decimal.Decimal `json:"vat_amount"`
	Gross    decimal.Decimal `json:"gross_amount"`
}

type Totals struct {
	Count      int              `json:"count"`
	ByCurrency []CurrencyTotals `json:"by_currency"`
	// GrossBase adds up gross amounts in the base currency. Foreign invoices
	// without an exchange rate are left out and counted in MissingRate.
	GrossBase   decimal.Decimal `json:"gross_amount_base"`
	MissingRate int             `json:"missing_rate"`
}

// Aggregate sums the summaries of invoices. Each invoice goes through
// ComputeSummary so the totals match what every invoice shows on its own.
func Aggregate(invoices []*Invoice) Totals {
	byCurrency := make(map[currency.Code]*CurrencyTotals)
	t := Totals{GrossBase: decimal.Zero}

	for _, inv := range invoices {
		sum := inv.Summary()

		ct, ok := byCurrency[inv.Currency]
		if !ok {
			ct = &CurrencyTotals{Currency: inv.Currency, Net: decimal.Zero, VAT: decimal.Zero, Gross: decimal.Zero}
			byCurrency[inv.Currency] = ct
		}

		ct.Count++
		ct.Net = ct.Net.Add(sum.Net)
		ct.VAT = ct.VAT.Add(sum.VAT)
		ct.Gross = ct.Gross.Add(sum.Gross)

		t.Count++

		switch {
		case inv.Currency == currency.Base:
			t.GrossBase = t.GrossBase.Add(sum.Gross)
		case sum.GrossBase != nil:
			t.GrossBase = t.GrossBase.Add(*sum.GrossBase)
		default:
			t.MissingRate++
		}
	}

	for _, ct := range byCurrency {
		t.ByCurrency = append(t.ByCurrency, *ct)
	}

	sort.Slice(t.ByCurrency, func(i, j int) bool {
		return t.ByCurrency[i].Currency < t.ByCurrency[j].Currency
	})

	return t
}

func (s *Service) Totals(ctx context.Context, userID uuid.UUID, filter ListFilter) (Totals, error) {
	invoices, err := s.repo.ListInvoices(ctx, userID, filter)
	if err != nil {
		return Totals{}, fmt.Errorf("listing invoices: %w", err)
	}

	return Aggregate(invoices), nil
}
