package invoice

import (
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/billable/internal/currency"
)

// Summary holds the derived totals of an invoice. Values are exact; rounding
// happens only when they are displayed.
type Summary struct {
	Net   decimal.Decimal `json:"net_amount"`
	VAT   decimal.Decimal `json:"vat_amount"`
	Gross decimal.Decimal `json:"gross_amount"`
	// GrossBase is the gross amount in the base currency. It is nil when the
	// invoice is in the base currency or has no exchange rate.
	GrossBase *decimal.Decimal `json:"gross_amount_base,omitempty"`
}

// ComputeSummary is the single place invoice totals are calculated. Items are
// summed in the order given.
func ComputeSummary(items []LineItem, vatRate decimal.Decimal, cur currency.Code, exchangeRate *decimal.Decimal) Summary {
	net := decimal.Zero
	for _, item := range items {
		net = net.Add(item.NetAmount())
	}

	// Shift(-2) divides by 100 without a precision limit.
	vat := net.Mul(vatRate).Shift(-2)
	gross := net.Add(vat)

	s := Summary{Net: net, VAT: vat, Gross: gross}

	if exchangeRate != nil && cur != currency.Base {
		base := gross.Mul(*exchangeRate)
		s.GrossBase = &base
	}

	return s
}

// DisplaySummary is a Summary rounded to two decimal places for output.
type DisplaySummary struct {
	Net       string  `json:"net_amount"`
	VAT       string  `json:"vat_amount"`
	Gross     string  `json:"gross_amount"`
	GrossBase *string `json:"gross_amount_base,omitempty"`
}

func (s Summary) Display() DisplaySummary {
	d := DisplaySummary{
		Net:   s.Net.StringFixed(2),
		VAT:   s.VAT.StringFixed(2),
		Gross: s.Gross.StringFixed(2),
	}

	if s.GrossBase != nil {
		d.GrossBase = new(s.GrossBase.StringFixed(2))
	}

	return d
}
