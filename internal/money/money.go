// Package money formats amounts for people to read. Values are rounded to two
// places here and nowhere earlier.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/MrJamesThe3rd/billable/internal/currency"
)

// Polish is the locale of printed invoices.
var Polish = language.Polish

// Formatter renders amounts with the grouping and decimal separator of a locale.
type Formatter struct {
	p *message.Printer
}

func NewFormatter(tag language.Tag) *Formatter {
	return &Formatter{p: message.NewPrinter(tag)}
}

// Amount renders a number with two decimals, e.g. "1,230.00" in English.
func (f *Formatter) Amount(d decimal.Decimal) string {
	return f.p.Sprintf("%.2f", d.Round(2).InexactFloat64())
}

// Money renders an amount followed by its currency code.
func (f *Formatter) Money(d decimal.Decimal, cur currency.Code) string {
	return f.Amount(d) + " " + cur.String()
}

// Rate renders an exchange rate with the four decimals NBP publishes.
func (f *Formatter) Rate(d decimal.Decimal) string {
	return f.p.Sprintf("%.4f", d.Round(4).InexactFloat64())
}
