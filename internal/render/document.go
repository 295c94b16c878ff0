// Package render turns invoices into printable PDF documents.
package render

import (
	"context"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/billable/internal/client"
	"github.com/MrJamesThe3rd/billable/internal/currency"
	"github.com/MrJamesThe3rd/billable/internal/hours"
	"github.com/MrJamesThe3rd/billable/internal/invoice"
	"github.com/MrJamesThe3rd/billable/internal/money"
	"github.com/MrJamesThe3rd/billable/internal/profile"
)

// Renderer produces a PDF for a document.
type Renderer interface {
	Render(ctx context.Context, doc *Document) ([]byte, error)
}

// Document is everything printed on one invoice.
type Document struct {
	Invoice *invoice.Invoice
	Summary invoice.Summary
	Seller  *profile.Profile
	Buyer   *client.Client
}

func NewDocument(inv *invoice.Invoice, seller *profile.Profile, buyer *client.Client) *Document {
	return &Document{
		Invoice: inv,
		Summary: inv.Summary(),
		Seller:  seller,
		Buyer:   buyer,
	}
}

// Line is a formatted invoice row.
type Line struct {
	Position    int
	Description string
	Quantity    string
	Hours       string
	UnitPrice   string
	Net         string
}

// Totals are the formatted summary amounts. GrossBase and Rate are empty for
// base currency invoices.
type Totals struct {
	Net       string
	VAT       string
	Gross     string
	GrossBase string
	Rate      string
	RateDate  string
}

// View is the document with every amount already formatted for print.
type View struct {
	Number    string
	IssueDate string
	SaleDate  string
	DueDate   string
	VATRate   string
	Seller    *profile.Profile
	Buyer     *client.Client
	Lines     []Line
	Totals    Totals
	Notes     string
}

func (d *Document) View(f *money.Formatter) View {
	inv := d.Invoice
	cur := inv.Currency

	v := View{
		Number:    inv.Number,
		IssueDate: inv.IssueDate.Format(time.DateOnly),
		SaleDate:  inv.SaleDate.Format(time.DateOnly),
		DueDate:   inv.DueDate.Format(time.DateOnly),
		VATRate:   inv.VATRate.String() + "%",
		Seller:    d.Seller,
		Buyer:     d.Buyer,
		Notes:     inv.Notes,
		Totals: Totals{
			Net:   f.Money(d.Summary.Net, cur),
			VAT:   f.Money(d.Summary.VAT, cur),
			Gross: f.Money(d.Summary.Gross, cur),
		},
	}

	for _, item := range inv.Items {
		line := Line{
			Position:    item.Position,
			Description: item.Description,
			Quantity:    item.Quantity.String(),
			UnitPrice:   f.Money(item.UnitPrice, cur),
			Net:         f.Money(item.NetAmount(), cur),
		}

		if len(item.TimeEntryIDs) > 0 {
			line.Hours = hours.Format(item.Quantity)
		}

		v.Lines = append(v.Lines, line)
	}

	if d.Summary.GrossBase != nil && inv.ExchangeRate != nil {
		v.Totals.GrossBase = f.Money(*d.Summary.GrossBase, currency.Base)
		v.Totals.Rate = f.Rate(*inv.ExchangeRate)
		v.Totals.RateDate = invoice.RateDate(inv.IssueDate).Format(time.DateOnly)
	}

	return v
}

// Filename is the download name of the invoice PDF.
func (d *Document) Filename() string {
	return strings.NewReplacer("/", "-", " ", "_").Replace(d.Invoice.Number) + ".pdf"
}
