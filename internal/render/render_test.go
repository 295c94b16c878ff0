package render_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/MrJamesThe3rd/billable/internal/client"
	"github.com/MrJamesThe3rd/billable/internal/currency"
	"github.com/MrJamesThe3rd/billable/internal/invoice"
	"github.com/MrJamesThe3rd/billable/internal/money"
	"github.com/MrJamesThe3rd/billable/internal/profile"
	"github.com/MrJamesThe3rd/billable/internal/render"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleInvoice(cur currency.Code) *invoice.Invoice {
	inv := &invoice.Invoice{
		ID:       uuid.New(),
		ClientID: uuid.New(),
		Number:   "FV/2025/03/7",
		Status:   invoice.StatusIssued,
		Items: []invoice.LineItem{
			{Position: 1, Description: "Wdrożenie", Quantity: d("5"), UnitPrice: d("100"), TimeEntryIDs: []uuid.UUID{uuid.New()}},
			{Position: 2, Description: "Licencja", Quantity: d("1"), UnitPrice: d("500")},
		},
		Notes: "Dziękujemy",
	}
	inv.IssueDate = time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	inv.SaleDate = inv.IssueDate
	inv.DueDate = time.Date(2025, 3, 28, 0, 0, 0, 0, time.UTC)
	inv.VATRate = d("23")
	inv.Currency = cur

	if cur.IsForeign() {
		inv.ExchangeRate = new(d("4.1838"))
	}

	return inv
}

func sampleDocument(cur currency.Code) *render.Document {
	return render.NewDocument(
		sampleInvoice(cur),
		&profile.Profile{Name: "Jan Kowalski Software", NIP: "5260250274", City: "Warszawa", BankAccount: "PL61109010140000071219812874"},
		&client.Client{Name: "Acme GmbH", Address: client.Address{City: "Berlin", Country: "DE"}},
	)
}

func TestDocument_View(t *testing.T) {
	v := sampleDocument(currency.EUR).View(money.NewFormatter(language.English))

	assert.Equal(t, "FV/2025/03/7", v.Number)
	assert.Equal(t, "2025-03-14", v.IssueDate)
	assert.Equal(t, "23%", v.VATRate)
	require.Len(t, v.Lines, 2)

	assert.Equal(t, "5h", v.Lines[0].Hours)
	assert.Equal(t, "500.00 EUR", v.Lines[0].Net)
	assert.Empty(t, v.Lines[1].Hours)

	assert.Equal(t, "1,000.00 EUR", v.Totals.Net)
	assert.Equal(t, "230.00 EUR", v.Totals.VAT)
	assert.Equal(t, "1,230.00 EUR", v.Totals.Gross)
	assert.Equal(t, "5,146.07 PLN", v.Totals.GrossBase)
	assert.Equal(t, "4.1838", v.Totals.Rate)
	assert.Equal(t, "2025-03-13", v.Totals.RateDate)
}

func TestDocument_View_BaseCurrency(t *testing.T) {
	v := sampleDocument(currency.PLN).View(money.NewFormatter(language.English))

	assert.Empty(t, v.Totals.GrossBase)
	assert.Empty(t, v.Totals.Rate)
}

func TestDocument_Filename(t *testing.T) {
	assert.Equal(t, "FV-2025-03-7.pdf", sampleDocument(currency.PLN).Filename())
}

func TestHTML(t *testing.T) {
	html, err := render.HTML(sampleDocument(currency.EUR))
	require.NoError(t, err)

	page := string(html)
	assert.Contains(t, page, "Faktura VAT FV/2025/03/7")
	assert.Contains(t, page, "Wdrożenie")
	assert.Contains(t, page, "Jan Kowalski Software")
	assert.Contains(t, page, "Acme GmbH")
	assert.Contains(t, page, "Kurs średni NBP z 2025-03-13")
}

func TestHTML_EscapesUserText(t *testing.T) {
	doc := sampleDocument(currency.PLN)
	doc.Invoice.Items[0].Description = "<script>alert(1)</script>"

	html, err := render.HTML(doc)
	require.NoError(t, err)
	assert.NotContains(t, string(html), "<script>alert(1)</script>")
}

func TestFPDFRenderer(t *testing.T) {
	pdf, err := render.NewFPDFRenderer().Render(context.Background(), sampleDocument(currency.EUR))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
}
