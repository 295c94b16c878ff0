package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/MrJamesThe3rd/billable/internal/money"
)

// FPDFRenderer draws a plain invoice layout without a browser. The core PDF
// fonts have no Polish glyphs, so text is reduced to ASCII.
type FPDFRenderer struct{}

func NewFPDFRenderer() *FPDFRenderer {
	return &FPDFRenderer{}
}

var strokes = strings.NewReplacer("ł", "l", "Ł", "L", "\u00a0", " ", "\u202f", " ")

// ascii strips diacritics: "Wdrożenie, łącze" becomes "Wdrozenie, lacze".
func ascii(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	out, _, err := transform.String(t, strokes.Replace(s))
	if err != nil {
		return s
	}

	return out
}

func (r *FPDFRenderer) Render(_ context.Context, doc *Document) ([]byte, error) {
	v := doc.View(money.NewFormatter(money.Polish))

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(ascii("Faktura "+v.Number), false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, ascii("Faktura VAT "+v.Number))
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)

	for _, row := range [][2]string{
		{"Data wystawienia", v.IssueDate},
		{"Data sprzedaży", v.SaleDate},
		{"Termin płatności", v.DueDate},
	} {
		pdf.Cell(40, 5, ascii(row[0]))
		pdf.Cell(40, 5, row[1])
		pdf.Ln(5)
	}

	pdf.Ln(6)

	top := pdf.GetY()

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(95, 6, "Sprzedawca")
	pdf.Cell(95, 6, "Nabywca")
	pdf.Ln(6)
	pdf.SetFont("Arial", "", 10)

	if s := v.Seller; s != nil {
		pdf.SetXY(10, top+6)
		pdf.MultiCell(90, 5, ascii(fmt.Sprintf("%s\nNIP: %s\n%s\n%s %s\n%s", s.Name, s.NIP, s.Street, s.PostalCode, s.City, s.BankAccount)), "", "L", false)
	}

	leftEnd := pdf.GetY()

	if b := v.Buyer; b != nil {
		pdf.SetXY(105, top+6)
		pdf.MultiCell(90, 5, ascii(fmt.Sprintf("%s\nNIP: %s\n%s\n%s %s", b.Name, b.NIP, b.Address.Street, b.Address.PostalCode, b.Address.City)), "", "L", false)
	}

	pdf.SetXY(10, max(leftEnd, pdf.GetY())+8)

	widths := []float64{10, 90, 25, 30, 35}

	pdf.SetFont("Arial", "B", 10)

	for i, h := range []string{"Lp.", "Nazwa", "Ilosc", "Cena netto", "Wartosc netto"} {
		align := "R"
		if i < 2 {
			align = "L"
		}

		pdf.CellFormat(widths[i], 7, h, "B", 0, align, false, 0, "")
	}

	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)

	for _, l := range v.Lines {
		pdf.CellFormat(widths[0], 6, fmt.Sprint(l.Position), "", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, ascii(l.Description), "", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, l.Quantity, "", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 6, ascii(l.UnitPrice), "", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 6, ascii(l.Net), "", 1, "R", false, 0, "")
	}

	pdf.Ln(4)

	totals := [][2]string{
		{"Razem netto", v.Totals.Net},
		{"VAT " + v.VATRate, v.Totals.VAT},
		{"Do zaplaty", v.Totals.Gross},
	}

	if v.Totals.GrossBase != "" {
		totals = append(totals,
			[2]string{"Kurs NBP z " + v.Totals.RateDate, v.Totals.Rate},
			[2]string{"Razem brutto w PLN", v.Totals.GrossBase},
		)
	}

	for _, t := range totals {
		pdf.CellFormat(155, 6, ascii(t[0]), "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, ascii(t[1]), "", 1, "R", false, 0, "")
	}

	if v.Notes != "" {
		pdf.Ln(8)
		pdf.MultiCell(0, 5, ascii(v.Notes), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}

	return buf.Bytes(), nil
}
