package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/MrJamesThe3rd/billable/internal/money"
)

//go:embed templates/invoice.html
var templates embed.FS

var invoiceTemplate = template.Must(template.ParseFS(templates, "templates/invoice.html"))

// HTML renders the printable page of a document with Polish number formatting.
func HTML(doc *Document) ([]byte, error) {
	var buf bytes.Buffer

	if err := invoiceTemplate.Execute(&buf, doc.View(money.NewFormatter(money.Polish))); err != nil {
		return nil, fmt.Errorf("executing invoice template: %w", err)
	}

	return buf.Bytes(), nil
}
