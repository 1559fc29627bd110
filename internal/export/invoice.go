// Package export renders persisted invoices into printable documents.
package export

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"

	"crm-console/internal/core"

	"github.com/shopspring/decimal"
)

//go:embed invoice.html.tmpl
var invoiceTemplate string

var invoiceTmpl = template.Must(template.New("invoice").Funcs(template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
}).Parse(invoiceTemplate))

// RenderInvoice produces a self-contained HTML document for an invoice.
// Amounts are fixed to two decimal places here and nowhere earlier; the
// stored decimals stay exact.
func RenderInvoice(inv *core.Invoice) ([]byte, error) {
	var buf bytes.Buffer
	if err := invoiceTmpl.Execute(&buf, inv); err != nil {
		return nil, fmt.Errorf("failed to render invoice %s: %w", inv.InvoiceNumber, err)
	}
	return buf.Bytes(), nil
}
