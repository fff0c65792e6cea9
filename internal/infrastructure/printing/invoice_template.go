package printing

import (
	"bytes"
	"html/template"
	"strings"
	"time"
	"unicode"

	"github.com/rentledger/backend/internal/domain/invoicing"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const invoiceHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Invoice {{.InvoiceNumber}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; font-size: 12px; color: #222; margin: 0; }
h1 { font-size: 22px; margin: 0 0 4px 0; }
.muted { color: #666; }
.header, .parties { display: flex; justify-content: space-between; margin-bottom: 18px; }
.status { font-weight: bold; text-transform: uppercase; }
table { width: 100%; border-collapse: collapse; margin-bottom: 14px; }
th, td { padding: 6px 8px; border-bottom: 1px solid #ddd; text-align: left; }
td.amount, th.amount { text-align: right; }
tfoot td { font-weight: bold; border-bottom: none; }
.pay { border: 1px solid #ddd; padding: 8px; }
</style>
</head>
<body>
<div class="header">
  <div>
    <h1>{{.PropertyName}}</h1>
    {{with .PropertyAddress}}<div class="muted">{{.}}</div>{{end}}
    {{with .Landlord.Name}}<div class="muted">Landlord: {{.}}</div>{{end}}
  </div>
  <div>
    <div>Invoice <strong>{{.InvoiceNumber}}</strong></div>
    <div>Period: {{.Period}}</div>
    <div>Issued: {{date .IssueDate}}</div>
    {{with .DueDate}}<div>Due: {{date .}}</div>{{end}}
    <div class="status">{{status .Status}}</div>
  </div>
</div>
<div class="parties">
  <div>
    <div class="muted">Billed to</div>
    <div><strong>{{.TenantName}}</strong></div>
    <div>Unit {{.UnitID}}</div>
    {{with .TenantPhone}}<div>{{.}}</div>{{end}}
    {{with .TenantEmail}}<div>{{.}}</div>{{end}}
  </div>
</div>
<table>
  <thead><tr><th>Item</th><th>Detail</th><th class="amount">Amount</th></tr></thead>
  <tbody>
  {{range .LineItems}}
    <tr>
      <td>{{.Label}}</td>
      <td>{{with .Usage}}{{num .PreviousReading}} to {{num .CurrentReading}} ({{num .Units}} units at {{money .Rate}}){{end}}</td>
      <td class="amount">{{money .Amount}}</td>
    </tr>
  {{end}}
  </tbody>
  <tfoot>
    <tr><td colspan="2">Total due</td><td class="amount">{{money .TotalDue}}</td></tr>
    <tr><td colspan="2">Paid</td><td class="amount">{{money .AmountPaid}}</td></tr>
    <tr><td colspan="2">Balance</td><td class="amount">{{money .Balance}}</td></tr>
    {{if .Overpayment.IsPositive}}<tr><td colspan="2">Credit carried forward</td><td class="amount">{{money .Overpayment}}</td></tr>{{end}}
  </tfoot>
</table>
{{if .Payment.AccountNumber}}
<div class="pay">
  <div><strong>Payment details</strong></div>
  {{with .Payment.Bank}}<div>Bank: {{.}}</div>{{end}}
  {{with .Payment.AccountName}}<div>Account name: {{.}}</div>{{end}}
  <div>Account number: {{.Payment.AccountNumber}}</div>
</div>
{{end}}
</body>
</html>`

// InvoiceTemplate renders invoice documents to standalone HTML with amounts
// formatted for a currency and locale
type InvoiceTemplate struct {
	tmpl    *template.Template
	printer *message.Printer
	symbol  string
}

// NewInvoiceTemplate parses the invoice layout. An unknown locale falls back
// to English and an unknown currency code is printed as given.
func NewInvoiceTemplate(currencyCode, locale string) (*InvoiceTemplate, error) {
	tag, err := language.Parse(locale)
	if err != nil || locale == "" {
		tag = language.English
	}
	t := &InvoiceTemplate{
		printer: message.NewPrinter(tag),
		symbol:  strings.ToUpper(strings.TrimSpace(currencyCode)),
	}
	if unit, err := currency.ParseISO(t.symbol); err == nil {
		t.symbol = unit.String()
	}

	tmpl, err := template.New("invoice").Funcs(template.FuncMap{
		"money":  t.formatMoney,
		"num":    t.formatNumber,
		"date":   formatDate,
		"status": statusLabel,
	}).Parse(invoiceHTML)
	if err != nil {
		return nil, renderErr(ErrInvalidHTML, "failed to parse invoice template", err)
	}
	t.tmpl = tmpl
	return t, nil
}

// Render executes the template for one invoice
func (t *InvoiceTemplate) Render(doc invoicing.Document) (string, error) {
	if doc.InvoiceNumber == "" {
		return "", renderErr(ErrInvalidInvoice, "invoice number is empty", nil)
	}
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, doc); err != nil {
		return "", renderErr(ErrRenderFailed, "failed to execute invoice template", err)
	}
	return buf.String(), nil
}

// formatMoney prints an amount with two decimals and the currency code,
// e.g. "KES 10,700.00"
func (t *InvoiceTemplate) formatMoney(d decimal.Decimal) string {
	amount := t.printer.Sprint(number.Decimal(d.InexactFloat64(), number.Scale(2)))
	if t.symbol == "" {
		return amount
	}
	return t.symbol + " " + amount
}

func (t *InvoiceTemplate) formatNumber(d decimal.Decimal) string {
	return t.printer.Sprint(number.Decimal(d.InexactFloat64(), number.MaxFractionDigits(2)))
}

func formatDate(v any) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Format("02 Jan 2006")
	case *time.Time:
		if t == nil {
			return ""
		}
		return formatDate(*t)
	}
	return ""
}

// statusLabel splits a status into words: PartiallyPaid becomes "Partially Paid"
func statusLabel(s invoicing.InvoiceStatus) string {
	var b strings.Builder
	for i, r := range s.String() {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}
