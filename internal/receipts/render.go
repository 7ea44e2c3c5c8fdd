package receipts

import (
	"bytes"
	"html/template"
	"strings"
	"unicode/utf8"
)

var divider = strings.Repeat("-", Width)

func renderText(v view) string {
	var b strings.Builder
	writeLine := func(s string) {
		b.WriteString(s)
		b.WriteByte('\n')
	}

	writeLine(center(v.Store.Name))
	for _, line := range v.Store.AddressLines {
		writeLine(center(line))
	}
	if v.Store.Phone != "" {
		writeLine(center(v.Store.Phone))
	}
	writeLine(divider)
	writeLine("Receipt: " + v.Receipt)
	writeLine("Date: " + v.Date)
	if v.Cashier != "" {
		writeLine("Cashier: " + v.Cashier)
	}
	if v.Customer != "" {
		writeLine("Customer: " + v.Customer)
	}
	writeLine(divider)
	for _, item := range v.Items {
		writeLine(justify(item.Name, item.Total))
		writeLine("  " + item.Detail)
	}
	writeLine(divider)
	for _, r := range v.Totals {
		writeLine(justify(r.Label, r.Value))
	}
	writeLine(divider)
	for _, r := range v.Payment {
		writeLine(justify(r.Label, r.Value))
	}
	if len(v.Loyalty) > 0 {
		writeLine(divider)
		writeLine(center("Loyalty"))
		for _, r := range v.Loyalty {
			writeLine(justify(r.Label, r.Value))
		}
	}
	if v.Footer != "" {
		writeLine(divider)
		writeLine(center(v.Footer))
	}
	return b.String()
}

// justify places label on the left and value on the right of a Width-column line.
func justify(label, value string) string {
	gap := Width - utf8.RuneCountInString(label) - utf8.RuneCountInString(value)
	if gap < 1 {
		gap = 1
	}
	return label + strings.Repeat(" ", gap) + value
}

func center(s string) string {
	n := utf8.RuneCountInString(s)
	if n >= Width {
		return s
	}
	return strings.Repeat(" ", (Width-n)/2) + s
}

var htmlReceipt = template.Must(template.New("receipt").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Receipt {{.Receipt}}</title>
<style>
body { font-family: monospace; width: 320px; margin: 0 auto; }
.center { text-align: center; }
table { width: 100%; border-collapse: collapse; }
td.amount { text-align: right; }
hr { border: 0; border-top: 1px dashed #000; }
</style>
</head>
<body>
<div class="center">
<h2>{{.Store.Name}}</h2>
{{range .Store.AddressLines}}<div>{{.}}</div>
{{end}}{{if .Store.Phone}}<div>{{.Store.Phone}}</div>
{{end}}</div>
<hr>
<div>Receipt: {{.Receipt}}</div>
<div>Date: {{.Date}}</div>
{{if .Cashier}}<div>Cashier: {{.Cashier}}</div>
{{end}}{{if .Customer}}<div class="customer">Customer: {{.Customer}}</div>
{{end}}<hr>
<table class="items">
{{range .Items}}<tr><td>{{.Name}}<br><small>{{.Detail}}</small></td><td class="amount">{{.Total}}</td></tr>
{{end}}</table>
<hr>
<table class="totals">
{{range .Totals}}<tr><td>{{.Label}}</td><td class="amount">{{.Value}}</td></tr>
{{end}}</table>
<hr>
<table class="payment">
{{range .Payment}}<tr><td>{{.Label}}</td><td class="amount">{{.Value}}</td></tr>
{{end}}</table>
{{if .Loyalty}}<hr>
<table class="loyalty">
{{range .Loyalty}}<tr><td>{{.Label}}</td><td class="amount">{{.Value}}</td></tr>
{{end}}</table>
{{end}}{{if .Footer}}<hr>
<p class="center">{{.Footer}}</p>
{{end}}</body>
</html>
`))

func renderHTML(v view) (string, error) {
	var buf bytes.Buffer
	if err := htmlReceipt.Execute(&buf, v); err != nil {
		return "", err
	}
	return buf.String(), nil
}
