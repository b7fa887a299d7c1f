// src/report/renderer.go
package report

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/username/ledgerflow/src/models"
)

// RenderOptions carries the header block text. Both fields are escaped by the
// template engine, so broker-supplied strings are safe to pass through.
type RenderOptions struct {
	Title    string
	Subtitle string
}

var moneyFormat = func(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}

var reportTemplate = template.Must(template.New("cashflow").Funcs(template.FuncMap{
	"money": moneyFormat,
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: "Helvetica Neue", Arial, sans-serif; color: #1a1a1a; margin: 40px; }
  h1 { font-size: 20px; margin-bottom: 2px; }
  h2 { font-size: 13px; font-weight: normal; color: #555; margin-top: 0; }
  table { border-collapse: collapse; width: 100%; margin-top: 24px; }
  th, td { border: 1px solid #ccc; padding: 6px 10px; font-size: 12px; }
  th { background: #f0f0f0; text-align: left; }
  td.num, th.num { text-align: right; font-variant-numeric: tabular-nums; }
  tfoot td { font-weight: bold; background: #fafafa; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<h2>{{.Subtitle}}</h2>
<table>
<thead>
<tr><th>Month</th><th class="num">Deposit</th><th class="num">Withdraw</th><th class="num">Dividends</th></tr>
</thead>
<tbody>
{{range .Summary.Months -}}
<tr><td>{{.MonthLabel}}</td><td class="num">{{money .Deposit}}</td><td class="num">{{money .Withdraw}}</td><td class="num">{{money .Dividends}}</td></tr>
{{end -}}
</tbody>
<tfoot>
<tr><td>{{.Summary.Totals.MonthLabel}}</td><td class="num">{{money .Summary.Totals.Deposit}}</td><td class="num">{{money .Summary.Totals.Withdraw}}</td><td class="num">{{money .Summary.Totals.Dividends}}</td></tr>
</tfoot>
</table>
</body>
</html>
`))

// RenderHTML turns a cashflow summary into the self-contained markup document
// the rasterization service consumes.
func RenderHTML(summary models.CashflowSummary, opts RenderOptions) (string, error) {
	var buf strings.Builder
	err := reportTemplate.Execute(&buf, struct {
		Title    string
		Subtitle string
		Summary  models.CashflowSummary
	}{opts.Title, opts.Subtitle, summary})
	if err != nil {
		return "", fmt.Errorf("failed to render report markup: %w", err)
	}
	return buf.String(), nil
}
