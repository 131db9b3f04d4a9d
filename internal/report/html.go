package report

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"bilancio/internal/core"
)

// The report mirrors the CSV fields as a table and adds the three
// aggregate views as plain tables. No chart drawing happens here; the
// series are the charting data.
const reportTemplate = `<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>Budget report</title>
<style>
body{font-family:system-ui,sans-serif;margin:20px;color:#222}
h1{margin:0 0 8px} h2{margin:16px 0 6px}
table{border-collapse:collapse;width:100%;margin-bottom:12px}
th,td{border:1px solid #ddd;padding:6px;text-align:left}
.warn{color:#b00}
</style>
</head>
<body>
<h1>Budget report &ndash; {{.Generated}} ({{.Display}})</h1>

<h2>Expenses (current month)</h2>
<table>
<thead><tr><th>Date</th><th>Payer</th><th>Category</th><th>Amount ({{.Display}})</th><th>Original</th><th>Note</th></tr></thead>
<tbody>
{{range .Expenses}}<tr><td>{{.Date}}</td><td>{{.Payer}}</td><td>{{.Category}}</td><td>{{.Amount}}</td><td>{{.Original}}</td><td>{{.Note}}</td></tr>
{{end}}</tbody>
</table>

<h2>Spending by category (current month)</h2>
<table>
<thead><tr><th>Category</th><th>Total ({{.Display}})</th></tr></thead>
<tbody>
{{range .Categories}}<tr><td>{{.Category}}</td><td>{{.Total}}</td></tr>
{{end}}</tbody>
</table>

<h2>Monthly totals</h2>
<table>
<thead><tr><th>Month</th><th>Total ({{.Display}})</th></tr></thead>
<tbody>
{{range .Months}}<tr><td>{{.Month}}</td><td>{{.Total}}</td></tr>
{{end}}</tbody>
</table>

<h2>Budgets</h2>
<table>
<thead><tr><th>Category</th><th>Planned ({{.Display}})</th><th>Spent ({{.Display}})</th><th>Left ({{.Display}})</th></tr></thead>
<tbody>
{{range .Budgets}}<tr><td>{{.Category}}</td><td>{{.Planned}}</td><td>{{.Spent}}</td><td{{if .Over}} class="warn"{{end}}>{{.Left}}</td></tr>
{{end}}</tbody>
</table>
</body>
</html>
`

var reportTmpl = template.Must(template.New("report").Parse(reportTemplate))

type reportExpense struct {
	Date     string
	Payer    string
	Category string
	Amount   string
	Original string
	Note     string
}

type reportBudget struct {
	Category string
	Planned  string
	Spent    string
	Left     string
	Over     bool
}

type reportData struct {
	Generated  string
	Display    string
	Expenses   []reportExpense
	Categories []CategoryTotal
	Months     []MonthTotal
	Budgets    []reportBudget
}

// WriteHTMLReport renders the anchor month's expenses alongside the
// aggregate series and budget evaluation.
func (s *Service) WriteHTMLReport(w io.Writer, snap *core.Snapshot, displayCcy string, anchor time.Time) error {
	display := core.NormalizeCurrency(displayCcy)
	data := reportData{
		Generated:  anchor.Format("2006-01-02 15:04"),
		Display:    display,
		Categories: s.CategorySeries(snap, displayCcy, anchor),
		Months:     s.MonthlySeries(snap, displayCcy, anchor, 0),
	}
	for _, r := range s.ExpenseRows(snap, displayCcy) {
		if !sameMonth(r.Timestamp, anchor) {
			continue
		}
		data.Expenses = append(data.Expenses, reportExpense{
			Date:     r.Timestamp.Format("2006-01-02 15:04"),
			Payer:    r.Payer,
			Category: r.Category,
			Amount:   r.AmountInDisplay.StringFixed(2),
			Original: r.OriginalAmount + " " + r.OriginalCurrency,
			Note:     r.Note,
		})
	}
	for _, b := range s.BudgetRows(snap, displayCcy, anchor) {
		data.Budgets = append(data.Budgets, reportBudget{
			Category: b.Category,
			Planned:  b.Planned.StringFixed(2),
			Spent:    b.Spent.StringFixed(2),
			Left:     b.Left.StringFixed(2),
			Over:     b.OverBudget,
		})
	}
	if err := reportTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}
