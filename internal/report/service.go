// Package report derives the presentation-ready views from a snapshot:
// converted expense rows, budget and goal rows, aggregate series for
// charting, CSV export and the HTML report.
package report

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"bilancio/internal/budget"
	"bilancio/internal/core"
	"bilancio/internal/fx"
	"bilancio/internal/goals"
	"bilancio/internal/rules"
)

// ExpenseRow is one transaction converted to the display currency. The
// category is the explicit one when set, otherwise the rule engine's
// suggestion with Suggested true. OriginalAmount keeps the raw string,
// malformed input included.
type ExpenseRow struct {
	Timestamp        time.Time       `json:"ts"`
	Payer            string          `json:"payer"`
	Category         string          `json:"category"`
	Suggested        bool            `json:"suggested,omitempty"`
	AmountInDisplay  decimal.Decimal `json:"amount_display"`
	OriginalAmount   string          `json:"amount_original"`
	OriginalCurrency string          `json:"currency"`
	Note             string          `json:"note"`
}

// CategoryTotal is one slice of the current-month category aggregate.
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// MonthTotal is one bucket of the trailing-months aggregate. Month is
// "YYYY-MM".
type MonthTotal struct {
	Month string          `json:"month"`
	Total decimal.Decimal `json:"total"`
}

// Service recomputes every view from the latest snapshot plus a
// display currency. It retains nothing between calls.
type Service struct {
	base        string
	trendMonths int
}

// NewService takes the base currency and the number of months the
// monthly series covers by default.
func NewService(baseCurrency string, trendMonths int) *Service {
	if trendMonths <= 0 {
		trendMonths = 6
	}
	return &Service{base: core.NormalizeCurrency(baseCurrency), trendMonths: trendMonths}
}

func (s *Service) converter(snap *core.Snapshot) *fx.Converter {
	return fx.NewConverter(s.base, snap.FxRates)
}

// ExpenseRows converts every non-deleted expense to the display
// currency, filling in a suggested category where the record has none.
func (s *Service) ExpenseRows(snap *core.Snapshot, displayCcy string) []ExpenseRow {
	conv := s.converter(snap)
	engine := rules.NewEngine(snap.Rules)

	rows := make([]ExpenseRow, 0, len(snap.Expenses))
	for _, e := range snap.Expenses {
		if e.Deleted {
			continue
		}
		cat, suggested := e.Category, false
		if cat == "" {
			if c, ok := engine.Classify(e.Note, e.Payer); ok {
				cat, suggested = c, true
			}
		}
		rows = append(rows, ExpenseRow{
			Timestamp:        e.Timestamp,
			Payer:            e.Payer,
			Category:         cat,
			Suggested:        suggested,
			AmountInDisplay:  conv.Convert(e.Amount, e.Currency, displayCcy),
			OriginalAmount:   e.Amount,
			OriginalCurrency: e.Currency,
			Note:             e.Note,
		})
	}
	return rows
}

// BudgetRows evaluates every budget for the anchor month.
func (s *Service) BudgetRows(snap *core.Snapshot, displayCcy string, anchor time.Time) []budget.Row {
	ev := budget.NewEvaluator(s.converter(snap))
	return ev.Evaluate(snap.Expenses, snap.Budgets, displayCcy, anchor)
}

// GoalRows computes progress for every goal.
func (s *Service) GoalRows(snap *core.Snapshot, displayCcy string) []goals.Row {
	tr := goals.NewTracker(s.converter(snap))
	return tr.Progress(snap.Goals, snap.Expenses, displayCcy)
}

// CategorySeries sums the anchor month's expenses per category in the
// display currency, in first-seen category order.
func (s *Service) CategorySeries(snap *core.Snapshot, displayCcy string, anchor time.Time) []CategoryTotal {
	conv := s.converter(snap)
	totals := make(map[string]decimal.Decimal)
	var order []string
	for _, e := range snap.Expenses {
		if e.Deleted || !sameMonth(e.Timestamp, anchor) {
			continue
		}
		if _, seen := totals[e.Category]; !seen {
			order = append(order, e.Category)
		}
		totals[e.Category] = totals[e.Category].Add(conv.Convert(e.Amount, e.Currency, displayCcy))
	}
	out := make([]CategoryTotal, 0, len(order))
	for _, cat := range order {
		out = append(out, CategoryTotal{Category: cat, Total: totals[cat]})
	}
	return out
}

// MonthlySeries sums all expenses per calendar month for the n months
// ending at anchor's month, oldest first. Empty months report zero.
func (s *Service) MonthlySeries(snap *core.Snapshot, displayCcy string, anchor time.Time, n int) []MonthTotal {
	if n <= 0 {
		n = s.trendMonths
	}
	conv := s.converter(snap)

	totals := make(map[string]decimal.Decimal)
	for _, e := range snap.Expenses {
		if e.Deleted {
			continue
		}
		k := monthKey(e.Timestamp)
		totals[k] = totals[k].Add(conv.Convert(e.Amount, e.Currency, displayCcy))
	}

	out := make([]MonthTotal, 0, n)
	for i := n - 1; i >= 0; i-- {
		m := anchor.AddDate(0, -i, -anchor.Day()+1)
		k := monthKey(m)
		out = append(out, MonthTotal{Month: k, Total: totals[k]})
	}
	return out
}

// TrendMonths returns the default span of the monthly series.
func (s *Service) TrendMonths() int {
	return s.trendMonths
}

func monthKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

func sameMonth(a, b time.Time) bool {
	ay, am, _ := a.Date()
	by, bm, _ := b.Date()
	return ay == by && am == bm
}
