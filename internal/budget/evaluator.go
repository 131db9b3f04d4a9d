// Package budget evaluates per-category monthly budgets in a chosen
// display currency, carrying surplus or deficit over from the previous
// month according to each budget's rollover mode.
package budget

import (
	"time"

	"github.com/shopspring/decimal"

	"bilancio/internal/core"
	"bilancio/internal/fx"
)

// Row is the evaluation of one budget category for the anchor month.
// Planned, Spent and Left are in the display currency; OriginalLimit
// keeps the raw limit string for display next to its own currency.
type Row struct {
	Category         string          `json:"category"`
	OriginalLimit    string          `json:"original_limit"`
	OriginalCurrency string          `json:"original_currency"`
	Planned          decimal.Decimal `json:"planned"`
	Spent            decimal.Decimal `json:"spent"`
	Left             decimal.Decimal `json:"left"`
	OverBudget       bool            `json:"over_budget"`
}

// prevStat is the previous-month planned/spent pair used for rollover.
type prevStat struct {
	planned decimal.Decimal
	spent   decimal.Decimal
}

type Evaluator struct {
	conv *fx.Converter
}

func NewEvaluator(conv *fx.Converter) *Evaluator {
	return &Evaluator{conv: conv}
}

// Evaluate computes one row per non-deleted budget, in budget snapshot
// order, for the calendar month containing anchor. Categories without a
// budget are not evaluated. The result is a pure function of the
// inputs: repeated calls with the same snapshot yield the same rows.
func (ev *Evaluator) Evaluate(expenses []core.Expense, budgets []core.Budget, displayCcy string, anchor time.Time) []Row {
	spent := ev.spentByCategory(expenses, displayCcy, anchor)
	prev := ev.prevMonthStats(expenses, budgets, displayCcy, anchor)

	rows := make([]Row, 0, len(budgets))
	for _, b := range budgets {
		if b.Deleted {
			continue
		}
		carry := computeRollover(b, prev)
		planned := ev.conv.Convert(b.MonthlyLimit, b.Currency, displayCcy).Add(carry)
		s := spent[b.Category]
		left := planned.Sub(s)
		rows = append(rows, Row{
			Category:         b.Category,
			OriginalLimit:    b.MonthlyLimit,
			OriginalCurrency: b.Currency,
			Planned:          planned,
			Spent:            s,
			Left:             left,
			OverBudget:       left.IsNegative(),
		})
	}
	return rows
}

// spentByCategory sums the anchor month's non-deleted expenses per
// category, converted to the display currency.
func (ev *Evaluator) spentByCategory(expenses []core.Expense, displayCcy string, anchor time.Time) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		if e.Deleted || !sameMonth(e.Timestamp, anchor) {
			continue
		}
		out[e.Category] = out[e.Category].Add(ev.conv.Convert(e.Amount, e.Currency, displayCcy))
	}
	return out
}

// prevMonthStats pairs each budget's planned amount with what was spent
// in its category during the month before anchor. Budget definitions
// have no history: the current limits stand in for last month's.
func (ev *Evaluator) prevMonthStats(expenses []core.Expense, budgets []core.Budget, displayCcy string, anchor time.Time) map[string]prevStat {
	out := make(map[string]prevStat, len(budgets))
	for _, b := range budgets {
		if b.Deleted {
			continue
		}
		out[b.Category] = prevStat{
			planned: ev.conv.Convert(b.MonthlyLimit, b.Currency, displayCcy),
			spent:   decimal.Zero,
		}
	}
	prevMonth := anchor.AddDate(0, -1, -anchor.Day()+1)
	for _, e := range expenses {
		if e.Deleted || !sameMonth(e.Timestamp, prevMonth) {
			continue
		}
		st, ok := out[e.Category]
		if !ok {
			continue
		}
		st.spent = st.spent.Add(ev.conv.Convert(e.Amount, e.Currency, displayCcy))
		out[e.Category] = st
	}
	return out
}

// computeRollover derives the carry from last month's planned-spent
// difference: NONE drops it, SURPLUS keeps only a positive difference,
// DEFICIT only a negative one, BOTH keeps it whole. A positive cap
// clamps the carry to [-cap, +cap]; zero means uncapped.
func computeRollover(b core.Budget, prev map[string]prevStat) decimal.Decimal {
	st, ok := prev[b.Category]
	if !ok {
		return decimal.Zero
	}
	diff := st.planned.Sub(st.spent)

	var carry decimal.Decimal
	switch core.NormalizeRollover(b.RolloverMode) {
	case core.RolloverSurplus:
		if diff.IsPositive() {
			carry = diff
		}
	case core.RolloverDeficit:
		if diff.IsNegative() {
			carry = diff
		}
	case core.RolloverBoth:
		carry = diff
	default:
		return decimal.Zero
	}

	limit := core.ParseAmount(b.RolloverCap)
	if limit.IsPositive() {
		if carry.GreaterThan(limit) {
			carry = limit
		}
		if carry.LessThan(limit.Neg()) {
			carry = limit.Neg()
		}
	}
	return carry
}

// sameMonth reports whether two instants fall in the same local
// calendar month.
func sameMonth(a, b time.Time) bool {
	ay, am, _ := a.Date()
	by, bm, _ := b.Date()
	return ay == by && am == bm
}
