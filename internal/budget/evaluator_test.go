package budget

import (
	"testing"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/fx"
)

var anchor = time.Date(2025, 6, 15, 12, 0, 0, 0, time.Local)

func eurConverter(rates ...core.FxRate) *fx.Converter {
	return fx.NewConverter("EUR", rates)
}

func thisMonth(day int) time.Time {
	return time.Date(2025, 6, day, 10, 0, 0, 0, time.Local)
}

func prevMonth(day int) time.Time {
	return time.Date(2025, 5, day, 10, 0, 0, 0, time.Local)
}

func TestEvaluateSpentAndLeft(t *testing.T) {
	ev := NewEvaluator(eurConverter())
	expenses := []core.Expense{
		{Payer: "a", Category: "Food", Amount: "40", Currency: "EUR", Timestamp: thisMonth(2)},
		{Payer: "a", Category: "Food", Amount: "25.50", Currency: "EUR", Timestamp: thisMonth(10)},
		{Payer: "a", Category: "Transport", Amount: "12", Currency: "EUR", Timestamp: thisMonth(3)},
		// Outside the anchor month: ignored.
		{Payer: "a", Category: "Food", Amount: "99", Currency: "EUR", Timestamp: prevMonth(20)},
		// Soft-deleted: ignored.
		{Payer: "a", Category: "Food", Amount: "500", Currency: "EUR", Timestamp: thisMonth(5), Deleted: true},
	}
	budgets := []core.Budget{
		{Category: "Food", MonthlyLimit: "100", Currency: "EUR", RolloverMode: core.RolloverNone},
	}

	rows := ev.Evaluate(expenses, budgets, "EUR", anchor)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	r := rows[0]
	if r.Spent.StringFixed(2) != "65.50" {
		t.Errorf("Spent = %s, want 65.50", r.Spent)
	}
	if r.Planned.StringFixed(2) != "100.00" {
		t.Errorf("Planned = %s, want 100.00", r.Planned)
	}
	if r.Left.StringFixed(2) != "34.50" {
		t.Errorf("Left = %s, want 34.50", r.Left)
	}
	if r.OverBudget {
		t.Error("OverBudget = true for a budget with room left")
	}
}

func TestEvaluateOverBudget(t *testing.T) {
	ev := NewEvaluator(eurConverter())
	expenses := []core.Expense{
		{Payer: "a", Category: "Food", Amount: "150", Currency: "EUR", Timestamp: thisMonth(1)},
	}
	budgets := []core.Budget{
		{Category: "Food", MonthlyLimit: "100", Currency: "EUR"},
	}

	rows := ev.Evaluate(expenses, budgets, "EUR", anchor)
	if !rows[0].OverBudget {
		t.Error("OverBudget = false, want true")
	}
	if rows[0].Left.StringFixed(2) != "-50.00" {
		t.Errorf("Left = %s, want -50.00", rows[0].Left)
	}
}

func TestEvaluateNoExpensesReportsZeroSpent(t *testing.T) {
	ev := NewEvaluator(eurConverter())
	budgets := []core.Budget{
		{Category: "Hobbies", MonthlyLimit: "50", Currency: "EUR"},
	}
	rows := ev.Evaluate(nil, budgets, "EUR", anchor)
	if !rows[0].Spent.IsZero() {
		t.Errorf("Spent = %s, want 0", rows[0].Spent)
	}
}

func TestEvaluateSkipsDeletedBudgets(t *testing.T) {
	ev := NewEvaluator(eurConverter())
	budgets := []core.Budget{
		{Category: "Food", MonthlyLimit: "100", Currency: "EUR", Deleted: true},
	}
	if rows := ev.Evaluate(nil, budgets, "EUR", anchor); len(rows) != 0 {
		t.Fatalf("got %d rows for a deleted budget, want 0", len(rows))
	}
}

// Rollover table from a previous month with planned 100 and spent 60.
func TestComputeRolloverModes(t *testing.T) {
	ev := NewEvaluator(eurConverter())
	expenses := []core.Expense{
		{Payer: "a", Category: "Food", Amount: "60", Currency: "EUR", Timestamp: prevMonth(10)},
	}

	tests := []struct {
		name  string
		mode  core.RolloverMode
		cap   string
		carry string // expected planned = 100 + carry
	}{
		{"none", core.RolloverNone, "0", "100.00"},
		{"surplus", core.RolloverSurplus, "0", "140.00"},
		{"deficit", core.RolloverDeficit, "0", "100.00"},
		{"both", core.RolloverBoth, "0", "140.00"},
		{"surplus capped", core.RolloverSurplus, "20", "120.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			budgets := []core.Budget{{
				Category:     "Food",
				MonthlyLimit: "100",
				Currency:     "EUR",
				RolloverMode: tt.mode,
				RolloverCap:  tt.cap,
			}}
			rows := ev.Evaluate(expenses, budgets, "EUR", anchor)
			if got := rows[0].Planned.StringFixed(2); got != tt.carry {
				t.Errorf("Planned = %s, want %s", got, tt.carry)
			}
		})
	}
}

func TestComputeRolloverDeficitCarriesNegative(t *testing.T) {
	ev := NewEvaluator(eurConverter())
	// Previous month overspent by 70: planned 100, spent 170.
	expenses := []core.Expense{
		{Payer: "a", Category: "Food", Amount: "170", Currency: "EUR", Timestamp: prevMonth(5)},
	}

	budgets := []core.Budget{{
		Category: "Food", MonthlyLimit: "100", Currency: "EUR",
		RolloverMode: core.RolloverDeficit,
	}}
	rows := ev.Evaluate(expenses, budgets, "EUR", anchor)
	if got := rows[0].Planned.StringFixed(2); got != "30.00" {
		t.Errorf("Planned = %s, want 30.00", got)
	}

	// Negative carry clamps at -cap.
	budgets[0].RolloverCap = "50"
	rows = ev.Evaluate(expenses, budgets, "EUR", anchor)
	if got := rows[0].Planned.StringFixed(2); got != "50.00" {
		t.Errorf("Planned with cap = %s, want 50.00", got)
	}
}

func TestEvaluateConvertsToDisplayCurrency(t *testing.T) {
	// USD at 1.1 per base; conversion is amount * rateFrom / rateTo.
	ev := NewEvaluator(eurConverter(core.FxRate{Code: "USD", PerBase: "1.1"}))
	expenses := []core.Expense{
		{Payer: "a", Category: "Food", Amount: "100", Currency: "USD", Timestamp: thisMonth(4)},
	}
	budgets := []core.Budget{
		{Category: "Food", MonthlyLimit: "200", Currency: "EUR"},
	}

	rows := ev.Evaluate(expenses, budgets, "EUR", anchor)
	if got := rows[0].Spent.StringFixed(2); got != "110.00" {
		t.Errorf("Spent = %s, want 110.00", got)
	}

	// Idempotence: same snapshot, same result.
	again := ev.Evaluate(expenses, budgets, "EUR", anchor)
	if !again[0].Spent.Equal(rows[0].Spent) || !again[0].Planned.Equal(rows[0].Planned) {
		t.Error("repeated evaluation differs for identical inputs")
	}
}

func TestEvaluateMonthBoundaries(t *testing.T) {
	ev := NewEvaluator(eurConverter())
	// January anchor: previous month is December of the prior year.
	jan := time.Date(2025, 1, 20, 0, 0, 0, 0, time.Local)
	expenses := []core.Expense{
		{Payer: "a", Category: "Food", Amount: "30", Currency: "EUR", Timestamp: time.Date(2024, 12, 31, 23, 0, 0, 0, time.Local)},
	}
	budgets := []core.Budget{{
		Category: "Food", MonthlyLimit: "100", Currency: "EUR",
		RolloverMode: core.RolloverBoth,
	}}
	rows := ev.Evaluate(expenses, budgets, "EUR", jan)
	// carry = 100 - 30 = 70
	if got := rows[0].Planned.StringFixed(2); got != "170.00" {
		t.Errorf("Planned = %s, want 170.00", got)
	}
}
