package report

import (
	"reflect"
	"testing"
	"time"

	"bilancio/internal/core"
)

var anchor = time.Date(2025, 6, 15, 12, 0, 0, 0, time.Local)

func testSnapshot() *core.Snapshot {
	return &core.Snapshot{
		Expenses: []core.Expense{
			{ID: "e1", Payer: "alice", Category: "Food", Amount: "100", Currency: "USD",
				Note: "groceries", Timestamp: time.Date(2025, 6, 2, 10, 0, 0, 0, time.Local)},
			{ID: "e2", Payer: "bob", Amount: "20", Currency: "EUR",
				Note: "taxi home", Timestamp: time.Date(2025, 6, 3, 22, 0, 0, 0, time.Local)},
			{ID: "e3", Payer: "alice", Category: "Food", Amount: "30", Currency: "EUR",
				Note: "market", Timestamp: time.Date(2025, 5, 20, 9, 0, 0, 0, time.Local)},
			{ID: "e4", Payer: "mallory", Category: "Food", Amount: "999", Currency: "EUR",
				Note: "gone", Timestamp: time.Date(2025, 6, 4, 9, 0, 0, 0, time.Local), Deleted: true},
		},
		Budgets: []core.Budget{
			{ID: "b1", Category: "Food", MonthlyLimit: "200", Currency: "EUR"},
		},
		FxRates: []core.FxRate{
			{Code: "USD", PerBase: "1.1"},
		},
		Rules: []core.Rule{
			{ID: "r1", Name: "taxi", Kind: core.KindSubstring, Pattern: "taxi", Category: "Transport", Active: true},
		},
		Goals: []core.Goal{
			{ID: "g1", Name: "Vacation", Target: "200", Currency: "EUR"},
		},
	}
}

func TestExpenseRows(t *testing.T) {
	s := NewService("EUR", 6)
	rows := s.ExpenseRows(testSnapshot(), "EUR")

	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3 (deleted excluded)", len(rows))
	}
	// USD expense converted with the per-base ratio.
	if got := rows[0].AmountInDisplay.StringFixed(2); got != "110.00" {
		t.Errorf("row 0 amount = %s, want 110.00", got)
	}
	if rows[0].Suggested {
		t.Error("explicit category flagged as suggested")
	}
	// Uncategorized row picks up the rule suggestion.
	if rows[1].Category != "Transport" || !rows[1].Suggested {
		t.Errorf("row 1 = %q suggested=%v, want Transport suggested", rows[1].Category, rows[1].Suggested)
	}
	// Original amount and currency preserved.
	if rows[0].OriginalAmount != "100" || rows[0].OriginalCurrency != "USD" {
		t.Errorf("row 0 original = %s %s", rows[0].OriginalAmount, rows[0].OriginalCurrency)
	}
}

func TestExpenseRowsIdempotent(t *testing.T) {
	s := NewService("EUR", 6)
	snap := testSnapshot()
	first := s.ExpenseRows(snap, "EUR")
	second := s.ExpenseRows(snap, "EUR")
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated computation over the same snapshot differs")
	}
}

func TestBudgetRowsEndToEnd(t *testing.T) {
	s := NewService("EUR", 6)
	rows := s.BudgetRows(testSnapshot(), "EUR", anchor)
	if len(rows) != 1 {
		t.Fatalf("got %d budget rows, want 1", len(rows))
	}
	// Spent: 100 USD -> 110 EUR; the uncategorized taxi is not Food;
	// the deleted expense is excluded.
	if got := rows[0].Spent.StringFixed(2); got != "110.00" {
		t.Errorf("Spent = %s, want 110.00", got)
	}
}

func TestCategorySeries(t *testing.T) {
	s := NewService("EUR", 6)
	series := s.CategorySeries(testSnapshot(), "EUR", anchor)
	if len(series) != 2 {
		t.Fatalf("got %d series entries, want 2", len(series))
	}
	if series[0].Category != "Food" || series[0].Total.StringFixed(2) != "110.00" {
		t.Errorf("series[0] = %+v", series[0])
	}
	// The uncategorized expense aggregates under its empty category.
	if series[1].Category != "" || series[1].Total.StringFixed(2) != "20.00" {
		t.Errorf("series[1] = %+v", series[1])
	}
}

func TestMonthlySeries(t *testing.T) {
	s := NewService("EUR", 6)
	series := s.MonthlySeries(testSnapshot(), "EUR", anchor, 3)
	if len(series) != 3 {
		t.Fatalf("got %d buckets, want 3", len(series))
	}
	wantMonths := []string{"2025-04", "2025-05", "2025-06"}
	for i, w := range wantMonths {
		if series[i].Month != w {
			t.Errorf("bucket %d month = %s, want %s", i, series[i].Month, w)
		}
	}
	if !series[0].Total.IsZero() {
		t.Errorf("empty month total = %s, want 0", series[0].Total)
	}
	if series[1].Total.StringFixed(2) != "30.00" {
		t.Errorf("May total = %s, want 30.00", series[1].Total)
	}
	if series[2].Total.StringFixed(2) != "130.00" {
		t.Errorf("June total = %s, want 130.00", series[2].Total)
	}
}

func TestGoalRows(t *testing.T) {
	s := NewService("EUR", 6)
	snap := testSnapshot()
	snap.Expenses = append(snap.Expenses, core.Expense{
		ID: "e5", Payer: "alice", Amount: "50", Currency: "EUR",
		Note: "#[goal:g1]", Timestamp: anchor,
	})
	rows := s.GoalRows(snap, "EUR")
	if len(rows) != 1 {
		t.Fatalf("got %d goal rows, want 1", len(rows))
	}
	if rows[0].Saved.StringFixed(2) != "50.00" {
		t.Errorf("Saved = %s, want 50.00", rows[0].Saved)
	}
	if rows[0].Percent != 25 {
		t.Errorf("Percent = %v, want 25", rows[0].Percent)
	}
}
