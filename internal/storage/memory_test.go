package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"bilancio/internal/core"
)

func TestMemoryStoreExpenses(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	e1 := core.Expense{ID: "e1", Payer: "alice", Amount: "10", Timestamp: time.Now()}
	e2 := core.Expense{ID: "e2", Payer: "bob", Amount: "20", Timestamp: time.Now()}
	if err := s.UpsertExpense(ctx, e1); err != nil {
		t.Fatal(err)
	}
	if err := s.UpsertExpense(ctx, e2); err != nil {
		t.Fatal(err)
	}

	snap, err := s.LoadSnapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Expenses) != 2 {
		t.Fatalf("got %d expenses, want 2", len(snap.Expenses))
	}
	if snap.Expenses[0].ID != "e1" || snap.Expenses[1].ID != "e2" {
		t.Errorf("insertion order not preserved: %s, %s", snap.Expenses[0].ID, snap.Expenses[1].ID)
	}

	// Upsert replaces in place without reordering.
	e1.Amount = "15"
	if err := s.UpsertExpense(ctx, e1); err != nil {
		t.Fatal(err)
	}
	snap, _ = s.LoadSnapshot(ctx)
	if len(snap.Expenses) != 2 || snap.Expenses[0].Amount != "15" {
		t.Errorf("upsert did not replace: %+v", snap.Expenses)
	}

	// Delete is soft.
	if err := s.DeleteExpense(ctx, "e1"); err != nil {
		t.Fatal(err)
	}
	snap, _ = s.LoadSnapshot(ctx)
	if len(snap.Expenses) != 2 {
		t.Fatalf("soft delete removed the row")
	}
	if !snap.Expenses[0].Deleted {
		t.Error("deleted flag not set")
	}

	if err := s.DeleteExpense(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete unknown id = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreBudgetUpsertByCategory(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if err := s.UpsertBudget(ctx, core.Budget{ID: "b1", Category: "Food", MonthlyLimit: "100"}); err != nil {
		t.Fatal(err)
	}
	if err := s.UpsertBudget(ctx, core.Budget{ID: "b2", Category: "Food", MonthlyLimit: "200"}); err != nil {
		t.Fatal(err)
	}

	snap, _ := s.LoadSnapshot(ctx)
	if len(snap.Budgets) != 1 {
		t.Fatalf("got %d budgets, want 1 per category", len(snap.Budgets))
	}
	if snap.Budgets[0].MonthlyLimit != "200" || snap.Budgets[0].ID != "b2" {
		t.Errorf("budget not replaced: %+v", snap.Budgets[0])
	}

	// Delete finds the budget by its current id.
	if err := s.DeleteBudget(ctx, "b2"); err != nil {
		t.Fatal(err)
	}
	snap, _ = s.LoadSnapshot(ctx)
	if !snap.Budgets[0].Deleted {
		t.Error("budget not soft-deleted")
	}
}

func TestMemoryStoreFxRateNormalization(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if err := s.UpsertFxRate(ctx, core.FxRate{Code: " usd ", PerBase: "1.1"}); err != nil {
		t.Fatal(err)
	}
	if err := s.UpsertFxRate(ctx, core.FxRate{Code: "USD", PerBase: "1.2"}); err != nil {
		t.Fatal(err)
	}

	snap, _ := s.LoadSnapshot(ctx)
	if len(snap.FxRates) != 1 {
		t.Fatalf("got %d rates, want 1", len(snap.FxRates))
	}
	if snap.FxRates[0].Code != "USD" || snap.FxRates[0].PerBase != "1.2" {
		t.Errorf("rate = %+v", snap.FxRates[0])
	}

	if err := s.DeleteFxRate(ctx, "usd"); err != nil {
		t.Errorf("delete by lowercase code: %v", err)
	}
}

func TestMemoryStoreLastRun(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, ok, _ := s.LastRun(ctx, "t1"); ok {
		t.Error("LastRun reported a run that never happened")
	}
	now := time.Now()
	if err := s.SetLastRun(ctx, "t1", now); err != nil {
		t.Fatal(err)
	}
	got, ok, err := s.LastRun(ctx, "t1")
	if err != nil || !ok {
		t.Fatalf("LastRun = %v %v", ok, err)
	}
	if !got.Equal(now) {
		t.Errorf("LastRun = %v, want %v", got, now)
	}
}
