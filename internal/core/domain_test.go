package core

import (
	"errors"
	"testing"
	"time"
)

func TestExpenseValidate(t *testing.T) {
	ok := Expense{Payer: "alice", Amount: "12.50", Currency: "EUR", Timestamp: time.Now()}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid expense rejected: %v", err)
	}
	if err := (Expense{Amount: "1"}).Validate(); !errors.Is(err, ErrMissingPayer) {
		t.Errorf("expected ErrMissingPayer, got %v", err)
	}
	if err := (Expense{Payer: "alice"}).Validate(); !errors.Is(err, ErrMissingAmount) {
		t.Errorf("expected ErrMissingAmount, got %v", err)
	}
	// Non-numeric amounts pass validation: they count as zero in
	// aggregates but are kept for display.
	if err := (Expense{Payer: "alice", Amount: "n/a"}).Validate(); err != nil {
		t.Errorf("non-numeric amount rejected: %v", err)
	}
}

func TestBudgetValidate(t *testing.T) {
	ok := Budget{Category: "Food", MonthlyLimit: "300", Currency: "EUR"}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid budget rejected: %v", err)
	}
	if err := (Budget{MonthlyLimit: "300"}).Validate(); !errors.Is(err, ErrMissingCategory) {
		t.Errorf("expected ErrMissingCategory, got %v", err)
	}
	if err := (Budget{Category: "Food"}).Validate(); !errors.Is(err, ErrMissingLimit) {
		t.Errorf("expected ErrMissingLimit, got %v", err)
	}
}

func TestRuleValidate(t *testing.T) {
	ok := Rule{Name: "taxi", Kind: KindSubstring, Pattern: "taxi", Category: "Transport"}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid rule rejected: %v", err)
	}
	if err := (Rule{Pattern: "x", Category: "c"}).Validate(); !errors.Is(err, ErrMissingName) {
		t.Errorf("expected ErrMissingName, got %v", err)
	}
	if err := (Rule{Name: "x", Category: "c"}).Validate(); !errors.Is(err, ErrMissingPattern) {
		t.Errorf("expected ErrMissingPattern, got %v", err)
	}
}

func TestGoalValidate(t *testing.T) {
	ok := Goal{Name: "vacation", Target: "1500", Currency: "EUR"}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid goal rejected: %v", err)
	}
	if err := (Goal{Target: "1", Currency: "EUR"}).Validate(); !errors.Is(err, ErrMissingName) {
		t.Errorf("expected ErrMissingName, got %v", err)
	}
	if err := (Goal{Name: "x", Currency: "EUR"}).Validate(); !errors.Is(err, ErrMissingTarget) {
		t.Errorf("expected ErrMissingTarget, got %v", err)
	}
	if err := (Goal{Name: "x", Target: "1"}).Validate(); !errors.Is(err, ErrMissingCurrency) {
		t.Errorf("expected ErrMissingCurrency, got %v", err)
	}
}

func TestRecurringTemplateValidate(t *testing.T) {
	tests := []struct {
		name    string
		tpl     RecurringTemplate
		wantErr error
	}{
		{"valid monthly", RecurringTemplate{Name: "rent", Period: Monthly, Day: 1, Amount: "800"}, nil},
		{"valid weekly", RecurringTemplate{Name: "groceries", Period: Weekly, Weekday: 6, Amount: "60"}, nil},
		{"missing name", RecurringTemplate{Period: Monthly, Amount: "1"}, ErrMissingName},
		{"bad period", RecurringTemplate{Name: "x", Period: "DAILY", Amount: "1"}, ErrInvalidPeriod},
		{"missing amount", RecurringTemplate{Name: "x", Period: Yearly}, ErrMissingAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tpl.Validate()
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}
