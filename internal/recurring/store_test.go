package recurring

import (
	"errors"
	"testing"

	"bilancio/internal/core"
)

func TestUpsertValidates(t *testing.T) {
	s := NewStore()
	if err := s.Upsert(core.RecurringTemplate{ID: "r1", Period: core.Monthly, Amount: "10"}); !errors.Is(err, core.ErrMissingName) {
		t.Errorf("expected ErrMissingName, got %v", err)
	}
	if err := s.Upsert(core.RecurringTemplate{ID: "r1", Name: "rent", Period: "SOMETIMES", Amount: "10"}); !errors.Is(err, core.ErrInvalidPeriod) {
		t.Errorf("expected ErrInvalidPeriod, got %v", err)
	}
	if err := s.Upsert(core.RecurringTemplate{ID: "r1", Name: "rent", Period: core.Monthly}); !errors.Is(err, core.ErrMissingAmount) {
		t.Errorf("expected ErrMissingAmount, got %v", err)
	}
	if err := s.Upsert(core.RecurringTemplate{ID: "r1", Name: "rent", Period: core.Monthly, Day: 1, Amount: "800"}); err != nil {
		t.Fatalf("valid template rejected: %v", err)
	}
}

func TestUpsertReplacesByID(t *testing.T) {
	s := NewStore()
	first := core.RecurringTemplate{ID: "r1", Name: "rent", Period: core.Monthly, Day: 1, Amount: "800"}
	if err := s.Upsert(first); err != nil {
		t.Fatal(err)
	}
	updated := first
	updated.Amount = "850"
	if err := s.Upsert(updated); err != nil {
		t.Fatal(err)
	}
	got, ok := s.Get("r1")
	if !ok || got.Amount != "850" {
		t.Fatalf("Get = %+v, %v; want updated amount 850", got, ok)
	}
	if n := len(s.List()); n != 1 {
		t.Fatalf("List has %d entries after upsert, want 1", n)
	}
}

func TestListSkipsDeleted(t *testing.T) {
	s := NewStore()
	s.ReplaceAll([]core.RecurringTemplate{
		{ID: "r1", Name: "rent", Period: core.Monthly, Day: 1, Amount: "800"},
		{ID: "r2", Name: "old", Period: core.Weekly, Weekday: 3, Amount: "5", Deleted: true},
	})
	list := s.List()
	if len(list) != 1 || list[0].ID != "r1" {
		t.Fatalf("List = %+v, want only r1", list)
	}
}

func TestSummary(t *testing.T) {
	tests := []struct {
		name string
		tpl  core.RecurringTemplate
		want string
	}{
		{"monthly", core.RecurringTemplate{Period: core.Monthly, Day: 5}, "day = 5"},
		{"weekly", core.RecurringTemplate{Period: core.Weekly, Weekday: 3}, "weekday = 3"},
		{"yearly", core.RecurringTemplate{Period: core.Yearly, Day: 24, Month: 12}, "day = 24, month = 12"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Summary(tt.tpl); got != tt.want {
				t.Errorf("Summary = %q, want %q", got, tt.want)
			}
		})
	}
}
