// Package goals computes savings-goal progress from tagged
// transactions. An expense contributes to a goal when its note contains
// the literal tag "#[goal:<id>]"; nothing else links the two.
package goals

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"bilancio/internal/core"
	"bilancio/internal/fx"
)

// Row is one goal's progress in the display currency. Percent is
// capped at 100 and zero when the target is not positive.
type Row struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Target  decimal.Decimal `json:"target"`
	Saved   decimal.Decimal `json:"saved"`
	Percent float64         `json:"percent"`
	Due     time.Time       `json:"due,omitempty"`
}

type Tracker struct {
	conv *fx.Converter
}

func NewTracker(conv *fx.Converter) *Tracker {
	return &Tracker{conv: conv}
}

// Progress returns one row per non-deleted goal, in snapshot order.
func (t *Tracker) Progress(goals []core.Goal, expenses []core.Expense, displayCcy string) []Row {
	rows := make([]Row, 0, len(goals))
	for _, g := range goals {
		if g.Deleted {
			continue
		}
		rows = append(rows, t.progressOne(g, expenses, displayCcy))
	}
	return rows
}

func (t *Tracker) progressOne(g core.Goal, expenses []core.Expense, displayCcy string) Row {
	tag := core.GoalTag(g.ID)
	saved := decimal.Zero
	for _, e := range expenses {
		if e.Deleted || !strings.Contains(e.Note, tag) {
			continue
		}
		saved = saved.Add(t.conv.Convert(e.Amount, e.Currency, displayCcy))
	}

	target := t.conv.Convert(g.Target, g.Currency, displayCcy)
	var percent float64
	if target.IsPositive() {
		percent, _ = saved.Div(target).Mul(decimal.NewFromInt(100)).Float64()
		if percent > 100 {
			percent = 100
		}
	}
	return Row{
		ID:      g.ID,
		Name:    g.Name,
		Target:  target,
		Saved:   saved,
		Percent: percent,
		Due:     g.Due,
	}
}
