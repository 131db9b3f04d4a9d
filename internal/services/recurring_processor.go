package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/recurring"
	"bilancio/internal/storage"
)

// RecurringProcessor materializes due recurring templates into regular
// expenses. It runs inside the worker on a fixed interval; the lastRun
// record keeps repeated scans from double-posting.
type RecurringProcessor struct {
	store     storage.Store
	templates *recurring.Store
	writes    *StoreService
}

func NewRecurringProcessor(store storage.Store, writes *StoreService) *RecurringProcessor {
	return &RecurringProcessor{
		store:     store,
		templates: recurring.NewStore(),
		writes:    writes,
	}
}

// ProcessDue scans every active template and posts an expense for each
// one due at now. It returns how many expenses were created.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	if p.store == nil || p.writes == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	snap, err := p.store.LoadSnapshot(ctx)
	if err != nil {
		return 0, fmt.Errorf("load templates: %w", err)
	}

	p.templates.ReplaceAll(snap.RecurringTemplates)
	live := p.templates.List()

	slog.InfoContext(ctx, "Processing recurring templates",
		"total", len(snap.RecurringTemplates),
		"live", len(live),
		"processing_date", now.Format("2006-01-02"))

	processed := 0
	for _, t := range live {
		if !t.Active {
			continue
		}

		checker, err := recurring.GetDuenessChecker(t.Period)
		if err != nil {
			slog.WarnContext(ctx, "Skipping template with unknown period",
				"id", t.ID, "period", t.Period)
			continue
		}

		lastRun, _, err := p.lastRun(ctx, t.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to read last run",
				"id", t.ID, "error", err)
			continue
		}

		if !checker.IsDue(t, lastRun, now) {
			continue
		}

		if err := p.materialize(ctx, t, now); err != nil {
			slog.ErrorContext(ctx, "Failed to materialize template",
				"id", t.ID, "name", t.Name, "error", err)
			continue
		}

		if err := p.store.SetLastRun(ctx, t.ID, now); err != nil {
			slog.ErrorContext(ctx, "Failed to record last run",
				"id", t.ID, "error", err)
			continue
		}

		slog.InfoContext(ctx, "Materialized recurring template",
			"id", t.ID,
			"name", t.Name,
			"period", t.Period,
			"schedule", recurring.Summary(t))
		processed++
	}

	return processed, nil
}

func (p *RecurringProcessor) lastRun(ctx context.Context, templateID string) (time.Time, bool, error) {
	return p.store.LastRun(ctx, templateID)
}

func (p *RecurringProcessor) materialize(ctx context.Context, t core.RecurringTemplate, now time.Time) error {
	note := "[auto] " + t.Name
	if strings.TrimSpace(t.Note) != "" {
		note += " " + t.Note
	}

	_, err := p.writes.SaveExpense(ctx, core.Expense{
		Payer:     "auto",
		Category:  t.Category,
		Amount:    t.Amount,
		Currency:  t.Currency,
		Note:      note,
		Timestamp: now,
		Author:    "recurring",
	})
	return err
}
