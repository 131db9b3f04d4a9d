package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"bilancio/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store on a local SQLite file.
type SQLiteStore struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db, queries: New(db)}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) LoadSnapshot(ctx context.Context) (*core.Snapshot, error) {
	expenses, err := s.queries.ListExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	budgets, err := s.queries.ListBudgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	fxRates, err := s.queries.ListFxRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list fx rates: %w", err)
	}
	rules, err := s.queries.ListRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	goals, err := s.queries.ListGoals(ctx)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	templates, err := s.queries.ListTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recurring templates: %w", err)
	}

	return &core.Snapshot{
		Expenses:           expenses,
		Budgets:            budgets,
		FxRates:            fxRates,
		Rules:              rules,
		Goals:              goals,
		RecurringTemplates: templates,
	}, nil
}

func (s *SQLiteStore) UpsertExpense(ctx context.Context, e core.Expense) error {
	if err := s.queries.UpsertExpense(ctx, e); err != nil {
		return fmt.Errorf("upsert expense: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpsertBudget(ctx context.Context, b core.Budget) error {
	if err := s.queries.UpsertBudget(ctx, b); err != nil {
		return fmt.Errorf("upsert budget: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpsertFxRate(ctx context.Context, r core.FxRate) error {
	r.Code = core.NormalizeCurrency(r.Code)
	if err := s.queries.UpsertFxRate(ctx, r); err != nil {
		return fmt.Errorf("upsert fx rate: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpsertRule(ctx context.Context, r core.Rule) error {
	if err := s.queries.UpsertRule(ctx, r); err != nil {
		return fmt.Errorf("upsert rule: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpsertGoal(ctx context.Context, g core.Goal) error {
	if err := s.queries.UpsertGoal(ctx, g); err != nil {
		return fmt.Errorf("upsert goal: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpsertTemplate(ctx context.Context, t core.RecurringTemplate) error {
	if err := s.queries.UpsertTemplate(ctx, t); err != nil {
		return fmt.Errorf("upsert recurring template: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteExpense(ctx context.Context, id string) error {
	n, err := s.queries.MarkExpenseDeleted(ctx, id)
	return checkAffected(n, err, "delete expense")
}

func (s *SQLiteStore) DeleteBudget(ctx context.Context, id string) error {
	n, err := s.queries.MarkBudgetDeleted(ctx, id)
	return checkAffected(n, err, "delete budget")
}

func (s *SQLiteStore) DeleteFxRate(ctx context.Context, code string) error {
	n, err := s.queries.MarkFxRateDeleted(ctx, core.NormalizeCurrency(code))
	return checkAffected(n, err, "delete fx rate")
}

func (s *SQLiteStore) DeleteRule(ctx context.Context, id string) error {
	n, err := s.queries.MarkRuleDeleted(ctx, id)
	return checkAffected(n, err, "delete rule")
}

func (s *SQLiteStore) DeleteGoal(ctx context.Context, id string) error {
	n, err := s.queries.MarkGoalDeleted(ctx, id)
	return checkAffected(n, err, "delete goal")
}

func (s *SQLiteStore) DeleteTemplate(ctx context.Context, id string) error {
	n, err := s.queries.MarkTemplateDeleted(ctx, id)
	return checkAffected(n, err, "delete recurring template")
}

func (s *SQLiteStore) LastRun(ctx context.Context, templateID string) (time.Time, bool, error) {
	t, ok, err := s.queries.GetLastRun(ctx, templateID)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("get last run: %w", err)
	}
	return t, ok, nil
}

func (s *SQLiteStore) SetLastRun(ctx context.Context, templateID string, t time.Time) error {
	if err := s.queries.SetLastRun(ctx, templateID, t); err != nil {
		return fmt.Errorf("set last run: %w", err)
	}
	return nil
}

func checkAffected(n int64, err error, op string) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
