// Package storage persists the ledger entities and serves full
// snapshots to the rest of the application. Two backends exist: an
// in-memory store for tests and ephemeral runs, and a SQLite store
// for durable single-node deployments.
package storage

import (
	"context"
	"errors"
	"time"

	"bilancio/internal/core"
)

// ErrNotFound is returned when a delete or lookup names an unknown id.
var ErrNotFound = errors.New("storage: not found")

// Store is the persistence port. Deletes are soft: the row stays with
// its deleted flag set so exports and sync stay consistent.
type Store interface {
	LoadSnapshot(ctx context.Context) (*core.Snapshot, error)

	UpsertExpense(ctx context.Context, e core.Expense) error
	UpsertBudget(ctx context.Context, b core.Budget) error
	UpsertFxRate(ctx context.Context, r core.FxRate) error
	UpsertRule(ctx context.Context, r core.Rule) error
	UpsertGoal(ctx context.Context, g core.Goal) error
	UpsertTemplate(ctx context.Context, t core.RecurringTemplate) error

	DeleteExpense(ctx context.Context, id string) error
	DeleteBudget(ctx context.Context, id string) error
	DeleteFxRate(ctx context.Context, code string) error
	DeleteRule(ctx context.Context, id string) error
	DeleteGoal(ctx context.Context, id string) error
	DeleteTemplate(ctx context.Context, id string) error

	// LastRun reports when a recurring template was last materialized.
	// ok is false when it never ran.
	LastRun(ctx context.Context, templateID string) (t time.Time, ok bool, err error)
	SetLastRun(ctx context.Context, templateID string, t time.Time) error

	Close() error
}
