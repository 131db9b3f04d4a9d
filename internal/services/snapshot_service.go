// Package services orchestrates storage, messaging and the in-memory
// snapshot: writes go to the store, a change notice goes out, and the
// snapshot holder is refreshed so readers see the new state.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"bilancio/internal/snapshot"
	"bilancio/internal/storage"
)

// SnapshotService reloads the published snapshot from the store.
type SnapshotService struct {
	store  storage.Store
	holder *snapshot.Holder
}

func NewSnapshotService(store storage.Store, holder *snapshot.Holder) *SnapshotService {
	return &SnapshotService{store: store, holder: holder}
}

// Reload loads a fresh snapshot and swaps it in.
func (s *SnapshotService) Reload(ctx context.Context) error {
	snap, err := s.store.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	s.holder.Replace(snap)

	slog.InfoContext(ctx, "Snapshot reloaded",
		"version", s.holder.Version(),
		"expenses", len(snap.Expenses),
		"budgets", len(snap.Budgets),
		"fx_rates", len(snap.FxRates),
		"rules", len(snap.Rules),
		"goals", len(snap.Goals),
		"recurring_templates", len(snap.RecurringTemplates))
	return nil
}
