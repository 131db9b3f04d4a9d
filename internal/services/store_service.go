package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"bilancio/internal/commands"
	"bilancio/internal/core"
	"bilancio/internal/storage"
)

// StoreService is the write path: validate, persist, notify, reload.
// The AMQP client is optional; without it writes stay local.
type StoreService struct {
	store     storage.Store
	snapshots *SnapshotService
	client    *commands.Client
}

func NewStoreService(store storage.Store, snapshots *SnapshotService, client *commands.Client) *StoreService {
	return &StoreService{store: store, snapshots: snapshots, client: client}
}

// SaveExpense validates and persists an expense, minting an id when
// blank, and returns the id.
func (s *StoreService) SaveExpense(ctx context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validate expense: %w", err)
	}
	if strings.TrimSpace(e.ID) == "" {
		e.ID = uuid.NewString()
	}
	e.Currency = core.NormalizeCurrency(e.Currency)

	if err := s.store.UpsertExpense(ctx, e); err != nil {
		return "", fmt.Errorf("save expense: %w", err)
	}
	s.notify(ctx, commands.EntityExpense, e.ID)
	return e.ID, s.reload(ctx)
}

func (s *StoreService) DeleteExpense(ctx context.Context, id string) error {
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	s.notify(ctx, commands.EntityExpense, id)
	return s.reload(ctx)
}

func (s *StoreService) SaveBudget(ctx context.Context, b core.Budget) (string, error) {
	if err := b.Validate(); err != nil {
		return "", fmt.Errorf("validate budget: %w", err)
	}
	if strings.TrimSpace(b.ID) == "" {
		b.ID = uuid.NewString()
	}
	b.Currency = core.NormalizeCurrency(b.Currency)
	b.RolloverMode = core.NormalizeRollover(b.RolloverMode)

	if err := s.store.UpsertBudget(ctx, b); err != nil {
		return "", fmt.Errorf("save budget: %w", err)
	}
	s.notify(ctx, commands.EntityBudget, b.ID)
	return b.ID, s.reload(ctx)
}

func (s *StoreService) DeleteBudget(ctx context.Context, id string) error {
	if err := s.store.DeleteBudget(ctx, id); err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	s.notify(ctx, commands.EntityBudget, id)
	return s.reload(ctx)
}

func (s *StoreService) SaveFxRate(ctx context.Context, r core.FxRate) (string, error) {
	if err := r.Validate(); err != nil {
		return "", fmt.Errorf("validate fx rate: %w", err)
	}
	r.Code = core.NormalizeCurrency(r.Code)

	if err := s.store.UpsertFxRate(ctx, r); err != nil {
		return "", fmt.Errorf("save fx rate: %w", err)
	}
	s.notify(ctx, commands.EntityFxRate, r.Code)
	return r.Code, s.reload(ctx)
}

func (s *StoreService) DeleteFxRate(ctx context.Context, code string) error {
	if err := s.store.DeleteFxRate(ctx, code); err != nil {
		return fmt.Errorf("delete fx rate: %w", err)
	}
	s.notify(ctx, commands.EntityFxRate, core.NormalizeCurrency(code))
	return s.reload(ctx)
}

func (s *StoreService) SaveRule(ctx context.Context, r core.Rule) (string, error) {
	if err := r.Validate(); err != nil {
		return "", fmt.Errorf("validate rule: %w", err)
	}
	if strings.TrimSpace(r.ID) == "" {
		r.ID = uuid.NewString()
	}

	if err := s.store.UpsertRule(ctx, r); err != nil {
		return "", fmt.Errorf("save rule: %w", err)
	}
	s.notify(ctx, commands.EntityRule, r.ID)
	return r.ID, s.reload(ctx)
}

func (s *StoreService) DeleteRule(ctx context.Context, id string) error {
	if err := s.store.DeleteRule(ctx, id); err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	s.notify(ctx, commands.EntityRule, id)
	return s.reload(ctx)
}

func (s *StoreService) SaveGoal(ctx context.Context, g core.Goal) (string, error) {
	if err := g.Validate(); err != nil {
		return "", fmt.Errorf("validate goal: %w", err)
	}
	if strings.TrimSpace(g.ID) == "" {
		g.ID = uuid.NewString()
	}
	g.Currency = core.NormalizeCurrency(g.Currency)

	if err := s.store.UpsertGoal(ctx, g); err != nil {
		return "", fmt.Errorf("save goal: %w", err)
	}
	s.notify(ctx, commands.EntityGoal, g.ID)
	return g.ID, s.reload(ctx)
}

func (s *StoreService) DeleteGoal(ctx context.Context, id string) error {
	if err := s.store.DeleteGoal(ctx, id); err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	s.notify(ctx, commands.EntityGoal, id)
	return s.reload(ctx)
}

func (s *StoreService) SaveTemplate(ctx context.Context, t core.RecurringTemplate) (string, error) {
	if err := t.Validate(); err != nil {
		return "", fmt.Errorf("validate recurring template: %w", err)
	}
	if strings.TrimSpace(t.ID) == "" {
		t.ID = uuid.NewString()
	}
	t.Currency = core.NormalizeCurrency(t.Currency)

	if err := s.store.UpsertTemplate(ctx, t); err != nil {
		return "", fmt.Errorf("save recurring template: %w", err)
	}
	s.notify(ctx, commands.EntityTemplate, t.ID)
	return t.ID, s.reload(ctx)
}

func (s *StoreService) DeleteTemplate(ctx context.Context, id string) error {
	if err := s.store.DeleteTemplate(ctx, id); err != nil {
		return fmt.Errorf("delete recurring template: %w", err)
	}
	s.notify(ctx, commands.EntityTemplate, id)
	return s.reload(ctx)
}

// RefreshFxRates asks the worker to fetch fresh rates. It only
// publishes the command; the rates land through the normal write path.
func (s *StoreService) RefreshFxRates(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("fx refresh requires AMQP")
	}
	cmd, err := commands.NewCommand(commands.KindFxRefresh, "", "", nil)
	if err != nil {
		return fmt.Errorf("build fx refresh command: %w", err)
	}
	if err := s.client.PublishCommand(ctx, cmd); err != nil {
		return fmt.Errorf("publish fx refresh: %w", err)
	}
	return nil
}

func (s *StoreService) notify(ctx context.Context, entity, id string) {
	if s.client == nil {
		return
	}
	if err := s.client.PublishChange(ctx, commands.NewStoreChange(entity, id)); err != nil {
		// Writes are already durable; peers will catch up on the next change.
		slog.ErrorContext(ctx, "Failed to publish store change",
			"entity", entity, "id", id, "error", err)
	}
}

func (s *StoreService) reload(ctx context.Context) error {
	if s.snapshots == nil {
		return nil
	}
	return s.snapshots.Reload(ctx)
}

// Close releases the storage and messaging connections.
func (s *StoreService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close store service: %v", errs)
	}
	return nil
}
