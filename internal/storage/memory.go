package storage

import (
	"context"
	"sync"
	"time"

	"bilancio/internal/core"
)

// MemoryStore keeps every entity in process memory. It is the default
// backend and the one tests run against.
type MemoryStore struct {
	mu        sync.RWMutex
	expenses  map[string]core.Expense
	budgets   map[string]core.Budget // keyed by category, one live budget each
	fxRates   map[string]core.FxRate // keyed by normalized code
	rules     map[string]core.Rule
	goals     map[string]core.Goal
	templates map[string]core.RecurringTemplate
	lastRuns  map[string]time.Time

	// insertion order per entity, for stable snapshots
	expenseOrder  []string
	budgetOrder   []string
	fxOrder       []string
	ruleOrder     []string
	goalOrder     []string
	templateOrder []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		expenses:  make(map[string]core.Expense),
		budgets:   make(map[string]core.Budget),
		fxRates:   make(map[string]core.FxRate),
		rules:     make(map[string]core.Rule),
		goals:     make(map[string]core.Goal),
		templates: make(map[string]core.RecurringTemplate),
		lastRuns:  make(map[string]time.Time),
	}
}

func (s *MemoryStore) LoadSnapshot(ctx context.Context) (*core.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &core.Snapshot{
		Expenses:           make([]core.Expense, 0, len(s.expenseOrder)),
		Budgets:            make([]core.Budget, 0, len(s.budgetOrder)),
		FxRates:            make([]core.FxRate, 0, len(s.fxOrder)),
		Rules:              make([]core.Rule, 0, len(s.ruleOrder)),
		Goals:              make([]core.Goal, 0, len(s.goalOrder)),
		RecurringTemplates: make([]core.RecurringTemplate, 0, len(s.templateOrder)),
	}
	for _, id := range s.expenseOrder {
		snap.Expenses = append(snap.Expenses, s.expenses[id])
	}
	for _, cat := range s.budgetOrder {
		snap.Budgets = append(snap.Budgets, s.budgets[cat])
	}
	for _, code := range s.fxOrder {
		snap.FxRates = append(snap.FxRates, s.fxRates[code])
	}
	for _, id := range s.ruleOrder {
		snap.Rules = append(snap.Rules, s.rules[id])
	}
	for _, id := range s.goalOrder {
		snap.Goals = append(snap.Goals, s.goals[id])
	}
	for _, id := range s.templateOrder {
		snap.RecurringTemplates = append(snap.RecurringTemplates, s.templates[id])
	}
	return snap, nil
}

func (s *MemoryStore) UpsertExpense(ctx context.Context, e core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expenses[e.ID]; !ok {
		s.expenseOrder = append(s.expenseOrder, e.ID)
	}
	s.expenses[e.ID] = e
	return nil
}

// UpsertBudget replaces by category: one live budget per category.
func (s *MemoryStore) UpsertBudget(ctx context.Context, b core.Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.budgets[b.Category]; !ok {
		s.budgetOrder = append(s.budgetOrder, b.Category)
	}
	s.budgets[b.Category] = b
	return nil
}

func (s *MemoryStore) UpsertFxRate(ctx context.Context, r core.FxRate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.Code = core.NormalizeCurrency(r.Code)
	if _, ok := s.fxRates[r.Code]; !ok {
		s.fxOrder = append(s.fxOrder, r.Code)
	}
	s.fxRates[r.Code] = r
	return nil
}

func (s *MemoryStore) UpsertRule(ctx context.Context, r core.Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rules[r.ID]; !ok {
		s.ruleOrder = append(s.ruleOrder, r.ID)
	}
	s.rules[r.ID] = r
	return nil
}

func (s *MemoryStore) UpsertGoal(ctx context.Context, g core.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.goals[g.ID]; !ok {
		s.goalOrder = append(s.goalOrder, g.ID)
	}
	s.goals[g.ID] = g
	return nil
}

func (s *MemoryStore) UpsertTemplate(ctx context.Context, t core.RecurringTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.templates[t.ID]; !ok {
		s.templateOrder = append(s.templateOrder, t.ID)
	}
	s.templates[t.ID] = t
	return nil
}

func (s *MemoryStore) DeleteExpense(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.expenses[id]
	if !ok {
		return ErrNotFound
	}
	e.Deleted = true
	s.expenses[id] = e
	return nil
}

func (s *MemoryStore) DeleteBudget(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, b := range s.budgets {
		if b.ID == id {
			b.Deleted = true
			s.budgets[key] = b
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) DeleteFxRate(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	code = core.NormalizeCurrency(code)
	r, ok := s.fxRates[code]
	if !ok {
		return ErrNotFound
	}
	r.Deleted = true
	s.fxRates[code] = r
	return nil
}

func (s *MemoryStore) DeleteRule(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rules[id]
	if !ok {
		return ErrNotFound
	}
	r.Deleted = true
	s.rules[id] = r
	return nil
}

func (s *MemoryStore) DeleteGoal(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok {
		return ErrNotFound
	}
	g.Deleted = true
	s.goals[id] = g
	return nil
}

func (s *MemoryStore) DeleteTemplate(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.templates[id]
	if !ok {
		return ErrNotFound
	}
	t.Deleted = true
	s.templates[id] = t
	return nil
}

func (s *MemoryStore) LastRun(ctx context.Context, templateID string) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.lastRuns[templateID]
	return t, ok, nil
}

func (s *MemoryStore) SetLastRun(ctx context.Context, templateID string, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRuns[templateID] = t
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
