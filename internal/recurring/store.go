// Package recurring holds recurring-transaction templates and the
// dueness logic an external scheduler uses to decide when to
// materialize them into ordinary expenses.
package recurring

import (
	"fmt"
	"sync"

	"bilancio/internal/core"
)

// Store keeps templates as plain data records. It validates upserts and
// answers lookups; turning a template into a concrete expense is the
// scheduler's job, not the store's.
type Store struct {
	mu    sync.Mutex
	items map[string]core.RecurringTemplate
	order []string
}

func NewStore() *Store {
	return &Store{items: make(map[string]core.RecurringTemplate)}
}

// ReplaceAll swaps the store's contents for a fresh snapshot slice.
func (s *Store) ReplaceAll(templates []core.RecurringTemplate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]core.RecurringTemplate, len(templates))
	s.order = s.order[:0]
	for _, t := range templates {
		if _, seen := s.items[t.ID]; !seen {
			s.order = append(s.order, t.ID)
		}
		s.items[t.ID] = t
	}
}

// Upsert accepts a template after validating that name, period and
// amount are present.
func (s *Store) Upsert(t core.RecurringTemplate) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("validate template: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, seen := s.items[t.ID]; !seen {
		s.order = append(s.order, t.ID)
	}
	s.items[t.ID] = t
	return nil
}

// Get returns a template by id.
func (s *Store) Get(id string) (core.RecurringTemplate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.items[id]
	return t, ok
}

// List returns the non-deleted templates in insertion order.
func (s *Store) List() []core.RecurringTemplate {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.RecurringTemplate, 0, len(s.order))
	for _, id := range s.order {
		if t, ok := s.items[id]; ok && !t.Deleted {
			out = append(out, t)
		}
	}
	return out
}

// Summary renders a template's schedule for presentation: "day = N"
// for MONTHLY, "weekday = N" for WEEKLY, "day = N, month = M" for
// YEARLY.
func Summary(t core.RecurringTemplate) string {
	switch t.Period {
	case core.Monthly:
		return fmt.Sprintf("day = %d", t.Day)
	case core.Weekly:
		return fmt.Sprintf("weekday = %d", t.Weekday)
	case core.Yearly:
		return fmt.Sprintf("day = %d, month = %d", t.Day, t.Month)
	default:
		return string(t.Period)
	}
}
