// Package snapshot keeps the most recently received store snapshot
// behind an atomic pointer. The snapshot is swapped wholesale, never
// patched: readers always observe either the old or the new state in
// full.
package snapshot

import (
	"sync/atomic"

	"bilancio/internal/core"
)

// Holder owns the current snapshot. Version increases on every
// replacement so cached derivations can key on it.
type Holder struct {
	p       atomic.Pointer[core.Snapshot]
	version atomic.Uint64
}

func NewHolder() *Holder {
	h := &Holder{}
	h.p.Store(&core.Snapshot{})
	return h
}

// Replace publishes a new snapshot. The caller must not mutate it
// afterwards.
func (h *Holder) Replace(s *core.Snapshot) {
	if s == nil {
		s = &core.Snapshot{}
	}
	h.p.Store(s)
	h.version.Add(1)
}

// Current returns the latest snapshot. Never nil.
func (h *Holder) Current() *core.Snapshot {
	return h.p.Load()
}

// Version returns the replacement counter, starting at zero.
func (h *Holder) Version() uint64 {
	return h.version.Load()
}
