package engine

import (
	"log/slog"

	"github.com/flashflow-ai/flashflow/pkg/types"
)

// Store holds the ordered list of pending suggestions from the most recent
// analysis. A store belongs to a single [Engine] and inherits its
// single-event-at-a-time execution model, so it performs no locking.
type Store struct {
	items []types.Suggestion
}

// NewStore returns an empty suggestion store.
func NewStore() *Store {
	return &Store{}
}

// Reset replaces the entire pending set with suggestions, preserving list
// order. Entries with a duplicate id are dropped with a warning — ids are
// generated locally precisely so this should never fire, but the store
// guards its uniqueness invariant regardless.
func (s *Store) Reset(suggestions []types.Suggestion) {
	s.items = s.items[:0]
	seen := make(map[string]struct{}, len(suggestions))
	for _, sg := range suggestions {
		if _, dup := seen[sg.ID]; dup {
			slog.Warn("suggestion store: dropping duplicate id", "id", sg.ID, "original", sg.Original)
			continue
		}
		seen[sg.ID] = struct{}{}
		s.items = append(s.items, sg)
	}
}

// Clear discards every pending suggestion.
func (s *Store) Clear() {
	s.items = s.items[:0]
}

// Len returns the number of pending suggestions.
func (s *Store) Len() int { return len(s.items) }

// All returns the pending suggestions in list order. The returned slice is a
// copy; mutating it does not affect the store.
func (s *Store) All() []types.Suggestion {
	out := make([]types.Suggestion, len(s.items))
	copy(out, s.items)
	return out
}

// ByCategory returns the pending suggestions of the given category, in list
// order.
func (s *Store) ByCategory(c types.Category) []types.Suggestion {
	var out []types.Suggestion
	for _, sg := range s.items {
		if sg.Category == c {
			out = append(out, sg)
		}
	}
	return out
}

// Get returns the suggestion with the given id, if present.
func (s *Store) Get(id string) (types.Suggestion, bool) {
	for _, sg := range s.items {
		if sg.ID == id {
			return sg, true
		}
	}
	return types.Suggestion{}, false
}

// Remove deletes the suggestion with the given id. Removing an absent id is
// a no-op, which makes reject idempotent.
func (s *Store) Remove(id string) {
	for i, sg := range s.items {
		if sg.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}
