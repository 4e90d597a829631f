package engine

import (
	"testing"

	"github.com/flashflow-ai/flashflow/pkg/types"
)

func TestStoreResetDropsDuplicateIDs(t *testing.T) {
	s := NewStore()
	s.Reset([]types.Suggestion{
		{ID: "a", Original: "one"},
		{ID: "b", Original: "two"},
		{ID: "a", Original: "three"},
	})

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	got, ok := s.Get("a")
	if !ok || got.Original != "one" {
		t.Errorf("Get(a) = %+v, want the first entry kept", got)
	}
}

func TestStoreOrderPreserved(t *testing.T) {
	s := NewStore()
	s.Reset([]types.Suggestion{
		{ID: "c"}, {ID: "a"}, {ID: "b"},
	})

	all := s.All()
	want := []string{"c", "a", "b"}
	for i, sg := range all {
		if sg.ID != want[i] {
			t.Errorf("All()[%d].ID = %q, want %q", i, sg.ID, want[i])
		}
	}
}

func TestStoreByCategory(t *testing.T) {
	s := NewStore()
	s.Reset([]types.Suggestion{
		{ID: "a", Category: types.CategoryGrammar},
		{ID: "b", Category: types.CategorySpelling},
		{ID: "c", Category: types.CategoryGrammar},
	})

	got := s.ByCategory(types.CategoryGrammar)
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Errorf("ByCategory(Grammar) = %+v, want a then c", got)
	}
}

func TestStoreRemoveAbsentIsNoop(t *testing.T) {
	s := NewStore()
	s.Reset([]types.Suggestion{{ID: "a"}})

	s.Remove("missing")
	if s.Len() != 1 {
		t.Errorf("Len() = %d after removing absent id, want 1", s.Len())
	}
	s.Remove("a")
	s.Remove("a")
	if s.Len() != 0 {
		t.Errorf("Len() = %d after double remove, want 0", s.Len())
	}
}
