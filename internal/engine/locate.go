package engine

import (
	"strings"

	"github.com/flashflow-ai/flashflow/pkg/types"
)

// Locate scans plain left to right for every occurrence of needle and
// returns the non-overlapping ranges found, in document order.
//
// An occurrence is skipped when it overlaps any range in excluding or any
// range already claimed earlier in the same scan — first found wins. The
// needle is always treated as a literal string, never as a pattern, so
// snippets containing regex metacharacters match exactly. An empty result is
// not an error; an empty needle matches nothing.
func Locate(plain, needle string, excluding []types.Range) []types.Range {
	if needle == "" {
		return nil
	}

	var claimed []types.Range
	for i := 0; i <= len(plain)-len(needle); {
		j := strings.Index(plain[i:], needle)
		if j < 0 {
			break
		}
		r := types.Range{From: i + j, To: i + j + len(needle)}

		if overlapsAny(r, excluding) || overlapsAny(r, claimed) {
			// Keep scanning from the next byte so later, non-overlapping
			// occurrences are still considered.
			i = r.From + 1
			continue
		}
		claimed = append(claimed, r)
		i = r.To
	}
	return claimed
}

// overlapsAny reports whether r overlaps any range in set.
func overlapsAny(r types.Range, set []types.Range) bool {
	for _, s := range set {
		if r.Overlaps(s) {
			return true
		}
	}
	return false
}
