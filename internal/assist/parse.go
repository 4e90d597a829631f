package assist

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/flashflow-ai/flashflow/pkg/types"
)

// rawSuggestion mirrors the suggestion object shape requested from the model.
type rawSuggestion struct {
	ID           string   `json:"id"`
	Category     string   `json:"category"`
	Original     string   `json:"original"`
	Suggestion   string   `json:"suggestion"`
	Explanation  string   `json:"explanation"`
	Alternatives []string `json:"alternatives"`
}

// parseSuggestions decodes the model's analysis output into suggestions.
// Fenced code blocks and a {"suggestions": [...]} wrapper object are both
// tolerated. Model-emitted ids are discarded in favour of fresh uuids, and
// entries with an unrecognised category or an empty original snippet are
// dropped with a warning.
func parseSuggestions(content string) ([]types.Suggestion, error) {
	payload := stripFences(content)

	var raws []rawSuggestion
	if err := json.Unmarshal([]byte(payload), &raws); err != nil {
		// Some models wrap the array in an object.
		var wrapped struct {
			Suggestions []rawSuggestion `json:"suggestions"`
		}
		if werr := json.Unmarshal([]byte(payload), &wrapped); werr != nil {
			return nil, fmt.Errorf("decode suggestions: %w", err)
		}
		raws = wrapped.Suggestions
	}

	out := make([]types.Suggestion, 0, len(raws))
	for _, r := range raws {
		cat := types.Category(r.Category)
		if !cat.IsValid() {
			slog.Warn("assist: dropping suggestion with unknown category", "category", r.Category, "original", r.Original)
			continue
		}
		if r.Original == "" {
			slog.Warn("assist: dropping suggestion with empty original snippet")
			continue
		}
		out = append(out, types.Suggestion{
			ID:           uuid.NewString(),
			Category:     cat,
			Original:     r.Original,
			Suggestion:   r.Suggestion,
			Explanation:  r.Explanation,
			Alternatives: r.Alternatives,
		})
	}
	return out, nil
}

// stripFences removes a surrounding Markdown code fence, with or without a
// language tag, and trims whitespace.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// Drop the language tag line ("json", "JSON", or empty).
		first := strings.TrimSpace(s[:nl])
		if len(first) <= 8 {
			s = s[nl+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
