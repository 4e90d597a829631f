// Package types defines the shared types used across all FlashFlow packages.
//
// These types form the lingua franca between the suggestion engine, the
// assistant flows, the providers, and the HTTP layer. They are intentionally
// minimal — each package defines its own domain types, but cross-cutting data
// structures live here to avoid circular imports.
package types

// Category classifies a suggestion. The set is closed: analysis results with
// any other category value are dropped before they reach the engine.
type Category string

const (
	CategoryGrammar     Category = "Grammar"
	CategorySpelling    Category = "Spelling"
	CategoryPunctuation Category = "Punctuation"
	CategoryClarity     Category = "Clarity"
	CategoryVocabulary  Category = "Vocabulary"
	CategoryWordChoice  Category = "Word Choice"
)

// Categories lists every valid category in display order.
func Categories() []Category {
	return []Category{
		CategoryGrammar,
		CategorySpelling,
		CategoryPunctuation,
		CategoryClarity,
		CategoryVocabulary,
		CategoryWordChoice,
	}
}

// IsValid reports whether c is one of the six recognised categories.
func (c Category) IsValid() bool {
	switch c {
	case CategoryGrammar, CategorySpelling, CategoryPunctuation,
		CategoryClarity, CategoryVocabulary, CategoryWordChoice:
		return true
	}
	return false
}

// BadgeColor returns the solid colour used for this category's badge in
// suggestion lists. The mapping is total over valid categories; an invalid
// category maps to a neutral grey rather than an empty string.
func (c Category) BadgeColor() string {
	switch c {
	case CategoryGrammar:
		return "#4A90E2"
	case CategorySpelling:
		return "#D0021B"
	case CategoryPunctuation:
		return "#F5A623"
	case CategoryWordChoice:
		return "#50E3C2"
	case CategoryClarity:
		return "#9013FE"
	case CategoryVocabulary:
		return "#7ED321"
	default:
		return "#9B9B9B"
	}
}

// HighlightColor returns the translucent colour used to mark this category's
// spans inside the document. Same totality contract as [Category.BadgeColor].
func (c Category) HighlightColor() string {
	switch c {
	case CategoryGrammar:
		return "rgba(74, 144, 226, 0.4)"
	case CategorySpelling:
		return "rgba(208, 2, 27, 0.4)"
	case CategoryPunctuation:
		return "rgba(245, 166, 35, 0.4)"
	case CategoryWordChoice:
		return "rgba(80, 227, 194, 0.4)"
	case CategoryClarity:
		return "rgba(144, 19, 254, 0.4)"
	case CategoryVocabulary:
		return "rgba(126, 211, 33, 0.4)"
	default:
		return "rgba(155, 155, 155, 0.4)"
	}
}

// Suggestion is one proposed text correction returned by the analysis flow.
//
// The ID is always generated locally — ids emitted by the analysis model are
// discarded because the model has been observed to return duplicates.
// Original is matched against the plain-text projection of the document,
// never against its formatted representation.
type Suggestion struct {
	// ID is an opaque, locally generated unique identifier.
	ID string `json:"id"`

	// Category is one of the six closed categories.
	Category Category `json:"category"`

	// Original is the exact literal substring expected to occur in the
	// current plain text of the document.
	Original string `json:"original"`

	// Suggestion is the primary proposed replacement text.
	Suggestion string `json:"suggestion"`

	// Explanation is a human-readable rationale. Display-only.
	Explanation string `json:"explanation"`

	// Alternatives is an optional ordered list of other replacement
	// candidates, mainly for Vocabulary and Word Choice suggestions.
	Alternatives []string `json:"alternatives,omitempty"`
}

// Range is a half-open [From, To) offset pair in plain-text document
// coordinates.
type Range struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Len returns the number of bytes covered by the range.
func (r Range) Len() int { return r.To - r.From }

// Overlaps reports whether r and other share at least one offset.
func (r Range) Overlaps(other Range) bool {
	return r.From < other.To && r.To > other.From
}

// Tones lists the rewrite tones offered by default. The set is open: the
// rewrite flow accepts any non-empty tone string, and tones ending in "Email"
// produce a structured email (subject, greeting, body, closing).
func Tones() []string {
	return []string{
		"Casual", "Formal", "Professional", "Friendly", "Academic",
		"Formal Email", "Informal Email",
	}
}

// Voices lists the fixed speech-synthesis voice names.
func Voices() []string {
	return []string{"Algenib", "Achernar", "Canopus", "Rigel"}
}

// DefaultVoice is used when a synthesis request does not name a voice.
const DefaultVoice = "Algenib"

// IsValidVoice reports whether name is one of the fixed voice names.
func IsValidVoice(name string) bool {
	for _, v := range Voices() {
		if v == name {
			return true
		}
	}
	return false
}
