// Package engine implements the suggestion-application engine: it owns one
// rich-text document together with the suggestion set computed against it,
// paints highlight marks over located spans, and applies accept and reject
// operations while keeping document, marks, and pending list consistent.
//
// The engine is single-threaded by contract. Every operation runs to
// completion before the next one starts, so no interleaved partial state is
// ever observable. Callers serving concurrent clients must serialize access
// externally; the HTTP session manager wraps each engine in a mutex.
package engine

import (
	"errors"
	"log/slog"

	"github.com/flashflow-ai/flashflow/pkg/richtext"
	"github.com/flashflow-ai/flashflow/pkg/types"
)

// ErrNotFound is returned by Accept when the suggestion's original text no
// longer occurs in the document's plain text. The document stays untouched
// and the suggestion stays pending; callers surface this as a non-fatal
// notice.
var ErrNotFound = errors.New("engine: original text not found in document")

// State is the invalidation state of the engine.
type State string

const (
	// StateClean means no suggestions are pending and no marks are painted.
	StateClean State = "clean"

	// StateAnalyzed means a suggestion set is pending and its marks are
	// painted over the document.
	StateAnalyzed State = "analyzed"
)

// Engine owns one document and the suggestions computed against it.
type Engine struct {
	doc   richtext.Document
	store *Store
	state State
}

// New creates an engine owning doc, in the clean state.
func New(doc richtext.Document) *Engine {
	return &Engine{
		doc:   doc.Clone(),
		store: NewStore(),
		state: StateClean,
	}
}

// Document returns a deep copy of the current document.
func (e *Engine) Document() richtext.Document { return e.doc.Clone() }

// PlainText returns the plain-text projection of the current document.
func (e *Engine) PlainText() string { return e.doc.PlainText() }

// State returns the current invalidation state.
func (e *Engine) State() State { return e.state }

// Suggestions returns the pending suggestions in list order.
func (e *Engine) Suggestions() []types.Suggestion { return e.store.All() }

// SuggestionsByCategory returns the pending suggestions of one category, in
// list order.
func (e *Engine) SuggestionsByCategory(c types.Category) []types.Suggestion {
	return e.store.ByCategory(c)
}

// SetContent replaces the document with externally supplied content: a user
// edit, a paste, or a sample-text load. Suggestion snippets are only
// meaningful relative to the snapshot they were computed against, so any
// external change discards the pending set and every mark.
func (e *Engine) SetContent(doc richtext.Document) {
	e.doc = doc.Clone()
	e.invalidate()
}

// InsertText appends externally supplied text to the end of the document,
// the path taken by dictation inserts. Like any external edit it invalidates
// the pending set.
func (e *Engine) InsertText(text string) {
	if text == "" {
		return
	}
	end := len(e.doc.PlainText())
	doc, err := e.doc.Replace(types.Range{From: end, To: end}, text)
	if err != nil {
		slog.Warn("engine: insert text failed", "err", err)
		return
	}
	e.doc = doc
	e.invalidate()
}

// invalidate transitions to the clean state: the store is emptied and all
// marks are removed. External edits land here; the engine's own
// accept/reject mutations never do.
func (e *Engine) invalidate() {
	e.store.Clear()
	e.doc = e.doc.ClearHighlights()
	e.state = StateClean
}

// SetAnalysis installs a freshly received suggestion set. Any prior set is
// discarded first, then marks are painted. The engine enters the analyzed
// state when at least one suggestion is pending.
func (e *Engine) SetAnalysis(suggestions []types.Suggestion) {
	e.invalidate()
	e.store.Reset(suggestions)
	e.paint()
	if e.store.Len() > 0 {
		e.state = StateAnalyzed
	}
}

// paint walks the pending set in list order and marks, for each suggestion,
// the first occurrence of its original text that does not overlap an already
// claimed range. At most one occurrence per suggestion is marked even when
// the snippet repeats, and no two marks ever overlap. Painting touches
// presentation attributes only; the plain text is unchanged.
func (e *Engine) paint() {
	plain := e.doc.PlainText()
	var claimed []types.Range

	for _, sg := range e.store.All() {
		ranges := Locate(plain, sg.Original, claimed)
		if len(ranges) == 0 {
			continue
		}
		r := ranges[0]
		e.doc = e.doc.AddHighlight(r, sg.Category.HighlightColor())
		claimed = append(claimed, r)
	}
}

// unpaint removes the marks attributed to one suggestion: every occurrence
// of its original text carrying the suggestion's category colour loses the
// mark. Occurrences marked for other suggestions keep theirs.
func (e *Engine) unpaint(sg types.Suggestion) {
	plain := e.doc.PlainText()
	color := sg.Category.HighlightColor()
	for _, r := range Locate(plain, sg.Original, nil) {
		e.doc = e.doc.RemoveHighlight(r, color)
	}
}

// Accept replaces the first occurrence of the suggestion's original text
// with replacement and removes the suggestion from the pending set. The
// caller passes either the primary suggestion text or one of the
// alternatives; the engine applies whatever was chosen. Replacement lands in
// text-run content only, so surrounding formatting survives.
//
// When the original text is no longer present, Accept returns [ErrNotFound],
// the document stays byte-for-byte identical, and the suggestion remains
// pending. Accepting an id that is not in the store is a no-op.
func (e *Engine) Accept(id, replacement string) error {
	sg, ok := e.store.Get(id)
	if !ok {
		return nil
	}

	ranges := Locate(e.doc.PlainText(), sg.Original, nil)
	if len(ranges) == 0 {
		return ErrNotFound
	}

	e.unpaint(sg)
	doc, err := e.doc.Replace(ranges[0], replacement)
	if err != nil {
		// Locate guarantees in-bounds ranges, so this should never fire.
		slog.Warn("engine: replace failed", "id", id, "err", err)
		return ErrNotFound
	}
	e.doc = doc
	e.store.Remove(id)
	e.syncState()
	return nil
}

// AcceptAll applies the primary suggestion text of each listed id in store
// order against the evolving document, so earlier replacements are visible
// to later lookups. Suggestions whose original text is no longer found are
// skipped silently and stay pending. Returns the number of suggestions
// actually applied.
func (e *Engine) AcceptAll(ids []string) int {
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	applied := 0
	for _, sg := range e.store.All() {
		if _, ok := wanted[sg.ID]; !ok {
			continue
		}
		ranges := Locate(e.doc.PlainText(), sg.Original, nil)
		if len(ranges) == 0 {
			continue
		}
		e.unpaint(sg)
		doc, err := e.doc.Replace(ranges[0], sg.Suggestion)
		if err != nil {
			slog.Warn("engine: bulk replace failed", "id", sg.ID, "err", err)
			continue
		}
		e.doc = doc
		e.store.Remove(sg.ID)
		applied++
	}
	e.syncState()
	return applied
}

// Reject removes the suggestion's highlight marks without altering the text,
// then removes it from the pending set. Rejecting an id twice is safe: the
// second call is a no-op.
func (e *Engine) Reject(id string) {
	sg, ok := e.store.Get(id)
	if !ok {
		return
	}
	e.unpaint(sg)
	e.store.Remove(id)
	e.syncState()
}

// syncState drops back to the clean state once the last pending suggestion
// is resolved. Engine-originated mutations reach this path instead of
// invalidate, which is what keeps an accept from discarding the rest of the
// set.
func (e *Engine) syncState() {
	if e.store.Len() == 0 {
		e.doc = e.doc.ClearHighlights()
		e.state = StateClean
	}
}
