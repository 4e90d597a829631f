// Package richtext provides a structured rich-text document model: a
// document is an ordered list of blocks (paragraphs, headings), each holding
// styled text runs. Highlight marks live on runs as presentation-only
// attributes — adding or removing a mark never changes the document's plain
// text.
//
// All operations work on the plain-text projection of the document: run
// texts concatenated in order, with a single "\n" between blocks. Offsets in
// [types.Range] values always refer to this projection, so callers never
// touch markup internals when replacing text.
//
// Document values have value semantics: mutating operations return a new
// Document and leave the receiver untouched, which keeps engine operations
// unit-testable without a live rendering surface.
package richtext

import (
	"fmt"
	"strings"

	"github.com/flashflow-ai/flashflow/pkg/types"
)

// Style holds the character formatting flags of a run.
type Style struct {
	Bold      bool `json:"bold,omitempty"`
	Italic    bool `json:"italic,omitempty"`
	Underline bool `json:"underline,omitempty"`
}

// Run is a maximal span of identically formatted text inside a block.
type Run struct {
	// Text is the literal text content.
	Text string `json:"text"`

	// Style is the character formatting applied to the whole run.
	Style Style `json:"style,omitempty"`

	// Highlight is the highlight mark colour, or "" when unmarked.
	// Highlights are presentation-only and never affect PlainText.
	Highlight string `json:"highlight,omitempty"`
}

// BlockKind discriminates block-level elements.
type BlockKind string

const (
	BlockParagraph BlockKind = "paragraph"
	BlockHeading   BlockKind = "heading"
)

// Block is one block-level element: a paragraph or a heading with its runs.
type Block struct {
	Kind BlockKind `json:"kind"`

	// Level is the heading level (1–3) when Kind is BlockHeading; 0 otherwise.
	Level int `json:"level,omitempty"`

	Runs []Run `json:"runs"`
}

// Document is an ordered sequence of blocks.
type Document struct {
	Blocks []Block `json:"blocks"`
}

// FromText builds a document of plain paragraphs from s, splitting on "\n".
func FromText(s string) Document {
	lines := strings.Split(s, "\n")
	blocks := make([]Block, 0, len(lines))
	for _, line := range lines {
		b := Block{Kind: BlockParagraph}
		if line != "" {
			b.Runs = []Run{{Text: line}}
		}
		blocks = append(blocks, b)
	}
	return Document{Blocks: blocks}
}

// PlainText returns the plain-text projection: run texts concatenated, with
// one "\n" between consecutive blocks. Highlight marks and styles do not
// appear in the projection.
func (d Document) PlainText() string {
	var sb strings.Builder
	for i, b := range d.Blocks {
		if i > 0 {
			sb.WriteByte('\n')
		}
		for _, r := range b.Runs {
			sb.WriteString(r.Text)
		}
	}
	return sb.String()
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	out := Document{Blocks: make([]Block, len(d.Blocks))}
	for i, b := range d.Blocks {
		nb := Block{Kind: b.Kind, Level: b.Level}
		if len(b.Runs) > 0 {
			nb.Runs = make([]Run, len(b.Runs))
			copy(nb.Runs, b.Runs)
		}
		out.Blocks[i] = nb
	}
	return out
}

// Replace substitutes the text covered by r with replacement and returns the
// resulting document. The replacement is inserted as a single run carrying
// the style of the run where r begins, with no highlight mark; formatting of
// the surrounding text is preserved. A range spanning a block boundary
// merges the affected blocks.
//
// Returns an error if r is out of bounds for the current plain text.
func (d Document) Replace(r types.Range, replacement string) (Document, error) {
	plainLen := len(d.PlainText())
	if r.From < 0 || r.To < r.From || r.To > plainLen {
		return Document{}, fmt.Errorf("richtext: range [%d,%d) out of bounds for text of length %d", r.From, r.To, plainLen)
	}

	out := Document{}
	offset := 0
	inserted := false

	// insert appends the replacement run to the last output block.
	insert := func(style Style) {
		inserted = true
		if replacement == "" {
			return
		}
		last := len(out.Blocks) - 1
		out.Blocks[last].Runs = append(out.Blocks[last].Runs, Run{Text: replacement, Style: style})
	}

	for bi, b := range d.Blocks {
		if bi > 0 {
			// The block separator occupies one offset.
			sepDeleted := r.From <= offset && offset < r.To
			offset++
			if sepDeleted && len(out.Blocks) > 0 {
				// Separator removed: merge into the previous output block.
				// A range starting on this separator inserts here, not at
				// the end of the document.
				if !inserted {
					insert(Style{})
				}
			} else {
				out.Blocks = append(out.Blocks, Block{Kind: b.Kind, Level: b.Level})
			}
		} else {
			out.Blocks = append(out.Blocks, Block{Kind: b.Kind, Level: b.Level})
		}

		for _, run := range b.Runs {
			runStart := offset
			runEnd := offset + len(run.Text)
			offset = runEnd
			last := len(out.Blocks) - 1

			switch {
			case runEnd < r.From || runStart > r.To:
				// Entirely outside the range.
				out.Blocks[last].Runs = append(out.Blocks[last].Runs, run)

			case runStart >= r.From && runEnd <= r.To:
				// Entirely covered: dropped. Insertion happens at the run
				// containing r.From; if r.From landed exactly on runStart and
				// nothing was inserted yet, insert here.
				if !inserted && r.From >= runStart {
					insert(run.Style)
				}

			default:
				// Partial overlap, or touching at a boundary.
				if prefix := run.Text[:clamp(r.From-runStart, 0, len(run.Text))]; prefix != "" {
					out.Blocks[last].Runs = append(out.Blocks[last].Runs, Run{Text: prefix, Style: run.Style, Highlight: run.Highlight})
				}
				if !inserted && r.From >= runStart && r.From <= runEnd {
					insert(run.Style)
				}
				if suffixStart := clamp(r.To-runStart, 0, len(run.Text)); suffixStart < len(run.Text) {
					out.Blocks[last].Runs = append(out.Blocks[last].Runs, Run{Text: run.Text[suffixStart:], Style: run.Style, Highlight: run.Highlight})
				}
			}
		}
	}

	if !inserted {
		// Range starts at the very end of the document, or the document is empty.
		if len(out.Blocks) == 0 {
			out.Blocks = append(out.Blocks, Block{Kind: BlockParagraph})
		}
		insert(Style{})
	}

	return out.normalize(), nil
}

// mapRange splits runs at the boundaries of r and applies fn to every run
// part fully inside r. Used for highlight mark application and removal; fn
// must not change the run's text.
func (d Document) mapRange(r types.Range, fn func(Run) Run) Document {
	out := Document{}
	offset := 0

	for bi, b := range d.Blocks {
		if bi > 0 {
			offset++
		}
		nb := Block{Kind: b.Kind, Level: b.Level}

		for _, run := range b.Runs {
			runStart := offset
			runEnd := offset + len(run.Text)
			offset = runEnd

			if runEnd <= r.From || runStart >= r.To {
				nb.Runs = append(nb.Runs, run)
				continue
			}

			cutFrom := clamp(r.From-runStart, 0, len(run.Text))
			cutTo := clamp(r.To-runStart, 0, len(run.Text))

			if cutFrom > 0 {
				nb.Runs = append(nb.Runs, Run{Text: run.Text[:cutFrom], Style: run.Style, Highlight: run.Highlight})
			}
			mid := Run{Text: run.Text[cutFrom:cutTo], Style: run.Style, Highlight: run.Highlight}
			nb.Runs = append(nb.Runs, fn(mid))
			if cutTo < len(run.Text) {
				nb.Runs = append(nb.Runs, Run{Text: run.Text[cutTo:], Style: run.Style, Highlight: run.Highlight})
			}
		}

		out.Blocks = append(out.Blocks, nb)
	}

	return out.normalize()
}

// AddHighlight marks the text covered by r with the given colour and returns
// the resulting document. The plain text is unchanged.
func (d Document) AddHighlight(r types.Range, color string) Document {
	return d.mapRange(r, func(run Run) Run {
		run.Highlight = color
		return run
	})
}

// RemoveHighlight clears highlight marks of the given colour inside r.
// Runs carrying a different colour (or none) are left untouched, so
// overlapping occurrences marked for other suggestions survive.
func (d Document) RemoveHighlight(r types.Range, color string) Document {
	return d.mapRange(r, func(run Run) Run {
		if run.Highlight == color {
			run.Highlight = ""
		}
		return run
	})
}

// ClearHighlights removes every highlight mark from the document.
func (d Document) ClearHighlights() Document {
	out := d.Clone()
	for bi := range out.Blocks {
		for ri := range out.Blocks[bi].Runs {
			out.Blocks[bi].Runs[ri].Highlight = ""
		}
	}
	return out.normalize()
}

// HighlightedRanges returns the plain-text ranges currently marked with the
// given colour, in document order. Adjacent marked runs coalesce into one
// range.
func (d Document) HighlightedRanges(color string) []types.Range {
	var out []types.Range
	offset := 0
	for bi, b := range d.Blocks {
		if bi > 0 {
			offset++
		}
		for _, run := range b.Runs {
			runStart := offset
			runEnd := offset + len(run.Text)
			offset = runEnd
			if run.Highlight != color || run.Text == "" {
				continue
			}
			if n := len(out); n > 0 && out[n-1].To == runStart {
				out[n-1].To = runEnd
			} else {
				out = append(out, types.Range{From: runStart, To: runEnd})
			}
		}
	}
	return out
}

// normalize merges adjacent runs with identical formatting and drops empty
// runs. Blocks are preserved even when they become empty.
func (d Document) normalize() Document {
	out := Document{Blocks: make([]Block, 0, len(d.Blocks))}
	for _, b := range d.Blocks {
		nb := Block{Kind: b.Kind, Level: b.Level}
		for _, run := range b.Runs {
			if run.Text == "" {
				continue
			}
			if n := len(nb.Runs); n > 0 &&
				nb.Runs[n-1].Style == run.Style &&
				nb.Runs[n-1].Highlight == run.Highlight {
				nb.Runs[n-1].Text += run.Text
				continue
			}
			nb.Runs = append(nb.Runs, run)
		}
		out.Blocks = append(out.Blocks, nb)
	}
	return out
}

// clamp limits v to the inclusive interval [lo, hi].
func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
