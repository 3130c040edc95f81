package engine

import (
	"fmt"
	"sort"

	"spelld/internal/extract"
	"spelld/internal/source"
)

// Misspelling is a judged word located in document bytes.
type Misspelling struct {
	Word     string
	Span     source.Span
	Category extract.Category
}

// Finding is a misspelling mapped to editor coordinates.
type Finding struct {
	Word        string
	Span        source.Span
	Range       source.Range
	Category    extract.Category
	Suggestions []string
}

// Message is the human-readable diagnostic text.
func (f Finding) Message() string {
	return fmt.Sprintf("Possible spelling issue '%s'.", f.Word)
}

// Assemble orders misspellings by position and maps them to line/column
// ranges, building the line index once. suggest may be nil; it is called
// once per distinct word.
func Assemble(text string, words []Misspelling, enc source.Encoding, suggest func(string) []string) []Finding {
	if len(words) == 0 {
		return nil
	}
	sorted := make([]Misspelling, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Span.Start != sorted[j].Span.Start {
			return sorted[i].Span.Start < sorted[j].Span.Start
		}
		return sorted[i].Span.End < sorted[j].Span.End
	})

	idx := source.NewLineIndex(text)
	cache := make(map[string][]string)
	out := make([]Finding, 0, len(sorted))
	for _, m := range sorted {
		f := Finding{
			Word:     m.Word,
			Span:     m.Span,
			Range:    idx.RangeOf(m.Span, enc),
			Category: m.Category,
		}
		if suggest != nil {
			sugs, ok := cache[m.Word]
			if !ok {
				sugs = suggest(m.Word)
				cache[m.Word] = sugs
			}
			f.Suggestions = sugs
		}
		out = append(out, f)
	}
	return out
}
