package lsp

import "spelld/internal/source"

// applyChanges applies content changes in order. A change without a range
// replaces the whole text.
func applyChanges(text string, changes []textDocumentContentChangeEvent, enc source.Encoding) string {
	for _, change := range changes {
		if change.Range == nil {
			text = change.Text
			continue
		}
		idx := source.NewLineIndex(text)
		start := idx.OffsetAt(toPosition(change.Range.Start), enc)
		end := idx.OffsetAt(toPosition(change.Range.End), enc)
		if end < start {
			end = start
		}
		text = text[:start] + change.Text + text[end:]
	}
	return text
}

func toPosition(p position) source.Position {
	return source.Position{Line: p.Line, Col: p.Character}
}

func fromRange(r source.Range) lspRange {
	return lspRange{
		Start: position{Line: r.Start.Line, Character: r.Start.Col},
		End:   position{Line: r.End.Line, Character: r.End.Col},
	}
}
