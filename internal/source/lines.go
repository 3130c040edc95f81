package source

import (
	"sort"
	"unicode/utf8"

	"fortio.org/safecast"
)

const maxUint32 = ^uint32(0)

func safeUint32(n int) uint32 {
	if n < 0 {
		return 0
	}
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		return maxUint32
	}
	return v
}

// LineIndex maps byte offsets of a text to line/column positions.
// It is built once per text and is safe for concurrent reads.
type LineIndex struct {
	text   string
	starts []uint32 // byte offset where each line begins
}

// NewLineIndex scans text once for line breaks (\n, \r\n and lone \r).
func NewLineIndex(text string) *LineIndex {
	starts := make([]uint32, 1, 16)
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
			starts = append(starts, safeUint32(i+1))
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				continue
			}
			starts = append(starts, safeUint32(i+1))
		}
	}
	return &LineIndex{text: text, starts: starts}
}

// Len returns the byte length of the indexed text.
func (idx *LineIndex) Len() uint32 {
	return safeUint32(len(idx.text))
}

// LineCount returns the number of lines, counting a trailing empty line.
func (idx *LineIndex) LineCount() int {
	return len(idx.starts)
}

// lineEnd returns the offset of the line terminator of line (or text end).
func (idx *LineIndex) lineEnd(line int) uint32 {
	end := idx.Len()
	if line+1 < len(idx.starts) {
		end = idx.starts[line+1] - 1
		if end > idx.starts[line] && idx.text[end-1] == '\r' && idx.text[end] == '\n' {
			end--
		}
	}
	return end
}

// PositionAt converts a byte offset to a position. Offsets past the end clamp
// to the end of the text; offsets inside a multi-byte rune snap to its start.
func (idx *LineIndex) PositionAt(offset uint32, enc Encoding) Position {
	if offset > idx.Len() {
		offset = idx.Len()
	}
	line := sort.Search(len(idx.starts), func(i int) bool { return idx.starts[i] > offset }) - 1
	if line < 0 {
		line = 0
	}
	lineStart := idx.starts[line]
	end := idx.lineEnd(line)
	if offset > end {
		offset = end
	}
	return Position{Line: safeUint32(line), Col: idx.columnUnits(lineStart, offset, enc)}
}

func (idx *LineIndex) columnUnits(from, to uint32, enc Encoding) uint32 {
	if enc == EncodingUTF8 {
		return to - from
	}
	units := uint32(0)
	for off := from; off < to; {
		r, size := utf8.DecodeRuneInString(idx.text[off:])
		if off+safeUint32(size) > to {
			break
		}
		if enc == EncodingUTF16 && r > 0xFFFF {
			units += 2
		} else {
			units++
		}
		off += safeUint32(size)
	}
	return units
}

// OffsetAt converts a position back to a byte offset, clamping to line and
// text bounds.
func (idx *LineIndex) OffsetAt(pos Position, enc Encoding) uint32 {
	if int(pos.Line) >= len(idx.starts) {
		return idx.Len()
	}
	off := idx.starts[pos.Line]
	end := idx.lineEnd(int(pos.Line))
	if enc == EncodingUTF8 {
		if off+pos.Col > end {
			return end
		}
		return off + pos.Col
	}
	units := uint32(0)
	for off < end && units < pos.Col {
		r, size := utf8.DecodeRuneInString(idx.text[off:end])
		need := uint32(1)
		if enc == EncodingUTF16 && r > 0xFFFF {
			need = 2
		}
		if units+need > pos.Col {
			break
		}
		units += need
		off += safeUint32(size)
	}
	return off
}

// RangeOf converts a byte span into a position range.
func (idx *LineIndex) RangeOf(span Span, enc Encoding) Range {
	return Range{
		Start: idx.PositionAt(span.Start, enc),
		End:   idx.PositionAt(span.End, enc),
	}
}
