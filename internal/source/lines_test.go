package source

import (
	"testing"
)

func TestLineIndexPositionAt(t *testing.T) {
	text := "one\ntwo\r\nthree\rfour"
	idx := NewLineIndex(text)
	if idx.LineCount() != 4 {
		t.Fatalf("expected 4 lines, got %d", idx.LineCount())
	}

	tests := []struct {
		name   string
		offset uint32
		want   Position
	}{
		{name: "start", offset: 0, want: Position{Line: 0, Col: 0}},
		{name: "end of first line", offset: 3, want: Position{Line: 0, Col: 3}},
		{name: "second line", offset: 4, want: Position{Line: 1, Col: 0}},
		{name: "inside crlf", offset: 8, want: Position{Line: 1, Col: 3}},
		{name: "after crlf", offset: 9, want: Position{Line: 2, Col: 0}},
		{name: "after lone cr", offset: 15, want: Position{Line: 3, Col: 0}},
		{name: "text end", offset: uint32(len(text)), want: Position{Line: 3, Col: 4}},
		{name: "past end clamps", offset: 1000, want: Position{Line: 3, Col: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := idx.PositionAt(tt.offset, EncodingUTF16)
			if got != tt.want {
				t.Errorf("PositionAt(%d) = %+v, want %+v", tt.offset, got, tt.want)
			}
		})
	}
}

func TestLineIndexEncodings(t *testing.T) {
	text := "a🙂é word"
	idx := NewLineIndex(text)
	off := uint32(len("a🙂é "))

	if got := idx.PositionAt(off, EncodingUTF16); got.Col != 5 {
		t.Fatalf("utf-16 column: got %d, want 5", got.Col)
	}
	if got := idx.PositionAt(off, EncodingUTF8); got.Col != off {
		t.Fatalf("utf-8 column: got %d, want %d", got.Col, off)
	}
	if got := idx.PositionAt(off, EncodingUTF32); got.Col != 4 {
		t.Fatalf("utf-32 column: got %d, want 4", got.Col)
	}
}

func TestLineIndexRoundTrip(t *testing.T) {
	text := "fn main() {\n    let s = \"é🙂\";\n}\n"
	idx := NewLineIndex(text)
	for _, enc := range []Encoding{EncodingUTF8, EncodingUTF16, EncodingUTF32} {
		for off := 0; off <= len(text); off++ {
			if off < len(text) && text[off]&0xC0 == 0x80 {
				continue
			}
			pos := idx.PositionAt(uint32(off), enc)
			back := idx.OffsetAt(pos, enc)
			if back != uint32(off) {
				t.Fatalf("%s: offset %d -> %+v -> %d", enc, off, pos, back)
			}
		}
	}
}

func TestParseEncoding(t *testing.T) {
	if enc, err := ParseEncoding("utf-8"); err != nil || enc != EncodingUTF8 {
		t.Fatalf("utf-8: got %v, %v", enc, err)
	}
	if _, err := ParseEncoding("latin1"); err == nil {
		t.Fatal("expected error for unknown encoding")
	}
}

func TestSpanOverlaps(t *testing.T) {
	a := Span{Start: 2, End: 6}
	if !a.Overlaps(Span{Start: 5, End: 9}) {
		t.Error("expected overlap")
	}
	if a.Overlaps(Span{Start: 6, End: 9}) {
		t.Error("adjacent spans must not overlap")
	}
	if got := a.ShiftRight(3); got != (Span{Start: 5, End: 9}) {
		t.Errorf("ShiftRight = %v", got)
	}
}
