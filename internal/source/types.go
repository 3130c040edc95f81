package source

import "fmt"

// Encoding selects the unit used to count columns inside a line.
type Encoding uint8

const (
	// EncodingUTF16 counts UTF-16 code units (the LSP default).
	EncodingUTF16 Encoding = iota
	// EncodingUTF8 counts bytes.
	EncodingUTF8
	// EncodingUTF32 counts code points.
	EncodingUTF32
)

// String returns the LSP positionEncoding name.
func (e Encoding) String() string {
	switch e {
	case EncodingUTF8:
		return "utf-8"
	case EncodingUTF32:
		return "utf-32"
	default:
		return "utf-16"
	}
}

// ParseEncoding maps an LSP positionEncoding name to an Encoding.
func ParseEncoding(s string) (Encoding, error) {
	switch s {
	case "utf-16", "":
		return EncodingUTF16, nil
	case "utf-8":
		return EncodingUTF8, nil
	case "utf-32":
		return EncodingUTF32, nil
	default:
		return EncodingUTF16, fmt.Errorf("unknown position encoding %q", s)
	}
}

// Position is a zero-based line and column.
type Position struct {
	Line uint32
	Col  uint32
}

// Less reports whether p is before other.
func (p Position) Less(other Position) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Col < other.Col
}

// Range is a half-open position range.
type Range struct {
	Start Position
	End   Position
}
