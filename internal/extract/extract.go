// Package extract finds the human-readable spans of a document: defined
// identifiers, comments, string literal text and prose.
package extract

import (
	"context"
	"sort"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"

	"spelld/internal/language"
	"spelld/internal/source"
)

// Category is the syntactic origin of a span.
type Category uint8

const (
	Identifier Category = iota
	Comment
	String
	PlainText
)

func (c Category) String() string {
	switch c {
	case Identifier:
		return "identifier"
	case Comment:
		return "comment"
	case String:
		return "string"
	default:
		return "text"
	}
}

// Span is a candidate region of the document.
type Span struct {
	source.Span
	Category Category
}

// Result is the outcome of one extraction.
type Result struct {
	Spans []Span
	// Partial is set when the parse tree contains errors or parsing was cut
	// short; Spans then hold whatever the partial tree offered.
	Partial bool
}

// DefaultMaxBytes bounds the documents handed to the parser.
const DefaultMaxBytes = 4 << 20

// Extractor turns text into spans. It is safe for concurrent use; every call
// creates its own parser.
type Extractor struct {
	maxBytes int
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithMaxBytes sets the largest document that will be parsed. Larger
// documents yield no spans.
func WithMaxBytes(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxBytes = n
		}
	}
}

// New creates an Extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{maxBytes: DefaultMaxBytes}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the spans of text in document order, non-overlapping.
// A language without a grammar yields one PlainText span over the whole
// text. Parse failures never surface as errors: a tree with syntax errors
// is walked as far as it goes and a failed parse yields no spans.
func (e *Extractor) Extract(ctx context.Context, text []byte, lang *language.Language) Result {
	if len(text) == 0 {
		return Result{}
	}
	if len(text) > e.maxBytes {
		return Result{Partial: true}
	}
	grammar := lang.Grammar()
	if grammar == nil {
		return Result{Spans: []Span{{
			Span:     source.Span{Start: 0, End: uint32(len(text))}, // #nosec G115 -- bounded by maxBytes
			Category: PlainText,
		}}}
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar)
	tree, err := parser.ParseCtx(ctx, nil, text)
	if err != nil || tree == nil {
		return Result{Partial: true}
	}
	defer tree.Close()

	root := tree.RootNode()
	w := walker{lang: lang, text: text}
	w.walk(root)
	return Result{Spans: normalize(w.spans), Partial: root.HasError()}
}

type frame struct {
	node     *sitter.Node
	inImport bool
}

type walker struct {
	lang  *language.Language
	text  []byte
	spans []Span
}

func (w *walker) emit(start, end uint32, cat Category) {
	if end <= start {
		return
	}
	w.spans = append(w.spans, Span{Span: source.Span{Start: start, End: end}, Category: cat})
}

func (w *walker) walk(root *sitter.Node) {
	stack := []frame{{node: root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := f.node
		typ := n.Type()

		switch {
		case w.lang.IsComment(typ):
			w.emit(n.StartByte(), n.EndByte(), Comment)
			continue
		case w.lang.IsString(typ):
			if !f.inImport {
				w.emitString(n)
			}
			continue
		case w.lang.IsText(typ):
			w.emit(n.StartByte(), n.EndByte(), PlainText)
			continue
		}

		inImport := f.inImport || w.lang.IsImport(typ)
		if fields := w.lang.DefinitionFields(typ); len(fields) > 0 && !inImport {
			w.definitions(n, fields)
		}

		count := int(n.ChildCount())
		for i := count - 1; i >= 0; i-- {
			if child := n.Child(i); child != nil {
				stack = append(stack, frame{node: child, inImport: inImport})
			}
		}
	}
}

// emitString emits the literal fragments of a string node, leaving out
// escapes, interpolations and delimiters. Holes may sit at any depth, as in
// Python where escapes live inside string_content.
func (w *walker) emitString(n *sitter.Node) {
	cursor := n.StartByte()
	for _, hole := range w.holes(n, nil) {
		w.emitLiteral(cursor, hole.StartByte())
		if hole.EndByte() > cursor {
			cursor = hole.EndByte()
		}
	}
	w.emitLiteral(cursor, n.EndByte())
}

// holes appends the string holes below n in document order. A hole's own
// subtree is not searched.
func (w *walker) holes(n *sitter.Node, out []*sitter.Node) []*sitter.Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		if w.lang.IsStringHole(child.Type()) {
			out = append(out, child)
			continue
		}
		out = w.holes(child, out)
	}
	return out
}

// emitLiteral emits string text between start and end. For grammars with
// opaque escapes every backslash and the character after it are cut out.
func (w *walker) emitLiteral(start, end uint32) {
	if !w.lang.OpaqueEscapes {
		w.emit(start, end, String)
		return
	}
	i := start
	for i < end {
		if w.text[i] != '\\' {
			i++
			continue
		}
		w.emit(start, i, String)
		next := i + 1
		if next < end {
			_, size := utf8.DecodeRune(w.text[next:end])
			next += uint32(size) // #nosec G115 -- rune size is at most 4
		}
		i, start = next, next
	}
	w.emit(start, end, String)
}

func (w *walker) definitions(n *sitter.Node, fields []string) {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		name := n.FieldNameForChild(i)
		for _, field := range fields {
			if field == "" || field == name {
				w.names(child)
				break
			}
		}
	}
}

func (w *walker) names(n *sitter.Node) {
	typ := n.Type()
	if w.lang.IsIdentifier(typ) {
		w.emit(n.StartByte(), n.EndByte(), Identifier)
		return
	}
	if !w.lang.IsContainer(typ) {
		return
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if child := n.NamedChild(i); child != nil {
			w.names(child)
		}
	}
}

// normalize sorts spans by position and drops duplicates and spans that
// overlap an earlier one.
func normalize(spans []Span) []Span {
	if len(spans) == 0 {
		return nil
	}
	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].Start != spans[j].Start {
			return spans[i].Start < spans[j].Start
		}
		return spans[i].End > spans[j].End
	})
	out := spans[:1]
	for _, s := range spans[1:] {
		if s.Start < out[len(out)-1].End {
			continue
		}
		out = append(out, s)
	}
	return out
}
