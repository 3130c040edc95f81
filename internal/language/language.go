// Package language is the closed set of languages the extractor
// understands. Each variant carries its tree-sitter grammar and the node
// types that hold human-readable text; anything unrecognized resolves to
// PlainText.
package language

import (
	"net/url"
	"path"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
)

// Tag identifies a supported language.
type Tag uint8

const (
	PlainText Tag = iota
	Bash
	C
	CPP
	CSS
	Go
	HTML
	Java
	JavaScript
	Lua
	PHP
	Python
	Ruby
	Rust
	TOML
	TSX
	TypeScript
	YAML
)

// Definition selects identifiers that name a new entity: the children of a
// Parent node stored under Field. An empty Field selects the direct
// identifier children of Parent.
type Definition struct {
	Parent string
	Field  string
}

// Language describes one variant.
type Language struct {
	Tag  Tag
	Name string
	// IDs are the editor language identifiers mapped to this variant.
	IDs []string
	// Extensions are lower-case file extensions including the dot.
	Extensions []string
	// Dictionaries names the language dictionaries consulted after the
	// common one.
	Dictionaries []string

	// Identifiers are node types that carry a name.
	Identifiers []string
	// Containers are node types that group several defined names, such as
	// Go's expression_list on the left of :=.
	Containers []string
	// Definitions locate defined names.
	Definitions []Definition
	// Comments are comment node types.
	Comments []string
	// Strings are string literal node types.
	Strings []string
	// StringHoles are child node types cut out of string literals
	// (escapes, interpolations, delimiters).
	StringHoles []string
	// OpaqueEscapes is set when the grammar leaves backslash escapes inside
	// string text instead of giving them their own nodes.
	OpaqueEscapes bool
	// Text are node types emitted as plain prose.
	Text []string
	// Imports are node types whose strings are never checked.
	Imports []string

	grammar func() *sitter.Language
	sets    nodeSets
	once    sync.Once
}

type nodeSets struct {
	identifiers map[string]bool
	containers  map[string]bool
	comments    map[string]bool
	strings     map[string]bool
	holes       map[string]bool
	text        map[string]bool
	imports     map[string]bool
	defs        map[string][]string
}

// Grammar returns the tree-sitter grammar, or nil for PlainText.
func (l *Language) Grammar() *sitter.Language {
	if l == nil || l.grammar == nil {
		return nil
	}
	return l.grammar()
}

func (l *Language) init() {
	l.once.Do(func() {
		l.sets = nodeSets{
			identifiers: toSet(l.Identifiers),
			containers:  toSet(l.Containers),
			comments:    toSet(l.Comments),
			strings:     toSet(l.Strings),
			holes:       toSet(l.StringHoles),
			text:        toSet(l.Text),
			imports:     toSet(l.Imports),
			defs:        make(map[string][]string),
		}
		for _, d := range l.Definitions {
			l.sets.defs[d.Parent] = append(l.sets.defs[d.Parent], d.Field)
		}
	})
}

// IsIdentifier reports whether nodeType carries a name.
func (l *Language) IsIdentifier(nodeType string) bool { l.init(); return l.sets.identifiers[nodeType] }

// IsContainer reports whether nodeType groups defined names.
func (l *Language) IsContainer(nodeType string) bool { l.init(); return l.sets.containers[nodeType] }

// IsComment reports whether nodeType is a comment.
func (l *Language) IsComment(nodeType string) bool { l.init(); return l.sets.comments[nodeType] }

// IsString reports whether nodeType is a string literal.
func (l *Language) IsString(nodeType string) bool { l.init(); return l.sets.strings[nodeType] }

// IsStringHole reports whether nodeType is cut out of string literals.
func (l *Language) IsStringHole(nodeType string) bool { l.init(); return l.sets.holes[nodeType] }

// IsText reports whether nodeType is prose.
func (l *Language) IsText(nodeType string) bool { l.init(); return l.sets.text[nodeType] }

// IsImport reports whether nodeType is an import or include.
func (l *Language) IsImport(nodeType string) bool { l.init(); return l.sets.imports[nodeType] }

// DefinitionFields returns the fields of parentType that hold defined
// names, with "" meaning direct children.
func (l *Language) DefinitionFields(parentType string) []string {
	l.init()
	return l.sets.defs[parentType]
}

func toSet(items []string) map[string]bool {
	out := make(map[string]bool, len(items))
	for _, it := range items {
		out[it] = true
	}
	return out
}

var (
	byTag = make(map[Tag]*Language)
	byID  = make(map[string]*Language)
	byExt = make(map[string]*Language)
)

func init() {
	for _, l := range variants {
		byTag[l.Tag] = l
		for _, id := range l.IDs {
			byID[id] = l
		}
		for _, ext := range l.Extensions {
			byExt[ext] = l
		}
	}
}

// Get returns the variant for tag, PlainText when unknown.
func Get(tag Tag) *Language {
	if l, ok := byTag[tag]; ok {
		return l
	}
	return plain
}

// All returns every variant in tag order.
func All() []*Language {
	out := make([]*Language, 0, len(byTag))
	for t := PlainText; t <= YAML; t++ {
		if l, ok := byTag[t]; ok {
			out = append(out, l)
		}
	}
	return out
}

// FromID maps an editor language id.
func FromID(id string) (*Language, bool) {
	l, ok := byID[strings.ToLower(strings.TrimSpace(id))]
	return l, ok
}

// FromPath maps a file path or URI by its extension.
func FromPath(p string) (*Language, bool) {
	if u, err := url.Parse(p); err == nil && u.Scheme != "" {
		p = u.Path
	}
	l, ok := byExt[strings.ToLower(path.Ext(p))]
	return l, ok
}

// Resolve picks the variant from the language id, then the path, falling
// back to PlainText.
func Resolve(id, p string) *Language {
	if l, ok := FromID(id); ok {
		return l
	}
	if l, ok := FromPath(p); ok {
		return l
	}
	return plain
}

func (t Tag) String() string {
	return Get(t).Name
}
