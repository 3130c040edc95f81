// Package dictionary holds the immutable word sets consulted by the spelling
// judge and produces near-miss suggestions.
//
// A Store is built once at process start and shared read-only by every
// analysis; nothing in it is mutated after construction, so lookups need no
// locking. Words are kept in folded form (see Fold).
package dictionary

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// CommonID is the identifier of the always-consulted common dictionary.
const CommonID = "common"

// Dictionary is an immutable set of correctly spelled words.
type Dictionary struct {
	id    string
	words map[string]struct{}
	byLen map[int][]string // rune length -> sorted folded words
}

// ID returns the dictionary identifier (a language tag or "common").
func (d *Dictionary) ID() string {
	if d == nil {
		return ""
	}
	return d.id
}

// Len returns the number of distinct words.
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.words)
}

// Contains reports whether the folded word is present.
func (d *Dictionary) Contains(folded string) bool {
	if d == nil {
		return false
	}
	_, ok := d.words[folded]
	return ok
}

// Words returns all words in sorted order.
func (d *Dictionary) Words() []string {
	if d == nil {
		return nil
	}
	out := make([]string, 0, len(d.words))
	for w := range d.words {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

func (d *Dictionary) bucket(n int) []string {
	if d == nil {
		return nil
	}
	return d.byLen[n]
}

// Builder accumulates words for a Dictionary.
type Builder struct {
	id    string
	words map[string]struct{}
}

// NewBuilder starts a dictionary with the given id.
func NewBuilder(id string) *Builder {
	return &Builder{id: strings.ToLower(strings.TrimSpace(id)), words: make(map[string]struct{})}
}

// Add inserts words, folding them first. Empty entries are ignored.
func (b *Builder) Add(words ...string) *Builder {
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		b.words[Fold(w)] = struct{}{}
	}
	return b
}

// AddReader reads a word list. Plain lists (one word per line, '#' comments)
// and hunspell .dic files (leading count line, "/FLAGS" suffixes) are both
// accepted; affix flags are dropped rather than expanded.
func (b *Builder) AddReader(r io.Reader) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	first := true
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if first {
			first = false
			line = strings.TrimPrefix(line, "\ufeff")
			if isCountLine(line) {
				continue
			}
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if i := strings.IndexAny(line, " \t"); i >= 0 {
			line = line[:i]
		}
		if i := strings.IndexByte(line, '/'); i > 0 {
			line = line[:i]
		}
		b.Add(line)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read word list for %q: %w", b.id, err)
	}
	return nil
}

func isCountLine(line string) bool {
	if line == "" {
		return false
	}
	for _, r := range line {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// Build freezes the accumulated words. The builder must not be reused.
func (b *Builder) Build() *Dictionary {
	d := &Dictionary{
		id:    b.id,
		words: b.words,
		byLen: make(map[int][]string),
	}
	for w := range d.words {
		n := utf8.RuneCountInString(w)
		d.byLen[n] = append(d.byLen[n], w)
	}
	for n := range d.byLen {
		sort.Strings(d.byLen[n])
	}
	b.words = nil
	return d
}
