// Package judge decides whether a candidate word is spelled correctly.
package judge

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"spelld/internal/dictionary"
	"spelld/internal/source"
)

// Verdict is the outcome for one word.
type Verdict uint8

const (
	Correct Verdict = iota
	Misspelled
)

func (v Verdict) String() string {
	if v == Misspelled {
		return "misspelled"
	}
	return "correct"
}

// DefaultMinWordLength is the shortest word that is looked up.
const DefaultMinWordLength = 3

// Options are the per-document inputs of a Judge.
type Options struct {
	// Words are accepted regardless of the dictionaries.
	Words []string
	// FlagWords are always reported, even when a dictionary has them.
	FlagWords []string
	// Patterns mark extra regions that are never checked.
	Patterns []*regexp.Regexp
	// MinWordLength skips shorter words; zero means DefaultMinWordLength.
	MinWordLength int
}

// Judge applies normalization, allow rules and dictionary lookup. It is
// immutable and safe for concurrent use.
type Judge struct {
	store  *dictionary.Store
	words  map[string]struct{}
	flags  map[string]struct{}
	rules  []SkipRule
	minLen int
}

// New builds a Judge over store.
func New(store *dictionary.Store, opts Options) *Judge {
	j := &Judge{
		store:  store,
		words:  foldSet(opts.Words),
		flags:  foldSet(opts.FlagWords),
		rules:  append(DefaultSkipRules(), PatternRules(opts.Patterns)...),
		minLen: opts.MinWordLength,
	}
	if j.minLen <= 0 {
		j.minLen = DefaultMinWordLength
	}
	return j
}

func foldSet(words []string) map[string]struct{} {
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		out[dictionary.Fold(w)] = struct{}{}
	}
	return out
}

// Store returns the dictionary store the judge consults.
func (j *Judge) Store() *dictionary.Store {
	return j.store
}

// SkipRanges returns the merged regions of text that are never words.
func (j *Judge) SkipRanges(text string) []source.Span {
	return skipRanges(text, j.rules)
}

// Check judges one word against the common dictionary and the
// dictionaries named by ids.
func (j *Judge) Check(word string, ids []string) Verdict {
	folded := strings.ReplaceAll(dictionary.Fold(word), "’", "'")
	if _, flagged := j.flags[folded]; flagged {
		return Misspelled
	}
	if utf8.RuneCountInString(word) < j.minLen {
		return Correct
	}
	if isDNA(word) {
		return Correct
	}
	if j.known(folded, ids) {
		return Correct
	}
	if stem, ok := stripSuffix(folded); ok && j.known(stem, ids) {
		return Correct
	}
	return Misspelled
}

func (j *Judge) known(folded string, ids []string) bool {
	if _, ok := j.words[folded]; ok {
		return true
	}
	return j.store != nil && j.store.Contains(folded, ids)
}

// Suggest proposes replacements for a misspelled word.
func (j *Judge) Suggest(word string, ids []string) []string {
	if j.store == nil {
		return nil
	}
	return j.store.Suggest(word, ids)
}

// stripSuffix removes one trailing possessive or plural marker.
func stripSuffix(folded string) (string, bool) {
	for _, suffix := range []string{"'s", "s"} {
		if stem, ok := strings.CutSuffix(folded, suffix); ok && stem != "" {
			return stem, true
		}
	}
	return "", false
}

func isDNA(word string) bool {
	if len(word) < 4 {
		return false
	}
	for i := 0; i < len(word); i++ {
		switch word[i] {
		case 'A', 'C', 'G', 'T', 'a', 'c', 'g', 't':
		default:
			return false
		}
	}
	return true
}
