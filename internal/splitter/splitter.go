// Package splitter breaks identifier and prose text into candidate words
// following compound-identifier conventions.
package splitter

import (
	"unicode"
	"unicode/utf8"
)

// SubWord is one candidate word. Offset is the byte offset of Text inside
// the text handed to Split.
type SubWord struct {
	Text   string
	Offset uint32
}

// End returns the byte offset just past the word.
func (w SubWord) End() uint32 {
	return w.Offset + uint32(len(w.Text)) // #nosec G115 -- bounded by the input length
}

// Split decomposes text. Non-alphanumeric characters delimit runs; inside a
// run words break at lower-to-upper transitions, at letter/digit boundaries
// and before the last capital of an acronym followed by a lowercase letter
// (HTTPServer splits into HTTP and Server). An apostrophe between two
// letters stays inside the word. Single characters and purely numeric
// tokens are dropped.
func Split(text string) []SubWord {
	var out []SubWord
	runStart := -1
	for i := 0; i <= len(text); {
		r, size := rune(0), 0
		if i < len(text) {
			r, size = utf8.DecodeRuneInString(text[i:])
		}
		inWord := i < len(text) && (isWordRune(r) || (isApostrophe(r) && runStart >= 0 && apostropheJoins(text, i, size)))
		if inWord {
			if runStart < 0 {
				runStart = i
			}
			i += size
			continue
		}
		if runStart >= 0 {
			out = splitRun(out, text, runStart, i)
			runStart = -1
		}
		if i >= len(text) {
			break
		}
		i += size
	}
	return out
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

func isApostrophe(r rune) bool {
	return r == '\'' || r == '’'
}

// apostropheJoins reports whether the apostrophe at i sits between letters.
func apostropheJoins(text string, i, size int) bool {
	prev, _ := utf8.DecodeLastRuneInString(text[:i])
	next, _ := utf8.DecodeRuneInString(text[i+size:])
	return unicode.IsLetter(prev) && unicode.IsLetter(next)
}

type class uint8

const (
	classOther class = iota
	classLower
	classUpper
	classDigit
)

func classify(r rune) class {
	switch {
	case unicode.IsUpper(r) || unicode.IsTitle(r):
		return classUpper
	case unicode.IsLower(r):
		return classLower
	case unicode.IsDigit(r):
		return classDigit
	default:
		return classOther
	}
}

// splitRun splits text[start:end], which holds only word runes.
func splitRun(out []SubWord, text string, start, end int) []SubWord {
	wordStart := start
	prevClass := classOther
	prevPos := -1
	for i := start; i < end; {
		r, size := utf8.DecodeRuneInString(text[i:])
		c := classify(r)
		if isApostrophe(r) || c == classOther {
			// apostrophes and combining marks continue the current word
			i += size
			continue
		}
		if prevPos >= 0 && boundary(text, prevClass, c, i+size) {
			split := i
			if prevClass == classUpper && c == classLower {
				// acronym followed by a capitalized word: HTTP|Server
				split = prevPos
			}
			if split > wordStart {
				out = emit(out, text, wordStart, split)
				wordStart = split
			}
		}
		prevClass, prevPos = c, i
		i += size
	}
	return emit(out, text, wordStart, end)
}

// boundary reports a word break before the current rune. next is the byte
// offset of the rune after it.
func boundary(text string, prev, cur class, next int) bool {
	switch {
	case prev == classLower && cur == classUpper:
		return true
	case prev == classDigit && cur != classDigit, prev != classDigit && cur == classDigit:
		return true
	case prev == classUpper && cur == classLower:
		// only a break when the capital before us ended a run of capitals;
		// the caller moves the split back one rune
		return runOfCapitalsBefore(text, next)
	}
	return false
}

// runOfCapitalsBefore reports whether the two runes before the lowercase
// rune ending at next are both capitals (the "PS" in "HTTPServer").
func runOfCapitalsBefore(text string, next int) bool {
	// step back over the current (lowercase) rune and the capital before it
	_, curSize := utf8.DecodeLastRuneInString(text[:next])
	i := next - curSize
	_, capSize := utf8.DecodeLastRuneInString(text[:i])
	i -= capSize
	if i <= 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return classify(r) == classUpper
}

func emit(out []SubWord, text string, start, end int) []SubWord {
	if end <= start {
		return out
	}
	word := text[start:end]
	if utf8.RuneCountInString(word) <= 1 || isNumeric(word) {
		return out
	}
	return append(out, SubWord{Text: word, Offset: uint32(start)}) // #nosec G115 -- bounded by the input length
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
