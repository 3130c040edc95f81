package dictionary

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Fold returns the lookup key for a word: NFC-normalized and case-folded.
// ASCII input takes a fast path.
func Fold(word string) string {
	if isASCII(word) {
		return strings.ToLower(word)
	}
	// cases.Caser is stateful, so one is created per call.
	return cases.Fold().String(norm.NFC.String(word))
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// WordCase describes the capitalization of a word.
type WordCase uint8

const (
	CaseLower WordCase = iota
	CaseUpper
	CaseTitle
	CaseMixed
)

// CaseOf classifies the capitalization of word.
func CaseOf(word string) WordCase {
	upper, lower, letters := 0, 0, 0
	firstUpper := false
	for i, r := range word {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		switch {
		case unicode.IsUpper(r):
			upper++
			if i == 0 {
				firstUpper = true
			}
		case unicode.IsLower(r):
			lower++
		}
	}
	switch {
	case letters == 0 || upper == 0:
		return CaseLower
	case upper == letters && letters > 1:
		return CaseUpper
	case firstUpper && upper == 1:
		return CaseTitle
	default:
		return CaseMixed
	}
}

// MatchCase rewrites a folded suggestion to follow the capitalization of
// the original word.
func MatchCase(original, suggestion string) string {
	switch CaseOf(original) {
	case CaseUpper:
		return strings.ToUpper(suggestion)
	case CaseTitle:
		r, size := utf8.DecodeRuneInString(suggestion)
		if r == utf8.RuneError {
			return suggestion
		}
		return string(unicode.ToTitle(r)) + suggestion[size:]
	default:
		return suggestion
	}
}
