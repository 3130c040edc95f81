package judge

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"spelld/internal/source"
)

// SkipRule marks regions of text that are never words. Accept, when set,
// filters individual matches.
type SkipRule struct {
	Name    string
	Pattern *regexp.Regexp
	Accept  func(match string) bool
}

// DefaultSkipRules cover URLs, colors, emails, paths, identifiers of
// machines rather than people (UUIDs, hashes, base64 blobs, hex literals)
// and markdown link targets.
func DefaultSkipRules() []SkipRule {
	return []SkipRule{
		{Name: "url", Pattern: regexp.MustCompile(`[A-Za-z][A-Za-z0-9+.-]*://[^\s"'<>()]+`)},
		{Name: "hex-color", Pattern: regexp.MustCompile(`#[0-9a-fA-F]{3,8}\b`)},
		{Name: "email", Pattern: regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)},
		{Name: "unix-path", Pattern: regexp.MustCompile(`(?:~|\.{1,2})?/[^\s/"'<>()]+(?:/[^\s"'<>()]*)+`)},
		{Name: "windows-path", Pattern: regexp.MustCompile(`[A-Za-z]:\\[^\s"'<>()]*`)},
		{Name: "uuid", Pattern: regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)},
		{Name: "hex-literal", Pattern: regexp.MustCompile(`\b0[xX][0-9a-fA-F_]+\b`)},
		{Name: "base64", Pattern: regexp.MustCompile(`[A-Za-z0-9+/]{20,}={0,2}`), Accept: hasDigitOrSymbol},
		{Name: "hash", Pattern: regexp.MustCompile(`\b[0-9a-fA-F]{7,64}\b`), Accept: hasDigit},
		{Name: "markdown-link", Pattern: regexp.MustCompile(`\]\([^)\s]+\)`)},
	}
}

// PatternRules wraps user supplied expressions.
func PatternRules(patterns []*regexp.Regexp) []SkipRule {
	out := make([]SkipRule, 0, len(patterns))
	for _, p := range patterns {
		if p == nil {
			continue
		}
		out = append(out, SkipRule{Name: "user", Pattern: p})
	}
	return out
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

// base64 runs must contain a digit or symbol so long camelCase identifiers
// are still checked.
func hasDigitOrSymbol(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsDigit(r) || r == '+' || r == '/' || r == '='
	}) >= 0
}

// skipRanges returns the merged regions of text matched by rules.
func skipRanges(text string, rules []SkipRule) []source.Span {
	var spans []source.Span
	for _, rule := range rules {
		for _, loc := range rule.Pattern.FindAllStringIndex(text, -1) {
			if loc[1] <= loc[0] {
				continue
			}
			if rule.Accept != nil && !rule.Accept(text[loc[0]:loc[1]]) {
				continue
			}
			spans = append(spans, source.Span{Start: uint32(loc[0]), End: uint32(loc[1])}) // #nosec G115 -- bounded by the span length
		}
	}
	if len(spans) < 2 {
		return spans
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	merged := spans[:1]
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if s.Start <= last.End {
			if s.End > last.End {
				last.End = s.End
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

// Covered reports whether [start, end) lies entirely inside one of the
// sorted, merged ranges.
func Covered(ranges []source.Span, start, end uint32) bool {
	i := sort.Search(len(ranges), func(i int) bool { return ranges[i].End >= end })
	return i < len(ranges) && ranges[i].Start <= start
}
