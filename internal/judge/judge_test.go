package judge

import (
	"regexp"
	"strings"
	"testing"

	"spelld/internal/dictionary"
)

func testJudge(t *testing.T, opts Options) *Judge {
	t.Helper()
	common := dictionary.NewBuilder(dictionary.CommonID).
		Add("hello", "world", "calculate", "user", "don't", "word").Build()
	golang := dictionary.NewBuilder("go").Add("goroutine").Build()
	store := dictionary.NewStore(common, []*dictionary.Dictionary{golang})
	t.Cleanup(store.Close)
	return New(store, opts)
}

func TestCheck(t *testing.T) {
	j := testJudge(t, Options{Words: []string{"Spelld"}, FlagWords: []string{"world"}})
	tests := []struct {
		word string
		ids  []string
		want Verdict
	}{
		{"hello", nil, Correct},
		{"Hello", nil, Correct},
		{"HELLO", nil, Correct},
		{"Wolrd", nil, Misspelled},
		{"calculater", nil, Misspelled},
		{"users", nil, Correct},
		{"user's", nil, Correct},
		{"don’t", nil, Correct},
		{"goroutine", []string{"go"}, Correct},
		{"goroutines", []string{"go"}, Correct},
		{"goroutine", nil, Misspelled},
		{"goroutine", []string{"klingon"}, Misspelled},
		{"spelld", nil, Correct},
		{"world", nil, Misspelled},
		{"GATTACA", nil, Correct},
		{"gattacax", nil, Misspelled},
		{"xz", nil, Correct},
	}
	for _, tt := range tests {
		if got := j.Check(tt.word, tt.ids); got != tt.want {
			t.Errorf("Check(%q, %v) = %v, want %v", tt.word, tt.ids, got, tt.want)
		}
	}
}

func TestMinWordLength(t *testing.T) {
	j := testJudge(t, Options{MinWordLength: 6})
	if got := j.Check("wolrd", nil); got != Correct {
		t.Fatalf("short word judged %v", got)
	}
	if got := j.Check("wolrdd", nil); got != Misspelled {
		t.Fatalf("long word judged %v", got)
	}
}

func TestSkipRanges(t *testing.T) {
	j := testJudge(t, Options{Patterns: []*regexp.Regexp{regexp.MustCompile(`TICKET-\d+`)}})
	tests := []struct {
		text    string
		skipped string
	}{
		{"see https://exmaple.com/pathh for details", "https://exmaple.com/pathh"},
		{"color: #ff00aa;", "#ff00aa"},
		{"mail jdoe@exmaple.org today", "jdoe@exmaple.org"},
		{"open /usr/lcoal/bin now", "/usr/lcoal/bin"},
		{`path C:\Users\jdoe\dcuments`, `C:\Users\jdoe\dcuments`},
		{"id 123e4567-e89b-12d3-a456-426614174000", "123e4567-e89b-12d3-a456-426614174000"},
		{"commit 3f2a9bc1d", "3f2a9bc1d"},
		{"mask 0xdeadbeef", "0xdeadbeef"},
		{"blob aGVsbG8gd29ybGQgdGhpcyBpcw==", "aGVsbG8gd29ybGQgdGhpcyBpcw=="},
		{"[docs](https://exmaple.com)", "](https://exmaple.com)"},
		{"fixes TICKET-42", "TICKET-42"},
	}
	for _, tt := range tests {
		ranges := j.SkipRanges(tt.text)
		start := strings.Index(tt.text, tt.skipped)
		if start < 0 {
			t.Fatalf("bad fixture %q", tt.text)
		}
		end := start + len(tt.skipped)
		if !Covered(ranges, uint32(start), uint32(end)) {
			t.Errorf("%q: %q not covered by %v", tt.text, tt.skipped, ranges)
		}
	}
}

func TestSkipRangesLeaveWordsAlone(t *testing.T) {
	j := testJudge(t, Options{})
	for _, text := range []string{
		"thisIsAVeryLongIdentifierName",
		"defaced effaced",
		"and/or",
		"// Calculater does the math",
	} {
		if ranges := j.SkipRanges(text); len(ranges) != 0 {
			t.Errorf("%q: unexpected skip ranges %v", text, ranges)
		}
	}
}

func TestSuggest(t *testing.T) {
	j := testJudge(t, Options{})
	got := j.Suggest("Calculater", nil)
	if len(got) == 0 || got[0] != "Calculate" {
		t.Fatalf("suggestions = %v", got)
	}
}
