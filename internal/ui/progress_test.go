package ui

import (
	"strings"
	"testing"
)

func TestProgressModelAppliesEvents(t *testing.T) {
	events := make(chan Event)
	model := NewProgressModel("checking", []string{"a.go", "b.md"}, events).(*progressModel)

	model.applyEvent(Event{File: "a.go", Status: StatusChecking})
	model.applyEvent(Event{File: "a.go", Status: StatusFindings, Findings: 3})
	model.applyEvent(Event{File: "b.md", Status: StatusClean})
	model.applyEvent(Event{File: "unknown.txt", Status: StatusError})

	if model.total != 3 {
		t.Fatalf("total = %d", model.total)
	}
	view := model.View()
	for _, want := range []string{"3 misspelled", "3 found", "clean", "a.go", "b.md"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"a/very/long/path.go", 10, "a/very/..."},
		{"日本語ファイル", 6, "日..."},
		{"abc", 0, "abc"},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.width); got != tc.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
		}
	}
}
