package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"spelld/internal/dictionary"
	"spelld/internal/engine"
	"spelld/internal/source"
	"spelld/internal/ui"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func testStore(t *testing.T) *dictionary.Store {
	t.Helper()
	common := dictionary.NewBuilder(dictionary.CommonID).Add(
		"hello", "world", "ignore", "paths", "gen",
	).Build()
	store := dictionary.NewStore(common, nil)
	t.Cleanup(store.Close)
	return store
}

func TestCollectFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "notes.txt"), "hello\n")
	writeFile(t, filepath.Join(root, "src", "main.go"), "package main\n")
	writeFile(t, filepath.Join(root, ".git", "config.txt"), "hello\n")
	writeFile(t, filepath.Join(root, "node_modules", "x.js"), "hello\n")
	writeFile(t, filepath.Join(root, "blob.bin"), "\x00\x01")

	files, err := collectFiles([]string{root}, false)
	if err != nil {
		t.Fatalf("collectFiles: %v", err)
	}
	want := []string{filepath.Join(root, "notes.txt"), filepath.Join(root, "src", "main.go")}
	if !slices.Equal(files, want) {
		t.Fatalf("files = %v, want %v", files, want)
	}

	files, err = collectFiles([]string{root, filepath.Join(root, "blob.bin")}, false)
	if err != nil {
		t.Fatalf("collectFiles: %v", err)
	}
	if !slices.Contains(files, filepath.Join(root, "blob.bin")) {
		t.Fatalf("explicit file argument dropped: %v", files)
	}

	files, err = collectFiles([]string{root}, true)
	if err != nil {
		t.Fatalf("collectFiles: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("--all files = %v", files)
	}

	if _, err := collectFiles([]string{filepath.Join(root, "missing")}, false); err == nil {
		t.Fatal("expected error for missing path")
	}
}

func TestCheckerRun(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "spelld.toml"), "ignore_paths = [\"gen/**\"]\nseverity = \"warning\"\n")
	writeFile(t, filepath.Join(root, "notes.txt"), "Hello Wolrd\n")
	writeFile(t, filepath.Join(root, "clean.md"), "Hello world\n")
	writeFile(t, filepath.Join(root, "gen", "out.txt"), "Wolrd wolrd\n")

	files := []string{
		filepath.Join(root, "clean.md"),
		filepath.Join(root, "gen", "out.txt"),
		filepath.Join(root, "notes.txt"),
	}
	events := make(chan ui.Event, 16)
	c := newChecker(testStore(t), checkOptions{jobs: 2, suggest: true, maxDiagnostics: 10})
	results, err := c.run(context.Background(), files, events)
	close(events)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %+v", results)
	}
	clean, gen, notes := results[0], results[1], results[2]
	if clean.err != nil || len(clean.findings) != 0 || clean.skipped {
		t.Fatalf("clean.md = %+v", clean)
	}
	if !gen.skipped || len(gen.findings) != 0 {
		t.Fatalf("gen/out.txt should be skipped: %+v", gen)
	}
	if len(notes.findings) != 1 {
		t.Fatalf("notes.txt findings = %+v", notes.findings)
	}
	f := notes.findings[0]
	if f.Word != "Wolrd" || f.Range.Start.Line != 0 || f.Range.Start.Col != 6 {
		t.Fatalf("finding = %+v", f)
	}
	if !slices.Contains(f.Suggestions, "World") {
		t.Fatalf("suggestions = %v", f.Suggestions)
	}
	if notes.severity.String() != "warning" {
		t.Fatalf("severity = %v", notes.severity)
	}

	finished := map[string]ui.Status{}
	for ev := range events {
		if ev.Status != ui.StatusChecking {
			finished[ev.File] = ev.Status
		}
	}
	if finished[files[0]] != ui.StatusClean || finished[files[1]] != ui.StatusSkipped || finished[files[2]] != ui.StatusFindings {
		t.Fatalf("events = %v", finished)
	}
}

func TestSourceLine(t *testing.T) {
	text := "first\n\tx := \"Wolrd\"\r\nlast"
	start := uint32(strings.Index(text, "Wolrd"))
	f := engine.Finding{Word: "Wolrd", Span: source.Span{Start: start, End: start + 5}}
	line, prefix := sourceLine(text, f)
	if line != `    x := "Wolrd"` {
		t.Fatalf("line = %q", line)
	}
	if prefix != `    x := "` {
		t.Fatalf("prefix = %q", prefix)
	}
}

func TestRenderShortAndJSON(t *testing.T) {
	results := []fileResult{{
		display: "a.txt",
		text:    "Hello Wolrd\n",
		findings: []engine.Finding{{
			Word:        "Wolrd",
			Span:        source.Span{Start: 6, End: 11},
			Range:       source.Range{Start: source.Position{Col: 6}, End: source.Position{Col: 11}},
			Suggestions: []string{"World"},
		}},
	}, {display: "b.txt", skipped: true}}

	var short bytes.Buffer
	renderShort(&short, results)
	if got := short.String(); got != "a.txt:1:7: Wolrd\n" {
		t.Fatalf("short = %q", got)
	}

	var out bytes.Buffer
	if err := renderJSON(&out, results); err != nil {
		t.Fatalf("renderJSON: %v", err)
	}
	var decoded []jsonFile
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded) != 2 || len(decoded[0].Findings) != 1 || !decoded[1].Skipped {
		t.Fatalf("decoded = %+v", decoded)
	}
	got := decoded[0].Findings[0]
	if got.Line != 1 || got.Column != 7 || got.EndColumn != 12 || got.Severity != "information" {
		t.Fatalf("finding = %+v", got)
	}
}

func TestReadUIMode(t *testing.T) {
	cases := []struct {
		in      string
		want    uiMode
		wantErr bool
	}{
		{"", uiModeAuto, false},
		{"AUTO", uiModeAuto, false},
		{"on", uiModeOn, false},
		{"false", uiModeOff, false},
		{"sometimes", "", true},
	}
	for _, tc := range cases {
		got, err := readUIMode(tc.in)
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Fatalf("readUIMode(%q) = %q, %v", tc.in, got, err)
		}
	}
}

func TestHelpPointsAtDictionaryFlags(t *testing.T) {
	for _, cmd := range []*cobra.Command{checkCmd, lspCmd} {
		if !strings.Contains(cmd.Long, "--dict ") || !strings.Contains(cmd.Long, "--dict-cache") {
			t.Fatalf("%s help does not mention dictionary flags: %q", cmd.Name(), cmd.Long)
		}
	}
}
