package language

import "testing"

func TestResolve(t *testing.T) {
	tests := []struct {
		id, path string
		want     Tag
	}{
		{"go", "file:///tmp/x.txt", Go},
		{"GO", "", Go},
		{"", "file:///tmp/main.rs", Rust},
		{"", "/tmp/App.TSX", TSX},
		{"javascriptreact", "", JavaScript},
		{"shellscript", "", Bash},
		{"markdown", "file:///tmp/main.go", PlainText},
		{"klingon", "file:///tmp/readme", PlainText},
		{"", "", PlainText},
		{"klingon", "file:///tmp/script.py", Python},
	}
	for _, tt := range tests {
		if got := Resolve(tt.id, tt.path).Tag; got != tt.want {
			t.Errorf("Resolve(%q, %q) = %v, want %v", tt.id, tt.path, got, tt.want)
		}
	}
}

func TestVariantsHaveGrammar(t *testing.T) {
	seen := make(map[Tag]bool)
	for _, l := range All() {
		if seen[l.Tag] {
			t.Fatalf("duplicate tag %v", l.Tag)
		}
		seen[l.Tag] = true
		if l.Tag == PlainText {
			if l.Grammar() != nil {
				t.Fatal("plain text must not carry a grammar")
			}
			continue
		}
		if l.Grammar() == nil {
			t.Fatalf("%s has no grammar", l.Name)
		}
		if len(l.Comments) == 0 {
			t.Fatalf("%s has no comment node types", l.Name)
		}
	}
	if len(seen) != int(YAML)+1 {
		t.Fatalf("expected every tag registered, got %d", len(seen))
	}
}

func TestNodeSets(t *testing.T) {
	g := Get(Go)
	if !g.IsComment("comment") || g.IsComment("identifier") {
		t.Fatal("comment set")
	}
	if !g.IsString("raw_string_literal") || !g.IsStringHole("escape_sequence") {
		t.Fatal("string sets")
	}
	if !g.IsImport("import_spec") {
		t.Fatal("import set")
	}
	if fields := g.DefinitionFields("short_var_declaration"); len(fields) != 1 || fields[0] != "left" {
		t.Fatalf("definition fields = %v", fields)
	}
	if Get(Tag(200)).Tag != PlainText {
		t.Fatal("unknown tag must map to plain text")
	}
}
