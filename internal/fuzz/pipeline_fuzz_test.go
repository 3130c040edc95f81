package fuzztests

import (
	"context"
	"testing"

	"spelld/internal/dictionary"
	"spelld/internal/engine"
	"spelld/internal/judge"
	"spelld/internal/language"
	"spelld/internal/source"
	"spelld/internal/splitter"
)

func FuzzCheck(f *testing.F) {
	addSourceSeeds(f)
	store, err := dictionary.Load(dictionary.LoadOptions{Builtin: true})
	if err != nil {
		f.Fatalf("load dictionaries: %v", err)
	}
	f.Cleanup(store.Close)
	j := judge.New(store, judge.Options{})
	eng := engine.New(nil)
	langs := language.All()

	f.Fuzz(func(t *testing.T, input []byte) {
		text := string(clampSeed(input))
		for _, lang := range langs {
			findings, err := eng.Check(context.Background(), engine.Request{
				URI:      "file:///fuzz",
				Text:     text,
				Language: lang,
				Judge:    j,
				Encoding: source.EncodingUTF16,
			})
			if err != nil {
				t.Fatalf("%s: Check: %v", lang.Name, err)
			}
			var prev source.Span
			for i, fd := range findings {
				if fd.Span.End > uint32(len(text)) || fd.Span.Start >= fd.Span.End {
					t.Fatalf("%s: span %v out of range for %d bytes", lang.Name, fd.Span, len(text))
				}
				if text[fd.Span.Start:fd.Span.End] != fd.Word {
					t.Fatalf("%s: span %v holds %q, want %q", lang.Name, fd.Span, text[fd.Span.Start:fd.Span.End], fd.Word)
				}
				if i > 0 && fd.Span.Start < prev.Start {
					t.Fatalf("%s: findings out of order at %d", lang.Name, i)
				}
				if fd.Range.End.Less(fd.Range.Start) {
					t.Fatalf("%s: inverted range %+v", lang.Name, fd.Range)
				}
				prev = fd.Span
			}
		}
	})
}

func FuzzSplit(f *testing.F) {
	addSourceSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		text := string(clampSeed(input))
		var end uint32
		for _, sw := range splitter.Split(text) {
			if sw.Offset < end || sw.End() > uint32(len(text)) {
				t.Fatalf("subword %q at %d overlaps or overflows (prev end %d, len %d)", sw.Text, sw.Offset, end, len(text))
			}
			if text[sw.Offset:sw.End()] != sw.Text {
				t.Fatalf("subword %q does not match text at %d", sw.Text, sw.Offset)
			}
			end = sw.End()
		}
	})
}
