// Package engine runs the spelling pipeline over one document: extract
// spans, split them into words, judge each word and assemble findings.
package engine

import (
	"context"
	"strconv"

	"spelld/internal/extract"
	"spelld/internal/judge"
	"spelld/internal/language"
	"spelld/internal/source"
	"spelld/internal/splitter"
	"spelld/internal/trace"
)

// Request is one analysis pass.
type Request struct {
	URI      string
	Text     string
	Language *language.Language
	Judge    *judge.Judge
	// Dictionaries are consulted in addition to the language's own.
	Dictionaries []string
	Encoding     source.Encoding
	// Suggest enables replacement suggestions on findings.
	Suggest bool
}

// Engine is stateless apart from its extractor and safe for concurrent use.
type Engine struct {
	extractor *extract.Extractor
}

// New creates an Engine. A nil extractor gets the defaults.
func New(ex *extract.Extractor) *Engine {
	if ex == nil {
		ex = extract.New()
	}
	return &Engine{extractor: ex}
}

// Check runs the pipeline. The only error is the context's.
func (e *Engine) Check(ctx context.Context, req Request) ([]Finding, error) {
	tracer := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx).SpanID
	pass := trace.Begin(tracer, trace.ScopePass, "check", parent).WithExtra("uri", req.URI)
	lang := req.Language
	if lang == nil {
		lang = language.Get(language.PlainText)
	}
	pass.WithExtra("language", lang.Name)

	stage := trace.Begin(tracer, trace.ScopeStage, "extract", pass.ID())
	res := e.extractor.Extract(ctx, []byte(req.Text), lang)
	stage.WithExtra("spans", strconv.Itoa(len(res.Spans)))
	if res.Partial {
		stage.WithExtra("partial", "true")
	}
	stage.End("")
	if err := ctx.Err(); err != nil {
		pass.End("canceled")
		return nil, err
	}

	ids := DictionaryIDs(lang, req.Dictionaries)
	stage = trace.Begin(tracer, trace.ScopeStage, "judge", pass.ID())
	var misspelled []Misspelling
	words := 0
	for _, sp := range res.Spans {
		if err := ctx.Err(); err != nil {
			stage.End("canceled")
			pass.End("canceled")
			return nil, err
		}
		text := req.Text[sp.Start:sp.End]
		skips := req.Judge.SkipRanges(text)
		for _, sw := range splitter.Split(text) {
			if judge.Covered(skips, sw.Offset, sw.End()) {
				continue
			}
			words++
			verdict := req.Judge.Check(sw.Text, ids)
			trace.Point(tracer, trace.ScopeWord, sw.Text, verdict.String(), stage.ID(), nil)
			if verdict != judge.Misspelled {
				continue
			}
			misspelled = append(misspelled, Misspelling{
				Word:     sw.Text,
				Span:     source.Span{Start: sp.Start + sw.Offset, End: sp.Start + sw.End()},
				Category: sp.Category,
			})
		}
	}
	stage.WithExtra("words", strconv.Itoa(words)).WithExtra("misspelled", strconv.Itoa(len(misspelled)))
	stage.End("")

	stage = trace.Begin(tracer, trace.ScopeStage, "assemble", pass.ID())
	var suggest func(string) []string
	if req.Suggest {
		suggest = func(word string) []string { return req.Judge.Suggest(word, ids) }
	}
	findings := Assemble(req.Text, misspelled, req.Encoding, suggest)
	stage.End("")
	pass.WithExtra("findings", strconv.Itoa(len(findings))).End("")
	return findings, nil
}

// DictionaryIDs lists the language dictionaries followed by extra ids,
// without duplicates.
func DictionaryIDs(lang *language.Language, extra []string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(ids []string) {
		for _, id := range ids {
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, id)
		}
	}
	if lang != nil {
		add(lang.Dictionaries)
	}
	add(extra)
	return out
}
