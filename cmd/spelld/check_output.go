package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"spelld/internal/config"
	"spelld/internal/engine"
)

const tabWidth = 4

var (
	pathColor   = color.New(color.Bold)
	wordColor   = color.New(color.FgMagenta, color.Bold)
	gutterColor = color.New(color.FgBlue)
	hintColor   = color.New(color.FgGreen)
)

func severityColor(sev config.Severity) *color.Color {
	switch sev {
	case config.SeverityError:
		return color.New(color.FgRed, color.Bold)
	case config.SeverityWarning:
		return color.New(color.FgYellow, color.Bold)
	case config.SeverityHint:
		return color.New(color.FgWhite)
	default:
		return color.New(color.FgCyan, color.Bold)
	}
}

// renderPretty prints each finding with its source line and a caret under
// the word.
func renderPretty(out io.Writer, results []fileResult) {
	for _, r := range results {
		if r.err != nil {
			fmt.Fprintf(out, "%s: %s\n", pathColor.Sprint(r.display), color.RedString("%v", r.err))
			continue
		}
		for _, f := range r.findings {
			line, col := f.Range.Start.Line+1, f.Range.Start.Col+1
			fmt.Fprintf(out, "%s: %s misspelled %s",
				pathColor.Sprintf("%s:%d:%d", r.display, line, col),
				severityColor(r.severity).Sprint(r.severity),
				wordColor.Sprintf("'%s'", f.Word))
			if len(f.Suggestions) > 0 {
				fmt.Fprintf(out, " %s", hintColor.Sprintf("(did you mean %s?)", english.OxfordWordSeries(f.Suggestions, "or")))
			}
			fmt.Fprintln(out)

			text, prefix := sourceLine(r.text, f)
			gutter := fmt.Sprintf("%5d", line)
			fmt.Fprintf(out, "%s %s %s\n", gutterColor.Sprint(gutter), gutterColor.Sprint("|"), text)
			pad := strings.Repeat(" ", runewidth.StringWidth(prefix))
			carets := strings.Repeat("^", max(runewidth.StringWidth(f.Word), 1))
			fmt.Fprintf(out, "%s %s %s%s\n", strings.Repeat(" ", len(gutter)), gutterColor.Sprint("|"), pad, wordColor.Sprint(carets))
		}
	}
}

// sourceLine returns the line holding f with tabs expanded, and the part of
// it before the word.
func sourceLine(text string, f engine.Finding) (line, prefix string) {
	start := int(f.Span.Start)
	if start > len(text) {
		return "", ""
	}
	lineStart := strings.LastIndexByte(text[:start], '\n') + 1
	lineEnd := len(text)
	if i := strings.IndexByte(text[start:], '\n'); i >= 0 {
		lineEnd = start + i
	}
	expand := func(s string) string {
		return strings.ReplaceAll(strings.TrimRight(s, "\r"), "\t", strings.Repeat(" ", tabWidth))
	}
	return expand(text[lineStart:lineEnd]), expand(text[lineStart:start])
}

// renderShort prints one finding per line in file:line:col form.
func renderShort(out io.Writer, results []fileResult) {
	for _, r := range results {
		if r.err != nil {
			fmt.Fprintf(out, "%s: error: %v\n", r.display, r.err)
			continue
		}
		for _, f := range r.findings {
			fmt.Fprintf(out, "%s:%d:%d: %s\n", r.display, f.Range.Start.Line+1, f.Range.Start.Col+1, f.Word)
		}
	}
}

type jsonFinding struct {
	Line        uint32   `json:"line"`
	Column      uint32   `json:"column"`
	EndLine     uint32   `json:"end_line"`
	EndColumn   uint32   `json:"end_column"`
	Word        string   `json:"word"`
	Severity    string   `json:"severity"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
}

type jsonFile struct {
	File     string        `json:"file"`
	Skipped  bool          `json:"skipped,omitempty"`
	Error    string        `json:"error,omitempty"`
	Findings []jsonFinding `json:"findings"`
}

// renderJSON prints every file result. Positions are one-based and
// columns count code points.
func renderJSON(out io.Writer, results []fileResult) error {
	payload := make([]jsonFile, 0, len(results))
	for _, r := range results {
		jf := jsonFile{File: r.display, Skipped: r.skipped, Findings: []jsonFinding{}}
		if r.err != nil {
			jf.Error = r.err.Error()
		}
		for _, f := range r.findings {
			jf.Findings = append(jf.Findings, jsonFinding{
				Line:        f.Range.Start.Line + 1,
				Column:      f.Range.Start.Col + 1,
				EndLine:     f.Range.End.Line + 1,
				EndColumn:   f.Range.End.Col + 1,
				Word:        f.Word,
				Severity:    r.severity.String(),
				Message:     f.Message(),
				Suggestions: f.Suggestions,
			})
		}
		payload = append(payload, jf)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func renderSummary(out io.Writer, files, findings int) {
	checked := english.Plural(files, "file", "")
	if findings == 0 {
		fmt.Fprintf(out, "%s checked, no spelling issues\n", checked)
		return
	}
	fmt.Fprintf(out, "%s misspelled %s in %s\n",
		humanize.Comma(int64(findings)), english.PluralWord(findings, "word", ""), checked)
}
