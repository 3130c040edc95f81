package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"spelld/internal/judge"
)

// Severity is the LSP DiagnosticSeverity reported for misspellings.
type Severity int

const (
	SeverityError       Severity = 1
	SeverityWarning     Severity = 2
	SeverityInformation Severity = 3
	SeverityHint        Severity = 4
)

// ParseSeverity maps a settings value to a Severity. The empty string is
// SeverityInformation.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info", "information":
		return SeverityInformation, nil
	case "error":
		return SeverityError, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "hint":
		return SeverityHint, nil
	default:
		return 0, fmt.Errorf("unknown severity %q", s)
	}
}

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityHint:
		return "hint"
	default:
		return "information"
	}
}

// ErrInvalidPattern reports an ignore_patterns entry that is not a valid
// regular expression.
var ErrInvalidPattern = errors.New("invalid ignore pattern")

// Resolved is the immutable configuration a session analyzes with.
type Resolved struct {
	Words         []string
	FlagWords     []string
	Dictionaries  []string
	Patterns      []*regexp.Regexp
	IgnorePaths   []string
	MinWordLength int
	Severity      Severity
}

// Resolve compiles settings. Invalid patterns and severities are collected
// and returned together; the valid remainder is still usable.
func Resolve(s Settings) (*Resolved, error) {
	r := &Resolved{
		Words:         s.Words,
		FlagWords:     s.FlagWords,
		Dictionaries:  s.Dictionaries,
		IgnorePaths:   s.IgnorePaths,
		MinWordLength: s.MinWordLength,
		Severity:      SeverityInformation,
	}
	var errs []error
	for _, p := range s.IgnorePatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w %q: %w", ErrInvalidPattern, p, err))
			continue
		}
		r.Patterns = append(r.Patterns, re)
	}
	if sev, err := ParseSeverity(s.Severity); err != nil {
		errs = append(errs, err)
	} else {
		r.Severity = sev
	}
	return r, errors.Join(errs...)
}

// JudgeOptions converts the resolved settings into judge inputs.
func (r *Resolved) JudgeOptions() judge.Options {
	return judge.Options{
		Words:         r.Words,
		FlagWords:     r.FlagWords,
		Patterns:      r.Patterns,
		MinWordLength: r.MinWordLength,
	}
}

// IgnoresPath reports whether a file path matches one of the ignore_paths
// globs. Relative globs are matched against path relative to root and
// against every trailing segment sequence, so "vendor/**" also matches
// "/abs/repo/vendor/x.go".
func (r *Resolved) IgnoresPath(root, path string) bool {
	if r == nil || len(r.IgnorePaths) == 0 || path == "" {
		return false
	}
	candidates := []string{filepath.ToSlash(path)}
	if root != "" {
		if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
			candidates = append(candidates, filepath.ToSlash(rel))
		}
	}
	for _, glob := range r.IgnorePaths {
		glob = filepath.ToSlash(glob)
		for _, c := range candidates {
			if matchGlob(glob, c) {
				return true
			}
			if strings.HasPrefix(glob, "/") {
				continue
			}
			for i := 0; i < len(c); i++ {
				if c[i] == '/' && matchGlob(glob, c[i+1:]) {
					return true
				}
			}
		}
	}
	return false
}
