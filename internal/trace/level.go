package trace

import (
	"fmt"
	"strings"
)

// Level selects how deep into a session tracing reaches. Each level admits
// every scope up to and including its deepest one:
//
//	error   server lifecycle only, kept for crash dumps
//	phase   + analysis passes
//	detail  + extract/split/judge/assemble stages
//	debug   + per-word decisions
type Level uint8

const (
	LevelOff Level = iota
	LevelError
	LevelPhase
	LevelDetail
	LevelDebug
)

var levelNames = [...]string{"off", "error", "phase", "detail", "debug"}

// deepest maps a level to the innermost scope it records.
var deepest = [...]Scope{
	LevelOff:    0,
	LevelError:  ScopeServer,
	LevelPhase:  ScopePass,
	LevelDetail: ScopeStage,
	LevelDebug:  ScopeWord,
}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel reads a level name, ignoring case. The LSP trace values
// "messages" and "verbose" are accepted as phase and detail.
func ParseLevel(s string) (Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "messages":
		return LevelPhase, nil
	case "verbose":
		return LevelDetail, nil
	}
	for i, n := range levelNames {
		if n == name {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// Admits reports whether events of scope are recorded at this level.
func (l Level) Admits(scope Scope) bool {
	if int(l) >= len(deepest) {
		return true
	}
	return scope != 0 && scope <= deepest[l]
}
