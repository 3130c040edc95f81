// Package config loads spelld.toml settings and resolves them into the
// immutable value the spelling engine consumes.
package config

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

// Settings mirror spelld.toml. The same field names are accepted from the
// editor under the "spelld" settings key.
type Settings struct {
	Dictionaries   []string `toml:"dictionaries" json:"dictionaries"`
	Words          []string `toml:"words" json:"words"`
	FlagWords      []string `toml:"flag_words" json:"flag_words"`
	IgnorePaths    []string `toml:"ignore_paths" json:"ignore_paths"`
	IgnorePatterns []string `toml:"ignore_patterns" json:"ignore_patterns"`
	MinWordLength  int      `toml:"min_word_length" json:"min_word_length"`
	Severity       string   `toml:"severity" json:"severity"`
	UseGlobal      bool     `toml:"use_global" json:"use_global"`
}

// Default returns empty settings that defer to the global file.
func Default() Settings {
	return Settings{UseGlobal: true}
}

// DecodeTOML parses settings from TOML text.
func DecodeTOML(data string) (Settings, error) {
	s := Default()
	meta, err := toml.Decode(data, &s)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if !meta.IsDefined("use_global") {
		s.UseGlobal = true
	}
	s.normalize()
	return s, nil
}

// LoadFile reads settings from a spelld.toml file.
func LoadFile(path string) (Settings, error) {
	s := Default()
	meta, err := toml.DecodeFile(path, &s)
	if err != nil {
		return Settings{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("use_global") {
		s.UseGlobal = true
	}
	s.normalize()
	return s, nil
}

type lspSettings struct {
	Spelld *Settings `json:"spelld"`
}

// DecodeLSP parses the editor settings object {"spelld": {...}}. ok is false
// when the object carries no spelld section.
func DecodeLSP(raw json.RawMessage) (s Settings, ok bool, err error) {
	if len(raw) == 0 || string(raw) == "null" {
		return Settings{}, false, nil
	}
	var wrapper lspSettings
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return Settings{}, false, fmt.Errorf("decode settings: %w", err)
	}
	if wrapper.Spelld == nil {
		return Settings{}, false, nil
	}
	s = *wrapper.Spelld
	s.normalize()
	return s, true, nil
}

// Merge folds other into s. Lists are concatenated, sorted and
// de-duplicated; scalar fields take other's value when set. UseGlobal
// belongs to a single file and is left alone.
func (s *Settings) Merge(other Settings) {
	s.Dictionaries = append(s.Dictionaries, other.Dictionaries...)
	s.Words = append(s.Words, other.Words...)
	s.FlagWords = append(s.FlagWords, other.FlagWords...)
	s.IgnorePaths = append(s.IgnorePaths, other.IgnorePaths...)
	s.IgnorePatterns = append(s.IgnorePatterns, other.IgnorePatterns...)
	if other.MinWordLength > 0 {
		s.MinWordLength = other.MinWordLength
	}
	if other.Severity != "" {
		s.Severity = other.Severity
	}
	s.normalize()
}

func (s *Settings) normalize() {
	s.Dictionaries = lowerSortDedup(s.Dictionaries)
	s.Words = lowerSortDedup(s.Words)
	s.FlagWords = lowerSortDedup(s.FlagWords)
	s.IgnorePaths = sortDedup(s.IgnorePaths)
	s.IgnorePatterns = sortDedup(s.IgnorePatterns)
	s.Severity = strings.ToLower(strings.TrimSpace(s.Severity))
}

func lowerSortDedup(items []string) []string {
	for i, it := range items {
		items[i] = strings.ToLower(strings.TrimSpace(it))
	}
	return sortDedup(items)
}

func sortDedup(items []string) []string {
	out := items[:0]
	for _, it := range items {
		if strings.TrimSpace(it) != "" {
			out = append(out, it)
		}
	}
	if len(out) == 0 {
		return nil
	}
	slices.Sort(out)
	return slices.Compact(out)
}
