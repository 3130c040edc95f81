package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/renameio"
)

// FileName is the project configuration file looked up from a workspace root.
const FileName = "spelld.toml"

// FindProjectFile walks up from startDir to locate spelld.toml.
func FindProjectFile(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// GlobalFile returns the path of the user-wide configuration file. The
// file need not exist.
func GlobalFile() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "spelld", FileName), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate user config dir: %w", err)
	}
	return filepath.Join(dir, "spelld", FileName), nil
}

// Files names the configuration files that contributed to a Settings value.
type Files struct {
	Project string
	Global  string
}

// Paths lists the non-empty file paths.
func (f Files) Paths() []string {
	var out []string
	if f.Global != "" {
		out = append(out, f.Global)
	}
	if f.Project != "" {
		out = append(out, f.Project)
	}
	return out
}

// Load reads the project file found from startDir and, unless it disables
// use_global, merges in the global file. Missing files are not an error.
func Load(startDir string) (Settings, Files, error) {
	projectPath, ok, err := FindProjectFile(startDir)
	if err != nil {
		return Settings{}, Files{}, err
	}
	if !ok {
		projectPath = ""
	}
	return LoadProject(projectPath)
}

// LoadProject reads projectPath (which may be empty) and the global file
// the same way Load does.
func LoadProject(projectPath string) (Settings, Files, error) {
	var files Files
	settings := Default()
	if projectPath != "" {
		var err error
		settings, err = LoadFile(projectPath)
		if err != nil {
			return Settings{}, files, err
		}
		files.Project = projectPath
	}
	if !settings.UseGlobal {
		return settings, files, nil
	}

	globalPath, err := GlobalFile()
	if err != nil {
		return settings, files, nil
	}
	if _, statErr := os.Stat(globalPath); statErr != nil {
		return settings, files, nil
	}
	global, err := LoadFile(globalPath)
	if err != nil {
		return Settings{}, files, err
	}
	global.Merge(settings)
	global.UseGlobal = settings.UseGlobal
	files.Global = globalPath
	return global, files, nil
}

// AddWord appends word to the words list of the TOML file at path, creating
// the file when it does not exist. Other keys are preserved. It reports
// false when the word was already present.
func AddWord(path, word string) (bool, error) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return false, errors.New("empty word")
	}

	doc := make(map[string]any)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if _, err := toml.Decode(string(data), &doc); err != nil {
			return false, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return false, fmt.Errorf("read %s: %w", path, err)
	}

	var words []string
	if raw, ok := doc["words"].([]any); ok {
		for _, w := range raw {
			if s, ok := w.(string); ok {
				words = append(words, strings.ToLower(s))
			}
		}
	}
	if slices.Contains(words, word) {
		return false, nil
	}
	words = append(words, word)
	slices.Sort(words)
	doc["words"] = words

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return false, fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if err := renameio.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}
