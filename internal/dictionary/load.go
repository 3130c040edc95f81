package dictionary

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// LoadOptions names the word-list files that make up a Store.
type LoadOptions struct {
	// Common lists files merged into the common dictionary.
	Common []string
	// Languages maps a dictionary id to its word-list files.
	Languages map[string][]string
	// Builtin merges the embedded code-word and keyword lists.
	Builtin bool
}

// Load reads every word list in opts and builds a Store.
func Load(opts LoadOptions, storeOpts ...Option) (*Store, error) {
	common := NewBuilder(CommonID)
	langs := make(map[string]*Builder)
	if opts.Builtin {
		if err := addBuiltin(common, langs); err != nil {
			return nil, err
		}
	}
	for _, path := range opts.Common {
		if err := addFile(common, path); err != nil {
			return nil, err
		}
	}
	for id, paths := range opts.Languages {
		id = strings.ToLower(strings.TrimSpace(id))
		if id == "" {
			continue
		}
		b := langs[id]
		if b == nil {
			b = NewBuilder(id)
			langs[id] = b
		}
		for _, path := range paths {
			if err := addFile(b, path); err != nil {
				return nil, err
			}
		}
	}
	return NewStore(common.Build(), buildAll(langs), storeOpts...), nil
}

func addFile(b *Builder, path string) error {
	// #nosec G304 -- word list paths come from the operator
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open word list: %w", err)
	}
	defer f.Close()
	if err := b.AddReader(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func buildAll(langs map[string]*Builder) []*Dictionary {
	ids := make([]string, 0, len(langs))
	for id := range langs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*Dictionary, 0, len(ids))
	for _, id := range ids {
		out = append(out, langs[id].Build())
	}
	return out
}

// ParseLanguageFlag splits "id=path" into its parts.
func ParseLanguageFlag(value string) (id, path string, err error) {
	id, path, ok := strings.Cut(value, "=")
	id = strings.TrimSpace(id)
	path = strings.TrimSpace(path)
	if !ok || id == "" || path == "" {
		return "", "", fmt.Errorf("invalid dictionary %q (expected id=path)", value)
	}
	return strings.ToLower(id), path, nil
}
