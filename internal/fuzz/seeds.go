package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"spelld/internal/language"
)

const (
	maxSeedBytes = 64 << 10
	maxSeedFiles = 24
)

// addSourceSeeds seeds f with handwritten inputs and a bounded number of
// the repository's own source files.
func addSourceSeeds(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte("Hello, Wolrd!\n"))
	f.Add([]byte("package main\n\n// calculater does the math\nfunc calculater() string { return \"naïve café\" }\n"))
	f.Add([]byte("const HTTPServerURL = 'doesn\\'t'; // TODO: fixme\n"))
	f.Add([]byte("\xef\xbb\xbfdef f(x):\n    \"\"\"Docstrng\"\"\"\n"))

	root := filepath.Join("..", "..")
	added := 0
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if added >= maxSeedFiles {
			return filepath.SkipAll
		}
		if d.IsDir() {
			if name := d.Name(); path != root && (name[0] == '.' || name[0] == '_') {
				return filepath.SkipDir
			}
			return nil
		}
		if _, ok := language.FromPath(path); !ok {
			return nil
		}
		// #nosec G304 -- path comes from a walk of the repository
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		added++
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) > maxSeedBytes {
		src = src[:maxSeedBytes]
	}
	return append([]byte(nil), src...)
}
