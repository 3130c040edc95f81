package dictionary

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/renameio"
	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when cachePayload changes.
const cacheSchemaVersion uint16 = 1

// ErrCacheSchema reports a cache file written by an incompatible version.
var ErrCacheSchema = errors.New("dictionary cache schema mismatch")

type cachePayload struct {
	Schema    uint16
	Common    cachedDictionary
	Languages []cachedDictionary
}

type cachedDictionary struct {
	ID    string
	Words []string
}

// WriteCache serializes the store's word sets with msgpack.
func WriteCache(w io.Writer, s *Store) error {
	payload := cachePayload{
		Schema: cacheSchemaVersion,
		Common: cachedDictionary{ID: s.common.ID(), Words: s.common.Words()},
	}
	for _, id := range s.IDs() {
		d := s.langs[id]
		payload.Languages = append(payload.Languages, cachedDictionary{ID: id, Words: d.Words()})
	}
	bw := bufio.NewWriter(w)
	if err := msgpack.NewEncoder(bw).Encode(&payload); err != nil {
		return fmt.Errorf("encode dictionary cache: %w", err)
	}
	return bw.Flush()
}

// ReadCache rebuilds a Store from a cache written by WriteCache.
func ReadCache(r io.Reader, opts ...Option) (*Store, error) {
	var payload cachePayload
	if err := msgpack.NewDecoder(bufio.NewReader(r)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode dictionary cache: %w", err)
	}
	if payload.Schema != cacheSchemaVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrCacheSchema, payload.Schema, cacheSchemaVersion)
	}
	common := NewBuilder(CommonID).Add(payload.Common.Words...).Build()
	langs := make([]*Dictionary, 0, len(payload.Languages))
	for _, cd := range payload.Languages {
		langs = append(langs, NewBuilder(cd.ID).Add(cd.Words...).Build())
	}
	return NewStore(common, langs, opts...), nil
}

// SaveCacheFile writes the cache atomically: readers see either the old
// file or the complete new one.
func SaveCacheFile(path string, s *Store) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	pending, err := renameio.TempFile("", path)
	if err != nil {
		return fmt.Errorf("create cache file: %w", err)
	}
	defer pending.Cleanup()
	if err := WriteCache(pending, s); err != nil {
		return err
	}
	return pending.CloseAtomicallyReplace()
}

// LoadCacheFile reads a cache written by SaveCacheFile.
func LoadCacheFile(path string, opts ...Option) (*Store, error) {
	// #nosec G304 -- cache path comes from the operator
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCache(f, opts...)
}
