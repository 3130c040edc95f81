package dictionary

import (
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

const (
	// DefaultMaxSuggestions caps the number of suggestions per word.
	DefaultMaxSuggestions = 5
	// DefaultMaxDistance is the largest edit distance considered a near miss.
	DefaultMaxDistance = 2
	// DefaultMaxScan caps the number of dictionary words compared per word.
	DefaultMaxScan = 50000

	suggestionTTL      = 10 * time.Minute
	suggestionCapacity = 10000
)

// Option configures a Store.
type Option func(*Store)

// WithMaxSuggestions sets how many suggestions are returned per word.
func WithMaxSuggestions(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxSuggestions = n
		}
	}
}

// WithMaxDistance sets the edit-distance bound for suggestions.
func WithMaxDistance(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxDistance = n
		}
	}
}

// WithMaxScan sets the candidate scan cap for suggestions.
func WithMaxScan(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxScan = n
		}
	}
}

// WithSuggestionTTL sets how long computed suggestions stay cached.
func WithSuggestionTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.suggestionTTL = ttl
		}
	}
}

// Store is the set of loaded dictionaries: one common dictionary plus one
// per language id. The word sets are immutable; only the suggestion cache
// changes after construction and it synchronizes internally.
type Store struct {
	common *Dictionary
	langs  map[string]*Dictionary

	maxSuggestions int
	maxDistance    int
	maxScan        int
	suggestionTTL  time.Duration
	cache          *ttlcache.Cache[string, []string]
}

// NewStore assembles a store. A nil common dictionary is replaced by an
// empty one; later language dictionaries with a duplicate id win.
func NewStore(common *Dictionary, langs []*Dictionary, opts ...Option) *Store {
	if common == nil {
		common = NewBuilder(CommonID).Build()
	}
	s := &Store{
		common:         common,
		langs:          make(map[string]*Dictionary, len(langs)),
		maxSuggestions: DefaultMaxSuggestions,
		maxDistance:    DefaultMaxDistance,
		maxScan:        DefaultMaxScan,
		suggestionTTL:  suggestionTTL,
	}
	for _, d := range langs {
		if d == nil || d.id == "" {
			continue
		}
		s.langs[d.id] = d
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cache = ttlcache.New[string, []string](
		ttlcache.WithTTL[string, []string](s.suggestionTTL),
		ttlcache.WithCapacity[string, []string](suggestionCapacity),
		ttlcache.WithDisableTouchOnHit[string, []string](),
	)
	go s.cache.Start()
	return s
}

// Close stops the suggestion cache janitor.
func (s *Store) Close() {
	if s == nil || s.cache == nil {
		return
	}
	s.cache.Stop()
}

// Common returns the common dictionary.
func (s *Store) Common() *Dictionary {
	return s.common
}

// Lookup returns the dictionary registered for id.
func (s *Store) Lookup(id string) (*Dictionary, bool) {
	d, ok := s.langs[strings.ToLower(id)]
	return d, ok
}

// IDs returns the registered language dictionary ids in sorted order.
func (s *Store) IDs() []string {
	ids := make([]string, 0, len(s.langs))
	for id := range s.langs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Select returns the common dictionary followed by the dictionaries for
// ids, in order. Unknown ids are skipped so a missing language dictionary
// degrades to the common one.
func (s *Store) Select(ids []string) []*Dictionary {
	out := make([]*Dictionary, 0, len(ids)+1)
	out = append(out, s.common)
	for _, id := range ids {
		d, ok := s.Lookup(id)
		if !ok || slices.Contains(out, d) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Contains reports whether the folded word is in any of the selected
// dictionaries, consulting the common dictionary first.
func (s *Store) Contains(folded string, ids []string) bool {
	if s.common.Contains(folded) {
		return true
	}
	for _, id := range ids {
		if d, ok := s.Lookup(id); ok && d.Contains(folded) {
			return true
		}
	}
	return false
}
