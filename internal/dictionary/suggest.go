package dictionary

import (
	"slices"
	"sort"
	"strings"

	"github.com/jellydator/ttlcache/v3"
)

type candidate struct {
	word string
	dist int
}

// Suggest returns up to maxSuggestions near misses for word from the common
// dictionary and the dictionaries named by ids, ranked by edit distance and
// then lexicographically, with the capitalization of word applied.
//
// The scan walks length buckets closest to the word first and stops after
// maxScan comparisons, so cost is bounded regardless of dictionary size.
func (s *Store) Suggest(word string, ids []string) []string {
	folded := Fold(word)
	if folded == "" {
		return nil
	}
	key := strings.Join(ids, ",") + "\x00" + folded
	if item := s.cache.Get(key); item != nil {
		return applyCase(word, item.Value())
	}
	ranked := s.rank(folded, s.Select(ids))
	s.cache.Set(key, ranked, ttlcache.DefaultTTL)
	return applyCase(word, ranked)
}

func applyCase(word string, folded []string) []string {
	if len(folded) == 0 {
		return nil
	}
	out := make([]string, 0, len(folded))
	for _, sug := range folded {
		out = append(out, MatchCase(word, sug))
	}
	return out
}

func (s *Store) rank(folded string, dicts []*Dictionary) []string {
	target := []rune(folded)
	n := len(target)
	scanned := 0
	seen := make(map[string]struct{})
	var cands []candidate

scan:
	for _, delta := range bucketOrder(s.maxDistance) {
		size := n + delta
		if size <= 0 {
			continue
		}
		for _, d := range dicts {
			for _, w := range d.bucket(size) {
				if scanned >= s.maxScan {
					break scan
				}
				scanned++
				if w == folded {
					continue
				}
				if _, dup := seen[w]; dup {
					continue
				}
				dist := editDistance(target, []rune(w), s.maxDistance)
				if dist > s.maxDistance {
					continue
				}
				seen[w] = struct{}{}
				cands = append(cands, candidate{word: w, dist: dist})
			}
		}
	}

	sort.Slice(cands, func(i, j int) bool {
		if cands[i].dist != cands[j].dist {
			return cands[i].dist < cands[j].dist
		}
		return cands[i].word < cands[j].word
	})
	if len(cands) > s.maxSuggestions {
		cands = cands[:s.maxSuggestions]
	}
	out := make([]string, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.word)
	}
	return slices.Clip(out)
}

// bucketOrder lists length deltas nearest first: 0, -1, 1, -2, 2, ...
func bucketOrder(maxDistance int) []int {
	out := []int{0}
	for d := 1; d <= maxDistance; d++ {
		out = append(out, -d, d)
	}
	return out
}
