package search

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// Match is a filtered list position with the rune offsets to highlight
type Match struct {
	Index          int
	MatchedIndexes []int
}

// titleSource implements fuzzy.Source over lowercase titles
type titleSource []string

func (s titleSource) String(i int) string { return s[i] }
func (s titleSource) Len() int            { return len(s) }

// FilterTitles fuzzy-filters titles, best match first. An empty query
// returns nil so callers can show the unfiltered list.
func FilterTitles(query string, titles []string) []Match {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	lower := make(titleSource, len(titles))
	for i, t := range titles {
		lower[i] = strings.ToLower(t)
	}

	matches := fuzzy.FindFrom(strings.ToLower(query), lower)
	results := make([]Match, len(matches))
	for i, m := range matches {
		results[i] = Match{Index: m.Index, MatchedIndexes: m.MatchedIndexes}
	}
	return results
}
