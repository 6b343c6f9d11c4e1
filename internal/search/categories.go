// Package search provides fuzzy lookups over categories and list titles.
package search

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mmcdole/podcatch/internal/domain"
)

// CategoryEntry is one node of the flattened category tree
type CategoryEntry struct {
	ID     string
	Name   string
	Parent string // Name of the top-level category, empty for top-level entries
}

// Path returns "Parent / Name" for subcategories
func (e CategoryEntry) Path() string {
	if e.Parent == "" {
		return e.Name
	}
	return e.Parent + " / " + e.Name
}

// CategoryIndex searches category names by fuzzy match
type CategoryIndex struct {
	entries []CategoryEntry
	names   []string // Pre-computed lowercase names
	byName  map[string][]int
}

// NewCategoryIndex flattens the two-level tree in display order: each
// top-level category followed by its subcategories.
func NewCategoryIndex(categories []domain.Category) *CategoryIndex {
	idx := &CategoryIndex{byName: make(map[string][]int)}
	for _, c := range categories {
		idx.add(CategoryEntry{ID: c.ID.String(), Name: c.Name})
		for _, sub := range c.Subcategories {
			idx.add(CategoryEntry{ID: sub.ID.String(), Name: sub.Name, Parent: c.Name})
		}
	}
	return idx
}

func (idx *CategoryIndex) add(e CategoryEntry) {
	lower := strings.ToLower(e.Name)
	idx.byName[lower] = append(idx.byName[lower], len(idx.entries))
	idx.entries = append(idx.entries, e)
	idx.names = append(idx.names, lower)
}

// Len returns the number of indexed categories
func (idx *CategoryIndex) Len() int { return len(idx.entries) }

// Entries returns every category in display order
func (idx *CategoryIndex) Entries() []CategoryEntry {
	out := make([]CategoryEntry, len(idx.entries))
	copy(out, idx.entries)
	return out
}

// Find returns categories whose name fuzzily contains query, closest first.
// An empty query returns everything in display order.
func (idx *CategoryIndex) Find(query string) []CategoryEntry {
	query = strings.TrimSpace(query)
	if query == "" {
		return idx.Entries()
	}

	matches := fuzzy.RankFindFold(query, idx.names)
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].OriginalIndex < matches[j].OriginalIndex
	})

	results := make([]CategoryEntry, 0, len(matches))
	for _, m := range matches {
		results = append(results, idx.entries[m.OriginalIndex])
	}
	return results
}

// Closest returns the category whose name is nearest to query by edit
// distance, for resolving a typed name to an id.
func (idx *CategoryIndex) Closest(query string) (CategoryEntry, bool) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || len(idx.entries) == 0 {
		return CategoryEntry{}, false
	}
	if exact, ok := idx.byName[query]; ok {
		return idx.entries[exact[0]], true
	}

	best, bestDist := -1, 0
	for i, name := range idx.names {
		if !fuzzy.MatchFold(query, name) {
			continue
		}
		d := fuzzy.LevenshteinDistance(query, name)
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return CategoryEntry{}, false
	}
	return idx.entries[best], true
}
