// Package search matches a query against the names in the visible tree.
package search

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// MatchResult represents a name match with the byte offsets that matched
type MatchResult struct {
	Index          int
	MatchedIndexes []int
}

// SubstringMatchNames performs case-insensitive substring matching on names
func SubstringMatchNames(query string, names []string) []MatchResult {
	if query == "" {
		return nil
	}

	lowerQuery := strings.ToLower(query)
	var results []MatchResult

	for i, name := range names {
		if idx := strings.Index(strings.ToLower(name), lowerQuery); idx != -1 {
			matchedIndexes := make([]int, len(lowerQuery))
			for j := range matchedIndexes {
				matchedIndexes[j] = idx + j
			}
			results = append(results, MatchResult{
				Index:          i,
				MatchedIndexes: matchedIndexes,
			})
		}
	}

	return results
}

// FuzzyMatchNames ranks names by fuzzy score, best first
func FuzzyMatchNames(query string, names []string) []MatchResult {
	if query == "" {
		return nil
	}

	matches := fuzzy.Find(query, names)
	results := make([]MatchResult, len(matches))
	for i, m := range matches {
		results[i] = MatchResult{Index: m.Index, MatchedIndexes: m.MatchedIndexes}
	}
	return results
}

// NextMatch finds the first substring match after index from, wrapping
// around to the top. Without any substring match it falls back to the
// best fuzzy match.
func NextMatch(query string, names []string, from int) (MatchResult, bool) {
	matches := SubstringMatchNames(query, names)
	if len(matches) > 0 {
		for _, m := range matches {
			if m.Index > from {
				return m, true
			}
		}
		return matches[0], true
	}

	if fuzzyMatches := FuzzyMatchNames(query, names); len(fuzzyMatches) > 0 {
		return fuzzyMatches[0], true
	}
	return MatchResult{}, false
}

// MatchIndexes returns the offsets in name to highlight for query
func MatchIndexes(query, name string) []int {
	names := []string{name}
	if m := SubstringMatchNames(query, names); len(m) > 0 {
		return m[0].MatchedIndexes
	}
	if m := FuzzyMatchNames(query, names); len(m) > 0 {
		return m[0].MatchedIndexes
	}
	return nil
}
