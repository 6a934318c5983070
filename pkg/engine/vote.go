package engine

import (
	"sort"
	"strings"
)

// ParseVote normalizes a raw vote response: lowercase, strip whitespace,
// match against validNames. Returns "", false if unparseable.
func ParseVote(raw string, validNames map[string]struct{}) (string, bool) {
	candidate := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := validNames[candidate]; ok {
		return candidate, true
	}
	return "", false
}

// TieBreak picks the winner among candidates ranked by tally (descending),
// breaking ties by highest weight then lexicographic slot name. candidates
// restricts eligible winners (e.g. excludes dexter, who is never eligible
// to win the vote).
func TieBreak(tally map[string]float64, weights map[string]float64, candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}

	sorted := make([]string, len(candidates))
	copy(sorted, candidates)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		ta, tb := tally[a], tally[b]
		if ta != tb {
			return ta > tb
		}
		wa, wb := weights[a], weights[b]
		if wa != wb {
			return wa > wb
		}
		return a < b
	})
	return sorted[0]
}
