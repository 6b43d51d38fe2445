// Package fuzzy ranks catalog names against a typed query, tolerating typos and accents.
package fuzzy

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// LevenshteinDistance is the number of single-rune edits needed to turn s1 into s2.
// Both strings are normalized first, so case and accents do not count.
func LevenshteinDistance(s1, s2 string) int {
	return distance([]rune(Normalize(s1)), []rune(Normalize(s2)))
}

func distance(r1, r2 []rune) int {
	if len(r1) == 0 {
		return len(r2)
	}
	if len(r2) == 0 {
		return len(r1)
	}

	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(r2)]
}

// Threshold is the edit distance tolerated for a query of the given length.
func Threshold(query string) int {
	n := len([]rune(Normalize(query)))
	switch {
	case n <= 3:
		return 1
	case n >= 8:
		return 3
	default:
		return 2
	}
}

// Score rates how well name matches query. Zero means no match.
func Score(query, name string) float64 {
	q := Normalize(query)
	n := Normalize(name)
	if q == "" || n == "" {
		return 0
	}

	if n == q {
		return 200
	}

	score := 0.0
	if strings.HasPrefix(n, q) {
		score += 120
	} else if strings.Contains(n, q) {
		score += 100
	}
	if containsWord(n, q) {
		score += 50
	}

	qr := []rune(q)
	threshold := Threshold(q)
	for _, word := range strings.Fields(n) {
		if strings.HasPrefix(word, q) {
			score += 40
			continue
		}
		if d := distance(qr, []rune(word)); d <= threshold {
			score += 50 - float64(d)*15
		}
	}

	// whole-name typo, e.g. "volksvagen" vs "volkswagen"
	if score == 0 {
		if d := distance(qr, []rune(n)); d <= threshold+len(qr)/5 {
			score += 30 - float64(d)*5
		}
	}
	return score
}

// Match reports whether name is a plausible hit for query.
func Match(query, name string) bool {
	return Score(query, name) > 0
}

// Rank returns the items whose name matches query, best first. Ties keep input order.
// An empty query returns items unchanged.
func Rank[T any](query string, items []T, name func(T) string) []T {
	if strings.TrimSpace(query) == "" {
		return items
	}

	type scored struct {
		item  T
		score float64
	}
	var hits []scored
	for _, it := range items {
		if s := Score(query, name(it)); s > 0 {
			hits = append(hits, scored{item: it, score: s})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].score > hits[j].score
	})

	out := make([]T, len(hits))
	for i, h := range hits {
		out[i] = h.item
	}
	return out
}

// Normalize lowercases s, strips diacritics and collapses whitespace.
func Normalize(s string) string {
	s = removeAccents(strings.ToLower(s))
	return strings.Join(strings.Fields(s), " ")
}

func containsWord(text, query string) bool {
	for _, word := range strings.Fields(text) {
		if word == query {
			return true
		}
	}
	return false
}

// removeAccents decomposes s and drops nonspacing marks ("Citroën" -> "citroen").
func removeAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
