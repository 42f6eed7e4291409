// Package fuzzy ranks catalog names against free-text voice transcript
// fragments.
package fuzzy

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Threshold is the minimum score consumers accept; matches at or below it
// are discarded.
const Threshold = 0.6

// stripMarks decomposes to NFD, drops combining marks, and recomposes, so
// "Jägermeister" normalizes the same as "Jagermeister".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize prepares a string for matching: diacritics stripped, lowercased,
// trimmed.
func Normalize(s string) string {
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		out = s
	}
	return strings.TrimSpace(strings.ToLower(out))
}

// Score rates how well query matches target, highest wins:
//
//	1.0  exact match after normalization
//	0.9  target starts with query
//	0.8  any whitespace-delimited word of target starts with query
//	0.7  target contains query anywhere
//	0    no match
func Score(query, target string) float64 {
	q := Normalize(query)
	t := Normalize(target)
	if q == "" || t == "" {
		return 0
	}

	if q == t {
		return 1.0
	}
	if strings.HasPrefix(t, q) {
		return 0.9
	}
	for _, w := range strings.Fields(t) {
		if strings.HasPrefix(w, q) {
			return 0.8
		}
	}
	if strings.Contains(t, q) {
		return 0.7
	}
	return 0
}

// ScoreWithSecondary scores query against a primary name and a weaker
// secondary field (e.g. a description). The secondary score is halved before
// taking the maximum.
func ScoreWithSecondary(query, primary, secondary string) float64 {
	s := Score(query, primary)
	if sec := Score(query, secondary) * 0.5; sec > s {
		s = sec
	}
	return s
}

// Match pairs a candidate index with its score.
type Match struct {
	Index int
	Score float64
}

// Rank scores query against every target and returns matches above Threshold
// sorted best-first. Equal scores keep target order, so earlier catalog
// entries win ties.
func Rank(query string, score func(i int) float64, n int) []Match {
	var matches []Match
	for i := 0; i < n; i++ {
		if s := score(i); s > Threshold {
			matches = append(matches, Match{Index: i, Score: s})
		}
	}
	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Score > matches[b].Score
	})
	return matches
}
