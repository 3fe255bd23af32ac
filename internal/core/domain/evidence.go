package domain

import (
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"
)

// EvidenceFile is one candidate file discovered on a scan root. Instances are
// created fresh each scan and discarded once matching completes.
type EvidenceFile struct {
	Path       string
	Name       string
	NameTokens []string
	ModifiedAt time.Time
}

const minTokenLen = 3

// Tokenize lower-cases a filename, strips its extension, replaces
// filename-delimiter punctuation with spaces and returns the sorted set of
// distinct tokens of at least three characters.
func Tokenize(name string) []string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.ToLower(base)
	base = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			return r
		default:
			return ' '
		}
	}, base)

	seen := make(map[string]struct{})
	for _, tok := range strings.Fields(base) {
		if len([]rune(tok)) < minTokenLen {
			continue
		}
		seen[tok] = struct{}{}
	}

	out := make([]string, 0, len(seen))
	for tok := range seen {
		out = append(out, tok)
	}
	sort.Strings(out)
	return out
}

// Jaccard returns the intersection-over-union of two token sets.
// Both inputs are treated as sets; duplicates do not change the result.
func Jaccard(a, b []string) float64 {
	setA := make(map[string]struct{}, len(a))
	for _, t := range a {
		setA[t] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, t := range b {
		setB[t] = struct{}{}
	}

	intersection := 0
	for t := range setB {
		if _, ok := setA[t]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
