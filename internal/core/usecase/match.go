package usecase

import (
	"path/filepath"
	"strings"

	"github.com/govreg/doccompass/internal/core/domain"
)

// DefaultFuzzyThreshold is the minimum Jaccard overlap a fuzzy candidate must
// exceed to be accepted.
const DefaultFuzzyThreshold = 0.3

// Matcher links a required document to at most one evidence file using three
// ordered passes: exact identifier, exact normalized title, fuzzy token
// overlap. The first pass that succeeds wins, even over a higher-scoring
// candidate from a later pass, because an explicit identifier in a filename is
// authoritative intent. The evidence slice must already be in a stable order
// (sorted by path) so tie-breaking is reproducible run-to-run.
type Matcher struct {
	threshold float64
}

func NewMatcher(threshold float64) *Matcher {
	if threshold <= 0 || threshold >= 1 {
		threshold = DefaultFuzzyThreshold
	}
	return &Matcher{threshold: threshold}
}

// Match holds the outcome of one matching attempt.
type Match struct {
	File       *domain.EvidenceFile
	Method     domain.MatchMethod
	Confidence domain.MatchConfidence
}

// Match finds the best evidence file for doc, or a MatchNone outcome when no
// pass succeeds. Each document is matched independently against the full
// evidence pool; the same file may satisfy several requirements.
func (m *Matcher) Match(doc domain.RequiredDocument, evidence []domain.EvidenceFile) Match {
	if f := m.byExactID(doc, evidence); f != nil {
		return Match{File: f, Method: domain.MatchExactID, Confidence: domain.ConfidenceConfirmed}
	}
	if f := m.byExactTitle(doc, evidence); f != nil {
		return Match{File: f, Method: domain.MatchExactTitle, Confidence: domain.ConfidenceConfirmed}
	}
	if f := m.byTokenOverlap(doc, evidence); f != nil {
		return Match{File: f, Method: domain.MatchFuzzy, Confidence: domain.ConfidenceNeedsHumanConfirm}
	}
	return Match{Method: domain.MatchNone, Confidence: domain.ConfidenceNone}
}

func (m *Matcher) byExactID(doc domain.RequiredDocument, evidence []domain.EvidenceFile) *domain.EvidenceFile {
	id := strings.ToLower(strings.TrimSpace(doc.DocID))
	if id == "" {
		return nil
	}
	for i := range evidence {
		if strings.Contains(strings.ToLower(evidence[i].Name), id) {
			return &evidence[i]
		}
	}
	return nil
}

func (m *Matcher) byExactTitle(doc domain.RequiredDocument, evidence []domain.EvidenceFile) *domain.EvidenceFile {
	title := normalizeTitle(doc.Title)
	if title == "" {
		return nil
	}
	for i := range evidence {
		name := normalizeTitle(strings.TrimSuffix(evidence[i].Name, filepath.Ext(evidence[i].Name)))
		if name == "" {
			continue
		}
		if name == title || strings.Contains(name, title) || strings.Contains(title, name) {
			return &evidence[i]
		}
	}
	return nil
}

func (m *Matcher) byTokenOverlap(doc domain.RequiredDocument, evidence []domain.EvidenceFile) *domain.EvidenceFile {
	titleTokens := domain.Tokenize(doc.Title)
	if len(titleTokens) == 0 {
		return nil
	}

	var best *domain.EvidenceFile
	bestScore := 0.0
	for i := range evidence {
		score := domain.Jaccard(titleTokens, evidence[i].NameTokens)
		// Strict inequality keeps the first-encountered file on ties.
		if score > bestScore {
			bestScore = score
			best = &evidence[i]
		}
	}
	if best == nil || bestScore <= m.threshold {
		return nil
	}
	return best
}

// normalizeTitle lower-cases, replaces underscores with spaces, collapses
// whitespace and trims. Applied identically to required titles and evidence
// filenames before equality/containment checks.
func normalizeTitle(s string) string {
	s = strings.ToLower(strings.ReplaceAll(s, "_", " "))
	return strings.Join(strings.Fields(s), " ")
}
