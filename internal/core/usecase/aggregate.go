package usecase

import (
	"math"
	"sort"
	"time"

	"github.com/govreg/doccompass/internal/core/domain"
)

// DefaultFreshnessWindow bounds how old evidence may be before an entry stops
// counting as fresh.
const DefaultFreshnessWindow = 365 * 24 * time.Hour

// Readiness composite weights. An entry earns points for each independent
// signal; the global composite is the mean of entry scores.
const (
	readinessMatched  = 25
	readinessMetadata = 15
	readinessApproved = 25
	readinessMapped   = 20
	readinessEvidence = 15
)

// ReadinessScore computes the weighted composite for one entry.
func ReadinessScore(r domain.MatchResult) int {
	score := 0
	if r.HasEvidence() {
		score += readinessMatched
	}
	if r.DocumentID != "" && r.Title != "" && r.Version != "" && !r.LastUpdated.IsZero() {
		score += readinessMetadata
	}
	if r.Status == domain.StatusApproved || r.Status == domain.StatusImplemented {
		score += readinessApproved
	}
	if r.IsMapped() {
		score += readinessMapped
	}
	if r.EvidencePath != "" {
		score += readinessEvidence
	}
	return score
}

// Summarize rolls the result set up into one summary per department plus the
// global row. Percentages are rounded to the nearest integer; an empty scope
// reports zeros rather than dividing by zero.
func Summarize(results []domain.MatchResult, now time.Time, freshnessWindow time.Duration) ([]domain.Summary, domain.Summary) {
	if freshnessWindow <= 0 {
		freshnessWindow = DefaultFreshnessWindow
	}

	byDept := make(map[string][]domain.MatchResult)
	for _, r := range results {
		byDept[r.Owner] = append(byDept[r.Owner], r)
	}

	codes := make([]string, 0, len(byDept))
	for code := range byDept {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	summaries := make([]domain.Summary, 0, len(codes))
	for _, code := range codes {
		summaries = append(summaries, summarizeScope(code, byDept[code], now, freshnessWindow))
	}
	global := summarizeScope(domain.GlobalScope, results, now, freshnessWindow)
	return summaries, global
}

func summarizeScope(scope string, results []domain.MatchResult, now time.Time, freshnessWindow time.Duration) domain.Summary {
	s := domain.Summary{Department: scope, TotalRequired: len(results)}

	readinessTotal := 0
	for _, r := range results {
		if r.HasEvidence() {
			s.WithEvidence++
		}
		if r.Status == domain.StatusApproved || r.Status == domain.StatusImplemented {
			s.ApprovedCount++
		}
		if r.IsMapped() {
			s.MappedCount++
		}
		if isFresh(r, now, freshnessWindow) {
			s.FreshCount++
		}
		readinessTotal += ReadinessScore(r)
	}

	s.InventoryPercent = percent(s.WithEvidence, s.TotalRequired)
	s.ApprovalPercent = percent(s.ApprovedCount, s.TotalRequired)
	s.MappingPercent = percent(s.MappedCount, s.TotalRequired)
	s.FreshnessPercent = percent(s.FreshCount, s.TotalRequired)
	if s.TotalRequired > 0 {
		s.ReadinessScore = int(math.Round(float64(readinessTotal) / float64(s.TotalRequired)))
	}
	return s
}

// Missing returns entries with no reconciliation progress at all.
func Missing(results []domain.MatchResult) []domain.MatchResult {
	var out []domain.MatchResult
	for _, r := range results {
		if r.Status == domain.StatusNotStarted {
			out = append(out, r)
		}
	}
	return out
}

// NeedsReview returns entries a human should look at: drafts, stale statuses,
// or evidence older than the freshness window.
func NeedsReview(results []domain.MatchResult, now time.Time, freshnessWindow time.Duration) []domain.MatchResult {
	if freshnessWindow <= 0 {
		freshnessWindow = DefaultFreshnessWindow
	}
	var out []domain.MatchResult
	for _, r := range results {
		switch {
		case r.Status == domain.StatusDraft || r.Status == domain.StatusNeedsUpdate:
			out = append(out, r)
		case r.HasEvidence() && !isFresh(r, now, freshnessWindow):
			out = append(out, r)
		}
	}
	return out
}

// Unmapped returns entries carrying no obligation theme and no framework tag.
func Unmapped(results []domain.MatchResult) []domain.MatchResult {
	var out []domain.MatchResult
	for _, r := range results {
		if !r.IsMapped() {
			out = append(out, r)
		}
	}
	return out
}

func isFresh(r domain.MatchResult, now time.Time, window time.Duration) bool {
	if r.LastUpdated.IsZero() {
		return false
	}
	return now.Sub(r.LastUpdated) <= window
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
