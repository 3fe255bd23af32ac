package usecase

import (
	"strings"

	"github.com/govreg/doccompass/internal/core/domain"
)

// ResolveStatus derives a lifecycle status for one entry. An explicit status
// recorded earlier (catalog field or a prior persisted run) is honored
// verbatim. Otherwise the full evidence path is scanned for ordered keyword
// cues; a found-but-unlabeled file is assumed unfinished, never approved.
func ResolveStatus(explicit domain.DocumentStatus, evidencePath string) domain.DocumentStatus {
	if explicit != "" {
		return explicit
	}
	if evidencePath == "" {
		return domain.StatusNotStarted
	}

	p := strings.ToLower(evidencePath)
	switch {
	case strings.Contains(p, "approved") || strings.Contains(p, "final"):
		return domain.StatusApproved
	case strings.Contains(p, "draft"):
		return domain.StatusDraft
	case strings.Contains(p, "review"):
		return domain.StatusInReview
	default:
		return domain.StatusDraft
	}
}

// CoverageScore maps (status, evidence presence) to the 0-100 audit-readiness
// score. Evidence absence caps the score even for a nominally approved or
// implemented status: the number represents auditable readiness, not claimed
// status.
func CoverageScore(status domain.DocumentStatus, hasEvidence bool) int {
	switch status {
	case domain.StatusImplemented:
		if hasEvidence {
			return 100
		}
		return 50
	case domain.StatusApproved:
		if hasEvidence {
			return 75
		}
		return 50
	case domain.StatusInReview:
		return 50
	case domain.StatusDraft:
		if hasEvidence {
			return 50
		}
		return 25
	case domain.StatusNeedsUpdate:
		return 25
	default:
		return 0
	}
}
