package domain

import "time"

// DocumentStatus is the lifecycle state of a required document.
type DocumentStatus string

const (
	StatusNotStarted  DocumentStatus = "not_started"
	StatusDraft       DocumentStatus = "draft"
	StatusInReview    DocumentStatus = "in_review"
	StatusApproved    DocumentStatus = "approved"
	StatusImplemented DocumentStatus = "implemented"
	StatusNeedsUpdate DocumentStatus = "needs_update"
	StatusRetired     DocumentStatus = "retired"
)

// MatchMethod records which matching pass linked evidence to a requirement.
type MatchMethod string

const (
	MatchExactID    MatchMethod = "exact_id"
	MatchExactTitle MatchMethod = "exact_title"
	MatchFuzzy      MatchMethod = "fuzzy"
	MatchNone       MatchMethod = "none"
)

// MatchConfidence labels how much a match can be trusted without human review.
// Fuzzy matches are never silently upgraded to Confirmed.
type MatchConfidence string

const (
	ConfidenceConfirmed         MatchConfidence = "confirmed"
	ConfidenceNeedsHumanConfirm MatchConfidence = "needs_human_confirm"
	ConfidenceNone              MatchConfidence = ""
)

// MatchResult is the reconciliation outcome for one required document.
// Invariants: MatchMethod == MatchNone iff EvidencePath is empty iff
// MatchConfidence is empty; CoveragePercent is always derivable from
// (Status, EvidencePath != "") via the coverage table.
type MatchResult struct {
	DocumentID         string          `json:"document_id"`
	Title              string          `json:"title"`
	Type               DocumentType    `json:"type"`
	Owner              string          `json:"owner"`
	CrossOwners        []string        `json:"cross_owners,omitempty"`
	Approver           string          `json:"approver,omitempty"`
	Version            string          `json:"version,omitempty"`
	EvidencePath       string          `json:"evidence_path,omitempty"`
	Status             DocumentStatus  `json:"status"`
	CoveragePercent    int             `json:"coverage_percent"`
	MatchedObligations []string        `json:"matched_obligations,omitempty"`
	MatchMethod        MatchMethod     `json:"match_method"`
	MatchConfidence    MatchConfidence `json:"match_confidence,omitempty"`
	LastUpdated        time.Time       `json:"last_updated,omitzero"`
	FrameworkTags      []string        `json:"framework_tags,omitempty"`
	SharedEvidence     bool            `json:"shared_evidence,omitempty"`
	Notes              string          `json:"notes,omitempty"`
}

// HasEvidence reports whether the entry is backed by a discovered file.
func (r MatchResult) HasEvidence() bool {
	return r.EvidencePath != ""
}

// IsMapped reports whether at least one obligation theme or framework tag is
// attached.
func (r MatchResult) IsMapped() bool {
	return len(r.MatchedObligations) > 0 || len(r.FrameworkTags) > 0
}
