package usecase

import (
	"testing"

	"github.com/govreg/doccompass/internal/core/domain"
)

func TestResolveStatusHonorsExplicitStatus(t *testing.T) {
	got := ResolveStatus(domain.StatusRetired, "/evidence/approved/policy.docx")
	if got != domain.StatusRetired {
		t.Fatalf("explicit status must win, got %s", got)
	}
}

func TestResolveStatusPathCues(t *testing.T) {
	cases := []struct {
		name string
		path string
		want domain.DocumentStatus
	}{
		{"approved keyword", "/evidence/Approved/leave_policy.docx", domain.StatusApproved},
		{"final keyword", "/evidence/policies/risk_policy_FINAL.docx", domain.StatusApproved},
		{"draft keyword", "/evidence/drafts/conduct.docx", domain.StatusDraft},
		{"review keyword", "/evidence/in_review/aml_manual.pdf", domain.StatusInReview},
		{"approved beats draft by cue order", "/evidence/draft/approved_policy.docx", domain.StatusApproved},
		{"no evidence", "", domain.StatusNotStarted},
		{"uncued evidence assumed unfinished", "/evidence/misc/policy.docx", domain.StatusDraft},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResolveStatus("", tc.path); got != tc.want {
				t.Fatalf("ResolveStatus(%q) = %s, want %s", tc.path, got, tc.want)
			}
		})
	}
}

func TestCoverageScoreTable(t *testing.T) {
	cases := []struct {
		status      domain.DocumentStatus
		hasEvidence bool
		want        int
	}{
		{domain.StatusImplemented, true, 100},
		{domain.StatusImplemented, false, 50},
		{domain.StatusApproved, true, 75},
		{domain.StatusApproved, false, 50},
		{domain.StatusInReview, true, 50},
		{domain.StatusInReview, false, 50},
		{domain.StatusDraft, true, 50},
		{domain.StatusDraft, false, 25},
		{domain.StatusNeedsUpdate, true, 25},
		{domain.StatusNeedsUpdate, false, 25},
		{domain.StatusNotStarted, false, 0},
		{domain.StatusRetired, true, 0},
		{domain.DocumentStatus("bogus"), true, 0},
	}
	for _, tc := range cases {
		if got := CoverageScore(tc.status, tc.hasEvidence); got != tc.want {
			t.Fatalf("CoverageScore(%s, %t) = %d, want %d", tc.status, tc.hasEvidence, got, tc.want)
		}
	}
}
