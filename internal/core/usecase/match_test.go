package usecase

import (
	"testing"
	"time"

	"github.com/govreg/doccompass/internal/core/domain"
)

func evidenceFile(path string) domain.EvidenceFile {
	name := path
	if i := lastSlash(path); i >= 0 {
		name = path[i+1:]
	}
	return domain.EvidenceFile{
		Path:       path,
		Name:       name,
		NameTokens: domain.Tokenize(name),
		ModifiedAt: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
	}
}

func lastSlash(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '/' {
			return i
		}
	}
	return -1
}

func TestMatchExactIDWinsOverBetterFuzzyCandidate(t *testing.T) {
	doc := domain.RequiredDocument{
		DocID: "HR-POL-003",
		Title: "Leave Management Policy",
	}
	evidence := []domain.EvidenceFile{
		evidenceFile("/evidence/leave_management_policy_notes_extra.docx"),
		evidenceFile("/evidence/zz/HR-POL-003_Leave_Mgmt_v2_Approved.docx"),
	}

	m := NewMatcher(0).Match(doc, evidence)
	if m.Method != domain.MatchExactID {
		t.Fatalf("expected exact_id match, got %s", m.Method)
	}
	if m.File == nil || m.File.Path != "/evidence/zz/HR-POL-003_Leave_Mgmt_v2_Approved.docx" {
		t.Fatalf("unexpected file: %+v", m.File)
	}
	if m.Confidence != domain.ConfidenceConfirmed {
		t.Fatalf("expected confirmed confidence, got %q", m.Confidence)
	}
}

func TestMatchExactTitleAcceptsContainment(t *testing.T) {
	doc := domain.RequiredDocument{DocID: "IT-POL-001", Title: "Access Control Policy"}
	evidence := []domain.EvidenceFile{
		evidenceFile("/evidence/Access_Control_Policy_2025.pdf"),
	}

	m := NewMatcher(0).Match(doc, evidence)
	if m.Method != domain.MatchExactTitle {
		t.Fatalf("expected exact_title match, got %s", m.Method)
	}
	if m.Confidence != domain.ConfidenceConfirmed {
		t.Fatalf("expected confirmed confidence, got %q", m.Confidence)
	}
}

func TestMatchFuzzyNeedsHumanConfirm(t *testing.T) {
	doc := domain.RequiredDocument{DocID: "HR-PRO-004", Title: "Employee Onboarding Checklist Procedure"}
	evidence := []domain.EvidenceFile{
		evidenceFile("/evidence/onboarding-checklist-employee.pdf"),
	}

	m := NewMatcher(0).Match(doc, evidence)
	if m.Method != domain.MatchFuzzy {
		t.Fatalf("expected fuzzy match, got %s", m.Method)
	}
	if m.Confidence != domain.ConfidenceNeedsHumanConfirm {
		t.Fatalf("fuzzy match must need human confirmation, got %q", m.Confidence)
	}
}

func TestMatchBelowThresholdReturnsNone(t *testing.T) {
	doc := domain.RequiredDocument{Title: "Employee Onboarding Procedure"}
	evidence := []domain.EvidenceFile{
		// Overlap {onboarding} of union {employee onboarding procedure steps draft} is below 0.3.
		evidenceFile("/evidence/onboarding-steps-draft-archive.pdf"),
	}

	m := NewMatcher(0).Match(doc, evidence)
	if m.Method != domain.MatchNone {
		t.Fatalf("expected no match, got %s", m.Method)
	}
	if m.File != nil {
		t.Fatalf("no-match outcome must carry no file, got %+v", m.File)
	}
	if m.Confidence != domain.ConfidenceNone {
		t.Fatalf("no-match outcome must carry empty confidence, got %q", m.Confidence)
	}
}

func TestMatchFuzzyTieKeepsFirstInScanOrder(t *testing.T) {
	doc := domain.RequiredDocument{Title: "Vendor Risk Assessment"}
	evidence := []domain.EvidenceFile{
		evidenceFile("/evidence/a/vendor_risk_review.xlsx"),
		evidenceFile("/evidence/b/vendor_risk_summary.xlsx"),
	}

	m := NewMatcher(0).Match(doc, evidence)
	if m.Method != domain.MatchFuzzy {
		t.Fatalf("expected fuzzy match, got %s", m.Method)
	}
	if m.File.Path != "/evidence/a/vendor_risk_review.xlsx" {
		t.Fatalf("tie must keep first-encountered file, got %s", m.File.Path)
	}
}

func TestMatchEmptyDocIDSkipsIdentifierPass(t *testing.T) {
	doc := domain.RequiredDocument{Title: "Records Retention Register"}
	evidence := []domain.EvidenceFile{
		evidenceFile("/evidence/records_retention_register.xlsx"),
	}

	m := NewMatcher(0).Match(doc, evidence)
	if m.Method != domain.MatchExactTitle {
		t.Fatalf("expected exact_title match, got %s", m.Method)
	}
}
