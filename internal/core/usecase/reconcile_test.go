package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/govreg/doccompass/internal/core/domain"
)

type taxonomyFake struct {
	catalogs map[string][]domain.RequiredDocument
	errs     map[string]error
}

func (f *taxonomyFake) Load(_ context.Context, dept domain.DepartmentConfig) ([]domain.RequiredDocument, error) {
	if err := f.errs[dept.Code]; err != nil {
		return nil, err
	}
	return f.catalogs[dept.Code], nil
}

type evidenceFake struct {
	files []domain.EvidenceFile
	err   error
}

func (f *evidenceFake) Scan(context.Context, []string) ([]domain.EvidenceFile, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.EvidenceFile, len(f.files))
	copy(out, f.files)
	return out, nil
}

type repoFake struct {
	saved    *domain.ResultSet
	saveErr  error
	statuses map[string]map[string]domain.DocumentStatus
	loadErr  error
}

func (f *repoFake) SaveRun(_ context.Context, rs *domain.ResultSet) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = rs
	return nil
}

func (f *repoFake) LoadStatuses(_ context.Context, department string) (map[string]domain.DocumentStatus, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.statuses[department], nil
}

func (f *repoFake) LatestRun(context.Context) (*domain.ReconciliationRun, error) {
	if f.saved == nil {
		return nil, domain.ErrRunNotFound
	}
	return &f.saved.Run, nil
}

type reportFake struct {
	paths []string
	err   error
}

func (f *reportFake) Write(_ context.Context, _ *domain.ResultSet, path string) error {
	if f.err != nil {
		return f.err
	}
	f.paths = append(f.paths, path)
	return nil
}

type queueFake struct {
	published []string
	err       error
}

func (f *queueFake) PublishRunCompleted(_ context.Context, runID string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, runID)
	return nil
}

func (f *queueFake) PublishReconcileRequest(_ context.Context, scope string) error {
	return f.err
}

func (f *queueFake) SubscribeReconcileRequests(context.Context, func(context.Context, string) error) error {
	return nil
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testDepartments() []domain.DepartmentConfig {
	return []domain.DepartmentConfig{
		{Code: "HR", Name: "Human Resources", DefaultTheme: "Labor Law", Approver: "Head of HR"},
		{Code: "FIN", Name: "Finance", DefaultTheme: "Prudential Requirements", Approver: "CFO"},
	}
}

func testTaxonomy() map[string][]domain.RequiredDocument {
	return map[string][]domain.RequiredDocument{
		"HR": {
			{DocID: "HR-POL-003", Title: "Leave Management Policy", Type: domain.TypePolicy, Department: "HR", Frameworks: []string{"ISO9001"}},
			{DocID: "HR-PRO-001", Title: "Employee Onboarding Procedure", Type: domain.TypeProcedure, Department: "HR"},
		},
		"FIN": {
			{DocID: "FIN-REG-002", Title: "Fixed Asset Register", Type: domain.TypeRegister, Department: "FIN"},
		},
	}
}

func testEvidence() []domain.EvidenceFile {
	return []domain.EvidenceFile{
		evidenceFile("/evidence/hr/HR-POL-003_Leave_Mgmt_v2_Approved.docx"),
		evidenceFile("/evidence/fin/fixed_asset_register_draft.xlsx"),
	}
}

func newTestUseCase(taxonomy *taxonomyFake, evidence *evidenceFake, repo *repoFake, report *reportFake, queue *queueFake, opts Options) *ReconcileUseCase {
	if opts.Departments == nil {
		opts.Departments = testDepartments()
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return fixedNow }
	}
	uc := NewReconcileUseCase(taxonomy, evidence, nil, nil, nil, nil, opts)
	if repo != nil {
		uc.repo = repo
	}
	if report != nil {
		uc.report = report
	}
	if queue != nil {
		uc.queue = queue
	}
	return uc
}

func TestReconcileEndToEnd(t *testing.T) {
	repo := &repoFake{}
	queue := &queueFake{}
	uc := newTestUseCase(
		&taxonomyFake{catalogs: testTaxonomy()},
		&evidenceFake{files: testEvidence()},
		repo, nil, queue,
		Options{},
	)

	rs, err := uc.Reconcile(context.Background(), nil)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if len(rs.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(rs.Results))
	}

	byID := make(map[string]domain.MatchResult)
	for _, r := range rs.Results {
		byID[r.DocumentID] = r
	}

	leave := byID["HR-POL-003"]
	if leave.MatchMethod != domain.MatchExactID {
		t.Fatalf("expected exact_id match for HR-POL-003, got %s", leave.MatchMethod)
	}
	if leave.Status != domain.StatusApproved || leave.CoveragePercent != 75 {
		t.Fatalf("expected approved/75, got %s/%d", leave.Status, leave.CoveragePercent)
	}
	if leave.Approver != "Head of HR" {
		t.Fatalf("department approver not applied: %q", leave.Approver)
	}

	onboarding := byID["HR-PRO-001"]
	if onboarding.MatchMethod != domain.MatchNone || onboarding.Status != domain.StatusNotStarted || onboarding.CoveragePercent != 0 {
		t.Fatalf("expected unmatched/not_started/0, got %+v", onboarding)
	}

	register := byID["FIN-REG-002"]
	if register.Status != domain.StatusDraft || register.CoveragePercent != 50 {
		t.Fatalf("expected draft/50 for draft-cued evidence, got %s/%d", register.Status, register.CoveragePercent)
	}

	if repo.saved == nil {
		t.Fatalf("expected run to be persisted")
	}
	if len(queue.published) != 1 || queue.published[0] != rs.Run.ID {
		t.Fatalf("expected run-completed publish for %s, got %v", rs.Run.ID, queue.published)
	}
	if len(rs.Missing) != 1 || rs.Missing[0].DocumentID != "HR-PRO-001" {
		t.Fatalf("unexpected missing list: %v", rs.Missing)
	}
}

func TestReconcileConfidenceInvariant(t *testing.T) {
	uc := newTestUseCase(
		&taxonomyFake{catalogs: testTaxonomy()},
		&evidenceFake{files: testEvidence()},
		nil, nil, nil,
		Options{},
	)

	rs, err := uc.Reconcile(context.Background(), nil)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	for _, r := range rs.Results {
		switch r.MatchMethod {
		case domain.MatchExactID, domain.MatchExactTitle:
			if r.MatchConfidence != domain.ConfidenceConfirmed {
				t.Fatalf("%s: expected confirmed, got %q", r.DocumentID, r.MatchConfidence)
			}
		case domain.MatchFuzzy:
			if r.MatchConfidence != domain.ConfidenceNeedsHumanConfirm {
				t.Fatalf("%s: fuzzy match silently upgraded", r.DocumentID)
			}
		case domain.MatchNone:
			if r.EvidencePath != "" || r.MatchConfidence != domain.ConfidenceNone {
				t.Fatalf("%s: none-match invariant violated: %+v", r.DocumentID, r)
			}
		}
	}
}

func TestReconcileIsDeterministic(t *testing.T) {
	build := func(workers int) *domain.ResultSet {
		uc := newTestUseCase(
			&taxonomyFake{catalogs: testTaxonomy()},
			&evidenceFake{files: testEvidence()},
			nil, nil, nil,
			Options{Workers: workers},
		)
		rs, err := uc.Reconcile(context.Background(), nil)
		if err != nil {
			t.Fatalf("Reconcile() error = %v", err)
		}
		return rs
	}

	sequential := build(1)
	parallel := build(8)
	if !reflect.DeepEqual(sequential.Results, parallel.Results) {
		t.Fatalf("results differ between sequential and parallel runs")
	}
	if !reflect.DeepEqual(sequential.Conflicts, parallel.Conflicts) {
		t.Fatalf("conflicts differ between runs")
	}
	if !reflect.DeepEqual(sequential.Departments, parallel.Departments) {
		t.Fatalf("summaries differ between runs")
	}
}

func TestReconcileHonorsPriorStatuses(t *testing.T) {
	repo := &repoFake{
		statuses: map[string]map[string]domain.DocumentStatus{
			"FIN": {"FIN-REG-002": domain.StatusImplemented},
		},
	}
	uc := newTestUseCase(
		&taxonomyFake{catalogs: testTaxonomy()},
		&evidenceFake{files: testEvidence()},
		repo, nil, nil,
		Options{},
	)

	rs, err := uc.Reconcile(context.Background(), []string{"FIN"})
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if len(rs.Results) != 1 {
		t.Fatalf("expected one FIN result, got %d", len(rs.Results))
	}
	r := rs.Results[0]
	if r.Status != domain.StatusImplemented {
		t.Fatalf("prior explicit status not honored: %s", r.Status)
	}
	if r.CoveragePercent != 100 {
		t.Fatalf("implemented with evidence must score 100, got %d", r.CoveragePercent)
	}
}

func TestReconcileAllCatalogsUnreadable(t *testing.T) {
	uc := newTestUseCase(
		&taxonomyFake{errs: map[string]error{
			"HR":  domain.ErrCatalogNotFound,
			"FIN": domain.ErrCatalogNotFound,
		}},
		&evidenceFake{files: testEvidence()},
		nil, nil, nil,
		Options{},
	)

	_, err := uc.Reconcile(context.Background(), nil)
	if !domain.IsKind(err, domain.ErrEmptyRun) {
		t.Fatalf("expected ErrEmptyRun, got %v", err)
	}
}

func TestReconcilePartialCatalogFailureContinues(t *testing.T) {
	uc := newTestUseCase(
		&taxonomyFake{
			catalogs: testTaxonomy(),
			errs:     map[string]error{"HR": errors.New("yaml: corrupt")},
		},
		&evidenceFake{files: testEvidence()},
		nil, nil, nil,
		Options{},
	)

	rs, err := uc.Reconcile(context.Background(), nil)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if len(rs.Results) != 1 || rs.Results[0].Owner != "FIN" {
		t.Fatalf("expected FIN-only results, got %v", rs.Results)
	}
}

func TestReconcileSaveFailureKeepsResults(t *testing.T) {
	repo := &repoFake{saveErr: errors.New("destination locked")}
	report := &reportFake{err: errors.New("workbook locked")}
	uc := newTestUseCase(
		&taxonomyFake{catalogs: testTaxonomy()},
		&evidenceFake{files: testEvidence()},
		repo, report, nil,
		Options{ReportPath: "/reports/out.xlsx"},
	)

	rs, err := uc.Reconcile(context.Background(), nil)
	if err != nil {
		t.Fatalf("write failures must not discard results: %v", err)
	}
	if len(rs.Results) == 0 {
		t.Fatalf("expected in-memory results despite write failures")
	}
}

func TestReconcileFlagsSharedEvidence(t *testing.T) {
	catalogs := map[string][]domain.RequiredDocument{
		"HR": {
			{DocID: "HR-POL-010", Title: "Information Security Policy", Department: "HR"},
			{DocID: "HR-POL-011", Title: "Information Security Policy Annex", Department: "HR"},
		},
	}
	evidence := []domain.EvidenceFile{
		evidenceFile("/evidence/information_security_policy.docx"),
	}
	uc := newTestUseCase(
		&taxonomyFake{catalogs: catalogs},
		&evidenceFake{files: evidence},
		nil, nil, nil,
		Options{Departments: []domain.DepartmentConfig{{Code: "HR"}}},
	)

	rs, err := uc.Reconcile(context.Background(), nil)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	for _, r := range rs.Results {
		if r.EvidencePath == "" {
			t.Fatalf("expected both entries matched: %+v", r)
		}
		if !r.SharedEvidence {
			t.Fatalf("shared evidence not flagged: %+v", r)
		}
	}
}
