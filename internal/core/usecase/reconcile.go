package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/govreg/doccompass/internal/core/domain"
	"github.com/govreg/doccompass/internal/core/ports"
)

// Options tunes one ReconcileUseCase instance. Zero values fall back to the
// package defaults.
type Options struct {
	Departments     []domain.DepartmentConfig
	EvidenceRoots   []string
	ReportPath      string
	FuzzyThreshold  float64
	FreshnessWindow time.Duration
	Workers         int
	Now             func() time.Time
}

// ReconcileUseCase runs the full batch pipeline: scan evidence once, fan out
// per department, merge, detect conflicts, aggregate, persist and report.
// Departments are independent units of work; a failure in one never aborts
// the run.
type ReconcileUseCase struct {
	taxonomy ports.TaxonomySource
	evidence ports.EvidenceSource
	repo     ports.ResultRepository
	report   ports.ReportWriter
	queue    ports.MessageQueue
	logger   *slog.Logger
	opts     Options
}

func NewReconcileUseCase(
	taxonomy ports.TaxonomySource,
	evidence ports.EvidenceSource,
	repo ports.ResultRepository,
	report ports.ReportWriter,
	queue ports.MessageQueue,
	logger *slog.Logger,
	opts Options,
) *ReconcileUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.FreshnessWindow <= 0 {
		opts.FreshnessWindow = DefaultFreshnessWindow
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	return &ReconcileUseCase{
		taxonomy: taxonomy,
		evidence: evidence,
		repo:     repo,
		report:   report,
		queue:    queue,
		logger:   logger,
		opts:     opts,
	}
}

// Reconcile runs the pipeline for the requested department codes (empty means
// every configured department) and returns the complete result set. The run
// is recomputed from scratch each time; re-running is always safe.
func (uc *ReconcileUseCase) Reconcile(ctx context.Context, departments []string) (*domain.ResultSet, error) {
	started := uc.opts.Now()
	depts := uc.selectDepartments(departments)
	if len(depts) == 0 {
		return nil, domain.WrapError(domain.ErrEmptyRun, "select departments", fmt.Errorf("no department matches request %v", departments))
	}

	evidence, err := uc.evidence.Scan(ctx, uc.opts.EvidenceRoots)
	if err != nil {
		return nil, fmt.Errorf("scan evidence roots: %w", err)
	}
	// Fixed ordering before any parallel fan-out keeps matching deterministic.
	sort.Slice(evidence, func(i, j int) bool { return evidence[i].Path < evidence[j].Path })

	results := uc.reconcileDepartments(ctx, depts, evidence)
	if len(results) == 0 {
		return nil, domain.WrapError(domain.ErrEmptyRun, "reconcile departments", fmt.Errorf("all %d catalogs empty or unreadable", len(depts)))
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Owner != results[j].Owner {
			return results[i].Owner < results[j].Owner
		}
		return results[i].DocumentID < results[j].DocumentID
	})
	markSharedEvidence(results)

	now := uc.opts.Now()
	deptSummaries, global := Summarize(results, now, uc.opts.FreshnessWindow)

	codes := make([]string, 0, len(depts))
	for _, d := range depts {
		codes = append(codes, d.Code)
	}
	rs := &domain.ResultSet{
		Run: domain.ReconciliationRun{
			ID:          uuid.NewString(),
			StartedAt:   started,
			FinishedAt:  now,
			Departments: codes,
		},
		Results:     results,
		Conflicts:   DetectConflicts(results),
		Missing:     Missing(results),
		NeedsReview: NeedsReview(results, now, uc.opts.FreshnessWindow),
		Unmapped:    Unmapped(results),
		Departments: deptSummaries,
		Global:      global,
	}

	uc.persist(ctx, rs)
	uc.writeReport(ctx, rs)
	uc.notify(ctx, rs)
	return rs, nil
}

func (uc *ReconcileUseCase) selectDepartments(requested []string) []domain.DepartmentConfig {
	if len(requested) == 0 {
		return uc.opts.Departments
	}
	want := make(map[string]struct{}, len(requested))
	for _, code := range requested {
		want[code] = struct{}{}
	}
	var out []domain.DepartmentConfig
	for _, d := range uc.opts.Departments {
		if _, ok := want[d.Code]; ok {
			out = append(out, d)
		}
	}
	return out
}

// reconcileDepartments fans departments out over a bounded worker pool and
// merges per-department result slices afterwards (map-then-reduce; no shared
// mutable state during the fan-out).
func (uc *ReconcileUseCase) reconcileDepartments(ctx context.Context, depts []domain.DepartmentConfig, evidence []domain.EvidenceFile) []domain.MatchResult {
	perDept := make([][]domain.MatchResult, len(depts))

	jobs := make(chan int)
	var wg sync.WaitGroup
	workers := uc.opts.Workers
	if workers > len(depts) {
		workers = len(depts)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				perDept[i] = uc.reconcileDepartment(ctx, depts[i], evidence)
			}
		}()
	}
	for i := range depts {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var merged []domain.MatchResult
	for _, rs := range perDept {
		merged = append(merged, rs...)
	}
	return merged
}

func (uc *ReconcileUseCase) reconcileDepartment(ctx context.Context, dept domain.DepartmentConfig, evidence []domain.EvidenceFile) []domain.MatchResult {
	taxonomy, err := uc.taxonomy.Load(ctx, dept)
	if err != nil {
		uc.logger.Warn("catalog unavailable, treating as empty taxonomy",
			"department", dept.Code, "error", err)
		return nil
	}

	prior := uc.priorStatuses(ctx, dept.Code)
	matcher := NewMatcher(uc.opts.FuzzyThreshold)

	results := make([]domain.MatchResult, 0, len(taxonomy))
	for _, doc := range taxonomy {
		results = append(results, uc.buildResult(doc, dept, matcher.Match(doc, evidence), prior))
	}
	return results
}

func (uc *ReconcileUseCase) buildResult(doc domain.RequiredDocument, dept domain.DepartmentConfig, match Match, prior map[string]domain.DocumentStatus) domain.MatchResult {
	r := domain.MatchResult{
		DocumentID:      doc.DocID,
		Title:           doc.Title,
		Type:            doc.Type,
		Owner:           dept.Code,
		CrossOwners:     doc.CrossOwners,
		Approver:        firstNonEmpty(doc.Approver, dept.Approver),
		Version:         doc.Version,
		MatchMethod:     match.Method,
		MatchConfidence: match.Confidence,
		FrameworkTags:   doc.Frameworks,
	}
	if match.File != nil {
		r.EvidencePath = match.File.Path
		r.LastUpdated = match.File.ModifiedAt
	}

	explicit := doc.Status
	if explicit == "" {
		explicit = prior[doc.DocID]
	}
	r.Status = ResolveStatus(explicit, r.EvidencePath)
	r.CoveragePercent = CoverageScore(r.Status, r.HasEvidence())
	r.MatchedObligations = MapObligations(doc.Title, dept.DefaultTheme)
	return r
}

func (uc *ReconcileUseCase) priorStatuses(ctx context.Context, department string) map[string]domain.DocumentStatus {
	if uc.repo == nil {
		return nil
	}
	prior, err := uc.repo.LoadStatuses(ctx, department)
	if err != nil {
		uc.logger.Warn("prior statuses unavailable", "department", department, "error", err)
		return nil
	}
	return prior
}

// persist saves the run; a storage failure never discards the in-memory
// result set.
func (uc *ReconcileUseCase) persist(ctx context.Context, rs *domain.ResultSet) {
	if uc.repo == nil {
		return
	}
	if err := uc.repo.SaveRun(ctx, rs); err != nil {
		uc.logger.Warn("persist run failed, results remain in memory", "run_id", rs.Run.ID, "error", err)
	}
}

func (uc *ReconcileUseCase) writeReport(ctx context.Context, rs *domain.ResultSet) {
	if uc.report == nil || uc.opts.ReportPath == "" {
		return
	}
	if err := uc.report.Write(ctx, rs, uc.opts.ReportPath); err != nil {
		uc.logger.Warn("report write failed, results remain in memory", "path", uc.opts.ReportPath, "error", err)
	}
}

func (uc *ReconcileUseCase) notify(ctx context.Context, rs *domain.ResultSet) {
	if uc.queue == nil {
		return
	}
	if err := uc.queue.PublishRunCompleted(ctx, rs.Run.ID); err != nil {
		uc.logger.Warn("run-completed publish failed", "run_id", rs.Run.ID, "error", err)
	}
}

// markSharedEvidence flags every result whose evidence file also satisfied
// another requirement. Matching is deliberately not one-to-one; the flag
// makes the relaxation visible downstream.
func markSharedEvidence(results []domain.MatchResult) {
	usage := make(map[string]int)
	for _, r := range results {
		if r.EvidencePath != "" {
			usage[r.EvidencePath]++
		}
	}
	for i := range results {
		if results[i].EvidencePath != "" && usage[results[i].EvidencePath] > 1 {
			results[i].SharedEvidence = true
		}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
