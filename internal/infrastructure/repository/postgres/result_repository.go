package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/govreg/doccompass/internal/core/domain"
	"github.com/govreg/doccompass/internal/infrastructure/resilience"
)

// ResultRepository persists reconciliation runs and exposes explicit statuses
// recorded against the latest run. Runs are append-only; the newest run is
// the canonical result set.
type ResultRepository struct {
	db       *sql.DB
	executor *resilience.Executor
}

func NewResultRepository(db *sql.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// NewResultRepositoryWithExecutor wraps writes in the retry/breaker executor.
func NewResultRepositoryWithExecutor(db *sql.DB, executor *resilience.Executor) *ResultRepository {
	return &ResultRepository{db: db, executor: executor}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *ResultRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across reconciler/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082701)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS reconciliation_runs (
	id TEXT PRIMARY KEY,
	started_at TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL,
	departments JSONB NOT NULL DEFAULT '[]'::jsonb
);

CREATE TABLE IF NOT EXISTS match_results (
	run_id TEXT NOT NULL REFERENCES reconciliation_runs(id) ON DELETE CASCADE,
	document_id TEXT NOT NULL,
	title TEXT NOT NULL,
	doc_type TEXT,
	owner TEXT NOT NULL,
	cross_owners JSONB NOT NULL DEFAULT '[]'::jsonb,
	approver TEXT,
	version TEXT,
	evidence_path TEXT,
	status TEXT NOT NULL,
	status_overridden BOOLEAN NOT NULL DEFAULT FALSE,
	coverage_percent INTEGER NOT NULL,
	matched_obligations JSONB NOT NULL DEFAULT '[]'::jsonb,
	match_method TEXT NOT NULL,
	match_confidence TEXT,
	last_updated TIMESTAMPTZ,
	framework_tags JSONB NOT NULL DEFAULT '[]'::jsonb,
	shared_evidence BOOLEAN NOT NULL DEFAULT FALSE,
	notes TEXT,
	PRIMARY KEY (run_id, owner, document_id)
);

CREATE TABLE IF NOT EXISTS conflicts (
	run_id TEXT NOT NULL REFERENCES reconciliation_runs(id) ON DELETE CASCADE,
	title TEXT NOT NULL,
	document_ids JSONB NOT NULL DEFAULT '[]'::jsonb,
	departments JSONB NOT NULL DEFAULT '[]'::jsonb,
	versions JSONB NOT NULL DEFAULT '[]'::jsonb,
	reason TEXT NOT NULL,
	PRIMARY KEY (run_id, title)
);

CREATE TABLE IF NOT EXISTS summaries (
	run_id TEXT NOT NULL REFERENCES reconciliation_runs(id) ON DELETE CASCADE,
	department TEXT NOT NULL,
	total_required INTEGER NOT NULL,
	with_evidence INTEGER NOT NULL,
	approved_count INTEGER NOT NULL,
	mapped_count INTEGER NOT NULL,
	fresh_count INTEGER NOT NULL,
	inventory_percent INTEGER NOT NULL,
	approval_percent INTEGER NOT NULL,
	mapping_percent INTEGER NOT NULL,
	freshness_percent INTEGER NOT NULL,
	readiness_score INTEGER NOT NULL,
	PRIMARY KEY (run_id, department)
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON reconciliation_runs(started_at DESC);
CREATE INDEX IF NOT EXISTS idx_match_results_owner ON match_results(owner);
CREATE INDEX IF NOT EXISTS idx_match_results_status ON match_results(status);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// SaveRun persists the run header, every result row and the derived conflict
// and summary rows in one transaction.
func (r *ResultRepository) SaveRun(ctx context.Context, rs *domain.ResultSet) error {
	call := func(callCtx context.Context) error {
		return r.saveRun(callCtx, rs)
	}
	if r.executor != nil {
		return r.executor.Execute(ctx, "postgres.save_run", call, classifyPostgresError)
	}
	return call(ctx)
}

func (r *ResultRepository) saveRun(ctx context.Context, rs *domain.ResultSet) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin run tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	deptsJSON, err := json.Marshal(rs.Run.Departments)
	if err != nil {
		return fmt.Errorf("marshal run departments: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO reconciliation_runs (id, started_at, finished_at, departments)
VALUES ($1,$2,$3,$4)
`, rs.Run.ID, rs.Run.StartedAt, rs.Run.FinishedAt, deptsJSON); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, res := range rs.Results {
		if err := insertResult(ctx, tx, rs.Run.ID, res); err != nil {
			return err
		}
	}
	for _, c := range rs.Conflicts {
		if err := insertConflict(ctx, tx, rs.Run.ID, c); err != nil {
			return err
		}
	}
	for _, s := range append(rs.Departments, rs.Global) {
		if err := insertSummary(ctx, tx, rs.Run.ID, s); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run tx: %w", err)
	}
	return nil
}

func insertResult(ctx context.Context, tx *sql.Tx, runID string, res domain.MatchResult) error {
	crossJSON, err := json.Marshal(emptyIfNil(res.CrossOwners))
	if err != nil {
		return fmt.Errorf("marshal cross owners: %w", err)
	}
	obligationsJSON, err := json.Marshal(emptyIfNil(res.MatchedObligations))
	if err != nil {
		return fmt.Errorf("marshal obligations: %w", err)
	}
	frameworksJSON, err := json.Marshal(emptyIfNil(res.FrameworkTags))
	if err != nil {
		return fmt.Errorf("marshal frameworks: %w", err)
	}

	var lastUpdated sql.NullTime
	if !res.LastUpdated.IsZero() {
		lastUpdated = sql.NullTime{Time: res.LastUpdated, Valid: true}
	}

	if _, err := tx.ExecContext(ctx, `
INSERT INTO match_results (
	run_id, document_id, title, doc_type, owner, cross_owners, approver, version,
	evidence_path, status, coverage_percent, matched_obligations, match_method,
	match_confidence, last_updated, framework_tags, shared_evidence, notes
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
`,
		runID, res.DocumentID, res.Title, string(res.Type), res.Owner, crossJSON, res.Approver, res.Version,
		res.EvidencePath, string(res.Status), res.CoveragePercent, obligationsJSON, string(res.MatchMethod),
		string(res.MatchConfidence), lastUpdated, frameworksJSON, res.SharedEvidence, res.Notes,
	); err != nil {
		return fmt.Errorf("insert result %s/%s: %w", res.Owner, res.DocumentID, err)
	}
	return nil
}

func insertConflict(ctx context.Context, tx *sql.Tx, runID string, c domain.Conflict) error {
	idsJSON, err := json.Marshal(emptyIfNil(c.DocumentIDs))
	if err != nil {
		return fmt.Errorf("marshal conflict ids: %w", err)
	}
	deptsJSON, err := json.Marshal(emptyIfNil(c.Departments))
	if err != nil {
		return fmt.Errorf("marshal conflict departments: %w", err)
	}
	versionsJSON, err := json.Marshal(emptyIfNil(c.Versions))
	if err != nil {
		return fmt.Errorf("marshal conflict versions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO conflicts (run_id, title, document_ids, departments, versions, reason)
VALUES ($1,$2,$3,$4,$5,$6)
`, runID, c.Title, idsJSON, deptsJSON, versionsJSON, string(c.Reason)); err != nil {
		return fmt.Errorf("insert conflict %q: %w", c.Title, err)
	}
	return nil
}

func insertSummary(ctx context.Context, tx *sql.Tx, runID string, s domain.Summary) error {
	if _, err := tx.ExecContext(ctx, `
INSERT INTO summaries (
	run_id, department, total_required, with_evidence, approved_count, mapped_count,
	fresh_count, inventory_percent, approval_percent, mapping_percent, freshness_percent, readiness_score
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
`,
		runID, s.Department, s.TotalRequired, s.WithEvidence, s.ApprovedCount, s.MappedCount,
		s.FreshCount, s.InventoryPercent, s.ApprovalPercent, s.MappingPercent, s.FreshnessPercent, s.ReadinessScore,
	); err != nil {
		return fmt.Errorf("insert summary %s: %w", s.Department, err)
	}
	return nil
}

// LoadStatuses returns the statuses a human explicitly set on the latest
// persisted run for one department. Derived statuses are not carried over so
// each run re-derives them from current evidence.
func (r *ResultRepository) LoadStatuses(ctx context.Context, department string) (map[string]domain.DocumentStatus, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT document_id, status
FROM match_results
WHERE owner = $1
  AND status_overridden
  AND run_id = (SELECT id FROM reconciliation_runs ORDER BY started_at DESC LIMIT 1)
`, department)
	if err != nil {
		return nil, fmt.Errorf("query prior statuses: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.DocumentStatus)
	for rows.Next() {
		var id, status string
		if err := rows.Scan(&id, &status); err != nil {
			return nil, fmt.Errorf("scan prior status: %w", err)
		}
		out[id] = domain.DocumentStatus(status)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prior statuses: %w", err)
	}
	return out, nil
}

// LatestRun returns the most recent persisted run header.
func (r *ResultRepository) LatestRun(ctx context.Context) (*domain.ReconciliationRun, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, started_at, finished_at, departments
FROM reconciliation_runs
ORDER BY started_at DESC
LIMIT 1
`)

	var run domain.ReconciliationRun
	var deptsRaw []byte
	if err := row.Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &deptsRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrRunNotFound, "latest run", err)
		}
		return nil, fmt.Errorf("scan latest run: %w", err)
	}
	if err := json.Unmarshal(deptsRaw, &run.Departments); err != nil {
		return nil, fmt.Errorf("unmarshal run departments: %w", err)
	}
	return &run, nil
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func classifyPostgresError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "connection") || strings.Contains(msg, "broken pipe") {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
}
