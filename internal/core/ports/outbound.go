package ports

import (
	"context"

	"github.com/govreg/doccompass/internal/core/domain"
)

// TaxonomySource loads the required-document catalog for one department.
// A missing catalog is reported as domain.ErrCatalogNotFound; callers treat
// it as an empty taxonomy and keep going.
type TaxonomySource interface {
	Load(ctx context.Context, dept domain.DepartmentConfig) ([]domain.RequiredDocument, error)
}

// EvidenceSource enumerates candidate evidence files under the scan roots.
// The returned slice is sorted by path and deduplicated by absolute path.
type EvidenceSource interface {
	Scan(ctx context.Context, roots []string) ([]domain.EvidenceFile, error)
}

// ResultRepository persists completed runs and exposes the explicit statuses
// recorded against the latest persisted run.
type ResultRepository interface {
	SaveRun(ctx context.Context, rs *domain.ResultSet) error
	LoadStatuses(ctx context.Context, department string) (map[string]domain.DocumentStatus, error)
	LatestRun(ctx context.Context) (*domain.ReconciliationRun, error)
}

// ReportWriter renders a result set to a human-facing report file.
type ReportWriter interface {
	Write(ctx context.Context, rs *domain.ResultSet, path string) error
}

// MessageQueue carries reconcile requests and run-completed notifications.
type MessageQueue interface {
	PublishRunCompleted(ctx context.Context, runID string) error
	PublishReconcileRequest(ctx context.Context, scope string) error
	SubscribeReconcileRequests(ctx context.Context, handler func(context.Context, string) error) error
}
