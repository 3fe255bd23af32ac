package ports

import (
	"context"

	"github.com/govreg/doccompass/internal/core/domain"
)

// Reconciler is the inbound contract for running the reconciliation pipeline.
// An empty department list means every configured department.
type Reconciler interface {
	Reconcile(ctx context.Context, departments []string) (*domain.ResultSet, error)
}
