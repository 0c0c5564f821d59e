// internal/repository/repository.go
package repository

import (
	"context"
	"errors"

	"github.com/storeops/rebalance/internal/domain"
)

// ErrNotFound is returned when a requested row does not exist for the tenant.
var ErrNotFound = errors.New("not found")

// ConstraintRepository owns the tenant-scoped constraint registry rows.
type ConstraintRepository interface {
	List(ctx context.Context, tenantID string) ([]domain.ConstraintItem, error)
	GetByID(ctx context.Context, tenantID string, id int64) (*domain.ConstraintItem, error)
	Update(ctx context.Context, tenantID string, id int64, update domain.ConstraintUpdate) (*domain.ConstraintItem, error)
	// Upsert seeds a registry row keyed by (tenant, constraint_key).
	Upsert(ctx context.Context, item *domain.ConstraintItem) error
}

// SuggestionRepository owns rebalance suggestions and their status transitions.
type SuggestionRepository interface {
	List(ctx context.Context, tenantID string, filter domain.SuggestionFilter) ([]domain.RebalanceSuggestion, error)
	InsertBatch(ctx context.Context, suggestions []*domain.RebalanceSuggestion) error
	// Transition moves one pending suggestion to a terminal status. qty, when
	// non-nil, overrides the suggested quantity (approvals only). A row that is
	// no longer pending reports OutcomeConflict; an unknown id OutcomeMissing.
	Transition(ctx context.Context, tenantID, id string, status domain.SuggestionStatus, qty *int) (domain.BatchOutcome, error)
}

// RunRepository tracks engine run batches.
type RunRepository interface {
	Create(ctx context.Context, run *domain.RebalanceRun) error
	Finish(ctx context.Context, run *domain.RebalanceRun) error
	List(ctx context.Context, tenantID string, limit int) ([]domain.RebalanceRun, error)
	GetByID(ctx context.Context, tenantID, id string) (*domain.RebalanceRun, error)
}

// StoreMetricsRepository reads the externally computed stock snapshot and
// maintains store tiers.
type StoreMetricsRepository interface {
	ListStores(ctx context.Context, tenantID string) ([]domain.Store, error)
	ListMetrics(ctx context.Context, tenantID string, filter domain.MetricsFilter) ([]domain.StoreMetric, int, error)
	StoreSummaries(ctx context.Context, tenantID string) ([]domain.StoreSummary, error)
	// UpdateTiers persists the given store->tier assignment and returns how
	// many stores actually changed tier.
	UpdateTiers(ctx context.Context, tenantID string, tiers map[int64]domain.StoreTier) (int, error)
}
