// internal/repository/postgres/run_repository.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/storeops/rebalance/internal/domain"
	"github.com/storeops/rebalance/internal/repository"
)

type runRepository struct {
	db *DB
}

func NewRunRepository(db *DB) repository.RunRepository {
	return &runRepository{db: db}
}

func (r *runRepository) Create(ctx context.Context, run *domain.RebalanceRun) error {
	query := `
		INSERT INTO rebalance_runs (id, tenant_id, mode, status, suggestions_created, triggered_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`
	_, err := r.db.ExecContext(ctx, query, run.ID, run.TenantID, run.Mode, run.Status, run.SuggestionsCreated)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

func (r *runRepository) Finish(ctx context.Context, run *domain.RebalanceRun) error {
	query := `
		UPDATE rebalance_runs
		SET status = $3, suggestions_created = $4, error_message = $5, completed_at = NOW()
		WHERE tenant_id = $1 AND id = $2
	`
	_, err := r.db.ExecContext(ctx, query,
		run.TenantID, run.ID, run.Status, run.SuggestionsCreated, run.ErrorMessage)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}

func (r *runRepository) List(ctx context.Context, tenantID string, limit int) ([]domain.RebalanceRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query := `
		SELECT id, tenant_id, mode, status, suggestions_created,
		       COALESCE(error_message, '') AS error_message, triggered_at, completed_at
		FROM rebalance_runs
		WHERE tenant_id = $1
		ORDER BY triggered_at DESC
		LIMIT $2
	`

	var runs []domain.RebalanceRun
	if err := sqlx.SelectContext(ctx, r.db, &runs, query, tenantID, limit); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

func (r *runRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.RebalanceRun, error) {
	query := `
		SELECT id, tenant_id, mode, status, suggestions_created,
		       COALESCE(error_message, '') AS error_message, triggered_at, completed_at
		FROM rebalance_runs
		WHERE tenant_id = $1 AND id = $2
	`

	var run domain.RebalanceRun
	if err := sqlx.GetContext(ctx, r.db, &run, query, tenantID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}
