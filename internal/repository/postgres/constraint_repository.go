// internal/repository/postgres/constraint_repository.go
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

type constraintRepository struct {
	db *DB
}

func NewConstraintRepository(db *DB) repository.ConstraintRepository {
	return &constraintRepository{db: db}
}

func (r *constraintRepository) List(ctx context.Context, tenantID string) ([]domain.ConstraintItem, error) {
	query := `
		SELECT id, tenant_id, constraint_key, constraint_value, is_active, description, created_at, updated_at
		FROM allocation_constraints
		WHERE tenant_id = $1
		ORDER BY constraint_key
	`

	var items []domain.ConstraintItem
	if err := sqlx.SelectContext(ctx, r.db, &items, query, tenantID); err != nil {
		return nil, fmt.Errorf("failed to list constraints: %w", err)
	}
	return items, nil
}

func (r *constraintRepository) GetByID(ctx context.Context, tenantID string, id int64) (*domain.ConstraintItem, error) {
	query := `
		SELECT id, tenant_id, constraint_key, constraint_value, is_active, description, created_at, updated_at
		FROM allocation_constraints
		WHERE tenant_id = $1 AND id = $2
	`

	var item domain.ConstraintItem
	if err := sqlx.GetContext(ctx, r.db, &item, query, tenantID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get constraint: %w", err)
	}
	return &item, nil
}

func (r *constraintRepository) Update(ctx context.Context, tenantID string, id int64, update domain.ConstraintUpdate) (*domain.ConstraintItem, error) {
	// COALESCE keeps the untouched column: a value edit never clobbers
	// is_active and a toggle never clobbers the value.
	query := `
		UPDATE allocation_constraints
		SET constraint_value = COALESCE($3, constraint_value),
		    is_active = COALESCE($4, is_active),
		    updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2
		RETURNING id, tenant_id, constraint_key, constraint_value, is_active, description, created_at, updated_at
	`

	var item domain.ConstraintItem
	err := sqlx.GetContext(ctx, r.db, &item, query, tenantID, id, update.Value, update.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update constraint: %w", err)
	}
	return &item, nil
}

func (r *constraintRepository) Upsert(ctx context.Context, item *domain.ConstraintItem) error {
	query := `
		INSERT INTO allocation_constraints (tenant_id, constraint_key, constraint_value, is_active, description, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (tenant_id, constraint_key)
		DO UPDATE SET description = EXCLUDED.description, updated_at = NOW()
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		item.TenantID, item.Key, item.Value, item.IsActive, item.Description,
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert constraint %s: %w", item.Key, err)
	}
	return nil
}
