// internal/repository/postgres/store_metrics_repository.go
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/storeops/rebalance/internal/domain"
	"github.com/storeops/rebalance/internal/repository"
)

type storeMetricsRepository struct {
	db *DB
}

func NewStoreMetricsRepository(db *DB) repository.StoreMetricsRepository {
	return &storeMetricsRepository{db: db}
}

func (r *storeMetricsRepository) ListStores(ctx context.Context, tenantID string) ([]domain.Store, error) {
	query := `
		SELECT id, tenant_id, code, name, tier, is_warehouse, created_at, updated_at
		FROM stores
		WHERE tenant_id = $1
		ORDER BY name
	`

	var stores []domain.Store
	if err := sqlx.SelectContext(ctx, r.db, &stores, query, tenantID); err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}
	return stores, nil
}

func (r *storeMetricsRepository) ListMetrics(ctx context.Context, tenantID string, filter domain.MetricsFilter) ([]domain.StoreMetric, int, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 50
	}
	if pageSize > 500 {
		pageSize = 500
	}

	conditions := []string{"st.tenant_id = $1"}
	args := []interface{}{tenantID}

	if len(filter.StoreIDs) > 0 {
		args = append(args, pq.Array(filter.StoreIDs))
		conditions = append(conditions, fmt.Sprintf("m.store_id = ANY($%d)", len(args)))
	}
	if len(filter.FCIDs) > 0 {
		args = append(args, pq.Array(filter.FCIDs))
		conditions = append(conditions, fmt.Sprintf("m.fc_id = ANY($%d)", len(args)))
	}
	if filter.Tier != "" {
		args = append(args, filter.Tier)
		conditions = append(conditions, fmt.Sprintf("st.tier = $%d", len(args)))
	}

	where := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM store_metrics m
		JOIN stores st ON st.id = m.store_id
		WHERE %s
	`, where)

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count metrics: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT
			m.store_id, st.code AS store_code, st.name AS store_name, st.tier,
			m.fc_id, m.on_hand, m.available, m.weekly_velocity, m.weeks_cover, m.updated_at
		FROM store_metrics m
		JOIN stores st ON st.id = m.store_id
		WHERE %s
		ORDER BY st.name, m.fc_id
		LIMIT %d OFFSET %d
	`, where, pageSize, (page-1)*pageSize)

	var metrics []domain.StoreMetric
	if err := sqlx.SelectContext(ctx, r.db, &metrics, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list metrics: %w", err)
	}
	return metrics, total, nil
}

func (r *storeMetricsRepository) StoreSummaries(ctx context.Context, tenantID string) ([]domain.StoreSummary, error) {
	query := `
		SELECT
			m.store_id,
			st.name AS store_name,
			st.tier,
			SUM(m.on_hand)::int AS total_on_hand,
			SUM(m.available)::int AS total_available,
			SUM(m.weekly_velocity)::float AS weekly_velocity,
			PERCENTILE_CONT(0.5) WITHIN GROUP (ORDER BY m.weeks_cover) AS median_cover,
			COUNT(DISTINCT m.fc_id)::int AS distinct_fcs
		FROM store_metrics m
		JOIN stores st ON st.id = m.store_id
		WHERE st.tenant_id = $1 AND NOT st.is_warehouse
		GROUP BY m.store_id, st.name, st.tier
		ORDER BY st.name
	`

	var summaries []domain.StoreSummary
	if err := sqlx.SelectContext(ctx, r.db, &summaries, query, tenantID); err != nil {
		return nil, fmt.Errorf("failed to load store summaries: %w", err)
	}
	return summaries, nil
}

func (r *storeMetricsRepository) UpdateTiers(ctx context.Context, tenantID string, tiers map[int64]domain.StoreTier) (int, error) {
	changes := 0
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			UPDATE stores
			SET tier = $3, updated_at = NOW()
			WHERE tenant_id = $1 AND id = $2 AND tier <> $3
		`

		for storeID, tier := range tiers {
			res, err := tx.ExecContext(ctx, query, tenantID, storeID, tier)
			if err != nil {
				return fmt.Errorf("failed to update tier for store %d: %w", storeID, err)
			}
			affected, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to read rows affected: %w", err)
			}
			changes += int(affected)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return changes, nil
}
