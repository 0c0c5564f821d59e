// internal/repository/postgres/suggestion_repository.go
package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/storeops/rebalance/internal/domain"
	"github.com/storeops/rebalance/internal/repository"
)

type suggestionRepository struct {
	db *DB
}

func NewSuggestionRepository(db *DB) repository.SuggestionRepository {
	return &suggestionRepository{db: db}
}

func (r *suggestionRepository) List(ctx context.Context, tenantID string, filter domain.SuggestionFilter) ([]domain.RebalanceSuggestion, error) {
	conditions := []string{"s.tenant_id = $1"}
	args := []interface{}{tenantID}

	addCondition := func(clause string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filter.RunID != "" {
		addCondition("s.run_id = $%d", filter.RunID)
	}
	if filter.Status != "" {
		addCondition("s.status = $%d", filter.Status)
	}
	if filter.TransferType != "" {
		addCondition("s.transfer_type = $%d", filter.TransferType)
	}
	if filter.FromLocation != "" {
		addCondition("s.from_location = $%d", filter.FromLocation)
	}
	if filter.ToLocation != "" {
		addCondition("s.to_location = $%d", filter.ToLocation)
	}

	query := fmt.Sprintf(`
		SELECT
			s.id, s.run_id, s.tenant_id, s.fc_id, s.from_location, s.to_location,
			s.qty, s.transfer_type, s.status, s.reason, s.from_weeks_cover,
			p.price AS unit_price,
			s.created_at, s.decided_at
		FROM rebalance_suggestions s
		LEFT JOIN products p ON p.tenant_id = s.tenant_id AND p.fc_id = s.fc_id
		WHERE %s
		ORDER BY s.from_location, s.fc_id
	`, strings.Join(conditions, " AND "))

	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.PageSize, (page-1)*filter.PageSize)
	}

	var suggestions []domain.RebalanceSuggestion
	if err := sqlx.SelectContext(ctx, r.db, &suggestions, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list suggestions: %w", err)
	}
	return suggestions, nil
}

func (r *suggestionRepository) InsertBatch(ctx context.Context, suggestions []*domain.RebalanceSuggestion) error {
	if len(suggestions) == 0 {
		return nil
	}

	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO rebalance_suggestions (
				id, run_id, tenant_id, fc_id, from_location, to_location,
				qty, transfer_type, status, reason, from_weeks_cover, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`

		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		now := time.Now()
		for _, s := range suggestions {
			_, err := stmt.ExecContext(ctx,
				s.ID, s.RunID, s.TenantID, s.FCID, s.FromLocation, s.ToLocation,
				s.Qty, s.TransferType, s.Status, s.Reason, s.FromWeeksCover, now,
			)
			if err != nil {
				return fmt.Errorf("failed to insert suggestion: %w", err)
			}
		}
		return nil
	})
}

func (r *suggestionRepository) Transition(ctx context.Context, tenantID, id string, status domain.SuggestionStatus, qty *int) (domain.BatchOutcome, error) {
	// The pending guard makes terminal states sticky: a second transition on
	// the same row matches nothing and reports a conflict.
	query := `
		UPDATE rebalance_suggestions
		SET status = $3,
		    qty = COALESCE($4, qty),
		    decided_at = NOW()
		WHERE tenant_id = $1 AND id = $2 AND status = 'pending'
	`

	res, err := r.db.ExecContext(ctx, query, tenantID, id, status, qty)
	if err != nil {
		return "", fmt.Errorf("failed to transition suggestion %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected > 0 {
		return domain.OutcomeApplied, nil
	}

	var exists bool
	checkQuery := `SELECT EXISTS (SELECT 1 FROM rebalance_suggestions WHERE tenant_id = $1 AND id = $2)`
	if err := r.db.GetContext(ctx, &exists, checkQuery, tenantID, id); err != nil {
		return "", fmt.Errorf("failed to check suggestion %s: %w", id, err)
	}
	if exists {
		return domain.OutcomeConflict, nil
	}
	return domain.OutcomeMissing, nil
}
