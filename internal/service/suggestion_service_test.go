package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/storeops/rebalance/internal/domain"
	"github.com/storeops/rebalance/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSuggestionService(t *testing.T) (*SuggestionService, *memory.SuggestionRepository) {
	t.Helper()
	repo := memory.NewSuggestionRepository()
	constraints, _ := seededConstraintService(t, "acme")
	return NewSuggestionService(repo, constraints), repo
}

func seedSuggestions(t *testing.T, repo *memory.SuggestionRepository, runID string, n int, transferType domain.TransferType) []string {
	t.Helper()
	ids := make([]string, 0, n)
	batch := make([]*domain.RebalanceSuggestion, 0, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("%s-%s-%d", runID, transferType, i)
		ids = append(ids, id)
		batch = append(batch, &domain.RebalanceSuggestion{
			ID:           id,
			RunID:        runID,
			TenantID:     "acme",
			FCID:         fmt.Sprintf("FC-%d", i%3),
			FromLocation: "WH-CENTRAL",
			ToLocation:   fmt.Sprintf("ST-%02d", i),
			Qty:          10,
			TransferType: transferType,
			Status:       domain.StatusPending,
			Reason:       "V1: WOC thấp 1.0 tuần, bổ sung về 4 tuần",
		})
	}
	require.NoError(t, repo.InsertBatch(context.Background(), batch))
	return ids
}

func TestApproveAppliesEditedQty(t *testing.T) {
	svc, repo := newSuggestionService(t)
	ctx := context.Background()
	ids := seedSuggestions(t, repo, "run-1", 2, domain.TransferPush)

	results, err := svc.Approve(ctx, "acme", ids, map[string]int{ids[0]: 4})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, domain.OutcomeApplied, r.Outcome)
	}

	edited, ok := repo.Get(ids[0])
	require.True(t, ok)
	assert.Equal(t, domain.StatusApproved, edited.Status)
	assert.Equal(t, 4, edited.Qty, "edited quantity must replace the suggested one")
	require.NotNil(t, edited.DecidedAt)

	untouched, ok := repo.Get(ids[1])
	require.True(t, ok)
	assert.Equal(t, 10, untouched.Qty)
}

func TestApproveTerminalSuggestionConflicts(t *testing.T) {
	svc, repo := newSuggestionService(t)
	ctx := context.Background()
	ids := seedSuggestions(t, repo, "run-1", 1, domain.TransferPush)

	_, err := svc.Reject(ctx, "acme", ids)
	require.NoError(t, err)

	results, err := svc.Approve(ctx, "acme", ids, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, domain.OutcomeConflict, results[0].Outcome)

	s, ok := repo.Get(ids[0])
	require.True(t, ok)
	assert.Equal(t, domain.StatusRejected, s.Status, "terminal state must not change")
}

func TestApproveUnknownID(t *testing.T) {
	svc, _ := newSuggestionService(t)

	results, err := svc.Approve(context.Background(), "acme", []string{"no-such-id"}, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, domain.OutcomeMissing, results[0].Outcome)
}

func TestApproveOtherTenantSuggestionIsMissing(t *testing.T) {
	svc, repo := newSuggestionService(t)
	ctx := context.Background()
	ids := seedSuggestions(t, repo, "run-1", 1, domain.TransferPush)

	results, err := svc.Approve(ctx, "other-tenant", ids, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, domain.OutcomeMissing, results[0].Outcome)
}

func TestBulkApproveWholeRun(t *testing.T) {
	svc, repo := newSuggestionService(t)
	ctx := context.Background()

	var ids []string
	ids = append(ids, seedSuggestions(t, repo, "run-1", 5, domain.TransferPush)...)
	ids = append(ids, seedSuggestions(t, repo, "run-1", 10, domain.TransferLateral)...)
	ids = append(ids, seedSuggestions(t, repo, "run-1", 7, domain.TransferRecall)...)
	require.Len(t, ids, 22)

	results, err := svc.Approve(ctx, "acme", ids, nil)
	require.NoError(t, err)
	require.Len(t, results, 22)
	for _, r := range results {
		assert.Equal(t, domain.OutcomeApplied, r.Outcome)
	}

	pending, err := svc.List(ctx, "acme", domain.SuggestionFilter{
		RunID:  "run-1",
		Status: domain.StatusPending,
	})
	require.NoError(t, err)
	assert.Empty(t, pending)

	approved, err := svc.List(ctx, "acme", domain.SuggestionFilter{
		RunID:  "run-1",
		Status: domain.StatusApproved,
	})
	require.NoError(t, err)
	assert.Len(t, approved, 22)
}

func TestRecallGroupsOnlyPendingRecalls(t *testing.T) {
	svc, repo := newSuggestionService(t)
	ctx := context.Background()

	recallIDs := seedSuggestions(t, repo, "run-1", 4, domain.TransferRecall)
	seedSuggestions(t, repo, "run-1", 3, domain.TransferPush)
	seedSuggestions(t, repo, "run-2", 2, domain.TransferRecall)

	_, err := svc.Reject(ctx, "acme", recallIDs[:1])
	require.NoError(t, err)

	groups, err := svc.RecallGroups(ctx, "acme", "run-1")
	require.NoError(t, err)

	total := 0
	for _, g := range groups {
		total += len(g.Suggestions)
		for _, s := range g.Suggestions {
			assert.Equal(t, domain.TransferRecall, s.TransferType)
			assert.Equal(t, domain.StatusPending, s.Status)
			assert.Equal(t, "run-1", s.RunID)
		}
	}
	assert.Equal(t, 3, total)
}

func TestReasonSummaryForRun(t *testing.T) {
	svc, repo := newSuggestionService(t)
	ctx := context.Background()

	batch := []*domain.RebalanceSuggestion{
		{ID: "a", RunID: "run-1", TenantID: "acme", Status: domain.StatusPending, Qty: 1, Reason: "DOC cao 20 tuần"},
		{ID: "b", RunID: "run-1", TenantID: "acme", Status: domain.StatusPending, Qty: 1, Reason: "velocity thấp"},
		{ID: "c", RunID: "run-1", TenantID: "acme", Status: domain.StatusPending, Qty: 1, Reason: "DOC cao 15 tuần"},
	}
	require.NoError(t, repo.InsertBatch(ctx, batch))

	line, counts, err := svc.ReasonSummary(ctx, "acme", "run-1")
	require.NoError(t, err)
	assert.Equal(t, "2 DOC cao · 1 Velocity thấp", line)
	require.Len(t, counts, 2)
	assert.Equal(t, 2, counts[0].Count)
}
