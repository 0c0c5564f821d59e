// internal/engine/engine.go
package engine

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/storeops/rebalance/internal/constraint"
	"github.com/storeops/rebalance/internal/domain"
)

// Engine computes rebalance proposals from the store metric snapshot. It is
// pure over its inputs: persistence and run bookkeeping live in the service.
type Engine struct {
	params    constraint.Params
	warehouse string
	workers   int
}

func New(params constraint.Params, warehouseLocation string, workers int) *Engine {
	if workers < 1 {
		workers = 1
	}
	return &Engine{params: params, warehouse: warehouseLocation, workers: workers}
}

// Run executes the passes selected by mode over the snapshot, fanning out per
// FC across a worker pool. Output order is deterministic.
func (e *Engine) Run(ctx context.Context, mode domain.EngineMode, metrics []domain.StoreMetric) ([]Proposal, error) {
	groups := groupByFC(metrics, e.warehouse)

	type result struct {
		idx       int
		proposals []Proposal
	}

	jobs := make(chan int, len(groups))
	results := make(chan result, len(groups))
	var wg sync.WaitGroup

	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results <- result{idx: idx, proposals: e.runGroup(mode, groups[idx])}
			}
		}()
	}

	for i := range groups {
		if err := ctx.Err(); err != nil {
			close(jobs)
			wg.Wait()
			close(results)
			return nil, err
		}
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	close(results)

	collected := make([][]Proposal, len(groups))
	for r := range results {
		collected[r.idx] = r.proposals
	}

	var out []Proposal
	for _, proposals := range collected {
		out = append(out, proposals...)
	}

	log.Debug().
		Str("mode", string(mode)).
		Int("fc_groups", len(groups)).
		Int("proposals", len(out)).
		Msg("engine pass finished")
	return out, nil
}

func (e *Engine) runGroup(mode domain.EngineMode, g fcGroup) []Proposal {
	switch mode {
	case domain.ModeV1:
		proposals, _ := e.baselinePass(g, e.warehouseBudget(g))
		return proposals
	case domain.ModeV2:
		return e.weightedPass(g, e.warehouseBudget(g))
	case domain.ModeBoth:
		proposals, remaining := e.baselinePass(g, e.warehouseBudget(g))
		return append(proposals, e.weightedPass(g, remaining)...)
	case domain.ModeRebalance:
		return e.rebalancePass(g)
	default:
		return nil
	}
}

// warehouseBudget is the per-FC outflow cap: max_transfer_percent of the
// warehouse's available stock.
func (e *Engine) warehouseBudget(g fcGroup) int {
	if g.warehouse == nil {
		return 0
	}
	available := g.warehouse.Available
	if available <= 0 {
		return 0
	}
	budget := int(math.Floor(float64(available) * e.params.MaxTransferPercent / 100))
	if budget > available {
		budget = available
	}
	return budget
}

// baselinePass (V1) tops up stores below min_cover_weeks toward
// target_cover_weeks, neediest first, within the warehouse budget. It returns
// the remaining budget for a chained V2 pass.
func (e *Engine) baselinePass(g fcGroup, budget int) ([]Proposal, int) {
	if g.warehouse == nil || budget <= 0 {
		return nil, budget
	}

	eligible := make([]domain.StoreMetric, 0, len(g.stores))
	for _, st := range g.stores {
		if st.WeeklyVelocity > 0 && coverWeeks(st) < e.params.MinCoverWeeks {
			eligible = append(eligible, st)
		}
	}
	sort.Slice(eligible, func(i, j int) bool {
		if coverWeeks(eligible[i]) != coverWeeks(eligible[j]) {
			return coverWeeks(eligible[i]) < coverWeeks(eligible[j])
		}
		return eligible[i].StoreCode < eligible[j].StoreCode
	})

	var proposals []Proposal
	for _, st := range eligible {
		if budget <= 0 {
			break
		}

		need := unitsForWeeks(e.params.TargetCoverWeeks-coverWeeks(st), st.WeeklyVelocity)
		qty := need
		if qty > budget {
			qty = budget
		}
		if qty < e.params.MinTransferQty {
			continue
		}

		budget -= qty
		proposals = append(proposals, Proposal{
			FCID:           g.fc,
			FromLocation:   e.warehouse,
			ToLocation:     st.StoreCode,
			Qty:            qty,
			TransferType:   domain.TransferPush,
			Reason:         fmt.Sprintf("V1: WOC thấp %.1f tuần, bổ sung về %.0f tuần", coverWeeks(st), e.params.TargetCoverWeeks),
			FromWeeksCover: coverWeeks(*g.warehouse),
		})
	}
	return proposals, budget
}

// weightedPass (V2) splits the warehouse budget across under-target stores in
// proportion to a weighted priority score.
func (e *Engine) weightedPass(g fcGroup, budget int) []Proposal {
	if g.warehouse == nil || budget <= 0 {
		return nil
	}

	type candidate struct {
		store domain.StoreMetric
		gap   int
		score float64
	}

	var maxVelocity float64
	for _, st := range g.stores {
		if st.WeeklyVelocity > maxVelocity {
			maxVelocity = st.WeeklyVelocity
		}
	}

	var candidates []candidate
	var totalScore float64
	for _, st := range g.stores {
		if st.WeeklyVelocity <= 0 {
			continue
		}
		gap := unitsForWeeks(e.params.TargetCoverWeeks-coverWeeks(st), st.WeeklyVelocity)
		if gap <= 0 {
			continue
		}

		velocityNorm := 0.0
		if maxVelocity > 0 {
			velocityNorm = st.WeeklyVelocity / maxVelocity
		}
		gapNorm := (e.params.TargetCoverWeeks - coverWeeks(st)) / e.params.TargetCoverWeeks
		if gapNorm < 0 {
			gapNorm = 0
		}

		weightSum := e.params.WeightSalesVelocity + e.params.WeightCoverGap + e.params.WeightStoreTier
		if weightSum <= 0 {
			continue
		}
		score := (e.params.WeightSalesVelocity*velocityNorm +
			e.params.WeightCoverGap*gapNorm +
			e.params.WeightStoreTier*tierScore(st.Tier)) / weightSum
		if score <= 0 {
			continue
		}

		candidates = append(candidates, candidate{store: st, gap: gap, score: score})
		totalScore += score
	}
	if len(candidates) == 0 || totalScore <= 0 {
		return nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].store.StoreCode < candidates[j].store.StoreCode
	})

	var proposals []Proposal
	for _, c := range candidates {
		share := int(math.Floor(float64(budget) * c.score / totalScore))
		qty := share
		if e.params.RespectStoreCapacity && qty > c.gap {
			qty = c.gap
		}
		if qty < e.params.MinTransferQty {
			continue
		}

		proposals = append(proposals, Proposal{
			FCID:           g.fc,
			FromLocation:   e.warehouse,
			ToLocation:     c.store.StoreCode,
			Qty:            qty,
			TransferType:   domain.TransferPush,
			Reason:         fmt.Sprintf("V2: phân bổ theo điểm ưu tiên %.2f", c.score),
			FromWeeksCover: coverWeeks(*g.warehouse),
		})
	}
	return proposals
}
