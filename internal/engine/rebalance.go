// internal/engine/rebalance.go
package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/storeops/rebalance/internal/domain"
)

// sizeRunFloor is the number of units a donor keeps per FC when keep_size_run
// is on, so a displayed size run is never broken by a transfer.
const sizeRunFloor = 2

// rebalancePass moves overstock out of donor stores: laterally into
// under-covered stores first (when enabled), recalling the remainder to the
// warehouse (when enabled). Dead stock is recalled outright.
func (e *Engine) rebalancePass(g fcGroup) []Proposal {
	type donor struct {
		store   domain.StoreMetric
		surplus int
		dead    bool
	}

	var donors []donor
	var receivers []domain.StoreMetric

	for _, st := range g.stores {
		cover := coverWeeks(st)

		if st.WeeklyVelocity <= 0 && st.OnHand > 0 && cover >= e.params.DeadStockWeeks {
			donors = append(donors, donor{store: st, surplus: st.OnHand, dead: true})
			continue
		}

		if st.WeeklyVelocity > 0 && cover > e.params.RecallThresholdWeeks {
			keep := unitsForWeeks(e.params.TargetCoverWeeks, st.WeeklyVelocity)
			if e.params.KeepSizeRun && keep < sizeRunFloor {
				keep = sizeRunFloor
			}
			surplus := st.OnHand - keep
			if surplus > 0 {
				donors = append(donors, donor{store: st, surplus: surplus})
			}
			continue
		}

		if st.WeeklyVelocity > 0 && cover < e.params.MinCoverWeeks {
			receivers = append(receivers, st)
		}
	}
	if len(donors) == 0 {
		return nil
	}

	// Most overstocked donors and neediest receivers first.
	sort.Slice(donors, func(i, j int) bool {
		ci, cj := coverWeeks(donors[i].store), coverWeeks(donors[j].store)
		if ci != cj {
			return ci > cj
		}
		return donors[i].store.StoreCode < donors[j].store.StoreCode
	})
	sort.Slice(receivers, func(i, j int) bool {
		ci, cj := coverWeeks(receivers[i]), coverWeeks(receivers[j])
		if ci != cj {
			return ci < cj
		}
		return receivers[i].StoreCode < receivers[j].StoreCode
	})

	needs := make([]int, len(receivers))
	for i, st := range receivers {
		needs[i] = unitsForWeeks(e.params.TargetCoverWeeks-coverWeeks(st), st.WeeklyVelocity)
	}

	var proposals []Proposal
	for _, d := range donors {
		remaining := d.surplus

		if e.params.EnableLateral && !d.dead {
			for i := range receivers {
				if remaining < e.params.MinTransferQty {
					break
				}
				if needs[i] < e.params.MinTransferQty {
					continue
				}

				qty := needs[i]
				if qty > remaining {
					qty = remaining
				}
				if qty < e.params.MinTransferQty {
					continue
				}

				needs[i] -= qty
				remaining -= qty
				proposals = append(proposals, Proposal{
					FCID:           g.fc,
					FromLocation:   d.store.StoreCode,
					ToLocation:     receivers[i].StoreCode,
					Qty:            qty,
					TransferType:   domain.TransferLateral,
					Reason:         fmt.Sprintf("DOC cao %.0f tuần, chuyển ngang cho cửa hàng thiếu hàng", math.Min(coverWeeks(d.store), domain.InfiniteCoverWeeks)),
					FromWeeksCover: coverWeeks(d.store),
				})
			}
		}

		if !e.params.EnableRecalls || remaining < e.params.MinTransferQty {
			continue
		}

		reason := fmt.Sprintf("DOC cao %.0f tuần, thu hồi về kho tổng", coverWeeks(d.store))
		if d.dead {
			reason = fmt.Sprintf("Dead stock, không bán trong %.0f tuần", e.params.DeadStockWeeks)
		}
		proposals = append(proposals, Proposal{
			FCID:           g.fc,
			FromLocation:   d.store.StoreCode,
			ToLocation:     e.warehouse,
			Qty:            remaining,
			TransferType:   domain.TransferRecall,
			Reason:         reason,
			FromWeeksCover: coverWeeks(d.store),
		})
	}
	return proposals
}
