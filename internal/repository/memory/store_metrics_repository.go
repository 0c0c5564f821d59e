// internal/repository/memory/store_metrics_repository.go
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/storeops/rebalance/internal/domain"
	"github.com/storeops/rebalance/internal/repository"
)

// StoreMetricsRepository is an in-memory StoreMetricsRepository.
type StoreMetricsRepository struct {
	mu      sync.RWMutex
	stores  map[int64]domain.Store
	metrics []domain.StoreMetric
}

func NewStoreMetricsRepository() *StoreMetricsRepository {
	return &StoreMetricsRepository{stores: make(map[int64]domain.Store)}
}

var _ repository.StoreMetricsRepository = (*StoreMetricsRepository)(nil)

// AddStore registers a store for subsequent metric loads.
func (r *StoreMetricsRepository) AddStore(store domain.Store) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stores[store.ID] = store
}

// AddMetric loads one store/FC snapshot row.
func (r *StoreMetricsRepository) AddMetric(metric domain.StoreMetric) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ok := r.stores[metric.StoreID]; ok {
		metric.StoreCode = st.Code
		metric.StoreName = st.Name
		metric.Tier = st.Tier
	}
	if metric.UpdatedAt.IsZero() {
		metric.UpdatedAt = time.Now()
	}
	r.metrics = append(r.metrics, metric)
}

func (r *StoreMetricsRepository) ListStores(ctx context.Context, tenantID string) ([]domain.Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Store
	for _, st := range r.stores {
		if st.TenantID == tenantID {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *StoreMetricsRepository) ListMetrics(ctx context.Context, tenantID string, filter domain.MetricsFilter) ([]domain.StoreMetric, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	storeSet := make(map[int64]struct{}, len(filter.StoreIDs))
	for _, id := range filter.StoreIDs {
		storeSet[id] = struct{}{}
	}
	fcSet := make(map[string]struct{}, len(filter.FCIDs))
	for _, fc := range filter.FCIDs {
		fcSet[fc] = struct{}{}
	}

	var out []domain.StoreMetric
	for _, m := range r.metrics {
		st, ok := r.stores[m.StoreID]
		if !ok || st.TenantID != tenantID {
			continue
		}
		if len(storeSet) > 0 {
			if _, ok := storeSet[m.StoreID]; !ok {
				continue
			}
		}
		if len(fcSet) > 0 {
			if _, ok := fcSet[m.FCID]; !ok {
				continue
			}
		}
		if filter.Tier != "" && st.Tier != filter.Tier {
			continue
		}
		out = append(out, m)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].StoreName != out[j].StoreName {
			return out[i].StoreName < out[j].StoreName
		}
		return out[i].FCID < out[j].FCID
	})

	total := len(out)
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		start := (page - 1) * filter.PageSize
		if start > total {
			start = total
		}
		end := start + filter.PageSize
		if end > total {
			end = total
		}
		out = out[start:end]
	}
	return out, total, nil
}

func (r *StoreMetricsRepository) StoreSummaries(ctx context.Context, tenantID string) ([]domain.StoreSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	type agg struct {
		summary domain.StoreSummary
		covers  []float64
		fcs     map[string]struct{}
	}
	byStore := make(map[int64]*agg)

	for _, m := range r.metrics {
		st, ok := r.stores[m.StoreID]
		if !ok || st.TenantID != tenantID || st.IsWarehouse {
			continue
		}
		a, ok := byStore[m.StoreID]
		if !ok {
			a = &agg{
				summary: domain.StoreSummary{StoreID: m.StoreID, StoreName: st.Name, Tier: st.Tier},
				fcs:     make(map[string]struct{}),
			}
			byStore[m.StoreID] = a
		}
		a.summary.TotalOnHand += m.OnHand
		a.summary.TotalAvailable += m.Available
		a.summary.WeeklyVelocity += m.WeeklyVelocity
		a.covers = append(a.covers, m.WeeksCover)
		a.fcs[m.FCID] = struct{}{}
	}

	var out []domain.StoreSummary
	for _, a := range byStore {
		sort.Float64s(a.covers)
		if n := len(a.covers); n > 0 {
			if n%2 == 1 {
				a.summary.MedianCover = a.covers[n/2]
			} else {
				a.summary.MedianCover = (a.covers[n/2-1] + a.covers[n/2]) / 2
			}
		}
		a.summary.DistinctFCs = len(a.fcs)
		out = append(out, a.summary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StoreName < out[j].StoreName })
	return out, nil
}

func (r *StoreMetricsRepository) UpdateTiers(ctx context.Context, tenantID string, tiers map[int64]domain.StoreTier) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	changes := 0
	for id, tier := range tiers {
		st, ok := r.stores[id]
		if !ok || st.TenantID != tenantID || st.Tier == tier {
			continue
		}
		st.Tier = tier
		st.UpdatedAt = time.Now()
		r.stores[id] = st
		changes++
	}
	return changes, nil
}
