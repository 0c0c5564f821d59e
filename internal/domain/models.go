// internal/domain/models.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferType classifies the direction of a suggested movement.
type TransferType string

const (
	TransferPush    TransferType = "push"    // warehouse -> store
	TransferLateral TransferType = "lateral" // store -> store
	TransferRecall  TransferType = "recall"  // store -> warehouse
)

// SuggestionStatus is the suggestion lifecycle state. Approved and rejected
// are terminal.
type SuggestionStatus string

const (
	StatusPending  SuggestionStatus = "pending"
	StatusApproved SuggestionStatus = "approved"
	StatusRejected SuggestionStatus = "rejected"
)

// InfiniteCoverWeeks is the sentinel for "no sales, cover is effectively
// infinite". Values at or above it are treated as dead stock candidates.
const InfiniteCoverWeeks = 999

// RebalanceSuggestion is one proposed unit movement produced by an engine run.
type RebalanceSuggestion struct {
	ID             string              `json:"id" db:"id"`
	RunID          string              `json:"run_id" db:"run_id"`
	TenantID       string              `json:"tenant_id" db:"tenant_id"`
	FCID           string              `json:"fc_id" db:"fc_id"`
	FromLocation   string              `json:"from_location" db:"from_location"`
	ToLocation     string              `json:"to_location" db:"to_location"`
	Qty            int                 `json:"qty" db:"qty"`
	TransferType   TransferType        `json:"transfer_type" db:"transfer_type"`
	Status         SuggestionStatus    `json:"status" db:"status"`
	Reason         string              `json:"reason" db:"reason"`
	FromWeeksCover float64             `json:"from_weeks_cover" db:"from_weeks_cover"`
	UnitPrice      decimal.NullDecimal `json:"unit_price" db:"unit_price"`
	CreatedAt      time.Time           `json:"created_at" db:"created_at"`
	DecidedAt      *time.Time          `json:"decided_at,omitempty" db:"decided_at"`
}

// RunStatus tracks an engine run batch.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// EngineMode selects which allocation pass a run executes.
type EngineMode string

const (
	ModeV1        EngineMode = "V1"
	ModeV2        EngineMode = "V2"
	ModeBoth      EngineMode = "both"
	ModeRebalance EngineMode = "rebalance"
)

// RebalanceRun is one batch of suggestions produced together.
type RebalanceRun struct {
	ID                 string     `json:"id" db:"id"`
	TenantID           string     `json:"tenant_id" db:"tenant_id"`
	Mode               EngineMode `json:"mode" db:"mode"`
	Status             RunStatus  `json:"status" db:"status"`
	SuggestionsCreated int        `json:"suggestions_created" db:"suggestions_created"`
	ErrorMessage       string     `json:"error_message,omitempty" db:"error_message"`
	TriggeredAt        time.Time  `json:"triggered_at" db:"triggered_at"`
	CompletedAt        *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// StoreTier ranks a store for allocation priority.
type StoreTier string

const (
	TierS StoreTier = "S"
	TierA StoreTier = "A"
	TierB StoreTier = "B"
	TierC StoreTier = "C"
)

// Store is a selling location (or the central warehouse).
type Store struct {
	ID          int64     `json:"id" db:"id"`
	TenantID    string    `json:"tenant_id" db:"tenant_id"`
	Code        string    `json:"code" db:"code"`
	Name        string    `json:"name" db:"name"`
	Tier        StoreTier `json:"tier" db:"tier"`
	IsWarehouse bool      `json:"is_warehouse" db:"is_warehouse"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// StoreMetric is the externally computed per-store, per-FC stock snapshot the
// engine reads. This service never writes the underlying sales data.
type StoreMetric struct {
	StoreID        int64     `json:"store_id" db:"store_id"`
	StoreCode      string    `json:"store_code" db:"store_code"`
	StoreName      string    `json:"store_name" db:"store_name"`
	Tier           StoreTier `json:"tier" db:"tier"`
	FCID           string    `json:"fc_id" db:"fc_id"`
	OnHand         int       `json:"on_hand" db:"on_hand"`
	Available      int       `json:"available" db:"available"`
	WeeklyVelocity float64   `json:"weekly_velocity" db:"weekly_velocity"`
	WeeksCover     float64   `json:"weeks_cover" db:"weeks_cover"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// StoreSummary aggregates metrics per store for the dashboard.
type StoreSummary struct {
	StoreID        int64     `json:"store_id" db:"store_id"`
	StoreName      string    `json:"store_name" db:"store_name"`
	Tier           StoreTier `json:"tier" db:"tier"`
	TotalOnHand    int       `json:"total_on_hand" db:"total_on_hand"`
	TotalAvailable int       `json:"total_available" db:"total_available"`
	WeeklyVelocity float64   `json:"weekly_velocity" db:"weekly_velocity"`
	MedianCover    float64   `json:"median_cover" db:"median_cover"`
	DistinctFCs    int       `json:"distinct_fcs" db:"distinct_fcs"`
}

// SuggestionFilter narrows suggestion queries.
type SuggestionFilter struct {
	RunID        string
	Status       SuggestionStatus
	TransferType TransferType
	FromLocation string
	ToLocation   string
	Page         int
	PageSize     int
}

// MetricsFilter narrows store metric queries.
type MetricsFilter struct {
	StoreIDs []int64
	FCIDs    []string
	Tier     StoreTier
	Page     int
	PageSize int
}

// BatchOutcome reports what happened to one id inside a bulk mutation.
type BatchOutcome string

const (
	OutcomeApplied  BatchOutcome = "applied"
	OutcomeConflict BatchOutcome = "conflict" // no longer pending
	OutcomeMissing  BatchOutcome = "missing"
)

// BatchResult is the per-id result of a bulk approve/reject.
type BatchResult struct {
	ID      string       `json:"id"`
	Outcome BatchOutcome `json:"outcome"`
}

// RunReport is returned by engine triggers.
type RunReport struct {
	RunID              string `json:"run_id"`
	SuggestionsCreated int    `json:"suggestions_created"`
}

// TierReport is returned by the tier recalculation.
type TierReport struct {
	TotalStores int `json:"total_stores"`
	TierChanges int `json:"tier_changes"`
}
