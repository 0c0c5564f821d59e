// internal/summary/reasons.go
package summary

import (
	"fmt"
	"sort"
	"strings"

	"github.com/storeops/rebalance/internal/domain"
)

// ReasonCategory buckets free-text suggestion reasons for display. The
// classification is heuristic keyword matching and falls back to Other.
type ReasonCategory string

const (
	ReasonHighDOC     ReasonCategory = "DOC cao"
	ReasonLowVelocity ReasonCategory = "Velocity thấp"
	ReasonLowWOC      ReasonCategory = "WOC thấp"
	ReasonSeasonal    ReasonCategory = "Mùa vụ"
	ReasonDeadStock   ReasonCategory = "Dead stock"
	ReasonOther       ReasonCategory = "Other"
)

// ClassifyReason maps one free-text reason to a category. Engine version
// prefixes ("V1:", "V2:") are ignored. Dead stock is checked before DOC since
// dead stock reasons frequently also mention cover.
func ClassifyReason(reason string) ReasonCategory {
	text := strings.ToLower(strings.TrimSpace(reason))
	for _, prefix := range []string{"v1:", "v2:"} {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimSpace(strings.TrimPrefix(text, prefix))
		}
	}

	switch {
	case strings.Contains(text, "dead stock"):
		return ReasonDeadStock
	case strings.Contains(text, "doc"):
		return ReasonHighDOC
	case strings.Contains(text, "velocity"):
		return ReasonLowVelocity
	case strings.Contains(text, "woc"):
		return ReasonLowWOC
	case strings.Contains(text, "season"), strings.Contains(text, "mùa"):
		return ReasonSeasonal
	default:
		return ReasonOther
	}
}

// ReasonCount is one classified bucket with its frequency.
type ReasonCount struct {
	Category ReasonCategory `json:"category"`
	Count    int            `json:"count"`
}

// CountReasons classifies every suggestion's reason and returns buckets
// ordered by count descending, first occurrence breaking ties.
func CountReasons(suggestions []domain.RebalanceSuggestion) []ReasonCount {
	counts := make(map[ReasonCategory]int)
	var order []ReasonCategory

	for _, s := range suggestions {
		cat := ClassifyReason(s.Reason)
		if _, seen := counts[cat]; !seen {
			order = append(order, cat)
		}
		counts[cat]++
	}

	firstSeen := make(map[ReasonCategory]int, len(order))
	for i, cat := range order {
		firstSeen[cat] = i
	}

	out := make([]ReasonCount, 0, len(order))
	for _, cat := range order {
		out = append(out, ReasonCount{Category: cat, Count: counts[cat]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return firstSeen[out[i].Category] < firstSeen[out[j].Category]
	})
	return out
}

// SummarizeReasons renders the top three buckets as "2 DOC cao · 1 Velocity thấp".
func SummarizeReasons(suggestions []domain.RebalanceSuggestion) string {
	counts := CountReasons(suggestions)
	if len(counts) > 3 {
		counts = counts[:3]
	}

	parts := make([]string, 0, len(counts))
	for _, rc := range counts {
		parts = append(parts, fmt.Sprintf("%d %s", rc.Count, rc.Category))
	}
	return strings.Join(parts, " · ")
}
