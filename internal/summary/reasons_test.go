package summary

import (
	"testing"

	"github.com/storeops/rebalance/internal/domain"
	"github.com/stretchr/testify/assert"
)

func suggestionsWithReasons(reasons ...string) []domain.RebalanceSuggestion {
	out := make([]domain.RebalanceSuggestion, len(reasons))
	for i, r := range reasons {
		out[i] = domain.RebalanceSuggestion{ID: string(rune('a' + i)), Reason: r}
	}
	return out
}

func TestClassifyReason(t *testing.T) {
	cases := []struct {
		reason string
		want   ReasonCategory
	}{
		{"DOC cao 20 tuần", ReasonHighDOC},
		{"velocity thấp", ReasonLowVelocity},
		{"V1: WOC thấp 1.2 tuần, bổ sung về 4 tuần", ReasonLowWOC},
		{"hàng mùa vụ sắp hết season", ReasonSeasonal},
		{"Dead stock, không bán trong 26 tuần", ReasonDeadStock},
		{"dead stock với DOC cao", ReasonDeadStock},
		{"không rõ lý do", ReasonOther},
		{"", ReasonOther},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyReason(tc.reason), "reason %q", tc.reason)
	}
}

func TestSummarizeReasonsCountsDescending(t *testing.T) {
	suggestions := suggestionsWithReasons(
		"DOC cao 20 tuần",
		"velocity thấp",
		"DOC cao 15 tuần",
	)

	assert.Equal(t, "2 DOC cao · 1 Velocity thấp", SummarizeReasons(suggestions))
}

func TestSummarizeReasonsTopThreeOnly(t *testing.T) {
	suggestions := suggestionsWithReasons(
		"DOC cao 20 tuần", "DOC cao 18 tuần", "DOC cao 30 tuần",
		"velocity thấp", "velocity thấp",
		"dead stock", "dead stock",
		"WOC thấp",
	)

	// four buckets, only three survive; ties break by first occurrence
	assert.Equal(t, "3 DOC cao · 2 Velocity thấp · 2 Dead stock", SummarizeReasons(suggestions))
}

func TestSummarizeReasonsEmpty(t *testing.T) {
	assert.Equal(t, "", SummarizeReasons(nil))
}
