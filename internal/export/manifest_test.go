package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/storeops/rebalance/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestBuildManifestRows(t *testing.T) {
	decided := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	suggestions := []domain.RebalanceSuggestion{
		{
			FCID:           "FC-1",
			FromLocation:   "WH-CENTRAL",
			ToLocation:     "ST-01",
			Qty:            30,
			TransferType:   domain.TransferPush,
			FromWeeksCover: 999,
			Reason:         "V1: WOC thấp 1.0 tuần, bổ sung về 4 tuần",
			DecidedAt:      &decided,
		},
		{
			FCID:         "FC-2",
			FromLocation: "ST-02",
			ToLocation:   "WH-CENTRAL",
			Qty:          10,
			TransferType: domain.TransferRecall,
			Reason:       "DOC cao 20 tuần, thu hồi về kho tổng",
		},
	}

	payload, err := BuildManifest(suggestions)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(payload))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(manifestSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "FC", rows[0][0])
	assert.Equal(t, "FC-1", rows[1][0])
	assert.Equal(t, "ST-01", rows[1][2])
	assert.Equal(t, "30", rows[1][3])
	assert.Equal(t, "push", rows[1][4])
	assert.Equal(t, "recall", rows[2][4])
}

func TestBuildManifestEmptyRunHasHeaderOnly(t *testing.T) {
	payload, err := BuildManifest(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(payload))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(manifestSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
