// internal/export/manifest.go
package export

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/storeops/rebalance/internal/domain"
	"github.com/storeops/rebalance/internal/repository"
	"github.com/storeops/rebalance/internal/storage"
	"github.com/xuri/excelize/v2"
)

const manifestSheet = "Transfers"

// ManifestExporter renders a run's approved suggestions to an xlsx transfer
// manifest and uploads it to object storage.
type ManifestExporter struct {
	suggestions repository.SuggestionRepository
	store       storage.ObjectStorage
	keyPrefix   string
}

func NewManifestExporter(suggestions repository.SuggestionRepository, store storage.ObjectStorage, keyPrefix string) *ManifestExporter {
	return &ManifestExporter{suggestions: suggestions, store: store, keyPrefix: keyPrefix}
}

// Export builds and uploads the manifest, returning the object key. A run
// with no approved suggestions still produces a manifest with only the
// header row.
func (e *ManifestExporter) Export(ctx context.Context, tenantID, runID string) (string, error) {
	approved, err := e.suggestions.List(ctx, tenantID, domain.SuggestionFilter{
		RunID:  runID,
		Status: domain.StatusApproved,
	})
	if err != nil {
		return "", fmt.Errorf("failed to load approved suggestions: %w", err)
	}

	payload, err := BuildManifest(approved)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s/%s/transfers-%s.xlsx", e.keyPrefix, tenantID, runID)
	if err := e.store.UploadObject(ctx, key, payload); err != nil {
		return "", err
	}

	log.Info().
		Str("run_id", runID).
		Str("key", key).
		Int("rows", len(approved)).
		Msg("transfer manifest exported")
	return key, nil
}

// BuildManifest renders suggestions into xlsx bytes.
func BuildManifest(suggestions []domain.RebalanceSuggestion) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(manifestSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []interface{}{"FC", "From", "To", "Qty", "Type", "Weeks Cover", "Reason", "Decided At"}
	if err := f.SetSheetRow(manifestSheet, "A1", &headers); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, s := range suggestions {
		decidedAt := ""
		if s.DecidedAt != nil {
			decidedAt = s.DecidedAt.Format(time.RFC3339)
		}
		row := []interface{}{
			s.FCID, s.FromLocation, s.ToLocation, s.Qty,
			string(s.TransferType), s.FromWeeksCover, s.Reason, decidedAt,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(manifestSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize manifest: %w", err)
	}
	return buf.Bytes(), nil
}
