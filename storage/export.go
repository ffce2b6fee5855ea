package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Dosada05/selective-league/models"
)

// StandingsExport is the document written when a selective is completed.
type StandingsExport struct {
	SelectiveID string               `json:"selective_id"`
	Name        string               `json:"name"`
	Mode        models.SelectiveMode `json:"mode"`
	CompletedAt time.Time            `json:"completed_at"`
	Standings   []models.Standing    `json:"standings"`
	Matches     []*models.Match      `json:"matches"`
}

func StandingsKey(selectiveID string) string {
	return fmt.Sprintf("selectives/%s/standings.json", selectiveID)
}

// ExportStandings uploads the final table of a selective as JSON.
func ExportStandings(ctx context.Context, uploader FileUploader, doc StandingsExport) (*UploadResult, error) {
	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode standings of selective %s: %w", doc.SelectiveID, err)
	}
	res, err := uploader.Upload(ctx, StandingsKey(doc.SelectiveID), ContentTypeJSON, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	res.Size = int64(len(body))
	return res, nil
}

// RemoveStandings deletes the exported table of a selective.
func RemoveStandings(ctx context.Context, uploader FileUploader, selectiveID string) error {
	if err := uploader.Delete(ctx, StandingsKey(selectiveID)); err != nil {
		return fmt.Errorf("failed to remove standings of selective %s: %w", selectiveID, err)
	}
	return nil
}
