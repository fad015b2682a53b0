package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Dauren-Zh/tourney-engine/models"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	GetPublicURL(key string) string
}

// SnapshotArchiver mirrors published standings snapshots to object storage
// as JSON documents. Archiving is best-effort: the snapshot in the database
// is the source of truth and an upload failure never fails a recomputation.
type SnapshotArchiver interface {
	ArchiveSnapshot(ctx context.Context, snapshot *models.StandingsSnapshot) (*UploadResult, error)
}

type snapshotArchiver struct {
	uploader FileUploader
}

func NewSnapshotArchiver(uploader FileUploader) SnapshotArchiver {
	return &snapshotArchiver{uploader: uploader}
}

func (a *snapshotArchiver) ArchiveSnapshot(ctx context.Context, snapshot *models.StandingsSnapshot) (*UploadResult, error) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot %d for archiving: %w", snapshot.ID, err)
	}

	key := fmt.Sprintf("standings/tournament_%d/v%d.json", snapshot.TournamentID, snapshot.Version)
	result, err := a.uploader.Upload(ctx, key, "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to archive snapshot %d: %w", snapshot.ID, err)
	}
	return result, nil
}
