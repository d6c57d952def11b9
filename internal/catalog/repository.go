package catalog

import (
	"context"
	"fmt"

	"github.com/zentrya/ingest/pkg/models"
)

// Repository persists playback state on catalog rows. Only the worker calls
// SetPlayback, and only after the upload is confirmed; the pipeline core
// never touches the catalog.
type Repository struct {
	db *DB
}

// NewRepository creates a new catalog repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

func tableFor(kind models.ContentKind) (string, error) {
	switch kind {
	case models.KindMovie:
		return "movies", nil
	case models.KindEpisode:
		return "episodes", nil
	default:
		return "", fmt.Errorf("unknown content kind %q", kind)
	}
}

// SetPlayback stores the playback URL and duration for a content row after a
// successful ingest.
func (r *Repository) SetPlayback(ctx context.Context, kind models.ContentKind, contentID int64, hlsURL string, durationSeconds float64) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(
		`UPDATE %s SET video_url = $1, duration_seconds = $2, updated_at = NOW() WHERE id = $3`,
		table,
	)

	tag, err := r.db.Pool.Exec(ctx, query, hlsURL, durationSeconds, contentID)
	if err != nil {
		return fmt.Errorf("failed to set playback for %s %d: %w", kind, contentID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("no %s row with id %d", kind, contentID)
	}
	return nil
}

// ClearPlayback removes the playback URL from a content row after its
// rendition was deleted.
func (r *Repository) ClearPlayback(ctx context.Context, kind models.ContentKind, contentID int64) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(
		`UPDATE %s SET video_url = NULL, updated_at = NOW() WHERE id = $1`,
		table,
	)

	if _, err := r.db.Pool.Exec(ctx, query, contentID); err != nil {
		return fmt.Errorf("failed to clear playback for %s %d: %w", kind, contentID, err)
	}
	return nil
}
