package sqlite

import (
	"context"
	"fmt"

	"github.com/listenupapp/listenup-library/internal/domain"
)

// UpsertProgress creates or replaces a user's progress on a media item.
func (s *Store) UpsertProgress(ctx context.Context, p *domain.MediaProgress) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO media_progresses (
			id, user_id, media_item_id, media_item_type, duration,
			current_seconds, ebook_progress, is_finished, finished_at, created_at,
			updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, media_item_id) DO UPDATE SET
			duration = excluded.duration,
			current_seconds = excluded.current_seconds,
			ebook_progress = excluded.ebook_progress,
			is_finished = excluded.is_finished,
			finished_at = excluded.finished_at,
			updated_at = excluded.updated_at`,
		p.ID, p.UserID, p.MediaItemID, string(p.MediaItemType), p.Duration,
		p.CurrentTime, p.EbookProgress, boolToInt(p.IsFinished), nullTimeString(p.FinishedAt),
		formatTime(p.CreatedAt), formatTime(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}
	return nil
}
