package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/listenupapp/listenup-library/internal/domain"
	"github.com/listenupapp/listenup-library/internal/store"
)

// itemColumns are the library item columns under alias li.
const itemColumns = `li.id, li.library_id, li.media_id, li.media_type, li.path, li.rel_path,
	li.size, li.mtime_ms, li.birthtime_ms, li.is_missing, li.is_invalid, li.library_files,
	li.created_at, li.updated_at`

// itemScan receives one row's itemColumns.
type itemScan struct {
	item      domain.LibraryItem
	mediaType string
	missing   int
	invalid   int
	files     sql.NullString
	createdAt string
	updatedAt string
}

func (s *itemScan) dest() []any {
	return []any{
		&s.item.ID, &s.item.LibraryID, &s.item.MediaID, &s.mediaType, &s.item.Path, &s.item.RelPath,
		&s.item.Size, &s.item.MtimeMs, &s.item.BirthtimeMs, &s.missing, &s.invalid, &s.files,
		&s.createdAt, &s.updatedAt,
	}
}

func (s *itemScan) finish() (domain.LibraryItem, error) {
	item := s.item
	item.MediaType = domain.MediaType(s.mediaType)
	item.IsMissing = s.missing != 0
	item.IsInvalid = s.invalid != 0
	if err := decodeJSON(s.files, &item.LibraryFiles); err != nil {
		return item, fmt.Errorf("decode library_files: %w", err)
	}

	var err error
	if item.CreatedAt, err = parseTime(s.createdAt); err != nil {
		return item, fmt.Errorf("parse item created_at: %w", err)
	}
	if item.UpdatedAt, err = parseTime(s.updatedAt); err != nil {
		return item, fmt.Errorf("parse item updated_at: %w", err)
	}
	return item, nil
}

// CreateLibraryItem inserts a library item. The media row it points at is
// created separately.
func (s *Store) CreateLibraryItem(ctx context.Context, item *domain.LibraryItem) error {
	files, err := encodeJSON(item.LibraryFiles, item.LibraryFiles == nil)
	if err != nil {
		return fmt.Errorf("encode library_files: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO library_items (
			id, library_id, media_id, media_type, path, rel_path,
			size, mtime_ms, birthtime_ms, is_missing, is_invalid, library_files,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.LibraryID, item.MediaID, string(item.MediaType), item.Path, item.RelPath,
		item.Size, item.MtimeMs, item.BirthtimeMs, boolToInt(item.IsMissing), boolToInt(item.IsInvalid), files,
		formatTime(item.CreatedAt), formatTime(item.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("create library item: %w", err)
	}
	return nil
}
