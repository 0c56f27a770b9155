package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/listenupapp/listenup-library/internal/domain"
	"github.com/listenupapp/listenup-library/internal/store"
)

const libraryColumns = `id, name, media_type, created_at, updated_at`

func scanLibrary(scanner interface{ Scan(...any) error }) (*domain.Library, error) {
	var (
		lib       domain.Library
		mediaType string
		createdAt string
		updatedAt string
	)
	if err := scanner.Scan(&lib.ID, &lib.Name, &mediaType, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	lib.MediaType = domain.MediaType(mediaType)

	var err error
	if lib.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if lib.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &lib, nil
}

// GetLibrary retrieves a library by ID.
func (s *Store) GetLibrary(ctx context.Context, id string) (*domain.Library, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+libraryColumns+` FROM libraries WHERE id = ?`, id)
	lib, err := scanLibrary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithCause(fmt.Errorf("library %s", id))
	}
	if err != nil {
		return nil, fmt.Errorf("get library: %w", err)
	}
	return lib, nil
}

// ListLibraries returns every library ordered by creation time.
func (s *Store) ListLibraries(ctx context.Context) ([]*domain.Library, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+libraryColumns+` FROM libraries ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list libraries: %w", err)
	}
	defer rows.Close()

	var libs []*domain.Library
	for rows.Next() {
		lib, err := scanLibrary(rows)
		if err != nil {
			return nil, fmt.Errorf("scan library: %w", err)
		}
		libs = append(libs, lib)
	}
	return libs, rows.Err()
}

// CreateLibrary inserts a new library.
func (s *Store) CreateLibrary(ctx context.Context, lib *domain.Library) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO libraries (`+libraryColumns+`) VALUES (?, ?, ?, ?, ?)`,
		lib.ID, lib.Name, string(lib.MediaType), formatTime(lib.CreatedAt), formatTime(lib.UpdatedAt))
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("create library: %w", err)
	}
	return nil
}
