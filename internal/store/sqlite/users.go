package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/listenupapp/listenup-library/internal/domain"
	"github.com/listenupapp/listenup-library/internal/store"
)

const userColumns = `id, username, type, can_access_explicit_content, access_all_tags,
	item_tags_selected, selected_tags_not_accessible, created_at, updated_at`

// GetUser retrieves a user and their content permissions by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var (
		u           domain.User
		userType    string
		explicit    int
		allTags     int
		tags        sql.NullString
		notAccessed int
		createdAt   string
		updatedAt   string
	)
	err := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id).Scan(
		&u.ID, &u.Username, &userType, &explicit, &allTags,
		&tags, &notAccessed, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithCause(fmt.Errorf("user %s", id))
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	u.Type = domain.UserType(userType)
	u.Permissions = domain.UserPermissions{
		CanAccessExplicitContent:  explicit != 0,
		AccessAllTags:             allTags != 0,
		SelectedTagsNotAccessible: notAccessed != 0,
	}
	if err := decodeJSON(tags, &u.Permissions.ItemTagsSelected); err != nil {
		return nil, fmt.Errorf("decode item_tags_selected: %w", err)
	}
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &u, nil
}

// CreateUser inserts a new user.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	tags, err := encodeList(u.Permissions.ItemTagsSelected)
	if err != nil {
		return fmt.Errorf("encode item_tags_selected: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, string(u.Type),
		boolToInt(u.Permissions.CanAccessExplicitContent),
		boolToInt(u.Permissions.AccessAllTags),
		tags,
		boolToInt(u.Permissions.SelectedTagsNotAccessible),
		formatTime(u.CreatedAt), formatTime(u.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}
