package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/listenupapp/listenup-library/internal/domain"
	"github.com/listenupapp/listenup-library/internal/query"
	"github.com/listenupapp/listenup-library/internal/store"
)

// CreateAuthor inserts an author.
func (s *Store) CreateAuthor(ctx context.Context, a *domain.Author) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO authors (id, library_id, name, last_first, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.LibraryID, a.Name, a.LastFirst, nullString(a.Description),
		formatTime(a.CreatedAt), formatTime(a.UpdatedAt))
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("create author: %w", err)
	}
	return nil
}

// AddBookAuthor credits an author on a book. Authors keep the order they
// were added in.
func (s *Store) AddBookAuthor(ctx context.Context, bookID, authorID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO book_authors (id, book_id, author_id, created_at) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), bookID, authorID, formatTime(time.Now()))
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("add book author: %w", err)
	}
	return nil
}

// FindNewestAuthors returns the library's authors with at least one visible
// book, newest first, with their visible book counts.
func (s *Store) FindNewestAuthors(ctx context.Context, q query.ShelfQuery) ([]store.AuthorRow, int, error) {
	preds := append([]query.Predicate{
		query.Eq("a.library_id", q.LibraryID),
		query.Eq("li.library_id", q.LibraryID),
	}, q.Permissions...)
	where, whereArgs := query.Where(preds...)

	grouped := `SELECT a.id, a.library_id, a.name, a.last_first, a.description, a.created_at,
			a.updated_at, count(DISTINCT b.id) AS num_books
		FROM authors a
		JOIN book_authors na ON na.author_id = a.id
		JOIN books b ON b.id = na.book_id
		JOIN library_items li ON li.media_id = b.id AND li.media_type = 'book'` +
		whereClause(where) + ` GROUP BY a.id`

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT count(*) FROM ("+grouped+")", whereArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count newest authors: %w", err)
	}
	if total == 0 {
		return nil, 0, nil
	}

	limit, limitArgs := limitClause(q.Limit, 0)
	rows, err := s.db.QueryContext(ctx, grouped+` ORDER BY a.created_at DESC, a.id`+limit,
		concatArgs(whereArgs, limitArgs)...)
	if err != nil {
		return nil, 0, fmt.Errorf("find newest authors: %w", err)
	}
	defer rows.Close()

	var out []store.AuthorRow
	for rows.Next() {
		var (
			r           store.AuthorRow
			description sql.NullString
			createdAt   string
			updatedAt   string
		)
		if err := rows.Scan(&r.Author.ID, &r.Author.LibraryID, &r.Author.Name, &r.Author.LastFirst,
			&description, &createdAt, &updatedAt, &r.NumBooks); err != nil {
			return nil, 0, fmt.Errorf("scan author: %w", err)
		}
		r.Author.Description = description.String
		if r.Author.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, 0, fmt.Errorf("parse author created_at: %w", err)
		}
		if r.Author.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, 0, fmt.Errorf("parse author updated_at: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate authors: %w", err)
	}
	return out, total, nil
}
