package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/listenupapp/listenup-library/internal/domain"
	"github.com/listenupapp/listenup-library/internal/store"
)

// hydrateBooks attaches authors, series and optionally open feeds to rows.
func (s *Store) hydrateBooks(ctx context.Context, rows []store.BookRow, includeFeeds bool) error {
	if len(rows) == 0 {
		return nil
	}

	bookIDs := make([]string, len(rows))
	itemIDs := make([]string, len(rows))
	for i, r := range rows {
		bookIDs[i] = r.Book.ID
		itemIDs[i] = r.Item.ID
	}

	authors, err := s.authorsForBooks(ctx, bookIDs)
	if err != nil {
		return err
	}
	series, err := s.seriesForBooks(ctx, bookIDs)
	if err != nil {
		return err
	}
	var feeds map[string][]domain.Feed
	if includeFeeds {
		if feeds, err = s.feedsForItems(ctx, itemIDs); err != nil {
			return err
		}
	}

	for i := range rows {
		rows[i].Authors = authors[rows[i].Book.ID]
		rows[i].Series = series[rows[i].Book.ID]
		if includeFeeds {
			rows[i].Feeds = feeds[rows[i].Item.ID]
		}
	}
	return nil
}

// authorsForBooks returns each book's authors in join order.
func (s *Store) authorsForBooks(ctx context.Context, bookIDs []string) (map[string][]store.AuthorRef, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT xba.book_id, a.id, a.name
		FROM book_authors xba
		JOIN authors a ON a.id = xba.author_id
		WHERE xba.book_id IN (SELECT value FROM json_each(?))
		ORDER BY xba.created_at, xba.rowid`, idsParam(bookIDs))
	if err != nil {
		return nil, fmt.Errorf("query book authors: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]store.AuthorRef)
	for rows.Next() {
		var (
			bookID string
			ref    store.AuthorRef
		)
		if err := rows.Scan(&bookID, &ref.ID, &ref.Name); err != nil {
			return nil, fmt.Errorf("scan book author: %w", err)
		}
		out[bookID] = append(out[bookID], ref)
	}
	return out, rows.Err()
}

// seriesForBooks returns each book's series memberships in join order.
func (s *Store) seriesForBooks(ctx context.Context, bookIDs []string) (map[string][]store.SeriesRef, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT xbs.book_id, xbs.id, s.id, s.name, s.name_ignore_prefix, xbs.sequence
		FROM book_series xbs
		JOIN series s ON s.id = xbs.series_id
		WHERE xbs.book_id IN (SELECT value FROM json_each(?))
		ORDER BY xbs.created_at, xbs.rowid`, idsParam(bookIDs))
	if err != nil {
		return nil, fmt.Errorf("query book series: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]store.SeriesRef)
	for rows.Next() {
		var (
			bookID string
			ss     seriesRefScan
		)
		dest := append([]any{&bookID}, ss.dest()...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan book series: %w", err)
		}
		out[bookID] = append(out[bookID], ss.finish())
	}
	return out, rows.Err()
}

const feedColumns = `id, entity_type, entity_id, library_item_id, slug, title, feed_url,
	server_address, created_at, updated_at`

// feedsForItems returns the open feeds of each library item.
func (s *Store) feedsForItems(ctx context.Context, itemIDs []string) (map[string][]domain.Feed, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+feedColumns+` FROM feeds
		WHERE library_item_id IN (SELECT value FROM json_each(?))
		ORDER BY created_at, id`, idsParam(itemIDs))
	if err != nil {
		return nil, fmt.Errorf("query feeds: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.Feed)
	for rows.Next() {
		var (
			f          domain.Feed
			itemID     sql.NullString
			serverAddr sql.NullString
			createdAt  string
			updatedAt  string
		)
		if err := rows.Scan(&f.ID, &f.EntityType, &f.EntityID, &itemID, &f.Slug, &f.Title, &f.FeedURL,
			&serverAddr, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan feed: %w", err)
		}
		f.LibraryItemID = itemID.String
		f.ServerAddress = serverAddr.String
		if f.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parse feed created_at: %w", err)
		}
		if f.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, fmt.Errorf("parse feed updated_at: %w", err)
		}
		out[f.LibraryItemID] = append(out[f.LibraryItemID], f)
	}
	return out, rows.Err()
}

// CreateFeed inserts an open RSS feed.
func (s *Store) CreateFeed(ctx context.Context, f *domain.Feed) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO feeds (`+feedColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.EntityType, f.EntityID, nullString(f.LibraryItemID), f.Slug, f.Title, f.FeedURL,
		nullString(f.ServerAddress), formatTime(f.CreatedAt), formatTime(f.UpdatedAt))
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("create feed: %w", err)
	}
	return nil
}
