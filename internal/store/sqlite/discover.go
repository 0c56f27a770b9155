package sqlite

import (
	"context"
	"fmt"

	"github.com/listenupapp/listenup-library/internal/query"
	"github.com/listenupapp/listenup-library/internal/store"
)

// FindDiscoverBooks returns a random selection of books the user has not
// started: standalone books, and the first visible book of each series the
// user has not started any book of.
func (s *Store) FindDiscoverBooks(ctx context.Context, q query.ShelfQuery) ([]store.BookRow, int, error) {
	visible, visibleArgs := visibleBooksCTE(q.LibraryID, q.Permissions)
	seq := query.SequenceExpr("dbs.sequence")

	stmt := `WITH ` + visible + `,
		started AS (
			SELECT mp.media_item_id FROM media_progresses mp
			WHERE mp.user_id = ? AND (mp.is_finished = 1 OR mp.current_seconds > 0)
		),
		series_first AS (
			SELECT (SELECT dbs.book_id FROM book_series dbs
					JOIN visible v ON v.book_id = dbs.book_id
					WHERE dbs.series_id = s.id
					ORDER BY ` + seq + ` ASC NULLS LAST, dbs.book_id
					LIMIT 1) AS book_id
			FROM series s
			WHERE s.library_id = ? AND NOT EXISTS (
				SELECT 1 FROM book_series sbs JOIN started st ON st.media_item_id = sbs.book_id
				WHERE sbs.series_id = s.id)
		),
		standalone AS (
			SELECT v.book_id FROM visible v
			WHERE NOT EXISTS (SELECT 1 FROM book_series xbs WHERE xbs.book_id = v.book_id)
				AND v.book_id NOT IN (SELECT media_item_id FROM started)
		),
		picks AS (
			SELECT book_id FROM series_first WHERE book_id IS NOT NULL
			UNION
			SELECT book_id FROM standalone
		)
		SELECT book_id, count(*) OVER () FROM picks ORDER BY random()`
	limit, limitArgs := limitClause(q.Limit, 0)

	rows, err := s.db.QueryContext(ctx, stmt+limit,
		concatArgs(visibleArgs, []any{q.UserID, q.LibraryID}, limitArgs)...)
	if err != nil {
		return nil, 0, fmt.Errorf("find discover books: %w", err)
	}
	var (
		ids   []string
		total int
	)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id, &total); err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("scan discover book: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate discover books: %w", err)
	}

	books, err := s.booksByID(ctx, q.LibraryID, ids, q.IncludeFeeds)
	if err != nil {
		return nil, 0, err
	}
	return books, total, nil
}
