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

// recentSeriesLimit caps the recent-series shelf regardless of shelf limit.
const recentSeriesLimit = 5

// CreateSeries inserts a series.
func (s *Store) CreateSeries(ctx context.Context, sr *domain.Series) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO series (id, library_id, name, name_ignore_prefix, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sr.ID, sr.LibraryID, sr.Name, sr.NameIgnorePrefix, nullString(sr.Description),
		formatTime(sr.CreatedAt), formatTime(sr.UpdatedAt))
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("create series: %w", err)
	}
	return nil
}

// AddBookSeries places a book in a series at the given sequence. An empty
// sequence is stored as NULL.
func (s *Store) AddBookSeries(ctx context.Context, bookID, seriesID, sequence string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO book_series (id, book_id, series_id, sequence, created_at) VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), bookID, seriesID, nullString(sequence), formatTime(time.Now()))
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("add book series: %w", err)
	}
	return nil
}

// visibleBooksCTE selects the ids of the library's books the caller may see.
func visibleBooksCTE(libraryID string, perms []query.Predicate) (string, []any) {
	where, args := query.Where(append([]query.Predicate{query.Eq("li.library_id", libraryID)}, perms...)...)
	return `visible AS (SELECT b.id AS book_id ` + bookItemJoin + whereClause(where) + `)`, args
}

// booksByID loads book rows for ids, returned in the order of ids. An id
// may repeat; ids that no longer resolve are skipped.
func (s *Store) booksByID(ctx context.Context, libraryID string, ids []string, includeFeeds bool) ([]store.BookRow, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, _, err := s.FindBooks(ctx, query.BookQuery{
		LibraryID:    libraryID,
		Filter:       query.Filter{MediaWhere: []query.Predicate{query.In("b.id", ids)}},
		IncludeFeeds: includeFeeds,
	})
	if err != nil {
		return nil, err
	}

	byID := make(map[string]store.BookRow, len(rows))
	for _, r := range rows {
		byID[r.Book.ID] = r
	}
	out := make([]store.BookRow, 0, len(ids))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// FindContinueSeries returns, for each series the user has finished at
// least one book of and has no book in progress, the first visible
// unfinished book by sequence. Series are ordered by the user's latest
// progress in them. Each row's MatchedSeries is the series it continues.
func (s *Store) FindContinueSeries(ctx context.Context, q query.ShelfQuery) ([]store.BookRow, int, error) {
	visible, visibleArgs := visibleBooksCTE(q.LibraryID, q.Permissions)
	seq := query.SequenceExpr("nbs.sequence")

	cte := `WITH ` + visible + `,
		series_state AS (
			SELECT sbs.series_id,
				sum(CASE WHEN mp.is_finished = 1 THEN 1 ELSE 0 END) AS finished,
				sum(CASE WHEN mp.is_finished = 0 AND (mp.current_seconds > 0 OR mp.ebook_progress > 0)
					THEN 1 ELSE 0 END) AS in_progress,
				max(mp.updated_at) AS last_progress
			FROM book_series sbs
			JOIN media_progresses mp ON mp.media_item_id = sbs.book_id AND mp.user_id = ?
			GROUP BY sbs.series_id
		),
		candidates AS (
			SELECT ss.series_id, ss.last_progress,
				(SELECT nbs.book_id FROM book_series nbs
					JOIN visible v ON v.book_id = nbs.book_id
					LEFT JOIN media_progresses nmp ON nmp.media_item_id = nbs.book_id AND nmp.user_id = ?
					WHERE nbs.series_id = ss.series_id AND (nmp.is_finished IS NULL OR nmp.is_finished = 0)
					ORDER BY ` + seq + ` ASC NULLS LAST, nbs.book_id
					LIMIT 1) AS next_book_id
			FROM series_state ss
			JOIN series s ON s.id = ss.series_id
			WHERE s.library_id = ? AND ss.finished > 0 AND ss.in_progress = 0
		)`
	cteArgs := concatArgs(visibleArgs, []any{q.UserID, q.UserID, q.LibraryID})

	var total int
	countSQL := cte + ` SELECT count(*) FROM candidates WHERE next_book_id IS NOT NULL`
	if err := s.db.QueryRowContext(ctx, countSQL, cteArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count continue series: %w", err)
	}
	if total == 0 {
		return nil, 0, nil
	}

	limit, limitArgs := limitClause(q.Limit, 0)
	pageSQL := cte + ` SELECT series_id, next_book_id FROM candidates WHERE next_book_id IS NOT NULL
		ORDER BY last_progress DESC, series_id` + limit
	rows, err := s.db.QueryContext(ctx, pageSQL, concatArgs(cteArgs, limitArgs)...)
	if err != nil {
		return nil, 0, fmt.Errorf("find continue series: %w", err)
	}
	var seriesIDs, bookIDs []string
	for rows.Next() {
		var seriesID, bookID string
		if err := rows.Scan(&seriesID, &bookID); err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("scan continue series: %w", err)
		}
		seriesIDs = append(seriesIDs, seriesID)
		bookIDs = append(bookIDs, bookID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate continue series: %w", err)
	}

	books, err := s.booksByID(ctx, q.LibraryID, bookIDs, q.IncludeFeeds)
	if err != nil {
		return nil, 0, err
	}
	// Rows come back in candidate order; pair each with its series.
	var next int
	for i := range books {
		for next < len(bookIDs) && bookIDs[next] != books[i].Book.ID {
			next++
		}
		if next == len(bookIDs) {
			break
		}
		for _, ref := range books[i].Series {
			if ref.ID == seriesIDs[next] {
				matched := ref
				books[i].MatchedSeries = &matched
				break
			}
		}
		next++
	}
	return books, total, nil
}

// FindRecentSeries returns the series most recently added to, each with its
// visible books in sequence order. At most five series are returned.
func (s *Store) FindRecentSeries(ctx context.Context, q query.ShelfQuery) ([]store.SeriesRow, int, error) {
	preds := append([]query.Predicate{
		query.Eq("s.library_id", q.LibraryID),
		query.Eq("li.library_id", q.LibraryID),
	}, q.Permissions...)
	where, whereArgs := query.Where(preds...)

	grouped := `SELECT s.id, s.library_id, s.name, s.name_ignore_prefix, s.description, s.created_at,
			s.updated_at, max(li.created_at) AS latest
		FROM series s
		JOIN book_series rbs ON rbs.series_id = s.id
		JOIN books b ON b.id = rbs.book_id
		JOIN library_items li ON li.media_id = b.id AND li.media_type = 'book'` +
		whereClause(where) + ` GROUP BY s.id`

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT count(*) FROM ("+grouped+")", whereArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count recent series: %w", err)
	}
	if total == 0 {
		return nil, 0, nil
	}

	n := recentSeriesLimit
	if q.Limit > 0 && q.Limit < n {
		n = q.Limit
	}
	rows, err := s.db.QueryContext(ctx, grouped+` ORDER BY latest DESC, s.id LIMIT ?`,
		concatArgs(whereArgs, []any{n})...)
	if err != nil {
		return nil, 0, fmt.Errorf("find recent series: %w", err)
	}
	var out []store.SeriesRow
	for rows.Next() {
		var (
			r           store.SeriesRow
			description sql.NullString
			createdAt   string
			updatedAt   string
			latest      string
		)
		if err := rows.Scan(&r.Series.ID, &r.Series.LibraryID, &r.Series.Name, &r.Series.NameIgnorePrefix,
			&description, &createdAt, &updatedAt, &latest); err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("scan series: %w", err)
		}
		r.Series.Description = description.String
		r.Series.CreatedAt, err = parseTime(createdAt)
		if err == nil {
			r.Series.UpdatedAt, err = parseTime(updatedAt)
		}
		if err == nil {
			r.LatestAddedAt, err = parseTime(latest)
		}
		if err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("parse series timestamps: %w", err)
		}
		out = append(out, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate series: %w", err)
	}

	for i := range out {
		books, _, err := s.FindBooks(ctx, query.BookQuery{
			LibraryID:    q.LibraryID,
			Filter:       query.Filter{SeriesID: out[i].Series.ID},
			Permissions:  q.Permissions,
			Sort:         query.ResolveSort(query.SortRequest{SortBy: domain.SortSequence, SeriesJoin: true}),
			IncludeFeeds: q.IncludeFeeds,
		})
		if err != nil {
			return nil, 0, fmt.Errorf("load series books: %w", err)
		}
		out[i].Books = books
	}
	return out, total, nil
}
