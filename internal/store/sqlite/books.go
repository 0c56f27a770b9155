package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/listenupapp/listenup-library/internal/domain"
	"github.com/listenupapp/listenup-library/internal/query"
	"github.com/listenupapp/listenup-library/internal/store"
)

// bookColumns are the book columns under alias b.
const bookColumns = `b.id, b.title, b.title_ignore_prefix, b.subtitle, b.published_year,
	b.published_date, b.publisher, b.description, b.isbn, b.asin, b.language, b.explicit,
	b.abridged, b.cover_path, b.duration, b.narrators, b.genres, b.tags, b.audio_files,
	b.ebook_file, b.chapters, b.created_at, b.updated_at`

// progressColumns are the left-joined progress columns under alias mp.
const progressColumns = `mp.id, mp.user_id, mp.media_item_id, mp.media_item_type, mp.duration,
	mp.current_seconds, mp.ebook_progress, mp.is_finished, mp.finished_at, mp.created_at,
	mp.updated_at`

// matchedSeriesColumns are the filter's series join columns, aliases fbs/fs.
const matchedSeriesColumns = `fbs.id, fs.id, fs.name, fs.name_ignore_prefix, fbs.sequence`

// bookItemJoin joins each book to its library item.
const bookItemJoin = `FROM books b JOIN library_items li ON li.media_id = b.id AND li.media_type = 'book'`

type bookScan struct {
	book          domain.Book
	subtitle      sql.NullString
	publishedYear sql.NullString
	publishedDate sql.NullString
	publisher     sql.NullString
	description   sql.NullString
	isbn          sql.NullString
	asin          sql.NullString
	language      sql.NullString
	explicit      int
	abridged      int
	coverPath     sql.NullString
	narrators     sql.NullString
	genres        sql.NullString
	tags          sql.NullString
	audioFiles    sql.NullString
	ebookFile     sql.NullString
	chapters      sql.NullString
	createdAt     string
	updatedAt     string
}

func (s *bookScan) dest() []any {
	return []any{
		&s.book.ID, &s.book.Title, &s.book.TitleIgnorePrefix, &s.subtitle, &s.publishedYear,
		&s.publishedDate, &s.publisher, &s.description, &s.isbn, &s.asin, &s.language, &s.explicit,
		&s.abridged, &s.coverPath, &s.book.Duration, &s.narrators, &s.genres, &s.tags, &s.audioFiles,
		&s.ebookFile, &s.chapters, &s.createdAt, &s.updatedAt,
	}
}

func (s *bookScan) finish() (domain.Book, error) {
	b := s.book
	b.Subtitle = s.subtitle.String
	b.PublishedYear = s.publishedYear.String
	b.PublishedDate = s.publishedDate.String
	b.Publisher = s.publisher.String
	b.Description = s.description.String
	b.ISBN = s.isbn.String
	b.ASIN = s.asin.String
	b.Language = s.language.String
	b.Explicit = s.explicit != 0
	b.Abridged = s.abridged != 0
	b.CoverPath = s.coverPath.String

	decodes := []struct {
		name string
		src  sql.NullString
		dst  any
	}{
		{"narrators", s.narrators, &b.Narrators},
		{"genres", s.genres, &b.Genres},
		{"tags", s.tags, &b.Tags},
		{"audio_files", s.audioFiles, &b.AudioFiles},
		{"ebook_file", s.ebookFile, &b.EbookFile},
		{"chapters", s.chapters, &b.Chapters},
	}
	for _, d := range decodes {
		if err := decodeJSON(d.src, d.dst); err != nil {
			return b, fmt.Errorf("decode %s: %w", d.name, err)
		}
	}

	var err error
	if b.CreatedAt, err = parseTime(s.createdAt); err != nil {
		return b, fmt.Errorf("parse book created_at: %w", err)
	}
	if b.UpdatedAt, err = parseTime(s.updatedAt); err != nil {
		return b, fmt.Errorf("parse book updated_at: %w", err)
	}
	return b, nil
}

// progressScan receives progressColumns from a LEFT JOIN; every column may
// be NULL.
type progressScan struct {
	id            sql.NullString
	userID        sql.NullString
	mediaItemID   sql.NullString
	mediaItemType sql.NullString
	duration      sql.NullFloat64
	current       sql.NullFloat64
	ebook         sql.NullFloat64
	finished      sql.NullInt64
	finishedAt    sql.NullString
	createdAt     sql.NullString
	updatedAt     sql.NullString
}

func (s *progressScan) dest() []any {
	return []any{
		&s.id, &s.userID, &s.mediaItemID, &s.mediaItemType, &s.duration,
		&s.current, &s.ebook, &s.finished, &s.finishedAt, &s.createdAt,
		&s.updatedAt,
	}
}

// finish returns nil when the join found no progress row.
func (s *progressScan) finish() (*domain.MediaProgress, error) {
	if !s.id.Valid {
		return nil, nil
	}
	p := &domain.MediaProgress{
		UserID:        s.userID.String,
		MediaItemID:   s.mediaItemID.String,
		MediaItemType: domain.MediaItemType(s.mediaItemType.String),
		Duration:      s.duration.Float64,
		CurrentTime:   s.current.Float64,
		EbookProgress: s.ebook.Float64,
		IsFinished:    s.finished.Int64 != 0,
	}
	p.ID = s.id.String

	var err error
	if p.FinishedAt, err = parseNullableTime(s.finishedAt); err != nil {
		return nil, fmt.Errorf("parse finished_at: %w", err)
	}
	if p.CreatedAt, err = parseTime(s.createdAt.String); err != nil {
		return nil, fmt.Errorf("parse progress created_at: %w", err)
	}
	if p.UpdatedAt, err = parseTime(s.updatedAt.String); err != nil {
		return nil, fmt.Errorf("parse progress updated_at: %w", err)
	}
	return p, nil
}

type seriesRefScan struct {
	ref      store.SeriesRef
	sequence sql.NullString
}

func (s *seriesRefScan) dest() []any {
	return []any{&s.ref.BookSeriesID, &s.ref.ID, &s.ref.Name, &s.ref.NameIgnorePrefix, &s.sequence}
}

func (s *seriesRefScan) finish() store.SeriesRef {
	ref := s.ref
	ref.Sequence = s.sequence.String
	return ref
}

// bookFrom renders the FROM clause of a book listing with the joins the
// filter asks for.
func bookFrom(userID string, f query.Filter) (string, []any) {
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(bookItemJoin)
	if f.ProgressJoin {
		sb.WriteString(" LEFT JOIN media_progresses mp ON mp.media_item_id = b.id AND mp.user_id = ?")
		args = append(args, userID)
	}
	if f.SeriesID != "" {
		sb.WriteString(" JOIN book_series fbs ON fbs.book_id = b.id AND fbs.series_id = ?")
		sb.WriteString(" JOIN series fs ON fs.id = fbs.series_id")
		args = append(args, f.SeriesID)
	}
	return sb.String(), args
}

// FindBooks returns one page of a book listing and the total number of
// matching books.
func (s *Store) FindBooks(ctx context.Context, q query.BookQuery) ([]store.BookRow, int, error) {
	from, fromArgs := bookFrom(q.UserID, q.Filter)
	where, whereArgs := query.Where(q.PagePredicates()...)

	var total int
	countSQL := "SELECT count(*) " + from + whereClause(where)
	if err := s.db.QueryRowContext(ctx, countSQL, concatArgs(fromArgs, whereArgs)...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count books: %w", err)
	}
	if total == 0 {
		return nil, 0, nil
	}

	cols := []string{itemColumns, bookColumns}
	var selectArgs []any
	if q.Filter.ProgressJoin {
		cols = append(cols, progressColumns)
	}
	if q.Filter.SeriesID != "" {
		cols = append(cols, matchedSeriesColumns)
	}
	if q.Sort.AuthorName != query.AuthorNameNone {
		cols = append(cols, query.AuthorNameColumn(q.Sort.AuthorName)+" AS author_name")
	}
	if q.Sort.DisplayTitle {
		cols = append(cols, query.DisplayTitleColumn(q.IgnorePrefix)+" AS display_title")
		selectArgs = append(selectArgs, query.RepresentativeRowsParam(q.Collapse))
	}

	limit, limitArgs := limitClause(q.Limit, q.Offset)
	selectSQL := "SELECT " + strings.Join(cols, ", ") + " " + from + whereClause(where) +
		orderClause(q.Sort.OrderBy(), "b.id ASC") + limit

	rows, err := s.db.QueryContext(ctx, selectSQL, concatArgs(selectArgs, fromArgs, whereArgs, limitArgs)...)
	if err != nil {
		return nil, 0, fmt.Errorf("find books: %w", err)
	}
	defer rows.Close()

	var out []store.BookRow
	for rows.Next() {
		var (
			is    itemScan
			bs    bookScan
			ps    progressScan
			ss    seriesRefScan
			extra sql.NullString
		)
		dest := append(is.dest(), bs.dest()...)
		if q.Filter.ProgressJoin {
			dest = append(dest, ps.dest()...)
		}
		if q.Filter.SeriesID != "" {
			dest = append(dest, ss.dest()...)
		}
		if q.Sort.AuthorName != query.AuthorNameNone {
			dest = append(dest, &extra)
		}
		if q.Sort.DisplayTitle {
			var title sql.NullString
			dest = append(dest, &title)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, 0, fmt.Errorf("scan book: %w", err)
		}

		row, err := finishBookRow(&is, &bs)
		if err != nil {
			return nil, 0, err
		}
		if q.Filter.ProgressJoin {
			if row.Progress, err = ps.finish(); err != nil {
				return nil, 0, err
			}
		}
		if q.Filter.SeriesID != "" {
			ref := ss.finish()
			row.MatchedSeries = &ref
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate books: %w", err)
	}

	if err := s.hydrateBooks(ctx, out, q.IncludeFeeds); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func finishBookRow(is *itemScan, bs *bookScan) (store.BookRow, error) {
	item, err := is.finish()
	if err != nil {
		return store.BookRow{}, err
	}
	book, err := bs.finish()
	if err != nil {
		return store.BookRow{}, err
	}
	return store.BookRow{Item: item, Book: book}, nil
}

// FindCollapseCandidates returns the series containing at least one book of
// the listing, with the matching member books. Collapse exclusions are not
// applied. NumBooks counts every member of the series, whatever the
// listing's filter and permissions.
func (s *Store) FindCollapseCandidates(ctx context.Context, q query.BookQuery) ([]query.SeriesCandidate, error) {
	from, fromArgs := bookFrom(q.UserID, q.Filter)
	where, whereArgs := query.Where(q.Predicates()...)

	stmt := `SELECT s.id, s.name, s.name_ignore_prefix,
			(SELECT count(*) FROM book_series nbs WHERE nbs.series_id = s.id) AS num_books,
			cbs.id, cbs.book_id, cbs.sequence ` +
		from +
		` JOIN book_series cbs ON cbs.book_id = b.id JOIN series s ON s.id = cbs.series_id` +
		whereClause(where) +
		` ORDER BY s.id, cbs.book_id`

	rows, err := s.db.QueryContext(ctx, stmt, concatArgs(fromArgs, whereArgs)...)
	if err != nil {
		return nil, fmt.Errorf("find collapse candidates: %w", err)
	}
	defer rows.Close()

	var out []query.SeriesCandidate
	for rows.Next() {
		var (
			c        query.SeriesCandidate
			book     query.CandidateBook
			sequence sql.NullString
		)
		if err := rows.Scan(&c.SeriesID, &c.Name, &c.NameIgnorePrefix, &c.NumBooks,
			&book.BookSeriesID, &book.BookID, &sequence); err != nil {
			return nil, fmt.Errorf("scan collapse candidate: %w", err)
		}
		book.Sequence = sequence.String

		if n := len(out); n > 0 && out[n-1].SeriesID == c.SeriesID {
			out[n-1].Books = append(out[n-1].Books, book)
			continue
		}
		c.Books = []query.CandidateBook{book}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateBook inserts a book media row.
func (s *Store) CreateBook(ctx context.Context, b *domain.Book) error {
	narrators, err := encodeList(b.Narrators)
	if err != nil {
		return fmt.Errorf("encode narrators: %w", err)
	}
	genres, err := encodeList(b.Genres)
	if err != nil {
		return fmt.Errorf("encode genres: %w", err)
	}
	tags, err := encodeList(b.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	audioFiles := b.AudioFiles
	if audioFiles == nil {
		audioFiles = []domain.AudioFile{}
	}
	audio, err := encodeJSON(audioFiles, false)
	if err != nil {
		return fmt.Errorf("encode audio_files: %w", err)
	}
	ebook, err := encodeJSON(b.EbookFile, b.EbookFile == nil)
	if err != nil {
		return fmt.Errorf("encode ebook_file: %w", err)
	}
	chapters, err := encodeJSON(b.Chapters, b.Chapters == nil)
	if err != nil {
		return fmt.Errorf("encode chapters: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO books (
			id, title, title_ignore_prefix, subtitle, published_year,
			published_date, publisher, description, isbn, asin, language, explicit,
			abridged, cover_path, duration, narrators, genres, tags, audio_files,
			ebook_file, chapters, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Title, b.TitleIgnorePrefix, nullString(b.Subtitle), nullString(b.PublishedYear),
		nullString(b.PublishedDate), nullString(b.Publisher), nullString(b.Description),
		nullString(b.ISBN), nullString(b.ASIN), nullString(b.Language), boolToInt(b.Explicit),
		boolToInt(b.Abridged), nullString(b.CoverPath), b.Duration, narrators, genres, tags, audio,
		ebook, chapters, formatTime(b.CreatedAt), formatTime(b.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("create book: %w", err)
	}
	return nil
}
