package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/listenupapp/listenup-library/internal/domain"
	"github.com/listenupapp/listenup-library/internal/query"
	"github.com/listenupapp/listenup-library/internal/store"
)

// podcastColumns are the podcast columns under alias p.
const podcastColumns = `p.id, p.title, p.title_ignore_prefix, p.author, p.description, p.language,
	p.explicit, p.cover_path, p.genres, p.tags, p.created_at, p.updated_at`

// episodeColumns are the episode columns under alias e.
const episodeColumns = `e.id, e.podcast_id, e.title, e.season, e.episode, e.published_at,
	e.audio_file, e.created_at, e.updated_at`

const podcastItemJoin = `FROM podcasts p JOIN library_items li ON li.media_id = p.id AND li.media_type = 'podcast'`

type podcastScan struct {
	podcast     domain.Podcast
	author      sql.NullString
	description sql.NullString
	language    sql.NullString
	explicit    int
	coverPath   sql.NullString
	genres      sql.NullString
	tags        sql.NullString
	createdAt   string
	updatedAt   string
}

func (s *podcastScan) dest() []any {
	return []any{
		&s.podcast.ID, &s.podcast.Title, &s.podcast.TitleIgnorePrefix, &s.author, &s.description, &s.language,
		&s.explicit, &s.coverPath, &s.genres, &s.tags, &s.createdAt, &s.updatedAt,
	}
}

func (s *podcastScan) finish() (domain.Podcast, error) {
	p := s.podcast
	p.Author = s.author.String
	p.Description = s.description.String
	p.Language = s.language.String
	p.Explicit = s.explicit != 0
	p.CoverPath = s.coverPath.String
	if err := decodeJSON(s.genres, &p.Genres); err != nil {
		return p, fmt.Errorf("decode genres: %w", err)
	}
	if err := decodeJSON(s.tags, &p.Tags); err != nil {
		return p, fmt.Errorf("decode tags: %w", err)
	}

	var err error
	if p.CreatedAt, err = parseTime(s.createdAt); err != nil {
		return p, fmt.Errorf("parse podcast created_at: %w", err)
	}
	if p.UpdatedAt, err = parseTime(s.updatedAt); err != nil {
		return p, fmt.Errorf("parse podcast updated_at: %w", err)
	}
	return p, nil
}

type episodeScan struct {
	episode     domain.PodcastEpisode
	season      sql.NullString
	number      sql.NullString
	publishedAt sql.NullString
	audioFile   sql.NullString
	createdAt   string
	updatedAt   string
}

func (s *episodeScan) dest() []any {
	return []any{
		&s.episode.ID, &s.episode.PodcastID, &s.episode.Title, &s.season, &s.number, &s.publishedAt,
		&s.audioFile, &s.createdAt, &s.updatedAt,
	}
}

func (s *episodeScan) finish() (domain.PodcastEpisode, error) {
	e := s.episode
	e.Season = s.season.String
	e.Episode = s.number.String
	if err := decodeJSON(s.audioFile, &e.AudioFile); err != nil {
		return e, fmt.Errorf("decode audio_file: %w", err)
	}

	var err error
	if e.PublishedAt, err = parseNullableTime(s.publishedAt); err != nil {
		return e, fmt.Errorf("parse published_at: %w", err)
	}
	if e.CreatedAt, err = parseTime(s.createdAt); err != nil {
		return e, fmt.Errorf("parse episode created_at: %w", err)
	}
	if e.UpdatedAt, err = parseTime(s.updatedAt); err != nil {
		return e, fmt.Errorf("parse episode updated_at: %w", err)
	}
	return e, nil
}

// FindPodcasts returns one page of a podcast listing and the total number of
// matching podcasts.
func (s *Store) FindPodcasts(ctx context.Context, q query.PodcastQuery) ([]store.PodcastRow, int, error) {
	where, whereArgs := query.Where(q.Predicates()...)

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT count(*) "+podcastItemJoin+whereClause(where), whereArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count podcasts: %w", err)
	}
	if total == 0 {
		return nil, 0, nil
	}

	limit, limitArgs := limitClause(q.Limit, q.Offset)
	stmt := "SELECT " + itemColumns + ", " + podcastColumns +
		", (SELECT count(*) FROM podcast_episodes ne WHERE ne.podcast_id = p.id) " +
		podcastItemJoin + whereClause(where) + orderClause(q.Sort.OrderBy(), "p.id ASC") + limit

	rows, err := s.db.QueryContext(ctx, stmt, concatArgs(whereArgs, limitArgs)...)
	if err != nil {
		return nil, 0, fmt.Errorf("find podcasts: %w", err)
	}
	defer rows.Close()

	var out []store.PodcastRow
	itemIDs := []string{}
	for rows.Next() {
		var (
			is  itemScan
			ps  podcastScan
			row store.PodcastRow
		)
		dest := append(is.dest(), ps.dest()...)
		dest = append(dest, &row.NumEpisodes)
		if err := rows.Scan(dest...); err != nil {
			return nil, 0, fmt.Errorf("scan podcast: %w", err)
		}
		if row.Item, err = is.finish(); err != nil {
			return nil, 0, err
		}
		if row.Podcast, err = ps.finish(); err != nil {
			return nil, 0, err
		}
		out = append(out, row)
		itemIDs = append(itemIDs, row.Item.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate podcasts: %w", err)
	}

	if q.IncludeFeeds {
		feeds, err := s.feedsForItems(ctx, itemIDs)
		if err != nil {
			return nil, 0, err
		}
		for i := range out {
			out[i].Feeds = feeds[out[i].Item.ID]
		}
	}
	return out, total, nil
}

// FindEpisodes returns a page of the library's podcast episodes. In-progress
// and finished selections are ordered by the user's latest progress; all
// episodes are ordered newest published first.
func (s *Store) FindEpisodes(ctx context.Context, q query.EpisodeQuery) ([]store.EpisodeRow, int, error) {
	preds := append([]query.Predicate{query.Eq("li.library_id", q.LibraryID)}, q.Permissions...)
	order := "e.published_at DESC NULLS LAST"
	switch q.Progress {
	case query.EpisodesInProgress:
		preds = append(preds, query.IsFalse("mp.is_finished"), query.Gt("mp.current_seconds", 0))
		order = "mp.updated_at DESC"
	case query.EpisodesFinished:
		preds = append(preds, query.IsTrue("mp.is_finished"))
		order = "mp.updated_at DESC"
	}
	where, whereArgs := query.Where(preds...)

	from := podcastItemJoin +
		" JOIN podcast_episodes e ON e.podcast_id = p.id" +
		" LEFT JOIN media_progresses mp ON mp.media_item_id = e.id AND mp.user_id = ?"
	fromArgs := []any{q.UserID}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT count(*) "+from+whereClause(where),
		concatArgs(fromArgs, whereArgs)...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count episodes: %w", err)
	}
	if total == 0 {
		return nil, 0, nil
	}

	limit, limitArgs := limitClause(q.Limit, 0)
	stmt := "SELECT " + itemColumns + ", " + podcastColumns + ", " + episodeColumns + ", " + progressColumns +
		" " + from + whereClause(where) + orderClause(order, "e.id ASC") + limit

	rows, err := s.db.QueryContext(ctx, stmt, concatArgs(fromArgs, whereArgs, limitArgs)...)
	if err != nil {
		return nil, 0, fmt.Errorf("find episodes: %w", err)
	}
	defer rows.Close()

	var (
		out     []store.EpisodeRow
		itemIDs []string
	)
	for rows.Next() {
		var (
			is  itemScan
			ps  podcastScan
			es  episodeScan
			mps progressScan
			row store.EpisodeRow
		)
		dest := append(is.dest(), ps.dest()...)
		dest = append(dest, es.dest()...)
		dest = append(dest, mps.dest()...)
		if err := rows.Scan(dest...); err != nil {
			return nil, 0, fmt.Errorf("scan episode: %w", err)
		}
		if row.Item, err = is.finish(); err != nil {
			return nil, 0, err
		}
		if row.Podcast, err = ps.finish(); err != nil {
			return nil, 0, err
		}
		if row.Episode, err = es.finish(); err != nil {
			return nil, 0, err
		}
		if row.Progress, err = mps.finish(); err != nil {
			return nil, 0, err
		}
		out = append(out, row)
		itemIDs = append(itemIDs, row.Item.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate episodes: %w", err)
	}

	if q.IncludeFeeds {
		feeds, err := s.feedsForItems(ctx, itemIDs)
		if err != nil {
			return nil, 0, err
		}
		for i := range out {
			out[i].Feeds = feeds[out[i].Item.ID]
		}
	}
	return out, total, nil
}

// CreatePodcast inserts a podcast media row.
func (s *Store) CreatePodcast(ctx context.Context, p *domain.Podcast) error {
	genres, err := encodeList(p.Genres)
	if err != nil {
		return fmt.Errorf("encode genres: %w", err)
	}
	tags, err := encodeList(p.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO podcasts (
			id, title, title_ignore_prefix, author, description, language,
			explicit, cover_path, genres, tags, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.TitleIgnorePrefix, nullString(p.Author), nullString(p.Description), nullString(p.Language),
		boolToInt(p.Explicit), nullString(p.CoverPath), genres, tags, formatTime(p.CreatedAt), formatTime(p.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("create podcast: %w", err)
	}
	return nil
}

// CreateEpisode inserts a podcast episode.
func (s *Store) CreateEpisode(ctx context.Context, e *domain.PodcastEpisode) error {
	audio, err := encodeJSON(e.AudioFile, e.AudioFile == nil)
	if err != nil {
		return fmt.Errorf("encode audio_file: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO podcast_episodes (
			id, podcast_id, title, season, episode, published_at,
			audio_file, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.PodcastID, e.Title, nullString(e.Season), nullString(e.Episode), nullTimeString(e.PublishedAt),
		audio, formatTime(e.CreatedAt), formatTime(e.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("create episode: %w", err)
	}
	return nil
}
