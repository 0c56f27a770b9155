package service

import (
	"context"
	"sync"

	"github.com/listenupapp/listenup-library/internal/domain"
	"github.com/listenupapp/listenup-library/internal/query"
	"github.com/listenupapp/listenup-library/internal/store"
)

// fakeStore serves canned rows and records the queries it receives.
type fakeStore struct {
	mu sync.Mutex

	libraries map[string]*domain.Library
	err       error

	books      []store.BookRow
	candidates []query.SeriesCandidate
	podcasts   []store.PodcastRow
	episodes   []store.EpisodeRow
	series     []store.SeriesRow
	authors    []store.AuthorRow

	// booksByProgress answers FindBooks for progress-filtered queries.
	booksByProgress map[string][]store.BookRow

	bookQueries      []query.BookQuery
	candidateQueries []query.BookQuery
	podcastQueries   []query.PodcastQuery
	episodeQueries   []query.EpisodeQuery
}

func newFakeStore(libs ...*domain.Library) *fakeStore {
	f := &fakeStore{libraries: map[string]*domain.Library{}}
	for _, lib := range libs {
		f.libraries[lib.ID] = lib
	}
	return f
}

var _ store.Store = (*fakeStore)(nil)

func (f *fakeStore) Close() error                   { return nil }
func (f *fakeStore) Ping(ctx context.Context) error { return nil }

func (f *fakeStore) GetLibrary(ctx context.Context, id string) (*domain.Library, error) {
	lib, ok := f.libraries[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return lib, nil
}

func (f *fakeStore) ListLibraries(ctx context.Context) ([]*domain.Library, error) {
	out := make([]*domain.Library, 0, len(f.libraries))
	for _, lib := range f.libraries {
		out = append(out, lib)
	}
	return out, nil
}

func (f *fakeStore) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return nil, store.ErrNotFound
}

func (f *fakeStore) FindBooks(ctx context.Context, q query.BookQuery) ([]store.BookRow, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookQueries = append(f.bookQueries, q)
	if f.err != nil {
		return nil, 0, f.err
	}
	if q.Filter.Selector.Group != domain.FilterProgress {
		return f.books, len(f.books), nil
	}

	rows := splitByFormat(f.booksByProgress[q.Filter.Selector.Value], q.Filter.MediaWhere)
	total := len(rows)
	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}
	return rows, total, nil
}

// splitByFormat applies a trailing ebook-only predicate, or its negation,
// to canned rows.
func splitByFormat(rows []store.BookRow, where []query.Predicate) []store.BookRow {
	if len(where) == 0 {
		return rows
	}
	last, _ := query.Render(where[len(where)-1])
	ebookOnly, _ := query.Render(query.EbookOnly())
	notEbookOnly, _ := query.Render(query.Not(query.EbookOnly()))
	if last != ebookOnly && last != notEbookOnly {
		return rows
	}

	var out []store.BookRow
	for _, row := range rows {
		if row.Book.IsEbookOnly() == (last == ebookOnly) {
			out = append(out, row)
		}
	}
	return out
}

func (f *fakeStore) FindCollapseCandidates(ctx context.Context, q query.BookQuery) ([]query.SeriesCandidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.candidateQueries = append(f.candidateQueries, q)
	return f.candidates, f.err
}

func (f *fakeStore) FindPodcasts(ctx context.Context, q query.PodcastQuery) ([]store.PodcastRow, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.podcastQueries = append(f.podcastQueries, q)
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.podcasts, len(f.podcasts), nil
}

func (f *fakeStore) FindContinueSeries(ctx context.Context, q query.ShelfQuery) ([]store.BookRow, int, error) {
	return nil, 0, f.err
}

func (f *fakeStore) FindDiscoverBooks(ctx context.Context, q query.ShelfQuery) ([]store.BookRow, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.books, len(f.books), nil
}

func (f *fakeStore) FindRecentSeries(ctx context.Context, q query.ShelfQuery) ([]store.SeriesRow, int, error) {
	return f.series, len(f.series), f.err
}

func (f *fakeStore) FindNewestAuthors(ctx context.Context, q query.ShelfQuery) ([]store.AuthorRow, int, error) {
	return f.authors, len(f.authors), f.err
}

func (f *fakeStore) FindEpisodes(ctx context.Context, q query.EpisodeQuery) ([]store.EpisodeRow, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.episodeQueries = append(f.episodeQueries, q)
	if f.err != nil {
		return nil, 0, f.err
	}
	var rows []store.EpisodeRow
	for _, r := range f.episodes {
		finished := r.Progress != nil && r.Progress.IsFinished
		switch q.Progress {
		case query.EpisodesInProgress:
			if r.Progress == nil || finished {
				continue
			}
		case query.EpisodesFinished:
			if !finished {
				continue
			}
		}
		rows = append(rows, r)
	}
	return rows, len(rows), nil
}
