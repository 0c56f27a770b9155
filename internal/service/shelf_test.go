package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/listenup-library/internal/domain"
	domainerrors "github.com/listenupapp/listenup-library/internal/errors"
	"github.com/listenupapp/listenup-library/internal/dto"
	"github.com/listenupapp/listenup-library/internal/query"
	"github.com/listenupapp/listenup-library/internal/store"
	"github.com/listenupapp/listenup-library/internal/validation"
)

func newShelfService(fs *fakeStore, opts Options) *ShelfService {
	svc := NewShelfService(fs, validation.New(), opts, testLogger())
	svc.now = func() time.Time { return testNow }
	return svc
}

func shelfIDs(shelves []*dto.Shelf) []string {
	ids := make([]string, len(shelves))
	for i, s := range shelves {
		ids[i] = s.ID
	}
	return ids
}

func ebookRow(id, title string) store.BookRow {
	row := bookRow(id, title)
	row.Book.AudioFiles = nil
	row.Book.EbookFile = &domain.EbookFile{Filename: id + ".epub", Format: "epub"}
	return row
}

func TestGetPersonalizedShelves_BookLibrary(t *testing.T) {
	fs := newFakeStore(bookLibrary())
	fs.booksByProgress = map[string][]store.BookRow{
		domain.ProgressInProgress: {bookRow("b1", "Dune"), ebookRow("b6", "Ebook Only")},
	}
	fs.books = []store.BookRow{bookRow("b4", "It")}
	fs.series = []store.SeriesRow{{
		Series: domain.Series{Syncable: domain.Syncable{ID: "s1"}, Name: "Middle Earth"},
		Books:  []store.BookRow{bookRow("b2", "The Hobbit")},
	}}
	svc := newShelfService(fs, Options{})

	shelves, err := svc.GetPersonalizedShelves(context.Background(), ShelfParams{
		LibraryID: "lib-books",
		User:      testUser(),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		ShelfContinueListening,
		ShelfContinueReading,
		ShelfRecentlyAdded,
		ShelfRecentSeries,
		ShelfDiscover,
	}, shelfIDs(shelves))

	listening := shelves[0]
	assert.Equal(t, "Continue Listening", listening.Label)
	assert.Equal(t, "LabelContinueListening", listening.LabelStringKey)
	assert.Equal(t, dto.ShelfTypeBook, listening.Type)
	assert.Equal(t, 1, listening.Total)
	items, ok := listening.Entities.([]*dto.LibraryItem)
	require.True(t, ok)
	assert.Equal(t, "li-b1", items[0].ID)

	reading := shelves[1]
	items, ok = reading.Entities.([]*dto.LibraryItem)
	require.True(t, ok)
	assert.Equal(t, "li-b6", items[0].ID)

	assert.Equal(t, dto.ShelfTypeSeries, shelves[3].Type)
	series, ok := shelves[3].Entities.([]*dto.Series)
	require.True(t, ok)
	assert.Equal(t, "s1", series[0].ID)
	assert.Len(t, series[0].Books, 1)

	assert.Equal(t, string(domain.MediaTypeBook), shelves[4].Type)

	for _, q := range fs.bookQueries {
		assert.Equal(t, DefaultShelfLimit, q.Limit)
		assert.Equal(t, "u1", q.UserID)
	}
}

func TestGetPersonalizedShelves_ProgressShelvesSortByLastUpdate(t *testing.T) {
	fs := newFakeStore(bookLibrary())
	svc := newShelfService(fs, Options{ShelfLimit: 4})

	_, err := svc.GetPersonalizedShelves(context.Background(), ShelfParams{LibraryID: "lib-books", User: testUser()})
	require.NoError(t, err)

	var progressQueries int
	for _, q := range fs.bookQueries {
		assert.Equal(t, 4, q.Limit)
		if q.Filter.Selector.Group != domain.FilterProgress {
			continue
		}
		progressQueries++
		assert.True(t, q.Filter.ProgressJoin)
		assert.Equal(t, "mp.updated_at DESC", q.Sort.OrderBy())
	}
	// One query per shelf: listening, reading, listen again, read again.
	assert.Equal(t, 4, progressQueries)
}

func TestGetPersonalizedShelves_ProgressShelfTotalsCountPastLimit(t *testing.T) {
	fs := newFakeStore(bookLibrary())
	fs.booksByProgress = map[string][]store.BookRow{
		domain.ProgressInProgress: {
			bookRow("b1", "Dune"),
			bookRow("b2", "The Hobbit"),
			ebookRow("b6", "Ebook Only"),
			bookRow("b3", "Emma"),
			bookRow("b4", "It"),
		},
	}
	svc := newShelfService(fs, Options{})

	shelves, err := svc.GetPersonalizedShelves(context.Background(), ShelfParams{
		LibraryID: "lib-books",
		User:      testUser(),
		Limit:     2,
	})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(shelves), 2)

	listening := shelves[0]
	require.Equal(t, ShelfContinueListening, listening.ID)
	assert.Equal(t, 4, listening.Total)
	items, ok := listening.Entities.([]*dto.LibraryItem)
	require.True(t, ok)
	require.Len(t, items, 2)
	assert.Equal(t, "li-b1", items[0].ID)
	assert.Equal(t, "li-b2", items[1].ID)

	reading := shelves[1]
	require.Equal(t, ShelfContinueReading, reading.ID)
	assert.Equal(t, 1, reading.Total)
	items, ok = reading.Entities.([]*dto.LibraryItem)
	require.True(t, ok)
	require.Len(t, items, 1)
	assert.Equal(t, "li-b6", items[0].ID)

	var splits []string
	for _, q := range fs.bookQueries {
		if q.Filter.Selector.Value != domain.ProgressInProgress {
			continue
		}
		require.Len(t, q.Filter.MediaWhere, 2)
		sql, _ := query.Render(q.Filter.MediaWhere[1])
		splits = append(splits, sql)
	}
	ebookOnly, _ := query.Render(query.EbookOnly())
	assert.ElementsMatch(t, []string{"NOT (" + ebookOnly + ")", ebookOnly}, splits)
}

func TestGetPersonalizedShelves_RequestLimitWins(t *testing.T) {
	fs := newFakeStore(bookLibrary())
	svc := newShelfService(fs, Options{ShelfLimit: 4})

	_, err := svc.GetPersonalizedShelves(context.Background(), ShelfParams{LibraryID: "lib-books", User: testUser(), Limit: 2})
	require.NoError(t, err)
	require.NotEmpty(t, fs.bookQueries)
	for _, q := range fs.bookQueries {
		assert.Equal(t, 2, q.Limit)
	}
}

func TestGetPersonalizedShelves_PodcastLibrary(t *testing.T) {
	published := testNow.Add(-time.Hour)
	episode := func(id string, p *domain.MediaProgress) store.EpisodeRow {
		return store.EpisodeRow{
			Item:     domain.LibraryItem{Syncable: domain.Syncable{ID: "li-p1"}, MediaType: domain.MediaTypePodcast},
			Podcast:  domain.Podcast{Syncable: domain.Syncable{ID: "p1"}, Title: "The Daily"},
			Episode:  domain.PodcastEpisode{Syncable: domain.Syncable{ID: id}, PodcastID: "p1", Title: id, PublishedAt: &published},
			Progress: p,
		}
	}

	fs := newFakeStore(podcastLibrary())
	fs.episodes = []store.EpisodeRow{
		episode("e1", &domain.MediaProgress{CurrentTime: 30}),
		episode("e2", nil),
		episode("e3", &domain.MediaProgress{IsFinished: true}),
	}
	fs.podcasts = []store.PodcastRow{{
		Item:    domain.LibraryItem{Syncable: domain.Syncable{ID: "li-p1"}, MediaType: domain.MediaTypePodcast},
		Podcast: domain.Podcast{Syncable: domain.Syncable{ID: "p1"}, Title: "The Daily"},
	}}
	svc := newShelfService(fs, Options{})

	shelves, err := svc.GetPersonalizedShelves(context.Background(), ShelfParams{LibraryID: "lib-pods", User: testUser()})
	require.NoError(t, err)

	assert.Equal(t, []string{
		ShelfContinueListening,
		ShelfNewestEpisodes,
		ShelfRecentlyAdded,
		ShelfListenAgain,
	}, shelfIDs(shelves))
	assert.Equal(t, dto.ShelfTypeEpisode, shelves[0].Type)
	assert.Equal(t, 1, shelves[0].Total)
	assert.Equal(t, 3, shelves[1].Total)
	assert.Equal(t, dto.ShelfTypePodcast, shelves[2].Type)
	assert.Equal(t, dto.ShelfTypeEpisode, shelves[3].Type)

	assert.Empty(t, fs.bookQueries)
	require.Len(t, fs.episodeQueries, 3)
	for _, q := range fs.episodeQueries {
		where, _ := query.Where(q.Permissions...)
		assert.Equal(t, "p.explicit = ?", where)
	}
}

func TestGetPersonalizedShelves_Errors(t *testing.T) {
	t.Run("no user", func(t *testing.T) {
		svc := newShelfService(newFakeStore(bookLibrary()), Options{})
		_, err := svc.GetPersonalizedShelves(context.Background(), ShelfParams{LibraryID: "lib-books"})
		assert.True(t, domainerrors.Is(err, domainerrors.ErrUnauthorized))
	})

	t.Run("unknown library", func(t *testing.T) {
		svc := newShelfService(newFakeStore(), Options{})
		_, err := svc.GetPersonalizedShelves(context.Background(), ShelfParams{LibraryID: "nope", User: testUser()})
		assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
	})

	t.Run("limit out of range", func(t *testing.T) {
		svc := newShelfService(newFakeStore(bookLibrary()), Options{})
		_, err := svc.GetPersonalizedShelves(context.Background(), ShelfParams{LibraryID: "lib-books", User: testUser(), Limit: 500})
		assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
	})

	t.Run("failing shelf fails the request", func(t *testing.T) {
		fs := newFakeStore(bookLibrary())
		fs.err = errors.New("disk I/O error")
		svc := newShelfService(fs, Options{})
		shelves, err := svc.GetPersonalizedShelves(context.Background(), ShelfParams{LibraryID: "lib-books", User: testUser()})
		require.Error(t, err)
		assert.Nil(t, shelves)
		assert.ErrorIs(t, err, fs.err)
	})
}
