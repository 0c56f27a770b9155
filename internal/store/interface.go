// Package store defines the persistence interface for the library query engine.
package store

import (
	"context"

	"github.com/listenupapp/listenup-library/internal/domain"
	"github.com/listenupapp/listenup-library/internal/query"
)

// Store defines the persistence operations the query engine relies on.
type Store interface {
	// Lifecycle
	Close() error
	Ping(ctx context.Context) error

	// Lookups
	GetLibrary(ctx context.Context, id string) (*domain.Library, error)
	ListLibraries(ctx context.Context) ([]*domain.Library, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)

	// Listings
	FindBooks(ctx context.Context, q query.BookQuery) ([]BookRow, int, error)
	FindCollapseCandidates(ctx context.Context, q query.BookQuery) ([]query.SeriesCandidate, error)
	FindPodcasts(ctx context.Context, q query.PodcastQuery) ([]PodcastRow, int, error)

	// Shelves
	FindContinueSeries(ctx context.Context, q query.ShelfQuery) ([]BookRow, int, error)
	FindDiscoverBooks(ctx context.Context, q query.ShelfQuery) ([]BookRow, int, error)
	FindRecentSeries(ctx context.Context, q query.ShelfQuery) ([]SeriesRow, int, error)
	FindNewestAuthors(ctx context.Context, q query.ShelfQuery) ([]AuthorRow, int, error)
	FindEpisodes(ctx context.Context, q query.EpisodeQuery) ([]EpisodeRow, int, error)
}

// Writer populates the read model. The query engine never mutates data;
// fixtures, seeding and the ingest side use these.
type Writer interface {
	CreateLibrary(ctx context.Context, lib *domain.Library) error
	CreateUser(ctx context.Context, user *domain.User) error
	CreateLibraryItem(ctx context.Context, item *domain.LibraryItem) error
	CreateBook(ctx context.Context, book *domain.Book) error
	CreateAuthor(ctx context.Context, author *domain.Author) error
	CreateSeries(ctx context.Context, series *domain.Series) error
	AddBookAuthor(ctx context.Context, bookID, authorID string) error
	AddBookSeries(ctx context.Context, bookID, seriesID, sequence string) error
	UpsertProgress(ctx context.Context, p *domain.MediaProgress) error
	CreateFeed(ctx context.Context, feed *domain.Feed) error
	CreatePodcast(ctx context.Context, podcast *domain.Podcast) error
	CreateEpisode(ctx context.Context, episode *domain.PodcastEpisode) error
}
