package store

import (
	"time"

	"github.com/listenupapp/listenup-library/internal/domain"
)

// AuthorRef is an author joined onto a book.
type AuthorRef struct {
	ID   string
	Name string
}

// SeriesRef is a series joined onto a book through its book_series row.
type SeriesRef struct {
	BookSeriesID     string
	ID               string
	Name             string
	NameIgnorePrefix string
	Sequence         string
}

// BookRow is a book library item with its joined relations, as returned by
// the listing queries. It still carries join scaffolding; dto projects it.
type BookRow struct {
	Item    domain.LibraryItem
	Book    domain.Book
	Authors []AuthorRef
	Series  []SeriesRef

	// MatchedSeries is the single series the query joined on, if any.
	MatchedSeries *SeriesRef

	// Progress is the requesting user's progress when the query joined it.
	Progress *domain.MediaProgress

	Feeds []domain.Feed
}

// PodcastRow is a podcast library item.
type PodcastRow struct {
	Item        domain.LibraryItem
	Podcast     domain.Podcast
	NumEpisodes int
	Feeds       []domain.Feed
}

// EpisodeRow is a podcast episode with its owning item.
type EpisodeRow struct {
	Item     domain.LibraryItem
	Podcast  domain.Podcast
	Episode  domain.PodcastEpisode
	Progress *domain.MediaProgress
	Feeds    []domain.Feed
}

// SeriesRow is a series with the visible books it contains.
type SeriesRow struct {
	Series        domain.Series
	LatestAddedAt time.Time
	Books         []BookRow
}

// AuthorRow is an author with the number of visible books credited to them.
type AuthorRow struct {
	Author   domain.Author
	NumBooks int
}
