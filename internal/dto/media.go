package dto

import (
	"strings"

	"github.com/listenupapp/listenup-library/internal/domain"
	"github.com/listenupapp/listenup-library/internal/normalize"
	"github.com/listenupapp/listenup-library/internal/store"
)

// AuthorMinified is an author credited on a book.
type AuthorMinified struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// BookMetadata is the descriptive part of a book.
type BookMetadata struct {
	Title             string           `json:"title"`
	TitleIgnorePrefix string           `json:"titleIgnorePrefix"`
	Subtitle          string           `json:"subtitle,omitempty"`
	Authors           []AuthorMinified `json:"authors"`
	AuthorName        string           `json:"authorName"`   // "First Last, First Last"
	AuthorNameLF      string           `json:"authorNameLF"` // "Last, First, Last, First"
	Narrators         []string         `json:"narrators"`
	NarratorName      string           `json:"narratorName"`
	Series            []SeriesSequence `json:"series"`
	SeriesName        string           `json:"seriesName"` // "Name #1, Name #2"
	Genres            []string         `json:"genres"`
	PublishedYear     string           `json:"publishedYear,omitempty"`
	PublishedDate     string           `json:"publishedDate,omitempty"`
	Publisher         string           `json:"publisher,omitempty"`
	Description       string           `json:"description,omitempty"`
	ISBN              string           `json:"isbn,omitempty"`
	ASIN              string           `json:"asin,omitempty"`
	Language          string           `json:"language,omitempty"`
	Explicit          bool             `json:"explicit"`
	Abridged          bool             `json:"abridged"`
}

// BookMedia is the minified book media of a library item.
type BookMedia struct {
	ID          string       `json:"id"`
	Metadata    BookMetadata `json:"metadata"`
	CoverPath   string       `json:"coverPath,omitempty"`
	Tags        []string     `json:"tags"`
	Duration    float64      `json:"duration"` // seconds
	NumTracks   int          `json:"numTracks"`
	NumChapters int          `json:"numChapters"`
	HasEbook    bool         `json:"hasEbook"`
	EbookFormat string       `json:"ebookFormat,omitempty"`
	EbookOnly   bool         `json:"isEBookOnly"`
}

func newBookMedia(row *store.BookRow) *BookMedia {
	b := &row.Book

	authors := make([]AuthorMinified, len(row.Authors))
	names := make([]string, len(row.Authors))
	namesLF := make([]string, len(row.Authors))
	for i, a := range row.Authors {
		authors[i] = AuthorMinified{ID: a.ID, Name: a.Name}
		names[i] = a.Name
		namesLF[i] = normalize.LastFirst(a.Name)
	}

	series := make([]SeriesSequence, len(row.Series))
	seriesNames := make([]string, len(row.Series))
	for i, s := range row.Series {
		series[i] = SeriesSequence{ID: s.ID, Name: s.Name, Sequence: s.Sequence}
		seriesNames[i] = s.Name
		if s.Sequence != "" {
			seriesNames[i] += " #" + s.Sequence
		}
	}

	m := &BookMedia{
		ID: b.ID,
		Metadata: BookMetadata{
			Title:             b.Title,
			TitleIgnorePrefix: b.TitleIgnorePrefix,
			Subtitle:          b.Subtitle,
			Authors:           authors,
			AuthorName:        strings.Join(names, ", "),
			AuthorNameLF:      strings.Join(namesLF, ", "),
			Narrators:         nonNil(b.Narrators),
			NarratorName:      strings.Join(b.Narrators, ", "),
			Series:            series,
			SeriesName:        strings.Join(seriesNames, ", "),
			Genres:            nonNil(b.Genres),
			PublishedYear:     b.PublishedYear,
			PublishedDate:     b.PublishedDate,
			Publisher:         b.Publisher,
			Description:       b.Description,
			ISBN:              b.ISBN,
			ASIN:              b.ASIN,
			Language:          b.Language,
			Explicit:          b.Explicit,
			Abridged:          b.Abridged,
		},
		CoverPath:   b.CoverPath,
		Tags:        nonNil(b.Tags),
		Duration:    b.Duration,
		NumTracks:   len(b.AudioFiles),
		NumChapters: len(b.Chapters),
		HasEbook:    b.HasEbook(),
		EbookOnly:   b.IsEbookOnly(),
	}
	if b.EbookFile != nil {
		m.EbookFormat = b.EbookFile.Format
	}
	return m
}

// PodcastMetadata is the descriptive part of a podcast.
type PodcastMetadata struct {
	Title             string   `json:"title"`
	TitleIgnorePrefix string   `json:"titleIgnorePrefix"`
	Author            string   `json:"author,omitempty"`
	Description       string   `json:"description,omitempty"`
	Language          string   `json:"language,omitempty"`
	Explicit          bool     `json:"explicit"`
	Genres            []string `json:"genres"`
}

// PodcastMedia is the minified podcast media of a library item.
type PodcastMedia struct {
	ID          string          `json:"id"`
	Metadata    PodcastMetadata `json:"metadata"`
	CoverPath   string          `json:"coverPath,omitempty"`
	Tags        []string        `json:"tags"`
	NumEpisodes int             `json:"numEpisodes"`
}

func newPodcastMedia(p *domain.Podcast, numEpisodes int) *PodcastMedia {
	return &PodcastMedia{
		ID: p.ID,
		Metadata: PodcastMetadata{
			Title:             p.Title,
			TitleIgnorePrefix: p.TitleIgnorePrefix,
			Author:            p.Author,
			Description:       p.Description,
			Language:          p.Language,
			Explicit:          p.Explicit,
			Genres:            nonNil(p.Genres),
		},
		CoverPath:   p.CoverPath,
		Tags:        nonNil(p.Tags),
		NumEpisodes: numEpisodes,
	}
}

// Episode is a podcast episode shown on an episode shelf.
type Episode struct {
	ID          string  `json:"id"`
	PodcastID   string  `json:"podcastId"`
	Title       string  `json:"title"`
	Season      string  `json:"season,omitempty"`
	Episode     string  `json:"episode,omitempty"`
	PublishedAt int64   `json:"publishedAt,omitempty"` // Unix ms
	Duration    float64 `json:"duration"`
}

func newEpisode(e *domain.PodcastEpisode) *Episode {
	out := &Episode{
		ID:        e.ID,
		PodcastID: e.PodcastID,
		Title:     e.Title,
		Season:    e.Season,
		Episode:   e.Episode,
		Duration:  e.Duration(),
	}
	if e.PublishedAt != nil {
		out.PublishedAt = unixMilli(*e.PublishedAt)
	}
	return out
}

// nonNil keeps empty lists rendering as [] rather than null.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
