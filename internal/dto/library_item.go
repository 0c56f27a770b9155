// Package dto provides Data Transfer Objects for API responses.
//
// Listings are projected from store rows into the minified library item
// shape clients render directly. Join scaffolding (the filter's series join,
// the representative lookup) never leaks into output.
package dto

import (
	"time"

	"github.com/listenupapp/listenup-library/internal/domain"
	"github.com/listenupapp/listenup-library/internal/query"
	"github.com/listenupapp/listenup-library/internal/store"
)

// LibraryItem is the client-facing representation of a library item.
type LibraryItem struct {
	ID          string `json:"id"`
	LibraryID   string `json:"libraryId"`
	MediaType   string `json:"mediaType"`
	Path        string `json:"path"`
	RelPath     string `json:"relPath"`
	Size        int64  `json:"size"`
	AddedAt     int64  `json:"addedAt"`   // Unix ms
	UpdatedAt   int64  `json:"updatedAt"` // Unix ms
	MtimeMs     int64  `json:"mtimeMs"`
	BirthtimeMs int64  `json:"birthtimeMs"`
	IsMissing   bool   `json:"isMissing"`
	IsInvalid   bool   `json:"isInvalid"`
	NumFiles    int    `json:"numFiles"`

	// Media is a *BookMedia or a *PodcastMedia.
	Media any `json:"media"`

	// Series is the series the listing was filtered on, for showing the
	// sequence on the cover.
	Series *SeriesSequence `json:"series,omitempty"`

	// CollapsedSeries is set when this item stands in for a whole series.
	CollapsedSeries *CollapsedSeries `json:"collapsedSeries,omitempty"`

	RSSFeed       *RSSFeed  `json:"rssFeed,omitempty"`
	Progress      *Progress `json:"progress,omitempty"`
	RecentEpisode *Episode  `json:"recentEpisode,omitempty"`
}

// Book returns the item's book media, or nil for podcasts.
func (li *LibraryItem) Book() *BookMedia {
	b, _ := li.Media.(*BookMedia)
	return b
}

// Podcast returns the item's podcast media, or nil for books.
func (li *LibraryItem) Podcast() *PodcastMedia {
	p, _ := li.Media.(*PodcastMedia)
	return p
}

// SeriesSequence is a series with the book's position in it.
type SeriesSequence struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Sequence string `json:"sequence,omitempty"`
}

// CollapsedSeries describes the series a representative item stands for.
type CollapsedSeries struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	NameIgnorePrefix string `json:"nameIgnorePrefix"`
	Sequence         string `json:"sequence,omitempty"`
	NumBooks         int    `json:"numBooks"`
}

// RSSFeed is the minified form of an open feed.
type RSSFeed struct {
	ID         string `json:"id"`
	Slug       string `json:"slug"`
	EntityType string `json:"entityType"`
	EntityID   string `json:"entityId"`
	Title      string `json:"title"`
	FeedURL    string `json:"feedUrl"`
}

// Progress is the requesting user's progress on an item.
type Progress struct {
	ID            string  `json:"id"`
	MediaItemID   string  `json:"mediaItemId"`
	MediaItemType string  `json:"mediaItemType"`
	Duration      float64 `json:"duration"`
	CurrentTime   float64 `json:"currentTime"`
	EbookProgress float64 `json:"ebookProgress"`
	IsFinished    bool    `json:"isFinished"`
	FinishedAt    int64   `json:"finishedAt,omitempty"` // Unix ms
	LastUpdate    int64   `json:"lastUpdate"`           // Unix ms
}

// ProjectOptions controls what ProjectBooks attaches to each item.
type ProjectOptions struct {
	// Collapse marks representatives with collapsedSeries.
	Collapse *query.Collapse

	// IncludeRSSFeed attaches the first open feed as rssFeed.
	IncludeRSSFeed bool
}

// ProjectBooks reshapes book rows into client library items, keeping order.
func ProjectBooks(rows []store.BookRow, opts ProjectOptions) []*LibraryItem {
	out := make([]*LibraryItem, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		li := newLibraryItem(&row.Item, opts.IncludeRSSFeed, row.Feeds)
		li.Media = newBookMedia(row)

		if m := row.MatchedSeries; m != nil {
			li.Series = &SeriesSequence{ID: m.ID, Name: m.Name, Sequence: m.Sequence}
		}
		if opts.Collapse != nil {
			li.CollapsedSeries = collapsedSeries(row, opts.Collapse)
		}
		if row.Progress != nil {
			li.Progress = newProgress(row.Progress)
		}
		out = append(out, li)
	}
	return out
}

// ProjectPodcasts reshapes podcast rows into client library items.
func ProjectPodcasts(rows []store.PodcastRow, opts ProjectOptions) []*LibraryItem {
	out := make([]*LibraryItem, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		li := newLibraryItem(&row.Item, opts.IncludeRSSFeed, row.Feeds)
		li.Media = newPodcastMedia(&row.Podcast, row.NumEpisodes)
		out = append(out, li)
	}
	return out
}

// ProjectEpisodes reshapes episode rows into podcast library items carrying
// the episode as recentEpisode.
func ProjectEpisodes(rows []store.EpisodeRow, opts ProjectOptions) []*LibraryItem {
	out := make([]*LibraryItem, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		li := newLibraryItem(&row.Item, opts.IncludeRSSFeed, row.Feeds)
		li.Media = newPodcastMedia(&row.Podcast, 0)
		li.RecentEpisode = newEpisode(&row.Episode)
		if row.Progress != nil {
			li.Progress = newProgress(row.Progress)
		}
		out = append(out, li)
	}
	return out
}

func newLibraryItem(item *domain.LibraryItem, includeFeed bool, feeds []domain.Feed) *LibraryItem {
	li := &LibraryItem{
		ID:          item.ID,
		LibraryID:   item.LibraryID,
		MediaType:   string(item.MediaType),
		Path:        item.Path,
		RelPath:     item.RelPath,
		Size:        item.Size,
		AddedAt:     unixMilli(item.CreatedAt),
		UpdatedAt:   unixMilli(item.UpdatedAt),
		MtimeMs:     item.MtimeMs,
		BirthtimeMs: item.BirthtimeMs,
		IsMissing:   item.IsMissing,
		IsInvalid:   item.IsInvalid,
		NumFiles:    len(item.LibraryFiles),
	}
	if includeFeed && len(feeds) > 0 {
		f := feeds[0]
		li.RSSFeed = &RSSFeed{
			ID:         f.ID,
			Slug:       f.Slug,
			EntityType: f.EntityType,
			EntityID:   f.EntityID,
			Title:      f.Title,
			FeedURL:    f.FeedURL,
		}
	}
	return li
}

// collapsedSeries finds the membership through which row represents a
// series, if any.
func collapsedSeries(row *store.BookRow, c *query.Collapse) *CollapsedSeries {
	for _, ref := range row.Series {
		rep, ok := c.Representatives[ref.BookSeriesID]
		if !ok {
			continue
		}
		return &CollapsedSeries{
			ID:               rep.SeriesID,
			Name:             rep.Name,
			NameIgnorePrefix: rep.NameIgnorePrefix,
			Sequence:         rep.Sequence,
			NumBooks:         rep.NumBooks,
		}
	}
	return nil
}

func newProgress(p *domain.MediaProgress) *Progress {
	out := &Progress{
		ID:            p.ID,
		MediaItemID:   p.MediaItemID,
		MediaItemType: string(p.MediaItemType),
		Duration:      p.Duration,
		CurrentTime:   p.CurrentTime,
		EbookProgress: p.EbookProgress,
		IsFinished:    p.IsFinished,
		LastUpdate:    unixMilli(p.UpdatedAt),
	}
	if p.FinishedAt != nil {
		out.FinishedAt = unixMilli(*p.FinishedAt)
	}
	return out
}

func unixMilli(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
