package dto

import "github.com/listenupapp/listenup-library/internal/store"

// Shelf types.
const (
	ShelfTypeBook    = "book"
	ShelfTypePodcast = "podcast"
	ShelfTypeEpisode = "episode"
	ShelfTypeSeries  = "series"
	ShelfTypeAuthors = "authors"
)

// Shelf is one personalized home-page row.
type Shelf struct {
	ID             string `json:"id"`
	Label          string `json:"label"`
	LabelStringKey string `json:"labelStringKey"`
	Type           string `json:"type"`

	// Entities is []*LibraryItem, []*Series or []*Author depending on Type.
	Entities any `json:"entities"`
	Total    int `json:"total"`
}

// Series is a series entity on the recent-series shelf.
type Series struct {
	ID               string         `json:"id"`
	LibraryID        string         `json:"libraryId"`
	Name             string         `json:"name"`
	NameIgnorePrefix string         `json:"nameIgnorePrefix"`
	Description      string         `json:"description,omitempty"`
	AddedAt          int64          `json:"addedAt"`
	UpdatedAt        int64          `json:"updatedAt"`
	Books            []*LibraryItem `json:"books"`
}

// Author is an author entity on the newest-authors shelf.
type Author struct {
	ID          string `json:"id"`
	LibraryID   string `json:"libraryId"`
	Name        string `json:"name"`
	LastFirst   string `json:"lastFirst"`
	Description string `json:"description,omitempty"`
	AddedAt     int64  `json:"addedAt"`
	UpdatedAt   int64  `json:"updatedAt"`
	NumBooks    int    `json:"numBooks"`
}

// ProjectSeries reshapes recent-series rows.
func ProjectSeries(rows []store.SeriesRow, opts ProjectOptions) []*Series {
	out := make([]*Series, 0, len(rows))
	for _, r := range rows {
		out = append(out, &Series{
			ID:               r.Series.ID,
			LibraryID:        r.Series.LibraryID,
			Name:             r.Series.Name,
			NameIgnorePrefix: r.Series.NameIgnorePrefix,
			Description:      r.Series.Description,
			AddedAt:          unixMilli(r.Series.CreatedAt),
			UpdatedAt:        unixMilli(r.Series.UpdatedAt),
			Books:            ProjectBooks(r.Books, ProjectOptions{IncludeRSSFeed: opts.IncludeRSSFeed}),
		})
	}
	return out
}

// ProjectAuthors reshapes newest-authors rows.
func ProjectAuthors(rows []store.AuthorRow) []*Author {
	out := make([]*Author, 0, len(rows))
	for _, r := range rows {
		out = append(out, &Author{
			ID:          r.Author.ID,
			LibraryID:   r.Author.LibraryID,
			Name:        r.Author.Name,
			LastFirst:   r.Author.LastFirst,
			Description: r.Author.Description,
			AddedAt:     unixMilli(r.Author.CreatedAt),
			UpdatedAt:   unixMilli(r.Author.UpdatedAt),
			NumBooks:    r.NumBooks,
		})
	}
	return out
}
