// Package domain contains the core entities of a media library and the
// vocabulary used to filter and sort them.
package domain

// Book is the media row of a book library item.
type Book struct {
	Syncable
	Title             string      `json:"title"`
	TitleIgnorePrefix string      `json:"title_ignore_prefix"`
	Subtitle          string      `json:"subtitle,omitempty"`
	PublishedYear     string      `json:"published_year,omitempty"`
	PublishedDate     string      `json:"published_date,omitempty"`
	Publisher         string      `json:"publisher,omitempty"`
	Description       string      `json:"description,omitempty"`
	ISBN              string      `json:"isbn,omitempty"`
	ASIN              string      `json:"asin,omitempty"`
	Language          string      `json:"language,omitempty"`
	Explicit          bool        `json:"explicit,omitempty"`
	Abridged          bool        `json:"abridged,omitempty"`
	CoverPath         string      `json:"cover_path,omitempty"`
	Duration          float64     `json:"duration"` // seconds
	Narrators         []string    `json:"narrators,omitempty"`
	Genres            []string    `json:"genres,omitempty"`
	Tags              []string    `json:"tags,omitempty"`
	AudioFiles        []AudioFile `json:"audio_files,omitempty"`
	EbookFile         *EbookFile  `json:"ebook_file,omitempty"`
	Chapters          []Chapter   `json:"chapters,omitempty"`
}

// AudioFile is a single audio track of a book or podcast episode.
type AudioFile struct {
	Index    int     `json:"index"`
	Ino      string  `json:"ino"`
	Filename string  `json:"filename"`
	Format   string  `json:"format"`
	Duration float64 `json:"duration"`
	Size     int64   `json:"size"`
}

// EbookFile is the primary ebook of a book.
type EbookFile struct {
	Ino      string `json:"ino"`
	Filename string `json:"filename"`
	Format   string `json:"format"`
	Size     int64  `json:"size"`
}

// Chapter is a chapter marker within a book.
type Chapter struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Title string  `json:"title"`
}

// HasEbook reports whether the book has a primary ebook file.
func (b *Book) HasEbook() bool {
	return b.EbookFile != nil
}

// IsEbookOnly reports whether the book is readable but not listenable.
func (b *Book) IsEbookOnly() bool {
	return len(b.AudioFiles) == 0 && b.EbookFile != nil
}
