package domain

// MediaType identifies the kind of media a library or library item holds.
type MediaType string

const (
	// MediaTypeBook is an audiobook and/or ebook.
	MediaTypeBook MediaType = "book"
	// MediaTypePodcast is a podcast with episodes.
	MediaTypePodcast MediaType = "podcast"
)

// Library is a named collection of library items of a single media type.
type Library struct {
	Syncable
	Name      string    `json:"name"`
	MediaType MediaType `json:"media_type"`
}

// IsBook reports whether the library holds books.
func (l *Library) IsBook() bool {
	return l.MediaType == MediaTypeBook
}

// IsPodcast reports whether the library holds podcasts.
func (l *Library) IsPodcast() bool {
	return l.MediaType == MediaTypePodcast
}
