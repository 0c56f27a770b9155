package domain

import "time"

// MediaItemType identifies what a progress row tracks.
type MediaItemType string

const (
	// MediaItemBook tracks progress on a book.
	MediaItemBook MediaItemType = "book"
	// MediaItemPodcastEpisode tracks progress on a podcast episode.
	MediaItemPodcastEpisode MediaItemType = "podcastEpisode"
)

// MediaProgress is a user's listening/reading state for one media item.
type MediaProgress struct {
	Syncable
	UserID        string        `json:"user_id"`
	MediaItemID   string        `json:"media_item_id"`
	MediaItemType MediaItemType `json:"media_item_type"`
	Duration      float64       `json:"duration"`
	CurrentTime   float64       `json:"current_time"`
	EbookProgress float64       `json:"ebook_progress"`
	IsFinished    bool          `json:"is_finished"`
	FinishedAt    *time.Time    `json:"finished_at,omitempty"`
}

// InProgress reports whether the user has started but not finished the item.
func (p *MediaProgress) InProgress() bool {
	return !p.IsFinished && (p.CurrentTime > 0 || p.EbookProgress > 0)
}
