package domain

import "time"

// Podcast is the media row of a podcast library item.
type Podcast struct {
	Syncable
	Title             string   `json:"title"`
	TitleIgnorePrefix string   `json:"title_ignore_prefix"`
	Author            string   `json:"author,omitempty"`
	Description       string   `json:"description,omitempty"`
	Language          string   `json:"language,omitempty"`
	Explicit          bool     `json:"explicit,omitempty"`
	CoverPath         string   `json:"cover_path,omitempty"`
	Genres            []string `json:"genres,omitempty"`
	Tags              []string `json:"tags,omitempty"`
}

// PodcastEpisode is one episode of a podcast.
type PodcastEpisode struct {
	Syncable
	PodcastID   string     `json:"podcast_id"`
	Title       string     `json:"title"`
	Season      string     `json:"season,omitempty"`
	Episode     string     `json:"episode,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	AudioFile   *AudioFile `json:"audio_file,omitempty"`
}

// Duration returns the episode length in seconds.
func (e *PodcastEpisode) Duration() float64 {
	if e.AudioFile == nil {
		return 0
	}
	return e.AudioFile.Duration
}
