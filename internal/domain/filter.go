package domain

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
)

// FilterGroup names the dimension a library listing is filtered on.
type FilterGroup string

// Filter groups.
const (
	FilterNone       FilterGroup = ""
	FilterProgress   FilterGroup = "progress"
	FilterSeries     FilterGroup = "series"
	FilterAbridged   FilterGroup = "abridged"
	FilterGenres     FilterGroup = "genres"
	FilterTags       FilterGroup = "tags"
	FilterNarrators  FilterGroup = "narrators"
	FilterPublishers FilterGroup = "publishers"
	FilterLanguages  FilterGroup = "languages"
	FilterTracks     FilterGroup = "tracks"
	FilterEbooks     FilterGroup = "ebooks"
	FilterMissing    FilterGroup = "missing"
	FilterAuthors    FilterGroup = "authors"
	FilterIssues     FilterGroup = "issues"
	FilterFeedOpen   FilterGroup = "feed-open"
	FilterRecent     FilterGroup = "recent"
)

// Values of the progress filter group.
const (
	ProgressNotFinished     = "not-finished"
	ProgressNotStarted      = "not-started"
	ProgressFinished        = "finished"
	ProgressInProgress      = "in-progress"
	ProgressAudioInProgress = "audio-in-progress"
	ProgressEbookInProgress = "ebook-in-progress"
	ProgressEbookFinished   = "ebook-finished"
)

// NoSeries is the series filter value selecting books outside any series.
const NoSeries = "no-series"

// Sort keys accepted by library listings.
const (
	SortAddedAt       = "addedAt"
	SortSize          = "size"
	SortBirthtime     = "birthtimeMs"
	SortMtime         = "mtimeMs"
	SortDuration      = "media.duration"
	SortPublishedYear = "media.metadata.publishedYear"
	SortAuthorName    = "media.metadata.authorName"
	SortAuthorNameLF  = "media.metadata.authorNameLF"
	SortTitle         = "media.metadata.title"
	SortSequence      = "sequence"
	SortProgress      = "progress"
)

// IncludeRSSFeed asks listings to attach the item's open RSS feed.
const IncludeRSSFeed = "rssfeed"

// FilterSelector is a (group, value) pair restricting a library listing.
type FilterSelector struct {
	Group FilterGroup `json:"group"`
	Value string      `json:"value"`
}

// IsZero reports whether the selector applies no filter.
func (f FilterSelector) IsZero() bool {
	return f.Group == FilterNone
}

// String renders the selector in its wire form, "group.base64(value)".
func (f FilterSelector) String() string {
	if f.IsZero() {
		return ""
	}
	return string(f.Group) + "." + url.QueryEscape(base64.StdEncoding.EncodeToString([]byte(f.Value)))
}

// ParseFilter decodes a wire filter of the form "group.base64(value)".
// Groups that take no value may omit the dot. An empty string is no filter.
func ParseFilter(raw string) (FilterSelector, error) {
	if raw == "" {
		return FilterSelector{}, nil
	}
	group, encoded, found := strings.Cut(raw, ".")
	if !found {
		return FilterSelector{Group: FilterGroup(group)}, nil
	}
	unescaped, err := url.PathUnescape(encoded)
	if err != nil {
		return FilterSelector{}, fmt.Errorf("unescape filter value: %w", err)
	}
	value, err := base64.StdEncoding.DecodeString(unescaped)
	if err != nil {
		return FilterSelector{}, fmt.Errorf("decode filter value: %w", err)
	}
	return FilterSelector{Group: FilterGroup(group), Value: string(value)}, nil
}
