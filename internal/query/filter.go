package query

import (
	"time"

	"github.com/listenupapp/listenup-library/internal/domain"
)

// RecentWindow is how far back the "recent" filter group reaches.
const RecentWindow = 60 * 24 * time.Hour

// timestampLayout is fixed-width so stored timestamps compare correctly as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Timestamp renders t in the text form timestamps are stored in.
func Timestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// ParseTimestamp parses a stored timestamp.
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// Filter is what a filter selector contributes to a listing query.
type Filter struct {
	Selector domain.FilterSelector

	// ItemWhere restricts library item columns (alias li).
	ItemWhere []Predicate

	// MediaWhere restricts media columns (alias b or p) and progress
	// columns (alias mp).
	MediaWhere []Predicate

	// ProgressJoin left-joins the requesting user's progress row as mp.
	ProgressJoin bool

	// SeriesID inner-joins the book's membership in that series as fbs/fs.
	SeriesID string
}

// BuildBookFilter translates a selector into predicates over the book graph.
// Unknown groups and values restrict nothing. Progress filters need a user;
// without one they restrict nothing.
func BuildBookFilter(sel domain.FilterSelector, userID string, now time.Time) Filter {
	f := Filter{Selector: sel}
	v := sel.Value

	switch sel.Group {
	case domain.FilterProgress:
		if userID == "" {
			break
		}
		f.ProgressJoin = true
		if p := progressPredicate(v); p != nil {
			f.MediaWhere = append(f.MediaWhere, p)
		}
	case domain.FilterSeries:
		switch v {
		case "":
		case domain.NoSeries:
			f.MediaWhere = append(f.MediaWhere, noSeries())
		default:
			f.SeriesID = v
		}
	case domain.FilterAbridged:
		f.MediaWhere = append(f.MediaWhere, IsTrue("b.abridged"))
	case domain.FilterGenres, domain.FilterTags, domain.FilterNarrators:
		if v != "" {
			f.MediaWhere = append(f.MediaWhere, ArrayContainsAny("b."+string(sel.Group), []string{v}))
		}
	case domain.FilterPublishers:
		f.MediaWhere = append(f.MediaWhere, Eq("b.publisher", v))
	case domain.FilterLanguages:
		f.MediaWhere = append(f.MediaWhere, Eq("b.language", v))
	case domain.FilterTracks:
		switch v {
		case "none":
			f.MediaWhere = append(f.MediaWhere, EmptyArray("b.audio_files"))
		case "multi":
			f.MediaWhere = append(f.MediaWhere, ArrayLen("b.audio_files", OpGt, 1))
		default:
			f.MediaWhere = append(f.MediaWhere, ArrayLen("b.audio_files", OpEq, 1))
		}
	case domain.FilterEbooks:
		switch v {
		case "ebook":
			f.MediaWhere = append(f.MediaWhere, NotNull("b.ebook_file"))
		case "no-ebook":
			f.MediaWhere = append(f.MediaWhere, IsNull("b.ebook_file"))
		case "supplementary":
			f.ItemWhere = append(f.ItemWhere, Contains("li.library_files", `"isSupplementary":true`))
		}
	case domain.FilterMissing:
		if p := missingPredicate(v); p != nil {
			f.MediaWhere = append(f.MediaWhere, p)
		}
	case domain.FilterAuthors:
		if v != "" {
			f.MediaWhere = append(f.MediaWhere,
				Exists("SELECT 1 FROM book_authors xba WHERE xba.book_id = b.id AND xba.author_id = ?", v))
		}
	case domain.FilterIssues:
		f.ItemWhere = append(f.ItemWhere, issues())
	case domain.FilterRecent:
		f.ItemWhere = append(f.ItemWhere, recent(now))
	case domain.FilterFeedOpen:
		f.ItemWhere = append(f.ItemWhere, feedOpen())
	}

	return f
}

// BuildPodcastFilter translates a selector into predicates over podcasts.
// Podcast listings support the genres, tags, languages, issues, recent and
// feed-open groups.
func BuildPodcastFilter(sel domain.FilterSelector, now time.Time) Filter {
	f := Filter{Selector: sel}
	v := sel.Value

	switch sel.Group {
	case domain.FilterGenres, domain.FilterTags:
		if v != "" {
			f.MediaWhere = append(f.MediaWhere, ArrayContainsAny("p."+string(sel.Group), []string{v}))
		}
	case domain.FilterLanguages:
		f.MediaWhere = append(f.MediaWhere, Eq("p.language", v))
	case domain.FilterIssues:
		f.ItemWhere = append(f.ItemWhere, issues())
	case domain.FilterRecent:
		f.ItemWhere = append(f.ItemWhere, recent(now))
	case domain.FilterFeedOpen:
		f.ItemWhere = append(f.ItemWhere, feedOpen())
	}

	return f
}

func progressPredicate(value string) Predicate {
	switch value {
	case domain.ProgressNotFinished:
		return NullOrFalse("mp.is_finished")
	case domain.ProgressNotStarted:
		return And(
			NullOrZero("mp.current_seconds"),
			NullOrZero("mp.ebook_progress"),
			NullOrFalse("mp.is_finished"),
		)
	case domain.ProgressFinished:
		return IsTrue("mp.is_finished")
	case domain.ProgressInProgress:
		return And(
			Or(Gt("mp.current_seconds", 0), Gt("mp.ebook_progress", 0)),
			IsFalse("mp.is_finished"),
		)
	case domain.ProgressAudioInProgress:
		return And(Gt("mp.current_seconds", 0), IsFalse("mp.is_finished"))
	case domain.ProgressEbookInProgress:
		return And(
			EmptyArray("b.audio_files"),
			Gt("mp.ebook_progress", 0),
			IsFalse("mp.is_finished"),
		)
	case domain.ProgressEbookFinished:
		return And(
			EmptyArray("b.audio_files"),
			IsTrue("mp.is_finished"),
			NotNull("b.ebook_file"),
		)
	}
	return nil
}

// missingColumns maps "missing" values to the scalar book column they test.
var missingColumns = map[string]string{
	"asin":          "b.asin",
	"isbn":          "b.isbn",
	"subtitle":      "b.subtitle",
	"publishedYear": "b.published_year",
	"description":   "b.description",
	"publisher":     "b.publisher",
	"language":      "b.language",
	"cover":         "b.cover_path",
}

func missingPredicate(value string) Predicate {
	if col, ok := missingColumns[value]; ok {
		return Blank(col)
	}
	switch value {
	case "genres", "tags", "chapters":
		return EmptyArray("b." + value)
	case "narrator", "narrators":
		return EmptyArray("b.narrators")
	case "authors":
		return NotExists("SELECT 1 FROM book_authors xba WHERE xba.book_id = b.id")
	case "series":
		return noSeries()
	}
	return nil
}

// EbookOnly matches books that have an ebook and no audio tracks.
func EbookOnly() Predicate {
	return And(EmptyArray("b.audio_files"), NotNull("b.ebook_file"))
}

func noSeries() Predicate {
	return NotExists("SELECT 1 FROM book_series xbs WHERE xbs.book_id = b.id")
}

func issues() Predicate {
	return Or(IsTrue("li.is_missing"), IsTrue("li.is_invalid"))
}

func recent(now time.Time) Predicate {
	return Gte("li.created_at", Timestamp(now.Add(-RecentWindow)))
}

func feedOpen() Predicate {
	return Exists("SELECT 1 FROM feeds xf WHERE xf.library_item_id = li.id")
}
