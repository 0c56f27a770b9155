package query

import (
	"cmp"
	"slices"

	"github.com/listenupapp/listenup-library/internal/domain"
)

// SeriesCandidate is one series found by the collapse preliminary query,
// with the member books that passed the listing's predicates.
type SeriesCandidate struct {
	SeriesID         string
	Name             string
	NameIgnorePrefix string
	NumBooks         int
	Books            []CandidateBook
}

// CandidateBook is a series member that passed the listing's predicates.
type CandidateBook struct {
	BookSeriesID string
	BookID       string
	Sequence     string
}

// Representative is the book chosen to stand in for its series.
type Representative struct {
	BookSeriesID     string
	BookID           string
	SeriesID         string
	Name             string
	NameIgnorePrefix string
	Sequence         string
	NumBooks         int
}

// Collapse is the outcome of series collapsing for one listing.
type Collapse struct {
	// Exclude holds the books hidden behind a representative, sorted.
	Exclude []string

	// Representatives is keyed by the book_series row of the representative.
	Representatives map[string]Representative
}

// RepresentativeRows returns the representatives' book_series ids, sorted.
func (c Collapse) RepresentativeRows() []string {
	ids := make([]string, 0, len(c.Representatives))
	for id := range c.Representatives {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// ResolveCollapse picks one representative per series and the set of books
// to exclude from the listing.
//
// Series are visited in ascending id order. Within a series books are
// ordered by numeric sequence (non-numeric last) then book id, and the first
// book not already representing an earlier series is chosen. A book that
// represents any series is never excluded.
func ResolveCollapse(candidates []SeriesCandidate) Collapse {
	series := slices.Clone(candidates)
	slices.SortFunc(series, func(a, b SeriesCandidate) int {
		return cmp.Compare(a.SeriesID, b.SeriesID)
	})

	reps := make(map[string]Representative)
	representing := make(map[string]bool)
	grouped := make(map[string]bool)

	for _, s := range series {
		books := slices.Clone(s.Books)
		slices.SortStableFunc(books, func(a, b CandidateBook) int {
			if c := domain.CompareSequence(a.Sequence, b.Sequence); c != 0 {
				return c
			}
			return cmp.Compare(a.BookID, b.BookID)
		})

		found := false
		for _, book := range books {
			grouped[book.BookID] = true
			if found || representing[book.BookID] {
				continue
			}
			found = true
			representing[book.BookID] = true
			reps[book.BookSeriesID] = Representative{
				BookSeriesID:     book.BookSeriesID,
				BookID:           book.BookID,
				SeriesID:         s.SeriesID,
				Name:             s.Name,
				NameIgnorePrefix: s.NameIgnorePrefix,
				Sequence:         book.Sequence,
				NumBooks:         s.NumBooks,
			}
		}
	}

	exclude := make([]string, 0, len(grouped))
	for id := range grouped {
		if !representing[id] {
			exclude = append(exclude, id)
		}
	}
	slices.Sort(exclude)

	return Collapse{Exclude: exclude, Representatives: reps}
}
