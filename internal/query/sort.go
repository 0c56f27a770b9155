package query

import (
	"strings"

	"github.com/listenupapp/listenup-library/internal/domain"
)

// AuthorNameMode selects the synthesized author_name column.
type AuthorNameMode int

const (
	// AuthorNameNone omits the column.
	AuthorNameNone AuthorNameMode = iota
	// AuthorNameFirstLast concatenates authors.name.
	AuthorNameFirstLast
	// AuthorNameLastFirst concatenates authors.last_first.
	AuthorNameLastFirst
)

// Nulls places NULL values in an ordering term.
type Nulls int

// Null placements.
const (
	NullsDefault Nulls = iota
	NullsFirst
	NullsLast
)

// SortTerm is one ORDER BY term.
type SortTerm struct {
	Expr   string
	Desc   bool
	NoCase bool
	Nulls  Nulls
}

// SQL renders the term.
func (t SortTerm) SQL() string {
	var sb strings.Builder
	sb.WriteString(t.Expr)
	if t.NoCase {
		sb.WriteString(" COLLATE NOCASE")
	}
	if t.Desc {
		sb.WriteString(" DESC")
	} else {
		sb.WriteString(" ASC")
	}
	switch t.Nulls {
	case NullsFirst:
		sb.WriteString(" NULLS FIRST")
	case NullsLast:
		sb.WriteString(" NULLS LAST")
	}
	return sb.String()
}

// Sort is a resolved ordering plus the synthesized columns it depends on.
type Sort struct {
	Terms []SortTerm

	// AuthorName asks the store to select the author_name column.
	AuthorName AuthorNameMode

	// DisplayTitle asks the store to select the display_title column.
	DisplayTitle bool
}

// OrderBy renders the terms joined for an ORDER BY clause.
func (s Sort) OrderBy() string {
	parts := make([]string, len(s.Terms))
	for i, t := range s.Terms {
		parts[i] = t.SQL()
	}
	return strings.Join(parts, ", ")
}

// SortRequest is the caller's ordering request for a book listing.
type SortRequest struct {
	SortBy         string
	Desc           bool
	CollapseSeries bool

	// IgnorePrefix sorts titles on their prefix-stripped form.
	IgnorePrefix bool

	// SeriesJoin and ProgressJoin report which filter joins are present;
	// sequence and progress sorts fall back to title without them.
	SeriesJoin   bool
	ProgressJoin bool
}

// SequenceExpr is the numeric value of a sequence column, NULL when the
// sequence is not a plain decimal. It agrees with domain.ParseSequence.
func SequenceExpr(col string) string {
	t := "trim(" + col + ", ' ')"
	return "(CASE WHEN " + t + " GLOB '[0-9]*' AND " + t + " NOT GLOB '*[^0-9.]*' AND " + t +
		" NOT GLOB '*.*.*' THEN CAST(" + t + " AS REAL) END)"
}

// sequenceTerm orders ascending with nulls last, descending with nulls first.
func sequenceTerm(col string, desc bool) SortTerm {
	t := SortTerm{Expr: SequenceExpr(col), Desc: desc, Nulls: NullsLast}
	if desc {
		t.Nulls = NullsFirst
	}
	return t
}

// ResolveSort maps a sort request onto ordering terms for a book listing.
// Unknown sort keys yield no terms.
func ResolveSort(req SortRequest) Sort {
	sortBy := req.SortBy
	if sortBy == domain.SortSequence && !req.SeriesJoin {
		sortBy = domain.SortTitle
	}
	if sortBy == domain.SortProgress && !req.ProgressJoin {
		sortBy = domain.SortTitle
	}

	var s Sort
	dir := req.Desc
	switch sortBy {
	case domain.SortAddedAt:
		s.Terms = []SortTerm{{Expr: "li.created_at", Desc: dir}}
	case domain.SortSize:
		s.Terms = []SortTerm{{Expr: "li.size", Desc: dir}}
	case domain.SortBirthtime:
		s.Terms = []SortTerm{{Expr: "li.birthtime_ms", Desc: dir}}
	case domain.SortMtime:
		s.Terms = []SortTerm{{Expr: "li.mtime_ms", Desc: dir}}
	case domain.SortDuration:
		s.Terms = []SortTerm{{Expr: "b.duration", Desc: dir}}
	case domain.SortPublishedYear:
		s.Terms = []SortTerm{{Expr: "b.published_year", Desc: dir}}
	case domain.SortAuthorName:
		s.AuthorName = AuthorNameFirstLast
		s.Terms = []SortTerm{{Expr: "author_name", Desc: dir, NoCase: true}}
	case domain.SortAuthorNameLF:
		s.AuthorName = AuthorNameLastFirst
		s.Terms = []SortTerm{{Expr: "author_name", Desc: dir, NoCase: true}}
	case domain.SortTitle:
		switch {
		case req.CollapseSeries:
			s.DisplayTitle = true
			s.Terms = []SortTerm{{Expr: "display_title", Desc: dir, NoCase: true}}
		case req.IgnorePrefix:
			s.Terms = []SortTerm{{Expr: "b.title_ignore_prefix", Desc: dir, NoCase: true}}
		default:
			s.Terms = []SortTerm{{Expr: "b.title", Desc: dir, NoCase: true}}
		}
	case domain.SortSequence:
		s.Terms = []SortTerm{sequenceTerm("fbs.sequence", dir)}
	case domain.SortProgress:
		s.Terms = []SortTerm{{Expr: "mp.updated_at", Desc: dir}}
	}

	// Series listings always fall back to reading order.
	if req.SeriesJoin && sortBy != domain.SortSequence {
		s.Terms = append(s.Terms, sequenceTerm("fbs.sequence", false))
	}

	return s
}

// ResolvePodcastSort maps a sort request onto ordering terms for a podcast
// listing. Podcasts sort on item columns and title only.
func ResolvePodcastSort(req SortRequest) Sort {
	var s Sort
	dir := req.Desc
	switch req.SortBy {
	case domain.SortAddedAt:
		s.Terms = []SortTerm{{Expr: "li.created_at", Desc: dir}}
	case domain.SortSize:
		s.Terms = []SortTerm{{Expr: "li.size", Desc: dir}}
	case domain.SortBirthtime:
		s.Terms = []SortTerm{{Expr: "li.birthtime_ms", Desc: dir}}
	case domain.SortMtime:
		s.Terms = []SortTerm{{Expr: "li.mtime_ms", Desc: dir}}
	case domain.SortTitle:
		col := "p.title"
		if req.IgnorePrefix {
			col = "p.title_ignore_prefix"
		}
		s.Terms = []SortTerm{{Expr: col, Desc: dir, NoCase: true}}
	}
	return s
}
