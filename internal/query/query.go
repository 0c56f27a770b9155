package query

// BookQuery is a fully composed book listing: the filter, the caller's
// permission predicates, the resolved ordering and the page.
type BookQuery struct {
	LibraryID string

	// UserID scopes the progress join. Empty when there is no user.
	UserID string

	Filter      Filter
	Permissions []Predicate
	Sort        Sort

	// IgnorePrefix selects prefix-stripped names for display_title.
	IgnorePrefix bool

	// Collapse is set when series are collapsed into representatives.
	Collapse *Collapse

	IncludeFeeds bool

	// Limit of zero means no limit.
	Limit  int
	Offset int
}

// Predicates returns every restriction of the listing except the collapse
// exclusions.
func (q BookQuery) Predicates() []Predicate {
	preds := []Predicate{Eq("li.library_id", q.LibraryID)}
	preds = append(preds, q.Filter.ItemWhere...)
	preds = append(preds, q.Filter.MediaWhere...)
	preds = append(preds, q.Permissions...)
	return preds
}

// PagePredicates returns the restrictions of the main listing query.
func (q BookQuery) PagePredicates() []Predicate {
	preds := q.Predicates()
	if q.Collapse != nil && len(q.Collapse.Exclude) > 0 {
		preds = append(preds, NotIn("b.id", q.Collapse.Exclude))
	}
	return preds
}

// PodcastQuery is a composed podcast listing.
type PodcastQuery struct {
	LibraryID    string
	Filter       Filter
	Permissions  []Predicate
	Sort         Sort
	IncludeFeeds bool
	Limit        int
	Offset       int
}

// Predicates returns every restriction of the podcast listing.
func (q PodcastQuery) Predicates() []Predicate {
	preds := []Predicate{Eq("li.library_id", q.LibraryID)}
	preds = append(preds, q.Filter.ItemWhere...)
	preds = append(preds, q.Filter.MediaWhere...)
	preds = append(preds, q.Permissions...)
	return preds
}

// ShelfQuery scopes a personalized shelf to a library and a user.
type ShelfQuery struct {
	LibraryID    string
	UserID       string
	Permissions  []Predicate
	IncludeFeeds bool
	Limit        int
}

// EpisodeProgress selects episodes by the user's progress state.
type EpisodeProgress int

// Episode progress states.
const (
	EpisodesAll EpisodeProgress = iota
	EpisodesInProgress
	EpisodesFinished
)

// EpisodeQuery lists podcast episodes of a library.
type EpisodeQuery struct {
	ShelfQuery
	Progress EpisodeProgress
}

// AuthorNameColumn is the synthesized author_name column: the book's author
// names in join order, separated by ", ".
func AuthorNameColumn(mode AuthorNameMode) string {
	col := "a.name"
	if mode == AuthorNameLastFirst {
		col = "a.last_first"
	}
	return "(SELECT group_concat(" + col + ", ', ' ORDER BY xba.created_at, xba.rowid)" +
		" FROM book_authors xba JOIN authors a ON a.id = xba.author_id WHERE xba.book_id = b.id)"
}

// DisplayTitleColumn is the synthesized display_title column: the series
// name when the book is a collapsed representative, else the book title.
// It binds one parameter, the JSON array of representative book_series ids.
func DisplayTitleColumn(ignorePrefix bool) string {
	name, title := "s.name", "b.title"
	if ignorePrefix {
		name, title = "s.name_ignore_prefix", "b.title_ignore_prefix"
	}
	return "IFNULL((SELECT " + name + " FROM book_series xbs JOIN series s ON s.id = xbs.series_id" +
		" WHERE xbs.book_id = b.id AND xbs.id IN (SELECT value FROM json_each(?)) LIMIT 1), " + title + ")"
}

// RepresentativeRowsParam is the bind value for DisplayTitleColumn.
func RepresentativeRowsParam(c *Collapse) string {
	if c == nil {
		return jsonParam(nil)
	}
	return jsonParam(c.RepresentativeRows())
}
