package sqlite

import (
	"context"
	"fmt"
	"slices"
	"testing"

	"github.com/listenupapp/listenup-library/internal/domain"
	"github.com/listenupapp/listenup-library/internal/query"
)

func shelfQuery(t *testing.T, s *Store, userID string) query.ShelfQuery {
	t.Helper()
	return query.ShelfQuery{
		LibraryID:   "lib-1",
		UserID:      userID,
		Permissions: query.PermissionPredicates(getUser(t, s, userID), query.BookAlias),
		Limit:       10,
	}
}

func TestFindContinueSeries(t *testing.T) {
	s := newTestStore(t)
	seedLibrary(t, s)
	ctx := context.Background()

	// Nothing finished yet.
	rows, total, err := s.FindContinueSeries(ctx, shelfQuery(t, s, "u-all"))
	if err != nil {
		t.Fatalf("FindContinueSeries: %v", err)
	}
	if total != 0 || len(rows) != 0 {
		t.Fatalf("expected empty shelf, got %d rows, total %d", len(rows), total)
	}

	setProgress(t, s, "u-all", "b1", 3600, true, 10)

	rows, total, err = s.FindContinueSeries(ctx, shelfQuery(t, s, "u-all"))
	if err != nil {
		t.Fatalf("FindContinueSeries: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("expected one series, got %d rows, total %d", len(rows), total)
	}
	if rows[0].Book.ID != "b2" {
		t.Errorf("next book: got %s, want b2", rows[0].Book.ID)
	}
	if rows[0].MatchedSeries == nil || rows[0].MatchedSeries.ID != "s1" || rows[0].MatchedSeries.Sequence != "2" {
		t.Errorf("matched series: got %+v", rows[0].MatchedSeries)
	}

	// Skipping ahead: the first unfinished book is still the one offered.
	setProgress(t, s, "u-all", "b3", 3600, true, 11)
	rows, _, err = s.FindContinueSeries(ctx, shelfQuery(t, s, "u-all"))
	if err != nil {
		t.Fatalf("FindContinueSeries: %v", err)
	}
	if len(rows) != 1 || rows[0].Book.ID != "b2" {
		t.Errorf("expected b2, got %v", bookIDs(rows))
	}

	// A book in progress takes the series off the shelf.
	setProgress(t, s, "u-all", "b2", 100, false, 12)
	_, total, err = s.FindContinueSeries(ctx, shelfQuery(t, s, "u-all"))
	if err != nil {
		t.Fatalf("FindContinueSeries: %v", err)
	}
	if total != 0 {
		t.Errorf("expected in-progress series to be skipped, total %d", total)
	}

	// Finishing everything leaves nothing to continue.
	setProgress(t, s, "u-all", "b2", 3600, true, 13)
	_, total, err = s.FindContinueSeries(ctx, shelfQuery(t, s, "u-all"))
	if err != nil {
		t.Fatalf("FindContinueSeries: %v", err)
	}
	if total != 0 {
		t.Errorf("expected completed series to be skipped, total %d", total)
	}
}

func TestFindContinueSeries_AcrossSeries(t *testing.T) {
	s := newTestStore(t)
	seedLibrary(t, s)
	ctx := context.Background()

	for i, sr := range []string{"sa", "sb", "sc"} {
		err := s.CreateSeries(ctx, &domain.Series{
			Syncable:         syncable(sr, at(-40+i)),
			LibraryID:        "lib-1",
			Name:             "Series " + sr,
			NameIgnorePrefix: "Series " + sr,
		})
		if err != nil {
			t.Fatalf("CreateSeries(%s): %v", sr, err)
		}
		for n := 1; n <= 3; n++ {
			id := fmt.Sprintf("%s%d", sr, n)
			seedBook(t, s, "lib-1", bookFixture{id: id, title: id, hours: 6 + n, series: sr, sequence: fmt.Sprint(n), tracks: 1})
		}
	}

	// sa: first finished. sb: untouched. sc: first and third finished.
	setProgress(t, s, "u-all", "sa1", 3600, true, 10)
	setProgress(t, s, "u-all", "sc1", 3600, true, 11)
	setProgress(t, s, "u-all", "sc3", 3600, true, 12)

	rows, total, err := s.FindContinueSeries(ctx, shelfQuery(t, s, "u-all"))
	if err != nil {
		t.Fatalf("FindContinueSeries: %v", err)
	}
	if total != 2 {
		t.Errorf("total: got %d, want 2", total)
	}
	// Most recently progressed series first.
	if got := bookIDs(rows); !slices.Equal(got, []string{"sc2", "sa2"}) {
		t.Errorf("next books: got %v, want [sc2 sa2]", got)
	}
	for _, row := range rows {
		if row.MatchedSeries == nil || row.MatchedSeries.ID != row.Book.ID[:2] {
			t.Errorf("%s matched series: got %+v", row.Book.ID, row.MatchedSeries)
		}
	}
}

func TestFindContinueSeries_Permissions(t *testing.T) {
	s := newTestStore(t)
	seedLibrary(t, s)
	ctx := context.Background()

	// u-kids can only see b1; having finished it there is nothing visible next.
	setProgress(t, s, "u-kids", "b1", 3600, true, 10)
	_, total, err := s.FindContinueSeries(ctx, shelfQuery(t, s, "u-kids"))
	if err != nil {
		t.Fatalf("FindContinueSeries: %v", err)
	}
	if total != 0 {
		t.Errorf("expected no visible next book, total %d", total)
	}
}

func TestFindDiscoverBooks(t *testing.T) {
	s := newTestStore(t)
	seedLibrary(t, s)
	ctx := context.Background()

	rows, total, err := s.FindDiscoverBooks(ctx, shelfQuery(t, s, "u-all"))
	if err != nil {
		t.Fatalf("FindDiscoverBooks: %v", err)
	}
	// First book of each series plus the standalone books.
	want := []string{"b1", "b4", "b5", "b6"}
	got := bookIDs(rows)
	slices.Sort(got)
	if !slices.Equal(got, want) || total != len(want) {
		t.Errorf("got %v (total %d), want %v", got, total, want)
	}

	// Starting a series removes it; starting a standalone book removes it.
	setProgress(t, s, "u-all", "b2", 100, false, 10)
	setProgress(t, s, "u-all", "b5", 3600, true, 11)
	rows, total, err = s.FindDiscoverBooks(ctx, shelfQuery(t, s, "u-all"))
	if err != nil {
		t.Fatalf("FindDiscoverBooks: %v", err)
	}
	got = bookIDs(rows)
	slices.Sort(got)
	if !slices.Equal(got, []string{"b4", "b6"}) || total != 2 {
		t.Errorf("got %v (total %d), want [b4 b6]", got, total)
	}

	// Explicit content stays hidden.
	rows, _, err = s.FindDiscoverBooks(ctx, shelfQuery(t, s, "u-clean"))
	if err != nil {
		t.Fatalf("FindDiscoverBooks: %v", err)
	}
	if slices.Contains(bookIDs(rows), "b4") {
		t.Error("explicit book offered to u-clean")
	}

	// The limit caps the page but not the total.
	q := shelfQuery(t, s, "u-clean")
	q.Limit = 1
	rows, total, err = s.FindDiscoverBooks(ctx, q)
	if err != nil {
		t.Fatalf("FindDiscoverBooks: %v", err)
	}
	if len(rows) != 1 || total != 3 {
		t.Errorf("limited: got %d rows, total %d", len(rows), total)
	}
}

func TestFindRecentSeries(t *testing.T) {
	s := newTestStore(t)
	seedLibrary(t, s)
	ctx := context.Background()

	rows, total, err := s.FindRecentSeries(ctx, shelfQuery(t, s, "u-all"))
	if err != nil {
		t.Fatalf("FindRecentSeries: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("expected 2 series, got %d (total %d)", len(rows), total)
	}
	if rows[0].Series.ID != "s2" || rows[1].Series.ID != "s1" {
		t.Errorf("order: got %s, %s", rows[0].Series.ID, rows[1].Series.ID)
	}
	if got := bookIDs(rows[1].Books); !slices.Equal(got, []string{"b1", "b2", "b3"}) {
		t.Errorf("s1 books: got %v", got)
	}
	if !rows[0].LatestAddedAt.Equal(at(5)) {
		t.Errorf("latest added: got %v, want %v", rows[0].LatestAddedAt, at(5))
	}

	// Series books honor permissions.
	rows, total, err = s.FindRecentSeries(ctx, shelfQuery(t, s, "u-kids"))
	if err != nil {
		t.Fatalf("FindRecentSeries: %v", err)
	}
	if total != 1 || len(rows[0].Books) != 1 || rows[0].Books[0].Book.ID != "b1" {
		t.Errorf("restricted: got %+v", rows)
	}
}

func TestFindNewestAuthors(t *testing.T) {
	s := newTestStore(t)
	seedLibrary(t, s)
	ctx := context.Background()

	rows, total, err := s.FindNewestAuthors(ctx, shelfQuery(t, s, "u-all"))
	if err != nil {
		t.Fatalf("FindNewestAuthors: %v", err)
	}
	if total != 3 {
		t.Errorf("total: got %d, want 3", total)
	}
	var ids []string
	for _, r := range rows {
		ids = append(ids, r.Author.ID)
	}
	if !slices.Equal(ids, []string{"a-king", "a-herbert", "a-tolkien"}) {
		t.Errorf("order: got %v", ids)
	}
	if rows[2].NumBooks != 3 {
		t.Errorf("tolkien books: got %d, want 3", rows[2].NumBooks)
	}

	// An author whose only book is hidden is not shown.
	rows, total, err = s.FindNewestAuthors(ctx, shelfQuery(t, s, "u-clean"))
	if err != nil {
		t.Fatalf("FindNewestAuthors: %v", err)
	}
	if total != 2 {
		t.Errorf("u-clean total: got %d, want 2", total)
	}
	for _, r := range rows {
		if r.Author.ID == "a-herbert" {
			t.Error("a-herbert shown to u-clean")
		}
	}
}
