package sqlite

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/listenupapp/listenup-library/internal/domain"
	"github.com/listenupapp/listenup-library/internal/normalize"
	"github.com/listenupapp/listenup-library/internal/store"
)

// fixtureBase anchors fixture timestamps inside the recent window.
var fixtureBase = time.Now().Add(-10 * 24 * time.Hour).UTC()

func at(hours int) time.Time {
	return fixtureBase.Add(time.Duration(hours) * time.Hour)
}

func syncable(id string, created time.Time) domain.Syncable {
	return domain.Syncable{ID: id, CreatedAt: created, UpdatedAt: created}
}

type bookFixture struct {
	id        string
	title     string
	hours     int
	authors   []string
	series    string
	sequence  string
	genres    []string
	tags      []string
	narrators []string
	publisher string
	explicit  bool
	tracks    int
	chapters  int
	ebook     bool
}

// library is the seeded book library used across store tests:
//
//	b1 The Hobbit      Tolkien  Middle Earth #1  tags kids, two chapters
//	b2 The Fellowship  Tolkien  Middle Earth #2  two tracks
//	b3 Two Towers      Tolkien  Middle Earth #3
//	b4 Dune            Herbert  explicit, tags scifi
//	b5 It              King     tags horror
//	b6 Ebook Only      (none)   Misc (no sequence), ebook only
var libraryBooks = []bookFixture{
	{id: "b1", title: "The Hobbit", hours: 0, authors: []string{"a-tolkien"}, series: "s1", sequence: "1",
		genres: []string{"Fantasy"}, tags: []string{"kids"}, narrators: []string{"Rob Inglis"}, publisher: "Allen", tracks: 1, chapters: 2},
	{id: "b2", title: "The Fellowship", hours: 1, authors: []string{"a-tolkien"}, series: "s1", sequence: "2",
		genres: []string{"Fantasy"}, publisher: "Allen", tracks: 2},
	{id: "b3", title: "Two Towers", hours: 2, authors: []string{"a-tolkien"}, series: "s1", sequence: "3",
		genres: []string{"Fantasy"}, publisher: "Allen", tracks: 1},
	{id: "b4", title: "Dune", hours: 3, authors: []string{"a-herbert"}, genres: []string{"Science Fiction"},
		tags: []string{"scifi"}, explicit: true, tracks: 1},
	{id: "b5", title: "It", hours: 4, authors: []string{"a-king"}, genres: []string{"Horror"},
		tags: []string{"horror"}, tracks: 1},
	{id: "b6", title: "Ebook Only", hours: 5, series: "s2", ebook: true},
}

func seedLibrary(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()

	if err := s.CreateLibrary(ctx, &domain.Library{Syncable: syncable("lib-1", at(-100)), Name: "Books", MediaType: domain.MediaTypeBook}); err != nil {
		t.Fatalf("CreateLibrary: %v", err)
	}

	authors := []struct{ id, name string }{
		{"a-tolkien", "J. R. R. Tolkien"},
		{"a-herbert", "Frank Herbert"},
		{"a-king", "Stephen King"},
	}
	for i, a := range authors {
		err := s.CreateAuthor(ctx, &domain.Author{
			Syncable:  syncable(a.id, at(i)),
			LibraryID: "lib-1",
			Name:      a.name,
			LastFirst: normalize.LastFirst(a.name),
		})
		if err != nil {
			t.Fatalf("CreateAuthor(%s): %v", a.id, err)
		}
	}

	for _, sr := range []struct{ id, name string }{{"s1", "The Middle Earth"}, {"s2", "Misc"}} {
		err := s.CreateSeries(ctx, &domain.Series{
			Syncable:         syncable(sr.id, at(-50)),
			LibraryID:        "lib-1",
			Name:             sr.name,
			NameIgnorePrefix: normalize.TitleIgnorePrefix(sr.name, normalize.DefaultSortingPrefixes),
		})
		if err != nil {
			t.Fatalf("CreateSeries(%s): %v", sr.id, err)
		}
	}

	for _, f := range libraryBooks {
		seedBook(t, s, "lib-1", f)
	}

	users := []*domain.User{
		{Syncable: syncable("u-all", at(-100)), Username: "all", Type: domain.UserTypeUser, Permissions: domain.DefaultPermissions()},
		{Syncable: syncable("u-clean", at(-100)), Username: "clean", Type: domain.UserTypeUser, Permissions: domain.UserPermissions{
			AccessAllTags: true,
		}},
		{Syncable: syncable("u-deny", at(-100)), Username: "deny", Type: domain.UserTypeUser, Permissions: domain.UserPermissions{
			CanAccessExplicitContent:  true,
			ItemTagsSelected:          []string{"horror"},
			SelectedTagsNotAccessible: true,
		}},
		{Syncable: syncable("u-kids", at(-100)), Username: "kids", Type: domain.UserTypeGuest, Permissions: domain.UserPermissions{
			ItemTagsSelected: []string{"kids"},
		}},
	}
	for _, u := range users {
		if err := s.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser(%s): %v", u.ID, err)
		}
	}
}

func seedBook(t *testing.T, s *Store, libraryID string, f bookFixture) {
	t.Helper()
	ctx := context.Background()
	created := at(f.hours)

	book := &domain.Book{
		Syncable:          syncable(f.id, created),
		Title:             f.title,
		TitleIgnorePrefix: normalize.TitleIgnorePrefix(f.title, normalize.DefaultSortingPrefixes),
		Publisher:         f.publisher,
		Language:          "English",
		Explicit:          f.explicit,
		Narrators:         f.narrators,
		Genres:            f.genres,
		Tags:              f.tags,
	}
	for i := 0; i < f.tracks; i++ {
		book.AudioFiles = append(book.AudioFiles, domain.AudioFile{Index: i + 1, Filename: f.id + ".m4b", Duration: 3600})
		book.Duration += 3600
	}
	for i := 0; i < f.chapters; i++ {
		book.Chapters = append(book.Chapters, domain.Chapter{ID: i, Start: float64(i * 1800), End: float64((i + 1) * 1800), Title: fmt.Sprintf("Chapter %d", i+1)})
	}
	if f.ebook {
		book.EbookFile = &domain.EbookFile{Filename: f.id + ".epub", Format: "epub"}
	}
	if err := s.CreateBook(ctx, book); err != nil {
		t.Fatalf("CreateBook(%s): %v", f.id, err)
	}

	item := &domain.LibraryItem{
		Syncable:  syncable("li-"+f.id, created),
		LibraryID: libraryID,
		MediaID:   f.id,
		MediaType: domain.MediaTypeBook,
		Path:      "/media/" + f.id,
		RelPath:   f.id,
		Size:      int64(f.hours+1) * 1000,
	}
	if err := s.CreateLibraryItem(ctx, item); err != nil {
		t.Fatalf("CreateLibraryItem(%s): %v", f.id, err)
	}

	for _, a := range f.authors {
		if err := s.AddBookAuthor(ctx, f.id, a); err != nil {
			t.Fatalf("AddBookAuthor(%s, %s): %v", f.id, a, err)
		}
	}
	if f.series != "" {
		if err := s.AddBookSeries(ctx, f.id, f.series, f.sequence); err != nil {
			t.Fatalf("AddBookSeries(%s, %s): %v", f.id, f.series, err)
		}
	}
}

func setProgress(t *testing.T, s *Store, userID, bookID string, current float64, finished bool, hours int) {
	t.Helper()
	p := &domain.MediaProgress{
		Syncable:      syncable("mp-"+userID+"-"+bookID, at(hours)),
		UserID:        userID,
		MediaItemID:   bookID,
		MediaItemType: domain.MediaItemBook,
		Duration:      3600,
		CurrentTime:   current,
		IsFinished:    finished,
	}
	if finished {
		ts := at(hours)
		p.FinishedAt = &ts
	}
	if err := s.UpsertProgress(context.Background(), p); err != nil {
		t.Fatalf("UpsertProgress(%s, %s): %v", userID, bookID, err)
	}
}

func setEbookProgress(t *testing.T, s *Store, userID, bookID string, progress float64, hours int) {
	t.Helper()
	p := &domain.MediaProgress{
		Syncable:      syncable("mp-"+userID+"-"+bookID, at(hours)),
		UserID:        userID,
		MediaItemID:   bookID,
		MediaItemType: domain.MediaItemBook,
		EbookProgress: progress,
	}
	if err := s.UpsertProgress(context.Background(), p); err != nil {
		t.Fatalf("UpsertProgress(%s, %s): %v", userID, bookID, err)
	}
}

func bookIDs(rows []store.BookRow) []string {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.Book.ID
	}
	return ids
}
