// Package seed populates a store with a small demo catalog: one book
// library, one podcast library, a handful of users and their progress.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/listenupapp/listenup-library/internal/domain"
	"github.com/listenupapp/listenup-library/internal/id"
	"github.com/listenupapp/listenup-library/internal/normalize"
	"github.com/listenupapp/listenup-library/internal/store"
)

// Options configures Demo.
type Options struct {
	// Prefixes drive the ignore-prefix sort columns.
	Prefixes []string
	// Now anchors every timestamp; zero means time.Now.
	Now    time.Time
	Logger *slog.Logger
}

// Result reports what Demo created.
type Result struct {
	BookLibraryID    string            `json:"bookLibraryId"`
	PodcastLibraryID string            `json:"podcastLibraryId"`
	Users            map[string]string `json:"users"` // username -> id
	Books            int               `json:"books"`
	Podcasts         int               `json:"podcasts"`
	Episodes         int               `json:"episodes"`
	Progress         int               `json:"progress"`
}

type book struct {
	title     string
	authors   []string
	series    string
	sequence  string
	genres    []string
	tags      []string
	narrators []string
	publisher string
	explicit  bool
	tracks    int
	ebook     bool
}

var books = []book{
	{title: "The Hobbit", authors: []string{"J. R. R. Tolkien"}, series: "The Middle Earth", sequence: "1",
		genres: []string{"Fantasy"}, tags: []string{"kids"}, narrators: []string{"Rob Inglis"}, publisher: "Allen & Unwin", tracks: 1},
	{title: "The Fellowship of the Ring", authors: []string{"J. R. R. Tolkien"}, series: "The Middle Earth", sequence: "2",
		genres: []string{"Fantasy"}, narrators: []string{"Rob Inglis"}, publisher: "Allen & Unwin", tracks: 2},
	{title: "The Two Towers", authors: []string{"J. R. R. Tolkien"}, series: "The Middle Earth", sequence: "3",
		genres: []string{"Fantasy"}, narrators: []string{"Rob Inglis"}, publisher: "Allen & Unwin", tracks: 1},
	{title: "Dune", authors: []string{"Frank Herbert"}, genres: []string{"Science Fiction"},
		tags: []string{"scifi"}, narrators: []string{"Scott Brick"}, explicit: true, tracks: 1},
	{title: "It", authors: []string{"Stephen King"}, genres: []string{"Horror"},
		tags: []string{"horror"}, narrators: []string{"Steven Weber"}, tracks: 1},
	{title: "A Field Guide", series: "Misc", ebook: true},
}

type podcast struct {
	title    string
	author   string
	explicit bool
	episodes []string
}

var podcasts = []podcast{
	{title: "The Daily Shelf", author: "Shelf Radio", episodes: []string{"Pilot", "Second Wind", "Third Time"}},
	{title: "Late Night Audio", author: "Night Owls", explicit: true, episodes: []string{"Opening", "After Hours"}},
}

type seeder struct {
	w        store.Writer
	opts     Options
	base     time.Time
	tick     int
	result   *Result
	authors  map[string]string
	series   map[string]string
	bookIDs  []string
	itemIDs  []string
	episodes []string
}

// Demo writes the demo catalog through w. Ids are freshly generated on
// every call, so seeding twice yields two independent catalogs.
func Demo(ctx context.Context, w store.Writer, opts Options) (*Result, error) {
	if len(opts.Prefixes) == 0 {
		opts.Prefixes = normalize.DefaultSortingPrefixes
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &seeder{
		w:       w,
		opts:    opts,
		base:    opts.Now.UTC().Add(-72 * time.Hour),
		result:  &Result{Users: make(map[string]string)},
		authors: make(map[string]string),
		series:  make(map[string]string),
	}

	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"users", s.users},
		{"book library", s.bookLibrary},
		{"podcast library", s.podcastLibrary},
		{"progress", s.progress},
	}
	for _, step := range steps {
		if err := step.fn(ctx); err != nil {
			return nil, fmt.Errorf("seed %s: %w", step.name, err)
		}
	}

	opts.Logger.Info("demo catalog seeded",
		"book_library", s.result.BookLibraryID,
		"podcast_library", s.result.PodcastLibraryID,
		"books", s.result.Books,
		"episodes", s.result.Episodes,
	)
	return s.result, nil
}

// next returns a strictly increasing timestamp so insertion order is
// also addedAt order.
func (s *seeder) next() domain.Syncable {
	s.tick++
	ts := s.base.Add(time.Duration(s.tick) * time.Minute)
	return domain.Syncable{CreatedAt: ts, UpdatedAt: ts}
}

func (s *seeder) entity(prefix string) (domain.Syncable, error) {
	sy := s.next()
	newID, err := id.Generate(prefix)
	if err != nil {
		return sy, err
	}
	sy.ID = newID
	return sy, nil
}

func (s *seeder) users(ctx context.Context) error {
	users := []struct {
		name  string
		typ   domain.UserType
		perms domain.UserPermissions
	}{
		{"admin", domain.UserTypeRoot, domain.DefaultPermissions()},
		{"listener", domain.UserTypeUser, domain.UserPermissions{AccessAllTags: true}},
		{"kids", domain.UserTypeGuest, domain.UserPermissions{ItemTagsSelected: []string{"kids"}}},
	}
	for _, u := range users {
		sy, err := s.entity(id.User)
		if err != nil {
			return err
		}
		user := &domain.User{Syncable: sy, Username: u.name, Type: u.typ, Permissions: u.perms}
		if err := s.w.CreateUser(ctx, user); err != nil {
			return fmt.Errorf("create user %s: %w", u.name, err)
		}
		s.result.Users[u.name] = user.ID
	}
	return nil
}

func (s *seeder) bookLibrary(ctx context.Context) error {
	libID, err := s.library(ctx, "Audiobooks", domain.MediaTypeBook)
	if err != nil {
		return err
	}
	s.result.BookLibraryID = libID

	for _, b := range books {
		for _, name := range b.authors {
			if err := s.author(ctx, libID, name); err != nil {
				return err
			}
		}
		if b.series != "" {
			if err := s.seriesRow(ctx, libID, b.series); err != nil {
				return err
			}
		}
		if err := s.book(ctx, libID, b); err != nil {
			return err
		}
	}

	// An open feed on the last audio book exercises include=rssfeed.
	sy, err := s.entity(id.Feed)
	if err != nil {
		return err
	}
	slug := uuid.NewString()
	feed := &domain.Feed{
		Syncable:      sy,
		EntityType:    "libraryItem",
		EntityID:      s.itemIDs[4],
		LibraryItemID: s.itemIDs[4],
		Slug:          slug,
		Title:         books[4].title,
		FeedURL:       "/feed/" + slug,
	}
	if err := s.w.CreateFeed(ctx, feed); err != nil {
		return fmt.Errorf("create feed: %w", err)
	}
	return nil
}

func (s *seeder) library(ctx context.Context, name string, mt domain.MediaType) (string, error) {
	sy, err := s.entity(id.Library)
	if err != nil {
		return "", err
	}
	lib := &domain.Library{Syncable: sy, Name: name, MediaType: mt}
	if err := s.w.CreateLibrary(ctx, lib); err != nil {
		return "", fmt.Errorf("create library %s: %w", name, err)
	}
	return lib.ID, nil
}

func (s *seeder) author(ctx context.Context, libID, name string) error {
	if _, ok := s.authors[name]; ok {
		return nil
	}
	sy, err := s.entity(id.Author)
	if err != nil {
		return err
	}
	a := &domain.Author{Syncable: sy, LibraryID: libID, Name: name, LastFirst: normalize.LastFirst(name)}
	if err := s.w.CreateAuthor(ctx, a); err != nil {
		return fmt.Errorf("create author %s: %w", name, err)
	}
	s.authors[name] = a.ID
	return nil
}

func (s *seeder) seriesRow(ctx context.Context, libID, name string) error {
	if _, ok := s.series[name]; ok {
		return nil
	}
	sy, err := s.entity(id.Series)
	if err != nil {
		return err
	}
	sr := &domain.Series{
		Syncable:         sy,
		LibraryID:        libID,
		Name:             name,
		NameIgnorePrefix: normalize.TitleIgnorePrefix(name, s.opts.Prefixes),
	}
	if err := s.w.CreateSeries(ctx, sr); err != nil {
		return fmt.Errorf("create series %s: %w", name, err)
	}
	s.series[name] = sr.ID
	return nil
}

func (s *seeder) book(ctx context.Context, libID string, b book) error {
	sy, err := s.entity(id.Book)
	if err != nil {
		return err
	}
	row := &domain.Book{
		Syncable:          sy,
		Title:             b.title,
		TitleIgnorePrefix: normalize.TitleIgnorePrefix(b.title, s.opts.Prefixes),
		Publisher:         b.publisher,
		Language:          "English",
		Explicit:          b.explicit,
		Narrators:         b.narrators,
		Genres:            b.genres,
		Tags:              b.tags,
	}
	for i := range b.tracks {
		row.AudioFiles = append(row.AudioFiles, domain.AudioFile{
			Index:    i + 1,
			Filename: fmt.Sprintf("%s - %02d.m4b", b.title, i+1),
			Format:   "m4b",
			Duration: 3600,
		})
		row.Duration += 3600
	}
	if b.ebook {
		row.EbookFile = &domain.EbookFile{Filename: b.title + ".epub", Format: "epub"}
	}
	if err := s.w.CreateBook(ctx, row); err != nil {
		return fmt.Errorf("create book %s: %w", b.title, err)
	}

	itemSy, err := s.entity(id.Item)
	if err != nil {
		return err
	}
	itemSy.CreatedAt, itemSy.UpdatedAt = sy.CreatedAt, sy.UpdatedAt
	item := &domain.LibraryItem{
		Syncable:  itemSy,
		LibraryID: libID,
		MediaID:   row.ID,
		MediaType: domain.MediaTypeBook,
		Path:      "/audiobooks/" + b.title,
		RelPath:   b.title,
		Size:      int64(b.tracks+1) * 50_000_000,
	}
	if err := s.w.CreateLibraryItem(ctx, item); err != nil {
		return fmt.Errorf("create library item %s: %w", b.title, err)
	}

	for _, name := range b.authors {
		if err := s.w.AddBookAuthor(ctx, row.ID, s.authors[name]); err != nil {
			return fmt.Errorf("link author %s: %w", name, err)
		}
	}
	if b.series != "" {
		if err := s.w.AddBookSeries(ctx, row.ID, s.series[b.series], b.sequence); err != nil {
			return fmt.Errorf("link series %s: %w", b.series, err)
		}
	}

	s.bookIDs = append(s.bookIDs, row.ID)
	s.itemIDs = append(s.itemIDs, item.ID)
	s.result.Books++
	return nil
}

func (s *seeder) podcastLibrary(ctx context.Context) error {
	libID, err := s.library(ctx, "Podcasts", domain.MediaTypePodcast)
	if err != nil {
		return err
	}
	s.result.PodcastLibraryID = libID

	for _, p := range podcasts {
		sy, err := s.entity(id.Podcast)
		if err != nil {
			return err
		}
		row := &domain.Podcast{
			Syncable:          sy,
			Title:             p.title,
			TitleIgnorePrefix: normalize.TitleIgnorePrefix(p.title, s.opts.Prefixes),
			Author:            p.author,
			Language:          "English",
			Explicit:          p.explicit,
		}
		if err := s.w.CreatePodcast(ctx, row); err != nil {
			return fmt.Errorf("create podcast %s: %w", p.title, err)
		}

		itemSy, err := s.entity(id.Item)
		if err != nil {
			return err
		}
		item := &domain.LibraryItem{
			Syncable:  itemSy,
			LibraryID: libID,
			MediaID:   row.ID,
			MediaType: domain.MediaTypePodcast,
			Path:      "/podcasts/" + p.title,
			RelPath:   p.title,
		}
		if err := s.w.CreateLibraryItem(ctx, item); err != nil {
			return fmt.Errorf("create library item %s: %w", p.title, err)
		}
		s.result.Podcasts++

		for i, title := range p.episodes {
			esy, err := s.entity(id.Episode)
			if err != nil {
				return err
			}
			published := esy.CreatedAt
			ep := &domain.PodcastEpisode{
				Syncable:    esy,
				PodcastID:   row.ID,
				Title:       title,
				Episode:     fmt.Sprint(i + 1),
				PublishedAt: &published,
				AudioFile:   &domain.AudioFile{Index: 1, Filename: title + ".mp3", Format: "mp3", Duration: 1800},
			}
			if err := s.w.CreateEpisode(ctx, ep); err != nil {
				return fmt.Errorf("create episode %s: %w", title, err)
			}
			s.episodes = append(s.episodes, ep.ID)
			s.result.Episodes++
		}
	}
	return nil
}

// progress gives the admin user something on every personalized shelf:
// a finished and a started book, one started and one finished episode.
func (s *seeder) progress(ctx context.Context) error {
	userID := s.result.Users["admin"]
	entries := []struct {
		mediaID  string
		kind     domain.MediaItemType
		duration float64
		current  float64
		finished bool
	}{
		{s.bookIDs[0], domain.MediaItemBook, 3600, 3600, true},
		{s.bookIDs[3], domain.MediaItemBook, 3600, 1200, false},
		{s.episodes[0], domain.MediaItemPodcastEpisode, 1800, 600, false},
		{s.episodes[1], domain.MediaItemPodcastEpisode, 1800, 1800, true},
	}
	for _, e := range entries {
		sy, err := s.entity(id.Progress)
		if err != nil {
			return err
		}
		p := &domain.MediaProgress{
			Syncable:      sy,
			UserID:        userID,
			MediaItemID:   e.mediaID,
			MediaItemType: e.kind,
			Duration:      e.duration,
			CurrentTime:   e.current,
			IsFinished:    e.finished,
		}
		if e.finished {
			ts := sy.UpdatedAt
			p.FinishedAt = &ts
		}
		if err := s.w.UpsertProgress(ctx, p); err != nil {
			return fmt.Errorf("upsert progress %s: %w", e.mediaID, err)
		}
		s.result.Progress++
	}
	return nil
}
