package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/listenupapp/listenup-library/internal/domain"
	domainerrors "github.com/listenupapp/listenup-library/internal/errors"
	"github.com/listenupapp/listenup-library/internal/dto"
	"github.com/listenupapp/listenup-library/internal/metrics"
	"github.com/listenupapp/listenup-library/internal/query"
	"github.com/listenupapp/listenup-library/internal/store"
	"github.com/listenupapp/listenup-library/internal/validation"
)

// Shelf ids.
const (
	ShelfContinueListening = "continue-listening"
	ShelfContinueReading   = "continue-reading"
	ShelfContinueSeries    = "continue-series"
	ShelfNewestEpisodes    = "newest-episodes"
	ShelfRecentlyAdded     = "recently-added"
	ShelfRecentSeries      = "recent-series"
	ShelfDiscover          = "discover"
	ShelfListenAgain       = "listen-again"
	ShelfReadAgain         = "read-again"
	ShelfNewestAuthors     = "newest-authors"
)

var shelfLabels = map[string][2]string{
	ShelfContinueListening: {"Continue Listening", "LabelContinueListening"},
	ShelfContinueReading:   {"Continue Reading", "LabelContinueReading"},
	ShelfContinueSeries:    {"Continue Series", "LabelContinueSeries"},
	ShelfNewestEpisodes:    {"Newest Episodes", "LabelNewestEpisodes"},
	ShelfRecentlyAdded:     {"Recently Added", "LabelRecentlyAdded"},
	ShelfRecentSeries:      {"Recent Series", "LabelRecentSeries"},
	ShelfDiscover:          {"Discover", "LabelDiscover"},
	ShelfListenAgain:       {"Listen Again", "LabelListenAgain"},
	ShelfReadAgain:         {"Read Again", "LabelReadAgain"},
	ShelfNewestAuthors:     {"Newest Authors", "LabelNewestAuthors"},
}

// ShelfParams is a personalized shelves request.
type ShelfParams struct {
	LibraryID string       `json:"libraryId" validate:"required,entityid"`
	User      *domain.User `json:"-"`
	Include   []string     `json:"include,omitempty"`

	// Limit caps every shelf; zero uses the configured default.
	Limit int `json:"limit" validate:"gte=0,lte=100"`
}

// ShelfService builds the personalized home-page shelves of a library.
type ShelfService struct {
	store     store.Store
	validator *validation.Validator
	opts      Options
	logger    *slog.Logger
	now       func() time.Time
}

// NewShelfService creates a new shelf service.
func NewShelfService(s store.Store, v *validation.Validator, opts Options, logger *slog.Logger) *ShelfService {
	return &ShelfService{
		store:     s,
		validator: v,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

// shelfRequest is the resolved context every shelf builder works from.
type shelfRequest struct {
	lib   *domain.Library
	user  *domain.User
	feeds bool
	limit int
}

func (r shelfRequest) shelfQuery() query.ShelfQuery {
	return query.ShelfQuery{
		LibraryID:    r.lib.ID,
		UserID:       r.user.ID,
		Permissions:  query.PermissionPredicates(r.user, query.BookAlias),
		IncludeFeeds: r.feeds,
		Limit:        r.limit,
	}
}

func (r shelfRequest) projectOptions() dto.ProjectOptions {
	return dto.ProjectOptions{IncludeRSSFeed: r.feeds}
}

// shelfBuilder produces zero or more shelves occupying one slot of the
// fixed shelf order.
type shelfBuilder func(ctx context.Context, r shelfRequest) ([]*dto.Shelf, error)

// GetPersonalizedShelves evaluates the library's shelves concurrently and
// returns the non-empty ones in display order. Any failing shelf fails the
// whole request.
func (s *ShelfService) GetPersonalizedShelves(ctx context.Context, params ShelfParams) ([]*dto.Shelf, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(params); err != nil {
		return nil, err
	}
	if params.User == nil {
		return nil, domainerrors.Unauthorized("personalized shelves require a user")
	}

	lib, err := getLibrary(ctx, s.store, params.LibraryID)
	if err != nil {
		return nil, err
	}

	req := shelfRequest{
		lib:   lib,
		user:  params.User,
		feeds: includesFeed(params.Include),
		limit: s.shelfLimit(params.Limit),
	}

	builders := s.bookShelves()
	if lib.IsPodcast() {
		builders = s.podcastShelves()
	}

	start := time.Now()
	slots := make([][]*dto.Shelf, len(builders))
	g, gctx := errgroup.WithContext(ctx)
	for i, build := range builders {
		g.Go(func() error {
			shelves, err := build(gctx, req)
			if err != nil {
				return err
			}
			slots[i] = shelves
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []*dto.Shelf
	for _, shelves := range slots {
		for _, shelf := range shelves {
			if shelf == nil || shelf.Total == 0 {
				continue
			}
			metrics.RecordShelf(shelf.ID)
			out = append(out, shelf)
		}
	}

	s.logger.Debug("personalized shelves built",
		"library_id", lib.ID,
		"user_id", req.user.ID,
		"shelves", len(out),
		"duration", time.Since(start),
	)
	return out, nil
}

func (s *ShelfService) shelfLimit(requested int) int {
	if requested > 0 {
		return requested
	}
	if s.opts.ShelfLimit > 0 {
		return s.opts.ShelfLimit
	}
	return DefaultShelfLimit
}

func (s *ShelfService) bookShelves() []shelfBuilder {
	return []shelfBuilder{
		s.bookProgressShelves(domain.ProgressInProgress, ShelfContinueListening, ShelfContinueReading),
		s.continueSeries,
		s.recentlyAddedBooks,
		s.recentSeries,
		s.discover,
		s.bookProgressShelves(domain.ProgressFinished, ShelfListenAgain, ShelfReadAgain),
		s.newestAuthors,
	}
}

func (s *ShelfService) podcastShelves() []shelfBuilder {
	return []shelfBuilder{
		s.episodeShelf(ShelfContinueListening, query.EpisodesInProgress),
		s.episodeShelf(ShelfNewestEpisodes, query.EpisodesAll),
		s.recentlyAddedPodcasts,
		s.episodeShelf(ShelfListenAgain, query.EpisodesFinished),
	}
}

// bookProgressShelves lists books in a progress state, most recently
// touched first. Ebook-only books go to the reading shelf; each shelf is
// limited and counted on its own.
func (s *ShelfService) bookProgressShelves(progress, audioID, ebookID string) shelfBuilder {
	return func(ctx context.Context, r shelfRequest) ([]*dto.Shelf, error) {
		sel := domain.FilterSelector{Group: domain.FilterProgress, Value: progress}
		find := func(shelfID string, split query.Predicate) (*dto.Shelf, error) {
			filter := query.BuildBookFilter(sel, r.user.ID, s.now())
			filter.MediaWhere = append(filter.MediaWhere, split)
			q := query.BookQuery{
				LibraryID:   r.lib.ID,
				UserID:      r.user.ID,
				Filter:      filter,
				Permissions: query.PermissionPredicates(r.user, query.BookAlias),
				Sort: query.ResolveSort(query.SortRequest{
					SortBy:       domain.SortProgress,
					Desc:         true,
					ProgressJoin: true,
				}),
				IncludeFeeds: r.feeds,
				Limit:        r.limit,
			}
			rows, total, err := timed(shelfID, func() ([]store.BookRow, int, error) {
				return s.store.FindBooks(ctx, q)
			})
			if err != nil {
				return nil, err
			}
			return newShelf(shelfID, dto.ShelfTypeBook, dto.ProjectBooks(rows, r.projectOptions()), total), nil
		}

		audio, err := find(audioID, query.Not(query.EbookOnly()))
		if err != nil {
			return nil, err
		}
		ebook, err := find(ebookID, query.EbookOnly())
		if err != nil {
			return nil, err
		}
		return []*dto.Shelf{audio, ebook}, nil
	}
}

func (s *ShelfService) continueSeries(ctx context.Context, r shelfRequest) ([]*dto.Shelf, error) {
	rows, total, err := timed(ShelfContinueSeries, func() ([]store.BookRow, int, error) {
		return s.store.FindContinueSeries(ctx, r.shelfQuery())
	})
	if err != nil {
		return nil, err
	}
	return one(newShelf(ShelfContinueSeries, dto.ShelfTypeBook, dto.ProjectBooks(rows, r.projectOptions()), total)), nil
}

func (s *ShelfService) recentlyAddedBooks(ctx context.Context, r shelfRequest) ([]*dto.Shelf, error) {
	sel := domain.FilterSelector{Group: domain.FilterRecent}
	q := query.BookQuery{
		LibraryID:    r.lib.ID,
		UserID:       r.user.ID,
		Filter:       query.BuildBookFilter(sel, r.user.ID, s.now()),
		Permissions:  query.PermissionPredicates(r.user, query.BookAlias),
		Sort:         query.ResolveSort(query.SortRequest{SortBy: domain.SortAddedAt, Desc: true}),
		IncludeFeeds: r.feeds,
		Limit:        r.limit,
	}
	rows, total, err := timed(ShelfRecentlyAdded, func() ([]store.BookRow, int, error) {
		return s.store.FindBooks(ctx, q)
	})
	if err != nil {
		return nil, err
	}
	return one(newShelf(ShelfRecentlyAdded, string(r.lib.MediaType), dto.ProjectBooks(rows, r.projectOptions()), total)), nil
}

func (s *ShelfService) recentSeries(ctx context.Context, r shelfRequest) ([]*dto.Shelf, error) {
	rows, total, err := timed(ShelfRecentSeries, func() ([]store.SeriesRow, int, error) {
		return s.store.FindRecentSeries(ctx, r.shelfQuery())
	})
	if err != nil {
		return nil, err
	}
	return one(newShelf(ShelfRecentSeries, dto.ShelfTypeSeries, dto.ProjectSeries(rows, r.projectOptions()), total)), nil
}

func (s *ShelfService) discover(ctx context.Context, r shelfRequest) ([]*dto.Shelf, error) {
	rows, total, err := timed(ShelfDiscover, func() ([]store.BookRow, int, error) {
		return s.store.FindDiscoverBooks(ctx, r.shelfQuery())
	})
	if err != nil {
		return nil, err
	}
	return one(newShelf(ShelfDiscover, string(r.lib.MediaType), dto.ProjectBooks(rows, r.projectOptions()), total)), nil
}

func (s *ShelfService) newestAuthors(ctx context.Context, r shelfRequest) ([]*dto.Shelf, error) {
	rows, total, err := timed(ShelfNewestAuthors, func() ([]store.AuthorRow, int, error) {
		return s.store.FindNewestAuthors(ctx, r.shelfQuery())
	})
	if err != nil {
		return nil, err
	}
	return one(newShelf(ShelfNewestAuthors, dto.ShelfTypeAuthors, dto.ProjectAuthors(rows), total)), nil
}

func (s *ShelfService) episodeShelf(id string, progress query.EpisodeProgress) shelfBuilder {
	return func(ctx context.Context, r shelfRequest) ([]*dto.Shelf, error) {
		sq := r.shelfQuery()
		sq.Permissions = query.PermissionPredicates(r.user, query.PodcastAlias)
		q := query.EpisodeQuery{ShelfQuery: sq, Progress: progress}

		rows, total, err := timed(id, func() ([]store.EpisodeRow, int, error) {
			return s.store.FindEpisodes(ctx, q)
		})
		if err != nil {
			return nil, err
		}
		return one(newShelf(id, dto.ShelfTypeEpisode, dto.ProjectEpisodes(rows, r.projectOptions()), total)), nil
	}
}

func (s *ShelfService) recentlyAddedPodcasts(ctx context.Context, r shelfRequest) ([]*dto.Shelf, error) {
	q := query.PodcastQuery{
		LibraryID:    r.lib.ID,
		Filter:       query.BuildPodcastFilter(domain.FilterSelector{Group: domain.FilterRecent}, s.now()),
		Permissions:  query.PermissionPredicates(r.user, query.PodcastAlias),
		Sort:         query.ResolvePodcastSort(query.SortRequest{SortBy: domain.SortAddedAt, Desc: true}),
		IncludeFeeds: r.feeds,
		Limit:        r.limit,
	}
	rows, total, err := timed(ShelfRecentlyAdded, func() ([]store.PodcastRow, int, error) {
		return s.store.FindPodcasts(ctx, q)
	})
	if err != nil {
		return nil, err
	}
	return one(newShelf(ShelfRecentlyAdded, dto.ShelfTypePodcast, dto.ProjectPodcasts(rows, r.projectOptions()), total)), nil
}

// timed runs a shelf query, records its latency and wraps its error with
// the shelf id.
func timed[T any](shelfID string, fn func() ([]T, int, error)) ([]T, int, error) {
	start := time.Now()
	rows, total, err := fn()
	metrics.RecordStoreQuery("shelf_"+shelfID, time.Since(start), err)
	if err != nil {
		return nil, 0, fmt.Errorf("shelf %s: %w", shelfID, err)
	}
	return rows, total, nil
}

func newShelf(id, shelfType string, entities any, total int) *dto.Shelf {
	label := shelfLabels[id]
	return &dto.Shelf{
		ID:             id,
		Label:          label[0],
		LabelStringKey: label[1],
		Type:           shelfType,
		Entities:       entities,
		Total:          total,
	}
}

func one(shelf *dto.Shelf) []*dto.Shelf {
	return []*dto.Shelf{shelf}
}
