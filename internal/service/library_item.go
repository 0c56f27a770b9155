// Package service composes library listings and personalized shelves from
// the query builders and the store.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/listenupapp/listenup-library/internal/domain"
	domainerrors "github.com/listenupapp/listenup-library/internal/errors"
	"github.com/listenupapp/listenup-library/internal/dto"
	"github.com/listenupapp/listenup-library/internal/metrics"
	"github.com/listenupapp/listenup-library/internal/query"
	"github.com/listenupapp/listenup-library/internal/store"
	"github.com/listenupapp/listenup-library/internal/validation"
)

// Options are the server-wide listing settings.
type Options struct {
	// IgnorePrefix sorts titles and series names without leading articles.
	IgnorePrefix bool

	// ShelfLimit is the shelf size used when a request does not set one.
	ShelfLimit int
}

// DefaultShelfLimit is the shelf size when neither the request nor the
// server configuration sets one.
const DefaultShelfLimit = 10

// FilterParams is a library listing request.
type FilterParams struct {
	LibraryID string `json:"libraryId" validate:"required,entityid"`

	// User scopes permissions and progress. Nil is a system caller.
	User *domain.User `json:"-"`

	Filter         string   `json:"filter,omitempty" validate:"max=2048"`
	Sort           string   `json:"sort,omitempty" validate:"max=64"`
	Desc           bool     `json:"desc"`
	CollapseSeries bool     `json:"collapseseries"`
	Include        []string `json:"include,omitempty"`
	Limit          int      `json:"limit" validate:"gte=0"`
	Page           int      `json:"page" validate:"gte=0"`
}

// FilteredLibraryItems is one page of a library listing plus the echoed
// request.
type FilteredLibraryItems struct {
	Results        []*dto.LibraryItem `json:"results"`
	Total          int                `json:"total"`
	Limit          int                `json:"limit"`
	Page           int                `json:"page"`
	SortBy         string             `json:"sortBy,omitempty"`
	SortDesc       bool               `json:"sortDesc"`
	FilterBy       string             `json:"filterBy,omitempty"`
	MediaType      domain.MediaType   `json:"mediaType"`
	CollapseSeries bool               `json:"collapseseries"`
	Include        string             `json:"include"`
}

// LibraryItemService lists library items with filtering, sorting, series
// collapsing and pagination.
type LibraryItemService struct {
	store     store.Store
	validator *validation.Validator
	opts      Options
	logger    *slog.Logger
	now       func() time.Time
}

// NewLibraryItemService creates a new library item service.
func NewLibraryItemService(s store.Store, v *validation.Validator, opts Options, logger *slog.Logger) *LibraryItemService {
	return &LibraryItemService{
		store:     s,
		validator: v,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

// GetFilteredLibraryItems returns one page of a library's items.
func (s *LibraryItemService) GetFilteredLibraryItems(ctx context.Context, params FilterParams) (*FilteredLibraryItems, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(params); err != nil {
		return nil, err
	}

	lib, err := getLibrary(ctx, s.store, params.LibraryID)
	if err != nil {
		return nil, err
	}

	sel, err := domain.ParseFilter(params.Filter)
	if err != nil {
		return nil, domainerrors.Validationf("invalid filter %q", params.Filter).WithCause(err)
	}

	page := store.PageParams{Limit: params.Limit, Page: params.Page}
	page.Validate()

	result := &FilteredLibraryItems{
		Limit:     page.Limit,
		Page:      page.Page,
		SortBy:    params.Sort,
		SortDesc:  params.Desc,
		FilterBy:  params.Filter,
		MediaType: lib.MediaType,
		Include:   strings.Join(params.Include, ","),
	}

	start := time.Now()
	if lib.IsPodcast() {
		err = s.listPodcasts(ctx, lib, sel, params, page, result)
	} else {
		err = s.listBooks(ctx, lib, sel, params, page, result)
	}
	if err != nil {
		return nil, err
	}

	metrics.RecordListing(string(lib.MediaType), string(sel.Group), result.Total)
	s.logger.Debug("library items listed",
		"library_id", lib.ID,
		"filter_group", string(sel.Group),
		"sort", params.Sort,
		"collapse", result.CollapseSeries,
		"total", result.Total,
		"duration", time.Since(start),
	)
	return result, nil
}

func (s *LibraryItemService) listBooks(ctx context.Context, lib *domain.Library, sel domain.FilterSelector, params FilterParams, page store.PageParams, result *FilteredLibraryItems) error {
	filter := query.BuildBookFilter(sel, userID(params.User), s.now())
	collapse := params.CollapseSeries && sel.Group != domain.FilterSeries

	q := query.BookQuery{
		LibraryID:   lib.ID,
		UserID:      userID(params.User),
		Filter:      filter,
		Permissions: query.PermissionPredicates(params.User, query.BookAlias),
		Sort: query.ResolveSort(query.SortRequest{
			SortBy:         params.Sort,
			Desc:           params.Desc,
			CollapseSeries: collapse,
			IgnorePrefix:   s.opts.IgnorePrefix,
			SeriesJoin:     filter.SeriesID != "",
			ProgressJoin:   filter.ProgressJoin,
		}),
		IgnorePrefix: s.opts.IgnorePrefix,
		IncludeFeeds: includesFeed(params.Include),
		Limit:        page.Limit,
		Offset:       page.Offset(),
	}

	if collapse {
		start := time.Now()
		candidates, err := s.store.FindCollapseCandidates(ctx, q)
		metrics.RecordStoreQuery("collapse_candidates", time.Since(start), err)
		if err != nil {
			return fmt.Errorf("find collapse candidates: %w", err)
		}
		c := query.ResolveCollapse(candidates)
		q.Collapse = &c
		metrics.RecordCollapse(len(c.Exclude))
	}

	start := time.Now()
	rows, total, err := s.store.FindBooks(ctx, q)
	metrics.RecordStoreQuery("find_books", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("find books: %w", err)
	}

	result.Results = dto.ProjectBooks(rows, dto.ProjectOptions{
		Collapse:       q.Collapse,
		IncludeRSSFeed: q.IncludeFeeds,
	})
	result.Total = total
	result.CollapseSeries = collapse
	return nil
}

func (s *LibraryItemService) listPodcasts(ctx context.Context, lib *domain.Library, sel domain.FilterSelector, params FilterParams, page store.PageParams, result *FilteredLibraryItems) error {
	q := query.PodcastQuery{
		LibraryID:   lib.ID,
		Filter:      query.BuildPodcastFilter(sel, s.now()),
		Permissions: query.PermissionPredicates(params.User, query.PodcastAlias),
		Sort: query.ResolvePodcastSort(query.SortRequest{
			SortBy:       params.Sort,
			Desc:         params.Desc,
			IgnorePrefix: s.opts.IgnorePrefix,
		}),
		IncludeFeeds: includesFeed(params.Include),
		Limit:        page.Limit,
		Offset:       page.Offset(),
	}

	start := time.Now()
	rows, total, err := s.store.FindPodcasts(ctx, q)
	metrics.RecordStoreQuery("find_podcasts", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("find podcasts: %w", err)
	}

	result.Results = dto.ProjectPodcasts(rows, dto.ProjectOptions{IncludeRSSFeed: q.IncludeFeeds})
	result.Total = total
	return nil
}

// getLibrary resolves a library, mapping a missing row to a not found error.
func getLibrary(ctx context.Context, s store.Store, id string) (*domain.Library, error) {
	lib, err := s.GetLibrary(ctx, id)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFoundf("library %s not found", id)
		}
		return nil, fmt.Errorf("get library: %w", err)
	}
	return lib, nil
}

func userID(u *domain.User) string {
	if u == nil {
		return ""
	}
	return u.ID
}

func includesFeed(include []string) bool {
	return slices.Contains(include, domain.IncludeRSSFeed)
}
