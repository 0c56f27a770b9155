package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/listenup-library/internal/dto"
	"github.com/listenupapp/listenup-library/internal/service"
)

func (s *Server) registerLibraryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getLibraryItems",
		Method:      http.MethodGet,
		Path:        "/api/v1/libraries/{id}/items",
		Summary:     "List library items",
		Description: "Returns one page of a library's items, filtered, sorted and optionally with series collapsed",
		Tags:        []string{"Libraries"},
	}, s.handleGetLibraryItems)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPersonalizedShelves",
		Method:      http.MethodGet,
		Path:        "/api/v1/libraries/{id}/personalized",
		Summary:     "Personalized shelves",
		Description: "Returns the requesting user's home-page shelves for a library",
		Tags:        []string{"Libraries"},
	}, s.handleGetPersonalizedShelves)
}

// === DTOs ===

// GetLibraryItemsInput contains parameters for listing library items.
type GetLibraryItemsInput struct {
	UserID         string `header:"X-User-ID" doc:"Requesting user, set by the authenticating proxy"`
	ID             string `path:"id" doc:"Library ID"`
	Filter         string `query:"filter" doc:"Filter as group.base64(value), e.g. genres.RmFudGFzeQ%3D%3D"`
	Sort           string `query:"sort" doc:"Sort key, e.g. media.metadata.title or addedAt"`
	Desc           bool   `query:"desc" doc:"Sort descending"`
	CollapseSeries bool   `query:"collapseseries" doc:"Show one item per series"`
	Include        string `query:"include" doc:"Comma separated extras: rssfeed"`
	Limit          int    `query:"limit" minimum:"0" doc:"Items per page, 0 for all"`
	Page           int    `query:"page" minimum:"0" doc:"Zero-based page index"`
}

// GetLibraryItemsOutput wraps the listing for Huma.
type GetLibraryItemsOutput struct {
	Body *service.FilteredLibraryItems
}

// GetPersonalizedInput contains parameters for the personalized shelves.
type GetPersonalizedInput struct {
	UserID  string `header:"X-User-ID" doc:"Requesting user, set by the authenticating proxy"`
	ID      string `path:"id" doc:"Library ID"`
	Limit   int    `query:"limit" minimum:"0" maximum:"100" doc:"Entities per shelf, 0 for the server default"`
	Include string `query:"include" doc:"Comma separated extras: rssfeed"`
}

// GetPersonalizedOutput wraps the shelves for Huma.
type GetPersonalizedOutput struct {
	Body []*dto.Shelf
}

// === Handlers ===

func (s *Server) handleGetLibraryItems(ctx context.Context, input *GetLibraryItemsInput) (*GetLibraryItemsOutput, error) {
	user, err := s.resolveUser(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	result, err := s.services.LibraryItems.GetFilteredLibraryItems(ctx, service.FilterParams{
		LibraryID:      input.ID,
		User:           user,
		Filter:         input.Filter,
		Sort:           input.Sort,
		Desc:           input.Desc,
		CollapseSeries: input.CollapseSeries,
		Include:        splitInclude(input.Include),
		Limit:          input.Limit,
		Page:           input.Page,
	})
	if err != nil {
		s.logFailure("list library items", input.ID, err)
		return nil, err
	}

	return &GetLibraryItemsOutput{Body: result}, nil
}

func (s *Server) handleGetPersonalizedShelves(ctx context.Context, input *GetPersonalizedInput) (*GetPersonalizedOutput, error) {
	user, err := s.resolveUser(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	shelves, err := s.services.Shelves.GetPersonalizedShelves(ctx, service.ShelfParams{
		LibraryID: input.ID,
		User:      user,
		Include:   splitInclude(input.Include),
		Limit:     input.Limit,
	})
	if err != nil {
		s.logFailure("personalized shelves", input.ID, err)
		return nil, err
	}
	if shelves == nil {
		shelves = []*dto.Shelf{}
	}

	return &GetPersonalizedOutput{Body: shelves}, nil
}

// logFailure logs errors that will surface as 500s; domain errors are the
// client's problem and are not logged.
func (s *Server) logFailure(op, libraryID string, err error) {
	if statusOf(err) < http.StatusInternalServerError {
		return
	}
	s.logger.Error("Request failed", "op", op, "library_id", libraryID, "error", err)
}

func splitInclude(raw string) []string {
	var out []string
	for part := range strings.SplitSeq(raw, ",") {
		if part = strings.TrimSpace(strings.ToLower(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}
