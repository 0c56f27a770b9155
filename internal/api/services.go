package api

import "github.com/listenupapp/listenup-library/internal/service"

// Services groups the business logic services used by the API server.
type Services struct {
	LibraryItems *service.LibraryItemService
	Shelves      *service.ShelfService
}
