package domain

import "time"

// Author is a person credited on books of a library.
type Author struct {
	Syncable
	LibraryID   string `json:"library_id"`
	Name        string `json:"name"`
	LastFirst   string `json:"last_first"`
	Description string `json:"description,omitempty"`
}

// BookAuthor is the join row linking a book to an author.
// Authors are listed in join-row creation order.
type BookAuthor struct {
	ID        string    `json:"id"`
	BookID    string    `json:"book_id"`
	AuthorID  string    `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}
