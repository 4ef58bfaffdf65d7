// Package catalog defines the bookshelf domain records.
package catalog

import "time"

// Author owns zero or more Books. Deleting an Author is blocked while any
// Book still references it (protect-on-delete).
type Author struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Book references its Author by id. Serialized Books never embed Library or
// Librarian records.
type Book struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	AuthorID        string    `json:"author_id"`
	PublicationYear int       `json:"publication_year"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// AuthorWithBooks is the read shape for Author responses: an Author always
// embeds its Books.
type AuthorWithBooks struct {
	Author
	Books []Book `json:"books"`
}

// Library holds a many-to-many set of Books. Membership implies no
// ownership transfer; a Book may belong to multiple Libraries.
type Library struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	BookIDs   []string  `json:"book_ids"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Librarian manages exactly one Library.
type Librarian struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	LibraryID string    `json:"library_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
