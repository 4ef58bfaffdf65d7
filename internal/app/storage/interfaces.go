// Package storage defines the persistence interfaces and their shared error
// sentinels. Implementations live in this package (in-memory) and in the
// postgres subpackage.
package storage

import (
	"context"
	"errors"

	"github.com/openshelf/catalog/internal/app/domain/account"
	"github.com/openshelf/catalog/internal/app/domain/catalog"
	"github.com/openshelf/catalog/internal/app/domain/feedback"
)

var (
	// ErrNotFound is returned for lookups of missing records.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned for referential-integrity violations
	// (protect-on-delete) and uniqueness races.
	ErrConflict = errors.New("constraint violation")
)

// AuthorStore persists authors. DeleteAuthor returns ErrConflict while any
// Book still references the author.
type AuthorStore interface {
	CreateAuthor(ctx context.Context, author catalog.Author) (catalog.Author, error)
	UpdateAuthor(ctx context.Context, author catalog.Author) (catalog.Author, error)
	GetAuthor(ctx context.Context, id string) (catalog.Author, error)
	ListAuthors(ctx context.Context) ([]catalog.Author, error)
	DeleteAuthor(ctx context.Context, id string) error
}

// BookStore persists books. ListBooks applies the composed filter as a
// single query.
type BookStore interface {
	CreateBook(ctx context.Context, book catalog.Book) (catalog.Book, error)
	UpdateBook(ctx context.Context, book catalog.Book) (catalog.Book, error)
	GetBook(ctx context.Context, id string) (catalog.Book, error)
	ListBooks(ctx context.Context, filter catalog.BookFilter) ([]catalog.Book, error)
	ListBooksByAuthor(ctx context.Context, authorID string) ([]catalog.Book, error)
	DeleteBook(ctx context.Context, id string) error
}

// LibraryStore persists libraries and their book membership.
type LibraryStore interface {
	CreateLibrary(ctx context.Context, lib catalog.Library) (catalog.Library, error)
	UpdateLibrary(ctx context.Context, lib catalog.Library) (catalog.Library, error)
	GetLibrary(ctx context.Context, id string) (catalog.Library, error)
	ListLibraries(ctx context.Context) ([]catalog.Library, error)
	DeleteLibrary(ctx context.Context, id string) error

	AddLibraryBook(ctx context.Context, libraryID, bookID string) error
	RemoveLibraryBook(ctx context.Context, libraryID, bookID string) error
}

// LibrarianStore persists librarians. CreateLibrarian returns ErrConflict
// when the target library already has a librarian.
type LibrarianStore interface {
	CreateLibrarian(ctx context.Context, lbn catalog.Librarian) (catalog.Librarian, error)
	UpdateLibrarian(ctx context.Context, lbn catalog.Librarian) (catalog.Librarian, error)
	GetLibrarian(ctx context.Context, id string) (catalog.Librarian, error)
	ListLibrarians(ctx context.Context) ([]catalog.Librarian, error)
	DeleteLibrarian(ctx context.Context, id string) error
}

// AccountStore persists accounts and their role profiles. Username and
// email are globally unique; violations surface as ErrConflict.
type AccountStore interface {
	CreateAccount(ctx context.Context, acct account.Account) (account.Account, error)
	UpdateAccount(ctx context.Context, acct account.Account) (account.Account, error)
	GetAccount(ctx context.Context, id string) (account.Account, error)
	GetAccountByUsername(ctx context.Context, username string) (account.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (account.Account, error)
	ListAccounts(ctx context.Context, search string) ([]account.Account, error)
	DeleteAccount(ctx context.Context, id string) error

	CreateProfile(ctx context.Context, profile account.Profile) (account.Profile, error)
	GetProfileByAccount(ctx context.Context, accountID string) (account.Profile, error)
	UpdateProfile(ctx context.Context, profile account.Profile) (account.Profile, error)
}

// MessageStore persists contact-form messages.
type MessageStore interface {
	CreateMessage(ctx context.Context, msg feedback.Message) (feedback.Message, error)
	ListMessages(ctx context.Context) ([]feedback.Message, error)
}
