// Package catalog implements the book and author use cases: guard, then
// validators, then store, in that order.
package catalog

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/openshelf/catalog/internal/app/auth"
	domain "github.com/openshelf/catalog/internal/app/domain/catalog"
	"github.com/openshelf/catalog/internal/app/storage"
	"github.com/openshelf/catalog/internal/app/validate"
	"github.com/openshelf/catalog/internal/errors"
	"github.com/openshelf/catalog/internal/logging"
)

// Service manages authors and books.
type Service struct {
	authors storage.AuthorStore
	books   storage.BookStore
	log     *logging.Logger
}

// New constructs a catalog service.
func New(authors storage.AuthorStore, books storage.BookStore, log *logging.Logger) *Service {
	if log == nil {
		log = logging.New("catalog")
	}
	return &Service{authors: authors, books: books, log: log}
}

// BookInput carries the writable Book fields.
type BookInput struct {
	Title           string
	AuthorID        string
	PublicationYear int
}

// ListBooks returns books narrowed by the composed filter.
func (s *Service) ListBooks(ctx context.Context, filter domain.BookFilter) ([]domain.Book, error) {
	if err := auth.Authorize(auth.PrincipalFrom(ctx), auth.CapBookView); err != nil {
		return nil, err
	}
	books, err := s.books.ListBooks(ctx, filter)
	if err != nil {
		return nil, s.storeError(ctx, "book", err)
	}
	return books, nil
}

// GetBook fetches one book by id.
func (s *Service) GetBook(ctx context.Context, id string) (domain.Book, error) {
	if err := auth.Authorize(auth.PrincipalFrom(ctx), auth.CapBookView); err != nil {
		return domain.Book{}, err
	}
	book, err := s.books.GetBook(ctx, id)
	if err != nil {
		return domain.Book{}, s.storeError(ctx, "book", err)
	}
	return book, nil
}

// CreateBook validates and persists a new book.
func (s *Service) CreateBook(ctx context.Context, input BookInput) (domain.Book, error) {
	if err := auth.Authorize(auth.PrincipalFrom(ctx), auth.CapBookCreate); err != nil {
		return domain.Book{}, err
	}
	book, err := s.validateBook(ctx, input)
	if err != nil {
		return domain.Book{}, err
	}
	created, err := s.books.CreateBook(ctx, book)
	if err != nil {
		return domain.Book{}, s.storeError(ctx, "book", err)
	}
	s.log.WithContext(ctx).WithField("book_id", created.ID).Info("book created")
	return created, nil
}

// UpdateBook replaces the writable fields of an existing book.
func (s *Service) UpdateBook(ctx context.Context, id string, input BookInput) (domain.Book, error) {
	if err := auth.Authorize(auth.PrincipalFrom(ctx), auth.CapBookEdit); err != nil {
		return domain.Book{}, err
	}
	if _, err := s.books.GetBook(ctx, id); err != nil {
		return domain.Book{}, s.storeError(ctx, "book", err)
	}
	book, err := s.validateBook(ctx, input)
	if err != nil {
		return domain.Book{}, err
	}
	book.ID = id
	updated, err := s.books.UpdateBook(ctx, book)
	if err != nil {
		return domain.Book{}, s.storeError(ctx, "book", err)
	}
	s.log.WithContext(ctx).WithField("book_id", id).Info("book updated")
	return updated, nil
}

// DeleteBook removes a book.
func (s *Service) DeleteBook(ctx context.Context, id string) error {
	if err := auth.Authorize(auth.PrincipalFrom(ctx), auth.CapBookDelete); err != nil {
		return err
	}
	if err := s.books.DeleteBook(ctx, id); err != nil {
		return s.storeError(ctx, "book", err)
	}
	s.log.WithContext(ctx).WithField("book_id", id).Info("book deleted")
	return nil
}

// validateBook runs the book validators and normalizes the record. The
// publication-year rule is re-checked on every create and update.
func (s *Service) validateBook(ctx context.Context, input BookInput) (domain.Book, error) {
	var verrs validate.Errors

	title := strings.TrimSpace(input.Title)
	if title == "" {
		verrs.Add("title", "is required")
	}
	if reason := validate.PublicationYear(input.PublicationYear); reason != "" {
		verrs.Add("publication_year", reason)
	}

	authorID := strings.TrimSpace(input.AuthorID)
	if authorID == "" {
		verrs.Add("author_id", "is required")
	} else if _, err := s.authors.GetAuthor(ctx, authorID); err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			verrs.Add("author_id", "unknown author")
		} else {
			return domain.Book{}, s.storeError(ctx, "author", err)
		}
	}

	if err := verrs.Err(); err != nil {
		return domain.Book{}, err
	}
	return domain.Book{Title: title, AuthorID: authorID, PublicationYear: input.PublicationYear}, nil
}

// ListAuthors returns every author with its books embedded.
func (s *Service) ListAuthors(ctx context.Context) ([]domain.AuthorWithBooks, error) {
	if err := auth.Authorize(auth.PrincipalFrom(ctx), auth.CapAuthorView); err != nil {
		return nil, err
	}
	authors, err := s.authors.ListAuthors(ctx)
	if err != nil {
		return nil, s.storeError(ctx, "author", err)
	}

	result := make([]domain.AuthorWithBooks, 0, len(authors))
	for _, author := range authors {
		nested, err := s.withBooks(ctx, author)
		if err != nil {
			return nil, err
		}
		result = append(result, nested)
	}
	return result, nil
}

// GetAuthor fetches one author with its books embedded.
func (s *Service) GetAuthor(ctx context.Context, id string) (domain.AuthorWithBooks, error) {
	if err := auth.Authorize(auth.PrincipalFrom(ctx), auth.CapAuthorView); err != nil {
		return domain.AuthorWithBooks{}, err
	}
	author, err := s.authors.GetAuthor(ctx, id)
	if err != nil {
		return domain.AuthorWithBooks{}, s.storeError(ctx, "author", err)
	}
	return s.withBooks(ctx, author)
}

// CreateAuthor validates and persists a new author.
func (s *Service) CreateAuthor(ctx context.Context, name string) (domain.AuthorWithBooks, error) {
	if err := auth.Authorize(auth.PrincipalFrom(ctx), auth.CapAuthorCreate); err != nil {
		return domain.AuthorWithBooks{}, err
	}
	cleaned, reason := validate.Name(name)
	if reason != "" {
		return domain.AuthorWithBooks{}, errors.ValidationField("name", reason)
	}
	created, err := s.authors.CreateAuthor(ctx, domain.Author{Name: cleaned})
	if err != nil {
		return domain.AuthorWithBooks{}, s.storeError(ctx, "author", err)
	}
	s.log.WithContext(ctx).WithField("author_id", created.ID).Info("author created")
	return domain.AuthorWithBooks{Author: created, Books: []domain.Book{}}, nil
}

// UpdateAuthor renames an existing author.
func (s *Service) UpdateAuthor(ctx context.Context, id, name string) (domain.AuthorWithBooks, error) {
	if err := auth.Authorize(auth.PrincipalFrom(ctx), auth.CapAuthorEdit); err != nil {
		return domain.AuthorWithBooks{}, err
	}
	if _, err := s.authors.GetAuthor(ctx, id); err != nil {
		return domain.AuthorWithBooks{}, s.storeError(ctx, "author", err)
	}
	cleaned, reason := validate.Name(name)
	if reason != "" {
		return domain.AuthorWithBooks{}, errors.ValidationField("name", reason)
	}
	updated, err := s.authors.UpdateAuthor(ctx, domain.Author{ID: id, Name: cleaned})
	if err != nil {
		return domain.AuthorWithBooks{}, s.storeError(ctx, "author", err)
	}
	s.log.WithContext(ctx).WithField("author_id", id).Info("author updated")
	return s.withBooks(ctx, updated)
}

// DeleteAuthor removes an author. While books still reference the author
// the store reports a conflict and nothing changes.
func (s *Service) DeleteAuthor(ctx context.Context, id string) error {
	if err := auth.Authorize(auth.PrincipalFrom(ctx), auth.CapAuthorDelete); err != nil {
		return err
	}
	if err := s.authors.DeleteAuthor(ctx, id); err != nil {
		if stderrors.Is(err, storage.ErrConflict) {
			return errors.Conflict("author still has books")
		}
		return s.storeError(ctx, "author", err)
	}
	s.log.WithContext(ctx).WithField("author_id", id).Info("author deleted")
	return nil
}

func (s *Service) withBooks(ctx context.Context, author domain.Author) (domain.AuthorWithBooks, error) {
	books, err := s.books.ListBooksByAuthor(ctx, author.ID)
	if err != nil {
		return domain.AuthorWithBooks{}, s.storeError(ctx, "book", err)
	}
	if books == nil {
		books = []domain.Book{}
	}
	return domain.AuthorWithBooks{Author: author, Books: books}, nil
}

// storeError maps storage sentinels onto the service taxonomy. Unexpected
// failures are logged with detail and surfaced generically.
func (s *Service) storeError(ctx context.Context, resource string, err error) error {
	switch {
	case stderrors.Is(err, storage.ErrNotFound):
		return errors.NotFound(resource)
	case stderrors.Is(err, storage.ErrConflict):
		return errors.Conflict(resource + " conflicts with existing records")
	default:
		s.log.WithContext(ctx).WithError(err).Error("store failure")
		return errors.Internal("", err)
	}
}
