// Package libraries implements library and librarian management.
package libraries

import (
	"context"
	stderrors "errors"

	"github.com/openshelf/catalog/internal/app/auth"
	domain "github.com/openshelf/catalog/internal/app/domain/catalog"
	"github.com/openshelf/catalog/internal/app/storage"
	"github.com/openshelf/catalog/internal/app/validate"
	"github.com/openshelf/catalog/internal/errors"
	"github.com/openshelf/catalog/internal/logging"
)

// Service manages libraries, their book membership and librarians.
type Service struct {
	libraries  storage.LibraryStore
	librarians storage.LibrarianStore
	log        *logging.Logger
}

// New constructs a libraries service.
func New(libs storage.LibraryStore, librarians storage.LibrarianStore, log *logging.Logger) *Service {
	if log == nil {
		log = logging.New("libraries")
	}
	return &Service{libraries: libs, librarians: librarians, log: log}
}

// ListLibraries returns every library with its book ids.
func (s *Service) ListLibraries(ctx context.Context) ([]domain.Library, error) {
	if err := auth.Authorize(auth.PrincipalFrom(ctx), auth.CapLibraryView); err != nil {
		return nil, err
	}
	libs, err := s.libraries.ListLibraries(ctx)
	if err != nil {
		return nil, s.storeError(ctx, "library", err)
	}
	return libs, nil
}

// GetLibrary fetches one library.
func (s *Service) GetLibrary(ctx context.Context, id string) (domain.Library, error) {
	if err := auth.Authorize(auth.PrincipalFrom(ctx), auth.CapLibraryView); err != nil {
		return domain.Library{}, err
	}
	lib, err := s.libraries.GetLibrary(ctx, id)
	if err != nil {
		return domain.Library{}, s.storeError(ctx, "library", err)
	}
	return lib, nil
}

// CreateLibrary validates and persists a new library.
func (s *Service) CreateLibrary(ctx context.Context, name string) (domain.Library, error) {
	if err := auth.Authorize(auth.PrincipalFrom(ctx), auth.CapLibraryCreate); err != nil {
		return domain.Library{}, err
	}
	cleaned, reason := validate.Name(name)
	if reason != "" {
		return domain.Library{}, errors.ValidationField("name", reason)
	}
	created, err := s.libraries.CreateLibrary(ctx, domain.Library{Name: cleaned})
	if err != nil {
		return domain.Library{}, s.storeError(ctx, "library", err)
	}
	created.BookIDs = []string{}
	s.log.WithContext(ctx).WithField("library_id", created.ID).Info("library created")
	return created, nil
}

// UpdateLibrary renames an existing library. Book membership changes go
// through AddBook/RemoveBook.
func (s *Service) UpdateLibrary(ctx context.Context, id, name string) (domain.Library, error) {
	if err := auth.Authorize(auth.PrincipalFrom(ctx), auth.CapLibraryEdit); err != nil {
		return domain.Library{}, err
	}
	if _, err := s.libraries.GetLibrary(ctx, id); err != nil {
		return domain.Library{}, s.storeError(ctx, "library", err)
	}
	cleaned, reason := validate.Name(name)
	if reason != "" {
		return domain.Library{}, errors.ValidationField("name", reason)
	}
	updated, err := s.libraries.UpdateLibrary(ctx, domain.Library{ID: id, Name: cleaned})
	if err != nil {
		return domain.Library{}, s.storeError(ctx, "library", err)
	}
	s.log.WithContext(ctx).WithField("library_id", id).Info("library updated")
	return updated, nil
}

// DeleteLibrary removes a library; its librarian and membership rows follow.
func (s *Service) DeleteLibrary(ctx context.Context, id string) error {
	if err := auth.Authorize(auth.PrincipalFrom(ctx), auth.CapLibraryDelete); err != nil {
		return err
	}
	if err := s.libraries.DeleteLibrary(ctx, id); err != nil {
		return s.storeError(ctx, "library", err)
	}
	s.log.WithContext(ctx).WithField("library_id", id).Info("library deleted")
	return nil
}

// AddBook adds a book to a library's collection. Adding an already present
// book is a no-op.
func (s *Service) AddBook(ctx context.Context, libraryID, bookID string) (domain.Library, error) {
	if err := auth.Authorize(auth.PrincipalFrom(ctx), auth.CapLibraryEdit); err != nil {
		return domain.Library{}, err
	}
	if err := s.libraries.AddLibraryBook(ctx, libraryID, bookID); err != nil {
		return domain.Library{}, s.storeError(ctx, "library", err)
	}
	lib, err := s.libraries.GetLibrary(ctx, libraryID)
	if err != nil {
		return domain.Library{}, s.storeError(ctx, "library", err)
	}
	s.log.WithContext(ctx).
		WithField("library_id", libraryID).
		WithField("book_id", bookID).
		Info("book added to library")
	return lib, nil
}

// RemoveBook removes a book from a library's collection.
func (s *Service) RemoveBook(ctx context.Context, libraryID, bookID string) (domain.Library, error) {
	if err := auth.Authorize(auth.PrincipalFrom(ctx), auth.CapLibraryEdit); err != nil {
		return domain.Library{}, err
	}
	if err := s.libraries.RemoveLibraryBook(ctx, libraryID, bookID); err != nil {
		return domain.Library{}, s.storeError(ctx, "library", err)
	}
	lib, err := s.libraries.GetLibrary(ctx, libraryID)
	if err != nil {
		return domain.Library{}, s.storeError(ctx, "library", err)
	}
	s.log.WithContext(ctx).
		WithField("library_id", libraryID).
		WithField("book_id", bookID).
		Info("book removed from library")
	return lib, nil
}

// ListLibrarians returns every librarian.
func (s *Service) ListLibrarians(ctx context.Context) ([]domain.Librarian, error) {
	if err := auth.Authorize(auth.PrincipalFrom(ctx), auth.CapLibrarianView); err != nil {
		return nil, err
	}
	result, err := s.librarians.ListLibrarians(ctx)
	if err != nil {
		return nil, s.storeError(ctx, "librarian", err)
	}
	return result, nil
}

// GetLibrarian fetches one librarian.
func (s *Service) GetLibrarian(ctx context.Context, id string) (domain.Librarian, error) {
	if err := auth.Authorize(auth.PrincipalFrom(ctx), auth.CapLibrarianView); err != nil {
		return domain.Librarian{}, err
	}
	lbn, err := s.librarians.GetLibrarian(ctx, id)
	if err != nil {
		return domain.Librarian{}, s.storeError(ctx, "librarian", err)
	}
	return lbn, nil
}

// CreateLibrarian assigns a new librarian to a library. A library holds at
// most one librarian; a second assignment conflicts.
func (s *Service) CreateLibrarian(ctx context.Context, name, libraryID string) (domain.Librarian, error) {
	if err := auth.Authorize(auth.PrincipalFrom(ctx), auth.CapLibrarianCreate); err != nil {
		return domain.Librarian{}, err
	}
	cleaned, reason := validate.Name(name)
	if reason != "" {
		return domain.Librarian{}, errors.ValidationField("name", reason)
	}
	if _, err := s.libraries.GetLibrary(ctx, libraryID); err != nil {
		return domain.Librarian{}, s.storeError(ctx, "library", err)
	}
	created, err := s.librarians.CreateLibrarian(ctx, domain.Librarian{Name: cleaned, LibraryID: libraryID})
	if err != nil {
		if stderrors.Is(err, storage.ErrConflict) {
			return domain.Librarian{}, errors.Conflict("library already has a librarian")
		}
		return domain.Librarian{}, s.storeError(ctx, "librarian", err)
	}
	s.log.WithContext(ctx).WithField("librarian_id", created.ID).Info("librarian created")
	return created, nil
}

// UpdateLibrarian renames or reassigns a librarian.
func (s *Service) UpdateLibrarian(ctx context.Context, id, name, libraryID string) (domain.Librarian, error) {
	if err := auth.Authorize(auth.PrincipalFrom(ctx), auth.CapLibrarianEdit); err != nil {
		return domain.Librarian{}, err
	}
	existing, err := s.librarians.GetLibrarian(ctx, id)
	if err != nil {
		return domain.Librarian{}, s.storeError(ctx, "librarian", err)
	}
	cleaned, reason := validate.Name(name)
	if reason != "" {
		return domain.Librarian{}, errors.ValidationField("name", reason)
	}
	if libraryID == "" {
		libraryID = existing.LibraryID
	}
	updated, err := s.librarians.UpdateLibrarian(ctx, domain.Librarian{ID: id, Name: cleaned, LibraryID: libraryID})
	if err != nil {
		if stderrors.Is(err, storage.ErrConflict) {
			return domain.Librarian{}, errors.Conflict("library already has a librarian")
		}
		return domain.Librarian{}, s.storeError(ctx, "librarian", err)
	}
	s.log.WithContext(ctx).WithField("librarian_id", id).Info("librarian updated")
	return updated, nil
}

// DeleteLibrarian removes a librarian.
func (s *Service) DeleteLibrarian(ctx context.Context, id string) error {
	if err := auth.Authorize(auth.PrincipalFrom(ctx), auth.CapLibrarianDelete); err != nil {
		return err
	}
	if err := s.librarians.DeleteLibrarian(ctx, id); err != nil {
		return s.storeError(ctx, "librarian", err)
	}
	s.log.WithContext(ctx).WithField("librarian_id", id).Info("librarian deleted")
	return nil
}

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
