package app

import (
	"github.com/openshelf/catalog/internal/app/services/accounts"
	catalogsvc "github.com/openshelf/catalog/internal/app/services/catalog"
	"github.com/openshelf/catalog/internal/app/services/feedback"
	librariessvc "github.com/openshelf/catalog/internal/app/services/libraries"
	"github.com/openshelf/catalog/internal/app/storage"
	"github.com/openshelf/catalog/internal/logging"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Authors    storage.AuthorStore
	Books      storage.BookStore
	Libraries  storage.LibraryStore
	Librarians storage.LibrarianStore
	Accounts   storage.AccountStore
	Messages   storage.MessageStore
}

// Application ties the domain services together.
type Application struct {
	log *logging.Logger

	Catalog   *catalogsvc.Service
	Libraries *librariessvc.Service
	Accounts  *accounts.Service
	Feedback  *feedback.Service
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, log *logging.Logger) (*Application, error) {
	if log == nil {
		log = logging.New("app")
	}

	mem := storage.NewMemory()
	if stores.Authors == nil {
		stores.Authors = mem
	}
	if stores.Books == nil {
		stores.Books = mem
	}
	if stores.Libraries == nil {
		stores.Libraries = mem
	}
	if stores.Librarians == nil {
		stores.Librarians = mem
	}
	if stores.Accounts == nil {
		stores.Accounts = mem
	}
	if stores.Messages == nil {
		stores.Messages = mem
	}

	return &Application{
		log:       log,
		Catalog:   catalogsvc.New(stores.Authors, stores.Books, log),
		Libraries: librariessvc.New(stores.Libraries, stores.Librarians, log),
		Accounts:  accounts.New(stores.Accounts, log),
		Feedback:  feedback.New(stores.Messages, log),
	}, nil
}
