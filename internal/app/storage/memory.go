package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/openshelf/catalog/internal/app/domain/account"
	"github.com/openshelf/catalog/internal/app/domain/catalog"
	"github.com/openshelf/catalog/internal/app/domain/feedback"
)

// Memory is a thread-safe in-memory persistence layer implementing every
// storage interface in this package. It is intended for tests and
// prototyping and deliberately keeps the implementation simple.
type Memory struct {
	mu         sync.RWMutex
	nextID     int64
	authors    map[string]catalog.Author
	books      map[string]catalog.Book
	libraries  map[string]catalog.Library
	librarians map[string]catalog.Librarian
	accounts   map[string]account.Account
	profiles   map[string]account.Profile
	messages   map[string]feedback.Message
}

var _ AuthorStore = (*Memory)(nil)
var _ BookStore = (*Memory)(nil)
var _ LibraryStore = (*Memory)(nil)
var _ LibrarianStore = (*Memory)(nil)
var _ AccountStore = (*Memory)(nil)
var _ MessageStore = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		nextID:     1,
		authors:    make(map[string]catalog.Author),
		books:      make(map[string]catalog.Book),
		libraries:  make(map[string]catalog.Library),
		librarians: make(map[string]catalog.Librarian),
		accounts:   make(map[string]account.Account),
		profiles:   make(map[string]account.Profile),
		messages:   make(map[string]feedback.Message),
	}
}

func (m *Memory) nextIDLocked() string {
	id := m.nextID
	m.nextID++
	return fmt.Sprintf("%d", id)
}

// AuthorStore implementation -------------------------------------------------

func (m *Memory) CreateAuthor(_ context.Context, author catalog.Author) (catalog.Author, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if author.ID == "" {
		author.ID = m.nextIDLocked()
	} else if _, exists := m.authors[author.ID]; exists {
		return catalog.Author{}, ErrConflict
	}

	now := time.Now().UTC()
	author.CreatedAt = now
	author.UpdatedAt = now

	m.authors[author.ID] = author
	return author, nil
}

func (m *Memory) UpdateAuthor(_ context.Context, author catalog.Author) (catalog.Author, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	original, ok := m.authors[author.ID]
	if !ok {
		return catalog.Author{}, ErrNotFound
	}

	author.CreatedAt = original.CreatedAt
	author.UpdatedAt = time.Now().UTC()

	m.authors[author.ID] = author
	return author, nil
}

func (m *Memory) GetAuthor(_ context.Context, id string) (catalog.Author, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	author, ok := m.authors[id]
	if !ok {
		return catalog.Author{}, ErrNotFound
	}
	return author, nil
}

func (m *Memory) ListAuthors(_ context.Context) ([]catalog.Author, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]catalog.Author, 0, len(m.authors))
	for _, author := range m.authors {
		result = append(result, author)
	}
	sortByCreated(result, func(a catalog.Author) (time.Time, string) { return a.CreatedAt, a.ID })
	return result, nil
}

// DeleteAuthor enforces protect-on-delete: the author stays while any book
// references it.
func (m *Memory) DeleteAuthor(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.authors[id]; !ok {
		return ErrNotFound
	}
	for _, book := range m.books {
		if book.AuthorID == id {
			return ErrConflict
		}
	}
	delete(m.authors, id)
	return nil
}

// BookStore implementation ---------------------------------------------------

func (m *Memory) CreateBook(_ context.Context, book catalog.Book) (catalog.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.authors[book.AuthorID]; !ok {
		return catalog.Book{}, ErrConflict
	}

	if book.ID == "" {
		book.ID = m.nextIDLocked()
	} else if _, exists := m.books[book.ID]; exists {
		return catalog.Book{}, ErrConflict
	}

	now := time.Now().UTC()
	book.CreatedAt = now
	book.UpdatedAt = now

	m.books[book.ID] = book
	return book, nil
}

func (m *Memory) UpdateBook(_ context.Context, book catalog.Book) (catalog.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	original, ok := m.books[book.ID]
	if !ok {
		return catalog.Book{}, ErrNotFound
	}
	if _, ok := m.authors[book.AuthorID]; !ok {
		return catalog.Book{}, ErrConflict
	}

	book.CreatedAt = original.CreatedAt
	book.UpdatedAt = time.Now().UTC()

	m.books[book.ID] = book
	return book, nil
}

func (m *Memory) GetBook(_ context.Context, id string) (catalog.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	book, ok := m.books[id]
	if !ok {
		return catalog.Book{}, ErrNotFound
	}
	return book, nil
}

func (m *Memory) ListBooks(_ context.Context, filter catalog.BookFilter) ([]catalog.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	authorNames := make(map[string]string, len(m.authors))
	for id, author := range m.authors {
		authorNames[id] = author.Name
	}

	result := make([]catalog.Book, 0, len(m.books))
	for _, book := range m.books {
		if filter.Matches(book, authorNames[book.AuthorID]) {
			result = append(result, book)
		}
	}
	sortByCreated(result, func(b catalog.Book) (time.Time, string) { return b.CreatedAt, b.ID })
	filter.Sort(result, authorNames)
	return result, nil
}

func (m *Memory) ListBooksByAuthor(_ context.Context, authorID string) ([]catalog.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []catalog.Book
	for _, book := range m.books {
		if book.AuthorID == authorID {
			result = append(result, book)
		}
	}
	sortByCreated(result, func(b catalog.Book) (time.Time, string) { return b.CreatedAt, b.ID })
	return result, nil
}

func (m *Memory) DeleteBook(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.books[id]; !ok {
		return ErrNotFound
	}
	delete(m.books, id)

	// Membership rows follow the book.
	for libID, lib := range m.libraries {
		lib.BookIDs = removeString(lib.BookIDs, id)
		m.libraries[libID] = lib
	}
	return nil
}

// LibraryStore implementation ------------------------------------------------

func (m *Memory) CreateLibrary(_ context.Context, lib catalog.Library) (catalog.Library, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if lib.ID == "" {
		lib.ID = m.nextIDLocked()
	} else if _, exists := m.libraries[lib.ID]; exists {
		return catalog.Library{}, ErrConflict
	}

	now := time.Now().UTC()
	lib.CreatedAt = now
	lib.UpdatedAt = now
	lib.BookIDs = append([]string(nil), lib.BookIDs...)

	m.libraries[lib.ID] = lib
	return cloneLibrary(lib), nil
}

func (m *Memory) UpdateLibrary(_ context.Context, lib catalog.Library) (catalog.Library, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	original, ok := m.libraries[lib.ID]
	if !ok {
		return catalog.Library{}, ErrNotFound
	}

	lib.CreatedAt = original.CreatedAt
	lib.UpdatedAt = time.Now().UTC()
	// Membership changes go through AddLibraryBook/RemoveLibraryBook only.
	lib.BookIDs = append([]string(nil), original.BookIDs...)

	m.libraries[lib.ID] = lib
	return cloneLibrary(lib), nil
}

func (m *Memory) GetLibrary(_ context.Context, id string) (catalog.Library, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	lib, ok := m.libraries[id]
	if !ok {
		return catalog.Library{}, ErrNotFound
	}
	return cloneLibrary(lib), nil
}

func (m *Memory) ListLibraries(_ context.Context) ([]catalog.Library, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]catalog.Library, 0, len(m.libraries))
	for _, lib := range m.libraries {
		result = append(result, cloneLibrary(lib))
	}
	sortByCreated(result, func(l catalog.Library) (time.Time, string) { return l.CreatedAt, l.ID })
	return result, nil
}

// DeleteLibrary cascades to the managing librarian, mirroring the
// one-to-one ownership rule.
func (m *Memory) DeleteLibrary(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.libraries[id]; !ok {
		return ErrNotFound
	}
	delete(m.libraries, id)
	for lbnID, lbn := range m.librarians {
		if lbn.LibraryID == id {
			delete(m.librarians, lbnID)
		}
	}
	return nil
}

func (m *Memory) AddLibraryBook(_ context.Context, libraryID, bookID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	lib, ok := m.libraries[libraryID]
	if !ok {
		return ErrNotFound
	}
	if _, ok := m.books[bookID]; !ok {
		return ErrNotFound
	}
	for _, existing := range lib.BookIDs {
		if existing == bookID {
			return nil
		}
	}
	lib.BookIDs = append(lib.BookIDs, bookID)
	lib.UpdatedAt = time.Now().UTC()
	m.libraries[libraryID] = lib
	return nil
}

func (m *Memory) RemoveLibraryBook(_ context.Context, libraryID, bookID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	lib, ok := m.libraries[libraryID]
	if !ok {
		return ErrNotFound
	}
	lib.BookIDs = removeString(lib.BookIDs, bookID)
	lib.UpdatedAt = time.Now().UTC()
	m.libraries[libraryID] = lib
	return nil
}

// LibrarianStore implementation ----------------------------------------------

func (m *Memory) CreateLibrarian(_ context.Context, lbn catalog.Librarian) (catalog.Librarian, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.libraries[lbn.LibraryID]; !ok {
		return catalog.Librarian{}, ErrNotFound
	}
	for _, existing := range m.librarians {
		if existing.LibraryID == lbn.LibraryID {
			return catalog.Librarian{}, ErrConflict
		}
	}

	if lbn.ID == "" {
		lbn.ID = m.nextIDLocked()
	} else if _, exists := m.librarians[lbn.ID]; exists {
		return catalog.Librarian{}, ErrConflict
	}

	now := time.Now().UTC()
	lbn.CreatedAt = now
	lbn.UpdatedAt = now

	m.librarians[lbn.ID] = lbn
	return lbn, nil
}

func (m *Memory) UpdateLibrarian(_ context.Context, lbn catalog.Librarian) (catalog.Librarian, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	original, ok := m.librarians[lbn.ID]
	if !ok {
		return catalog.Librarian{}, ErrNotFound
	}
	if lbn.LibraryID != original.LibraryID {
		if _, ok := m.libraries[lbn.LibraryID]; !ok {
			return catalog.Librarian{}, ErrNotFound
		}
		for _, existing := range m.librarians {
			if existing.ID != lbn.ID && existing.LibraryID == lbn.LibraryID {
				return catalog.Librarian{}, ErrConflict
			}
		}
	}

	lbn.CreatedAt = original.CreatedAt
	lbn.UpdatedAt = time.Now().UTC()

	m.librarians[lbn.ID] = lbn
	return lbn, nil
}

func (m *Memory) GetLibrarian(_ context.Context, id string) (catalog.Librarian, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	lbn, ok := m.librarians[id]
	if !ok {
		return catalog.Librarian{}, ErrNotFound
	}
	return lbn, nil
}

func (m *Memory) ListLibrarians(_ context.Context) ([]catalog.Librarian, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]catalog.Librarian, 0, len(m.librarians))
	for _, lbn := range m.librarians {
		result = append(result, lbn)
	}
	sortByCreated(result, func(l catalog.Librarian) (time.Time, string) { return l.CreatedAt, l.ID })
	return result, nil
}

func (m *Memory) DeleteLibrarian(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.librarians[id]; !ok {
		return ErrNotFound
	}
	delete(m.librarians, id)
	return nil
}

// AccountStore implementation ------------------------------------------------

func (m *Memory) CreateAccount(_ context.Context, acct account.Account) (account.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.accounts {
		if strings.EqualFold(existing.Username, acct.Username) || strings.EqualFold(existing.Email, acct.Email) {
			return account.Account{}, ErrConflict
		}
	}

	if acct.ID == "" {
		acct.ID = m.nextIDLocked()
	} else if _, exists := m.accounts[acct.ID]; exists {
		return account.Account{}, ErrConflict
	}

	now := time.Now().UTC()
	acct.CreatedAt = now
	acct.UpdatedAt = now

	m.accounts[acct.ID] = acct
	return acct, nil
}

func (m *Memory) UpdateAccount(_ context.Context, acct account.Account) (account.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	original, ok := m.accounts[acct.ID]
	if !ok {
		return account.Account{}, ErrNotFound
	}
	for _, existing := range m.accounts {
		if existing.ID == acct.ID {
			continue
		}
		if strings.EqualFold(existing.Username, acct.Username) || strings.EqualFold(existing.Email, acct.Email) {
			return account.Account{}, ErrConflict
		}
	}

	acct.CreatedAt = original.CreatedAt
	acct.UpdatedAt = time.Now().UTC()

	m.accounts[acct.ID] = acct
	return acct, nil
}

func (m *Memory) GetAccount(_ context.Context, id string) (account.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	acct, ok := m.accounts[id]
	if !ok {
		return account.Account{}, ErrNotFound
	}
	return acct, nil
}

func (m *Memory) GetAccountByUsername(_ context.Context, username string) (account.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, acct := range m.accounts {
		if strings.EqualFold(acct.Username, username) {
			return acct, nil
		}
	}
	return account.Account{}, ErrNotFound
}

func (m *Memory) GetAccountByEmail(_ context.Context, email string) (account.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, acct := range m.accounts {
		if strings.EqualFold(acct.Email, email) {
			return acct, nil
		}
	}
	return account.Account{}, ErrNotFound
}

func (m *Memory) ListAccounts(_ context.Context, search string) ([]account.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(search))
	result := make([]account.Account, 0, len(m.accounts))
	for _, acct := range m.accounts {
		if needle != "" &&
			!strings.Contains(strings.ToLower(acct.Username), needle) &&
			!strings.Contains(strings.ToLower(acct.Email), needle) {
			continue
		}
		result = append(result, acct)
	}
	sortByCreated(result, func(a account.Account) (time.Time, string) { return a.CreatedAt, a.ID })
	return result, nil
}

func (m *Memory) DeleteAccount(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[id]; !ok {
		return ErrNotFound
	}
	delete(m.accounts, id)
	for profileID, profile := range m.profiles {
		if profile.AccountID == id {
			delete(m.profiles, profileID)
		}
	}
	return nil
}

func (m *Memory) CreateProfile(_ context.Context, profile account.Profile) (account.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[profile.AccountID]; !ok {
		return account.Profile{}, ErrNotFound
	}
	for _, existing := range m.profiles {
		if existing.AccountID == profile.AccountID {
			return account.Profile{}, ErrConflict
		}
	}

	if profile.ID == "" {
		profile.ID = m.nextIDLocked()
	}
	profile.CreatedAt = time.Now().UTC()

	m.profiles[profile.ID] = profile
	return profile, nil
}

func (m *Memory) GetProfileByAccount(_ context.Context, accountID string) (account.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, profile := range m.profiles {
		if profile.AccountID == accountID {
			return profile, nil
		}
	}
	return account.Profile{}, ErrNotFound
}

func (m *Memory) UpdateProfile(_ context.Context, profile account.Profile) (account.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	original, ok := m.profiles[profile.ID]
	if !ok {
		return account.Profile{}, ErrNotFound
	}
	profile.AccountID = original.AccountID
	profile.CreatedAt = original.CreatedAt

	m.profiles[profile.ID] = profile
	return profile, nil
}

// MessageStore implementation ------------------------------------------------

func (m *Memory) CreateMessage(_ context.Context, msg feedback.Message) (feedback.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if msg.ID == "" {
		msg.ID = m.nextIDLocked()
	}
	msg.CreatedAt = time.Now().UTC()

	m.messages[msg.ID] = msg
	return msg, nil
}

func (m *Memory) ListMessages(_ context.Context) ([]feedback.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]feedback.Message, 0, len(m.messages))
	for _, msg := range m.messages {
		result = append(result, msg)
	}
	sortByCreated(result, func(msg feedback.Message) (time.Time, string) { return msg.CreatedAt, msg.ID })
	return result, nil
}

// helpers ---------------------------------------------------------------------

func sortByCreated[T any](items []T, key func(T) (time.Time, string)) {
	sort.SliceStable(items, func(i, j int) bool {
		ti, idi := key(items[i])
		tj, idj := key(items[j])
		if ti.Equal(tj) {
			return idi < idj
		}
		return ti.Before(tj)
	})
}

func cloneLibrary(lib catalog.Library) catalog.Library {
	lib.BookIDs = append([]string(nil), lib.BookIDs...)
	return lib
}

func removeString(values []string, target string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != target {
			out = append(out, v)
		}
	}
	return out
}
