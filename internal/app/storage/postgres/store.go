// Package postgres implements the storage interfaces backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/openshelf/catalog/internal/app/domain/account"
	"github.com/openshelf/catalog/internal/app/domain/catalog"
	"github.com/openshelf/catalog/internal/app/domain/feedback"
	"github.com/openshelf/catalog/internal/app/storage"
)

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ storage.AuthorStore = (*Store)(nil)
var _ storage.BookStore = (*Store)(nil)
var _ storage.LibraryStore = (*Store)(nil)
var _ storage.LibrarianStore = (*Store)(nil)
var _ storage.AccountStore = (*Store)(nil)
var _ storage.MessageStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// mapError translates driver errors onto the storage sentinels. Foreign-key
// violations (protect-on-delete, missing references) and unique violations
// both surface as ErrConflict.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23503", "23505": // foreign_key_violation, unique_violation
			return storage.ErrConflict
		}
	}
	return err
}

// --- AuthorStore -----------------------------------------------------------

func (s *Store) CreateAuthor(ctx context.Context, author catalog.Author) (catalog.Author, error) {
	if author.ID == "" {
		author.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	author.CreatedAt = now
	author.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO authors (id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`, author.ID, author.Name, author.CreatedAt, author.UpdatedAt)
	if err != nil {
		return catalog.Author{}, mapError(err)
	}
	return author, nil
}

func (s *Store) UpdateAuthor(ctx context.Context, author catalog.Author) (catalog.Author, error) {
	existing, err := s.GetAuthor(ctx, author.ID)
	if err != nil {
		return catalog.Author{}, err
	}

	author.CreatedAt = existing.CreatedAt
	author.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE authors
		SET name = $2, updated_at = $3
		WHERE id = $1
	`, author.ID, author.Name, author.UpdatedAt)
	if err != nil {
		return catalog.Author{}, mapError(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return catalog.Author{}, storage.ErrNotFound
	}
	return author, nil
}

func (s *Store) GetAuthor(ctx context.Context, id string) (catalog.Author, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, created_at, updated_at
		FROM authors
		WHERE id = $1
	`, id)

	var author catalog.Author
	if err := row.Scan(&author.ID, &author.Name, &author.CreatedAt, &author.UpdatedAt); err != nil {
		return catalog.Author{}, mapError(err)
	}
	return author, nil
}

func (s *Store) ListAuthors(ctx context.Context) ([]catalog.Author, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, created_at, updated_at
		FROM authors
		ORDER BY created_at
	`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var result []catalog.Author
	for rows.Next() {
		var author catalog.Author
		if err := rows.Scan(&author.ID, &author.Name, &author.CreatedAt, &author.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, author)
	}
	return result, rows.Err()
}

func (s *Store) DeleteAuthor(ctx context.Context, id string) error {
	// books.author_id is declared ON DELETE RESTRICT; the driver reports
	// the violation and mapError turns it into ErrConflict.
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM authors WHERE id = $1
	`, id)
	if err != nil {
		return mapError(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// --- BookStore --------------------------------------------------------------

func (s *Store) CreateBook(ctx context.Context, book catalog.Book) (catalog.Book, error) {
	if book.ID == "" {
		book.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	book.CreatedAt = now
	book.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO books (id, title, author_id, publication_year, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, book.ID, book.Title, book.AuthorID, book.PublicationYear, book.CreatedAt, book.UpdatedAt)
	if err != nil {
		return catalog.Book{}, mapError(err)
	}
	return book, nil
}

func (s *Store) UpdateBook(ctx context.Context, book catalog.Book) (catalog.Book, error) {
	existing, err := s.GetBook(ctx, book.ID)
	if err != nil {
		return catalog.Book{}, err
	}

	book.CreatedAt = existing.CreatedAt
	book.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE books
		SET title = $2, author_id = $3, publication_year = $4, updated_at = $5
		WHERE id = $1
	`, book.ID, book.Title, book.AuthorID, book.PublicationYear, book.UpdatedAt)
	if err != nil {
		return catalog.Book{}, mapError(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return catalog.Book{}, storage.ErrNotFound
	}
	return book, nil
}

func (s *Store) GetBook(ctx context.Context, id string) (catalog.Book, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, author_id, publication_year, created_at, updated_at
		FROM books
		WHERE id = $1
	`, id)

	var book catalog.Book
	if err := row.Scan(&book.ID, &book.Title, &book.AuthorID, &book.PublicationYear, &book.CreatedAt, &book.UpdatedAt); err != nil {
		return catalog.Book{}, mapError(err)
	}
	return book, nil
}

// ListBooks composes the filter into a single conjunctive WHERE clause and
// one ORDER BY, so permutations of the same key set produce the same query.
func (s *Store) ListBooks(ctx context.Context, filter catalog.BookFilter) ([]catalog.Book, error) {
	query := strings.Builder{}
	query.WriteString(`
		SELECT b.id, b.title, b.author_id, b.publication_year, b.created_at, b.updated_at
		FROM books b
		JOIN authors a ON a.id = b.author_id
	`)

	var (
		conditions []string
		args       []any
	)
	if filter.Title != "" {
		args = append(args, "%"+filter.Title+"%")
		conditions = append(conditions, fmt.Sprintf("b.title ILIKE $%d", len(args)))
	}
	if filter.Author != "" {
		args = append(args, "%"+filter.Author+"%")
		conditions = append(conditions, fmt.Sprintf("a.name ILIKE $%d", len(args)))
	}
	if filter.PublicationYear != nil {
		args = append(args, *filter.PublicationYear)
		conditions = append(conditions, fmt.Sprintf("b.publication_year = $%d", len(args)))
	}
	if len(conditions) > 0 {
		query.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}

	switch filter.OrderBy {
	case catalog.OrderByTitle:
		query.WriteString(" ORDER BY b.title, b.created_at, b.id")
	case catalog.OrderByAuthor:
		query.WriteString(" ORDER BY a.name, b.created_at, b.id")
	case catalog.OrderByPublicationYear:
		query.WriteString(" ORDER BY b.publication_year, b.created_at, b.id")
	default:
		query.WriteString(" ORDER BY b.created_at, b.id")
	}

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var result []catalog.Book
	for rows.Next() {
		var book catalog.Book
		if err := rows.Scan(&book.ID, &book.Title, &book.AuthorID, &book.PublicationYear, &book.CreatedAt, &book.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, book)
	}
	return result, rows.Err()
}

func (s *Store) ListBooksByAuthor(ctx context.Context, authorID string) ([]catalog.Book, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, author_id, publication_year, created_at, updated_at
		FROM books
		WHERE author_id = $1
		ORDER BY created_at
	`, authorID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var result []catalog.Book
	for rows.Next() {
		var book catalog.Book
		if err := rows.Scan(&book.ID, &book.Title, &book.AuthorID, &book.PublicationYear, &book.CreatedAt, &book.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, book)
	}
	return result, rows.Err()
}

func (s *Store) DeleteBook(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM books WHERE id = $1
	`, id)
	if err != nil {
		return mapError(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// --- LibraryStore -----------------------------------------------------------

func (s *Store) CreateLibrary(ctx context.Context, lib catalog.Library) (catalog.Library, error) {
	if lib.ID == "" {
		lib.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	lib.CreatedAt = now
	lib.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO libraries (id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`, lib.ID, lib.Name, lib.CreatedAt, lib.UpdatedAt)
	if err != nil {
		return catalog.Library{}, mapError(err)
	}
	lib.BookIDs = nil
	return lib, nil
}

func (s *Store) UpdateLibrary(ctx context.Context, lib catalog.Library) (catalog.Library, error) {
	existing, err := s.GetLibrary(ctx, lib.ID)
	if err != nil {
		return catalog.Library{}, err
	}

	lib.CreatedAt = existing.CreatedAt
	lib.UpdatedAt = time.Now().UTC()
	lib.BookIDs = existing.BookIDs

	result, err := s.db.ExecContext(ctx, `
		UPDATE libraries
		SET name = $2, updated_at = $3
		WHERE id = $1
	`, lib.ID, lib.Name, lib.UpdatedAt)
	if err != nil {
		return catalog.Library{}, mapError(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return catalog.Library{}, storage.ErrNotFound
	}
	return lib, nil
}

func (s *Store) GetLibrary(ctx context.Context, id string) (catalog.Library, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, created_at, updated_at
		FROM libraries
		WHERE id = $1
	`, id)

	var lib catalog.Library
	if err := row.Scan(&lib.ID, &lib.Name, &lib.CreatedAt, &lib.UpdatedAt); err != nil {
		return catalog.Library{}, mapError(err)
	}

	bookIDs, err := s.libraryBookIDs(ctx, id)
	if err != nil {
		return catalog.Library{}, err
	}
	lib.BookIDs = bookIDs
	return lib, nil
}

func (s *Store) ListLibraries(ctx context.Context) ([]catalog.Library, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, created_at, updated_at
		FROM libraries
		ORDER BY created_at
	`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var result []catalog.Library
	for rows.Next() {
		var lib catalog.Library
		if err := rows.Scan(&lib.ID, &lib.Name, &lib.CreatedAt, &lib.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, lib)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		bookIDs, err := s.libraryBookIDs(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].BookIDs = bookIDs
	}
	return result, nil
}

func (s *Store) DeleteLibrary(ctx context.Context, id string) error {
	// librarians.library_id and library_books.library_id cascade.
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM libraries WHERE id = $1
	`, id)
	if err != nil {
		return mapError(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) AddLibraryBook(ctx context.Context, libraryID, bookID string) error {
	if _, err := s.GetLibrary(ctx, libraryID); err != nil {
		return err
	}
	if _, err := s.GetBook(ctx, bookID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO library_books (library_id, book_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, libraryID, bookID)
	return mapError(err)
}

func (s *Store) RemoveLibraryBook(ctx context.Context, libraryID, bookID string) error {
	if _, err := s.GetLibrary(ctx, libraryID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM library_books WHERE library_id = $1 AND book_id = $2
	`, libraryID, bookID)
	return mapError(err)
}

func (s *Store) libraryBookIDs(ctx context.Context, libraryID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT book_id FROM library_books
		WHERE library_id = $1
		ORDER BY book_id
	`, libraryID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// --- LibrarianStore ---------------------------------------------------------

func (s *Store) CreateLibrarian(ctx context.Context, lbn catalog.Librarian) (catalog.Librarian, error) {
	if lbn.ID == "" {
		lbn.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	lbn.CreatedAt = now
	lbn.UpdatedAt = now

	// librarians.library_id carries a UNIQUE constraint: one librarian per
	// library. Violations map to ErrConflict.
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO librarians (id, name, library_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, lbn.ID, lbn.Name, lbn.LibraryID, lbn.CreatedAt, lbn.UpdatedAt)
	if err != nil {
		return catalog.Librarian{}, mapError(err)
	}
	return lbn, nil
}

func (s *Store) UpdateLibrarian(ctx context.Context, lbn catalog.Librarian) (catalog.Librarian, error) {
	existing, err := s.GetLibrarian(ctx, lbn.ID)
	if err != nil {
		return catalog.Librarian{}, err
	}

	lbn.CreatedAt = existing.CreatedAt
	lbn.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE librarians
		SET name = $2, library_id = $3, updated_at = $4
		WHERE id = $1
	`, lbn.ID, lbn.Name, lbn.LibraryID, lbn.UpdatedAt)
	if err != nil {
		return catalog.Librarian{}, mapError(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return catalog.Librarian{}, storage.ErrNotFound
	}
	return lbn, nil
}

func (s *Store) GetLibrarian(ctx context.Context, id string) (catalog.Librarian, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, library_id, created_at, updated_at
		FROM librarians
		WHERE id = $1
	`, id)

	var lbn catalog.Librarian
	if err := row.Scan(&lbn.ID, &lbn.Name, &lbn.LibraryID, &lbn.CreatedAt, &lbn.UpdatedAt); err != nil {
		return catalog.Librarian{}, mapError(err)
	}
	return lbn, nil
}

func (s *Store) ListLibrarians(ctx context.Context) ([]catalog.Librarian, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, library_id, created_at, updated_at
		FROM librarians
		ORDER BY created_at
	`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var result []catalog.Librarian
	for rows.Next() {
		var lbn catalog.Librarian
		if err := rows.Scan(&lbn.ID, &lbn.Name, &lbn.LibraryID, &lbn.CreatedAt, &lbn.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, lbn)
	}
	return result, rows.Err()
}

func (s *Store) DeleteLibrarian(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM librarians WHERE id = $1
	`, id)
	if err != nil {
		return mapError(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// --- AccountStore -----------------------------------------------------------

func (s *Store) CreateAccount(ctx context.Context, acct account.Account) (account.Account, error) {
	if acct.ID == "" {
		acct.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	acct.CreatedAt = now
	acct.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, username, email, password_hash, date_of_birth, profile_photo, is_staff, is_superuser, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, acct.ID, acct.Username, acct.Email, acct.PasswordHash, acct.DateOfBirth, acct.ProfilePhoto, acct.IsStaff, acct.IsSuperuser, acct.IsActive, acct.CreatedAt, acct.UpdatedAt)
	if err != nil {
		return account.Account{}, mapError(err)
	}
	return acct, nil
}

func (s *Store) UpdateAccount(ctx context.Context, acct account.Account) (account.Account, error) {
	existing, err := s.GetAccount(ctx, acct.ID)
	if err != nil {
		return account.Account{}, err
	}

	acct.CreatedAt = existing.CreatedAt
	acct.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE accounts
		SET username = $2, email = $3, password_hash = $4, date_of_birth = $5, profile_photo = $6, is_staff = $7, is_superuser = $8, is_active = $9, updated_at = $10
		WHERE id = $1
	`, acct.ID, acct.Username, acct.Email, acct.PasswordHash, acct.DateOfBirth, acct.ProfilePhoto, acct.IsStaff, acct.IsSuperuser, acct.IsActive, acct.UpdatedAt)
	if err != nil {
		return account.Account{}, mapError(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return account.Account{}, storage.ErrNotFound
	}
	return acct, nil
}

const accountColumns = `id, username, email, password_hash, date_of_birth, profile_photo, is_staff, is_superuser, is_active, created_at, updated_at`

func scanAccount(row interface{ Scan(...any) error }) (account.Account, error) {
	var acct account.Account
	err := row.Scan(&acct.ID, &acct.Username, &acct.Email, &acct.PasswordHash, &acct.DateOfBirth, &acct.ProfilePhoto, &acct.IsStaff, &acct.IsSuperuser, &acct.IsActive, &acct.CreatedAt, &acct.UpdatedAt)
	if err != nil {
		return account.Account{}, mapError(err)
	}
	return acct, nil
}

func (s *Store) GetAccount(ctx context.Context, id string) (account.Account, error) {
	return scanAccount(s.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+` FROM accounts WHERE id = $1
	`, id))
}

func (s *Store) GetAccountByUsername(ctx context.Context, username string) (account.Account, error) {
	return scanAccount(s.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+` FROM accounts WHERE lower(username) = lower($1)
	`, username))
}

func (s *Store) GetAccountByEmail(ctx context.Context, email string) (account.Account, error) {
	return scanAccount(s.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+` FROM accounts WHERE lower(email) = lower($1)
	`, email))
}

func (s *Store) ListAccounts(ctx context.Context, search string) ([]account.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE $1 = '' OR username ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%'
		ORDER BY created_at
	`, strings.TrimSpace(search))
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var result []account.Account
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, acct)
	}
	return result, rows.Err()
}

func (s *Store) DeleteAccount(ctx context.Context, id string) error {
	// account_profiles.account_id cascades.
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM accounts WHERE id = $1
	`, id)
	if err != nil {
		return mapError(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) CreateProfile(ctx context.Context, profile account.Profile) (account.Profile, error) {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	profile.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO account_profiles (id, account_id, role, created_at)
		VALUES ($1, $2, $3, $4)
	`, profile.ID, profile.AccountID, string(profile.Role), profile.CreatedAt)
	if err != nil {
		return account.Profile{}, mapError(err)
	}
	return profile, nil
}

func (s *Store) GetProfileByAccount(ctx context.Context, accountID string) (account.Profile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, account_id, role, created_at
		FROM account_profiles
		WHERE account_id = $1
	`, accountID)

	var (
		profile account.Profile
		role    string
	)
	if err := row.Scan(&profile.ID, &profile.AccountID, &role, &profile.CreatedAt); err != nil {
		return account.Profile{}, mapError(err)
	}
	profile.Role = account.Role(role)
	return profile, nil
}

func (s *Store) UpdateProfile(ctx context.Context, profile account.Profile) (account.Profile, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE account_profiles
		SET role = $2
		WHERE id = $1
	`, profile.ID, string(profile.Role))
	if err != nil {
		return account.Profile{}, mapError(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return account.Profile{}, storage.ErrNotFound
	}
	return profile, nil
}

// --- MessageStore -----------------------------------------------------------

func (s *Store) CreateMessage(ctx context.Context, msg feedback.Message) (feedback.Message, error) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	msg.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, name, email, message, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, msg.ID, msg.Name, msg.Email, msg.Message, msg.CreatedAt)
	if err != nil {
		return feedback.Message{}, mapError(err)
	}
	return msg, nil
}

func (s *Store) ListMessages(ctx context.Context) ([]feedback.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, message, created_at
		FROM messages
		ORDER BY created_at
	`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var result []feedback.Message
	for rows.Next() {
		var msg feedback.Message
		if err := rows.Scan(&msg.ID, &msg.Name, &msg.Email, &msg.Message, &msg.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, msg)
	}
	return result, rows.Err()
}
