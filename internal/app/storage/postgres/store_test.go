package postgres

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/openshelf/catalog/internal/app/domain/account"
	"github.com/openshelf/catalog/internal/app/domain/catalog"
	"github.com/openshelf/catalog/internal/app/storage"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

func TestGetBook_NotFound(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("SELECT .+ FROM books").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := store.GetBook(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestDeleteAuthor_ForeignKeyViolationIsConflict(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("DELETE FROM authors").
		WithArgs("a1").
		WillReturnError(&pq.Error{Code: "23503"})

	err := store.DeleteAuthor(context.Background(), "a1")
	if !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("want ErrConflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCreateAccount_UniqueViolationIsConflict(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO accounts").
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := store.CreateAccount(context.Background(), account.Account{
		Username: "reader",
		Email:    "reader@example.com",
	})
	if !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("want ErrConflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestDeleteBook_ZeroRowsIsNotFound(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("DELETE FROM books").
		WithArgs("b1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.DeleteBook(context.Background(), "b1")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestListBooks_FilterComposesSingleQuery(t *testing.T) {
	store, mock := newMockStore(t)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "title", "author_id", "publication_year", "created_at", "updated_at"}).
		AddRow("b1", "Dune", "a1", 1965, now, now)

	// Title, author and year collapse into one conjunctive WHERE with a
	// single ORDER BY.
	mock.ExpectQuery(`SELECT .+ FROM books b\s+JOIN authors a ON a\.id = b\.author_id\s+WHERE b\.title ILIKE \$1 AND a\.name ILIKE \$2 AND b\.publication_year = \$3 ORDER BY b\.title, b\.created_at, b\.id`).
		WithArgs("%dune%", "%herbert%", 1965).
		WillReturnRows(rows)

	year := 1965
	books, err := store.ListBooks(context.Background(), catalog.BookFilter{
		Title:           "dune",
		Author:          "herbert",
		PublicationYear: &year,
		OrderBy:         catalog.OrderByTitle,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(books) != 1 || books[0].Title != "Dune" {
		t.Fatalf("unexpected books: %#v", books)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestStoreIntegration(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping postgres integration test")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	store := New(db)
	ctx := context.Background()

	author, err := store.CreateAuthor(ctx, catalog.Author{Name: "Frank Herbert"})
	if err != nil {
		t.Fatalf("create author: %v", err)
	}
	book, err := store.CreateBook(ctx, catalog.Book{Title: "Dune", AuthorID: author.ID, PublicationYear: 1965})
	if err != nil {
		t.Fatalf("create book: %v", err)
	}

	if err := store.DeleteAuthor(ctx, author.ID); !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("author with books must conflict, got %v", err)
	}

	lib, err := store.CreateLibrary(ctx, catalog.Library{Name: "Central"})
	if err != nil {
		t.Fatalf("create library: %v", err)
	}
	if err := store.AddLibraryBook(ctx, lib.ID, book.ID); err != nil {
		t.Fatalf("add membership: %v", err)
	}
	if _, err := store.CreateLibrarian(ctx, catalog.Librarian{Name: "Ada", LibraryID: lib.ID}); err != nil {
		t.Fatalf("create librarian: %v", err)
	}
	if _, err := store.CreateLibrarian(ctx, catalog.Librarian{Name: "Bob", LibraryID: lib.ID}); !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("second librarian must conflict, got %v", err)
	}

	if err := store.DeleteBook(ctx, book.ID); err != nil {
		t.Fatalf("delete book: %v", err)
	}
	if err := store.DeleteAuthor(ctx, author.ID); err != nil {
		t.Fatalf("delete author: %v", err)
	}
	if err := store.DeleteLibrary(ctx, lib.ID); err != nil {
		t.Fatalf("delete library: %v", err)
	}
}
