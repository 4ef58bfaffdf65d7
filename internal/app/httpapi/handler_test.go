package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	app "github.com/openshelf/catalog/internal/app"
	"github.com/openshelf/catalog/internal/app/auth"
	"github.com/openshelf/catalog/internal/app/domain/account"
	"github.com/openshelf/catalog/internal/app/services/accounts"
	"github.com/openshelf/catalog/internal/middleware"
)

type testServer struct {
	handler http.Handler
	app     *app.Application
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	application, err := app.New(app.Stores{}, nil)
	if err != nil {
		t.Fatalf("app: %v", err)
	}

	signer := auth.NewSigner([]byte("test-secret"), time.Hour)
	router, err := NewHandler(application, Config{Signer: signer}, nil)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}

	authMW := middleware.NewAuthMiddleware(signer, application.Accounts, nil)
	return &testServer{handler: authMW.Handler(router), app: application}
}

func (s *testServer) seedAccount(t *testing.T, username string, role account.Role) {
	t.Helper()
	ctx := auth.WithPrincipal(context.Background(), auth.Principal{
		Username: "system", Role: account.RoleAdmin, Authenticated: true,
	})
	_, err := s.app.Accounts.Create(ctx, accounts.CreateInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "longenough",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("seed %s: %v", username, err)
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func (s *testServer) login(t *testing.T, username string) string {
	t.Helper()
	rr := s.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"username": username,
		"password": "longenough",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body %s", username, rr.Code, rr.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return resp.Token
}

func decodeID(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode id: %v", err)
	}
	return resp.ID
}

func TestAnonymousAccess(t *testing.T) {
	srv := newTestServer(t)

	if rr := srv.do(t, http.MethodGet, "/healthz", "", nil); rr.Code != http.StatusOK {
		t.Fatalf("healthz: %d", rr.Code)
	}
	if rr := srv.do(t, http.MethodGet, "/books", "", nil); rr.Code != http.StatusOK {
		t.Fatalf("anonymous book list: %d", rr.Code)
	}
	if rr := srv.do(t, http.MethodGet, "/authors", "", nil); rr.Code != http.StatusOK {
		t.Fatalf("anonymous author list: %d", rr.Code)
	}

	// No token means anonymous, and anonymous lacks the write capability:
	// the guard answers 403, not 401.
	rr := srv.do(t, http.MethodPost, "/books", "", map[string]any{
		"title": "Dune", "author_id": "1", "publication_year": 1965,
	})
	if rr.Code != http.StatusForbidden {
		t.Fatalf("anonymous book create: got %d, want 403", rr.Code)
	}

	// A malformed token is an authentication failure: 401.
	rr = srv.do(t, http.MethodGet, "/books", "garbage-token", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("malformed token: got %d, want 401", rr.Code)
	}
}

func TestCatalogLifecycle(t *testing.T) {
	srv := newTestServer(t)
	srv.seedAccount(t, "admin", account.RoleAdmin)
	token := srv.login(t, "admin")

	rr := srv.do(t, http.MethodPost, "/authors", token, map[string]string{"name": "Frank Herbert"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create author: %d %s", rr.Code, rr.Body.String())
	}
	authorID := decodeID(t, rr)

	rr = srv.do(t, http.MethodPost, "/books", token, map[string]any{
		"title": "Dune", "author_id": authorID, "publication_year": 1965,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create book: %d %s", rr.Code, rr.Body.String())
	}
	bookID := decodeID(t, rr)

	var book struct {
		Title           string `json:"title"`
		PublicationYear int    `json:"publication_year"`
	}
	rr = srv.do(t, http.MethodGet, "/books/"+bookID, "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("get book: %d", rr.Code)
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &book); err != nil {
		t.Fatalf("decode book: %v", err)
	}
	if book.Title != "Dune" || book.PublicationYear != 1965 {
		t.Fatalf("round trip mismatch: %#v", book)
	}

	// Filtered listing.
	rr = srv.do(t, http.MethodGet, "/books?title=dune&publication_year=1965", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("filtered list: %d", rr.Code)
	}
	var books []json.RawMessage
	if err := json.Unmarshal(rr.Body.Bytes(), &books); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(books) != 1 {
		t.Fatalf("filter should match one book, got %d", len(books))
	}

	// Author with books cannot be deleted.
	if rr := srv.do(t, http.MethodDelete, "/authors/"+authorID, token, nil); rr.Code != http.StatusConflict {
		t.Fatalf("protected author delete: got %d, want 409", rr.Code)
	}

	if rr := srv.do(t, http.MethodDelete, "/books/"+bookID, token, nil); rr.Code != http.StatusNoContent {
		t.Fatalf("delete book: %d", rr.Code)
	}
	if rr := srv.do(t, http.MethodDelete, "/authors/"+authorID, token, nil); rr.Code != http.StatusNoContent {
		t.Fatalf("delete author: %d", rr.Code)
	}

	if rr := srv.do(t, http.MethodGet, "/books/"+bookID, "", nil); rr.Code != http.StatusNotFound {
		t.Fatalf("deleted book: got %d, want 404", rr.Code)
	}
}

func TestValidationErrorShape(t *testing.T) {
	srv := newTestServer(t)
	srv.seedAccount(t, "admin", account.RoleAdmin)
	token := srv.login(t, "admin")

	rr := srv.do(t, http.MethodPost, "/authors", token, map[string]string{"name": "Frank Herbert"})
	authorID := decodeID(t, rr)

	future := time.Now().Year() + 1
	rr = srv.do(t, http.MethodPost, "/books", token, map[string]any{
		"title": "Dune 2", "author_id": authorID, "publication_year": future,
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("future year: got %d, want 400", rr.Code)
	}
	var resp struct {
		Code    string              `json:"code"`
		Details map[string][]string `json:"details"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if resp.Code != "VALIDATION_FAILED" {
		t.Fatalf("unexpected code %q", resp.Code)
	}
	reasons := resp.Details["publication_year"]
	if len(reasons) != 1 || reasons[0] != "Publication year cannot be in the future." {
		t.Fatalf("unexpected reasons: %v", resp.Details)
	}
}

func TestLibraryEndpoints(t *testing.T) {
	srv := newTestServer(t)
	srv.seedAccount(t, "admin", account.RoleAdmin)
	srv.seedAccount(t, "reader", account.RoleMember)
	admin := srv.login(t, "admin")
	reader := srv.login(t, "reader")

	// Libraries are invisible to anonymous callers but visible to members.
	if rr := srv.do(t, http.MethodGet, "/libraries", "", nil); rr.Code != http.StatusForbidden {
		t.Fatalf("anonymous libraries: got %d, want 403", rr.Code)
	}
	if rr := srv.do(t, http.MethodGet, "/libraries", reader, nil); rr.Code != http.StatusOK {
		t.Fatalf("member libraries: %d", rr.Code)
	}

	rr := srv.do(t, http.MethodPost, "/libraries", admin, map[string]string{"name": "Central"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create library: %d %s", rr.Code, rr.Body.String())
	}
	libID := decodeID(t, rr)

	rr = srv.do(t, http.MethodPost, "/authors", admin, map[string]string{"name": "Frank Herbert"})
	authorID := decodeID(t, rr)
	rr = srv.do(t, http.MethodPost, "/books", admin, map[string]any{
		"title": "Dune", "author_id": authorID, "publication_year": 1965,
	})
	bookID := decodeID(t, rr)

	rr = srv.do(t, http.MethodPut, fmt.Sprintf("/libraries/%s/books/%s", libID, bookID), admin, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("add membership: %d %s", rr.Code, rr.Body.String())
	}
	var lib struct {
		BookIDs []string `json:"book_ids"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &lib); err != nil {
		t.Fatalf("decode library: %v", err)
	}
	if len(lib.BookIDs) != 1 {
		t.Fatalf("membership missing: %#v", lib)
	}

	// Members cannot manage membership.
	rr = srv.do(t, http.MethodDelete, fmt.Sprintf("/libraries/%s/books/%s", libID, bookID), reader, nil)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("member membership edit: got %d, want 403", rr.Code)
	}

	// Librarian is 1:1 with a library.
	rr = srv.do(t, http.MethodPost, "/librarians", admin, map[string]string{"name": "Ada", "library_id": libID})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create librarian: %d %s", rr.Code, rr.Body.String())
	}
	rr = srv.do(t, http.MethodPost, "/librarians", admin, map[string]string{"name": "Bob", "library_id": libID})
	if rr.Code != http.StatusConflict {
		t.Fatalf("second librarian: got %d, want 409", rr.Code)
	}
}

func TestAccountEndpoints(t *testing.T) {
	srv := newTestServer(t)
	srv.seedAccount(t, "admin", account.RoleAdmin)
	srv.seedAccount(t, "shelver", account.RoleLibrarian)
	admin := srv.login(t, "admin")
	shelver := srv.login(t, "shelver")

	rr := srv.do(t, http.MethodPost, "/accounts", admin, map[string]string{
		"username": "newreader", "email": "newreader@example.com", "password": "longenough",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create account: %d %s", rr.Code, rr.Body.String())
	}
	newID := decodeID(t, rr)

	// Librarians may list accounts but not create them.
	if rr := srv.do(t, http.MethodGet, "/accounts?search=newreader", shelver, nil); rr.Code != http.StatusOK {
		t.Fatalf("librarian account search: %d", rr.Code)
	}
	rr = srv.do(t, http.MethodPost, "/accounts", shelver, map[string]string{
		"username": "x", "email": "x@example.com", "password": "longenough",
	})
	if rr.Code != http.StatusForbidden {
		t.Fatalf("librarian account create: got %d, want 403", rr.Code)
	}

	// The listing exposes only the public shape.
	rr = srv.do(t, http.MethodGet, "/accounts", admin, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("account list: %d", rr.Code)
	}
	var listing []map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &listing); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	for _, entry := range listing {
		if _, ok := entry["is_superuser"]; ok {
			t.Fatalf("listing leaks account internals: %v", entry)
		}
	}

	// Admins cannot delete themselves.
	var adminID string
	for _, entry := range listing {
		if entry["username"] == "admin" {
			adminID, _ = entry["id"].(string)
		}
	}
	if adminID == "" {
		t.Fatalf("admin id not found in listing")
	}
	if rr := srv.do(t, http.MethodDelete, "/accounts/"+adminID, admin, nil); rr.Code != http.StatusForbidden {
		t.Fatalf("self delete: got %d, want 403", rr.Code)
	}

	if rr := srv.do(t, http.MethodDelete, "/accounts/"+newID, admin, nil); rr.Code != http.StatusNoContent {
		t.Fatalf("delete other account: %d", rr.Code)
	}
}

func TestContactEndpoints(t *testing.T) {
	srv := newTestServer(t)
	srv.seedAccount(t, "admin", account.RoleAdmin)
	admin := srv.login(t, "admin")

	rr := srv.do(t, http.MethodPost, "/contact", "", map[string]string{
		"name": "Visitor", "email": "v@example.com", "message": "Do you open on Sundays?",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("anonymous contact: %d %s", rr.Code, rr.Body.String())
	}

	if rr := srv.do(t, http.MethodGet, "/contact/messages", "", nil); rr.Code != http.StatusForbidden {
		t.Fatalf("anonymous message list: got %d, want 403", rr.Code)
	}
	rr = srv.do(t, http.MethodGet, "/contact/messages", admin, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("admin message list: %d", rr.Code)
	}
	var msgs []json.RawMessage
	if err := json.Unmarshal(rr.Body.Bytes(), &msgs); err != nil {
		t.Fatalf("decode messages: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected one message, got %d", len(msgs))
	}
}

func TestLoginFailures(t *testing.T) {
	srv := newTestServer(t)
	srv.seedAccount(t, "admin", account.RoleAdmin)

	rr := srv.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "admin", "password": "wrong",
	})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("bad password: got %d, want 401", rr.Code)
	}

	rr = srv.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "ghost", "password": "whatever",
	})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unknown user: got %d, want 401", rr.Code)
	}
}

func TestAuditTrail(t *testing.T) {
	srv := newTestServer(t)
	srv.seedAccount(t, "admin", account.RoleAdmin)
	admin := srv.login(t, "admin")

	if rr := srv.do(t, http.MethodPost, "/authors", admin, map[string]string{"name": "Frank Herbert"}); rr.Code != http.StatusCreated {
		t.Fatalf("create author: %d", rr.Code)
	}

	if rr := srv.do(t, http.MethodGet, "/audit", "", nil); rr.Code != http.StatusForbidden {
		t.Fatalf("anonymous audit: got %d, want 403", rr.Code)
	}

	rr := srv.do(t, http.MethodGet, "/audit", admin, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("admin audit: %d", rr.Code)
	}
	var entries []struct {
		User   string `json:"user"`
		Method string `json:"method"`
		Path   string `json:"path"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode audit: %v", err)
	}
	found := false
	for _, e := range entries {
		if e.Method == http.MethodPost && e.Path == "/authors" && e.User == "admin" {
			found = true
		}
	}
	if !found {
		t.Fatalf("author create not audited: %#v", entries)
	}
}
