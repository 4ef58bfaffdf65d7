// Package httpapi exposes the application services over REST.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	app "github.com/openshelf/catalog/internal/app"
	"github.com/openshelf/catalog/internal/app/auth"
	"github.com/openshelf/catalog/internal/app/domain/account"
	"github.com/openshelf/catalog/internal/app/domain/catalog"
	"github.com/openshelf/catalog/internal/app/services/accounts"
	catalogsvc "github.com/openshelf/catalog/internal/app/services/catalog"
	"github.com/openshelf/catalog/internal/app/services/feedback"
	"github.com/openshelf/catalog/internal/errors"
	"github.com/openshelf/catalog/internal/httputil"
	"github.com/openshelf/catalog/internal/logging"
)

// Config carries handler-level settings.
type Config struct {
	Signer       *auth.Signer
	AuditLogPath string
	AuditLimit   int
}

type handler struct {
	app    *app.Application
	signer *auth.Signer
	audit  *auditLog
	log    *logging.Logger
}

// NewHandler returns a router exposing the REST API.
func NewHandler(application *app.Application, cfg Config, log *logging.Logger) (*mux.Router, error) {
	if log == nil {
		log = logging.New("httpapi")
	}
	sink, err := newFileAuditSink(cfg.AuditLogPath)
	if err != nil {
		return nil, err
	}
	h := &handler{
		app:    application,
		signer: cfg.Signer,
		audit:  newAuditLog(cfg.AuditLimit, sink),
		log:    log,
	}

	router := mux.NewRouter()
	router.Use(h.recordAudit)

	router.HandleFunc("/healthz", h.handleHealth).Methods("GET")
	router.HandleFunc("/auth/login", h.handleLogin).Methods("POST")

	router.HandleFunc("/books", h.handleListBooks).Methods("GET")
	router.HandleFunc("/books", h.handleCreateBook).Methods("POST")
	router.HandleFunc("/books/{id}", h.handleGetBook).Methods("GET")
	router.HandleFunc("/books/{id}", h.handleUpdateBook).Methods("PUT")
	router.HandleFunc("/books/{id}", h.handleDeleteBook).Methods("DELETE")

	router.HandleFunc("/authors", h.handleListAuthors).Methods("GET")
	router.HandleFunc("/authors", h.handleCreateAuthor).Methods("POST")
	router.HandleFunc("/authors/{id}", h.handleGetAuthor).Methods("GET")
	router.HandleFunc("/authors/{id}", h.handleUpdateAuthor).Methods("PUT")
	router.HandleFunc("/authors/{id}", h.handleDeleteAuthor).Methods("DELETE")

	router.HandleFunc("/libraries", h.handleListLibraries).Methods("GET")
	router.HandleFunc("/libraries", h.handleCreateLibrary).Methods("POST")
	router.HandleFunc("/libraries/{id}", h.handleGetLibrary).Methods("GET")
	router.HandleFunc("/libraries/{id}", h.handleUpdateLibrary).Methods("PUT")
	router.HandleFunc("/libraries/{id}", h.handleDeleteLibrary).Methods("DELETE")
	router.HandleFunc("/libraries/{id}/books/{bookID}", h.handleAddLibraryBook).Methods("PUT")
	router.HandleFunc("/libraries/{id}/books/{bookID}", h.handleRemoveLibraryBook).Methods("DELETE")

	router.HandleFunc("/librarians", h.handleListLibrarians).Methods("GET")
	router.HandleFunc("/librarians", h.handleCreateLibrarian).Methods("POST")
	router.HandleFunc("/librarians/{id}", h.handleGetLibrarian).Methods("GET")
	router.HandleFunc("/librarians/{id}", h.handleUpdateLibrarian).Methods("PUT")
	router.HandleFunc("/librarians/{id}", h.handleDeleteLibrarian).Methods("DELETE")

	router.HandleFunc("/accounts", h.handleListAccounts).Methods("GET")
	router.HandleFunc("/accounts", h.handleCreateAccount).Methods("POST")
	router.HandleFunc("/accounts/{id}", h.handleGetAccount).Methods("GET")
	router.HandleFunc("/accounts/{id}", h.handleUpdateAccount).Methods("PUT")
	router.HandleFunc("/accounts/{id}", h.handleDeleteAccount).Methods("DELETE")

	router.HandleFunc("/contact", h.handleSubmitMessage).Methods("POST")
	router.HandleFunc("/contact/messages", h.handleListMessages).Methods("GET")

	router.HandleFunc("/audit", h.handleAudit).Methods("GET")

	return router, nil
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ---- auth ----

func (h *handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !h.decode(w, r, &payload) {
		return
	}
	principal, err := h.app.Accounts.Authenticate(r.Context(), payload.Username, payload.Password)
	if err != nil {
		httputil.WriteServiceError(w, err)
		return
	}
	token, expires, err := h.signer.Issue(principal)
	if err != nil {
		httputil.WriteServiceError(w, errors.Internal("", err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"token":      token,
		"expires_at": expires.Format(time.RFC3339),
		"account": map[string]string{
			"id":       principal.AccountID,
			"username": principal.Username,
			"role":     string(principal.Role),
		},
	})
}

// ---- books ----

func (h *handler) handleListBooks(w http.ResponseWriter, r *http.Request) {
	filter := catalog.ParseBookFilter(r.URL.Query())
	books, err := h.app.Catalog.ListBooks(r.Context(), filter)
	if err != nil {
		httputil.WriteServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, books)
}

func (h *handler) handleGetBook(w http.ResponseWriter, r *http.Request) {
	book, err := h.app.Catalog.GetBook(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httputil.WriteServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, book)
}

type bookPayload struct {
	Title           string `json:"title"`
	AuthorID        string `json:"author_id"`
	PublicationYear int    `json:"publication_year"`
}

func (h *handler) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	var payload bookPayload
	if !h.decode(w, r, &payload) {
		return
	}
	book, err := h.app.Catalog.CreateBook(r.Context(), catalogsvc.BookInput{
		Title:           payload.Title,
		AuthorID:        payload.AuthorID,
		PublicationYear: payload.PublicationYear,
	})
	if err != nil {
		httputil.WriteServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, book)
}

func (h *handler) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	var payload bookPayload
	if !h.decode(w, r, &payload) {
		return
	}
	book, err := h.app.Catalog.UpdateBook(r.Context(), mux.Vars(r)["id"], catalogsvc.BookInput{
		Title:           payload.Title,
		AuthorID:        payload.AuthorID,
		PublicationYear: payload.PublicationYear,
	})
	if err != nil {
		httputil.WriteServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, book)
}

func (h *handler) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Catalog.DeleteBook(r.Context(), mux.Vars(r)["id"]); err != nil {
		httputil.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- authors ----

func (h *handler) handleListAuthors(w http.ResponseWriter, r *http.Request) {
	authors, err := h.app.Catalog.ListAuthors(r.Context())
	if err != nil {
		httputil.WriteServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, authors)
}

func (h *handler) handleGetAuthor(w http.ResponseWriter, r *http.Request) {
	author, err := h.app.Catalog.GetAuthor(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httputil.WriteServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, author)
}

type namePayload struct {
	Name string `json:"name"`
}

func (h *handler) handleCreateAuthor(w http.ResponseWriter, r *http.Request) {
	var payload namePayload
	if !h.decode(w, r, &payload) {
		return
	}
	author, err := h.app.Catalog.CreateAuthor(r.Context(), payload.Name)
	if err != nil {
		httputil.WriteServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, author)
}

func (h *handler) handleUpdateAuthor(w http.ResponseWriter, r *http.Request) {
	var payload namePayload
	if !h.decode(w, r, &payload) {
		return
	}
	author, err := h.app.Catalog.UpdateAuthor(r.Context(), mux.Vars(r)["id"], payload.Name)
	if err != nil {
		httputil.WriteServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, author)
}

func (h *handler) handleDeleteAuthor(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Catalog.DeleteAuthor(r.Context(), mux.Vars(r)["id"]); err != nil {
		httputil.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- libraries ----

func (h *handler) handleListLibraries(w http.ResponseWriter, r *http.Request) {
	libraries, err := h.app.Libraries.ListLibraries(r.Context())
	if err != nil {
		httputil.WriteServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, libraries)
}

func (h *handler) handleGetLibrary(w http.ResponseWriter, r *http.Request) {
	library, err := h.app.Libraries.GetLibrary(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httputil.WriteServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, library)
}

func (h *handler) handleCreateLibrary(w http.ResponseWriter, r *http.Request) {
	var payload namePayload
	if !h.decode(w, r, &payload) {
		return
	}
	library, err := h.app.Libraries.CreateLibrary(r.Context(), payload.Name)
	if err != nil {
		httputil.WriteServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, library)
}

func (h *handler) handleUpdateLibrary(w http.ResponseWriter, r *http.Request) {
	var payload namePayload
	if !h.decode(w, r, &payload) {
		return
	}
	library, err := h.app.Libraries.UpdateLibrary(r.Context(), mux.Vars(r)["id"], payload.Name)
	if err != nil {
		httputil.WriteServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, library)
}

func (h *handler) handleDeleteLibrary(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Libraries.DeleteLibrary(r.Context(), mux.Vars(r)["id"]); err != nil {
		httputil.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) handleAddLibraryBook(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	library, err := h.app.Libraries.AddBook(r.Context(), vars["id"], vars["bookID"])
	if err != nil {
		httputil.WriteServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, library)
}

func (h *handler) handleRemoveLibraryBook(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	library, err := h.app.Libraries.RemoveBook(r.Context(), vars["id"], vars["bookID"])
	if err != nil {
		httputil.WriteServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, library)
}

// ---- librarians ----

func (h *handler) handleListLibrarians(w http.ResponseWriter, r *http.Request) {
	librarians, err := h.app.Libraries.ListLibrarians(r.Context())
	if err != nil {
		httputil.WriteServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, librarians)
}

func (h *handler) handleGetLibrarian(w http.ResponseWriter, r *http.Request) {
	librarian, err := h.app.Libraries.GetLibrarian(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httputil.WriteServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, librarian)
}

type librarianPayload struct {
	Name      string `json:"name"`
	LibraryID string `json:"library_id"`
}

func (h *handler) handleCreateLibrarian(w http.ResponseWriter, r *http.Request) {
	var payload librarianPayload
	if !h.decode(w, r, &payload) {
		return
	}
	librarian, err := h.app.Libraries.CreateLibrarian(r.Context(), payload.Name, payload.LibraryID)
	if err != nil {
		httputil.WriteServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, librarian)
}

func (h *handler) handleUpdateLibrarian(w http.ResponseWriter, r *http.Request) {
	var payload librarianPayload
	if !h.decode(w, r, &payload) {
		return
	}
	librarian, err := h.app.Libraries.UpdateLibrarian(r.Context(), mux.Vars(r)["id"], payload.Name, payload.LibraryID)
	if err != nil {
		httputil.WriteServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, librarian)
}

func (h *handler) handleDeleteLibrarian(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Libraries.DeleteLibrarian(r.Context(), mux.Vars(r)["id"]); err != nil {
		httputil.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- accounts ----

func (h *handler) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accts, err := h.app.Accounts.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		httputil.WriteServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, accts)
}

func (h *handler) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	acct, err := h.app.Accounts.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httputil.WriteServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, acct)
}

func (h *handler) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Username    string `json:"username"`
		Email       string `json:"email"`
		Password    string `json:"password"`
		DateOfBirth string `json:"date_of_birth"`
		Role        string `json:"role"`
	}
	if !h.decode(w, r, &payload) {
		return
	}
	acct, err := h.app.Accounts.Create(r.Context(), accounts.CreateInput{
		Username:    payload.Username,
		Email:       payload.Email,
		Password:    payload.Password,
		DateOfBirth: payload.DateOfBirth,
		Role:        account.Role(payload.Role),
	})
	if err != nil {
		httputil.WriteServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, account.PublicView(acct))
}

func (h *handler) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Role     string `json:"role"`
	}
	if !h.decode(w, r, &payload) {
		return
	}
	acct, err := h.app.Accounts.Update(r.Context(), mux.Vars(r)["id"], accounts.UpdateInput{
		Username: payload.Username,
		Email:    payload.Email,
		Role:     account.Role(payload.Role),
	})
	if err != nil {
		httputil.WriteServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, account.PublicView(acct))
}

func (h *handler) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Accounts.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		httputil.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- contact ----

func (h *handler) handleSubmitMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Message string `json:"message"`
	}
	if !h.decode(w, r, &payload) {
		return
	}
	message, err := h.app.Feedback.Submit(r.Context(), feedback.SubmitInput{
		Name:    payload.Name,
		Email:   payload.Email,
		Message: payload.Message,
	})
	if err != nil {
		httputil.WriteServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, message)
}

func (h *handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.app.Feedback.List(r.Context())
	if err != nil {
		httputil.WriteServiceError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, messages)
}

// ---- audit ----

func (h *handler) handleAudit(w http.ResponseWriter, r *http.Request) {
	if !auth.PrincipalFrom(r.Context()).IsAdmin() {
		httputil.WriteServiceError(w, errors.Forbidden(""))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.audit.listLimit(0))
}

func (h *handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httputil.DecodeJSON(r.Body, dst); err != nil {
		httputil.WriteErrorResponse(w, http.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON", nil)
		return false
	}
	return true
}

// recordAudit captures mutating requests in the in-memory audit trail.
func (h *handler) recordAudit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		principal := auth.PrincipalFrom(r.Context())
		h.audit.add(auditEntry{
			Time:       time.Now().UTC(),
			User:       principal.Username,
			Role:       string(principal.Role),
			Path:       r.URL.Path,
			Method:     r.Method,
			Status:     rec.status,
			RemoteAddr: r.RemoteAddr,
			UserAgent:  r.UserAgent(),
		})
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
