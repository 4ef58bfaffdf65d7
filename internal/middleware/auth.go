// Package middleware provides HTTP middleware for the API server.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/openshelf/catalog/internal/app/auth"
	"github.com/openshelf/catalog/internal/errors"
	"github.com/openshelf/catalog/internal/httputil"
	"github.com/openshelf/catalog/internal/logging"
)

// PrincipalResolver loads the current principal for a verified account id.
type PrincipalResolver interface {
	Resolve(ctx context.Context, accountID string) (auth.Principal, error)
}

// AuthMiddleware verifies bearer tokens and attaches the caller's
// principal to the request context. Requests without an Authorization
// header proceed as anonymous; the capability guard decides what
// anonymous callers may do. Invalid or expired tokens are rejected.
type AuthMiddleware struct {
	signer   *auth.Signer
	resolver PrincipalResolver
	logger   *logging.Logger
}

// NewAuthMiddleware creates the authentication middleware.
func NewAuthMiddleware(signer *auth.Signer, resolver PrincipalResolver, logger *logging.Logger) *AuthMiddleware {
	if logger == nil {
		logger = logging.New("auth")
	}
	return &AuthMiddleware{signer: signer, resolver: resolver, logger: logger}
}

// Handler returns the middleware handler.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), auth.Anonymous())))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			m.respondError(w, r, errors.Unauthorized("invalid Authorization header format"))
			return
		}

		accountID, err := m.signer.Verify(parts[1])
		if err != nil {
			m.logger.WithContext(r.Context()).WithError(err).Warn("token verification failed")
			m.respondError(w, r, err)
			return
		}

		// Role and account status come from storage, not from the token,
		// so revocations and role changes apply immediately.
		principal, err := m.resolver.Resolve(r.Context(), accountID)
		if err != nil {
			m.logger.WithContext(r.Context()).WithError(err).Warn("principal resolution failed")
			m.respondError(w, r, err)
			return
		}

		ctx := auth.WithPrincipal(r.Context(), principal)
		ctx = context.WithValue(ctx, logging.UserIDKey, principal.AccountID)
		ctx = context.WithValue(ctx, logging.RoleKey, string(principal.Role))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) respondError(w http.ResponseWriter, r *http.Request, err error) {
	serviceErr := errors.GetServiceError(err)
	if serviceErr == nil {
		serviceErr = errors.Internal("authentication failed", err)
	}

	httputil.WriteErrorResponse(w, serviceErr.HTTPStatus, string(serviceErr.Code), serviceErr.Message, serviceErr.Details)

	m.logger.WithContext(r.Context()).WithFields(map[string]any{
		"path":   r.URL.Path,
		"method": r.Method,
		"status": serviceErr.HTTPStatus,
	}).Warn("authentication failed")
}
