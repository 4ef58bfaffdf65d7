// Package auth implements the access control guard: it resolves a principal
// and a required capability and allows or denies the request before any
// store access happens.
package auth

import (
	"context"

	"github.com/openshelf/catalog/internal/app/domain/account"
	"github.com/openshelf/catalog/internal/errors"
)

// Capability names one permission on one resource kind.
type Capability string

const (
	CapBookView   Capability = "book:view"
	CapBookCreate Capability = "book:create"
	CapBookEdit   Capability = "book:edit"
	CapBookDelete Capability = "book:delete"

	CapAuthorView   Capability = "author:view"
	CapAuthorCreate Capability = "author:create"
	CapAuthorEdit   Capability = "author:edit"
	CapAuthorDelete Capability = "author:delete"

	CapLibraryView   Capability = "library:view"
	CapLibraryCreate Capability = "library:create"
	CapLibraryEdit   Capability = "library:edit"
	CapLibraryDelete Capability = "library:delete"

	CapLibrarianView   Capability = "librarian:view"
	CapLibrarianCreate Capability = "librarian:create"
	CapLibrarianEdit   Capability = "librarian:edit"
	CapLibrarianDelete Capability = "librarian:delete"

	CapAccountView   Capability = "account:view"
	CapAccountCreate Capability = "account:create"
	CapAccountEdit   Capability = "account:edit"
	CapAccountDelete Capability = "account:delete"

	CapMessageCreate Capability = "message:create"
	CapMessageView   Capability = "message:view"
)

// Principal is the caller a request executes on behalf of.
type Principal struct {
	AccountID     string
	Username      string
	Role          account.Role
	Authenticated bool
}

// Anonymous returns the unauthenticated principal.
func Anonymous() Principal { return Principal{} }

// publicCapabilities are granted to everyone, including anonymous callers:
// unauthenticated book/author reads and contact messages.
var publicCapabilities = map[Capability]bool{
	CapBookView:      true,
	CapAuthorView:    true,
	CapMessageCreate: true,
}

// librarianCapabilities extend the public set with catalog management and
// account listing.
var librarianCapabilities = map[Capability]bool{
	CapBookCreate:      true,
	CapBookEdit:        true,
	CapBookDelete:      true,
	CapAuthorCreate:    true,
	CapAuthorEdit:      true,
	CapAuthorDelete:    true,
	CapLibraryView:     true,
	CapLibraryCreate:   true,
	CapLibraryEdit:     true,
	CapLibraryDelete:   true,
	CapLibrarianView:   true,
	CapLibrarianCreate: true,
	CapLibrarianEdit:   true,
	CapLibrarianDelete: true,
	CapAccountView:     true,
}

// memberCapabilities are the read-only additions for authenticated members.
var memberCapabilities = map[Capability]bool{
	CapLibraryView:   true,
	CapLibrarianView: true,
}

// Can reports whether the principal holds the capability.
func (p Principal) Can(cap Capability) bool {
	if publicCapabilities[cap] {
		return true
	}
	if !p.Authenticated {
		return false
	}
	switch p.Role {
	case account.RoleAdmin:
		return true
	case account.RoleLibrarian:
		return librarianCapabilities[cap]
	case account.RoleMember:
		return memberCapabilities[cap]
	}
	return false
}

// IsAdmin is the coarse role check for Admin principals.
func (p Principal) IsAdmin() bool {
	return p.Authenticated && p.Role == account.RoleAdmin
}

// IsLibrarian is the coarse role check for Librarian principals.
func (p Principal) IsLibrarian() bool {
	return p.Authenticated && p.Role == account.RoleLibrarian
}

// IsMember is the coarse role check for Member principals.
func (p Principal) IsMember() bool {
	return p.Authenticated && p.Role == account.RoleMember
}

// Authorize denies with Forbidden when the principal lacks the capability.
// Denial happens before any store access or side effect.
func Authorize(p Principal, cap Capability) error {
	if !p.Can(cap) {
		return errors.Forbidden("")
	}
	return nil
}

// GuardSelfDeletion rejects account deletions where the target is the
// caller. Evaluated only after capability authorization succeeds.
func GuardSelfDeletion(p Principal, targetAccountID string) error {
	if p.Authenticated && p.AccountID == targetAccountID {
		return errors.Forbidden("accounts cannot delete themselves")
	}
	return nil
}

type principalKey struct{}

// WithPrincipal stores the principal on the context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom extracts the principal, defaulting to anonymous.
func PrincipalFrom(ctx context.Context) Principal {
	if p, ok := ctx.Value(principalKey{}).(Principal); ok {
		return p
	}
	return Anonymous()
}
