// Package accounts implements account management and credential checks.
package accounts

import (
	"context"
	stderrors "errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/openshelf/catalog/internal/app/auth"
	"github.com/openshelf/catalog/internal/app/domain/account"
	"github.com/openshelf/catalog/internal/app/storage"
	"github.com/openshelf/catalog/internal/app/validate"
	"github.com/openshelf/catalog/internal/errors"
	"github.com/openshelf/catalog/internal/logging"
)

// duplicateReason is deliberately generic: it never reveals whether the
// username or the email collided.
const duplicateReason = "an account with these details already exists"

// Service manages accounts and their role profiles.
type Service struct {
	store storage.AccountStore
	log   *logging.Logger
}

// New constructs an accounts service.
func New(store storage.AccountStore, log *logging.Logger) *Service {
	if log == nil {
		log = logging.New("accounts")
	}
	return &Service{store: store, log: log}
}

// CreateInput carries the writable fields for account creation.
type CreateInput struct {
	Username    string
	Email       string
	Password    string
	DateOfBirth string
	Role        account.Role
}

// UpdateInput carries the writable fields for account updates. Role changes
// ride along and are themselves gated by the edit capability.
type UpdateInput struct {
	Username string
	Email    string
	Role     account.Role
}

// Create validates and persists a new account, then creates its role
// profile as an explicit synchronous step. Every account has exactly one
// profile once Create returns.
func (s *Service) Create(ctx context.Context, input CreateInput) (account.Account, error) {
	if err := auth.Authorize(auth.PrincipalFrom(ctx), auth.CapAccountCreate); err != nil {
		return account.Account{}, err
	}

	var verrs validate.Errors
	username, reason := validate.Username(input.Username)
	if reason != "" {
		verrs.Add("username", reason)
	}
	email, reason := validate.Email(input.Email)
	if reason != "" {
		verrs.Add("email", reason)
	}
	if reason := validate.Password(input.Password); reason != "" {
		verrs.Add("password", reason)
	}
	role := input.Role
	if role == "" {
		role = account.RoleMember
	}
	if !account.ValidRole(role) {
		verrs.Add("role", "must be one of Admin, Librarian, Member")
	}
	if err := verrs.Err(); err != nil {
		return account.Account{}, err
	}

	if err := s.checkDuplicates(ctx, "", username, email); err != nil {
		return account.Account{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return account.Account{}, errors.Internal("", err)
	}

	created, err := s.store.CreateAccount(ctx, account.Account{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		DateOfBirth:  strings.TrimSpace(input.DateOfBirth),
		IsActive:     true,
		IsStaff:      role == account.RoleAdmin,
		IsSuperuser:  role == account.RoleAdmin,
	})
	if err != nil {
		// A uniqueness race lost against a concurrent create reads the
		// same as the pre-check failure.
		if stderrors.Is(err, storage.ErrConflict) {
			return account.Account{}, errors.ValidationField("account", duplicateReason)
		}
		return account.Account{}, s.storeError(ctx, err)
	}

	if _, err := s.store.CreateProfile(ctx, account.Profile{AccountID: created.ID, Role: role}); err != nil {
		// Without a profile the account is unusable; undo the create so
		// the invariant holds.
		if delErr := s.store.DeleteAccount(ctx, created.ID); delErr != nil {
			s.log.WithContext(ctx).WithError(delErr).Error("orphaned account cleanup failed")
		}
		return account.Account{}, s.storeError(ctx, err)
	}

	s.log.WithContext(ctx).
		WithField("account_id", created.ID).
		WithField("role", string(role)).
		Info("account created")
	return created, nil
}

// Update replaces the username and email of an existing account and,
// when a role is supplied, its profile role.
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (account.Account, error) {
	if err := auth.Authorize(auth.PrincipalFrom(ctx), auth.CapAccountEdit); err != nil {
		return account.Account{}, err
	}

	existing, err := s.store.GetAccount(ctx, id)
	if err != nil {
		return account.Account{}, s.storeError(ctx, err)
	}

	var verrs validate.Errors
	username, reason := validate.Username(input.Username)
	if reason != "" {
		verrs.Add("username", reason)
	}
	email, reason := validate.Email(input.Email)
	if reason != "" {
		verrs.Add("email", reason)
	}
	if input.Role != "" && !account.ValidRole(input.Role) {
		verrs.Add("role", "must be one of Admin, Librarian, Member")
	}
	if err := verrs.Err(); err != nil {
		return account.Account{}, err
	}

	if err := s.checkDuplicates(ctx, id, username, email); err != nil {
		return account.Account{}, err
	}

	existing.Username = username
	existing.Email = email
	updated, err := s.store.UpdateAccount(ctx, existing)
	if err != nil {
		if stderrors.Is(err, storage.ErrConflict) {
			return account.Account{}, errors.ValidationField("account", duplicateReason)
		}
		return account.Account{}, s.storeError(ctx, err)
	}

	if input.Role != "" {
		profile, err := s.store.GetProfileByAccount(ctx, id)
		if err != nil {
			return account.Account{}, s.storeError(ctx, err)
		}
		if profile.Role != input.Role {
			profile.Role = input.Role
			if _, err := s.store.UpdateProfile(ctx, profile); err != nil {
				return account.Account{}, s.storeError(ctx, err)
			}
		}
	}

	s.log.WithContext(ctx).WithField("account_id", id).Info("account updated")
	return updated, nil
}

// Delete removes an account. The target is fetched first so a missing id
// reads as NotFound; the self-deletion guard runs only after capability
// authorization succeeded.
func (s *Service) Delete(ctx context.Context, id string) error {
	principal := auth.PrincipalFrom(ctx)
	if err := auth.Authorize(principal, auth.CapAccountDelete); err != nil {
		return err
	}
	if _, err := s.store.GetAccount(ctx, id); err != nil {
		return s.storeError(ctx, err)
	}
	if err := auth.GuardSelfDeletion(principal, id); err != nil {
		return err
	}
	if err := s.store.DeleteAccount(ctx, id); err != nil {
		return s.storeError(ctx, err)
	}
	s.log.WithContext(ctx).WithField("account_id", id).Info("account deleted")
	return nil
}

// List returns the public projection of accounts matching the search term
// (username/email substring), or all accounts when the term is empty.
func (s *Service) List(ctx context.Context, search string) ([]account.Public, error) {
	if err := auth.Authorize(auth.PrincipalFrom(ctx), auth.CapAccountView); err != nil {
		return nil, err
	}
	accts, err := s.store.ListAccounts(ctx, search)
	if err != nil {
		return nil, s.storeError(ctx, err)
	}
	result := make([]account.Public, 0, len(accts))
	for _, acct := range accts {
		result = append(result, account.PublicView(acct))
	}
	return result, nil
}

// Get returns the public projection of one account.
func (s *Service) Get(ctx context.Context, id string) (account.Public, error) {
	if err := auth.Authorize(auth.PrincipalFrom(ctx), auth.CapAccountView); err != nil {
		return account.Public{}, err
	}
	acct, err := s.store.GetAccount(ctx, id)
	if err != nil {
		return account.Public{}, s.storeError(ctx, err)
	}
	return account.PublicView(acct), nil
}

// Authenticate verifies credentials and resolves the caller's principal.
// Every failure mode reads the same to avoid credential probing.
func (s *Service) Authenticate(ctx context.Context, username, password string) (auth.Principal, error) {
	acct, err := s.store.GetAccountByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return auth.Principal{}, errors.Unauthorized("invalid credentials")
		}
		return auth.Principal{}, s.storeError(ctx, err)
	}
	if !acct.IsActive {
		return auth.Principal{}, errors.Unauthorized("invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)) != nil {
		return auth.Principal{}, errors.Unauthorized("invalid credentials")
	}

	profile, err := s.store.GetProfileByAccount(ctx, acct.ID)
	if err != nil {
		return auth.Principal{}, s.storeError(ctx, err)
	}

	return auth.Principal{
		AccountID:     acct.ID,
		Username:      acct.Username,
		Role:          profile.Role,
		Authenticated: true,
	}, nil
}

// Resolve loads the principal for an already verified account id, used by
// the token middleware.
func (s *Service) Resolve(ctx context.Context, accountID string) (auth.Principal, error) {
	acct, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return auth.Principal{}, errors.Unauthorized("unknown account")
		}
		return auth.Principal{}, s.storeError(ctx, err)
	}
	if !acct.IsActive {
		return auth.Principal{}, errors.Unauthorized("account disabled")
	}
	profile, err := s.store.GetProfileByAccount(ctx, acct.ID)
	if err != nil {
		return auth.Principal{}, s.storeError(ctx, err)
	}
	return auth.Principal{
		AccountID:     acct.ID,
		Username:      acct.Username,
		Role:          profile.Role,
		Authenticated: true,
	}, nil
}

// checkDuplicates rejects colliding usernames or emails with one generic
// reason, excluding the account being updated.
func (s *Service) checkDuplicates(ctx context.Context, selfID, username, email string) error {
	if existing, err := s.store.GetAccountByUsername(ctx, username); err == nil && existing.ID != selfID {
		return errors.ValidationField("account", duplicateReason)
	} else if err != nil && !stderrors.Is(err, storage.ErrNotFound) {
		return s.storeError(ctx, err)
	}
	if existing, err := s.store.GetAccountByEmail(ctx, email); err == nil && existing.ID != selfID {
		return errors.ValidationField("account", duplicateReason)
	} else if err != nil && !stderrors.Is(err, storage.ErrNotFound) {
		return s.storeError(ctx, err)
	}
	return nil
}

func (s *Service) storeError(ctx context.Context, err error) error {
	switch {
	case stderrors.Is(err, storage.ErrNotFound):
		return errors.NotFound("account")
	case stderrors.Is(err, storage.ErrConflict):
		return errors.Conflict("account conflicts with existing records")
	default:
		s.log.WithContext(ctx).WithError(err).Error("store failure")
		return errors.Internal("", err)
	}
}
