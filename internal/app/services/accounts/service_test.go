package accounts

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/openshelf/catalog/internal/app/auth"
	"github.com/openshelf/catalog/internal/app/domain/account"
	"github.com/openshelf/catalog/internal/app/storage"
	"github.com/openshelf/catalog/internal/errors"
)

func adminCtx(accountID string) context.Context {
	return auth.WithPrincipal(context.Background(), auth.Principal{
		AccountID:     accountID,
		Username:      "admin",
		Role:          account.RoleAdmin,
		Authenticated: true,
	})
}

func TestService_CreateMakesProfile(t *testing.T) {
	mem := storage.NewMemory()
	svc := New(mem, nil)
	ctx := adminCtx("admin-1")

	created, err := svc.Create(ctx, CreateInput{
		Username: "reader",
		Email:    "reader@example.com",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.PasswordHash == "" || created.PasswordHash == "correct horse" {
		t.Fatalf("password must be stored hashed")
	}
	if bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("correct horse")) != nil {
		t.Fatalf("hash does not verify")
	}

	profile, err := mem.GetProfileByAccount(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("profile must exist after create: %v", err)
	}
	if profile.Role != account.RoleMember {
		t.Fatalf("default role must be Member, got %s", profile.Role)
	}
}

func TestService_CreateValidation(t *testing.T) {
	svc := New(storage.NewMemory(), nil)
	ctx := adminCtx("admin-1")

	_, err := svc.Create(ctx, CreateInput{Username: "", Email: "bad", Password: "short"})
	if !errors.Is(err, errors.CodeValidationFailed) {
		t.Fatalf("expected validation failure, got %v", err)
	}
	svcErr := errors.GetServiceError(err)
	for _, field := range []string{"username", "email", "password"} {
		if _, ok := svcErr.Details[field]; !ok {
			t.Errorf("missing failure for %s: %v", field, svcErr.Details)
		}
	}

	if _, err := svc.Create(ctx, CreateInput{Username: "x", Email: "x@example.com", Password: "longenough", Role: "Wizard"}); !errors.Is(err, errors.CodeValidationFailed) {
		t.Fatalf("unknown role must fail validation, got %v", err)
	}
}

func TestService_DuplicateIsGeneric(t *testing.T) {
	svc := New(storage.NewMemory(), nil)
	ctx := adminCtx("admin-1")

	if _, err := svc.Create(ctx, CreateInput{Username: "reader", Email: "reader@example.com", Password: "longenough"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Username collision and email collision read identically so the API
	// cannot be used to probe which one exists.
	_, errUsername := svc.Create(ctx, CreateInput{Username: "reader", Email: "fresh@example.com", Password: "longenough"})
	_, errEmail := svc.Create(ctx, CreateInput{Username: "fresh", Email: "reader@example.com", Password: "longenough"})

	for _, err := range []error{errUsername, errEmail} {
		if !errors.Is(err, errors.CodeValidationFailed) {
			t.Fatalf("duplicate must fail validation, got %v", err)
		}
	}
	d1 := errors.GetServiceError(errUsername).Details
	d2 := errors.GetServiceError(errEmail).Details
	r1, ok1 := d1["account"].([]string)
	r2, ok2 := d2["account"].([]string)
	if !ok1 || !ok2 || len(r1) != 1 || len(r2) != 1 || r1[0] != r2[0] {
		t.Fatalf("duplicate reasons must match: %v vs %v", d1, d2)
	}
}

func TestService_SelfDeleteForbiddenForAllRoles(t *testing.T) {
	mem := storage.NewMemory()
	svc := New(mem, nil)
	seed := adminCtx("seed")

	for _, role := range []account.Role{account.RoleAdmin, account.RoleLibrarian, account.RoleMember} {
		created, err := svc.Create(seed, CreateInput{
			Username: "self-" + string(role),
			Email:    string(role) + "@example.com",
			Password: "longenough",
			Role:     role,
		})
		if err != nil {
			t.Fatalf("create %s: %v", role, err)
		}

		selfCtx := auth.WithPrincipal(context.Background(), auth.Principal{
			AccountID:     created.ID,
			Username:      created.Username,
			Role:          role,
			Authenticated: true,
		})
		err = svc.Delete(selfCtx, created.ID)
		if !errors.Is(err, errors.CodeForbidden) {
			t.Errorf("%s deleting itself must be forbidden, got %v", role, err)
		}
		if _, getErr := svc.Get(seed, created.ID); getErr != nil {
			t.Errorf("%s account must survive self-delete attempt: %v", role, getErr)
		}
	}
}

func TestService_AdminDeletesOtherAccount(t *testing.T) {
	svc := New(storage.NewMemory(), nil)
	ctx := adminCtx("admin-1")

	created, err := svc.Create(ctx, CreateInput{Username: "reader", Email: "reader@example.com", Password: "longenough"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(ctx, "no-such-id"); !errors.Is(err, errors.CodeNotFound) {
		t.Fatalf("missing target must be not found, got %v", err)
	}
	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestService_ListReturnsPublicShape(t *testing.T) {
	svc := New(storage.NewMemory(), nil)
	ctx := adminCtx("admin-1")

	if _, err := svc.Create(ctx, CreateInput{Username: "reader", Email: "reader@example.com", Password: "longenough"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	list, err := svc.List(ctx, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Username != "reader" || list[0].Email != "reader@example.com" {
		t.Fatalf("unexpected listing: %#v", list)
	}

	memberCtx := auth.WithPrincipal(context.Background(), auth.Principal{
		AccountID: "m1", Role: account.RoleMember, Authenticated: true,
	})
	if _, err := svc.List(memberCtx, ""); !errors.Is(err, errors.CodeForbidden) {
		t.Fatalf("member listing accounts must be forbidden, got %v", err)
	}
}

func TestService_Authenticate(t *testing.T) {
	svc := New(storage.NewMemory(), nil)
	ctx := adminCtx("admin-1")

	created, err := svc.Create(ctx, CreateInput{
		Username: "reader",
		Email:    "reader@example.com",
		Password: "longenough",
		Role:     account.RoleLibrarian,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	principal, err := svc.Authenticate(context.Background(), "reader", "longenough")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if principal.AccountID != created.ID || principal.Role != account.RoleLibrarian || !principal.Authenticated {
		t.Fatalf("unexpected principal: %#v", principal)
	}

	if _, err := svc.Authenticate(context.Background(), "reader", "wrong-pass"); !errors.Is(err, errors.CodeUnauthorized) {
		t.Fatalf("bad password must be unauthorized, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "ghost", "whatever"); !errors.Is(err, errors.CodeUnauthorized) {
		t.Fatalf("unknown user must be unauthorized, got %v", err)
	}
}

func TestService_UpdateChangesRole(t *testing.T) {
	mem := storage.NewMemory()
	svc := New(mem, nil)
	ctx := adminCtx("admin-1")

	created, err := svc.Create(ctx, CreateInput{Username: "reader", Email: "reader@example.com", Password: "longenough"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Update(ctx, created.ID, UpdateInput{
		Username: "reader",
		Email:    "reader@example.com",
		Role:     account.RoleLibrarian,
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	profile, err := mem.GetProfileByAccount(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.Role != account.RoleLibrarian {
		t.Fatalf("role not updated: %s", profile.Role)
	}
}
