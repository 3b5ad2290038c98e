package core_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Supremeimprints/zellow-backoffice/internal/core"
)

func TestUser_CreateAndAuthenticate(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	svc := core.NewUserService(pool)

	u, err := svc.Create(ctx, core.CreateUserInput{
		Username: "msmith",
		Email:    "msmith@zellow.test",
		Password: "correct horse battery",
		Role:     core.RoleManager,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.Role != core.RoleManager || !u.IsActive {
		t.Fatalf("unexpected new user: %+v", u)
	}

	t.Run("GoodCredentials", func(t *testing.T) {
		got, err := svc.Authenticate(ctx, "msmith", "correct horse battery")
		if err != nil {
			t.Fatalf("Authenticate: %v", err)
		}
		if got.ID != u.ID {
			t.Errorf("expected user %d, got %d", u.ID, got.ID)
		}
	})

	t.Run("WrongPassword", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "msmith", "wrong")
		if !errors.Is(err, core.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("UnknownUser_SameError", func(t *testing.T) {
		_, wrongPass := svc.Authenticate(ctx, "msmith", "wrong")
		_, unknown := svc.Authenticate(ctx, "nobody", "whatever")
		if unknown == nil || wrongPass == nil || unknown.Error() != wrongPass.Error() {
			t.Errorf("login errors must not distinguish accounts: %v vs %v", unknown, wrongPass)
		}
	})

	t.Run("DuplicateUsername", func(t *testing.T) {
		_, err := svc.Create(ctx, core.CreateUserInput{
			Username: "msmith",
			Email:    "other@zellow.test",
			Password: "another passphrase",
			Role:     core.RoleStaff,
		})
		if !errors.Is(err, core.ErrStateConflict) {
			t.Errorf("expected ErrStateConflict, got %v", err)
		}
	})

	t.Run("ShortPassword", func(t *testing.T) {
		_, err := svc.Create(ctx, core.CreateUserInput{
			Username: "short",
			Email:    "short@zellow.test",
			Password: "abc",
			Role:     core.RoleStaff,
		})
		if !errors.Is(err, core.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("UnknownRole", func(t *testing.T) {
		_, err := svc.Create(ctx, core.CreateUserInput{
			Username: "intern",
			Email:    "intern@zellow.test",
			Password: "long enough password",
			Role:     "superuser",
		})
		if !errors.Is(err, core.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("DeactivatedCannotLogIn", func(t *testing.T) {
		if err := svc.Deactivate(ctx, u.ID); err != nil {
			t.Fatalf("Deactivate: %v", err)
		}
		_, err := svc.Authenticate(ctx, "msmith", "correct horse battery")
		if !errors.Is(err, core.ErrValidation) {
			t.Errorf("expected ErrValidation for deactivated account, got %v", err)
		}
	})

	t.Run("SetRole", func(t *testing.T) {
		if err := svc.SetRole(ctx, u.ID, core.RoleAdmin); err != nil {
			t.Fatalf("SetRole: %v", err)
		}
		got, err := svc.GetByID(ctx, u.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got.Role != core.RoleAdmin {
			t.Errorf("expected admin, got %s", got.Role)
		}
		if err := svc.SetRole(ctx, u.ID, "superuser"); !errors.Is(err, core.ErrValidation) {
			t.Errorf("expected ErrValidation for unknown role, got %v", err)
		}
		if err := svc.SetRole(ctx, 99999, core.RoleStaff); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}
