package core_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Supremeimprints/zellow-backoffice/internal/core"
)

func TestSupplier_CRUD(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	svc := core.NewSupplierService(pool)

	t.Run("Create_DefaultsTermsTo30", func(t *testing.T) {
		sp, err := svc.Create(ctx, core.SupplierInput{
			Name:  "Nairobi Paper Co",
			Email: "sales@nairobipaper.test",
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if sp.PaymentTermsDays != 30 {
			t.Errorf("payment terms: expected default 30, got %d", sp.PaymentTermsDays)
		}
		if sp.ContactPerson != nil {
			t.Errorf("blank contact person should be stored as NULL, got %q", *sp.ContactPerson)
		}
	})

	t.Run("Create_BlankName_Fails", func(t *testing.T) {
		_, err := svc.Create(ctx, core.SupplierInput{Email: "x@y.test"})
		if !errors.Is(err, core.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("Update", func(t *testing.T) {
		sp, err := svc.Update(ctx, 1, core.SupplierInput{
			Name:             "Acme Supplies Ltd",
			Email:            "orders@acme.test",
			PaymentTermsDays: 45,
		})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if sp.Name != "Acme Supplies Ltd" || sp.PaymentTermsDays != 45 {
			t.Errorf("update not applied: %+v", sp)
		}
	})

	t.Run("Update_NotFound", func(t *testing.T) {
		_, err := svc.Update(ctx, 99999, core.SupplierInput{Name: "Ghost"})
		if !errors.Is(err, core.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Deactivate_HidesFromDefaultList", func(t *testing.T) {
		if err := svc.Deactivate(ctx, 2); err != nil {
			t.Fatalf("Deactivate: %v", err)
		}

		active, err := svc.List(ctx, false)
		if err != nil {
			t.Fatalf("List active: %v", err)
		}
		for _, sp := range active {
			if sp.ID == 2 {
				t.Error("deactivated supplier still listed as active")
			}
		}

		all, err := svc.List(ctx, true)
		if err != nil {
			t.Fatalf("List all: %v", err)
		}
		if len(all) != len(active)+1 {
			t.Errorf("expected %d suppliers including inactive, got %d", len(active)+1, len(all))
		}
	})

	t.Run("VerifyContact", func(t *testing.T) {
		if _, err := svc.VerifyContact(ctx, 1); err != nil {
			t.Errorf("active supplier with email should verify: %v", err)
		}
		// Supplier 2 was deactivated above.
		if _, err := svc.VerifyContact(ctx, 2); !errors.Is(err, core.ErrStateConflict) {
			t.Errorf("inactive supplier: expected ErrStateConflict, got %v", err)
		}
	})
}
