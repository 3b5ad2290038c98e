package core_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Supremeimprints/zellow-backoffice/internal/core"

	"github.com/shopspring/decimal"
)

func TestCoupon_UsageLimit(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	svc := core.NewMarketingService(pool)
	orders := core.NewOrderService(pool, svc)

	_, err := svc.CreateCoupon(ctx, core.CouponInput{
		Code:          "ONCE",
		DiscountType:  core.DiscountTypeFixed,
		DiscountValue: decimal.NewFromInt(5),
		ValidFrom:     "2020-01-01",
		ValidUntil:    "2099-12-31",
		MaxUses:       1,
	})
	if err != nil {
		t.Fatalf("CreateCoupon: %v", err)
	}

	place := func() error {
		_, err := orders.Create(ctx, core.CreateOrderInput{
			CustomerName: "Repeat Customer",
			CouponCode:   "ONCE",
			Lines:        []core.OrderLineInput{{ProductID: 1, Quantity: decimal.NewFromInt(2)}},
		})
		return err
	}

	if err := place(); err != nil {
		t.Fatalf("first redemption: %v", err)
	}
	if err := place(); !errors.Is(err, core.ErrStateConflict) {
		t.Fatalf("second redemption: expected ErrStateConflict, got %v", err)
	}

	// Validate is a dry run and reports the same exhaustion.
	_, err = svc.Validate(ctx, "ONCE", decimal.NewFromInt(100))
	if !errors.Is(err, core.ErrStateConflict) {
		t.Errorf("Validate: expected ErrStateConflict, got %v", err)
	}
}

func TestCoupon_DuplicateCodeAndDeactivation(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	svc := core.NewMarketingService(pool)

	input := core.CouponInput{
		Code:          "WELCOME",
		DiscountType:  core.DiscountTypePercentage,
		DiscountValue: decimal.NewFromInt(15),
		ValidFrom:     "2020-01-01",
		ValidUntil:    "2099-12-31",
	}
	c, err := svc.CreateCoupon(ctx, input)
	if err != nil {
		t.Fatalf("CreateCoupon: %v", err)
	}

	// Codes are unique regardless of case.
	input.Code = "welcome"
	if _, err := svc.CreateCoupon(ctx, input); !errors.Is(err, core.ErrStateConflict) {
		t.Errorf("duplicate code: expected ErrStateConflict, got %v", err)
	}

	if err := svc.DeactivateCoupon(ctx, c.ID); err != nil {
		t.Fatalf("DeactivateCoupon: %v", err)
	}
	if _, err := svc.Validate(ctx, "WELCOME", decimal.NewFromInt(100)); !errors.Is(err, core.ErrStateConflict) {
		t.Errorf("inactive coupon: expected ErrStateConflict, got %v", err)
	}
	if err := svc.DeactivateCoupon(ctx, 99999); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCampaign_Lifecycle(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	svc := core.NewMarketingService(pool)

	c, err := svc.CreateCampaign(ctx, core.CampaignInput{
		Name:     "Back to School",
		Channel:  "social",
		Budget:   decimal.NewFromInt(1000),
		StartsAt: "2026-08-01",
		EndsAt:   "2026-09-30",
	})
	if err != nil {
		t.Fatalf("CreateCampaign: %v", err)
	}
	if c.Status != core.CampaignStatusDraft {
		t.Fatalf("new campaign: expected draft, got %s", c.Status)
	}

	t.Run("SpendOnDraft_Allowed", func(t *testing.T) {
		got, err := svc.RecordCampaignSpend(ctx, c.ID, decimal.NewFromInt(300))
		if err != nil {
			t.Fatalf("RecordCampaignSpend: %v", err)
		}
		if !got.Spent.Equal(decimal.NewFromInt(300)) {
			t.Errorf("spent: expected 300, got %s", got.Spent)
		}
	})

	t.Run("SpendOverBudget_Rejected", func(t *testing.T) {
		_, err := svc.RecordCampaignSpend(ctx, c.ID, decimal.NewFromInt(701))
		if !errors.Is(err, core.ErrValidation) {
			t.Errorf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("SpendToExactBudget_Allowed", func(t *testing.T) {
		got, err := svc.RecordCampaignSpend(ctx, c.ID, decimal.NewFromInt(700))
		if err != nil {
			t.Fatalf("RecordCampaignSpend: %v", err)
		}
		if !got.Spent.Equal(got.Budget) {
			t.Errorf("spent %s should equal budget %s", got.Spent, got.Budget)
		}
	})

	t.Run("StatusTransitions", func(t *testing.T) {
		if _, err := svc.SetCampaignStatus(ctx, c.ID, core.CampaignStatusActive); err != nil {
			t.Fatalf("draft→active: %v", err)
		}
		if _, err := svc.SetCampaignStatus(ctx, c.ID, core.CampaignStatusPaused); err != nil {
			t.Fatalf("active→paused: %v", err)
		}
		if _, err := svc.SetCampaignStatus(ctx, c.ID, core.CampaignStatusCompleted); err != nil {
			t.Fatalf("paused→completed: %v", err)
		}
		_, err := svc.SetCampaignStatus(ctx, c.ID, core.CampaignStatusActive)
		if !errors.Is(err, core.ErrStateConflict) {
			t.Errorf("completed is terminal; expected ErrStateConflict, got %v", err)
		}
	})
}
