package core

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func testCoupon() *Coupon {
	return &Coupon{
		ID:             1,
		Code:           "SPRING10",
		DiscountType:   DiscountTypePercentage,
		DiscountValue:  decimal.NewFromInt(10),
		MinOrderAmount: decimal.NewFromInt(50),
		ValidFrom:      "2026-03-01",
		ValidUntil:     "2026-03-31",
		IsActive:       true,
	}
}

func TestCouponDiscount_Percentage(t *testing.T) {
	c := testCoupon()

	got := couponDiscount(c, decimal.NewFromInt(200))
	if want := decimal.NewFromInt(20); !got.Equal(want) {
		t.Errorf("10%% of 200: expected %s, got %s", want, got)
	}

	// Rounds half-up to cents.
	got = couponDiscount(c, decimal.NewFromFloat(99.99))
	if want := decimal.NewFromFloat(10.00); !got.Equal(want) {
		t.Errorf("10%% of 99.99: expected %s, got %s", want, got)
	}
}

func TestCouponDiscount_FixedClampedToOrder(t *testing.T) {
	c := testCoupon()
	c.DiscountType = DiscountTypeFixed
	c.DiscountValue = decimal.NewFromInt(80)

	got := couponDiscount(c, decimal.NewFromInt(60))
	if want := decimal.NewFromInt(60); !got.Equal(want) {
		t.Errorf("fixed 80 on order 60: expected clamp to %s, got %s", want, got)
	}

	got = couponDiscount(c, decimal.NewFromInt(200))
	if want := decimal.NewFromInt(80); !got.Equal(want) {
		t.Errorf("fixed 80 on order 200: expected %s, got %s", want, got)
	}
}

func TestCheckCouponEligibility(t *testing.T) {
	inWindow := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	amount := decimal.NewFromInt(100)

	t.Run("Eligible", func(t *testing.T) {
		if err := checkCouponEligibility(testCoupon(), amount, inWindow); err != nil {
			t.Errorf("expected eligible coupon, got %v", err)
		}
	})

	t.Run("Inactive", func(t *testing.T) {
		c := testCoupon()
		c.IsActive = false
		err := checkCouponEligibility(c, amount, inWindow)
		if !errors.Is(err, ErrStateConflict) {
			t.Errorf("inactive coupon: expected ErrStateConflict, got %v", err)
		}
	})

	t.Run("BeforeWindow", func(t *testing.T) {
		err := checkCouponEligibility(testCoupon(), amount,
			time.Date(2026, 2, 28, 23, 59, 0, 0, time.UTC))
		if !errors.Is(err, ErrValidation) {
			t.Errorf("early redemption: expected ErrValidation, got %v", err)
		}
	})

	t.Run("WindowBoundsInclusive", func(t *testing.T) {
		first := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		last := time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC)
		if err := checkCouponEligibility(testCoupon(), amount, first); err != nil {
			t.Errorf("first valid day: expected eligible, got %v", err)
		}
		if err := checkCouponEligibility(testCoupon(), amount, last); err != nil {
			t.Errorf("last valid day: expected eligible, got %v", err)
		}
	})

	t.Run("Expired", func(t *testing.T) {
		err := checkCouponEligibility(testCoupon(), amount,
			time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
		if !errors.Is(err, ErrValidation) {
			t.Errorf("expired coupon: expected ErrValidation, got %v", err)
		}
	})

	t.Run("BelowMinimumOrder", func(t *testing.T) {
		err := checkCouponEligibility(testCoupon(), decimal.NewFromInt(49), inWindow)
		if !errors.Is(err, ErrValidation) {
			t.Errorf("below minimum: expected ErrValidation, got %v", err)
		}
	})

	t.Run("UsageLimitReached", func(t *testing.T) {
		c := testCoupon()
		limit := 3
		c.MaxUses = &limit
		c.TimesUsed = 3
		err := checkCouponEligibility(c, amount, inWindow)
		if !errors.Is(err, ErrStateConflict) {
			t.Errorf("exhausted coupon: expected ErrStateConflict, got %v", err)
		}
	})
}
