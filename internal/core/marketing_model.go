package core

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"
)

const (
	CampaignStatusDraft     = "draft"
	CampaignStatusActive    = "active"
	CampaignStatusPaused    = "paused"
	CampaignStatusCompleted = "completed"
)

// Coupon is a discount code. TimesUsed is incremented under a row lock at
// redemption so MaxUses cannot be oversubscribed by concurrent checkouts.
type Coupon struct {
	ID             int             `json:"id"`
	Code           string          `json:"code"`
	DiscountType   string          `json:"discount_type"`
	DiscountValue  decimal.Decimal `json:"discount_value"`
	MinOrderAmount decimal.Decimal `json:"min_order_amount"`
	ValidFrom      string          `json:"valid_from"`  // YYYY-MM-DD
	ValidUntil     string          `json:"valid_until"` // YYYY-MM-DD
	MaxUses        *int            `json:"max_uses,omitempty"`
	TimesUsed      int             `json:"times_used"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
}

// CouponInput carries the mutable coupon fields.
type CouponInput struct {
	Code           string          `json:"code"`
	DiscountType   string          `json:"discount_type"`
	DiscountValue  decimal.Decimal `json:"discount_value"`
	MinOrderAmount decimal.Decimal `json:"min_order_amount"`
	ValidFrom      string          `json:"valid_from"`
	ValidUntil     string          `json:"valid_until"`
	MaxUses        int             `json:"max_uses"` // 0 means unlimited
}

// Campaign is a marketing campaign with a spend budget.
type Campaign struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Channel     string          `json:"channel"`
	Budget      decimal.Decimal `json:"budget"`
	Spent       decimal.Decimal `json:"spent"`
	StartsAt    *string         `json:"starts_at,omitempty"` // YYYY-MM-DD
	EndsAt      *string         `json:"ends_at,omitempty"`   // YYYY-MM-DD
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

// CampaignInput carries the mutable campaign fields.
type CampaignInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Channel     string          `json:"channel"`
	Budget      decimal.Decimal `json:"budget"`
	StartsAt    string          `json:"starts_at"`
	EndsAt      string          `json:"ends_at"`
}
