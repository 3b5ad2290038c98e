package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// MarketingService manages coupons and campaigns. Coupon validation is a
// read-only dry run; redemption consumes a use and happens inside the order
// intake transaction via RedeemTx.
type MarketingService interface {
	CreateCoupon(ctx context.Context, input CouponInput) (*Coupon, error)
	ListCoupons(ctx context.Context) ([]Coupon, error)
	DeactivateCoupon(ctx context.Context, couponID int) error
	// Validate checks a code against an order amount and returns the discount
	// it would grant, without consuming a use.
	Validate(ctx context.Context, code string, orderAmount decimal.Decimal) (decimal.Decimal, error)
	// RedeemTx validates the coupon under a row lock, increments times_used,
	// and returns the discount. Runs inside the caller's transaction.
	RedeemTx(ctx context.Context, tx pgx.Tx, code string, orderAmount decimal.Decimal) (decimal.Decimal, error)

	CreateCampaign(ctx context.Context, input CampaignInput) (*Campaign, error)
	ListCampaigns(ctx context.Context) ([]Campaign, error)
	// SetCampaignStatus applies draft→active, active→paused/completed,
	// paused→active/completed.
	SetCampaignStatus(ctx context.Context, campaignID int, status string) (*Campaign, error)
	// RecordCampaignSpend adds to the campaign's spent total; the new total
	// must not exceed the budget.
	RecordCampaignSpend(ctx context.Context, campaignID int, amount decimal.Decimal) (*Campaign, error)
}

type marketingService struct {
	pool *pgxpool.Pool
}

// NewMarketingService constructs a MarketingService backed by PostgreSQL.
func NewMarketingService(pool *pgxpool.Pool) MarketingService {
	return &marketingService{pool: pool}
}

// couponDiscount computes the discount a coupon grants on orderAmount,
// after all eligibility checks passed. Discounts never exceed the order.
func couponDiscount(c *Coupon, orderAmount decimal.Decimal) decimal.Decimal {
	var d decimal.Decimal
	switch c.DiscountType {
	case DiscountTypePercentage:
		d = orderAmount.Mul(c.DiscountValue).Div(decimal.NewFromInt(100)).Round(2)
	case DiscountTypeFixed:
		d = c.DiscountValue
	}
	if d.GreaterThan(orderAmount) {
		d = orderAmount
	}
	return d
}

// checkCouponEligibility applies the business rules shared by Validate and
// RedeemTx. now is the redemption date truncated to a calendar day.
func checkCouponEligibility(c *Coupon, orderAmount decimal.Decimal, now time.Time) error {
	if !c.IsActive {
		return conflictf("coupon %s is inactive", c.Code)
	}
	today := now.Format("2006-01-02")
	if today < c.ValidFrom {
		return validationf("coupon %s is not valid until %s", c.Code, c.ValidFrom)
	}
	if today > c.ValidUntil {
		return validationf("coupon %s expired on %s", c.Code, c.ValidUntil)
	}
	if orderAmount.LessThan(c.MinOrderAmount) {
		return validationf("coupon %s requires a minimum order of %s",
			c.Code, c.MinOrderAmount.StringFixed(2))
	}
	if c.MaxUses != nil && c.TimesUsed >= *c.MaxUses {
		return conflictf("coupon %s has reached its usage limit", c.Code)
	}
	return nil
}

const couponColumns = `id, code, discount_type, discount_value, min_order_amount,
	valid_from::text, valid_until::text, max_uses, times_used, is_active, created_at`

func scanCoupon(row pgx.Row) (*Coupon, error) {
	c := &Coupon{}
	err := row.Scan(
		&c.ID, &c.Code, &c.DiscountType, &c.DiscountValue, &c.MinOrderAmount,
		&c.ValidFrom, &c.ValidUntil, &c.MaxUses, &c.TimesUsed, &c.IsActive, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *marketingService) CreateCoupon(ctx context.Context, input CouponInput) (*Coupon, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		return nil, validationf("coupon code is required")
	}
	if input.DiscountType != DiscountTypePercentage && input.DiscountType != DiscountTypeFixed {
		return nil, validationf("discount type must be percentage or fixed")
	}
	if !input.DiscountValue.IsPositive() {
		return nil, validationf("discount value must be positive")
	}
	if input.DiscountType == DiscountTypePercentage && input.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
		return nil, validationf("percentage discount cannot exceed 100")
	}
	for _, d := range []string{input.ValidFrom, input.ValidUntil} {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return nil, validationf("invalid date %q", d)
		}
	}
	if input.ValidUntil < input.ValidFrom {
		return nil, validationf("valid_until precedes valid_from")
	}

	var maxUses *int
	if input.MaxUses > 0 {
		maxUses = &input.MaxUses
	}

	c, err := scanCoupon(s.pool.QueryRow(ctx, `
		INSERT INTO coupons (code, discount_type, discount_value, min_order_amount,
		                     valid_from, valid_until, max_uses)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+couponColumns,
		code, input.DiscountType, input.DiscountValue, input.MinOrderAmount,
		input.ValidFrom, input.ValidUntil, maxUses,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, conflictf("coupon code %s already exists", code)
		}
		return nil, fmt.Errorf("create coupon %s: %w", code, err)
	}
	return c, nil
}

func (s *marketingService) ListCoupons(ctx context.Context) ([]Coupon, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+couponColumns+" FROM coupons ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	defer rows.Close()

	var coupons []Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, fmt.Errorf("scan coupon: %w", err)
		}
		coupons = append(coupons, *c)
	}
	return coupons, rows.Err()
}

func (s *marketingService) DeactivateCoupon(ctx context.Context, couponID int) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE coupons SET is_active = false WHERE id = $1", couponID)
	if err != nil {
		return fmt.Errorf("deactivate coupon %d: %w", couponID, err)
	}
	if tag.RowsAffected() == 0 {
		return notFoundf("coupon %d", couponID)
	}
	return nil
}

func (s *marketingService) Validate(ctx context.Context, code string, orderAmount decimal.Decimal) (decimal.Decimal, error) {
	c, err := scanCoupon(s.pool.QueryRow(ctx,
		"SELECT "+couponColumns+" FROM coupons WHERE code = $1",
		strings.ToUpper(strings.TrimSpace(code)),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, notFoundf("coupon %s", code)
		}
		return decimal.Zero, fmt.Errorf("fetch coupon %s: %w", code, err)
	}
	if err := checkCouponEligibility(c, orderAmount, time.Now()); err != nil {
		return decimal.Zero, err
	}
	return couponDiscount(c, orderAmount), nil
}

func (s *marketingService) RedeemTx(ctx context.Context, tx pgx.Tx, code string, orderAmount decimal.Decimal) (decimal.Decimal, error) {
	c, err := scanCoupon(tx.QueryRow(ctx,
		"SELECT "+couponColumns+" FROM coupons WHERE code = $1 FOR UPDATE",
		strings.ToUpper(strings.TrimSpace(code)),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, notFoundf("coupon %s", code)
		}
		return decimal.Zero, fmt.Errorf("lock coupon %s: %w", code, err)
	}
	if err := checkCouponEligibility(c, orderAmount, time.Now()); err != nil {
		return decimal.Zero, err
	}

	if _, err := tx.Exec(ctx,
		"UPDATE coupons SET times_used = times_used + 1 WHERE id = $1", c.ID,
	); err != nil {
		return decimal.Zero, fmt.Errorf("redeem coupon %s: %w", c.Code, err)
	}
	return couponDiscount(c, orderAmount), nil
}

// ── Campaigns ─────────────────────────────────────────────────────────────────

const campaignColumns = `id, name, description, channel, budget, spent,
	starts_at::text, ends_at::text, status, created_at`

func scanCampaign(row pgx.Row) (*Campaign, error) {
	c := &Campaign{}
	err := row.Scan(
		&c.ID, &c.Name, &c.Description, &c.Channel, &c.Budget, &c.Spent,
		&c.StartsAt, &c.EndsAt, &c.Status, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *marketingService) CreateCampaign(ctx context.Context, input CampaignInput) (*Campaign, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, validationf("campaign name is required")
	}
	if input.Budget.IsNegative() {
		return nil, validationf("campaign budget cannot be negative")
	}
	channel := input.Channel
	if channel == "" {
		channel = "email"
	}

	toPtr := func(v string) *string {
		if v == "" {
			return nil
		}
		return &v
	}

	c, err := scanCampaign(s.pool.QueryRow(ctx, `
		INSERT INTO marketing_campaigns (name, description, channel, budget, starts_at, ends_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+campaignColumns,
		input.Name, toPtr(input.Description), channel, input.Budget,
		toPtr(input.StartsAt), toPtr(input.EndsAt),
	))
	if err != nil {
		return nil, fmt.Errorf("create campaign %q: %w", input.Name, err)
	}
	return c, nil
}

func (s *marketingService) ListCampaigns(ctx context.Context) ([]Campaign, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+campaignColumns+" FROM marketing_campaigns ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		campaigns = append(campaigns, *c)
	}
	return campaigns, rows.Err()
}

// campaignTransitions lists the legal campaign status moves.
var campaignTransitions = map[string][]string{
	CampaignStatusDraft:  {CampaignStatusActive},
	CampaignStatusActive: {CampaignStatusPaused, CampaignStatusCompleted},
	CampaignStatusPaused: {CampaignStatusActive, CampaignStatusCompleted},
}

func (s *marketingService) SetCampaignStatus(ctx context.Context, campaignID int, status string) (*Campaign, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var current string
	if err := tx.QueryRow(ctx,
		"SELECT status FROM marketing_campaigns WHERE id = $1 FOR UPDATE", campaignID,
	).Scan(&current); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundf("campaign %d", campaignID)
		}
		return nil, fmt.Errorf("fetch campaign %d: %w", campaignID, err)
	}

	allowed := false
	for _, next := range campaignTransitions[current] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, conflictf("campaign %d: cannot move from %s to %s", campaignID, current, status)
	}

	c, err := scanCampaign(tx.QueryRow(ctx, `
		UPDATE marketing_campaigns SET status = $1 WHERE id = $2
		RETURNING `+campaignColumns,
		status, campaignID,
	))
	if err != nil {
		return nil, fmt.Errorf("update campaign %d: %w", campaignID, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit campaign status: %w", err)
	}
	return c, nil
}

func (s *marketingService) RecordCampaignSpend(ctx context.Context, campaignID int, amount decimal.Decimal) (*Campaign, error) {
	if !amount.IsPositive() {
		return nil, validationf("spend amount must be positive")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var budget, spent decimal.Decimal
	if err := tx.QueryRow(ctx,
		"SELECT budget, spent FROM marketing_campaigns WHERE id = $1 FOR UPDATE", campaignID,
	).Scan(&budget, &spent); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundf("campaign %d", campaignID)
		}
		return nil, fmt.Errorf("fetch campaign %d: %w", campaignID, err)
	}

	newSpent := spent.Add(amount)
	if newSpent.GreaterThan(budget) {
		return nil, validationf("spend of %s would exceed budget %s (spent %s)",
			amount.StringFixed(2), budget.StringFixed(2), spent.StringFixed(2))
	}

	c, err := scanCampaign(tx.QueryRow(ctx, `
		UPDATE marketing_campaigns SET spent = $1 WHERE id = $2
		RETURNING `+campaignColumns,
		newSpent, campaignID,
	))
	if err != nil {
		return nil, fmt.Errorf("record spend for campaign %d: %w", campaignID, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit campaign spend: %w", err)
	}
	return c, nil
}
