package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// OrderService manages customer orders: intake, listing with typed filters,
// and status transitions. Dispatch-specific transitions (shipped, delivered)
// live on DispatchService.
type OrderService interface {
	Create(ctx context.Context, input CreateOrderInput) (*CustomerOrder, error)
	Get(ctx context.Context, orderID int) (*CustomerOrder, error)
	List(ctx context.Context, filter OrderFilter) ([]CustomerOrder, error)
	// UpdateStatus applies a manual transition. Legal moves:
	// pending→processing, pending/processing→cancelled.
	UpdateStatus(ctx context.Context, orderID int, status string) (*CustomerOrder, error)
	// MarkPaid flips payment_status from unpaid to paid.
	MarkPaid(ctx context.Context, orderID int) (*CustomerOrder, error)
}

type orderService struct {
	pool      *pgxpool.Pool
	marketing MarketingService
}

// NewOrderService constructs an OrderService. marketing handles coupon
// validation and redemption during order intake.
func NewOrderService(pool *pgxpool.Pool, marketing MarketingService) OrderService {
	return &orderService{pool: pool, marketing: marketing}
}

const orderColumns = `o.id, o.customer_name, o.customer_email, o.shipping_address,
	o.status, o.payment_status, o.total_amount, o.coupon_code,
	o.driver_id, d.name, o.vehicle_id, v.registration_no,
	o.dispatched_at, o.delivered_at, o.created_at`

const orderJoins = `
	FROM customer_orders o
	LEFT JOIN drivers d ON d.id = o.driver_id
	LEFT JOIN vehicles v ON v.id = o.vehicle_id`

func scanOrder(row pgx.Row) (*CustomerOrder, error) {
	o := &CustomerOrder{}
	err := row.Scan(
		&o.ID, &o.CustomerName, &o.CustomerEmail, &o.ShippingAddress,
		&o.Status, &o.PaymentStatus, &o.TotalAmount, &o.CouponCode,
		&o.DriverID, &o.DriverName, &o.VehicleID, &o.VehicleRegNo,
		&o.DispatchedAt, &o.DeliveredAt, &o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (s *orderService) Create(ctx context.Context, input CreateOrderInput) (*CustomerOrder, error) {
	if input.CustomerName == "" {
		return nil, validationf("customer name is required")
	}
	if len(input.Lines) == 0 {
		return nil, validationf("order must have at least one line")
	}
	for i, l := range input.Lines {
		if !l.Quantity.IsPositive() {
			return nil, validationf("line %d: quantity must be positive", i+1)
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Price lines from the catalog inside the transaction.
	type pricedLine struct {
		productID int
		quantity  decimal.Decimal
		unitPrice decimal.Decimal
	}
	var priced []pricedLine
	var total decimal.Decimal
	for i, l := range input.Lines {
		var price decimal.Decimal
		var active bool
		if err := tx.QueryRow(ctx,
			"SELECT unit_price, is_active FROM products WHERE id = $1", l.ProductID,
		).Scan(&price, &active); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, validationf("line %d: product %d not found", i+1, l.ProductID)
			}
			return nil, fmt.Errorf("line %d: resolve product: %w", i+1, err)
		}
		if !active {
			return nil, validationf("line %d: product %d is inactive", i+1, l.ProductID)
		}
		priced = append(priced, pricedLine{l.ProductID, l.Quantity, price})
		total = total.Add(l.Quantity.Mul(price))
	}

	// Apply coupon, if any, and consume one use inside this transaction.
	var couponCode *string
	if input.CouponCode != "" {
		discount, err := s.marketing.RedeemTx(ctx, tx, input.CouponCode, total)
		if err != nil {
			return nil, err
		}
		total = total.Sub(discount)
		if total.IsNegative() {
			total = decimal.Zero
		}
		couponCode = &input.CouponCode
	}

	toPtr := func(v string) *string {
		if v == "" {
			return nil
		}
		return &v
	}

	var orderID int
	if err := tx.QueryRow(ctx, `
		INSERT INTO customer_orders (customer_name, customer_email, shipping_address, total_amount, coupon_code)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		input.CustomerName, toPtr(input.CustomerEmail), toPtr(input.ShippingAddress), total, couponCode,
	).Scan(&orderID); err != nil {
		return nil, fmt.Errorf("insert customer order: %w", err)
	}

	for i, l := range priced {
		if _, err := tx.Exec(ctx, `
			INSERT INTO customer_order_items (order_id, product_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4)`,
			orderID, l.productID, l.quantity, l.unitPrice,
		); err != nil {
			return nil, fmt.Errorf("insert order item %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit customer order: %w", err)
	}
	return s.Get(ctx, orderID)
}

func (s *orderService) Get(ctx context.Context, orderID int) (*CustomerOrder, error) {
	o, err := scanOrder(s.pool.QueryRow(ctx,
		"SELECT "+orderColumns+orderJoins+" WHERE o.id = $1", orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundf("order %d", orderID)
		}
		return nil, fmt.Errorf("get order %d: %w", orderID, err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT i.id, i.order_id, i.product_id, p.sku, p.name, i.quantity, i.unit_price
		FROM customer_order_items i
		JOIN products p ON p.id = i.product_id
		WHERE i.order_id = $1
		ORDER BY i.id`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch items for order %d: %w", orderID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var it CustomerOrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductSKU,
			&it.Name, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		o.Items = append(o.Items, it)
	}
	return o, rows.Err()
}

func (s *orderService) List(ctx context.Context, filter OrderFilter) ([]CustomerOrder, error) {
	b := &predicateBuilder{}
	filter.apply(b)

	query := "SELECT " + orderColumns + orderJoins + b.where() + " ORDER BY o.created_at DESC"
	rows, err := s.pool.Query(ctx, query, b.args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []CustomerOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

// legalTransitions lists the manual status moves. Dispatch owns
// processing→shipped and shipped→delivered.
var legalTransitions = map[string][]string{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusCancelled},
}

func (s *orderService) UpdateStatus(ctx context.Context, orderID int, status string) (*CustomerOrder, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var current string
	if err := tx.QueryRow(ctx,
		"SELECT status FROM customer_orders WHERE id = $1 FOR UPDATE", orderID,
	).Scan(&current); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundf("order %d", orderID)
		}
		return nil, fmt.Errorf("fetch order %d: %w", orderID, err)
	}

	allowed := false
	for _, next := range legalTransitions[current] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, conflictf("order %d: cannot move from %s to %s", orderID, current, status)
	}

	if _, err := tx.Exec(ctx,
		"UPDATE customer_orders SET status = $1 WHERE id = $2", status, orderID,
	); err != nil {
		return nil, fmt.Errorf("update order %d: %w", orderID, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit status update: %w", err)
	}
	return s.Get(ctx, orderID)
}

func (s *orderService) MarkPaid(ctx context.Context, orderID int) (*CustomerOrder, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE customer_orders SET payment_status = 'paid'
		WHERE id = $1 AND payment_status = 'unpaid'`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("mark order %d paid: %w", orderID, err)
	}
	if tag.RowsAffected() == 0 {
		o, err := s.Get(ctx, orderID)
		if err != nil {
			return nil, err
		}
		return nil, conflictf("order %d payment status is already %s", orderID, o.PaymentStatus)
	}
	return s.Get(ctx, orderID)
}
