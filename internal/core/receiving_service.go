package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// OpenPurchaseOrder is a receiving-board row: an unfulfilled order with
// aggregate ordered vs received quantities. Progress is the server-side
// authority for the receipt percentage.
type OpenPurchaseOrder struct {
	ID            int             `json:"id"`
	SupplierID    int             `json:"supplier_id"`
	SupplierName  string          `json:"supplier_name"`
	OrderDate     string          `json:"order_date"`
	Status        string          `json:"status"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	ItemCount     int             `json:"item_count"`
	TotalOrdered  decimal.Decimal `json:"total_ordered"`
	TotalReceived decimal.Decimal `json:"total_received"`
	Progress      decimal.Decimal `json:"progress"` // 0–100, 1 decimal place
}

// ReceiptLine is one received-quantity delta posted against an order item.
type ReceiptLine struct {
	ItemID   int             `json:"item_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// ReceivingService records incoming goods against purchase orders and owns
// the derived order status: pending → partial → received. The is_fulfilled
// flag flips inside the same transaction as the final line update, so partial
// and concurrent receipts can never leave the flag inconsistent.
type ReceivingService interface {
	ListOpen(ctx context.Context) ([]OpenPurchaseOrder, error)
	Items(ctx context.Context, poID int) ([]PurchaseOrderItem, error)
	// ReceiveItems applies positive quantity deltas to order items. Every
	// delta must keep received_quantity ≤ quantity or the whole receipt
	// rolls back. Returns the refreshed order.
	ReceiveItems(ctx context.Context, poID int, deltas []ReceiptLine) (*PurchaseOrder, error)
}

type receivingService struct {
	pool *pgxpool.Pool
}

// NewReceivingService constructs a ReceivingService backed by PostgreSQL.
func NewReceivingService(pool *pgxpool.Pool) ReceivingService {
	return &receivingService{pool: pool}
}

func (s *receivingService) ListOpen(ctx context.Context) ([]OpenPurchaseOrder, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT po.id, po.supplier_id, s.name, po.order_date::text, po.status, po.total_amount,
		       COUNT(i.id),
		       COALESCE(SUM(i.quantity), 0),
		       COALESCE(SUM(i.received_quantity), 0)
		FROM purchase_orders po
		JOIN suppliers s ON s.id = po.supplier_id
		LEFT JOIN purchase_order_items i ON i.purchase_order_id = po.id
		WHERE po.is_fulfilled = false AND po.status <> 'cancelled'
		GROUP BY po.id, s.name
		ORDER BY po.order_date, po.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list open purchase orders: %w", err)
	}
	defer rows.Close()

	hundred := decimal.NewFromInt(100)
	var open []OpenPurchaseOrder
	for rows.Next() {
		var o OpenPurchaseOrder
		if err := rows.Scan(
			&o.ID, &o.SupplierID, &o.SupplierName, &o.OrderDate, &o.Status, &o.TotalAmount,
			&o.ItemCount, &o.TotalOrdered, &o.TotalReceived,
		); err != nil {
			return nil, fmt.Errorf("scan open purchase order: %w", err)
		}
		if o.TotalOrdered.IsPositive() {
			o.Progress = o.TotalReceived.Div(o.TotalOrdered).Mul(hundred).Round(1)
		}
		open = append(open, o)
	}
	return open, rows.Err()
}

func (s *receivingService) Items(ctx context.Context, poID int) ([]PurchaseOrderItem, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM purchase_orders WHERE id = $1)", poID,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check purchase order %d: %w", poID, err)
	}
	if !exists {
		return nil, notFoundf("purchase order %d", poID)
	}
	return fetchPurchaseOrderItems(ctx, s.pool, poID)
}

func (s *receivingService) ReceiveItems(ctx context.Context, poID int, deltas []ReceiptLine) (*PurchaseOrder, error) {
	if len(deltas) == 0 {
		return nil, validationf("at least one receipt line is required")
	}
	for _, d := range deltas {
		if !d.Quantity.IsPositive() {
			return nil, validationf("item %d: received quantity must be positive", d.ItemID)
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock the order header first so concurrent receipts serialize and the
	// status derivation below sees a consistent item set.
	var status string
	if err := tx.QueryRow(ctx,
		"SELECT status FROM purchase_orders WHERE id = $1 FOR UPDATE",
		poID,
	).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundf("purchase order %d", poID)
		}
		return nil, fmt.Errorf("fetch purchase order %d: %w", poID, err)
	}
	switch status {
	case POStatusCancelled:
		return nil, conflictf("purchase order %d is cancelled", poID)
	case POStatusReceived:
		return nil, conflictf("purchase order %d is already fully received", poID)
	}

	for _, d := range deltas {
		var qty, received decimal.Decimal
		if err := tx.QueryRow(ctx, `
			SELECT quantity, received_quantity
			FROM purchase_order_items
			WHERE id = $1 AND purchase_order_id = $2
			FOR UPDATE`,
			d.ItemID, poID,
		).Scan(&qty, &received); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, notFoundf("item %d on purchase order %d", d.ItemID, poID)
			}
			return nil, fmt.Errorf("lock item %d: %w", d.ItemID, err)
		}

		after := received.Add(d.Quantity)
		if after.GreaterThan(qty) {
			return nil, validationf(
				"item %d: receiving %s would exceed ordered quantity (ordered %s, already received %s)",
				d.ItemID, d.Quantity.String(), qty.String(), received.String())
		}

		if _, err := tx.Exec(ctx,
			"UPDATE purchase_order_items SET received_quantity = $1 WHERE id = $2",
			after, d.ItemID,
		); err != nil {
			return nil, fmt.Errorf("update item %d: %w", d.ItemID, err)
		}
	}

	// Derive header status from the updated item set.
	var outstanding, receivedAny bool
	if err := tx.QueryRow(ctx, `
		SELECT COALESCE(BOOL_OR(received_quantity < quantity), false),
		       COALESCE(BOOL_OR(received_quantity > 0), false)
		FROM purchase_order_items
		WHERE purchase_order_id = $1`,
		poID,
	).Scan(&outstanding, &receivedAny); err != nil {
		return nil, fmt.Errorf("derive status for purchase order %d: %w", poID, err)
	}

	newStatus := POStatusPending
	fulfilled := false
	switch {
	case !outstanding:
		newStatus = POStatusReceived
		fulfilled = true
	case receivedAny:
		newStatus = POStatusPartial
	}

	if _, err := tx.Exec(ctx, `
		UPDATE purchase_orders
		SET status = $1, is_fulfilled = $2, updated_at = NOW()
		WHERE id = $3`,
		newStatus, fulfilled, poID,
	); err != nil {
		return nil, fmt.Errorf("update purchase order %d status: %w", poID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit receipt: %w", err)
	}

	return fetchPurchaseOrder(ctx, s.pool, poID)
}
