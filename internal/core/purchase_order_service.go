package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PurchaseOrderNotifier sends the supplier notification after a purchase
// order is committed. Sends are best-effort: a failure produces a warning on
// the create result, never an error, and the committed order stands.
type PurchaseOrderNotifier interface {
	SendPurchaseOrder(ctx context.Context, po *PurchaseOrder, supplier *Supplier) error
}

// PurchaseOrderService owns the supplier ordering workflow: atomic creation
// of the order bundle (header, items, expense row, payment stub, invoice)
// plus listing and cancellation.
type PurchaseOrderService interface {
	// Create atomically writes the purchase order, its items, one expense
	// ledger row, one purchase payment stub, and the matching invoice, then
	// sends the supplier notification outside the transaction. The returned
	// warning is non-empty when the order committed but the email failed.
	Create(ctx context.Context, input CreatePurchaseOrderInput) (*PurchaseOrder, string, error)
	Get(ctx context.Context, poID int) (*PurchaseOrder, error)
	List(ctx context.Context, filter PurchaseOrderFilter) ([]PurchaseOrder, error)
	// Cancel transitions a pending order (no receipts yet) to cancelled.
	Cancel(ctx context.Context, poID int) error
}

type purchaseOrderService struct {
	pool     *pgxpool.Pool
	notifier PurchaseOrderNotifier
}

// NewPurchaseOrderService constructs a PurchaseOrderService backed by PostgreSQL.
func NewPurchaseOrderService(pool *pgxpool.Pool, notifier PurchaseOrderNotifier) PurchaseOrderService {
	return &purchaseOrderService{pool: pool, notifier: notifier}
}

func (s *purchaseOrderService) Create(ctx context.Context, input CreatePurchaseOrderInput) (*PurchaseOrder, string, error) {
	// Supplier gate: must exist, be active, and have an email on file before
	// any write happens.
	supplier, err := verifySupplierContact(ctx, s.pool, input.SupplierID)
	if err != nil {
		return nil, "", err
	}

	// Blank form rows (no quantity or no price) are dropped silently.
	var lines []PurchaseOrderLineInput
	for _, l := range input.Lines {
		if l.Quantity.IsPositive() && l.UnitPrice.IsPositive() {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return nil, "", validationf("purchase order must have at least one line with quantity and unit price")
	}

	orderDate := time.Now()
	if input.OrderDate != "" {
		orderDate, err = time.Parse("2006-01-02", input.OrderDate)
		if err != nil {
			return nil, "", validationf("invalid order date %q", input.OrderDate)
		}
	}

	paymentMethod := input.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "bank_transfer"
	}

	// Total is computed from the submitted lines before the transaction
	// opens; the prices are the buyer's negotiated prices, not catalog reads.
	var total decimal.Decimal
	for _, l := range lines {
		total = total.Add(l.Quantity.Mul(l.UnitPrice))
	}

	// created_by references users(id); an unknown caller stores NULL.
	var createdBy *int
	if input.CreatedBy > 0 {
		createdBy = &input.CreatedBy
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var poID int
	if err := tx.QueryRow(ctx, `
		INSERT INTO purchase_orders (supplier_id, order_date, status, total_amount, created_by)
		VALUES ($1, $2, 'pending', $3, $4)
		RETURNING id`,
		input.SupplierID, orderDate.Format("2006-01-02"), total, createdBy,
	).Scan(&poID); err != nil {
		return nil, "", fmt.Errorf("insert purchase order: %w", err)
	}

	invoiceNumber := InvoiceNumber(orderDate, poID)
	if _, err := tx.Exec(ctx,
		"UPDATE purchase_orders SET invoice_number = $1 WHERE id = $2",
		invoiceNumber, poID,
	); err != nil {
		return nil, "", fmt.Errorf("assign invoice number: %w", err)
	}

	for i, l := range lines {
		var active bool
		if err := tx.QueryRow(ctx,
			"SELECT is_active FROM products WHERE id = $1", l.ProductID,
		).Scan(&active); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, "", validationf("line %d: product %d not found", i+1, l.ProductID)
			}
			return nil, "", fmt.Errorf("line %d: resolve product: %w", i+1, err)
		}
		if !active {
			return nil, "", validationf("line %d: product %d is inactive", i+1, l.ProductID)
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO purchase_order_items (purchase_order_id, product_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4)`,
			poID, l.ProductID, l.Quantity, l.UnitPrice,
		); err != nil {
			return nil, "", fmt.Errorf("insert PO item %d: %w", i+1, err)
		}
	}

	// Expense ledger row for accounting traceability.
	description := fmt.Sprintf("Purchase order #%d — %s", poID, supplier.Name)
	if _, err := tx.Exec(ctx, `
		INSERT INTO transactions (category, amount, expense_date, description, reference, created_by)
		VALUES ('Inventory Purchase', $1, $2, $3, $4, $5)`,
		total, orderDate.Format("2006-01-02"), description, invoiceNumber, createdBy,
	); err != nil {
		return nil, "", fmt.Errorf("insert expense transaction: %w", err)
	}

	// Payment-intent stub. Settlement is tracked separately on the
	// invoice_payments ledger.
	if _, err := tx.Exec(ctx, `
		INSERT INTO purchase_payments (purchase_order_id, amount, payment_method, status, transaction_id, invoice_number)
		VALUES ($1, $2, $3, 'Pending', $4, $5)`,
		poID, total, paymentMethod, TransactionID(time.Now()), invoiceNumber,
	); err != nil {
		return nil, "", fmt.Errorf("insert purchase payment stub: %w", err)
	}

	dueDate := orderDate.AddDate(0, 0, supplier.PaymentTermsDays)
	if _, err := tx.Exec(ctx, `
		INSERT INTO invoices (purchase_order_id, supplier_id, invoice_number, amount, status, due_date)
		VALUES ($1, $2, $3, $4, 'Pending', $5)`,
		poID, input.SupplierID, invoiceNumber, total, dueDate.Format("2006-01-02"),
	); err != nil {
		return nil, "", fmt.Errorf("insert invoice: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, "", fmt.Errorf("commit purchase order: %w", err)
	}

	po, err := s.Get(ctx, poID)
	if err != nil {
		return nil, "", err
	}

	// Notification failure after commit degrades to a warning; the order
	// is already durable.
	var warning string
	if s.notifier != nil {
		if err := s.notifier.SendPurchaseOrder(ctx, po, supplier); err != nil {
			warning = fmt.Sprintf("order created but supplier notification failed: %v", err)
		}
	}
	return po, warning, nil
}

func (s *purchaseOrderService) Get(ctx context.Context, poID int) (*PurchaseOrder, error) {
	return fetchPurchaseOrder(ctx, s.pool, poID)
}

// fetchPurchaseOrder loads the full order detail: header, items, and the
// payment stub. Shared with ReceivingService, which returns the refreshed
// order after a receipt.
func fetchPurchaseOrder(ctx context.Context, pool *pgxpool.Pool, poID int) (*PurchaseOrder, error) {
	po := &PurchaseOrder{}
	if err := pool.QueryRow(ctx, `
		SELECT po.id, po.supplier_id, s.name, po.order_date::text, po.status,
		       po.total_amount, po.invoice_number, po.is_fulfilled,
		       po.created_by, po.created_at, po.updated_at
		FROM purchase_orders po
		JOIN suppliers s ON s.id = po.supplier_id
		WHERE po.id = $1`,
		poID,
	).Scan(
		&po.ID, &po.SupplierID, &po.SupplierName, &po.OrderDate, &po.Status,
		&po.TotalAmount, &po.InvoiceNumber, &po.IsFulfilled,
		&po.CreatedBy, &po.CreatedAt, &po.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundf("purchase order %d", poID)
		}
		return nil, fmt.Errorf("get purchase order %d: %w", poID, err)
	}

	items, err := fetchPurchaseOrderItems(ctx, pool, poID)
	if err != nil {
		return nil, err
	}
	po.Items = items

	pay := &PurchasePayment{}
	err = pool.QueryRow(ctx, `
		SELECT id, purchase_order_id, amount, payment_method, status,
		       transaction_id, invoice_number, created_at
		FROM purchase_payments
		WHERE purchase_order_id = $1
		ORDER BY id
		LIMIT 1`,
		poID,
	).Scan(
		&pay.ID, &pay.PurchaseOrderID, &pay.Amount, &pay.PaymentMethod,
		&pay.Status, &pay.TransactionID, &pay.InvoiceNumber, &pay.CreatedAt,
	)
	switch {
	case err == nil:
		po.Payment = pay
	case errors.Is(err, pgx.ErrNoRows):
		// Orders imported without a stub simply have no payment detail.
	default:
		return nil, fmt.Errorf("get payment stub for purchase order %d: %w", poID, err)
	}
	return po, nil
}

func (s *purchaseOrderService) List(ctx context.Context, filter PurchaseOrderFilter) ([]PurchaseOrder, error) {
	b := &predicateBuilder{}
	filter.apply(b)

	query := `
		SELECT po.id, po.supplier_id, s.name, po.order_date::text, po.status,
		       po.total_amount, po.invoice_number, po.is_fulfilled,
		       po.created_by, po.created_at, po.updated_at
		FROM purchase_orders po
		JOIN suppliers s ON s.id = po.supplier_id` +
		b.where() + " ORDER BY po.created_at DESC"

	rows, err := s.pool.Query(ctx, query, b.args...)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	defer rows.Close()

	var orders []PurchaseOrder
	for rows.Next() {
		var po PurchaseOrder
		if err := rows.Scan(
			&po.ID, &po.SupplierID, &po.SupplierName, &po.OrderDate, &po.Status,
			&po.TotalAmount, &po.InvoiceNumber, &po.IsFulfilled,
			&po.CreatedBy, &po.CreatedAt, &po.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan purchase order: %w", err)
		}
		orders = append(orders, po)
	}
	return orders, rows.Err()
}

func (s *purchaseOrderService) Cancel(ctx context.Context, poID int) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status string
	if err := tx.QueryRow(ctx,
		"SELECT status FROM purchase_orders WHERE id = $1 FOR UPDATE",
		poID,
	).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notFoundf("purchase order %d", poID)
		}
		return fmt.Errorf("fetch purchase order %d: %w", poID, err)
	}

	if status != POStatusPending {
		return conflictf("purchase order %d cannot be cancelled: status is %s (must be pending)", poID, status)
	}

	if _, err := tx.Exec(ctx,
		"UPDATE purchase_orders SET status = 'cancelled', updated_at = NOW() WHERE id = $1",
		poID,
	); err != nil {
		return fmt.Errorf("cancel purchase order %d: %w", poID, err)
	}

	return tx.Commit(ctx)
}

// fetchPurchaseOrderItems returns all items for a purchase order, joined
// with product identity. Shared with ReceivingService.
func fetchPurchaseOrderItems(ctx context.Context, pool *pgxpool.Pool, poID int) ([]PurchaseOrderItem, error) {
	rows, err := pool.Query(ctx, `
		SELECT i.id, i.purchase_order_id, i.product_id, p.sku, p.name,
		       i.quantity, i.unit_price, i.received_quantity
		FROM purchase_order_items i
		JOIN products p ON p.id = i.product_id
		WHERE i.purchase_order_id = $1
		ORDER BY i.id`,
		poID,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch items for purchase order %d: %w", poID, err)
	}
	defer rows.Close()

	var items []PurchaseOrderItem
	for rows.Next() {
		var it PurchaseOrderItem
		if err := rows.Scan(
			&it.ID, &it.PurchaseOrderID, &it.ProductID, &it.ProductSKU, &it.ProductName,
			&it.Quantity, &it.UnitPrice, &it.ReceivedQuantity,
		); err != nil {
			return nil, fmt.Errorf("scan purchase order item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
