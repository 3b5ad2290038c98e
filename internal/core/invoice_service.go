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

// InvoiceService processes supplier invoice payments. Each payment updates
// the invoice and appends to the payment ledger in one transaction under a
// row lock, so concurrent payments against the same invoice serialize
// instead of losing updates.
type InvoiceService interface {
	Get(ctx context.Context, invoiceID int) (*Invoice, error)
	List(ctx context.Context, filter InvoiceFilter) ([]Invoice, error)
	Payments(ctx context.Context, invoiceID int) ([]InvoicePayment, error)
	// RecordPayment settles part or all of the remaining invoice amount.
	// amount must satisfy 0 < amount ≤ remaining.
	RecordPayment(ctx context.Context, invoiceID int, amount decimal.Decimal, createdBy int) (*Invoice, error)
}

type invoiceService struct {
	pool *pgxpool.Pool
}

// NewInvoiceService constructs an InvoiceService backed by PostgreSQL.
func NewInvoiceService(pool *pgxpool.Pool) InvoiceService {
	return &invoiceService{pool: pool}
}

const invoiceColumns = `i.id, i.purchase_order_id, i.supplier_id, s.name,
	i.invoice_number, i.amount, i.amount_paid, i.status, i.due_date::text, i.created_at`

func scanInvoice(row pgx.Row) (*Invoice, error) {
	inv := &Invoice{}
	err := row.Scan(
		&inv.ID, &inv.PurchaseOrderID, &inv.SupplierID, &inv.SupplierName,
		&inv.InvoiceNumber, &inv.Amount, &inv.AmountPaid, &inv.Status,
		&inv.DueDate, &inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.Remaining = inv.Amount.Sub(inv.AmountPaid)
	return inv, nil
}

func (s *invoiceService) Get(ctx context.Context, invoiceID int) (*Invoice, error) {
	inv, err := scanInvoice(s.pool.QueryRow(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices i
		JOIN suppliers s ON s.id = i.supplier_id
		WHERE i.id = $1`,
		invoiceID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundf("invoice %d", invoiceID)
		}
		return nil, fmt.Errorf("get invoice %d: %w", invoiceID, err)
	}
	return inv, nil
}

func (s *invoiceService) List(ctx context.Context, filter InvoiceFilter) ([]Invoice, error) {
	b := &predicateBuilder{}
	filter.apply(b)

	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices i
		JOIN suppliers s ON s.id = i.supplier_id` +
		b.where() + " ORDER BY i.created_at DESC"

	rows, err := s.pool.Query(ctx, query, b.args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		invoices = append(invoices, *inv)
	}
	return invoices, rows.Err()
}

func (s *invoiceService) Payments(ctx context.Context, invoiceID int) ([]InvoicePayment, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM invoices WHERE id = $1)", invoiceID,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check invoice %d: %w", invoiceID, err)
	}
	if !exists {
		return nil, notFoundf("invoice %d", invoiceID)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, invoice_id, amount, payment_date::text, payment_reference, created_by, created_at
		FROM invoice_payments
		WHERE invoice_id = $1
		ORDER BY created_at, id`,
		invoiceID,
	)
	if err != nil {
		return nil, fmt.Errorf("list payments for invoice %d: %w", invoiceID, err)
	}
	defer rows.Close()

	var payments []InvoicePayment
	for rows.Next() {
		var p InvoicePayment
		if err := rows.Scan(
			&p.ID, &p.InvoiceID, &p.Amount, &p.PaymentDate,
			&p.PaymentReference, &p.CreatedBy, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan invoice payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (s *invoiceService) RecordPayment(ctx context.Context, invoiceID int, amount decimal.Decimal, createdBy int) (*Invoice, error) {
	if !amount.IsPositive() {
		return nil, validationf("payment amount must be positive")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var invAmount, paid decimal.Decimal
	if err := tx.QueryRow(ctx,
		"SELECT amount, amount_paid FROM invoices WHERE id = $1 FOR UPDATE",
		invoiceID,
	).Scan(&invAmount, &paid); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundf("invoice %d", invoiceID)
		}
		return nil, fmt.Errorf("fetch invoice %d: %w", invoiceID, err)
	}

	remaining := invAmount.Sub(paid)
	if amount.GreaterThan(remaining) {
		return nil, validationf("payment of %s exceeds remaining balance %s",
			amount.StringFixed(2), remaining.StringFixed(2))
	}

	newPaid := paid.Add(amount)
	status := InvoiceStatusPartiallyPaid
	if newPaid.GreaterThanOrEqual(invAmount) {
		status = InvoiceStatusPaid
	}

	if _, err := tx.Exec(ctx, `
		UPDATE invoices SET amount_paid = $1, status = $2 WHERE id = $3`,
		newPaid, status, invoiceID,
	); err != nil {
		return nil, fmt.Errorf("update invoice %d: %w", invoiceID, err)
	}

	// created_by references users(id); an unknown caller stores NULL.
	var recordedBy *int
	if createdBy > 0 {
		recordedBy = &createdBy
	}

	now := time.Now()
	if _, err := tx.Exec(ctx, `
		INSERT INTO invoice_payments (invoice_id, amount, payment_date, payment_reference, created_by)
		VALUES ($1, $2, $3, $4, $5)`,
		invoiceID, amount, now.Format("2006-01-02"), PaymentReference(now), recordedBy,
	); err != nil {
		return nil, fmt.Errorf("insert payment for invoice %d: %w", invoiceID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit payment: %w", err)
	}

	return s.Get(ctx, invoiceID)
}
