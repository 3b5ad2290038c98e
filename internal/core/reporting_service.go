package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ── Report types ──────────────────────────────────────────────────────────────

// CategoryTotal is one expense category with its total over the period.
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// FinancialSummary aggregates the period's money flows: paid customer-order
// revenue, expense-ledger spend by category, and the payables still open on
// supplier invoices (not period-bounded — it is a point-in-time balance).
type FinancialSummary struct {
	From                string          `json:"from"`
	To                  string          `json:"to"`
	Revenue             decimal.Decimal `json:"revenue"`
	OrderCount          int             `json:"order_count"`
	ExpensesByCategory  []CategoryTotal `json:"expenses_by_category"`
	TotalExpenses       decimal.Decimal `json:"total_expenses"`
	OutstandingPayables decimal.Decimal `json:"outstanding_payables"`
	Net                 decimal.Decimal `json:"net"`
}

// ProductSales is one row of the top-products report.
type ProductSales struct {
	ProductID int             `json:"product_id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	UnitsSold decimal.Decimal `json:"units_sold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// SupplierSpendRow is one supplier's purchasing total over the period.
type SupplierSpendRow struct {
	SupplierID int             `json:"supplier_id"`
	Name       string          `json:"name"`
	OrderCount int             `json:"order_count"`
	Total      decimal.Decimal `json:"total"`
}

// ── Interface ─────────────────────────────────────────────────────────────────

// ReportingService provides the financial analytics read models. All queries
// are aggregates over committed data; nothing here writes.
type ReportingService interface {
	// FinancialSummary aggregates the period [from, to] (YYYY-MM-DD, both
	// optional — empty means unbounded on that side).
	FinancialSummary(ctx context.Context, from, to string) (*FinancialSummary, error)
	TopProducts(ctx context.Context, from, to string, limit int) ([]ProductSales, error)
	SupplierSpend(ctx context.Context, from, to string) ([]SupplierSpendRow, error)
	// Expenses lists the raw expense ledger rows behind the summary's
	// category totals, newest first.
	Expenses(ctx context.Context, from, to string) ([]Transaction, error)
	// ExportFinancialSummary renders the summary as an xlsx workbook.
	ExportFinancialSummary(ctx context.Context, from, to string) ([]byte, error)
}

type reportingService struct {
	pool *pgxpool.Pool
}

// NewReportingService constructs a ReportingService backed by the given pool.
func NewReportingService(pool *pgxpool.Pool) ReportingService {
	return &reportingService{pool: pool}
}

// dateRange builds the shared period predicate for a date-typed column.
func dateRange(b *predicateBuilder, column, from, to string) {
	if from != "" {
		b.add(column+" >= $%d", from)
	}
	if to != "" {
		b.add(column+" <= $%d", to)
	}
}

func (s *reportingService) FinancialSummary(ctx context.Context, from, to string) (*FinancialSummary, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}
	summary := &FinancialSummary{From: from, To: to}

	// Revenue: delivered or paid orders, excluding cancellations.
	b := &predicateBuilder{}
	b.add("o.payment_status = $%d", PaymentStatusPaid)
	b.add("o.status <> $%d", OrderStatusCancelled)
	dateRange(b, "o.created_at::date", from, to)
	if err := s.pool.QueryRow(ctx,
		"SELECT COALESCE(SUM(o.total_amount), 0), COUNT(*) FROM customer_orders o"+b.where(),
		b.args...,
	).Scan(&summary.Revenue, &summary.OrderCount); err != nil {
		return nil, fmt.Errorf("aggregate revenue: %w", err)
	}

	// Expenses by category from the single-entry ledger.
	b = &predicateBuilder{}
	dateRange(b, "t.expense_date", from, to)
	rows, err := s.pool.Query(ctx, `
		SELECT t.category, COALESCE(SUM(t.amount), 0)
		FROM transactions t`+b.where()+`
		GROUP BY t.category
		ORDER BY SUM(t.amount) DESC`,
		b.args...,
	)
	if err != nil {
		return nil, fmt.Errorf("aggregate expenses: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var ct CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Total); err != nil {
			return nil, fmt.Errorf("scan expense category: %w", err)
		}
		summary.ExpensesByCategory = append(summary.ExpensesByCategory, ct)
		summary.TotalExpenses = summary.TotalExpenses.Add(ct.Total)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Open payables: a balance, not a flow, so no period bound.
	if err := s.pool.QueryRow(ctx,
		"SELECT COALESCE(SUM(amount - amount_paid), 0) FROM invoices WHERE status <> 'Paid'",
	).Scan(&summary.OutstandingPayables); err != nil {
		return nil, fmt.Errorf("aggregate payables: %w", err)
	}

	summary.Net = summary.Revenue.Sub(summary.TotalExpenses)
	return summary, nil
}

func (s *reportingService) TopProducts(ctx context.Context, from, to string, limit int) ([]ProductSales, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	b := &predicateBuilder{}
	b.add("o.status <> $%d", OrderStatusCancelled)
	dateRange(b, "o.created_at::date", from, to)
	b.args = append(b.args, limit)

	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
		SELECT p.id, p.sku, p.name,
		       COALESCE(SUM(i.quantity), 0),
		       COALESCE(SUM(i.quantity * i.unit_price), 0)
		FROM customer_order_items i
		JOIN customer_orders o ON o.id = i.order_id
		JOIN products p ON p.id = i.product_id
		%s
		GROUP BY p.id, p.sku, p.name
		ORDER BY SUM(i.quantity * i.unit_price) DESC
		LIMIT $%d`, b.where(), len(b.args)),
		b.args...,
	)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	defer rows.Close()

	var out []ProductSales
	for rows.Next() {
		var ps ProductSales
		if err := rows.Scan(&ps.ProductID, &ps.SKU, &ps.Name, &ps.UnitsSold, &ps.Revenue); err != nil {
			return nil, fmt.Errorf("scan product sales: %w", err)
		}
		out = append(out, ps)
	}
	return out, rows.Err()
}

func (s *reportingService) SupplierSpend(ctx context.Context, from, to string) ([]SupplierSpendRow, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}

	b := &predicateBuilder{}
	b.add("po.status <> $%d", POStatusCancelled)
	dateRange(b, "po.order_date", from, to)

	rows, err := s.pool.Query(ctx, `
		SELECT s.id, s.name, COUNT(po.id), COALESCE(SUM(po.total_amount), 0)
		FROM purchase_orders po
		JOIN suppliers s ON s.id = po.supplier_id`+b.where()+`
		GROUP BY s.id, s.name
		ORDER BY SUM(po.total_amount) DESC`,
		b.args...,
	)
	if err != nil {
		return nil, fmt.Errorf("supplier spend: %w", err)
	}
	defer rows.Close()

	var out []SupplierSpendRow
	for rows.Next() {
		var r SupplierSpendRow
		if err := rows.Scan(&r.SupplierID, &r.Name, &r.OrderCount, &r.Total); err != nil {
			return nil, fmt.Errorf("scan supplier spend: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *reportingService) Expenses(ctx context.Context, from, to string) ([]Transaction, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}

	b := &predicateBuilder{}
	dateRange(b, "t.expense_date", from, to)

	rows, err := s.pool.Query(ctx, `
		SELECT t.id, t.category, t.amount, t.expense_date::text,
		       t.description, t.reference, t.created_by, t.created_at
		FROM transactions t`+b.where()+`
		ORDER BY t.expense_date DESC, t.id DESC`,
		b.args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.Category, &t.Amount, &t.ExpenseDate,
			&t.Description, &t.Reference, &t.CreatedBy, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *reportingService) ExportFinancialSummary(ctx context.Context, from, to string) ([]byte, error) {
	summary, err := s.FinancialSummary(ctx, from, to)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Financial Summary"
	f.SetSheetName("Sheet1", sheet)

	set := func(cell string, value any) {
		_ = f.SetCellValue(sheet, cell, value)
	}

	set("A1", "Financial Summary")
	period := "all time"
	if from != "" || to != "" {
		period = fmt.Sprintf("%s to %s", orOpen(from), orOpen(to))
	}
	set("A2", "Period")
	set("B2", period)
	set("A3", "Generated")
	set("B3", time.Now().Format("2006-01-02 15:04"))

	set("A5", "Revenue (paid orders)")
	set("B5", summary.Revenue.InexactFloat64())
	set("A6", "Paid order count")
	set("B6", summary.OrderCount)
	set("A7", "Total expenses")
	set("B7", summary.TotalExpenses.InexactFloat64())
	set("A8", "Outstanding payables")
	set("B8", summary.OutstandingPayables.InexactFloat64())
	set("A9", "Net")
	set("B9", summary.Net.InexactFloat64())

	set("A11", "Expenses by category")
	row := 12
	for _, ct := range summary.ExpensesByCategory {
		set(fmt.Sprintf("A%d", row), ct.Category)
		set(fmt.Sprintf("B%d", row), ct.Total.InexactFloat64())
		row++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func orOpen(s string) string {
	if s == "" {
		return "open"
	}
	return s
}

func validateRange(from, to string) error {
	for _, d := range []string{from, to} {
		if d == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return validationf("invalid date %q (want YYYY-MM-DD)", d)
		}
	}
	if from != "" && to != "" && to < from {
		return validationf("report range end precedes start")
	}
	return nil
}
