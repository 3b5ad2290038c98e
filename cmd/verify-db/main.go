// verify-db audits the financial invariants the services are supposed to
// maintain: purchase-order totals match their lines, invoice amount_paid
// matches the settlement ledger, receipts never exceed orders, and derived
// statuses are consistent with the underlying rows. Run it against a live
// database after incidents or bulk imports.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Supremeimprints/zellow-backoffice/internal/db"
)

type check struct {
	name  string
	query string
}

// Each query returns the ids of violating rows; an empty result is a pass.
var checks = []check{
	{
		name: "purchase order totals match line sums",
		query: `
			SELECT po.id
			FROM purchase_orders po
			JOIN purchase_order_items i ON i.purchase_order_id = po.id
			GROUP BY po.id, po.total_amount
			HAVING SUM(i.quantity * i.unit_price) <> po.total_amount`,
	},
	{
		name: "invoice amount_paid matches payment ledger",
		query: `
			SELECT i.id
			FROM invoices i
			LEFT JOIN invoice_payments p ON p.invoice_id = i.id
			GROUP BY i.id, i.amount_paid
			HAVING COALESCE(SUM(p.amount), 0) <> i.amount_paid`,
	},
	{
		name: "invoices never overpaid",
		query: `
			SELECT id FROM invoices WHERE amount_paid > amount`,
	},
	{
		name: "invoice status consistent with amount_paid",
		query: `
			SELECT id FROM invoices
			WHERE (status = 'Paid' AND amount_paid < amount)
			   OR (status = 'Pending' AND amount_paid > 0)
			   OR (status = 'Partially Paid' AND (amount_paid = 0 OR amount_paid >= amount))`,
	},
	{
		name: "received quantity never exceeds ordered",
		query: `
			SELECT id FROM purchase_order_items WHERE received_quantity > quantity`,
	},
	{
		name: "purchase order status consistent with receipts",
		query: `
			SELECT po.id
			FROM purchase_orders po
			JOIN purchase_order_items i ON i.purchase_order_id = po.id
			WHERE po.status <> 'cancelled'
			GROUP BY po.id, po.status
			HAVING (po.status = 'received' AND BOOL_OR(i.received_quantity < i.quantity))
			    OR (po.status = 'pending' AND BOOL_OR(i.received_quantity > 0))
			    OR (po.status = 'partial' AND (NOT BOOL_OR(i.received_quantity > 0)
			        OR NOT BOOL_OR(i.received_quantity < i.quantity)))`,
	},
	{
		name: "is_fulfilled set only on fully received orders",
		query: `
			SELECT po.id
			FROM purchase_orders po
			JOIN purchase_order_items i ON i.purchase_order_id = po.id
			GROUP BY po.id, po.is_fulfilled
			HAVING po.is_fulfilled <> NOT BOOL_OR(i.received_quantity < i.quantity)`,
	},
	{
		name: "campaign spend within budget",
		query: `
			SELECT id FROM marketing_campaigns WHERE spent > budget`,
	},
	{
		name: "coupon usage within max_uses",
		query: `
			SELECT id FROM coupons WHERE max_uses > 0 AND times_used > max_uses`,
	},
}

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	failed := 0
	for _, c := range checks {
		ids, err := violations(ctx, pool, c.query)
		if err != nil {
			fmt.Printf("[ERROR] %s: %v\n", c.name, err)
			failed++
			continue
		}
		if len(ids) > 0 {
			fmt.Printf("[FAIL]  %s: %d violating rows %v\n", c.name, len(ids), ids)
			failed++
			continue
		}
		fmt.Printf("[PASS]  %s\n", c.name)
	}

	if failed > 0 {
		fmt.Printf("\n%d of %d checks failed\n", failed, len(checks))
		os.Exit(1)
	}
	fmt.Printf("\nall %d checks passed\n", len(checks))
}

func violations(ctx context.Context, pool *pgxpool.Pool, query string) ([]int, error) {
	rows, err := pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
