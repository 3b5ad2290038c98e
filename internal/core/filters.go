package core

import (
	"fmt"
	"strings"
)

// predicateBuilder accumulates parameterized WHERE predicates. List endpoints
// compose it from typed filter structs instead of concatenating SQL strings.
type predicateBuilder struct {
	clauses []string
	args    []any
}

// add appends one predicate. Every $%d verb in expr is bound to the same
// positional parameter, e.g. "po.status = $%d" or
// "(o.customer_name ILIKE $%d OR o.customer_email ILIKE $%d)".
func (b *predicateBuilder) add(expr string, value any) {
	b.args = append(b.args, value)
	idx := make([]any, strings.Count(expr, "$%d"))
	for i := range idx {
		idx[i] = len(b.args)
	}
	b.clauses = append(b.clauses, fmt.Sprintf(expr, idx...))
}

// where renders the accumulated predicates as a WHERE clause, or returns an
// empty string when no predicates were added.
func (b *predicateBuilder) where() string {
	if len(b.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.clauses, " AND ")
}

// PurchaseOrderFilter narrows purchase order listings.
type PurchaseOrderFilter struct {
	Status     string
	SupplierID int
	From       string // order_date lower bound, YYYY-MM-DD inclusive
	To         string // order_date upper bound, YYYY-MM-DD inclusive
}

func (f PurchaseOrderFilter) apply(b *predicateBuilder) {
	if f.Status != "" {
		b.add("po.status = $%d", f.Status)
	}
	if f.SupplierID > 0 {
		b.add("po.supplier_id = $%d", f.SupplierID)
	}
	if f.From != "" {
		b.add("po.order_date >= $%d", f.From)
	}
	if f.To != "" {
		b.add("po.order_date <= $%d", f.To)
	}
}

// InvoiceFilter narrows invoice listings.
type InvoiceFilter struct {
	Status     string
	SupplierID int
}

func (f InvoiceFilter) apply(b *predicateBuilder) {
	if f.Status != "" {
		b.add("i.status = $%d", f.Status)
	}
	if f.SupplierID > 0 {
		b.add("i.supplier_id = $%d", f.SupplierID)
	}
}

// OrderFilter narrows customer order listings.
type OrderFilter struct {
	Status        string
	PaymentStatus string
	Search        string // matches customer name or email, case-insensitive
	From          string // created_at lower bound, YYYY-MM-DD inclusive
	To            string // created_at upper bound, YYYY-MM-DD inclusive
}

func (f OrderFilter) apply(b *predicateBuilder) {
	if f.Status != "" {
		b.add("o.status = $%d", f.Status)
	}
	if f.PaymentStatus != "" {
		b.add("o.payment_status = $%d", f.PaymentStatus)
	}
	if f.Search != "" {
		b.add("(o.customer_name ILIKE $%d OR o.customer_email ILIKE $%d)", "%"+f.Search+"%")
	}
	if f.From != "" {
		b.add("o.created_at >= $%d::date", f.From)
	}
	if f.To != "" {
		b.add("o.created_at < $%d::date + INTERVAL '1 day'", f.To)
	}
}
