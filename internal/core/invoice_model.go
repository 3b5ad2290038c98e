package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice status is derived, never set directly: Paid iff amount_paid covers
// the full amount, Partially Paid for anything above zero. A non-Pending
// invoice never regresses to Pending because payments of zero are rejected.
const (
	InvoiceStatusPending       = "Pending"
	InvoiceStatusPartiallyPaid = "Partially Paid"
	InvoiceStatusPaid          = "Paid"
)

// Invoice is the payable raised for a purchase order. AmountPaid is the
// cumulative settled amount and always equals the sum of the invoice's
// payment ledger rows.
type Invoice struct {
	ID              int             `json:"id"`
	PurchaseOrderID int             `json:"purchase_order_id"`
	SupplierID      int             `json:"supplier_id"`
	SupplierName    string          `json:"supplier_name"`
	InvoiceNumber   string          `json:"invoice_number"`
	Amount          decimal.Decimal `json:"amount"`
	AmountPaid      decimal.Decimal `json:"amount_paid"`
	Remaining       decimal.Decimal `json:"remaining"`
	Status          string          `json:"status"`
	DueDate         *string         `json:"due_date,omitempty"` // YYYY-MM-DD
	CreatedAt       time.Time       `json:"created_at"`
}

// InvoicePayment is one row of the append-only settlement ledger.
type InvoicePayment struct {
	ID               int             `json:"id"`
	InvoiceID        int             `json:"invoice_id"`
	Amount           decimal.Decimal `json:"amount"`
	PaymentDate      string          `json:"payment_date"` // YYYY-MM-DD
	PaymentReference string          `json:"payment_reference"`
	CreatedBy        *int            `json:"created_by,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}
