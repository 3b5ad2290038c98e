package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase order lifecycle. Receiving drives pending → partial → received;
// cancellation is only reachable from pending.
const (
	POStatusPending   = "pending"
	POStatusPartial   = "partial"
	POStatusReceived  = "received"
	POStatusCancelled = "cancelled"
)

// PurchaseOrder is a supplier order header. InvoiceNumber is assigned at
// creation and shared with the matching invoices row; IsFulfilled flips only
// when every item is fully received.
type PurchaseOrder struct {
	ID            int                 `json:"id"`
	SupplierID    int                 `json:"supplier_id"`
	SupplierName  string              `json:"supplier_name"`
	OrderDate     string              `json:"order_date"` // YYYY-MM-DD
	Status        string              `json:"status"`
	TotalAmount   decimal.Decimal     `json:"total_amount"`
	InvoiceNumber *string             `json:"invoice_number,omitempty"`
	IsFulfilled   bool                `json:"is_fulfilled"`
	CreatedBy     *int                `json:"created_by,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	Items         []PurchaseOrderItem `json:"items,omitempty"`
	Payment       *PurchasePayment    `json:"payment,omitempty"`
}

// PurchaseOrderItem is one ordered line. ReceivedQuantity accumulates with
// each goods receipt and never exceeds Quantity.
type PurchaseOrderItem struct {
	ID               int             `json:"id"`
	PurchaseOrderID  int             `json:"purchase_order_id"`
	ProductID        int             `json:"product_id"`
	ProductSKU       string          `json:"product_sku"`
	ProductName      string          `json:"product_name"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	ReceivedQuantity decimal.Decimal `json:"received_quantity"`
}

// PurchaseOrderLineInput is one requested line on a new purchase order.
// Lines with zero or negative quantity or unit price are skipped, matching
// the legacy form behavior of ignoring blank rows.
type PurchaseOrderLineInput struct {
	ProductID int             `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreatePurchaseOrderInput is the full request for PurchaseOrderService.Create.
type CreatePurchaseOrderInput struct {
	SupplierID    int                      `json:"supplier_id"`
	OrderDate     string                   `json:"order_date"` // YYYY-MM-DD, defaults to today
	PaymentMethod string                   `json:"payment_method"`
	CreatedBy     int                      `json:"-"`
	Lines         []PurchaseOrderLineInput `json:"lines"`
}

// PurchasePayment is the payment-intent stub created alongside a purchase
// order. It is a separate record from the invoice_payments settlement ledger
// and the two are deliberately never reconciled against each other.
type PurchasePayment struct {
	ID              int             `json:"id"`
	PurchaseOrderID int             `json:"purchase_order_id"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentMethod   string          `json:"payment_method"`
	Status          string          `json:"status"`
	TransactionID   string          `json:"transaction_id"`
	InvoiceNumber   *string         `json:"invoice_number,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Transaction is a single-entry expense ledger row. One is written per
// purchase order for accounting traceability.
type Transaction struct {
	ID          int             `json:"id"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	ExpenseDate string          `json:"expense_date"` // YYYY-MM-DD
	Description *string         `json:"description,omitempty"`
	Reference   *string         `json:"reference,omitempty"`
	CreatedBy   *int            `json:"created_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}
