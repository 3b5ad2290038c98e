package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer order lifecycle:
//
//	pending → processing → shipped → delivered
//	pending/processing → cancelled
//
// shipped is only reachable through dispatch assignment.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

const (
	PaymentStatusUnpaid   = "unpaid"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
)

// CustomerOrder is a storefront order as seen by the back office.
type CustomerOrder struct {
	ID              int                 `json:"id"`
	CustomerName    string              `json:"customer_name"`
	CustomerEmail   *string             `json:"customer_email,omitempty"`
	ShippingAddress *string             `json:"shipping_address,omitempty"`
	Status          string              `json:"status"`
	PaymentStatus   string              `json:"payment_status"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	CouponCode      *string             `json:"coupon_code,omitempty"`
	DriverID        *int                `json:"driver_id,omitempty"`
	DriverName      *string             `json:"driver_name,omitempty"`
	VehicleID       *int                `json:"vehicle_id,omitempty"`
	VehicleRegNo    *string             `json:"vehicle_reg_no,omitempty"`
	DispatchedAt    *time.Time          `json:"dispatched_at,omitempty"`
	DeliveredAt     *time.Time          `json:"delivered_at,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	Items           []CustomerOrderItem `json:"items,omitempty"`
}

// CustomerOrderItem is one line of a customer order.
type CustomerOrderItem struct {
	ID         int             `json:"id"`
	OrderID    int             `json:"order_id"`
	ProductID  int             `json:"product_id"`
	ProductSKU string          `json:"product_sku"`
	Name       string          `json:"product_name"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
}

// OrderLineInput is one requested line on a new customer order.
type OrderLineInput struct {
	ProductID int             `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// CreateOrderInput is the request for OrderService.Create. Unit prices come
// from the catalog at order time; CouponCode, when present, is validated and
// redeemed as part of the same transaction.
type CreateOrderInput struct {
	CustomerName    string           `json:"customer_name"`
	CustomerEmail   string           `json:"customer_email"`
	ShippingAddress string           `json:"shipping_address"`
	CouponCode      string           `json:"coupon_code"`
	Lines           []OrderLineInput `json:"lines"`
}
