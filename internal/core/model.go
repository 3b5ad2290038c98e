package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is an employee account. Role gates access in the web layer:
// admin > manager > staff; drivers only appear on the dispatch board.
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Supplier is a goods supplier master record.
type Supplier struct {
	ID               int       `json:"id"`
	Name             string    `json:"name"`
	ContactPerson    *string   `json:"contact_person,omitempty"`
	Email            *string   `json:"email,omitempty"`
	Phone            *string   `json:"phone,omitempty"`
	Address          *string   `json:"address,omitempty"`
	PaymentTermsDays int       `json:"payment_terms_days"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
}

// SupplierInput carries the mutable supplier fields for create/update.
type SupplierInput struct {
	Name             string `json:"name"`
	ContactPerson    string `json:"contact_person"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Address          string `json:"address"`
	PaymentTermsDays int    `json:"payment_terms_days"`
}

// Product is a catalog item purchasable from suppliers and sold to customers.
type Product struct {
	ID          int             `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
}
