package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Status labels a purchase order. Any value may be set by any update.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusSubmitted Status = "SUBMITTED"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
)

// Statuses lists every status in declaration order.
func Statuses() []Status {
	return []Status{StatusDraft, StatusSubmitted, StatusApproved, StatusRejected, StatusCancelled}
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, candidate := range Statuses() {
		if s == candidate {
			return true
		}
	}
	return false
}

// Currency is the ISO code a purchase order is priced in.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// Currencies lists every supported currency.
func Currencies() []Currency {
	return []Currency{CurrencyUSD, CurrencyEUR}
}

// Valid reports whether c is a supported currency.
func (c Currency) Valid() bool {
	return c == CurrencyUSD || c == CurrencyEUR
}

// PurchaseOrder represents a purchase order stored in the relational database.
type PurchaseOrder struct {
	bun.BaseModel `bun:"table:purchase_orders,alias:po"`

	ID                   int64           `bun:",pk,autoincrement" json:"id"`
	OrderNumber          string          `bun:"order_number,notnull,unique" json:"orderNumber"`
	SupplierName         string          `bun:"supplier_name,notnull" json:"supplierName"`
	Status               Status          `bun:"status,notnull" json:"status"`
	TotalAmount          decimal.Decimal `bun:"total_amount,type:decimal(19,2),notnull" json:"totalAmount"`
	Currency             Currency        `bun:"currency,notnull" json:"currency"`
	CreatedAt            time.Time       `bun:"created_at,notnull" json:"createdAt"`
	ExpectedDeliveryDate time.Time       `bun:"expected_delivery_date,type:date,notnull" json:"expectedDeliveryDate"`
}
