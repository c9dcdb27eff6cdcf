package dto

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Additional-Code/procurement/internal/entity"
)

// DateLayout is the wire format of expectedDeliveryDate.
const DateLayout = "2006-01-02"

// PurchaseOrderRequest is the body accepted by create and update.
type PurchaseOrderRequest struct {
	OrderNumber          string           `json:"orderNumber" validate:"omitempty,max=50,order_number"`
	SupplierName         string           `json:"supplierName" validate:"required,max=255"`
	Status               string           `json:"status" validate:"omitempty,oneof=DRAFT SUBMITTED APPROVED REJECTED CANCELLED"`
	TotalAmount          *decimal.Decimal `json:"totalAmount" validate:"required,money"`
	Currency             string           `json:"currency" validate:"required,oneof=USD EUR"`
	ExpectedDeliveryDate string           `json:"expectedDeliveryDate" validate:"required,datetime=2006-01-02"`
}

// Normalize trims surrounding whitespace so blank values fail "required".
func (r *PurchaseOrderRequest) Normalize() {
	r.OrderNumber = strings.TrimSpace(r.OrderNumber)
	r.SupplierName = strings.TrimSpace(r.SupplierName)
	r.Status = strings.TrimSpace(r.Status)
	r.Currency = strings.TrimSpace(r.Currency)
	r.ExpectedDeliveryDate = strings.TrimSpace(r.ExpectedDeliveryDate)
}

// ToEntity converts a validated request into a purchase order.
func (r PurchaseOrderRequest) ToEntity() (*entity.PurchaseOrder, error) {
	po := &entity.PurchaseOrder{
		OrderNumber:  r.OrderNumber,
		SupplierName: r.SupplierName,
		Status:       entity.Status(r.Status),
		Currency:     entity.Currency(r.Currency),
	}
	if r.TotalAmount != nil {
		po.TotalAmount = *r.TotalAmount
	}
	if r.ExpectedDeliveryDate != "" {
		date, err := time.ParseInLocation(DateLayout, r.ExpectedDeliveryDate, time.UTC)
		if err != nil {
			return nil, err
		}
		po.ExpectedDeliveryDate = date
	}
	return po, nil
}

// PurchaseOrderResponse is the API representation of a purchase order.
type PurchaseOrderResponse struct {
	ID                   int64       `json:"id"`
	OrderNumber          string      `json:"orderNumber"`
	SupplierName         string      `json:"supplierName"`
	Status               string      `json:"status"`
	TotalAmount          json.Number `json:"totalAmount"`
	Currency             string      `json:"currency"`
	CreatedAt            time.Time   `json:"createdAt"`
	ExpectedDeliveryDate string      `json:"expectedDeliveryDate"`
}

// NewPurchaseOrderResponse renders po for the wire.
func NewPurchaseOrderResponse(po *entity.PurchaseOrder) PurchaseOrderResponse {
	return PurchaseOrderResponse{
		ID:                   po.ID,
		OrderNumber:          po.OrderNumber,
		SupplierName:         po.SupplierName,
		Status:               string(po.Status),
		TotalAmount:          json.Number(po.TotalAmount.StringFixed(2)),
		Currency:             string(po.Currency),
		CreatedAt:            po.CreatedAt.UTC(),
		ExpectedDeliveryDate: po.ExpectedDeliveryDate.Format(DateLayout),
	}
}

// NewPurchaseOrderResponses renders a list, never returning nil.
func NewPurchaseOrderResponses(items []entity.PurchaseOrder) []PurchaseOrderResponse {
	out := make([]PurchaseOrderResponse, 0, len(items))
	for i := range items {
		out = append(out, NewPurchaseOrderResponse(&items[i]))
	}
	return out
}

// OrderNumberResponse carries a proposed order number.
type OrderNumberResponse struct {
	OrderNumber string `json:"orderNumber"`
}

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}
