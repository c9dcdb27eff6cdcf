package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/procurement/internal/entity"
)

func TestPurchaseOrderRequest_NormalizeAndToEntity(t *testing.T) {
	amount := decimal.RequireFromString("1500.5")
	req := PurchaseOrderRequest{
		OrderNumber:          " PO-2025-000001 ",
		SupplierName:         "  Acme  ",
		Status:               " SUBMITTED",
		TotalAmount:          &amount,
		Currency:             "EUR ",
		ExpectedDeliveryDate: " 2025-04-01 ",
	}
	req.Normalize()

	po, err := req.ToEntity()
	require.NoError(t, err)
	assert.Equal(t, "PO-2025-000001", po.OrderNumber)
	assert.Equal(t, "Acme", po.SupplierName)
	assert.Equal(t, entity.StatusSubmitted, po.Status)
	assert.Equal(t, entity.CurrencyEUR, po.Currency)
	assert.True(t, amount.Equal(po.TotalAmount))
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), po.ExpectedDeliveryDate)
}

func TestPurchaseOrderRequest_ToEntityBadDate(t *testing.T) {
	_, err := PurchaseOrderRequest{ExpectedDeliveryDate: "01/04/2025"}.ToEntity()
	assert.Error(t, err)
}

func TestNewPurchaseOrderResponse_JSON(t *testing.T) {
	po := &entity.PurchaseOrder{
		ID:                   7,
		OrderNumber:          "PO-2025-000007",
		SupplierName:         "Globex",
		Status:               entity.StatusDraft,
		TotalAmount:          decimal.RequireFromString("10"),
		Currency:             entity.CurrencyUSD,
		CreatedAt:            time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC),
		ExpectedDeliveryDate: time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC),
	}

	raw, err := json.Marshal(NewPurchaseOrderResponse(po))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 7,
		"orderNumber": "PO-2025-000007",
		"supplierName": "Globex",
		"status": "DRAFT",
		"totalAmount": 10.00,
		"currency": "USD",
		"createdAt": "2025-03-10T09:30:00Z",
		"expectedDeliveryDate": "2025-03-20"
	}`, string(raw))
	assert.Contains(t, string(raw), `"totalAmount":10.00`)
}

func TestNewPurchaseOrderResponses_Empty(t *testing.T) {
	out := NewPurchaseOrderResponses(nil)
	require.NotNil(t, out)
	assert.Empty(t, out)
}
