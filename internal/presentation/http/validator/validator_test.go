package validator

import (
	"testing"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/procurement/pkg/errorbank"
)

type payload struct {
	OrderNumber string           `json:"orderNumber" validate:"omitempty,max=50,order_number"`
	Name        string           `json:"supplierName" validate:"required,max=5"`
	Currency    string           `json:"currency" validate:"required,oneof=USD EUR"`
	Amount      *decimal.Decimal `json:"totalAmount" validate:"required,money"`
	Delivery    string           `json:"expectedDeliveryDate" validate:"required,datetime=2006-01-02"`
}

func amount(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestValidator_Valid(t *testing.T) {
	v := New()
	err := v.Validate(&payload{
		OrderNumber: "PO-2025-000001",
		Name:        "Acme",
		Currency:    "USD",
		Amount:      amount("10.50"),
		Delivery:    "2030-01-01",
	})
	assert.NoError(t, err)
}

func TestValidator_FieldDetails(t *testing.T) {
	v := New()
	err := v.Validate(&payload{
		OrderNumber: "ORDER-1",
		Name:        "Too long name",
		Currency:    "GBP",
		Amount:      amount("1.234"),
		Delivery:    "01/02/2030",
	})
	require.Error(t, err)

	appErr := errorbank.From(err)
	assert.Equal(t, errorbank.KindValidation, appErr.Kind())
	assert.Equal(t, InvalidPayloadMessage, appErr.Message())

	details := appErr.Details()
	assert.Equal(t, "must match the format PO-YYYY-XXXXXX", details["orderNumber"])
	assert.Equal(t, "must be at most 5 characters", details["supplierName"])
	assert.Equal(t, "must be one of: USD, EUR", details["currency"])
	assert.Equal(t, "must have at most 17 integer digits and 2 decimals", details["totalAmount"])
	assert.Equal(t, "must be a date formatted as yyyy-MM-dd", details["expectedDeliveryDate"])
}

func TestValidator_Required(t *testing.T) {
	v := New()
	err := v.Validate(&payload{})
	require.Error(t, err)

	details := errorbank.From(err).Details()
	assert.Equal(t, "is required", details["supplierName"])
	assert.Equal(t, "is required", details["totalAmount"])
	assert.NotContains(t, details, "orderNumber")
}

func TestFitsMoney(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"0.01", true},
		{"12345678901234567.99", true},
		{"123456789012345678", false},
		{"1.5", true},
		{"1.500", false},
		{"10.120", false},
		{"10.10", true},
		{"1.005", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FitsMoney(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestValidator_MoneyKeepsWrittenScale(t *testing.T) {
	v := New()
	err := v.Validate(&payload{
		Name:     "Acme",
		Currency: "EUR",
		Amount:   amount("10.120"),
		Delivery: "2030-01-01",
	})
	require.Error(t, err)
	assert.Equal(t, "must have at most 17 integer digits and 2 decimals", errorbank.From(err).Details()["totalAmount"])
}

func TestMustRegister_PanicsOnBadTag(t *testing.T) {
	v := validatorv10.New()
	assert.Panics(t, func() {
		mustRegister(v, "", func(validatorv10.FieldLevel) bool { return true })
	})
	assert.NotPanics(t, func() { New() })
}
