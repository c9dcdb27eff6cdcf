package purchaseorder

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/procurement/internal/entity"
	"github.com/Additional-Code/procurement/pkg/errorbank"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestValidatePurchaseOrder(t *testing.T) {
	today := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		amount  string
		date    time.Time
		wantErr string
	}{
		{name: "valid", amount: "10.00", date: today.AddDate(0, 0, 1)},
		{name: "no delivery date", amount: "10.00"},
		{name: "zero amount", amount: "0", date: today.AddDate(0, 0, 1), wantErr: "total amount must be greater than 0"},
		{name: "negative amount", amount: "-1", date: today.AddDate(0, 0, 1), wantErr: "total amount must be greater than 0"},
		{name: "delivery today", amount: "1", date: today, wantErr: "expected delivery date must be in the future"},
		{name: "delivery yesterday", amount: "1", date: today.AddDate(0, 0, -1), wantErr: "expected delivery date must be in the future"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			po := &entity.PurchaseOrder{
				TotalAmount:          decimal.RequireFromString(tt.amount),
				ExpectedDeliveryDate: tt.date,
			}
			err := ValidatePurchaseOrder(po, today)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errorbank.IsKind(err, errorbank.KindValidation))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidatePurchaseOrder_AbsentAmount(t *testing.T) {
	today := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	err := ValidatePurchaseOrder(&entity.PurchaseOrder{ExpectedDeliveryDate: today.AddDate(0, 0, 1)}, today)
	require.Error(t, err)
	assert.Equal(t, "must be greater than 0", errorbank.From(err).Details()["totalAmount"])
}

func TestParseStatus(t *testing.T) {
	status, err := ParseStatus(" approved ")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusApproved, status)

	status, err = ParseStatus("")
	require.NoError(t, err)
	assert.Empty(t, status)

	_, err = ParseStatus("SHIPPED")
	require.Error(t, err)
	assert.True(t, errorbank.IsKind(err, errorbank.KindValidation))
	assert.Contains(t, err.Error(), "invalid status: SHIPPED. Allowed values: DRAFT, SUBMITTED, APPROVED, REJECTED, CANCELLED")
}

func TestParseCurrency(t *testing.T) {
	currency, err := ParseCurrency("eur")
	require.NoError(t, err)
	assert.Equal(t, entity.CurrencyEUR, currency)

	_, err = ParseCurrency("GBP")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid currency: GBP. Allowed values: USD, EUR")
}

func TestValidateAmountRange(t *testing.T) {
	assert.NoError(t, ValidateAmountRange(nil, nil))
	assert.NoError(t, ValidateAmountRange(dec("0"), dec("0")))
	assert.NoError(t, ValidateAmountRange(dec("10"), dec("20")))

	err := ValidateAmountRange(dec("-1"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "minTotal must be greater than or equal to 0")

	err = ValidateAmountRange(nil, dec("-0.01"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maxTotal must be greater than or equal to 0")

	err = ValidateAmountRange(dec("500"), dec("100"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "minTotal cannot be greater than maxTotal")
}

func TestParseDateTime(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{raw: "2025-01-01T00:00:00", want: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{raw: "2025-01-01T10:30", want: time.Date(2025, 1, 1, 10, 30, 0, 0, time.UTC)},
		{raw: "2025-01-01T10:30:15.250", want: time.Date(2025, 1, 1, 10, 30, 15, 250_000_000, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseDateTime(tt.raw, "from")
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got))
		})
	}

	got, err := ParseDateTime("  ", "from")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = ParseDateTime("2025/01/01", "to")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid date format for parameter 'to': 2025/01/01")
}

func TestValidateDateRange(t *testing.T) {
	a := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	b := a.Add(time.Hour)

	assert.NoError(t, ValidateDateRange(&a, &b))
	assert.NoError(t, ValidateDateRange(&a, &a))
	assert.NoError(t, ValidateDateRange(nil, &a))

	err := ValidateDateRange(&b, &a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'from' cannot be after 'to'")
}

func TestFormatOrderNumber(t *testing.T) {
	assert.Equal(t, "PO-2025-000001", FormatOrderNumber(2025, 1))
	assert.Equal(t, "PO-2025-123456", FormatOrderNumber(2025, 123456))
}
