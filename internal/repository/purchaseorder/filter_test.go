package purchaseorder

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Additional-Code/procurement/internal/entity"
)

func TestFilter_Matches(t *testing.T) {
	created := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	po := entity.PurchaseOrder{
		OrderNumber:  "PO-2026-000010",
		SupplierName: "Wayne Enterprises",
		Status:       entity.StatusSubmitted,
		Currency:     entity.CurrencyEUR,
		TotalAmount:  decimal.RequireFromString("100.00"),
		CreatedAt:    created,
	}

	hundred := decimal.RequireFromString("100")
	ninetyNine := decimal.RequireFromString("99.99")
	before := created.Add(-time.Minute)
	after := created.Add(time.Minute)

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"empty", Filter{}, true},
		{"query supplier mixed case", Filter{Query: "wAyNe"}, true},
		{"query number", Filter{Query: "po-2026"}, true},
		{"query miss", Filter{Query: "stark"}, false},
		{"status match", Filter{Status: entity.StatusSubmitted}, true},
		{"status miss", Filter{Status: entity.StatusApproved}, false},
		{"currency miss", Filter{Currency: entity.CurrencyUSD}, false},
		{"min inclusive", Filter{MinTotal: &hundred}, true},
		{"max inclusive", Filter{MaxTotal: &hundred}, true},
		{"max below", Filter{MaxTotal: &ninetyNine}, false},
		{"from inclusive", Filter{From: &created}, true},
		{"from after", Filter{From: &after}, false},
		{"to inclusive", Filter{To: &created}, true},
		{"to before", Filter{To: &before}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(po))
		})
	}
}

func TestFilter_Empty(t *testing.T) {
	assert.True(t, Filter{}.Empty())
	assert.False(t, Filter{Currency: entity.CurrencyUSD}.Empty())
}

func TestContainsPattern(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Acme", want: "%acme%"},
		{in: "50%", want: "%50!%%"},
		{in: "a_b", want: "%a!_b%"},
		{in: "wow!", want: "%wow!!%"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, containsPattern(tt.in))
		})
	}
}
