package seeder

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/procurement/internal/clock"
	"github.com/Additional-Code/procurement/internal/entity"
	repo "github.com/Additional-Code/procurement/internal/repository/purchaseorder"
	posvc "github.com/Additional-Code/procurement/internal/service/purchaseorder"
)

// Module provides the seeder to Fx.
var Module = fx.Provide(New)

// Seeder performs database seeding for local/dev setups.
type Seeder struct {
	store  repo.Store
	clock  clock.Clock
	logger *zap.Logger
}

// New constructs a Seeder writing through the purchase order store.
func New(store repo.Store, c clock.Clock, logger *zap.Logger) *Seeder {
	return &Seeder{store: store, clock: c, logger: logger}
}

type sample struct {
	sequence     int
	supplier     string
	status       entity.Status
	amount       string
	currency     entity.Currency
	deliveryDays int
}

var samples = []sample{
	{sequence: 900001, supplier: "Acme Industrial Supply", status: entity.StatusDraft, amount: "1250.00", currency: entity.CurrencyUSD, deliveryDays: 14},
	{sequence: 900002, supplier: "Globex Components", status: entity.StatusSubmitted, amount: "8730.45", currency: entity.CurrencyEUR, deliveryDays: 21},
	{sequence: 900003, supplier: "Initech Office Goods", status: entity.StatusApproved, amount: "312.99", currency: entity.CurrencyUSD, deliveryDays: 7},
	{sequence: 900004, supplier: "Umbrella Logistics", status: entity.StatusRejected, amount: "15400.00", currency: entity.CurrencyEUR, deliveryDays: 30},
	{sequence: 900005, supplier: "Stark Materials", status: entity.StatusCancelled, amount: "99.50", currency: entity.CurrencyUSD, deliveryDays: 45},
}

// PurchaseOrders inserts the sample purchase orders that are missing and
// reports how many were written. Running it twice is harmless.
func (s *Seeder) PurchaseOrders(ctx context.Context) (int, error) {
	now := s.clock.Now()
	today := clock.Today(s.clock)

	inserted := 0
	for _, sm := range samples {
		number := posvc.FormatOrderNumber(now.Year(), sm.sequence)
		exists, err := s.store.ExistsByOrderNumber(ctx, number)
		if err != nil {
			return inserted, err
		}
		if exists {
			continue
		}

		po := &entity.PurchaseOrder{
			OrderNumber:          number,
			SupplierName:         sm.supplier,
			Status:               sm.status,
			TotalAmount:          decimal.RequireFromString(sm.amount),
			Currency:             sm.currency,
			CreatedAt:            now,
			ExpectedDeliveryDate: today.AddDate(0, 0, sm.deliveryDays),
		}
		if err := s.store.Create(ctx, po); err != nil {
			if errors.Is(err, repo.ErrDuplicateOrderNumber) {
				continue
			}
			return inserted, err
		}
		inserted++
	}

	if s.logger != nil {
		s.logger.Info("seeded purchase orders", zap.Int("inserted", inserted), zap.Int("samples", len(samples)))
	}
	return inserted, nil
}
