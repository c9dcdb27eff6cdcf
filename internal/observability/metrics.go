package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/Additional-Code/procurement/purchaseorder"

// PurchaseOrderMetrics records purchase order lifecycle counters.
type PurchaseOrderMetrics struct {
	created    metric.Int64Counter
	updated    metric.Int64Counter
	deleted    metric.Int64Counter
	listed     metric.Int64Histogram
	numberGaps metric.Int64Counter
}

// NewPurchaseOrderMetrics registers the instruments on meter. A nil meter
// yields no-op instruments.
func NewPurchaseOrderMetrics(meter metric.Meter) (*PurchaseOrderMetrics, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter(meterName)
	}

	created, err := meter.Int64Counter("purchase_orders.created", metric.WithDescription("Purchase orders created"))
	if err != nil {
		return nil, err
	}
	updated, err := meter.Int64Counter("purchase_orders.updated", metric.WithDescription("Purchase orders updated"))
	if err != nil {
		return nil, err
	}
	deleted, err := meter.Int64Counter("purchase_orders.deleted", metric.WithDescription("Purchase orders deleted"))
	if err != nil {
		return nil, err
	}
	listed, err := meter.Int64Histogram("purchase_orders.list.size", metric.WithDescription("Records returned per listing"))
	if err != nil {
		return nil, err
	}
	numberGaps, err := meter.Int64Counter("purchase_orders.number.collisions", metric.WithDescription("Generated order numbers skipped because they were taken"))
	if err != nil {
		return nil, err
	}

	return &PurchaseOrderMetrics{
		created:    created,
		updated:    updated,
		deleted:    deleted,
		listed:     listed,
		numberGaps: numberGaps,
	}, nil
}

func (p *PurchaseOrderMetrics) Created(ctx context.Context, status, currency string) {
	p.created.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
		attribute.String("currency", currency),
	))
}

func (p *PurchaseOrderMetrics) Updated(ctx context.Context, status string) {
	p.updated.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

func (p *PurchaseOrderMetrics) Deleted(ctx context.Context) {
	p.deleted.Add(ctx, 1)
}

func (p *PurchaseOrderMetrics) Listed(ctx context.Context, n int, filtered bool) {
	p.listed.Record(ctx, int64(n), metric.WithAttributes(attribute.Bool("filtered", filtered)))
}

func (p *PurchaseOrderMetrics) NumberCollision(ctx context.Context) {
	p.numberGaps.Add(ctx, 1)
}
