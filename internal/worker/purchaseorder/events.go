package purchaseorder

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/procurement/internal/cache"
	"github.com/Additional-Code/procurement/internal/messaging"
	posvc "github.com/Additional-Code/procurement/internal/service/purchaseorder"
	"github.com/Additional-Code/procurement/internal/worker"
)

var workerTracer = otel.Tracer("github.com/Additional-Code/procurement/worker/purchaseorder")

// Module registers purchase order event handlers with the worker engine.
var Module = fx.Module("worker_purchase_order",
	fx.Provide(
		fx.Annotate(
			NewHandlers,
			fx.ResultTags(`group:"worker.handlers,flatten"`),
		),
	),
)

// NewHandlers returns one registration per purchase order event type. Every
// event is recorded in the log; updates and deletes also evict the cached
// record so other instances stop serving stale reads.
func NewHandlers(logger *zap.Logger, store cache.Store) []worker.HandlerRegistration {
	h := &handler{logger: logger, cache: store}
	return []worker.HandlerRegistration{
		{EventType: posvc.EventCreated, Handler: h.handle(false)},
		{EventType: posvc.EventUpdated, Handler: h.handle(true)},
		{EventType: posvc.EventDeleted, Handler: h.handle(true)},
	}
}

type handler struct {
	logger *zap.Logger
	cache  cache.Store
}

func (h *handler) handle(evict bool) messaging.Handler {
	return func(ctx context.Context, msg messaging.Message) error {
		eventType := msg.Headers[messaging.HeaderEventType]
		ctx, span := workerTracer.Start(ctx, "worker.purchase_orders.process", trace.WithAttributes(
			attribute.String("messaging.topic", msg.Topic),
			attribute.String("messaging.event_type", eventType),
		))
		defer span.End()

		var event posvc.Event
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			h.logger.Error("failed to decode purchase order event",
				zap.String("event_type", eventType),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			return fmt.Errorf("decode %s: %w", eventType, err)
		}
		span.SetAttributes(attribute.Int64("purchase_order.id", event.ID))

		if evict && h.cache != nil {
			if err := h.cache.Delete(ctx, posvc.CacheKey(event.ID)); err != nil {
				h.logger.Warn("purchase order cache evict failed", zap.Int64("id", event.ID), zap.Error(err))
			}
		}

		h.logger.Info("purchase order event processed",
			zap.String("event_type", event.Type),
			zap.Int64("id", event.ID),
			zap.String("order_number", event.OrderNumber),
			zap.String("status", string(event.Status)),
			zap.Time("occurred_at", event.OccurredAt),
		)
		return nil
	}
}
