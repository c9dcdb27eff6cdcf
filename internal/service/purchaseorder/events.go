package purchaseorder

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Additional-Code/procurement/internal/entity"
	"github.com/Additional-Code/procurement/internal/messaging"
)

// Event types published on the purchase order topic.
const (
	EventCreated = "purchase_order.created"
	EventUpdated = "purchase_order.updated"
	EventDeleted = "purchase_order.deleted"
)

// Event is the payload emitted after a successful mutation.
type Event struct {
	Type        string          `json:"type"`
	ID          int64           `json:"id"`
	OrderNumber string          `json:"orderNumber"`
	Status      entity.Status   `json:"status,omitempty"`
	Currency    entity.Currency `json:"currency,omitempty"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	OccurredAt  time.Time       `json:"occurredAt"`
}

func newEvent(eventType string, po *entity.PurchaseOrder, at time.Time) Event {
	return Event{
		Type:        eventType,
		ID:          po.ID,
		OrderNumber: po.OrderNumber,
		Status:      po.Status,
		Currency:    po.Currency,
		TotalAmount: po.TotalAmount,
		OccurredAt:  at,
	}
}

// EventKey partitions events so all changes to one order stay ordered.
func EventKey(id int64) []byte {
	return []byte(fmt.Sprintf("purchase-order-%d", id))
}

// publish is best effort; the database is the source of truth.
func (s *Service) publish(ctx context.Context, eventType string, po *entity.PurchaseOrder) {
	if !s.messaging.enabled || s.publisher == nil {
		return
	}
	payload, err := json.Marshal(newEvent(eventType, po, s.clock.Now()))
	if err != nil {
		s.logger.Error("marshal purchase order event", zap.String("type", eventType), zap.Error(err))
		return
	}
	headers := map[string]string{messaging.HeaderEventType: eventType}
	if err := s.publisher.Publish(ctx, EventKey(po.ID), payload, headers); err != nil {
		s.logger.Error("publish purchase order event",
			zap.String("type", eventType),
			zap.Int64("id", po.ID),
			zap.Error(err),
		)
	}
}
