package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pushkindt/pushkind-orders/internal/models"
)

// OrderEvent is what leaves the service after a successful order commit.
// Publishing is best-effort: a broker outage must not fail the request.
type OrderEvent struct {
	Type       string             `json:"type"`
	HubID      uuid.UUID          `json:"hub_id"`
	OrderID    uuid.UUID          `json:"order_id"`
	CustomerID *uuid.UUID         `json:"customer_id,omitempty"`
	Status     models.OrderStatus `json:"status"`
	PrevStatus models.OrderStatus `json:"prev_status,omitempty"`
	TotalCents int64              `json:"total_cents"`
	Currency   string             `json:"currency"`
	OccurredAt time.Time          `json:"occurred_at"`
}

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

type EventBus interface {
	PublishOrderEvent(ctx context.Context, event OrderEvent) error
}

// publishOrder tolerates a nil bus so the services work without Kafka.
func publishOrder(ctx context.Context, bus EventBus, event OrderEvent) {
	if bus == nil {
		return
	}
	// ошибки брокера не роняют запрос
	_ = bus.PublishOrderEvent(ctx, event)
}
