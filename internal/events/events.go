// Package events publishes order lifecycle events for downstream consumers
// such as fulfilment and notification workers.
package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Type string

const (
	OrderCreated       Type = "order.created"
	OrderCancelled     Type = "order.cancelled"
	OrderStatusChanged Type = "order.status_changed"
	OrderLockToggled   Type = "order.lock_toggled"
)

type Item struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type OrderEvent struct {
	Type          Type            `json:"type"`
	OrderID       string          `json:"order_id"`
	ShortID       string          `json:"short_id"`
	CustomerID    string          `json:"customer_id"`
	Status        string          `json:"status"`
	IsLocked      bool            `json:"is_locked"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Items         []Item          `json:"items,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

type Publisher interface {
	PublishOrderEvent(ctx context.Context, event OrderEvent) error
}

// Noop drops every event. It is used when no broker is configured.
type Noop struct{}

func (Noop) PublishOrderEvent(context.Context, OrderEvent) error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	Events []OrderEvent
}

func (r *Recorder) PublishOrderEvent(_ context.Context, event OrderEvent) error {
	r.Events = append(r.Events, event)
	return nil
}
