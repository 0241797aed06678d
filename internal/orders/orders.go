// Package orders manages orders after checkout: customer cancellation, admin
// lock and status changes, and order history.
package orders

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/safar/furnishop/internal/auth"
	"github.com/safar/furnishop/internal/database"
	"github.com/safar/furnishop/internal/events"
	"github.com/safar/furnishop/internal/models"
	"github.com/safar/furnishop/internal/store"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type Service struct {
	db        *sql.DB
	publisher events.Publisher
}

func NewService(db *sql.DB, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &Service{db: db, publisher: publisher}
}

func canSee(caller auth.Identity, order *models.Order) bool {
	return caller.IsAdmin() || order.CustomerID == caller.ID
}

// Cancel moves an order to Cancelled. Only the owner or an admin may cancel,
// and only while the order is Pending or To Ship.
func (s *Service) Cancel(ctx context.Context, caller auth.Identity, orderID string) (*models.Order, error) {
	var order *models.Order
	err := database.WithTransaction(ctx, s.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		current, err := store.LockOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if !canSee(caller, current) {
			return database.ErrForbidden
		}
		if !models.IsCancellable(current.Status) {
			return fmt.Errorf("%w: status is %s", database.ErrNotCancellable, current.Status)
		}

		order, err = store.UpdateOrderStatus(ctx, tx, orderID, models.OrderStatusCancelled)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"order_id":  order.ID,
		"caller_id": caller.ID,
	}).Info("order cancelled")

	s.publish(ctx, events.OrderCancelled, order)
	return order, nil
}

func (s *Service) ToggleLock(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := store.ToggleOrderLock(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.OrderLockToggled, order)
	return order, nil
}

// SetStatus sets any non-empty status. Transitions are not validated.
func (s *Service) SetStatus(ctx context.Context, orderID, status string) (*models.Order, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, fmt.Errorf("%w: status is required", database.ErrInvalidInput)
	}

	order, err := store.UpdateOrderStatus(ctx, s.db, orderID, status)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.OrderStatusChanged, order)
	return order, nil
}

// List pages through the caller's own orders, newest first.
func (s *Service) List(ctx context.Context, caller auth.Identity, cursor string, limit int) (*store.CursorPage, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if _, err := store.DecodeCursor(cursor); err != nil {
		return nil, fmt.Errorf("%w: malformed cursor", database.ErrInvalidInput)
	}

	return store.ListOrdersCursor(ctx, s.db, caller.ID, cursor, limit)
}

// Get returns an order with its details and payment. Orders of other customers
// are reported as not found to non-admins.
func (s *Service) Get(ctx context.Context, caller auth.Identity, orderID string) (*models.Order, error) {
	order, err := store.GetOrderWithDetails(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}
	if !canSee(caller, order) {
		return nil, database.ErrOrderNotFound
	}
	return order, nil
}

func (s *Service) publish(ctx context.Context, typ events.Type, order *models.Order) {
	event := events.OrderEvent{
		Type:       typ,
		OrderID:    order.ID,
		ShortID:    order.ShortID(),
		CustomerID: order.CustomerID,
		Status:     order.Status,
		IsLocked:   order.IsLocked,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.PublishOrderEvent(ctx, event); err != nil {
		log.WithField("order_id", order.ID).WithError(err).Warn("publish order event")
	}
}
