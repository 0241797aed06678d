// Package checkout turns carts and single-product purchases into orders.
//
// Each purchase runs in one serializable transaction: the order header, its
// detail rows, the stock decrements, the payment record and the cart cleanup
// commit together or not at all.
package checkout

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/safar/furnishop/internal/database"
	"github.com/safar/furnishop/internal/events"
	"github.com/safar/furnishop/internal/models"
	"github.com/safar/furnishop/internal/store"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// CatalogInvalidator is told when product stock changed so cached listings
// can be dropped.
type CatalogInvalidator interface {
	InvalidateProducts(ctx context.Context) error
}

type Service struct {
	db        *sql.DB
	txOptions database.TxOptions
	publisher events.Publisher
	catalog   CatalogInvalidator
}

type Option func(*Service)

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithCatalogInvalidator(c CatalogInvalidator) Option {
	return func(s *Service) { s.catalog = c }
}

func WithTxOptions(opts database.TxOptions) Option {
	return func(s *Service) { s.txOptions = opts }
}

func NewService(db *sql.DB, opts ...Option) *Service {
	s := &Service{
		db:        db,
		txOptions: database.SerializableTxOptions(),
		publisher: events.Noop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CartCheckout is a checkout of raw client line items.
type CartCheckout struct {
	CustomerID    string
	Items         []json.RawMessage
	PaymentMethod string
	TotalAmount   *decimal.Decimal
}

// DirectOrder is a "buy now" purchase of one product outside the cart.
type DirectOrder struct {
	CustomerID    string
	ProductID     string
	PaymentMethod string
	Quantity      int
	OrderPrice    *decimal.Decimal
	TotalAmount   *decimal.Decimal
}

type Result struct {
	Order   *models.Order
	Details []models.OrderDetail
	Payment *models.Payment
	// Skipped counts input line items that carried no product id.
	Skipped int
	// CartLinesRemoved counts cart lines deleted because they were purchased.
	CartLinesRemoved int64
}

func (r *Result) ShortID() string { return r.Order.ShortID() }

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", database.ErrInvalidInput, fmt.Sprintf(format, args...))
}

func validatePayment(method string, total *decimal.Decimal) error {
	if strings.TrimSpace(method) == "" {
		return invalid("payment_method is required")
	}
	if total == nil {
		return invalid("total_amount is required")
	}
	if total.IsNegative() {
		return invalid("total_amount must not be negative")
	}
	return nil
}

// Checkout places an order for the given cart lines, decrements stock, records
// the payment and removes the purchased products from the customer's cart.
func (s *Service) Checkout(ctx context.Context, req CartCheckout) (*Result, error) {
	if len(req.Items) == 0 {
		return nil, invalid("cart is empty")
	}
	if err := validatePayment(req.PaymentMethod, req.TotalAmount); err != nil {
		return nil, err
	}

	items, skipped, err := NormalizeLineItems(req.Items)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, invalid("no item in the request names a product")
	}

	purchased := make([]string, 0, len(items))
	for _, item := range items {
		purchased = append(purchased, item.ProductID)
	}

	var result *Result
	err = database.WithRetry(ctx, s.db, s.txOptions, func(tx *sql.Tx) error {
		result = &Result{Skipped: skipped}

		order, err := store.CreateOrder(ctx, tx, req.CustomerID, models.OrderStatusPending)
		if err != nil {
			return err
		}
		result.Order = order

		for _, item := range items {
			detail, err := store.CreateOrderDetail(ctx, tx, order.ID, item.ProductID, item.Quantity, item.Price)
			if err != nil {
				return err
			}
			if err := store.DecrementStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
				return fmt.Errorf("product %s: %w", item.ProductID, err)
			}
			result.Details = append(result.Details, *detail)
		}

		payment, err := store.CreatePayment(ctx, tx, order.ID, req.PaymentMethod,
			models.PaymentStatusFor(req.PaymentMethod), *req.TotalAmount)
		if err != nil {
			return err
		}
		result.Payment = payment

		removed, err := store.RemoveCartProducts(ctx, tx, req.CustomerID, purchased)
		if err != nil {
			return err
		}
		result.CartLinesRemoved = removed

		return nil
	})
	if err != nil {
		log.WithFields(log.Fields{
			"customer_id": req.CustomerID,
			"items":       len(items),
		}).WithError(err).Warn("checkout failed")
		return nil, err
	}

	log.WithFields(log.Fields{
		"order_id":    result.Order.ID,
		"customer_id": req.CustomerID,
		"details":     len(result.Details),
		"skipped":     skipped,
	}).Info("order placed from cart")

	s.afterPurchase(ctx, result)
	return result, nil
}

// PlaceDirectOrder buys one product without touching the cart. Unlike Checkout
// it checks stock up front and reports ErrInsufficientStock before writing.
func (s *Service) PlaceDirectOrder(ctx context.Context, req DirectOrder) (*Result, error) {
	if strings.TrimSpace(req.ProductID) == "" {
		return nil, invalid("product id is required")
	}
	if err := validatePayment(req.PaymentMethod, req.TotalAmount); err != nil {
		return nil, err
	}
	if req.Quantity < 1 {
		return nil, invalid("quantity must be at least 1")
	}
	if req.OrderPrice == nil {
		return nil, invalid("order_price is required")
	}

	var result *Result
	err := database.WithRetry(ctx, s.db, s.txOptions, func(tx *sql.Tx) error {
		result = &Result{}

		product, err := store.LockProduct(ctx, tx, req.ProductID)
		if err != nil {
			return err
		}
		if product.StockQuantity < req.Quantity {
			return database.ErrInsufficientStock
		}

		order, err := store.CreateOrder(ctx, tx, req.CustomerID, models.OrderStatusPending)
		if err != nil {
			return err
		}
		result.Order = order

		detail, err := store.CreateOrderDetail(ctx, tx, order.ID, req.ProductID, req.Quantity, *req.OrderPrice)
		if err != nil {
			return err
		}
		result.Details = []models.OrderDetail{*detail}

		payment, err := store.CreatePayment(ctx, tx, order.ID, req.PaymentMethod,
			models.PaymentStatusFor(req.PaymentMethod), *req.TotalAmount)
		if err != nil {
			return err
		}
		result.Payment = payment

		return store.DecrementStock(ctx, tx, req.ProductID, req.Quantity)
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"order_id":    result.Order.ID,
		"customer_id": req.CustomerID,
		"product_id":  req.ProductID,
	}).Info("direct order placed")

	s.afterPurchase(ctx, result)
	return result, nil
}

// afterPurchase runs the post-commit side effects. Their failures are logged
// and never undo the order.
func (s *Service) afterPurchase(ctx context.Context, result *Result) {
	if s.catalog != nil {
		if err := s.catalog.InvalidateProducts(ctx); err != nil {
			log.WithError(err).Warn("invalidate catalog cache")
		}
	}

	event := events.OrderEvent{
		Type:       events.OrderCreated,
		OrderID:    result.Order.ID,
		ShortID:    result.Order.ShortID(),
		CustomerID: result.Order.CustomerID,
		Status:     result.Order.Status,
		OccurredAt: time.Now().UTC(),
	}
	if result.Payment != nil {
		event.PaymentMethod = result.Payment.Method
		event.TotalAmount = result.Payment.TotalAmount
	}
	for _, d := range result.Details {
		event.Items = append(event.Items, events.Item{
			ProductID: d.ProductID,
			Quantity:  d.Quantity,
			Price:     d.Price,
		})
	}

	if err := s.publisher.PublishOrderEvent(ctx, event); err != nil {
		log.WithField("order_id", result.Order.ID).WithError(err).Warn("publish order event")
	}
}
