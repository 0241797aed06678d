package store

import (
	"context"
	"fmt"

	"github.com/safar/furnishop/internal/database"
	"github.com/safar/furnishop/internal/models"
	"github.com/shopspring/decimal"
)

func CreatePayment(ctx context.Context, q database.Querier, orderID, method, status string, total decimal.Decimal) (*models.Payment, error) {
	payment := &models.Payment{}

	err := q.QueryRowContext(ctx,
		`INSERT INTO payments (id, order_id, method, status, total_amount, paid_at)
		 VALUES ($1, $2, $3, $4, $5, NOW())
		 RETURNING id, order_id, method, status, total_amount, paid_at`,
		newID(), orderID, method, status, total,
	).Scan(
		&payment.ID,
		&payment.OrderID,
		&payment.Method,
		&payment.Status,
		&payment.TotalAmount,
		&payment.PaidAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	return payment, nil
}

// GetPaymentByOrder returns sql.ErrNoRows (wrapped) when the order has no payment.
func GetPaymentByOrder(ctx context.Context, q database.Querier, orderID string) (*models.Payment, error) {
	payment := &models.Payment{}

	err := q.QueryRowContext(ctx,
		`SELECT id, order_id, method, status, total_amount, paid_at
		 FROM payments
		 WHERE order_id = $1
		 ORDER BY paid_at
		 LIMIT 1`,
		orderID,
	).Scan(
		&payment.ID,
		&payment.OrderID,
		&payment.Method,
		&payment.Status,
		&payment.TotalAmount,
		&payment.PaidAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}

	return payment, nil
}
