package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/safar/furnishop/internal/database"
	"github.com/safar/furnishop/internal/models"
	"github.com/shopspring/decimal"
)

const orderColumns = `id, customer_id, status, is_locked, created_at, updated_at`

func scanOrder(row rowScanner) (*models.Order, error) {
	o := &models.Order{}
	err := row.Scan(&o.ID, &o.CustomerID, &o.Status, &o.IsLocked, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

// CreateOrder inserts an unlocked order header for customerID in status.
func CreateOrder(ctx context.Context, q database.Querier, customerID, status string) (*models.Order, error) {
	query := `
		INSERT INTO orders (id, customer_id, status, is_locked, created_at, updated_at)
		VALUES ($1, $2, $3, FALSE, NOW(), NOW())
		RETURNING ` + orderColumns

	order, err := scanOrder(q.QueryRowContext(ctx, query, newID(), customerID, status))
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	return order, nil
}

// CreateOrderDetail records one purchased line with its price snapshot.
func CreateOrderDetail(ctx context.Context, q database.Querier, orderID, productID string, quantity int, price decimal.Decimal) (*models.OrderDetail, error) {
	detail := &models.OrderDetail{
		ID:        newID(),
		OrderID:   orderID,
		ProductID: productID,
		Quantity:  quantity,
		Price:     price,
	}

	_, err := q.ExecContext(ctx,
		`INSERT INTO order_details (id, order_id, product_id, quantity, price)
		 VALUES ($1, $2, $3, $4, $5)`,
		detail.ID, detail.OrderID, detail.ProductID, detail.Quantity, detail.Price)
	if err != nil {
		return nil, fmt.Errorf("create order detail: %w", err)
	}

	return detail, nil
}

func GetOrder(ctx context.Context, q database.Querier, id string) (*models.Order, error) {
	order, err := scanOrder(q.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	return order, nil
}

// GetOrderWithDetails loads the order header, its detail rows and its payment.
func GetOrderWithDetails(ctx context.Context, q database.Querier, id string) (*models.Order, error) {
	order, err := GetOrder(ctx, q, id)
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx,
		`SELECT id, order_id, product_id, quantity, price
		 FROM order_details
		 WHERE order_id = $1
		 ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("get order details: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d models.OrderDetail
		if err := rows.Scan(&d.ID, &d.OrderID, &d.ProductID, &d.Quantity, &d.Price); err != nil {
			return nil, fmt.Errorf("scan order detail: %w", err)
		}
		order.Details = append(order.Details, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	payment, err := GetPaymentByOrder(ctx, q, id)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	order.Payment = payment

	return order, nil
}

// ListOrdersCursor pages through a customer's orders newest first.
func ListOrdersCursor(ctx context.Context, q database.Querier, customerID string, cursor string, limit int) (*CursorPage, error) {
	cursorData, err := DecodeCursor(cursor)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE customer_id = $1
		  AND (created_at, id) < ($2, $3)
		ORDER BY created_at DESC, id DESC
		LIMIT $4`

	rows, err := q.QueryContext(ctx, query, customerID, cursorData.CreatedAt, cursorData.ID, limit+1)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	hasMore := len(orders) > limit
	if hasMore {
		orders = orders[:limit]
	}

	var nextCursor string
	if hasMore && len(orders) > 0 {
		lastOrder := orders[len(orders)-1]
		nextCursor = EncodeCursor(OrderCursor{
			CreatedAt: lastOrder.CreatedAt,
			ID:        lastOrder.ID,
		})
	}

	return &CursorPage{
		Items:      orders,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

func ToggleOrderLock(ctx context.Context, q database.Querier, id string) (*models.Order, error) {
	order, err := scanOrder(q.QueryRowContext(ctx,
		`UPDATE orders
		 SET is_locked = NOT is_locked, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+orderColumns, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("toggle order lock: %w", err)
	}

	return order, nil
}

// UpdateOrderStatus sets status without checking the current one.
func UpdateOrderStatus(ctx context.Context, q database.Querier, id, status string) (*models.Order, error) {
	order, err := scanOrder(q.QueryRowContext(ctx,
		`UPDATE orders
		 SET status = $2, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+orderColumns, id, status))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}

	return order, nil
}

// LockOrder reads an order and holds its row lock until the transaction ends.
func LockOrder(ctx context.Context, tx *sql.Tx, id string) (*models.Order, error) {
	order, err := scanOrder(tx.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("lock order: %w", err)
	}

	return order, nil
}
